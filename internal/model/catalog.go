package model

// Medication is a catalog entry with a live stock counter. Stock is
// decremented by invoice finalization and must never go negative.
type Medication struct {
	Base
	Name          string  `db:"name" json:"name"`
	DosageForm    string  `db:"dosage_form" json:"dosage_form"`
	Price         float64 `db:"price" json:"price"`
	StockQuantity int     `db:"stock_quantity" json:"stock_quantity"`
	Description   *string `db:"description" json:"description,omitempty"`
}

type CreateMedicationRequest struct {
	Name          string  `json:"name" binding:"required,max=255"`
	DosageForm    string  `json:"dosage_form" binding:"required,max=64"`
	Price         float64 `json:"price" binding:"required,gte=0"`
	StockQuantity int     `json:"stock_quantity" binding:"gte=0"`
	Description   *string `json:"description"`
}

type UpdateMedicationRequest struct {
	Name          *string  `json:"name"`
	DosageForm    *string  `json:"dosage_form"`
	Price         *float64 `json:"price" binding:"omitempty,gte=0"`
	StockQuantity *int     `json:"stock_quantity" binding:"omitempty,gte=0"`
	Description   *string  `json:"description"`
}

// Service is a billable clinic service (consultation, procedure, test).
type Service struct {
	Base
	Name        string  `db:"name" json:"name"`
	Price       float64 `db:"price" json:"price"`
	Description *string `db:"description" json:"description,omitempty"`
}

type CreateServiceRequest struct {
	Name        string  `json:"name" binding:"required,max=255"`
	Price       float64 `json:"price" binding:"required,gte=0"`
	Description *string `json:"description"`
}

type UpdateServiceRequest struct {
	Name        *string  `json:"name"`
	Price       *float64 `json:"price" binding:"omitempty,gte=0"`
	Description *string  `json:"description"`
}
