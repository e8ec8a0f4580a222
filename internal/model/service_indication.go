package model

import (
	"time"

	"github.com/google/uuid"
)

// ServiceIndication orders billable services for one medical record,
// mirroring the prescription structure for the services catalog.
type ServiceIndication struct {
	ID              uuid.UUID                 `db:"id" json:"id"`
	MedicalRecordID uuid.UUID                 `db:"medical_record_id" json:"medical_record_id"`
	Notes           *string                   `db:"notes" json:"notes,omitempty"`
	CreatedAt       time.Time                 `db:"created_at" json:"created_at"`
	Services        []ServiceIndicationDetail `json:"services"`
}

type ServiceIndicationDetail struct {
	ID                  uuid.UUID `db:"id" json:"id"`
	ServiceIndicationID uuid.UUID `db:"service_indication_id" json:"service_indication_id"`
	ServiceID           uuid.UUID `db:"service_id" json:"service_id"`
	Name                string    `db:"name" json:"name"`
	Quantity            int       `db:"quantity" json:"quantity"`
	UnitPrice           float64   `db:"unit_price" json:"unit_price"`
	TotalPrice          float64   `db:"total_price" json:"total_price"`
}

type CreateServiceIndicationRequest struct {
	MedicalRecordID uuid.UUID                              `json:"medical_record_id" binding:"required"`
	Notes           *string                                `json:"notes"`
	Details         []CreateServiceIndicationDetailRequest `json:"service_indication_details" binding:"dive"`
}

type CreateServiceIndicationDetailRequest struct {
	ServiceID uuid.UUID `json:"service_id" binding:"required"`
	Quantity  int       `json:"quantity" binding:"gte=0"`
}
