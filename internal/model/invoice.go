package model

import (
	"time"

	"github.com/google/uuid"
)

// Invoice is the financial settlement for one medical record. Created
// exactly once per record (unique index on medical_record_id) and
// immutable afterwards.
type Invoice struct {
	ID                 uuid.UUID `db:"id" json:"id"`
	MedicalRecordID    uuid.UUID `db:"medical_record_id" json:"medical_record_id"`
	PatientID          uuid.UUID `db:"patient_id" json:"patient_id"`
	DoctorID           uuid.UUID `db:"doctor_id" json:"doctor_id"`
	CreatedBy          uuid.UUID `db:"created_by" json:"created_by"`
	ServiceSubtotal    *float64  `db:"service_subtotal" json:"service_subtotal,omitempty"`
	MedicationSubtotal *float64  `db:"medication_subtotal" json:"medication_subtotal,omitempty"`
	TotalAmount        float64   `db:"total_amount" json:"total_amount"`
	DiscountAmount     *float64  `db:"discount_amount" json:"discount_amount,omitempty"`
	FinalAmount        float64   `db:"final_amount" json:"final_amount"`
	Notes              *string   `db:"notes" json:"notes,omitempty"`
	CreatedAt          time.Time `db:"created_at" json:"created_at"`
}

// InvoiceDetail is the fully composed read model returned after
// finalization and from invoice lookups.
type InvoiceDetail struct {
	Invoice
	Patient       *Patient                  `json:"patient"`
	Doctor        *User                     `json:"doctor"`
	CreatedByUser *User                     `json:"created_by_user"`
	Medications   []PrescriptionDetail      `json:"medications"`
	Services      []ServiceIndicationDetail `json:"services"`
}

type CreateInvoiceRequest struct {
	MedicalRecordID    uuid.UUID `json:"medical_record_id" binding:"required"`
	PatientID          uuid.UUID `json:"patient_id" binding:"required"`
	DoctorID           uuid.UUID `json:"doctor_id" binding:"required"`
	CreatedBy          uuid.UUID `json:"-"`
	ServiceSubtotal    *float64  `json:"service_subtotal" binding:"omitempty,gte=0"`
	MedicationSubtotal *float64  `json:"medication_subtotal" binding:"omitempty,gte=0"`
	TotalAmount        *float64  `json:"total_amount" binding:"required,gte=0"`
	DiscountAmount     *float64  `json:"discount_amount" binding:"omitempty,gte=0"`
	FinalAmount        *float64  `json:"final_amount" binding:"required,gte=0"`
	Notes              *string   `json:"notes"`
}
