package model

import (
	"time"

	"github.com/google/uuid"
)

// Prescription is the set of medications ordered for one medical record.
// Detail lines snapshot the medication name and price at order time;
// later catalog edits never alter historical orders.
type Prescription struct {
	ID              uuid.UUID            `db:"id" json:"id"`
	MedicalRecordID uuid.UUID            `db:"medical_record_id" json:"medical_record_id"`
	Notes           *string              `db:"notes" json:"notes,omitempty"`
	CreatedAt       time.Time            `db:"created_at" json:"created_at"`
	Medications     []PrescriptionDetail `json:"medications"`
}

type PrescriptionDetail struct {
	ID             uuid.UUID `db:"id" json:"id"`
	PrescriptionID uuid.UUID `db:"prescription_id" json:"prescription_id"`
	MedicationID   uuid.UUID `db:"medication_id" json:"medication_id"`
	Name           string    `db:"name" json:"name"`
	DosageForm     string    `db:"dosage_form" json:"dosage_form"`
	Quantity       int       `db:"quantity" json:"quantity"`
	Dosage         string    `db:"dosage" json:"dosage"`
	UnitPrice      float64   `db:"unit_price" json:"unit_price"`
	TotalPrice     float64   `db:"total_price" json:"total_price"`
}

type CreatePrescriptionRequest struct {
	MedicalRecordID uuid.UUID                         `json:"medical_record_id" binding:"required"`
	Notes           *string                           `json:"notes"`
	Details         []CreatePrescriptionDetailRequest `json:"prescription_details" binding:"dive"`
}

type CreatePrescriptionDetailRequest struct {
	MedicationID uuid.UUID `json:"medication_id" binding:"required"`
	Quantity     int       `json:"quantity" binding:"gte=0"`
	Dosage       string    `json:"dosage" binding:"max=255"`
}
