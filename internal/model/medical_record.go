package model

import (
	"time"

	"github.com/google/uuid"
)

type MedicalRecordStatus string

// PAID is part of the formal variant set; it is written exclusively by
// invoice finalization.
const (
	MedicalRecordStatusInProgress MedicalRecordStatus = "IN_PROGRESS"
	MedicalRecordStatusCompleted  MedicalRecordStatus = "COMPLETED"
	MedicalRecordStatusPaid       MedicalRecordStatus = "PAID"
)

func (s MedicalRecordStatus) Valid() bool {
	switch s {
	case MedicalRecordStatusInProgress, MedicalRecordStatusCompleted, MedicalRecordStatusPaid:
		return true
	}
	return false
}

// Payable reports whether a record in this status may still be settled.
// Only IN_PROGRESS and COMPLETED records can transition to PAID.
func (s MedicalRecordStatus) Payable() bool {
	return s == MedicalRecordStatusInProgress || s == MedicalRecordStatusCompleted
}

// MedicalRecord documents one clinical encounter.
type MedicalRecord struct {
	ID            uuid.UUID           `db:"id" json:"id"`
	PatientID     uuid.UUID           `db:"patient_id" json:"patient_id"`
	DoctorID      uuid.UUID           `db:"doctor_id" json:"doctor_id"`
	AppointmentID *uuid.UUID          `db:"appointment_id" json:"appointment_id,omitempty"`
	Symptoms      *string             `db:"symptoms" json:"symptoms,omitempty"`
	Diagnosis     *string             `db:"diagnosis" json:"diagnosis,omitempty"`
	Status        MedicalRecordStatus `db:"status" json:"status"`
	Notes         *string             `db:"notes" json:"notes,omitempty"`
	CreatedAt     time.Time           `db:"created_at" json:"created_at"`
}

type CreateMedicalRecordRequest struct {
	PatientID     uuid.UUID  `json:"patient_id" binding:"required"`
	DoctorID      uuid.UUID  `json:"doctor_id" binding:"required"`
	AppointmentID *uuid.UUID `json:"appointment_id"`
	Symptoms      *string    `json:"symptoms"`
	Diagnosis     *string    `json:"diagnosis"`
	Notes         *string    `json:"notes"`
}

type UpdateMedicalRecordRequest struct {
	Symptoms  *string              `json:"symptoms"`
	Diagnosis *string              `json:"diagnosis"`
	Status    *MedicalRecordStatus `json:"status"`
	Notes     *string              `json:"notes"`
}
