package model

import (
	"time"

	"github.com/google/uuid"
)

type AppointmentStatus string

const (
	AppointmentStatusScheduled AppointmentStatus = "SCHEDULED"
	AppointmentStatusWaiting   AppointmentStatus = "WAITING"
	AppointmentStatusCompleted AppointmentStatus = "COMPLETED"
	AppointmentStatusCancelled AppointmentStatus = "CANCELLED"
)

func (s AppointmentStatus) Valid() bool {
	switch s {
	case AppointmentStatusScheduled, AppointmentStatusWaiting,
		AppointmentStatusCompleted, AppointmentStatusCancelled:
		return true
	}
	return false
}

// Appointment is a scheduled visit. AppointmentTime is a wall-clock
// "HH:MM" value; AppointmentDate carries the calendar day.
type Appointment struct {
	ID              uuid.UUID         `db:"id" json:"id"`
	PatientID       uuid.UUID         `db:"patient_id" json:"patient_id"`
	DoctorID        uuid.UUID         `db:"doctor_id" json:"doctor_id"`
	CreatedBy       uuid.UUID         `db:"created_by" json:"created_by"`
	AppointmentDate time.Time         `db:"appointment_date" json:"appointment_date"`
	AppointmentTime string            `db:"appointment_time" json:"appointment_time"`
	TimeSlot        string            `db:"time_slot" json:"time_slot"`
	Status          AppointmentStatus `db:"status" json:"status"`
	Notes           *string           `db:"notes" json:"notes,omitempty"`
	CreatedAt       time.Time         `db:"created_at" json:"created_at"`
}

type CreateAppointmentRequest struct {
	PatientID       uuid.UUID `json:"patient_id" binding:"required"`
	DoctorID        uuid.UUID `json:"doctor_id" binding:"required"`
	AppointmentDate time.Time `json:"appointment_date" binding:"required"`
	AppointmentTime string    `json:"appointment_time" binding:"required"`
	TimeSlot        string    `json:"time_slot" binding:"required"`
	Notes           *string   `json:"notes"`
}

type UpdateAppointmentRequest struct {
	AppointmentDate *time.Time         `json:"appointment_date"`
	AppointmentTime *string            `json:"appointment_time"`
	TimeSlot        *string            `json:"time_slot"`
	Status          *AppointmentStatus `json:"status"`
	Notes           *string            `json:"notes"`
}

type AppointmentFilters struct {
	PatientID uuid.UUID
	DoctorID  uuid.UUID
	Status    AppointmentStatus
	Date      *time.Time
}
