package model

import "time"

// Patient is a clinic patient. Soft-deleted, never removed.
type Patient struct {
	Base
	FullName           string     `db:"full_name" json:"full_name"`
	DOB                *time.Time `db:"dob" json:"dob,omitempty"`
	Gender             *Gender    `db:"gender" json:"gender,omitempty"`
	PhoneNumber        string     `db:"phone_number" json:"phone_number"`
	Email              *string    `db:"email" json:"email,omitempty"`
	Address            *string    `db:"address" json:"address,omitempty"`
	MedicalHistory     *string    `db:"medical_history" json:"medical_history,omitempty"`
	Allergies          *string    `db:"allergies" json:"allergies,omitempty"`
	CurrentMedications *string    `db:"current_medications" json:"current_medications,omitempty"`
	CurrentCondition   *string    `db:"current_condition" json:"current_condition,omitempty"`
	Notes              *string    `db:"notes" json:"notes,omitempty"`
}

type CreatePatientRequest struct {
	FullName           string     `json:"full_name" binding:"required,max=255"`
	DOB                *time.Time `json:"dob"`
	Gender             *Gender    `json:"gender" binding:"omitempty,oneof=MALE FEMALE"`
	PhoneNumber        string     `json:"phone_number" binding:"required"`
	Email              *string    `json:"email" binding:"omitempty,email"`
	Address            *string    `json:"address"`
	MedicalHistory     *string    `json:"medical_history"`
	Allergies          *string    `json:"allergies"`
	CurrentMedications *string    `json:"current_medications"`
	CurrentCondition   *string    `json:"current_condition"`
	Notes              *string    `json:"notes"`
}

type UpdatePatientRequest struct {
	FullName           *string    `json:"full_name"`
	DOB                *time.Time `json:"dob"`
	Gender             *Gender    `json:"gender" binding:"omitempty,oneof=MALE FEMALE"`
	PhoneNumber        *string    `json:"phone_number"`
	Email              *string    `json:"email" binding:"omitempty,email"`
	Address            *string    `json:"address"`
	MedicalHistory     *string    `json:"medical_history"`
	Allergies          *string    `json:"allergies"`
	CurrentMedications *string    `json:"current_medications"`
	CurrentCondition   *string    `json:"current_condition"`
	Notes              *string    `json:"notes"`
}
