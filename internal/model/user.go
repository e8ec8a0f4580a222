package model

import (
	"time"

	"github.com/google/uuid"
)

type UserRole string

const (
	RoleAdmin  UserRole = "ADMIN"
	RoleDoctor UserRole = "DOCTOR"
	RoleStaff  UserRole = "STAFF"
)

func (r UserRole) Valid() bool {
	switch r {
	case RoleAdmin, RoleDoctor, RoleStaff:
		return true
	}
	return false
}

type Gender string

const (
	GenderMale   Gender = "MALE"
	GenderFemale Gender = "FEMALE"
)

// User is a clinic account (admin, doctor or staff).
type User struct {
	Base
	Username     string     `db:"username" json:"username"`
	PasswordHash string     `db:"password" json:"-"`
	FullName     string     `db:"full_name" json:"full_name"`
	DOB          *time.Time `db:"dob" json:"dob,omitempty"`
	Gender       *Gender    `db:"gender" json:"gender,omitempty"`
	PhoneNumber  string     `db:"phone_number" json:"phone_number"`
	Email        string     `db:"email" json:"email"`
	Role         UserRole   `db:"role" json:"role"`
	Avatar       *string    `db:"avatar" json:"avatar,omitempty"`
	IsActive     bool       `db:"is_active" json:"is_active"`
}

// Doctor is the 1:1 professional profile of a user with the DOCTOR role.
type Doctor struct {
	ID             uuid.UUID `db:"id" json:"id"`
	UserID         uuid.UUID `db:"user_id" json:"user_id"`
	Specialization *string   `db:"specialization" json:"specialization,omitempty"`
}

// DoctorProfile is the composed doctor listing (user + profile).
type DoctorProfile struct {
	Doctor
	User *User `json:"user"`
}

type CreateUserRequest struct {
	Username    string     `json:"username" binding:"required,min=3,max=64"`
	Password    string     `json:"password" binding:"required,min=8"`
	FullName    string     `json:"full_name" binding:"max=255"`
	DOB         *time.Time `json:"dob"`
	Gender      *Gender    `json:"gender" binding:"omitempty,oneof=MALE FEMALE"`
	PhoneNumber string     `json:"phone_number" binding:"required"`
	Email       string     `json:"email" binding:"required,email"`
	Role        UserRole   `json:"role" binding:"required,oneof=ADMIN DOCTOR STAFF"`
	Avatar      *string    `json:"avatar"`
}

type UpdateUserRequest struct {
	FullName    *string    `json:"full_name"`
	DOB         *time.Time `json:"dob"`
	Gender      *Gender    `json:"gender" binding:"omitempty,oneof=MALE FEMALE"`
	PhoneNumber *string    `json:"phone_number"`
	Email       *string    `json:"email" binding:"omitempty,email"`
	Role        *UserRole  `json:"role" binding:"omitempty,oneof=ADMIN DOCTOR STAFF"`
	Avatar      *string    `json:"avatar"`
	IsActive    *bool      `json:"is_active"`
}

type CreateDoctorRequest struct {
	UserID         uuid.UUID `json:"user_id" binding:"required"`
	Specialization *string   `json:"specialization"`
}
