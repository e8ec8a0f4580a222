package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/dermaclinic/clinic-api/internal/model"
	"github.com/dermaclinic/clinic-api/internal/repository"
)

type patientRepository struct {
	db *sqlx.DB
}

func NewPatientRepository(db *sqlx.DB) repository.PatientRepository {
	return &patientRepository{db: db}
}

const patientColumns = `id, full_name, dob, gender, phone_number, email, address,
	medical_history, allergies, current_medications, current_condition, notes,
	created_at, deleted_at`

func (r *patientRepository) Create(ctx context.Context, patient *model.Patient) error {
	query := `
		INSERT INTO patients (id, full_name, dob, gender, phone_number, email, address,
			medical_history, allergies, current_medications, current_condition, notes, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`
	_, err := r.db.ExecContext(ctx, query,
		patient.ID,
		patient.FullName,
		patient.DOB,
		patient.Gender,
		patient.PhoneNumber,
		patient.Email,
		patient.Address,
		patient.MedicalHistory,
		patient.Allergies,
		patient.CurrentMedications,
		patient.CurrentCondition,
		patient.Notes,
		patient.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create patient: %w", err)
	}
	return nil
}

func (r *patientRepository) Get(ctx context.Context, id uuid.UUID) (*model.Patient, error) {
	query := fmt.Sprintf(`SELECT %s FROM patients WHERE id = $1 AND deleted_at IS NULL`, patientColumns)
	var patient model.Patient
	if err := r.db.GetContext(ctx, &patient, query, id); err != nil {
		return nil, noRows(err)
	}
	return &patient, nil
}

func (r *patientRepository) List(ctx context.Context, page repository.Page) ([]*model.Patient, int, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM patients
		WHERE deleted_at IS NULL
		ORDER BY created_at DESC
		OFFSET $1 LIMIT $2`, patientColumns)

	patients := []*model.Patient{}
	if err := r.db.SelectContext(ctx, &patients, query, page.Skip, page.Limit); err != nil {
		return nil, 0, fmt.Errorf("failed to list patients: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total,
		`SELECT COUNT(*) FROM patients WHERE deleted_at IS NULL`); err != nil {
		return nil, 0, fmt.Errorf("failed to count patients: %w", err)
	}
	return patients, total, nil
}

func (r *patientRepository) Search(ctx context.Context, term string, page repository.Page) ([]*model.Patient, int, error) {
	pattern := "%" + term + "%"
	query := fmt.Sprintf(`
		SELECT %s FROM patients
		WHERE deleted_at IS NULL AND (full_name ILIKE $1 OR phone_number ILIKE $1)
		ORDER BY created_at DESC
		OFFSET $2 LIMIT $3`, patientColumns)

	patients := []*model.Patient{}
	if err := r.db.SelectContext(ctx, &patients, query, pattern, page.Skip, page.Limit); err != nil {
		return nil, 0, fmt.Errorf("failed to search patients: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total,
		`SELECT COUNT(*) FROM patients WHERE deleted_at IS NULL AND (full_name ILIKE $1 OR phone_number ILIKE $1)`,
		pattern); err != nil {
		return nil, 0, fmt.Errorf("failed to count patients: %w", err)
	}
	return patients, total, nil
}

func (r *patientRepository) Update(ctx context.Context, patient *model.Patient) error {
	query := `
		UPDATE patients SET
			full_name = $1, dob = $2, gender = $3, phone_number = $4, email = $5,
			address = $6, medical_history = $7, allergies = $8,
			current_medications = $9, current_condition = $10, notes = $11
		WHERE id = $12 AND deleted_at IS NULL
	`
	_, err := r.db.ExecContext(ctx, query,
		patient.FullName,
		patient.DOB,
		patient.Gender,
		patient.PhoneNumber,
		patient.Email,
		patient.Address,
		patient.MedicalHistory,
		patient.Allergies,
		patient.CurrentMedications,
		patient.CurrentCondition,
		patient.Notes,
		patient.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update patient: %w", err)
	}
	return nil
}

func (r *patientRepository) SoftDelete(ctx context.Context, id uuid.UUID, ts time.Time) error {
	query := `UPDATE patients SET deleted_at = $1 WHERE id = $2 AND deleted_at IS NULL`
	_, err := r.db.ExecContext(ctx, query, ts, id)
	if err != nil {
		return fmt.Errorf("failed to delete patient: %w", err)
	}
	return nil
}
