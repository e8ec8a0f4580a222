package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/dermaclinic/clinic-api/internal/model"
	"github.com/dermaclinic/clinic-api/internal/repository"
)

type medicalRecordRepository struct {
	db *sqlx.DB
}

func NewMedicalRecordRepository(db *sqlx.DB) repository.MedicalRecordRepository {
	return &medicalRecordRepository{db: db}
}

const medicalRecordColumns = `id, patient_id, doctor_id, appointment_id, symptoms,
	diagnosis, status, notes, created_at`

func (r *medicalRecordRepository) Create(ctx context.Context, rec *model.MedicalRecord) error {
	query := `
		INSERT INTO medical_records (id, patient_id, doctor_id, appointment_id,
			symptoms, diagnosis, status, notes, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := r.db.ExecContext(ctx, query,
		rec.ID,
		rec.PatientID,
		rec.DoctorID,
		rec.AppointmentID,
		rec.Symptoms,
		rec.Diagnosis,
		rec.Status,
		rec.Notes,
		rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create medical record: %w", err)
	}
	return nil
}

func (r *medicalRecordRepository) Get(ctx context.Context, id uuid.UUID) (*model.MedicalRecord, error) {
	query := fmt.Sprintf(`SELECT %s FROM medical_records WHERE id = $1`, medicalRecordColumns)
	var rec model.MedicalRecord
	if err := r.db.GetContext(ctx, &rec, query, id); err != nil {
		return nil, noRows(err)
	}
	return &rec, nil
}

func (r *medicalRecordRepository) ListByPatient(ctx context.Context, patientID uuid.UUID, page repository.Page) ([]*model.MedicalRecord, int, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM medical_records
		WHERE patient_id = $1
		ORDER BY created_at DESC
		OFFSET $2 LIMIT $3`, medicalRecordColumns)

	records := []*model.MedicalRecord{}
	if err := r.db.SelectContext(ctx, &records, query, patientID, page.Skip, page.Limit); err != nil {
		return nil, 0, fmt.Errorf("failed to list medical records: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total,
		`SELECT COUNT(*) FROM medical_records WHERE patient_id = $1`, patientID); err != nil {
		return nil, 0, fmt.Errorf("failed to count medical records: %w", err)
	}
	return records, total, nil
}

func (r *medicalRecordRepository) List(ctx context.Context, page repository.Page) ([]*model.MedicalRecord, int, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM medical_records
		ORDER BY created_at DESC
		OFFSET $1 LIMIT $2`, medicalRecordColumns)

	records := []*model.MedicalRecord{}
	if err := r.db.SelectContext(ctx, &records, query, page.Skip, page.Limit); err != nil {
		return nil, 0, fmt.Errorf("failed to list medical records: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM medical_records`); err != nil {
		return nil, 0, fmt.Errorf("failed to count medical records: %w", err)
	}
	return records, total, nil
}

func (r *medicalRecordRepository) Update(ctx context.Context, rec *model.MedicalRecord) error {
	query := `
		UPDATE medical_records SET
			symptoms = $1, diagnosis = $2, status = $3, notes = $4
		WHERE id = $5
	`
	_, err := r.db.ExecContext(ctx, query,
		rec.Symptoms,
		rec.Diagnosis,
		rec.Status,
		rec.Notes,
		rec.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update medical record: %w", err)
	}
	return nil
}
