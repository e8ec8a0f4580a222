package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/dermaclinic/clinic-api/internal/model"
	"github.com/dermaclinic/clinic-api/internal/repository"
)

type prescriptionRepository struct {
	BaseRepository
}

func NewPrescriptionRepository(db *sqlx.DB) *prescriptionRepository {
	return &prescriptionRepository{BaseRepository: NewBaseRepository(db)}
}

var (
	_ repository.PrescriptionRepository = (*prescriptionRepository)(nil)
	_ repository.PrescriptionUnitOfWork = (*prescriptionRepository)(nil)
)

const prescriptionColumns = `id, medical_record_id, notes, created_at`
const prescriptionDetailColumns = `id, prescription_id, medication_id, name,
	dosage_form, quantity, dosage, unit_price, total_price`

func (r *prescriptionRepository) Get(ctx context.Context, id uuid.UUID) (*model.Prescription, error) {
	return r.getWhere(ctx, "id", id)
}

func (r *prescriptionRepository) GetByMedicalRecord(ctx context.Context, medicalRecordID uuid.UUID) (*model.Prescription, error) {
	return r.getWhere(ctx, "medical_record_id", medicalRecordID)
}

func (r *prescriptionRepository) getWhere(ctx context.Context, column string, value interface{}) (*model.Prescription, error) {
	query := fmt.Sprintf(`SELECT %s FROM prescriptions WHERE %s = $1`, prescriptionColumns, column)
	var p model.Prescription
	if err := r.db.GetContext(ctx, &p, query, value); err != nil {
		return nil, noRows(err)
	}

	details, err := r.details(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	p.Medications = details
	return &p, nil
}

func (r *prescriptionRepository) details(ctx context.Context, prescriptionID uuid.UUID) ([]model.PrescriptionDetail, error) {
	query := fmt.Sprintf(`SELECT %s FROM prescription_details WHERE prescription_id = $1`, prescriptionDetailColumns)
	details := []model.PrescriptionDetail{}
	if err := r.db.SelectContext(ctx, &details, query, prescriptionID); err != nil {
		return nil, fmt.Errorf("failed to load prescription details: %w", err)
	}
	return details, nil
}

func (r *prescriptionRepository) List(ctx context.Context, page repository.Page) ([]*model.Prescription, int, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM prescriptions
		ORDER BY created_at DESC
		OFFSET $1 LIMIT $2`, prescriptionColumns)

	prescriptions := []*model.Prescription{}
	if err := r.db.SelectContext(ctx, &prescriptions, query, page.Skip, page.Limit); err != nil {
		return nil, 0, fmt.Errorf("failed to list prescriptions: %w", err)
	}
	for _, p := range prescriptions {
		details, err := r.details(ctx, p.ID)
		if err != nil {
			return nil, 0, err
		}
		p.Medications = details
	}

	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM prescriptions`); err != nil {
		return nil, 0, fmt.Errorf("failed to count prescriptions: %w", err)
	}
	return prescriptions, total, nil
}

// WithinTx opens the prescription-creation unit of work.
func (r *prescriptionRepository) WithinTx(ctx context.Context, fn func(tx repository.PrescriptionTx) error) error {
	return r.WithTx(ctx, func(tx *sqlx.Tx) error {
		return fn(&prescriptionTx{tx: tx})
	})
}

type prescriptionTx struct {
	tx *sqlx.Tx
}

func (t *prescriptionTx) CreatePrescription(ctx context.Context, p *model.Prescription) error {
	query := `
		INSERT INTO prescriptions (id, medical_record_id, notes, created_at)
		VALUES ($1, $2, $3, $4)
	`
	_, err := t.tx.ExecContext(ctx, query, p.ID, p.MedicalRecordID, p.Notes, p.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return repository.ErrDuplicate
		}
		return fmt.Errorf("failed to create prescription: %w", err)
	}
	return nil
}

func (t *prescriptionTx) Medication(ctx context.Context, id uuid.UUID) (*model.Medication, error) {
	query := fmt.Sprintf(`SELECT %s FROM medications WHERE id = $1 AND deleted_at IS NULL`, medicationColumns)
	var med model.Medication
	if err := t.tx.GetContext(ctx, &med, query, id); err != nil {
		return nil, noRows(err)
	}
	return &med, nil
}

func (t *prescriptionTx) CreateDetail(ctx context.Context, d *model.PrescriptionDetail) error {
	query := `
		INSERT INTO prescription_details (id, prescription_id, medication_id, name,
			dosage_form, quantity, dosage, unit_price, total_price)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := t.tx.ExecContext(ctx, query,
		d.ID,
		d.PrescriptionID,
		d.MedicationID,
		d.Name,
		d.DosageForm,
		d.Quantity,
		d.Dosage,
		d.UnitPrice,
		d.TotalPrice,
	)
	if err != nil {
		return fmt.Errorf("failed to create prescription detail: %w", err)
	}
	return nil
}
