package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/dermaclinic/clinic-api/internal/model"
	"github.com/dermaclinic/clinic-api/internal/repository"
)

type invoiceRepository struct {
	BaseRepository
}

func NewInvoiceRepository(db *sqlx.DB) *invoiceRepository {
	return &invoiceRepository{BaseRepository: NewBaseRepository(db)}
}

var (
	_ repository.InvoiceRepository = (*invoiceRepository)(nil)
	_ repository.InvoiceUnitOfWork = (*invoiceRepository)(nil)
)

const invoiceColumns = `id, medical_record_id, patient_id, doctor_id, created_by,
	service_subtotal, medication_subtotal, total_amount, discount_amount,
	final_amount, notes, created_at`

func (r *invoiceRepository) Get(ctx context.Context, id uuid.UUID) (*model.Invoice, error) {
	query := fmt.Sprintf(`SELECT %s FROM invoices WHERE id = $1`, invoiceColumns)
	var inv model.Invoice
	if err := r.db.GetContext(ctx, &inv, query, id); err != nil {
		return nil, noRows(err)
	}
	return &inv, nil
}

func (r *invoiceRepository) GetByMedicalRecord(ctx context.Context, medicalRecordID uuid.UUID) (*model.Invoice, error) {
	query := fmt.Sprintf(`SELECT %s FROM invoices WHERE medical_record_id = $1`, invoiceColumns)
	var inv model.Invoice
	if err := r.db.GetContext(ctx, &inv, query, medicalRecordID); err != nil {
		return nil, noRows(err)
	}
	return &inv, nil
}

func (r *invoiceRepository) List(ctx context.Context, page repository.Page) ([]*model.Invoice, int, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM invoices
		ORDER BY created_at DESC
		OFFSET $1 LIMIT $2`, invoiceColumns)

	invoices := []*model.Invoice{}
	if err := r.db.SelectContext(ctx, &invoices, query, page.Skip, page.Limit); err != nil {
		return nil, 0, fmt.Errorf("failed to list invoices: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM invoices`); err != nil {
		return nil, 0, fmt.Errorf("failed to count invoices: %w", err)
	}
	return invoices, total, nil
}

// WithinTx opens the finalization unit of work. All reads inside observe
// the transaction's own uncommitted writes.
func (r *invoiceRepository) WithinTx(ctx context.Context, fn func(tx repository.InvoiceTx) error) error {
	return r.WithTx(ctx, func(tx *sqlx.Tx) error {
		return fn(&invoiceTx{tx: tx})
	})
}

type invoiceTx struct {
	tx *sqlx.Tx
}

func (t *invoiceTx) CreateInvoice(ctx context.Context, inv *model.Invoice) error {
	query := `
		INSERT INTO invoices (id, medical_record_id, patient_id, doctor_id, created_by,
			service_subtotal, medication_subtotal, total_amount, discount_amount,
			final_amount, notes, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	_, err := t.tx.ExecContext(ctx, query,
		inv.ID,
		inv.MedicalRecordID,
		inv.PatientID,
		inv.DoctorID,
		inv.CreatedBy,
		inv.ServiceSubtotal,
		inv.MedicationSubtotal,
		inv.TotalAmount,
		inv.DiscountAmount,
		inv.FinalAmount,
		inv.Notes,
		inv.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return repository.ErrDuplicate
		}
		return fmt.Errorf("failed to create invoice: %w", err)
	}
	return nil
}

func (t *invoiceTx) PrescriptionByMedicalRecord(ctx context.Context, medicalRecordID uuid.UUID) (*model.Prescription, error) {
	query := fmt.Sprintf(`SELECT %s FROM prescriptions WHERE medical_record_id = $1`, prescriptionColumns)
	var p model.Prescription
	if err := t.tx.GetContext(ctx, &p, query, medicalRecordID); err != nil {
		return nil, noRows(err)
	}

	detailQuery := fmt.Sprintf(`SELECT %s FROM prescription_details WHERE prescription_id = $1`, prescriptionDetailColumns)
	details := []model.PrescriptionDetail{}
	if err := t.tx.SelectContext(ctx, &details, detailQuery, p.ID); err != nil {
		return nil, fmt.Errorf("failed to load prescription details: %w", err)
	}
	p.Medications = details
	return &p, nil
}

func (t *invoiceTx) Medication(ctx context.Context, id uuid.UUID) (*model.Medication, error) {
	query := fmt.Sprintf(`SELECT %s FROM medications WHERE id = $1 AND deleted_at IS NULL`, medicationColumns)
	var med model.Medication
	if err := t.tx.GetContext(ctx, &med, query, id); err != nil {
		return nil, noRows(err)
	}
	return &med, nil
}

func (t *invoiceTx) UpdateMedicationStock(ctx context.Context, id uuid.UUID, quantity int) error {
	query := `UPDATE medications SET stock_quantity = $1 WHERE id = $2 AND deleted_at IS NULL`
	_, err := t.tx.ExecContext(ctx, query, quantity, id)
	if err != nil {
		return fmt.Errorf("failed to update medication stock: %w", err)
	}
	return nil
}

func (t *invoiceTx) MedicalRecord(ctx context.Context, id uuid.UUID) (*model.MedicalRecord, error) {
	query := fmt.Sprintf(`SELECT %s FROM medical_records WHERE id = $1`, medicalRecordColumns)
	var rec model.MedicalRecord
	if err := t.tx.GetContext(ctx, &rec, query, id); err != nil {
		return nil, noRows(err)
	}
	return &rec, nil
}

func (t *invoiceTx) UpdateMedicalRecordStatus(ctx context.Context, id uuid.UUID, status model.MedicalRecordStatus) error {
	query := `UPDATE medical_records SET status = $1 WHERE id = $2`
	_, err := t.tx.ExecContext(ctx, query, status, id)
	if err != nil {
		return fmt.Errorf("failed to update medical record status: %w", err)
	}
	return nil
}

func (t *invoiceTx) Appointment(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	query := fmt.Sprintf(`SELECT %s FROM appointments WHERE id = $1`, appointmentColumns)
	var apt model.Appointment
	if err := t.tx.GetContext(ctx, &apt, query, id); err != nil {
		return nil, noRows(err)
	}
	return &apt, nil
}

func (t *invoiceTx) UpdateAppointmentStatus(ctx context.Context, id uuid.UUID, status model.AppointmentStatus) error {
	query := `UPDATE appointments SET status = $1 WHERE id = $2`
	_, err := t.tx.ExecContext(ctx, query, status, id)
	if err != nil {
		return fmt.Errorf("failed to update appointment status: %w", err)
	}
	return nil
}
