package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/dermaclinic/clinic-api/internal/model"
	"github.com/dermaclinic/clinic-api/internal/repository"
)

type serviceIndicationRepository struct {
	BaseRepository
}

func NewServiceIndicationRepository(db *sqlx.DB) *serviceIndicationRepository {
	return &serviceIndicationRepository{BaseRepository: NewBaseRepository(db)}
}

var (
	_ repository.ServiceIndicationRepository = (*serviceIndicationRepository)(nil)
	_ repository.ServiceIndicationUnitOfWork = (*serviceIndicationRepository)(nil)
)

const indicationColumns = `id, medical_record_id, notes, created_at`
const indicationDetailColumns = `id, service_indication_id, service_id, name,
	quantity, unit_price, total_price`

func (r *serviceIndicationRepository) Get(ctx context.Context, id uuid.UUID) (*model.ServiceIndication, error) {
	return r.getWhere(ctx, "id", id)
}

func (r *serviceIndicationRepository) GetByMedicalRecord(ctx context.Context, medicalRecordID uuid.UUID) (*model.ServiceIndication, error) {
	return r.getWhere(ctx, "medical_record_id", medicalRecordID)
}

func (r *serviceIndicationRepository) getWhere(ctx context.Context, column string, value interface{}) (*model.ServiceIndication, error) {
	query := fmt.Sprintf(`SELECT %s FROM service_indications WHERE %s = $1`, indicationColumns, column)
	var si model.ServiceIndication
	if err := r.db.GetContext(ctx, &si, query, value); err != nil {
		return nil, noRows(err)
	}

	details, err := r.details(ctx, si.ID)
	if err != nil {
		return nil, err
	}
	si.Services = details
	return &si, nil
}

func (r *serviceIndicationRepository) details(ctx context.Context, indicationID uuid.UUID) ([]model.ServiceIndicationDetail, error) {
	query := fmt.Sprintf(`SELECT %s FROM service_indication_details WHERE service_indication_id = $1`, indicationDetailColumns)
	details := []model.ServiceIndicationDetail{}
	if err := r.db.SelectContext(ctx, &details, query, indicationID); err != nil {
		return nil, fmt.Errorf("failed to load service indication details: %w", err)
	}
	return details, nil
}

func (r *serviceIndicationRepository) List(ctx context.Context, page repository.Page) ([]*model.ServiceIndication, int, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM service_indications
		ORDER BY created_at DESC
		OFFSET $1 LIMIT $2`, indicationColumns)

	indications := []*model.ServiceIndication{}
	if err := r.db.SelectContext(ctx, &indications, query, page.Skip, page.Limit); err != nil {
		return nil, 0, fmt.Errorf("failed to list service indications: %w", err)
	}
	for _, si := range indications {
		details, err := r.details(ctx, si.ID)
		if err != nil {
			return nil, 0, err
		}
		si.Services = details
	}

	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM service_indications`); err != nil {
		return nil, 0, fmt.Errorf("failed to count service indications: %w", err)
	}
	return indications, total, nil
}

// WithinTx opens the service-indication creation unit of work.
func (r *serviceIndicationRepository) WithinTx(ctx context.Context, fn func(tx repository.ServiceIndicationTx) error) error {
	return r.WithTx(ctx, func(tx *sqlx.Tx) error {
		return fn(&serviceIndicationTx{tx: tx})
	})
}

type serviceIndicationTx struct {
	tx *sqlx.Tx
}

func (t *serviceIndicationTx) CreateIndication(ctx context.Context, si *model.ServiceIndication) error {
	query := `
		INSERT INTO service_indications (id, medical_record_id, notes, created_at)
		VALUES ($1, $2, $3, $4)
	`
	_, err := t.tx.ExecContext(ctx, query, si.ID, si.MedicalRecordID, si.Notes, si.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return repository.ErrDuplicate
		}
		return fmt.Errorf("failed to create service indication: %w", err)
	}
	return nil
}

func (t *serviceIndicationTx) Service(ctx context.Context, id uuid.UUID) (*model.Service, error) {
	query := fmt.Sprintf(`SELECT %s FROM services WHERE id = $1 AND deleted_at IS NULL`, serviceColumns)
	var svc model.Service
	if err := t.tx.GetContext(ctx, &svc, query, id); err != nil {
		return nil, noRows(err)
	}
	return &svc, nil
}

func (t *serviceIndicationTx) CreateDetail(ctx context.Context, d *model.ServiceIndicationDetail) error {
	query := `
		INSERT INTO service_indication_details (id, service_indication_id, service_id,
			name, quantity, unit_price, total_price)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := t.tx.ExecContext(ctx, query,
		d.ID,
		d.ServiceIndicationID,
		d.ServiceID,
		d.Name,
		d.Quantity,
		d.UnitPrice,
		d.TotalPrice,
	)
	if err != nil {
		return fmt.Errorf("failed to create service indication detail: %w", err)
	}
	return nil
}
