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

type medicationRepository struct {
	db *sqlx.DB
}

func NewMedicationRepository(db *sqlx.DB) repository.MedicationRepository {
	return &medicationRepository{db: db}
}

const medicationColumns = `id, name, dosage_form, price, stock_quantity, description,
	created_at, deleted_at`

func (r *medicationRepository) Create(ctx context.Context, med *model.Medication) error {
	query := `
		INSERT INTO medications (id, name, dosage_form, price, stock_quantity, description, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.db.ExecContext(ctx, query,
		med.ID,
		med.Name,
		med.DosageForm,
		med.Price,
		med.StockQuantity,
		med.Description,
		med.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create medication: %w", err)
	}
	return nil
}

func (r *medicationRepository) Get(ctx context.Context, id uuid.UUID) (*model.Medication, error) {
	query := fmt.Sprintf(`SELECT %s FROM medications WHERE id = $1 AND deleted_at IS NULL`, medicationColumns)
	var med model.Medication
	if err := r.db.GetContext(ctx, &med, query, id); err != nil {
		return nil, noRows(err)
	}
	return &med, nil
}

func (r *medicationRepository) List(ctx context.Context, page repository.Page) ([]*model.Medication, int, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM medications
		WHERE deleted_at IS NULL
		ORDER BY name
		OFFSET $1 LIMIT $2`, medicationColumns)

	meds := []*model.Medication{}
	if err := r.db.SelectContext(ctx, &meds, query, page.Skip, page.Limit); err != nil {
		return nil, 0, fmt.Errorf("failed to list medications: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total,
		`SELECT COUNT(*) FROM medications WHERE deleted_at IS NULL`); err != nil {
		return nil, 0, fmt.Errorf("failed to count medications: %w", err)
	}
	return meds, total, nil
}

func (r *medicationRepository) Update(ctx context.Context, med *model.Medication) error {
	query := `
		UPDATE medications SET
			name = $1, dosage_form = $2, price = $3, stock_quantity = $4, description = $5
		WHERE id = $6 AND deleted_at IS NULL
	`
	_, err := r.db.ExecContext(ctx, query,
		med.Name,
		med.DosageForm,
		med.Price,
		med.StockQuantity,
		med.Description,
		med.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update medication: %w", err)
	}
	return nil
}

func (r *medicationRepository) SoftDelete(ctx context.Context, id uuid.UUID, ts time.Time) error {
	query := `UPDATE medications SET deleted_at = $1 WHERE id = $2 AND deleted_at IS NULL`
	_, err := r.db.ExecContext(ctx, query, ts, id)
	if err != nil {
		return fmt.Errorf("failed to delete medication: %w", err)
	}
	return nil
}

type serviceRepository struct {
	db *sqlx.DB
}

func NewServiceRepository(db *sqlx.DB) repository.ServiceRepository {
	return &serviceRepository{db: db}
}

const serviceColumns = `id, name, price, description, created_at, deleted_at`

func (r *serviceRepository) Create(ctx context.Context, svc *model.Service) error {
	query := `
		INSERT INTO services (id, name, price, description, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := r.db.ExecContext(ctx, query,
		svc.ID,
		svc.Name,
		svc.Price,
		svc.Description,
		svc.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create service: %w", err)
	}
	return nil
}

func (r *serviceRepository) Get(ctx context.Context, id uuid.UUID) (*model.Service, error) {
	query := fmt.Sprintf(`SELECT %s FROM services WHERE id = $1 AND deleted_at IS NULL`, serviceColumns)
	var svc model.Service
	if err := r.db.GetContext(ctx, &svc, query, id); err != nil {
		return nil, noRows(err)
	}
	return &svc, nil
}

func (r *serviceRepository) List(ctx context.Context, page repository.Page) ([]*model.Service, int, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM services
		WHERE deleted_at IS NULL
		ORDER BY name
		OFFSET $1 LIMIT $2`, serviceColumns)

	services := []*model.Service{}
	if err := r.db.SelectContext(ctx, &services, query, page.Skip, page.Limit); err != nil {
		return nil, 0, fmt.Errorf("failed to list services: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total,
		`SELECT COUNT(*) FROM services WHERE deleted_at IS NULL`); err != nil {
		return nil, 0, fmt.Errorf("failed to count services: %w", err)
	}
	return services, total, nil
}

func (r *serviceRepository) Update(ctx context.Context, svc *model.Service) error {
	query := `
		UPDATE services SET name = $1, price = $2, description = $3
		WHERE id = $4 AND deleted_at IS NULL
	`
	_, err := r.db.ExecContext(ctx, query, svc.Name, svc.Price, svc.Description, svc.ID)
	if err != nil {
		return fmt.Errorf("failed to update service: %w", err)
	}
	return nil
}

func (r *serviceRepository) SoftDelete(ctx context.Context, id uuid.UUID, ts time.Time) error {
	query := `UPDATE services SET deleted_at = $1 WHERE id = $2 AND deleted_at IS NULL`
	_, err := r.db.ExecContext(ctx, query, ts, id)
	if err != nil {
		return fmt.Errorf("failed to delete service: %w", err)
	}
	return nil
}
