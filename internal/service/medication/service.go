package medication

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/dermaclinic/clinic-api/internal/model"
	"github.com/dermaclinic/clinic-api/internal/repository"
	"github.com/dermaclinic/clinic-api/pkg/errors"
	"github.com/dermaclinic/clinic-api/pkg/logger"
)

type Service interface {
	Create(ctx context.Context, req *model.CreateMedicationRequest) (*model.Medication, error)
	Get(ctx context.Context, id uuid.UUID) (*model.Medication, error)
	List(ctx context.Context, page repository.Page) ([]*model.Medication, int, error)
	Update(ctx context.Context, id uuid.UUID, req *model.UpdateMedicationRequest) (*model.Medication, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type service struct {
	medications repository.MedicationRepository
	logger      *logger.Logger
}

func NewService(medications repository.MedicationRepository, log *logger.Logger) Service {
	return &service{medications: medications, logger: log}
}

func (s *service) Create(ctx context.Context, req *model.CreateMedicationRequest) (*model.Medication, error) {
	med := &model.Medication{
		Base: model.Base{
			ID:        uuid.New(),
			CreatedAt: time.Now(),
		},
		Name:          req.Name,
		DosageForm:    req.DosageForm,
		Price:         req.Price,
		StockQuantity: req.StockQuantity,
		Description:   req.Description,
	}
	if err := s.medications.Create(ctx, med); err != nil {
		return nil, errors.Internal(err)
	}
	s.logger.Info("medication created", "medication_id", med.ID, "name", med.Name)
	return med, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*model.Medication, error) {
	med, err := s.medications.Get(ctx, id)
	if err != nil {
		return nil, errors.Internal(err)
	}
	if med == nil {
		return nil, errors.NotFound("medication")
	}
	return med, nil
}

func (s *service) List(ctx context.Context, page repository.Page) ([]*model.Medication, int, error) {
	medications, total, err := s.medications.List(ctx, page)
	if err != nil {
		return nil, 0, errors.Internal(err)
	}
	return medications, total, nil
}

// Update edits catalog fields. Historical prescription lines keep their
// snapshot prices regardless of edits here.
func (s *service) Update(ctx context.Context, id uuid.UUID, req *model.UpdateMedicationRequest) (*model.Medication, error) {
	med, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		med.Name = *req.Name
	}
	if req.DosageForm != nil {
		med.DosageForm = *req.DosageForm
	}
	if req.Price != nil {
		med.Price = *req.Price
	}
	if req.StockQuantity != nil {
		med.StockQuantity = *req.StockQuantity
	}
	if req.Description != nil {
		med.Description = req.Description
	}

	if err := s.medications.Update(ctx, med); err != nil {
		return nil, errors.Internal(err)
	}
	return med, nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.medications.SoftDelete(ctx, id, time.Now()); err != nil {
		return errors.Internal(err)
	}
	s.logger.Info("medication deleted", "medication_id", id)
	return nil
}
