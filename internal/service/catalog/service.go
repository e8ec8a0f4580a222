// Package catalog manages the billable services catalog.
package catalog

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
	Create(ctx context.Context, req *model.CreateServiceRequest) (*model.Service, error)
	Get(ctx context.Context, id uuid.UUID) (*model.Service, error)
	List(ctx context.Context, page repository.Page) ([]*model.Service, int, error)
	Update(ctx context.Context, id uuid.UUID, req *model.UpdateServiceRequest) (*model.Service, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type service struct {
	services repository.ServiceRepository
	logger   *logger.Logger
}

func NewService(services repository.ServiceRepository, log *logger.Logger) Service {
	return &service{services: services, logger: log}
}

func (s *service) Create(ctx context.Context, req *model.CreateServiceRequest) (*model.Service, error) {
	svc := &model.Service{
		Base: model.Base{
			ID:        uuid.New(),
			CreatedAt: time.Now(),
		},
		Name:        req.Name,
		Price:       req.Price,
		Description: req.Description,
	}
	if err := s.services.Create(ctx, svc); err != nil {
		return nil, errors.Internal(err)
	}
	s.logger.Info("service created", "service_id", svc.ID, "name", svc.Name)
	return svc, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*model.Service, error) {
	svc, err := s.services.Get(ctx, id)
	if err != nil {
		return nil, errors.Internal(err)
	}
	if svc == nil {
		return nil, errors.NotFound("service")
	}
	return svc, nil
}

func (s *service) List(ctx context.Context, page repository.Page) ([]*model.Service, int, error) {
	services, total, err := s.services.List(ctx, page)
	if err != nil {
		return nil, 0, errors.Internal(err)
	}
	return services, total, nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, req *model.UpdateServiceRequest) (*model.Service, error) {
	svc, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		svc.Name = *req.Name
	}
	if req.Price != nil {
		svc.Price = *req.Price
	}
	if req.Description != nil {
		svc.Description = req.Description
	}

	if err := s.services.Update(ctx, svc); err != nil {
		return nil, errors.Internal(err)
	}
	return svc, nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.services.SoftDelete(ctx, id, time.Now()); err != nil {
		return errors.Internal(err)
	}
	s.logger.Info("service deleted", "service_id", id)
	return nil
}
