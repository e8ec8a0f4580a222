// Package indication creates and reads service orders for medical records.
// Detail lines snapshot the service name and unit price at order time.
package indication

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/google/uuid"

	"github.com/dermaclinic/clinic-api/internal/model"
	"github.com/dermaclinic/clinic-api/internal/repository"
	"github.com/dermaclinic/clinic-api/pkg/errors"
	"github.com/dermaclinic/clinic-api/pkg/logger"
)

type Service interface {
	Create(ctx context.Context, req *model.CreateServiceIndicationRequest) (*model.ServiceIndication, error)
	Get(ctx context.Context, id uuid.UUID) (*model.ServiceIndication, error)
	GetByMedicalRecord(ctx context.Context, medicalRecordID uuid.UUID) (*model.ServiceIndication, error)
	List(ctx context.Context, page repository.Page) ([]*model.ServiceIndication, int, error)
}

type service struct {
	uow         repository.ServiceIndicationUnitOfWork
	indications repository.ServiceIndicationRepository
	records     repository.MedicalRecordRepository
	logger      *logger.Logger
}

func NewService(
	uow repository.ServiceIndicationUnitOfWork,
	indications repository.ServiceIndicationRepository,
	records repository.MedicalRecordRepository,
	log *logger.Logger,
) Service {
	return &service{
		uow:         uow,
		indications: indications,
		records:     records,
		logger:      log,
	}
}

func (s *service) Create(ctx context.Context, req *model.CreateServiceIndicationRequest) (*model.ServiceIndication, error) {
	rec, err := s.records.Get(ctx, req.MedicalRecordID)
	if err != nil {
		return nil, errors.Internal(err)
	}
	if rec == nil {
		return nil, errors.NotFound("medical record")
	}

	si := &model.ServiceIndication{
		ID:              uuid.New(),
		MedicalRecordID: req.MedicalRecordID,
		Notes:           req.Notes,
		CreatedAt:       time.Now(),
		Services:        []model.ServiceIndicationDetail{},
	}

	err = s.uow.WithinTx(ctx, func(tx repository.ServiceIndicationTx) error {
		if err := tx.CreateIndication(ctx, si); err != nil {
			return err
		}
		for _, line := range req.Details {
			svc, err := tx.Service(ctx, line.ServiceID)
			if err != nil {
				return err
			}
			if svc == nil {
				return errors.NotFound("service")
			}
			detail := model.ServiceIndicationDetail{
				ID:                  uuid.New(),
				ServiceIndicationID: si.ID,
				ServiceID:           svc.ID,
				Name:                svc.Name,
				Quantity:            line.Quantity,
				UnitPrice:           svc.Price,
				TotalPrice:          svc.Price * float64(line.Quantity),
			}
			if err := tx.CreateDetail(ctx, &detail); err != nil {
				return err
			}
			si.Services = append(si.Services, detail)
		}
		return nil
	})
	if err != nil {
		s.logger.Error(err, "service indication creation failed", "medical_record_id", req.MedicalRecordID)
		if stderrors.Is(err, repository.ErrDuplicate) {
			return nil, errors.Conflict("a service indication already exists for this medical record")
		}
		if errors.IsKind(err, errors.KindNotFound) {
			return nil, err
		}
		return nil, errors.Internal(err)
	}
	return si, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*model.ServiceIndication, error) {
	si, err := s.indications.Get(ctx, id)
	if err != nil {
		return nil, errors.Internal(err)
	}
	if si == nil {
		return nil, errors.NotFound("service indication")
	}
	return si, nil
}

func (s *service) GetByMedicalRecord(ctx context.Context, medicalRecordID uuid.UUID) (*model.ServiceIndication, error) {
	si, err := s.indications.GetByMedicalRecord(ctx, medicalRecordID)
	if err != nil {
		return nil, errors.Internal(err)
	}
	if si == nil {
		return nil, errors.NotFound("service indication")
	}
	return si, nil
}

func (s *service) List(ctx context.Context, page repository.Page) ([]*model.ServiceIndication, int, error) {
	indications, total, err := s.indications.List(ctx, page)
	if err != nil {
		return nil, 0, errors.Internal(err)
	}
	return indications, total, nil
}
