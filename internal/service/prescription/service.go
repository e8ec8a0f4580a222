// Package prescription creates and reads medication orders. Detail lines
// snapshot the medication name, dosage form and unit price at order time.
package prescription

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
	Create(ctx context.Context, req *model.CreatePrescriptionRequest) (*model.Prescription, error)
	Get(ctx context.Context, id uuid.UUID) (*model.Prescription, error)
	GetByMedicalRecord(ctx context.Context, medicalRecordID uuid.UUID) (*model.Prescription, error)
	List(ctx context.Context, page repository.Page) ([]*model.Prescription, int, error)
}

type service struct {
	uow           repository.PrescriptionUnitOfWork
	prescriptions repository.PrescriptionRepository
	records       repository.MedicalRecordRepository
	logger        *logger.Logger
}

func NewService(
	uow repository.PrescriptionUnitOfWork,
	prescriptions repository.PrescriptionRepository,
	records repository.MedicalRecordRepository,
	log *logger.Logger,
) Service {
	return &service{
		uow:           uow,
		prescriptions: prescriptions,
		records:       records,
		logger:        log,
	}
}

// Create writes the prescription header and its detail lines atomically.
// Creation does not touch stock; stock moves only at invoice finalization.
func (s *service) Create(ctx context.Context, req *model.CreatePrescriptionRequest) (*model.Prescription, error) {
	rec, err := s.records.Get(ctx, req.MedicalRecordID)
	if err != nil {
		return nil, errors.Internal(err)
	}
	if rec == nil {
		return nil, errors.NotFound("medical record")
	}

	p := &model.Prescription{
		ID:              uuid.New(),
		MedicalRecordID: req.MedicalRecordID,
		Notes:           req.Notes,
		CreatedAt:       time.Now(),
		Medications:     []model.PrescriptionDetail{},
	}

	err = s.uow.WithinTx(ctx, func(tx repository.PrescriptionTx) error {
		if err := tx.CreatePrescription(ctx, p); err != nil {
			return err
		}
		for _, line := range req.Details {
			med, err := tx.Medication(ctx, line.MedicationID)
			if err != nil {
				return err
			}
			if med == nil {
				return errors.NotFound("medication")
			}
			detail := model.PrescriptionDetail{
				ID:             uuid.New(),
				PrescriptionID: p.ID,
				MedicationID:   med.ID,
				Name:           med.Name,
				DosageForm:     med.DosageForm,
				Quantity:       line.Quantity,
				Dosage:         line.Dosage,
				UnitPrice:      med.Price,
				TotalPrice:     med.Price * float64(line.Quantity),
			}
			if err := tx.CreateDetail(ctx, &detail); err != nil {
				return err
			}
			p.Medications = append(p.Medications, detail)
		}
		return nil
	})
	if err != nil {
		s.logger.Error(err, "prescription creation failed", "medical_record_id", req.MedicalRecordID)
		if stderrors.Is(err, repository.ErrDuplicate) {
			return nil, errors.Conflict("a prescription already exists for this medical record")
		}
		if errors.IsKind(err, errors.KindNotFound) {
			return nil, err
		}
		return nil, errors.Internal(err)
	}
	return p, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*model.Prescription, error) {
	p, err := s.prescriptions.Get(ctx, id)
	if err != nil {
		return nil, errors.Internal(err)
	}
	if p == nil {
		return nil, errors.NotFound("prescription")
	}
	return p, nil
}

func (s *service) GetByMedicalRecord(ctx context.Context, medicalRecordID uuid.UUID) (*model.Prescription, error) {
	p, err := s.prescriptions.GetByMedicalRecord(ctx, medicalRecordID)
	if err != nil {
		return nil, errors.Internal(err)
	}
	if p == nil {
		return nil, errors.NotFound("prescription")
	}
	return p, nil
}

func (s *service) List(ctx context.Context, page repository.Page) ([]*model.Prescription, int, error) {
	prescriptions, total, err := s.prescriptions.List(ctx, page)
	if err != nil {
		return nil, 0, errors.Internal(err)
	}
	return prescriptions, total, nil
}
