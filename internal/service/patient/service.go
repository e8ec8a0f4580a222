package patient

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dermaclinic/clinic-api/internal/model"
	"github.com/dermaclinic/clinic-api/internal/repository"
	"github.com/dermaclinic/clinic-api/pkg/errors"
	"github.com/dermaclinic/clinic-api/pkg/logger"
)

type Service interface {
	Create(ctx context.Context, req *model.CreatePatientRequest) (*model.Patient, error)
	Get(ctx context.Context, id uuid.UUID) (*model.Patient, error)
	List(ctx context.Context, page repository.Page) ([]*model.Patient, int, error)
	Search(ctx context.Context, term string, page repository.Page) ([]*model.Patient, int, error)
	Update(ctx context.Context, id uuid.UUID, req *model.UpdatePatientRequest) (*model.Patient, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type service struct {
	patients repository.PatientRepository
	logger   *logger.Logger
}

func NewService(patients repository.PatientRepository, log *logger.Logger) Service {
	return &service{patients: patients, logger: log}
}

func (s *service) Create(ctx context.Context, req *model.CreatePatientRequest) (*model.Patient, error) {
	p := &model.Patient{
		Base: model.Base{
			ID:        uuid.New(),
			CreatedAt: time.Now(),
		},
		FullName:           req.FullName,
		DOB:                req.DOB,
		Gender:             req.Gender,
		PhoneNumber:        req.PhoneNumber,
		Email:              req.Email,
		Address:            req.Address,
		MedicalHistory:     req.MedicalHistory,
		Allergies:          req.Allergies,
		CurrentMedications: req.CurrentMedications,
		CurrentCondition:   req.CurrentCondition,
		Notes:              req.Notes,
	}
	if err := s.patients.Create(ctx, p); err != nil {
		return nil, errors.Internal(err)
	}
	s.logger.Info("patient created", "patient_id", p.ID)
	return p, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*model.Patient, error) {
	p, err := s.patients.Get(ctx, id)
	if err != nil {
		return nil, errors.Internal(err)
	}
	if p == nil {
		return nil, errors.NotFound("patient")
	}
	return p, nil
}

func (s *service) List(ctx context.Context, page repository.Page) ([]*model.Patient, int, error) {
	patients, total, err := s.patients.List(ctx, page)
	if err != nil {
		return nil, 0, errors.Internal(err)
	}
	return patients, total, nil
}

func (s *service) Search(ctx context.Context, term string, page repository.Page) ([]*model.Patient, int, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return s.List(ctx, page)
	}
	patients, total, err := s.patients.Search(ctx, term, page)
	if err != nil {
		return nil, 0, errors.Internal(err)
	}
	return patients, total, nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, req *model.UpdatePatientRequest) (*model.Patient, error) {
	p, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.FullName != nil {
		p.FullName = *req.FullName
	}
	if req.DOB != nil {
		p.DOB = req.DOB
	}
	if req.Gender != nil {
		p.Gender = req.Gender
	}
	if req.PhoneNumber != nil {
		p.PhoneNumber = *req.PhoneNumber
	}
	if req.Email != nil {
		p.Email = req.Email
	}
	if req.Address != nil {
		p.Address = req.Address
	}
	if req.MedicalHistory != nil {
		p.MedicalHistory = req.MedicalHistory
	}
	if req.Allergies != nil {
		p.Allergies = req.Allergies
	}
	if req.CurrentMedications != nil {
		p.CurrentMedications = req.CurrentMedications
	}
	if req.CurrentCondition != nil {
		p.CurrentCondition = req.CurrentCondition
	}
	if req.Notes != nil {
		p.Notes = req.Notes
	}

	if err := s.patients.Update(ctx, p); err != nil {
		return nil, errors.Internal(err)
	}
	return p, nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.patients.SoftDelete(ctx, id, time.Now()); err != nil {
		return errors.Internal(err)
	}
	s.logger.Info("patient deleted", "patient_id", id)
	return nil
}
