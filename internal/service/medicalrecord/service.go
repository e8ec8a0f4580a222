package medicalrecord

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
	Create(ctx context.Context, req *model.CreateMedicalRecordRequest) (*model.MedicalRecord, error)
	Get(ctx context.Context, id uuid.UUID) (*model.MedicalRecord, error)
	ListByPatient(ctx context.Context, patientID uuid.UUID, page repository.Page) ([]*model.MedicalRecord, int, error)
	List(ctx context.Context, page repository.Page) ([]*model.MedicalRecord, int, error)
	Update(ctx context.Context, id uuid.UUID, req *model.UpdateMedicalRecordRequest) (*model.MedicalRecord, error)
}

type service struct {
	records      repository.MedicalRecordRepository
	patients     repository.PatientRepository
	appointments repository.AppointmentRepository
	logger       *logger.Logger
}

func NewService(
	records repository.MedicalRecordRepository,
	patients repository.PatientRepository,
	appointments repository.AppointmentRepository,
	log *logger.Logger,
) Service {
	return &service{
		records:      records,
		patients:     patients,
		appointments: appointments,
		logger:       log,
	}
}

func (s *service) Create(ctx context.Context, req *model.CreateMedicalRecordRequest) (*model.MedicalRecord, error) {
	patient, err := s.patients.Get(ctx, req.PatientID)
	if err != nil {
		return nil, errors.Internal(err)
	}
	if patient == nil {
		return nil, errors.NotFound("patient")
	}

	if req.AppointmentID != nil {
		apt, err := s.appointments.Get(ctx, *req.AppointmentID)
		if err != nil {
			return nil, errors.Internal(err)
		}
		if apt == nil {
			return nil, errors.NotFound("appointment")
		}
	}

	rec := &model.MedicalRecord{
		ID:            uuid.New(),
		PatientID:     req.PatientID,
		DoctorID:      req.DoctorID,
		AppointmentID: req.AppointmentID,
		Symptoms:      req.Symptoms,
		Diagnosis:     req.Diagnosis,
		Status:        model.MedicalRecordStatusInProgress,
		Notes:         req.Notes,
		CreatedAt:     time.Now(),
	}
	if err := s.records.Create(ctx, rec); err != nil {
		return nil, errors.Internal(err)
	}
	s.logger.Info("medical record created", "medical_record_id", rec.ID, "patient_id", rec.PatientID)
	return rec, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*model.MedicalRecord, error) {
	rec, err := s.records.Get(ctx, id)
	if err != nil {
		return nil, errors.Internal(err)
	}
	if rec == nil {
		return nil, errors.NotFound("medical record")
	}
	return rec, nil
}

func (s *service) ListByPatient(ctx context.Context, patientID uuid.UUID, page repository.Page) ([]*model.MedicalRecord, int, error) {
	records, total, err := s.records.ListByPatient(ctx, patientID, page)
	if err != nil {
		return nil, 0, errors.Internal(err)
	}
	return records, total, nil
}

func (s *service) List(ctx context.Context, page repository.Page) ([]*model.MedicalRecord, int, error) {
	records, total, err := s.records.List(ctx, page)
	if err != nil {
		return nil, 0, errors.Internal(err)
	}
	return records, total, nil
}

// Update edits clinical fields. The PAID status is written only by
// invoice finalization, never through this path.
func (s *service) Update(ctx context.Context, id uuid.UUID, req *model.UpdateMedicalRecordRequest) (*model.MedicalRecord, error) {
	rec, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Status != nil {
		if !req.Status.Valid() {
			return nil, errors.Validation("invalid medical record status", nil)
		}
		if *req.Status == model.MedicalRecordStatusPaid {
			return nil, errors.Conflict("PAID status is set by invoice finalization only")
		}
		if rec.Status == model.MedicalRecordStatusPaid {
			return nil, errors.Conflict("medical record has already been paid")
		}
		rec.Status = *req.Status
	}
	if req.Symptoms != nil {
		rec.Symptoms = req.Symptoms
	}
	if req.Diagnosis != nil {
		rec.Diagnosis = req.Diagnosis
	}
	if req.Notes != nil {
		rec.Notes = req.Notes
	}

	if err := s.records.Update(ctx, rec); err != nil {
		return nil, errors.Internal(err)
	}
	return rec, nil
}
