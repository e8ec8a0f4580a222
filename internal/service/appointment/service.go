package appointment

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/dermaclinic/clinic-api/internal/email"
	"github.com/dermaclinic/clinic-api/internal/model"
	"github.com/dermaclinic/clinic-api/internal/repository"
	"github.com/dermaclinic/clinic-api/pkg/errors"
	"github.com/dermaclinic/clinic-api/pkg/logger"
)

type Service interface {
	Create(ctx context.Context, createdBy uuid.UUID, req *model.CreateAppointmentRequest) (*model.Appointment, error)
	Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error)
	List(ctx context.Context, filters *model.AppointmentFilters, page repository.Page) ([]*model.Appointment, int, error)
	Update(ctx context.Context, id uuid.UUID, req *model.UpdateAppointmentRequest) (*model.Appointment, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status model.AppointmentStatus) (*model.Appointment, error)
}

type service struct {
	appointments repository.AppointmentRepository
	patients     repository.PatientRepository
	users        repository.UserRepository
	policy       SchedulePolicy
	loc          *time.Location
	now          func() time.Time
	mailer       email.Sender
	logger       *logger.Logger
}

func NewService(
	appointments repository.AppointmentRepository,
	patients repository.PatientRepository,
	users repository.UserRepository,
	policy SchedulePolicy,
	loc *time.Location,
	mailer email.Sender,
	log *logger.Logger,
) Service {
	if loc == nil {
		loc = time.Local
	}
	return &service{
		appointments: appointments,
		patients:     patients,
		users:        users,
		policy:       policy,
		loc:          loc,
		now:          time.Now,
		mailer:       mailer,
		logger:       log,
	}
}

// validateSchedule compares calendar dates in the clinic's timezone, so a
// booking for today stays valid until the clinic's midnight, not UTC's.
func (s *service) validateSchedule(date time.Time, timeStr string) error {
	y, m, d := s.now().In(s.loc).Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, date.Location())
	if date.Before(today) {
		return errors.Validation("appointment date must not be in the past", nil)
	}
	clock, err := ParseClock(timeStr)
	if err != nil {
		return errors.Validation(err.Error(), nil)
	}
	if !s.policy.Allows(date, clock) {
		return errors.Validation(s.policy.Description(), nil)
	}
	return nil
}

func (s *service) Create(ctx context.Context, createdBy uuid.UUID, req *model.CreateAppointmentRequest) (*model.Appointment, error) {
	if err := s.validateSchedule(req.AppointmentDate, req.AppointmentTime); err != nil {
		return nil, err
	}

	patient, err := s.patients.Get(ctx, req.PatientID)
	if err != nil {
		return nil, errors.Internal(err)
	}
	if patient == nil {
		return nil, errors.NotFound("patient")
	}
	doctor, err := s.users.Get(ctx, req.DoctorID)
	if err != nil {
		return nil, errors.Internal(err)
	}
	if doctor == nil {
		return nil, errors.NotFound("doctor")
	}

	apt := &model.Appointment{
		ID:              uuid.New(),
		PatientID:       req.PatientID,
		DoctorID:        req.DoctorID,
		CreatedBy:       createdBy,
		AppointmentDate: req.AppointmentDate,
		AppointmentTime: req.AppointmentTime,
		TimeSlot:        req.TimeSlot,
		Status:          model.AppointmentStatusScheduled,
		Notes:           req.Notes,
		CreatedAt:       time.Now(),
	}
	if err := s.appointments.Create(ctx, apt); err != nil {
		return nil, errors.Internal(err)
	}
	s.logger.Info("appointment created", "appointment_id", apt.ID, "doctor_id", apt.DoctorID)

	if patient.Email != nil {
		s.sendConfirmation(apt, patient, doctor)
	}
	return apt, nil
}

// sendConfirmation is best effort. A mail failure never fails the booking.
func (s *service) sendConfirmation(apt *model.Appointment, patient *model.Patient, doctor *model.User) {
	err := s.mailer.SendAppointmentConfirmation(email.AppointmentConfirmation{
		To:          *patient.Email,
		PatientName: patient.FullName,
		DoctorName:  doctor.FullName,
		Date:        apt.AppointmentDate,
		Time:        apt.AppointmentTime,
	})
	if err != nil {
		s.logger.Warn("appointment confirmation email failed", "appointment_id", apt.ID, "error", err.Error())
	}
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	apt, err := s.appointments.Get(ctx, id)
	if err != nil {
		return nil, errors.Internal(err)
	}
	if apt == nil {
		return nil, errors.NotFound("appointment")
	}
	return apt, nil
}

func (s *service) List(ctx context.Context, filters *model.AppointmentFilters, page repository.Page) ([]*model.Appointment, int, error) {
	appointments, total, err := s.appointments.List(ctx, filters, page)
	if err != nil {
		return nil, 0, errors.Internal(err)
	}
	return appointments, total, nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, req *model.UpdateAppointmentRequest) (*model.Appointment, error) {
	apt, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.AppointmentDate != nil {
		apt.AppointmentDate = *req.AppointmentDate
	}
	if req.AppointmentTime != nil {
		apt.AppointmentTime = *req.AppointmentTime
	}
	if req.AppointmentDate != nil || req.AppointmentTime != nil {
		if err := s.validateSchedule(apt.AppointmentDate, apt.AppointmentTime); err != nil {
			return nil, err
		}
	}
	if req.TimeSlot != nil {
		apt.TimeSlot = *req.TimeSlot
	}
	if req.Status != nil {
		if !req.Status.Valid() {
			return nil, errors.Validation("invalid appointment status", nil)
		}
		apt.Status = *req.Status
	}
	if req.Notes != nil {
		apt.Notes = req.Notes
	}

	if err := s.appointments.Update(ctx, apt); err != nil {
		return nil, errors.Internal(err)
	}
	return apt, nil
}

func (s *service) UpdateStatus(ctx context.Context, id uuid.UUID, status model.AppointmentStatus) (*model.Appointment, error) {
	if !status.Valid() {
		return nil, errors.Validation("invalid appointment status", nil)
	}
	apt, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.appointments.UpdateStatus(ctx, id, status); err != nil {
		return nil, errors.Internal(err)
	}
	apt.Status = status
	return apt, nil
}
