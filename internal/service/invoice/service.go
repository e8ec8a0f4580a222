// Package invoice implements invoice finalization. Finalization settles a
// medical record: it creates the invoice, decrements medication stock for
// every prescribed line, marks the record PAID and completes the linked
// appointment, all inside one transaction.
package invoice

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
	Create(ctx context.Context, req *model.CreateInvoiceRequest) (*model.InvoiceDetail, error)
	Get(ctx context.Context, id uuid.UUID) (*model.InvoiceDetail, error)
	GetByMedicalRecord(ctx context.Context, medicalRecordID uuid.UUID) (*model.InvoiceDetail, error)
	List(ctx context.Context, page repository.Page) ([]*model.Invoice, int, error)
}

type service struct {
	uow           repository.InvoiceUnitOfWork
	invoices      repository.InvoiceRepository
	patients      repository.PatientRepository
	users         repository.UserRepository
	prescriptions repository.PrescriptionReader
	indications   repository.ServiceIndicationReader
	logger        *logger.Logger
}

func NewService(
	uow repository.InvoiceUnitOfWork,
	invoices repository.InvoiceRepository,
	patients repository.PatientRepository,
	users repository.UserRepository,
	prescriptions repository.PrescriptionReader,
	indications repository.ServiceIndicationReader,
	log *logger.Logger,
) Service {
	return &service{
		uow:           uow,
		invoices:      invoices,
		patients:      patients,
		users:         users,
		prescriptions: prescriptions,
		indications:   indications,
		logger:        log,
	}
}

// Create finalizes the medical record identified by req.MedicalRecordID.
// The record must reference an existing appointment. Any failure rolls
// back every staged write, including the stock decrements already applied
// for earlier prescription lines.
func (s *service) Create(ctx context.Context, req *model.CreateInvoiceRequest) (*model.InvoiceDetail, error) {
	inv := &model.Invoice{
		ID:                 uuid.New(),
		MedicalRecordID:    req.MedicalRecordID,
		PatientID:          req.PatientID,
		DoctorID:           req.DoctorID,
		CreatedBy:          req.CreatedBy,
		ServiceSubtotal:    req.ServiceSubtotal,
		MedicationSubtotal: req.MedicationSubtotal,
		TotalAmount:        *req.TotalAmount,
		DiscountAmount:     req.DiscountAmount,
		FinalAmount:        *req.FinalAmount,
		Notes:              req.Notes,
		CreatedAt:          time.Now(),
	}

	err := s.uow.WithinTx(ctx, func(tx repository.InvoiceTx) error {
		rec, err := tx.MedicalRecord(ctx, req.MedicalRecordID)
		if err != nil {
			return errors.Internal(err)
		}
		if rec == nil {
			return errors.NotFound("medical record")
		}
		if !rec.Status.Payable() {
			return errors.Conflict("medical record has already been paid")
		}

		if err := tx.CreateInvoice(ctx, inv); err != nil {
			if stderrors.Is(err, repository.ErrDuplicate) {
				return errors.Conflict("an invoice already exists for this medical record")
			}
			return errors.Internal(err)
		}

		if err := s.dispenseMedications(ctx, tx, req.MedicalRecordID); err != nil {
			return err
		}

		if err := tx.UpdateMedicalRecordStatus(ctx, rec.ID, model.MedicalRecordStatusPaid); err != nil {
			return errors.Internal(err)
		}

		if rec.AppointmentID == nil {
			return errors.NotFound("appointment")
		}
		apt, err := tx.Appointment(ctx, *rec.AppointmentID)
		if err != nil {
			return errors.Internal(err)
		}
		if apt == nil {
			return errors.NotFound("appointment")
		}
		if err := tx.UpdateAppointmentStatus(ctx, apt.ID, model.AppointmentStatusCompleted); err != nil {
			return errors.Internal(err)
		}
		return nil
	})
	if err != nil {
		s.logger.Error(err, "invoice finalization failed", "medical_record_id", req.MedicalRecordID)
		var appErr *errors.AppError
		if stderrors.As(err, &appErr) {
			return nil, appErr
		}
		return nil, errors.Internal(err)
	}

	s.logger.Info("invoice finalized", "invoice_id", inv.ID, "medical_record_id", inv.MedicalRecordID)
	return s.compose(ctx, inv)
}

// dispenseMedications decrements stock for every line of the record's
// prescription. A record without a prescription finalizes services only.
func (s *service) dispenseMedications(ctx context.Context, tx repository.InvoiceTx, medicalRecordID uuid.UUID) error {
	pres, err := tx.PrescriptionByMedicalRecord(ctx, medicalRecordID)
	if err != nil {
		return errors.Internal(err)
	}
	if pres == nil {
		return nil
	}

	for _, line := range pres.Medications {
		med, err := tx.Medication(ctx, line.MedicationID)
		if err != nil {
			return errors.Internal(err)
		}
		if med == nil {
			return errors.NotFound("medication")
		}
		if med.StockQuantity < line.Quantity {
			return errors.InsufficientStock(med.Name)
		}
		if err := tx.UpdateMedicationStock(ctx, med.ID, med.StockQuantity-line.Quantity); err != nil {
			return errors.Internal(err)
		}
	}
	return nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*model.InvoiceDetail, error) {
	inv, err := s.invoices.Get(ctx, id)
	if err != nil {
		return nil, errors.Internal(err)
	}
	if inv == nil {
		return nil, errors.NotFound("invoice")
	}
	return s.compose(ctx, inv)
}

func (s *service) GetByMedicalRecord(ctx context.Context, medicalRecordID uuid.UUID) (*model.InvoiceDetail, error) {
	inv, err := s.invoices.GetByMedicalRecord(ctx, medicalRecordID)
	if err != nil {
		return nil, errors.Internal(err)
	}
	if inv == nil {
		return nil, errors.NotFound("invoice")
	}
	return s.compose(ctx, inv)
}

func (s *service) List(ctx context.Context, page repository.Page) ([]*model.Invoice, int, error) {
	invoices, total, err := s.invoices.List(ctx, page)
	if err != nil {
		return nil, 0, errors.Internal(err)
	}
	return invoices, total, nil
}

// compose assembles the full read model. Related rows deleted after
// finalization simply come back nil; the invoice itself is immutable.
func (s *service) compose(ctx context.Context, inv *model.Invoice) (*model.InvoiceDetail, error) {
	detail := &model.InvoiceDetail{
		Invoice:     *inv,
		Medications: []model.PrescriptionDetail{},
		Services:    []model.ServiceIndicationDetail{},
	}

	patient, err := s.patients.Get(ctx, inv.PatientID)
	if err != nil {
		return nil, errors.Internal(err)
	}
	detail.Patient = patient

	doctor, err := s.users.Get(ctx, inv.DoctorID)
	if err != nil {
		return nil, errors.Internal(err)
	}
	detail.Doctor = doctor

	creator, err := s.users.Get(ctx, inv.CreatedBy)
	if err != nil {
		return nil, errors.Internal(err)
	}
	detail.CreatedByUser = creator

	pres, err := s.prescriptions.GetByMedicalRecord(ctx, inv.MedicalRecordID)
	if err != nil {
		return nil, errors.Internal(err)
	}
	if pres != nil {
		detail.Medications = pres.Medications
	}

	ind, err := s.indications.GetByMedicalRecord(ctx, inv.MedicalRecordID)
	if err != nil {
		return nil, errors.Internal(err)
	}
	if ind != nil {
		detail.Services = ind.Services
	}
	return detail, nil
}
