package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/dermaclinic/clinic-api/internal/model"
)

// ErrDuplicate is returned by Create/Update when a unique column
// (username, email, phone, invoice medical_record_id) already holds the
// value. Services translate it into a conflict error.
var ErrDuplicate = errors.New("duplicate value for unique column")

// Page is the offset pagination contract shared by list queries.
type Page struct {
	Skip  int
	Limit int
}

// All lookup methods exclude soft-deleted rows (deleted_at IS NULL)
// unless documented otherwise. A missing row is returned as (nil, nil);
// services translate that into a not-found error.

type PatientRepository interface {
	Create(ctx context.Context, patient *model.Patient) error
	Get(ctx context.Context, id uuid.UUID) (*model.Patient, error)
	List(ctx context.Context, page Page) ([]*model.Patient, int, error)
	Search(ctx context.Context, term string, page Page) ([]*model.Patient, int, error)
	Update(ctx context.Context, patient *model.Patient) error
	SoftDelete(ctx context.Context, id uuid.UUID, ts time.Time) error
}

type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	Get(ctx context.Context, id uuid.UUID) (*model.User, error)
	GetByUsername(ctx context.Context, username string) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	GetByPhone(ctx context.Context, phone string) (*model.User, error)
	List(ctx context.Context, page Page) ([]*model.User, int, error)
	Search(ctx context.Context, term string, page Page) ([]*model.User, int, error)
	Update(ctx context.Context, user *model.User) error
	SoftDelete(ctx context.Context, id uuid.UUID, ts time.Time) error
}

type DoctorRepository interface {
	Create(ctx context.Context, doctor *model.Doctor) error
	GetByUser(ctx context.Context, userID uuid.UUID) (*model.Doctor, error)
	List(ctx context.Context, page Page) ([]*model.DoctorProfile, int, error)
	Update(ctx context.Context, doctor *model.Doctor) error
}

type AppointmentRepository interface {
	Create(ctx context.Context, apt *model.Appointment) error
	Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error)
	List(ctx context.Context, filters *model.AppointmentFilters, page Page) ([]*model.Appointment, int, error)
	Update(ctx context.Context, apt *model.Appointment) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status model.AppointmentStatus) error
}

type MedicalRecordRepository interface {
	Create(ctx context.Context, rec *model.MedicalRecord) error
	Get(ctx context.Context, id uuid.UUID) (*model.MedicalRecord, error)
	ListByPatient(ctx context.Context, patientID uuid.UUID, page Page) ([]*model.MedicalRecord, int, error)
	List(ctx context.Context, page Page) ([]*model.MedicalRecord, int, error)
	Update(ctx context.Context, rec *model.MedicalRecord) error
}

type MedicationRepository interface {
	Create(ctx context.Context, med *model.Medication) error
	Get(ctx context.Context, id uuid.UUID) (*model.Medication, error)
	List(ctx context.Context, page Page) ([]*model.Medication, int, error)
	Update(ctx context.Context, med *model.Medication) error
	SoftDelete(ctx context.Context, id uuid.UUID, ts time.Time) error
}

type ServiceRepository interface {
	Create(ctx context.Context, svc *model.Service) error
	Get(ctx context.Context, id uuid.UUID) (*model.Service, error)
	List(ctx context.Context, page Page) ([]*model.Service, int, error)
	Update(ctx context.Context, svc *model.Service) error
	SoftDelete(ctx context.Context, id uuid.UUID, ts time.Time) error
}

// PrescriptionReader is the narrow read surface the invoice engine and
// composition queries need.
type PrescriptionReader interface {
	GetByMedicalRecord(ctx context.Context, medicalRecordID uuid.UUID) (*model.Prescription, error)
}

type PrescriptionRepository interface {
	PrescriptionReader
	Get(ctx context.Context, id uuid.UUID) (*model.Prescription, error)
	List(ctx context.Context, page Page) ([]*model.Prescription, int, error)
}

type ServiceIndicationReader interface {
	GetByMedicalRecord(ctx context.Context, medicalRecordID uuid.UUID) (*model.ServiceIndication, error)
}

type ServiceIndicationRepository interface {
	ServiceIndicationReader
	Get(ctx context.Context, id uuid.UUID) (*model.ServiceIndication, error)
	List(ctx context.Context, page Page) ([]*model.ServiceIndication, int, error)
}

type InvoiceRepository interface {
	Get(ctx context.Context, id uuid.UUID) (*model.Invoice, error)
	GetByMedicalRecord(ctx context.Context, medicalRecordID uuid.UUID) (*model.Invoice, error)
	List(ctx context.Context, page Page) ([]*model.Invoice, int, error)
}

// PrescriptionTx is the write surface available while a prescription
// creation transaction is open. Catalog reads inside the transaction see
// the transaction's own snapshot.
type PrescriptionTx interface {
	CreatePrescription(ctx context.Context, p *model.Prescription) error
	Medication(ctx context.Context, id uuid.UUID) (*model.Medication, error)
	CreateDetail(ctx context.Context, d *model.PrescriptionDetail) error
}

type PrescriptionUnitOfWork interface {
	WithinTx(ctx context.Context, fn func(tx PrescriptionTx) error) error
}

// ServiceIndicationTx mirrors PrescriptionTx for the services catalog.
type ServiceIndicationTx interface {
	CreateIndication(ctx context.Context, si *model.ServiceIndication) error
	Service(ctx context.Context, id uuid.UUID) (*model.Service, error)
	CreateDetail(ctx context.Context, d *model.ServiceIndicationDetail) error
}

type ServiceIndicationUnitOfWork interface {
	WithinTx(ctx context.Context, fn func(tx ServiceIndicationTx) error) error
}

// InvoiceTx is the staged-write surface of one invoice finalization
// transaction. Every mutation is discarded unless WithinTx's callback
// returns nil and the commit succeeds.
type InvoiceTx interface {
	CreateInvoice(ctx context.Context, inv *model.Invoice) error
	PrescriptionByMedicalRecord(ctx context.Context, medicalRecordID uuid.UUID) (*model.Prescription, error)
	Medication(ctx context.Context, id uuid.UUID) (*model.Medication, error)
	UpdateMedicationStock(ctx context.Context, id uuid.UUID, quantity int) error
	MedicalRecord(ctx context.Context, id uuid.UUID) (*model.MedicalRecord, error)
	UpdateMedicalRecordStatus(ctx context.Context, id uuid.UUID, status model.MedicalRecordStatus) error
	Appointment(ctx context.Context, id uuid.UUID) (*model.Appointment, error)
	UpdateAppointmentStatus(ctx context.Context, id uuid.UUID, status model.AppointmentStatus) error
}

type InvoiceUnitOfWork interface {
	WithinTx(ctx context.Context, fn func(tx InvoiceTx) error) error
}
