package invoice

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dermaclinic/clinic-api/internal/model"
	"github.com/dermaclinic/clinic-api/internal/repository"
	"github.com/dermaclinic/clinic-api/pkg/errors"
	"github.com/dermaclinic/clinic-api/pkg/logger"
)

// fakeStore is an in-memory stand-in for the invoice tables. WithinTx
// works on a deep copy and publishes it only when the callback succeeds,
// matching the all-or-nothing commit the engine relies on.
type fakeStore struct {
	invoices      map[uuid.UUID]*model.Invoice
	byRecord      map[uuid.UUID]uuid.UUID
	prescriptions map[uuid.UUID]*model.Prescription
	medications   map[uuid.UUID]*model.Medication
	records       map[uuid.UUID]*model.MedicalRecord
	appointments  map[uuid.UUID]*model.Appointment
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		invoices:      map[uuid.UUID]*model.Invoice{},
		byRecord:      map[uuid.UUID]uuid.UUID{},
		prescriptions: map[uuid.UUID]*model.Prescription{},
		medications:   map[uuid.UUID]*model.Medication{},
		records:       map[uuid.UUID]*model.MedicalRecord{},
		appointments:  map[uuid.UUID]*model.Appointment{},
	}
}

func (s *fakeStore) clone() *fakeStore {
	c := newFakeStore()
	for k, v := range s.invoices {
		inv := *v
		c.invoices[k] = &inv
	}
	for k, v := range s.byRecord {
		c.byRecord[k] = v
	}
	for k, v := range s.prescriptions {
		p := *v
		p.Medications = append([]model.PrescriptionDetail{}, v.Medications...)
		c.prescriptions[k] = &p
	}
	for k, v := range s.medications {
		m := *v
		c.medications[k] = &m
	}
	for k, v := range s.records {
		r := *v
		c.records[k] = &r
	}
	for k, v := range s.appointments {
		a := *v
		c.appointments[k] = &a
	}
	return c
}

func (s *fakeStore) WithinTx(_ context.Context, fn func(tx repository.InvoiceTx) error) error {
	staged := s.clone()
	if err := fn(&fakeTx{store: staged}); err != nil {
		return err
	}
	*s = *staged
	return nil
}

func (s *fakeStore) Get(_ context.Context, id uuid.UUID) (*model.Invoice, error) {
	return s.invoices[id], nil
}

func (s *fakeStore) GetByMedicalRecord(_ context.Context, recordID uuid.UUID) (*model.Invoice, error) {
	id, ok := s.byRecord[recordID]
	if !ok {
		return nil, nil
	}
	return s.invoices[id], nil
}

func (s *fakeStore) List(_ context.Context, _ repository.Page) ([]*model.Invoice, int, error) {
	out := []*model.Invoice{}
	for _, inv := range s.invoices {
		out = append(out, inv)
	}
	return out, len(out), nil
}

type fakeTx struct {
	store *fakeStore
}

func (t *fakeTx) CreateInvoice(_ context.Context, inv *model.Invoice) error {
	if _, exists := t.store.byRecord[inv.MedicalRecordID]; exists {
		return repository.ErrDuplicate
	}
	copied := *inv
	t.store.invoices[inv.ID] = &copied
	t.store.byRecord[inv.MedicalRecordID] = inv.ID
	return nil
}

func (t *fakeTx) PrescriptionByMedicalRecord(_ context.Context, recordID uuid.UUID) (*model.Prescription, error) {
	return t.store.prescriptions[recordID], nil
}

func (t *fakeTx) Medication(_ context.Context, id uuid.UUID) (*model.Medication, error) {
	med, ok := t.store.medications[id]
	if !ok || med.IsDeleted() {
		return nil, nil
	}
	return med, nil
}

func (t *fakeTx) UpdateMedicationStock(_ context.Context, id uuid.UUID, quantity int) error {
	t.store.medications[id].StockQuantity = quantity
	return nil
}

func (t *fakeTx) MedicalRecord(_ context.Context, id uuid.UUID) (*model.MedicalRecord, error) {
	return t.store.records[id], nil
}

func (t *fakeTx) UpdateMedicalRecordStatus(_ context.Context, id uuid.UUID, status model.MedicalRecordStatus) error {
	t.store.records[id].Status = status
	return nil
}

func (t *fakeTx) Appointment(_ context.Context, id uuid.UUID) (*model.Appointment, error) {
	return t.store.appointments[id], nil
}

func (t *fakeTx) UpdateAppointmentStatus(_ context.Context, id uuid.UUID, status model.AppointmentStatus) error {
	t.store.appointments[id].Status = status
	return nil
}

type fakePatients struct {
	patients map[uuid.UUID]*model.Patient
}

func (f *fakePatients) Create(context.Context, *model.Patient) error { return nil }
func (f *fakePatients) Get(_ context.Context, id uuid.UUID) (*model.Patient, error) {
	return f.patients[id], nil
}
func (f *fakePatients) List(context.Context, repository.Page) ([]*model.Patient, int, error) {
	return nil, 0, nil
}
func (f *fakePatients) Search(context.Context, string, repository.Page) ([]*model.Patient, int, error) {
	return nil, 0, nil
}
func (f *fakePatients) Update(context.Context, *model.Patient) error { return nil }
func (f *fakePatients) SoftDelete(context.Context, uuid.UUID, time.Time) error {
	return nil
}

type fakeUsers struct {
	users map[uuid.UUID]*model.User
}

func (f *fakeUsers) Create(context.Context, *model.User) error { return nil }
func (f *fakeUsers) Get(_ context.Context, id uuid.UUID) (*model.User, error) {
	return f.users[id], nil
}
func (f *fakeUsers) GetByUsername(context.Context, string) (*model.User, error) { return nil, nil }
func (f *fakeUsers) GetByEmail(context.Context, string) (*model.User, error)    { return nil, nil }
func (f *fakeUsers) GetByPhone(context.Context, string) (*model.User, error)    { return nil, nil }
func (f *fakeUsers) List(context.Context, repository.Page) ([]*model.User, int, error) {
	return nil, 0, nil
}
func (f *fakeUsers) Search(context.Context, string, repository.Page) ([]*model.User, int, error) {
	return nil, 0, nil
}
func (f *fakeUsers) Update(context.Context, *model.User) error { return nil }
func (f *fakeUsers) SoftDelete(context.Context, uuid.UUID, time.Time) error {
	return nil
}

type fakePrescriptionReader struct {
	store *fakeStore
}

func (f *fakePrescriptionReader) GetByMedicalRecord(_ context.Context, recordID uuid.UUID) (*model.Prescription, error) {
	return f.store.prescriptions[recordID], nil
}

type fakeIndicationReader struct {
	indications map[uuid.UUID]*model.ServiceIndication
}

func (f *fakeIndicationReader) GetByMedicalRecord(_ context.Context, recordID uuid.UUID) (*model.ServiceIndication, error) {
	return f.indications[recordID], nil
}

type fixture struct {
	store   *fakeStore
	service Service

	patientID     uuid.UUID
	doctorID      uuid.UUID
	staffID       uuid.UUID
	recordID      uuid.UUID
	appointmentID uuid.UUID
	medicationID  uuid.UUID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		store:         newFakeStore(),
		patientID:     uuid.New(),
		doctorID:      uuid.New(),
		staffID:       uuid.New(),
		recordID:      uuid.New(),
		appointmentID: uuid.New(),
		medicationID:  uuid.New(),
	}

	f.store.records[f.recordID] = &model.MedicalRecord{
		ID:            f.recordID,
		PatientID:     f.patientID,
		DoctorID:      f.doctorID,
		AppointmentID: &f.appointmentID,
		Status:        model.MedicalRecordStatusCompleted,
	}
	f.store.appointments[f.appointmentID] = &model.Appointment{
		ID:     f.appointmentID,
		Status: model.AppointmentStatusWaiting,
	}
	f.store.medications[f.medicationID] = &model.Medication{
		Base:          model.Base{ID: f.medicationID},
		Name:          "Amoxicillin",
		DosageForm:    "capsule",
		Price:         2.5,
		StockQuantity: 10,
	}
	f.store.prescriptions[f.recordID] = &model.Prescription{
		ID:              uuid.New(),
		MedicalRecordID: f.recordID,
		Medications: []model.PrescriptionDetail{
			{
				ID:           uuid.New(),
				MedicationID: f.medicationID,
				Name:         "Amoxicillin",
				Quantity:     4,
				UnitPrice:    2.5,
				TotalPrice:   10,
			},
		},
	}

	patients := &fakePatients{patients: map[uuid.UUID]*model.Patient{
		f.patientID: {Base: model.Base{ID: f.patientID}, FullName: "Jane Roe"},
	}}
	users := &fakeUsers{users: map[uuid.UUID]*model.User{
		f.doctorID: {Base: model.Base{ID: f.doctorID}, FullName: "Gregory House", Role: model.RoleDoctor},
		f.staffID:  {Base: model.Base{ID: f.staffID}, FullName: "Front Desk", Role: model.RoleStaff},
	}}

	log := logger.NewLogger(&logger.Config{Output: io.Discard})
	f.service = NewService(
		f.store, f.store, patients, users,
		&fakePrescriptionReader{store: f.store},
		&fakeIndicationReader{indications: map[uuid.UUID]*model.ServiceIndication{}},
		log,
	)
	return f
}

func (f *fixture) request() *model.CreateInvoiceRequest {
	total := 10.0
	final := 10.0
	return &model.CreateInvoiceRequest{
		MedicalRecordID: f.recordID,
		PatientID:       f.patientID,
		DoctorID:        f.doctorID,
		CreatedBy:       f.staffID,
		TotalAmount:     &total,
		FinalAmount:     &final,
	}
}

func TestCreateFinalizesRecordAndAppointment(t *testing.T) {
	f := newFixture(t)

	detail, err := f.service.Create(context.Background(), f.request())
	require.NoError(t, err)

	assert.Equal(t, 6, f.store.medications[f.medicationID].StockQuantity)
	assert.Equal(t, model.MedicalRecordStatusPaid, f.store.records[f.recordID].Status)
	assert.Equal(t, model.AppointmentStatusCompleted, f.store.appointments[f.appointmentID].Status)

	require.NotNil(t, detail.Patient)
	assert.Equal(t, "Jane Roe", detail.Patient.FullName)
	require.NotNil(t, detail.Doctor)
	assert.Equal(t, "Gregory House", detail.Doctor.FullName)
	require.Len(t, detail.Medications, 1)
	assert.Equal(t, "Amoxicillin", detail.Medications[0].Name)
}

func TestCreateWithoutPrescriptionSettlesServicesOnly(t *testing.T) {
	f := newFixture(t)
	delete(f.store.prescriptions, f.recordID)

	detail, err := f.service.Create(context.Background(), f.request())
	require.NoError(t, err)

	assert.Equal(t, 10, f.store.medications[f.medicationID].StockQuantity)
	assert.Equal(t, model.MedicalRecordStatusPaid, f.store.records[f.recordID].Status)
	assert.Empty(t, detail.Medications)
}

func TestCreateInsufficientStockRollsBackEverything(t *testing.T) {
	f := newFixture(t)
	f.store.medications[f.medicationID].StockQuantity = 3

	_, err := f.service.Create(context.Background(), f.request())
	require.Error(t, err)
	assert.True(t, errors.IsKind(err, errors.KindInsufficientStock))

	assert.Equal(t, 3, f.store.medications[f.medicationID].StockQuantity)
	assert.Equal(t, model.MedicalRecordStatusCompleted, f.store.records[f.recordID].Status)
	assert.Equal(t, model.AppointmentStatusWaiting, f.store.appointments[f.appointmentID].Status)
	assert.Empty(t, f.store.invoices)
}

func TestCreateMultiLinePartialStockFailureRollsBack(t *testing.T) {
	f := newFixture(t)

	secondID := uuid.New()
	f.store.medications[secondID] = &model.Medication{
		Base:          model.Base{ID: secondID},
		Name:          "Ibuprofen",
		Price:         1,
		StockQuantity: 1,
	}
	pres := f.store.prescriptions[f.recordID]
	pres.Medications = append(pres.Medications, model.PrescriptionDetail{
		ID:           uuid.New(),
		MedicationID: secondID,
		Name:         "Ibuprofen",
		Quantity:     5,
	})

	_, err := f.service.Create(context.Background(), f.request())
	require.Error(t, err)
	assert.True(t, errors.IsKind(err, errors.KindInsufficientStock))

	// The first line's decrement must not survive the rollback.
	assert.Equal(t, 10, f.store.medications[f.medicationID].StockQuantity)
	assert.Equal(t, 1, f.store.medications[secondID].StockQuantity)
	assert.Empty(t, f.store.invoices)
}

func TestCreateZeroQuantityLineLeavesStockUntouched(t *testing.T) {
	f := newFixture(t)
	f.store.prescriptions[f.recordID].Medications[0].Quantity = 0

	_, err := f.service.Create(context.Background(), f.request())
	require.NoError(t, err)
	assert.Equal(t, 10, f.store.medications[f.medicationID].StockQuantity)
}

func TestCreateRejectsSecondFinalization(t *testing.T) {
	f := newFixture(t)

	_, err := f.service.Create(context.Background(), f.request())
	require.NoError(t, err)

	_, err = f.service.Create(context.Background(), f.request())
	require.Error(t, err)
	assert.True(t, errors.IsKind(err, errors.KindConflict))

	// First finalization already consumed stock; no double decrement.
	assert.Equal(t, 6, f.store.medications[f.medicationID].StockQuantity)
	assert.Len(t, f.store.invoices, 1)
}

func TestCreateRejectsPaidRecord(t *testing.T) {
	f := newFixture(t)
	f.store.records[f.recordID].Status = model.MedicalRecordStatusPaid

	_, err := f.service.Create(context.Background(), f.request())
	require.Error(t, err)
	assert.True(t, errors.IsKind(err, errors.KindConflict))
	assert.Empty(t, f.store.invoices)
}

func TestCreateMissingRecord(t *testing.T) {
	f := newFixture(t)
	req := f.request()
	req.MedicalRecordID = uuid.New()

	_, err := f.service.Create(context.Background(), req)
	require.Error(t, err)
	assert.True(t, errors.IsKind(err, errors.KindNotFound))
}

func TestCreateMissingMedicationAborts(t *testing.T) {
	f := newFixture(t)
	f.store.prescriptions[f.recordID].Medications[0].MedicationID = uuid.New()

	_, err := f.service.Create(context.Background(), f.request())
	require.Error(t, err)
	assert.True(t, errors.IsKind(err, errors.KindNotFound))
	assert.Empty(t, f.store.invoices)
	assert.Equal(t, model.MedicalRecordStatusCompleted, f.store.records[f.recordID].Status)
}

func TestCreateRecordWithoutAppointment(t *testing.T) {
	f := newFixture(t)
	f.store.records[f.recordID].AppointmentID = nil

	_, err := f.service.Create(context.Background(), f.request())
	require.Error(t, err)
	assert.True(t, errors.IsKind(err, errors.KindNotFound))
	assert.Empty(t, f.store.invoices)
	assert.Equal(t, 10, f.store.medications[f.medicationID].StockQuantity)
	assert.Equal(t, model.MedicalRecordStatusCompleted, f.store.records[f.recordID].Status)
}

func TestCreateMissingAppointmentRollsBackEverything(t *testing.T) {
	f := newFixture(t)
	delete(f.store.appointments, f.appointmentID)

	_, err := f.service.Create(context.Background(), f.request())
	require.Error(t, err)
	assert.True(t, errors.IsKind(err, errors.KindNotFound))

	// The invoice insert, stock decrement and PAID transition already
	// staged before the appointment lookup must all be discarded.
	assert.Empty(t, f.store.invoices)
	assert.Equal(t, 10, f.store.medications[f.medicationID].StockQuantity)
	assert.Equal(t, model.MedicalRecordStatusCompleted, f.store.records[f.recordID].Status)
}

func TestCreateWithoutOptionalAmounts(t *testing.T) {
	f := newFixture(t)

	req := f.request()
	req.ServiceSubtotal = nil
	req.MedicationSubtotal = nil
	req.DiscountAmount = nil

	detail, err := f.service.Create(context.Background(), req)
	require.NoError(t, err)
	assert.Nil(t, detail.ServiceSubtotal)
	assert.Nil(t, detail.MedicationSubtotal)
	assert.Nil(t, detail.DiscountAmount)
	assert.Equal(t, 10.0, detail.TotalAmount)
}

func TestGetByMedicalRecord(t *testing.T) {
	f := newFixture(t)

	created, err := f.service.Create(context.Background(), f.request())
	require.NoError(t, err)

	found, err := f.service.GetByMedicalRecord(context.Background(), f.recordID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, found.ID)

	_, err = f.service.GetByMedicalRecord(context.Background(), uuid.New())
	require.Error(t, err)
	assert.True(t, errors.IsKind(err, errors.KindNotFound))
}
