package prescription

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

type fakeStore struct {
	prescriptions map[uuid.UUID]*model.Prescription
	byRecord      map[uuid.UUID]uuid.UUID
	medications   map[uuid.UUID]*model.Medication
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		prescriptions: map[uuid.UUID]*model.Prescription{},
		byRecord:      map[uuid.UUID]uuid.UUID{},
		medications:   map[uuid.UUID]*model.Medication{},
	}
}

func (s *fakeStore) clone() *fakeStore {
	c := newFakeStore()
	for k, v := range s.prescriptions {
		p := *v
		p.Medications = append([]model.PrescriptionDetail{}, v.Medications...)
		c.prescriptions[k] = &p
	}
	for k, v := range s.byRecord {
		c.byRecord[k] = v
	}
	for k, v := range s.medications {
		m := *v
		c.medications[k] = &m
	}
	return c
}

func (s *fakeStore) WithinTx(_ context.Context, fn func(tx repository.PrescriptionTx) error) error {
	staged := s.clone()
	if err := fn(&fakeTx{store: staged}); err != nil {
		return err
	}
	*s = *staged
	return nil
}

func (s *fakeStore) Get(_ context.Context, id uuid.UUID) (*model.Prescription, error) {
	return s.prescriptions[id], nil
}

func (s *fakeStore) GetByMedicalRecord(_ context.Context, recordID uuid.UUID) (*model.Prescription, error) {
	id, ok := s.byRecord[recordID]
	if !ok {
		return nil, nil
	}
	return s.prescriptions[id], nil
}

func (s *fakeStore) List(_ context.Context, _ repository.Page) ([]*model.Prescription, int, error) {
	out := []*model.Prescription{}
	for _, p := range s.prescriptions {
		out = append(out, p)
	}
	return out, len(out), nil
}

type fakeTx struct {
	store *fakeStore
}

func (t *fakeTx) CreatePrescription(_ context.Context, p *model.Prescription) error {
	if _, exists := t.store.byRecord[p.MedicalRecordID]; exists {
		return repository.ErrDuplicate
	}
	copied := *p
	copied.Medications = nil
	t.store.prescriptions[p.ID] = &copied
	t.store.byRecord[p.MedicalRecordID] = p.ID
	return nil
}

func (t *fakeTx) Medication(_ context.Context, id uuid.UUID) (*model.Medication, error) {
	med, ok := t.store.medications[id]
	if !ok || med.IsDeleted() {
		return nil, nil
	}
	return med, nil
}

func (t *fakeTx) CreateDetail(_ context.Context, d *model.PrescriptionDetail) error {
	p := t.store.prescriptions[d.PrescriptionID]
	p.Medications = append(p.Medications, *d)
	return nil
}

type fakeRecords struct {
	records map[uuid.UUID]*model.MedicalRecord
}

func (f *fakeRecords) Create(context.Context, *model.MedicalRecord) error { return nil }
func (f *fakeRecords) Get(_ context.Context, id uuid.UUID) (*model.MedicalRecord, error) {
	return f.records[id], nil
}
func (f *fakeRecords) ListByPatient(context.Context, uuid.UUID, repository.Page) ([]*model.MedicalRecord, int, error) {
	return nil, 0, nil
}
func (f *fakeRecords) List(context.Context, repository.Page) ([]*model.MedicalRecord, int, error) {
	return nil, 0, nil
}
func (f *fakeRecords) Update(context.Context, *model.MedicalRecord) error { return nil }

func setup(t *testing.T) (Service, *fakeStore, uuid.UUID, *model.Medication) {
	t.Helper()

	store := newFakeStore()
	recordID := uuid.New()
	med := &model.Medication{
		Base:          model.Base{ID: uuid.New()},
		Name:          "Paracetamol",
		DosageForm:    "tablet",
		Price:         0.5,
		StockQuantity: 100,
	}
	store.medications[med.ID] = med

	records := &fakeRecords{records: map[uuid.UUID]*model.MedicalRecord{
		recordID: {ID: recordID, Status: model.MedicalRecordStatusInProgress},
	}}

	log := logger.NewLogger(&logger.Config{Output: io.Discard})
	return NewService(store, store, records, log), store, recordID, med
}

func TestCreateSnapshotsCatalogPrice(t *testing.T) {
	svc, _, recordID, med := setup(t)

	p, err := svc.Create(context.Background(), &model.CreatePrescriptionRequest{
		MedicalRecordID: recordID,
		Details: []model.CreatePrescriptionDetailRequest{
			{MedicationID: med.ID, Quantity: 10, Dosage: "1 tablet twice daily"},
		},
	})
	require.NoError(t, err)
	require.Len(t, p.Medications, 1)

	line := p.Medications[0]
	assert.Equal(t, "Paracetamol", line.Name)
	assert.Equal(t, "tablet", line.DosageForm)
	assert.Equal(t, 0.5, line.UnitPrice)
	assert.Equal(t, 5.0, line.TotalPrice)

	// A later catalog price change must not alter the stored line.
	med.Price = 9.99
	stored, err := svc.GetByMedicalRecord(context.Background(), recordID)
	require.NoError(t, err)
	assert.Equal(t, 0.5, stored.Medications[0].UnitPrice)
}

func TestCreateDoesNotTouchStock(t *testing.T) {
	svc, store, recordID, med := setup(t)

	_, err := svc.Create(context.Background(), &model.CreatePrescriptionRequest{
		MedicalRecordID: recordID,
		Details: []model.CreatePrescriptionDetailRequest{
			{MedicationID: med.ID, Quantity: 10},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, 100, store.medications[med.ID].StockQuantity)
}

func TestCreateMissingMedicationAbortsWholeOrder(t *testing.T) {
	svc, store, recordID, med := setup(t)

	_, err := svc.Create(context.Background(), &model.CreatePrescriptionRequest{
		MedicalRecordID: recordID,
		Details: []model.CreatePrescriptionDetailRequest{
			{MedicationID: med.ID, Quantity: 2},
			{MedicationID: uuid.New(), Quantity: 1},
		},
	})
	require.Error(t, err)
	assert.True(t, errors.IsKind(err, errors.KindNotFound))

	// The parent row and the valid first line are rolled back too.
	assert.Empty(t, store.prescriptions)
}

func TestCreateMissingRecord(t *testing.T) {
	svc, _, _, med := setup(t)

	_, err := svc.Create(context.Background(), &model.CreatePrescriptionRequest{
		MedicalRecordID: uuid.New(),
		Details: []model.CreatePrescriptionDetailRequest{
			{MedicationID: med.ID, Quantity: 1},
		},
	})
	require.Error(t, err)
	assert.True(t, errors.IsKind(err, errors.KindNotFound))
}

func TestCreateRejectsSecondPrescriptionForRecord(t *testing.T) {
	svc, store, recordID, med := setup(t)

	_, err := svc.Create(context.Background(), &model.CreatePrescriptionRequest{
		MedicalRecordID: recordID,
		Details: []model.CreatePrescriptionDetailRequest{
			{MedicationID: med.ID, Quantity: 1},
		},
	})
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), &model.CreatePrescriptionRequest{
		MedicalRecordID: recordID,
		Details: []model.CreatePrescriptionDetailRequest{
			{MedicationID: med.ID, Quantity: 2},
		},
	})
	require.Error(t, err)
	assert.True(t, errors.IsKind(err, errors.KindConflict))
	assert.Len(t, store.prescriptions, 1)
}

func TestCreateSoftDeletedMedicationIsInvisible(t *testing.T) {
	svc, store, recordID, med := setup(t)
	now := time.Now()
	store.medications[med.ID].DeletedAt = &now

	_, err := svc.Create(context.Background(), &model.CreatePrescriptionRequest{
		MedicalRecordID: recordID,
		Details: []model.CreatePrescriptionDetailRequest{
			{MedicationID: med.ID, Quantity: 1},
		},
	})
	require.Error(t, err)
	assert.True(t, errors.IsKind(err, errors.KindNotFound))
}
