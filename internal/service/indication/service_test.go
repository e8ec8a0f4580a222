package indication

import (
	"context"
	"io"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dermaclinic/clinic-api/internal/model"
	"github.com/dermaclinic/clinic-api/internal/repository"
	"github.com/dermaclinic/clinic-api/pkg/errors"
	"github.com/dermaclinic/clinic-api/pkg/logger"
)

type fakeStore struct {
	indications map[uuid.UUID]*model.ServiceIndication
	byRecord    map[uuid.UUID]uuid.UUID
	services    map[uuid.UUID]*model.Service
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		indications: map[uuid.UUID]*model.ServiceIndication{},
		byRecord:    map[uuid.UUID]uuid.UUID{},
		services:    map[uuid.UUID]*model.Service{},
	}
}

func (s *fakeStore) clone() *fakeStore {
	c := newFakeStore()
	for k, v := range s.indications {
		si := *v
		si.Services = append([]model.ServiceIndicationDetail{}, v.Services...)
		c.indications[k] = &si
	}
	for k, v := range s.byRecord {
		c.byRecord[k] = v
	}
	for k, v := range s.services {
		svc := *v
		c.services[k] = &svc
	}
	return c
}

func (s *fakeStore) WithinTx(_ context.Context, fn func(tx repository.ServiceIndicationTx) error) error {
	staged := s.clone()
	if err := fn(&fakeTx{store: staged}); err != nil {
		return err
	}
	*s = *staged
	return nil
}

func (s *fakeStore) Get(_ context.Context, id uuid.UUID) (*model.ServiceIndication, error) {
	return s.indications[id], nil
}

func (s *fakeStore) GetByMedicalRecord(_ context.Context, recordID uuid.UUID) (*model.ServiceIndication, error) {
	id, ok := s.byRecord[recordID]
	if !ok {
		return nil, nil
	}
	return s.indications[id], nil
}

func (s *fakeStore) List(_ context.Context, _ repository.Page) ([]*model.ServiceIndication, int, error) {
	out := []*model.ServiceIndication{}
	for _, si := range s.indications {
		out = append(out, si)
	}
	return out, len(out), nil
}

type fakeTx struct {
	store *fakeStore
}

func (t *fakeTx) CreateIndication(_ context.Context, si *model.ServiceIndication) error {
	if _, exists := t.store.byRecord[si.MedicalRecordID]; exists {
		return repository.ErrDuplicate
	}
	copied := *si
	copied.Services = nil
	t.store.indications[si.ID] = &copied
	t.store.byRecord[si.MedicalRecordID] = si.ID
	return nil
}

func (t *fakeTx) Service(_ context.Context, id uuid.UUID) (*model.Service, error) {
	svc, ok := t.store.services[id]
	if !ok || svc.IsDeleted() {
		return nil, nil
	}
	return svc, nil
}

func (t *fakeTx) CreateDetail(_ context.Context, d *model.ServiceIndicationDetail) error {
	si := t.store.indications[d.ServiceIndicationID]
	si.Services = append(si.Services, *d)
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

func setup(t *testing.T) (Service, *fakeStore, uuid.UUID, *model.Service) {
	t.Helper()

	store := newFakeStore()
	recordID := uuid.New()
	svc := &model.Service{
		Base:  model.Base{ID: uuid.New()},
		Name:  "Skin biopsy",
		Price: 45,
	}
	store.services[svc.ID] = svc

	records := &fakeRecords{records: map[uuid.UUID]*model.MedicalRecord{
		recordID: {ID: recordID, Status: model.MedicalRecordStatusInProgress},
	}}

	log := logger.NewLogger(&logger.Config{Output: io.Discard})
	return NewService(store, store, records, log), store, recordID, svc
}

func TestCreateSnapshotsCatalogPrice(t *testing.T) {
	service, _, recordID, svc := setup(t)

	si, err := service.Create(context.Background(), &model.CreateServiceIndicationRequest{
		MedicalRecordID: recordID,
		Details: []model.CreateServiceIndicationDetailRequest{
			{ServiceID: svc.ID, Quantity: 2},
		},
	})
	require.NoError(t, err)
	require.Len(t, si.Services, 1)

	line := si.Services[0]
	assert.Equal(t, "Skin biopsy", line.Name)
	assert.Equal(t, 45.0, line.UnitPrice)
	assert.Equal(t, 90.0, line.TotalPrice)

	svc.Price = 60
	stored, err := service.GetByMedicalRecord(context.Background(), recordID)
	require.NoError(t, err)
	assert.Equal(t, 45.0, stored.Services[0].UnitPrice)
}

func TestCreateMissingServiceAbortsWholeOrder(t *testing.T) {
	service, store, recordID, svc := setup(t)

	_, err := service.Create(context.Background(), &model.CreateServiceIndicationRequest{
		MedicalRecordID: recordID,
		Details: []model.CreateServiceIndicationDetailRequest{
			{ServiceID: svc.ID, Quantity: 1},
			{ServiceID: uuid.New(), Quantity: 1},
		},
	})
	require.Error(t, err)
	assert.True(t, errors.IsKind(err, errors.KindNotFound))
	assert.Empty(t, store.indications)
}

func TestCreateMissingRecord(t *testing.T) {
	service, _, _, svc := setup(t)

	_, err := service.Create(context.Background(), &model.CreateServiceIndicationRequest{
		MedicalRecordID: uuid.New(),
		Details: []model.CreateServiceIndicationDetailRequest{
			{ServiceID: svc.ID, Quantity: 1},
		},
	})
	require.Error(t, err)
	assert.True(t, errors.IsKind(err, errors.KindNotFound))
}

func TestCreateRejectsSecondIndicationForRecord(t *testing.T) {
	service, store, recordID, svc := setup(t)

	_, err := service.Create(context.Background(), &model.CreateServiceIndicationRequest{
		MedicalRecordID: recordID,
		Details: []model.CreateServiceIndicationDetailRequest{
			{ServiceID: svc.ID, Quantity: 1},
		},
	})
	require.NoError(t, err)

	_, err = service.Create(context.Background(), &model.CreateServiceIndicationRequest{
		MedicalRecordID: recordID,
		Details: []model.CreateServiceIndicationDetailRequest{
			{ServiceID: svc.ID, Quantity: 3},
		},
	})
	require.Error(t, err)
	assert.True(t, errors.IsKind(err, errors.KindConflict))
	assert.Len(t, store.indications, 1)
}
