package appointment

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dermaclinic/clinic-api/internal/email"
	"github.com/dermaclinic/clinic-api/internal/model"
	"github.com/dermaclinic/clinic-api/internal/repository"
	apperrors "github.com/dermaclinic/clinic-api/pkg/errors"
	"github.com/dermaclinic/clinic-api/pkg/logger"
)

type fakeAppointments struct {
	appointments map[uuid.UUID]*model.Appointment
}

func (f *fakeAppointments) Create(_ context.Context, apt *model.Appointment) error {
	copied := *apt
	f.appointments[apt.ID] = &copied
	return nil
}
func (f *fakeAppointments) Get(_ context.Context, id uuid.UUID) (*model.Appointment, error) {
	return f.appointments[id], nil
}
func (f *fakeAppointments) List(context.Context, *model.AppointmentFilters, repository.Page) ([]*model.Appointment, int, error) {
	return nil, 0, nil
}
func (f *fakeAppointments) Update(_ context.Context, apt *model.Appointment) error {
	copied := *apt
	f.appointments[apt.ID] = &copied
	return nil
}
func (f *fakeAppointments) UpdateStatus(_ context.Context, id uuid.UUID, status model.AppointmentStatus) error {
	f.appointments[id].Status = status
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

type fakeMailer struct {
	sent []email.AppointmentConfirmation
	err  error
}

func (f *fakeMailer) SendAppointmentConfirmation(msg email.AppointmentConfirmation) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, msg)
	return nil
}

// clinicTZ approximates Asia/Ho_Chi_Minh without tzdata.
var clinicTZ = time.FixedZone("UTC+7", 7*60*60)

type fixture struct {
	service      *service
	appointments *fakeAppointments
	mailer       *fakeMailer
	patientID    uuid.UUID
	doctorID     uuid.UUID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		appointments: &fakeAppointments{appointments: map[uuid.UUID]*model.Appointment{}},
		mailer:       &fakeMailer{},
		patientID:    uuid.New(),
		doctorID:     uuid.New(),
	}
	mail := "jane@example.com"
	patients := &fakePatients{patients: map[uuid.UUID]*model.Patient{
		f.patientID: {Base: model.Base{ID: f.patientID}, FullName: "Jane Roe", Email: &mail},
	}}
	users := &fakeUsers{users: map[uuid.UUID]*model.User{
		f.doctorID: {Base: model.Base{ID: f.doctorID}, FullName: "Gregory House", Role: model.RoleDoctor},
	}}

	log := logger.NewLogger(&logger.Config{Output: io.Discard})
	svc := NewService(f.appointments, patients, users, PolicyByName("uniform"), clinicTZ, f.mailer, log)
	f.service = svc.(*service)
	// 23:30 UTC on March 2nd is already March 3rd at the clinic.
	f.service.now = func() time.Time {
		return time.Date(2026, 3, 2, 23, 30, 0, 0, time.UTC)
	}
	return f
}

func (f *fixture) request(date time.Time) *model.CreateAppointmentRequest {
	return &model.CreateAppointmentRequest{
		PatientID:       f.patientID,
		DoctorID:        f.doctorID,
		AppointmentDate: date,
		AppointmentTime: "11:30",
		TimeSlot:        "morning",
	}
}

func TestCreateBooksAndSendsConfirmation(t *testing.T) {
	f := newFixture(t)

	apt, err := f.service.Create(context.Background(), uuid.New(),
		f.request(time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC)))
	require.NoError(t, err)
	assert.Equal(t, model.AppointmentStatusScheduled, apt.Status)

	require.Len(t, f.mailer.sent, 1)
	assert.Equal(t, "jane@example.com", f.mailer.sent[0].To)
}

func TestCreateMailFailureDoesNotFailBooking(t *testing.T) {
	f := newFixture(t)
	f.mailer.err = errors.New("smtp unreachable")

	_, err := f.service.Create(context.Background(), uuid.New(),
		f.request(time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC)))
	require.NoError(t, err)
	assert.Len(t, f.appointments.appointments, 1)
}

func TestCreateRejectsDatePastInClinicTimezone(t *testing.T) {
	f := newFixture(t)

	// March 2nd is today in UTC but yesterday at the clinic.
	_, err := f.service.Create(context.Background(), uuid.New(),
		f.request(time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)))
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindValidation))

	// The clinic's current day is still bookable.
	_, err = f.service.Create(context.Background(), uuid.New(),
		f.request(time.Date(2026, 3, 3, 0, 0, 0, 0, time.UTC)))
	require.NoError(t, err)
}

func TestCreateRejectsTimeOutsideVisitingHours(t *testing.T) {
	f := newFixture(t)

	req := f.request(time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC))
	req.AppointmentTime = "15:00"

	_, err := f.service.Create(context.Background(), uuid.New(), req)
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindValidation))
}

func TestCreateUnknownPatient(t *testing.T) {
	f := newFixture(t)

	req := f.request(time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC))
	req.PatientID = uuid.New()

	_, err := f.service.Create(context.Background(), uuid.New(), req)
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindNotFound))
}

func TestUpdateRevalidatesSchedule(t *testing.T) {
	f := newFixture(t)

	apt, err := f.service.Create(context.Background(), uuid.New(),
		f.request(time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC)))
	require.NoError(t, err)

	bad := "15:00"
	_, err = f.service.Update(context.Background(), apt.ID, &model.UpdateAppointmentRequest{
		AppointmentTime: &bad,
	})
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindValidation))
}
