package booking

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medibook/booking-api/internal/model"
	"github.com/medibook/booking-api/internal/repository"
	apperrors "github.com/medibook/booking-api/pkg/errors"
	"github.com/medibook/booking-api/pkg/metrics"
)

type fakeHospitalRepo struct {
	hospitals map[uuid.UUID]*model.Hospital
}

func (f *fakeHospitalRepo) Get(_ context.Context, id uuid.UUID) (*model.Hospital, error) {
	if h, ok := f.hospitals[id]; ok {
		return h, nil
	}
	return nil, repository.ErrNotFound
}

func (f *fakeHospitalRepo) List(_ context.Context, skip, limit int) ([]*model.Hospital, int, error) {
	all := make([]*model.Hospital, 0, len(f.hospitals))
	for _, h := range f.hospitals {
		all = append(all, h)
	}
	return all, len(all), nil
}

type fakeDoctorRepo struct {
	doctors map[uuid.UUID]*model.Doctor
}

func (f *fakeDoctorRepo) Get(_ context.Context, id uuid.UUID) (*model.Doctor, error) {
	if d, ok := f.doctors[id]; ok {
		return d, nil
	}
	return nil, repository.ErrNotFound
}

func (f *fakeDoctorRepo) ListByHospital(_ context.Context, hospitalID uuid.UUID, skip, limit int) ([]*model.Doctor, int, error) {
	var out []*model.Doctor
	for _, d := range f.doctors {
		if d.HospitalID == hospitalID {
			out = append(out, d)
		}
	}
	return out, len(out), nil
}

type fakeSlotRepo struct {
	slots map[uuid.UUID]*model.DoctorTimeSlot
}

func (f *fakeSlotRepo) FindBookable(_ context.Context, doctorID uuid.UUID, timeSlot string) (*model.DoctorTimeSlot, error) {
	for _, s := range f.slots {
		if s.DoctorID == doctorID && s.TimeSlot == timeSlot && s.IsAvailable {
			return s, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeSlotRepo) ListAvailable(_ context.Context, doctorID uuid.UUID) ([]*model.DoctorTimeSlot, error) {
	var out []*model.DoctorTimeSlot
	for _, s := range f.slots {
		if s.DoctorID == doctorID && s.IsAvailable {
			out = append(out, s)
		}
	}
	return out, nil
}

type fakeAppointmentRepo struct {
	appointments map[uuid.UUID]*model.Appointment
	slots        *fakeSlotRepo
	bookErr      error
	restored     []string
}

func (f *fakeAppointmentRepo) Book(_ context.Context, a *model.Appointment, slotID uuid.UUID) error {
	if f.bookErr != nil {
		return f.bookErr
	}
	slot, ok := f.slots.slots[slotID]
	if !ok || !slot.IsAvailable {
		return repository.ErrSlotTaken
	}
	slot.IsAvailable = false
	a.ID = uuid.New()
	f.appointments[a.ID] = a
	return nil
}

func (f *fakeAppointmentRepo) Get(_ context.Context, id uuid.UUID) (*model.Appointment, error) {
	if a, ok := f.appointments[id]; ok {
		return a, nil
	}
	return nil, repository.ErrNotFound
}

func (f *fakeAppointmentRepo) List(_ context.Context, userID *uuid.UUID, skip, limit int) ([]*model.Appointment, int, error) {
	var out []*model.Appointment
	for _, a := range f.appointments {
		if userID == nil || a.UserID == *userID {
			out = append(out, a)
		}
	}

	count := len(out)
	if skip > count {
		skip = count
	}
	out = out[skip:]
	if limit < len(out) {
		out = out[:limit]
	}
	return out, count, nil
}

func (f *fakeAppointmentRepo) Update(_ context.Context, a *model.Appointment, restoreSlot bool) error {
	if _, ok := f.appointments[a.ID]; !ok {
		return repository.ErrNotFound
	}
	f.appointments[a.ID] = a
	if restoreSlot {
		f.restore(a)
	}
	return nil
}

func (f *fakeAppointmentRepo) Delete(_ context.Context, a *model.Appointment) error {
	if _, ok := f.appointments[a.ID]; !ok {
		return repository.ErrNotFound
	}
	delete(f.appointments, a.ID)
	f.restore(a)
	return nil
}

func (f *fakeAppointmentRepo) restore(a *model.Appointment) {
	f.restored = append(f.restored, a.AppointmentTime)
	for _, s := range f.slots.slots {
		if s.DoctorID == a.DoctorID && s.TimeSlot == a.AppointmentTime {
			s.IsAvailable = true
		}
	}
}

type fixture struct {
	svc        *Service
	hospital   *model.Hospital
	doctor     *model.Doctor
	slot       *model.DoctorTimeSlot
	appts      *fakeAppointmentRepo
	slotRepo   *fakeSlotRepo
	doctorRepo *fakeDoctorRepo
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	hospital := &model.Hospital{ID: uuid.New(), Name: "City General Hospital"}
	doctor := &model.Doctor{ID: uuid.New(), Name: "Dr. Sarah Johnson", HospitalID: hospital.ID}
	slot := &model.DoctorTimeSlot{
		ID:          uuid.New(),
		DoctorID:    doctor.ID,
		TimeSlot:    "09:00 AM",
		IsAvailable: true,
	}

	slotRepo := &fakeSlotRepo{slots: map[uuid.UUID]*model.DoctorTimeSlot{slot.ID: slot}}
	doctorRepo := &fakeDoctorRepo{doctors: map[uuid.UUID]*model.Doctor{doctor.ID: doctor}}
	appts := &fakeAppointmentRepo{
		appointments: map[uuid.UUID]*model.Appointment{},
		slots:        slotRepo,
	}

	svc := NewService(
		&fakeHospitalRepo{hospitals: map[uuid.UUID]*model.Hospital{hospital.ID: hospital}},
		doctorRepo,
		slotRepo,
		appts,
		nil,
		nil,
		nil,
	)

	return &fixture{
		svc:        svc,
		hospital:   hospital,
		doctor:     doctor,
		slot:       slot,
		appts:      appts,
		slotRepo:   slotRepo,
		doctorRepo: doctorRepo,
	}
}

func validCreateRequest(f *fixture) *model.CreateAppointmentRequest {
	return &model.CreateAppointmentRequest{
		HospitalID:      f.hospital.ID,
		DoctorID:        f.doctor.ID,
		AppointmentTime: "09:00 AM",
		PatientName:     "John Smith",
		PatientIDNumber: "1234567890",
		PatientPhone:    "5551234567",
	}
}

func TestValidateUser(t *testing.T) {
	tests := []struct {
		name    string
		info    model.UserValidation
		wantErr string
	}{
		{
			name: "valid",
			info: model.UserValidation{Name: "Jo", IDNumber: "1234567890", Phone: "5551234567"},
		},
		{
			name:    "short name",
			info:    model.UserValidation{Name: "J", IDNumber: "1234567890", Phone: "5551234567"},
			wantErr: "Name must be at least 2 characters",
		},
		{
			name:    "short id number",
			info:    model.UserValidation{Name: "Jo", IDNumber: "123456789", Phone: "5551234567"},
			wantErr: "ID number must be at least 10 characters",
		},
		{
			name:    "short phone",
			info:    model.UserValidation{Name: "Jo", IDNumber: "1234567890", Phone: "555123456"},
			wantErr: "Phone number must be at least 10 characters",
		},
		{
			// "é" is two bytes but one character; the check must count
			// characters.
			name:    "single accented character name",
			info:    model.UserValidation{Name: "é", IDNumber: "1234567890", Phone: "5551234567"},
			wantErr: "Name must be at least 2 characters",
		},
		{
			name: "accented name of two characters",
			info: model.UserValidation{Name: "éé", IDNumber: "1234567890", Phone: "5551234567"},
		},
		{
			// Nine characters spanning ten bytes must still be rejected.
			name:    "short id number with multibyte character",
			info:    model.UserValidation{Name: "José", IDNumber: "12345678é", Phone: "5551234567"},
			wantErr: "ID number must be at least 10 characters",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateUser(&tt.info)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			appErr, ok := apperrors.As(err)
			require.True(t, ok)
			assert.Equal(t, tt.wantErr, appErr.Message)
		})
	}
}

func TestCreateAppointment(t *testing.T) {
	f := newFixture(t)
	userID := uuid.New()

	appointment, err := f.svc.CreateAppointment(context.Background(), validCreateRequest(f), userID)
	require.NoError(t, err)

	assert.Equal(t, model.AppointmentStatusPending, appointment.Status)
	assert.Equal(t, userID, appointment.UserID)
	assert.False(t, f.slot.IsAvailable, "booked slot must be flipped to unavailable")
}

func TestCreateAppointmentHospitalNotFound(t *testing.T) {
	f := newFixture(t)
	req := validCreateRequest(f)
	req.HospitalID = uuid.New()

	_, err := f.svc.CreateAppointment(context.Background(), req, uuid.New())
	require.Error(t, err)
	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, "Hospital not found", appErr.Message)
	assert.Equal(t, apperrors.ErrNotFound, appErr.Code)
}

func TestCreateAppointmentDoctorNotFound(t *testing.T) {
	f := newFixture(t)
	req := validCreateRequest(f)
	req.DoctorID = uuid.New()

	_, err := f.svc.CreateAppointment(context.Background(), req, uuid.New())
	require.Error(t, err)
	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, "Doctor not found", appErr.Message)
}

func TestCreateAppointmentDoctorWrongHospital(t *testing.T) {
	f := newFixture(t)
	other := &model.Doctor{ID: uuid.New(), Name: "Dr. Michael Chen", HospitalID: uuid.New()}
	f.doctorRepo.doctors[other.ID] = other

	req := validCreateRequest(f)
	req.DoctorID = other.ID

	_, err := f.svc.CreateAppointment(context.Background(), req, uuid.New())
	require.Error(t, err)
	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, "Doctor does not belong to the selected hospital", appErr.Message)
	assert.Equal(t, apperrors.ErrBadRequest, appErr.Code)
}

func TestCreateAppointmentSlotUnavailable(t *testing.T) {
	f := newFixture(t)
	f.slot.IsAvailable = false

	_, err := f.svc.CreateAppointment(context.Background(), validCreateRequest(f), uuid.New())
	require.Error(t, err)
	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, "Selected time slot is not available", appErr.Message)
	assert.Equal(t, apperrors.ErrConflict, appErr.Code)
}

func TestCreateAppointmentLostRace(t *testing.T) {
	f := newFixture(t)
	f.appts.bookErr = repository.ErrSlotTaken

	_, err := f.svc.CreateAppointment(context.Background(), validCreateRequest(f), uuid.New())
	require.Error(t, err)
	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, "Selected time slot is not available", appErr.Message)
	assert.Equal(t, apperrors.ErrConflict, appErr.Code)
}

func TestCreateAppointmentSecondBookingConflicts(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.CreateAppointment(context.Background(), validCreateRequest(f), uuid.New())
	require.NoError(t, err)

	_, err = f.svc.CreateAppointment(context.Background(), validCreateRequest(f), uuid.New())
	require.Error(t, err)
	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrConflict, appErr.Code)
}

func TestUpdateAppointmentCancelRestoresSlot(t *testing.T) {
	f := newFixture(t)
	userID := uuid.New()

	appointment, err := f.svc.CreateAppointment(context.Background(), validCreateRequest(f), userID)
	require.NoError(t, err)
	require.False(t, f.slot.IsAvailable)

	cancelled := model.AppointmentStatusCancelled
	updated, err := f.svc.UpdateAppointment(
		context.Background(),
		appointment.ID,
		&model.UpdateAppointmentRequest{Status: &cancelled},
		model.Requester{UserID: userID},
	)
	require.NoError(t, err)

	assert.Equal(t, model.AppointmentStatusCancelled, updated.Status)
	assert.True(t, f.slot.IsAvailable, "cancelling must re-open the slot")
}

func TestUpdateAppointmentConfirmKeepsSlot(t *testing.T) {
	f := newFixture(t)
	userID := uuid.New()

	appointment, err := f.svc.CreateAppointment(context.Background(), validCreateRequest(f), userID)
	require.NoError(t, err)

	confirmed := model.AppointmentStatusConfirmed
	updated, err := f.svc.UpdateAppointment(
		context.Background(),
		appointment.ID,
		&model.UpdateAppointmentRequest{Status: &confirmed},
		model.Requester{UserID: userID},
	)
	require.NoError(t, err)

	assert.Equal(t, model.AppointmentStatusConfirmed, updated.Status)
	assert.False(t, f.slot.IsAvailable)
	assert.Empty(t, f.appts.restored)
}

func TestDeleteAppointmentRestoresSlot(t *testing.T) {
	f := newFixture(t)
	userID := uuid.New()

	appointment, err := f.svc.CreateAppointment(context.Background(), validCreateRequest(f), userID)
	require.NoError(t, err)

	err = f.svc.DeleteAppointment(context.Background(), appointment.ID, model.Requester{UserID: userID})
	require.NoError(t, err)

	assert.True(t, f.slot.IsAvailable)
	_, err = f.svc.GetAppointment(context.Background(), appointment.ID, model.Requester{UserID: userID})
	require.Error(t, err)
	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, "Appointment not found", appErr.Message)
}

func TestUpdateAppointmentCancelToleratesMissingSlot(t *testing.T) {
	f := newFixture(t)
	userID := uuid.New()

	appointment, err := f.svc.CreateAppointment(context.Background(), validCreateRequest(f), userID)
	require.NoError(t, err)

	// The slot row is removed independently of the appointment.
	delete(f.slotRepo.slots, f.slot.ID)

	cancelled := model.AppointmentStatusCancelled
	updated, err := f.svc.UpdateAppointment(
		context.Background(),
		appointment.ID,
		&model.UpdateAppointmentRequest{Status: &cancelled},
		model.Requester{UserID: userID},
	)
	require.NoError(t, err)
	assert.Equal(t, model.AppointmentStatusCancelled, updated.Status)
}

func TestDeleteAppointmentToleratesMissingSlot(t *testing.T) {
	f := newFixture(t)
	userID := uuid.New()

	appointment, err := f.svc.CreateAppointment(context.Background(), validCreateRequest(f), userID)
	require.NoError(t, err)

	delete(f.slotRepo.slots, f.slot.ID)

	err = f.svc.DeleteAppointment(context.Background(), appointment.ID, model.Requester{UserID: userID})
	require.NoError(t, err)

	_, err = f.svc.GetAppointment(context.Background(), appointment.ID, model.Requester{UserID: userID})
	require.Error(t, err)
}

func TestAppointmentOwnership(t *testing.T) {
	f := newFixture(t)
	owner := uuid.New()

	appointment, err := f.svc.CreateAppointment(context.Background(), validCreateRequest(f), owner)
	require.NoError(t, err)

	// A different user may not read it.
	_, err = f.svc.GetAppointment(context.Background(), appointment.ID, model.Requester{UserID: uuid.New()})
	require.Error(t, err)
	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, "Not enough permissions", appErr.Message)
	assert.Equal(t, apperrors.ErrForbidden, appErr.Code)

	// Superusers and trusted callers may.
	_, err = f.svc.GetAppointment(context.Background(), appointment.ID, model.Requester{UserID: uuid.New(), Superuser: true})
	assert.NoError(t, err)
	_, err = f.svc.GetAppointment(context.Background(), appointment.ID, model.ServiceRequester())
	assert.NoError(t, err)
}

func TestListFiltersByUser(t *testing.T) {
	f := newFixture(t)
	owner := uuid.New()

	_, err := f.svc.CreateAppointment(context.Background(), validCreateRequest(f), owner)
	require.NoError(t, err)

	mine, count, err := f.svc.List(context.Background(), &owner, 0, 100)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
	assert.Len(t, mine, 1)

	other := uuid.New()
	none, count, err := f.svc.List(context.Background(), &other, 0, 100)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
	assert.Empty(t, none)

	all, count, err := f.svc.List(context.Background(), nil, 0, 100)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
	assert.Len(t, all, 1)
}

func TestListPagination(t *testing.T) {
	f := newFixture(t)
	owner := uuid.New()

	const total = 5
	for i := 0; i < total; i++ {
		id := uuid.New()
		f.appts.appointments[id] = &model.Appointment{
			ID:              id,
			UserID:          owner,
			DoctorID:        f.doctor.ID,
			HospitalID:      f.hospital.ID,
			AppointmentTime: "09:00 AM",
			Status:          model.AppointmentStatusPending,
		}
	}

	tests := []struct {
		name    string
		skip    int
		limit   int
		wantLen int
	}{
		{name: "first page", skip: 0, limit: 2, wantLen: 2},
		{name: "partial last page", skip: 3, limit: 100, wantLen: 2},
		{name: "skip past the end", skip: total, limit: 2, wantLen: 0},
		{name: "everything", skip: 0, limit: 100, wantLen: total},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, count, err := f.svc.List(context.Background(), &owner, tt.skip, tt.limit)
			require.NoError(t, err)
			assert.Len(t, page, tt.wantLen)
			assert.Equal(t, total, count, "count must stay unpaginated")
		})
	}
}

func TestListHospitalDoctorsUnknownHospital(t *testing.T) {
	f := newFixture(t)

	_, _, err := f.svc.ListHospitalDoctors(context.Background(), uuid.New(), 0, 100)
	require.Error(t, err)
	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, "Hospital not found", appErr.Message)
}

func TestListDoctorTimeSlotsUnknownDoctor(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.ListDoctorTimeSlots(context.Background(), uuid.New())
	require.Error(t, err)
	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, "Doctor not found", appErr.Message)
}

func TestListDoctorTimeSlotsCountsCacheMisses(t *testing.T) {
	f := newFixture(t)
	m := metrics.NewMetrics("medibook_test", "booking")
	f.svc.metrics = m

	// No cache is configured, so every listing is a miss.
	_, err := f.svc.ListDoctorTimeSlots(context.Background(), f.doctor.ID)
	require.NoError(t, err)
	_, err = f.svc.ListDoctorTimeSlots(context.Background(), f.doctor.ID)
	require.NoError(t, err)

	assert.Equal(t, float64(2), testutil.ToFloat64(m.CacheMisses.WithLabelValues("timeslots")))
	assert.Equal(t, float64(0), testutil.ToFloat64(m.CacheHits.WithLabelValues("timeslots")))
}

func TestListDoctorTimeSlotsOnlyAvailable(t *testing.T) {
	f := newFixture(t)
	taken := &model.DoctorTimeSlot{
		ID:          uuid.New(),
		DoctorID:    f.doctor.ID,
		TimeSlot:    "10:00 AM",
		IsAvailable: false,
	}
	f.slotRepo.slots[taken.ID] = taken

	slots, err := f.svc.ListDoctorTimeSlots(context.Background(), f.doctor.ID)
	require.NoError(t, err)
	require.Len(t, slots, 1)
	assert.Equal(t, "09:00 AM", slots[0].TimeSlot)
}
