package booking

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medibook/medibook-api/internal/model"
	apperrors "github.com/medibook/medibook-api/pkg/errors"
	"github.com/medibook/medibook-api/pkg/logger"
	"github.com/medibook/medibook-api/pkg/metrics"
)

// Registered once; promauto panics on duplicate collector registration.
var testMetrics = metrics.NewMetrics("booking_svc_test")

var testLogger = logger.NewLogger(&logger.Config{
	Level:      logger.ErrorLevel,
	TimeFormat: time.RFC3339,
	Output:     io.Discard,
})

type fakeAptRepo struct {
	bookCalls int
	lastSlot  uuid.UUID
	lastApt   *model.Appointment
	lastEvent *model.OutboxEvent
	bookErr   error
}

func (f *fakeAptRepo) Get(_ context.Context, _ uuid.UUID) (*model.Appointment, error) {
	return nil, apperrors.NotFound("appointment", nil)
}

func (f *fakeAptRepo) Book(_ context.Context, slotID uuid.UUID, apt *model.Appointment, event *model.OutboxEvent) error {
	f.bookCalls++
	f.lastSlot = slotID
	f.lastApt = apt
	f.lastEvent = event
	return f.bookErr
}

func (f *fakeAptRepo) Cancel(_ context.Context, _, _ uuid.UUID, _ *model.OutboxEvent) error {
	return nil
}

func (f *fakeAptRepo) ListForPatient(_ context.Context, _ uuid.UUID) ([]*model.Appointment, error) {
	return nil, nil
}

func (f *fakeAptRepo) ListForDoctor(_ context.Context, _ uuid.UUID) ([]*model.Appointment, error) {
	return nil, nil
}

type fakeSlotRepo struct {
	slots    map[uuid.UUID]*model.TimeSlot
	getCalls int
}

func (f *fakeSlotRepo) Get(_ context.Context, id uuid.UUID) (*model.TimeSlot, error) {
	f.getCalls++
	slot, ok := f.slots[id]
	if !ok {
		return nil, apperrors.NotFound("time slot", nil)
	}
	copied := *slot
	return &copied, nil
}

func (f *fakeSlotRepo) ListForDoctorDate(_ context.Context, _ string, _ string) ([]*model.TimeSlot, error) {
	return nil, nil
}

func (f *fakeSlotRepo) UpsertIfAbsent(_ context.Context, _ []*model.TimeSlot) error { return nil }

type fakeUserRepo struct {
	users map[uuid.UUID]*model.User
}

func (f *fakeUserRepo) Create(_ context.Context, _ *model.User) error { return nil }

func (f *fakeUserRepo) Get(_ context.Context, id uuid.UUID) (*model.User, error) {
	if user, ok := f.users[id]; ok {
		return user, nil
	}
	return nil, apperrors.NotFound("user", nil)
}

func (f *fakeUserRepo) GetByEmail(_ context.Context, _ string) (*model.User, error) {
	return nil, apperrors.NotFound("user", nil)
}

func (f *fakeUserRepo) Update(_ context.Context, _ *model.User) error { return nil }

type fakeNotifier struct {
	confirmations []string
}

func (f *fakeNotifier) SendBookingConfirmation(_ context.Context, to string, _ *model.Appointment) error {
	f.confirmations = append(f.confirmations, to)
	return nil
}

func (f *fakeNotifier) SendCancellationNotice(_ context.Context, _ string, _ *model.Appointment) error {
	return nil
}

func newTestService(aptRepo *fakeAptRepo, slotRepo *fakeSlotRepo, users *fakeUserRepo, notifier *fakeNotifier) *Service {
	if slotRepo == nil {
		slotRepo = &fakeSlotRepo{slots: map[uuid.UUID]*model.TimeSlot{}}
	}
	if users == nil {
		users = &fakeUserRepo{users: map[uuid.UUID]*model.User{}}
	}
	if notifier == nil {
		notifier = &fakeNotifier{}
	}
	svc := NewService(aptRepo, slotRepo, users, notifier, testMetrics, testLogger)
	svc.delay = 0
	return svc
}

func TestBookRejectsMissingSlot(t *testing.T) {
	aptRepo := &fakeAptRepo{}
	slotRepo := &fakeSlotRepo{slots: map[uuid.UUID]*model.TimeSlot{}}
	svc := newTestService(aptRepo, slotRepo, nil, nil)

	_, err := svc.Book(context.Background(), uuid.New(), &model.BookAppointmentRequest{
		DoctorID: uuid.New().String(),
		Reason:   "checkup",
	})

	assert.Equal(t, apperrors.ErrBadRequest, apperrors.CodeOf(err))
	assert.Zero(t, aptRepo.bookCalls)
	assert.Zero(t, slotRepo.getCalls)
}

func TestBookRejectsBlankReason(t *testing.T) {
	aptRepo := &fakeAptRepo{}
	slotRepo := &fakeSlotRepo{slots: map[uuid.UUID]*model.TimeSlot{}}
	svc := newTestService(aptRepo, slotRepo, nil, nil)

	for _, reason := range []string{"", "   ", "\t\n"} {
		_, err := svc.Book(context.Background(), uuid.New(), &model.BookAppointmentRequest{
			DoctorID:   uuid.New().String(),
			TimeSlotID: uuid.New().String(),
			Reason:     reason,
		})
		assert.Equal(t, apperrors.ErrBadRequest, apperrors.CodeOf(err))
	}
	assert.Zero(t, aptRepo.bookCalls)
	assert.Zero(t, slotRepo.getCalls)
}

func TestBookRejectsInvalidDoctorRef(t *testing.T) {
	aptRepo := &fakeAptRepo{}
	svc := newTestService(aptRepo, nil, nil, nil)

	_, err := svc.Book(context.Background(), uuid.New(), &model.BookAppointmentRequest{
		DoctorID:   "not-a-doctor",
		TimeSlotID: uuid.New().String(),
		Reason:     "checkup",
	})

	assert.Equal(t, apperrors.ErrBadRequest, apperrors.CodeOf(err))
	assert.Zero(t, aptRepo.bookCalls)
}

func TestBookRealDoctor(t *testing.T) {
	patientID := uuid.New()
	doctorID := uuid.New()
	slotID := uuid.New()

	aptRepo := &fakeAptRepo{}
	slotRepo := &fakeSlotRepo{slots: map[uuid.UUID]*model.TimeSlot{
		slotID: {ID: slotID.String(), DoctorID: doctorID.String(), Date: "2026-03-15", Time: "10:00"},
	}}
	users := &fakeUserRepo{users: map[uuid.UUID]*model.User{
		patientID: {ID: patientID, Email: "patient@example.com"},
	}}
	notifier := &fakeNotifier{}

	svc := newTestService(aptRepo, slotRepo, users, notifier)
	apt, err := svc.Book(context.Background(), patientID, &model.BookAppointmentRequest{
		DoctorID:   doctorID.String(),
		TimeSlotID: slotID.String(),
		Reason:     "  annual checkup  ",
	})
	require.NoError(t, err)

	assert.Equal(t, 1, aptRepo.bookCalls)
	assert.Equal(t, slotID, aptRepo.lastSlot)
	assert.Equal(t, model.EventAppointmentBooked, aptRepo.lastEvent.EventType)

	assert.Equal(t, patientID, apt.PatientID)
	assert.Equal(t, doctorID.String(), apt.DoctorID)
	assert.Equal(t, "annual checkup", apt.Reason)
	assert.Equal(t, model.AppointmentStatusScheduled, apt.Status)
	require.NotNil(t, apt.StartTime)
	require.NotNil(t, apt.EndTime)
	assert.Equal(t, 30*time.Minute, apt.EndTime.Sub(*apt.StartTime))
	require.NotNil(t, apt.TimeSlot)
	assert.True(t, apt.TimeSlot.IsBooked)

	assert.Equal(t, []string{"patient@example.com"}, notifier.confirmations)
}

func TestBookRejectsForeignSlot(t *testing.T) {
	slotID := uuid.New()
	aptRepo := &fakeAptRepo{}
	slotRepo := &fakeSlotRepo{slots: map[uuid.UUID]*model.TimeSlot{
		slotID: {ID: slotID.String(), DoctorID: uuid.New().String(), Date: "2026-03-15", Time: "10:00"},
	}}

	svc := newTestService(aptRepo, slotRepo, nil, nil)
	_, err := svc.Book(context.Background(), uuid.New(), &model.BookAppointmentRequest{
		DoctorID:   uuid.New().String(),
		TimeSlotID: slotID.String(),
		Reason:     "checkup",
	})

	assert.Equal(t, apperrors.ErrBadRequest, apperrors.CodeOf(err))
	assert.Zero(t, aptRepo.bookCalls)
}

func TestBookSlotConflict(t *testing.T) {
	doctorID := uuid.New()
	slotID := uuid.New()
	aptRepo := &fakeAptRepo{bookErr: apperrors.Conflict("time slot is no longer available", nil)}
	slotRepo := &fakeSlotRepo{slots: map[uuid.UUID]*model.TimeSlot{
		slotID: {ID: slotID.String(), DoctorID: doctorID.String(), Date: "2026-03-15", Time: "10:00"},
	}}

	svc := newTestService(aptRepo, slotRepo, nil, nil)
	_, err := svc.Book(context.Background(), uuid.New(), &model.BookAppointmentRequest{
		DoctorID:   doctorID.String(),
		TimeSlotID: slotID.String(),
		Reason:     "checkup",
	})

	assert.Equal(t, apperrors.ErrConflict, apperrors.CodeOf(err))
}

func TestBookSlotNotFound(t *testing.T) {
	aptRepo := &fakeAptRepo{}
	svc := newTestService(aptRepo, nil, nil, nil)

	_, err := svc.Book(context.Background(), uuid.New(), &model.BookAppointmentRequest{
		DoctorID:   uuid.New().String(),
		TimeSlotID: uuid.New().String(),
		Reason:     "checkup",
	})

	assert.Equal(t, apperrors.ErrNotFound, apperrors.CodeOf(err))
	assert.Zero(t, aptRepo.bookCalls)
}

func TestBookDemoDoctorIsNoOp(t *testing.T) {
	patientID := uuid.New()
	aptRepo := &fakeAptRepo{}
	slotRepo := &fakeSlotRepo{slots: map[uuid.UUID]*model.TimeSlot{}}

	svc := newTestService(aptRepo, slotRepo, nil, nil)
	apt, err := svc.Book(context.Background(), patientID, &model.BookAppointmentRequest{
		DoctorID:   "2",
		TimeSlotID: "slot-3",
		Reason:     "demo visit",
	})
	require.NoError(t, err)

	assert.Zero(t, aptRepo.bookCalls)
	assert.Zero(t, slotRepo.getCalls)
	assert.Equal(t, "2", apt.DoctorID)
	assert.Equal(t, "slot-3", apt.TimeSlotID)
	assert.Equal(t, model.AppointmentStatusScheduled, apt.Status)
}

func TestBookDemoDoctorHonorsCancellation(t *testing.T) {
	svc := newTestService(&fakeAptRepo{}, nil, nil, nil)
	svc.delay = time.Minute

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.Book(ctx, uuid.New(), &model.BookAppointmentRequest{
		DoctorID:   "1",
		TimeSlotID: "slot-1",
		Reason:     "demo visit",
	})

	assert.ErrorIs(t, err, context.Canceled)
}
