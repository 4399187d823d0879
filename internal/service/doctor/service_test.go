package doctor

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medibook/medibook-api/internal/model"
	apperrors "github.com/medibook/medibook-api/pkg/errors"
)

type fakeDoctorRepo struct {
	doctors  map[uuid.UUID]*model.Doctor
	listed   []*model.Doctor
	getCalls int
}

func (f *fakeDoctorRepo) Create(_ context.Context, _ *model.Doctor) error { return nil }

func (f *fakeDoctorRepo) Get(_ context.Context, id uuid.UUID) (*model.Doctor, error) {
	f.getCalls++
	if d, ok := f.doctors[id]; ok {
		return d, nil
	}
	return nil, apperrors.NotFound("doctor", nil)
}

func (f *fakeDoctorRepo) List(_ context.Context) ([]*model.Doctor, error) {
	return f.listed, nil
}

// fakeSlotRepo stores upserted rows like the real table: inserts for an
// existing ID are ignored, so booked flags survive later views.
type fakeSlotRepo struct {
	slots       []*model.TimeSlot
	stored      map[string]*model.TimeSlot
	upsertCalls int
	listedDates []string
	listedIDs   []string
}

func (f *fakeSlotRepo) Get(_ context.Context, _ uuid.UUID) (*model.TimeSlot, error) {
	return nil, apperrors.NotFound("time slot", nil)
}

func (f *fakeSlotRepo) ListForDoctorDate(_ context.Context, doctorID string, date string) ([]*model.TimeSlot, error) {
	f.listedIDs = append(f.listedIDs, doctorID)
	f.listedDates = append(f.listedDates, date)
	if f.stored == nil {
		return f.slots, nil
	}
	var out []*model.TimeSlot
	for _, slot := range f.stored {
		if slot.DoctorID == doctorID && slot.Date == date {
			out = append(out, slot)
		}
	}
	return out, nil
}

func (f *fakeSlotRepo) UpsertIfAbsent(_ context.Context, slots []*model.TimeSlot) error {
	f.upsertCalls++
	if f.stored == nil {
		f.stored = map[string]*model.TimeSlot{}
	}
	for _, slot := range slots {
		if _, ok := f.stored[slot.ID]; !ok {
			copied := *slot
			f.stored[slot.ID] = &copied
		}
	}
	return nil
}

func mustRef(t *testing.T, raw string) model.DoctorRef {
	t.Helper()
	ref, err := model.ParseDoctorRef(raw)
	require.NoError(t, err)
	return ref
}

func TestGetDoctorDemo(t *testing.T) {
	svc := NewService(&fakeDoctorRepo{}, &fakeSlotRepo{}, SlotStrategyEphemeral)

	doctor, err := svc.GetDoctor(context.Background(), mustRef(t, "1"))
	require.NoError(t, err)
	assert.Equal(t, "Dr. Sarah Khan", doctor.Name)
	assert.Equal(t, "Cardiologist", doctor.Specialization)

	doctor, err = svc.GetDoctor(context.Background(), mustRef(t, "6"))
	require.NoError(t, err)
	assert.Equal(t, "Dr. Mohammad Hossain", doctor.Name)
}

func TestGetDoctorDemoOutOfRange(t *testing.T) {
	svc := NewService(&fakeDoctorRepo{}, &fakeSlotRepo{}, SlotStrategyEphemeral)

	_, err := svc.GetDoctor(context.Background(), mustRef(t, "7"))
	assert.Equal(t, apperrors.ErrNotFound, apperrors.CodeOf(err))

	_, err = svc.GetDoctor(context.Background(), mustRef(t, "99"))
	assert.Equal(t, apperrors.ErrNotFound, apperrors.CodeOf(err))
}

func TestGetDoctorRealCaches(t *testing.T) {
	id := uuid.New()
	repo := &fakeDoctorRepo{doctors: map[uuid.UUID]*model.Doctor{
		id: {ID: id.String(), Name: "Dr. Store"},
	}}
	svc := NewService(repo, &fakeSlotRepo{}, SlotStrategyEphemeral)
	ref := mustRef(t, id.String())

	for i := 0; i < 3; i++ {
		doctor, err := svc.GetDoctor(context.Background(), ref)
		require.NoError(t, err)
		assert.Equal(t, "Dr. Store", doctor.Name)
	}
	assert.Equal(t, 1, repo.getCalls)
}

func TestListDoctorsMergesCatalog(t *testing.T) {
	stored := &model.Doctor{ID: uuid.New().String(), Name: "Dr. Stored", Specialization: "Dermatologist"}
	svc := NewService(&fakeDoctorRepo{listed: []*model.Doctor{stored}}, &fakeSlotRepo{}, SlotStrategyEphemeral)

	doctors, err := svc.ListDoctors(context.Background(), "", "")
	require.NoError(t, err)
	assert.Len(t, doctors, 7)
	assert.Equal(t, "Dr. Sarah Khan", doctors[0].Name)
	assert.Equal(t, "Dr. Stored", doctors[6].Name)
}

func TestListDoctorsFilters(t *testing.T) {
	svc := NewService(&fakeDoctorRepo{}, &fakeSlotRepo{}, SlotStrategyEphemeral)

	bySpec, err := svc.ListDoctors(context.Background(), "cardiologist", "")
	require.NoError(t, err)
	require.Len(t, bySpec, 1)
	assert.Equal(t, "Dr. Sarah Khan", bySpec[0].Name)

	byName, err := svc.ListDoctors(context.Background(), "", "rahman")
	require.NoError(t, err)
	require.Len(t, byName, 1)
	assert.Equal(t, "Dr. Aisha Rahman", byName[0].Name)

	none, err := svc.ListDoctors(context.Background(), "Cardiologist", "hossain")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestGetTimeSlotsDemo(t *testing.T) {
	svc := NewService(&fakeDoctorRepo{}, &fakeSlotRepo{}, SlotStrategyEphemeral)

	slots, err := svc.GetTimeSlots(context.Background(), mustRef(t, "1"), "2026-03-15")
	require.NoError(t, err)
	require.Len(t, slots, 8)

	wantTimes := []string{"09:00", "09:30", "10:00", "10:30", "11:00", "11:30", "12:00", "12:30"}
	for i, slot := range slots {
		assert.Equal(t, fmt.Sprintf("slot-%d", i+1), slot.ID)
		assert.Equal(t, "1", slot.DoctorID)
		assert.Equal(t, "2026-03-15", slot.Date)
		assert.Equal(t, wantTimes[i], slot.Time)
	}
}

func TestGetTimeSlotsDemoEphemeralDoesNotPersist(t *testing.T) {
	slotRepo := &fakeSlotRepo{}
	svc := NewService(&fakeDoctorRepo{}, slotRepo, SlotStrategyEphemeral)

	slots, err := svc.GetTimeSlots(context.Background(), mustRef(t, "2"), "2026-03-15")
	require.NoError(t, err)
	assert.Zero(t, slotRepo.upsertCalls)
	assert.Equal(t, "slot-1", slots[0].ID)
}

func TestGetTimeSlotsDemoPersistedReturnsStoredRows(t *testing.T) {
	slotRepo := &fakeSlotRepo{}
	svc := NewService(&fakeDoctorRepo{}, slotRepo, SlotStrategyPersisted)

	first, err := svc.GetTimeSlots(context.Background(), mustRef(t, "2"), "2026-03-15")
	require.NoError(t, err)
	require.Len(t, first, 8)
	for _, slot := range first {
		_, parseErr := uuid.Parse(slot.ID)
		assert.NoError(t, parseErr, "persisted slot IDs must be unique per doctor/date")
	}

	// A later view returns the stored rows, booked flags included, not a
	// fresh random draw.
	second, err := svc.GetTimeSlots(context.Background(), mustRef(t, "2"), "2026-03-15")
	require.NoError(t, err)
	assert.ElementsMatch(t, first, second)
	assert.Equal(t, 2, slotRepo.upsertCalls)
}

func TestGetTimeSlotsDemoPersistedAcrossDoctorsAndDates(t *testing.T) {
	slotRepo := &fakeSlotRepo{}
	svc := NewService(&fakeDoctorRepo{}, slotRepo, SlotStrategyPersisted)

	forDoctor1, err := svc.GetTimeSlots(context.Background(), mustRef(t, "1"), "2026-03-15")
	require.NoError(t, err)
	forDoctor2, err := svc.GetTimeSlots(context.Background(), mustRef(t, "2"), "2026-03-15")
	require.NoError(t, err)
	otherDate, err := svc.GetTimeSlots(context.Background(), mustRef(t, "1"), "2026-03-16")
	require.NoError(t, err)

	seen := map[string]bool{}
	for _, slots := range [][]*model.TimeSlot{forDoctor1, forDoctor2, otherDate} {
		require.Len(t, slots, 8)
		for _, slot := range slots {
			assert.False(t, seen[slot.ID], "slot ID %s reused across doctor/date", slot.ID)
			seen[slot.ID] = true
		}
	}
	assert.Len(t, slotRepo.stored, 24)
}

func TestGetTimeSlotsDemoOutOfRange(t *testing.T) {
	svc := NewService(&fakeDoctorRepo{}, &fakeSlotRepo{}, SlotStrategyEphemeral)

	_, err := svc.GetTimeSlots(context.Background(), mustRef(t, "9"), "2026-03-15")
	assert.Equal(t, apperrors.ErrNotFound, apperrors.CodeOf(err))
}

func TestGetTimeSlotsRejectsBadDate(t *testing.T) {
	svc := NewService(&fakeDoctorRepo{}, &fakeSlotRepo{}, SlotStrategyEphemeral)

	for _, date := range []string{"", "15-03-2026", "2026/03/15", "someday"} {
		_, err := svc.GetTimeSlots(context.Background(), mustRef(t, "1"), date)
		assert.Equal(t, apperrors.ErrBadRequest, apperrors.CodeOf(err), "date %q", date)
	}
}

func TestGetTimeSlotsReal(t *testing.T) {
	id := uuid.New()
	slotRepo := &fakeSlotRepo{slots: []*model.TimeSlot{
		{ID: uuid.New().String(), DoctorID: id.String(), Date: "2026-03-15", Time: "10:00"},
	}}
	svc := NewService(&fakeDoctorRepo{}, slotRepo, SlotStrategyEphemeral)

	slots, err := svc.GetTimeSlots(context.Background(), mustRef(t, id.String()), "2026-03-15")
	require.NoError(t, err)
	assert.Len(t, slots, 1)
	assert.Equal(t, []string{"2026-03-15"}, slotRepo.listedDates)
	assert.Equal(t, []string{id.String()}, slotRepo.listedIDs)
}
