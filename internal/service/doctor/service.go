package doctor

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"

	"github.com/medibook/medibook-api/internal/model"
	"github.com/medibook/medibook-api/internal/repository"
	apperrors "github.com/medibook/medibook-api/pkg/errors"
)

// SlotStrategy selects how demo-doctor slots materialize.
type SlotStrategy string

const (
	// SlotStrategyEphemeral synthesizes slots per request, no writes.
	SlotStrategyEphemeral SlotStrategy = "ephemeral"
	// SlotStrategyPersisted upserts synthesized slots on first view so
	// the booked flags stay stable across views.
	SlotStrategyPersisted SlotStrategy = "persisted"
)

const (
	demoSlotCount     = 8
	demoSlotInterval  = 30 * time.Minute
	demoFirstSlotHour = 9
	demoBookedChance  = 0.3

	doctorCacheTTL = 5 * time.Minute
)

// Service resolves doctor profiles and their bookable slots. The demo
// branch is decided once here, at DoctorRef granularity.
type Service struct {
	repo     repository.DoctorRepository
	slotRepo repository.TimeSlotRepository
	strategy SlotStrategy
	cache    *gocache.Cache
}

func NewService(repo repository.DoctorRepository, slotRepo repository.TimeSlotRepository, strategy SlotStrategy) *Service {
	if strategy == "" {
		strategy = SlotStrategyEphemeral
	}
	return &Service{
		repo:     repo,
		slotRepo: slotRepo,
		strategy: strategy,
		cache:    gocache.New(doctorCacheTTL, 2*doctorCacheTTL),
	}
}

// GetDoctor resolves a ref to a profile: demo refs index the in-memory
// catalog, real refs must match exactly one stored row.
func (s *Service) GetDoctor(ctx context.Context, ref model.DoctorRef) (*model.Doctor, error) {
	if ref.IsDemo() {
		if ref.Index < 0 || ref.Index >= len(demoCatalog) {
			return nil, apperrors.NotFound("doctor", nil)
		}
		return demoCatalog[ref.Index], nil
	}

	key := ref.ID.String()
	if cached, ok := s.cache.Get(key); ok {
		return cached.(*model.Doctor), nil
	}

	doctor, err := s.repo.Get(ctx, ref.ID)
	if err != nil {
		return nil, err
	}
	s.cache.Set(key, doctor, gocache.DefaultExpiration)
	return doctor, nil
}

// ListDoctors merges stored doctors with the demo catalog, optionally
// filtered by specialization and name substring.
func (s *Service) ListDoctors(ctx context.Context, specialization, name string) ([]*model.Doctor, error) {
	stored, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list doctors: %w", err)
	}

	merged := make([]*model.Doctor, 0, len(stored)+len(demoCatalog))
	merged = append(merged, demoCatalog...)
	merged = append(merged, stored...)

	if specialization == "" && name == "" {
		return merged, nil
	}

	filtered := merged[:0]
	for _, d := range merged {
		if specialization != "" && !strings.EqualFold(d.Specialization, specialization) {
			continue
		}
		if name != "" && !strings.Contains(strings.ToLower(d.Name), strings.ToLower(name)) {
			continue
		}
		filtered = append(filtered, d)
	}
	return filtered, nil
}

// GetTimeSlots returns the doctor's slots for a date, ascending by time.
// The date must be YYYY-MM-DD.
func (s *Service) GetTimeSlots(ctx context.Context, ref model.DoctorRef, date string) ([]*model.TimeSlot, error) {
	normalized, err := normalizeDate(date)
	if err != nil {
		return nil, apperrors.BadRequest("invalid date, expected YYYY-MM-DD", err)
	}

	if ref.IsDemo() {
		if ref.Index < 0 || ref.Index >= len(demoCatalog) {
			return nil, apperrors.NotFound("doctor", nil)
		}
		slots := synthesizeDemoSlots(ref, normalized)
		if s.strategy != SlotStrategyPersisted {
			return slots, nil
		}

		for i, slot := range slots {
			slot.ID = demoSlotID(ref, normalized, i+1)
		}
		if err := s.slotRepo.UpsertIfAbsent(ctx, slots); err != nil {
			return nil, fmt.Errorf("failed to persist demo slots: %w", err)
		}
		// Read back so repeated views report the stored booked flags
		// instead of the fresh random draw.
		return s.slotRepo.ListForDoctorDate(ctx, ref.String(), normalized)
	}

	return s.slotRepo.ListForDoctorDate(ctx, ref.ID.String(), normalized)
}

// demoSlotID derives a stable identifier per doctor, date and position so
// every view of the same demo slot targets the same stored row.
func demoSlotID(ref model.DoctorRef, date string, n int) string {
	name := fmt.Sprintf("medibook:demo-slot:%s:%s:%d", ref.String(), date, n)
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(name)).String()
}

// synthesizeDemoSlots builds 8 half-hour slots starting 09:00, each with
// an independent pseudo-random booked flag.
func synthesizeDemoSlots(ref model.DoctorRef, date string) []*model.TimeSlot {
	slots := make([]*model.TimeSlot, 0, demoSlotCount)
	start := time.Date(0, 1, 1, demoFirstSlotHour, 0, 0, 0, time.UTC)
	for i := 0; i < demoSlotCount; i++ {
		at := start.Add(time.Duration(i) * demoSlotInterval)
		slots = append(slots, &model.TimeSlot{
			ID:       fmt.Sprintf("slot-%d", i+1),
			DoctorID: ref.String(),
			Date:     date,
			Time:     at.Format("15:04"),
			IsBooked: rand.Float64() < demoBookedChance,
		})
	}
	return slots
}

func normalizeDate(date string) (string, error) {
	t, err := time.Parse("2006-01-02", date)
	if err != nil {
		return "", err
	}
	return t.Format("2006-01-02"), nil
}
