package booking

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/medibook/medibook-api/internal/model"
	"github.com/medibook/medibook-api/internal/repository"
	"github.com/medibook/medibook-api/internal/service/notification"
	apperrors "github.com/medibook/medibook-api/pkg/errors"
	"github.com/medibook/medibook-api/pkg/logger"
	"github.com/medibook/medibook-api/pkg/metrics"
)

const (
	slotDuration = 30 * time.Minute
	// demoDelay imitates the latency of a real booking for demo doctors.
	demoDelay = time.Second
)

// Service converts a (doctor, slot, reason, patient) tuple into a
// confirmed appointment. Real bookings claim the slot and insert the
// appointment in one transaction; demo bookings are a timed no-op.
type Service struct {
	aptRepo  repository.AppointmentRepository
	slotRepo repository.TimeSlotRepository
	userRepo repository.UserRepository
	notifSvc notification.Service
	metrics  *metrics.Metrics
	logger   *logger.Logger
	delay    time.Duration
}

func NewService(
	aptRepo repository.AppointmentRepository,
	slotRepo repository.TimeSlotRepository,
	userRepo repository.UserRepository,
	notifSvc notification.Service,
	m *metrics.Metrics,
	log *logger.Logger,
) *Service {
	return &Service{
		aptRepo:  aptRepo,
		slotRepo: slotRepo,
		userRepo: userRepo,
		notifSvc: notifSvc,
		metrics:  m,
		logger:   log,
		delay:    demoDelay,
	}
}

// Book validates the request, then either performs the demo no-op or the
// transactional claim+insert. Every precondition failure returns before
// any write.
func (s *Service) Book(ctx context.Context, patientID uuid.UUID, req *model.BookAppointmentRequest) (*model.Appointment, error) {
	if req.TimeSlotID == "" {
		return nil, apperrors.BadRequest("please select a time slot", nil)
	}
	reason := strings.TrimSpace(req.Reason)
	if reason == "" {
		return nil, apperrors.BadRequest("please provide a reason for the appointment", nil)
	}

	ref, err := model.ParseDoctorRef(req.DoctorID)
	if err != nil {
		return nil, apperrors.BadRequest("invalid doctor ID", err)
	}

	if ref.IsDemo() {
		return s.bookDemo(ctx, patientID, ref, req.TimeSlotID, reason)
	}

	slotID, err := uuid.Parse(req.TimeSlotID)
	if err != nil {
		return nil, apperrors.BadRequest("invalid time slot ID", err)
	}

	slot, err := s.slotRepo.Get(ctx, slotID)
	if err != nil {
		return nil, err
	}
	if slot.DoctorID != ref.ID.String() {
		return nil, apperrors.BadRequest("time slot does not belong to this doctor", nil)
	}

	apt := &model.Appointment{
		ID:         uuid.New(),
		PatientID:  patientID,
		DoctorID:   ref.ID.String(),
		TimeSlotID: slotID.String(),
		Reason:     reason,
		FollowUp:   false,
		Status:     model.AppointmentStatusScheduled,
	}
	if start, err := slot.StartsAt(time.Local); err == nil {
		end := start.Add(slotDuration)
		apt.StartTime = &start
		apt.EndTime = &end
	}

	event, err := bookedEvent(apt)
	if err != nil {
		return nil, err
	}

	if err := s.aptRepo.Book(ctx, slotID, apt, event); err != nil {
		if apperrors.CodeOf(err) == apperrors.ErrConflict {
			s.metrics.BookingConflicts.Inc()
		}
		s.metrics.BookingsTotal.WithLabelValues("error").Inc()
		return nil, err
	}
	s.metrics.BookingsTotal.WithLabelValues("success").Inc()

	apt.TimeSlot = slot
	apt.TimeSlot.IsBooked = true

	s.sendConfirmation(ctx, patientID, apt)
	return apt, nil
}

// bookDemo waits out the demo delay and reports success without touching
// the store.
func (s *Service) bookDemo(ctx context.Context, patientID uuid.UUID, ref model.DoctorRef, slotID, reason string) (*model.Appointment, error) {
	select {
	case <-time.After(s.delay):
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	s.metrics.BookingsTotal.WithLabelValues("demo").Inc()

	now := time.Now()
	return &model.Appointment{
		ID:         uuid.New(),
		PatientID:  patientID,
		DoctorID:   ref.String(),
		TimeSlotID: slotID,
		Reason:     reason,
		Status:     model.AppointmentStatusScheduled,
		CreatedAt:  now,
		UpdatedAt:  now,
	}, nil
}

func (s *Service) sendConfirmation(ctx context.Context, patientID uuid.UUID, apt *model.Appointment) {
	user, err := s.userRepo.Get(ctx, patientID)
	if err != nil {
		s.logger.Error(err, "failed to look up patient for confirmation email")
		return
	}
	if err := s.notifSvc.SendBookingConfirmation(ctx, user.Email, apt); err != nil {
		s.logger.Error(err, "failed to send booking confirmation")
	}
}

func bookedEvent(apt *model.Appointment) (*model.OutboxEvent, error) {
	payload, err := json.Marshal(map[string]interface{}{
		"appointment_id": apt.ID,
		"patient_id":     apt.PatientID,
		"doctor_id":      apt.DoctorID,
		"time_slot_id":   apt.TimeSlotID,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal event payload: %w", err)
	}
	return &model.OutboxEvent{
		EventType: model.EventAppointmentBooked,
		Payload:   payload,
	}, nil
}
