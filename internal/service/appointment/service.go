package appointment

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/medibook/medibook-api/internal/model"
	"github.com/medibook/medibook-api/internal/repository"
	"github.com/medibook/medibook-api/internal/service/notification"
	apperrors "github.com/medibook/medibook-api/pkg/errors"
	"github.com/medibook/medibook-api/pkg/logger"
	"github.com/medibook/medibook-api/pkg/metrics"
)

// Service owns appointment listing, classification and cancellation.
type Service struct {
	repo     repository.AppointmentRepository
	userRepo repository.UserRepository
	notifSvc notification.Service
	metrics  *metrics.Metrics
	logger   *logger.Logger
	now      func() time.Time
}

func NewService(
	repo repository.AppointmentRepository,
	userRepo repository.UserRepository,
	notifSvc notification.Service,
	m *metrics.Metrics,
	log *logger.Logger,
) *Service {
	return &Service{
		repo:     repo,
		userRepo: userRepo,
		notifSvc: notifSvc,
		metrics:  m,
		logger:   log,
		now:      time.Now,
	}
}

// ListForPatient fetches the patient's appointments (doctor and slot
// joined, newest first) and partitions them by the classification rule.
func (s *Service) ListForPatient(ctx context.Context, patientID uuid.UUID) (*model.AppointmentList, error) {
	appointments, err := s.repo.ListForPatient(ctx, patientID)
	if err != nil {
		return nil, fmt.Errorf("failed to list appointments: %w", err)
	}
	return Partition(appointments, s.now()), nil
}

// Cancel transitions a scheduled appointment to cancelled and frees its
// slot, both in one transaction. Only the owning patient may cancel.
func (s *Service) Cancel(ctx context.Context, patientID, aptID uuid.UUID) (*model.Appointment, error) {
	apt, err := s.repo.Get(ctx, aptID)
	if err != nil {
		return nil, err
	}

	if apt.PatientID != patientID {
		return nil, apperrors.Forbidden("appointment belongs to another patient", nil)
	}
	if apt.Status == model.AppointmentStatusCancelled {
		return nil, apperrors.Conflict("appointment is already cancelled", nil)
	}
	if apt.Status == model.AppointmentStatusCompleted {
		return nil, apperrors.Conflict("cannot cancel a completed appointment", nil)
	}

	slotID, err := uuid.Parse(apt.TimeSlotID)
	if err != nil {
		return nil, fmt.Errorf("invalid time slot reference: %w", err)
	}

	event, err := cancelledEvent(apt)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Cancel(ctx, aptID, slotID, event); err != nil {
		s.metrics.CancellationsTotal.WithLabelValues("error").Inc()
		return nil, err
	}
	s.metrics.CancellationsTotal.WithLabelValues("success").Inc()

	apt.Status = model.AppointmentStatusCancelled
	s.sendCancellationNotice(ctx, patientID, apt)
	return apt, nil
}

// DoctorSchedule backs the doctor dashboard: the doctor's non-cancelled
// appointments split into today and later.
func (s *Service) DoctorSchedule(ctx context.Context, doctorID uuid.UUID) (*model.DoctorSchedule, error) {
	appointments, err := s.repo.ListForDoctor(ctx, doctorID)
	if err != nil {
		return nil, fmt.Errorf("failed to list doctor appointments: %w", err)
	}

	today := s.now().Format("2006-01-02")
	schedule := &model.DoctorSchedule{
		Today:    []*model.Appointment{},
		Upcoming: []*model.Appointment{},
	}
	for _, apt := range appointments {
		switch {
		case apt.TimeSlot != nil && apt.TimeSlot.Date == today:
			schedule.Today = append(schedule.Today, apt)
		case IsUpcoming(apt, s.now()):
			schedule.Upcoming = append(schedule.Upcoming, apt)
		}
	}
	return schedule, nil
}

func (s *Service) sendCancellationNotice(ctx context.Context, patientID uuid.UUID, apt *model.Appointment) {
	user, err := s.userRepo.Get(ctx, patientID)
	if err != nil {
		s.logger.Error(err, "failed to look up patient for cancellation email")
		return
	}
	if err := s.notifSvc.SendCancellationNotice(ctx, user.Email, apt); err != nil {
		s.logger.Error(err, "failed to send cancellation notice")
	}
}

func cancelledEvent(apt *model.Appointment) (*model.OutboxEvent, error) {
	payload, err := json.Marshal(map[string]interface{}{
		"appointment_id": apt.ID,
		"patient_id":     apt.PatientID,
		"time_slot_id":   apt.TimeSlotID,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal event payload: %w", err)
	}
	return &model.OutboxEvent{
		EventType: model.EventAppointmentCancelled,
		Payload:   payload,
	}, nil
}
