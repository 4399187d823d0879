package notification

import (
	"context"
	"fmt"

	"gopkg.in/gomail.v2"

	"github.com/medibook/medibook-api/config"
	"github.com/medibook/medibook-api/internal/model"
)

// Service sends booking lifecycle emails. Failures are logged by callers
// and never fail the underlying workflow.
type Service interface {
	SendBookingConfirmation(ctx context.Context, to string, apt *model.Appointment) error
	SendCancellationNotice(ctx context.Context, to string, apt *model.Appointment) error
}

type emailService struct {
	dialer *gomail.Dialer
	from   string
}

func NewEmailService(cfg config.SMTPConfig) Service {
	if !cfg.Enabled {
		return &noopService{}
	}
	return &emailService{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:   cfg.From,
	}
}

func (s *emailService) SendBookingConfirmation(ctx context.Context, to string, apt *model.Appointment) error {
	subject := "Your appointment is booked"
	body := fmt.Sprintf(
		"Your appointment has been booked successfully.\n\nReason: %s\nReference: %s\n",
		apt.Reason, apt.ID,
	)
	if apt.TimeSlot != nil {
		body += fmt.Sprintf("When: %s %s\n", apt.TimeSlot.Date, apt.TimeSlot.Time)
	}
	return s.send(to, subject, body)
}

func (s *emailService) SendCancellationNotice(ctx context.Context, to string, apt *model.Appointment) error {
	subject := "Your appointment was cancelled"
	body := fmt.Sprintf(
		"Your appointment has been cancelled.\n\nReference: %s\n",
		apt.ID,
	)
	return s.send(to, subject, body)
}

func (s *emailService) send(to, subject, body string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

// noopService stands in when SMTP is not configured.
type noopService struct{}

func (*noopService) SendBookingConfirmation(context.Context, string, *model.Appointment) error {
	return nil
}

func (*noopService) SendCancellationNotice(context.Context, string, *model.Appointment) error {
	return nil
}
