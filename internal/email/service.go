package email

import (
	"fmt"

	"gopkg.in/gomail.v2"

	"github.com/medibook/booking-api/config"
)

// Service sends transactional mail. Sends are best-effort; callers log
// failures instead of surfacing them.
type Service interface {
	SendBookingConfirmation(to, patientName, doctorName, timeSlot string) error
}

type gomailService struct {
	dialer *gomail.Dialer
	from   string
}

type noopService struct{}

// NewService builds a mailer from SMTP config, or a no-op sender when no
// SMTP host is configured.
func NewService(cfg config.SMTPConfig) Service {
	if cfg.Host == "" {
		return noopService{}
	}
	return &gomailService{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Password),
		from:   cfg.From,
	}
}

func (s *gomailService) SendBookingConfirmation(to, patientName, doctorName, timeSlot string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", "Your appointment is booked")
	m.SetBody("text/plain", fmt.Sprintf(
		"Dear %s,\n\nYour appointment with %s at %s is confirmed.\n",
		patientName, doctorName, timeSlot,
	))

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send booking confirmation: %w", err)
	}
	return nil
}

func (noopService) SendBookingConfirmation(to, patientName, doctorName, timeSlot string) error {
	return nil
}
