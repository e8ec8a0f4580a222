// Package email sends transactional mail. Delivery is best effort; callers
// must not fail their own operation when a send fails.
package email

import (
	"fmt"
	"time"

	"gopkg.in/gomail.v2"

	"github.com/dermaclinic/clinic-api/internal/config"
)

type AppointmentConfirmation struct {
	To          string
	PatientName string
	DoctorName  string
	Date        time.Time
	Time        string
}

type Sender interface {
	SendAppointmentConfirmation(msg AppointmentConfirmation) error
}

type smtpSender struct {
	dialer *gomail.Dialer
	from   string
}

func NewSMTPSender(cfg config.SMTPConfig) Sender {
	return &smtpSender{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:   cfg.From,
	}
}

func (s *smtpSender) SendAppointmentConfirmation(msg AppointmentConfirmation) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", msg.To)
	m.SetHeader("Subject", "Appointment confirmation")
	m.SetBody("text/plain", fmt.Sprintf(
		"Dear %s,\n\nYour appointment with Dr. %s is confirmed for %s at %s.\n\nPlease arrive 10 minutes early.\n",
		msg.PatientName, msg.DoctorName, msg.Date.Format("2006-01-02"), msg.Time,
	))
	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send confirmation email: %w", err)
	}
	return nil
}

type noopSender struct{}

// NewNoopSender is used when SMTP is disabled.
func NewNoopSender() Sender { return noopSender{} }

func (noopSender) SendAppointmentConfirmation(AppointmentConfirmation) error { return nil }
