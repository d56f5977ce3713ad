package email

import (
	"context"
	"fmt"

	"gopkg.in/gomail.v2"

	"github.com/idib19/glamstore-sub001/internal/config"
)

type smtpService struct {
	dialer *gomail.Dialer
	from   string
}

func NewSMTPService(cfg config.SMTPConfig) Service {
	return &smtpService{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:   cfg.From,
	}
}

func (s *smtpService) SendBookingConfirmation(ctx context.Context, to, name, serviceName, date, start string) error {
	subject := "Your appointment is booked"
	content := fmt.Sprintf(
		"Hi %s,\n\nYour %s appointment is booked for %s at %s.\n\nSee you soon!",
		name, serviceName, date, start,
	)
	return s.SendCustom(ctx, to, subject, content)
}

func (s *smtpService) SendBookingCancellation(ctx context.Context, to, name, serviceName, date, start string) error {
	subject := "Your appointment was cancelled"
	content := fmt.Sprintf(
		"Hi %s,\n\nYour %s appointment on %s at %s has been cancelled.\n\nBook again anytime.",
		name, serviceName, date, start,
	)
	return s.SendCustom(ctx, to, subject, content)
}

func (s *smtpService) SendBookingUpdate(ctx context.Context, to, name, serviceName, date, start string) error {
	subject := "Your appointment was updated"
	content := fmt.Sprintf(
		"Hi %s,\n\nYour %s appointment has been moved to %s at %s.\n\nSee you then!",
		name, serviceName, date, start,
	)
	return s.SendCustom(ctx, to, subject, content)
}

func (s *smtpService) SendCustom(_ context.Context, to, subject, content string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", content)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send email to %s: %w", to, err)
	}
	return nil
}
