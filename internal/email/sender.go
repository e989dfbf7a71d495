// Package email delivers patient and front-desk emails.
package email

import (
	"context"
	"fmt"
	"time"

	"clinic_intake_backend/platform/config"
)

// Template types for clinical email content.
const (
	TemplateNeuro = "neuro"
	TemplateMSK   = "msk"
)

// StallDigestItem is one stalled prospect in the front-desk digest.
type StallDigestItem struct {
	PatientName  string
	Stage        string
	WaitingSince time.Time
}

type Sender interface {
	SendIntakeFormsEmail(ctx context.Context, toEmail, patientName, formURL, templateType string) error
	SendVisitScheduledEmail(ctx context.Context, toEmail, patientName string, scheduledDate time.Time, templateType string) error
	SendStallDigestEmail(ctx context.Context, toEmail string, items []StallDigestItem) error
}

type NoopSender struct{}

func (NoopSender) SendIntakeFormsEmail(context.Context, string, string, string, string) error {
	return nil
}

func (NoopSender) SendVisitScheduledEmail(context.Context, string, string, time.Time, string) error {
	return nil
}

func (NoopSender) SendStallDigestEmail(context.Context, string, []StallDigestItem) error {
	return nil
}

func checkTemplateType(templateType string) error {
	switch templateType {
	case TemplateNeuro, TemplateMSK:
		return nil
	}
	return fmt.Errorf("unknown email template type %q", templateType)
}

// NewSender returns an SMTP sender, or a NoopSender when email is disabled.
func NewSender(cfg config.EmailConfig) (Sender, error) {
	if !cfg.GetEmailEnabled() {
		return NoopSender{}, nil
	}
	if cfg.GetSMTPHost() == "" || cfg.GetEmailFromAddress() == "" {
		return nil, fmt.Errorf("smtp host and from address are required")
	}
	return NewSMTPSender(
		cfg.GetSMTPHost(),
		cfg.GetSMTPPort(),
		cfg.GetSMTPUsername(),
		cfg.GetSMTPPassword(),
		cfg.GetEmailFromAddress(),
		cfg.GetEmailFromName(),
	), nil
}
