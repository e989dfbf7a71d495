package scheduler

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"clinic_intake_backend/internal/email"

	"github.com/hibiken/asynq"
)

const TaskSendEmail = "notifications.email"

const TaskStallSweep = "journey.stall_sweep"

// Email kinds carried by TaskSendEmail.
const (
	EmailIntakeForms    = "intake_forms"
	EmailVisitScheduled = "visit_scheduled"
)

type EmailPayload struct {
	Kind          string    `json:"kind"`
	To            string    `json:"to"`
	PatientName   string    `json:"patientName"`
	FormURL       string    `json:"formUrl,omitempty"`
	ScheduledDate time.Time `json:"scheduledDate,omitempty"`
	TemplateType  string    `json:"templateType"`
}

// Deliver sends the payload through sender. Inline delivery and the worker share it.
func (p EmailPayload) Deliver(ctx context.Context, sender email.Sender) error {
	switch p.Kind {
	case EmailIntakeForms:
		return sender.SendIntakeFormsEmail(ctx, p.To, p.PatientName, p.FormURL, p.TemplateType)
	case EmailVisitScheduled:
		return sender.SendVisitScheduledEmail(ctx, p.To, p.PatientName, p.ScheduledDate, p.TemplateType)
	default:
		return fmt.Errorf("unknown email kind %q: %w", p.Kind, asynq.SkipRetry)
	}
}

func NewEmailTask(payload EmailPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskSendEmail, data, asynq.MaxRetry(5)), nil
}

func ParseEmailPayload(task *asynq.Task) (EmailPayload, error) {
	var payload EmailPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return EmailPayload{}, err
	}
	return payload, nil
}

func NewStallSweepTask() *asynq.Task {
	return asynq.NewTask(TaskStallSweep, nil, asynq.MaxRetry(1))
}
