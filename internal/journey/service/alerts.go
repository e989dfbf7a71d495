package service

import (
	"context"
	"strings"
	"time"

	"clinic_intake_backend/internal/changefeed"
	"clinic_intake_backend/internal/realtime"
)

// Tables whose changes drive the journey.
const (
	TableIntakeForms = "intake_forms"
	TableIntakes     = "intakes"
)

// WatchedTables lists the tables the change listener subscribes to.
var WatchedTables = []string{TableIntakeForms, TableIntakes}

// IntakeAlert is the payload of an intake_alert push. The client arms a
// print action that expires at AutoPrintExpiresAt.
type IntakeAlert struct {
	Table              string    `json:"table"`
	RecordID           string    `json:"recordId"`
	PatientName        string    `json:"patientName"`
	Status             string    `json:"status"`
	Printable          bool      `json:"printable"`
	AutoPrint          bool      `json:"autoPrint"`
	AutoPrintExpiresAt time.Time `json:"autoPrintExpiresAt"`
}

// ChangeHandler reacts to intake table changes: every event schedules a full
// refresh and a new submission also alerts staff.
type ChangeHandler struct {
	tracker     *Tracker
	push        Broadcaster
	printWindow time.Duration
	now         func() time.Time
}

// NewChangeHandler creates a handler. printWindow bounds the armed print.
func NewChangeHandler(tracker *Tracker, push Broadcaster, printWindow time.Duration) *ChangeHandler {
	return &ChangeHandler{
		tracker:     tracker,
		push:        push,
		printWindow: printWindow,
		now:         time.Now,
	}
}

// Handle implements changefeed.Handler.
func (h *ChangeHandler) Handle(_ context.Context, event changefeed.Event) {
	h.tracker.RefreshAsync()

	if !IsSubmission(event) || h.push == nil {
		return
	}
	name := event.New.String("patient_name")
	h.push.Broadcast(realtime.Event{
		Type:    realtime.EventIntakeAlert,
		Message: alertMessage(event.Table, name),
		Data: IntakeAlert{
			Table:              event.Table,
			RecordID:           event.RecordID(),
			PatientName:        name,
			Status:             event.New.String("status"),
			Printable:          true,
			AutoPrint:          true,
			AutoPrintExpiresAt: h.now().Add(h.printWindow),
		},
	})
}

// IsSubmission reports whether event is a patient finishing a questionnaire:
// a legacy form inserted as submitted, or a structured intake updated to completed.
func IsSubmission(event changefeed.Event) bool {
	status := strings.ToLower(event.New.String("status"))
	switch {
	case event.Table == TableIntakeForms && event.EventType == changefeed.OpInsert:
		return status == "submitted"
	case event.Table == TableIntakes && event.EventType == changefeed.OpUpdate:
		return status == "completed"
	}
	return false
}

func alertMessage(table, name string) string {
	if name == "" {
		name = "A patient"
	}
	if table == TableIntakes {
		return name + " completed their intake"
	}
	return name + " submitted an intake form"
}
