// Package events provides domain event definitions for decoupled,
// event-driven communication between modules.
// Infrastructure (Bus, Handler) is in platform/events.
package events

import (
	"time"

	"clinic_intake_backend/platform/events"

	"github.com/google/uuid"
)

// Re-export platform types for convenience
type (
	Event       = events.Event
	Bus         = events.Bus
	Handler     = events.Handler
	HandlerFunc = events.HandlerFunc
	BaseEvent   = events.BaseEvent
)

// Re-export platform functions
var NewBaseEvent = events.NewBaseEvent

// =============================================================================
// Lead Domain Events
// =============================================================================

// LeadCreated is published when a public CTA submission is stored.
type LeadCreated struct {
	BaseEvent
	LeadID uuid.UUID `json:"leadId"`
	Name   string    `json:"name"`
	Email  string    `json:"email"`
	Origin string    `json:"origin,omitempty"`
}

func (e LeadCreated) EventName() string { return "leads.lead.created" }

// LeadStageChanged is published when staff move a lead through the funnel.
type LeadStageChanged struct {
	BaseEvent
	LeadID    uuid.UUID `json:"leadId"`
	FromStage string    `json:"fromStage"`
	ToStage   string    `json:"toStage"`
	ActorID   uuid.UUID `json:"actorId"`
}

func (e LeadStageChanged) EventName() string { return "leads.lead.stage_changed" }

// =============================================================================
// Pipeline Domain Events
// =============================================================================

// CareRequestChanged is published after any committed care request action.
type CareRequestChanged struct {
	BaseEvent
	CareRequestID uuid.UUID `json:"careRequestId"`
	Action        string    `json:"action"`
	Status        string    `json:"status"`
	ActorID       uuid.UUID `json:"actorId"`
}

func (e CareRequestChanged) EventName() string { return "carerequests.changed" }

// VisitScheduled is published when a care request gets a visit date.
type VisitScheduled struct {
	BaseEvent
	CareRequestID uuid.UUID `json:"careRequestId"`
	PatientName   string    `json:"patientName"`
	PatientEmail  string    `json:"patientEmail"`
	ScheduledDate time.Time `json:"scheduledDate"`
	TemplateType  string    `json:"templateType"`
}

func (e VisitScheduled) EventName() string { return "carerequests.visit.scheduled" }

// IntakeFormsSent is published when an intake questionnaire link is issued.
type IntakeFormsSent struct {
	BaseEvent
	CareRequestID uuid.UUID `json:"careRequestId"`
	IntakeFormID  uuid.UUID `json:"intakeFormId"`
	PatientName   string    `json:"patientName"`
	PatientEmail  string    `json:"patientEmail"`
	FormURL       string    `json:"formUrl"`
	TemplateType  string    `json:"templateType"`
}

func (e IntakeFormsSent) EventName() string { return "carerequests.intake_forms.sent" }

// =============================================================================
// Intake Domain Events
// =============================================================================

// IntakeSubmitted is published when a patient submits a questionnaire.
type IntakeSubmitted struct {
	BaseEvent
	Table       string    `json:"table"`
	RecordID    uuid.UUID `json:"recordId"`
	PatientName string    `json:"patientName"`
}

func (e IntakeSubmitted) EventName() string { return "intake.submitted" }

// =============================================================================
// Episode Domain Events
// =============================================================================

// EpisodeDischarged is published when a discharge is finalized.
type EpisodeDischarged struct {
	BaseEvent
	EpisodeID   uuid.UUID `json:"episodeId"`
	DischargeID uuid.UUID `json:"dischargeId"`
	Reason      string    `json:"reason"`
}

func (e EpisodeDischarged) EventName() string { return "discharge.episode.discharged" }
