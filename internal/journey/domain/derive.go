package domain

import (
	"time"

	"github.com/google/uuid"
)

// ProspectKind tells which record a prospect was derived from.
type ProspectKind string

const (
	KindLead        ProspectKind = "lead"
	KindCareRequest ProspectKind = "care_request"
)

// FunnelQualified is the lead funnel stage that hides a lead from the journey
// because its care request carries it from then on.
const FunnelQualified = "qualified"

// Prospect is the derived view row for one lead or one care request, never both.
type Prospect struct {
	ID               uuid.UUID    `json:"id"`
	Kind             ProspectKind `json:"kind"`
	LeadID           *uuid.UUID   `json:"leadId,omitempty"`
	CareRequestID    *uuid.UUID   `json:"careRequestId,omitempty"`
	Name             string       `json:"name"`
	Email            string       `json:"email"`
	Phone            string       `json:"phone,omitempty"`
	Source           string       `json:"source,omitempty"`
	Status           string       `json:"status,omitempty"`
	PrimaryComplaint string       `json:"primaryComplaint,omitempty"`
	CurrentStage     Stage        `json:"currentStage"`
	NextAction       Action       `json:"nextAction"`
	DaysInPipeline   int          `json:"daysInPipeline"`
	IsStalled        bool         `json:"isStalled"`
	PatientCompleted bool         `json:"patientCompleted"`
	Signals          *Signals     `json:"signals,omitempty"`
	PendingEpisodeID *uuid.UUID   `json:"pendingEpisodeId,omitempty"`
	ScheduledDate    *time.Time   `json:"scheduledDate,omitempty"`
	IntakeFormID     *uuid.UUID   `json:"intakeFormId,omitempty"`
	IntakeID         *uuid.UUID   `json:"intakeId,omitempty"`
	CreatedAt        time.Time    `json:"createdAt"`
}

// Actionable reports whether the prospect needs a staff action.
func (p Prospect) Actionable() bool {
	return p.NextAction.Actionable()
}

// DaysBetween returns whole days from created to now, never negative.
func DaysBetween(created, now time.Time) int {
	d := now.Sub(created)
	if d <= 0 {
		return 0
	}
	return int(d / (24 * time.Hour))
}

// Derive turns a snapshot into unsorted prospects: unmatched leads first in
// fetch order, then care requests in fetch order.
func Derive(snap Snapshot, now time.Time) []Prospect {
	crKeys := NewKeySet(snap.CareRequests)
	out := make([]Prospect, 0, len(snap.Leads)+len(snap.CareRequests))

	for _, lead := range snap.Leads {
		if lead.FunnelStage == FunnelQualified || crKeys.Contains(Key(lead.Name, lead.Email)) {
			continue
		}
		out = append(out, leadProspect(lead, now))
	}

	for _, cr := range snap.CareRequests {
		out = append(out, careRequestProspect(cr, MatchCareRequest(cr, snap), now))
	}

	return out
}

func leadProspect(lead Lead, now time.Time) Prospect {
	id := lead.ID
	days := DaysBetween(lead.CreatedAt, now)
	return Prospect{
		ID:               lead.ID,
		Kind:             KindLead,
		LeadID:           &id,
		Name:             lead.Name,
		Email:            lead.Email,
		Phone:            lead.Phone,
		Source:           lead.OriginCTA,
		Status:           lead.FunnelStage,
		PrimaryComplaint: lead.SymptomSummary,
		CurrentStage:     StageLeadSubmitted,
		NextAction:       ActionApprove,
		DaysInPipeline:   days,
		IsStalled:        IsStalled(StageLeadSubmitted, days),
		CreatedAt:        lead.CreatedAt,
	}
}

func careRequestProspect(cr CareRequest, m Match, now time.Time) Prospect {
	signals := EvaluateSignals(cr, m)
	stage := SelectStage(signals)
	days := DaysBetween(cr.CreatedAt, now)
	id := cr.ID

	p := Prospect{
		ID:               cr.ID,
		Kind:             KindCareRequest,
		LeadID:           cr.LeadID,
		CareRequestID:    &id,
		Name:             cr.PatientName,
		Email:            cr.PatientEmail,
		Phone:            cr.PatientPhone,
		Source:           cr.Source,
		Status:           cr.Status,
		PrimaryComplaint: cr.PrimaryComplaint,
		CurrentStage:     stage,
		NextAction:       ActionFor(stage),
		DaysInPipeline:   days,
		IsStalled:        IsStalled(stage, days),
		PatientCompleted: PatientCompleted(stage),
		Signals:          &signals,
		CreatedAt:        cr.CreatedAt,
	}
	if m.PendingEpisode != nil {
		p.PendingEpisodeID = &m.PendingEpisode.ID
		p.ScheduledDate = m.PendingEpisode.ScheduledDate
	}
	if m.IntakeForm != nil {
		p.IntakeFormID = &m.IntakeForm.ID
	}
	if m.Intake != nil {
		p.IntakeID = &m.Intake.ID
	}
	return p
}
