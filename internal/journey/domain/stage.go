package domain

import "strings"

// Stage is one of the six fixed pipeline stages.
type Stage string

const (
	StageLeadSubmitted   Stage = "lead_submitted"
	StageApprovedForCare Stage = "approved_for_care"
	StageVisitScheduled  Stage = "visit_scheduled"
	StageFormsSent       Stage = "forms_sent"
	StageFormsReceived   Stage = "forms_received"
	StageEpisodeActive   Stage = "episode_active"
)

// Stages lists every stage in pipeline order.
var Stages = []Stage{
	StageLeadSubmitted,
	StageApprovedForCare,
	StageVisitScheduled,
	StageFormsSent,
	StageFormsReceived,
	StageEpisodeActive,
}

// Action is the staff action a stage requires.
type Action string

const (
	ActionApprove   Action = "approve"
	ActionSchedule  Action = "schedule"
	ActionSendForms Action = "send_forms"
	ActionWaiting   Action = "waiting"
	ActionConvert   Action = "convert"
	ActionDone      Action = "done"
)

var stageActions = map[Stage]Action{
	StageLeadSubmitted:   ActionApprove,
	StageApprovedForCare: ActionSchedule,
	StageVisitScheduled:  ActionSendForms,
	StageFormsSent:       ActionWaiting,
	StageFormsReceived:   ActionConvert,
	StageEpisodeActive:   ActionDone,
}

// ActionFor returns the action required at stage.
func ActionFor(stage Stage) Action {
	return stageActions[stage]
}

// Actionable reports whether staff have something to do.
func (a Action) Actionable() bool {
	return a != ActionWaiting && a != ActionDone && a != ""
}

// stallThresholdDays is the expected dwell time per stage. Stages without an
// entry never stall.
var stallThresholdDays = map[Stage]int{
	StageLeadSubmitted:   2,
	StageApprovedForCare: 3,
	StageVisitScheduled:  1,
	StageFormsSent:       5,
	StageFormsReceived:   1,
}

// StallThreshold returns the threshold for stage and whether one exists.
func StallThreshold(stage Stage) (int, bool) {
	days, ok := stallThresholdDays[stage]
	return days, ok
}

// IsStalled reports whether an item has dwelled at stage for too long.
func IsStalled(stage Stage, daysInPipeline int) bool {
	threshold, ok := stallThresholdDays[stage]
	return ok && daysInPipeline >= threshold
}

// PatientCompleted reports whether the patient has finished their part.
func PatientCompleted(stage Stage) bool {
	return stage == StageFormsReceived || stage == StageEpisodeActive
}

// Care request statuses and sources read by the deriver.
const (
	StatusSubmitted       = "SUBMITTED"
	StatusInReview        = "IN_REVIEW"
	StatusAssigned        = "ASSIGNED"
	StatusApproved        = "APPROVED"
	StatusApprovedForCare = "APPROVED_FOR_CARE"
	StatusScheduled       = "SCHEDULED"
	StatusConverted       = "CONVERTED"
	StatusArchived        = "ARCHIVED"
	StatusDeclined        = "DECLINED"

	SourceFrontDeskQR = "FRONT_DESK_QR"
)

var approvedStatuses = map[string]bool{
	StatusApproved:        true,
	StatusApprovedForCare: true,
	StatusScheduled:       true,
	StatusInReview:        true,
	StatusAssigned:        true,
}

// Signals are the boolean predicates the stage cascade is evaluated over.
type Signals struct {
	Approved        bool `json:"approved"`
	Scheduled       bool `json:"scheduled"`
	FormsSent       bool `json:"formsSent"`
	FromFrontDeskQR bool `json:"fromFrontDeskQr"`
	FormsReceived   bool `json:"formsReceived"`
	EpisodeActive   bool `json:"episodeActive"`
}

// EvaluateSignals computes the predicates for a care request and its matches.
func EvaluateSignals(cr CareRequest, m Match) Signals {
	status := strings.ToUpper(strings.TrimSpace(cr.Status))

	var s Signals
	s.Approved = approvedStatuses[status] || cr.ApprovedAt != nil
	s.Scheduled = (m.PendingEpisode != nil && m.PendingEpisode.ScheduledDate != nil) || status == StatusScheduled
	s.FormsSent = (m.IntakeForm != nil || m.Intake != nil) && s.Scheduled
	// Walk-ins fill the questionnaire at the desk, so the source alone counts as received.
	s.FromFrontDeskQR = strings.EqualFold(strings.TrimSpace(cr.Source), SourceFrontDeskQR)
	s.FormsReceived = intakeFormReceived(m.IntakeForm) || intakeReceived(m.Intake) || s.FromFrontDeskQR
	s.EpisodeActive = cr.EpisodeID != nil
	return s
}

func intakeFormReceived(f *IntakeForm) bool {
	if f == nil {
		return false
	}
	status := strings.ToLower(strings.TrimSpace(f.Status))
	switch status {
	case "submitted", "completed":
		return true
	case "pending":
		return f.SubmittedAt != nil
	default:
		return false
	}
}

func intakeReceived(in *Intake) bool {
	if in == nil {
		return false
	}
	status := strings.ToLower(strings.TrimSpace(in.Status))
	return status == "completed" || status == "approved"
}

type stageRule struct {
	stage Stage
	when  func(Signals) bool
}

// stageRules is evaluated top to bottom; the first matching rule wins.
var stageRules = []stageRule{
	{StageEpisodeActive, func(s Signals) bool { return s.EpisodeActive }},
	{StageFormsReceived, func(s Signals) bool { return s.FormsReceived }},
	{StageFormsSent, func(s Signals) bool { return s.FormsSent }},
	{StageVisitScheduled, func(s Signals) bool { return s.Scheduled }},
	{StageApprovedForCare, func(s Signals) bool { return s.Approved }},
}

// SelectStage runs the priority cascade over s.
func SelectStage(s Signals) Stage {
	for _, rule := range stageRules {
		if rule.when(s) {
			return rule.stage
		}
	}
	return StageLeadSubmitted
}

// DeriveStage maps a care request and its matches to a stage and action.
func DeriveStage(cr CareRequest, m Match) (Stage, Action) {
	stage := SelectStage(EvaluateSignals(cr, m))
	return stage, ActionFor(stage)
}
