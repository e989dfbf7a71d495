// Package domain holds the care request status machine.
package domain

import "strings"

// Status is a care request status as stored (upper case).
type Status string

const (
	StatusSubmitted       Status = "SUBMITTED"
	StatusInReview        Status = "IN_REVIEW"
	StatusAssigned        Status = "ASSIGNED"
	StatusApproved        Status = "APPROVED"
	StatusApprovedForCare Status = "APPROVED_FOR_CARE"
	StatusScheduled       Status = "SCHEDULED"
	StatusConverted       Status = "CONVERTED"
	StatusArchived        Status = "ARCHIVED"
	StatusDeclined        Status = "DECLINED"
)

// Sources a care request can come from.
const (
	SourceLeadForm    = "LEAD_FORM"
	SourceFrontDeskQR = "FRONT_DESK_QR"
)

// Action is a staff pipeline action.
type Action string

const (
	ActionApprove   Action = "approve"
	ActionSchedule  Action = "schedule"
	ActionSendForms Action = "send_forms"
	ActionConvert   Action = "convert"
	ActionArchive   Action = "archive"
	ActionDecline   Action = "decline"
)

// statusRank orders the forward pipeline. Statuses sharing a rank are
// equivalent for transition purposes.
var statusRank = map[Status]int{
	StatusSubmitted:       0,
	StatusInReview:        1,
	StatusAssigned:        2,
	StatusApproved:        3,
	StatusApprovedForCare: 3,
	StatusScheduled:       4,
	StatusConverted:       5,
}

// Normalize upper-cases a stored status.
func Normalize(value string) Status {
	return Status(strings.ToUpper(strings.TrimSpace(value)))
}

// IsClosed reports whether the request left the pipeline.
func (s Status) IsClosed() bool {
	return s == StatusConverted || s == StatusArchived || s == StatusDeclined
}

// IsApproved reports whether the request has cleared clinical approval.
func (s Status) IsApproved() bool {
	rank, ok := statusRank[s]
	return ok && rank >= statusRank[StatusApproved] && s != StatusConverted
}

// Next returns the status an action moves a request to, and false when the
// action is not allowed from the current status. SendForms keeps the status.
func Next(from Status, action Action) (Status, bool) {
	if from.IsClosed() {
		return "", false
	}
	rank, known := statusRank[from]

	switch action {
	case ActionApprove:
		return StatusApproved, known && rank < statusRank[StatusApproved]
	case ActionSchedule:
		return StatusScheduled, from.IsApproved()
	case ActionSendForms:
		return from, from.IsApproved()
	case ActionConvert:
		return StatusConverted, true
	case ActionArchive:
		return StatusArchived, true
	case ActionDecline:
		return StatusDeclined, true
	}
	return "", false
}
