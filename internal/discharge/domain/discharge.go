// Package domain holds discharge rules.
package domain

// Reason why an episode of care ended.
type Reason string

const (
	ReasonGoalsMet       Reason = "goals_met"
	ReasonPlateau        Reason = "plateau"
	ReasonNonCompliance  Reason = "non_compliance"
	ReasonReferredOut    Reason = "referred_out"
	ReasonPatientRequest Reason = "patient_request"
	ReasonOther          Reason = "other"
)

// Episode statuses.
const (
	EpisodeActive     = "active"
	EpisodeDischarged = "discharged"
)

// Discharge statuses.
const (
	DischargeDraft     = "draft"
	DischargeFinalized = "finalized"
)

// CanDischarge reports whether an episode in status may receive a discharge.
func CanDischarge(episodeStatus string) bool {
	return episodeStatus == EpisodeActive
}

// CanFinalize reports whether a discharge in status may be finalized.
func CanFinalize(dischargeStatus string) bool {
	return dischargeStatus == DischargeDraft
}
