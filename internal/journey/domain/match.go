package domain

import (
	"strings"

	"github.com/google/uuid"
)

// Match holds the auxiliary records associated with one care request.
// Any field may be nil; absence is a valid state.
type Match struct {
	PendingEpisode *PendingEpisode
	IntakeForm     *IntakeForm
	Intake         *Intake
}

// MatchCareRequest associates cr with at most one record of each auxiliary
// kind. Foreign keys are tried first; name and email heuristics are fallbacks.
// The first candidate in fetch order wins.
func MatchCareRequest(cr CareRequest, snap Snapshot) Match {
	return Match{
		PendingEpisode: matchPendingEpisode(cr, snap.PendingEpisodes),
		IntakeForm:     matchIntakeForm(cr, snap.IntakeForms),
		Intake:         matchIntake(cr, snap.Intakes),
	}
}

func linkedTo(ref *uuid.UUID, id uuid.UUID) bool {
	return ref != nil && *ref == id
}

func matchPendingEpisode(cr CareRequest, episodes []PendingEpisode) *PendingEpisode {
	for i := range episodes {
		if linkedTo(episodes[i].CareRequestID, cr.ID) {
			return &episodes[i]
		}
	}

	name := strings.TrimSpace(cr.PatientName)
	if name == "" {
		return nil
	}
	for i := range episodes {
		if strings.EqualFold(strings.TrimSpace(episodes[i].PatientName), name) {
			return &episodes[i]
		}
	}
	return nil
}

func matchIntakeForm(cr CareRequest, forms []IntakeForm) *IntakeForm {
	for i := range forms {
		if forms[i].ConvertedToEpisodeID != nil {
			continue
		}
		if linkedTo(forms[i].CareRequestID, cr.ID) {
			return &forms[i]
		}
	}
	for i := range forms {
		f := &forms[i]
		if f.ConvertedToEpisodeID != nil {
			continue
		}
		if sameName(cr.PatientName, f.PatientName) || sameEmail(cr.PatientEmail, f.PatientEmail) {
			return f
		}
	}
	return nil
}

func matchIntake(cr CareRequest, intakes []Intake) *Intake {
	candidates := make([]*Intake, 0, len(intakes))
	for i := range intakes {
		if intakes[i].ConvertedToEpisodeID == nil {
			candidates = append(candidates, &intakes[i])
		}
	}

	if cr.LeadID != nil {
		for _, in := range candidates {
			if linkedTo(in.LeadID, *cr.LeadID) {
				return in
			}
		}
	}
	for _, in := range candidates {
		if sameName(cr.PatientName, in.PatientName) {
			return in
		}
	}
	for _, in := range candidates {
		if sameEmail(cr.PatientEmail, in.PatientEmail) {
			return in
		}
	}
	return nil
}
