// Package domain holds the lead funnel rules.
package domain

// FunnelStage is where a lead sits in the marketing funnel.
type FunnelStage string

const (
	FunnelNew        FunnelStage = "new"
	FunnelNurture    FunnelStage = "nurture"
	FunnelQualified  FunnelStage = "qualified"
	FunnelConverted  FunnelStage = "converted"
	FunnelClosedLost FunnelStage = "closed_lost"
)

var funnelTransitions = map[FunnelStage][]FunnelStage{
	FunnelNew:       {FunnelNurture, FunnelQualified, FunnelClosedLost},
	FunnelNurture:   {FunnelQualified, FunnelClosedLost},
	FunnelQualified: {FunnelConverted, FunnelClosedLost},
}

// ParseFunnelStage validates a stored or requested stage.
func ParseFunnelStage(value string) (FunnelStage, bool) {
	switch s := FunnelStage(value); s {
	case FunnelNew, FunnelNurture, FunnelQualified, FunnelConverted, FunnelClosedLost:
		return s, true
	}
	return "", false
}

// IsTerminal reports whether no further transition is possible.
func (s FunnelStage) IsTerminal() bool {
	return len(funnelTransitions[s]) == 0
}

// CanTransition reports whether a lead may move from one stage to another.
func CanTransition(from, to FunnelStage) bool {
	for _, next := range funnelTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}
