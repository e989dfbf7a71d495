package domain

import "time"

// Summary aggregates a board for the dashboard header.
type Summary struct {
	Total int `json:"total"`
	// Active excludes prospects whose episode is already active.
	Active      int           `json:"active"`
	Stalled     int           `json:"stalled"`
	NeedsAction int           `json:"needsAction"`
	ByStage     map[Stage]int `json:"byStage"`
}

// Board is one derived view of the pipeline.
type Board struct {
	Prospects   []Prospect `json:"prospects"`
	Summary     Summary    `json:"summary"`
	GeneratedAt time.Time  `json:"generatedAt"`
	Generation  uint64     `json:"generation"`
}

// BuildBoard derives, sorts and summarizes a snapshot.
func BuildBoard(snap Snapshot, now time.Time) Board {
	prospects := Derive(snap, now)
	SortByUrgency(prospects)
	return Board{
		Prospects:   prospects,
		Summary:     Summarize(prospects),
		GeneratedAt: now,
	}
}

// Summarize counts prospects per stage and by urgency.
func Summarize(prospects []Prospect) Summary {
	s := Summary{
		Total:   len(prospects),
		ByStage: make(map[Stage]int, len(Stages)),
	}
	for _, stage := range Stages {
		s.ByStage[stage] = 0
	}
	for _, p := range prospects {
		s.ByStage[p.CurrentStage]++
		if p.CurrentStage != StageEpisodeActive {
			s.Active++
		}
		if p.IsStalled {
			s.Stalled++
		}
		if p.Actionable() {
			s.NeedsAction++
		}
	}
	return s
}

// StalledActionable returns the prospects that are stalled and need staff action,
// preserving board order.
func (b Board) StalledActionable() []Prospect {
	out := make([]Prospect, 0)
	for _, p := range b.Prospects {
		if p.IsStalled && p.Actionable() {
			out = append(out, p)
		}
	}
	return out
}
