package domain

import (
	"testing"

	"github.com/google/uuid"
)

func TestSummarize(t *testing.T) {
	prospects := []Prospect{
		prospect(StageLeadSubmitted, 3),
		prospect(StageLeadSubmitted, 0),
		prospect(StageFormsSent, 1),
		prospect(StageEpisodeActive, 30),
	}
	s := Summarize(prospects)

	if s.Total != 4 || s.Active != 3 || s.Stalled != 1 || s.NeedsAction != 2 {
		t.Fatalf("summary = %+v", s)
	}
	if s.ByStage[StageLeadSubmitted] != 2 || s.ByStage[StageVisitScheduled] != 0 {
		t.Fatalf("by stage = %+v", s.ByStage)
	}
	if len(s.ByStage) != len(Stages) {
		t.Fatalf("every stage must be present, got %d", len(s.ByStage))
	}
}

func TestBuildBoardSortsAndSelectsStalled(t *testing.T) {
	fresh := newLead("Fresh Lead", "fresh@x.com", "new", 0)
	stale := newLead("Stale Lead", "stale@x.com", "new", 4)
	waiting := newCareRequest("Waiting Patient", "wait@x.com", StatusScheduled, 9)
	waiting.LeadID = ptrUUID(uuid.New())
	form := IntakeForm{ID: uuid.New(), PatientEmail: "wait@x.com", Status: "pending"}

	board := BuildBoard(Snapshot{
		Leads:        []Lead{fresh, stale},
		CareRequests: []CareRequest{waiting},
		IntakeForms:  []IntakeForm{form},
	}, testNow)

	if board.Prospects[0].ID != stale.ID {
		t.Fatalf("expected stale lead first, got %s", board.Prospects[0].Name)
	}
	last := board.Prospects[len(board.Prospects)-1]
	if last.ID != waiting.ID || last.CurrentStage != StageFormsSent {
		t.Fatalf("expected waiting care request last, got %+v", last)
	}

	stalled := board.StalledActionable()
	if len(stalled) != 1 || stalled[0].ID != stale.ID {
		t.Fatalf("stalled actionable = %+v", stalled)
	}
	if !board.GeneratedAt.Equal(testNow) {
		t.Fatal("generated at must be the derivation time")
	}
}
