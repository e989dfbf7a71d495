package domain

import (
	"math/rand"
	"testing"

	"github.com/google/uuid"
)

func prospect(stage Stage, days int) Prospect {
	return Prospect{
		ID:             uuid.New(),
		CurrentStage:   stage,
		NextAction:     ActionFor(stage),
		DaysInPipeline: days,
		IsStalled:      IsStalled(stage, days),
	}
}

func TestSortByUrgency(t *testing.T) {
	waitingOld := prospect(StageFormsSent, 4)
	approveFresh := prospect(StageLeadSubmitted, 0)
	scheduleStalled := prospect(StageApprovedForCare, 5)
	convertStalled := prospect(StageFormsReceived, 9)
	doneOld := prospect(StageEpisodeActive, 90)

	items := []Prospect{waitingOld, approveFresh, doneOld, scheduleStalled, convertStalled}
	SortByUrgency(items)

	want := []uuid.UUID{convertStalled.ID, scheduleStalled.ID, approveFresh.ID, doneOld.ID, waitingOld.ID}
	for i, id := range want {
		if items[i].ID != id {
			t.Fatalf("position %d: got %s (%s, %d days)", i, items[i].CurrentStage, items[i].NextAction, items[i].DaysInPipeline)
		}
	}
}

func TestSortIsStable(t *testing.T) {
	a := prospect(StageLeadSubmitted, 1)
	b := prospect(StageLeadSubmitted, 1)
	c := prospect(StageLeadSubmitted, 1)
	items := []Prospect{a, b, c}
	SortByUrgency(items)
	if items[0].ID != a.ID || items[1].ID != b.ID || items[2].ID != c.ID {
		t.Fatal("equal items must keep their order")
	}
}

func TestSortPlacesStalledActionableFirst(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for iter := 0; iter < 500; iter++ {
		n := rng.Intn(12)
		items := make([]Prospect, n)
		for i := range items {
			items[i] = prospect(Stages[rng.Intn(len(Stages))], rng.Intn(8))
		}
		SortByUrgency(items)

		seenOther := false
		for i, p := range items {
			urgent := p.IsStalled && p.Actionable()
			if !urgent {
				seenOther = true
				continue
			}
			if seenOther {
				t.Fatalf("iteration %d: urgent item at %d follows a non-urgent item", iter, i)
			}
		}
	}
}
