package domain

import (
	"testing"

	"github.com/google/uuid"
)

func signalsFromMask(mask int) Signals {
	return Signals{
		EpisodeActive: mask&1 != 0,
		FormsReceived: mask&2 != 0,
		FormsSent:     mask&4 != 0,
		Scheduled:     mask&8 != 0,
		Approved:      mask&16 != 0,
	}
}

func expectedStage(s Signals) Stage {
	switch {
	case s.EpisodeActive:
		return StageEpisodeActive
	case s.FormsReceived:
		return StageFormsReceived
	case s.FormsSent:
		return StageFormsSent
	case s.Scheduled:
		return StageVisitScheduled
	case s.Approved:
		return StageApprovedForCare
	default:
		return StageLeadSubmitted
	}
}

func TestSelectStageEveryCombination(t *testing.T) {
	for mask := 0; mask < 32; mask++ {
		s := signalsFromMask(mask)
		if got, want := SelectStage(s), expectedStage(s); got != want {
			t.Errorf("mask %05b: SelectStage = %s, want %s", mask, got, want)
		}
		if s.EpisodeActive && SelectStage(s) != StageEpisodeActive {
			t.Errorf("mask %05b: episode active must win", mask)
		}
	}
}

func TestActionTable(t *testing.T) {
	want := map[Stage]Action{
		StageLeadSubmitted:   ActionApprove,
		StageApprovedForCare: ActionSchedule,
		StageVisitScheduled:  ActionSendForms,
		StageFormsSent:       ActionWaiting,
		StageFormsReceived:   ActionConvert,
		StageEpisodeActive:   ActionDone,
	}
	for stage, action := range want {
		if got := ActionFor(stage); got != action {
			t.Errorf("ActionFor(%s) = %s, want %s", stage, got, action)
		}
	}
	if ActionWaiting.Actionable() || ActionDone.Actionable() {
		t.Error("waiting and done are not actionable")
	}
	if !ActionConvert.Actionable() {
		t.Error("convert is actionable")
	}
}

func TestIsStalled(t *testing.T) {
	tests := []struct {
		stage Stage
		days  int
		want  bool
	}{
		{StageLeadSubmitted, 1, false},
		{StageLeadSubmitted, 2, true},
		{StageApprovedForCare, 2, false},
		{StageApprovedForCare, 3, true},
		{StageVisitScheduled, 0, false},
		{StageVisitScheduled, 1, true},
		{StageFormsSent, 4, false},
		{StageFormsSent, 5, true},
		{StageFormsReceived, 1, true},
		{Stage("unknown"), 100, false},
	}
	for _, tt := range tests {
		if got := IsStalled(tt.stage, tt.days); got != tt.want {
			t.Errorf("IsStalled(%s, %d) = %v, want %v", tt.stage, tt.days, got, tt.want)
		}
	}
}

func TestEpisodeActiveNeverStalls(t *testing.T) {
	for days := 0; days <= 3650; days++ {
		if IsStalled(StageEpisodeActive, days) {
			t.Fatalf("episode_active stalled at %d days", days)
		}
	}
}

func TestEvaluateSignals(t *testing.T) {
	scheduled := PendingEpisode{ID: uuid.New(), ScheduledDate: ptrTime(daysAgo(-2))}
	unscheduled := PendingEpisode{ID: uuid.New()}

	tests := []struct {
		name  string
		cr    CareRequest
		match Match
		want  Signals
	}{
		{
			name: "submitted only",
			cr:   CareRequest{Status: StatusSubmitted},
			want: Signals{},
		},
		{
			name: "approved_at without approved status",
			cr:   CareRequest{Status: StatusSubmitted, ApprovedAt: ptrTime(daysAgo(1))},
			want: Signals{Approved: true},
		},
		{
			name: "lowercase in_review counts as approved",
			cr:   CareRequest{Status: "in_review"},
			want: Signals{Approved: true},
		},
		{
			name:  "pending episode without date is not scheduled",
			cr:    CareRequest{Status: StatusApproved},
			match: Match{PendingEpisode: &unscheduled},
			want:  Signals{Approved: true},
		},
		{
			name:  "scheduled by pending episode date",
			cr:    CareRequest{Status: StatusApproved},
			match: Match{PendingEpisode: &scheduled},
			want:  Signals{Approved: true, Scheduled: true},
		},
		{
			name:  "forms sent needs scheduling",
			cr:    CareRequest{Status: StatusApproved},
			match: Match{IntakeForm: &IntakeForm{Status: "pending"}},
			want:  Signals{Approved: true},
		},
		{
			name:  "pending form on scheduled request",
			cr:    CareRequest{Status: StatusScheduled},
			match: Match{IntakeForm: &IntakeForm{Status: "pending"}},
			want:  Signals{Approved: true, Scheduled: true, FormsSent: true},
		},
		{
			name:  "pending form with submitted_at counts as received",
			cr:    CareRequest{Status: StatusScheduled},
			match: Match{IntakeForm: &IntakeForm{Status: "pending", SubmittedAt: ptrTime(daysAgo(0))}},
			want:  Signals{Approved: true, Scheduled: true, FormsSent: true, FormsReceived: true},
		},
		{
			name:  "draft with submitted_at is not received",
			cr:    CareRequest{Status: StatusScheduled},
			match: Match{IntakeForm: &IntakeForm{Status: "draft", SubmittedAt: ptrTime(daysAgo(0))}},
			want:  Signals{Approved: true, Scheduled: true, FormsSent: true},
		},
		{
			name:  "approved form with submitted_at is not received",
			cr:    CareRequest{Status: StatusScheduled},
			match: Match{IntakeForm: &IntakeForm{Status: "approved", SubmittedAt: ptrTime(daysAgo(0))}},
			want:  Signals{Approved: true, Scheduled: true, FormsSent: true},
		},
		{
			name:  "archived form with submitted_at is not received",
			cr:    CareRequest{Status: StatusScheduled},
			match: Match{IntakeForm: &IntakeForm{Status: "archived", SubmittedAt: ptrTime(daysAgo(0))}},
			want:  Signals{Approved: true, Scheduled: true, FormsSent: true},
		},
		{
			name:  "unknown form status with submitted_at is not received",
			cr:    CareRequest{Status: StatusScheduled},
			match: Match{IntakeForm: &IntakeForm{Status: "weird", SubmittedAt: ptrTime(daysAgo(0))}},
			want:  Signals{Approved: true, Scheduled: true, FormsSent: true},
		},
		{
			name:  "structured intake approved",
			cr:    CareRequest{Status: StatusApproved},
			match: Match{Intake: &Intake{Status: "approved"}},
			want:  Signals{Approved: true, FormsReceived: true},
		},
		{
			name: "front desk qr",
			cr:   CareRequest{Status: StatusSubmitted, Source: SourceFrontDeskQR},
			want: Signals{FromFrontDeskQR: true, FormsReceived: true},
		},
		{
			name: "episode set",
			cr:   CareRequest{Status: StatusConverted, EpisodeID: ptrUUID(uuid.New())},
			want: Signals{EpisodeActive: true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := EvaluateSignals(tt.cr, tt.match); got != tt.want {
				t.Fatalf("EvaluateSignals = %+v, want %+v", got, tt.want)
			}
		})
	}
}
