package domain

import "testing"

func TestCanDischarge(t *testing.T) {
	if !CanDischarge(EpisodeActive) {
		t.Fatal("active episode should be dischargeable")
	}
	if CanDischarge(EpisodeDischarged) {
		t.Fatal("discharged episode should not be dischargeable")
	}
}

func TestCanFinalize(t *testing.T) {
	if !CanFinalize(DischargeDraft) {
		t.Fatal("draft should be finalizable")
	}
	if CanFinalize(DischargeFinalized) {
		t.Fatal("finalized discharge should be locked")
	}
}
