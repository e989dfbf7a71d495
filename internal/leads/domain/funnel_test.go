package domain

import "testing"

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from, to FunnelStage
		want     bool
	}{
		{FunnelNew, FunnelNurture, true},
		{FunnelNew, FunnelQualified, true},
		{FunnelNew, FunnelClosedLost, true},
		{FunnelNew, FunnelConverted, false},
		{FunnelNurture, FunnelQualified, true},
		{FunnelNurture, FunnelNew, false},
		{FunnelQualified, FunnelConverted, true},
		{FunnelQualified, FunnelNurture, false},
		{FunnelConverted, FunnelClosedLost, false},
		{FunnelClosedLost, FunnelNew, false},
		{FunnelNew, FunnelNew, false},
	}

	for _, tt := range tests {
		if got := CanTransition(tt.from, tt.to); got != tt.want {
			t.Errorf("CanTransition(%s, %s) = %v, want %v", tt.from, tt.to, got, tt.want)
		}
	}
}

func TestTerminalStages(t *testing.T) {
	for _, s := range []FunnelStage{FunnelConverted, FunnelClosedLost} {
		if !s.IsTerminal() {
			t.Errorf("%s should be terminal", s)
		}
	}
	for _, s := range []FunnelStage{FunnelNew, FunnelNurture, FunnelQualified} {
		if s.IsTerminal() {
			t.Errorf("%s should not be terminal", s)
		}
	}
}

func TestParseFunnelStage(t *testing.T) {
	if _, ok := ParseFunnelStage("qualified"); !ok {
		t.Fatal("qualified should parse")
	}
	if _, ok := ParseFunnelStage("Qualified"); ok {
		t.Fatal("stages are lower case")
	}
}
