package email

import (
	"strings"
	"testing"
	"time"
)

func TestRenderIntakeForms(t *testing.T) {
	tests := []struct {
		templateType string
		wantSubject  string
		wantBody     string
	}{
		{templateType: TemplateNeuro, wantSubject: subjectIntakeFormsNeuro, wantBody: "mobility aids"},
		{templateType: TemplateMSK, wantSubject: subjectIntakeFormsMSK, wantBody: "imaging"},
	}
	for _, tt := range tests {
		t.Run(tt.templateType, func(t *testing.T) {
			subject, content, err := renderIntakeForms("Jane <Roe>", "https://clinic.test/intake/forms/1", tt.templateType)
			if err != nil {
				t.Fatalf("render: %v", err)
			}
			if subject != tt.wantSubject {
				t.Fatalf("subject = %q", subject)
			}
			for _, want := range []string{tt.wantBody, "https://clinic.test/intake/forms/1", "Jane &lt;Roe&gt;"} {
				if !strings.Contains(content, want) {
					t.Errorf("content missing %q", want)
				}
			}
		})
	}
}

func TestRenderRejectsUnknownTemplateType(t *testing.T) {
	if _, _, err := renderIntakeForms("Jane", "https://x", "cardio"); err == nil {
		t.Fatal("intake: expected error")
	}
	if _, _, err := renderVisitScheduled("Jane", time.Now(), ""); err == nil {
		t.Fatal("visit: expected error")
	}
}

func TestRenderVisitScheduled(t *testing.T) {
	date := time.Date(2026, 4, 2, 9, 30, 0, 0, time.UTC)
	subject, content, err := renderVisitScheduled("Jane", date, TemplateMSK)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if subject != subjectVisitScheduled {
		t.Fatalf("subject = %q", subject)
	}
	if !strings.Contains(content, "Thursday 2 April 2026, 09:30 UTC") {
		t.Fatalf("content missing date: %s", content)
	}
}

func TestRenderStallDigest(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	items := []StallDigestItem{
		{PatientName: "Ann", Stage: "lead", WaitingSince: now.Add(-72 * time.Hour)},
		{PatientName: "Bob", Stage: "approved", WaitingSince: now.Add(-47 * time.Hour)},
	}
	subject, content, err := renderStallDigest(items, now)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if subject != "2 prospects waiting on follow-up" {
		t.Fatalf("subject = %q", subject)
	}
	for _, want := range []string{"Ann", "3d", "Bob", "47h"} {
		if !strings.Contains(content, want) {
			t.Errorf("content missing %q", want)
		}
	}
}

func TestSMTPSenderBuildsMessage(t *testing.T) {
	s := NewSMTPSender("localhost", 2525, "", "", "desk@clinic.test", "Clinic Front Desk")
	if _, err := s.buildMessage("jane@example.com", "hi", "<p>hi</p>"); err != nil {
		t.Fatalf("buildMessage: %v", err)
	}
	if _, err := s.buildMessage("not an address", "hi", "<p>hi</p>"); err == nil {
		t.Fatal("expected invalid recipient error")
	}
}

func TestStallDigestSkipsEmptyList(t *testing.T) {
	s := NewSMTPSender("unreachable.invalid", 2525, "", "", "desk@clinic.test", "Clinic")
	if err := s.SendStallDigestEmail(t.Context(), "desk@clinic.test", nil); err != nil {
		t.Fatalf("empty digest should be a no-op, got %v", err)
	}
}
