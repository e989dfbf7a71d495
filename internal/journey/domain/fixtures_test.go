package domain

import (
	"time"

	"github.com/google/uuid"
)

var testNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func daysAgo(n int) time.Time {
	return testNow.Add(-time.Duration(n) * 24 * time.Hour)
}

func ptrTime(t time.Time) *time.Time { return &t }

func ptrUUID(id uuid.UUID) *uuid.UUID { return &id }

func newLead(name, email, stage string, age int) Lead {
	return Lead{ID: uuid.New(), Name: name, Email: email, FunnelStage: stage, CreatedAt: daysAgo(age)}
}

func newCareRequest(name, email, status string, age int) CareRequest {
	return CareRequest{
		ID:           uuid.New(),
		Status:       status,
		Source:       "LEAD_FORM",
		PatientName:  name,
		PatientEmail: email,
		CreatedAt:    daysAgo(age),
	}
}
