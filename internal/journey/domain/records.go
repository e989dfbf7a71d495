// Package domain holds the pure Prospect Journey derivation: identity
// matching, stage selection, stall policy and ordering. Nothing here performs I/O.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// Lead is a prospective-patient submission as read for one fetch cycle.
type Lead struct {
	ID             uuid.UUID
	Name           string
	Email          string
	Phone          string
	FunnelStage    string
	OriginCTA      string
	SymptomSummary string
	CreatedAt      time.Time
}

// CareRequest is an open pipeline record. PatientName and PatientEmail come
// from the denormalized intake payload.
type CareRequest struct {
	ID               uuid.UUID
	LeadID           *uuid.UUID
	Status           string
	Source           string
	PatientName      string
	PatientEmail     string
	PatientPhone     string
	PrimaryComplaint string
	ApprovedAt       *time.Time
	EpisodeID        *uuid.UUID
	CreatedAt        time.Time
}

// PendingEpisode links a care request to a scheduled visit.
type PendingEpisode struct {
	ID            uuid.UUID
	CareRequestID *uuid.UUID
	PatientName   string
	ScheduledDate *time.Time
	Status        string
	CreatedAt     time.Time
}

// IntakeForm is a legacy questionnaire row.
type IntakeForm struct {
	ID                   uuid.UUID
	CareRequestID        *uuid.UUID
	PatientName          string
	PatientEmail         string
	Status               string
	SubmittedAt          *time.Time
	ConvertedToEpisodeID *uuid.UUID
	CreatedAt            time.Time
}

// Intake is a structured questionnaire row.
type Intake struct {
	ID                   uuid.UUID
	LeadID               *uuid.UUID
	PatientName          string
	PatientEmail         string
	Status               string
	ConvertedToEpisodeID *uuid.UUID
	CreatedAt            time.Time
}

// Snapshot is the complete input of one derivation. Every slice is in fetch
// order, which breaks ties between equal matches.
type Snapshot struct {
	Leads           []Lead
	CareRequests    []CareRequest
	PendingEpisodes []PendingEpisode
	IntakeForms     []IntakeForm
	Intakes         []Intake
}
