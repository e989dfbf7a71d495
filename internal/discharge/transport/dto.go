package transport

import (
	"time"

	"github.com/google/uuid"
)

type ListEpisodesQuery struct {
	Status string `form:"status" validate:"omitempty,oneof=active discharged"`
}

type CreateDischargeRequest struct {
	Reason        string             `json:"reason" validate:"required,oneof=goals_met plateau non_compliance referred_out patient_request other"`
	Summary       string             `json:"summary" validate:"max=10000"`
	HomeProgram   string             `json:"homeProgram" validate:"max=10000"`
	OutcomeScores map[string]float64 `json:"outcomeScores" validate:"omitempty,max=50"`
}

type EpisodeResponse struct {
	ID            uuid.UUID  `json:"id"`
	CareRequestID *uuid.UUID `json:"careRequestId,omitempty"`
	PatientName   string     `json:"patientName"`
	PatientEmail  string     `json:"patientEmail,omitempty"`
	ClinicianID   *uuid.UUID `json:"clinicianId,omitempty"`
	Status        string     `json:"status"`
	StartDate     time.Time  `json:"startDate"`
	CreatedAt     time.Time  `json:"createdAt"`
}

type EpisodeListResponse struct {
	Items []EpisodeResponse `json:"items"`
	Total int               `json:"total"`
}

type DischargeResponse struct {
	ID            uuid.UUID          `json:"id"`
	EpisodeID     uuid.UUID          `json:"episodeId"`
	Reason        string             `json:"reason"`
	Summary       string             `json:"summary"`
	HomeProgram   string             `json:"homeProgram"`
	OutcomeScores map[string]float64 `json:"outcomeScores"`
	Status        string             `json:"status"`
	CreatedBy     uuid.UUID          `json:"createdBy"`
	FinalizedBy   *uuid.UUID         `json:"finalizedBy,omitempty"`
	FinalizedAt   *time.Time         `json:"finalizedAt,omitempty"`
	CreatedAt     time.Time          `json:"createdAt"`
}
