package transport

import (
	"time"

	"github.com/google/uuid"
)

// IntakeFormResponse is what the patient sees of a legacy questionnaire.
type IntakeFormResponse struct {
	ID           uuid.UUID      `json:"id"`
	PatientName  string         `json:"patientName"`
	TemplateType string         `json:"templateType"`
	Status       string         `json:"status"`
	Responses    map[string]any `json:"responses"`
	SubmittedAt  *time.Time     `json:"submittedAt,omitempty"`
	UpdatedAt    time.Time      `json:"updatedAt"`
}

type SaveFormRequest struct {
	Responses map[string]any `json:"responses" validate:"required,max=500"`
}

type SubmitFormRequest struct {
	Responses map[string]any `json:"responses,omitempty" validate:"omitempty,max=500"`
}

type CreateIntakeRequest struct {
	LeadID       *uuid.UUID     `json:"leadId,omitempty"`
	PatientName  string         `json:"patientName" validate:"required,notblank,max=200"`
	PatientEmail string         `json:"patientEmail" validate:"required,email,max=254"`
	PatientPhone string         `json:"patientPhone,omitempty" validate:"omitempty,min=5,max=32"`
	TemplateType string         `json:"templateType" validate:"required,oneof=neuro msk"`
	Payload      map[string]any `json:"payload,omitempty" validate:"omitempty,max=500"`
}

type SaveIntakeRequest struct {
	Payload map[string]any `json:"payload" validate:"required,max=500"`
}

type SubmitIntakeRequest struct {
	Payload map[string]any `json:"payload,omitempty" validate:"omitempty,max=500"`
}

type ListIntakesQuery struct {
	Status string `form:"status" validate:"omitempty,oneof=draft completed approved"`
}

type IntakeResponse struct {
	ID                   uuid.UUID      `json:"id"`
	LeadID               *uuid.UUID     `json:"leadId,omitempty"`
	PatientName          string         `json:"patientName"`
	PatientEmail         string         `json:"patientEmail"`
	PatientPhone         string         `json:"patientPhone,omitempty"`
	TemplateType         string         `json:"templateType"`
	Status               string         `json:"status"`
	Payload              map[string]any `json:"payload"`
	SubmittedAt          *time.Time     `json:"submittedAt,omitempty"`
	ApprovedAt           *time.Time     `json:"approvedAt,omitempty"`
	ApprovedBy           *uuid.UUID     `json:"approvedBy,omitempty"`
	ConvertedToEpisodeID *uuid.UUID     `json:"convertedToEpisodeId,omitempty"`
	CreatedAt            time.Time      `json:"createdAt"`
	UpdatedAt            time.Time      `json:"updatedAt"`
}

type IntakeListResponse struct {
	Items []IntakeResponse `json:"items"`
	Total int              `json:"total"`
}

// FrontDeskRequest is a walk-in patient's questionnaire from the lobby QR code.
type FrontDeskRequest struct {
	PatientName      string         `json:"patientName" validate:"required,notblank,max=200"`
	PatientEmail     string         `json:"patientEmail,omitempty" validate:"omitempty,email,max=254"`
	PatientPhone     string         `json:"patientPhone,omitempty" validate:"omitempty,min=5,max=32"`
	PrimaryComplaint *string        `json:"primaryComplaint,omitempty" validate:"omitempty,max=4000"`
	TemplateType     string         `json:"templateType" validate:"required,oneof=neuro msk"`
	Responses        map[string]any `json:"responses" validate:"required,max=500"`
}

type FrontDeskResponse struct {
	CareRequestID uuid.UUID `json:"careRequestId"`
	IntakeFormID  uuid.UUID `json:"intakeFormId"`
	SubmittedAt   time.Time `json:"submittedAt"`
}
