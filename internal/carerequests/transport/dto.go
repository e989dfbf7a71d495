package transport

import (
	"time"

	"github.com/google/uuid"
)

type ListQuery struct {
	Status string `form:"status" validate:"omitempty,max=32"`
}

type ApproveRequest struct {
	ClinicianID *uuid.UUID `json:"clinicianId,omitempty"`
}

type ScheduleRequest struct {
	ScheduledDate time.Time `json:"scheduledDate" validate:"required"`
	TemplateType  string    `json:"templateType" validate:"required,oneof=neuro msk"`
}

type SendFormsRequest struct {
	TemplateType string `json:"templateType" validate:"required,oneof=neuro msk"`
}

type ConvertRequest struct {
	ClinicianID *uuid.UUID `json:"clinicianId,omitempty"`
}

type CareRequestResponse struct {
	ID                  uuid.UUID  `json:"id"`
	LeadID              *uuid.UUID `json:"leadId,omitempty"`
	Status              string     `json:"status"`
	Source              string     `json:"source"`
	PatientName         string     `json:"patientName"`
	PatientEmail        string     `json:"patientEmail,omitempty"`
	PatientPhone        string     `json:"patientPhone,omitempty"`
	PrimaryComplaint    *string    `json:"primaryComplaint,omitempty"`
	AssignedClinicianID *uuid.UUID `json:"assignedClinicianId,omitempty"`
	ApprovedAt          *time.Time `json:"approvedAt,omitempty"`
	EpisodeID           *uuid.UUID `json:"episodeId,omitempty"`
	CreatedAt           time.Time  `json:"createdAt"`
	UpdatedAt           time.Time  `json:"updatedAt"`
}

type CareRequestListResponse struct {
	Items []CareRequestResponse `json:"items"`
	Total int                   `json:"total"`
}

type SendFormsResponse struct {
	IntakeFormID uuid.UUID `json:"intakeFormId"`
	FormURL      string    `json:"formUrl"`
}

type ConvertResponse struct {
	EpisodeID uuid.UUID `json:"episodeId"`
}
