package transport

import (
	"time"

	"github.com/google/uuid"
)

// CreateLeadRequest is a public CTA submission.
type CreateLeadRequest struct {
	Name           string  `json:"name" validate:"required,notblank,max=200"`
	Email          string  `json:"email" validate:"required,email,max=254"`
	Phone          string  `json:"phone,omitempty" validate:"omitempty,min=5,max=32"`
	OriginPage     *string `json:"originPage,omitempty" validate:"omitempty,max=500"`
	OriginCTA      *string `json:"originCta,omitempty" validate:"omitempty,max=200"`
	UTMSource      *string `json:"utmSource,omitempty" validate:"omitempty,max=200"`
	UTMMedium      *string `json:"utmMedium,omitempty" validate:"omitempty,max=200"`
	UTMCampaign    *string `json:"utmCampaign,omitempty" validate:"omitempty,max=200"`
	SymptomSummary *string `json:"symptomSummary,omitempty" validate:"omitempty,max=4000"`
}

type ListLeadsQuery struct {
	Stage string `form:"stage" validate:"omitempty,oneof=new nurture qualified converted closed_lost"`
}

// UpdateStageRequest covers the staff funnel actions. Conversion happens
// through the care request pipeline only.
type UpdateStageRequest struct {
	Stage string `json:"stage" validate:"required,oneof=nurture qualified closed_lost"`
}

type UpdateNotesRequest struct {
	Notes string `json:"notes" validate:"max=10000"`
}

type LeadResponse struct {
	ID             uuid.UUID `json:"id"`
	Name           string    `json:"name"`
	Email          string    `json:"email"`
	Phone          string    `json:"phone,omitempty"`
	OriginPage     *string   `json:"originPage,omitempty"`
	OriginCTA      *string   `json:"originCta,omitempty"`
	UTMSource      *string   `json:"utmSource,omitempty"`
	UTMMedium      *string   `json:"utmMedium,omitempty"`
	UTMCampaign    *string   `json:"utmCampaign,omitempty"`
	FunnelStage    string    `json:"funnelStage"`
	Notes          *string   `json:"notes,omitempty"`
	SymptomSummary *string   `json:"symptomSummary,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

type LeadListResponse struct {
	Items []LeadResponse `json:"items"`
	Total int            `json:"total"`
}

// PublicLeadResponse is all an anonymous submitter gets back.
type PublicLeadResponse struct {
	ID        uuid.UUID `json:"id"`
	CreatedAt time.Time `json:"createdAt"`
}
