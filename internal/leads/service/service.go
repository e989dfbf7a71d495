// Package service implements the lead funnel use cases.
package service

import (
	"context"
	"errors"
	"strings"

	"clinic_intake_backend/internal/events"
	"clinic_intake_backend/internal/leads/domain"
	"clinic_intake_backend/internal/leads/repository"
	"clinic_intake_backend/internal/leads/transport"
	"clinic_intake_backend/platform/apperr"
	"clinic_intake_backend/platform/phone"
	"clinic_intake_backend/platform/sanitize"

	"github.com/google/uuid"
)

const (
	msgLeadNotFound  = "lead not found"
	msgInvalidPhone  = "invalid phone number"
	msgNameRequired  = "name is required"
	msgStageConflict = "lead stage changed, reload and try again"
	msgTerminalStage = "lead is already closed"
	msgBadTransition = "invalid stage transition"
)

// Repository is the persistence the lead service needs.
type Repository interface {
	Create(ctx context.Context, params repository.CreateParams) (repository.Lead, error)
	GetByID(ctx context.Context, id uuid.UUID) (repository.Lead, error)
	List(ctx context.Context, stage string) ([]repository.Lead, error)
	UpdateStage(ctx context.Context, id uuid.UUID, from, to string) (repository.Lead, error)
	UpdateNotes(ctx context.Context, id uuid.UUID, notes string) (repository.Lead, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type Service struct {
	repo        Repository
	eventBus    events.Bus
	phoneRegion string
}

func New(repo Repository, eventBus events.Bus, phoneRegion string) *Service {
	return &Service{repo: repo, eventBus: eventBus, phoneRegion: phoneRegion}
}

// Create stores a public CTA submission as a new lead.
func (s *Service) Create(ctx context.Context, req transport.CreateLeadRequest) (transport.LeadResponse, error) {
	name := sanitize.Name(req.Name)
	if name == "" {
		return transport.LeadResponse{}, apperr.Validation(msgNameRequired)
	}

	phoneNumber := strings.TrimSpace(req.Phone)
	if phoneNumber != "" {
		if !phone.IsValid(phoneNumber, s.phoneRegion) {
			return transport.LeadResponse{}, apperr.Validation(msgInvalidPhone)
		}
		phoneNumber = phone.NormalizeE164(phoneNumber, s.phoneRegion)
	}

	lead, err := s.repo.Create(ctx, repository.CreateParams{
		Name:           name,
		Email:          strings.ToLower(strings.TrimSpace(req.Email)),
		Phone:          phoneNumber,
		OriginPage:     sanitize.TextPtr(req.OriginPage),
		OriginCTA:      sanitize.TextPtr(req.OriginCTA),
		UTMSource:      sanitize.TextPtr(req.UTMSource),
		UTMMedium:      sanitize.TextPtr(req.UTMMedium),
		UTMCampaign:    sanitize.TextPtr(req.UTMCampaign),
		SymptomSummary: sanitize.TextPtr(req.SymptomSummary),
	})
	if err != nil {
		return transport.LeadResponse{}, err
	}

	origin := ""
	if lead.OriginCTA != nil {
		origin = *lead.OriginCTA
	}
	s.eventBus.Publish(ctx, events.LeadCreated{
		BaseEvent: events.NewBaseEvent(),
		LeadID:    lead.ID,
		Name:      lead.Name,
		Email:     lead.Email,
		Origin:    origin,
	})

	return toLeadResponse(lead), nil
}

func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (transport.LeadResponse, error) {
	lead, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return transport.LeadResponse{}, mapNotFound(err)
	}
	return toLeadResponse(lead), nil
}

func (s *Service) List(ctx context.Context, stage string) (transport.LeadListResponse, error) {
	leads, err := s.repo.List(ctx, stage)
	if err != nil {
		return transport.LeadListResponse{}, err
	}
	items := make([]transport.LeadResponse, 0, len(leads))
	for _, l := range leads {
		items = append(items, toLeadResponse(l))
	}
	return transport.LeadListResponse{Items: items, Total: len(items)}, nil
}

// UpdateStage applies a staff funnel action.
func (s *Service) UpdateStage(ctx context.Context, id, actorID uuid.UUID, to string) (transport.LeadResponse, error) {
	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return transport.LeadResponse{}, mapNotFound(err)
	}

	from, ok := domain.ParseFunnelStage(current.FunnelStage)
	if !ok {
		from = domain.FunnelNew
	}
	target, ok := domain.ParseFunnelStage(to)
	if !ok {
		return transport.LeadResponse{}, apperr.Validation(msgBadTransition)
	}
	if from.IsTerminal() {
		return transport.LeadResponse{}, apperr.Conflict(msgTerminalStage)
	}
	if !domain.CanTransition(from, target) {
		return transport.LeadResponse{}, apperr.Validation(msgBadTransition).
			WithDetails(map[string]string{"from": string(from), "to": string(target)})
	}

	updated, err := s.repo.UpdateStage(ctx, id, current.FunnelStage, string(target))
	if errors.Is(err, repository.ErrNotFound) {
		return transport.LeadResponse{}, apperr.Conflict(msgStageConflict)
	}
	if err != nil {
		return transport.LeadResponse{}, err
	}

	s.eventBus.Publish(ctx, events.LeadStageChanged{
		BaseEvent: events.NewBaseEvent(),
		LeadID:    id,
		FromStage: string(from),
		ToStage:   string(target),
		ActorID:   actorID,
	})

	return toLeadResponse(updated), nil
}

func (s *Service) UpdateNotes(ctx context.Context, id uuid.UUID, notes string) (transport.LeadResponse, error) {
	lead, err := s.repo.UpdateNotes(ctx, id, sanitize.Text(notes))
	if err != nil {
		return transport.LeadResponse{}, mapNotFound(err)
	}
	return toLeadResponse(lead), nil
}

// Delete removes a lead permanently. Admin only.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return mapNotFound(s.repo.Delete(ctx, id))
}

func mapNotFound(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return apperr.NotFound(msgLeadNotFound)
	}
	return err
}

func toLeadResponse(l repository.Lead) transport.LeadResponse {
	return transport.LeadResponse{
		ID:             l.ID,
		Name:           l.Name,
		Email:          l.Email,
		Phone:          l.Phone,
		OriginPage:     l.OriginPage,
		OriginCTA:      l.OriginCTA,
		UTMSource:      l.UTMSource,
		UTMMedium:      l.UTMMedium,
		UTMCampaign:    l.UTMCampaign,
		FunnelStage:    l.FunnelStage,
		Notes:          l.Notes,
		SymptomSummary: l.SymptomSummary,
		CreatedAt:      l.CreatedAt,
		UpdatedAt:      l.UpdatedAt,
	}
}
