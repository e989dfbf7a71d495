// Package service drafts and finalizes episode discharges.
package service

import (
	"context"
	"strings"

	"clinic_intake_backend/internal/discharge/repository"
	"clinic_intake_backend/internal/discharge/transport"
	"clinic_intake_backend/internal/events"
	"clinic_intake_backend/platform/sanitize"

	"github.com/google/uuid"
)

// Repository is the persistence the discharge workflow needs.
type Repository interface {
	ListEpisodes(ctx context.Context, status string) ([]repository.Episode, error)
	Create(ctx context.Context, p repository.CreateParams) (repository.Discharge, error)
	Finalize(ctx context.Context, id, actorID uuid.UUID) (repository.Discharge, error)
}

type Service struct {
	repo     Repository
	eventBus events.Bus
}

func New(repo Repository, eventBus events.Bus) *Service {
	return &Service{repo: repo, eventBus: eventBus}
}

func (s *Service) ListEpisodes(ctx context.Context, status string) (transport.EpisodeListResponse, error) {
	rows, err := s.repo.ListEpisodes(ctx, status)
	if err != nil {
		return transport.EpisodeListResponse{}, err
	}
	items := make([]transport.EpisodeResponse, 0, len(rows))
	for _, e := range rows {
		items = append(items, transport.EpisodeResponse{
			ID:            e.ID,
			CareRequestID: e.CareRequestID,
			PatientName:   e.PatientName,
			PatientEmail:  e.PatientEmail,
			ClinicianID:   e.ClinicianID,
			Status:        e.Status,
			StartDate:     e.StartDate,
			CreatedAt:     e.CreatedAt,
		})
	}
	return transport.EpisodeListResponse{Items: items, Total: len(items)}, nil
}

// Create drafts a discharge. The episode stays active until finalized.
func (s *Service) Create(ctx context.Context, episodeID, actorID uuid.UUID, req transport.CreateDischargeRequest) (transport.DischargeResponse, error) {
	d, err := s.repo.Create(ctx, repository.CreateParams{
		EpisodeID:     episodeID,
		Reason:        req.Reason,
		Summary:       strings.TrimSpace(sanitize.Text(req.Summary)),
		HomeProgram:   strings.TrimSpace(sanitize.Text(req.HomeProgram)),
		OutcomeScores: req.OutcomeScores,
		CreatedBy:     actorID,
	})
	if err != nil {
		return transport.DischargeResponse{}, err
	}
	return toResponse(d), nil
}

func (s *Service) Finalize(ctx context.Context, id, actorID uuid.UUID) (transport.DischargeResponse, error) {
	d, err := s.repo.Finalize(ctx, id, actorID)
	if err != nil {
		return transport.DischargeResponse{}, err
	}

	s.eventBus.Publish(ctx, events.EpisodeDischarged{
		BaseEvent:   events.NewBaseEvent(),
		EpisodeID:   d.EpisodeID,
		DischargeID: d.ID,
		Reason:      d.Reason,
	})
	return toResponse(d), nil
}

func toResponse(d repository.Discharge) transport.DischargeResponse {
	scores := d.OutcomeScores
	if scores == nil {
		scores = map[string]float64{}
	}
	return transport.DischargeResponse{
		ID:            d.ID,
		EpisodeID:     d.EpisodeID,
		Reason:        d.Reason,
		Summary:       d.Summary,
		HomeProgram:   d.HomeProgram,
		OutcomeScores: scores,
		Status:        d.Status,
		CreatedBy:     d.CreatedBy,
		FinalizedBy:   d.FinalizedBy,
		FinalizedAt:   d.FinalizedAt,
		CreatedAt:     d.CreatedAt,
	}
}
