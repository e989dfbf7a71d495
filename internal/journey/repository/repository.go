// Package repository reads the five pipeline tables the journey is derived from.
package repository

import (
	"context"
	"fmt"

	"clinic_intake_backend/internal/journey/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// ListOpenLeads returns leads that have not been converted or closed.
func (r *Repository) ListOpenLeads(ctx context.Context) ([]domain.Lead, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, name, email, phone, funnel_stage, COALESCE(origin_cta, ''), COALESCE(symptom_summary, ''), created_at
		FROM leads
		WHERE funnel_stage NOT IN ('converted', 'closed_lost')
		ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("query leads: %w", err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Lead, error) {
		var l domain.Lead
		err := row.Scan(&l.ID, &l.Name, &l.Email, &l.Phone, &l.FunnelStage, &l.OriginCTA, &l.SymptomSummary, &l.CreatedAt)
		return l, err
	})
}

// ListOpenCareRequests returns care requests still in the pipeline.
func (r *Repository) ListOpenCareRequests(ctx context.Context) ([]domain.CareRequest, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, lead_id, status, source,
			COALESCE(intake_payload->>'patient_name', ''),
			COALESCE(intake_payload->>'email', ''),
			COALESCE(intake_payload->>'phone', ''),
			COALESCE(primary_complaint, ''),
			approved_at, episode_id, created_at
		FROM care_requests
		WHERE lower(status) NOT IN ('archived', 'declined', 'converted')
			AND episode_id IS NULL
		ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("query care requests: %w", err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.CareRequest, error) {
		var cr domain.CareRequest
		err := row.Scan(&cr.ID, &cr.LeadID, &cr.Status, &cr.Source,
			&cr.PatientName, &cr.PatientEmail, &cr.PatientPhone, &cr.PrimaryComplaint,
			&cr.ApprovedAt, &cr.EpisodeID, &cr.CreatedAt)
		return cr, err
	})
}

// ListPendingEpisodes returns scheduling records that are not yet converted.
func (r *Repository) ListPendingEpisodes(ctx context.Context) ([]domain.PendingEpisode, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, care_request_id, patient_name, scheduled_date, status, created_at
		FROM pending_episodes
		WHERE status IN ('pending', 'scheduled', 'ready_for_conversion')
		ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("query pending episodes: %w", err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.PendingEpisode, error) {
		var pe domain.PendingEpisode
		err := row.Scan(&pe.ID, &pe.CareRequestID, &pe.PatientName, &pe.ScheduledDate, &pe.Status, &pe.CreatedAt)
		return pe, err
	})
}

// ListIntakeForms returns every legacy intake form.
func (r *Repository) ListIntakeForms(ctx context.Context) ([]domain.IntakeForm, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, care_request_id, patient_name, patient_email, status, submitted_at, converted_to_episode_id, created_at
		FROM intake_forms
		ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("query intake forms: %w", err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.IntakeForm, error) {
		var f domain.IntakeForm
		err := row.Scan(&f.ID, &f.CareRequestID, &f.PatientName, &f.PatientEmail, &f.Status, &f.SubmittedAt, &f.ConvertedToEpisodeID, &f.CreatedAt)
		return f, err
	})
}

// ListFinishedIntakes returns structured intakes the patient has completed.
func (r *Repository) ListFinishedIntakes(ctx context.Context) ([]domain.Intake, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, lead_id, patient_name, patient_email, status, converted_to_episode_id, created_at
		FROM intakes
		WHERE status IN ('completed', 'approved')
		ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("query intakes: %w", err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Intake, error) {
		var in domain.Intake
		err := row.Scan(&in.ID, &in.LeadID, &in.PatientName, &in.PatientEmail, &in.Status, &in.ConvertedToEpisodeID, &in.CreatedAt)
		return in, err
	})
}
