package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNotFound = errors.New("lead not found")

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

type Lead struct {
	ID             uuid.UUID
	Name           string
	Email          string
	Phone          string
	OriginPage     *string
	OriginCTA      *string
	UTMSource      *string
	UTMMedium      *string
	UTMCampaign    *string
	FunnelStage    string
	Notes          *string
	SymptomSummary *string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

type CreateParams struct {
	Name           string
	Email          string
	Phone          string
	OriginPage     *string
	OriginCTA      *string
	UTMSource      *string
	UTMMedium      *string
	UTMCampaign    *string
	SymptomSummary *string
}

const leadColumns = `id, name, email, phone, origin_page, origin_cta, utm_source, utm_medium, utm_campaign,
	funnel_stage, notes, symptom_summary, created_at, updated_at`

func scanLead(row pgx.Row) (Lead, error) {
	var l Lead
	err := row.Scan(&l.ID, &l.Name, &l.Email, &l.Phone, &l.OriginPage, &l.OriginCTA,
		&l.UTMSource, &l.UTMMedium, &l.UTMCampaign, &l.FunnelStage, &l.Notes, &l.SymptomSummary,
		&l.CreatedAt, &l.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Lead{}, ErrNotFound
	}
	return l, err
}

func (r *Repository) Create(ctx context.Context, params CreateParams) (Lead, error) {
	return scanLead(r.pool.QueryRow(ctx, `
		INSERT INTO leads (name, email, phone, origin_page, origin_cta, utm_source, utm_medium, utm_campaign, symptom_summary)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING `+leadColumns,
		params.Name, params.Email, params.Phone, params.OriginPage, params.OriginCTA,
		params.UTMSource, params.UTMMedium, params.UTMCampaign, params.SymptomSummary))
}

func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (Lead, error) {
	return scanLead(r.pool.QueryRow(ctx, `SELECT `+leadColumns+` FROM leads WHERE id = $1`, id))
}

// List returns leads newest first, optionally filtered by funnel stage.
func (r *Repository) List(ctx context.Context, stage string) ([]Lead, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+leadColumns+`
		FROM leads
		WHERE ($1::text = '' OR funnel_stage = $1)
		ORDER BY created_at DESC
	`, stage)
	if err != nil {
		return nil, fmt.Errorf("query leads: %w", err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (Lead, error) {
		return scanLead(row)
	})
}

// UpdateStage moves a lead only if it is still at from. ErrNotFound means
// the lead is gone or was moved concurrently.
func (r *Repository) UpdateStage(ctx context.Context, id uuid.UUID, from, to string) (Lead, error) {
	return scanLead(r.pool.QueryRow(ctx, `
		UPDATE leads SET funnel_stage = $3, updated_at = now()
		WHERE id = $1 AND funnel_stage = $2
		RETURNING `+leadColumns, id, from, to))
}

func (r *Repository) UpdateNotes(ctx context.Context, id uuid.UUID, notes string) (Lead, error) {
	return scanLead(r.pool.QueryRow(ctx, `
		UPDATE leads SET notes = $2, updated_at = now()
		WHERE id = $1
		RETURNING `+leadColumns, id, notes))
}

func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM leads WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
