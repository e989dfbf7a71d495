package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"clinic_intake_backend/internal/discharge/domain"
	"clinic_intake_backend/platform/apperr"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	opListEpisodes = "discharge.list_episodes"
	opCreate       = "discharge.create"
	opFinalize     = "discharge.finalize"
	opGet          = "discharge.get"

	errEpisodeNotFound   = "episode not found"
	errDischargeNotFound = "discharge not found"
	errEpisodeNotActive  = "only active episodes can be discharged"
	errAlreadyExists     = "episode already has a discharge"
	errNotDraft          = "discharge is already finalized"
)

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

type Episode struct {
	ID            uuid.UUID
	CareRequestID *uuid.UUID
	PatientName   string
	PatientEmail  string
	ClinicianID   *uuid.UUID
	Status        string
	StartDate     time.Time
	CreatedAt     time.Time
}

type Discharge struct {
	ID            uuid.UUID
	EpisodeID     uuid.UUID
	Reason        string
	Summary       string
	HomeProgram   string
	OutcomeScores map[string]float64
	Status        string
	CreatedBy     uuid.UUID
	FinalizedBy   *uuid.UUID
	FinalizedAt   *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

type CreateParams struct {
	EpisodeID     uuid.UUID
	Reason        string
	Summary       string
	HomeProgram   string
	OutcomeScores map[string]float64
	CreatedBy     uuid.UUID
}

const dischargeColumns = `id, episode_id, reason, summary, home_program, outcome_scores, status,
	created_by, finalized_by, finalized_at, created_at, updated_at`

func scanDischarge(row pgx.Row) (Discharge, error) {
	var d Discharge
	err := row.Scan(&d.ID, &d.EpisodeID, &d.Reason, &d.Summary, &d.HomeProgram, &d.OutcomeScores, &d.Status,
		&d.CreatedBy, &d.FinalizedBy, &d.FinalizedAt, &d.CreatedAt, &d.UpdatedAt)
	return d, err
}

func (r *Repository) ListEpisodes(ctx context.Context, status string) ([]Episode, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, care_request_id, patient_name, patient_email, clinician_id, status, start_date, created_at
		FROM episodes
		WHERE ($1::text = '' OR status = $1)
		ORDER BY start_date DESC
	`, status)
	if err != nil {
		return nil, apperr.Internal(fmt.Sprintf("list episodes failed: %v", err)).WithOp(opListEpisodes)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (Episode, error) {
		var e Episode
		err := row.Scan(&e.ID, &e.CareRequestID, &e.PatientName, &e.PatientEmail, &e.ClinicianID, &e.Status, &e.StartDate, &e.CreatedAt)
		return e, err
	})
}

func (r *Repository) GetDischarge(ctx context.Context, id uuid.UUID) (Discharge, error) {
	d, err := scanDischarge(r.pool.QueryRow(ctx, `SELECT `+dischargeColumns+` FROM discharges WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Discharge{}, apperr.NotFound(errDischargeNotFound).WithOp(opGet)
	}
	return d, err
}

// Create drafts the discharge of an active episode.
func (r *Repository) Create(ctx context.Context, p CreateParams) (d Discharge, err error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return Discharge{}, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	if p.OutcomeScores == nil {
		p.OutcomeScores = map[string]float64{}
	}

	var status string
	err = tx.QueryRow(ctx, `SELECT status FROM episodes WHERE id = $1 FOR UPDATE`, p.EpisodeID).Scan(&status)
	if errors.Is(err, pgx.ErrNoRows) {
		err = apperr.NotFound(errEpisodeNotFound).WithOp(opCreate)
		return Discharge{}, err
	}
	if err != nil {
		return Discharge{}, err
	}
	if !domain.CanDischarge(status) {
		err = apperr.Conflict(errEpisodeNotActive).WithOp(opCreate)
		return Discharge{}, err
	}

	d, err = scanDischarge(tx.QueryRow(ctx, `
		INSERT INTO discharges (episode_id, reason, summary, home_program, outcome_scores, created_by)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+dischargeColumns,
		p.EpisodeID, p.Reason, p.Summary, p.HomeProgram, p.OutcomeScores, p.CreatedBy))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			err = apperr.Conflict(errAlreadyExists).WithOp(opCreate)
		}
		return Discharge{}, err
	}

	if err = tx.Commit(ctx); err != nil {
		return Discharge{}, err
	}
	return d, nil
}

// Finalize locks the discharge and ends the episode.
func (r *Repository) Finalize(ctx context.Context, id, actorID uuid.UUID) (d Discharge, err error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return Discharge{}, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	d, err = scanDischarge(tx.QueryRow(ctx, `
		UPDATE discharges SET status = $3, finalized_by = $2, finalized_at = now(), updated_at = now()
		WHERE id = $1 AND status = $4
		RETURNING `+dischargeColumns, id, actorID, domain.DischargeFinalized, domain.DischargeDraft))
	if errors.Is(err, pgx.ErrNoRows) {
		var exists bool
		if qerr := tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM discharges WHERE id = $1)`, id).Scan(&exists); qerr != nil {
			err = qerr
			return Discharge{}, err
		}
		if exists {
			err = apperr.Conflict(errNotDraft).WithOp(opFinalize)
		} else {
			err = apperr.NotFound(errDischargeNotFound).WithOp(opFinalize)
		}
		return Discharge{}, err
	}
	if err != nil {
		return Discharge{}, err
	}

	if _, err = tx.Exec(ctx, `
		UPDATE episodes SET status = $2, updated_at = now() WHERE id = $1
	`, d.EpisodeID, domain.EpisodeDischarged); err != nil {
		return Discharge{}, err
	}

	if err = tx.Commit(ctx); err != nil {
		return Discharge{}, err
	}
	return d, nil
}
