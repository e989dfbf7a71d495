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

var (
	ErrNotFound     = errors.New("care request not found")
	ErrLeadNotFound = errors.New("lead not found")
	// ErrStatusChanged means the row no longer has the status the caller read.
	ErrStatusChanged = errors.New("care request status changed")
	ErrLeadClosed    = errors.New("lead is closed")
	ErrLeadHasOpen   = errors.New("lead already has an open care request")
)

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

type CareRequest struct {
	ID                  uuid.UUID
	LeadID              *uuid.UUID
	Status              string
	Source              string
	PatientName         string
	PatientEmail        string
	PatientPhone        string
	PrimaryComplaint    *string
	AssignedClinicianID *uuid.UUID
	ApprovedAt          *time.Time
	EpisodeID           *uuid.UUID
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

const careRequestColumns = `id, lead_id, status, source,
	COALESCE(intake_payload->>'patient_name', ''),
	COALESCE(intake_payload->>'email', ''),
	COALESCE(intake_payload->>'phone', ''),
	primary_complaint, assigned_clinician_id, approved_at, episode_id, created_at, updated_at`

func scanCareRequest(row pgx.Row) (CareRequest, error) {
	var cr CareRequest
	err := row.Scan(&cr.ID, &cr.LeadID, &cr.Status, &cr.Source,
		&cr.PatientName, &cr.PatientEmail, &cr.PatientPhone,
		&cr.PrimaryComplaint, &cr.AssignedClinicianID, &cr.ApprovedAt, &cr.EpisodeID,
		&cr.CreatedAt, &cr.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return CareRequest{}, ErrNotFound
	}
	return cr, err
}

func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (CareRequest, error) {
	return scanCareRequest(r.pool.QueryRow(ctx, `SELECT `+careRequestColumns+` FROM care_requests WHERE id = $1`, id))
}

// List returns care requests newest first, optionally filtered by status.
func (r *Repository) List(ctx context.Context, status string) ([]CareRequest, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+careRequestColumns+`
		FROM care_requests
		WHERE ($1::text = '' OR upper(status) = upper($1))
		ORDER BY created_at DESC
	`, status)
	if err != nil {
		return nil, fmt.Errorf("query care requests: %w", err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (CareRequest, error) {
		return scanCareRequest(row)
	})
}

// CreateFromLead approves a lead into the pipeline: it inserts an APPROVED
// care request carrying the lead's contact details and qualifies the lead.
func (r *Repository) CreateFromLead(ctx context.Context, leadID uuid.UUID) (cr CareRequest, err error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return CareRequest{}, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	var name, email, phone, stage string
	var summary *string
	err = tx.QueryRow(ctx, `
		SELECT name, email, phone, funnel_stage, symptom_summary
		FROM leads WHERE id = $1 FOR UPDATE
	`, leadID).Scan(&name, &email, &phone, &stage, &summary)
	if errors.Is(err, pgx.ErrNoRows) {
		err = ErrLeadNotFound
		return CareRequest{}, err
	}
	if err != nil {
		return CareRequest{}, err
	}
	if stage == "converted" || stage == "closed_lost" {
		err = ErrLeadClosed
		return CareRequest{}, err
	}

	var open bool
	if err = tx.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM care_requests
			WHERE lead_id = $1 AND episode_id IS NULL
				AND lower(status) NOT IN ('archived', 'declined', 'converted')
		)
	`, leadID).Scan(&open); err != nil {
		return CareRequest{}, err
	}
	if open {
		err = ErrLeadHasOpen
		return CareRequest{}, err
	}

	cr, err = scanCareRequest(tx.QueryRow(ctx, `
		INSERT INTO care_requests (lead_id, status, source, intake_payload, primary_complaint, approved_at)
		VALUES ($1, 'APPROVED', 'LEAD_FORM',
			jsonb_build_object('patient_name', $2::text, 'email', $3::text, 'phone', $4::text), $5, now())
		RETURNING `+careRequestColumns,
		leadID, name, email, phone, summary))
	if err != nil {
		return CareRequest{}, err
	}

	if _, err = tx.Exec(ctx, `
		UPDATE leads SET funnel_stage = 'qualified', updated_at = now() WHERE id = $1
	`, leadID); err != nil {
		return CareRequest{}, err
	}

	if err = tx.Commit(ctx); err != nil {
		return CareRequest{}, err
	}
	return cr, nil
}

// Approve sets APPROVED and approved_at if the status is still from.
func (r *Repository) Approve(ctx context.Context, id uuid.UUID, from string, clinicianID *uuid.UUID) (CareRequest, error) {
	return r.guardedUpdate(ctx, r.pool, `
		UPDATE care_requests
		SET status = 'APPROVED', approved_at = now(),
			assigned_clinician_id = COALESCE($3, assigned_clinician_id), updated_at = now()
		WHERE id = $1 AND status = $2
		RETURNING `+careRequestColumns, id, from, clinicianID)
}

// SetStatus moves a request from one status to another.
func (r *Repository) SetStatus(ctx context.Context, id uuid.UUID, from, to string) (CareRequest, error) {
	return r.guardedUpdate(ctx, r.pool, `
		UPDATE care_requests SET status = $3, updated_at = now()
		WHERE id = $1 AND status = $2
		RETURNING `+careRequestColumns, id, from, to)
}

// Schedule upserts the pending episode and marks the request SCHEDULED.
func (r *Repository) Schedule(ctx context.Context, id uuid.UUID, from, patientName string, date time.Time) (cr CareRequest, err error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return CareRequest{}, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	cr, err = r.guardedUpdate(ctx, tx, `
		UPDATE care_requests SET status = 'SCHEDULED', updated_at = now()
		WHERE id = $1 AND status = $2
		RETURNING `+careRequestColumns, id, from)
	if err != nil {
		return CareRequest{}, err
	}

	if _, err = tx.Exec(ctx, `
		INSERT INTO pending_episodes (care_request_id, patient_name, scheduled_date, status)
		VALUES ($1, $2, $3, 'scheduled')
		ON CONFLICT (care_request_id) DO UPDATE
		SET scheduled_date = EXCLUDED.scheduled_date, patient_name = EXCLUDED.patient_name,
			status = 'scheduled', updated_at = now()
	`, id, patientName, date); err != nil {
		return CareRequest{}, err
	}

	if err = tx.Commit(ctx); err != nil {
		return CareRequest{}, err
	}
	return cr, nil
}

// CreateIntakeForm issues a pending legacy questionnaire linked to the request.
func (r *Repository) CreateIntakeForm(ctx context.Context, careRequestID uuid.UUID, patientName, patientEmail, templateType string) (uuid.UUID, error) {
	var id uuid.UUID
	err := r.pool.QueryRow(ctx, `
		INSERT INTO intake_forms (care_request_id, patient_name, patient_email, template_type, status)
		VALUES ($1, $2, $3, $4, 'pending')
		RETURNING id
	`, careRequestID, patientName, patientEmail, templateType).Scan(&id)
	return id, err
}

// ConvertParams describes the episode created by a conversion.
type ConvertParams struct {
	CareRequestID uuid.UUID
	FromStatus    string
	LeadID        *uuid.UUID
	PatientName   string
	PatientEmail  string
	ClinicianID   *uuid.UUID
}

// Convert creates the episode and closes every pipeline record that fed it
// in a single transaction.
func (r *Repository) Convert(ctx context.Context, p ConvertParams) (episodeID uuid.UUID, err error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return uuid.Nil, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	if err = tx.QueryRow(ctx, `
		INSERT INTO episodes (care_request_id, patient_name, patient_email, clinician_id, status)
		VALUES ($1, $2, $3, $4, 'active')
		RETURNING id
	`, p.CareRequestID, p.PatientName, p.PatientEmail, p.ClinicianID).Scan(&episodeID); err != nil {
		return uuid.Nil, err
	}

	tag, err := tx.Exec(ctx, `
		UPDATE care_requests SET status = 'CONVERTED', episode_id = $3, updated_at = now()
		WHERE id = $1 AND status = $2 AND episode_id IS NULL
	`, p.CareRequestID, p.FromStatus, episodeID)
	if err != nil {
		return uuid.Nil, err
	}
	if tag.RowsAffected() == 0 {
		err = ErrStatusChanged
		return uuid.Nil, err
	}

	if _, err = tx.Exec(ctx, `
		UPDATE intake_forms SET converted_to_episode_id = $2, updated_at = now()
		WHERE converted_to_episode_id IS NULL
			AND (care_request_id = $1
				OR (care_request_id IS NULL AND $3::text <> '' AND lower(trim(patient_email)) = lower(trim($3))))
	`, p.CareRequestID, episodeID, p.PatientEmail); err != nil {
		return uuid.Nil, err
	}

	if _, err = tx.Exec(ctx, `
		UPDATE intakes SET converted_to_episode_id = $2, updated_at = now()
		WHERE converted_to_episode_id IS NULL
			AND status IN ('completed', 'approved')
			AND (($1::uuid IS NOT NULL AND lead_id = $1)
				OR ($3::text <> '' AND lower(trim(patient_email)) = lower(trim($3))))
	`, p.LeadID, episodeID, p.PatientEmail); err != nil {
		return uuid.Nil, err
	}

	if _, err = tx.Exec(ctx, `
		UPDATE pending_episodes SET status = 'converted', updated_at = now()
		WHERE care_request_id = $1
	`, p.CareRequestID); err != nil {
		return uuid.Nil, err
	}

	if p.LeadID != nil {
		if _, err = tx.Exec(ctx, `
			UPDATE leads SET funnel_stage = 'converted', updated_at = now() WHERE id = $1
		`, *p.LeadID); err != nil {
			return uuid.Nil, err
		}
	}

	if err = tx.Commit(ctx); err != nil {
		return uuid.Nil, err
	}
	return episodeID, nil
}

type querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func (r *Repository) guardedUpdate(ctx context.Context, q querier, sql string, args ...any) (CareRequest, error) {
	cr, err := scanCareRequest(q.QueryRow(ctx, sql, args...))
	if errors.Is(err, ErrNotFound) {
		return CareRequest{}, ErrStatusChanged
	}
	return cr, err
}
