package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrNotFound = errors.New("intake not found")
	// ErrLocked means the questionnaire is no longer editable in its status.
	ErrLocked = errors.New("intake is locked")
)

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// IntakeForm is a legacy questionnaire issued to a patient.
type IntakeForm struct {
	ID                   uuid.UUID
	CareRequestID        *uuid.UUID
	PatientName          string
	PatientEmail         string
	TemplateType         string
	Status               string
	Responses            map[string]any
	SubmittedAt          *time.Time
	ConvertedToEpisodeID *uuid.UUID
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

// Intake is a structured questionnaire started by the patient.
type Intake struct {
	ID                   uuid.UUID
	LeadID               *uuid.UUID
	PatientName          string
	PatientEmail         string
	PatientPhone         string
	TemplateType         string
	Status               string
	Payload              map[string]any
	SubmittedAt          *time.Time
	ApprovedAt           *time.Time
	ApprovedBy           *uuid.UUID
	ConvertedToEpisodeID *uuid.UUID
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

const formColumns = `id, care_request_id, patient_name, patient_email, template_type, status, responses,
	submitted_at, converted_to_episode_id, created_at, updated_at`

const intakeColumns = `id, lead_id, patient_name, patient_email, patient_phone, template_type, status, payload,
	submitted_at, approved_at, approved_by, converted_to_episode_id, created_at, updated_at`

func scanForm(row pgx.Row) (IntakeForm, error) {
	var f IntakeForm
	err := row.Scan(&f.ID, &f.CareRequestID, &f.PatientName, &f.PatientEmail, &f.TemplateType, &f.Status,
		&f.Responses, &f.SubmittedAt, &f.ConvertedToEpisodeID, &f.CreatedAt, &f.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return IntakeForm{}, ErrNotFound
	}
	return f, err
}

func scanIntake(row pgx.Row) (Intake, error) {
	var in Intake
	err := row.Scan(&in.ID, &in.LeadID, &in.PatientName, &in.PatientEmail, &in.PatientPhone, &in.TemplateType,
		&in.Status, &in.Payload, &in.SubmittedAt, &in.ApprovedAt, &in.ApprovedBy, &in.ConvertedToEpisodeID,
		&in.CreatedAt, &in.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Intake{}, ErrNotFound
	}
	return in, err
}

func (r *Repository) GetForm(ctx context.Context, id uuid.UUID) (IntakeForm, error) {
	return scanForm(r.pool.QueryRow(ctx, `SELECT `+formColumns+` FROM intake_forms WHERE id = $1`, id))
}

// SaveFormResponses overwrites the answers of an open form. The latest save wins.
func (r *Repository) SaveFormResponses(ctx context.Context, id uuid.UUID, responses map[string]any) (IntakeForm, error) {
	f, err := scanForm(r.pool.QueryRow(ctx, `
		UPDATE intake_forms SET responses = $2, updated_at = now()
		WHERE id = $1 AND status IN ('draft', 'pending')
		RETURNING `+formColumns, id, responses))
	if errors.Is(err, ErrNotFound) {
		return IntakeForm{}, r.lockedOrMissing(ctx, "intake_forms", id)
	}
	return f, err
}

// SubmitForm merges the final answers into the saved ones and marks the
// form submitted.
func (r *Repository) SubmitForm(ctx context.Context, id uuid.UUID, responses map[string]any) (IntakeForm, error) {
	if responses == nil {
		responses = map[string]any{}
	}
	f, err := scanForm(r.pool.QueryRow(ctx, `
		UPDATE intake_forms
		SET responses = responses || $2::jsonb, status = 'submitted', submitted_at = now(), updated_at = now()
		WHERE id = $1 AND status IN ('draft', 'pending')
		RETURNING `+formColumns, id, responses))
	if errors.Is(err, ErrNotFound) {
		return IntakeForm{}, r.lockedOrMissing(ctx, "intake_forms", id)
	}
	return f, err
}

type CreateIntakeParams struct {
	LeadID       *uuid.UUID
	PatientName  string
	PatientEmail string
	PatientPhone string
	TemplateType string
	Payload      map[string]any
}

func (r *Repository) CreateIntake(ctx context.Context, p CreateIntakeParams) (Intake, error) {
	return scanIntake(r.pool.QueryRow(ctx, `
		INSERT INTO intakes (lead_id, patient_name, patient_email, patient_phone, template_type, status, payload)
		VALUES ($1, $2, $3, $4, $5, 'draft', $6)
		RETURNING `+intakeColumns,
		p.LeadID, p.PatientName, p.PatientEmail, p.PatientPhone, p.TemplateType, p.Payload))
}

func (r *Repository) GetIntake(ctx context.Context, id uuid.UUID) (Intake, error) {
	return scanIntake(r.pool.QueryRow(ctx, `SELECT `+intakeColumns+` FROM intakes WHERE id = $1`, id))
}

// ListIntakes returns structured intakes newest first, optionally by status.
func (r *Repository) ListIntakes(ctx context.Context, status string) ([]Intake, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+intakeColumns+`
		FROM intakes
		WHERE ($1::text = '' OR status = $1)
		ORDER BY created_at DESC
	`, status)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (Intake, error) {
		return scanIntake(row)
	})
}

// SaveIntakePayload autosaves a draft intake.
func (r *Repository) SaveIntakePayload(ctx context.Context, id uuid.UUID, payload map[string]any) (Intake, error) {
	in, err := scanIntake(r.pool.QueryRow(ctx, `
		UPDATE intakes SET payload = $2, updated_at = now()
		WHERE id = $1 AND status = 'draft'
		RETURNING `+intakeColumns, id, payload))
	if errors.Is(err, ErrNotFound) {
		return Intake{}, r.lockedOrMissing(ctx, "intakes", id)
	}
	return in, err
}

// SubmitIntake merges the final payload and completes a draft intake.
func (r *Repository) SubmitIntake(ctx context.Context, id uuid.UUID, payload map[string]any) (Intake, error) {
	if payload == nil {
		payload = map[string]any{}
	}
	in, err := scanIntake(r.pool.QueryRow(ctx, `
		UPDATE intakes
		SET payload = payload || $2::jsonb, status = 'completed', submitted_at = now(), updated_at = now()
		WHERE id = $1 AND status = 'draft'
		RETURNING `+intakeColumns, id, payload))
	if errors.Is(err, ErrNotFound) {
		return Intake{}, r.lockedOrMissing(ctx, "intakes", id)
	}
	return in, err
}

// ApproveIntake records staff sign-off on a completed intake.
func (r *Repository) ApproveIntake(ctx context.Context, id, approvedBy uuid.UUID) (Intake, error) {
	in, err := scanIntake(r.pool.QueryRow(ctx, `
		UPDATE intakes SET status = 'approved', approved_at = now(), approved_by = $2, updated_at = now()
		WHERE id = $1 AND status = 'completed'
		RETURNING `+intakeColumns, id, approvedBy))
	if errors.Is(err, ErrNotFound) {
		return Intake{}, r.lockedOrMissing(ctx, "intakes", id)
	}
	return in, err
}

type WalkInParams struct {
	PatientName      string
	PatientEmail     string
	PatientPhone     string
	PrimaryComplaint *string
	TemplateType     string
	Responses        map[string]any
}

// WalkIn is the result of a front-desk submission.
type WalkIn struct {
	CareRequestID uuid.UUID
	IntakeFormID  uuid.UUID
	SubmittedAt   time.Time
}

// CreateWalkIn stores a front-desk submission: a SUBMITTED care request and
// its already submitted questionnaire, in one transaction.
func (r *Repository) CreateWalkIn(ctx context.Context, p WalkInParams) (w WalkIn, err error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return WalkIn{}, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	if err = tx.QueryRow(ctx, `
		INSERT INTO care_requests (status, source, intake_payload, primary_complaint)
		VALUES ('SUBMITTED', 'FRONT_DESK_QR',
			jsonb_build_object('patient_name', $1::text, 'email', $2::text, 'phone', $3::text), $4)
		RETURNING id
	`, p.PatientName, p.PatientEmail, p.PatientPhone, p.PrimaryComplaint).Scan(&w.CareRequestID); err != nil {
		return WalkIn{}, err
	}

	if err = tx.QueryRow(ctx, `
		INSERT INTO intake_forms (care_request_id, patient_name, patient_email, template_type, status, responses, submitted_at)
		VALUES ($1, $2, $3, $4, 'submitted', $5, now())
		RETURNING id, submitted_at
	`, w.CareRequestID, p.PatientName, p.PatientEmail, p.TemplateType, p.Responses).Scan(&w.IntakeFormID, &w.SubmittedAt); err != nil {
		return WalkIn{}, err
	}

	if err = tx.Commit(ctx); err != nil {
		return WalkIn{}, err
	}
	return w, nil
}

func (r *Repository) lockedOrMissing(ctx context.Context, table string, id uuid.UUID) error {
	var exists bool
	if err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM `+table+` WHERE id = $1)`, id).Scan(&exists); err != nil {
		return err
	}
	if exists {
		return ErrLocked
	}
	return ErrNotFound
}
