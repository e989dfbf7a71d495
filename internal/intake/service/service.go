// Package service implements patient questionnaires: legacy intake forms,
// structured intakes and front-desk walk-ins.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"clinic_intake_backend/internal/events"
	"clinic_intake_backend/internal/intake/repository"
	"clinic_intake_backend/internal/intake/transport"
	"clinic_intake_backend/platform/apperr"
	"clinic_intake_backend/platform/phone"
	"clinic_intake_backend/platform/sanitize"

	"github.com/google/uuid"
	"github.com/skip2/go-qrcode"
)

const (
	msgFormNotFound   = "intake form not found"
	msgIntakeNotFound = "intake not found"
	msgLocked         = "intake can no longer be changed"
	msgInvalidPhone   = "invalid phone number"
	msgNameRequired   = "patient name is required"

	tableIntakeForms = "intake_forms"
	tableIntakes     = "intakes"

	qrSize = 512
)

// Repository is the persistence the intake service needs.
type Repository interface {
	GetForm(ctx context.Context, id uuid.UUID) (repository.IntakeForm, error)
	SaveFormResponses(ctx context.Context, id uuid.UUID, responses map[string]any) (repository.IntakeForm, error)
	SubmitForm(ctx context.Context, id uuid.UUID, responses map[string]any) (repository.IntakeForm, error)
	CreateIntake(ctx context.Context, p repository.CreateIntakeParams) (repository.Intake, error)
	GetIntake(ctx context.Context, id uuid.UUID) (repository.Intake, error)
	ListIntakes(ctx context.Context, status string) ([]repository.Intake, error)
	SaveIntakePayload(ctx context.Context, id uuid.UUID, payload map[string]any) (repository.Intake, error)
	SubmitIntake(ctx context.Context, id uuid.UUID, payload map[string]any) (repository.Intake, error)
	ApproveIntake(ctx context.Context, id, approvedBy uuid.UUID) (repository.Intake, error)
	CreateWalkIn(ctx context.Context, p repository.WalkInParams) (repository.WalkIn, error)
}

type Service struct {
	repo        Repository
	eventBus    events.Bus
	phoneRegion string
	baseURL     string
}

func New(repo Repository, eventBus events.Bus, phoneRegion, baseURL string) *Service {
	return &Service{
		repo:        repo,
		eventBus:    eventBus,
		phoneRegion: phoneRegion,
		baseURL:     strings.TrimRight(baseURL, "/"),
	}
}

// GetForm returns a legacy form for the patient to fill in.
func (s *Service) GetForm(ctx context.Context, id uuid.UUID) (transport.IntakeFormResponse, error) {
	f, err := s.repo.GetForm(ctx, id)
	if err != nil {
		return transport.IntakeFormResponse{}, mapErr(err, msgFormNotFound)
	}
	return toFormResponse(f), nil
}

// SaveForm autosaves answers. Concurrent saves resolve to the latest write.
func (s *Service) SaveForm(ctx context.Context, id uuid.UUID, req transport.SaveFormRequest) (transport.IntakeFormResponse, error) {
	f, err := s.repo.SaveFormResponses(ctx, id, req.Responses)
	if err != nil {
		return transport.IntakeFormResponse{}, mapErr(err, msgFormNotFound)
	}
	return toFormResponse(f), nil
}

func (s *Service) SubmitForm(ctx context.Context, id uuid.UUID, req transport.SubmitFormRequest) (transport.IntakeFormResponse, error) {
	f, err := s.repo.SubmitForm(ctx, id, req.Responses)
	if err != nil {
		return transport.IntakeFormResponse{}, mapErr(err, msgFormNotFound)
	}
	s.publishSubmitted(ctx, tableIntakeForms, f.ID, f.PatientName)
	return toFormResponse(f), nil
}

// CreateIntake starts a structured intake as a draft.
func (s *Service) CreateIntake(ctx context.Context, req transport.CreateIntakeRequest) (transport.IntakeResponse, error) {
	name := sanitize.Name(req.PatientName)
	if name == "" {
		return transport.IntakeResponse{}, apperr.Validation(msgNameRequired)
	}
	phoneNumber, err := s.normalizePhone(req.PatientPhone)
	if err != nil {
		return transport.IntakeResponse{}, err
	}
	payload := req.Payload
	if payload == nil {
		payload = map[string]any{}
	}

	in, err := s.repo.CreateIntake(ctx, repository.CreateIntakeParams{
		LeadID:       req.LeadID,
		PatientName:  name,
		PatientEmail: strings.ToLower(strings.TrimSpace(req.PatientEmail)),
		PatientPhone: phoneNumber,
		TemplateType: req.TemplateType,
		Payload:      payload,
	})
	if err != nil {
		return transport.IntakeResponse{}, err
	}
	return toIntakeResponse(in), nil
}

func (s *Service) GetIntake(ctx context.Context, id uuid.UUID) (transport.IntakeResponse, error) {
	in, err := s.repo.GetIntake(ctx, id)
	if err != nil {
		return transport.IntakeResponse{}, mapErr(err, msgIntakeNotFound)
	}
	return toIntakeResponse(in), nil
}

func (s *Service) ListIntakes(ctx context.Context, status string) (transport.IntakeListResponse, error) {
	rows, err := s.repo.ListIntakes(ctx, status)
	if err != nil {
		return transport.IntakeListResponse{}, err
	}
	items := make([]transport.IntakeResponse, 0, len(rows))
	for _, in := range rows {
		items = append(items, toIntakeResponse(in))
	}
	return transport.IntakeListResponse{Items: items, Total: len(items)}, nil
}

func (s *Service) SaveIntake(ctx context.Context, id uuid.UUID, req transport.SaveIntakeRequest) (transport.IntakeResponse, error) {
	in, err := s.repo.SaveIntakePayload(ctx, id, req.Payload)
	if err != nil {
		return transport.IntakeResponse{}, mapErr(err, msgIntakeNotFound)
	}
	return toIntakeResponse(in), nil
}

func (s *Service) SubmitIntake(ctx context.Context, id uuid.UUID, req transport.SubmitIntakeRequest) (transport.IntakeResponse, error) {
	in, err := s.repo.SubmitIntake(ctx, id, req.Payload)
	if err != nil {
		return transport.IntakeResponse{}, mapErr(err, msgIntakeNotFound)
	}
	s.publishSubmitted(ctx, tableIntakes, in.ID, in.PatientName)
	return toIntakeResponse(in), nil
}

// ApproveIntake signs off a completed intake.
func (s *Service) ApproveIntake(ctx context.Context, id, actorID uuid.UUID) (transport.IntakeResponse, error) {
	in, err := s.repo.ApproveIntake(ctx, id, actorID)
	if err != nil {
		return transport.IntakeResponse{}, mapErr(err, msgIntakeNotFound)
	}
	return toIntakeResponse(in), nil
}

// SubmitFrontDesk records a walk-in questionnaire as a new care request.
func (s *Service) SubmitFrontDesk(ctx context.Context, req transport.FrontDeskRequest) (transport.FrontDeskResponse, error) {
	name := sanitize.Name(req.PatientName)
	if name == "" {
		return transport.FrontDeskResponse{}, apperr.Validation(msgNameRequired)
	}
	phoneNumber, err := s.normalizePhone(req.PatientPhone)
	if err != nil {
		return transport.FrontDeskResponse{}, err
	}

	w, err := s.repo.CreateWalkIn(ctx, repository.WalkInParams{
		PatientName:      name,
		PatientEmail:     strings.ToLower(strings.TrimSpace(req.PatientEmail)),
		PatientPhone:     phoneNumber,
		PrimaryComplaint: sanitize.TextPtr(req.PrimaryComplaint),
		TemplateType:     req.TemplateType,
		Responses:        req.Responses,
	})
	if err != nil {
		return transport.FrontDeskResponse{}, err
	}

	s.publishSubmitted(ctx, tableIntakeForms, w.IntakeFormID, name)
	return transport.FrontDeskResponse{
		CareRequestID: w.CareRequestID,
		IntakeFormID:  w.IntakeFormID,
		SubmittedAt:   w.SubmittedAt,
	}, nil
}

// FrontDeskURL is the page the lobby QR code opens.
func (s *Service) FrontDeskURL() string {
	return s.baseURL + "/intake/front-desk"
}

// FrontDeskQR renders the lobby QR code as PNG.
func (s *Service) FrontDeskQR() ([]byte, error) {
	png, err := qrcode.Encode(s.FrontDeskURL(), qrcode.Medium, qrSize)
	if err != nil {
		return nil, fmt.Errorf("encode front desk qr: %w", err)
	}
	return png, nil
}

func (s *Service) normalizePhone(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", nil
	}
	if !phone.IsValid(trimmed, s.phoneRegion) {
		return "", apperr.Validation(msgInvalidPhone)
	}
	return phone.NormalizeE164(trimmed, s.phoneRegion), nil
}

func (s *Service) publishSubmitted(ctx context.Context, table string, id uuid.UUID, name string) {
	s.eventBus.Publish(ctx, events.IntakeSubmitted{
		BaseEvent:   events.NewBaseEvent(),
		Table:       table,
		RecordID:    id,
		PatientName: name,
	})
}

func mapErr(err error, notFound string) error {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return apperr.NotFound(notFound)
	case errors.Is(err, repository.ErrLocked):
		return apperr.Conflict(msgLocked)
	}
	return err
}

func toFormResponse(f repository.IntakeForm) transport.IntakeFormResponse {
	return transport.IntakeFormResponse{
		ID:           f.ID,
		PatientName:  f.PatientName,
		TemplateType: f.TemplateType,
		Status:       f.Status,
		Responses:    f.Responses,
		SubmittedAt:  f.SubmittedAt,
		UpdatedAt:    f.UpdatedAt,
	}
}

func toIntakeResponse(in repository.Intake) transport.IntakeResponse {
	return transport.IntakeResponse{
		ID:                   in.ID,
		LeadID:               in.LeadID,
		PatientName:          in.PatientName,
		PatientEmail:         in.PatientEmail,
		PatientPhone:         in.PatientPhone,
		TemplateType:         in.TemplateType,
		Status:               in.Status,
		Payload:              in.Payload,
		SubmittedAt:          in.SubmittedAt,
		ApprovedAt:           in.ApprovedAt,
		ApprovedBy:           in.ApprovedBy,
		ConvertedToEpisodeID: in.ConvertedToEpisodeID,
		CreatedAt:            in.CreatedAt,
		UpdatedAt:            in.UpdatedAt,
	}
}
