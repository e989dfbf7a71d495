// Package service implements the care request pipeline actions. Every write
// commits before an event is published; the journey refreshes from that event.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"clinic_intake_backend/internal/carerequests/domain"
	"clinic_intake_backend/internal/carerequests/repository"
	"clinic_intake_backend/internal/carerequests/transport"
	"clinic_intake_backend/internal/events"
	"clinic_intake_backend/platform/apperr"

	"github.com/google/uuid"
)

const (
	msgNotFound       = "care request not found"
	msgLeadNotFound   = "lead not found"
	msgLeadClosed     = "lead is already closed"
	msgLeadHasOpen    = "lead already has an open care request"
	msgStatusChanged  = "care request changed, reload and try again"
	msgNotAllowed     = "action not allowed in the current status"
	msgMissingEmail   = "care request has no patient email"
	msgMissingPatient = "care request has no patient name"
)

// Repository is the persistence the pipeline needs.
type Repository interface {
	GetByID(ctx context.Context, id uuid.UUID) (repository.CareRequest, error)
	List(ctx context.Context, status string) ([]repository.CareRequest, error)
	CreateFromLead(ctx context.Context, leadID uuid.UUID) (repository.CareRequest, error)
	Approve(ctx context.Context, id uuid.UUID, from string, clinicianID *uuid.UUID) (repository.CareRequest, error)
	SetStatus(ctx context.Context, id uuid.UUID, from, to string) (repository.CareRequest, error)
	Schedule(ctx context.Context, id uuid.UUID, from, patientName string, date time.Time) (repository.CareRequest, error)
	CreateIntakeForm(ctx context.Context, careRequestID uuid.UUID, patientName, patientEmail, templateType string) (uuid.UUID, error)
	Convert(ctx context.Context, p repository.ConvertParams) (uuid.UUID, error)
}

type Service struct {
	repo     Repository
	eventBus events.Bus
	baseURL  string
}

// New creates the service. baseURL prefixes patient form links.
func New(repo Repository, eventBus events.Bus, baseURL string) *Service {
	return &Service{repo: repo, eventBus: eventBus, baseURL: strings.TrimRight(baseURL, "/")}
}

func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (transport.CareRequestResponse, error) {
	cr, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return transport.CareRequestResponse{}, mapErr(err)
	}
	return toResponse(cr), nil
}

func (s *Service) List(ctx context.Context, status string) (transport.CareRequestListResponse, error) {
	rows, err := s.repo.List(ctx, status)
	if err != nil {
		return transport.CareRequestListResponse{}, err
	}
	items := make([]transport.CareRequestResponse, 0, len(rows))
	for _, cr := range rows {
		items = append(items, toResponse(cr))
	}
	return transport.CareRequestListResponse{Items: items, Total: len(items)}, nil
}

// CreateFromLead approves a lead into the pipeline.
func (s *Service) CreateFromLead(ctx context.Context, leadID, actorID uuid.UUID) (transport.CareRequestResponse, error) {
	cr, err := s.repo.CreateFromLead(ctx, leadID)
	if err != nil {
		return transport.CareRequestResponse{}, mapErr(err)
	}
	s.publishChanged(ctx, cr, domain.ActionApprove, actorID)
	return toResponse(cr), nil
}

func (s *Service) Approve(ctx context.Context, id, actorID uuid.UUID, req transport.ApproveRequest) (transport.CareRequestResponse, error) {
	current, err := s.load(ctx, id, domain.ActionApprove)
	if err != nil {
		return transport.CareRequestResponse{}, err
	}
	cr, err := s.repo.Approve(ctx, id, current.Status, req.ClinicianID)
	if err != nil {
		return transport.CareRequestResponse{}, mapErr(err)
	}
	s.publishChanged(ctx, cr, domain.ActionApprove, actorID)
	return toResponse(cr), nil
}

// Schedule books the first visit and tells the patient.
func (s *Service) Schedule(ctx context.Context, id, actorID uuid.UUID, req transport.ScheduleRequest) (transport.CareRequestResponse, error) {
	current, err := s.load(ctx, id, domain.ActionSchedule)
	if err != nil {
		return transport.CareRequestResponse{}, err
	}
	if strings.TrimSpace(current.PatientName) == "" {
		return transport.CareRequestResponse{}, apperr.Validation(msgMissingPatient)
	}

	cr, err := s.repo.Schedule(ctx, id, current.Status, current.PatientName, req.ScheduledDate)
	if err != nil {
		return transport.CareRequestResponse{}, mapErr(err)
	}

	s.publishChanged(ctx, cr, domain.ActionSchedule, actorID)
	if cr.PatientEmail != "" {
		s.eventBus.Publish(ctx, events.VisitScheduled{
			BaseEvent:     events.NewBaseEvent(),
			CareRequestID: cr.ID,
			PatientName:   cr.PatientName,
			PatientEmail:  cr.PatientEmail,
			ScheduledDate: req.ScheduledDate,
			TemplateType:  req.TemplateType,
		})
	}
	return toResponse(cr), nil
}

// SendForms issues a legacy questionnaire and emails the link to the patient.
func (s *Service) SendForms(ctx context.Context, id, actorID uuid.UUID, req transport.SendFormsRequest) (transport.SendFormsResponse, error) {
	current, err := s.load(ctx, id, domain.ActionSendForms)
	if err != nil {
		return transport.SendFormsResponse{}, err
	}
	if current.PatientEmail == "" {
		return transport.SendFormsResponse{}, apperr.Validation(msgMissingEmail)
	}

	formID, err := s.repo.CreateIntakeForm(ctx, id, current.PatientName, current.PatientEmail, req.TemplateType)
	if err != nil {
		return transport.SendFormsResponse{}, err
	}
	formURL := fmt.Sprintf("%s/intake/forms/%s", s.baseURL, formID)

	s.publishChanged(ctx, current, domain.ActionSendForms, actorID)
	s.eventBus.Publish(ctx, events.IntakeFormsSent{
		BaseEvent:     events.NewBaseEvent(),
		CareRequestID: id,
		IntakeFormID:  formID,
		PatientName:   current.PatientName,
		PatientEmail:  current.PatientEmail,
		FormURL:       formURL,
		TemplateType:  req.TemplateType,
	})
	return transport.SendFormsResponse{IntakeFormID: formID, FormURL: formURL}, nil
}

// Convert turns the request into an active episode of care.
func (s *Service) Convert(ctx context.Context, id, actorID uuid.UUID, req transport.ConvertRequest) (transport.ConvertResponse, error) {
	current, err := s.load(ctx, id, domain.ActionConvert)
	if err != nil {
		return transport.ConvertResponse{}, err
	}

	clinician := req.ClinicianID
	if clinician == nil {
		clinician = current.AssignedClinicianID
	}
	episodeID, err := s.repo.Convert(ctx, repository.ConvertParams{
		CareRequestID: id,
		FromStatus:    current.Status,
		LeadID:        current.LeadID,
		PatientName:   current.PatientName,
		PatientEmail:  current.PatientEmail,
		ClinicianID:   clinician,
	})
	if err != nil {
		return transport.ConvertResponse{}, mapErr(err)
	}

	current.Status = string(domain.StatusConverted)
	current.EpisodeID = &episodeID
	s.publishChanged(ctx, current, domain.ActionConvert, actorID)
	return transport.ConvertResponse{EpisodeID: episodeID}, nil
}

func (s *Service) Archive(ctx context.Context, id, actorID uuid.UUID) (transport.CareRequestResponse, error) {
	return s.close(ctx, id, actorID, domain.ActionArchive)
}

func (s *Service) Decline(ctx context.Context, id, actorID uuid.UUID) (transport.CareRequestResponse, error) {
	return s.close(ctx, id, actorID, domain.ActionDecline)
}

func (s *Service) close(ctx context.Context, id, actorID uuid.UUID, action domain.Action) (transport.CareRequestResponse, error) {
	current, err := s.load(ctx, id, action)
	if err != nil {
		return transport.CareRequestResponse{}, err
	}
	next, _ := domain.Next(domain.Normalize(current.Status), action)

	cr, err := s.repo.SetStatus(ctx, id, current.Status, string(next))
	if err != nil {
		return transport.CareRequestResponse{}, mapErr(err)
	}
	s.publishChanged(ctx, cr, action, actorID)
	return toResponse(cr), nil
}

// load reads the request and checks the action is allowed from its status.
func (s *Service) load(ctx context.Context, id uuid.UUID, action domain.Action) (repository.CareRequest, error) {
	cr, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return repository.CareRequest{}, mapErr(err)
	}
	if cr.EpisodeID != nil {
		return repository.CareRequest{}, apperr.Conflict(msgNotAllowed)
	}
	if _, ok := domain.Next(domain.Normalize(cr.Status), action); !ok {
		return repository.CareRequest{}, apperr.Conflict(msgNotAllowed).
			WithDetails(map[string]string{"status": cr.Status, "action": string(action)})
	}
	return cr, nil
}

func (s *Service) publishChanged(ctx context.Context, cr repository.CareRequest, action domain.Action, actorID uuid.UUID) {
	s.eventBus.Publish(ctx, events.CareRequestChanged{
		BaseEvent:     events.NewBaseEvent(),
		CareRequestID: cr.ID,
		Action:        string(action),
		Status:        cr.Status,
		ActorID:       actorID,
	})
}

func mapErr(err error) error {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return apperr.NotFound(msgNotFound)
	case errors.Is(err, repository.ErrLeadNotFound):
		return apperr.NotFound(msgLeadNotFound)
	case errors.Is(err, repository.ErrLeadClosed):
		return apperr.Conflict(msgLeadClosed)
	case errors.Is(err, repository.ErrLeadHasOpen):
		return apperr.Conflict(msgLeadHasOpen)
	case errors.Is(err, repository.ErrStatusChanged):
		return apperr.Conflict(msgStatusChanged)
	}
	return err
}

func toResponse(cr repository.CareRequest) transport.CareRequestResponse {
	return transport.CareRequestResponse{
		ID:                  cr.ID,
		LeadID:              cr.LeadID,
		Status:              cr.Status,
		Source:              cr.Source,
		PatientName:         cr.PatientName,
		PatientEmail:        cr.PatientEmail,
		PatientPhone:        cr.PatientPhone,
		PrimaryComplaint:    cr.PrimaryComplaint,
		AssignedClinicianID: cr.AssignedClinicianID,
		ApprovedAt:          cr.ApprovedAt,
		EpisodeID:           cr.EpisodeID,
		CreatedAt:           cr.CreatedAt,
		UpdatedAt:           cr.UpdatedAt,
	}
}
