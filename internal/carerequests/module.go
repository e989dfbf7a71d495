// Package carerequests provides the care request pipeline bounded context.
package carerequests

import (
	"clinic_intake_backend/internal/carerequests/handler"
	"clinic_intake_backend/internal/carerequests/repository"
	"clinic_intake_backend/internal/carerequests/service"
	"clinic_intake_backend/internal/events"
	apphttp "clinic_intake_backend/internal/http"
	"clinic_intake_backend/platform/config"
	"clinic_intake_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the care request module implementing http.Module.
type Module struct {
	handler *handler.Handler
}

// NewModule creates the care request module.
func NewModule(pool *pgxpool.Pool, eventBus events.Bus, val *validator.Validator, cfg config.IntakeConfig) *Module {
	svc := service.New(repository.New(pool), eventBus, cfg.GetAppBaseURL())
	return &Module{handler: handler.New(svc, val)}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "carerequests"
}

// RegisterRoutes mounts the staff pipeline routes.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.Protected.Group("/care-requests"))
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
