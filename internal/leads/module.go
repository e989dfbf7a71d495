// Package leads provides the lead funnel bounded context module.
package leads

import (
	"clinic_intake_backend/internal/events"
	apphttp "clinic_intake_backend/internal/http"
	"clinic_intake_backend/internal/leads/handler"
	"clinic_intake_backend/internal/leads/repository"
	"clinic_intake_backend/internal/leads/service"
	"clinic_intake_backend/platform/config"
	"clinic_intake_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the leads bounded context module implementing http.Module.
type Module struct {
	handler       *handler.Handler
	publicHandler *handler.PublicHandler
}

// NewModule creates and initializes the leads module with all its dependencies.
func NewModule(pool *pgxpool.Pool, eventBus events.Bus, val *validator.Validator, cfg config.PhoneConfig) *Module {
	svc := service.New(repository.New(pool), eventBus, cfg.GetPhoneDefaultRegion())
	return &Module{
		handler:       handler.New(svc, val),
		publicHandler: handler.NewPublicHandler(svc, val),
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "leads"
}

// RegisterRoutes mounts public, staff and admin lead routes.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.publicHandler.RegisterRoutes(ctx.Public.Group("/leads"))
	m.handler.RegisterRoutes(ctx.Protected.Group("/leads"))
	m.handler.RegisterAdminRoutes(ctx.Admin.Group("/leads"))
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
