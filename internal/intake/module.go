// Package intake provides the patient questionnaire bounded context module.
package intake

import (
	"clinic_intake_backend/internal/events"
	apphttp "clinic_intake_backend/internal/http"
	"clinic_intake_backend/internal/intake/handler"
	"clinic_intake_backend/internal/intake/repository"
	"clinic_intake_backend/internal/intake/service"
	"clinic_intake_backend/platform/config"
	"clinic_intake_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Config is what the intake module reads from the application config.
type Config interface {
	config.IntakeConfig
	config.PhoneConfig
}

// Module is the intake module implementing http.Module.
type Module struct {
	handler       *handler.Handler
	publicHandler *handler.PublicHandler
}

// NewModule creates the intake module.
func NewModule(pool *pgxpool.Pool, eventBus events.Bus, val *validator.Validator, cfg Config) *Module {
	svc := service.New(repository.New(pool), eventBus, cfg.GetPhoneDefaultRegion(), cfg.GetAppBaseURL())
	return &Module{
		handler:       handler.New(svc, val),
		publicHandler: handler.NewPublicHandler(svc, val),
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "intake"
}

// RegisterRoutes mounts patient routes on the public group and staff routes
// on the protected group.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.publicHandler.RegisterRoutes(ctx.Public)
	m.handler.RegisterRoutes(ctx.Protected)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
