// Package discharge provides the episode discharge bounded context.
package discharge

import (
	"clinic_intake_backend/internal/discharge/handler"
	"clinic_intake_backend/internal/discharge/repository"
	"clinic_intake_backend/internal/discharge/service"
	"clinic_intake_backend/internal/events"
	apphttp "clinic_intake_backend/internal/http"
	"clinic_intake_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the discharge module implementing http.Module.
type Module struct {
	handler *handler.Handler
}

func NewModule(pool *pgxpool.Pool, eventBus events.Bus, val *validator.Validator) *Module {
	svc := service.New(repository.New(pool), eventBus)
	return &Module{handler: handler.New(svc, val)}
}

func (m *Module) Name() string {
	return "discharge"
}

// RegisterRoutes mounts the staff episode and discharge routes.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterEpisodeRoutes(ctx.Protected.Group("/episodes"))
	m.handler.RegisterDischargeRoutes(ctx.Protected.Group("/discharges"))
}

var _ apphttp.Module = (*Module)(nil)
