// Package journey provides the Prospect Journey bounded context module.
// It wires the record fetcher, the tracker, the change listener and the
// staff routes.
package journey

import (
	"context"
	"time"

	"clinic_intake_backend/internal/changefeed"
	"clinic_intake_backend/internal/events"
	apphttp "clinic_intake_backend/internal/http"
	"clinic_intake_backend/internal/journey/handler"
	"clinic_intake_backend/internal/journey/repository"
	"clinic_intake_backend/internal/journey/service"
	"clinic_intake_backend/internal/realtime"
	"clinic_intake_backend/platform/config"
	"clinic_intake_backend/platform/httpkit"
	"clinic_intake_backend/platform/logger"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Config is what the journey module reads from the application config.
type Config interface {
	config.DatabaseConfig
	GetChangefeedChannel() string
	GetAutoPrintWindow() time.Duration
}

// Module is the journey bounded context module implementing http.Module.
type Module struct {
	handler  *handler.Handler
	tracker  *service.Tracker
	fetcher  *service.Fetcher
	listener *changefeed.Listener
}

// NewModule creates the journey module. Pipeline events published on the bus
// and intake table changes both schedule a refresh.
func NewModule(pool *pgxpool.Pool, eventBus events.Bus, hub *realtime.Hub, cfg Config, log *logger.Logger) *Module {
	repo := repository.New(pool)
	fetcher := service.NewFetcher(repo)
	tracker := service.NewTracker(fetcher, hub, log)

	tracker.SubscribeRefresh(eventBus)

	listener := changefeed.NewListener(
		changefeed.PgxDialer(cfg.GetDatabaseURL()),
		cfg.GetChangefeedChannel(),
		service.WatchedTables,
		log,
	)
	listener.OnEvent(service.NewChangeHandler(tracker, hub, cfg.GetAutoPrintWindow()).Handle)

	return &Module{
		handler:  handler.New(tracker, hub.Handler(httpkit.UserIDFromContext)),
		tracker:  tracker,
		fetcher:  fetcher,
		listener: listener,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "journey"
}

// Tracker returns the tracker for modules that refresh after writes.
func (m *Module) Tracker() *service.Tracker {
	return m.tracker
}

// Fetcher returns the snapshot fetcher used by the stall sweep.
func (m *Module) Fetcher() *service.Fetcher {
	return m.fetcher
}

// RunListener blocks on the change listener until ctx is cancelled.
func (m *Module) RunListener(ctx context.Context) {
	m.listener.Run(ctx)
}

// RegisterRoutes mounts journey routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.Protected.Group("/journey"))
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
