package standings

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"github.com/Black-And-White-Club/tabroom/app/eventbus"
	standingsservice "github.com/Black-And-White-Club/tabroom/app/modules/standings/application"
	standingsapi "github.com/Black-And-White-Club/tabroom/app/modules/standings/infrastructure/api"
	standingsauth "github.com/Black-And-White-Club/tabroom/app/modules/standings/infrastructure/auth"
	standingshandlers "github.com/Black-And-White-Club/tabroom/app/modules/standings/infrastructure/handlers"
	standingslive "github.com/Black-And-White-Club/tabroom/app/modules/standings/infrastructure/live"
	standingsqueue "github.com/Black-And-White-Club/tabroom/app/modules/standings/infrastructure/queue"
	standingsdb "github.com/Black-And-White-Club/tabroom/app/modules/standings/infrastructure/repositories"
	standingsrouter "github.com/Black-And-White-Club/tabroom/app/modules/standings/infrastructure/router"
	standingsstorage "github.com/Black-And-White-Club/tabroom/app/modules/standings/infrastructure/storage"
	"github.com/Black-And-White-Club/tabroom/config"
	"github.com/Black-And-White-Club/tabroom/internal/attr"
	"github.com/Black-And-White-Club/tabroom/internal/observability"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/uptrace/bun"
)

// Module represents the standings module.
type Module struct {
	StandingsService standingsservice.Service
	StandingsRouter  *standingsrouter.StandingsRouter
	QueueService     standingsqueue.QueueService
	Hub              *standingslive.Hub
	// Handler serves the REST and websocket API.
	Handler http.Handler

	cancelFunc    context.CancelFunc
	observability *observability.Observability
}

// NewStandingsModule creates and initializes a new standings module.
func NewStandingsModule(
	ctx context.Context,
	obs *observability.Observability,
	cfg *config.Config,
	eventBus eventbus.EventBus,
	router *message.Router,
	repo standingsdb.Repository,
	db *bun.DB,
) (*Module, error) {
	logger := obs.Logger
	tracer := obs.Tracer

	logger.InfoContext(ctx, "standings.NewStandingsModule initializing")

	// 1. Live push and optional archive
	hub := standingslive.NewHub(logger, cfg.HTTP.AllowedOrigins)
	opts := []standingsservice.Option{standingsservice.WithNotifier(hub)}
	if cfg.Archive.Enabled() {
		store, err := standingsstorage.NewS3Store(ctx, cfg.Archive)
		if err != nil {
			return nil, fmt.Errorf("failed to create archive store: %w", err)
		}
		opts = append(opts, standingsservice.WithArchive(store))
	} else {
		logger.InfoContext(ctx, "Standings archive disabled")
	}

	// 2. Initialize Service
	service := standingsservice.NewStandingsService(repo, logger, obs.Metrics, tracer, db, opts...)

	// 3. Initialize Queue; the worker recomputes through the service
	queue, err := standingsqueue.NewService(ctx, db, logger, standingsqueue.Config{
		DSN:        cfg.Postgres.DSN,
		MaxWorkers: cfg.Queue.MaxWorkers,
		Debounce:   cfg.Queue.Debounce,
	}, obs.Metrics, service, eventBus)
	if err != nil {
		return nil, fmt.Errorf("failed to create standings queue: %w", err)
	}
	service.SetScheduler(queue)

	// 4. Initialize Handlers and Router
	handlers := standingshandlers.NewStandingsHandlers(service, logger, tracer)
	standingsRouter := standingsrouter.NewStandingsRouter(
		logger,
		router,
		eventBus,
		eventBus,
		tracer,
		obs.Metrics,
		obs.Registry,
	)
	if err := standingsRouter.Configure(ctx, handlers); err != nil {
		_ = queue.Stop(ctx)
		return nil, fmt.Errorf("failed to configure standings router: %w", err)
	}

	// 5. HTTP API
	provider, err := standingsauth.NewProvider(cfg.JWT.Secret, cfg.JWT.Issuer)
	if err != nil {
		_ = queue.Stop(ctx)
		return nil, fmt.Errorf("failed to create token provider: %w", err)
	}
	api := standingsapi.New(service, provider, logger,
		standingsapi.WithLive(hub.ServeWS),
		standingsapi.WithJobs(queue),
	)

	return &Module{
		StandingsService: service,
		StandingsRouter:  standingsRouter,
		QueueService:     queue,
		Hub:              hub,
		Handler: api.Routes(standingsapi.Config{
			AllowedOrigins:    cfg.HTTP.AllowedOrigins,
			RequestsPerSecond: cfg.HTTP.RequestsPerSecond,
			Burst:             cfg.HTTP.Burst,
		}),
		observability: obs,
	}, nil
}

// Run starts the queue and blocks until ctx is done.
func (m *Module) Run(ctx context.Context, wg *sync.WaitGroup) {
	logger := m.observability.Logger
	logger.InfoContext(ctx, "Starting standings module")

	ctx, cancel := context.WithCancel(ctx)
	m.cancelFunc = cancel
	defer cancel()

	if wg != nil {
		defer wg.Done()
	}

	if err := m.QueueService.Start(ctx); err != nil {
		logger.ErrorContext(ctx, "Failed to start standings queue", attr.Error(err))
		return
	}

	<-ctx.Done()
	logger.InfoContext(ctx, "Standings module goroutine stopped")
}

// Close shuts down the standings module.
func (m *Module) Close() error {
	logger := m.observability.Logger
	logger.Info("Stopping standings module")

	if m.cancelFunc != nil {
		m.cancelFunc()
	}

	var firstErr error
	if m.QueueService != nil {
		if err := m.QueueService.Stop(context.Background()); err != nil {
			logger.Error("Error stopping standings queue", attr.Error(err))
			firstErr = fmt.Errorf("error stopping standings queue: %w", err)
		}
	}
	if m.Hub != nil {
		m.Hub.Close()
	}
	if m.StandingsRouter != nil {
		if err := m.StandingsRouter.Close(); err != nil {
			logger.Error("Error closing StandingsRouter from module", attr.Error(err))
			if firstErr == nil {
				firstErr = fmt.Errorf("error closing StandingsRouter: %w", err)
			}
		}
	}

	logger.Info("Standings module stopped")
	return firstErr
}
