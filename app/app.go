// Package app assembles the tabroom process: database, event bus, message
// router, modules and the HTTP listener.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/Black-And-White-Club/tabroom/app/eventbus"
	"github.com/Black-And-White-Club/tabroom/app/modules/standings"
	"github.com/Black-And-White-Club/tabroom/config"
	"github.com/Black-And-White-Club/tabroom/db/bundb"
	"github.com/Black-And-White-Club/tabroom/internal/attr"
	"github.com/Black-And-White-Club/tabroom/internal/observability"
	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"golang.org/x/sync/errgroup"
)

// App holds every long-lived dependency of the process.
type App struct {
	Config        *config.Config
	Observability *observability.Observability
	DB            *bundb.DBService
	EventBus      eventbus.EventBus
	Router        *message.Router

	StandingsModule *standings.Module

	server *http.Server
}

// NewApp connects to Postgres and NATS and builds the modules.
func NewApp(ctx context.Context, cfg *config.Config, obs *observability.Observability) (*App, error) {
	logger := obs.Logger

	dbService, err := bundb.NewBunDBService(ctx, cfg.Postgres, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database service: %w", err)
	}

	bus, err := eventbus.NewEventBus(ctx, eventbus.Config{
		URL:        cfg.NATS.URL,
		NKeySeed:   cfg.NATS.NKeySeed,
		QueueGroup: cfg.NATS.QueueGroup,
	}, logger)
	if err != nil {
		_ = dbService.Close()
		return nil, fmt.Errorf("failed to initialize event bus: %w", err)
	}
	if err := eventbus.InitializeStreams(ctx, bus); err != nil {
		_ = bus.Close()
		_ = dbService.Close()
		return nil, err
	}

	router, err := message.NewRouter(message.RouterConfig{CloseTimeout: 10 * time.Second}, watermill.NewSlogLogger(logger))
	if err != nil {
		_ = bus.Close()
		_ = dbService.Close()
		return nil, fmt.Errorf("failed to create message router: %w", err)
	}

	standingsModule, err := standings.NewStandingsModule(ctx, obs, cfg, bus, router, dbService.StandingsDB, dbService.GetDB())
	if err != nil {
		_ = router.Close()
		_ = bus.Close()
		_ = dbService.Close()
		return nil, fmt.Errorf("failed to initialize standings module: %w", err)
	}

	return &App{
		Config:          cfg,
		Observability:   obs,
		DB:              dbService,
		EventBus:        bus,
		Router:          router,
		StandingsModule: standingsModule,
		server: &http.Server{
			Addr:              cfg.HTTP.Address,
			Handler:           standingsModule.Handler,
			ReadTimeout:       cfg.HTTP.ReadTimeout,
			ReadHeaderTimeout: 5 * time.Second,
			WriteTimeout:      cfg.HTTP.WriteTimeout,
			IdleTimeout:       120 * time.Second,
		},
	}, nil
}

// Run serves until ctx is cancelled or a component fails, then shuts down.
func (a *App) Run(ctx context.Context) error {
	logger := a.Observability.Logger
	a.Observability.StartMetricsServer()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := a.Router.Run(gctx); err != nil {
			return fmt.Errorf("message router stopped: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		a.StandingsModule.Run(gctx, nil)
		return nil
	})

	g.Go(func() error {
		logger.Info("Starting HTTP server", slog.String("address", a.server.Addr))
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server failed: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		return a.shutdown()
	})

	return g.Wait()
}

func (a *App) shutdown() error {
	logger := a.Observability.Logger
	logger.Info("Shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), a.Config.HTTP.ShutdownTimeout)
	defer cancel()

	var errs []error
	if err := a.server.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("http shutdown: %w", err))
	}
	if err := a.StandingsModule.Close(); err != nil {
		errs = append(errs, err)
	}
	if err := a.Router.Close(); err != nil {
		errs = append(errs, fmt.Errorf("router close: %w", err))
	}
	if err := a.EventBus.Close(); err != nil {
		errs = append(errs, fmt.Errorf("event bus close: %w", err))
	}
	if err := a.DB.Close(); err != nil {
		errs = append(errs, fmt.Errorf("database close: %w", err))
	}
	if err := a.Observability.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("metrics shutdown: %w", err))
	}

	err := errors.Join(errs...)
	if err != nil {
		logger.Error("Shutdown finished with errors", attr.Error(err))
	} else {
		logger.Info("Shutdown complete")
	}
	return err
}
