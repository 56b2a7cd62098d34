package standingsrouter

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/Black-And-White-Club/tabroom/app/eventbus"
	standingsevents "github.com/Black-And-White-Club/tabroom/app/modules/standings/domain/events"
	standingshandlers "github.com/Black-And-White-Club/tabroom/app/modules/standings/infrastructure/handlers"
	"github.com/Black-And-White-Club/tabroom/internal/handlerwrapper"
	"github.com/Black-And-White-Club/tabroom/internal/observability"
	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/components/metrics"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/trace"
)

const (
	TestEnvironmentFlag  = "APP_ENV"
	TestEnvironmentValue = "test"

	// ModuleMetadataKey marks every message produced by this module.
	ModuleMetadataKey = "module"
	moduleName        = "standings"
)

// StandingsRouter handles Watermill handler registration for standings events.
type StandingsRouter struct {
	logger         *slog.Logger
	Router         *message.Router
	subscriber     eventbus.EventBus
	publisher      eventbus.EventBus
	tracer         trace.Tracer
	metrics        observability.Metrics
	metricsBuilder *metrics.PrometheusMetricsBuilder
}

// NewStandingsRouter creates a new StandingsRouter. Router metrics are skipped
// when no registry is given or APP_ENV is test.
func NewStandingsRouter(
	logger *slog.Logger,
	router *message.Router,
	subscriber eventbus.EventBus,
	publisher eventbus.EventBus,
	tracer trace.Tracer,
	handlerMetrics observability.Metrics,
	prometheusRegistry *prometheus.Registry,
) *StandingsRouter {
	var metricsBuilder *metrics.PrometheusMetricsBuilder
	if prometheusRegistry != nil && os.Getenv(TestEnvironmentFlag) != TestEnvironmentValue {
		builder := metrics.NewPrometheusMetricsBuilder(prometheusRegistry, "", "")
		metricsBuilder = &builder
	}

	return &StandingsRouter{
		logger:         logger,
		Router:         router,
		subscriber:     subscriber,
		publisher:      publisher,
		tracer:         tracer,
		metrics:        handlerMetrics,
		metricsBuilder: metricsBuilder,
	}
}

// Configure sets up the middlewares and registers the module handlers.
func (r *StandingsRouter) Configure(_ context.Context, handlers standingshandlers.Handlers) error {
	if r.metricsBuilder != nil {
		r.logger.Info("Adding Prometheus router metrics middleware for Standings")
		r.metricsBuilder.AddPrometheusRouterMetrics(r.Router)
	}

	r.Router.AddMiddleware(
		middleware.CorrelationID,
		moduleMetadata,
		middleware.Retry{
			MaxRetries:      3,
			InitialInterval: 100 * time.Millisecond,
			MaxInterval:     2 * time.Second,
			Multiplier:      2,
			Logger:          watermill.NewSlogLogger(r.logger),
		}.Middleware,
		middleware.Recoverer,
	)

	r.registerHandlers(handlers)
	return nil
}

// moduleMetadata stamps produced messages with the module name.
func moduleMetadata(h message.HandlerFunc) message.HandlerFunc {
	return func(msg *message.Message) ([]*message.Message, error) {
		produced, err := h(msg)
		for _, m := range produced {
			if m.Metadata.Get(ModuleMetadataKey) == "" {
				m.Metadata.Set(ModuleMetadataKey, moduleName)
			}
		}
		return produced, err
	}
}

// handlerDeps bundles dependencies for handler registration.
type handlerDeps struct {
	router     *message.Router
	subscriber eventbus.EventBus
	publisher  eventbus.EventBus
	logger     *slog.Logger
	tracer     trace.Tracer
	metrics    observability.Metrics
}

// registerHandlers wires NATS topics to handler methods.
func (r *StandingsRouter) registerHandlers(handlers standingshandlers.Handlers) {
	deps := handlerDeps{
		router:     r.Router,
		subscriber: r.subscriber,
		publisher:  r.publisher,
		logger:     r.logger,
		tracer:     r.tracer,
		metrics:    r.metrics,
	}

	registerHandler(deps, standingsevents.BallotSubmittedV1, handlers.HandleBallotSubmitted)
	registerHandler(deps, standingsevents.RecomputeRequestedV1, handlers.HandleRecomputeRequested)
	registerHandler(deps, standingsevents.TiebreakersUpdateRequestedV1, handlers.HandleTiebreakersUpdateRequested)

	r.logger.Info("Standings module handlers registered successfully")
}

// registerHandler is a generic function for type-safe Watermill handler registration.
func registerHandler[T any](
	deps handlerDeps,
	topic string,
	handler func(context.Context, *T) ([]handlerwrapper.Result, error),
) {
	handlerName := moduleName + "." + topic

	deps.router.AddHandler(
		handlerName,
		topic,
		deps.subscriber,
		"",
		deps.publisher,
		handlerwrapper.WrapTransformingTyped(
			handlerName,
			deps.logger,
			deps.tracer,
			deps.metrics,
			handler,
		),
	)
}

// Close shuts down the router.
func (r *StandingsRouter) Close() error {
	return r.Router.Close()
}
