package observability

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// Config controls logger, tracer and metrics setup.
type Config struct {
	ServiceName    string
	Environment    string
	LogLevel       string
	MetricsAddress string
}

// Observability bundles the logger, tracer and metrics registry shared by modules.
type Observability struct {
	Logger   *slog.Logger
	Tracer   trace.Tracer
	Registry *prometheus.Registry
	Metrics  Metrics

	metricsAddress string
	metricsServer  *http.Server
}

// New builds production observability. The tracer comes from the global otel
// provider so an exporter can be installed by the host process.
func New(cfg Config) *Observability {
	logger := NewLogger(os.Stdout, cfg.Environment, cfg.LogLevel).With(
		slog.String("service", cfg.ServiceName),
	)

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return &Observability{
		Logger:         logger,
		Tracer:         otel.GetTracerProvider().Tracer(cfg.ServiceName),
		Registry:       registry,
		Metrics:        NewPrometheusMetrics(registry, strings.ReplaceAll(cfg.ServiceName, "-", "_")),
		metricsAddress: cfg.MetricsAddress,
	}
}

// NewNoop returns observability that discards everything. Used in tests.
func NewNoop() *Observability {
	return &Observability{
		Logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		Tracer:  noop.NewTracerProvider().Tracer("noop"),
		Metrics: NoOpMetrics{},
	}
}

// NewLogger returns a JSON logger, or a text logger in development.
func NewLogger(w io.Writer, environment, level string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLevel(level)}
	if environment == "development" {
		return slog.New(slog.NewTextHandler(w, opts))
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// StartMetricsServer serves /metrics in the background. An empty address disables it.
func (o *Observability) StartMetricsServer() {
	if o.metricsAddress == "" || o.Registry == nil {
		o.Logger.Info("Metrics server disabled")
		return
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(o.Registry, promhttp.HandlerOpts{}))
	o.metricsServer = &http.Server{
		Addr:              o.metricsAddress,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		o.Logger.Info("Starting metrics server", slog.String("address", o.metricsAddress))
		if err := o.metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			o.Logger.Error("Metrics server failed", slog.Any("error", err))
		}
	}()
}

// Shutdown stops the metrics server if it was started.
func (o *Observability) Shutdown(ctx context.Context) error {
	if o.metricsServer == nil {
		return nil
	}
	return o.metricsServer.Shutdown(ctx)
}
