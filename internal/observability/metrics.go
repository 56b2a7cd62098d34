package observability

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics records operation and handler outcomes.
type Metrics interface {
	RecordOperationAttempt(ctx context.Context, operation string)
	RecordOperationSuccess(ctx context.Context, operation string)
	RecordOperationFailure(ctx context.Context, operation string)
	RecordOperationDuration(ctx context.Context, operation string, duration time.Duration)

	RecordHandlerAttempt(ctx context.Context, handler string)
	RecordHandlerSuccess(ctx context.Context, handler string)
	RecordHandlerFailure(ctx context.Context, handler string)
	RecordHandlerDuration(ctx context.Context, handler string, duration time.Duration)

	RecordStandingsComputed(ctx context.Context, eventID string, competitors int)
}

type prometheusMetrics struct {
	operations        *prometheus.CounterVec
	operationDuration *prometheus.HistogramVec
	handlers          *prometheus.CounterVec
	handlerDuration   *prometheus.HistogramVec
	competitors       *prometheus.GaugeVec
}

// NewPrometheusMetrics registers the service metrics on registry.
func NewPrometheusMetrics(registry prometheus.Registerer, namespace string) Metrics {
	factory := promauto.With(registry)
	return &prometheusMetrics{
		operations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "operations_total",
			Help:      "Service operations by name and status.",
		}, []string{"operation", "status"}),
		operationDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "operation_duration_seconds",
			Help:      "Service operation latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
		handlers: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "handler_messages_total",
			Help:      "Message handler invocations by handler and status.",
		}, []string{"handler", "status"}),
		handlerDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "handler_duration_seconds",
			Help:      "Message handler latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"handler"}),
		competitors: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "standings_competitors",
			Help:      "Competitors in the last computed standings of an event.",
		}, []string{"event_id"}),
	}
}

func (m *prometheusMetrics) RecordOperationAttempt(_ context.Context, operation string) {
	m.operations.WithLabelValues(operation, "attempt").Inc()
}

func (m *prometheusMetrics) RecordOperationSuccess(_ context.Context, operation string) {
	m.operations.WithLabelValues(operation, "success").Inc()
}

func (m *prometheusMetrics) RecordOperationFailure(_ context.Context, operation string) {
	m.operations.WithLabelValues(operation, "failure").Inc()
}

func (m *prometheusMetrics) RecordOperationDuration(_ context.Context, operation string, duration time.Duration) {
	m.operationDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

func (m *prometheusMetrics) RecordHandlerAttempt(_ context.Context, handler string) {
	m.handlers.WithLabelValues(handler, "attempt").Inc()
}

func (m *prometheusMetrics) RecordHandlerSuccess(_ context.Context, handler string) {
	m.handlers.WithLabelValues(handler, "success").Inc()
}

func (m *prometheusMetrics) RecordHandlerFailure(_ context.Context, handler string) {
	m.handlers.WithLabelValues(handler, "failure").Inc()
}

func (m *prometheusMetrics) RecordHandlerDuration(_ context.Context, handler string, duration time.Duration) {
	m.handlerDuration.WithLabelValues(handler).Observe(duration.Seconds())
}

func (m *prometheusMetrics) RecordStandingsComputed(_ context.Context, eventID string, competitors int) {
	m.competitors.WithLabelValues(eventID).Set(float64(competitors))
}

// NoOpMetrics discards every measurement.
type NoOpMetrics struct{}

func (NoOpMetrics) RecordOperationAttempt(context.Context, string)                 {}
func (NoOpMetrics) RecordOperationSuccess(context.Context, string)                 {}
func (NoOpMetrics) RecordOperationFailure(context.Context, string)                 {}
func (NoOpMetrics) RecordOperationDuration(context.Context, string, time.Duration) {}
func (NoOpMetrics) RecordHandlerAttempt(context.Context, string)                   {}
func (NoOpMetrics) RecordHandlerSuccess(context.Context, string)                   {}
func (NoOpMetrics) RecordHandlerFailure(context.Context, string)                   {}
func (NoOpMetrics) RecordHandlerDuration(context.Context, string, time.Duration)   {}
func (NoOpMetrics) RecordStandingsComputed(context.Context, string, int)           {}
