package standingsservice

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	standingsdb "github.com/Black-And-White-Club/tabroom/app/modules/standings/infrastructure/repositories"
	"github.com/Black-And-White-Club/tabroom/internal/attr"
	"github.com/Black-And-White-Club/tabroom/internal/observability"
	"github.com/Black-And-White-Club/tabroom/internal/results"
	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// StandingsService implements the Service interface.
type StandingsService struct {
	repo      standingsdb.Repository
	logger    *slog.Logger
	metrics   observability.Metrics
	tracer    trace.Tracer
	db        *bun.DB
	scheduler RecomputeScheduler
	notifier  Notifier
	archive   SnapshotStore
	now       func() time.Time
}

// Option customizes a StandingsService.
type Option func(*StandingsService)

// WithNotifier pushes every recompute to live subscribers.
func WithNotifier(n Notifier) Option {
	return func(s *StandingsService) { s.notifier = n }
}

// WithArchive enables ArchiveSnapshot.
func WithArchive(store SnapshotStore) Option {
	return func(s *StandingsService) { s.archive = store }
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *StandingsService) { s.now = now }
}

// NewStandingsService creates a new StandingsService.
func NewStandingsService(
	repo standingsdb.Repository,
	logger *slog.Logger,
	metrics observability.Metrics,
	tracer trace.Tracer,
	db *bun.DB,
	opts ...Option,
) *StandingsService {
	if logger == nil {
		logger = slog.Default()
	}
	s := &StandingsService{
		repo:    repo,
		logger:  logger,
		metrics: metrics,
		tracer:  tracer,
		db:      db,
		now:     func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SetScheduler routes recomputes through a queue. The queue worker needs the
// service itself, so this is wired after construction. Without a scheduler,
// recomputes run inline after the write commits.
func (s *StandingsService) SetScheduler(scheduler RecomputeScheduler) {
	s.scheduler = scheduler
}

// requestRecompute schedules or runs a standings pass after a committed write.
func (s *StandingsService) requestRecompute(ctx context.Context, eventID string) error {
	if s.scheduler != nil {
		if err := s.scheduler.ScheduleRecompute(ctx, eventID); err != nil {
			return fmt.Errorf("failed to schedule recompute: %w", err)
		}
		return nil
	}
	if _, err := s.RecomputeStandings(ctx, eventID); err != nil {
		return fmt.Errorf("inline recompute failed: %w", err)
	}
	return nil
}

// operationFunc is the generic signature for service operation functions.
type operationFunc[S any, F any] func(ctx context.Context) (results.OperationResult[S, F], error)

// withTelemetry wraps a service operation with tracing, metrics, and panic recovery.
func withTelemetry[S any, F any](
	s *StandingsService,
	ctx context.Context,
	operationName string,
	identifier string,
	op operationFunc[S, F],
) (result results.OperationResult[S, F], err error) {
	var span trace.Span
	if s.tracer != nil {
		ctx, span = s.tracer.Start(ctx, operationName, trace.WithAttributes(
			attribute.String("operation", operationName),
			attribute.String("identifier", identifier),
		))
	} else {
		span = trace.SpanFromContext(ctx)
	}
	defer span.End()

	if s.metrics != nil {
		s.metrics.RecordOperationAttempt(ctx, operationName)
	}

	startTime := time.Now()
	defer func() {
		if s.metrics != nil {
			s.metrics.RecordOperationDuration(ctx, operationName, time.Since(startTime))
		}
	}()

	s.logger.InfoContext(ctx, "Operation triggered",
		attr.ExtractCorrelationID(ctx),
		attr.String("operation", operationName),
		attr.String("identifier", identifier),
	)

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic in %s: %v", operationName, r)
			s.logger.ErrorContext(ctx, "Critical panic recovered",
				attr.ExtractCorrelationID(ctx),
				attr.String("identifier", identifier),
				attr.Error(err),
			)
			if s.metrics != nil {
				s.metrics.RecordOperationFailure(ctx, operationName)
			}
			span.RecordError(err)
			result = results.OperationResult[S, F]{}
		}
	}()

	result, err = op(ctx)

	if err != nil {
		wrappedErr := fmt.Errorf("%s: %w", operationName, err)
		s.logger.ErrorContext(ctx, "Operation failed with error",
			attr.ExtractCorrelationID(ctx),
			attr.String("operation", operationName),
			attr.String("identifier", identifier),
			attr.Error(wrappedErr),
		)
		if s.metrics != nil {
			s.metrics.RecordOperationFailure(ctx, operationName)
		}
		span.RecordError(wrappedErr)
		return result, wrappedErr
	}

	if result.IsFailure() {
		s.logger.WarnContext(ctx, "Operation returned failure result",
			attr.ExtractCorrelationID(ctx),
			attr.String("operation", operationName),
			attr.String("identifier", identifier),
			attr.Any("failure_payload", *result.Failure),
		)
	}

	if result.IsSuccess() {
		s.logger.InfoContext(ctx, "Operation completed successfully",
			attr.ExtractCorrelationID(ctx),
			attr.String("operation", operationName),
			attr.String("identifier", identifier),
		)
	}

	if s.metrics != nil {
		s.metrics.RecordOperationSuccess(ctx, operationName)
	}

	return result, nil
}

// runInTx ensures the operation runs within a transaction.
func runInTx[S any, F any](
	s *StandingsService,
	ctx context.Context,
	fn func(ctx context.Context, db bun.IDB) (results.OperationResult[S, F], error),
) (results.OperationResult[S, F], error) {
	if s.db == nil {
		return fn(ctx, nil)
	}

	var result results.OperationResult[S, F]
	err := s.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		var txErr error
		result, txErr = fn(ctx, tx)
		return txErr
	})
	return result, err
}

// query runs a read-only operation under telemetry and unwraps its result.
func query[T any](s *StandingsService, ctx context.Context, operationName, identifier string, fn func(ctx context.Context) (T, error)) (T, error) {
	result, err := withTelemetry(s, ctx, operationName, identifier, func(ctx context.Context) (results.OperationResult[T, error], error) {
		v, err := fn(ctx)
		if err != nil {
			return results.OperationResult[T, error]{}, err
		}
		return results.SuccessResult[T, error](v), nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return *result.Success, nil
}
