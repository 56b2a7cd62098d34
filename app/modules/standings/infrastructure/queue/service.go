package standingsqueue

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Black-And-White-Club/tabroom/internal/attr"
	"github.com/Black-And-White-Club/tabroom/internal/observability"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/riverqueue/river"
	"github.com/riverqueue/river/riverdriver/riverpgxv5"
	"github.com/uptrace/bun"
)

// DefaultDebounce groups bursts of ballots into one recompute.
const DefaultDebounce = 2 * time.Second

// QueueService defines the contract for standings job scheduling.
type QueueService interface {
	// ScheduleRecompute queues a debounced standings pass for an event.
	ScheduleRecompute(ctx context.Context, eventID string) error
	// PendingJobs lists queued and recent recompute jobs of an event.
	PendingJobs(ctx context.Context, eventID string) ([]JobInfo, error)
	// HealthCheck verifies the queue service is healthy
	HealthCheck(ctx context.Context) error
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
}

var _ QueueService = (*Service)(nil)

// Config tunes the River client.
type Config struct {
	DSN        string
	MaxWorkers int
	Debounce   time.Duration
}

// Service handles job scheduling for the standings module using River
type Service struct {
	client   *river.Client[pgx.Tx]
	pool     *pgxpool.Pool
	logger   *slog.Logger
	db       *bun.DB
	metrics  observability.Metrics
	debounce time.Duration
	now      func() time.Time
}

// NewService creates a River-based queue whose worker recomputes standings and
// publishes the outcome on publisher.
func NewService(
	ctx context.Context,
	bunDB *bun.DB,
	logger *slog.Logger,
	cfg Config,
	metrics observability.Metrics,
	recomputer Recomputer,
	publisher message.Publisher,
) (*Service, error) {
	ctxLogger := logger.With(
		attr.String("component", "river_queue"),
	)
	if metrics == nil {
		metrics = observability.NoOpMetrics{}
	}

	start := time.Now()
	metrics.RecordOperationAttempt(ctx, "queue.initialize")

	// River requires pgx, not database/sql
	poolConfig, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		metrics.RecordOperationFailure(ctx, "queue.initialize")
		return nil, fmt.Errorf("failed to parse DSN: %w", err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		metrics.RecordOperationFailure(ctx, "queue.initialize")
		return nil, fmt.Errorf("failed to create pgx pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		metrics.RecordOperationFailure(ctx, "queue.initialize")
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	workers := river.NewWorkers()
	river.AddWorker(workers, NewRecomputeWorker(ctxLogger, recomputer, publisher))

	maxWorkers := cfg.MaxWorkers
	if maxWorkers <= 0 {
		maxWorkers = 10
	}
	riverClient, err := river.NewClient(riverpgxv5.New(pool), &river.Config{
		Logger: ctxLogger,
		Queues: map[string]river.QueueConfig{
			QueueName: {MaxWorkers: maxWorkers},
		},
		Workers: workers,
	})
	if err != nil {
		pool.Close()
		metrics.RecordOperationFailure(ctx, "queue.initialize")
		return nil, fmt.Errorf("failed to create River client: %w", err)
	}

	debounce := cfg.Debounce
	if debounce == 0 {
		debounce = DefaultDebounce
	}

	metrics.RecordOperationSuccess(ctx, "queue.initialize")
	metrics.RecordOperationDuration(ctx, "queue.initialize", time.Since(start))
	ctxLogger.Info("Standings queue service initialized", attr.Int("max_workers", maxWorkers))

	return &Service{
		client:   riverClient,
		pool:     pool,
		logger:   ctxLogger,
		db:       bunDB,
		metrics:  metrics,
		debounce: debounce,
		now:      time.Now,
	}, nil
}

// Start starts the River queue service
func (s *Service) Start(ctx context.Context) error {
	s.logger.Info("Starting standings queue service")
	if err := s.client.Start(ctx); err != nil {
		return fmt.Errorf("failed to start River client: %w", err)
	}
	return nil
}

// Stop stops the River queue service and releases its pool.
func (s *Service) Stop(ctx context.Context) error {
	s.logger.Info("Stopping standings queue service")
	defer s.pool.Close()
	if err := s.client.Stop(ctx); err != nil {
		return fmt.Errorf("failed to stop River client: %w", err)
	}
	return nil
}

// ScheduleRecompute inserts a recompute job at the end of the current debounce
// window. Repeat requests in the same window collapse into one job.
func (s *Service) ScheduleRecompute(ctx context.Context, eventID string) error {
	start := time.Now()
	s.metrics.RecordOperationAttempt(ctx, "queue.schedule_recompute")

	window, runAt := debounceWindow(s.now(), s.debounce)
	res, err := s.client.Insert(ctx, RecomputeStandingsJob{EventID: eventID, Window: window}, &river.InsertOpts{
		Queue:       QueueName,
		ScheduledAt: runAt,
		UniqueOpts: river.UniqueOpts{
			ByArgs: true,
		},
	})
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to schedule recompute", attr.String("event_id", eventID), attr.Error(err))
		s.metrics.RecordOperationFailure(ctx, "queue.schedule_recompute")
		return fmt.Errorf("failed to schedule recompute job: %w", err)
	}

	s.metrics.RecordOperationSuccess(ctx, "queue.schedule_recompute")
	s.metrics.RecordOperationDuration(ctx, "queue.schedule_recompute", time.Since(start))
	s.logger.DebugContext(ctx, "Recompute scheduled",
		attr.String("event_id", eventID),
		attr.Int64("job_id", res.Job.ID),
		attr.Bool("duplicate", res.UniqueSkippedAsDuplicate),
	)
	return nil
}

// PendingJobs returns recompute jobs for an event, oldest schedule first.
func (s *Service) PendingJobs(ctx context.Context, eventID string) ([]JobInfo, error) {
	type riverJobRow struct {
		ID          int64      `bun:"id"`
		Kind        string     `bun:"kind"`
		State       string     `bun:"state"`
		ScheduledAt *time.Time `bun:"scheduled_at"`
		CreatedAt   time.Time  `bun:"created_at"`
		Attempt     int16      `bun:"attempt"`
		MaxAttempts int16      `bun:"max_attempts"`
	}

	var jobs []riverJobRow
	err := s.db.NewSelect().
		Table("river_job").
		Column("id", "kind", "state", "scheduled_at", "created_at", "attempt", "max_attempts").
		Where("kind = ?", RecomputeStandingsJob{}.Kind()).
		Where("args->>'event_id' = ?", eventID).
		Order("scheduled_at ASC NULLS LAST", "created_at ASC").
		Limit(50).
		Scan(ctx, &jobs)
	if err != nil {
		return nil, fmt.Errorf("failed to query jobs: %w", err)
	}

	out := make([]JobInfo, len(jobs))
	for i, job := range jobs {
		scheduledAt := ""
		if job.ScheduledAt != nil {
			scheduledAt = job.ScheduledAt.Format(time.RFC3339)
		}
		out[i] = JobInfo{
			ID:          job.ID,
			Kind:        job.Kind,
			EventID:     eventID,
			State:       job.State,
			ScheduledAt: scheduledAt,
			CreatedAt:   job.CreatedAt.Format(time.RFC3339),
			Attempt:     int(job.Attempt),
			MaxAttempts: int(job.MaxAttempts),
		}
	}
	return out, nil
}

// HealthCheck verifies the queue service is healthy
func (s *Service) HealthCheck(ctx context.Context) error {
	if s.client == nil {
		return fmt.Errorf("river client is nil")
	}
	if err := s.pool.Ping(ctx); err != nil {
		return fmt.Errorf("queue service health check failed: %w", err)
	}
	return nil
}
