package standingsqueue

import (
	"context"
	"fmt"
	"log/slog"

	standingsservice "github.com/Black-And-White-Club/tabroom/app/modules/standings/application"
	standingsevents "github.com/Black-And-White-Club/tabroom/app/modules/standings/domain/events"
	"github.com/Black-And-White-Club/tabroom/internal/attr"
	"github.com/Black-And-White-Club/tabroom/internal/handlerwrapper"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/riverqueue/river"
)

// Recomputer runs a standings pass.
type Recomputer interface {
	RecomputeStandings(ctx context.Context, eventID string) (standingsservice.StandingsOperationResult, error)
}

// RecomputeWorker executes RecomputeStandingsJob and publishes the outcome.
type RecomputeWorker struct {
	river.WorkerDefaults[RecomputeStandingsJob]
	logger     *slog.Logger
	recomputer Recomputer
	publisher  message.Publisher
}

func NewRecomputeWorker(logger *slog.Logger, recomputer Recomputer, publisher message.Publisher) *RecomputeWorker {
	return &RecomputeWorker{
		logger:     logger,
		recomputer: recomputer,
		publisher:  publisher,
	}
}

// Work returns an error only for infrastructure failures, so River retries those.
func (w *RecomputeWorker) Work(ctx context.Context, job *river.Job[RecomputeStandingsJob]) error {
	eventID := job.Args.EventID
	w.logger.InfoContext(ctx, "Running standings recompute job",
		attr.String("event_id", eventID),
		attr.Int("attempt", job.Attempt),
	)

	result, err := w.recomputer.RecomputeStandings(ctx, eventID)
	if err != nil {
		return fmt.Errorf("recompute %s: %w", eventID, err)
	}

	out := handlerwrapper.Result{Topic: standingsevents.StandingsRecomputedV1, Payload: result.Success}
	if result.IsFailure() {
		w.logger.WarnContext(ctx, "Standings recompute job failed permanently",
			attr.String("event_id", eventID),
			attr.String("reason", result.Failure.Reason),
		)
		out = handlerwrapper.Result{Topic: standingsevents.RecomputeFailedV1, Payload: result.Failure}
	}

	if w.publisher == nil {
		return nil
	}
	msg, err := handlerwrapper.NewMessage(ctx, out)
	if err != nil {
		return err
	}
	if err := w.publisher.Publish(out.Topic, msg); err != nil {
		return fmt.Errorf("failed to publish %s: %w", out.Topic, err)
	}
	return nil
}
