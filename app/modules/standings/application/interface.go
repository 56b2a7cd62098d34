package standingsservice

import (
	"context"

	standingsdomain "github.com/Black-And-White-Club/tabroom/app/modules/standings/domain"
	standingsevents "github.com/Black-And-White-Club/tabroom/app/modules/standings/domain/events"
)

// Service is the standings application surface used by handlers, the queue
// worker and the HTTP API.
type Service interface {
	ConfigureEvent(ctx context.Context, setup EventSetup) (*EventSetup, error)
	SubmitBallot(ctx context.Context, ballot standingsdomain.Ballot) (BallotOperationResult, error)
	RecomputeStandings(ctx context.Context, eventID string) (StandingsOperationResult, error)
	UpdateTiebreakerOrder(ctx context.Context, eventID string, names []string) (TiebreakerOperationResult, error)

	GetStandings(ctx context.Context, eventID string) ([]standingsdomain.ComputedStanding, error)
	GetTiers(ctx context.Context, eventID string, names []string) ([][]standingsdomain.ComputedStanding, error)
	ExplainPair(ctx context.Context, eventID, a, b string) (*PairExplanation, error)

	ExportStandingsXLSX(ctx context.Context, eventID string) ([]byte, error)
	SpeakerChart(ctx context.Context, eventID, registrationID string) ([]byte, error)
	ArchiveSnapshot(ctx context.Context, eventID string) (string, error)
}

// RecomputeScheduler queues a standings pass for an event.
type RecomputeScheduler interface {
	ScheduleRecompute(ctx context.Context, eventID string) error
}

// Notifier pushes fresh standings to live subscribers.
type Notifier interface {
	StandingsUpdated(ctx context.Context, payload standingsevents.StandingsRecomputedPayloadV1)
}

// SnapshotStore persists exported workbooks and returns their public location.
type SnapshotStore interface {
	Upload(ctx context.Context, key string, body []byte, contentType string) (string, error)
}
