package standingshandlers

import (
	"context"

	standingsevents "github.com/Black-And-White-Club/tabroom/app/modules/standings/domain/events"
	"github.com/Black-And-White-Club/tabroom/internal/handlerwrapper"
)

// Handlers defines the interface for standings event handlers.
type Handlers interface {
	// HandleBallotSubmitted stores a judge decision and answers with recorded or rejected.
	HandleBallotSubmitted(ctx context.Context, payload *standingsevents.BallotSubmittedPayloadV1) ([]handlerwrapper.Result, error)

	// HandleRecomputeRequested runs a full standings pass for one event.
	HandleRecomputeRequested(ctx context.Context, payload *standingsevents.RecomputeRequestedPayloadV1) ([]handlerwrapper.Result, error)

	// HandleTiebreakersUpdateRequested replaces the tiebreaker order of an event.
	HandleTiebreakersUpdateRequested(ctx context.Context, payload *standingsevents.TiebreakersUpdateRequestedPayloadV1) ([]handlerwrapper.Result, error)
}
