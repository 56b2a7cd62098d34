package standingsservice

import (
	standingsdomain "github.com/Black-And-White-Club/tabroom/app/modules/standings/domain"
	standingsevents "github.com/Black-And-White-Club/tabroom/app/modules/standings/domain/events"
	"github.com/Black-And-White-Club/tabroom/internal/results"
)

type (
	BallotOperationResult     = results.OperationResult[standingsevents.BallotRecordedPayloadV1, standingsevents.BallotRejectedPayloadV1]
	StandingsOperationResult  = results.OperationResult[standingsevents.StandingsRecomputedPayloadV1, standingsevents.RecomputeFailedPayloadV1]
	TiebreakerOperationResult = results.OperationResult[standingsevents.TiebreakersUpdatedPayloadV1, standingsevents.TiebreakersUpdateFailedPayloadV1]
)

// EventSetup is the tabulation configuration an admin provides for an event.
// An empty TiebreakerOrder selects the default order.
type EventSetup struct {
	EventID         string   `json:"event_id" validate:"required,max=64"`
	TournamentID    string   `json:"tournament_id" validate:"required,max=64"`
	Name            string   `json:"name"`
	TiebreakerOrder []string `json:"tiebreaker_order"`
	RegistrationIDs []string `json:"registration_ids" validate:"dive,required,max=64"`
	BreakCount      int      `json:"break_count" validate:"min=0"`
}

// CriterionComparison is one step of a pairwise explanation.
type CriterionComparison struct {
	Criterion standingsdomain.TiebreakerType `json:"criterion"`
	Result    int                            `json:"result"`
}

// PairExplanation tells why one competitor ranks above another.
type PairExplanation struct {
	EventID string                           `json:"event_id"`
	A       string                           `json:"a"`
	B       string                           `json:"b"`
	Order   []string                         `json:"order"`
	Leader  string                           `json:"leader,omitempty"`
	Outcome standingsdomain.TiebreakerResult `json:"outcome"`
	Steps   []CriterionComparison            `json:"steps"`
}
