// Package standingsevents defines the topics and payloads the standings module
// consumes and produces.
package standingsevents

import (
	"time"

	standingsdomain "github.com/Black-And-White-Club/tabroom/app/modules/standings/domain"
)

// Inbound topics.
const (
	BallotSubmittedV1            = "standings.ballot.submitted.v1"
	RecomputeRequestedV1         = "standings.recompute.requested.v1"
	TiebreakersUpdateRequestedV1 = "standings.tiebreakers.update.requested.v1"
)

// Outbound topics.
const (
	BallotRecordedV1          = "standings.ballot.recorded.v1"
	BallotRejectedV1          = "standings.ballot.rejected.v1"
	StandingsRecomputedV1     = "standings.recomputed.v1"
	RecomputeFailedV1         = "standings.recompute.failed.v1"
	TiebreakersUpdatedV1      = "standings.tiebreakers.updated.v1"
	TiebreakersUpdateFailedV1 = "standings.tiebreakers.update.failed.v1"
)

// BallotSubmittedPayloadV1 carries a judge decision into the system.
type BallotSubmittedPayloadV1 struct {
	Ballot standingsdomain.Ballot `json:"ballot"`
}

type BallotRecordedPayloadV1 struct {
	EventID     string `json:"event_id"`
	PairingID   string `json:"pairing_id"`
	RoundNumber int    `json:"round_number"`
	Final       bool   `json:"final"`
}

type BallotRejectedPayloadV1 struct {
	EventID   string      `json:"event_id"`
	PairingID string      `json:"pairing_id"`
	Reason    string      `json:"reason"`
	Code      FailureCode `json:"code"`
}

type RecomputeRequestedPayloadV1 struct {
	EventID string `json:"event_id"`
}

// StandingsRecomputedPayloadV1 announces a fresh standings pass. Standings
// are in overall rank order.
type StandingsRecomputedPayloadV1 struct {
	EventID      string                             `json:"event_id"`
	TournamentID string                             `json:"tournament_id"`
	Competitors  int                                `json:"competitors"`
	Tiers        int                                `json:"tiers"`
	ComputedAt   time.Time                          `json:"computed_at"`
	Standings    []standingsdomain.ComputedStanding `json:"standings"`
}

type RecomputeFailedPayloadV1 struct {
	EventID string      `json:"event_id"`
	Reason  string      `json:"reason"`
	Code    FailureCode `json:"code"`
}

type TiebreakersUpdateRequestedPayloadV1 struct {
	EventID string   `json:"event_id"`
	Order   []string `json:"order"`
}

type TiebreakersUpdatedPayloadV1 struct {
	EventID string   `json:"event_id"`
	Order   []string `json:"order"`
}

type TiebreakersUpdateFailedPayloadV1 struct {
	EventID string      `json:"event_id"`
	Reason  string      `json:"reason"`
	Code    FailureCode `json:"code"`
}
