package standingsdb

import (
	"context"

	"github.com/uptrace/bun"
)

// Repository defines the contract for standings persistence. Every method
// accepts an optional bun.IDB so callers can run it inside a transaction;
// nil uses the repository's default connection.
type Repository interface {
	// GetEventConfig returns the tabulation setup of an event.
	GetEventConfig(ctx context.Context, db bun.IDB, eventID string) (*EventConfig, error)

	// UpsertEventConfig creates or replaces an event's setup.
	UpsertEventConfig(ctx context.Context, db bun.IDB, cfg *EventConfig) error

	// UpdateTiebreakerOrder stores a new order for an existing event.
	UpdateTiebreakerOrder(ctx context.Context, db bun.IDB, eventID string, order []string) error

	// AddRegistration appends a registration to an event when not already present.
	AddRegistration(ctx context.Context, db bun.IDB, eventID, registrationID string) error

	UpsertBallot(ctx context.Context, db bun.IDB, ballot *Ballot) error
	ListBallots(ctx context.Context, db bun.IDB, eventID string) ([]Ballot, error)

	// ReplaceStandings swaps the standings and head-to-head rows of an event.
	ReplaceStandings(ctx context.Context, db bun.IDB, eventID string, standings []Standing, h2h []HeadToHeadRecord) error

	// ListStandings returns standings ordered by overall rank.
	ListStandings(ctx context.Context, db bun.IDB, eventID string) ([]Standing, error)
	ListHeadToHead(ctx context.Context, db bun.IDB, eventID string) ([]HeadToHeadRecord, error)
}
