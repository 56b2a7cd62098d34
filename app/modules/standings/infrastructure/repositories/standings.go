package standingsdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
)

// Impl implements Repository using Bun ORM.
type Impl struct {
	db bun.IDB
}

// NewRepository creates a new standings repository.
func NewRepository(db bun.IDB) Repository {
	return &Impl{db: db}
}

func (r *Impl) resolveDB(db bun.IDB) bun.IDB {
	if db == nil {
		return r.db
	}
	return db
}

func (r *Impl) GetEventConfig(ctx context.Context, db bun.IDB, eventID string) (*EventConfig, error) {
	db = r.resolveDB(db)
	cfg := new(EventConfig)
	err := db.NewSelect().
		Model(cfg).
		Where("event_id = ?", eventID).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("standingsdb.GetEventConfig: %w", err)
	}
	return cfg, nil
}

func (r *Impl) UpsertEventConfig(ctx context.Context, db bun.IDB, cfg *EventConfig) error {
	db = r.resolveDB(db)
	cfg.UpdatedAt = time.Now().UTC()
	if cfg.TiebreakerOrder == nil {
		cfg.TiebreakerOrder = []string{}
	}
	if cfg.RegistrationIDs == nil {
		cfg.RegistrationIDs = []string{}
	}
	_, err := db.NewInsert().
		Model(cfg).
		On("CONFLICT (event_id) DO UPDATE").
		Set("tournament_id = EXCLUDED.tournament_id").
		Set("name = EXCLUDED.name").
		Set("tiebreaker_order = EXCLUDED.tiebreaker_order").
		Set("registration_ids = EXCLUDED.registration_ids").
		Set("break_count = EXCLUDED.break_count").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("standingsdb.UpsertEventConfig: %w", err)
	}
	return nil
}

func (r *Impl) UpdateTiebreakerOrder(ctx context.Context, db bun.IDB, eventID string, order []string) error {
	db = r.resolveDB(db)
	res, err := db.NewUpdate().
		Model((*EventConfig)(nil)).
		Set("tiebreaker_order = ?", pgdialect.Array(order)).
		Set("updated_at = ?", time.Now().UTC()).
		Where("event_id = ?", eventID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("standingsdb.UpdateTiebreakerOrder: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("standingsdb.UpdateTiebreakerOrder: %w", err)
	}
	if rows == 0 {
		return ErrNoRowsAffected
	}
	return nil
}

func (r *Impl) AddRegistration(ctx context.Context, db bun.IDB, eventID, registrationID string) error {
	db = r.resolveDB(db)
	cfg, err := r.GetEventConfig(ctx, db, eventID)
	if err != nil {
		return err
	}
	if slices.Contains(cfg.RegistrationIDs, registrationID) {
		return nil
	}
	_, err = db.NewUpdate().
		Model((*EventConfig)(nil)).
		Set("registration_ids = array_append(registration_ids, ?)", registrationID).
		Set("updated_at = ?", time.Now().UTC()).
		Where("event_id = ?", eventID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("standingsdb.AddRegistration: %w", err)
	}
	return nil
}

func (r *Impl) UpsertBallot(ctx context.Context, db bun.IDB, ballot *Ballot) error {
	db = r.resolveDB(db)
	ballot.SubmittedAt = time.Now().UTC()
	_, err := db.NewInsert().
		Model(ballot).
		On("CONFLICT (event_id, pairing_id) DO UPDATE").
		Set("tournament_id = EXCLUDED.tournament_id").
		Set("round_number = EXCLUDED.round_number").
		Set("aff_id = EXCLUDED.aff_id").
		Set("neg_id = EXCLUDED.neg_id").
		Set("winner = EXCLUDED.winner").
		Set("forfeit = EXCLUDED.forfeit").
		Set("aff_speaks = EXCLUDED.aff_speaks").
		Set("neg_speaks = EXCLUDED.neg_speaks").
		Set("aff_rank = EXCLUDED.aff_rank").
		Set("neg_rank = EXCLUDED.neg_rank").
		Set("final = EXCLUDED.final").
		Set("submitted_at = EXCLUDED.submitted_at").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("standingsdb.UpsertBallot: %w", err)
	}
	return nil
}

func (r *Impl) ListBallots(ctx context.Context, db bun.IDB, eventID string) ([]Ballot, error) {
	db = r.resolveDB(db)
	var ballots []Ballot
	err := db.NewSelect().
		Model(&ballots).
		Where("event_id = ?", eventID).
		Order("round_number ASC", "pairing_id ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("standingsdb.ListBallots: %w", err)
	}
	return ballots, nil
}

func (r *Impl) ReplaceStandings(ctx context.Context, db bun.IDB, eventID string, standings []Standing, h2h []HeadToHeadRecord) error {
	db = r.resolveDB(db)

	if _, err := db.NewDelete().
		Model((*Standing)(nil)).
		Where("event_id = ?", eventID).
		Exec(ctx); err != nil {
		return fmt.Errorf("standingsdb.ReplaceStandings: delete standings: %w", err)
	}
	if _, err := db.NewDelete().
		Model((*HeadToHeadRecord)(nil)).
		Where("event_id = ?", eventID).
		Exec(ctx); err != nil {
		return fmt.Errorf("standingsdb.ReplaceStandings: delete head to head: %w", err)
	}

	if len(standings) > 0 {
		if _, err := db.NewInsert().Model(&standings).Exec(ctx); err != nil {
			return fmt.Errorf("standingsdb.ReplaceStandings: insert standings: %w", err)
		}
	}
	if len(h2h) > 0 {
		if _, err := db.NewInsert().Model(&h2h).Exec(ctx); err != nil {
			return fmt.Errorf("standingsdb.ReplaceStandings: insert head to head: %w", err)
		}
	}
	return nil
}

func (r *Impl) ListStandings(ctx context.Context, db bun.IDB, eventID string) ([]Standing, error) {
	db = r.resolveDB(db)
	var standings []Standing
	err := db.NewSelect().
		Model(&standings).
		Where("event_id = ?", eventID).
		OrderExpr("overall_rank ASC NULLS LAST, registration_id ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("standingsdb.ListStandings: %w", err)
	}
	return standings, nil
}

func (r *Impl) ListHeadToHead(ctx context.Context, db bun.IDB, eventID string) ([]HeadToHeadRecord, error) {
	db = r.resolveDB(db)
	var records []HeadToHeadRecord
	err := db.NewSelect().
		Model(&records).
		Where("event_id = ?", eventID).
		Order("registration_id ASC", "opponent_id ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("standingsdb.ListHeadToHead: %w", err)
	}
	return records, nil
}
