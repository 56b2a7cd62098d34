package migrations

import (
	"context"
	"fmt"

	standingsdb "github.com/Black-And-White-Club/tabroom/app/modules/standings/infrastructure/repositories"
	"github.com/uptrace/bun"
)

func init() {
	models := []any{
		(*standingsdb.EventConfig)(nil),
		(*standingsdb.Ballot)(nil),
		(*standingsdb.Standing)(nil),
		(*standingsdb.HeadToHeadRecord)(nil),
	}

	Migrations.MustRegister(
		func(ctx context.Context, db *bun.DB) error {
			fmt.Println("Creating standings tables...")
			return db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
				for _, model := range models {
					if _, err := tx.NewCreateTable().Model(model).IfNotExists().Exec(ctx); err != nil {
						return fmt.Errorf("failed to create table for %T: %w", model, err)
					}
				}
				if _, err := tx.ExecContext(ctx, `
					CREATE INDEX IF NOT EXISTS idx_ballots_event_round ON ballots(event_id, round_number);
					CREATE INDEX IF NOT EXISTS idx_standings_event_rank ON standings(event_id, overall_rank);
				`); err != nil {
					return fmt.Errorf("failed to create standings indexes: %w", err)
				}
				return nil
			})
		},
		func(ctx context.Context, db *bun.DB) error {
			fmt.Println("Dropping standings tables...")
			return db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
				for i := len(models) - 1; i >= 0; i-- {
					if _, err := tx.NewDropTable().Model(models[i]).IfExists().Cascade().Exec(ctx); err != nil {
						return fmt.Errorf("failed to drop table for %T: %w", models[i], err)
					}
				}
				return nil
			})
		},
	)
}
