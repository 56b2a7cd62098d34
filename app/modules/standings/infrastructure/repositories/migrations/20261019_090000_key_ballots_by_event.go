package migrations

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(
		func(ctx context.Context, db *bun.DB) error {
			fmt.Println("Keying ballots by event and pairing...")
			if _, err := db.ExecContext(ctx, `
				ALTER TABLE ballots DROP CONSTRAINT IF EXISTS ballots_pkey;
				ALTER TABLE ballots ADD PRIMARY KEY (event_id, pairing_id);
			`); err != nil {
				return fmt.Errorf("failed to rekey ballots: %w", err)
			}
			return nil
		},
		func(ctx context.Context, db *bun.DB) error {
			fmt.Println("Keying ballots by pairing...")
			if _, err := db.ExecContext(ctx, `
				ALTER TABLE ballots DROP CONSTRAINT IF EXISTS ballots_pkey;
				ALTER TABLE ballots ADD PRIMARY KEY (pairing_id);
			`); err != nil {
				return fmt.Errorf("failed to rekey ballots: %w", err)
			}
			return nil
		},
	)
}
