package eventbus

import (
	"context"
	"fmt"
)

// StandingsStream captures every standings subject.
const StandingsStream = "standings"

// InitializeStreams creates the JetStream streams the application publishes to.
func InitializeStreams(ctx context.Context, bus EventBus) error {
	if err := bus.CreateStream(ctx, StandingsStream, "standings.>"); err != nil {
		return fmt.Errorf("failed to initialize %s stream: %w", StandingsStream, err)
	}
	return nil
}
