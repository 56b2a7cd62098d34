package standingsservice

import (
	"context"
	"errors"
	"fmt"

	standingsdomain "github.com/Black-And-White-Club/tabroom/app/modules/standings/domain"
	standingsevents "github.com/Black-And-White-Club/tabroom/app/modules/standings/domain/events"
	standingsdb "github.com/Black-And-White-Club/tabroom/app/modules/standings/infrastructure/repositories"
	"github.com/uptrace/bun"
	"golang.org/x/sync/errgroup"
)

// RecomputeStandings rebuilds the standings of an event from every stored
// ballot and replaces the persisted rows in one transaction.
func (s *StandingsService) RecomputeStandings(ctx context.Context, eventID string) (StandingsOperationResult, error) {
	result, err := withTelemetry(s, ctx, "RecomputeStandings", eventID, func(ctx context.Context) (StandingsOperationResult, error) {
		var (
			cfg     *standingsdb.EventConfig
			ballots []standingsdb.Ballot
		)

		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			var err error
			cfg, err = s.repo.GetEventConfig(gctx, nil, eventID)
			return err
		})
		g.Go(func() error {
			var err error
			ballots, err = s.repo.ListBallots(gctx, nil, eventID)
			return err
		})
		if err := g.Wait(); err != nil {
			if errors.Is(err, standingsdb.ErrNotFound) {
				return StandingsOperationResult{Failure: &standingsevents.RecomputeFailedPayloadV1{
					EventID: eventID,
					Reason:  ErrEventNotFound.Error(),
					Code:    standingsevents.FailureNotFound,
				}}, nil
			}
			return StandingsOperationResult{}, fmt.Errorf("failed to load event data: %w", err)
		}

		in := standingsdomain.TabInput{
			TournamentID:  cfg.TournamentID,
			EventID:       cfg.EventID,
			Registrations: cfg.RegistrationIDs,
			Ballots:       make([]standingsdomain.Ballot, 0, len(ballots)),
			Order:         s.eventOrder(ctx, cfg),
			BreakCount:    cfg.BreakCount,
			ComputedAt:    s.now(),
		}
		for i := range ballots {
			in.Ballots = append(in.Ballots, ballots[i].ToDomain())
		}
		out := standingsdomain.ComputeStandings(in)

		rows := make([]standingsdb.Standing, 0, len(out.Standings))
		for _, st := range out.Standings {
			rows = append(rows, standingsdb.StandingFromDomain(st))
		}
		records := make([]standingsdb.HeadToHeadRecord, 0, len(out.HeadToHead))
		for _, h := range out.HeadToHead {
			records = append(records, standingsdb.HeadToHeadFromDomain(eventID, h))
		}

		return runInTx(s, ctx, func(ctx context.Context, db bun.IDB) (StandingsOperationResult, error) {
			if err := s.repo.ReplaceStandings(ctx, db, eventID, rows, records); err != nil {
				return StandingsOperationResult{}, fmt.Errorf("failed to persist standings: %w", err)
			}
			return StandingsOperationResult{Success: &standingsevents.StandingsRecomputedPayloadV1{
				EventID:      eventID,
				TournamentID: cfg.TournamentID,
				Competitors:  len(out.Standings),
				Tiers:        len(out.Tiers),
				ComputedAt:   in.ComputedAt,
				Standings:    out.Standings,
			}}, nil
		})
	})
	if err != nil || !result.IsSuccess() {
		return result, err
	}

	if s.metrics != nil {
		s.metrics.RecordStandingsComputed(ctx, eventID, result.Success.Competitors)
	}
	if s.notifier != nil {
		s.notifier.StandingsUpdated(ctx, *result.Success)
	}
	return result, nil
}
