package standingsservice

import (
	"context"
	"fmt"

	standingsdomain "github.com/Black-And-White-Club/tabroom/app/modules/standings/domain"
	standingsdb "github.com/Black-And-White-Club/tabroom/app/modules/standings/infrastructure/repositories"
	"golang.org/x/sync/errgroup"
)

// GetStandings returns the persisted standings of an event in overall rank order.
func (s *StandingsService) GetStandings(ctx context.Context, eventID string) ([]standingsdomain.ComputedStanding, error) {
	return query(s, ctx, "GetStandings", eventID, func(ctx context.Context) ([]standingsdomain.ComputedStanding, error) {
		if _, err := s.loadEvent(ctx, eventID); err != nil {
			return nil, err
		}
		rows, err := s.repo.ListStandings(ctx, nil, eventID)
		if err != nil {
			return nil, err
		}
		return toDomainStandings(rows), nil
	})
}

// GetTiers groups the standings of an event into true ties. An empty names
// list uses the event's order without coin_flip.
func (s *StandingsService) GetTiers(ctx context.Context, eventID string, names []string) ([][]standingsdomain.ComputedStanding, error) {
	return query(s, ctx, "GetTiers", eventID, func(ctx context.Context) ([][]standingsdomain.ComputedStanding, error) {
		snap, err := s.loadSnapshot(ctx, eventID)
		if err != nil {
			return nil, err
		}

		order := standingsdomain.WithoutCoinFlip(snap.order)
		if len(names) > 0 {
			order, err = standingsdomain.ParseTiebreakerOrder(names)
			if err != nil {
				return nil, fmt.Errorf("%w: %v", ErrInvalidTiebreakerOrder, err)
			}
		}

		sorted := standingsdomain.SortByTiebreakers(snap.standings, order, snap.h2h)
		return standingsdomain.GroupIntoTiers(sorted, order, snap.h2h), nil
	})
}

// ExplainPair walks the event's tiebreaker order for two registrations and
// reports every criterion compared up to the deciding one.
func (s *StandingsService) ExplainPair(ctx context.Context, eventID, a, b string) (*PairExplanation, error) {
	return query(s, ctx, "ExplainPair", eventID, func(ctx context.Context) (*PairExplanation, error) {
		snap, err := s.loadSnapshot(ctx, eventID)
		if err != nil {
			return nil, err
		}

		sa, okA := findStanding(snap.standings, a)
		sb, okB := findStanding(snap.standings, b)
		if !okA {
			return nil, fmt.Errorf("%w: %s", ErrRegistrationNotFound, a)
		}
		if !okB {
			return nil, fmt.Errorf("%w: %s", ErrRegistrationNotFound, b)
		}

		h2h := standingsdomain.BuildHeadToHeadMap(snap.h2h)
		exp := &PairExplanation{
			EventID: eventID,
			A:       a,
			B:       b,
			Order:   standingsdomain.OrderStrings(snap.order),
			Outcome: standingsdomain.CompareTiebreakerOrder(sa, sb, snap.order, h2h),
			Steps:   make([]CriterionComparison, 0, len(snap.order)),
		}
		for _, criterion := range snap.order {
			r := standingsdomain.CompareTiebreaker(sa, sb, criterion, h2h)
			exp.Steps = append(exp.Steps, CriterionComparison{Criterion: criterion, Result: r})
			if r != 0 {
				break
			}
		}
		switch {
		case exp.Outcome.Result < 0:
			exp.Leader = a
		case exp.Outcome.Result > 0:
			exp.Leader = b
		}
		return exp, nil
	})
}

type eventSnapshot struct {
	cfg       *standingsdb.EventConfig
	order     []standingsdomain.TiebreakerType
	standings []standingsdomain.ComputedStanding
	h2h       []standingsdomain.HeadToHead
}

// loadSnapshot reads an event's config, standings and head-to-head rows concurrently.
func (s *StandingsService) loadSnapshot(ctx context.Context, eventID string) (*eventSnapshot, error) {
	snap := &eventSnapshot{}
	var (
		rows    []standingsdb.Standing
		records []standingsdb.HeadToHeadRecord
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		snap.cfg, err = s.loadEvent(gctx, eventID)
		return err
	})
	g.Go(func() error {
		var err error
		rows, err = s.repo.ListStandings(gctx, nil, eventID)
		return err
	})
	g.Go(func() error {
		var err error
		records, err = s.repo.ListHeadToHead(gctx, nil, eventID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	snap.order = s.eventOrder(ctx, snap.cfg)
	snap.standings = toDomainStandings(rows)
	snap.h2h = make([]standingsdomain.HeadToHead, 0, len(records))
	for i := range records {
		snap.h2h = append(snap.h2h, records[i].ToDomain())
	}
	return snap, nil
}

func toDomainStandings(rows []standingsdb.Standing) []standingsdomain.ComputedStanding {
	out := make([]standingsdomain.ComputedStanding, 0, len(rows))
	for i := range rows {
		out = append(out, rows[i].ToDomain())
	}
	return out
}

func findStanding(standings []standingsdomain.ComputedStanding, registrationID string) (standingsdomain.ComputedStanding, bool) {
	for _, st := range standings {
		if st.RegistrationID == registrationID {
			return st, true
		}
	}
	return standingsdomain.ComputedStanding{}, false
}
