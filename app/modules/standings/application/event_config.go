package standingsservice

import (
	"context"
	"errors"
	"fmt"

	standingsdomain "github.com/Black-And-White-Club/tabroom/app/modules/standings/domain"
	standingsevents "github.com/Black-And-White-Club/tabroom/app/modules/standings/domain/events"
	standingsdb "github.com/Black-And-White-Club/tabroom/app/modules/standings/infrastructure/repositories"
	"github.com/Black-And-White-Club/tabroom/internal/attr"
	"github.com/Black-And-White-Club/tabroom/internal/results"
	"github.com/go-playground/validator/v10"
	"github.com/uptrace/bun"
)

var validate = validator.New()

// ConfigureEvent creates or replaces the tabulation setup of an event.
func (s *StandingsService) ConfigureEvent(ctx context.Context, setup EventSetup) (*EventSetup, error) {
	if err := validate.Struct(setup); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidEventSetup, err)
	}

	order := standingsdomain.DefaultTiebreakerOrder
	if len(setup.TiebreakerOrder) > 0 {
		parsed, err := standingsdomain.ParseTiebreakerOrder(setup.TiebreakerOrder)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidTiebreakerOrder, err)
		}
		order = parsed
	}
	setup.TiebreakerOrder = standingsdomain.OrderStrings(order)

	configureTx := func(ctx context.Context, db bun.IDB) (results.OperationResult[EventSetup, error], error) {
		err := s.repo.UpsertEventConfig(ctx, db, &standingsdb.EventConfig{
			EventID:         setup.EventID,
			TournamentID:    setup.TournamentID,
			Name:            setup.Name,
			TiebreakerOrder: setup.TiebreakerOrder,
			RegistrationIDs: setup.RegistrationIDs,
			BreakCount:      setup.BreakCount,
		})
		if err != nil {
			return results.OperationResult[EventSetup, error]{}, err
		}
		return results.SuccessResult[EventSetup, error](setup), nil
	}

	result, err := withTelemetry(s, ctx, "ConfigureEvent", setup.EventID, func(ctx context.Context) (results.OperationResult[EventSetup, error], error) {
		return runInTx(s, ctx, configureTx)
	})
	if err != nil {
		return nil, err
	}

	if err := s.requestRecompute(ctx, setup.EventID); err != nil {
		return nil, err
	}
	return result.Success, nil
}

// UpdateTiebreakerOrder validates and stores a new order, then requests a recompute.
func (s *StandingsService) UpdateTiebreakerOrder(ctx context.Context, eventID string, names []string) (TiebreakerOperationResult, error) {
	result, err := withTelemetry(s, ctx, "UpdateTiebreakerOrder", eventID, func(ctx context.Context) (TiebreakerOperationResult, error) {
		order, err := standingsdomain.ParseTiebreakerOrder(names)
		if err != nil {
			return tiebreakerFailure(eventID, fmt.Errorf("%w: %v", ErrInvalidTiebreakerOrder, err).Error(), standingsevents.FailureInvalid), nil
		}
		stored := standingsdomain.OrderStrings(order)

		return runInTx(s, ctx, func(ctx context.Context, db bun.IDB) (TiebreakerOperationResult, error) {
			if err := s.repo.UpdateTiebreakerOrder(ctx, db, eventID, stored); err != nil {
				if errors.Is(err, standingsdb.ErrNoRowsAffected) {
					return tiebreakerFailure(eventID, ErrEventNotFound.Error(), standingsevents.FailureNotFound), nil
				}
				return TiebreakerOperationResult{}, fmt.Errorf("failed to store order: %w", err)
			}
			return TiebreakerOperationResult{Success: &standingsevents.TiebreakersUpdatedPayloadV1{
				EventID: eventID,
				Order:   stored,
			}}, nil
		})
	})
	if err != nil || !result.IsSuccess() {
		return result, err
	}

	if err := s.requestRecompute(ctx, eventID); err != nil {
		s.logger.ErrorContext(ctx, "Order stored but recompute was not requested",
			attr.ExtractCorrelationID(ctx),
			attr.String("event_id", eventID),
			attr.Error(err),
		)
		return result, err
	}
	return result, nil
}

func tiebreakerFailure(eventID, reason string, code standingsevents.FailureCode) TiebreakerOperationResult {
	return TiebreakerOperationResult{Failure: &standingsevents.TiebreakersUpdateFailedPayloadV1{
		EventID: eventID,
		Reason:  reason,
		Code:    code,
	}}
}

// eventOrder returns the stored order of cfg, falling back to the default
// when the stored value no longer parses.
func (s *StandingsService) eventOrder(ctx context.Context, cfg *standingsdb.EventConfig) []standingsdomain.TiebreakerType {
	if len(cfg.TiebreakerOrder) == 0 {
		return standingsdomain.DefaultTiebreakerOrder
	}
	order, err := standingsdomain.ParseTiebreakerOrder(cfg.TiebreakerOrder)
	if err != nil {
		s.logger.WarnContext(ctx, "Stored tiebreaker order is invalid, using default",
			attr.String("event_id", cfg.EventID),
			attr.Error(err),
		)
		return standingsdomain.DefaultTiebreakerOrder
	}
	return order
}

func (s *StandingsService) loadEvent(ctx context.Context, eventID string) (*standingsdb.EventConfig, error) {
	cfg, err := s.repo.GetEventConfig(ctx, nil, eventID)
	if err != nil {
		if errors.Is(err, standingsdb.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrEventNotFound, eventID)
		}
		return nil, fmt.Errorf("failed to load event: %w", err)
	}
	return cfg, nil
}
