package standingsservice

import (
	"context"
	"errors"
	"fmt"

	standingsdomain "github.com/Black-And-White-Club/tabroom/app/modules/standings/domain"
	standingsevents "github.com/Black-And-White-Club/tabroom/app/modules/standings/domain/events"
	standingsdb "github.com/Black-And-White-Club/tabroom/app/modules/standings/infrastructure/repositories"
	"github.com/Black-And-White-Club/tabroom/internal/attr"
	"github.com/uptrace/bun"
)

// SubmitBallot validates and stores a ballot, then requests a recompute of
// the event. Invalid ballots come back as a failure payload and are not stored.
func (s *StandingsService) SubmitBallot(ctx context.Context, ballot standingsdomain.Ballot) (BallotOperationResult, error) {
	submitTx := func(ctx context.Context, db bun.IDB) (BallotOperationResult, error) {
		return s.submitBallotLogic(ctx, db, ballot)
	}

	result, err := withTelemetry(s, ctx, "SubmitBallot", ballot.PairingID, func(ctx context.Context) (BallotOperationResult, error) {
		if err := ballot.Validate(); err != nil {
			return rejectBallot(ballot, err.Error(), standingsevents.FailureInvalid), nil
		}
		return runInTx(s, ctx, submitTx)
	})
	if err != nil || !result.IsSuccess() {
		return result, err
	}

	if err := s.requestRecompute(ctx, ballot.EventID); err != nil {
		s.logger.ErrorContext(ctx, "Ballot stored but recompute was not requested",
			attr.ExtractCorrelationID(ctx),
			attr.String("event_id", ballot.EventID),
			attr.Error(err),
		)
		return result, err
	}
	return result, nil
}

func (s *StandingsService) submitBallotLogic(ctx context.Context, db bun.IDB, ballot standingsdomain.Ballot) (BallotOperationResult, error) {
	cfg, err := s.repo.GetEventConfig(ctx, db, ballot.EventID)
	if err != nil {
		if errors.Is(err, standingsdb.ErrNotFound) {
			return rejectBallot(ballot, ErrEventNotFound.Error(), standingsevents.FailureNotFound), nil
		}
		return BallotOperationResult{}, fmt.Errorf("failed to load event: %w", err)
	}
	if cfg.TournamentID != ballot.TournamentID {
		return rejectBallot(ballot, "ballot belongs to another tournament", standingsevents.FailureInvalid), nil
	}

	if err := s.repo.UpsertBallot(ctx, db, standingsdb.BallotFromDomain(ballot)); err != nil {
		return BallotOperationResult{}, fmt.Errorf("failed to store ballot: %w", err)
	}

	for _, id := range []string{ballot.AffID, ballot.NegID} {
		if id == "" {
			continue
		}
		if err := s.repo.AddRegistration(ctx, db, ballot.EventID, id); err != nil {
			return BallotOperationResult{}, fmt.Errorf("failed to register %s: %w", id, err)
		}
	}

	return BallotOperationResult{Success: &standingsevents.BallotRecordedPayloadV1{
		EventID:     ballot.EventID,
		PairingID:   ballot.PairingID,
		RoundNumber: ballot.RoundNumber,
		Final:       ballot.Final,
	}}, nil
}

func rejectBallot(ballot standingsdomain.Ballot, reason string, code standingsevents.FailureCode) BallotOperationResult {
	return BallotOperationResult{Failure: &standingsevents.BallotRejectedPayloadV1{
		EventID:   ballot.EventID,
		PairingID: ballot.PairingID,
		Reason:    reason,
		Code:      code,
	}}
}
