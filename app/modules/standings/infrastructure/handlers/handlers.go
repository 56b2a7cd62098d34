package standingshandlers

import (
	"context"
	"log/slog"

	standingsservice "github.com/Black-And-White-Club/tabroom/app/modules/standings/application"
	standingsevents "github.com/Black-And-White-Club/tabroom/app/modules/standings/domain/events"
	"github.com/Black-And-White-Club/tabroom/internal/handlerwrapper"
	"go.opentelemetry.io/otel/trace"
)

// StandingsHandlers implements the Handlers interface.
type StandingsHandlers struct {
	service standingsservice.Service
	logger  *slog.Logger
	tracer  trace.Tracer
}

// NewStandingsHandlers creates a new StandingsHandlers instance.
func NewStandingsHandlers(
	service standingsservice.Service,
	logger *slog.Logger,
	tracer trace.Tracer,
) Handlers {
	return &StandingsHandlers{
		service: service,
		logger:  logger,
		tracer:  tracer,
	}
}

// HandleBallotSubmitted stores a ballot. Rejections are published, not retried.
func (h *StandingsHandlers) HandleBallotSubmitted(ctx context.Context, payload *standingsevents.BallotSubmittedPayloadV1) ([]handlerwrapper.Result, error) {
	ctx, span := h.tracer.Start(ctx, "StandingsHandlers.HandleBallotSubmitted")
	defer span.End()

	ballot := payload.Ballot
	h.logger.InfoContext(ctx, "Ballot received",
		slog.String("event_id", ballot.EventID),
		slog.String("pairing_id", ballot.PairingID),
		slog.Int("round", ballot.RoundNumber),
	)

	result, err := h.service.SubmitBallot(ctx, ballot)
	if err != nil {
		h.logger.ErrorContext(ctx, "Failed to submit ballot",
			slog.String("pairing_id", ballot.PairingID),
			slog.String("error", err.Error()),
		)
		return nil, err
	}

	if result.IsFailure() {
		return []handlerwrapper.Result{{
			Topic:   replyTopic(ctx, standingsevents.BallotRejectedV1),
			Payload: result.Failure,
		}}, nil
	}

	return []handlerwrapper.Result{{
		Topic:   replyTopic(ctx, standingsevents.BallotRecordedV1),
		Payload: result.Success,
	}}, nil
}

// HandleRecomputeRequested runs a standings pass and publishes the outcome.
func (h *StandingsHandlers) HandleRecomputeRequested(ctx context.Context, payload *standingsevents.RecomputeRequestedPayloadV1) ([]handlerwrapper.Result, error) {
	if payload.EventID == "" {
		h.logger.WarnContext(ctx, "Recompute requested without an event id")
		return nil, nil
	}

	ctx, span := h.tracer.Start(ctx, "StandingsHandlers.HandleRecomputeRequested")
	defer span.End()

	result, err := h.service.RecomputeStandings(ctx, payload.EventID)
	if err != nil {
		h.logger.ErrorContext(ctx, "Failed to recompute standings",
			slog.String("event_id", payload.EventID),
			slog.String("error", err.Error()),
		)
		return nil, err
	}

	if result.IsFailure() {
		return []handlerwrapper.Result{{
			Topic:   standingsevents.RecomputeFailedV1,
			Payload: result.Failure,
		}}, nil
	}

	h.logger.InfoContext(ctx, "Standings recomputed",
		slog.String("event_id", payload.EventID),
		slog.Int("competitors", result.Success.Competitors),
	)
	return []handlerwrapper.Result{{
		Topic:   standingsevents.StandingsRecomputedV1,
		Payload: result.Success,
	}}, nil
}

// HandleTiebreakersUpdateRequested validates and stores a new tiebreaker order.
func (h *StandingsHandlers) HandleTiebreakersUpdateRequested(ctx context.Context, payload *standingsevents.TiebreakersUpdateRequestedPayloadV1) ([]handlerwrapper.Result, error) {
	ctx, span := h.tracer.Start(ctx, "StandingsHandlers.HandleTiebreakersUpdateRequested")
	defer span.End()

	result, err := h.service.UpdateTiebreakerOrder(ctx, payload.EventID, payload.Order)
	if err != nil {
		h.logger.ErrorContext(ctx, "Failed to update tiebreaker order",
			slog.String("event_id", payload.EventID),
			slog.String("error", err.Error()),
		)
		return nil, err
	}

	if result.IsFailure() {
		return []handlerwrapper.Result{{
			Topic:   replyTopic(ctx, standingsevents.TiebreakersUpdateFailedV1),
			Payload: result.Failure,
		}}, nil
	}

	return []handlerwrapper.Result{{
		Topic:   replyTopic(ctx, standingsevents.TiebreakersUpdatedV1),
		Payload: result.Success,
	}}, nil
}

// replyTopic prefers the reply subject of a request over the static topic.
func replyTopic(ctx context.Context, fallback string) string {
	if rt, ok := ctx.Value(handlerwrapper.CtxKeyReplyTo).(string); ok && rt != "" {
		return rt
	}
	return fallback
}
