// Package handlerwrapper adapts typed payload handlers to watermill handler funcs.
package handlerwrapper

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/Black-And-White-Club/tabroom/internal/attr"
	"github.com/Black-And-White-Club/tabroom/internal/observability"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// TopicMetadataKey names the metadata entry the event bus publishes to when
// the router hands it an empty topic.
const TopicMetadataKey = "topic"

// ReplyToMetadataKey carries an optional reply subject on request messages.
const ReplyToMetadataKey = "reply_to"

type ctxKey string

// CtxKeyReplyTo holds the reply subject of the incoming message, when set.
const CtxKeyReplyTo ctxKey = "reply_to"

// Result is one outgoing message produced by a handler.
type Result struct {
	Topic    string
	Payload  any
	Metadata map[string]string
}

// WrapTransformingTyped decodes the JSON payload into T, runs handler and turns
// its results into outgoing messages. Malformed payloads are logged and acked.
func WrapTransformingTyped[T any](
	handlerName string,
	logger *slog.Logger,
	tracer trace.Tracer,
	metrics observability.Metrics,
	handler func(context.Context, *T) ([]Result, error),
) message.HandlerFunc {
	if metrics == nil {
		metrics = observability.NoOpMetrics{}
	}

	return func(msg *message.Message) ([]*message.Message, error) {
		ctx := attr.WithCorrelationID(msg.Context(), middleware.MessageCorrelationID(msg))
		if rt := msg.Metadata.Get(ReplyToMetadataKey); rt != "" {
			ctx = context.WithValue(ctx, CtxKeyReplyTo, rt)
		}

		ctx, span := tracer.Start(ctx, handlerName, trace.WithAttributes(
			attribute.String("message_id", msg.UUID),
			attribute.String("correlation_id", attr.CorrelationID(ctx)),
		))
		defer span.End()

		metrics.RecordHandlerAttempt(ctx, handlerName)
		start := time.Now()
		defer func() {
			metrics.RecordHandlerDuration(ctx, handlerName, time.Since(start))
		}()

		payload := new(T)
		if err := json.Unmarshal(msg.Payload, payload); err != nil {
			logger.ErrorContext(ctx, "Dropping message with malformed payload",
				attr.ExtractCorrelationID(ctx),
				attr.String("handler", handlerName),
				attr.String("message_id", msg.UUID),
				attr.Error(err),
			)
			metrics.RecordHandlerFailure(ctx, handlerName)
			span.RecordError(err)
			return nil, nil
		}

		results, err := handler(ctx, payload)
		if err != nil {
			logger.ErrorContext(ctx, "Handler failed",
				attr.ExtractCorrelationID(ctx),
				attr.String("handler", handlerName),
				attr.Error(err),
			)
			metrics.RecordHandlerFailure(ctx, handlerName)
			span.RecordError(err)
			return nil, err
		}

		out := make([]*message.Message, 0, len(results))
		for _, r := range results {
			m, err := NewMessage(ctx, r)
			if err != nil {
				metrics.RecordHandlerFailure(ctx, handlerName)
				span.RecordError(err)
				return nil, fmt.Errorf("%s: %w", handlerName, err)
			}
			out = append(out, m)
		}

		metrics.RecordHandlerSuccess(ctx, handlerName)
		return out, nil
	}
}

// NewMessage encodes r as a watermill message carrying the correlation ID of ctx
// and the destination topic in its metadata.
func NewMessage(ctx context.Context, r Result) (*message.Message, error) {
	if r.Topic == "" {
		return nil, fmt.Errorf("result has no topic")
	}
	data, err := json.Marshal(r.Payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload for %s: %w", r.Topic, err)
	}

	m := message.NewMessage(uuid.NewString(), data)
	for k, v := range r.Metadata {
		m.Metadata.Set(k, v)
	}
	m.Metadata.Set(TopicMetadataKey, r.Topic)

	correlationID := attr.CorrelationID(ctx)
	if correlationID == "" {
		correlationID = uuid.NewString()
	}
	middleware.SetCorrelationID(correlationID, m)
	m.SetContext(ctx)
	return m, nil
}
