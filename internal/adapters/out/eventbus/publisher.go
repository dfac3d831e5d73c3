package eventbus

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"orderflow/internal/core/domain/model/event"
	"orderflow/internal/pkg/errs"
	"orderflow/internal/pkg/metrics"
)

// Transport delivers one envelope to the bus.
type Transport interface {
	Name() string
	Send(ctx context.Context, topic event.Topic, env event.Envelope) error
}

// Publisher decorates a Transport with logging and metrics.
type Publisher struct {
	transport Transport
	logger    *slog.Logger
}

// NewPublisher sends through transport.
func NewPublisher(transport Transport, logger *slog.Logger) *Publisher {
	return &Publisher{
		transport: transport,
		logger:    logger.With("component", "event_publisher", "transport", transport.Name()),
	}
}

// Publish sends env and logs the outcome.
func (p *Publisher) Publish(ctx context.Context, topic event.Topic, env event.Envelope) error {
	start := time.Now()
	err := p.transport.Send(ctx, topic, env)
	metrics.PublishDuration.WithLabelValues(p.transport.Name()).Observe(time.Since(start).Seconds())

	if err != nil {
		metrics.EventsPublishedTotal.WithLabelValues(string(topic), string(env.EventType), metrics.OutcomeFailure).Inc()

		attrs := []any{
			"topic", topic,
			"event_id", env.ID.String(),
			"event_type", env.EventType,
			"order_id", env.Data.OrderID,
			"error", err,
		}
		var te *errs.TransportError
		if errors.As(err, &te) {
			attrs = append(attrs, "status", te.StatusCode, "body", te.Body)
		}
		p.logger.ErrorContext(ctx, "Failed to send event", attrs...)
		return err
	}

	metrics.EventsPublishedTotal.WithLabelValues(string(topic), string(env.EventType), metrics.OutcomeSuccess).Inc()
	p.logger.DebugContext(ctx, "Event sent",
		"topic", topic,
		"event_id", env.ID.String(),
		"event_type", env.EventType,
		"subject", env.Subject,
		"order_id", env.Data.OrderID,
		"status", env.Data.Status,
	)
	return nil
}
