package ports

import (
	"context"

	"orderflow/internal/core/domain/model/event"
)

// EventPublisher makes exactly one attempt to hand an envelope to the bus.
// A non-success acknowledgment is returned as *errs.TransportError.
type EventPublisher interface {
	Publish(ctx context.Context, topic event.Topic, env event.Envelope) error
}
