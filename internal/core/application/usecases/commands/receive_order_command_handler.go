package commands

import (
	"context"

	"orderflow/internal/core/domain/model/event"
	"orderflow/internal/core/ports"
)

// ReceiveOrderCommandHandler is the intake stage. A new order moves to
// pending_warehouse; any other status is forwarded as submitted.
//
// Example:
//
//	handler := NewReceiveOrderCommandHandler(publisher)
//	cmd, _ := NewReceiveOrderCommand(o)
//	if err := handler.Handle(ctx, cmd); err != nil {
//	    // *errs.TransportError carries the bus status code
//	}
type ReceiveOrderCommandHandler struct {
	publisher ports.EventPublisher
}

// NewReceiveOrderCommandHandler publishes accepted orders through publisher.
func NewReceiveOrderCommandHandler(publisher ports.EventPublisher) ReceiveOrderCommandHandler {
	return ReceiveOrderCommandHandler{publisher: publisher}
}

// Handle publishes exactly one newOrderReceived event to the orders topic and
// returns the publish error unchanged.
func (h *ReceiveOrderCommandHandler) Handle(ctx context.Context, cmd ReceiveOrderCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	o := cmd.Order()
	if err := o.Receive(); err != nil {
		return err
	}

	env, err := event.NewEnvelope(event.NewOrderReceived, event.SubjectNewOrder, o)
	if err != nil {
		return err
	}

	return h.publisher.Publish(ctx, event.TopicOrders, env)
}
