package commands

import (
	"context"
	"log/slog"

	"orderflow/internal/core/domain/model/event"
	"orderflow/internal/core/ports"
)

// CheckInventoryCommandHandler is the warehouse stage. It never reserves stock.
type CheckInventoryCommandHandler struct {
	inventory InventoryChecker
	publisher ports.EventPublisher
	logger    *slog.Logger
}

// NewCheckInventoryCommandHandler builds the warehouse stage over the given
// stock view.
func NewCheckInventoryCommandHandler(
	inventory InventoryChecker,
	publisher ports.EventPublisher,
	logger *slog.Logger,
) CheckInventoryCommandHandler {
	return CheckInventoryCommandHandler{
		inventory: inventory,
		publisher: publisher,
		logger:    logger.With("component", "warehouse_stage"),
	}
}

// Handle publishes one orderConfirmed event to the orders topic, with status
// ready_for_pickup when every line is covered and pending_inventory otherwise.
func (h *CheckInventoryCommandHandler) Handle(ctx context.Context, cmd CheckInventoryCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	o := cmd.Order()
	fulfillable := h.inventory.IsFulfillable(o.Materials())
	if err := o.Confirm(fulfillable); err != nil {
		return err
	}
	if !fulfillable {
		h.logger.InfoContext(ctx, "order waiting for inventory",
			"order_id", o.ID(), "missing", h.inventory.Shortages(o.Materials()))
	}

	env, err := event.NewEnvelope(event.OrderConfirmed, event.SubjectNewOrder, o)
	if err != nil {
		return err
	}

	return h.publisher.Publish(ctx, event.TopicOrders, env)
}
