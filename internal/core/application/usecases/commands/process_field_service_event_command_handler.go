package commands

import (
	"context"
	"errors"
	"log/slog"

	"orderflow/internal/core/domain/model/event"
	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/core/domain/services"
	"orderflow/internal/core/ports"
	"orderflow/internal/pkg/errs"
)

// ProcessFieldServiceEventCommandHandler is the field-service stage.
//
// A pending_warehouse order is re-queued: one newOrderReceived event with status
// waiting_for_warehouse goes to the warehouse topic and no route is planned.
// Any other order is geocoded, routed from the warehouse, sampled, announced with
// an initial SendingCoordinates event on the tracking topic and handed to the
// delivery tracker, which streams the waypoints in the background.
type ProcessFieldServiceEventCommandHandler struct {
	publisher ports.EventPublisher
	geocoder  ports.Geocoder
	router    ports.Router
	tracker   ports.DeliveryTracker
	planner   services.DeliveryPlanner
	warehouse kernel.Coordinate
	logger    *slog.Logger
}

// NewProcessFieldServiceEventCommandHandler builds the field service stage.
func NewProcessFieldServiceEventCommandHandler(
	publisher ports.EventPublisher,
	geocoder ports.Geocoder,
	router ports.Router,
	tracker ports.DeliveryTracker,
	planner services.DeliveryPlanner,
	warehouse kernel.Coordinate,
	logger *slog.Logger,
) ProcessFieldServiceEventCommandHandler {
	return ProcessFieldServiceEventCommandHandler{
		publisher: publisher,
		geocoder:  geocoder,
		router:    router,
		tracker:   tracker,
		planner:   planner,
		warehouse: warehouse,
		logger:    logger.With("component", "field_service_stage"),
	}
}

// Handle forwards orders waiting for the warehouse and starts a delivery for
// orders that are ready for pickup.
func (h *ProcessFieldServiceEventCommandHandler) Handle(ctx context.Context, cmd ProcessFieldServiceEventCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	o := cmd.Order()
	if cmd.RequiresWarehouse() {
		return h.requeue(ctx, o)
	}
	return h.startDelivery(ctx, o)
}

func (h *ProcessFieldServiceEventCommandHandler) requeue(ctx context.Context, o *order.Order) error {
	if err := o.AwaitWarehouse(); err != nil {
		return err
	}

	env, err := event.NewEnvelope(event.NewOrderReceived, event.SubjectNewOrder, o)
	if err != nil {
		return err
	}

	return h.publisher.Publish(ctx, event.TopicWarehouse, env)
}

// startDelivery claims the order on the tracker first, so a redelivered event
// never publishes a second initial route into a live stream.
func (h *ProcessFieldServiceEventCommandHandler) startDelivery(ctx context.Context, o *order.Order) error {
	release, err := h.tracker.Reserve(o.ID())
	if errors.Is(err, ports.ErrDeliveryInProgress) {
		h.logger.InfoContext(ctx, "delivery already in progress, event ignored", "order_id", o.ID())
		return nil
	}
	if err != nil {
		return err
	}
	defer release()

	deliveryPoint, err := h.geocoder.Geocode(ctx, o.DeliveryAddress())
	if err != nil {
		return err
	}

	route, err := h.router.Route(ctx, h.warehouse, deliveryPoint)
	if err != nil {
		return err
	}

	plan, err := h.planner.Plan(o, h.warehouse, deliveryPoint, route)
	if err != nil {
		return err
	}

	h.logger.InfoContext(ctx, "route planned",
		"order_id", o.ID(),
		"route_points", route.Len(),
		"waypoints", len(plan.Waypoints),
		"origin", route.Origin().String(),
		"destination", route.Destination().String(),
	)

	env, err := event.NewEnvelope(event.SendingCoordinates, event.SubjectNewOrder, o)
	if err != nil {
		return err
	}

	// a lost initial event does not stop the delivery
	if err = h.publisher.Publish(ctx, event.TopicTracking, env); err != nil {
		if !errors.Is(err, errs.ErrTransportFailed) {
			return err
		}
		h.logger.WarnContext(ctx, "initial route event not delivered", "order_id", o.ID(), "error", err)
	}

	return h.tracker.Track(ctx, o, plan)
}
