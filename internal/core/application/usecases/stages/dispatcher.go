// Package stages routes inbound envelopes to the event-triggered pipeline stages.
//
// Event-triggered stages fail open: a fault is logged, counted and, when a dead
// letter topic is enabled, republished as orderFailed. It never reaches the
// transport, so webhooks answer 200 and consumers commit their offsets.
package stages

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"orderflow/internal/core/application/usecases/commands"
	"orderflow/internal/core/domain/model/event"
	"orderflow/internal/core/ports"
	"orderflow/internal/pkg/metrics"
)

// Stage names used in logs and metrics.
const (
	StageFieldService = "field_service"
	StageWarehouse    = "warehouse"
)

// FieldServiceHandler handles orders routed to the field service stage.
type FieldServiceHandler interface {
	Handle(ctx context.Context, cmd commands.ProcessFieldServiceEventCommand) error
}

// WarehouseHandler handles orders routed to the warehouse stage.
type WarehouseHandler interface {
	Handle(ctx context.Context, cmd commands.CheckInventoryCommand) error
}

// Dispatcher feeds envelopes to the stage handlers.
type Dispatcher struct {
	fieldService FieldServiceHandler
	warehouse    WarehouseHandler
	publisher    ports.EventPublisher
	deadLetter   bool
	logger       *slog.Logger
}

// NewDispatcher wires the stages. With deadLetter set, failures are also
// published to event.TopicDeadLetter.
func NewDispatcher(
	fieldService FieldServiceHandler,
	warehouse WarehouseHandler,
	publisher ports.EventPublisher,
	deadLetter bool,
	logger *slog.Logger,
) *Dispatcher {
	return &Dispatcher{
		fieldService: fieldService,
		warehouse:    warehouse,
		publisher:    publisher,
		deadLetter:   deadLetter,
		logger:       logger.With("component", "stage_dispatcher"),
	}
}

// FieldService runs the field-service stage for one envelope.
func (d *Dispatcher) FieldService(ctx context.Context, env event.Envelope) {
	d.run(ctx, StageFieldService, env, func(ctx context.Context) error {
		o, err := env.Data.ToOrder()
		if err != nil {
			return err
		}
		cmd, err := commands.NewProcessFieldServiceEventCommand(o)
		if err != nil {
			return err
		}
		return d.fieldService.Handle(ctx, cmd)
	})
}

// Warehouse runs the inventory check for one envelope.
func (d *Dispatcher) Warehouse(ctx context.Context, env event.Envelope) {
	d.run(ctx, StageWarehouse, env, func(ctx context.Context) error {
		o, err := env.Data.ToOrder()
		if err != nil {
			return err
		}
		cmd, err := commands.NewCheckInventoryCommand(o)
		if err != nil {
			return err
		}
		return d.warehouse.Handle(ctx, cmd)
	})
}

func (d *Dispatcher) run(ctx context.Context, stage string, env event.Envelope, handle func(context.Context) error) {
	logger := d.logger.With(
		"stage", stage,
		"event_id", env.EventID(),
		"event_type", string(env.EventType),
		"order_id", string(env.Data.OrderID),
		"status", env.Data.Status,
	)

	if ignored(env.EventType) {
		logger.DebugContext(ctx, "event ignored")
		metrics.StageEventsTotal.WithLabelValues(stage, metrics.OutcomeIgnored).Inc()
		return
	}

	start := time.Now()
	err := safely(ctx, handle)
	if err == nil {
		logger.InfoContext(ctx, "event processed", "duration", time.Since(start))
		metrics.StageEventsTotal.WithLabelValues(stage, metrics.OutcomeSuccess).Inc()
		return
	}

	logger.ErrorContext(ctx, "event processing failed", "error", err)
	metrics.StageEventsTotal.WithLabelValues(stage, metrics.OutcomeFailure).Inc()

	if !d.deadLetter {
		return
	}
	if pubErr := d.publisher.Publish(ctx, event.TopicDeadLetter, event.Failed(env)); pubErr != nil {
		logger.ErrorContext(ctx, "dead letter publish failed", "error", pubErr)
	}
}

// ignored reports event types that no stage consumes. Reprocessing them would
// restart deliveries.
func ignored(t event.Type) bool {
	return t == event.SendingCoordinates || t == event.OrderFailed
}

func safely(ctx context.Context, handle func(context.Context) error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("unhandled fault: %v", r)
		}
	}()
	return handle(ctx)
}
