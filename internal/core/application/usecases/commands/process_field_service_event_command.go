package commands

import (
	"errors"

	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/pkg/guard"
)

var ErrProcessFieldServiceEventCommandIsNotConstructed = errors.New(
	"ProcessFieldServiceEventCommand must be created via NewProcessFieldServiceEventCommand constructor",
)

// ProcessFieldServiceEventCommand carries an order event consumed by the
// field-service stage.
type ProcessFieldServiceEventCommand struct { //nolint:recvcheck //using for validation
	order *order.Order

	guard guard.ConstructorGuard
}

// NewProcessFieldServiceEventCommand rejects unconstructed orders.
func NewProcessFieldServiceEventCommand(o *order.Order) (ProcessFieldServiceEventCommand, error) {
	if err := validateOrder(o); err != nil {
		return ProcessFieldServiceEventCommand{}, err
	}
	if o.Status() != order.PendingWarehouse {
		if err := o.Status().ValidateStartDelivery(); err != nil {
			return ProcessFieldServiceEventCommand{}, err
		}
	}
	return ProcessFieldServiceEventCommand{order: o.Clone(), guard: guard.NewConstructorGuard()}, nil
}

func (c ProcessFieldServiceEventCommand) Validate() error {
	return c.guard.Validate(ErrProcessFieldServiceEventCommandIsNotConstructed)
}

func (c ProcessFieldServiceEventCommand) Order() *order.Order {
	return c.order.Clone()
}

// RequiresWarehouse reports whether the order goes back to the warehouse
// instead of starting a delivery.
func (c ProcessFieldServiceEventCommand) RequiresWarehouse() bool {
	return c.order.Status() == order.PendingWarehouse
}
