package commands

import (
	"errors"

	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/pkg/guard"
)

var ErrCheckInventoryCommandIsNotConstructed = errors.New(
	"CheckInventoryCommand must be created via NewCheckInventoryCommand constructor",
)

// CheckInventoryCommand asks the warehouse to evaluate an order against stock.
type CheckInventoryCommand struct { //nolint:recvcheck //using for validation
	order *order.Order

	guard guard.ConstructorGuard
}

// NewCheckInventoryCommand rejects orders whose status is past the warehouse.
func NewCheckInventoryCommand(o *order.Order) (CheckInventoryCommand, error) {
	if err := validateOrder(o); err != nil {
		return CheckInventoryCommand{}, err
	}
	if err := o.Status().ValidateInventoryCheck(); err != nil {
		return CheckInventoryCommand{}, err
	}
	return CheckInventoryCommand{order: o.Clone(), guard: guard.NewConstructorGuard()}, nil
}

func (c CheckInventoryCommand) Validate() error {
	return c.guard.Validate(ErrCheckInventoryCommandIsNotConstructed)
}

// Order returns the snapshot to confirm.
func (c CheckInventoryCommand) Order() *order.Order {
	return c.order.Clone()
}
