package commands

import (
	"errors"

	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/pkg/guard"
)

var ErrReceiveOrderCommandIsNotConstructed = errors.New(
	"ReceiveOrderCommand must be created via NewReceiveOrderCommand constructor",
)

// ReceiveOrderCommand carries an order submitted to intake.
type ReceiveOrderCommand struct { //nolint:recvcheck //using for validation
	order *order.Order

	guard guard.ConstructorGuard
}

// NewReceiveOrderCommand copies o so later changes by the caller are not seen.
func NewReceiveOrderCommand(o *order.Order) (ReceiveOrderCommand, error) {
	if err := validateOrder(o); err != nil {
		return ReceiveOrderCommand{}, err
	}
	return ReceiveOrderCommand{order: o.Clone(), guard: guard.NewConstructorGuard()}, nil
}

func (c ReceiveOrderCommand) Validate() error {
	return c.guard.Validate(ErrReceiveOrderCommandIsNotConstructed)
}

// Order returns a copy of the submitted snapshot.
func (c ReceiveOrderCommand) Order() *order.Order {
	return c.order.Clone()
}
