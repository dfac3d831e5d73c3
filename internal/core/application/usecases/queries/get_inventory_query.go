// Package queries contains read operations over the in-process state: the
// inventory ledger and the delivery runs in flight.
package queries

import (
	"errors"

	"orderflow/internal/pkg/guard"
)

var ErrGetInventoryQueryIsNotConstructed = errors.New(
	"GetInventoryQuery must be created via NewGetInventoryQuery constructor",
)

// GetInventoryQuery reads the current stock snapshot.
type GetInventoryQuery struct {
	guard guard.ConstructorGuard
}

// NewGetInventoryQuery takes no parameters.
func NewGetInventoryQuery() GetInventoryQuery {
	return GetInventoryQuery{guard: guard.NewConstructorGuard()}
}

func (q GetInventoryQuery) Validate() error {
	return q.guard.Validate(ErrGetInventoryQueryIsNotConstructed)
}

// GetInventoryQueryResponse is one stock line.
type GetInventoryQueryResponse struct {
	MaterialID string
	Quantity   int
}
