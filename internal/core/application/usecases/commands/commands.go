// Package commands contains the pipeline stages as command + handler pairs.
// Each command carries one decoded order snapshot; each handler applies exactly
// one state transition and publishes the resulting snapshot.
//
//   - ReceiveOrder: intake, publishes newOrderReceived to the orders topic
//   - ProcessFieldServiceEvent: re-queues pending orders for the warehouse or
//     plans and starts a delivery
//   - CheckInventory: the warehouse check, publishes orderConfirmed
package commands

import (
	"orderflow/internal/core/domain/model/order"
)

// InventoryChecker answers whether stock covers a request and, when it does
// not, which materials are short. *inventory.Ledger implements it.
type InventoryChecker interface {
	IsFulfillable(requested []order.MaterialLine) bool
	Shortages(requested []order.MaterialLine) []string
}

func validateOrder(o *order.Order) error {
	if o == nil {
		return order.ErrOrderIsNotConstructed
	}
	return o.Validate()
}
