package ports

import (
	"context"
	"errors"

	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/core/domain/services"
)

// ErrDeliveryInProgress is returned for an order that already has a run or a
// pending reservation.
var ErrDeliveryInProgress = errors.New("delivery already in progress")

// DeliveryTracker runs the paced location stream of one order in the background.
type DeliveryTracker interface {
	// Reserve claims orderID before any event of a new run is published. A second
	// claim fails with ErrDeliveryInProgress. release drops the claim and does
	// nothing once Track has started the run.
	Reserve(orderID string) (release func(), err error)

	// Track starts streaming plan for o, taking over a reservation when there is
	// one. It returns once the run is registered; a second run for an order
	// already streaming is rejected with ErrDeliveryInProgress.
	Track(ctx context.Context, o *order.Order, plan services.DeliveryPlan) error
}
