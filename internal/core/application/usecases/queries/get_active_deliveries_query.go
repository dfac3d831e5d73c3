package queries

import (
	"context"
	"errors"
	"time"

	"orderflow/internal/pkg/guard"
)

var ErrGetActiveDeliveriesQueryIsNotConstructed = errors.New(
	"GetActiveDeliveriesQuery must be created via NewGetActiveDeliveriesQuery constructor",
)

// GetActiveDeliveriesQuery lists the orders currently streaming locations.
type GetActiveDeliveriesQuery struct {
	guard guard.ConstructorGuard
}

func NewGetActiveDeliveriesQuery() GetActiveDeliveriesQuery {
	return GetActiveDeliveriesQuery{guard: guard.NewConstructorGuard()}
}

func (q GetActiveDeliveriesQuery) Validate() error {
	return q.guard.Validate(ErrGetActiveDeliveriesQueryIsNotConstructed)
}

// GetActiveDeliveriesQueryResponse describes one delivery run.
type GetActiveDeliveriesQueryResponse struct {
	OrderID   string
	Sent      int
	Total     int
	StartedAt time.Time
}

// DeliveryRuns is implemented by the delivery tracker.
type DeliveryRuns interface {
	Active() []GetActiveDeliveriesQueryResponse
}

// GetActiveDeliveriesQueryHandler lists running deliveries.
type GetActiveDeliveriesQueryHandler struct {
	runs DeliveryRuns
}

func NewGetActiveDeliveriesQueryHandler(runs DeliveryRuns) GetActiveDeliveriesQueryHandler {
	return GetActiveDeliveriesQueryHandler{runs: runs}
}

// Handle returns the runs sorted by order id.
func (h GetActiveDeliveriesQueryHandler) Handle(
	ctx context.Context,
	query GetActiveDeliveriesQuery,
) ([]GetActiveDeliveriesQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return h.runs.Active(), nil
}
