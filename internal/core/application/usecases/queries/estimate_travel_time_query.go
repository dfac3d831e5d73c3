package queries

import (
	"context"
	"errors"
	"math"
	"strings"
	"time"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/ports"
	"orderflow/internal/pkg/errs"
	"orderflow/internal/pkg/guard"
)

var ErrEstimateTravelTimeQueryIsNotConstructed = errors.New(
	"EstimateTravelTimeQuery must be created via NewEstimateTravelTimeQuery constructor",
)

// EstimateTravelTimeQuery asks how long the drive from the warehouse to a
// delivery address takes.
type EstimateTravelTimeQuery struct {
	address string
	guard   guard.ConstructorGuard
}

// NewEstimateTravelTimeQuery rejects a blank address.
func NewEstimateTravelTimeQuery(address string) (EstimateTravelTimeQuery, error) {
	address = strings.TrimSpace(address)
	if address == "" {
		return EstimateTravelTimeQuery{}, errs.NewValueIsRequiredError("delivery_address")
	}
	return EstimateTravelTimeQuery{address: address, guard: guard.NewConstructorGuard()}, nil
}

func (q EstimateTravelTimeQuery) Validate() error {
	return q.guard.Validate(ErrEstimateTravelTimeQueryIsNotConstructed)
}

// Address returns the trimmed delivery address.
func (q EstimateTravelTimeQuery) Address() string {
	return q.address
}

// EstimateTravelTimeQueryResponse carries the geocoded address and the drive.
// Minutes is rounded to two decimals.
type EstimateTravelTimeQueryResponse struct {
	DeliveryPoint kernel.Coordinate
	TravelTime    time.Duration
	// Minutes is TravelTime rounded to two decimals.
	Minutes float64
}

// EstimateTravelTimeQueryHandler geocodes a delivery address and asks the maps
// service how long the drive from the warehouse takes.
type EstimateTravelTimeQueryHandler struct {
	geocoder  ports.Geocoder
	timer     ports.TravelTimer
	warehouse kernel.Coordinate
}

// NewEstimateTravelTimeQueryHandler starts every estimate at warehouse.
func NewEstimateTravelTimeQueryHandler(
	geocoder ports.Geocoder,
	timer ports.TravelTimer,
	warehouse kernel.Coordinate,
) EstimateTravelTimeQueryHandler {
	return EstimateTravelTimeQueryHandler{geocoder: geocoder, timer: timer, warehouse: warehouse}
}

// Handle geocodes the address and asks the router for the drive from the
// warehouse. Lookup failures come back as *errs.LookupError.
func (h EstimateTravelTimeQueryHandler) Handle(
	ctx context.Context,
	query EstimateTravelTimeQuery,
) (EstimateTravelTimeQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return EstimateTravelTimeQueryResponse{}, err
	}

	deliveryPoint, err := h.geocoder.Geocode(ctx, query.Address())
	if err != nil {
		return EstimateTravelTimeQueryResponse{}, err
	}

	travelTime, err := h.timer.TravelTime(ctx, h.warehouse, deliveryPoint)
	if err != nil {
		return EstimateTravelTimeQueryResponse{}, err
	}

	return EstimateTravelTimeQueryResponse{
		DeliveryPoint: deliveryPoint,
		TravelTime:    travelTime,
		Minutes:       math.Round(travelTime.Minutes()*100) / 100,
	}, nil
}
