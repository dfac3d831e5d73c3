package order

import (
	"errors"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/pkg/errs"
	"orderflow/internal/pkg/guard"
)

// DriverLocationEventType tags every driver location payload.
const DriverLocationEventType = "RouteData"

var ErrDriverLocationIsNotConstructed = errs.NewValueIsRequiredError(
	"driver location must be created via NewDriverLocation")

// DriverLocation is the position payload streamed while an order is Delivering.
// Destination stays the same for every update of one route.
type DriverLocation struct {
	current     kernel.Coordinate
	destination kernel.Coordinate
	guard       guard.ConstructorGuard
}

// NewDriverLocation pairs the driver position with the delivery point.
func NewDriverLocation(current, destination kernel.Coordinate) (DriverLocation, error) {
	if err := errors.Join(current.Validate(), destination.Validate()); err != nil {
		return DriverLocation{}, err
	}
	return DriverLocation{current: current, destination: destination, guard: guard.NewConstructorGuard()}, nil
}

func (d DriverLocation) Validate() error {
	return d.guard.Validate(ErrDriverLocationIsNotConstructed)
}

func (d DriverLocation) Current() kernel.Coordinate {
	return d.current
}

func (d DriverLocation) Destination() kernel.Coordinate {
	return d.destination
}

// EventType is the wire tag of the location payload.
func (d DriverLocation) EventType() string {
	return DriverLocationEventType
}
