package kernel

import (
	"errors"
	"fmt"

	"orderflow/internal/pkg/errs"
	"orderflow/internal/pkg/guard"
)

// RouteMinPoints is the shortest route the router may return: origin and destination.
const RouteMinPoints = 2

var (
	ErrRouteIsNotConstructed    = errs.NewValueIsRequiredError("route must be created via NewRoute")
	ErrWaypointIsNotConstructed = errs.NewValueIsRequiredError("waypoint must be created via NewWaypoint")
)

// Route is the ordered polyline between the warehouse and a delivery address.
// The first point is the origin and the last is the destination.
type Route struct {
	points []Coordinate
	guard  guard.ConstructorGuard
}

// NewRoute copies points so later changes by the caller do not leak in.
func NewRoute(points []Coordinate) (Route, error) {
	if len(points) < RouteMinPoints {
		return Route{}, errs.NewValueIsInvalidErrorWithCause(
			"route",
			fmt.Errorf("%d points given, at least %d required", len(points), RouteMinPoints),
		)
	}

	var problems []error
	for i, p := range points {
		if err := p.Validate(); err != nil {
			problems = append(problems, fmt.Errorf("point %d: %w", i, err))
		}
	}
	if err := errors.Join(problems...); err != nil {
		return Route{}, err
	}

	copied := make([]Coordinate, len(points))
	copy(copied, points)

	return Route{points: copied, guard: guard.NewConstructorGuard()}, nil
}

func (r Route) Validate() error {
	return r.guard.Validate(ErrRouteIsNotConstructed)
}

// Len is the number of points, always at least two.
func (r Route) Len() int {
	return len(r.points)
}

// At returns the point at index i. It panics when i is out of range, like a slice.
func (r Route) At(i int) Coordinate {
	return r.points[i]
}

func (r Route) Origin() Coordinate {
	return r.points[0]
}

func (r Route) Destination() Coordinate {
	return r.points[len(r.points)-1]
}

// LastIndex is the index of the destination.
func (r Route) LastIndex() int {
	return len(r.points) - 1
}

// Waypoint is one sampled point of a route together with its index in that route.
type Waypoint struct {
	index      int
	coordinate Coordinate
	guard      guard.ConstructorGuard
}

// NewWaypoint rejects negative indexes and unconstructed coordinates.
func NewWaypoint(index int, coordinate Coordinate) (Waypoint, error) {
	if index < 0 {
		return Waypoint{}, errs.NewValueIsInvalidErrorWithCause("index", fmt.Errorf("%d is negative", index))
	}
	if err := coordinate.Validate(); err != nil {
		return Waypoint{}, err
	}
	return Waypoint{index: index, coordinate: coordinate, guard: guard.NewConstructorGuard()}, nil
}

func (w Waypoint) Validate() error {
	return w.guard.Validate(ErrWaypointIsNotConstructed)
}

func (w Waypoint) Index() int {
	return w.index
}

func (w Waypoint) Coordinate() Coordinate {
	return w.coordinate
}
