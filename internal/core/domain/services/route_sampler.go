package services

import (
	"fmt"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/pkg/errs"
)

// DefaultWaypointCount is the number of sampled points streamed before the destination.
const DefaultWaypointCount = 9

// RouteSampler picks evenly spaced waypoints from a route.
//
// For a route of N points and a target T the stride is max(1, (N-1)/T) using
// integer division. Indices 0, stride, 2*stride, ... below N-1 are taken, cut to
// T, and the destination N-1 is always appended. The result therefore has at
// most T+1 entries, starts at the origin and ends at the destination exactly once.
//
// Example:
//
//	sampler, _ := services.NewRouteSampler(9)
//	waypoints, err := sampler.Sample(route) // 11-point route: indices 0..8, 10
type RouteSampler struct {
	target int
}

// NewRouteSampler returns a sampler that keeps at most target waypoints
// before the destination.
func NewRouteSampler(target int) (RouteSampler, error) {
	if target < 1 {
		return RouteSampler{}, errs.NewValueIsOutOfRangeError("waypoint count", target, 1, "unbounded")
	}
	return RouteSampler{target: target}, nil
}

// Sample returns the waypoints in increasing index order.
func (s RouteSampler) Sample(route kernel.Route) ([]kernel.Waypoint, error) {
	if s.target < 1 {
		return nil, errs.NewValueIsOutOfRangeError("waypoint count", s.target, 1, "unbounded")
	}
	if err := route.Validate(); err != nil {
		return nil, err
	}

	last := route.LastIndex()
	stride := max(1, last/s.target)

	waypoints := make([]kernel.Waypoint, 0, s.target+1)
	for i := 0; i < last && len(waypoints) < s.target; i += stride {
		wp, err := kernel.NewWaypoint(i, route.At(i))
		if err != nil {
			return nil, fmt.Errorf("waypoint %d: %w", i, err)
		}
		waypoints = append(waypoints, wp)
	}

	destination, err := kernel.NewWaypoint(last, route.Destination())
	if err != nil {
		return nil, fmt.Errorf("waypoint %d: %w", last, err)
	}
	return append(waypoints, destination), nil
}
