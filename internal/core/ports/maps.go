package ports

import (
	"context"
	"time"

	"orderflow/internal/core/domain/model/kernel"
)

// Geocoder resolves a free-text address. No match is *errs.LookupError.
type Geocoder interface {
	Geocode(ctx context.Context, address string) (kernel.Coordinate, error)
}

// Router computes the driving polyline between two points, origin first.
// No route is *errs.LookupError.
type Router interface {
	Route(ctx context.Context, from, to kernel.Coordinate) (kernel.Route, error)
}

// TravelTimer estimates the driving time between two points. No route is
// *errs.LookupError.
type TravelTimer interface {
	TravelTime(ctx context.Context, from, to kernel.Coordinate) (time.Duration, error)
}
