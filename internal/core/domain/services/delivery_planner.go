package services

import (
	"fmt"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/order"
)

// DeliveryPlan is everything the streamer needs for one order.
type DeliveryPlan struct {
	// Initial is published once before any waypoint: the warehouse as the current
	// position and the geocoded address as the destination.
	Initial order.DriverLocation

	// Waypoints are the sampled points. Each update pairs one of them with the
	// route destination.
	Waypoints []kernel.Waypoint

	Route kernel.Route
}

// Updates returns one driver location per waypoint, all sharing the route destination.
func (p DeliveryPlan) Updates() ([]order.DriverLocation, error) {
	destination := p.Route.Destination()
	out := make([]order.DriverLocation, 0, len(p.Waypoints))
	for _, wp := range p.Waypoints {
		loc, err := order.NewDriverLocation(wp.Coordinate(), destination)
		if err != nil {
			return nil, fmt.Errorf("waypoint %d: %w", wp.Index(), err)
		}
		out = append(out, loc)
	}
	return out, nil
}

// IsLast reports whether the waypoint is the route destination.
func (p DeliveryPlan) IsLast(wp kernel.Waypoint) bool {
	return wp.Index() == p.Route.LastIndex()
}

// DeliveryPlanner builds delivery plans with a fixed sampler.
type DeliveryPlanner struct {
	sampler RouteSampler
}

// NewDeliveryPlanner samples every planned route with sampler.
func NewDeliveryPlanner(sampler RouteSampler) DeliveryPlanner {
	return DeliveryPlanner{sampler: sampler}
}

// Plan samples the route and moves the order to Delivering at the warehouse.
// The order is left untouched on error.
func (p DeliveryPlanner) Plan(
	o *order.Order,
	warehouse kernel.Coordinate,
	deliveryPoint kernel.Coordinate,
	route kernel.Route,
) (DeliveryPlan, error) {
	if err := o.Validate(); err != nil {
		return DeliveryPlan{}, err
	}
	if err := o.Status().ValidateStartDelivery(); err != nil {
		return DeliveryPlan{}, err
	}

	waypoints, err := p.sampler.Sample(route)
	if err != nil {
		return DeliveryPlan{}, err
	}

	initial, err := order.NewDriverLocation(warehouse, deliveryPoint)
	if err != nil {
		return DeliveryPlan{}, err
	}

	if err = o.StartDelivery(initial); err != nil {
		return DeliveryPlan{}, err
	}

	return DeliveryPlan{Initial: initial, Waypoints: waypoints, Route: route}, nil
}
