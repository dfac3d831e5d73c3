// Package services provides domain services for the delivery stage that do not
// belong to a single value object.
//
// The package includes:
//   - RouteSampler: reduces a route polyline to a fixed number of waypoints
//   - DeliveryPlanner: turns an order and its route into the sequence of driver
//     locations the streamer publishes
package services
