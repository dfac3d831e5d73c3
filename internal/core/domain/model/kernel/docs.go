// Package kernel provides the value objects shared by the order pipeline:
//
//   - UUID: event identity (every published envelope gets a fresh one)
//   - Coordinate: a WGS84 latitude/longitude pair
//   - Route: an ordered polyline of at least two coordinates, origin first
//   - Waypoint: one sampled route coordinate paired with its index in the route
//
// All types are immutable once constructed. Zero values are invalid and fail
// Validate, which lets callers detect values that bypassed the constructors.
package kernel
