// Package order holds the order snapshot that travels between pipeline stages
// and the status state machine each stage applies to it.
//
// The package includes:
//   - Order: a full snapshot of one delivery order (identity, materials, address,
//     status, optional driver location)
//   - Status: the closed set of lifecycle states and the transitions allowed per stage
//   - MaterialLine: one requested material and its quantity
//   - DriverLocation: the current and destination coordinates while a delivery runs
//
// Stages never share an order. Each one receives a snapshot, applies a single
// transition and publishes the result:
//
//	new ──> pending_warehouse ──> waiting_for_warehouse ──> ready_for_pickup ─┐
//	                                                   └──> pending_inventory  │
//	                                                                           v
//	                                              delivered <── Delivering_Order
package order
