// Package ports defines the contracts between the order pipeline and its
// infrastructure: the event bus, the maps provider, the stock store and the
// delivery tracker. Adapters in internal/adapters implement them.
package ports
