package ports

import (
	"context"

	"orderflow/internal/core/domain/model/inventory"
)

// InventoryRepository is the source of warehouse stock snapshots.
type InventoryRepository interface {
	// LoadStock returns the full current snapshot.
	LoadStock(ctx context.Context) ([]inventory.Item, error)
}

// InventoryStore is a repository that can also be written, used to seed an
// empty database.
type InventoryStore interface {
	InventoryRepository

	// IsEmpty reports whether nothing has been stored yet.
	IsEmpty(ctx context.Context) (bool, error)

	// SaveStock replaces the whole snapshot atomically.
	SaveStock(ctx context.Context, items []inventory.Item) error
}
