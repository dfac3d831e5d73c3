// Package inventoryrepo persists the warehouse stock snapshot.
package inventoryrepo

import (
	"time"

	"orderflow/internal/core/domain/model/inventory"
)

// StockItemDTO is one row of stock_items.
type StockItemDTO struct {
	MaterialID string `gorm:"primaryKey;size:128"`
	Quantity   int    `gorm:"not null;check:quantity >= 0"`
	UpdatedAt  time.Time
}

func (StockItemDTO) TableName() string {
	return "stock_items"
}

func fromDomain(item inventory.Item) StockItemDTO {
	return StockItemDTO{
		MaterialID: item.MaterialID(),
		Quantity:   item.Quantity(),
	}
}

func toDomain(dto StockItemDTO) (inventory.Item, error) {
	return inventory.NewItem(dto.MaterialID, dto.Quantity)
}
