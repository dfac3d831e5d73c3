package inventoryrepo

import (
	"context"

	"orderflow/internal/core/domain/model/inventory"

	"gorm.io/gorm"
)

// GormInventoryRepository implements ports.InventoryStore using GORM.
type GormInventoryRepository struct {
	db *gorm.DB
}

// NewGormInventoryRepository stores stock rows in db.
func NewGormInventoryRepository(db *gorm.DB) *GormInventoryRepository {
	return &GormInventoryRepository{db: db}
}

// LoadStock reads every row ordered by material id.
func (r *GormInventoryRepository) LoadStock(ctx context.Context) ([]inventory.Item, error) {
	var dtos []StockItemDTO
	if err := r.db.WithContext(ctx).Order("material_id").Find(&dtos).Error; err != nil {
		return nil, err
	}

	items := make([]inventory.Item, 0, len(dtos))
	for _, dto := range dtos {
		item, err := toDomain(dto)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}

// SaveStock replaces the whole table in one transaction.
func (r *GormInventoryRepository) SaveStock(ctx context.Context, items []inventory.Item) error {
	if _, err := inventory.NewLedger(items); err != nil {
		return err
	}

	dtos := make([]StockItemDTO, 0, len(items))
	for _, item := range items {
		dtos = append(dtos, fromDomain(item))
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&StockItemDTO{}).Error; err != nil {
			return err
		}
		if len(dtos) == 0 {
			return nil
		}
		return tx.Create(&dtos).Error
	})
}

// IsEmpty reports whether no stock has been stored yet.
func (r *GormInventoryRepository) IsEmpty(ctx context.Context) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&StockItemDTO{}).Count(&count).Error; err != nil {
		return false, err
	}
	return count == 0, nil
}
