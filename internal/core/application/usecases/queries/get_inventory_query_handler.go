package queries

import (
	"context"

	"orderflow/internal/core/domain/model/inventory"
)

// StockSnapshot exposes the ledger contents. *inventory.Ledger implements it.
type StockSnapshot interface {
	Items() []inventory.Item
}

// GetInventoryQueryHandler reads the current ledger snapshot.
type GetInventoryQueryHandler struct {
	stock StockSnapshot
}

// NewGetInventoryQueryHandler reads from stock.
func NewGetInventoryQueryHandler(stock StockSnapshot) GetInventoryQueryHandler {
	return GetInventoryQueryHandler{stock: stock}
}

// Handle returns the snapshot sorted by material id.
func (h GetInventoryQueryHandler) Handle(
	ctx context.Context,
	query GetInventoryQuery,
) ([]GetInventoryQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	items := h.stock.Items()
	out := make([]GetInventoryQueryResponse, 0, len(items))
	for _, item := range items {
		out = append(out, GetInventoryQueryResponse{MaterialID: item.MaterialID(), Quantity: item.Quantity()})
	}
	return out, nil
}
