// Package yamlrepo reads warehouse stock from a YAML document.
package yamlrepo

import (
	"bytes"
	"context"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"

	"orderflow/internal/core/domain/model/inventory"

	"gopkg.in/yaml.v3"
)

//go:embed default_inventory.yaml
var defaultInventory []byte

type stockFile struct {
	Inventory []stockLine `yaml:"inventory"`
}

type stockLine struct {
	MaterialID string `yaml:"material_id"`
	Quantity   int    `yaml:"quantity"`
}

// InventoryRepository implements ports.InventoryRepository. With a path the
// file is read again on every load, so edits reach the ledger on the next
// refresh. Without one the embedded default stock is served.
type InventoryRepository struct {
	path string
}

// NewInventoryRepository reads path on every load. An empty path serves the
// embedded default stock.
func NewInventoryRepository(path string) *InventoryRepository {
	return &InventoryRepository{path: path}
}

// LoadStock parses the file and validates every item.
func (r *InventoryRepository) LoadStock(ctx context.Context) ([]inventory.Item, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if r.path == "" {
		return Decode(bytes.NewReader(defaultInventory))
	}

	f, err := os.Open(r.path)
	if err != nil {
		return nil, fmt.Errorf("open inventory file: %w", err)
	}
	defer f.Close()

	items, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", r.path, err)
	}
	return items, nil
}

// DefaultStock returns the embedded stock.
func DefaultStock() ([]inventory.Item, error) {
	return Decode(bytes.NewReader(defaultInventory))
}

// Decode parses an inventory document. Unknown keys are rejected.
func Decode(r io.Reader) ([]inventory.Item, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var doc stockFile
	if err := dec.Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decode inventory: %w", err)
	}

	items := make([]inventory.Item, 0, len(doc.Inventory))
	for i, line := range doc.Inventory {
		item, err := inventory.NewItem(line.MaterialID, line.Quantity)
		if err != nil {
			return nil, fmt.Errorf("inventory[%d]: %w", i, err)
		}
		items = append(items, item)
	}
	return items, nil
}
