package inventory

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/pkg/errs"
)

// Ledger holds the current stock snapshot. It is safe for concurrent use:
// checks take a read lock, Replace swaps the whole snapshot under a write lock.
type Ledger struct {
	mu    sync.RWMutex
	stock map[string]int
}

// NewLedger builds a ledger from items. Material ids must be unique.
func NewLedger(items []Item) (*Ledger, error) {
	stock, err := index(items)
	if err != nil {
		return nil, err
	}
	return &Ledger{stock: stock}, nil
}

// IsFulfillable reports whether every requested line is covered by stock.
// A material that is not stocked counts as insufficient. Nothing is reserved.
func (l *Ledger) IsFulfillable(requested []order.MaterialLine) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()

	for _, line := range requested {
		available, ok := l.stock[line.MaterialID()]
		if !ok || available < line.Quantity() {
			return false
		}
	}
	return true
}

// Shortages lists the material ids that block fulfillment, in request order.
func (l *Ledger) Shortages(requested []order.MaterialLine) []string {
	l.mu.RLock()
	defer l.mu.RUnlock()

	var short []string
	for _, line := range requested {
		if available, ok := l.stock[line.MaterialID()]; !ok || available < line.Quantity() {
			short = append(short, line.MaterialID())
		}
	}
	return short
}

// Quantity returns the stock of one material, or ObjectNotFoundError.
func (l *Ledger) Quantity(materialID string) (int, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	q, ok := l.stock[materialID]
	if !ok {
		return 0, errs.NewObjectNotFoundError("material_id", materialID)
	}
	return q, nil
}

// Items returns the snapshot sorted by material id.
func (l *Ledger) Items() []Item {
	l.mu.RLock()
	defer l.mu.RUnlock()

	ids := make([]string, 0, len(l.stock))
	for id := range l.stock {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	items := make([]Item, 0, len(ids))
	for _, id := range ids {
		// entries were validated on the way in
		item, _ := NewItem(id, l.stock[id])
		items = append(items, item)
	}
	return items
}

// Replace swaps in a new snapshot. On error the current snapshot is kept.
func (l *Ledger) Replace(items []Item) error {
	stock, err := index(items)
	if err != nil {
		return err
	}

	l.mu.Lock()
	l.stock = stock
	l.mu.Unlock()
	return nil
}

func index(items []Item) (map[string]int, error) {
	stock := make(map[string]int, len(items))
	var problems []error
	for i, item := range items {
		if err := item.Validate(); err != nil {
			problems = append(problems, fmt.Errorf("item %d: %w", i, err))
			continue
		}
		if _, dup := stock[item.MaterialID()]; dup {
			problems = append(problems, errs.NewValueIsInvalidErrorWithCause(
				"material_id", fmt.Errorf("%q is listed twice", item.MaterialID())))
			continue
		}
		stock[item.MaterialID()] = item.Quantity()
	}
	if err := errors.Join(problems...); err != nil {
		return nil, err
	}
	return stock, nil
}
