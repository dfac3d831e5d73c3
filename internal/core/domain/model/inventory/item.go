package inventory

import (
	"errors"
	"fmt"
	"strings"

	"orderflow/internal/pkg/errs"
	"orderflow/internal/pkg/guard"
)

var ErrItemIsNotConstructed = errs.NewValueIsRequiredError("item must be created via NewItem")

// Item is the stock level of one material.
type Item struct {
	materialID string
	quantity   int
	guard      guard.ConstructorGuard
}

// NewItem allows a zero quantity but not a negative one.
func NewItem(materialID string, quantity int) (Item, error) {
	item := Item{guard: guard.NewConstructorGuard()}

	if err := errors.Join(item.setMaterialID(materialID), item.setQuantity(quantity)); err != nil {
		return Item{}, err
	}

	return item, nil
}

func (i Item) Validate() error {
	return i.guard.Validate(ErrItemIsNotConstructed)
}

func (i Item) MaterialID() string {
	return i.materialID
}

func (i Item) Quantity() int {
	return i.quantity
}

func (i *Item) setMaterialID(materialID string) error {
	if strings.TrimSpace(materialID) == "" {
		return errs.NewValueIsRequiredError("material_id")
	}
	i.materialID = materialID
	return nil
}

func (i *Item) setQuantity(quantity int) error {
	if quantity < 0 {
		return errs.NewValueIsInvalidErrorWithCause("quantity", fmt.Errorf("%d is negative", quantity))
	}
	i.quantity = quantity
	return nil
}
