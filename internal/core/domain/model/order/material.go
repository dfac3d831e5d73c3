package order

import (
	"errors"
	"fmt"
	"strings"

	"orderflow/internal/pkg/errs"
	"orderflow/internal/pkg/guard"
)

var ErrMaterialLineIsNotConstructed = errs.NewValueIsRequiredError(
	"material line must be created via NewMaterialLine")

// MaterialLine is one requested material and the quantity needed.
type MaterialLine struct {
	materialID string
	quantity   int
	guard      guard.ConstructorGuard
}

// NewMaterialLine requires a non-blank material id and a positive quantity.
func NewMaterialLine(materialID string, quantity int) (MaterialLine, error) {
	line := MaterialLine{guard: guard.NewConstructorGuard()}

	if err := errors.Join(
		line.setMaterialID(materialID),
		line.setQuantity(quantity),
	); err != nil {
		return MaterialLine{}, err
	}

	return line, nil
}

func (m MaterialLine) Validate() error {
	return m.guard.Validate(ErrMaterialLineIsNotConstructed)
}

func (m MaterialLine) MaterialID() string {
	return m.materialID
}

func (m MaterialLine) Quantity() int {
	return m.quantity
}

func (m *MaterialLine) setMaterialID(materialID string) error {
	if strings.TrimSpace(materialID) == "" {
		return errs.NewValueIsRequiredError("material_id")
	}
	m.materialID = materialID
	return nil
}

func (m *MaterialLine) setQuantity(quantity int) error {
	if quantity <= 0 {
		return errs.NewValueIsInvalidErrorWithCause("quantity", fmt.Errorf("%d is not greater than 0", quantity))
	}
	m.quantity = quantity
	return nil
}
