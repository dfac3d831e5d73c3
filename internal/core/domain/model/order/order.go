package order

import (
	"errors"
	"fmt"
	"strings"

	"orderflow/internal/pkg/errs"
)

// ErrOrderIsNotConstructed is returned when an Order bypassed NewOrder.
var ErrOrderIsNotConstructed = errors.New("Order must be created via NewOrder constructor")

// Order is one stage's snapshot of a delivery order. Identity is the externally
// assigned id and never changes. Snapshots are not shared between stages: each
// stage decodes its own, applies one transition and publishes it.
//
// Invariants:
//   - id, field service id and delivery address are non-blank
//   - materials is non-empty and every line has a positive quantity
//   - status is valid
//   - a driver location is set only by StartDelivery or MoveDriver, or
//     restored from a snapshot, and is carried through later transitions
type Order struct {
	id              string
	fieldServiceID  string
	materials       []MaterialLine
	deliveryAddress string
	status          Status
	driverLocation  *DriverLocation
	isConstructed   bool
}

// NewOrder validates every field and joins the failures.
//
// Example:
//
//	line, _ := order.NewMaterialLine("cimento", 2)
//	o, err := order.NewOrder("o-1", "fs-7", []order.MaterialLine{line}, "Rua X, Leiria", order.New)
func NewOrder(
	id string,
	fieldServiceID string,
	materials []MaterialLine,
	deliveryAddress string,
	status Status,
) (*Order, error) {
	o := &Order{isConstructed: true}

	if err := errors.Join(
		o.setID(id),
		o.setFieldServiceID(fieldServiceID),
		o.setMaterials(materials),
		o.setDeliveryAddress(deliveryAddress),
		o.setStatus(status),
	); err != nil {
		return nil, err
	}

	return o, nil
}

// RestoreOrder rebuilds a snapshot decoded from an event, including an optional
// driver location.
func RestoreOrder(
	id string,
	fieldServiceID string,
	materials []MaterialLine,
	deliveryAddress string,
	status Status,
	driverLocation *DriverLocation,
) (*Order, error) {
	o, err := NewOrder(id, fieldServiceID, materials, deliveryAddress, status)
	if err != nil {
		return nil, err
	}
	if driverLocation != nil {
		if err = driverLocation.Validate(); err != nil {
			return nil, err
		}
		loc := *driverLocation
		o.driverLocation = &loc
	}
	return o, nil
}

func (o *Order) Validate() error {
	if o == nil || !o.isConstructed {
		return ErrOrderIsNotConstructed
	}
	return nil
}

// ID is assigned on intake and never changes.
func (o *Order) ID() string {
	return o.id
}

func (o *Order) FieldServiceID() string {
	return o.fieldServiceID
}

// Materials returns a copy of the requested lines in request order.
func (o *Order) Materials() []MaterialLine {
	out := make([]MaterialLine, len(o.materials))
	copy(out, o.materials)
	return out
}

func (o *Order) DeliveryAddress() string {
	return o.deliveryAddress
}

func (o *Order) Status() Status {
	return o.status
}

// DriverLocation returns nil when the snapshot carries no location.
func (o *Order) DriverLocation() *DriverLocation {
	if o.driverLocation == nil {
		return nil
	}
	loc := *o.driverLocation
	return &loc
}

// Clone returns an independent snapshot.
func (o *Order) Clone() *Order {
	c := *o
	c.materials = o.Materials()
	c.driverLocation = o.DriverLocation()
	return &c
}

// Receive applies the intake transition.
func (o *Order) Receive() error {
	next, err := o.status.Receive()
	if err != nil {
		return err
	}
	o.status = next
	return nil
}

// AwaitWarehouse re-queues a PendingWarehouse order for the inventory check.
func (o *Order) AwaitWarehouse() error {
	next, err := o.status.AwaitWarehouse()
	if err != nil {
		return err
	}
	o.status = next
	return nil
}

// Confirm records the inventory check result. Any driver location is carried over.
func (o *Order) Confirm(fulfillable bool) error {
	next, err := o.status.Confirm(fulfillable)
	if err != nil {
		return err
	}
	o.status = next
	return nil
}

// StartDelivery moves the order to Delivering at the given location.
func (o *Order) StartDelivery(location DriverLocation) error {
	if err := location.Validate(); err != nil {
		return err
	}
	next, err := o.status.StartDelivery()
	if err != nil {
		return err
	}
	o.status = next
	o.driverLocation = &location
	return nil
}

// MoveDriver updates the driver location of an order that is Delivering.
func (o *Order) MoveDriver(location DriverLocation) error {
	if err := location.Validate(); err != nil {
		return err
	}
	if o.status != Delivering {
		return errs.NewValueIsInvalidErrorWithCause(
			"status",
			fmt.Errorf("%s is not a valid status to move the driver", o.status),
		)
	}
	o.driverLocation = &location
	return nil
}

// Deliver marks the order terminal after the destination update was sent.
func (o *Order) Deliver() error {
	next, err := o.status.Deliver()
	if err != nil {
		return err
	}
	o.status = next
	return nil
}

func (o *Order) setID(id string) error {
	if strings.TrimSpace(id) == "" {
		return errs.NewValueIsRequiredError("order_id")
	}
	o.id = id
	return nil
}

func (o *Order) setFieldServiceID(id string) error {
	if strings.TrimSpace(id) == "" {
		return errs.NewValueIsRequiredError("fieldServiceId")
	}
	o.fieldServiceID = id
	return nil
}

func (o *Order) setMaterials(materials []MaterialLine) error {
	if len(materials) == 0 {
		return errs.NewValueIsRequiredError("Material")
	}
	var problems []error
	for i, m := range materials {
		if err := m.Validate(); err != nil {
			problems = append(problems, fmt.Errorf("Material[%d]: %w", i, err))
		}
	}
	if err := errors.Join(problems...); err != nil {
		return err
	}
	o.materials = make([]MaterialLine, len(materials))
	copy(o.materials, materials)
	return nil
}

func (o *Order) setDeliveryAddress(address string) error {
	if strings.TrimSpace(address) == "" {
		return errs.NewValueIsRequiredError("delivery_address")
	}
	o.deliveryAddress = address
	return nil
}

func (o *Order) setStatus(status Status) error {
	if err := status.Validate(); err != nil {
		return err
	}
	o.status = status
	return nil
}
