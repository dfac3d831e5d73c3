package order

import (
	"fmt"
	"strings"

	"orderflow/internal/pkg/errs"
)

// Status is the lifecycle state of an order. Consumers branch on it rather than on
// the event type, since the same event type carries several statuses.
type Status int

const (
	// Unknown catches uninitialized values.
	Unknown Status = iota

	// New is the status of an order arriving at intake.
	New

	// PendingWarehouse means intake accepted the order and the field-service stage
	// has not yet forwarded it to the warehouse.
	PendingWarehouse

	// WaitingForWarehouse means the order is queued for an inventory check.
	WaitingForWarehouse

	// PendingInventory means the last inventory check could not cover the order.
	PendingInventory

	// ReadyForPickup means every requested material is in stock.
	ReadyForPickup

	// Delivering means a driver is on the route and location updates are streaming.
	Delivering

	// Delivered is terminal. It is set after the destination waypoint and never published.
	Delivered
)

func getStatusStrings() map[Status]string {
	return map[Status]string{
		New:                 "new",
		PendingWarehouse:    "pending_warehouse",
		WaitingForWarehouse: "waiting_for_warehouse",
		PendingInventory:    "pending_inventory",
		ReadyForPickup:      "ready_for_pickup",
		Delivering:          "Delivering_Order",
		Delivered:           "delivered",
	}
}

// ParseStatus maps a wire value to a Status, ignoring case.
func ParseStatus(s string) (Status, error) {
	for status, str := range getStatusStrings() {
		if strings.EqualFold(str, strings.TrimSpace(s)) {
			return status, nil
		}
	}
	return Unknown, errs.NewValueIsInvalidErrorWithCause("status", fmt.Errorf("%q is not a known status", s))
}

func (s Status) Validate() error {
	if _, ok := getStatusStrings()[s]; !ok {
		return errs.NewValueIsInvalidErrorWithCause("status", fmt.Errorf("%d is not a valid status", s))
	}
	return nil
}

// String returns the wire value, or "unknown" for invalid statuses.
func (s Status) String() string {
	if str, ok := getStatusStrings()[s]; ok {
		return str
	}
	return "unknown"
}

// IsTerminal reports whether no transition leaves s.
func (s Status) IsTerminal() bool {
	return s == Delivered
}

// MarshalText writes the wire name and fails for Unknown.
func (s Status) MarshalText() ([]byte, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return []byte(s.String()), nil
}

// UnmarshalText parses a wire name, case-insensitively.
func (s *Status) UnmarshalText(data []byte) error {
	parsed, err := ParseStatus(string(data))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// Receive is the intake transition. A new order moves to PendingWarehouse; any
// other valid status is forwarded unchanged.
func (s Status) Receive() (Status, error) {
	if err := s.Validate(); err != nil {
		return Unknown, err
	}
	if s == New {
		return PendingWarehouse, nil
	}
	return s, nil
}

// AwaitWarehouse re-queues a PendingWarehouse order for the warehouse stage.
func (s Status) AwaitWarehouse() (Status, error) {
	if s != PendingWarehouse {
		return Unknown, invalidTransition(s, WaitingForWarehouse)
	}
	return WaitingForWarehouse, nil
}

// ValidateInventoryCheck reports whether the warehouse stage may evaluate the order.
// PendingInventory is accepted so a short order can be re-checked after restock.
func (s Status) ValidateInventoryCheck() error {
	switch s { //nolint:exhaustive // remaining statuses are past the warehouse
	case New, PendingWarehouse, WaitingForWarehouse, PendingInventory:
		return nil
	default:
		return errs.NewValueIsInvalidErrorWithCause(
			"status",
			fmt.Errorf("%s is not a valid status for an inventory check", s),
		)
	}
}

// Confirm applies the inventory check result.
func (s Status) Confirm(fulfillable bool) (Status, error) {
	if err := s.ValidateInventoryCheck(); err != nil {
		return Unknown, err
	}
	if fulfillable {
		return ReadyForPickup, nil
	}
	return PendingInventory, nil
}

// ValidateStartDelivery rejects orders still waiting for intake forwarding and
// orders that already arrived.
func (s Status) ValidateStartDelivery() error {
	if err := s.Validate(); err != nil {
		return err
	}
	if s == PendingWarehouse || s == Delivered {
		return errs.NewValueIsInvalidErrorWithCause(
			"status",
			fmt.Errorf("%s is not a valid status to start a delivery", s),
		)
	}
	return nil
}

// StartDelivery returns Delivering.
func (s Status) StartDelivery() (Status, error) {
	if err := s.ValidateStartDelivery(); err != nil {
		return Unknown, err
	}
	return Delivering, nil
}

// Deliver returns Delivered for an order that is Delivering.
func (s Status) Deliver() (Status, error) {
	if s != Delivering {
		return Unknown, invalidTransition(s, Delivered)
	}
	return Delivered, nil
}

func invalidTransition(from, to Status) error {
	return errs.NewValueIsInvalidErrorWithCause(
		"status",
		fmt.Errorf("cannot move from %s to %s", from, to),
	)
}
