package event

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/pkg/errs"
)

// RequiredFields are the order keys every inbound payload must carry, in the
// order they are checked.
var RequiredFields = []string{"order_id", "fieldServiceId", "Material", "delivery_address", "Status"}

// InvalidMaterialMessage is the intake response body for a malformed Material.
const InvalidMaterialMessage = "Invalid format for 'Material'. It should be a list of dictionaries."

// ErrInvalidMaterialFormat is returned when Material is not a list of objects.
var ErrInvalidMaterialFormat = errs.NewValueIsInvalidErrorWithCause(
	"Material", errors.New("expected a list of objects"))

// OrderData is the wire form of an order snapshot.
type OrderData struct {
	OrderID         FlexString         `json:"order_id"`
	FieldServiceID  FlexString         `json:"fieldServiceId"`
	Material        []MaterialData     `json:"Material"`
	DeliveryAddress string             `json:"delivery_address"`
	Status          string             `json:"Status"`
	DriverLocation  DriverLocationData `json:"driverLocation"`
}

// MaterialData is one material line on the wire.
type MaterialData struct {
	MaterialID string `json:"material_id"`
	Quantity   int    `json:"quantity"`
}

// DriverLocationData encodes as {} when empty.
type DriverLocationData struct {
	CurrentLocation *CoordinateData `json:"currentLocation,omitempty"`
	Destination     *CoordinateData `json:"destination,omitempty"`
	EventType       string          `json:"eventType,omitempty"`
}

func (d DriverLocationData) IsEmpty() bool {
	return d.CurrentLocation == nil && d.Destination == nil
}

// CoordinateData carries degrees as decimal strings.
type CoordinateData struct {
	Latitude  Decimal `json:"latitude"`
	Longitude Decimal `json:"longitude"`
}

// FlexString decodes from a JSON string or number and encodes as a string.
type FlexString string

// UnmarshalJSON accepts a JSON string or number.
func (f *FlexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = FlexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("expected string or number, got %s", b)
	}
	*f = FlexString(n.String())
	return nil
}

// Decimal is a degree value that travels as a decimal string.
type Decimal float64

func (d Decimal) MarshalJSON() ([]byte, error) {
	return json.Marshal(strconv.FormatFloat(float64(d), 'f', -1, 64))
}

// UnmarshalJSON accepts a quoted or bare number.
func (d *Decimal) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	raw := string(b)
	if len(b) > 0 && b[0] == '"' {
		if err := json.Unmarshal(b, &raw); err != nil {
			return err
		}
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return errs.NewValueIsInvalidErrorWithCause("coordinate", err)
	}
	*d = Decimal(v)
	return nil
}

// DecodeOrderData checks the required keys before decoding, so callers can
// report exactly which one is missing.
func DecodeOrderData(raw []byte) (OrderData, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return OrderData{}, errs.NewValueIsInvalidErrorWithCause("order", err)
	}

	for _, name := range RequiredFields {
		v, ok := fields[name]
		if !ok || string(bytes.TrimSpace(v)) == "null" {
			return OrderData{}, errs.NewValueIsRequiredError(name)
		}
	}

	var lines []map[string]json.RawMessage
	if err := json.Unmarshal(fields["Material"], &lines); err != nil {
		return OrderData{}, ErrInvalidMaterialFormat
	}
	for _, line := range lines {
		if line == nil {
			return OrderData{}, ErrInvalidMaterialFormat
		}
	}

	var data OrderData
	if err := json.Unmarshal(raw, &data); err != nil {
		return OrderData{}, errs.NewValueIsInvalidErrorWithCause("order", err)
	}
	return data, nil
}

// FromOrder encodes a snapshot.
func FromOrder(o *order.Order) OrderData {
	materials := o.Materials()
	lines := make([]MaterialData, 0, len(materials))
	for _, m := range materials {
		lines = append(lines, MaterialData{MaterialID: m.MaterialID(), Quantity: m.Quantity()})
	}

	data := OrderData{
		OrderID:         FlexString(o.ID()),
		FieldServiceID:  FlexString(o.FieldServiceID()),
		Material:        lines,
		DeliveryAddress: o.DeliveryAddress(),
		Status:          o.Status().String(),
	}

	if loc := o.DriverLocation(); loc != nil {
		data.DriverLocation = DriverLocationData{
			CurrentLocation: coordinateData(loc.Current()),
			Destination:     coordinateData(loc.Destination()),
			EventType:       loc.EventType(),
		}
	}
	return data
}

// ToOrder validates the payload and rebuilds the snapshot.
func (d OrderData) ToOrder() (*order.Order, error) {
	status, err := order.ParseStatus(d.Status)
	if err != nil {
		return nil, err
	}

	lines := make([]order.MaterialLine, 0, len(d.Material))
	var problems []error
	for i, m := range d.Material {
		line, lineErr := order.NewMaterialLine(m.MaterialID, m.Quantity)
		if lineErr != nil {
			problems = append(problems, fmt.Errorf("Material[%d]: %w", i, lineErr))
			continue
		}
		lines = append(lines, line)
	}
	if err = errors.Join(problems...); err != nil {
		return nil, err
	}

	var location *order.DriverLocation
	if !d.DriverLocation.IsEmpty() {
		loc, locErr := d.DriverLocation.toDomain()
		if locErr != nil {
			return nil, locErr
		}
		location = &loc
	}

	return order.RestoreOrder(string(d.OrderID), string(d.FieldServiceID), lines, d.DeliveryAddress, status, location)
}

func (d DriverLocationData) toDomain() (order.DriverLocation, error) {
	if d.CurrentLocation == nil || d.Destination == nil {
		return order.DriverLocation{}, errs.NewValueIsInvalidErrorWithCause(
			"driverLocation", errors.New("currentLocation and destination must both be set"))
	}
	current, err := d.CurrentLocation.toDomain()
	if err != nil {
		return order.DriverLocation{}, err
	}
	destination, err := d.Destination.toDomain()
	if err != nil {
		return order.DriverLocation{}, err
	}
	return order.NewDriverLocation(current, destination)
}

func (c CoordinateData) toDomain() (kernel.Coordinate, error) {
	return kernel.NewCoordinate(float64(c.Latitude), float64(c.Longitude))
}

func coordinateData(c kernel.Coordinate) *CoordinateData {
	return &CoordinateData{Latitude: Decimal(c.Latitude()), Longitude: Decimal(c.Longitude())}
}
