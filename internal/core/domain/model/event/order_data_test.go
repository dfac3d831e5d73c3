package event_test

import (
	"encoding/json"
	"testing"

	"orderflow/internal/core/domain/model/event"
	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validOrder = `{
	"order_id": "o-1",
	"fieldServiceId": 42,
	"Material": [{"material_id": "cimento", "quantity": 2}, {"material_id": "areia", "quantity": 1}],
	"delivery_address": "Rua Principal 1, Leiria",
	"Status": "NEW"
}`

func TestDecodeOrderData(t *testing.T) {
	t.Run("decodes a complete order", func(t *testing.T) {
		data, err := event.DecodeOrderData([]byte(validOrder))

		require.NoError(t, err)
		assert.Equal(t, event.FlexString("o-1"), data.OrderID)
		assert.Equal(t, event.FlexString("42"), data.FieldServiceID)
		assert.Len(t, data.Material, 2)
		assert.True(t, data.DriverLocation.IsEmpty())
	})

	t.Run("reports the first missing field", func(t *testing.T) {
		tests := []struct {
			raw  string
			want string
		}{
			{`{}`, "order_id"},
			{`{"order_id":"o"}`, "fieldServiceId"},
			{`{"order_id":"o","fieldServiceId":"f","Material":[]}`, "delivery_address"},
			{`{"order_id":"o","fieldServiceId":"f","Material":[],"delivery_address":"a","Status":null}`, "Status"},
		}
		for _, tt := range tests {
			_, err := event.DecodeOrderData([]byte(tt.raw))

			var required *errs.ValueIsRequiredError
			require.ErrorAs(t, err, &required, tt.raw)
			assert.Equal(t, tt.want, required.ParamName)
		}
	})

	t.Run("rejects a material that is not a list of objects", func(t *testing.T) {
		for _, material := range []string{`"cimento"`, `[1, 2]`, `{"material_id":"x"}`, `[null]`} {
			raw := `{"order_id":"o","fieldServiceId":"f","Material":` + material +
				`,"delivery_address":"a","Status":"new"}`

			_, err := event.DecodeOrderData([]byte(raw))

			assert.Equal(t, event.ErrInvalidMaterialFormat, err, material)
		}
	})

	t.Run("rejects non-object payloads", func(t *testing.T) {
		_, err := event.DecodeOrderData([]byte(`[1]`))

		require.ErrorIs(t, err, errs.ErrValueIsInvalid)
	})
}

func TestOrderData_ToOrder(t *testing.T) {
	t.Run("builds the snapshot", func(t *testing.T) {
		data, err := event.DecodeOrderData([]byte(validOrder))
		require.NoError(t, err)

		o, err := data.ToOrder()

		require.NoError(t, err)
		assert.Equal(t, "o-1", o.ID())
		assert.Equal(t, "42", o.FieldServiceID())
		assert.Equal(t, order.New, o.Status())
		assert.Nil(t, o.DriverLocation())
		assert.Equal(t, "areia", o.Materials()[1].MaterialID())
	})

	t.Run("accepts string and number coordinates", func(t *testing.T) {
		raw := `{"order_id":"o","fieldServiceId":"f","Material":[{"material_id":"cal","quantity":1}],
			"delivery_address":"a","Status":"Delivering_Order",
			"driverLocation":{"currentLocation":{"latitude":"39.91344","longitude":-8.43924},
			"destination":{"latitude":39.7,"longitude":"-8.8"},"eventType":"RouteData"}}`
		data, err := event.DecodeOrderData([]byte(raw))
		require.NoError(t, err)

		o, err := data.ToOrder()

		require.NoError(t, err)
		loc := o.DriverLocation()
		require.NotNil(t, loc)
		assert.InDelta(t, 39.91344, loc.Current().Latitude(), 1e-9)
		assert.InDelta(t, -8.43924, loc.Current().Longitude(), 1e-9)
		assert.InDelta(t, -8.8, loc.Destination().Longitude(), 1e-9)
	})

	t.Run("rejects an unknown status", func(t *testing.T) {
		data := event.OrderData{OrderID: "o", FieldServiceID: "f", DeliveryAddress: "a", Status: "lost"}

		_, err := data.ToOrder()

		require.ErrorIs(t, err, errs.ErrValueIsInvalid)
	})

	t.Run("rejects non-positive quantities", func(t *testing.T) {
		data := event.OrderData{
			OrderID: "o", FieldServiceID: "f", DeliveryAddress: "a", Status: "new",
			Material: []event.MaterialData{{MaterialID: "cal", Quantity: 0}},
		}

		_, err := data.ToOrder()

		require.ErrorIs(t, err, errs.ErrValueIsInvalid)
		assert.Contains(t, err.Error(), "Material[0]")
	})

	t.Run("rejects an empty material list", func(t *testing.T) {
		data := event.OrderData{OrderID: "o", FieldServiceID: "f", DeliveryAddress: "a", Status: "new"}

		_, err := data.ToOrder()

		require.ErrorIs(t, err, errs.ErrValueIsRequired)
	})

	t.Run("rejects a half driver location", func(t *testing.T) {
		data := event.OrderData{
			OrderID: "o", FieldServiceID: "f", DeliveryAddress: "a", Status: "Delivering_Order",
			Material:       []event.MaterialData{{MaterialID: "cal", Quantity: 1}},
			DriverLocation: event.DriverLocationData{CurrentLocation: &event.CoordinateData{Latitude: 1, Longitude: 1}},
		}

		_, err := data.ToOrder()

		require.ErrorIs(t, err, errs.ErrValueIsInvalid)
	})
}

func TestDecimal(t *testing.T) {
	out, err := json.Marshal(event.Decimal(-8.43924))
	require.NoError(t, err)
	assert.JSONEq(t, `"-8.43924"`, string(out))

	var d event.Decimal
	require.Error(t, json.Unmarshal([]byte(`"north"`), &d))
}
