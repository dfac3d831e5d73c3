package http_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"
	"time"

	httpin "orderflow/internal/adapters/in/http"
	"orderflow/internal/core/application/usecases/commands"
	"orderflow/internal/core/application/usecases/queries"
	"orderflow/internal/core/domain/model/event"
	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/pkg/errs"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockOrderReceiver struct{ mock.Mock }

func (m *MockOrderReceiver) Handle(ctx context.Context, cmd commands.ReceiveOrderCommand) error {
	return m.Called(ctx, cmd).Error(0)
}

type MockTravelTimeEstimator struct{ mock.Mock }

func (m *MockTravelTimeEstimator) Handle(
	ctx context.Context, query queries.EstimateTravelTimeQuery,
) (queries.EstimateTravelTimeQueryResponse, error) {
	args := m.Called(ctx, query)
	return args.Get(0).(queries.EstimateTravelTimeQueryResponse), args.Error(1)
}

type MockStageDispatcher struct{ mock.Mock }

func (m *MockStageDispatcher) FieldService(ctx context.Context, env event.Envelope) {
	m.Called(ctx, env)
}

func (m *MockStageDispatcher) Warehouse(ctx context.Context, env event.Envelope) {
	m.Called(ctx, env)
}

type MockDeliveryCanceller struct{ mock.Mock }

func (m *MockDeliveryCanceller) Cancel(orderID string) error {
	return m.Called(orderID).Error(0)
}

type stubInventory []queries.GetInventoryQueryResponse

func (s stubInventory) Handle(context.Context, queries.GetInventoryQuery) ([]queries.GetInventoryQueryResponse, error) {
	return s, nil
}

type stubDeliveries []queries.GetActiveDeliveriesQueryResponse

func (s stubDeliveries) Handle(
	context.Context, queries.GetActiveDeliveriesQuery,
) ([]queries.GetActiveDeliveriesQueryResponse, error) {
	return s, nil
}

type fixture struct {
	receiver   *MockOrderReceiver
	travelTime *MockTravelTimeEstimator
	stages     *MockStageDispatcher
	deliveries *MockDeliveryCanceller
	handler    http.Handler
}

func newFixture(inventory stubInventory, runs stubDeliveries) fixture {
	f := fixture{
		receiver:   new(MockOrderReceiver),
		travelTime: new(MockTravelTimeEstimator),
		stages:     new(MockStageDispatcher),
		deliveries: new(MockDeliveryCanceller),
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	server := httpin.NewServer(f.receiver, f.travelTime, f.stages, f.deliveries, inventory, runs, logger)
	f.handler = httpin.NewRouter(server, prometheus.NewRegistry(), logger)
	return f
}

func (f fixture) do(method, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	return rec
}

const newOrderBody = `{
	"order_id": 1001,
	"fieldServiceId": "fs-9",
	"Material": [{"material_id": "cimento", "quantity": 2}],
	"delivery_address": "Rua Direita 5, Leiria",
	"Status": "new"
}`

func TestServer_CreateOrder(t *testing.T) {
	t.Run("bare order is published as pending_warehouse", func(t *testing.T) {
		f := newFixture(nil, nil)
		f.receiver.On("Handle", mock.Anything, mock.AnythingOfType("commands.ReceiveOrderCommand")).
			Run(func(args mock.Arguments) {
				cmd := args.Get(1).(commands.ReceiveOrderCommand)
				assert.Equal(t, "1001", cmd.Order().ID())
				assert.Equal(t, order.New, cmd.Order().Status())
			}).
			Return(nil).Once()

		rec := f.do(http.MethodPost, "/api/v1/orders", newOrderBody)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, httpin.OrderPlacedMessage, rec.Body.String())
		f.receiver.AssertExpectations(t)
	})

	t.Run("order wrapped in data", func(t *testing.T) {
		f := newFixture(nil, nil)
		f.receiver.On("Handle", mock.Anything, mock.Anything).Return(nil).Once()

		rec := f.do(http.MethodPost, "/api/v1/orders", `{"data": `+newOrderBody+`}`)

		assert.Equal(t, http.StatusOK, rec.Code)
		f.receiver.AssertExpectations(t)
	})

	t.Run("first missing field is reported", func(t *testing.T) {
		f := newFixture(nil, nil)

		rec := f.do(http.MethodPost, "/api/v1/orders",
			`{"order_id": "1", "fieldServiceId": "fs", "delivery_address": "x"}`)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "Missing required field: Material", rec.Body.String())
		f.receiver.AssertNotCalled(t, "Handle", mock.Anything, mock.Anything)
	})

	t.Run("material must be a list of objects", func(t *testing.T) {
		f := newFixture(nil, nil)

		rec := f.do(http.MethodPost, "/api/v1/orders", `{
			"order_id": "1", "fieldServiceId": "fs", "Material": ["cimento"],
			"delivery_address": "x", "Status": "new"}`)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, event.InvalidMaterialMessage, rec.Body.String())
	})

	t.Run("unknown status", func(t *testing.T) {
		f := newFixture(nil, nil)

		rec := f.do(http.MethodPost, "/api/v1/orders", strings.Replace(newOrderBody, `"new"`, `"flying"`, 1))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.True(t, strings.HasPrefix(rec.Body.String(), "Invalid order data: "))
	})

	t.Run("bus rejection keeps its status code", func(t *testing.T) {
		f := newFixture(nil, nil)
		f.receiver.On("Handle", mock.Anything, mock.Anything).
			Return(errs.NewTransportError("eventgrid", http.StatusUnauthorized, "bad key")).Once()

		rec := f.do(http.MethodPost, "/api/v1/orders", newOrderBody)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "Failed to send event to Event Grid: bad key", rec.Body.String())
	})

	t.Run("panic becomes a 500", func(t *testing.T) {
		f := newFixture(nil, nil)
		f.receiver.On("Handle", mock.Anything, mock.Anything).
			Run(func(mock.Arguments) { panic("boom") }).Once()

		rec := f.do(http.MethodPost, "/api/v1/orders", newOrderBody)

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Equal(t, "Internal Server Error: boom", rec.Body.String())
	})
}

var uuidPattern = regexp.MustCompile(`[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}`)

const travelTimeBody = `{
	"order_id": 1002,
	"fieldServiceId": "fs-9",
	"Material": [{"material_id": "cimento", "quantity": 2}],
	"delivery_address": "Rua Direita 5, Leiria",
	"Status": "ready_to_pickup"
}`

func TestServer_TravelTimeEstimate(t *testing.T) {
	address := mock.MatchedBy(func(q queries.EstimateTravelTimeQuery) bool {
		return q.Address() == "Rua Direita 5, Leiria"
	})

	t.Run("answers with the minutes and publishes nothing", func(t *testing.T) {
		f := newFixture(nil, nil)
		f.travelTime.On("Handle", mock.Anything, address).
			Return(queries.EstimateTravelTimeQueryResponse{TravelTime: 2115 * time.Second, Minutes: 35.25}, nil).Once()

		rec := f.do(http.MethodPost, "/api/v1/orders", travelTimeBody)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "Estimated travel time to delivery address: 35.25 minutes", rec.Body.String())
		f.travelTime.AssertExpectations(t)
		f.receiver.AssertNotCalled(t, "Handle", mock.Anything, mock.Anything)
	})

	t.Run("unknown address is a 404", func(t *testing.T) {
		f := newFixture(nil, nil)
		f.travelTime.On("Handle", mock.Anything, address).
			Return(queries.EstimateTravelTimeQueryResponse{}, errs.NewLookupError("address", "Rua Direita 5, Leiria")).Once()

		rec := f.do(http.MethodPost, "/api/v1/orders", `{"data":`+travelTimeBody+`}`)

		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, "Address not found.", rec.Body.String())
	})

	t.Run("no route is a 404", func(t *testing.T) {
		f := newFixture(nil, nil)
		f.travelTime.On("Handle", mock.Anything, address).
			Return(queries.EstimateTravelTimeQueryResponse{}, errs.NewLookupError("route", "a->b")).Once()

		rec := f.do(http.MethodPost, "/api/v1/orders", travelTimeBody)

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("maps provider failure is a 500", func(t *testing.T) {
		f := newFixture(nil, nil)
		f.travelTime.On("Handle", mock.Anything, address).
			Return(queries.EstimateTravelTimeQueryResponse{}, context.DeadlineExceeded).Once()

		rec := f.do(http.MethodPost, "/api/v1/orders", travelTimeBody)

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Contains(t, rec.Body.String(), "Error calculating travel time")
	})

	t.Run("blank address", func(t *testing.T) {
		f := newFixture(nil, nil)

		rec := f.do(http.MethodPost, "/api/v1/orders",
			strings.Replace(travelTimeBody, "Rua Direita 5, Leiria", " ", 1))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		f.travelTime.AssertNotCalled(t, "Handle", mock.Anything, mock.Anything)
	})
}

func envelopeJSON(t *testing.T, status order.Status) string {
	t.Helper()
	line, err := order.NewMaterialLine("cimento", 2)
	require.NoError(t, err)
	o, err := order.NewOrder("1001", "fs-9", []order.MaterialLine{line}, "Rua Direita 5, Leiria", status)
	require.NoError(t, err)
	env, err := event.NewEnvelope(event.NewOrderReceived, event.SubjectNewOrder, o)
	require.NoError(t, err)
	b, err := json.Marshal(env)
	require.NoError(t, err)
	return string(b)
}

func TestServer_Webhooks(t *testing.T) {
	t.Run("answers the subscription handshake", func(t *testing.T) {
		f := newFixture(nil, nil)

		rec := f.do(http.MethodPost, "/api/v1/events/fieldservice", `[{
			"id": "2d1781af-3a4c-4d7c-bd0c-e34b19da4e66",
			"eventType": "Microsoft.EventGrid.SubscriptionValidationEvent",
			"data": {"validationCode": "512d38b6-c7b8-40c8-89fe-f46f9e9622b6"}}]`)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"validationResponse":"512d38b6-c7b8-40c8-89fe-f46f9e9622b6"}`, rec.Body.String())
		f.stages.AssertNotCalled(t, "FieldService", mock.Anything, mock.Anything)
	})

	t.Run("dispatches every event of the batch", func(t *testing.T) {
		f := newFixture(nil, nil)
		f.stages.On("FieldService", mock.Anything, mock.AnythingOfType("event.Envelope")).Twice()

		rec := f.do(http.MethodPost, "/api/v1/events/fieldservice",
			"["+envelopeJSON(t, order.PendingWarehouse)+","+envelopeJSON(t, order.ReadyForPickup)+"]")

		assert.Equal(t, http.StatusOK, rec.Code)
		f.stages.AssertExpectations(t)
	})

	t.Run("skips undecodable events and still acknowledges", func(t *testing.T) {
		f := newFixture(nil, nil)
		f.stages.On("Warehouse", mock.Anything, mock.Anything).Once()

		rec := f.do(http.MethodPost, "/api/v1/events/warehouse",
			`[{"id":"evt-1","eventType":"newOrderReceived","eventTime":"yesterday","data":{}},`+envelopeJSON(t, order.WaitingForWarehouse)+`]`)

		assert.Equal(t, http.StatusOK, rec.Code)
		f.stages.AssertExpectations(t)
	})

	t.Run("dispatches events whose id is not a uuid", func(t *testing.T) {
		f := newFixture(nil, nil)
		var got event.Envelope
		f.stages.On("FieldService", mock.Anything, mock.AnythingOfType("event.Envelope")).
			Run(func(args mock.Arguments) { got = args.Get(1).(event.Envelope) }).Once()

		body := uuidPattern.ReplaceAllString(envelopeJSON(t, order.ReadyForPickup), "evt-42")
		rec := f.do(http.MethodPost, "/api/v1/events/fieldservice", body)

		assert.Equal(t, http.StatusOK, rec.Code)
		f.stages.AssertExpectations(t)
		assert.Equal(t, "evt-42", got.SourceID)
		assert.Equal(t, "ready_for_pickup", got.Data.Status)
	})

	t.Run("accepts a single event object", func(t *testing.T) {
		f := newFixture(nil, nil)
		f.stages.On("Warehouse", mock.Anything, mock.Anything).Once()

		rec := f.do(http.MethodPost, "/api/v1/events/warehouse", envelopeJSON(t, order.WaitingForWarehouse))

		assert.Equal(t, http.StatusOK, rec.Code)
		f.stages.AssertExpectations(t)
	})

	t.Run("rejects a body that is not json", func(t *testing.T) {
		f := newFixture(nil, nil)

		rec := f.do(http.MethodPost, "/api/v1/events/warehouse", "hello")

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestServer_Deliveries(t *testing.T) {
	started := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	t.Run("lists active runs", func(t *testing.T) {
		f := newFixture(nil, stubDeliveries{{OrderID: "1001", Sent: 3, Total: 10, StartedAt: started}})

		rec := f.do(http.MethodGet, "/api/v1/deliveries", "")

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t,
			`[{"order_id":"1001","sent":3,"total":10,"started_at":"2024-05-01T10:00:00Z"}]`,
			rec.Body.String())
	})

	t.Run("cancel", func(t *testing.T) {
		f := newFixture(nil, nil)
		f.deliveries.On("Cancel", "1001").Return(nil).Once()

		rec := f.do(http.MethodDelete, "/api/v1/deliveries/1001", "")

		assert.Equal(t, http.StatusNoContent, rec.Code)
		f.deliveries.AssertExpectations(t)
	})

	t.Run("cancel unknown order", func(t *testing.T) {
		f := newFixture(nil, nil)
		f.deliveries.On("Cancel", "7").Return(errs.NewObjectNotFoundError("delivery", "7")).Once()

		rec := f.do(http.MethodDelete, "/api/v1/deliveries/7", "")

		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.JSONEq(t, `{"code":404,"message":"No delivery in progress for order 7"}`, rec.Body.String())
	})
}

func TestServer_InventoryAndHealth(t *testing.T) {
	f := newFixture(stubInventory{{MaterialID: "cal", Quantity: 6}, {MaterialID: "telha", Quantity: 14}}, nil)

	rec := f.do(http.MethodGet, "/api/v1/inventory", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[{"material_id":"cal","quantity":6},{"material_id":"telha","quantity":14}]`, rec.Body.String())

	rec = f.do(http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Healthy", rec.Body.String())

	rec = f.do(http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}
