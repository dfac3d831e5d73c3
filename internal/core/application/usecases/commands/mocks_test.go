package commands_test

import (
	"context"
	"testing"

	"orderflow/internal/core/domain/model/event"
	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/core/domain/services"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockEventPublisher struct{ mock.Mock }

func (m *MockEventPublisher) Publish(ctx context.Context, topic event.Topic, env event.Envelope) error {
	args := m.Called(ctx, topic, env)
	return args.Error(0)
}

type MockGeocoder struct{ mock.Mock }

func (m *MockGeocoder) Geocode(ctx context.Context, address string) (kernel.Coordinate, error) {
	args := m.Called(ctx, address)
	return args.Get(0).(kernel.Coordinate), args.Error(1)
}

type MockRouter struct{ mock.Mock }

func (m *MockRouter) Route(ctx context.Context, from, to kernel.Coordinate) (kernel.Route, error) {
	args := m.Called(ctx, from, to)
	return args.Get(0).(kernel.Route), args.Error(1)
}

type MockDeliveryTracker struct{ mock.Mock }

func (m *MockDeliveryTracker) Reserve(orderID string) (func(), error) {
	args := m.Called(orderID)
	release, _ := args.Get(0).(func())
	return release, args.Error(1)
}

func (m *MockDeliveryTracker) Track(ctx context.Context, o *order.Order, plan services.DeliveryPlan) error {
	args := m.Called(ctx, o, plan)
	return args.Error(0)
}

type MockInventoryChecker struct{ mock.Mock }

func (m *MockInventoryChecker) IsFulfillable(requested []order.MaterialLine) bool {
	args := m.Called(requested)
	return args.Bool(0)
}

func (m *MockInventoryChecker) Shortages(requested []order.MaterialLine) []string {
	args := m.Called(requested)
	return args.Get(0).([]string)
}

func newTestOrder(t *testing.T, status order.Status) *order.Order {
	t.Helper()
	cimento, err := order.NewMaterialLine("cimento", 2)
	require.NoError(t, err)
	tijolo, err := order.NewMaterialLine("tijolo", 4)
	require.NoError(t, err)
	o, err := order.NewOrder("o-1", "fs-7", []order.MaterialLine{cimento, tijolo}, "Rua Principal 1, Leiria", status)
	require.NoError(t, err)
	return o
}

func envelopeWith(eventType event.Type, subject event.Subject, status order.Status) any {
	return mock.MatchedBy(func(env event.Envelope) bool {
		return env.EventType == eventType &&
			env.Subject == subject &&
			env.Data.Status == status.String() &&
			env.DataVersion == event.DataVersion
	})
}
