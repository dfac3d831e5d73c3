package jobs_test

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"orderflow/internal/core/domain/model/event"
	"orderflow/internal/core/domain/model/inventory"
	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/core/domain/services"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var (
	warehouse     = kernel.MustNewCoordinate(39.91344, -8.43924)
	deliveryPoint = kernel.MustNewCoordinate(39.74362, -8.80705)
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// recordingPublisher keeps every envelope it is handed.
type recordingPublisher struct {
	mu        sync.Mutex
	envelopes []event.Envelope
	topics    []event.Topic
	fail      func(n int) error
}

func (p *recordingPublisher) Publish(_ context.Context, topic event.Topic, env event.Envelope) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.envelopes = append(p.envelopes, env)
	p.topics = append(p.topics, topic)
	if p.fail != nil {
		return p.fail(len(p.envelopes))
	}
	return nil
}

func (p *recordingPublisher) sent() []event.Envelope {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]event.Envelope, len(p.envelopes))
	copy(out, p.envelopes)
	return out
}

// instantClock counts waits and fires immediately.
type instantClock struct {
	mu    sync.Mutex
	waits int
}

func (c *instantClock) after(time.Duration) <-chan time.Time {
	c.mu.Lock()
	c.waits++
	c.mu.Unlock()
	ch := make(chan time.Time, 1)
	ch <- time.Now()
	return ch
}

func (c *instantClock) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.waits
}

// blockingClock never fires; runs only end through cancellation.
func blockingClock(time.Duration) <-chan time.Time {
	return make(chan time.Time)
}

func plannedOrder(t *testing.T, id string, routePoints int) (*order.Order, services.DeliveryPlan) {
	t.Helper()
	line, err := order.NewMaterialLine("ferro", 4)
	require.NoError(t, err)
	o, err := order.NewOrder(id, "fs-7", []order.MaterialLine{line}, "Rua Principal 1, Leiria", order.ReadyForPickup)
	require.NoError(t, err)

	points := make([]kernel.Coordinate, routePoints)
	for i := range points {
		frac := float64(i) / float64(routePoints-1)
		points[i] = kernel.MustNewCoordinate(
			warehouse.Latitude()+(deliveryPoint.Latitude()-warehouse.Latitude())*frac,
			warehouse.Longitude()+(deliveryPoint.Longitude()-warehouse.Longitude())*frac,
		)
	}
	route, err := kernel.NewRoute(points)
	require.NoError(t, err)

	sampler, err := services.NewRouteSampler(services.DefaultWaypointCount)
	require.NoError(t, err)
	plan, err := services.NewDeliveryPlanner(sampler).Plan(o, warehouse, deliveryPoint, route)
	require.NoError(t, err)
	return o, plan
}

type MockInventoryRepository struct{ mock.Mock }

func (m *MockInventoryRepository) LoadStock(ctx context.Context) ([]inventory.Item, error) {
	args := m.Called(ctx)
	items, _ := args.Get(0).([]inventory.Item)
	return items, args.Error(1)
}
