package jobs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"orderflow/internal/core/application/usecases/queries"
	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/core/domain/services"
	"orderflow/internal/core/ports"
	"orderflow/internal/pkg/errs"
	"orderflow/internal/pkg/metrics"
)

var (
	ErrDeliveryInProgress = ports.ErrDeliveryInProgress
	ErrTrackerStopped     = errors.New("delivery tracker is stopped")
)

// deliveryRun is a reservation until started is set by Track.
type deliveryRun struct {
	ctx       context.Context
	cancel    context.CancelFunc
	started   bool
	startedAt time.Time
	total     int
	sent      int
}

// DeliveryTracker runs one DeliveryStreamer goroutine per order.
// Runs outlive the context passed to Track; they end at the destination, on
// Cancel or on StopAll.
type DeliveryTracker struct {
	streamer *DeliveryStreamer

	ctx    context.Context
	stop   context.CancelFunc
	mu     sync.Mutex
	runs   map[string]*deliveryRun
	wg     sync.WaitGroup
	logger *slog.Logger
}

// NewDeliveryTracker runs one streamer goroutine per order.
func NewDeliveryTracker(streamer *DeliveryStreamer, logger *slog.Logger) *DeliveryTracker {
	ctx, stop := context.WithCancel(context.Background())
	return &DeliveryTracker{
		streamer: streamer,
		ctx:      ctx,
		stop:     stop,
		runs:     make(map[string]*deliveryRun),
		logger:   logger.With("component", "delivery_tracker"),
	}
}

// Reserve claims orderID for a run that Track will start. Unstarted claims are
// not listed by Active and cannot be cancelled.
func (t *DeliveryTracker) Reserve(orderID string) (func(), error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.ctx.Err() != nil {
		return nil, ErrTrackerStopped
	}
	if _, busy := t.runs[orderID]; busy {
		return nil, fmt.Errorf("%w: order %s", ErrDeliveryInProgress, orderID)
	}
	run := t.newRun()
	t.runs[orderID] = run

	release := func() {
		t.mu.Lock()
		defer t.mu.Unlock()
		if !run.started && t.runs[orderID] == run {
			delete(t.runs, orderID)
			run.cancel()
		}
	}
	return release, nil
}

// Track registers a run for o and starts it in the background.
func (t *DeliveryTracker) Track(ctx context.Context, o *order.Order, plan services.DeliveryPlan) error {
	if err := o.Validate(); err != nil {
		return err
	}

	snapshot := o.Clone()
	id := snapshot.ID()

	t.mu.Lock()
	if t.ctx.Err() != nil {
		t.mu.Unlock()
		return ErrTrackerStopped
	}
	run, exists := t.runs[id]
	if exists && run.started {
		t.mu.Unlock()
		return fmt.Errorf("%w: order %s", ErrDeliveryInProgress, id)
	}
	if !exists {
		run = t.newRun()
		t.runs[id] = run
	}
	run.started = true
	run.startedAt = time.Now().UTC()
	run.total = len(plan.Waypoints)
	runCtx := run.ctx
	t.wg.Add(1)
	t.mu.Unlock()

	metrics.DeliveriesActive.Inc()
	t.logger.InfoContext(ctx, "delivery run registered", "order_id", id, "waypoints", run.total)

	go func() {
		defer t.wg.Done()
		defer t.finish(id, run)

		err := t.streamer.Stream(runCtx, snapshot, plan, func(sent int) {
			t.mu.Lock()
			run.sent = sent
			t.mu.Unlock()
		})

		switch {
		case err == nil:
			metrics.DeliveriesFinishedTotal.WithLabelValues(metrics.OutcomeDelivered).Inc()
			t.logger.InfoContext(runCtx, "order delivered", "order_id", id)
		case errors.Is(err, context.Canceled):
			metrics.DeliveriesFinishedTotal.WithLabelValues(metrics.OutcomeCanceled).Inc()
			t.logger.InfoContext(context.Background(), "delivery run canceled", "order_id", id)
		default:
			metrics.DeliveriesFinishedTotal.WithLabelValues(metrics.OutcomeFailure).Inc()
			t.logger.ErrorContext(context.Background(), "delivery run failed", "order_id", id, "error", err)
		}
	}()

	return nil
}

// Cancel stops the run of one order. Unknown orders are *errs.ObjectNotFoundError.
func (t *DeliveryTracker) Cancel(orderID string) error {
	t.mu.Lock()
	run, ok := t.runs[orderID]
	t.mu.Unlock()

	if !ok || !run.started {
		return errs.NewObjectNotFoundError("delivery", orderID)
	}
	run.cancel()
	return nil
}

// Active lists the runs in flight ordered by order id.
func (t *DeliveryTracker) Active() []queries.GetActiveDeliveriesQueryResponse {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make([]queries.GetActiveDeliveriesQueryResponse, 0, len(t.runs))
	for id, run := range t.runs {
		if !run.started {
			continue
		}
		out = append(out, queries.GetActiveDeliveriesQueryResponse{
			OrderID:   id,
			Sent:      run.sent,
			Total:     run.total,
			StartedAt: run.startedAt,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].OrderID < out[j].OrderID })
	return out
}

// StopAll cancels every run, waits for them to return and rejects new ones.
func (t *DeliveryTracker) StopAll() {
	t.mu.Lock()
	t.stop()
	t.mu.Unlock()

	t.wg.Wait()
	t.logger.InfoContext(context.Background(), "delivery tracker stopped")
}

func (t *DeliveryTracker) newRun() *deliveryRun {
	ctx, cancel := context.WithCancel(t.ctx)
	return &deliveryRun{ctx: ctx, cancel: cancel}
}

func (t *DeliveryTracker) finish(id string, run *deliveryRun) {
	t.mu.Lock()
	if t.runs[id] == run {
		delete(t.runs, id)
	}
	t.mu.Unlock()

	run.cancel()
	metrics.DeliveriesActive.Dec()
}
