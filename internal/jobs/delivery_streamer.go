package jobs

import (
	"context"
	"log/slog"
	"time"

	"orderflow/internal/core/domain/model/event"
	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/core/domain/services"
	"orderflow/internal/core/ports"
	"orderflow/internal/pkg/metrics"
)

// DefaultPacingInterval is the wait between two location updates.
const DefaultPacingInterval = 10 * time.Second

// DeliveryStreamer publishes the location updates of one delivery plan in order.
type DeliveryStreamer struct {
	publisher ports.EventPublisher
	interval  time.Duration
	after     func(time.Duration) <-chan time.Time
	logger    *slog.Logger
}

// StreamerOption configures a DeliveryStreamer.
type StreamerOption func(*DeliveryStreamer)

// WithClock replaces the pacing timer. Tests use it to skip real waits.
func WithClock(after func(time.Duration) <-chan time.Time) StreamerOption {
	return func(s *DeliveryStreamer) {
		s.after = after
	}
}

// NewDeliveryStreamer paces waypoints by interval and publishes them through publisher.
func NewDeliveryStreamer(
	publisher ports.EventPublisher,
	interval time.Duration,
	logger *slog.Logger,
	opts ...StreamerOption,
) *DeliveryStreamer {
	if interval < 0 {
		interval = 0
	}
	s := &DeliveryStreamer{
		publisher: publisher,
		interval:  interval,
		logger:    logger.With("component", "delivery_streamer"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Stream emits one SendingCoordinates/RouteUpdate event per waypoint on the
// tracking topic. It waits the pacing interval after every waypoint except the
// destination and then marks o delivered. o must be Delivering.
//
// Publish failures are logged and do not stop the run. Cancelling ctx does, and
// Stream returns ctx.Err(). onSent, when set, receives the count of waypoints
// handled so far.
func (s *DeliveryStreamer) Stream(
	ctx context.Context,
	o *order.Order,
	plan services.DeliveryPlan,
	onSent func(sent int),
) error {
	updates, err := plan.Updates()
	if err != nil {
		return err
	}

	logger := s.logger.With("order_id", o.ID(), "waypoints", len(plan.Waypoints))
	logger.InfoContext(ctx, "delivery stream started", "interval", s.interval)

	for i, wp := range plan.Waypoints {
		if err = ctx.Err(); err != nil {
			return err
		}

		if err = o.MoveDriver(updates[i]); err != nil {
			return err
		}

		env, envErr := event.NewEnvelope(event.SendingCoordinates, event.SubjectRouteUpdate, o)
		if envErr != nil {
			return envErr
		}

		if pubErr := s.publisher.Publish(ctx, event.TopicTracking, env); pubErr != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			logger.WarnContext(ctx, "location update not delivered",
				"index", wp.Index(), "event_id", env.ID.String(), "error", pubErr)
		} else {
			metrics.WaypointsSentTotal.Inc()
		}

		if onSent != nil {
			onSent(i + 1)
		}

		logger.DebugContext(ctx, "location update sent",
			"step", i+1, "index", wp.Index(), "current", wp.Coordinate().String())

		if plan.IsLast(wp) {
			break
		}

		if err = s.wait(ctx); err != nil {
			return err
		}
	}

	if err = o.Deliver(); err != nil {
		return err
	}
	logger.InfoContext(ctx, "delivery stream finished", "status", o.Status().String())
	return nil
}

func (s *DeliveryStreamer) wait(ctx context.Context) error {
	if s.after != nil {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-s.after(s.interval):
			return nil
		}
	}

	timer := time.NewTimer(s.interval)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
