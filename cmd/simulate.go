package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"orderflow/internal/adapters/out/eventbus"
	"orderflow/internal/core/domain/model/event"
	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/core/domain/services"
	"orderflow/internal/jobs"
	"orderflow/internal/pkg/errs"

	"gopkg.in/yaml.v3"
)

// SimulateOptions drives one offline delivery over a route read from disk.
type SimulateOptions struct {
	RoutePath      string
	OrderID        string
	FieldServiceID string
	Address        string
	Materials      []string
	Waypoints      int
	Interval       time.Duration
}

type routePoint struct {
	Latitude  float64 `yaml:"latitude"`
	Longitude float64 `yaml:"longitude"`
}

// Simulate streams a delivery for a ready_for_pickup order along the route in
// opts.RoutePath, writing every tracking event to out as a JSON line. The first
// route point stands in for the warehouse and the last for the delivery address.
func Simulate(ctx context.Context, opts SimulateOptions, out io.Writer, logger *slog.Logger) error {
	route, err := readRoute(opts.RoutePath)
	if err != nil {
		return err
	}

	lines, err := parseMaterials(opts.Materials)
	if err != nil {
		return err
	}

	orderID := opts.OrderID
	if orderID == "" {
		orderID = "simulated-" + kernel.NewUUID().String()
	}
	o, err := order.NewOrder(orderID, opts.FieldServiceID, lines, opts.Address, order.ReadyForPickup)
	if err != nil {
		return err
	}

	sampler, err := services.NewRouteSampler(opts.Waypoints)
	if err != nil {
		return err
	}
	plan, err := services.NewDeliveryPlanner(sampler).Plan(o, route.Origin(), route.Destination(), route)
	if err != nil {
		return err
	}

	publisher := eventbus.NewPublisher(eventbus.NewLogTransport(out), logger)

	env, err := event.NewEnvelope(event.SendingCoordinates, event.SubjectNewOrder, o)
	if err != nil {
		return err
	}
	if err = publisher.Publish(ctx, event.TopicTracking, env); err != nil {
		return err
	}

	streamer := jobs.NewDeliveryStreamer(publisher, opts.Interval, logger)
	return streamer.Stream(ctx, o, plan, nil)
}

// readRoute accepts a YAML or JSON list of {latitude, longitude} points.
func readRoute(path string) (kernel.Route, error) {
	if path == "" {
		return kernel.Route{}, errs.NewValueIsRequiredError("route file")
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return kernel.Route{}, fmt.Errorf("read route file: %w", err)
	}

	var points []routePoint
	if err = yaml.Unmarshal(raw, &points); err != nil {
		return kernel.Route{}, errs.NewValueIsInvalidErrorWithCause("route file", err)
	}

	coords := make([]kernel.Coordinate, 0, len(points))
	var pointErrs []error
	for i, p := range points {
		c, cErr := kernel.NewCoordinate(p.Latitude, p.Longitude)
		if cErr != nil {
			pointErrs = append(pointErrs, fmt.Errorf("route[%d]: %w", i, cErr))
			continue
		}
		coords = append(coords, c)
	}
	if err = errors.Join(pointErrs...); err != nil {
		return kernel.Route{}, err
	}

	return kernel.NewRoute(coords)
}

// parseMaterials reads "material_id=quantity" pairs.
func parseMaterials(specs []string) ([]order.MaterialLine, error) {
	lines := make([]order.MaterialLine, 0, len(specs))
	for _, s := range specs {
		id, qty, ok := strings.Cut(s, "=")
		if !ok {
			return nil, errs.NewValueIsInvalidError("material " + s)
		}
		n, err := strconv.Atoi(strings.TrimSpace(qty))
		if err != nil {
			return nil, errs.NewValueIsInvalidErrorWithCause("material "+s, err)
		}
		line, err := order.NewMaterialLine(strings.TrimSpace(id), n)
		if err != nil {
			return nil, err
		}
		lines = append(lines, line)
	}
	return lines, nil
}
