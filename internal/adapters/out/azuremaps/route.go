package azuremaps

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/pkg/errs"
)

type routeResponse struct {
	Routes []struct {
		Summary struct {
			TravelTimeInSeconds *int `json:"travelTimeInSeconds"`
		} `json:"summary"`
		Legs []struct {
			Points []struct {
				Latitude  float64 `json:"latitude"`
				Longitude float64 `json:"longitude"`
			} `json:"points"`
		} `json:"legs"`
	} `json:"routes"`
}

// Route returns the points of the first leg of the first route from -> to.
func (c *Client) Route(ctx context.Context, from, to kernel.Coordinate) (kernel.Route, error) {
	key := routeKey(from, to)
	decoded, err := c.directions(ctx, from, to)
	if err != nil {
		return kernel.Route{}, err
	}
	if len(decoded.Routes) == 0 || len(decoded.Routes[0].Legs) == 0 {
		return kernel.Route{}, errs.NewLookupError("route", key)
	}

	raw := decoded.Routes[0].Legs[0].Points
	points := make([]kernel.Coordinate, 0, len(raw))
	for _, p := range raw {
		coord, coordErr := kernel.NewCoordinate(p.Latitude, p.Longitude)
		if coordErr != nil {
			return kernel.Route{}, errs.NewLookupErrorWithCause("route", key, coordErr)
		}
		points = append(points, coord)
	}

	route, err := kernel.NewRoute(points)
	if err != nil {
		return kernel.Route{}, errs.NewLookupErrorWithCause("route", key, err)
	}
	return route, nil
}

// TravelTime returns the driving time of the first route from -> to, taken
// from its summary.
func (c *Client) TravelTime(ctx context.Context, from, to kernel.Coordinate) (time.Duration, error) {
	decoded, err := c.directions(ctx, from, to)
	if err != nil {
		return 0, err
	}
	if len(decoded.Routes) == 0 || decoded.Routes[0].Summary.TravelTimeInSeconds == nil {
		return 0, errs.NewLookupError("route", routeKey(from, to))
	}
	return time.Duration(*decoded.Routes[0].Summary.TravelTimeInSeconds) * time.Second, nil
}

func (c *Client) directions(ctx context.Context, from, to kernel.Coordinate) (routeResponse, error) {
	if err := from.Validate(); err != nil {
		return routeResponse{}, err
	}
	if err := to.Validate(); err != nil {
		return routeResponse{}, err
	}

	key := routeKey(from, to)
	resp, err := c.get(ctx, "/route/directions/json", map[string]string{
		"query": queryPair(from, to),
	})
	if err != nil {
		return routeResponse{}, errs.NewLookupErrorWithCause("route", key, err)
	}
	defer resp.Body.Close()

	var decoded routeResponse
	if err = json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return routeResponse{}, errs.NewLookupErrorWithCause("route", key, fmt.Errorf("decode route response: %w", err))
	}
	return decoded, nil
}

func routeKey(from, to kernel.Coordinate) string {
	return fmt.Sprintf("%s->%s", from, to)
}

func queryPair(from, to kernel.Coordinate) string {
	return fmt.Sprintf("%g,%g:%g,%g", from.Latitude(), from.Longitude(), to.Latitude(), to.Longitude())
}
