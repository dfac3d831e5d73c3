package services_test

import (
	"testing"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/services"
	"orderflow/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func route(t *testing.T, n int) kernel.Route {
	t.Helper()
	points := make([]kernel.Coordinate, n)
	for i := range points {
		points[i] = kernel.MustNewCoordinate(39.9+float64(i)*0.001, -8.4-float64(i)*0.001)
	}
	r, err := kernel.NewRoute(points)
	require.NoError(t, err)
	return r
}

func indices(waypoints []kernel.Waypoint) []int {
	out := make([]int, len(waypoints))
	for i, wp := range waypoints {
		out[i] = wp.Index()
	}
	return out
}

func TestRouteSampler_Sample(t *testing.T) {
	tests := []struct {
		name   string
		points int
		target int
		want   []int
	}{
		{"eleven points nine targets", 11, 9, []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 10}},
		{"two points", 2, 9, []int{0, 1}},
		{"short route", 5, 9, []int{0, 1, 2, 3, 4}},
		{"long route strides", 101, 9, []int{0, 11, 22, 33, 44, 55, 66, 77, 88, 100}},
		{"stride with truncation", 21, 9, []int{0, 2, 4, 6, 8, 10, 12, 14, 16, 20}},
		{"single target", 50, 1, []int{0, 49}},
		{"target equal to length", 10, 10, []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sampler, err := services.NewRouteSampler(tt.target)
			require.NoError(t, err)
			r := route(t, tt.points)

			got, err := sampler.Sample(r)

			require.NoError(t, err)
			assert.Equal(t, tt.want, indices(got))
			assert.LessOrEqual(t, len(got), tt.target+1)
			assert.Equal(t, r.Destination(), got[len(got)-1].Coordinate())
			assert.Equal(t, r.Origin(), got[0].Coordinate())
			for _, wp := range got {
				assert.Equal(t, r.At(wp.Index()), wp.Coordinate())
			}
		})
	}
}

func TestRouteSampler_DestinationOnce(t *testing.T) {
	sampler, err := services.NewRouteSampler(services.DefaultWaypointCount)
	require.NoError(t, err)

	for n := 2; n <= 60; n++ {
		got, err := sampler.Sample(route(t, n))
		require.NoError(t, err)

		last := 0
		for _, idx := range indices(got) {
			if idx == n-1 {
				last++
			}
		}
		assert.Equal(t, 1, last, "route of %d points", n)
		assert.IsIncreasing(t, indices(got))
	}
}

func TestNewRouteSampler_RejectsTarget(t *testing.T) {
	for _, target := range []int{0, -3} {
		_, err := services.NewRouteSampler(target)

		require.ErrorIs(t, err, errs.ErrValueIsOutOfRange)
	}
}

func TestRouteSampler_ZeroValue(t *testing.T) {
	var sampler services.RouteSampler

	_, err := sampler.Sample(route(t, 3))

	require.ErrorIs(t, err, errs.ErrValueIsOutOfRange)
}

func TestRouteSampler_UnconstructedRoute(t *testing.T) {
	sampler, err := services.NewRouteSampler(3)
	require.NoError(t, err)

	_, err = sampler.Sample(kernel.Route{})

	assert.Equal(t, kernel.ErrRouteIsNotConstructed, err)
}
