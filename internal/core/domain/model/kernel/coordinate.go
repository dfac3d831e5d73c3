package kernel

import (
	"errors"
	"fmt"
	"math"

	"orderflow/internal/pkg/errs"
	"orderflow/internal/pkg/guard"
)

const (
	LatitudeMin  = -90.0
	LatitudeMax  = 90.0
	LongitudeMin = -180.0
	LongitudeMax = 180.0
)

var ErrCoordinateIsNotConstructed = errs.NewValueIsRequiredError(
	"coordinate must be created via NewCoordinate")

// Coordinate is a WGS84 latitude/longitude pair in degrees.
type Coordinate struct { //nolint:recvcheck //using for validation
	latitude  float64
	longitude float64
	guard     guard.ConstructorGuard
}

// NewCoordinate validates both axes and joins the failures.
func NewCoordinate(latitude, longitude float64) (Coordinate, error) {
	c := Coordinate{guard: guard.NewConstructorGuard()}

	if err := errors.Join(c.setLatitude(latitude), c.setLongitude(longitude)); err != nil {
		return Coordinate{}, err
	}

	return c, nil
}

// MustNewCoordinate panics on invalid input. Intended for constants and tests.
func MustNewCoordinate(latitude, longitude float64) Coordinate {
	c, err := NewCoordinate(latitude, longitude)
	if err != nil {
		panic(err)
	}
	return c
}

func (c Coordinate) Validate() error {
	return c.guard.Validate(ErrCoordinateIsNotConstructed)
}

func (c Coordinate) Latitude() float64 {
	return c.latitude
}

func (c Coordinate) Longitude() float64 {
	return c.longitude
}

// String formats the pair as (lat,lon).
func (c Coordinate) String() string {
	return fmt.Sprintf("(%g,%g)", c.latitude, c.longitude)
}

func (c *Coordinate) setLatitude(latitude float64) error {
	if math.IsNaN(latitude) || latitude < LatitudeMin || latitude > LatitudeMax {
		return errs.NewValueIsOutOfRangeError("latitude", latitude, LatitudeMin, LatitudeMax)
	}
	c.latitude = latitude
	return nil
}

func (c *Coordinate) setLongitude(longitude float64) error {
	if math.IsNaN(longitude) || longitude < LongitudeMin || longitude > LongitudeMax {
		return errs.NewValueIsOutOfRangeError("longitude", longitude, LongitudeMin, LongitudeMax)
	}
	c.longitude = longitude
	return nil
}
