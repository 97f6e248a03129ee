package geo

import (
	"errors"
	"math/rand/v2"
)

// ErrInvalidBounds is returned when a bounding box is empty or inverted.
var ErrInvalidBounds = errors.New("invalid bounds")

// Bounds is an axis-aligned latitude/longitude box, in degrees.
type Bounds struct {
	LatMin float64 `json:"lat_min" yaml:"lat_min" mapstructure:"lat_min"`
	LatMax float64 `json:"lat_max" yaml:"lat_max" mapstructure:"lat_max"`
	LngMin float64 `json:"lng_min" yaml:"lng_min" mapstructure:"lng_min"`
	LngMax float64 `json:"lng_max" yaml:"lng_max" mapstructure:"lng_max"`
}

// Islamabad is the default simulation area (roughly 25km x 25km).
var Islamabad = Bounds{
	LatMin: 33.55,
	LatMax: 33.78,
	LngMin: 72.95,
	LngMax: 73.22,
}

// Validate reports whether the box has a positive extent on both axes.
func (b Bounds) Validate() error {
	if !(b.LatMax > b.LatMin) || !(b.LngMax > b.LngMin) {
		return ErrInvalidBounds
	}
	if b.LatMin < -90 || b.LatMax > 90 || b.LngMin < -180 || b.LngMax > 180 {
		return ErrInvalidBounds
	}
	return nil
}

// RandomPoint draws a point uniformly over the box. Latitude is drawn before longitude.
func (b Bounds) RandomPoint(rng *rand.Rand) (lat, lng float64) {
	lat = b.LatMin + (b.LatMax-b.LatMin)*rng.Float64()
	lng = b.LngMin + (b.LngMax-b.LngMin)*rng.Float64()
	return lat, lng
}
