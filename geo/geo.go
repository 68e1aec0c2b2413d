// geo/geo.go
// Copyright(c) 2025-2026 divert contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

// Package geo provides great-circle geometry over latitude-longitude
// coordinates, with distances expressed in nautical miles.
package geo

import (
	"errors"
	"fmt"
	"math"
)

// EarthRadiusNM is the spherical Earth radius used for all great-circle
// computations.
const EarthRadiusNM = 3440.065

// NMPerLatitude is the (constant) number of nautical miles per degree of
// latitude.
const NMPerLatitude = 60

var ErrInvalidCoordinate = errors.New("Latitude or longitude out of range")

// Coordinate is an immutable latitude-longitude pair in degrees.
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// MakeCoordinate validates the given latitude and longitude and returns
// the corresponding Coordinate. Out-of-range or non-finite values give
// ErrInvalidCoordinate.
func MakeCoordinate(lat, lon float64) (Coordinate, error) {
	c := Coordinate{Lat: lat, Lon: lon}
	if !c.Valid() {
		return Coordinate{}, fmt.Errorf("%.6f, %.6f: %w", lat, lon, ErrInvalidCoordinate)
	}
	return c, nil
}

// Valid reports whether the coordinate has finite values within the
// usual lat/long ranges.
func (c Coordinate) Valid() bool {
	if math.IsNaN(c.Lat) || math.IsNaN(c.Lon) || math.IsInf(c.Lat, 0) || math.IsInf(c.Lon, 0) {
		return false
	}
	return c.Lat >= -90 && c.Lat <= 90 && c.Lon >= -180 && c.Lon <= 180
}

func (c Coordinate) String() string {
	return fmt.Sprintf("%.6f, %.6f", c.Lat, c.Lon)
}

func sqr(x float64) float64 { return x * x }

func radians(d float64) float64 { return d / 180 * math.Pi }

func degrees(r float64) float64 { return r * 180 / math.Pi }

// NMDistance returns the great-circle distance in nautical miles between
// the two given coordinates, computed with the haversine formula.
// https://www.movable-type.co.uk/scripts/latlong.html
func NMDistance(a, b Coordinate) float64 {
	if a == b {
		return 0
	}

	lat1, lon1 := radians(a.Lat), radians(a.Lon)
	lat2, lon2 := radians(b.Lat), radians(b.Lon)
	dlat, dlon := lat2-lat1, lon2-lon1

	x := sqr(math.Sin(dlat/2)) + math.Cos(lat1)*math.Cos(lat2)*sqr(math.Sin(dlon/2))
	c := 2 * math.Asin(math.Min(1, math.Sqrt(x)))

	return EarthRadiusNM * c
}

// Bearing returns the initial true bearing in degrees, normalized to
// [0,360), to follow from one coordinate to the other. The bearing from
// a point to itself is mathematically undefined; zero is returned in
// that case.
func Bearing(from, to Coordinate) float64 {
	if from == to {
		return 0
	}

	lat1, lon1 := radians(from.Lat), radians(from.Lon)
	lat2, lon2 := radians(to.Lat), radians(to.Lon)
	dlon := lon2 - lon1

	y := math.Sin(dlon) * math.Cos(lat2)
	x := math.Cos(lat1)*math.Sin(lat2) - math.Sin(lat1)*math.Cos(lat2)*math.Cos(dlon)

	b := degrees(math.Atan2(y, x))
	b = math.Mod(b+360, 360)
	if b == 360 { // -0 folds over
		b = 0
	}
	return b
}
