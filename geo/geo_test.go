// geo/geo_test.go
// Copyright(c) 2025-2026 divert contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package geo

import (
	"math"
	"testing"
)

func TestMakeCoordinate(t *testing.T) {
	for _, tt := range []struct {
		lat, lon float64
		ok       bool
	}{
		{40.7128, -74.0060, true},
		{90, 180, true},
		{-90, -180, true},
		{0, 0, true},
		{90.0001, 0, false},
		{-91, 0, false},
		{0, 180.5, false},
		{0, -181, false},
		{math.NaN(), 0, false},
		{0, math.Inf(1), false},
	} {
		_, err := MakeCoordinate(tt.lat, tt.lon)
		if tt.ok && err != nil {
			t.Errorf("MakeCoordinate(%v, %v): unexpected error %v", tt.lat, tt.lon, err)
		}
		if !tt.ok && err == nil {
			t.Errorf("MakeCoordinate(%v, %v): expected error", tt.lat, tt.lon)
		}
	}
}

func TestNMDistance(t *testing.T) {
	jfk := Coordinate{Lat: 40.6413, Lon: -73.7781}
	lax := Coordinate{Lat: 33.9416, Lon: -118.4085}
	lhr := Coordinate{Lat: 51.4700, Lon: -0.4543}

	// Published great-circle distances, spherical Earth; allow a few NM
	// of slop for the coordinates used.
	for _, tt := range []struct {
		a, b     Coordinate
		expected float64
	}{
		{jfk, lax, 2144},
		{jfk, lhr, 2990},
		// One degree of latitude along a meridian is 60 NM by definition.
		{Coordinate{Lat: 0, Lon: 0}, Coordinate{Lat: 1, Lon: 0}, 60.04},
	} {
		d := NMDistance(tt.a, tt.b)
		if math.Abs(d-tt.expected) > 10 {
			t.Errorf("NMDistance(%v, %v) = %f, expected ~%f", tt.a, tt.b, d, tt.expected)
		}
	}
}

func TestNMDistanceSymmetry(t *testing.T) {
	pts := []Coordinate{
		{Lat: 40.7128, Lon: -74.0060},
		{Lat: -33.8688, Lon: 151.2093},
		{Lat: 64.1466, Lon: -21.9426},
		{Lat: 0.0001, Lon: 179.9999},
		{Lat: -89.9, Lon: 12.3},
	}
	for _, a := range pts {
		for _, b := range pts {
			d1, d2 := NMDistance(a, b), NMDistance(b, a)
			if math.Abs(d1-d2) > 1e-6 {
				t.Errorf("NMDistance not symmetric for %v, %v: %v vs %v", a, b, d1, d2)
			}
		}
		if d := NMDistance(a, a); d != 0 {
			t.Errorf("NMDistance(%v, %v) = %v, expected 0", a, a, d)
		}
	}
}

func TestBearing(t *testing.T) {
	origin := Coordinate{Lat: 40, Lon: -74}
	for _, tt := range []struct {
		to       Coordinate
		expected float64
	}{
		{Coordinate{Lat: 41, Lon: -74}, 0},    // due north
		{Coordinate{Lat: 39, Lon: -74}, 180},  // due south
		{Coordinate{Lat: 40, Lon: -73}, 89.7}, // roughly east (great circle)
		{Coordinate{Lat: 40, Lon: -75}, 270.3},
	} {
		b := Bearing(origin, tt.to)
		if math.Abs(b-tt.expected) > 0.5 {
			t.Errorf("Bearing(%v, %v) = %f, expected ~%f", origin, tt.to, b, tt.expected)
		}
		if b < 0 || b >= 360 {
			t.Errorf("Bearing(%v, %v) = %f out of [0,360)", origin, tt.to, b)
		}
	}

	if b := Bearing(origin, origin); b != 0 {
		t.Errorf("Bearing to self = %f, expected 0", b)
	}
}
