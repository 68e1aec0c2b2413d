// av/av.go
// Copyright(c) 2025-2026 divert contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

// Package av holds the aviation data model shared across the service:
// landing sites, aircraft profiles, and the error taxonomy.
package av

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/flightsafe/divert/geo"
)

// Surface categorizes a runway surface.
type Surface int

const (
	SurfaceUnknown Surface = iota
	SurfacePaved
	SurfaceUnpaved
	SurfaceWater
)

func (s Surface) String() string {
	switch s {
	case SurfacePaved:
		return "paved"
	case SurfaceUnpaved:
		return "unpaved"
	case SurfaceWater:
		return "water"
	default:
		return "unknown"
	}
}

func (s Surface) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *Surface) UnmarshalJSON(b []byte) error {
	var str string
	if err := json.Unmarshal(b, &str); err != nil {
		return err
	}
	*s = ParseSurface(str)
	return nil
}

// ParseSurface maps the free-form surface strings found in the
// OurAirports runways data to a Surface category. The dataset uses both
// abbreviations ("ASP", "GRS") and words ("asphalt", "turf"), in
// inconsistent case.
func ParseSurface(s string) Surface {
	s = strings.ToLower(strings.TrimSpace(s))
	switch {
	case s == "":
		return SurfaceUnknown
	case strings.HasPrefix(s, "asp"), strings.HasPrefix(s, "con"), strings.HasPrefix(s, "pem"),
		strings.Contains(s, "asphalt"), strings.Contains(s, "concrete"), strings.Contains(s, "paved"),
		s == "bit", strings.Contains(s, "bitum"), strings.HasPrefix(s, "mac"), s == "tar":
		return SurfacePaved
	case strings.HasPrefix(s, "grs"), strings.HasPrefix(s, "grass"), strings.HasPrefix(s, "turf"),
		strings.HasPrefix(s, "grv"), strings.HasPrefix(s, "gravel"), strings.HasPrefix(s, "dirt"),
		strings.HasPrefix(s, "soil"), strings.HasPrefix(s, "sand"), strings.HasPrefix(s, "clay"),
		strings.HasPrefix(s, "snow"), strings.HasPrefix(s, "ice"), strings.Contains(s, "unpaved"):
		return SurfaceUnpaved
	case strings.HasPrefix(s, "wat"):
		return SurfaceWater
	default:
		return SurfaceUnknown
	}
}

// LandingSite is a candidate landing location: an airport, airstrip, or
// seaplane base. The full site set is loaded once per process lifetime
// and treated as read-only afterwards. Zero values for RunwayWidthFt and
// WeightCapacityLbs mean the figure is not published.
type LandingSite struct {
	Ident             string         `json:"ident"`
	Name              string         `json:"name"`
	Location          geo.Coordinate `json:"location"`
	ElevationFt       int            `json:"elevation_ft"`
	LongestRunwayFt   int            `json:"longest_runway_ft"`
	RunwayWidthFt     int            `json:"runway_width_ft,omitempty"`
	Surface           Surface        `json:"surface"`
	WeightCapacityLbs int            `json:"weight_capacity_lbs,omitempty"`
	Contact           string         `json:"contact,omitempty"`
	LastUpdated       time.Time      `json:"last_updated"`
}

// Category is an aircraft weight class.
type Category string

const (
	CategoryLight  Category = "light"
	CategoryMedium Category = "medium"
	CategoryHeavy  Category = "heavy"
	CategorySuper  Category = "super"
)

// CruiseSpeedKts returns a rough typical cruise speed for the category,
// used only for flight-time estimates.
func (c Category) CruiseSpeedKts() int {
	switch c {
	case CategoryLight:
		return 120
	case CategoryMedium:
		return 200
	case CategoryHeavy:
		return 250
	case CategorySuper:
		return 280
	default:
		return 180
	}
}

// AircraftProfile gives the runway and weight requirements for one
// aircraft type. Immutable once loaded.
type AircraftProfile struct {
	Type              string   `json:"aircraft_type"`
	MinRunwayLengthFt int      `json:"min_runway_length_ft"`
	MinRunwayWidthFt  int      `json:"min_runway_width_ft"`
	MaxWeightLbs      int      `json:"max_weight_lbs"`
	ApproachSpeedKts  int      `json:"approach_speed_kts"`
	Category          Category `json:"category"`
}

// ProfileOverride carries caller-supplied minimums for aircraft types
// not present in the profile database.
type ProfileOverride struct {
	MinRunwayLengthFt int `json:"min_runway_length_ft"`
	MinRunwayWidthFt  int `json:"min_runway_width_ft"`
	MaxWeightLbs      int `json:"max_weight_lbs"`
}

// Profile expands an override into a usable AircraftProfile for the
// given (unknown) type string.
func (o ProfileOverride) Profile(acType string) AircraftProfile {
	return AircraftProfile{
		Type:              fmt.Sprintf("%s (override)", acType),
		MinRunwayLengthFt: o.MinRunwayLengthFt,
		MinRunwayWidthFt:  o.MinRunwayWidthFt,
		MaxWeightLbs:      o.MaxWeightLbs,
		Category:          CategoryMedium,
	}
}

// FoldType canonicalizes an aircraft type string for lookups and cache
// keys: lowercase with runs of whitespace collapsed.
func FoldType(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}
