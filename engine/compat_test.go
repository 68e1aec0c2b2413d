// engine/compat_test.go
// Copyright(c) 2025-2026 divert contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package engine

import (
	"errors"
	"strings"
	"testing"

	"github.com/flightsafe/divert/av"
)

var c172 = av.AircraftProfile{
	Type:              "Cessna 172",
	MinRunwayLengthFt: 1200,
	MinRunwayWidthFt:  50,
	MaxWeightLbs:      2550,
	ApproachSpeedKts:  65,
	Category:          av.CategoryLight,
}

func pavedSite(runwayFt, widthFt int) av.LandingSite {
	return av.LandingSite{
		Ident:           "TEST",
		Name:            "Test Field",
		LongestRunwayFt: runwayFt,
		RunwayWidthFt:   widthFt,
		Surface:         av.SurfacePaved,
	}
}

func TestEvaluateHardRequirements(t *testing.T) {
	p := DefaultScoringPolicy()

	// Runway shorter than the minimum is always incompatible with
	// score 0.
	ev, err := p.Evaluate(c172, pavedSite(800, 75))
	if err != nil {
		t.Fatal(err)
	}
	if ev.Compatible {
		t.Error("800 ft runway compatible with 1200 ft minimum")
	}
	if ev.Score != 0 {
		t.Errorf("incompatible score = %v, expected 0", ev.Score)
	}

	// Comfortably adequate runway and width.
	ev, err = p.Evaluate(c172, pavedSite(3000, 100))
	if err != nil {
		t.Fatal(err)
	}
	if !ev.Compatible {
		t.Errorf("3000 ft runway incompatible: %v", ev.Warnings)
	}
	if ev.Score <= 0 || ev.Score > 1 {
		t.Errorf("score %v out of (0,1]", ev.Score)
	}

	// Too narrow, beyond the measurement tolerance.
	ev, _ = p.Evaluate(c172, pavedSite(3000, 40))
	if ev.Compatible {
		t.Error("40 ft width compatible with 50 ft minimum")
	}

	// Narrow but within tolerance.
	ev, _ = p.Evaluate(c172, pavedSite(3000, 46))
	if !ev.Compatible {
		t.Errorf("width within tolerance rejected: %v", ev.Warnings)
	}
}

func TestEvaluateUnknownWidth(t *testing.T) {
	p := DefaultScoringPolicy()

	// Unknown width must not fail the check, but must warn.
	ev, err := p.Evaluate(c172, pavedSite(3000, 0))
	if err != nil {
		t.Fatal(err)
	}
	if !ev.Compatible {
		t.Error("unknown width treated as incompatible")
	}
	if !hasWarning(ev.Warnings, "width unknown") {
		t.Errorf("missing width warning, got %v", ev.Warnings)
	}
}

func TestEvaluateWeightCapacity(t *testing.T) {
	p := DefaultScoringPolicy()

	site := pavedSite(3000, 100)
	site.WeightCapacityLbs = 2000 // below the 172's max weight
	ev, _ := p.Evaluate(c172, site)
	if ev.Compatible {
		t.Error("published capacity below max weight accepted")
	}

	site.WeightCapacityLbs = 0 // unpublished: skipped with warning
	ev, _ = p.Evaluate(c172, site)
	if !ev.Compatible {
		t.Error("unpublished capacity treated as incompatible")
	}
	if !hasWarning(ev.Warnings, "capacity unpublished") {
		t.Errorf("missing capacity warning, got %v", ev.Warnings)
	}
}

func TestEvaluateSoftSurface(t *testing.T) {
	p := DefaultScoringPolicy()

	heavy := av.AircraftProfile{
		Type: "Boeing 737-800", MinRunwayLengthFt: 6000, MinRunwayWidthFt: 100,
		MaxWeightLbs: 174200, Category: av.CategoryHeavy,
	}
	site := pavedSite(9000, 150)
	site.Surface = av.SurfaceUnpaved
	ev, _ := p.Evaluate(heavy, site)
	if !hasWarning(ev.Warnings, "surface") {
		t.Errorf("no soft-surface warning for heavy aircraft, got %v", ev.Warnings)
	}

	light := pavedSite(3000, 100)
	light.Surface = av.SurfaceUnpaved
	ev, _ = p.Evaluate(c172, light)
	if hasWarning(ev.Warnings, "may not support") {
		t.Errorf("soft-surface warning for light aircraft: %v", ev.Warnings)
	}
}

func TestScoreMonotonicRunwayLength(t *testing.T) {
	p := DefaultScoringPolicy()

	prev := -1.0
	for runway := 800; runway <= 4000; runway += 100 {
		ev, err := p.Evaluate(c172, pavedSite(runway, 100))
		if err != nil {
			t.Fatal(err)
		}
		if ev.Score < prev {
			t.Errorf("score decreased from %v to %v at %d ft", prev, ev.Score, runway)
		}
		if runway < c172.MinRunwayLengthFt && ev.Score != 0 {
			t.Errorf("%d ft below minimum but score %v", runway, ev.Score)
		}
		prev = ev.Score
	}
}

func TestScoreMarginal(t *testing.T) {
	p := DefaultScoringPolicy()

	// Exactly at minimums: compatible, near the boundary score, with a
	// marginal-margin warning.
	exact, _ := p.Evaluate(c172, pavedSite(1200, 100))
	if !exact.Compatible {
		t.Fatal("site exactly at minimums rejected")
	}
	if !hasWarning(exact.Warnings, "marginal") {
		t.Errorf("no marginal warning at exact minimum, got %v", exact.Warnings)
	}

	generous, _ := p.Evaluate(c172, pavedSite(5000, 100))
	if generous.Score <= exact.Score {
		t.Errorf("generous margin score %v <= exact-minimum score %v", generous.Score, exact.Score)
	}
	if hasWarning(generous.Warnings, "marginal") {
		t.Errorf("marginal warning with large margin: %v", generous.Warnings)
	}
}

func TestEvaluateInvalidProfile(t *testing.T) {
	p := DefaultScoringPolicy()
	_, err := p.Evaluate(av.AircraftProfile{}, pavedSite(3000, 100))
	if !errors.Is(err, av.ErrInvalidProfile) {
		t.Errorf("expected ErrInvalidProfile, got %v", err)
	}
}

func hasWarning(warnings []string, substr string) bool {
	for _, w := range warnings {
		if strings.Contains(w, substr) {
			return true
		}
	}
	return false
}
