// engine/compat.go
// Copyright(c) 2025-2026 divert contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package engine

import (
	"fmt"
	"math"

	"github.com/flightsafe/divert/av"
)

// ScoringPolicy holds the compatibility constants. The defaults are
// sensible; none of them are contractual.
type ScoringPolicy struct {
	// SurplusCap is the available/required ratio at which additional
	// margin stops improving the score.
	SurplusCap float64
	// FloorScore is the score of a compatible site that exactly meets
	// every minimum.
	FloorScore float64
	// MarginWarnFraction adds a warning when a compatible site's runway
	// margin is below this fraction of the requirement.
	MarginWarnFraction float64
	// WidthToleranceFt absorbs measurement variation in published
	// runway widths before the width check fails.
	WidthToleranceFt int
	// SurfaceFactors scales the score by surface category.
	SurfaceFactors map[av.Surface]float64
}

func DefaultScoringPolicy() ScoringPolicy {
	return ScoringPolicy{
		SurplusCap:         1.5,
		FloorScore:         0.5,
		MarginWarnFraction: 0.10,
		WidthToleranceFt:   5,
		SurfaceFactors: map[av.Surface]float64{
			av.SurfacePaved:   1.0,
			av.SurfaceUnknown: 0.8,
			av.SurfaceUnpaved: 0.65,
			av.SurfaceWater:   0.5,
		},
	}
}

// Evaluation is the verdict for one (aircraft, site) pair. Warnings are
// informational and never exclusionary on their own.
type Evaluation struct {
	Compatible bool
	Score      float64
	Warnings   []string
}

// Evaluate classifies one aircraft/site pair. Pure: no I/O, no shared
// state. The only error path is a malformed profile.
func (p ScoringPolicy) Evaluate(ac av.AircraftProfile, site av.LandingSite) (Evaluation, error) {
	if ac.Type == "" || ac.MinRunwayLengthFt <= 0 {
		return Evaluation{}, fmt.Errorf("%q: %w", ac.Type, av.ErrInvalidProfile)
	}

	var ev Evaluation
	ev.Compatible = true

	// Hard requirement: runway length.
	if site.LongestRunwayFt < ac.MinRunwayLengthFt {
		ev.Compatible = false
		ev.Warnings = append(ev.Warnings, fmt.Sprintf("runway too short: %d ft < %d ft required",
			site.LongestRunwayFt, ac.MinRunwayLengthFt))
	}

	// Width is only checked when the site publishes it.
	if site.RunwayWidthFt > 0 {
		if ac.MinRunwayWidthFt > 0 && site.RunwayWidthFt < ac.MinRunwayWidthFt-p.WidthToleranceFt {
			ev.Compatible = false
			ev.Warnings = append(ev.Warnings, fmt.Sprintf("runway too narrow: %d ft < %d ft required",
				site.RunwayWidthFt, ac.MinRunwayWidthFt))
		}
	} else {
		ev.Warnings = append(ev.Warnings, "runway width unknown, verify before use")
	}

	// Likewise weight capacity.
	if site.WeightCapacityLbs > 0 {
		if ac.MaxWeightLbs > site.WeightCapacityLbs {
			ev.Compatible = false
			ev.Warnings = append(ev.Warnings, fmt.Sprintf("weight capacity exceeded: %d lbs > %d lbs",
				ac.MaxWeightLbs, site.WeightCapacityLbs))
		}
	} else if ac.MaxWeightLbs > 0 {
		ev.Warnings = append(ev.Warnings, "weight capacity unpublished, check surface bearing strength")
	}

	// Soft surfaces are flagged for the big aircraft.
	if site.Surface == av.SurfaceUnpaved || site.Surface == av.SurfaceWater {
		if ac.Category == av.CategoryHeavy || ac.Category == av.CategorySuper {
			ev.Warnings = append(ev.Warnings, fmt.Sprintf("%s surface may not support %s aircraft",
				site.Surface, ac.Category))
		}
	}

	if !ev.Compatible {
		return ev, nil
	}

	// Score: the worst dimension governs, each mapped through
	// [FloorScore, 1] over the margin range [1, SurplusCap], then
	// scaled by surface. Monotonic: improving any dimension never
	// lowers the result, and incompatible pairs are pinned to 0.
	dim := math.Inf(1)
	minRatio := math.Inf(1)

	ratio := float64(site.LongestRunwayFt) / float64(ac.MinRunwayLengthFt)
	dim = math.Min(dim, p.dimScore(ratio))
	minRatio = math.Min(minRatio, ratio)

	if site.RunwayWidthFt > 0 && ac.MinRunwayWidthFt > 0 {
		ratio := float64(site.RunwayWidthFt) / float64(ac.MinRunwayWidthFt)
		dim = math.Min(dim, p.dimScore(ratio))
		minRatio = math.Min(minRatio, ratio)
	}
	if site.WeightCapacityLbs > 0 && ac.MaxWeightLbs > 0 {
		ratio := float64(site.WeightCapacityLbs) / float64(ac.MaxWeightLbs)
		dim = math.Min(dim, p.dimScore(ratio))
		minRatio = math.Min(minRatio, ratio)
	}

	if minRatio-1 < p.MarginWarnFraction {
		ev.Warnings = append(ev.Warnings, fmt.Sprintf("marginal: %.0f%% margin over minimums",
			100*math.Max(0, minRatio-1)))
	}

	factor, ok := p.SurfaceFactors[site.Surface]
	if !ok {
		factor = 1
	}
	ev.Score = math.Min(1, math.Max(0, dim*factor))
	return ev, nil
}

// dimScore maps an available/required ratio (>= 1 for compatible
// dimensions) onto [FloorScore, 1].
func (p ScoringPolicy) dimScore(ratio float64) float64 {
	m := (ratio - 1) / (p.SurplusCap - 1)
	m = math.Max(0, math.Min(1, m))
	return p.FloorScore + (1-p.FloorScore)*m
}
