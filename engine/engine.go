// engine/engine.go
// Copyright(c) 2025-2026 divert contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

// Package engine ranks candidate landing sites for an aircraft around
// an origin: it resolves the aircraft profile, queries the spatial
// index, scores every returned site, widens the radius when too few
// compatible sites are found nearby, and memoizes complete results.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"slices"
	"strings"

	"github.com/brunoga/deep"

	"github.com/flightsafe/divert/av"
	"github.com/flightsafe/divert/cache"
	"github.com/flightsafe/divert/geo"
	"github.com/flightsafe/divert/log"
	"github.com/flightsafe/divert/spatial"
)

// SiteIndex answers radius queries and identifier lookups; satisfied
// by *spatial.Index.
type SiteIndex interface {
	Query(center geo.Coordinate, radiusNM float64) []spatial.SiteDistance
	Site(ident string) (av.LandingSite, bool)
	Len() int
}

// IndexProvider hands out the active index snapshot, reporting false
// while none is available (during startup, before the first data load
// completes).
type IndexProvider interface {
	ActiveIndex() (SiteIndex, bool)
}

// FromHolder adapts a spatial.Holder to the IndexProvider interface.
func FromHolder(h *spatial.Holder) IndexProvider {
	return holderProvider{h}
}

type holderProvider struct {
	h *spatial.Holder
}

func (hp holderProvider) ActiveIndex() (SiteIndex, bool) {
	idx, ok := hp.h.Active()
	if !ok {
		return nil, false
	}
	return idx, true
}

// Policy holds the search policy knobs.
type Policy struct {
	// MinCompatible is the number of compatible candidates below which
	// the search radius is expanded.
	MinCompatible int
	// RadiusCeilingNM bounds radius expansion.
	RadiusCeilingNM float64
	// DefaultRadiusNM substitutes for a non-positive requested radius.
	DefaultRadiusNM float64
}

func DefaultPolicy() Policy {
	return Policy{
		MinCompatible:   3,
		RadiusCeilingNM: 500,
		DefaultRadiusNM: 50,
	}
}

// Candidate is one ranked landing site. Produced fresh per search,
// never persisted.
type Candidate struct {
	Site       av.LandingSite
	DistanceNM float64
	BearingDeg float64
	Compatible bool
	Score      float64
	Warnings   []string
	// ETEMinutes is a rough flight-time estimate at the aircraft
	// category's typical cruise speed.
	ETEMinutes int
}

// Result is a completed search: candidates ordered by ascending
// distance (compatible ahead of incompatible at equal distance, site
// identifier as the final tie-break), the final radius actually
// searched, and whether expansion stopped at the ceiling while still
// under the compatible-candidate threshold.
type Result struct {
	Candidates      []Candidate
	RadiusUsedNM    float64
	RadiusExhausted bool
}

// Engine is the end-to-end search orchestrator. Safe for concurrent
// use; all mutable state lives in the cache and the index provider.
type Engine struct {
	profiles *av.ProfileDB
	index    IndexProvider
	store    *cache.Store
	policy   Policy
	scoring  ScoringPolicy
	lg       *log.Logger
}

func New(profiles *av.ProfileDB, index IndexProvider, store *cache.Store, lg *log.Logger) *Engine {
	return &Engine{
		profiles: profiles,
		index:    index,
		store:    store,
		policy:   DefaultPolicy(),
		scoring:  DefaultScoringPolicy(),
		lg:       lg,
	}
}

// SetPolicy overrides the search policy; call before serving traffic.
func (e *Engine) SetPolicy(p Policy) { e.policy = p }

// SetScoring overrides the scoring policy; call before serving traffic.
func (e *Engine) SetScoring(p ScoringPolicy) { e.scoring = p }

// Search ranks landing sites around origin for the given aircraft
// type. A nil override requires the type to be in the profile
// database. The context is checked at each radius-expansion boundary,
// not mid-evaluation.
//
// Errors: geo.ErrInvalidCoordinate, av.ErrUnknownAircraftType,
// av.ErrIndexUnavailable. An empty candidate list is a valid success.
func (e *Engine) Search(ctx context.Context, origin geo.Coordinate, acType string,
	radiusNM float64, override *av.ProfileOverride) (Result, error) {
	if !origin.Valid() {
		return Result{}, fmt.Errorf("%v: %w", origin, geo.ErrInvalidCoordinate)
	}
	if radiusNM <= 0 || math.IsNaN(radiusNM) || math.IsInf(radiusNM, 0) {
		radiusNM = e.policy.DefaultRadiusNM
	}
	radiusNM = math.Min(radiusNM, e.policy.RadiusCeilingNM)

	profile, err := e.resolveProfile(acType, override)
	if err != nil {
		return Result{}, err
	}

	// Canonicalize the request so that equivalent searches share both
	// the cache key and the arithmetic: the rounded origin and radius
	// are the ones used for filtering, distances and bearings alike.
	origin = cache.CanonicalCoordinate(origin)
	radiusNM = cache.CanonicalRadiusNM(radiusNM)
	key := cache.SearchKey(origin, av.FoldType(acType), radiusNM)
	if override != nil {
		// Overrides bypass the shared cache: distinct minimums under
		// the same unknown type string must not collide.
		return e.searchUncached(ctx, origin, profile, radiusNM)
	}

	if v, ok := e.store.Get(cache.NamespaceSearch, key); ok {
		e.lg.Debug("search cache hit", slog.String("key", key))
		return deep.MustCopy(v.(Result)), nil
	}

	result, err := e.searchUncached(ctx, origin, profile, radiusNM)
	if err != nil {
		return Result{}, err
	}
	e.store.Set(cache.NamespaceSearch, key, deep.MustCopy(result))
	return result, nil
}

func (e *Engine) resolveProfile(acType string, override *av.ProfileOverride) (av.AircraftProfile, error) {
	key := cache.ProfileKey(av.FoldType(acType))
	if v, ok := e.store.Get(cache.NamespaceProfile, key); ok {
		return v.(av.AircraftProfile), nil
	}

	profile, ok := e.profiles.Resolve(acType)
	if !ok {
		if override == nil {
			return av.AircraftProfile{}, fmt.Errorf("%q: %w", acType, av.ErrUnknownAircraftType)
		}
		if override.MinRunwayLengthFt <= 0 {
			return av.AircraftProfile{}, fmt.Errorf("override for %q: %w", acType, av.ErrInvalidProfile)
		}
		return override.Profile(acType), nil
	}

	e.store.Set(cache.NamespaceProfile, key, profile)
	return profile, nil
}

// searchUncached runs the bounded expansion loop:
// Searching(r) -> Satisfied | Expand(2r) | Exhausted.
func (e *Engine) searchUncached(ctx context.Context, origin geo.Coordinate,
	profile av.AircraftProfile, radiusNM float64) (Result, error) {
	idx, ok := e.index.ActiveIndex()
	if !ok {
		return Result{}, av.ErrIndexUnavailable
	}

	radius := radiusNM
	var candidates []Candidate
	exhausted := false
	for {
		var err error
		if candidates, err = e.evaluate(idx, origin, profile, radius); err != nil {
			return Result{}, err
		}

		compatible := 0
		for _, c := range candidates {
			if c.Compatible {
				compatible++
			}
		}
		if compatible >= e.policy.MinCompatible {
			break
		}
		if radius >= e.policy.RadiusCeilingNM {
			exhausted = true
			break
		}

		// Cooperative cancellation, checked before each expansion.
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}

		next := math.Min(radius*2, e.policy.RadiusCeilingNM)
		e.lg.Debug("expanding search radius",
			slog.Float64("from_nm", radius), slog.Float64("to_nm", next),
			slog.Int("compatible", compatible))
		radius = next
	}

	sortCandidates(candidates)
	return Result{Candidates: candidates, RadiusUsedNM: radius, RadiusExhausted: exhausted}, nil
}

func (e *Engine) evaluate(idx SiteIndex, origin geo.Coordinate,
	profile av.AircraftProfile, radiusNM float64) ([]Candidate, error) {
	near := idx.Query(origin, radiusNM)

	candidates := make([]Candidate, 0, len(near))
	for _, sd := range near {
		ev, err := e.scoring.Evaluate(profile, sd.Site)
		if err != nil {
			return nil, err
		}

		ete := 0
		if speed := profile.Category.CruiseSpeedKts(); speed > 0 && sd.DistanceNM > 0 {
			ete = int(sd.DistanceNM / float64(speed) * 60)
		}

		candidates = append(candidates, Candidate{
			Site:       sd.Site,
			DistanceNM: sd.DistanceNM,
			BearingDeg: geo.Bearing(origin, sd.Site.Location),
			Compatible: ev.Compatible,
			Score:      ev.Score,
			Warnings:   ev.Warnings,
			ETEMinutes: ete,
		})
	}
	return candidates, nil
}

func sortCandidates(candidates []Candidate) {
	slices.SortFunc(candidates, func(a, b Candidate) int {
		if a.DistanceNM < b.DistanceNM {
			return -1
		} else if a.DistanceNM > b.DistanceNM {
			return 1
		}
		if a.Compatible != b.Compatible {
			if a.Compatible {
				return -1
			}
			return 1
		}
		return strings.Compare(a.Site.Ident, b.Site.Ident)
	})
}

// Site returns the indexed landing site with the given identifier.
func (e *Engine) Site(ident string) (av.LandingSite, error) {
	idx, ok := e.index.ActiveIndex()
	if !ok {
		return av.LandingSite{}, av.ErrIndexUnavailable
	}
	site, ok := idx.Site(ident)
	if !ok {
		return av.LandingSite{}, fmt.Errorf("%q: %w", ident, av.ErrUnknownSite)
	}
	return site, nil
}

// AircraftTypes lists the supported aircraft type strings.
func (e *Engine) AircraftTypes() []string {
	return e.profiles.Types()
}

// SiteCount returns the number of sites in the active index, or zero if
// none is installed.
func (e *Engine) SiteCount() int {
	idx, ok := e.index.ActiveIndex()
	if !ok {
		return 0
	}
	return idx.Len()
}
