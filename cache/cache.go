// cache/cache.go
// Copyright(c) 2025-2026 divert contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

// Package cache memoizes expensive lookups in three independently
// expiring namespaces: resolved locations, aircraft profiles, and full
// search results. Storage is an expiring LRU per namespace; the
// library's reaper lazily evicts stale entries without blocking
// readers, and a Get of an expired entry misses regardless of whether
// the reaper has run.
package cache

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/flightsafe/divert/geo"
)

// Namespace selects one of the cache's logical partitions.
type Namespace int

const (
	NamespaceLocation Namespace = iota
	NamespaceProfile
	NamespaceSearch
	numNamespaces
)

func (n Namespace) String() string {
	switch n {
	case NamespaceLocation:
		return "location"
	case NamespaceProfile:
		return "profile"
	case NamespaceSearch:
		return "search"
	default:
		return "invalid"
	}
}

// Config gives per-namespace TTLs and a shared per-namespace entry cap.
type Config struct {
	LocationTTL time.Duration
	ProfileTTL  time.Duration
	SearchTTL   time.Duration
	MaxEntries  int
}

func DefaultConfig() Config {
	return Config{
		LocationTTL: 30 * time.Minute,
		ProfileTTL:  time.Hour,
		SearchTTL:   5 * time.Minute,
		MaxEntries:  4096,
	}
}

// Store is the shared result cache. Safe for unbounded concurrent
// readers and writers; each entry write is atomic per key.
type Store struct {
	lrus [numNamespaces]*expirable.LRU[string, any]
}

func NewStore(config Config) *Store {
	s := &Store{}
	for ns, ttl := range map[Namespace]time.Duration{
		NamespaceLocation: config.LocationTTL,
		NamespaceProfile:  config.ProfileTTL,
		NamespaceSearch:   config.SearchTTL,
	} {
		s.lrus[ns] = expirable.NewLRU[string, any](config.MaxEntries, nil, ttl)
	}
	return s
}

// Get returns the unexpired value stored under key in the namespace, if
// any.
func (s *Store) Get(ns Namespace, key string) (any, bool) {
	return s.lrus[ns].Get(key)
}

// Set stores value under key. An existing entry for the same key is
// overwritten whole.
func (s *Store) Set(ns Namespace, key string, value any) {
	s.lrus[ns].Add(key, value)
}

// Invalidate clears one namespace without disturbing the others; used
// when the underlying reference data is refreshed.
func (s *Store) Invalidate(ns Namespace) {
	s.lrus[ns].Purge()
}

// Len returns the number of (possibly stale) entries in the namespace.
func (s *Store) Len(ns Namespace) int {
	return s.lrus[ns].Len()
}

///////////////////////////////////////////////////////////////////////////
// Key canonicalization
//
// Two logically identical requests must produce the same key or the hit
// rate quietly collapses: coordinates are rounded to 4 decimal degrees
// (about 60 ft of position), radii to 0.1 NM, and text is case- and
// whitespace-folded.

// CanonicalCoordinate rounds a coordinate to the cache key precision.
func CanonicalCoordinate(c geo.Coordinate) geo.Coordinate {
	round := func(v float64) float64 {
		// Round half away from zero at 1e-4 degrees.
		if v < 0 {
			return float64(int64(v*1e4-0.5)) / 1e4
		}
		return float64(int64(v*1e4+0.5)) / 1e4
	}
	return geo.Coordinate{Lat: round(c.Lat), Lon: round(c.Lon)}
}

// CanonicalRadiusNM rounds a radius to the cache key precision. Callers
// must search with the rounded radius too, or two requests sharing a
// key could see different candidate sets.
func CanonicalRadiusNM(radiusNM float64) float64 {
	return math.Round(radiusNM*10) / 10
}

// SearchKey builds the search-namespace key for a canonicalized origin,
// a folded aircraft type (see av.FoldType), and a radius.
func SearchKey(origin geo.Coordinate, foldedType string, radiusNM float64) string {
	origin = CanonicalCoordinate(origin)
	return fmt.Sprintf("search:%.4f,%.4f:%s:%.1f", origin.Lat, origin.Lon, foldedType,
		CanonicalRadiusNM(radiusNM))
}

// ProfileKey builds the profile-namespace key for a folded aircraft
// type.
func ProfileKey(foldedType string) string {
	return "aircraft:" + foldedType
}

// LocationKey builds the location-namespace key for a free-text
// location query.
func LocationKey(query string) string {
	return "geocode:" + strings.Join(strings.Fields(strings.ToLower(query)), " ")
}
