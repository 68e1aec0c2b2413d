// spatial/index.go
// Copyright(c) 2025-2026 divert contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

// Package spatial provides an immutable in-memory index over the
// landing site set that answers radius queries without scanning every
// site. The index is a balanced 2D KD-tree over latitude-longitude;
// queries prefilter with a bounding box circumscribing the query circle
// and verify candidates with the exact great-circle distance, so the
// prefilter may over-select but never drops a site within range.
package spatial

import (
	"math"
	"slices"
	"strings"
	"time"

	"github.com/flightsafe/divert/av"
	"github.com/flightsafe/divert/geo"
)

// SiteDistance pairs a landing site with its distance from a query
// center.
type SiteDistance struct {
	Site       av.LandingSite
	DistanceNM float64
}

// node is a KD-tree node; the tree alternates splitting by longitude
// (even depth) and latitude (odd depth).
type node struct {
	site  av.LandingSite
	left  *node
	right *node
}

// Index is a read-only snapshot of the site set. Safe for unlimited
// concurrent readers once built.
type Index struct {
	root    *node
	byIdent map[string]av.LandingSite
	count   int
	built   time.Time
}

// Build constructs a balanced index from the given sites. The input
// slice is copied; construction is O(n log n).
func Build(sites []av.LandingSite) *Index {
	idx := &Index{
		byIdent: make(map[string]av.LandingSite, len(sites)),
		count:   len(sites),
		built:   time.Now(),
	}
	for _, s := range sites {
		idx.byIdent[strings.ToUpper(s.Ident)] = s
	}

	scratch := slices.Clone(sites)
	idx.root = buildRecursive(scratch, 0)
	return idx
}

func buildRecursive(sites []av.LandingSite, depth int) *node {
	if len(sites) == 0 {
		return nil
	}
	if len(sites) == 1 {
		return &node{site: sites[0]}
	}

	axis := depth % 2
	slices.SortFunc(sites, func(a, b av.LandingSite) int {
		ka, kb := axisKey(a, axis), axisKey(b, axis)
		if ka < kb {
			return -1
		} else if ka > kb {
			return 1
		}
		return strings.Compare(a.Ident, b.Ident)
	})

	median := len(sites) / 2
	return &node{
		site:  sites[median],
		left:  buildRecursive(sites[:median], depth+1),
		right: buildRecursive(sites[median+1:], depth+1),
	}
}

func axisKey(s av.LandingSite, axis int) float64 {
	if axis == 0 {
		return s.Location.Lon
	}
	return s.Location.Lat
}

// Len returns the number of indexed sites.
func (idx *Index) Len() int { return idx.count }

// Built returns the time the snapshot was constructed.
func (idx *Index) Built() time.Time { return idx.built }

// Site looks up a site by its identifier, case-insensitively.
func (idx *Index) Site(ident string) (av.LandingSite, bool) {
	s, ok := idx.byIdent[strings.ToUpper(strings.TrimSpace(ident))]
	return s, ok
}

// Query returns all sites within radiusNM of center, ordered by
// ascending distance with identifier as the tie-break. A non-positive
// radius gives an empty result.
func (idx *Index) Query(center geo.Coordinate, radiusNM float64) []SiteDistance {
	if radiusNM <= 0 || idx.root == nil {
		return nil
	}

	latLo := math.Max(center.Lat-radiusNM/geo.NMPerLatitude, -90)
	latHi := math.Min(center.Lat+radiusNM/geo.NMPerLatitude, 90)

	// The box must circumscribe the query circle: scale the longitude
	// extent by the latitude in the band closest to a pole, where
	// meridians are closest together.
	maxAbsLat := math.Max(math.Abs(latLo), math.Abs(latHi))

	fullLon := false
	var dLon float64
	if cl := math.Cos(maxAbsLat / 180 * math.Pi); cl <= 1e-6 {
		fullLon = true // box touches a pole
	} else {
		dLon = radiusNM / (geo.NMPerLatitude * cl)
		fullLon = dLon >= 180
	}

	// Longitude intervals to search; crossing the antimeridian splits
	// the box in two.
	var lonRanges [][2]float64
	lo, hi := center.Lon-dLon, center.Lon+dLon
	switch {
	case fullLon:
		lonRanges = [][2]float64{{-180, 180}}
	case lo < -180:
		lonRanges = [][2]float64{{-180, hi}, {lo + 360, 180}}
	case hi > 180:
		lonRanges = [][2]float64{{lo, 180}, {-180, hi - 360}}
	default:
		lonRanges = [][2]float64{{lo, hi}}
	}

	var result []SiteDistance
	for _, lr := range lonRanges {
		idx.root.rangeSearch(0, latLo, latHi, lr[0], lr[1], func(s av.LandingSite) {
			if d := geo.NMDistance(center, s.Location); d <= radiusNM {
				result = append(result, SiteDistance{Site: s, DistanceNM: d})
			}
		})
	}

	slices.SortFunc(result, func(a, b SiteDistance) int {
		if a.DistanceNM < b.DistanceNM {
			return -1
		} else if a.DistanceNM > b.DistanceNM {
			return 1
		}
		return strings.Compare(a.Site.Ident, b.Site.Ident)
	})
	return result
}

func (n *node) rangeSearch(depth int, latLo, latHi, lonLo, lonHi float64, visit func(av.LandingSite)) {
	if n == nil {
		return
	}

	lat, lon := n.site.Location.Lat, n.site.Location.Lon
	if lat >= latLo && lat <= latHi && lon >= lonLo && lon <= lonHi {
		visit(n.site)
	}

	// Prune subtrees entirely outside the box along the splitting axis.
	var key, lo, hi float64
	if depth%2 == 0 {
		key, lo, hi = lon, lonLo, lonHi
	} else {
		key, lo, hi = lat, latLo, latHi
	}
	if key >= lo {
		n.left.rangeSearch(depth+1, latLo, latHi, lonLo, lonHi, visit)
	}
	if key <= hi {
		n.right.rangeSearch(depth+1, latLo, latHi, lonLo, lonHi, visit)
	}
}
