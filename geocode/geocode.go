// geocode/geocode.go
// Copyright(c) 2025-2026 divert contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

// Package geocode resolves free-form location text to coordinates using
// the OSM Nominatim service. "lat,lon" strings are parsed directly and
// never hit the network.
package geocode

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/flightsafe/divert/cache"
	"github.com/flightsafe/divert/geo"
	"github.com/flightsafe/divert/log"
	"github.com/flightsafe/divert/util"
)

// ErrNotFound is returned when the geocoder has no result for a query.
var ErrNotFound = errors.New("location not found")

const defaultBaseURL = "https://nominatim.openstreetmap.org"

// Resolver turns location queries into coordinates. Results are cached
// and concurrent lookups for the same query are coalesced so Nominatim
// sees at most one request per distinct query.
type Resolver struct {
	baseURL string
	client  *http.Client
	store   *cache.Store
	group   singleflight.Group
	lg      *log.Logger
}

func NewResolver(store *cache.Store, lg *log.Logger) *Resolver {
	return &Resolver{
		baseURL: defaultBaseURL,
		client:  &http.Client{Timeout: 10 * time.Second},
		store:   store,
		lg:      lg,
	}
}

// SetBaseURL overrides the Nominatim endpoint, for tests and private
// instances.
func (r *Resolver) SetBaseURL(u string) { r.baseURL = strings.TrimRight(u, "/") }

// Resolve returns the coordinate for a query string: either a literal
// "lat,lon" pair or a place name to geocode.
func (r *Resolver) Resolve(ctx context.Context, query string) (geo.Coordinate, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return geo.Coordinate{}, ErrNotFound
	}

	if c, ok := parseLatLon(query); ok {
		if !c.Valid() {
			return geo.Coordinate{}, geo.ErrInvalidCoordinate
		}
		return c, nil
	}

	key := cache.LocationKey(query)
	if v, ok := r.store.Get(cache.NamespaceLocation, key); ok {
		return v.(geo.Coordinate), nil
	}

	v, err, _ := r.group.Do(key, func() (any, error) {
		c, err := r.lookup(ctx, query)
		if err != nil {
			return geo.Coordinate{}, err
		}
		r.store.Set(cache.NamespaceLocation, key, c)
		return c, nil
	})
	if err != nil {
		return geo.Coordinate{}, err
	}
	return v.(geo.Coordinate), nil
}

// parseLatLon recognizes "lat,lon" and "lat lon" literals.
func parseLatLon(s string) (geo.Coordinate, bool) {
	fields := strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == ' ' })
	if len(fields) != 2 {
		return geo.Coordinate{}, false
	}
	lat, err0 := util.Atof(fields[0])
	lon, err1 := util.Atof(fields[1])
	if err0 != nil || err1 != nil {
		return geo.Coordinate{}, false
	}
	return geo.Coordinate{Lat: lat, Lon: lon}, true
}

type nominatimResult struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
}

func (r *Resolver) lookup(ctx context.Context, query string) (geo.Coordinate, error) {
	u := r.baseURL + "/search?" + url.Values{
		"q":      []string{query},
		"format": []string{"json"},
		"limit":  []string{"1"},
	}.Encode()

	req, err := http.NewRequestWithContext(ctx, "GET", u, nil)
	if err != nil {
		return geo.Coordinate{}, err
	}
	req.Header.Set("User-Agent", "divert/1.0 (+https://github.com/flightsafe/divert)")

	resp, err := r.client.Do(req)
	if err != nil {
		return geo.Coordinate{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return geo.Coordinate{}, fmt.Errorf("geocoder: %s", resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return geo.Coordinate{}, err
	}

	var results []nominatimResult
	if err := json.Unmarshal(body, &results); err != nil {
		return geo.Coordinate{}, fmt.Errorf("geocoder: malformed response: %w", err)
	}
	if len(results) == 0 {
		return geo.Coordinate{}, ErrNotFound
	}

	lat, err0 := util.Atof(results[0].Lat)
	lon, err1 := util.Atof(results[0].Lon)
	if err0 != nil || err1 != nil {
		return geo.Coordinate{}, fmt.Errorf("geocoder: malformed coordinates for %q", query)
	}
	c, err := geo.MakeCoordinate(lat, lon)
	if err != nil {
		return geo.Coordinate{}, err
	}

	r.lg.Debug("geocoded location", slog.String("query", query),
		slog.String("place", results[0].DisplayName),
		slog.Float64("lat", c.Lat), slog.Float64("lon", c.Lon))
	return c, nil
}
