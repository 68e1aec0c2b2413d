// web/server.go
// Copyright(c) 2025-2026 divert contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

// Package web exposes the search engine over a small JSON HTTP API.
package web

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/flightsafe/divert/av"
	"github.com/flightsafe/divert/engine"
	"github.com/flightsafe/divert/geo"
	"github.com/flightsafe/divert/geocode"
	"github.com/flightsafe/divert/log"
)

// Server wires the engine and geocoder behind an HTTP mux.
type Server struct {
	engine   *engine.Engine
	resolver *geocode.Resolver
	lg       *log.Logger
	started  time.Time
}

func NewServer(eng *engine.Engine, resolver *geocode.Resolver, lg *log.Logger) *Server {
	return &Server{engine: eng, resolver: resolver, lg: lg, started: time.Now()}
}

// Handler returns the routed HTTP handler.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(15 * time.Second))

	r.Get("/health", s.handleHealth)
	r.Get("/status", s.handleStatus)
	r.Route("/api", func(r chi.Router) {
		r.Post("/search", s.handleSearch)
		r.Get("/aircraft", s.handleAircraft)
		r.Get("/airport/{code}", s.handleAirport)
	})
	return r
}

type searchRequest struct {
	// Location is either "lat,lon" or a place name to geocode.
	Location      string              `json:"location"`
	AircraftType  string              `json:"aircraft_type"`
	MaxDistanceNM float64             `json:"max_distance_nm,omitempty"`
	Override      *av.ProfileOverride `json:"override,omitempty"`
}

type searchCandidate struct {
	Ident           string   `json:"ident"`
	Name            string   `json:"name"`
	Lat             float64  `json:"lat"`
	Lon             float64  `json:"lon"`
	ElevationFt     int      `json:"elevation_ft"`
	LongestRunwayFt int      `json:"longest_runway_ft"`
	RunwayWidthFt   int      `json:"runway_width_ft,omitempty"`
	Surface         string   `json:"surface"`
	DistanceNM      float64  `json:"distance_nm"`
	BearingDeg      float64  `json:"bearing_deg"`
	Compatible      bool     `json:"compatible"`
	Score           float64  `json:"score"`
	Warnings        []string `json:"warnings,omitempty"`
	ETEMinutes      int      `json:"ete_minutes"`
}

type searchResponse struct {
	Origin          geo.Coordinate    `json:"origin"`
	RadiusUsedNM    float64           `json:"radius_used_nm"`
	RadiusExhausted bool              `json:"radius_exhausted"`
	Candidates      []searchCandidate `json:"candidates"`
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}
	if req.Location == "" || req.AircraftType == "" {
		s.writeError(w, http.StatusBadRequest, "location and aircraft_type are required")
		return
	}

	origin, err := s.resolver.Resolve(r.Context(), req.Location)
	if err != nil {
		s.writeEngineError(w, err)
		return
	}

	result, err := s.engine.Search(r.Context(), origin, req.AircraftType,
		req.MaxDistanceNM, req.Override)
	if err != nil {
		s.writeEngineError(w, err)
		return
	}

	resp := searchResponse{
		Origin:          origin,
		RadiusUsedNM:    result.RadiusUsedNM,
		RadiusExhausted: result.RadiusExhausted,
		Candidates:      make([]searchCandidate, 0, len(result.Candidates)),
	}
	for _, c := range result.Candidates {
		resp.Candidates = append(resp.Candidates, searchCandidate{
			Ident:           c.Site.Ident,
			Name:            c.Site.Name,
			Lat:             c.Site.Location.Lat,
			Lon:             c.Site.Location.Lon,
			ElevationFt:     c.Site.ElevationFt,
			LongestRunwayFt: c.Site.LongestRunwayFt,
			RunwayWidthFt:   c.Site.RunwayWidthFt,
			Surface:         c.Site.Surface.String(),
			DistanceNM:      c.DistanceNM,
			BearingDeg:      c.BearingDeg,
			Compatible:      c.Compatible,
			Score:           c.Score,
			Warnings:        c.Warnings,
			ETEMinutes:      c.ETEMinutes,
		})
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleAircraft(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]any{"aircraft_types": s.engine.AircraftTypes()})
}

func (s *Server) handleAirport(w http.ResponseWriter, r *http.Request) {
	site, err := s.engine.Site(chi.URLParam(r, "code"))
	if err != nil {
		s.writeEngineError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, site)
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]any{
		"sites":          s.engine.SiteCount(),
		"aircraft_types": len(s.engine.AircraftTypes()),
		"uptime_seconds": int(time.Since(s.started).Seconds()),
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

// writeEngineError maps engine and geocoder errors to HTTP statuses:
// caller mistakes are 400, a missing site is 404, an index that hasn't
// been published yet is 503.
func (s *Server) writeEngineError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, geo.ErrInvalidCoordinate),
		errors.Is(err, av.ErrUnknownAircraftType),
		errors.Is(err, av.ErrInvalidProfile),
		errors.Is(err, geocode.ErrNotFound):
		s.writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, av.ErrUnknownSite):
		s.writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, av.ErrIndexUnavailable):
		s.writeError(w, http.StatusServiceUnavailable, err.Error())
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		s.writeError(w, http.StatusServiceUnavailable, "request cancelled")
	default:
		s.lg.Error("request failed", slog.Any("error", err))
		s.writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, map[string]string{"error": msg})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.lg.Warn("error encoding response", slog.Any("error", err))
	}
}
