// data/provider_test.go
// Copyright(c) 2025-2026 divert contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package data

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/klauspost/compress/zstd"

	"github.com/flightsafe/divert/log"
)

func newDatasetServer(t *testing.T, fail *atomic.Bool) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if fail != nil && fail.Load() {
			http.Error(w, "unavailable", http.StatusServiceUnavailable)
			return
		}
		switch r.URL.Path {
		case "/airports.csv":
			w.Write([]byte(testAirportsCSV))
		case "/runways.csv":
			w.Write([]byte(testRunwaysCSV))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestProviderLoadAndSnapshot(t *testing.T) {
	var fail atomic.Bool
	srv := newDatasetServer(t, &fail)

	dir := t.TempDir()
	p := NewProvider(dir, log.Discard())
	p.SetURLs(srv.URL+"/airports.csv", srv.URL+"/runways.csv")

	sites, err := p.Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(sites) != 3 {
		t.Fatalf("got %d sites, want 3", len(sites))
	}

	if _, err := os.Stat(filepath.Join(dir, snapshotFile)); err != nil {
		t.Fatalf("snapshot not written: %v", err)
	}

	// A fresh snapshot short-circuits the network entirely.
	fail.Store(true)
	sites2, err := newProviderAt(t, dir, srv).Load(context.Background())
	if err != nil {
		t.Fatalf("Load from snapshot: %v", err)
	}
	if len(sites2) != len(sites) {
		t.Errorf("snapshot load: got %d sites, want %d", len(sites2), len(sites))
	}
}

// newProviderAt builds a provider over an existing snapshot directory.
func newProviderAt(t *testing.T, dir string, srv *httptest.Server) *Provider {
	t.Helper()
	p := NewProvider(dir, log.Discard())
	p.SetURLs(srv.URL+"/airports.csv", srv.URL+"/runways.csv")
	return p
}

func TestProviderStaleFallback(t *testing.T) {
	var fail atomic.Bool
	srv := newDatasetServer(t, &fail)
	dir := t.TempDir()

	if _, err := newProviderAt(t, dir, srv).Load(context.Background()); err != nil {
		t.Fatal(err)
	}

	// Make the snapshot look stale and the refetch fail; the stale
	// snapshot should still be served.
	old := time.Now().Add(-48 * time.Hour)
	if err := os.Chtimes(filepath.Join(dir, snapshotFile), old, old); err != nil {
		t.Fatal(err)
	}
	fail.Store(true)

	p := newProviderAt(t, dir, srv)
	p.SetMaxSnapshotAge(time.Hour)
	sites, err := p.Load(context.Background())
	if err != nil {
		t.Fatalf("Load with failed refetch should fall back to stale snapshot: %v", err)
	}
	if len(sites) != 3 {
		t.Errorf("got %d sites, want 3", len(sites))
	}

	// With no snapshot at all, the fetch failure is fatal.
	p2 := newProviderAt(t, t.TempDir(), srv)
	if _, err := p2.Load(context.Background()); err == nil {
		t.Error("expected error with no snapshot and failing fetch")
	}
}

func TestLoadFileZstd(t *testing.T) {
	dir := t.TempDir()
	airports := filepath.Join(dir, "airports.csv.zst")
	runways := filepath.Join(dir, "runways.csv")

	f, err := os.Create(airports)
	if err != nil {
		t.Fatal(err)
	}
	zw, err := zstd.NewWriter(f)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := zw.Write([]byte(testAirportsCSV)); err != nil {
		t.Fatal(err)
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(runways, []byte(testRunwaysCSV), 0o644); err != nil {
		t.Fatal(err)
	}

	sites, err := LoadFile(airports, runways, log.Discard())
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if len(sites) != 3 {
		t.Errorf("got %d sites, want 3", len(sites))
	}
}
