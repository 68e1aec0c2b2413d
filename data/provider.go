// data/provider.go
// Copyright(c) 2025-2026 divert contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

// Package data loads the landing-site set from the OurAirports public
// dataset, either over HTTPS or from a local file, and keeps a parsed
// snapshot on disk so restarts don't refetch.
package data

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/klauspost/compress/zstd"
	"golang.org/x/sync/errgroup"

	"github.com/flightsafe/divert/av"
	"github.com/flightsafe/divert/log"
	"github.com/flightsafe/divert/util"
)

const (
	// https://ourairports.com/data/
	airportsURL = "https://davidmegginson.github.io/ourairports-data/airports.csv"
	runwaysURL  = "https://davidmegginson.github.io/ourairports-data/runways.csv"

	snapshotFile = "sites.msgpack"
	userAgent    = "divert/1.0 (+https://github.com/flightsafe/divert)"
)

// DefaultMaxSnapshotAge is how long a disk snapshot is trusted before
// the dataset is refetched; OurAirports updates are infrequent.
const DefaultMaxSnapshotAge = 30 * 24 * time.Hour

// Provider fetches, validates, and snapshots the landing-site set.
type Provider struct {
	dir         string
	airportsURL string
	runwaysURL  string
	maxAge      time.Duration
	client      *http.Client
	lg          *log.Logger
}

func NewProvider(dir string, lg *log.Logger) *Provider {
	return &Provider{
		dir:         dir,
		airportsURL: airportsURL,
		runwaysURL:  runwaysURL,
		maxAge:      DefaultMaxSnapshotAge,
		client:      &http.Client{Timeout: 2 * time.Minute},
		lg:          lg,
	}
}

// SetMaxSnapshotAge overrides the snapshot staleness threshold.
func (p *Provider) SetMaxSnapshotAge(d time.Duration) { p.maxAge = d }

// SetURLs overrides the dataset endpoints, for tests and mirrors.
func (p *Provider) SetURLs(airports, runways string) {
	p.airportsURL, p.runwaysURL = airports, runways
}

// Load returns the landing-site set, preferring a fresh-enough disk
// snapshot over the network. A stale snapshot is still used, with a
// warning, if the refetch fails.
func (p *Provider) Load(ctx context.Context) ([]av.LandingSite, error) {
	path := filepath.Join(p.dir, snapshotFile)

	var snapshot []av.LandingSite
	mod, err := util.RetrieveObject(path, &snapshot)
	haveSnapshot := err == nil && len(snapshot) > 0
	if haveSnapshot && time.Since(mod) < p.maxAge {
		p.lg.Info("using landing site snapshot",
			slog.Int("sites", len(snapshot)), slog.Time("fetched", mod))
		return snapshot, nil
	}

	sites, err := p.Refresh(ctx)
	if err != nil {
		if haveSnapshot {
			p.lg.Warn("dataset refetch failed, using stale snapshot",
				slog.Any("error", err), slog.Time("fetched", mod))
			return snapshot, nil
		}
		return nil, err
	}
	return sites, nil
}

// Refresh fetches and parses the dataset unconditionally, writing a new
// disk snapshot on success.
func (p *Provider) Refresh(ctx context.Context) ([]av.LandingSite, error) {
	p.lg.Info("fetching landing site dataset",
		slog.String("airports", p.airportsURL), slog.String("runways", p.runwaysURL))

	var airportsCSV, runwaysCSV []byte
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		airportsCSV, err = p.fetch(ctx, p.airportsURL)
		return err
	})
	g.Go(func() error {
		var err error
		runwaysCSV, err = p.fetch(ctx, p.runwaysURL)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sites, err := parseSites(bytes.NewReader(airportsCSV), bytes.NewReader(runwaysCSV), p.lg)
	if err != nil {
		return nil, err
	}
	p.lg.Info("parsed landing site dataset", slog.Int("sites", len(sites)))

	if err := util.StoreObject(filepath.Join(p.dir, snapshotFile), sites); err != nil {
		p.lg.Warn("unable to write site snapshot", slog.Any("error", err))
	}
	return sites, nil
}

func (p *Provider) fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s: %s", url, resp.Status)
	}
	return io.ReadAll(resp.Body)
}

// LoadFile parses a local copy of the two OurAirports CSV files,
// optionally zstd-compressed (a ".zst" suffix on either path). Used
// for offline bootstrap and fixtures.
func LoadFile(airportsPath, runwaysPath string, lg *log.Logger) ([]av.LandingSite, error) {
	ar, err := openMaybeZstd(airportsPath)
	if err != nil {
		return nil, err
	}
	defer ar.Close()

	rr, err := openMaybeZstd(runwaysPath)
	if err != nil {
		return nil, err
	}
	defer rr.Close()

	return parseSites(ar, rr, lg)
}

type readCloser struct {
	io.Reader
	close func() error
}

func (rc readCloser) Close() error { return rc.close() }

func openMaybeZstd(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	if !strings.HasSuffix(path, ".zst") {
		return f, nil
	}

	zr, err := zstd.NewReader(f, zstd.WithDecoderConcurrency(0))
	if err != nil {
		f.Close()
		return nil, err
	}
	return readCloser{Reader: zr, close: func() error {
		zr.Close()
		return f.Close()
	}}, nil
}
