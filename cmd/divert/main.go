// cmd/divert/main.go
// Copyright(c) 2025-2026 divert contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

// divert is an emergency landing site search service: given an aircraft
// position and type, it ranks nearby airports by distance and runway
// compatibility.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/flightsafe/divert/av"
	"github.com/flightsafe/divert/cache"
	"github.com/flightsafe/divert/data"
	"github.com/flightsafe/divert/engine"
	"github.com/flightsafe/divert/geocode"
	"github.com/flightsafe/divert/log"
	"github.com/flightsafe/divert/spatial"
	"github.com/flightsafe/divert/web"
)

var (
	addr         = flag.String("addr", ":8420", "address the HTTP server listens on")
	dataDir      = flag.String("datadir", defaultDataDir(), "directory for dataset snapshots")
	airportsFile = flag.String("airports", "", "local airports.csv (optionally .zst) instead of fetching")
	runwaysFile  = flag.String("runways", "", "local runways.csv (optionally .zst) instead of fetching")
	profilesFile = flag.String("profiles", "", "extra aircraft profiles JSON, merged over the built-ins")
	logLevel     = flag.String("loglevel", "info", "logging level: debug, info, warn, error")
	logDir       = flag.String("logdir", defaultDataDir(), "directory for log files")
	refresh      = flag.Duration("refresh", 7*24*time.Hour, "dataset refresh interval, 0 to disable")
)

func defaultDataDir() string {
	if dir, err := os.UserCacheDir(); err == nil {
		return dir + "/divert"
	}
	return "."
}

func main() {
	flag.Parse()

	if err := os.MkdirAll(*dataDir, 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", *dataDir, err)
		os.Exit(1)
	}
	lg := log.New(*logLevel, *logDir)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, lg); err != nil {
		lg.Error("exiting", slog.Any("error", err))
		os.Exit(1)
	}
}

func run(ctx context.Context, lg *log.Logger) error {
	var profiles *av.ProfileDB
	var err error
	if *profilesFile != "" {
		profiles, err = av.LoadProfileDBFile(*profilesFile)
	} else {
		profiles, err = av.LoadProfileDB()
	}
	if err != nil {
		return err
	}
	lg.Info("loaded aircraft profiles", slog.Int("types", profiles.Len()))

	provider := data.NewProvider(*dataDir, lg)
	var sites []av.LandingSite
	if *airportsFile != "" || *runwaysFile != "" {
		if *airportsFile == "" || *runwaysFile == "" {
			return errors.New("-airports and -runways must be given together")
		}
		sites, err = data.LoadFile(*airportsFile, *runwaysFile, lg)
	} else {
		sites, err = provider.Load(ctx)
	}
	if err != nil {
		return err
	}

	holder := &spatial.Holder{}
	store := cache.NewStore(cache.DefaultConfig())
	data.Rebuild(sites, holder, store, lg)

	eng := engine.New(profiles, engine.FromHolder(holder), store, lg)
	resolver := geocode.NewResolver(store, lg)
	srv := &http.Server{
		Addr:         *addr,
		Handler:      web.NewServer(eng, resolver, lg).Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	if *refresh > 0 && *airportsFile == "" {
		go data.RunRefresh(ctx, *refresh, provider, holder, store, lg)
	}

	errc := make(chan error, 1)
	go func() {
		lg.Info("listening", slog.String("addr", *addr))
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		lg.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
