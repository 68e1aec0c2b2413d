// data/refresh.go
// Copyright(c) 2025-2026 divert contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package data

import (
	"context"
	"log/slog"
	"time"

	"github.com/flightsafe/divert/av"
	"github.com/flightsafe/divert/cache"
	"github.com/flightsafe/divert/log"
	"github.com/flightsafe/divert/spatial"
)

// Rebuild builds a fresh spatial index from sites and publishes it
// atomically; searches in flight keep using the previous snapshot.
// Cached search results are invalidated since they may reference the
// old dataset.
func Rebuild(sites []av.LandingSite, holder *spatial.Holder, store *cache.Store, lg *log.Logger) {
	idx := spatial.Build(sites)
	holder.Set(idx)
	if store != nil {
		store.Invalidate(cache.NamespaceSearch)
	}
	lg.Info("published landing site index", slog.Int("sites", idx.Len()))
}

// RunRefresh refetches the dataset on the given interval and republishes
// the index, until ctx is cancelled. A failed refetch leaves the current
// index in place.
func RunRefresh(ctx context.Context, interval time.Duration, p *Provider,
	holder *spatial.Holder, store *cache.Store, lg *log.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			sites, err := p.Refresh(ctx)
			if err != nil {
				lg.Warn("periodic dataset refresh failed", slog.Any("error", err))
				continue
			}
			Rebuild(sites, holder, store, lg)
		}
	}
}
