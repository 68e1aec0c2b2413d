// spatial/holder.go
// Copyright(c) 2025-2026 divert contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package spatial

import "sync/atomic"

// Holder holds the active Index snapshot. A data refresh builds a new
// Index and swaps it in atomically; queries already running keep using
// the snapshot they started with.
type Holder struct {
	p atomic.Pointer[Index]
}

// Set installs idx as the active snapshot.
func (h *Holder) Set(idx *Index) {
	h.p.Store(idx)
}

// Active returns the current snapshot, or false if none has been
// installed yet (e.g. during startup).
func (h *Holder) Active() (*Index, bool) {
	idx := h.p.Load()
	return idx, idx != nil
}
