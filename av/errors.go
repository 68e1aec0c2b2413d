// av/errors.go
// Copyright(c) 2025-2026 divert contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package av

import "errors"

var (
	ErrUnknownAircraftType = errors.New("Unknown aircraft type")
	ErrInvalidProfile      = errors.New("Invalid aircraft profile")
	ErrIndexUnavailable    = errors.New("Landing site index not yet available")
	ErrUnknownSite         = errors.New("Unknown landing site")
)
