// av/profiles.go
// Copyright(c) 2025-2026 divert contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package av

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/flightsafe/divert/util"
)

//go:embed profiles.json
var seedProfilesJSON []byte

// ProfileDB resolves aircraft type strings to profiles. Lookups are
// case- and whitespace-insensitive. Read-only after construction.
type ProfileDB struct {
	profiles map[string]AircraftProfile // keyed by FoldType of the type string
}

// LoadProfileDB returns the built-in profile database.
func LoadProfileDB() (*ProfileDB, error) {
	return readProfileDB(seedProfilesJSON)
}

// LoadProfileDBFile reads additional or replacement profiles from a
// JSON file with the same layout as the built-in table; entries with a
// type already present replace the built-in ones.
func LoadProfileDBFile(path string) (*ProfileDB, error) {
	db, err := LoadProfileDB()
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	b, err := io.ReadAll(f)
	if err != nil {
		return nil, err
	}
	extra, err := readProfileDB(b)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	for k, p := range extra.profiles {
		db.profiles[k] = p
	}
	return db, nil
}

func readProfileDB(b []byte) (*ProfileDB, error) {
	var profiles []AircraftProfile
	if err := json.Unmarshal(b, &profiles); err != nil {
		return nil, err
	}

	db := &ProfileDB{profiles: make(map[string]AircraftProfile)}
	for _, p := range profiles {
		if p.Type == "" || p.MinRunwayLengthFt <= 0 {
			return nil, fmt.Errorf("%q: %w", p.Type, ErrInvalidProfile)
		}
		db.profiles[FoldType(p.Type)] = p
	}
	return db, nil
}

// Resolve looks up the profile for the given aircraft type. The second
// return value reports whether the type is known; the caller decides
// whether to supply an override when it is not.
func (db *ProfileDB) Resolve(acType string) (AircraftProfile, bool) {
	p, ok := db.profiles[FoldType(acType)]
	return p, ok
}

// Types returns all known aircraft type strings, sorted.
func (db *ProfileDB) Types() []string {
	keys := util.SortedMapKeys(db.profiles)
	return util.MapSlice(keys, func(k string) string { return db.profiles[k].Type })
}

// Len returns the number of known aircraft types.
func (db *ProfileDB) Len() int { return len(db.profiles) }
