// av/profiles_test.go
// Copyright(c) 2025-2026 divert contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package av

import (
	"os"
	"path/filepath"
	"slices"
	"testing"
)

func TestProfileDBResolve(t *testing.T) {
	db, err := LoadProfileDB()
	if err != nil {
		t.Fatal(err)
	}
	if db.Len() != 9 {
		t.Errorf("got %d profiles, want 9", db.Len())
	}

	for _, s := range []string{"Cessna 172", "cessna 172", "CESSNA  172", " Cessna 172 "} {
		p, ok := db.Resolve(s)
		if !ok {
			t.Errorf("Resolve(%q): not found", s)
			continue
		}
		if p.MinRunwayLengthFt != 1200 || p.Category != CategoryLight {
			t.Errorf("Resolve(%q) = %+v", s, p)
		}
	}

	if _, ok := db.Resolve("Wright Flyer"); ok {
		t.Error("unknown type should not resolve")
	}

	heavy, ok := db.Resolve("Boeing 737-800")
	if !ok || heavy.Category != CategoryHeavy {
		t.Errorf("Boeing 737-800: got %+v ok %v", heavy, ok)
	}
}

func TestProfileDBTypesSorted(t *testing.T) {
	db, err := LoadProfileDB()
	if err != nil {
		t.Fatal(err)
	}
	types := db.Types()
	if len(types) != db.Len() {
		t.Fatalf("Types() returned %d entries, want %d", len(types), db.Len())
	}
	if !slices.Contains(types, "Airbus A380") {
		t.Errorf("Types() missing Airbus A380: %v", types)
	}
}

func TestLoadProfileDBFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "extra.json")
	extra := `[
	  {"aircraft_type": "Piper Cub", "min_runway_length_ft": 800, "min_runway_width_ft": 40,
	   "max_weight_lbs": 1220, "approach_speed_kts": 50, "category": "light"},
	  {"aircraft_type": "Cessna 172", "min_runway_length_ft": 1500, "min_runway_width_ft": 50,
	   "max_weight_lbs": 2550, "approach_speed_kts": 65, "category": "light"}
	]`
	if err := os.WriteFile(path, []byte(extra), 0o644); err != nil {
		t.Fatal(err)
	}

	db, err := LoadProfileDBFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if db.Len() != 10 {
		t.Errorf("got %d profiles, want 10", db.Len())
	}
	if p, ok := db.Resolve("piper cub"); !ok || p.MinRunwayLengthFt != 800 {
		t.Errorf("Piper Cub: got %+v ok %v", p, ok)
	}
	// The file entry replaces the built-in one.
	if p, _ := db.Resolve("Cessna 172"); p.MinRunwayLengthFt != 1500 {
		t.Errorf("overridden Cessna 172 minimum: got %d, want 1500", p.MinRunwayLengthFt)
	}
}

func TestLoadProfileDBFileInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(path, []byte(`[{"aircraft_type": "", "min_runway_length_ft": 0}]`), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadProfileDBFile(path); err == nil {
		t.Error("expected error for profile without type or runway length")
	}
}

func TestFoldType(t *testing.T) {
	for _, tc := range []struct{ in, want string }{
		{"Cessna 172", "cessna 172"},
		{"  BOEING   747  ", "boeing 747"},
		{"a\tb", "a b"},
	} {
		if got := FoldType(tc.in); got != tc.want {
			t.Errorf("FoldType(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
