// util/util_test.go
// Copyright(c) 2025-2026 divert contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package util

import (
	"path/filepath"
	"slices"
	"testing"
)

func TestSortedMapKeys(t *testing.T) {
	m := map[string]int{"b": 1, "a": 2, "c": 3}
	if got := SortedMapKeys(m); !slices.Equal(got, []string{"a", "b", "c"}) {
		t.Errorf("SortedMapKeys = %v", got)
	}
}

func TestMapFilterSlice(t *testing.T) {
	s := []int{1, 2, 3, 4}
	if got := MapSlice(s, func(v int) int { return 2 * v }); !slices.Equal(got, []int{2, 4, 6, 8}) {
		t.Errorf("MapSlice = %v", got)
	}
	if got := FilterSlice(s, func(v int) bool { return v%2 == 0 }); !slices.Equal(got, []int{2, 4}) {
		t.Errorf("FilterSlice = %v", got)
	}
}

func TestObjectStoreRoundTrip(t *testing.T) {
	type rec struct {
		Name  string
		Value float64
	}

	path := filepath.Join(t.TempDir(), "objs", "test.msgpack")
	in := []rec{{"a", 1.5}, {"b", -2}}
	if err := StoreObject(path, in); err != nil {
		t.Fatalf("StoreObject: %v", err)
	}

	var out []rec
	if _, err := RetrieveObject(path, &out); err != nil {
		t.Fatalf("RetrieveObject: %v", err)
	}
	if !slices.Equal(in, out) {
		t.Errorf("round trip mismatch: %v vs %v", in, out)
	}
}
