// util/objcache.go
// Copyright(c) 2025-2026 divert contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package util

import (
	"compress/flate"
	"os"
	"path/filepath"
	"time"

	"github.com/vmihailenco/msgpack/v5"
)

// StoreObject writes obj to the given path, msgpack-encoded and
// flate-compressed, creating parent directories as needed. The write
// goes through a temporary file and rename so a crash never leaves a
// truncated object behind.
func StoreObject(path string, obj any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	f, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp")
	if err != nil {
		return err
	}

	fw, err := flate.NewWriter(f, flate.BestSpeed)
	if err != nil {
		f.Close()
		os.Remove(f.Name())
		return err
	}

	if err := msgpack.NewEncoder(fw).Encode(obj); err == nil {
		err = fw.Close()
	}
	if err != nil {
		f.Close()
		os.Remove(f.Name())
		return err
	}

	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return err
	}
	return os.Rename(f.Name(), path)
}

// RetrieveObject reads an object previously written by StoreObject and
// returns the file's modification time alongside it.
func RetrieveObject(path string, obj any) (time.Time, error) {
	f, err := os.Open(path)
	if err != nil {
		return time.Time{}, err
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		return time.Time{}, err
	}

	fr := flate.NewReader(f)
	defer fr.Close()

	return fi.ModTime(), msgpack.NewDecoder(fr).Decode(obj)
}
