package database

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/hailam/c4solve/internal/engine"
)

func TestWriteReadFileRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "lower.bin")

	original := engine.NewSharedBoundMap(false)
	entries := map[uint64]int8{1: 5, 100: -3, 1 << 40: 10}
	for fp, bound := range entries {
		original.Put(fp, bound)
	}

	if err := WriteFile(path, original); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	loaded := engine.NewSharedBoundMap(false)
	if err := ReadFile(path, loaded); err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}

	for fp, want := range entries {
		got, ok := loaded.Get(fp)
		if !ok || got != want {
			t.Errorf("fingerprint %#x: got (%d, %v), want (%d, true)", fp, got, ok, want)
		}
	}
}

func TestReadFileMissingIsError(t *testing.T) {
	dir := t.TempDir()
	cache := engine.NewSharedBoundMap(false)
	err := ReadFile(filepath.Join(dir, "does-not-exist.bin"), cache)
	if err == nil {
		t.Error("expected a missing database file to be an I/O error")
	}
}

func TestReadFileEmptyIsPermitted(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "empty.bin")
	if err := os.WriteFile(path, nil, 0644); err != nil {
		t.Fatalf("failed to create empty file: %v", err)
	}

	cache := engine.NewSharedBoundMap(false)
	if err := ReadFile(path, cache); err != nil {
		t.Errorf("an empty database file should not be an error: %v", err)
	}
	if cache.Len() != 0 {
		t.Errorf("expected zero entries from an empty file, got %d", cache.Len())
	}
}

func TestLoadSaveCachesRoundTrip(t *testing.T) {
	dir := t.TempDir()

	caches := engine.NewCaches()
	caches.LowerShared.Put(42, 7)
	caches.UpperShared.Put(42, 9)

	if err := SaveCaches(dir, caches); err != nil {
		t.Fatalf("SaveCaches failed: %v", err)
	}

	reloaded := engine.NewCaches()
	if err := LoadCaches(dir, reloaded); err != nil {
		t.Fatalf("LoadCaches failed: %v", err)
	}

	if v, ok := reloaded.LowerShared.Get(42); !ok || v != 7 {
		t.Errorf("lower bound: got (%d, %v), want (7, true)", v, ok)
	}
	if v, ok := reloaded.UpperShared.Get(42); !ok || v != 9 {
		t.Errorf("upper bound: got (%d, %v), want (9, true)", v, ok)
	}
}
