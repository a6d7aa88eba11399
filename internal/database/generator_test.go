package database

import (
	"testing"

	"github.com/hailam/c4solve/internal/board"
	"github.com/hailam/c4solve/internal/engine"
)

func TestGenerateOptimalReachableStatesDepthZero(t *testing.T) {
	caches := engine.NewCaches()
	seen := make(map[uint64]struct{})
	var states []board.State

	if err := generateOptimalReachableStates(board.NewState(), caches, 0, seen, &states); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(states) != 1 {
		t.Errorf("depth 0 should collect exactly the root as a leaf, got %d states", len(states))
	}
}

func TestGenerateOptimalReachableStatesDedupes(t *testing.T) {
	caches := engine.NewCaches()
	seen := make(map[uint64]struct{})
	var states []board.State

	root := board.NewState()
	if err := generateOptimalReachableStates(root, caches, 0, seen, &states); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	before := len(states)

	// Calling again with the same seen set must be a no-op: the root's
	// bitboard key is already marked visited.
	if err := generateOptimalReachableStates(root, caches, 0, seen, &states); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(states) != before {
		t.Errorf("revisiting a seen state should not append again: got %d, want %d", len(states), before)
	}
}

func TestGenerateDatabaseEvenDepthSeedsLowerBound(t *testing.T) {
	if testing.Short() {
		t.Skip("full database generation is expensive; skipping under -short")
	}
	dir := t.TempDir()
	// A missing database file is an error, not an empty cache; seed empty
	// files before the first generation run.
	caches := engine.NewCaches()
	if err := SaveCaches(dir, caches); err != nil {
		t.Fatalf("failed to seed empty database files: %v", err)
	}

	nodes, err := GenerateDatabase(dir, 2, 2)
	if err != nil {
		t.Fatalf("GenerateDatabase failed: %v", err)
	}
	if nodes == 0 {
		t.Error("expected the generator to visit at least one node")
	}

	reloaded := engine.NewCaches()
	if err := LoadCaches(dir, reloaded); err != nil {
		t.Fatalf("LoadCaches failed: %v", err)
	}
	if reloaded.LowerShared.Len() == 0 {
		t.Error("expected the generated database to seed at least one lower-bound entry")
	}
}
