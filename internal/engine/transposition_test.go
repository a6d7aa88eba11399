package engine

import (
	"testing"

	"github.com/hailam/c4solve/internal/board"
)

func TestSharedBoundMapLowerTakesMax(t *testing.T) {
	m := NewSharedBoundMap(false)
	m.Put(1, 5)
	m.Put(1, 3)
	v, ok := m.Get(1)
	if !ok || v != 5 {
		t.Errorf("lower-bound map should keep the max of 5 and 3, got %d, ok=%v", v, ok)
	}
	m.Put(1, 9)
	v, ok = m.Get(1)
	if !ok || v != 9 {
		t.Errorf("a strictly larger lower bound should replace the stored value, got %d", v)
	}
}

func TestSharedBoundMapUpperTakesMin(t *testing.T) {
	m := NewSharedBoundMap(true)
	m.Put(1, 5)
	m.Put(1, 9)
	v, ok := m.Get(1)
	if !ok || v != 5 {
		t.Errorf("upper-bound map should keep the min of 5 and 9, got %d, ok=%v", v, ok)
	}
}

func TestSharedBoundMapReplaceIsUnconditional(t *testing.T) {
	m := NewSharedBoundMap(false)
	m.Put(1, 10)
	m.Replace(1, -10)
	v, ok := m.Get(1)
	if !ok || v != -10 {
		t.Errorf("Replace must overwrite regardless of merge direction, got %d", v)
	}
}

func TestSharedBoundMapRangeAndLen(t *testing.T) {
	m := NewSharedBoundMap(false)
	entries := map[uint64]int8{1: 1, 2: 2, 100: 3}
	for k, v := range entries {
		m.Put(k, v)
	}
	if m.Len() != len(entries) {
		t.Errorf("Len = %d, want %d", m.Len(), len(entries))
	}

	seen := make(map[uint64]int8)
	m.Range(func(fp uint64, bound int8) { seen[fp] = bound })
	if len(seen) != len(entries) {
		t.Errorf("Range visited %d entries, want %d", len(seen), len(entries))
	}
}

func TestLateGameTableSelfValidates(t *testing.T) {
	table := NewLateGameTable()
	const fp1, fp2 = 42, 42 + CacheSize // collide at the same index

	idx1 := CacheIndex(fp1)
	idx2 := CacheIndex(fp2)
	if idx1 != idx2 {
		t.Fatalf("test assumes a collision, got distinct indices %d, %d", idx1, idx2)
	}

	table.Put(fp1, idx1, 7)
	if _, ok := table.Get(fp2, idx2); ok {
		t.Error("a stale entry for a different fingerprint at the same slot must miss")
	}
}

func TestLateGameTableRoundTrip(t *testing.T) {
	table := NewLateGameTable()
	idx := CacheIndex(99)
	table.Put(99, idx, -4)
	v, ok := table.Get(99, idx)
	if !ok || v != -4 {
		t.Errorf("got (%d, %v), want (-4, true)", v, ok)
	}
}

func TestCachesGetMissSentinels(t *testing.T) {
	c := NewCaches()
	if v := c.GetLower(1, 0, CacheIndex(1)); v != board.MinEval {
		t.Errorf("lower miss should return MinEval, got %d", v)
	}
	if v := c.GetUpper(1, 0, CacheIndex(1)); v != board.MaxEval {
		t.Errorf("upper miss should return MaxEval, got %d", v)
	}
}

func TestCachesPutGetRespectsBoundary(t *testing.T) {
	c := NewCaches()
	// movesMade == Boundary still uses the shared early-game map.
	c.PutLower(10, 5, c.Boundary, CacheIndex(5))
	if v := c.GetLower(5, c.Boundary, CacheIndex(5)); v != 10 {
		t.Errorf("expected early-game put/get to round-trip, got %d", v)
	}

	// movesMade beyond Boundary uses the late-game table instead.
	c.PutLower(8, 6, c.Boundary+1, CacheIndex(6))
	if _, ok := c.LowerShared.Get(6); ok {
		t.Error("a late-game put must not land in the shared early-game map")
	}
	if v := c.GetLower(6, c.Boundary+1, CacheIndex(6)); v != 8 {
		t.Errorf("expected late-game put/get to round-trip, got %d", v)
	}
}
