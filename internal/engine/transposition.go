package engine

import (
	"sync"
	"sync/atomic"

	"github.com/hailam/c4solve/internal/board"
)

const (
	// CacheSize is the slot count of each per-goroutine late-game
	// direct-mapped table. Deliberately odd to scatter consecutive
	// fingerprints across slots.
	CacheSize = 1<<19 + 1

	// BeginningGameCacheDepth partitions the search between the shared
	// early-game cache and the goroutine-local late-game table.
	BeginningGameCacheDepth = 25

	shardCount = 64
)

// CacheIndex computes the direct-mapped table slot for a fingerprint.
func CacheIndex(fingerprint uint64) uint64 {
	return fingerprint % CacheSize
}

// SharedBoundMap is the lock-striped concurrent map backing the early-game
// tier of one logical cache (lower or upper bounds). Updates are monotone:
// a put never lowers a stored lower bound nor raises a stored upper bound,
// so the invariant lower <= true_value <= upper survives lost updates.
type SharedBoundMap struct {
	shards  [shardCount]boundShard
	isUpper bool
}

type boundShard struct {
	mu sync.RWMutex
	m  map[uint64]int8
}

// NewSharedBoundMap creates an empty shared map. isUpper selects the merge
// direction: false merges via max (lower-bound cache), true via min
// (upper-bound cache).
func NewSharedBoundMap(isUpper bool) *SharedBoundMap {
	sm := &SharedBoundMap{isUpper: isUpper}
	for i := range sm.shards {
		sm.shards[i].m = make(map[uint64]int8)
	}
	return sm
}

func (sm *SharedBoundMap) shardFor(fingerprint uint64) *boundShard {
	return &sm.shards[fingerprint%shardCount]
}

// Get returns the stored bound and true, or (0, false) on a miss.
func (sm *SharedBoundMap) Get(fingerprint uint64) (int8, bool) {
	shard := sm.shardFor(fingerprint)
	shard.mu.RLock()
	defer shard.mu.RUnlock()
	v, ok := shard.m[fingerprint]
	return v, ok
}

// Put upserts bound, merging with any existing value via max (lower-bound
// cache) or min (upper-bound cache).
func (sm *SharedBoundMap) Put(fingerprint uint64, bound int8) {
	shard := sm.shardFor(fingerprint)
	shard.mu.Lock()
	defer shard.mu.Unlock()
	old, ok := shard.m[fingerprint]
	if !ok {
		shard.m[fingerprint] = bound
		return
	}
	if sm.isUpper {
		if bound < old {
			shard.m[fingerprint] = bound
		}
	} else {
		if bound > old {
			shard.m[fingerprint] = bound
		}
	}
}

// Replace unconditionally overwrites the stored bound for fingerprint,
// bypassing the merge direction. Used when loading a database file: the
// file is the cache's entire starting state, not an update to reconcile.
func (sm *SharedBoundMap) Replace(fingerprint uint64, bound int8) {
	shard := sm.shardFor(fingerprint)
	shard.mu.Lock()
	defer shard.mu.Unlock()
	shard.m[fingerprint] = bound
}

// Len returns the total number of entries across all shards, for database
// writing and diagnostics.
func (sm *SharedBoundMap) Len() int {
	n := 0
	for i := range sm.shards {
		sm.shards[i].mu.RLock()
		n += len(sm.shards[i].m)
		sm.shards[i].mu.RUnlock()
	}
	return n
}

// Range calls f for every entry. f must not call back into the map.
func (sm *SharedBoundMap) Range(f func(fingerprint uint64, bound int8)) {
	for i := range sm.shards {
		sm.shards[i].mu.RLock()
		for k, v := range sm.shards[i].m {
			f(k, v)
		}
		sm.shards[i].mu.RUnlock()
	}
}

// LateGameTable is a per-goroutine, fixed-size, direct-mapped table of
// CacheSize self-validating entries. Collisions are silently dropped
// (always-replace on write, fingerprint-checked on read) rather than
// chained, trading a few false misses for zero locking.
type LateGameTable struct {
	entries []atomic.Uint64
}

// NewLateGameTable allocates an empty late-game table.
func NewLateGameTable() *LateGameTable {
	return &LateGameTable{entries: make([]atomic.Uint64, CacheSize)}
}

// Get returns the stored bound for fingerprint at index, or (0, false) if
// the slot is empty or holds a different fingerprint.
func (t *LateGameTable) Get(fingerprint, index uint64) (int, bool) {
	word := t.entries[index].Load()
	if word == 0 {
		return 0, false
	}
	fp, bound := board.UnpackBoundWord(word)
	if fp != fingerprint&board.BoardMask {
		return 0, false
	}
	return bound, true
}

// Put unconditionally overwrites the slot at index.
func (t *LateGameTable) Put(fingerprint, index uint64, bound int) {
	t.entries[index].Store(board.PackBoundWord(fingerprint, bound))
}

// Caches bundles the four tables (lower/upper x shared/late) that the
// search core probes and updates. A Caches value constructed with
// NewWorkerCaches shares its early-game maps by pointer with every other
// view built from the same shared maps, but owns its late-game tables
// exclusively.
type Caches struct {
	LowerShared *SharedBoundMap
	UpperShared *SharedBoundMap
	LowerLate   *LateGameTable
	UpperLate   *LateGameTable
	Boundary    int8
}

// NewCaches allocates a fresh, fully independent set of caches.
func NewCaches() *Caches {
	return &Caches{
		LowerShared: NewSharedBoundMap(false),
		UpperShared: NewSharedBoundMap(true),
		LowerLate:   NewLateGameTable(),
		UpperLate:   NewLateGameTable(),
		Boundary:    BeginningGameCacheDepth,
	}
}

// NewWorkerCaches builds a per-goroutine cache view that shares the given
// early-game maps by reference but owns brand-new late-game tables. Every
// helper and database-generator worker gets one of these.
func NewWorkerCaches(lowerShared, upperShared *SharedBoundMap) *Caches {
	return &Caches{
		LowerShared: lowerShared,
		UpperShared: upperShared,
		LowerLate:   NewLateGameTable(),
		UpperLate:   NewLateGameTable(),
		Boundary:    BeginningGameCacheDepth,
	}
}

// GetLower implements the get(state, moves_made, index) contract for the
// lower-bound cache; the miss sentinel is MinEval.
func (c *Caches) GetLower(fingerprint uint64, movesMade int8, index uint64) int {
	if movesMade <= c.Boundary {
		if v, ok := c.LowerShared.Get(fingerprint); ok {
			return int(v)
		}
		return board.MinEval
	}
	if v, ok := c.LowerLate.Get(fingerprint, index); ok {
		return v
	}
	return board.MinEval
}

// GetUpper is the upper-bound counterpart of GetLower; the miss sentinel is
// MaxEval.
func (c *Caches) GetUpper(fingerprint uint64, movesMade int8, index uint64) int {
	if movesMade <= c.Boundary {
		if v, ok := c.UpperShared.Get(fingerprint); ok {
			return int(v)
		}
		return board.MaxEval
	}
	if v, ok := c.UpperLate.Get(fingerprint, index); ok {
		return v
	}
	return board.MaxEval
}

// PutLower implements the put(bound, state, moves_made, index) contract for
// the lower-bound cache.
func (c *Caches) PutLower(bound int, fingerprint uint64, movesMade int8, index uint64) {
	if movesMade > c.Boundary {
		c.LowerLate.Put(fingerprint, index, bound)
		return
	}
	c.LowerShared.Put(fingerprint, int8(bound))
}

// PutUpper is the upper-bound counterpart of PutLower.
func (c *Caches) PutUpper(bound int, fingerprint uint64, movesMade int8, index uint64) {
	if movesMade > c.Boundary {
		c.UpperLate.Put(fingerprint, index, bound)
		return
	}
	c.UpperShared.Put(fingerprint, int8(bound))
}
