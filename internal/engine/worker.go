package engine

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/hailam/c4solve/internal/board"
)

// DefaultNumWorkerThreads is the default helper-pool size.
const DefaultNumWorkerThreads = 30

// Sentinel errors. ErrEvaluatePosition means a top-level Evaluate call
// returned no-value (cancelled) in a context that never expected
// cancellation. For a helper it is the ordinary outcome of being told to
// stop and is not surfaced as a failure; HelperHandle.Join reports it so the
// pool driver can tell the two situations apart.
var (
	ErrEvaluatePosition = errors.New("engine: evaluate_position returned no value")
	ErrWorkerThreadJoin = errors.New("engine: worker thread could not be joined")
)

// HelperHandle is a single spawned helper goroutine: it owns a cooperative
// cancel flag and reports its outcome on a buffered channel.
type HelperHandle struct {
	cancel *atomic.Bool
	result chan helperOutcome
}

type helperOutcome struct {
	nodes uint64
	err   error
}

// Terminate requests cooperative cancellation. It does not block.
func (h *HelperHandle) Terminate() {
	h.cancel.Store(true)
}

// Join blocks until the helper finishes and returns its node count. err is
// ErrEvaluatePosition if the helper was cancelled (the expected outcome
// after Terminate), ErrWorkerThreadJoin if the goroutine panicked, or nil on
// a completed, uncancelled evaluation.
func (h *HelperHandle) Join() (uint64, error) {
	out := <-h.result
	return out.nodes, out.err
}

func spawnEvaluatePositionWorker(state board.State, lowerShared, upperShared *SharedBoundMap) *HelperHandle {
	h := &HelperHandle{
		cancel: &atomic.Bool{},
		result: make(chan helperOutcome, 1),
	}

	go func() {
		defer func() {
			if r := recover(); r != nil {
				h.result <- helperOutcome{err: fmt.Errorf("%w: %v", ErrWorkerThreadJoin, r)}
			}
		}()

		caches := NewWorkerCaches(lowerShared, upperShared)
		var nodes uint64
		_, ok := Evaluate(
			state.Curr, state.Opp, state.Height, state.MovesMade,
			board.MinEval, board.MaxEval,
			caches, h.cancel, &nodes,
		)
		if !ok {
			h.result <- helperOutcome{nodes: nodes, err: ErrEvaluatePosition}
			return
		}
		h.result <- helperOutcome{nodes: nodes}
	}()

	return h
}

// SpawnHelperPool starts up to numWorkers helper goroutines, one per
// distinct position within WorkerThreadDepth plies of root (root itself and
// duplicate fingerprints excluded), each sharing lowerShared/upperShared but
// owning its own late-game tables. If fewer than numWorkers siblings exist,
// the pool runs smaller.
func SpawnHelperPool(root board.State, numWorkers int, lowerShared, upperShared *SharedBoundMap) []*HelperHandle {
	fingerprints := root.GenerateStates(WorkerThreadDepth)
	rootKey := root.Fingerprint()

	handles := make([]*HelperHandle, 0, numWorkers)
	for fp := range fingerprints {
		if len(handles) >= numWorkers {
			break
		}
		if fp == rootKey {
			continue
		}
		state := board.FromBitboard(fp)
		handles = append(handles, spawnEvaluatePositionWorker(state, lowerShared, upperShared))
	}
	return handles
}

// StopAndJoin terminates and joins every helper, summing node counts.
// ErrEvaluatePosition from a cancelled helper is expected and swallowed;
// ErrWorkerThreadJoin is collected and returned to the caller.
func StopAndJoin(handles []*HelperHandle) (uint64, error) {
	var total uint64
	var joinErr error
	for _, h := range handles {
		h.Terminate()
	}
	for _, h := range handles {
		n, err := h.Join()
		total += n
		if err != nil && !errors.Is(err, ErrEvaluatePosition) && joinErr == nil {
			joinErr = err
		}
	}
	return total, joinErr
}

// workQueue is the mutex-guarded FIFO the database-generator pool drains.
// The lock is held only for the pop.
type workQueue struct {
	mu    sync.Mutex
	items []board.State
}

func newWorkQueue(items []board.State) *workQueue {
	return &workQueue{items: items}
}

func (q *workQueue) pop() (board.State, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.items) == 0 {
		return board.State{}, false
	}
	s := q.items[0]
	q.items = q.items[1:]
	return s, true
}

// databaseGeneratorWorker drains queue until empty, computing the optimal
// value of each popped position via the root driver and seeding the
// lower-bound early-game cache with it. No cancellation is used: every job
// is expected to run to completion.
func databaseGeneratorWorker(queue *workQueue, lowerShared, upperShared *SharedBoundMap, wg *sync.WaitGroup, totalNodes *atomic.Uint64, joinErrs chan error) {
	defer wg.Done()
	defer func() {
		if r := recover(); r != nil {
			joinErrs <- fmt.Errorf("%w: %v", ErrWorkerThreadJoin, r)
		}
	}()

	caches := NewWorkerCaches(lowerShared, upperShared)
	var nodes uint64

	for {
		state, ok := queue.pop()
		if !ok {
			break
		}

		eval, _, ok := BestMoves(state, caches, nil, &nodes)
		if !ok {
			joinErrs <- ErrEvaluatePosition
			continue
		}
		lowerShared.Put(state.Fingerprint(), int8(eval))
	}

	totalNodes.Add(nodes)
}

// SpawnDatabaseGeneratorPool runs numWorkers goroutines draining states
// against the shared early-game caches, returning the total node count
// visited and the first worker-panic error observed, if any.
func SpawnDatabaseGeneratorPool(states []board.State, numWorkers int, lowerShared, upperShared *SharedBoundMap) (uint64, error) {
	queue := newWorkQueue(states)

	var wg sync.WaitGroup
	var totalNodes atomic.Uint64
	joinErrs := make(chan error, numWorkers)

	for i := 0; i < numWorkers; i++ {
		wg.Add(1)
		go databaseGeneratorWorker(queue, lowerShared, upperShared, &wg, &totalNodes, joinErrs)
	}

	wg.Wait()
	close(joinErrs)

	var firstErr error
	for err := range joinErrs {
		if errors.Is(err, ErrWorkerThreadJoin) && firstErr == nil {
			firstErr = err
		}
	}

	return totalNodes.Load(), firstErr
}
