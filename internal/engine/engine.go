package engine

import (
	"fmt"
	"log"
	"time"

	"github.com/hailam/c4solve/internal/board"
)

// SolveResult is what the root driver plus helper pool produces for one
// position.
type SolveResult struct {
	Eval    int
	Moves   []int
	Nodes   uint64
	Elapsed time.Duration
}

// Engine ties the search core, the two-tier cache, and the helper pool
// together into the single "evaluate position and return optimal moves"
// entry point. It owns the caches for its whole lifetime;
// callers that want a fresh search should construct a new Engine.
type Engine struct {
	caches     *Caches
	numWorkers int

	// OnInfo, if set, is called after every successful solve with
	// diagnostic counters. It is not called when Solve returns an error.
	OnInfo func(SolveResult)
}

// NewEngine constructs an engine with fresh, empty caches and numWorkers
// helper goroutines (0 disables the helper pool).
func NewEngine(numWorkers int) *Engine {
	return &Engine{
		caches:     NewCaches(),
		numWorkers: numWorkers,
	}
}

// Caches exposes the engine's cache set, e.g. for database seeding before
// the first Solve call.
func (e *Engine) Caches() *Caches {
	return e.caches
}

// Solve computes the exact value and optimal move set of state, warming the
// shared early-game cache with a helper pool while the root driver runs on
// the calling goroutine.
func (e *Engine) Solve(state board.State) (SolveResult, error) {
	start := time.Now()

	var handles []*HelperHandle
	if e.numWorkers > 0 {
		handles = SpawnHelperPool(state, e.numWorkers, e.caches.LowerShared, e.caches.UpperShared)
	}

	var nodes uint64
	eval, moves, ok := BestMoves(state, e.caches, nil, &nodes)

	helperNodes, joinErr := StopAndJoin(handles)
	nodes += helperNodes

	result := SolveResult{
		Eval:    eval,
		Moves:   moves,
		Nodes:   nodes,
		Elapsed: time.Since(start),
	}

	if !ok {
		// The root driver never passes a cancel flag of its own, so a
		// no-value return here means Evaluate's contract was violated
		// by a caller, not an expected cancellation.
		return result, fmt.Errorf("%w: root driver received no value", ErrEvaluatePosition)
	}
	if joinErr != nil {
		log.Printf("helper pool join error: %v", joinErr)
		return result, joinErr
	}

	if e.OnInfo != nil {
		e.OnInfo(result)
	}

	return result, nil
}
