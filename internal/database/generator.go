package database

import (
	"fmt"
	"log"

	"github.com/hailam/c4solve/internal/board"
	"github.com/hailam/c4solve/internal/engine"
)

// generateOptimalReachableStates walks every optimal continuation from state
// for depth levels, collecting the leaves into possibleStates. Each level
// plays one optimal move and then every legal reply, so it spans two plies;
// GenerateDatabase passes half its ply depth here. A state is
// only descended once; seen is keyed by the canonical fingerprint, so a
// position and its mirror are solved once between them.
func generateOptimalReachableStates(
	state board.State,
	caches *engine.Caches,
	depth int,
	seen map[uint64]struct{},
	possibleStates *[]board.State,
) error {
	key := state.Fingerprint()
	if _, dup := seen[key]; dup {
		return nil
	}
	seen[key] = struct{}{}

	if depth == 0 {
		*possibleStates = append(*possibleStates, state)
		return nil
	}

	var nodes uint64
	_, bestMoves, ok := engine.BestMoves(state, caches, nil, &nodes)
	if !ok {
		return fmt.Errorf("%w: evaluate_position returned no value while generating reachable states", engine.ErrEvaluatePosition)
	}

	for _, col := range bestMoves {
		played, legal := state.PlayMove(col)
		if !legal {
			continue
		}
		for _, next := range played.NextStates() {
			if err := generateOptimalReachableStates(next, caches, depth-1, seen, possibleStates); err != nil {
				return err
			}
		}
	}
	return nil
}

// GenerateDatabase computes the optimal value of every position reachable by
// optimal play within depth plies of the start position, seeds the
// lower-bound early-game cache with each result, and writes the resulting
// caches to dir's two database files.
//
// Depth parity matters: an even depth recurses from the start position at
// depth/2, while an odd depth first expands the start position's immediate
// children (so the asymmetry of whose turn follows an odd number of plies
// lands on the right side) before recursing each at depth/2.
func GenerateDatabase(dir string, depth, numWorkers int) (uint64, error) {
	caches := engine.NewCaches()
	if err := LoadCaches(dir, caches); err != nil {
		return 0, err
	}

	start := board.NewState()
	seen := make(map[uint64]struct{})
	var possibleStates []board.State

	if depth&1 == 0 {
		if err := generateOptimalReachableStates(start, caches, depth>>1, seen, &possibleStates); err != nil {
			return 0, err
		}
	} else {
		for _, next := range start.NextStates() {
			if err := generateOptimalReachableStates(next, caches, depth>>1, seen, &possibleStates); err != nil {
				return 0, err
			}
		}
	}

	log.Printf("database: %d possible states at depth %d", len(possibleStates), depth)

	nodes, err := engine.SpawnDatabaseGeneratorPool(possibleStates, numWorkers, caches.LowerShared, caches.UpperShared)
	if err != nil {
		return nodes, err
	}

	if err := SaveCaches(dir, caches); err != nil {
		return nodes, err
	}

	return nodes, nil
}
