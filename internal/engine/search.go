package engine

import (
	"sync/atomic"

	"github.com/hailam/c4solve/internal/board"
)

// WorkerThreadDepth is the BFS depth used to pick sibling positions for the
// helper pool.
const WorkerThreadDepth = 2

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// mateDistanceWindow tightens [alpha, beta] to the best score still
// achievable at ply m: a mate in at most ceil(remaining/2) plies.
func mateDistanceWindow(m int8, alpha, beta int) (int, int) {
	mm := int(m)
	alpha = maxInt(alpha, -(board.MaxPlayerMoves - (mm+1)/2))
	beta = minInt(beta, board.MaxPlayerMoves-mm/2)
	return alpha, beta
}

// Evaluate is the negamax+alpha-beta+PVS search core. It returns the
// evaluation from the perspective of the side to move and ok=true, or
// ok=false if cancel was observed set. nodes accumulates visited-node count
// and must not be shared across concurrently running calls.
func Evaluate(
	currPieces, oppPieces, heightMap uint64,
	movesMade int8,
	alpha, beta int,
	caches *Caches,
	cancel *atomic.Bool,
	nodes *uint64,
) (int, bool) {
	if cancel != nil && cancel.Load() {
		return 0, false
	}
	*nodes++

	if movesMade == board.MaxPlies {
		return board.Draw, true
	}

	alpha, beta = mateDistanceWindow(movesMade, alpha, beta)

	state := board.StateBitboard(currPieces, heightMap)
	index := CacheIndex(state)

	alpha = maxInt(alpha, caches.GetLower(state, movesMade, index))
	if alpha >= beta {
		return alpha, true
	}

	beta = minInt(beta, caches.GetUpper(state, movesMade, index))
	if alpha >= beta {
		return alpha, true
	}

	var threats uint32
	forcedMoveCount := 0
	var forcedMove uint64

	for i := 0; i < board.Cols; i++ {
		col := orderCol(board.DefaultMoveOrder, i)
		mv := board.OpenRow(heightMap, col)
		if mv&board.IsLegal == 0 {
			continue
		}

		updatedPieces := board.UpdatePieces(currPieces, mv)
		if board.IsWin(updatedPieces) {
			return board.MaxPlayerMoves - int(movesMade)/2, true
		}

		if board.IsWin(board.UpdatePieces(oppPieces, mv)) {
			forcedMoveCount++
			forcedMove = mv
		}

		updatedHeight := board.UpdateHeightMap(heightMap, mv)
		nextState := board.StateBitboard(oppPieces, updatedHeight)
		nextIndex := CacheIndex(nextState)

		alpha = maxInt(alpha, -caches.GetUpper(nextState, movesMade+1, nextIndex))
		if alpha >= beta {
			return alpha, true
		}

		threats |= CountThreats(updatedPieces, updatedHeight) << (4 * uint(col))
	}

	if forcedMoveCount > 1 {
		return -(board.MaxPlayerMoves - int(movesMade+1)/2), true
	}

	if forcedMoveCount == 1 {
		eval, ok := Evaluate(
			oppPieces,
			board.UpdatePieces(currPieces, forcedMove),
			board.UpdateHeightMap(heightMap, forcedMove),
			movesMade+1,
			-beta, -alpha,
			caches, cancel, nodes,
		)
		if !ok {
			return 0, false
		}
		return -eval, true
	}

	order := SortByThreats(threats)
	movesSearched := 0

	for i := 0; i < board.Cols; i++ {
		col := orderCol(order, i)
		mv := board.OpenRow(heightMap, col)
		if mv&board.IsLegal == 0 {
			continue
		}

		updatedPieces := board.UpdatePieces(currPieces, mv)
		updatedHeight := board.UpdateHeightMap(heightMap, mv)

		var eval int
		if movesSearched == 0 {
			v, ok := Evaluate(oppPieces, updatedPieces, updatedHeight, movesMade+1, -beta, -alpha, caches, cancel, nodes)
			if !ok {
				return 0, false
			}
			eval = -v
		} else {
			nullWindow, ok := Evaluate(oppPieces, updatedPieces, updatedHeight, movesMade+1, -alpha-1, -alpha, caches, cancel, nodes)
			if !ok {
				return 0, false
			}
			nullWindowEval := -nullWindow
			if nullWindowEval > alpha && nullWindowEval < beta {
				v, ok := Evaluate(oppPieces, updatedPieces, updatedHeight, movesMade+1, -beta, -alpha, caches, cancel, nodes)
				if !ok {
					return 0, false
				}
				eval = -v
			} else {
				eval = nullWindowEval
			}
		}

		alpha = maxInt(alpha, eval)
		if alpha >= beta {
			caches.PutLower(alpha, state, movesMade, index)
			return alpha, true
		}

		movesSearched++
	}

	caches.PutUpper(alpha, state, movesMade, index)
	return alpha, true
}
