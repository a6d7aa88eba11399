package engine

import (
	"sync/atomic"

	"github.com/hailam/c4solve/internal/board"
)

// BestMoves is the root driver: it computes the exact game-theoretic value
// of state and the set of columns that achieve it.
func BestMoves(state board.State, caches *Caches, cancel *atomic.Bool, nodes *uint64) (int, []int, bool) {
	var bestMoves []int
	var threats uint32

	for i := 0; i < board.Cols; i++ {
		col := orderCol(board.DefaultMoveOrder, i)
		mv := board.OpenRow(state.Height, col)
		if mv&board.IsLegal == 0 {
			continue
		}

		updatedPieces := board.UpdatePieces(state.Curr, mv)
		if board.IsWin(updatedPieces) {
			bestMoves = append(bestMoves, col)
		}

		updatedHeight := board.UpdateHeightMap(state.Height, mv)
		threats |= CountThreats(updatedPieces, updatedHeight) << (4 * uint(col))
	}

	if len(bestMoves) > 0 {
		return board.MaxPlayerMoves - int(state.MovesMade)/2, bestMoves, true
	}

	order := SortByThreats(threats)
	maxEval := board.MinEval

	for i := 0; i < board.Cols; i++ {
		col := orderCol(order, i)
		mv := board.OpenRow(state.Height, col)
		if mv&board.IsLegal == 0 {
			continue
		}

		updatedPieces := board.UpdatePieces(state.Curr, mv)
		updatedHeight := board.UpdateHeightMap(state.Height, mv)

		probe, ok := Evaluate(
			state.Opp, updatedPieces, updatedHeight, state.MovesMade+1,
			-maxEval-1, -maxEval+1,
			caches, cancel, nodes,
		)
		if !ok {
			return 0, nil, false
		}
		eval := -probe

		if eval > maxEval {
			exact, ok := Evaluate(
				state.Opp, updatedPieces, updatedHeight, state.MovesMade+1,
				board.MinEval, -eval,
				caches, cancel, nodes,
			)
			if !ok {
				return 0, nil, false
			}
			eval = -exact

			bestMoves = []int{col}
			maxEval = eval
		} else if eval == maxEval {
			bestMoves = append(bestMoves, col)
		}
	}

	return maxEval, bestMoves, true
}
