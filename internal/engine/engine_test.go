package engine

import (
	"testing"

	"github.com/hailam/c4solve/internal/board"
)

func TestEngineSolveImmediateWin(t *testing.T) {
	s := board.NewState()
	moves := []int{3, 0, 3, 0, 3, 0}
	var ok bool
	for i, col := range moves {
		s, ok = s.PlayMove(col)
		if !ok {
			t.Fatalf("unexpected illegal move %d (col %d)", i, col)
		}
	}

	eng := NewEngine(0)
	result, err := eng.Solve(s)
	if err != nil {
		t.Fatalf("Solve failed: %v", err)
	}
	if len(result.Moves) != 1 || result.Moves[0] != 3 {
		t.Errorf("expected the unique winning move [3], got %v", result.Moves)
	}
}

func TestEngineSolveInvariantUnderWorkerCount(t *testing.T) {
	if testing.Short() {
		t.Skip("comparing worker counts requires a full solve; skipping under -short")
	}
	s := board.NewState()
	for _, col := range []int{3, 2, 4} {
		next, ok := s.PlayMove(col)
		if !ok {
			t.Fatalf("unexpected illegal move to column %d", col)
		}
		s = next
	}

	seq, err := NewEngine(0).Solve(s)
	if err != nil {
		t.Fatalf("Solve(0 workers) failed: %v", err)
	}

	par, err := NewEngine(4).Solve(s)
	if err != nil {
		t.Fatalf("Solve(4 workers) failed: %v", err)
	}

	if seq.Eval != par.Eval {
		t.Errorf("eval must not depend on helper count: got %d (0 workers) vs %d (4 workers)", seq.Eval, par.Eval)
	}
}

func TestEngineOnInfoCalledAfterSolve(t *testing.T) {
	s := board.NewState()
	moves := []int{3, 0, 3, 0, 3, 0}
	var ok bool
	for i, col := range moves {
		s, ok = s.PlayMove(col)
		if !ok {
			t.Fatalf("unexpected illegal move %d (col %d)", i, col)
		}
	}

	eng := NewEngine(0)
	called := false
	eng.OnInfo = func(SolveResult) { called = true }

	if _, err := eng.Solve(s); err != nil {
		t.Fatalf("Solve failed: %v", err)
	}
	if !called {
		t.Error("expected OnInfo to be invoked after a successful Solve")
	}
}
