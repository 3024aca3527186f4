package game

import (
	"math/rand"
	"sort"
	"testing"
)

func sortedLetters(w *Workspace) string {
	all := append(w.Pool(), w.Solution()...)
	sort.Slice(all, func(i, j int) bool { return all[i] < all[j] })
	return string(all)
}

func TestWorkspaceConservesLetters(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	w := NewWorkspace("planet", rng)
	want := sortedLetters(w)

	moves := []struct {
		srcArea Area
		srcIdx  int
		dstArea Area
		dstIdx  int
	}{
		{AreaPool, 0, AreaSolution, 0},
		{AreaPool, 2, AreaSolution, 1},
		{AreaSolution, 0, AreaPool, 99}, // clamps to end
		{AreaPool, 1, AreaPool, 0},      // reorder within pool
		{AreaPool, 0, AreaSolution, -5}, // clamps to start
	}
	for i, mv := range moves {
		w.Move(mv.srcArea, mv.srcIdx, mv.dstArea, mv.dstIdx)
		if got := sortedLetters(w); got != want {
			t.Fatalf("after move %d letters = %q, want %q", i, got, want)
		}
	}
}

func TestWorkspaceInvalidSourceIsNoOp(t *testing.T) {
	w := NewWorkspace("cat", nil)
	before := sortedLetters(w)
	w.Move(AreaSolution, 0, AreaPool, 0) // solution is empty
	w.Move(AreaPool, -1, AreaSolution, 0)
	w.Move(AreaPool, 7, AreaSolution, 0)
	if got := sortedLetters(w); got != before {
		t.Fatalf("letters changed on invalid source: %q", got)
	}
	if len(w.Solution()) != 0 {
		t.Fatalf("solution not empty after no-op moves")
	}
}

func TestWorkspaceMoveInsertsAtIndex(t *testing.T) {
	w := NewWorkspace("abc", nil) // no rng: pool stays in word order A B C
	w.Move(AreaPool, 2, AreaSolution, 0)
	w.Move(AreaPool, 0, AreaSolution, 0)
	if got := w.SolutionWord(); got != "AC" {
		t.Fatalf("solution = %q, want AC", got)
	}
	w.Move(AreaPool, 0, AreaSolution, 1)
	if got := w.SolutionWord(); got != "ABC" {
		t.Fatalf("solution = %q, want ABC", got)
	}
}

func TestRefillClearsSolutionAndRestoresPool(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	w := NewWorkspace("orange", rng)
	w.Move(AreaPool, 0, AreaSolution, 0)
	w.Move(AreaPool, 0, AreaSolution, 1)
	w.Refill(true)
	if len(w.Solution()) != 0 {
		t.Fatalf("solution not cleared by Refill")
	}
	if got := len(w.Pool()); got != 6 {
		t.Fatalf("pool has %d letters after Refill, want 6", got)
	}
	if got := sortedLetters(w); got != "AEGNOR" {
		t.Fatalf("letters = %q after Refill, want AEGNOR", got)
	}
}
