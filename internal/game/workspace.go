// Package game holds the round state a participant manipulates: the letter
// workspace, the validator, and the ledger of validated words with their
// rewards.
package game

import (
	"math/rand"
	"strings"
)

// Area identifies one of the two letter rows in the workspace.
type Area int

const (
	AreaPool Area = iota
	AreaSolution
)

// Workspace holds the scrambled letters of the current anagram split across
// the pool and the in-progress solution. Every letter of the source word is
// always in exactly one of the two areas.
type Workspace struct {
	word     string
	pool     []rune
	solution []rune
	rng      *rand.Rand
}

func NewWorkspace(word string, rng *rand.Rand) *Workspace {
	w := &Workspace{word: word, rng: rng}
	w.Refill(true)
	return w
}

func (w *Workspace) Pool() []rune     { return append([]rune(nil), w.pool...) }
func (w *Workspace) Solution() []rune { return append([]rune(nil), w.solution...) }

// SolutionWord renders the solution row as a candidate word.
func (w *Workspace) SolutionWord() string {
	return string(w.solution)
}

// Move transfers the letter at srcIndex in srcArea to dstIndex in dstArea.
// Out-of-range destination indexes clamp to the nearest end; an invalid
// source index is a no-op. Moving within one area reorders it.
func (w *Workspace) Move(srcArea Area, srcIndex int, dstArea Area, dstIndex int) {
	src := w.area(srcArea)
	if srcIndex < 0 || srcIndex >= len(*src) {
		return
	}
	letter := (*src)[srcIndex]
	*src = append((*src)[:srcIndex], (*src)[srcIndex+1:]...)

	dst := w.area(dstArea)
	if dstIndex < 0 {
		dstIndex = 0
	}
	if dstIndex > len(*dst) {
		dstIndex = len(*dst)
	}
	*dst = append(*dst, 0)
	copy((*dst)[dstIndex+1:], (*dst)[dstIndex:])
	(*dst)[dstIndex] = letter
}

func (w *Workspace) area(a Area) *[]rune {
	if a == AreaSolution {
		return &w.solution
	}
	return &w.pool
}

// Refill returns every letter of the source word to the pool and clears the
// solution. With shuffle set the pool comes back in random order, which is
// what happens after each successful validation.
func (w *Workspace) Refill(shuffle bool) {
	letters := []rune(strings.ToUpper(w.word))
	if shuffle && w.rng != nil {
		w.rng.Shuffle(len(letters), func(i, j int) {
			letters[i], letters[j] = letters[j], letters[i]
		})
	}
	w.pool = letters
	w.solution = w.solution[:0]
}
