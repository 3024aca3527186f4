package game

import "math/rand"

// Round bundles the state for one anagram: the scrambled workspace and the
// ledger of attempts against that anagram's solution sets.
type Round struct {
	Word      string
	Index     int
	Workspace *Workspace
	Ledger    *Ledger
}

func NewRound(index int, word string, minLength int, rewards RewardTable, solutions map[int][]string, rng *rand.Rand) *Round {
	return &Round{
		Word:      word,
		Index:     index,
		Workspace: NewWorkspace(word, rng),
		Ledger:    NewLedger(minLength, rewards, solutions),
	}
}
