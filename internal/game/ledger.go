package game

import (
	"strconv"
	"strings"
	"time"
)

// ValidationResult distinguishes why a candidate was accepted or refused.
type ValidationResult int

const (
	ResultValid ValidationResult = iota
	ResultTooShort
	ResultNotAWord
	ResultDuplicate
)

// Entry is one validation attempt as shown in the ledger and sent with the
// round submission. Invalid attempts are recorded with a zero reward so the
// backend sees them too.
type Entry struct {
	Word        string
	Length      int
	Reward      int
	IsValid     bool
	ValidatedAt time.Time
}

// RewardTable maps word length to pence. Lengths without an entry pay
// nothing; the study's table only starts rewarding at the minimum length.
type RewardTable map[int]int

func (r RewardTable) Reward(length int) int {
	return r[length]
}

// Ledger accumulates validation attempts for one round and checks candidates
// against the round's solution sets.
type Ledger struct {
	minLength int
	rewards   RewardTable
	solutions map[int]map[string]struct{}
	entries   []Entry
	now       func() time.Time
}

// NewLedger builds a ledger for one round. solutions is keyed by word
// length; the inner sets hold uppercase words.
func NewLedger(minLength int, rewards RewardTable, solutions map[int][]string) *Ledger {
	sets := make(map[int]map[string]struct{}, len(solutions))
	for length, words := range solutions {
		set := make(map[string]struct{}, len(words))
		for _, w := range words {
			set[strings.ToUpper(w)] = struct{}{}
		}
		sets[length] = set
	}
	return &Ledger{
		minLength: minLength,
		rewards:   rewards,
		solutions: sets,
		now:       time.Now,
	}
}

// Validate checks a candidate and records the attempt. Duplicates are
// matched by exact text against previously recorded attempts and are not
// recorded again. Too-short candidates are refused without being recorded;
// the participant has not finished a word yet.
func (l *Ledger) Validate(candidate string) (ValidationResult, Entry) {
	if len([]rune(candidate)) < l.minLength {
		return ResultTooShort, Entry{}
	}
	for _, e := range l.entries {
		if e.Word == candidate {
			return ResultDuplicate, Entry{}
		}
	}
	upper := strings.ToUpper(candidate)
	length := len([]rune(candidate))
	_, ok := l.solutions[length][upper]
	entry := Entry{
		Word:        candidate,
		Length:      length,
		IsValid:     ok,
		ValidatedAt: l.now(),
	}
	if ok {
		entry.Reward = l.rewards.Reward(length)
	}
	l.entries = append(l.entries, entry)
	if ok {
		return ResultValid, entry
	}
	return ResultNotAWord, entry
}

// Remove deletes the attempt at index. Out-of-range indexes are a no-op.
func (l *Ledger) Remove(index int) (Entry, bool) {
	if index < 0 || index >= len(l.entries) {
		return Entry{}, false
	}
	removed := l.entries[index]
	l.entries = append(l.entries[:index], l.entries[index+1:]...)
	return removed, true
}

func (l *Ledger) Entries() []Entry {
	return append([]Entry(nil), l.entries...)
}

func (l *Ledger) ValidCount() int {
	n := 0
	for _, e := range l.entries {
		if e.IsValid {
			n++
		}
	}
	return n
}

func (l *Ledger) TotalReward() int {
	total := 0
	for _, e := range l.entries {
		total += e.Reward
	}
	return total
}

// UniqueWords extracts the first occurrence of each distinct word text from
// entries, preserving order. Matching is case-sensitive: the participant may
// attach different meanings to differently-cased spellings.
func UniqueWords(entries []Entry) []string {
	seen := make(map[string]struct{}, len(entries))
	var out []string
	for _, e := range entries {
		if _, ok := seen[e.Word]; ok {
			continue
		}
		seen[e.Word] = struct{}{}
		out = append(out, e.Word)
	}
	return out
}

// ParseRewardTable converts the backend's stringified-length reward map.
func ParseRewardTable(raw map[string]int) (RewardTable, error) {
	table := make(RewardTable, len(raw))
	for k, v := range raw {
		length, err := strconv.Atoi(k)
		if err != nil {
			return nil, err
		}
		table[length] = v
	}
	return table, nil
}
