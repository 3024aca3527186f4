package api

import "time"

// Wire types mirror the backend contract. Field names are fixed by the
// server; do not rename.

type SessionMetadata struct {
	Platform     string `json:"platform"`
	Terminal     string `json:"terminal"`
	ScreenWidth  int    `json:"screenWidth"`
	ScreenHeight int    `json:"screenHeight"`
	ClientRunID  string `json:"clientRunId"`
}

type InitializeSessionRequest struct {
	ProlificID string          `json:"prolificId"`
	Metadata   SessionMetadata `json:"metadata"`
}

type InitializeSessionResponse struct {
	SessionID string `json:"sessionId"`
}

type TimeSettings struct {
	TutorialSeconds int `json:"tutorial_time"`
	GameSeconds     int `json:"game_time"`
}

type StudyConfig struct {
	TimeSettings TimeSettings   `json:"timeSettings"`
	Rewards      map[string]int `json:"rewards"`
	Compensation string         `json:"compensation"`
	GameAnagrams int            `json:"game_anagrams"`
}

type TutorialInit struct {
	Word          string              `json:"word"`
	Solutions     map[string][]string `json:"solutions"`
	TimeLimit     int                 `json:"timeLimit"`
	MinWordLength int                 `json:"minWordLength"`
}

type TutorialComplete struct {
	SessionID      string    `json:"sessionId"`
	ProlificID     string    `json:"prolificId"`
	CompletedAt    time.Time `json:"completedAt"`
	ValidatedWords int       `json:"validatedWords"`
}

// GameInit carries the anti-cheating message plus the first round. The
// solutions map is keyed by stringified word length.
type GameInit struct {
	CurrentMessage string              `json:"currentMessage"`
	Word           string              `json:"word"`
	Solutions      map[string][]string `json:"solutions"`
	TimeSettings   TimeSettings        `json:"timeSettings"`
	MinWordLength  int                 `json:"minWordLength"`
}

type NextRound struct {
	Word         string              `json:"word"`
	Solutions    map[string][]string `json:"solutions"`
	CurrentIndex int                 `json:"currentIndex"`
}

type GameEvent struct {
	SessionID  string         `json:"sessionId"`
	ProlificID string         `json:"prolificId"`
	EventType  string         `json:"eventType"`
	Phase      string         `json:"phase"`
	Timestamp  time.Time      `json:"timestamp"`
	Metadata   map[string]any `json:"metadata,omitempty"`
}

type SubmittedWord struct {
	Word        string    `json:"word"`
	Length      int       `json:"length"`
	Reward      int       `json:"reward"`
	IsValid     bool      `json:"isValid"`
	ValidatedAt time.Time `json:"validatedAt"`
	SubmittedAt time.Time `json:"submittedAt"`
}

type WordSubmission struct {
	SessionID      string          `json:"sessionId"`
	ProlificID     string          `json:"prolificId"`
	Phase          string          `json:"phase"`
	AnagramShown   string          `json:"anagramShown"`
	SubmittedWords []SubmittedWord `json:"submittedWords"`
	TotalReward    int             `json:"totalReward"`
	TimeSpent      int             `json:"timeSpent"`
	SubmittedAt    time.Time       `json:"submittedAt"`
}

type WordMeaning struct {
	Word            string `json:"word"`
	ProvidedMeaning string `json:"providedMeaning"`
	IsCorrect       *bool  `json:"isCorrect"`
}

type MeaningSubmission struct {
	SessionID      string        `json:"sessionId"`
	ProlificID     string        `json:"prolificId"`
	Phase          string        `json:"phase"`
	WordMeanings   []WordMeaning `json:"wordMeanings"`
	CompletedAt    time.Time     `json:"completedAt"`
	TotalTimeSpent int           `json:"totalTimeSpent"`
}

type GameResults struct {
	ValidWords   []SubmittedWord `json:"validWords"`
	InvalidWords []SubmittedWord `json:"invalidWords"`
	TotalReward  int             `json:"totalReward"`
}
