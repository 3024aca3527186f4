package api

import (
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Mock is an in-process stand-in for the study backend so the client can
// run without network access. It serves the same contract with canned
// anagrams and accepts every submission.
type Mock struct {
	mu          sync.Mutex
	sessions    map[string]string // sessionID -> prolificId
	events      []GameEvent
	submissions []WordSubmission
	meanings    []MeaningSubmission

	tutorial  mockRound
	anagrams  []mockRound
	message   string
	rewards   map[string]int
	tutorialS int
	gameS     int
}

type mockRound struct {
	word      string
	solutions map[string][]string
}

func NewMock() *Mock {
	return &Mock{
		sessions:  make(map[string]string),
		message:   "Please solve every anagram on your own. Using dictionaries, anagram solvers, or help from another person invalidates your data.",
		rewards:   map[string]int{"5": 10, "6": 20, "7": 40},
		tutorialS: 180,
		gameS:     300,
		tutorial: mockRound{
			word: "MASTER",
			solutions: map[string][]string{
				"5": {"MATES", "MEATS", "STEAM", "TAMES", "TEAMS", "SMART", "TRAMS"},
				"6": {"MASTER", "STREAM", "TAMERS"},
			},
		},
		anagrams: []mockRound{
			{
				word: "PLANETS",
				solutions: map[string][]string{
					"5": {"PLANE", "PLANT", "PLEAT", "SLANT", "PANEL", "PETAL"},
					"6": {"PLANET", "PLANES", "PLANTS", "STAPLE"},
					"7": {"PLANETS"},
				},
			},
			{
				word: "DANGERS",
				solutions: map[string][]string{
					"5": {"ANGER", "RANGE", "GRAND", "GRADE", "SEDAN"},
					"6": {"DANGER", "GANDER", "RANGES", "GRADES"},
					"7": {"DANGERS", "GANDERS", "GARDENS"},
				},
			},
			{
				word: "RESCUED",
				solutions: map[string][]string{
					"5": {"CURED", "CURSE", "CRUDE", "CEDES", "REUSE"},
					"6": {"RESCUE", "SECURE", "CURSED", "REDUCE"},
					"7": {"RESCUED", "SECURED", "REDUCES"},
				},
			},
		},
	}
}

// Handler builds the HTTP surface. Route shapes match the real backend.
func (m *Mock) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/initialize-session", m.handleInitSession)
	mux.HandleFunc("GET /api/study-config", m.handleStudyConfig)
	mux.HandleFunc("GET /api/tutorial/init", m.handleTutorialInit)
	mux.HandleFunc("POST /api/tutorial/complete", m.handleAccept)
	mux.HandleFunc("GET /api/game/init", m.handleGameInit)
	mux.HandleFunc("GET /api/game/next", m.handleNextRound)
	mux.HandleFunc("POST /api/game-events", m.handleEvent)
	mux.HandleFunc("POST /api/word-submissions", m.handleWordSubmission)
	mux.HandleFunc("POST /api/meanings/submit", m.handleMeanings)
	mux.HandleFunc("GET /api/game-results", m.handleResults)
	return mux
}

// Serve binds a loopback listener and serves until the returned shutdown
// function is called. The returned base URL is ready for NewClient.
func (m *Mock) Serve() (baseURL string, shutdown func(), err error) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return "", nil, fmt.Errorf("mock backend listen: %w", err)
	}
	srv := &http.Server{Handler: m.Handler()}
	go func() { _ = srv.Serve(ln) }()
	return "http://" + ln.Addr().String(), func() { _ = srv.Close() }, nil
}

func (m *Mock) handleInitSession(w http.ResponseWriter, r *http.Request) {
	var req InitializeSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ProlificID == "" {
		writeDetail(w, http.StatusUnprocessableEntity, "prolificId is required")
		return
	}
	id := uuid.NewString()
	m.mu.Lock()
	m.sessions[id] = req.ProlificID
	m.mu.Unlock()
	writeJSON(w, InitializeSessionResponse{SessionID: id})
}

func (m *Mock) handleStudyConfig(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, StudyConfig{
		TimeSettings: TimeSettings{TutorialSeconds: m.tutorialS, GameSeconds: m.gameS},
		Rewards:      m.rewards,
		Compensation: "Base compensation plus word rewards, paid via your participant account.",
		GameAnagrams: len(m.anagrams),
	})
}

func (m *Mock) handleTutorialInit(w http.ResponseWriter, r *http.Request) {
	if !m.knownSession(r.URL.Query().Get("session_id")) {
		writeDetail(w, http.StatusNotFound, "session not found")
		return
	}
	writeJSON(w, TutorialInit{Word: m.tutorial.word, Solutions: m.tutorial.solutions, TimeLimit: m.tutorialS, MinWordLength: 5})
}

func (m *Mock) handleGameInit(w http.ResponseWriter, r *http.Request) {
	if !m.knownSession(r.URL.Query().Get("session_id")) {
		writeDetail(w, http.StatusNotFound, "session not found")
		return
	}
	first := m.anagrams[0]
	writeJSON(w, GameInit{
		CurrentMessage: m.message,
		Word:           first.word,
		Solutions:      first.solutions,
		TimeSettings:   TimeSettings{TutorialSeconds: m.tutorialS, GameSeconds: m.gameS},
		MinWordLength:  5,
	})
}

func (m *Mock) handleNextRound(w http.ResponseWriter, r *http.Request) {
	if !m.knownSession(r.URL.Query().Get("sessionId")) {
		writeDetail(w, http.StatusNotFound, "session not found")
		return
	}
	var current int
	fmt.Sscanf(r.URL.Query().Get("currentIndex"), "%d", &current)
	next := current + 1
	if next >= len(m.anagrams) {
		writeDetail(w, http.StatusNotFound, "no more anagrams")
		return
	}
	round := m.anagrams[next]
	writeJSON(w, NextRound{Word: round.word, Solutions: round.solutions, CurrentIndex: next})
}

func (m *Mock) handleEvent(w http.ResponseWriter, r *http.Request) {
	var ev GameEvent
	if err := json.NewDecoder(r.Body).Decode(&ev); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, "malformed event")
		return
	}
	m.mu.Lock()
	m.events = append(m.events, ev)
	m.mu.Unlock()
	writeJSON(w, map[string]string{"status": "ok"})
}

func (m *Mock) handleWordSubmission(w http.ResponseWriter, r *http.Request) {
	var sub WordSubmission
	if err := json.NewDecoder(r.Body).Decode(&sub); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, "malformed submission")
		return
	}
	m.mu.Lock()
	m.submissions = append(m.submissions, sub)
	m.mu.Unlock()
	writeJSON(w, map[string]string{"status": "ok"})
}

func (m *Mock) handleMeanings(w http.ResponseWriter, r *http.Request) {
	var sub MeaningSubmission
	if err := json.NewDecoder(r.Body).Decode(&sub); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, "malformed meanings")
		return
	}
	m.mu.Lock()
	m.meanings = append(m.meanings, sub)
	m.mu.Unlock()
	writeJSON(w, map[string]string{"status": "ok"})
}

func (m *Mock) handleResults(w http.ResponseWriter, r *http.Request) {
	if !m.knownSession(r.URL.Query().Get("sessionId")) {
		writeDetail(w, http.StatusNotFound, "session not found")
		return
	}
	var results GameResults
	m.mu.Lock()
	for _, sub := range m.submissions {
		for _, word := range sub.SubmittedWords {
			if word.IsValid {
				results.ValidWords = append(results.ValidWords, word)
				results.TotalReward += word.Reward
			} else {
				results.InvalidWords = append(results.InvalidWords, word)
			}
		}
	}
	m.mu.Unlock()
	writeJSON(w, results)
}

func (m *Mock) handleAccept(w http.ResponseWriter, r *http.Request) {
	var body map[string]any
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, "malformed body")
		return
	}
	writeJSON(w, map[string]string{"status": "ok", "receivedAt": time.Now().UTC().Format(time.RFC3339)})
}

func (m *Mock) knownSession(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.sessions[id]
	return ok
}

// Events returns a copy of everything posted to the events endpoint.
func (m *Mock) Events() []GameEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]GameEvent(nil), m.events...)
}

func (m *Mock) Submissions() []WordSubmission {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]WordSubmission(nil), m.submissions...)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func writeDetail(w http.ResponseWriter, code int, detail string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]string{"detail": detail})
}
