// Package study drives a participant session through its phases: consent,
// ID entry, practice round, timed anagram rounds, survey, meaning check,
// debrief, and thank-you. It owns all session state and treats the view as
// a dumb surface.
package study

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"os/exec"
	"runtime"
	"sort"
	"strings"
	"sync"
	"time"

	"anagramstudy/internal/api"
	"anagramstudy/internal/game"
	"anagramstudy/internal/telemetry"
	"anagramstudy/internal/timer"
	"anagramstudy/internal/track"
	"anagramstudy/internal/ui"

	"github.com/google/uuid"
)

// Display-only cap on the practice-round reward. Practice play is not paid
// out; the cap keeps the number from anchoring expectations.
const tutorialRewardCap = 40

// Minimum seconds the anti-cheating message must stay on screen.
const messageReadSeconds = 5

const landingMarkdown = `# Welcome

You are about to take part in a short word game study.

You will see a **scrambled word** and build as many real English words from
its letters as you can. Longer words earn bigger rewards, paid on top of your
base compensation.

The session has a short practice round, the main game, a brief survey, and a
few follow-up questions. It takes about 15 minutes in total.

By continuing you confirm that you consent to take part and that you will
work on the puzzles **on your own**, without dictionaries, solvers, or help
from anyone else.`

type App struct {
	cfg Config

	logger  *telemetry.JSONLogger
	client  *api.Client
	view    ui.View
	monitor *track.Monitor
	clock   *timer.Countdown
	msgWait *timer.Countdown

	runID        string
	mockShutdown func()

	mu         sync.Mutex
	phase      Phase
	sessionID  string
	prolificID string
	startTime  time.Time
	cols, rows int

	studyCfg  api.StudyConfig
	rewards   game.RewardTable
	minLength int

	tutorialInit       *api.TutorialInit
	tutorialSolutions  map[int][]string
	tutorialStage      ui.TutorialStage
	tutorialCanSubmit  bool
	tutorialSubmitted  bool
	tutorialValidCount int

	message        string
	msgRemaining   int
	gameStage      ui.GameStage
	round          *game.Round
	roundCount     int
	roundStarted   time.Time
	roundSubmitted bool
	canSubmitRound bool

	allEntries  []game.Entry
	totalReward int

	meaningWords   []string
	meaningAnswers []api.WordMeaning
	meaningIdx     int
	meaningStart   time.Time

	results    api.GameResults
	haveResult bool

	// The action behind the generic retry key, set whenever a recoverable
	// failure leaves the participant stuck.
	retry func()

	rng *rand.Rand
}

func New(cfg Config) (*App, error) {
	runID := uuid.NewString()
	logger, err := telemetry.NewJSONLogger(cfg.LogPath, runID)
	if err != nil {
		return nil, fmt.Errorf("open log: %w", err)
	}

	baseURL := cfg.BackendURL
	var mockShutdown func()
	if cfg.Mock {
		url, shutdown, err := api.NewMock().Serve()
		if err != nil {
			_ = logger.Close()
			return nil, err
		}
		baseURL = url
		mockShutdown = shutdown
	}

	view := ui.New(ui.Options{
		ASCIIOnly:    cfg.ASCIIOnly,
		Debug:        cfg.Debug,
		StyleVariant: cfg.UI.StyleVariant,
		MotionLevel:  cfg.UI.MotionLevel,
	})

	a := newApp(cfg, view, logger)
	a.runID = runID
	a.client = api.NewClient(baseURL)
	a.mockShutdown = mockShutdown
	return a, nil
}

// newApp wires the pieces that do not touch the outside world, so tests can
// supply their own view and backend.
func newApp(cfg Config, view ui.View, logger *telemetry.JSONLogger) *App {
	a := &App{
		cfg:     cfg,
		logger:  logger,
		view:    view,
		monitor: track.NewMonitor(),
		clock:   timer.NewCountdown(),
		msgWait: timer.NewCountdown(),
		phase:   PhaseLanding,
		cols:    120,
		rows:    30,
		rng:     rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	view.SetController(a)
	return a
}

func (a *App) Run(ctx context.Context) error {
	a.logger.Info("app.start", map[string]any{"mock": a.cfg.Mock, "backend": a.cfg.BackendURL})
	a.view.SetLanding(landingMarkdown)
	a.view.SetScreen(ui.ScreenLanding)
	return a.view.Run()
}

func (a *App) Close() {
	a.clock.Stop()
	a.msgWait.Stop()
	a.monitor.Disable()
	if a.mockShutdown != nil {
		a.mockShutdown()
	}
	_ = a.logger.Close()
}

func (a *App) inPhase(p Phase) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.phase == p
}

// --- landing and ID entry ---

func (a *App) OnBeginStudy() {
	a.mu.Lock()
	if a.phase != PhaseLanding {
		a.mu.Unlock()
		return
	}
	a.phase = PhaseIDEntry
	a.mu.Unlock()

	a.logger.Info("phase.enter", map[string]any{"phase": PhaseIDEntry.String()})
	a.view.SetScreen(ui.ScreenIDEntry)
}

func (a *App) OnSubmitParticipantID(id string) {
	if !a.inPhase(PhaseIDEntry) {
		return
	}
	id = strings.TrimSpace(id)
	if id == "" {
		a.view.SetIDEntryError("Please enter your Prolific ID.")
		return
	}

	a.mu.Lock()
	cols, rows := a.cols, a.rows
	a.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	resp, err := a.client.InitializeSession(ctx, api.InitializeSessionRequest{
		ProlificID: id,
		Metadata: api.SessionMetadata{
			Platform:     runtime.GOOS,
			Terminal:     os.Getenv("TERM"),
			ScreenWidth:  cols,
			ScreenHeight: rows,
			ClientRunID:  a.runID,
		},
	})
	if err != nil {
		a.logger.Error("session.init_failed", map[string]any{"error": err.Error()})
		a.view.SetIDEntryError("Could not reach the study server. Please try again.")
		return
	}
	cfg, err := a.client.StudyConfig(ctx)
	if err != nil {
		a.logger.Error("session.config_failed", map[string]any{"error": err.Error()})
		a.view.SetIDEntryError("Could not load the study configuration. Please try again.")
		return
	}
	rewards, err := game.ParseRewardTable(cfg.Rewards)
	if err != nil {
		a.logger.Error("session.config_invalid", map[string]any{"error": err.Error()})
		a.view.SetIDEntryError("The study configuration is invalid. Please try again later.")
		return
	}

	a.mu.Lock()
	if a.phase != PhaseIDEntry {
		a.mu.Unlock()
		return
	}
	a.sessionID = resp.SessionID
	a.prolificID = id
	a.studyCfg = cfg
	a.rewards = rewards
	a.minLength = minRewardedLength(rewards)
	a.startTime = time.Now()
	a.phase = PhaseTutorial
	a.tutorialStage = ui.TutorialOverview
	a.mu.Unlock()

	a.logger.Info("session.initialized", map[string]any{"session": resp.SessionID})
	a.view.SetScreen(ui.ScreenTutorial)
	a.loadTutorial()
}

// minRewardedLength derives the minimum word length from the smallest
// rewarded length, matching how the backend's table is interpreted.
func minRewardedLength(rewards game.RewardTable) int {
	min := 0
	for length := range rewards {
		if min == 0 || length < min {
			min = length
		}
	}
	if min == 0 {
		min = 5
	}
	return min
}

// --- tutorial ---

func (a *App) loadTutorial() {
	a.view.SetTutorial(ui.TutorialState{Stage: ui.TutorialOverview, Loading: true})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	a.mu.Lock()
	sessionID := a.sessionID
	a.mu.Unlock()

	init, err := a.client.TutorialInit(ctx, sessionID)
	if err != nil {
		a.logger.Error("tutorial.init_failed", map[string]any{"error": err.Error()})
		a.view.SetTutorial(ui.TutorialState{
			Stage: ui.TutorialOverview,
			Error: "Could not load the practice round.",
		})
		return
	}
	solutions, err := api.ConvertSolutions(init.Solutions)
	if err != nil {
		a.logger.Error("tutorial.init_invalid", map[string]any{"error": err.Error()})
		a.view.SetTutorial(ui.TutorialState{
			Stage: ui.TutorialOverview,
			Error: "The practice round data is invalid.",
		})
		return
	}

	a.mu.Lock()
	a.tutorialInit = &init
	a.tutorialSolutions = solutions
	if init.MinWordLength > 0 {
		a.minLength = init.MinWordLength
	}
	minLength := a.minLength
	a.mu.Unlock()

	a.view.SetTutorial(ui.TutorialState{
		Stage:     ui.TutorialOverview,
		Word:      init.Word,
		TimeLimit: init.TimeLimit,
		MinLength: minLength,
	})
}

func (a *App) OnTutorialStart() {
	a.mu.Lock()
	if a.phase != PhaseTutorial || a.tutorialStage != ui.TutorialOverview {
		a.mu.Unlock()
		return
	}
	init := a.tutorialInit
	a.mu.Unlock()

	if init == nil {
		// Overview showed a load error; Enter retries the fetch.
		a.loadTutorial()
		return
	}

	a.mu.Lock()
	a.round = game.NewRound(0, init.Word, a.minLength, a.rewards, a.tutorialSolutions, a.rng)
	a.tutorialStage = ui.TutorialPlay
	a.tutorialCanSubmit = false
	a.tutorialSubmitted = false
	a.roundStarted = time.Now()
	minLength := a.minLength
	limit := init.TimeLimit
	pool, solution := a.round.Workspace.Pool(), a.round.Workspace.Solution()
	a.mu.Unlock()

	a.logger.Info("tutorial.start", map[string]any{"limit": limit})
	a.enableTracking()
	a.view.SetTutorial(ui.TutorialState{
		Stage:     ui.TutorialPlay,
		Word:      init.Word,
		TimeLimit: limit,
		MinLength: minLength,
	})
	a.view.SetWorkspace(pool, solution)
	a.view.SetLedger(nil, 0)
	a.view.SetTimer(limit)

	a.clock.Start(limit, func(remaining int) {
		a.view.SetTimer(remaining)
		a.refreshTutorialGate(limit, remaining)
	}, func() {
		a.submitTutorial(true)
	})
}

// refreshTutorialGate enables the tutorial submit once two thirds of the
// round has elapsed and at least one word validated.
func (a *App) refreshTutorialGate(limit, remaining int) {
	a.mu.Lock()
	if a.phase != PhaseTutorial || a.tutorialStage != ui.TutorialPlay || a.round == nil {
		a.mu.Unlock()
		return
	}
	elapsed := limit - remaining
	can := elapsed*3 >= limit*2 && a.round.Ledger.ValidCount() > 0
	changed := can != a.tutorialCanSubmit
	a.tutorialCanSubmit = can
	init := a.tutorialInit
	minLength := a.minLength
	a.mu.Unlock()

	if changed && init != nil {
		a.view.SetTutorial(ui.TutorialState{
			Stage:     ui.TutorialPlay,
			Word:      init.Word,
			TimeLimit: init.TimeLimit,
			MinLength: minLength,
			CanSubmit: can,
		})
	}
}

func (a *App) submitTutorial(forced bool) {
	a.mu.Lock()
	if a.phase != PhaseTutorial || a.tutorialStage != ui.TutorialPlay || a.tutorialSubmitted {
		a.mu.Unlock()
		return
	}
	if !forced && !a.tutorialCanSubmit {
		a.mu.Unlock()
		a.view.FlashStatus("Keep practicing a little longer")
		return
	}
	a.tutorialSubmitted = true
	a.tutorialStage = ui.TutorialResultsStage
	entries := a.round.Ledger.Entries()
	total := a.round.Ledger.TotalReward()
	a.tutorialValidCount = a.round.Ledger.ValidCount()
	a.round = nil
	a.mu.Unlock()

	a.clock.Stop()
	a.monitor.Disable()

	var valid, invalid []ui.LedgerRow
	for _, e := range entries {
		row := ui.LedgerRow{Word: e.Word, Reward: e.Reward, Valid: e.IsValid}
		if e.IsValid {
			valid = append(valid, row)
		} else {
			invalid = append(invalid, row)
		}
	}
	shown := total
	if shown > tutorialRewardCap {
		shown = tutorialRewardCap
	}

	a.logger.Info("tutorial.finished", map[string]any{"forced": forced, "valid": len(valid), "reward": total})
	a.view.SetTutorial(ui.TutorialState{Stage: ui.TutorialResultsStage})
	a.view.SetTutorialResults(ui.TutorialResults{
		Valid:        valid,
		Invalid:      invalid,
		TotalReward:  total,
		ShownReward:  shown,
		RewardCapped: shown < total,
	})
}

func (a *App) OnTutorialFinish() {
	a.mu.Lock()
	if a.phase != PhaseTutorial || a.tutorialStage != ui.TutorialResultsStage {
		a.mu.Unlock()
		return
	}
	sessionID, prolificID := a.sessionID, a.prolificID
	validated := a.tutorialValidCount
	a.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	err := a.client.TutorialComplete(ctx, api.TutorialComplete{
		SessionID:      sessionID,
		ProlificID:     prolificID,
		CompletedAt:    time.Now().UTC(),
		ValidatedWords: validated,
	})
	if err != nil {
		a.logger.Error("tutorial.complete_failed", map[string]any{"error": err.Error()})
		a.view.SetNotification("Could not record your practice round. Press Enter to try again.")
		return
	}
	a.enterGame()
}

// --- main game ---

func (a *App) enterGame() {
	a.mu.Lock()
	if a.phase != PhaseTutorial && a.phase != PhaseGame {
		a.mu.Unlock()
		return
	}
	a.phase = PhaseGame
	a.gameStage = ui.GameLoading
	a.mu.Unlock()

	a.logger.Info("phase.enter", map[string]any{"phase": PhaseGame.String()})
	a.view.SetScreen(ui.ScreenGame)
	a.view.SetGame(ui.GameState{Stage: ui.GameLoading})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	a.mu.Lock()
	sessionID := a.sessionID
	a.mu.Unlock()

	init, err := a.client.GameInit(ctx, sessionID)
	if err != nil {
		a.logger.Error("game.init_failed", map[string]any{"error": err.Error()})
		a.setRetry(a.enterGame)
		a.view.SetGame(ui.GameState{Stage: ui.GameLoading, Error: "Could not load the game."})
		return
	}
	solutions, err := api.ConvertSolutions(init.Solutions)
	if err != nil {
		a.logger.Error("game.init_invalid", map[string]any{"error": err.Error()})
		a.setRetry(a.enterGame)
		a.view.SetGame(ui.GameState{Stage: ui.GameLoading, Error: "The game data is invalid."})
		return
	}

	a.mu.Lock()
	a.message = init.CurrentMessage
	if init.MinWordLength > 0 {
		a.minLength = init.MinWordLength
	}
	if init.TimeSettings.GameSeconds > 0 {
		a.studyCfg.TimeSettings.GameSeconds = init.TimeSettings.GameSeconds
	}
	a.roundCount = a.studyCfg.GameAnagrams
	a.round = game.NewRound(0, init.Word, a.minLength, a.rewards, solutions, a.rng)
	message := a.message
	a.mu.Unlock()

	a.postEvent("game_init", map[string]any{"word_length": len(init.Word)})

	if message != "" {
		a.showMessage(message)
		return
	}
	a.startRound()
}

func (a *App) showMessage(message string) {
	a.mu.Lock()
	a.gameStage = ui.GameMessage
	a.msgRemaining = messageReadSeconds
	a.mu.Unlock()

	a.postEvent("anti_cheating_message_shown", nil)
	a.view.SetGame(ui.GameState{Stage: ui.GameMessage, Message: message, MessageSec: messageReadSeconds})

	a.msgWait.Start(messageReadSeconds, func(remaining int) {
		a.mu.Lock()
		if a.phase != PhaseGame || a.gameStage != ui.GameMessage {
			a.mu.Unlock()
			return
		}
		a.msgRemaining = remaining
		msg := a.message
		a.mu.Unlock()
		a.view.SetGame(ui.GameState{Stage: ui.GameMessage, Message: msg, MessageSec: remaining})
		a.view.RequestDraw()
	}, nil)
}

func (a *App) OnAcknowledgeMessage() {
	a.mu.Lock()
	if a.phase != PhaseGame || a.gameStage != ui.GameMessage || a.msgRemaining > 0 {
		a.mu.Unlock()
		return
	}
	a.mu.Unlock()
	a.msgWait.Stop()
	a.startRound()
}

func (a *App) startRound() {
	a.mu.Lock()
	if a.phase != PhaseGame || a.round == nil {
		a.mu.Unlock()
		return
	}
	a.gameStage = ui.GamePlay
	a.roundSubmitted = false
	a.canSubmitRound = false
	a.roundStarted = time.Now()
	index := a.round.Index
	pool, solution := a.round.Workspace.Pool(), a.round.Workspace.Solution()
	limit := a.studyCfg.TimeSettings.GameSeconds
	state := a.gameStateLocked("")
	a.mu.Unlock()

	a.logger.Info("round.start", map[string]any{"index": index, "limit": limit})
	a.enableTracking()
	a.view.SetGame(state)
	a.view.SetWorkspace(pool, solution)
	a.view.SetLedger(nil, 0)
	a.view.SetTimer(limit)

	a.clock.Start(limit, a.view.SetTimer, func() {
		a.submitRound(true)
	})
}

// gameStateLocked builds the play-stage view state. Caller holds a.mu.
func (a *App) gameStateLocked(errMsg string) ui.GameState {
	state := ui.GameState{
		Stage:      a.gameStage,
		RoundCount: a.roundCount,
		MinLength:  a.minLength,
		CanSubmit:  a.canSubmitRound,
		Error:      errMsg,
	}
	if a.round != nil {
		state.Anagram = a.round.Word
		state.RoundIndex = a.round.Index
	}
	return state
}

// --- shared play-surface handlers ---

// currentRound returns the live round if the participant is in a play stage.
func (a *App) currentRound() *game.Round {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.currentRoundLocked()
}

func (a *App) currentRoundLocked() *game.Round {
	switch a.phase {
	case PhaseTutorial:
		if a.tutorialStage == ui.TutorialPlay {
			return a.round
		}
	case PhaseGame:
		if a.gameStage == ui.GamePlay {
			return a.round
		}
	}
	return nil
}

// Input handlers mutate the round under a.mu: the view dispatches each
// action on its own goroutine, so two key events or an event racing the
// timer expiry would otherwise touch the workspace concurrently.

func (a *App) OnMoveLetter(srcArea, srcIndex, dstArea, dstIndex int) {
	a.mu.Lock()
	round := a.currentRoundLocked()
	if round == nil {
		a.mu.Unlock()
		return
	}
	round.Workspace.Move(game.Area(srcArea), srcIndex, game.Area(dstArea), dstIndex)
	pool, solution := round.Workspace.Pool(), round.Workspace.Solution()
	a.mu.Unlock()

	a.view.SetWorkspace(pool, solution)
}

func (a *App) OnValidateWord() {
	a.mu.Lock()
	round := a.currentRoundLocked()
	if round == nil {
		a.mu.Unlock()
		return
	}
	minLength := a.minLength
	candidate := round.Workspace.SolutionWord()
	result, entry := round.Ledger.Validate(candidate)
	if result == game.ResultValid || result == game.ResultNotAWord {
		// Recorded either way; letters go back to the pool reshuffled.
		round.Workspace.Refill(true)
	}
	pool, solution := round.Workspace.Pool(), round.Workspace.Solution()
	rows, total := ledgerRows(round)
	a.mu.Unlock()

	switch result {
	case game.ResultTooShort:
		a.view.FlashStatus(fmt.Sprintf("Words must be at least %d letters", minLength))
		return
	case game.ResultDuplicate:
		a.view.FlashStatus("You already tried that word")
		return
	case game.ResultValid:
		a.view.FlashStatus(fmt.Sprintf("%s accepted, +%dp", entry.Word, entry.Reward))
	case game.ResultNotAWord:
		a.view.FlashStatus(fmt.Sprintf("%s is not in the word list", entry.Word))
	}

	a.view.SetWorkspace(pool, solution)
	a.view.SetLedger(rows, total)
	a.postEvent("word_validation", map[string]any{
		"word":    entry.Word,
		"isValid": entry.IsValid,
		"reward":  entry.Reward,
	})
	a.refreshSubmitGate()
}

func (a *App) OnRemoveWord(index int) {
	a.mu.Lock()
	round := a.currentRoundLocked()
	if round == nil {
		a.mu.Unlock()
		return
	}
	removed, ok := round.Ledger.Remove(index)
	if !ok {
		a.mu.Unlock()
		return
	}
	rows, total := ledgerRows(round)
	a.mu.Unlock()

	a.view.SetLedger(rows, total)
	a.postEvent("word_removal", map[string]any{"word": removed.Word, "reward": removed.Reward})
	a.refreshSubmitGate()
}

// ledgerRows snapshots the round's ledger for the view. Caller holds a.mu.
func ledgerRows(round *game.Round) ([]ui.LedgerRow, int) {
	entries := round.Ledger.Entries()
	rows := make([]ui.LedgerRow, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, ui.LedgerRow{Word: e.Word, Reward: e.Reward, Valid: e.IsValid})
	}
	return rows, round.Ledger.TotalReward()
}

func (a *App) refreshSubmitGate() {
	a.mu.Lock()
	phase := a.phase
	a.mu.Unlock()

	switch phase {
	case PhaseTutorial:
		a.mu.Lock()
		init := a.tutorialInit
		a.mu.Unlock()
		if init != nil {
			a.refreshTutorialGate(init.TimeLimit, a.clock.Remaining())
		}
	case PhaseGame:
		a.mu.Lock()
		round := a.currentRoundLocked()
		if round == nil {
			a.mu.Unlock()
			return
		}
		can := round.Ledger.ValidCount() > 0
		changed := can != a.canSubmitRound
		a.canSubmitRound = can
		state := a.gameStateLocked("")
		a.mu.Unlock()
		if changed {
			a.view.SetGame(state)
		}
	}
}

func (a *App) OnSubmitRound() {
	a.mu.Lock()
	phase := a.phase
	a.mu.Unlock()
	switch phase {
	case PhaseTutorial:
		a.submitTutorial(false)
	case PhaseGame:
		a.submitRound(false)
	}
}

func (a *App) submitRound(forced bool) {
	a.mu.Lock()
	if a.phase != PhaseGame || a.gameStage != ui.GamePlay || a.round == nil || a.roundSubmitted {
		a.mu.Unlock()
		return
	}
	if !forced && !a.canSubmitRound {
		a.mu.Unlock()
		a.view.FlashStatus("Validate at least one word before submitting")
		return
	}
	a.roundSubmitted = true
	a.gameStage = ui.GameSubmitting
	round := a.round
	entries := round.Ledger.Entries()
	ledgerTotal := round.Ledger.TotalReward()
	started := a.roundStarted
	sessionID, prolificID := a.sessionID, a.prolificID
	a.mu.Unlock()

	remaining := a.clock.Remaining()
	a.clock.Stop()
	a.monitor.Disable()
	a.view.SetGame(ui.GameState{Stage: ui.GameSubmitting, RoundIndex: round.Index, RoundCount: a.roundCountSnapshot()})

	now := time.Now().UTC()
	words := make([]api.SubmittedWord, 0, len(entries))
	for _, e := range entries {
		words = append(words, api.SubmittedWord{
			Word:        e.Word,
			Length:      e.Length,
			Reward:      e.Reward,
			IsValid:     e.IsValid,
			ValidatedAt: e.ValidatedAt.UTC(),
			SubmittedAt: now,
		})
	}
	sub := api.WordSubmission{
		SessionID:      sessionID,
		ProlificID:     prolificID,
		Phase:          PhaseGame.String(),
		AnagramShown:   round.Word,
		SubmittedWords: words,
		TotalReward:    ledgerTotal,
		TimeSpent:      int(time.Since(started).Seconds()),
		SubmittedAt:    now,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()
	if err := a.client.SubmitWords(ctx, sub); err != nil {
		a.logger.Error("round.submit_failed", map[string]any{"index": round.Index, "forced": forced, "error": err.Error()})
		if forced {
			// Out of time with nothing sent: hold a visible failure state
			// and wait for a manual retry.
			a.mu.Lock()
			a.gameStage = ui.GameTimeUp
			a.mu.Unlock()
			a.setRetry(func() { a.resendSubmission(sub) })
			a.view.SetGame(ui.GameState{Stage: ui.GameTimeUp, RoundIndex: round.Index, Error: "The study server did not accept the submission."})
			return
		}
		a.mu.Lock()
		a.roundSubmitted = false
		a.gameStage = ui.GamePlay
		state := a.gameStateLocked("")
		a.mu.Unlock()
		a.view.SetNotification("Submission failed. Please try again.")
		a.view.SetGame(state)
		a.enableTracking()
		a.clock.Start(remaining, a.view.SetTimer, func() { a.submitRound(true) })
		return
	}

	a.finishRound(round, entries)
}

// resendSubmission retries a submission that failed after the timer forced
// it, then advances as a normal round completion.
func (a *App) resendSubmission(sub api.WordSubmission) {
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()
	if err := a.client.SubmitWords(ctx, sub); err != nil {
		a.logger.Error("round.resubmit_failed", map[string]any{"error": err.Error()})
		a.view.SetGame(ui.GameState{Stage: ui.GameTimeUp, Error: "Still unable to reach the study server."})
		return
	}
	a.mu.Lock()
	round := a.round
	var entries []game.Entry
	if round != nil {
		entries = round.Ledger.Entries()
	}
	a.mu.Unlock()
	a.finishRound(round, entries)
}

func (a *App) finishRound(round *game.Round, entries []game.Entry) {
	if round == nil {
		return
	}
	a.mu.Lock()
	a.allEntries = append(a.allEntries, entries...)
	for _, e := range entries {
		a.totalReward += e.Reward
	}
	sessionID := a.sessionID
	index := round.Index
	roundCount := a.roundCount
	a.mu.Unlock()

	a.logger.Info("round.submitted", map[string]any{"index": index, "words": len(entries)})

	// The configured anagram count decides the last round; the backend is
	// never asked for a round past it.
	if roundCount > 0 && index+1 >= roundCount {
		a.finishGame()
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()
	next, err := a.client.NextRound(ctx, sessionID, index)
	if err != nil {
		var apiErr *api.APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode == 404 {
			a.finishGame()
			return
		}
		a.logger.Error("round.next_failed", map[string]any{"error": err.Error()})
		a.setRetry(func() { a.finishRound(round, nil) })
		a.view.SetGame(ui.GameState{Stage: ui.GameLoading, Error: "Could not load the next round."})
		a.mu.Lock()
		a.gameStage = ui.GameLoading
		a.mu.Unlock()
		return
	}

	solutions, err := api.ConvertSolutions(next.Solutions)
	if err != nil {
		a.logger.Error("round.next_invalid", map[string]any{"error": err.Error()})
		a.setRetry(func() { a.finishRound(round, nil) })
		a.view.SetGame(ui.GameState{Stage: ui.GameLoading, Error: "The next round data is invalid."})
		return
	}

	a.mu.Lock()
	a.round = game.NewRound(next.CurrentIndex, next.Word, a.minLength, a.rewards, solutions, a.rng)
	a.mu.Unlock()
	a.startRound()
}

// finishGame closes the last round with a modal acknowledgment, arming the
// blur suppression first so the dialog itself is not counted as a tab change.
func (a *App) finishGame() {
	a.mu.Lock()
	a.round = nil
	a.mu.Unlock()

	a.postEvent("game_complete", map[string]any{"totalReward": a.totalRewardSnapshot()})
	a.monitor.SuppressNextBlur()
	a.view.SetFinalRoundDialog(true)
}

func (a *App) OnAcknowledgeFinalRound() {
	a.mu.Lock()
	if a.phase != PhaseGame {
		a.mu.Unlock()
		return
	}
	a.phase = PhaseSurvey
	a.mu.Unlock()

	a.view.SetFinalRoundDialog(false)
	a.logger.Info("phase.enter", map[string]any{"phase": PhaseSurvey.String()})
	a.view.SetSurvey(ui.SurveyState{URL: a.cfg.SurveyURL})
	a.view.SetScreen(ui.ScreenSurvey)
}

func (a *App) roundCountSnapshot() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.roundCount
}

func (a *App) totalRewardSnapshot() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.totalReward
}

// --- survey ---

func (a *App) OnOpenSurvey() {
	if !a.inPhase(PhaseSurvey) {
		return
	}
	a.postEvent("survey_opened", nil)
	openBrowser(a.cfg.SurveyURL)
	a.view.SetSurvey(ui.SurveyState{URL: a.cfg.SurveyURL, Opened: true})
}

func openBrowser(url string) {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}
	_ = cmd.Start()
}

func (a *App) OnSubmitSurveyCode(code string) {
	if !a.inPhase(PhaseSurvey) {
		return
	}
	if !strings.EqualFold(strings.TrimSpace(code), strings.TrimSpace(a.cfg.SurveyCode)) {
		a.view.SetSurvey(ui.SurveyState{URL: a.cfg.SurveyURL, Opened: true, Error: "That completion code is not correct."})
		return
	}
	a.enterMeaning()
}

// --- word meaning check ---

func (a *App) enterMeaning() {
	a.mu.Lock()
	if a.phase != PhaseSurvey {
		a.mu.Unlock()
		return
	}
	var validEntries []game.Entry
	for _, e := range a.allEntries {
		if e.IsValid {
			validEntries = append(validEntries, e)
		}
	}
	words := game.UniqueWords(validEntries)
	if len(words) == 0 {
		a.phase = PhaseMeaning
		a.mu.Unlock()
		a.enterDebrief()
		return
	}
	a.phase = PhaseMeaning
	a.meaningWords = words
	a.meaningAnswers = make([]api.WordMeaning, len(words))
	a.meaningIdx = 0
	a.meaningStart = time.Now()
	a.mu.Unlock()

	a.logger.Info("phase.enter", map[string]any{"phase": PhaseMeaning.String(), "words": len(words)})
	a.postEvent("meaning_check_start", map[string]any{"wordCount": len(words)})
	a.enableTracking()
	a.view.SetScreen(ui.ScreenMeaning)
	a.view.SetMeaning(ui.MeaningState{Word: words[0], Index: 0, Total: len(words)})
}

func (a *App) OnSubmitMeaning(word, meaning string) {
	a.mu.Lock()
	if a.phase != PhaseMeaning || a.meaningIdx >= len(a.meaningWords) || a.meaningWords[a.meaningIdx] != word {
		a.mu.Unlock()
		return
	}
	meaning = strings.TrimSpace(meaning)
	if meaning == "" {
		idx, total := a.meaningIdx, len(a.meaningWords)
		a.mu.Unlock()
		a.view.SetMeaning(ui.MeaningState{Word: word, Index: idx, Total: total, Error: "Please describe what this word means."})
		return
	}
	a.meaningAnswers[a.meaningIdx] = api.WordMeaning{Word: word, ProvidedMeaning: meaning}
	a.meaningIdx++
	idx, total := a.meaningIdx, len(a.meaningWords)
	var nextWord string
	if idx < total {
		nextWord = a.meaningWords[idx]
	}
	a.mu.Unlock()

	a.postEvent("meaning_submission", map[string]any{"word": word})
	if nextWord != "" {
		a.view.SetMeaning(ui.MeaningState{Word: nextWord, Index: idx, Total: total})
		return
	}
	a.submitMeanings()
}

func (a *App) submitMeanings() {
	a.mu.Lock()
	sessionID, prolificID := a.sessionID, a.prolificID
	answers := append([]api.WordMeaning(nil), a.meaningAnswers...)
	started := a.meaningStart
	total := len(a.meaningWords)
	a.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	err := a.client.SubmitMeanings(ctx, api.MeaningSubmission{
		SessionID:      sessionID,
		ProlificID:     prolificID,
		Phase:          PhaseMeaning.String(),
		WordMeanings:   answers,
		CompletedAt:    time.Now().UTC(),
		TotalTimeSpent: int(time.Since(started).Seconds()),
	})
	if err != nil {
		a.logger.Error("meaning.submit_failed", map[string]any{"error": err.Error()})
		// Step back onto the last word so Ctrl+S retries the batch.
		a.mu.Lock()
		a.meaningIdx = total - 1
		lastWord := a.meaningWords[a.meaningIdx]
		a.mu.Unlock()
		a.view.SetNotification("Could not submit your answers. Please try again.")
		a.view.SetMeaning(ui.MeaningState{Word: lastWord, Index: total - 1, Total: total, Error: "Submission failed. Save again to retry."})
		return
	}
	a.postEvent("meaning_check_complete", nil)
	a.enterDebrief()
}

// --- debrief ---

func (a *App) enterDebrief() {
	a.mu.Lock()
	if a.phase != PhaseMeaning {
		a.mu.Unlock()
		return
	}
	a.phase = PhaseDebrief
	a.mu.Unlock()

	a.monitor.Disable()
	a.logger.Info("phase.enter", map[string]any{"phase": PhaseDebrief.String()})
	a.view.SetScreen(ui.ScreenDebrief)
	a.loadResults()
}

func (a *App) loadResults() {
	a.view.SetDebrief(ui.DebriefState{Stage: ui.DebriefResults, Loading: true})

	a.mu.Lock()
	sessionID, prolificID := a.sessionID, a.prolificID
	compensation := a.studyCfg.Compensation
	a.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	results, err := a.client.GameResults(ctx, sessionID, prolificID)
	if err != nil {
		a.logger.Error("debrief.results_failed", map[string]any{"error": err.Error()})
		a.setRetry(a.loadResults)
		a.view.SetDebrief(ui.DebriefState{Stage: ui.DebriefResults, Error: "Could not fetch your results."})
		return
	}

	a.mu.Lock()
	a.results = results
	a.haveResult = true
	a.mu.Unlock()

	rows := make([]ui.LedgerRow, 0, len(results.ValidWords))
	for _, w := range sortedByLength(results.ValidWords) {
		rows = append(rows, ui.LedgerRow{Word: w.Word, Reward: w.Reward, Valid: true})
	}
	a.view.SetDebrief(ui.DebriefState{
		Stage:        ui.DebriefResults,
		ValidWords:   rows,
		InvalidCount: len(results.InvalidWords),
		TotalReward:  results.TotalReward,
		Compensation: compensation,
	})
}

// sortedByLength orders words longest first, then alphabetically.
func sortedByLength(words []api.SubmittedWord) []api.SubmittedWord {
	out := append([]api.SubmittedWord(nil), words...)
	sort.Slice(out, func(i, j int) bool {
		if out[i].Length != out[j].Length {
			return out[i].Length > out[j].Length
		}
		return out[i].Word < out[j].Word
	})
	return out
}

func (a *App) OnContinueDebrief() {
	a.mu.Lock()
	if a.phase != PhaseDebrief {
		a.mu.Unlock()
		return
	}
	var words []string
	if a.haveResult {
		for _, w := range sortedByLength(a.results.ValidWords) {
			words = append(words, w.Word)
		}
	} else {
		var validEntries []game.Entry
		for _, e := range a.allEntries {
			if e.IsValid {
				validEntries = append(validEntries, e)
			}
		}
		words = game.UniqueWords(validEntries)
	}
	a.mu.Unlock()

	a.view.SetDebrief(ui.DebriefState{Stage: ui.DebriefDisclosure, Words: dedupe(words)})
}

func dedupe(words []string) []string {
	seen := make(map[string]struct{}, len(words))
	var out []string
	for _, w := range words {
		if _, ok := seen[w]; ok {
			continue
		}
		seen[w] = struct{}{}
		out = append(out, w)
	}
	return out
}

func (a *App) OnSubmitDisclosure(words []string, none bool) {
	a.mu.Lock()
	if a.phase != PhaseDebrief {
		a.mu.Unlock()
		return
	}
	if len(words) == 0 && !none {
		a.mu.Unlock()
		return
	}
	a.phase = PhaseThankYou
	totalReward := a.totalReward
	validCount := 0
	for _, e := range a.allEntries {
		if e.IsValid {
			validCount++
		}
	}
	if a.haveResult {
		totalReward = a.results.TotalReward
		validCount = len(a.results.ValidWords)
	}
	started := a.startTime
	a.mu.Unlock()

	a.postEvent("confessed_external_help", map[string]any{"words": words, "none": none})
	a.logger.Info("phase.enter", map[string]any{"phase": PhaseThankYou.String()})
	a.view.SetThankYou(ui.ThankYouState{
		TotalReward: totalReward,
		ValidWords:  validCount,
		Duration:    time.Since(started).Round(time.Second).String(),
	})
	a.view.SetScreen(ui.ScreenThankYou)
}

// --- tracking and events ---

// enableTracking (re)arms the monitor for a timed phase. Enable tears down
// any prior run first, so consecutive phases do not stack goroutines.
func (a *App) enableTracking() {
	threshold := time.Duration(a.cfg.InactivityThresholdSeconds) * time.Second
	a.monitor.Enable(track.Callbacks{
		OnInactiveStart: func(at time.Time) {
			a.postEvent("mouse_inactive_start", map[string]any{"at": at.UTC()})
		},
		OnActive: func(at time.Time) {
			a.postEvent("mouse_active", map[string]any{"at": at.UTC()})
		},
		OnPageLeave: func(at time.Time, tabChangeCount int) {
			a.postEvent("page_leave", map[string]any{"at": at.UTC(), "tabChangeCount": tabChangeCount})
		},
		OnPageReturn: func(at time.Time) {
			a.postEvent("page_return", map[string]any{"at": at.UTC()})
		},
	}, threshold)
}

// postEvent ships a behavioral event in the background. Event logging is
// best-effort: failures are recorded locally and never surface to the
// participant.
func (a *App) postEvent(eventType string, metadata map[string]any) {
	a.mu.Lock()
	sessionID, prolificID := a.sessionID, a.prolificID
	phase := a.phase.String()
	a.mu.Unlock()
	if sessionID == "" {
		return
	}

	ev := api.GameEvent{
		SessionID:  sessionID,
		ProlificID: prolificID,
		EventType:  eventType,
		Phase:      phase,
		Timestamp:  time.Now().UTC(),
		Metadata:   metadata,
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := a.client.PostEvent(ctx, ev); err != nil {
			a.logger.Error("event.post_failed", map[string]any{"type": eventType, "error": err.Error()})
		}
	}()
}

// --- generic view plumbing ---

func (a *App) setRetry(fn func()) {
	a.mu.Lock()
	a.retry = fn
	a.mu.Unlock()
}

func (a *App) OnRetry() {
	a.mu.Lock()
	fn := a.retry
	a.retry = nil
	a.mu.Unlock()
	if fn != nil {
		fn()
	}
}

func (a *App) OnUserActivity() { a.monitor.Activity() }
func (a *App) OnPageHidden()   { a.monitor.PageHidden() }
func (a *App) OnPageVisible()  { a.monitor.PageShown() }

func (a *App) OnResize(cols, rows int) {
	a.mu.Lock()
	a.cols, a.rows = cols, rows
	a.mu.Unlock()
}

func (a *App) OnQuit() {
	a.logger.Info("app.quit", map[string]any{"phase": a.phaseSnapshot().String()})
	a.view.Stop()
}

func (a *App) phaseSnapshot() Phase {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.phase
}

var _ ui.Controller = (*App)(nil)
