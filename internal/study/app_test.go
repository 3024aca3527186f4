package study

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"anagramstudy/internal/api"
	"anagramstudy/internal/telemetry"
	"anagramstudy/internal/ui"
)

// fakeView records everything the controller pushes at it.
type fakeView struct {
	mu sync.Mutex

	screens      []ui.Screen
	idError      string
	tutorial     ui.TutorialState
	tutorialRes  ui.TutorialResults
	game         ui.GameState
	pool         []rune
	solution     []rune
	ledger       []ui.LedgerRow
	ledgerTotal  int
	timer        int
	finalDialog  bool
	survey       ui.SurveyState
	meaning      ui.MeaningState
	debrief      ui.DebriefState
	thanks       ui.ThankYouState
	notification string
	flash        string
	stopped      bool
}

func (f *fakeView) Run() error { return nil }

func (f *fakeView) Stop() { f.mu.Lock(); f.stopped = true; f.mu.Unlock() }

func (f *fakeView) SetController(ui.Controller) {}
func (f *fakeView) SetScreen(s ui.Screen) {
	f.mu.Lock()
	f.screens = append(f.screens, s)
	f.mu.Unlock()
}
func (f *fakeView) SetLanding(string) {}
func (f *fakeView) SetIDEntryError(msg string) {
	f.mu.Lock()
	f.idError = msg
	f.mu.Unlock()
}
func (f *fakeView) SetTutorial(s ui.TutorialState) {
	f.mu.Lock()
	f.tutorial = s
	f.mu.Unlock()
}
func (f *fakeView) SetTutorialResults(r ui.TutorialResults) {
	f.mu.Lock()
	f.tutorialRes = r
	f.mu.Unlock()
}
func (f *fakeView) SetGame(s ui.GameState) {
	f.mu.Lock()
	f.game = s
	f.mu.Unlock()
}
func (f *fakeView) SetWorkspace(pool, solution []rune) {
	f.mu.Lock()
	f.pool = append([]rune(nil), pool...)
	f.solution = append([]rune(nil), solution...)
	f.mu.Unlock()
}
func (f *fakeView) SetLedger(rows []ui.LedgerRow, total int) {
	f.mu.Lock()
	f.ledger = append([]ui.LedgerRow(nil), rows...)
	f.ledgerTotal = total
	f.mu.Unlock()
}
func (f *fakeView) SetTimer(s int) { f.mu.Lock(); f.timer = s; f.mu.Unlock() }
func (f *fakeView) SetFinalRoundDialog(open bool) {
	f.mu.Lock()
	f.finalDialog = open
	f.mu.Unlock()
}
func (f *fakeView) SetSurvey(s ui.SurveyState)   { f.mu.Lock(); f.survey = s; f.mu.Unlock() }
func (f *fakeView) SetMeaning(s ui.MeaningState) { f.mu.Lock(); f.meaning = s; f.mu.Unlock() }
func (f *fakeView) SetDebrief(s ui.DebriefState) { f.mu.Lock(); f.debrief = s; f.mu.Unlock() }
func (f *fakeView) SetThankYou(s ui.ThankYouState) {
	f.mu.Lock()
	f.thanks = s
	f.mu.Unlock()
}
func (f *fakeView) SetNotification(msg string) {
	f.mu.Lock()
	f.notification = msg
	f.mu.Unlock()
}
func (f *fakeView) FlashStatus(msg string) { f.mu.Lock(); f.flash = msg; f.mu.Unlock() }
func (f *fakeView) RequestDraw()           {}

func (f *fakeView) lastScreen() ui.Screen {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.screens) == 0 {
		return ui.ScreenLanding
	}
	return f.screens[len(f.screens)-1]
}

var _ ui.View = (*fakeView)(nil)

func newTestApp(t *testing.T) (*App, *fakeView, *api.Mock, func()) {
	t.Helper()
	mock := api.NewMock()
	server := httptest.NewServer(mock.Handler())

	logger, err := telemetry.NewJSONLogger("", "test")
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	fv := &fakeView{}
	cfg := DefaultConfig()
	cfg.SurveyCode = "12345"
	a := newApp(cfg, fv, logger)
	a.runID = "test-run"
	a.client = api.NewClient(server.URL)
	return a, fv, mock, func() {
		a.Close()
		server.Close()
	}
}

// spellWord moves letters from the pool into the solution row through the
// controller, the same way the view would.
func spellWord(t *testing.T, a *App, word string) {
	t.Helper()
	for _, letter := range word {
		round := a.currentRound()
		if round == nil {
			t.Fatalf("no active round while spelling %q", word)
		}
		pool := round.Workspace.Pool()
		idx := -1
		for i, r := range pool {
			if r == letter {
				idx = i
				break
			}
		}
		if idx < 0 {
			t.Fatalf("letter %q not in pool %q", string(letter), string(pool))
		}
		a.OnMoveLetter(ui.AreaPool, idx, ui.AreaSolution, len(round.Workspace.Solution()))
	}
}

func startedTutorial(t *testing.T, a *App) {
	t.Helper()
	a.OnBeginStudy()
	a.OnSubmitParticipantID("prolific-test-1")
	if !a.inPhase(PhaseTutorial) {
		t.Fatalf("expected tutorial phase, got %v", a.phaseSnapshot())
	}
	a.OnTutorialStart()
}

func TestSessionFlowEndToEnd(t *testing.T) {
	a, fv, mock, done := newTestApp(t)
	defer done()

	startedTutorial(t, a)
	if a.currentRound() == nil {
		t.Fatalf("tutorial round not started")
	}

	// Practice a valid word, then let the timer force the submission.
	spellWord(t, a, "STEAM")
	a.OnValidateWord()
	a.submitTutorial(true)

	fv.mu.Lock()
	res := fv.tutorialRes
	fv.mu.Unlock()
	if len(res.Valid) != 1 || res.Valid[0].Word != "STEAM" {
		t.Fatalf("tutorial results = %+v", res)
	}

	a.OnTutorialFinish()
	if !a.inPhase(PhaseGame) {
		t.Fatalf("expected game phase, got %v", a.phaseSnapshot())
	}

	// The anti-cheating message gates on its read delay.
	a.OnAcknowledgeMessage()
	if a.currentRound() != nil {
		t.Fatalf("message acknowledged before the read delay elapsed")
	}
	a.mu.Lock()
	a.msgRemaining = 0
	a.mu.Unlock()
	a.OnAcknowledgeMessage()

	// Three rounds against the canned anagrams.
	for _, word := range []string{"PLANE", "ANGER", "CURED"} {
		round := a.currentRound()
		if round == nil {
			t.Fatalf("no round active before spelling %q", word)
		}
		spellWord(t, a, word)
		a.OnValidateWord()
		a.OnSubmitRound()
	}

	fv.mu.Lock()
	dialog := fv.finalDialog
	fv.mu.Unlock()
	if !dialog {
		t.Fatalf("expected final-round dialog after the last anagram")
	}
	if got := len(mock.Submissions()); got != 3 {
		t.Fatalf("expected 3 word submissions, got %d", got)
	}

	a.OnAcknowledgeFinalRound()
	if !a.inPhase(PhaseSurvey) {
		t.Fatalf("expected survey phase, got %v", a.phaseSnapshot())
	}

	a.OnSubmitSurveyCode("wrong")
	if !a.inPhase(PhaseSurvey) {
		t.Fatalf("wrong code advanced the phase")
	}
	a.OnSubmitSurveyCode(" 12345 ")
	if !a.inPhase(PhaseMeaning) {
		t.Fatalf("expected meaning phase, got %v", a.phaseSnapshot())
	}

	for _, word := range []string{"PLANE", "ANGER", "CURED"} {
		a.OnSubmitMeaning(word, "a meaning for "+strings.ToLower(word))
	}
	if !a.inPhase(PhaseDebrief) {
		t.Fatalf("expected debrief phase, got %v", a.phaseSnapshot())
	}

	fv.mu.Lock()
	debrief := fv.debrief
	fv.mu.Unlock()
	if len(debrief.ValidWords) != 3 {
		t.Fatalf("debrief valid words = %+v", debrief.ValidWords)
	}

	a.OnContinueDebrief()
	a.OnSubmitDisclosure(nil, true)
	if !a.inPhase(PhaseThankYou) {
		t.Fatalf("expected thank-you phase, got %v", a.phaseSnapshot())
	}
	if fv.lastScreen() != ui.ScreenThankYou {
		t.Fatalf("last screen = %v", fv.lastScreen())
	}
	fv.mu.Lock()
	thanks := fv.thanks
	fv.mu.Unlock()
	if thanks.ValidWords != 3 {
		t.Fatalf("thank-you valid words = %d", thanks.ValidWords)
	}
}

func TestHandlersNoOpOutsidePhase(t *testing.T) {
	a, fv, mock, done := newTestApp(t)
	defer done()

	// Still on the landing screen; none of these may do anything.
	a.OnValidateWord()
	a.OnSubmitRound()
	a.OnSubmitSurveyCode("12345")
	a.OnSubmitMeaning("PLANE", "a flat surface")
	a.OnSubmitDisclosure(nil, true)
	a.OnAcknowledgeFinalRound()

	if !a.inPhase(PhaseLanding) {
		t.Fatalf("phase moved to %v without input", a.phaseSnapshot())
	}
	if got := len(mock.Submissions()); got != 0 {
		t.Fatalf("unexpected submissions: %d", got)
	}
	fv.mu.Lock()
	screens := len(fv.screens)
	fv.mu.Unlock()
	if screens != 0 {
		t.Fatalf("unexpected screen changes: %d", screens)
	}
}

func TestParticipantIDRejectedWhenBlank(t *testing.T) {
	a, fv, _, done := newTestApp(t)
	defer done()

	a.OnBeginStudy()
	a.OnSubmitParticipantID("   ")

	if !a.inPhase(PhaseIDEntry) {
		t.Fatalf("blank id advanced the phase")
	}
	fv.mu.Lock()
	msg := fv.idError
	fv.mu.Unlock()
	if msg == "" {
		t.Fatalf("expected an id entry error")
	}
}

func TestInitFailureKeepsIDEntryPhase(t *testing.T) {
	a, fv, _, done := newTestApp(t)
	defer done()
	a.client = api.NewClient("http://127.0.0.1:1")

	a.OnBeginStudy()
	a.OnSubmitParticipantID("prolific-test-2")

	if !a.inPhase(PhaseIDEntry) {
		t.Fatalf("expected to stay in id entry after a backend failure")
	}
	fv.mu.Lock()
	msg := fv.idError
	fv.mu.Unlock()
	if msg == "" {
		t.Fatalf("expected a retry message")
	}
}

func TestTutorialManualSubmitGated(t *testing.T) {
	a, fv, _, done := newTestApp(t)
	defer done()

	startedTutorial(t, a)
	spellWord(t, a, "STEAM")
	a.OnValidateWord()

	// A word exists but the elapsed-time gate has not opened.
	a.OnSubmitRound()
	a.mu.Lock()
	stage := a.tutorialStage
	a.mu.Unlock()
	if stage != ui.TutorialPlay {
		t.Fatalf("manual submit bypassed the tutorial gate")
	}
	fv.mu.Lock()
	flash := fv.flash
	fv.mu.Unlock()
	if flash == "" {
		t.Fatalf("expected a flash explaining the locked submit")
	}
}

func TestRoundSubmitsAtMostOnce(t *testing.T) {
	a, _, mock, done := newTestApp(t)
	defer done()

	startedTutorial(t, a)
	a.submitTutorial(true)
	a.OnTutorialFinish()
	a.mu.Lock()
	a.msgRemaining = 0
	a.mu.Unlock()
	a.OnAcknowledgeMessage()

	spellWord(t, a, "PLANE")
	a.OnValidateWord()

	// Mark the round submitted, as a racing expiry would have.
	a.mu.Lock()
	a.roundSubmitted = true
	a.mu.Unlock()
	a.submitRound(true)
	a.submitRound(false)

	if got := len(mock.Submissions()); got != 0 {
		t.Fatalf("guarded round still submitted %d times", got)
	}
}

func TestFinalRoundEndsWithoutAskingForAnother(t *testing.T) {
	mock := api.NewMock()
	inner := mock.Handler()
	var nextCalls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/game/next" {
			atomic.AddInt32(&nextCalls, 1)
		}
		inner.ServeHTTP(w, r)
	}))
	defer server.Close()

	logger, err := telemetry.NewJSONLogger("", "test")
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	fv := &fakeView{}
	a := newApp(DefaultConfig(), fv, logger)
	a.client = api.NewClient(server.URL)
	defer a.Close()

	startedTutorial(t, a)
	a.submitTutorial(true)
	a.OnTutorialFinish()
	a.mu.Lock()
	a.msgRemaining = 0
	a.mu.Unlock()
	a.OnAcknowledgeMessage()

	for i := 0; i < 3; i++ {
		a.submitRound(true)
	}

	fv.mu.Lock()
	dialog := fv.finalDialog
	fv.mu.Unlock()
	if !dialog {
		t.Fatalf("expected the final-round dialog after the last anagram")
	}
	// Two advances for three rounds; the last round ends the game locally.
	if got := atomic.LoadInt32(&nextCalls); got != 2 {
		t.Fatalf("game/next called %d times for 3 rounds", got)
	}
}

func TestConcurrentPlayInputKeepsLettersConserved(t *testing.T) {
	a, _, _, done := newTestApp(t)
	defer done()

	startedTutorial(t, a)

	// The view dispatches every action on its own goroutine; moves and
	// validations must not tear the workspace.
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			a.OnMoveLetter(ui.AreaPool, 0, ui.AreaSolution, 0)
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			a.OnValidateWord()
		}
	}()
	wg.Wait()

	round := a.currentRound()
	if round == nil {
		t.Fatalf("tutorial round gone after concurrent input")
	}
	if got := len(round.Workspace.Pool()) + len(round.Workspace.Solution()); got != len("MASTER") {
		t.Fatalf("letters not conserved under concurrent input: %d", got)
	}
}

func TestValidateRefillsAndRecordsInvalid(t *testing.T) {
	a, fv, _, done := newTestApp(t)
	defer done()

	startedTutorial(t, a)
	spellWord(t, a, "MASTE") // five letters, not a word
	a.OnValidateWord()

	fv.mu.Lock()
	rows := append([]ui.LedgerRow(nil), fv.ledger...)
	pool := append([]rune(nil), fv.pool...)
	solution := append([]rune(nil), fv.solution...)
	fv.mu.Unlock()

	if len(rows) != 1 || rows[0].Valid || rows[0].Reward != 0 {
		t.Fatalf("ledger rows = %+v", rows)
	}
	if len(solution) != 0 || len(pool) != len("MASTER") {
		t.Fatalf("workspace not refilled: pool=%q solution=%q", string(pool), string(solution))
	}
}

func TestMeaningRequiresNonEmptyAnswer(t *testing.T) {
	a, fv, _, done := newTestApp(t)
	defer done()

	startedTutorial(t, a)
	a.submitTutorial(true)
	a.OnTutorialFinish()
	a.mu.Lock()
	a.msgRemaining = 0
	a.mu.Unlock()
	a.OnAcknowledgeMessage()

	for _, word := range []string{"PLANE", "ANGER", "CURED"} {
		spellWord(t, a, word)
		a.OnValidateWord()
		a.OnSubmitRound()
	}
	a.OnAcknowledgeFinalRound()
	a.OnSubmitSurveyCode("12345")

	a.OnSubmitMeaning("PLANE", "   ")
	fv.mu.Lock()
	state := fv.meaning
	fv.mu.Unlock()
	if state.Error == "" || state.Word != "PLANE" {
		t.Fatalf("empty meaning accepted: %+v", state)
	}
	if !a.inPhase(PhaseMeaning) {
		t.Fatalf("phase advanced on empty meaning")
	}
}

func TestMeaningSkippedWithoutValidWords(t *testing.T) {
	a, _, _, done := newTestApp(t)
	defer done()

	startedTutorial(t, a)
	a.submitTutorial(true)
	a.OnTutorialFinish()
	a.mu.Lock()
	a.msgRemaining = 0
	a.mu.Unlock()
	a.OnAcknowledgeMessage()

	// Submit every round empty via the forced path.
	for i := 0; i < 3; i++ {
		a.submitRound(true)
	}
	a.OnAcknowledgeFinalRound()
	a.OnSubmitSurveyCode("12345")

	if !a.inPhase(PhaseDebrief) {
		t.Fatalf("expected meaning check to be skipped, got %v", a.phaseSnapshot())
	}
}

func TestSurveyCodeComparisonIsLenient(t *testing.T) {
	cfg := DefaultConfig()
	cfg.SurveyCode = "AbC123"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}

	a, _, _, done := newTestApp(t)
	defer done()
	a.cfg.SurveyCode = "AbC123"

	a.mu.Lock()
	a.phase = PhaseSurvey
	a.sessionID = "s"
	a.mu.Unlock()

	a.OnSubmitSurveyCode("  abc123 ")
	if a.phaseSnapshot() == PhaseSurvey {
		t.Fatalf("expected case-insensitive code match to advance")
	}
}

func TestConfigValidateDefaultsAndRejects(t *testing.T) {
	cfg := DefaultConfig()
	cfg.UI.StyleVariant = ""
	cfg.UI.MotionLevel = ""
	cfg.InactivityThresholdSeconds = 0
	if err := cfg.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
	if cfg.UI.StyleVariant != "calm_blue" || cfg.UI.MotionLevel != "full" || cfg.InactivityThresholdSeconds != 5 {
		t.Fatalf("defaults not applied: %+v", cfg)
	}

	bad := DefaultConfig()
	bad.UI.StyleVariant = "neon"
	if err := bad.Validate(); err == nil {
		t.Fatalf("expected invalid style variant to be rejected")
	}
	bad = DefaultConfig()
	bad.BackendURL = "not a url"
	if err := bad.Validate(); err == nil {
		t.Fatalf("expected invalid backend URL to be rejected")
	}
}
