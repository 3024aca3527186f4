package ui

import (
	"strings"
	"sync"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"
)

type mockController struct {
	mu sync.Mutex

	beginCalls       int
	idSubmissions    []string
	tutorialStarts   int
	moves            [][4]int
	validateCalls    int
	removeCalls      []int
	submitCalls      int
	tutorialFinishes int
	messageAcks      int
	finalAcks        int
	surveyOpens      int
	codes            []string
	meanings         [][2]string
	disclosures      []struct {
		words []string
		none  bool
	}
	debriefContinues int
	retries          int
	activity         int
	hides            int
	shows            int
	resizes          int
	quits            int
}

func (m *mockController) OnBeginStudy() { m.mu.Lock(); m.beginCalls++; m.mu.Unlock() }
func (m *mockController) OnSubmitParticipantID(id string) {
	m.mu.Lock()
	m.idSubmissions = append(m.idSubmissions, id)
	m.mu.Unlock()
}
func (m *mockController) OnTutorialStart() { m.mu.Lock(); m.tutorialStarts++; m.mu.Unlock() }
func (m *mockController) OnMoveLetter(srcArea, srcIndex, dstArea, dstIndex int) {
	m.mu.Lock()
	m.moves = append(m.moves, [4]int{srcArea, srcIndex, dstArea, dstIndex})
	m.mu.Unlock()
}
func (m *mockController) OnValidateWord() { m.mu.Lock(); m.validateCalls++; m.mu.Unlock() }
func (m *mockController) OnRemoveWord(index int) {
	m.mu.Lock()
	m.removeCalls = append(m.removeCalls, index)
	m.mu.Unlock()
}
func (m *mockController) OnSubmitRound()    { m.mu.Lock(); m.submitCalls++; m.mu.Unlock() }
func (m *mockController) OnTutorialFinish() { m.mu.Lock(); m.tutorialFinishes++; m.mu.Unlock() }
func (m *mockController) OnAcknowledgeMessage() {
	m.mu.Lock()
	m.messageAcks++
	m.mu.Unlock()
}
func (m *mockController) OnAcknowledgeFinalRound() { m.mu.Lock(); m.finalAcks++; m.mu.Unlock() }
func (m *mockController) OnOpenSurvey()            { m.mu.Lock(); m.surveyOpens++; m.mu.Unlock() }
func (m *mockController) OnSubmitSurveyCode(code string) {
	m.mu.Lock()
	m.codes = append(m.codes, code)
	m.mu.Unlock()
}
func (m *mockController) OnSubmitMeaning(word, meaning string) {
	m.mu.Lock()
	m.meanings = append(m.meanings, [2]string{word, meaning})
	m.mu.Unlock()
}
func (m *mockController) OnSubmitDisclosure(words []string, none bool) {
	m.mu.Lock()
	m.disclosures = append(m.disclosures, struct {
		words []string
		none  bool
	}{append([]string(nil), words...), none})
	m.mu.Unlock()
}
func (m *mockController) OnContinueDebrief() { m.mu.Lock(); m.debriefContinues++; m.mu.Unlock() }
func (m *mockController) OnRetry()           { m.mu.Lock(); m.retries++; m.mu.Unlock() }
func (m *mockController) OnUserActivity()    { m.mu.Lock(); m.activity++; m.mu.Unlock() }
func (m *mockController) OnPageHidden()      { m.mu.Lock(); m.hides++; m.mu.Unlock() }
func (m *mockController) OnPageVisible()     { m.mu.Lock(); m.shows++; m.mu.Unlock() }
func (m *mockController) OnResize(int, int)  { m.mu.Lock(); m.resizes++; m.mu.Unlock() }
func (m *mockController) OnQuit()            { m.mu.Lock(); m.quits++; m.mu.Unlock() }

func press(v *Root, code rune, mod tea.KeyMod, text string) {
	_, _ = v.Update(tea.KeyPressMsg{Code: code, Mod: mod, Text: text})
}

// waitFor polls for a condition because controller callbacks are dispatched
// on their own goroutines.
func waitFor(t *testing.T, cond func() bool, what string) {
	t.Helper()
	deadline := time.Now().Add(300 * time.Millisecond)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func newTestView(ctrl Controller) *Root {
	v := New(Options{ASCIIOnly: true})
	v.SetController(ctrl)
	_, _ = v.Update(tea.WindowSizeMsg{Width: 120, Height: 36})
	return v
}

func TestLandingEnterBeginsStudy(t *testing.T) {
	ctrl := &mockController{}
	v := newTestView(ctrl)
	v.SetScreen(ScreenLanding)

	press(v, tea.KeyEnter, 0, "")

	waitFor(t, func() bool {
		ctrl.mu.Lock()
		defer ctrl.mu.Unlock()
		return ctrl.beginCalls == 1
	}, "OnBeginStudy")
}

func TestIDEntrySubmitsTrimmedValue(t *testing.T) {
	ctrl := &mockController{}
	v := newTestView(ctrl)
	v.SetScreen(ScreenIDEntry)
	v.idInput.SetValue("  prolific-42  ")

	press(v, tea.KeyEnter, 0, "")

	waitFor(t, func() bool {
		ctrl.mu.Lock()
		defer ctrl.mu.Unlock()
		return len(ctrl.idSubmissions) == 1
	}, "OnSubmitParticipantID")
	ctrl.mu.Lock()
	got := ctrl.idSubmissions[0]
	ctrl.mu.Unlock()
	if got != "prolific-42" {
		t.Fatalf("expected trimmed id, got %q", got)
	}
}

func TestPickAndDropDispatchesMove(t *testing.T) {
	ctrl := &mockController{}
	v := newTestView(ctrl)
	v.SetScreen(ScreenTutorial)
	v.SetTutorial(TutorialState{Stage: TutorialPlay, Word: "MASTER", MinLength: 5})
	v.SetWorkspace([]rune("MASTER"), nil)

	// Pick the second pool letter, move up to the solution row, drop.
	press(v, tea.KeyRight, 0, "")
	press(v, tea.KeyEnter, 0, "")
	press(v, tea.KeyUp, 0, "")
	press(v, tea.KeyEnter, 0, "")

	waitFor(t, func() bool {
		ctrl.mu.Lock()
		defer ctrl.mu.Unlock()
		return len(ctrl.moves) == 1
	}, "OnMoveLetter")
	ctrl.mu.Lock()
	move := ctrl.moves[0]
	ctrl.mu.Unlock()
	want := [4]int{AreaPool, 1, AreaSolution, 0}
	if move != want {
		t.Fatalf("move = %v, want %v", move, want)
	}
}

func TestBackspaceReturnsLastSolutionLetter(t *testing.T) {
	ctrl := &mockController{}
	v := newTestView(ctrl)
	v.SetScreen(ScreenGame)
	v.SetGame(GameState{Stage: GamePlay, Anagram: "PLANETS", MinLength: 5})
	v.SetWorkspace([]rune("PLAN"), []rune("ETS"))

	press(v, tea.KeyBackspace, 0, "")

	waitFor(t, func() bool {
		ctrl.mu.Lock()
		defer ctrl.mu.Unlock()
		return len(ctrl.moves) == 1
	}, "OnMoveLetter")
	ctrl.mu.Lock()
	move := ctrl.moves[0]
	ctrl.mu.Unlock()
	want := [4]int{AreaSolution, 2, AreaPool, 4}
	if move != want {
		t.Fatalf("move = %v, want %v", move, want)
	}
}

func TestSubmitBlockedUntilAllowed(t *testing.T) {
	ctrl := &mockController{}
	v := newTestView(ctrl)
	v.SetScreen(ScreenTutorial)
	v.SetTutorial(TutorialState{Stage: TutorialPlay, Word: "MASTER"})

	press(v, 's', 0, "s")
	time.Sleep(50 * time.Millisecond)
	ctrl.mu.Lock()
	submits := ctrl.submitCalls
	ctrl.mu.Unlock()
	if submits != 0 {
		t.Fatalf("expected submit to be blocked, got %d calls", submits)
	}

	v.SetTutorial(TutorialState{Stage: TutorialPlay, Word: "MASTER", CanSubmit: true})
	press(v, 's', 0, "s")
	waitFor(t, func() bool {
		ctrl.mu.Lock()
		defer ctrl.mu.Unlock()
		return ctrl.submitCalls == 1
	}, "OnSubmitRound")
}

func TestMessageEnterIgnoredDuringReadDelay(t *testing.T) {
	ctrl := &mockController{}
	v := newTestView(ctrl)
	v.SetScreen(ScreenGame)
	v.SetGame(GameState{Stage: GameMessage, Message: "Read me", MessageSec: 3})

	press(v, tea.KeyEnter, 0, "")
	time.Sleep(50 * time.Millisecond)
	ctrl.mu.Lock()
	acks := ctrl.messageAcks
	ctrl.mu.Unlock()
	if acks != 0 {
		t.Fatalf("expected message ack to be blocked, got %d", acks)
	}

	v.SetGame(GameState{Stage: GameMessage, Message: "Read me", MessageSec: 0})
	press(v, tea.KeyEnter, 0, "")
	waitFor(t, func() bool {
		ctrl.mu.Lock()
		defer ctrl.mu.Unlock()
		return ctrl.messageAcks == 1
	}, "OnAcknowledgeMessage")
}

func TestFinalDialogSwallowsKeysUntilAcknowledged(t *testing.T) {
	ctrl := &mockController{}
	v := newTestView(ctrl)
	v.SetScreen(ScreenGame)
	v.SetGame(GameState{Stage: GamePlay, Anagram: "RESCUED"})
	v.SetFinalRoundDialog(true)

	press(v, 'v', 0, "v")
	time.Sleep(50 * time.Millisecond)
	ctrl.mu.Lock()
	validates := ctrl.validateCalls
	ctrl.mu.Unlock()
	if validates != 0 {
		t.Fatalf("expected dialog to swallow validate key, got %d", validates)
	}

	press(v, tea.KeyEnter, 0, "")
	waitFor(t, func() bool {
		ctrl.mu.Lock()
		defer ctrl.mu.Unlock()
		return ctrl.finalAcks == 1
	}, "OnAcknowledgeFinalRound")
	if v.finalDialog {
		t.Fatalf("expected dialog to close on acknowledge")
	}
}

func TestFocusReportingMapsToPageVisibility(t *testing.T) {
	ctrl := &mockController{}
	v := newTestView(ctrl)
	v.SetScreen(ScreenGame)

	_, _ = v.Update(tea.BlurMsg{})
	_, _ = v.Update(tea.FocusMsg{})

	waitFor(t, func() bool {
		ctrl.mu.Lock()
		defer ctrl.mu.Unlock()
		return ctrl.hides == 1 && ctrl.shows == 1
	}, "page visibility callbacks")
}

func TestEveryKeyCountsAsActivity(t *testing.T) {
	ctrl := &mockController{}
	v := newTestView(ctrl)
	v.SetScreen(ScreenLanding)

	press(v, 'a', 0, "a")
	press(v, tea.KeyLeft, 0, "")
	_, _ = v.Update(tea.MouseClickMsg{})

	waitFor(t, func() bool {
		ctrl.mu.Lock()
		defer ctrl.mu.Unlock()
		return ctrl.activity >= 3
	}, "OnUserActivity")
}

func TestDisclosureRequiresSelection(t *testing.T) {
	ctrl := &mockController{}
	v := newTestView(ctrl)
	v.SetScreen(ScreenDebrief)
	v.SetDebrief(DebriefState{Stage: DebriefDisclosure, Words: []string{"APPLE", "PLANET"}})

	press(v, tea.KeyEnter, 0, "")
	time.Sleep(50 * time.Millisecond)
	ctrl.mu.Lock()
	n := len(ctrl.disclosures)
	ctrl.mu.Unlock()
	if n != 0 {
		t.Fatalf("expected empty disclosure to be rejected")
	}

	press(v, tea.KeySpace, 0, "")
	press(v, tea.KeyEnter, 0, "")
	waitFor(t, func() bool {
		ctrl.mu.Lock()
		defer ctrl.mu.Unlock()
		return len(ctrl.disclosures) == 1
	}, "OnSubmitDisclosure")
	ctrl.mu.Lock()
	d := ctrl.disclosures[0]
	ctrl.mu.Unlock()
	if len(d.words) != 1 || d.words[0] != "APPLE" || d.none {
		t.Fatalf("disclosure = %+v", d)
	}
}

func TestSelectingNoneClearsWords(t *testing.T) {
	ctrl := &mockController{}
	v := newTestView(ctrl)
	v.SetScreen(ScreenDebrief)
	v.SetDebrief(DebriefState{Stage: DebriefDisclosure, Words: []string{"APPLE"}})

	press(v, tea.KeySpace, 0, "")
	press(v, tea.KeyDown, 0, "")
	press(v, tea.KeySpace, 0, "")
	press(v, tea.KeyEnter, 0, "")

	waitFor(t, func() bool {
		ctrl.mu.Lock()
		defer ctrl.mu.Unlock()
		return len(ctrl.disclosures) == 1
	}, "OnSubmitDisclosure")
	ctrl.mu.Lock()
	d := ctrl.disclosures[0]
	ctrl.mu.Unlock()
	if !d.none || len(d.words) != 0 {
		t.Fatalf("expected none-only disclosure, got %+v", d)
	}
}

func TestViewRendersWithoutProgram(t *testing.T) {
	ctrl := &mockController{}
	v := newTestView(ctrl)
	screens := []Screen{
		ScreenLanding, ScreenIDEntry, ScreenTutorial, ScreenGame,
		ScreenSurvey, ScreenMeaning, ScreenDebrief, ScreenThankYou,
	}
	v.SetTutorial(TutorialState{Stage: TutorialPlay, Word: "MASTER", MinLength: 5})
	v.SetGame(GameState{Stage: GamePlay, Anagram: "PLANETS", RoundIndex: 0, RoundCount: 3})
	v.SetWorkspace([]rune("PLAN"), []rune("ETS"))
	v.SetLedger([]LedgerRow{{Word: "PLANE", Reward: 10, Valid: true}}, 10)
	v.SetMeaning(MeaningState{Word: "PLANE", Index: 0, Total: 2})
	v.SetDebrief(DebriefState{Stage: DebriefResults, ValidWords: []LedgerRow{{Word: "PLANE", Reward: 10, Valid: true}}})
	for _, s := range screens {
		v.SetScreen(s)
		if strings.TrimSpace(v.renderBase()) == "" {
			t.Fatalf("screen %v rendered empty", s)
		}
	}
}

func TestViewFrameEnablesFocusReporting(t *testing.T) {
	ctrl := &mockController{}
	v := newTestView(ctrl)
	v.SetScreen(ScreenGame)

	frame := v.View()
	if !frame.ReportFocus {
		t.Fatalf("expected the frame to request focus reporting")
	}
	if !frame.AltScreen {
		t.Fatalf("expected the frame to use the alt screen")
	}
}

func TestThemeVariantFallsBackToDefault(t *testing.T) {
	want := DefaultTheme().Accent.Render("PLANE")
	if got := ThemeForVariant("neon").Accent.Render("PLANE"); got != want {
		t.Fatalf("unknown variant styled %q, want %q", got, want)
	}
}

func TestTooSmallTerminalShowsResizeNotice(t *testing.T) {
	ctrl := &mockController{}
	v := newTestView(ctrl)
	_, _ = v.Update(tea.WindowSizeMsg{Width: 50, Height: 12})
	v.SetScreen(ScreenGame)

	out := v.renderBase()
	if !strings.Contains(out, "Terminal too small") {
		t.Fatalf("expected resize notice, got:\n%s", out)
	}
}
