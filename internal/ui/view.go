package ui

import (
	"fmt"
	"os"
	"runtime/debug"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"charm.land/bubbles/v2/help"
	"charm.land/bubbles/v2/key"
	"charm.land/bubbles/v2/progress"
	"charm.land/bubbles/v2/spinner"
	"charm.land/bubbles/v2/textarea"
	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/harmonica"
	clog "github.com/charmbracelet/log"
	"github.com/charmbracelet/x/ansi"
)

type applyMsg struct {
	fn func(*Root)
}

type drawMsg struct{}
type clockMsg time.Time
type animateMsg time.Time

type playKeyMap struct {
	Pick     key.Binding
	Validate key.Binding
	Submit   key.Binding
	Return   key.Binding
	Remove   key.Binding
	Quit     key.Binding
}

func (k playKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Pick, k.Validate, k.Submit, k.Return, k.Remove, k.Quit}
}

func (k playKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.Pick, k.Validate, k.Submit}, {k.Return, k.Remove, k.Quit}}
}

// Root is the Bubble Tea model for the whole participant session. The
// controller mutates it through the Set* methods; participant input flows
// back through the Controller interface on separate goroutines.
type Root struct {
	theme        Theme
	ascii        bool
	debug        bool
	ctrl         Controller
	styleVariant string
	motionLevel  string

	mu      sync.Mutex
	program *tea.Program
	running bool

	screen Screen
	layout LayoutMode
	cols   int
	rows   int

	landingMD string

	idInput   textinput.Model
	idError   string
	codeInput textinput.Model

	tutorial        TutorialState
	tutorialResults TutorialResults

	game        GameState
	pool        []rune
	solution    []rune
	ledger      []LedgerRow
	totalReward int
	remaining   int
	finalDialog bool

	survey  SurveyState
	meaning MeaningState
	debrief DebriefState
	thanks  ThankYouState

	meaningInput textarea.Model

	// Letter picker cursor. picked marks a lifted letter awaiting a drop.
	cursorArea  int
	cursorIndex int
	picked      bool
	pickedArea  int
	pickedIndex int
	ledgerIndex int

	// Debrief disclosure selection.
	disclosureIndex int
	disclosed       map[string]bool
	disclosedNone   bool

	statusFlash string
	notifyText  string
	notifyUntil time.Time

	help     help.Model
	keymap   playKeyMap
	timerBar progress.Model
	waitSpin spinner.Model
	markdown *glamour.TermRenderer
	logger   *clog.Logger

	overlayPos float64
	overlayVel float64
	spring     harmonica.Spring

	drawPending atomic.Bool

	lastInputEvent string
}

type Options struct {
	ASCIIOnly    bool
	Debug        bool
	StyleVariant string
	MotionLevel  string
}

func New(opts Options) *Root {
	logger := clog.NewWithOptions(os.Stderr, clog.Options{Prefix: "anagram-ui", Level: clog.WarnLevel})
	if opts.Debug {
		logger.SetLevel(clog.DebugLevel)
	}

	renderer, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle("dark"),
		glamour.WithWordWrap(76),
	)
	if err != nil {
		renderer = nil
	}

	h := help.New()
	h.Styles = help.DefaultDarkStyles()
	motionLevel := normalizeMotionLevel(opts.MotionLevel)
	styleVariant := normalizeStyleVariant(opts.StyleVariant)
	theme := ThemeForVariant(styleVariant)
	spring := harmonica.NewSpring(harmonica.FPS(60), 10.0, 0.8)
	switch motionLevel {
	case "reduced":
		spring = harmonica.NewSpring(harmonica.FPS(30), 9.0, 0.92)
	case "off":
		spring = harmonica.NewSpring(harmonica.FPS(60), 1000.0, 1.0)
	}
	timerBar := progress.New(
		progress.WithWidth(30),
		progress.WithColors(lipgloss.Color("#6AC2FF"), lipgloss.Color("#6FE6A8"), lipgloss.Color("#FFCE63")),
		progress.WithScaled(true),
	)
	if motionLevel == "off" {
		timerBar.SetSpringOptions(1000.0, 1.0)
	}
	waitSpin := spinner.New(
		spinner.WithSpinner(spinner.MiniDot),
		spinner.WithStyle(theme.Accent),
	)

	idInput := textinput.New()
	idInput.Placeholder = "Prolific ID"
	idInput.CharLimit = 64

	codeInput := textinput.New()
	codeInput.Placeholder = "Completion code"
	codeInput.CharLimit = 32

	meaningInput := textarea.New()
	meaningInput.Placeholder = "What does this word mean?"
	meaningInput.SetHeight(4)

	r := &Root{
		theme:        theme,
		ascii:        opts.ASCIIOnly,
		debug:        opts.Debug,
		styleVariant: styleVariant,
		motionLevel:  motionLevel,
		screen:       ScreenLanding,
		layout:       LayoutWide,
		cols:         120,
		rows:         30,
		help:         h,
		timerBar:     timerBar,
		waitSpin:     waitSpin,
		markdown:     renderer,
		logger:       logger,
		spring:       spring,
		idInput:      idInput,
		codeInput:    codeInput,
		meaningInput: meaningInput,
		disclosed:    map[string]bool{},
	}
	r.keymap = playKeyMap{
		Pick:     key.NewBinding(key.WithKeys("enter"), key.WithHelp("Enter", "Pick/drop letter")),
		Validate: key.NewBinding(key.WithKeys("v"), key.WithHelp("v", "Validate word")),
		Submit:   key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "Submit round")),
		Return:   key.NewBinding(key.WithKeys("backspace"), key.WithHelp("Bksp", "Return letter")),
		Remove:   key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "Remove word")),
		Quit:     key.NewBinding(key.WithKeys("ctrl+q"), key.WithHelp("Ctrl+Q", "Quit")),
	}
	return r
}

func (r *Root) Init() tea.Cmd {
	return tea.Batch(clockTickCmd(), spinnerTickCmd(r.waitSpin))
}

func (r *Root) Update(msg tea.Msg) (model tea.Model, cmd tea.Cmd) {
	defer func() {
		if rec := recover(); rec != nil {
			r.onModelPanic("update", rec, msg)
			model = r
			cmd = nil
		}
	}()

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		r.cols = msg.Width
		r.rows = msg.Height
		r.layout = DetermineLayoutMode(r.cols, r.rows)
		r.dispatchController(func(c Controller) { c.OnResize(msg.Width, msg.Height) })
		return r, nil
	case tea.FocusMsg:
		r.dispatchController(func(c Controller) { c.OnPageVisible() })
		return r, nil
	case tea.BlurMsg:
		r.dispatchController(func(c Controller) { c.OnPageHidden() })
		return r, nil
	case tea.SuspendMsg:
		r.dispatchController(func(c Controller) { c.OnPageHidden() })
		return r, nil
	case tea.ResumeMsg:
		r.dispatchController(func(c Controller) { c.OnPageVisible() })
		return r, nil
	case applyMsg:
		if msg.fn != nil {
			msg.fn(r)
		}
		return r, r.animateIfNeeded()
	case drawMsg:
		r.drawPending.Store(false)
		return r, nil
	case clockMsg:
		if r.notifyText != "" && !r.notifyUntil.IsZero() && time.Now().After(r.notifyUntil) {
			r.notifyText = ""
			return r, tea.Batch(clockTickCmd(), r.animateIfNeeded())
		}
		return r, clockTickCmd()
	case animateMsg:
		target := 0.0
		if r.notifyText != "" {
			target = 1.0
		}
		r.overlayPos, r.overlayVel = r.spring.Update(r.overlayPos, r.overlayVel, target)
		if r.shouldAnimate(target) {
			return r, animateTickCmd()
		}
		r.overlayPos = target
		r.overlayVel = 0
		return r, nil
	case spinner.TickMsg:
		var cmd tea.Cmd
		r.waitSpin, cmd = r.waitSpin.Update(msg)
		return r, cmd
	case tea.MouseClickMsg, tea.MouseWheelMsg:
		r.dispatchController(func(c Controller) { c.OnUserActivity() })
		return r, nil
	case tea.KeyPressMsg:
		return r.handleKey(msg)
	}
	return r, nil
}

func (r *Root) View() (view tea.View) {
	defer func() {
		if rec := recover(); rec != nil {
			r.onModelPanic("view", rec, nil)
			width := max(1, r.cols)
			if r.statusFlash == "" {
				r.statusFlash = "Recovered UI panic"
			}
			view = tea.NewView(r.theme.Invalid.Width(width).Render(trimForWidth("UI recovered from a rendering panic. Check logs.", max(1, width-1))))
		}
	}()

	base := r.renderBase()
	v := tea.NewView(base)
	v.AltScreen = true
	v.MouseMode = tea.MouseModeCellMotion
	v.ReportFocus = true
	v.DisableBracketedPasteMode = false
	return v
}

// renderBase composes the full frame as a string, before program-level
// concerns like alt-screen and mouse mode are attached.
func (r *Root) renderBase() string {
	if r.cols < 1 {
		r.cols = 120
	}
	if r.rows < 1 {
		r.rows = 30
	}

	var base string
	if DetermineLayoutMode(r.cols, r.rows) == LayoutTooSmall {
		msg := []string{
			"Terminal too small",
			fmt.Sprintf("Current: %dx%d", r.cols, r.rows),
			"Minimum: 70x20",
			"Resize the terminal to continue.",
		}
		panel := r.drawPanel("Resize Required", msg, min(50, r.cols), min(10, r.rows))
		base = lipgloss.Place(r.cols, r.rows, lipgloss.Center, lipgloss.Center, panel)
	} else {
		switch r.screen {
		case ScreenLanding:
			base = r.renderLanding()
		case ScreenIDEntry:
			base = r.renderIDEntry()
		case ScreenTutorial:
			base = r.renderTutorial()
		case ScreenGame:
			base = r.renderGame()
		case ScreenSurvey:
			base = r.renderSurvey()
		case ScreenMeaning:
			base = r.renderMeaning()
		case ScreenDebrief:
			base = r.renderDebrief()
		default:
			base = r.renderThankYou()
		}
	}

	if r.finalDialog {
		base = composeOverlay(base, r.renderFinalDialog(), r.cols, r.rows)
	}
	if banner := r.renderNotification(); banner != "" {
		base = composeOverlayAt(base, banner, r.cols, r.rows, 1, max(0, (r.cols-lipgloss.Width(banner))/2))
	}
	return base
}

func (r *Root) Run() error {
	r.mu.Lock()
	if r.running {
		r.mu.Unlock()
		return nil
	}
	p := tea.NewProgram(r)
	r.program = p
	r.running = true
	r.mu.Unlock()

	_, err := p.Run()

	r.mu.Lock()
	r.program = nil
	r.running = false
	r.mu.Unlock()
	return err
}

func (r *Root) Stop() {
	r.mu.Lock()
	p := r.program
	r.mu.Unlock()
	if p != nil {
		p.Quit()
	}
}

func (r *Root) SetController(c Controller) {
	r.ctrl = c
}

func (r *Root) SetScreen(screen Screen) {
	r.apply(func(m *Root) {
		m.screen = screen
		m.statusFlash = ""
		switch screen {
		case ScreenIDEntry:
			m.idInput.Focus()
		case ScreenSurvey:
			m.codeInput.Focus()
		case ScreenMeaning:
			m.meaningInput.Focus()
		}
	})
}

func (r *Root) SetLanding(markdown string) {
	r.apply(func(m *Root) { m.landingMD = markdown })
}

func (r *Root) SetIDEntryError(msg string) {
	r.apply(func(m *Root) { m.idError = msg })
}

func (r *Root) SetTutorial(state TutorialState) {
	r.apply(func(m *Root) {
		m.tutorial = state
		if state.Stage == TutorialPlay {
			m.resetPicker()
		}
	})
}

func (r *Root) SetTutorialResults(res TutorialResults) {
	r.apply(func(m *Root) { m.tutorialResults = res })
}

func (r *Root) SetGame(state GameState) {
	r.apply(func(m *Root) {
		prev := m.game.Stage
		m.game = state
		if state.Stage == GamePlay && prev != GamePlay {
			m.resetPicker()
		}
	})
}

func (r *Root) SetWorkspace(pool, solution []rune) {
	r.apply(func(m *Root) {
		m.pool = append([]rune(nil), pool...)
		m.solution = append([]rune(nil), solution...)
		m.clampPicker()
	})
}

func (r *Root) SetLedger(rows []LedgerRow, totalReward int) {
	r.apply(func(m *Root) {
		m.ledger = append([]LedgerRow(nil), rows...)
		m.totalReward = totalReward
		if m.ledgerIndex >= len(m.ledger) {
			m.ledgerIndex = max(0, len(m.ledger)-1)
		}
	})
}

func (r *Root) SetTimer(secondsRemaining int) {
	r.apply(func(m *Root) { m.remaining = secondsRemaining })
}

func (r *Root) SetFinalRoundDialog(open bool) {
	r.apply(func(m *Root) { m.finalDialog = open })
}

func (r *Root) SetSurvey(state SurveyState) {
	r.apply(func(m *Root) { m.survey = state })
}

func (r *Root) SetMeaning(state MeaningState) {
	r.apply(func(m *Root) {
		if m.meaning.Word != state.Word {
			m.meaningInput.Reset()
		}
		m.meaning = state
	})
}

func (r *Root) SetDebrief(state DebriefState) {
	r.apply(func(m *Root) {
		m.debrief = state
		if state.Stage == DebriefDisclosure {
			m.disclosureIndex = 0
			if m.disclosed == nil {
				m.disclosed = map[string]bool{}
			}
		}
	})
}

func (r *Root) SetThankYou(state ThankYouState) {
	r.apply(func(m *Root) { m.thanks = state })
}

func (r *Root) SetNotification(msg string) {
	r.apply(func(m *Root) {
		m.notifyText = msg
		if msg == "" {
			m.notifyUntil = time.Time{}
			return
		}
		m.notifyUntil = time.Now().Add(5 * time.Second)
	})
}

func (r *Root) FlashStatus(msg string) {
	r.apply(func(m *Root) { m.statusFlash = msg })
}

func (r *Root) RequestDraw() {
	r.mu.Lock()
	p := r.program
	running := r.running
	r.mu.Unlock()
	if !running || p == nil {
		return
	}
	if !r.drawPending.CompareAndSwap(false, true) {
		return
	}
	time.AfterFunc(16*time.Millisecond, func() {
		r.mu.Lock()
		p := r.program
		running := r.running
		r.mu.Unlock()
		if !running || p == nil {
			r.drawPending.Store(false)
			return
		}
		p.Send(drawMsg{})
	})
}

func (r *Root) apply(fn func(*Root)) {
	if fn == nil {
		return
	}
	r.mu.Lock()
	p := r.program
	running := r.running
	if !running || p == nil {
		fn(r)
		r.mu.Unlock()
		return
	}
	r.mu.Unlock()
	p.Send(applyMsg{fn: fn})
}

func (r *Root) dispatchController(fn func(Controller)) {
	if fn == nil || r.ctrl == nil {
		return
	}
	ctrl := r.ctrl
	go fn(ctrl)
}

func (r *Root) handleKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	r.recordInputEvent(fmt.Sprintf("key:%v mod:%v text:%q", msg.Code, msg.Mod, msg.Text))
	r.dispatchController(func(c Controller) { c.OnUserActivity() })

	if key.Matches(msg, r.keymap.Quit) {
		r.dispatchController(func(c Controller) { c.OnQuit() })
		return r, nil
	}

	if r.finalDialog {
		if msg.Code == tea.KeyEnter {
			r.finalDialog = false
			r.dispatchController(func(c Controller) { c.OnAcknowledgeFinalRound() })
		}
		return r, nil
	}

	switch r.screen {
	case ScreenLanding:
		if msg.Code == tea.KeyEnter {
			r.dispatchController(func(c Controller) { c.OnBeginStudy() })
		}
		return r, nil
	case ScreenIDEntry:
		return r.handleIDEntryKey(msg)
	case ScreenTutorial:
		return r.handleTutorialKey(msg)
	case ScreenGame:
		return r.handleGameKey(msg)
	case ScreenSurvey:
		return r.handleSurveyKey(msg)
	case ScreenMeaning:
		return r.handleMeaningKey(msg)
	case ScreenDebrief:
		return r.handleDebriefKey(msg)
	default:
		return r, nil
	}
}

func (r *Root) handleIDEntryKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	if msg.Code == tea.KeyEnter {
		id := strings.TrimSpace(r.idInput.Value())
		r.dispatchController(func(c Controller) { c.OnSubmitParticipantID(id) })
		return r, nil
	}
	var cmd tea.Cmd
	r.idInput, cmd = r.idInput.Update(msg)
	return r, cmd
}

func (r *Root) handleTutorialKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch r.tutorial.Stage {
	case TutorialOverview:
		if msg.Code == tea.KeyEnter {
			r.dispatchController(func(c Controller) { c.OnTutorialStart() })
		}
		return r, nil
	case TutorialResultsStage:
		if msg.Code == tea.KeyEnter {
			r.dispatchController(func(c Controller) { c.OnTutorialFinish() })
		}
		return r, nil
	default:
		return r.handlePlayKey(msg, r.tutorial.CanSubmit)
	}
}

func (r *Root) handleGameKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch r.game.Stage {
	case GameMessage:
		if msg.Code == tea.KeyEnter && r.game.MessageSec <= 0 {
			r.dispatchController(func(c Controller) { c.OnAcknowledgeMessage() })
		}
		return r, nil
	case GamePlay:
		return r.handlePlayKey(msg, r.game.CanSubmit)
	case GameTimeUp:
		if msg.Code == 'r' || msg.Code == 'R' {
			r.dispatchController(func(c Controller) { c.OnRetry() })
		}
		return r, nil
	default:
		return r, nil
	}
}

// handlePlayKey drives the shared letter picker and ledger for the tutorial
// and main-game play stages.
func (r *Root) handlePlayKey(msg tea.KeyPressMsg, canSubmit bool) (tea.Model, tea.Cmd) {
	switch msg.Code {
	case tea.KeyLeft:
		if r.cursorIndex > 0 {
			r.cursorIndex--
		}
		return r, nil
	case tea.KeyRight:
		if r.cursorIndex < r.cursorRowLimit() {
			r.cursorIndex++
		}
		return r, nil
	case tea.KeyUp:
		r.cursorArea = AreaSolution
		r.clampPicker()
		return r, nil
	case tea.KeyDown:
		r.cursorArea = AreaPool
		r.clampPicker()
		return r, nil
	case tea.KeyEnter, tea.KeySpace:
		r.pickOrDrop()
		return r, nil
	case tea.KeyBackspace:
		if n := len(r.solution); n > 0 {
			poolEnd := len(r.pool)
			r.dispatchController(func(c Controller) { c.OnMoveLetter(AreaSolution, n-1, AreaPool, poolEnd) })
		}
		return r, nil
	case tea.KeyTab:
		if len(r.ledger) > 0 {
			r.ledgerIndex = (r.ledgerIndex + 1) % len(r.ledger)
		}
		return r, nil
	}

	switch msg.Code {
	case 'v', 'V':
		r.dispatchController(func(c Controller) { c.OnValidateWord() })
	case 's', 'S':
		if canSubmit {
			r.dispatchController(func(c Controller) { c.OnSubmitRound() })
		} else {
			r.statusFlash = "Submit is not available yet"
		}
	case 'x', 'X':
		if len(r.ledger) > 0 {
			idx := r.ledgerIndex
			r.dispatchController(func(c Controller) { c.OnRemoveWord(idx) })
		}
	}
	return r, nil
}

func (r *Root) handleSurveyKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	if msg.Code == tea.KeyEnter {
		code := strings.TrimSpace(r.codeInput.Value())
		r.dispatchController(func(c Controller) { c.OnSubmitSurveyCode(code) })
		return r, nil
	}
	if msg.Mod&tea.ModCtrl != 0 && (msg.Code == 'o' || msg.Code == 'O') {
		r.dispatchController(func(c Controller) { c.OnOpenSurvey() })
		return r, nil
	}
	var cmd tea.Cmd
	r.codeInput, cmd = r.codeInput.Update(msg)
	return r, cmd
}

func (r *Root) handleMeaningKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	if msg.Mod&tea.ModCtrl != 0 && (msg.Code == 's' || msg.Code == 'S') {
		word := r.meaning.Word
		text := strings.TrimSpace(r.meaningInput.Value())
		r.dispatchController(func(c Controller) { c.OnSubmitMeaning(word, text) })
		return r, nil
	}
	var cmd tea.Cmd
	r.meaningInput, cmd = r.meaningInput.Update(msg)
	return r, cmd
}

func (r *Root) handleDebriefKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch r.debrief.Stage {
	case DebriefResults:
		switch msg.Code {
		case tea.KeyEnter:
			r.dispatchController(func(c Controller) { c.OnContinueDebrief() })
		case 'r', 'R':
			if r.debrief.Error != "" {
				r.dispatchController(func(c Controller) { c.OnRetry() })
			}
		}
		return r, nil
	default:
		items := r.disclosureItems()
		switch msg.Code {
		case tea.KeyUp:
			r.disclosureIndex = wrapIndex(r.disclosureIndex-1, len(items))
		case tea.KeyDown, tea.KeyTab:
			r.disclosureIndex = wrapIndex(r.disclosureIndex+1, len(items))
		case tea.KeySpace:
			r.toggleDisclosure(items[wrapIndex(r.disclosureIndex, len(items))])
		case tea.KeyEnter:
			words, none := r.disclosureSelection()
			if len(words) == 0 && !none {
				r.statusFlash = "Select at least one word, or None"
				return r, nil
			}
			r.dispatchController(func(c Controller) { c.OnSubmitDisclosure(words, none) })
		}
		return r, nil
	}
}

func (r *Root) disclosureItems() []string {
	items := append([]string(nil), r.debrief.Words...)
	return append(items, "None of these")
}

func (r *Root) toggleDisclosure(item string) {
	if item == "None of these" {
		r.disclosedNone = !r.disclosedNone
		if r.disclosedNone {
			r.disclosed = map[string]bool{}
		}
		return
	}
	r.disclosed[item] = !r.disclosed[item]
	if r.disclosed[item] {
		r.disclosedNone = false
	}
}

func (r *Root) disclosureSelection() (words []string, none bool) {
	for _, w := range r.debrief.Words {
		if r.disclosed[w] {
			words = append(words, w)
		}
	}
	return words, r.disclosedNone
}

func (r *Root) cursorRowLimit() int {
	if r.cursorArea == AreaSolution {
		if r.picked {
			return len(r.solution)
		}
		return max(0, len(r.solution)-1)
	}
	if r.picked {
		return len(r.pool)
	}
	return max(0, len(r.pool)-1)
}

func (r *Root) clampPicker() {
	if limit := r.cursorRowLimit(); r.cursorIndex > limit {
		r.cursorIndex = limit
	}
	if r.cursorIndex < 0 {
		r.cursorIndex = 0
	}
}

func (r *Root) resetPicker() {
	r.cursorArea = AreaPool
	r.cursorIndex = 0
	r.picked = false
	r.ledgerIndex = 0
}

// pickOrDrop lifts the letter under the cursor, or drops a lifted letter at
// the cursor position. The controller performs the actual move so the
// workspace invariants live in one place.
func (r *Root) pickOrDrop() {
	if !r.picked {
		row := r.pool
		if r.cursorArea == AreaSolution {
			row = r.solution
		}
		if r.cursorIndex >= len(row) {
			return
		}
		r.picked = true
		r.pickedArea = r.cursorArea
		r.pickedIndex = r.cursorIndex
		return
	}
	srcArea, srcIdx := r.pickedArea, r.pickedIndex
	dstArea, dstIdx := r.cursorArea, r.cursorIndex
	r.picked = false
	if srcArea == dstArea && srcIdx == dstIdx {
		return
	}
	r.dispatchController(func(c Controller) { c.OnMoveLetter(srcArea, srcIdx, dstArea, dstIdx) })
}

func (r *Root) renderLanding() string {
	header := r.theme.Header.Width(max(1, r.cols)).Render("Anagram Word Study")
	body := r.landingMD
	if r.markdown != nil && body != "" {
		if rendered, err := r.markdown.Render(body); err == nil {
			body = rendered
		}
	}
	if strings.TrimSpace(body) == "" {
		body = "Welcome. Press Enter to begin."
	}
	lines := strings.Split(strings.TrimSuffix(body, "\n"), "\n")
	lines = append(lines, "", "Enter: Begin")
	panel := r.drawPanel("Welcome", lines, min(84, r.cols), min(len(lines)+2, r.rows-2))
	return header + "\n" + lipgloss.Place(r.cols, max(1, r.rows-1), lipgloss.Center, lipgloss.Center, panel)
}

func (r *Root) renderIDEntry() string {
	header := r.theme.Header.Width(max(1, r.cols)).Render("Anagram Word Study")
	lines := []string{
		"Enter your Prolific ID to continue.",
		"",
		r.idInput.View(),
	}
	if r.idError != "" {
		lines = append(lines, "", r.theme.Invalid.Render(r.idError))
	}
	lines = append(lines, "", "Enter: Continue")
	panel := r.drawPanel("Participant ID", lines, min(60, r.cols), len(lines)+2)
	return header + "\n" + lipgloss.Place(r.cols, max(1, r.rows-1), lipgloss.Center, lipgloss.Center, panel)
}

func (r *Root) renderTutorial() string {
	switch r.tutorial.Stage {
	case TutorialOverview:
		return r.renderTutorialOverview()
	case TutorialResultsStage:
		return r.renderTutorialResults()
	default:
		return r.renderPlay("Practice Round", r.tutorial.Word, r.tutorial.TimeLimit, r.tutorial.CanSubmit, r.tutorial.MinLength)
	}
}

func (r *Root) renderTutorialOverview() string {
	header := r.theme.Header.Width(max(1, r.cols)).Render("Anagram Word Study - Practice")
	if r.tutorial.Loading {
		return header + "\n" + r.spinnerLine("Preparing your practice round...")
	}
	lines := []string{
		"You will see a scrambled word. Build real words from its letters.",
		"",
		"- Move letters between the pool and your word with the arrow keys,",
		"  then Enter to pick a letter and Enter again to place it.",
		"- Press v to validate the word you built.",
		fmt.Sprintf("- Words must be at least %d letters long.", max(1, r.tutorial.MinLength)),
		"- Longer words earn bigger rewards.",
		"",
		fmt.Sprintf("The practice round lasts %s.", formatSeconds(r.tutorial.TimeLimit)),
	}
	if r.tutorial.Error != "" {
		lines = append(lines, "", r.theme.Invalid.Render(r.tutorial.Error), "Press Enter to retry.")
	} else {
		lines = append(lines, "", "Enter: Start practice")
	}
	panel := r.drawPanel("How it works", lines, min(76, r.cols), len(lines)+2)
	return header + "\n" + lipgloss.Place(r.cols, max(1, r.rows-1), lipgloss.Center, lipgloss.Center, panel)
}

func (r *Root) renderTutorialResults() string {
	header := r.theme.Header.Width(max(1, r.cols)).Render("Anagram Word Study - Practice Results")
	res := r.tutorialResults
	var lines []string
	lines = append(lines, fmt.Sprintf("Valid words: %d", len(res.Valid)))
	for _, row := range res.Valid {
		lines = append(lines, "  "+r.theme.Valid.Render(r.mark(true))+" "+fmt.Sprintf("%s (+%dp)", row.Word, row.Reward))
	}
	if len(res.Invalid) > 0 {
		lines = append(lines, "", fmt.Sprintf("Not accepted: %d", len(res.Invalid)))
		for _, row := range res.Invalid {
			lines = append(lines, "  "+r.theme.Invalid.Render(r.mark(false))+" "+row.Word)
		}
	}
	lines = append(lines, "", fmt.Sprintf("Practice reward: %dp", res.ShownReward))
	if res.RewardCapped {
		lines = append(lines, r.theme.Muted.Render("(practice rewards are capped and not paid out)"))
	}
	lines = append(lines, "", "Enter: Continue to the main game")
	panel := r.drawPanel("Practice Complete", lines, min(70, r.cols), min(len(lines)+2, r.rows-2))
	return header + "\n" + lipgloss.Place(r.cols, max(1, r.rows-1), lipgloss.Center, lipgloss.Center, panel)
}

func (r *Root) renderGame() string {
	switch r.game.Stage {
	case GameLoading:
		header := r.theme.Header.Width(max(1, r.cols)).Render("Anagram Word Study")
		if r.game.Error != "" {
			lines := []string{r.theme.Invalid.Render(r.game.Error), "", "r: Retry"}
			panel := r.drawPanel("Connection Problem", lines, min(60, r.cols), len(lines)+2)
			return header + "\n" + lipgloss.Place(r.cols, max(1, r.rows-1), lipgloss.Center, lipgloss.Center, panel)
		}
		return header + "\n" + r.spinnerLine("Loading the game...")
	case GameMessage:
		return r.renderGameMessage()
	case GameSubmitting:
		header := r.theme.Header.Width(max(1, r.cols)).Render(r.gameTitle())
		return header + "\n" + r.spinnerLine("Submitting your words...")
	case GameTimeUp:
		header := r.theme.Header.Width(max(1, r.cols)).Render(r.gameTitle())
		lines := []string{
			"Time is up, but your words could not be submitted.",
			"",
		}
		if r.game.Error != "" {
			lines = append(lines, r.theme.Invalid.Render(r.game.Error), "")
		}
		lines = append(lines, "r: Retry submission")
		panel := r.drawPanel("Submission Pending", lines, min(64, r.cols), len(lines)+2)
		return header + "\n" + lipgloss.Place(r.cols, max(1, r.rows-1), lipgloss.Center, lipgloss.Center, panel)
	default:
		return r.renderPlay(r.gameTitle(), r.game.Anagram, 0, r.game.CanSubmit, r.game.MinLength)
	}
}

func (r *Root) gameTitle() string {
	if r.game.RoundCount > 0 {
		return fmt.Sprintf("Anagram Word Study - Round %d of %d", r.game.RoundIndex+1, r.game.RoundCount)
	}
	return "Anagram Word Study"
}

func (r *Root) renderGameMessage() string {
	header := r.theme.Header.Width(max(1, r.cols)).Render("Anagram Word Study - Please Read")
	body := r.game.Message
	if r.markdown != nil && body != "" {
		if rendered, err := r.markdown.Render(body); err == nil {
			body = rendered
		}
	}
	lines := strings.Split(strings.TrimSuffix(body, "\n"), "\n")
	lines = append(lines, "")
	if r.game.MessageSec > 0 {
		lines = append(lines, r.theme.Muted.Render(fmt.Sprintf("You can continue in %d...", r.game.MessageSec)))
	} else {
		lines = append(lines, "Enter: I understand, continue")
	}
	panel := r.drawPanel("Important", lines, min(80, r.cols), min(len(lines)+2, r.rows-2))
	return header + "\n" + lipgloss.Place(r.cols, max(1, r.rows-1), lipgloss.Center, lipgloss.Center, panel)
}

// renderPlay draws the shared play surface: timer, letter rows, and ledger.
func (r *Root) renderPlay(title, anagram string, timeLimit int, canSubmit bool, minLength int) string {
	header := r.theme.Header.Width(max(1, r.cols)).Render(title)

	timerStyle := r.theme.Timer
	if r.remaining <= 30 {
		timerStyle = r.theme.TimerLow
	}
	limit := timeLimit
	if limit <= 0 {
		limit = max(1, r.remaining)
	}
	bar := r.timerBar
	bar.SetWidth(min(40, max(10, r.cols/3)))
	frac := float64(r.remaining) / float64(max(1, limit))
	if frac > 1 {
		frac = 1
	}
	timerLine := timerStyle.Render("Time left: "+formatSeconds(r.remaining)) + "  " + bar.ViewAs(frac)

	var b strings.Builder
	b.WriteString(timerLine + "\n\n")
	if anagram != "" {
		b.WriteString(r.theme.Muted.Render("Scrambled word: ") + r.theme.Accent.Render(strings.ToUpper(anagram)) + "\n\n")
	}
	b.WriteString(r.theme.Muted.Render("Your word") + "\n")
	b.WriteString(r.renderLetterRow(r.solution, AreaSolution) + "\n\n")
	b.WriteString(r.theme.Muted.Render("Letter pool") + "\n")
	b.WriteString(r.renderLetterRow(r.pool, AreaPool) + "\n\n")
	b.WriteString(fmt.Sprintf("Words must be at least %d letters. Total reward this round: %dp\n", max(1, minLength), r.totalReward))

	left := r.drawPanel("Workspace", strings.Split(strings.TrimSuffix(b.String(), "\n"), "\n"), workspaceWidth(r.cols, r.layout), max(10, r.rows-4))
	ledgerPanel := r.drawPanel("Validated Words", r.ledgerLines(), max(24, r.cols-lipgloss.Width(left)), max(10, r.rows-4))

	var body string
	if r.layout == LayoutWide {
		body = lipgloss.JoinHorizontal(lipgloss.Top, left, ledgerPanel)
	} else {
		body = left + "\n" + r.drawPanel("Validated Words", r.ledgerLines(), r.cols, max(6, r.rows-lipgloss.Height(left)-3))
	}

	status := r.statusLine(canSubmit)
	return header + "\n" + body + "\n" + status
}

func workspaceWidth(cols int, layout LayoutMode) int {
	if layout == LayoutWide {
		return min(70, max(44, cols*2/3))
	}
	return cols
}

func (r *Root) renderLetterRow(letters []rune, area int) string {
	if len(letters) == 0 && !(r.cursorArea == area) {
		return r.theme.Muted.Render("(empty)")
	}
	var parts []string
	for i, letter := range letters {
		cell := fmt.Sprintf("[%c]", letter)
		style := r.theme.LetterPool
		if r.picked && r.pickedArea == area && r.pickedIndex == i {
			style = r.theme.LetterPicked
		}
		if r.cursorArea == area && r.cursorIndex == i {
			cell = fmt.Sprintf(">%c<", letter)
			style = r.theme.Accent
		}
		parts = append(parts, style.Render(cell))
	}
	// With a lifted letter the cursor may sit one past the end, marking an
	// append position.
	if r.picked && r.cursorArea == area && r.cursorIndex == len(letters) {
		parts = append(parts, r.theme.Accent.Render(">_<"))
	}
	if len(parts) == 0 {
		return r.theme.Muted.Render("(empty)")
	}
	return strings.Join(parts, " ")
}

func (r *Root) ledgerLines() []string {
	if len(r.ledger) == 0 {
		return []string{"No validated words yet.", "", "Build a word and press v."}
	}
	lines := make([]string, 0, len(r.ledger)+2)
	for i, row := range r.ledger {
		prefix := "  "
		if i == r.ledgerIndex {
			prefix = "> "
		}
		mark := r.theme.Valid.Render(r.mark(true))
		rewardText := fmt.Sprintf("+%dp", row.Reward)
		if !row.Valid {
			mark = r.theme.Invalid.Render(r.mark(false))
			rewardText = "not a word"
		}
		lines = append(lines, fmt.Sprintf("%s%s %s  %s", prefix, mark, row.Word, rewardText))
	}
	lines = append(lines, "", fmt.Sprintf("Total: %dp", r.totalReward), "Tab: select  x: remove")
	return lines
}

func (r *Root) statusLine(canSubmit bool) string {
	keys := r.help.View(r.keymap)
	if keys == "" {
		keys = "Enter Pick/drop  v Validate  s Submit  Bksp Return  x Remove  Ctrl+Q Quit"
	}
	if !canSubmit {
		keys += " | " + r.theme.Muted.Render("submit locked")
	}
	if r.statusFlash != "" {
		keys += " | " + r.statusFlash
	}
	keys = trimForWidth(keys, max(1, r.cols-1))
	return r.theme.Status.Width(max(1, r.cols)).Render(keys)
}

func (r *Root) renderSurvey() string {
	header := r.theme.Header.Width(max(1, r.cols)).Render("Anagram Word Study - Survey")
	lines := []string{
		"Please complete the short survey, then enter the completion code",
		"shown at the end of it.",
		"",
		"Survey: " + r.theme.Accent.Render(r.survey.URL),
	}
	if r.survey.Opened {
		lines = append(lines, r.theme.Muted.Render("(opened in your browser)"))
	}
	lines = append(lines, "", r.codeInput.View())
	if r.survey.Error != "" {
		lines = append(lines, "", r.theme.Invalid.Render(r.survey.Error))
	}
	lines = append(lines, "", "Ctrl+O: Open survey    Enter: Submit code")
	panel := r.drawPanel("Survey", lines, min(76, r.cols), len(lines)+2)
	return header + "\n" + lipgloss.Place(r.cols, max(1, r.rows-1), lipgloss.Center, lipgloss.Center, panel)
}

func (r *Root) renderMeaning() string {
	header := r.theme.Header.Width(max(1, r.cols)).Render("Anagram Word Study - Word Meanings")
	area := r.meaningInput
	area.SetWidth(min(66, max(30, r.cols-10)))
	lines := []string{
		fmt.Sprintf("Word %d of %d", r.meaning.Index+1, max(1, r.meaning.Total)),
		"",
		"What does this word mean?",
		"",
		"  " + r.theme.Accent.Render(r.meaning.Word),
		"",
	}
	lines = append(lines, strings.Split(strings.TrimSuffix(area.View(), "\n"), "\n")...)
	if r.meaning.Error != "" {
		lines = append(lines, "", r.theme.Invalid.Render(r.meaning.Error))
	}
	lines = append(lines, "", "Ctrl+S: Save and continue")
	panel := r.drawPanel("Meaning Check", lines, min(76, r.cols), min(len(lines)+2, r.rows-2))
	return header + "\n" + lipgloss.Place(r.cols, max(1, r.rows-1), lipgloss.Center, lipgloss.Center, panel)
}

func (r *Root) renderDebrief() string {
	header := r.theme.Header.Width(max(1, r.cols)).Render("Anagram Word Study - Debrief")
	if r.debrief.Loading {
		return header + "\n" + r.spinnerLine("Fetching your results...")
	}
	if r.debrief.Stage == DebriefResults {
		var lines []string
		if r.debrief.Error != "" {
			lines = append(lines, r.theme.Invalid.Render(r.debrief.Error), "", "r: Retry    Enter: Continue anyway")
		} else {
			lines = append(lines, fmt.Sprintf("You found %d valid words.", len(r.debrief.ValidWords)))
			for _, row := range r.debrief.ValidWords {
				lines = append(lines, fmt.Sprintf("  %s %s (+%dp)", r.theme.Valid.Render(r.mark(true)), row.Word, row.Reward))
			}
			if r.debrief.InvalidCount > 0 {
				lines = append(lines, fmt.Sprintf("Attempts not accepted: %d", r.debrief.InvalidCount))
			}
			lines = append(lines, "", fmt.Sprintf("Total reward: %dp", r.debrief.TotalReward))
			if r.debrief.Compensation != "" {
				lines = append(lines, r.theme.Muted.Render(r.debrief.Compensation))
			}
			lines = append(lines, "", "Enter: Continue")
		}
		panel := r.drawPanel("Your Results", lines, min(72, r.cols), min(len(lines)+2, r.rows-2))
		return header + "\n" + lipgloss.Place(r.cols, max(1, r.rows-1), lipgloss.Center, lipgloss.Center, panel)
	}

	items := r.disclosureItems()
	lines := []string{
		"Honesty check: for which words did you use outside help",
		"(a dictionary, a solver, or another person)?",
		"This answer does not affect your payment.",
		"",
	}
	for i, item := range items {
		cursor := "  "
		if i == wrapIndex(r.disclosureIndex, len(items)) {
			cursor = "> "
		}
		box := "[ ]"
		if (item == "None of these" && r.disclosedNone) || r.disclosed[item] {
			box = "[x]"
		}
		lines = append(lines, cursor+box+" "+item)
	}
	lines = append(lines, "", "Space: Toggle    Enter: Confirm")
	panel := r.drawPanel("Before You Go", lines, min(64, r.cols), min(len(lines)+2, r.rows-2))
	return header + "\n" + lipgloss.Place(r.cols, max(1, r.rows-1), lipgloss.Center, lipgloss.Center, panel)
}

func (r *Root) renderThankYou() string {
	header := r.theme.Header.Width(max(1, r.cols)).Render("Anagram Word Study - Thank You")
	lines := []string{
		"Thank you for taking part in this study.",
		"",
		fmt.Sprintf("Valid words: %d", r.thanks.ValidWords),
		fmt.Sprintf("Total reward: %dp", r.thanks.TotalReward),
	}
	if r.thanks.Duration != "" {
		lines = append(lines, fmt.Sprintf("Time taken: %s", r.thanks.Duration))
	}
	lines = append(lines, "", "You may close this window. Ctrl+Q: Exit")
	panel := r.drawPanel("All Done", lines, min(56, r.cols), len(lines)+2)
	return header + "\n" + lipgloss.Place(r.cols, max(1, r.rows-1), lipgloss.Center, lipgloss.Center, panel)
}

func (r *Root) renderFinalDialog() string {
	lines := []string{
		"That was the last anagram.",
		"Your words have been submitted.",
		"",
		"Enter: Continue",
	}
	return r.drawPanel("Round Complete", lines, 44, len(lines)+2)
}

func (r *Root) renderNotification() string {
	if r.notifyText == "" || r.overlayPos < 0.05 {
		return ""
	}
	text := trimForWidth(r.notifyText, max(10, r.cols-8))
	w := len([]rune(text)) + 4
	return r.drawPanel("", []string{r.theme.Notification.Render(text)}, w, 3)
}

func (r *Root) spinnerLine(text string) string {
	line := strings.TrimSpace(r.waitSpin.View()) + " " + text
	return lipgloss.Place(r.cols, max(1, r.rows-1), lipgloss.Center, lipgloss.Center, r.theme.PanelBody.Render(line))
}

func (r *Root) mark(ok bool) string {
	if ok {
		if r.ascii {
			return "v"
		}
		return "✓"
	}
	if r.ascii {
		return "x"
	}
	return "✗"
}

func (r *Root) drawPanel(title string, lines []string, width, height int) string {
	width = max(4, width)
	height = max(3, height)
	innerW := width - 2
	innerH := height - 2

	h := "─"
	v := "│"
	tl := "┌"
	tr := "┐"
	bl := "└"
	br := "┘"
	if r.ascii {
		h = "-"
		v = "|"
		tl, tr, bl, br = "+", "+", "+", "+"
	}

	top := tl + strings.Repeat(h, innerW) + tr
	if title != "" && innerW > 2 {
		t := " " + title + " "
		runes := []rune(top)
		start := 1
		for i, ch := range []rune(t) {
			pos := start + i
			if pos >= len(runes)-1 {
				break
			}
			runes[pos] = ch
		}
		top = string(runes)
	}

	out := make([]string, 0, height)
	out = append(out, r.theme.PanelBorder.Render(top))
	for row := 0; row < innerH; row++ {
		line := ""
		if row < len(lines) {
			line = lines[row]
		}
		line = padRune(line, innerW)
		out = append(out, r.theme.PanelBorder.Render(v)+r.theme.PanelBody.Render(line)+r.theme.PanelBorder.Render(v))
	}
	out = append(out, r.theme.PanelBorder.Render(bl+strings.Repeat(h, innerW)+br))
	return strings.Join(out, "\n")
}

func (r *Root) animateIfNeeded() tea.Cmd {
	target := 0.0
	if r.notifyText != "" {
		target = 1.0
	}
	if r.shouldAnimate(target) {
		return animateTickCmd()
	}
	return nil
}

func (r *Root) shouldAnimate(target float64) bool {
	if r.motionLevel == "off" {
		return false
	}
	if target > 0 {
		return r.overlayPos < 0.999 || abs(r.overlayVel) > 0.001
	}
	return r.overlayPos > 0.001 || abs(r.overlayVel) > 0.001
}

func clockTickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg { return clockMsg(t) })
}

func animateTickCmd() tea.Cmd {
	return tea.Tick(time.Second/60, func(t time.Time) tea.Msg { return animateMsg(t) })
}

func spinnerTickCmd(model spinner.Model) tea.Cmd {
	return func() tea.Msg {
		return model.Tick()
	}
}

func formatSeconds(total int) string {
	if total < 0 {
		total = 0
	}
	return fmt.Sprintf("%d:%02d", total/60, total%60)
}

func wrapIndex(i, n int) int {
	if n <= 0 {
		return 0
	}
	if i < 0 {
		i = n - 1
	}
	if i >= n {
		i = 0
	}
	return i
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

func padRune(s string, width int) string {
	if width <= 0 {
		return ""
	}
	r := []rune(strings.ReplaceAll(s, "\t", "    "))
	if len(r) > width {
		r = r[:width]
	}
	if len(r) < width {
		r = append(r, []rune(strings.Repeat(" ", width-len(r)))...)
	}
	return string(r)
}

func composeOverlay(base, overlay string, cols, rows int) string {
	if cols <= 0 || rows <= 0 {
		return base
	}
	overlayLines := strings.Split(strings.TrimRight(ansi.Strip(overlay), "\n"), "\n")
	ow := 1
	for _, line := range overlayLines {
		if lw := len([]rune(line)); lw > ow {
			ow = lw
		}
	}
	startRow := (rows - len(overlayLines)) / 2
	startCol := (cols - ow) / 2
	return composeOverlayAt(base, overlay, cols, rows, startRow, startCol)
}

func composeOverlayAt(base, overlay string, cols, rows, startRow, startCol int) string {
	if cols <= 0 || rows <= 0 {
		return base
	}
	base = ansi.Strip(base)
	overlay = ansi.Strip(overlay)
	baseLines := strings.Split(base, "\n")
	if len(baseLines) < rows {
		pad := make([]string, rows-len(baseLines))
		baseLines = append(baseLines, pad...)
	}
	for i := 0; i < rows; i++ {
		baseLines[i] = padRune(baseLines[i], cols)
	}

	overlayLines := strings.Split(strings.TrimRight(overlay, "\n"), "\n")
	if len(overlayLines) == 0 {
		return strings.Join(baseLines[:rows], "\n")
	}
	ow := 1
	for _, line := range overlayLines {
		if lw := len([]rune(line)); lw > ow {
			ow = lw
		}
	}
	if ow > cols {
		ow = cols
	}
	if startRow < 0 {
		startRow = 0
	}
	if startCol < 0 {
		startCol = 0
	}

	for i, line := range overlayLines {
		row := startRow + i
		if row < 0 || row >= rows {
			continue
		}
		dst := []rune(baseLines[row])
		src := []rune(line)
		if len(src) > ow {
			src = src[:ow]
		}
		for j := 0; j < ow && startCol+j < len(dst); j++ {
			dst[startCol+j] = ' '
		}
		for j := 0; j < len(src) && startCol+j < len(dst); j++ {
			dst[startCol+j] = src[j]
		}
		baseLines[row] = string(dst)
	}
	return strings.Join(baseLines[:rows], "\n")
}

func trimForWidth(s string, width int) string {
	if width <= 0 {
		return ""
	}
	r := []rune(strings.ReplaceAll(ansi.Strip(s), "\n", " "))
	if len(r) <= width {
		return string(r)
	}
	if width == 1 {
		return "…"
	}
	return string(r[:width-1]) + "…"
}

func normalizeStyleVariant(v string) string {
	switch strings.TrimSpace(v) {
	case "calm_blue", "warm_paper", "high_contrast":
		return strings.TrimSpace(v)
	default:
		return "calm_blue"
	}
}

func normalizeMotionLevel(v string) string {
	switch strings.TrimSpace(v) {
	case "off", "reduced", "full":
		return strings.TrimSpace(v)
	default:
		return "full"
	}
}

func (r *Root) recordInputEvent(event string) {
	r.lastInputEvent = trimForWidth(strings.TrimSpace(event), 160)
}

func (r *Root) onModelPanic(where string, recovered any, msg tea.Msg) {
	if r.statusFlash == "" {
		r.statusFlash = "Recovered UI panic"
	}

	message := fmt.Sprintf("%v", recovered)
	msgType := ""
	if msg != nil {
		msgType = fmt.Sprintf("%T", msg)
	}
	r.logger.Error("ui.panic_recovered", map[string]any{
		"where":       where,
		"panic":       message,
		"messageType": msgType,
		"screen":      r.screen,
		"layout":      r.layout,
		"cols":        r.cols,
		"rows":        r.rows,
		"last_input":  r.lastInputEvent,
		"stack":       string(debug.Stack()),
	})
}

var _ tea.Model = (*Root)(nil)
var _ View = (*Root)(nil)
