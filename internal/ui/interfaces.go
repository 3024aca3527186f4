package ui

// Controller receives participant actions from the view. Implementations
// must tolerate calls arriving on their own goroutines and ignore actions
// that do not match the session's current phase.
type Controller interface {
	OnBeginStudy()
	OnSubmitParticipantID(id string)
	OnTutorialStart()
	OnMoveLetter(srcArea, srcIndex, dstArea, dstIndex int)
	OnValidateWord()
	OnRemoveWord(index int)
	OnSubmitRound()
	OnTutorialFinish()
	OnAcknowledgeMessage()
	OnAcknowledgeFinalRound()
	OnOpenSurvey()
	OnSubmitSurveyCode(code string)
	OnSubmitMeaning(word, meaning string)
	OnSubmitDisclosure(words []string, none bool)
	OnContinueDebrief()
	OnRetry()
	OnUserActivity()
	OnPageHidden()
	OnPageVisible()
	OnResize(cols, rows int)
	OnQuit()
}

// View is the surface the controller drives. Set* methods are safe to call
// from any goroutine; the view marshals them onto its own loop.
type View interface {
	Run() error
	Stop()
	SetController(Controller)
	SetScreen(Screen)
	SetLanding(markdown string)
	SetIDEntryError(msg string)
	SetTutorial(TutorialState)
	SetTutorialResults(TutorialResults)
	SetGame(GameState)
	SetWorkspace(pool, solution []rune)
	SetLedger(rows []LedgerRow, totalReward int)
	SetTimer(secondsRemaining int)
	SetFinalRoundDialog(open bool)
	SetSurvey(SurveyState)
	SetMeaning(MeaningState)
	SetDebrief(DebriefState)
	SetThankYou(ThankYouState)
	SetNotification(msg string)
	FlashStatus(msg string)
	RequestDraw()
}

type Screen int

const (
	ScreenLanding Screen = iota
	ScreenIDEntry
	ScreenTutorial
	ScreenGame
	ScreenSurvey
	ScreenMeaning
	ScreenDebrief
	ScreenThankYou
)

type LayoutMode int

const (
	LayoutWide LayoutMode = iota
	LayoutCompact
	LayoutTooSmall
)

// Letter areas, indexes into the picker rows. Values match game.Area.
const (
	AreaPool     = 0
	AreaSolution = 1
)

type TutorialStage int

const (
	TutorialOverview TutorialStage = iota
	TutorialPlay
	TutorialResultsStage
)

type TutorialState struct {
	Stage     TutorialStage
	Word      string
	TimeLimit int
	MinLength int
	CanSubmit bool
	Loading   bool
	Error     string
}

type TutorialResults struct {
	Valid        []LedgerRow
	Invalid      []LedgerRow
	TotalReward  int
	ShownReward  int
	RewardCapped bool
}

type GameStage int

const (
	GameLoading GameStage = iota
	GameMessage
	GamePlay
	GameSubmitting
	GameTimeUp
)

type GameState struct {
	Stage      GameStage
	Message    string
	MessageSec int // seconds left before the message can be acknowledged
	Anagram    string
	RoundIndex int
	RoundCount int
	MinLength  int
	CanSubmit  bool
	Error      string
}

type LedgerRow struct {
	Word   string
	Reward int
	Valid  bool
}

type SurveyState struct {
	URL    string
	Opened bool
	Error  string
}

type MeaningState struct {
	Word  string
	Index int
	Total int
	Error string
}

type DebriefStage int

const (
	DebriefResults DebriefStage = iota
	DebriefDisclosure
)

type DebriefState struct {
	Stage        DebriefStage
	Loading      bool
	Error        string
	ValidWords   []LedgerRow
	InvalidCount int
	TotalReward  int
	Compensation string
	// Disclosure candidates, already sorted for display.
	Words []string
}

type ThankYouState struct {
	TotalReward int
	ValidWords  int
	Duration    string
}
