package study

// Phase is the participant's position in the session. Transitions are
// strictly linear; there is no way back.
type Phase int

const (
	PhaseLanding Phase = iota
	PhaseIDEntry
	PhaseTutorial
	PhaseGame
	PhaseSurvey
	PhaseMeaning
	PhaseDebrief
	PhaseThankYou
)

func (p Phase) String() string {
	switch p {
	case PhaseLanding:
		return "landing"
	case PhaseIDEntry:
		return "id_entry"
	case PhaseTutorial:
		return "tutorial"
	case PhaseGame:
		return "main_game"
	case PhaseSurvey:
		return "survey"
	case PhaseMeaning:
		return "word_meaning"
	case PhaseDebrief:
		return "debrief"
	case PhaseThankYou:
		return "thank_you"
	default:
		return "unknown"
	}
}
