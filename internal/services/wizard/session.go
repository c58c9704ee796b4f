package wizard

import "github.com/mcoot/bodaform/internal/model"

// Phase is the coarse state of a wizard session
type Phase string

const (
	PhaseIntro         Phase = "intro"
	PhaseQuestionnaire Phase = "questionnaire"
	PhaseCompleted     Phase = "completed"
	PhaseLoggedOut     Phase = "logged_out"
)

// Direction is the last navigation direction, kept for presentation only
type Direction int

const (
	DirectionNone     Direction = 0
	DirectionForward  Direction = 1
	DirectionBackward Direction = -1
)

// Session is the state of one couple working through the questionnaire.
// It is a value: every Controller operation returns a new Session and never
// mutates the one it was given.
type Session struct {
	Username  string
	Role      model.Role
	Phase     Phase
	StepIndex int
	Direction Direction
	Completed bool
	// Dirty is set when the last save failed and the draft holds unsaved answers
	Dirty bool
	Draft model.Draft
}

// Step returns the catalog step at the current index
func (s Session) Step() model.Step {
	step, err := model.StepAt(s.StepIndex)
	if err != nil {
		return model.Steps[0]
	}
	return step
}

// IsLast reports whether the session is on the final step
func (s Session) IsLast() bool {
	return s.StepIndex == model.StepCount-1
}

func (s Session) clone() Session {
	out := s
	out.Draft = s.Draft.Clone()
	return out
}
