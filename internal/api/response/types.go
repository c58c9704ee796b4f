package response

import (
	"time"

	"github.com/mcoot/bodaform/internal/model"
	"github.com/mcoot/bodaform/internal/services/auth"
	"github.com/mcoot/bodaform/internal/services/review"
	"github.com/mcoot/bodaform/internal/services/rules"
	"github.com/mcoot/bodaform/internal/services/wizard"
)

// HealthResponse is the response for the health check
type HealthResponse struct {
	Status string `json:"status"`
}

// SuccessResponse acknowledges a write
type SuccessResponse struct {
	Success bool `json:"success"`
}

// LoginResponse is the response for a successful login
type LoginResponse struct {
	Success   bool      `json:"success"`
	Username  string    `json:"username"`
	Role      string    `json:"role"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// LoginResponseFromSession creates a LoginResponse from a session
func LoginResponseFromSession(s *auth.Session) LoginResponse {
	return LoginResponse{
		Success:   true,
		Username:  s.Identity.Username,
		Role:      string(s.Identity.Role),
		Token:     s.Token,
		ExpiresAt: s.ExpiresAt,
	}
}

// User represents a user in API responses. It has no password field.
type User struct {
	Username string `json:"username"`
	Role     string `json:"role"`
}

// UserFromAuth converts an auth.User
func UserFromAuth(u *auth.User) User {
	return User{
		Username: u.Username,
		Role:     string(u.Role),
	}
}

// UsersFromAuth converts a list of auth.User
func UsersFromAuth(users []*auth.User) []User {
	out := make([]User, 0, len(users))
	for _, u := range users {
		out = append(out, UserFromAuth(u))
	}
	return out
}

// CreateUserResponse is the response for a created user
type CreateUserResponse struct {
	Success bool `json:"success"`
	User    User `json:"user"`
}

// Field describes one question of the current step
type Field struct {
	Key        string `json:"key"`
	Label      string `json:"label"`
	Kind       string `json:"kind"`
	Required   bool   `json:"required"`
	Applicable bool   `json:"applicable"`
	Value      any    `json:"value"`
}

// Step describes the current wizard step
type Step struct {
	Name    string  `json:"name"`
	Section string  `json:"section,omitempty"`
	Title   string  `json:"title,omitempty"`
	Fields  []Field `json:"fields"`
}

// WizardState is the wizard session as seen by a client
type WizardState struct {
	Username  string      `json:"username"`
	Role      string      `json:"role"`
	Phase     string      `json:"phase"`
	StepIndex int         `json:"step_index"`
	StepCount int         `json:"step_count"`
	Step      *Step       `json:"step,omitempty"`
	Direction int         `json:"direction"`
	Completed bool        `json:"completed"`
	Dirty     bool        `json:"dirty"`
	Draft     model.Draft `json:"draft"`
}

// WizardStateFromSession converts a wizard session, resolving which fields
// of the current step apply to the draft
func WizardStateFromSession(s wizard.Session, evaluator *rules.Evaluator) (WizardState, error) {
	draft := s.Draft
	if draft == nil {
		draft = model.NewDraft()
	}

	state := WizardState{
		Username:  s.Username,
		Role:      string(s.Role),
		Phase:     string(s.Phase),
		StepIndex: s.StepIndex,
		StepCount: model.StepCount,
		Direction: int(s.Direction),
		Completed: s.Completed,
		Dirty:     s.Dirty,
		Draft:     draft,
	}
	if s.Phase == wizard.PhaseLoggedOut {
		return state, nil
	}

	step := s.Step()
	view := &Step{Name: step.Name, Fields: []Field{}}
	if step.Section != nil {
		view.Section = step.Section.ID
		view.Title = step.Section.Title
	}
	for _, f := range step.Fields() {
		applies, err := evaluator.Applies(f, draft)
		if err != nil {
			return WizardState{}, err
		}
		view.Fields = append(view.Fields, Field{
			Key:        f.Key,
			Label:      f.Label,
			Kind:       string(f.Kind),
			Required:   f.Required,
			Applicable: applies,
			Value:      draft[f.Key],
		})
	}
	state.Step = view
	return state, nil
}

// Progress is one row of the admin overview
type Progress struct {
	Username          string `json:"username"`
	Answered          int    `json:"answered"`
	Applicable        int    `json:"applicable"`
	Percent           int    `json:"percent"`
	CompletedSections int    `json:"completed_sections"`
}

// OverviewFromReview converts the overview rows
func OverviewFromReview(rows []review.Progress) []Progress {
	out := make([]Progress, 0, len(rows))
	for _, p := range rows {
		out = append(out, Progress{
			Username:          p.Username,
			Answered:          p.Answered,
			Applicable:        p.Applicable,
			Percent:           p.Percent,
			CompletedSections: p.CompletedSections,
		})
	}
	return out
}

// FieldAnswer is one answered question
type FieldAnswer struct {
	Key        string `json:"key"`
	Label      string `json:"label"`
	Value      string `json:"value"`
	Applicable bool   `json:"applicable"`
}

// Section is one section of a review
type Section struct {
	ID         string        `json:"id"`
	Title      string        `json:"title"`
	Answered   int           `json:"answered"`
	Applicable int           `json:"applicable"`
	Complete   bool          `json:"complete"`
	Fields     []FieldAnswer `json:"fields"`
}

// Review is the labelled review of one couple
type Review struct {
	Username    string    `json:"username"`
	Answered    int       `json:"answered"`
	Applicable  int       `json:"applicable"`
	Percent     int       `json:"percent"`
	GeneratedAt time.Time `json:"generated_at"`
	Sections    []Section `json:"sections"`
}

// ReviewFromModel converts a review.Review
func ReviewFromModel(r *review.Review) Review {
	out := Review{
		Username:    r.Username,
		Answered:    r.Answered,
		Applicable:  r.Applicable,
		Percent:     r.Percent(),
		GeneratedAt: r.GeneratedAt,
		Sections:    make([]Section, 0, len(r.Sections)),
	}
	for _, sec := range r.Sections {
		fields := make([]FieldAnswer, 0, len(sec.Fields))
		for _, f := range sec.Fields {
			fields = append(fields, FieldAnswer{Key: f.Key, Label: f.Label, Value: f.Value, Applicable: f.Applicable})
		}
		out.Sections = append(out.Sections, Section{
			ID:         sec.ID,
			Title:      sec.Title,
			Answered:   sec.Answered,
			Applicable: sec.Applicable,
			Complete:   sec.Complete(),
			Fields:     fields,
		})
	}
	return out
}
