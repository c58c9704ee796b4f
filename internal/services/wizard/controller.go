// Package wizard implements the questionnaire state machine: step sequencing,
// merging of each step's answers into the draft, save-before-advance and
// resuming from the stored draft on login.
package wizard

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mcoot/bodaform/internal/model"
	"github.com/mcoot/bodaform/internal/storage"
)

// Config holds wizard behaviour settings
type Config struct {
	// AdvanceOnSaveFailure moves to the next step even when the draft could
	// not be saved. The failure is only logged.
	AdvanceOnSaveFailure bool
}

// DefaultConfig returns the default wizard configuration
func DefaultConfig() Config {
	return Config{AdvanceOnSaveFailure: false}
}

// Controller drives wizard sessions against a record store
type Controller struct {
	store  storage.RecordStore
	logger *slog.Logger
	cfg    Config
}

// NewController creates a new wizard Controller
func NewController(store storage.RecordStore, logger *slog.Logger, cfg Config) *Controller {
	return &Controller{
		store:  store,
		logger: logger,
		cfg:    cfg,
	}
}

// Start opens a session for a freshly logged-in user. The stored draft is
// loaded and the session always begins on the intro at step 0.
func (c *Controller) Start(ctx context.Context, identity model.Identity) (Session, error) {
	if identity.IsAdmin() {
		return Session{}, ErrAdminWizard
	}
	if err := model.ValidateIdentity(identity.Username); err != nil {
		return Session{}, err
	}

	draft, err := c.store.LoadDraft(ctx, identity.Username)
	if err != nil {
		c.logger.Error("failed to load draft",
			slog.String("username", identity.Username),
			slog.String("error", err.Error()),
		)
		return Session{}, fmt.Errorf("load draft: %w", err)
	}

	role := identity.Role
	if role == "" {
		role = model.RoleUser
	}

	c.logger.Info("wizard started",
		slog.String("username", identity.Username),
		slog.Int("answered", len(draft)),
	)

	return Session{
		Username:  identity.Username,
		Role:      role,
		Phase:     PhaseIntro,
		StepIndex: 0,
		Direction: DirectionNone,
		Draft:     draft.Clone(),
	}, nil
}

// CompleteIntro leaves the intro and enters the questionnaire at step 0
func (c *Controller) CompleteIntro(s Session) (Session, error) {
	if s.Phase != PhaseIntro {
		return s, fmt.Errorf("%w: complete intro from %s", ErrInvalidTransition, s.Phase)
	}
	out := s.clone()
	out.Phase = PhaseQuestionnaire
	out.StepIndex = 0
	out.Direction = DirectionNone
	return out, nil
}

// Next merges the current step's answers into the draft, saves the whole draft
// and then advances. On the last step a successful save completes the session.
//
// The returned Session is always usable: on validation errors it is the input
// unchanged, on ErrSaveFailed it carries the merged draft marked Dirty.
func (c *Controller) Next(ctx context.Context, s Session, output model.Draft) (Session, error) {
	if s.Phase != PhaseQuestionnaire {
		return s, fmt.Errorf("%w: next from %s", ErrInvalidTransition, s.Phase)
	}

	step := s.Step()
	if err := validateStepOutput(step, output); err != nil {
		return s, err
	}

	merged := s.Draft.Merge(output)

	if missing := missingRequired(step, merged); len(missing) > 0 {
		return s, &MissingFieldsError{Fields: missing}
	}

	out := s.clone()
	out.Draft = merged

	if err := c.store.SaveDraft(ctx, s.Username, merged); err != nil {
		c.logger.Error("failed to save draft",
			slog.String("username", s.Username),
			slog.Int("step", s.StepIndex),
			slog.String("error", err.Error()),
		)
		out.Dirty = true
		if !c.cfg.AdvanceOnSaveFailure {
			return out, fmt.Errorf("%w: %w", ErrSaveFailed, err)
		}
	} else {
		out.Dirty = false
	}

	if s.IsLast() {
		out.Phase = PhaseCompleted
		out.Completed = true
		out.Direction = DirectionForward
		c.logger.Info("questionnaire completed",
			slog.String("username", s.Username),
			slog.Int("answered", len(merged)),
		)
		return out, nil
	}

	out.StepIndex = s.StepIndex + 1
	out.Direction = DirectionForward
	return out, nil
}

// Back moves to the previous step without merging or saving
func (c *Controller) Back(s Session) (Session, error) {
	if s.Phase != PhaseQuestionnaire || s.StepIndex == 0 {
		return s, ErrCannotGoBack
	}
	out := s.clone()
	out.StepIndex = s.StepIndex - 1
	out.Direction = DirectionBackward
	return out, nil
}

// Logout drops the in-memory session. The stored draft is left as is.
func (c *Controller) Logout(s Session) Session {
	if s.Username != "" {
		c.logger.Info("wizard logout", slog.String("username", s.Username))
	}
	return Session{
		Phase: PhaseLoggedOut,
		Draft: model.NewDraft(),
	}
}

func validateStepOutput(step model.Step, output model.Draft) error {
	for _, key := range output.Keys() {
		if !step.HasField(key) {
			return fmt.Errorf("%w: %w: %q not in step %s", model.ErrInvalidDraft, ErrFieldNotInStep, key, step.Name)
		}
	}
	return output.Validate()
}

func missingRequired(step model.Step, draft model.Draft) []string {
	var missing []string
	for _, f := range step.Fields() {
		if f.Required && !draft.IsAnswered(f.Key) {
			missing = append(missing, f.Key)
		}
	}
	return missing
}
