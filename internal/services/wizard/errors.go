package wizard

import (
	"errors"
	"strings"
)

// Wizard errors
var (
	ErrInvalidTransition = errors.New("transition not allowed in current phase")
	ErrCannotGoBack      = errors.New("cannot go back from here")
	ErrAdminWizard       = errors.New("admins do not fill the questionnaire")
	ErrFieldNotInStep    = errors.New("field does not belong to current step")
	ErrMissingRequired   = errors.New("required fields missing")
	ErrSaveFailed        = errors.New("failed to save draft")
	ErrNoSession         = errors.New("no active wizard session")
)

// MissingFieldsError lists the required fields left unanswered on a step
type MissingFieldsError struct {
	Fields []string
}

func (e *MissingFieldsError) Error() string {
	return ErrMissingRequired.Error() + ": " + strings.Join(e.Fields, ", ")
}

func (e *MissingFieldsError) Is(target error) bool {
	return target == ErrMissingRequired
}
