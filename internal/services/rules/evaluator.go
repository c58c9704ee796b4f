// Package rules decides which questionnaire fields apply to a draft.
//
// A field's AppliesIf condition is an expr-lang expression evaluated with the
// draft's answers as variables. Unanswered fields are nil inside the
// expression, so "withMusic != false" holds until the couple says no music.
package rules

import (
	"errors"
	"fmt"
	"sync"

	exprlang "github.com/expr-lang/expr"
	exprvm "github.com/expr-lang/expr/vm"

	"github.com/mcoot/bodaform/internal/model"
)

// ErrInvalidRule is returned when a condition fails to compile or does not yield a boolean
var ErrInvalidRule = errors.New("invalid field rule")

// Evaluator compiles field conditions once and evaluates them against drafts.
// It is safe for concurrent use.
type Evaluator struct {
	mu       sync.RWMutex
	programs map[string]*exprvm.Program
}

// New creates an Evaluator with an empty program cache
func New() *Evaluator {
	return &Evaluator{programs: make(map[string]*exprvm.Program)}
}

// NewForCatalog creates an Evaluator and compiles every catalog condition,
// failing fast on a malformed rule.
func NewForCatalog() (*Evaluator, error) {
	e := New()
	for _, f := range model.AllFields() {
		if f.AppliesIf == "" {
			continue
		}
		if _, err := e.program(f.AppliesIf); err != nil {
			return nil, fmt.Errorf("field %s: %w", f.Key, err)
		}
	}
	return e, nil
}

// Applies reports whether field is relevant given the current draft
func (e *Evaluator) Applies(field model.Field, draft model.Draft) (bool, error) {
	if field.AppliesIf == "" {
		return true, nil
	}

	program, err := e.program(field.AppliesIf)
	if err != nil {
		return false, fmt.Errorf("field %s: %w", field.Key, err)
	}

	env := make(map[string]any, len(draft))
	for k, v := range draft {
		env[k] = v
	}

	out, err := exprlang.Run(program, env)
	if err != nil {
		return false, fmt.Errorf("%w: field %s: %w", ErrInvalidRule, field.Key, err)
	}
	ok, isBool := out.(bool)
	if !isBool {
		return false, fmt.Errorf("%w: field %s: condition %q returned %T", ErrInvalidRule, field.Key, field.AppliesIf, out)
	}
	return ok, nil
}

// Applicable filters fields down to those that apply to the draft
func (e *Evaluator) Applicable(fields []model.Field, draft model.Draft) ([]model.Field, error) {
	out := make([]model.Field, 0, len(fields))
	for _, f := range fields {
		ok, err := e.Applies(f, draft)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, f)
		}
	}
	return out, nil
}

func (e *Evaluator) program(expression string) (*exprvm.Program, error) {
	e.mu.RLock()
	p, ok := e.programs[expression]
	e.mu.RUnlock()
	if ok {
		return p, nil
	}

	p, err := exprlang.Compile(expression,
		exprlang.Env(map[string]any{}),
		exprlang.AllowUndefinedVariables(),
		exprlang.AsBool(),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %w", ErrInvalidRule, expression, err)
	}

	e.mu.Lock()
	e.programs[expression] = p
	e.mu.Unlock()
	return p, nil
}
