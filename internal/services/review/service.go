// Package review gives administrators a read-only view of the couples'
// questionnaires: completion per couple, a labelled review of one draft and a
// printable HTML export.
package review

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/mcoot/bodaform/internal/dependencies/clock"
	"github.com/mcoot/bodaform/internal/model"
	"github.com/mcoot/bodaform/internal/services/rules"
	"github.com/mcoot/bodaform/internal/storage"
)

// Progress summarises how far one couple has got
type Progress struct {
	Username          string
	Answered          int
	Applicable        int
	Percent           int
	CompletedSections int
}

// FieldAnswer is one answered question with its label and display value.
// Applicable is false for answers kept from a branch the couple later
// switched off; those do not count towards completion.
type FieldAnswer struct {
	Key        string
	Label      string
	Value      string
	Applicable bool
}

// SectionReview holds the answers of one section
type SectionReview struct {
	ID         string
	Title      string
	Fields     []FieldAnswer
	Answered   int
	Applicable int
}

// Complete reports whether every applicable field of the section is answered
func (s SectionReview) Complete() bool {
	return s.Applicable > 0 && s.Answered == s.Applicable
}

// Review is the labelled view of one couple's draft
type Review struct {
	Username    string
	Sections    []SectionReview
	Answered    int
	Applicable  int
	GeneratedAt time.Time
}

// Percent returns the share of applicable fields answered, rounded down
func (r *Review) Percent() int {
	return percent(r.Answered, r.Applicable)
}

// Service builds reviews from the credential and record stores
type Service struct {
	storage storage.Storage
	rules   *rules.Evaluator
	clock   clock.Clock
	logger  *slog.Logger
}

// New creates a new review Service
func New(store storage.Storage, evaluator *rules.Evaluator, clock clock.Clock, logger *slog.Logger) *Service {
	return &Service{
		storage: store,
		rules:   evaluator,
		clock:   clock,
		logger:  logger,
	}
}

// Overview lists every non-admin user with their completion, in creation order
func (s *Service) Overview(ctx context.Context) ([]Progress, error) {
	creds, err := s.storage.ListCredentials(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]Progress, 0, len(creds))
	for _, c := range creds {
		identity := c.Identity()
		if identity.IsAdmin() {
			continue
		}

		r, err := s.Review(ctx, identity.Username)
		if err != nil {
			s.logger.Error("failed to build review",
				slog.String("username", identity.Username),
				slog.String("error", err.Error()),
			)
			return nil, err
		}

		completed := 0
		for _, sec := range r.Sections {
			if sec.Complete() {
				completed++
			}
		}

		out = append(out, Progress{
			Username:          identity.Username,
			Answered:          r.Answered,
			Applicable:        r.Applicable,
			Percent:           r.Percent(),
			CompletedSections: completed,
		})
	}
	return out, nil
}

// Review builds the labelled review of one user's draft. Unanswered fields
// are left out. Unknown users are model.ErrUserNotFound.
func (s *Service) Review(ctx context.Context, username string) (*Review, error) {
	if err := model.ValidateIdentity(username); err != nil {
		return nil, err
	}
	if _, err := s.storage.GetCredential(ctx, username); err != nil {
		return nil, err
	}

	draft, err := s.storage.LoadDraft(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("load draft %s: %w", username, err)
	}
	return s.Build(username, draft)
}

// Build assembles a review from an already loaded draft
func (s *Service) Build(username string, draft model.Draft) (*Review, error) {
	r := &Review{
		Username:    username,
		Sections:    make([]SectionReview, 0, len(model.Sections)),
		GeneratedAt: s.clock.Now(),
	}

	for _, sec := range model.Sections {
		applicable, err := s.rules.Applicable(sec.Fields, draft)
		if err != nil {
			return nil, err
		}

		applies := make(map[string]bool, len(applicable))
		for _, f := range applicable {
			applies[f.Key] = true
		}

		sr := SectionReview{
			ID:         sec.ID,
			Title:      sec.Title,
			Fields:     []FieldAnswer{},
			Applicable: len(applicable),
		}
		for _, f := range sec.Fields {
			if !draft.IsAnswered(f.Key) {
				continue
			}
			if applies[f.Key] {
				sr.Answered++
			}
			sr.Fields = append(sr.Fields, FieldAnswer{
				Key:        f.Key,
				Label:      f.Label,
				Value:      draft.Display(f.Key),
				Applicable: applies[f.Key],
			})
		}

		r.Answered += sr.Answered
		r.Applicable += sr.Applicable
		r.Sections = append(r.Sections, sr)
	}

	return r, nil
}

func percent(n, of int) int {
	if of == 0 {
		return 0
	}
	return n * 100 / of
}
