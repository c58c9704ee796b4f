package factory

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/suite"

	"github.com/mcoot/bodaform/internal/model"
	"github.com/mcoot/bodaform/internal/services/review"
	"github.com/mcoot/bodaform/internal/services/wizard"
)

type IntegrationSuite struct {
	suite.Suite
	app *TestApp
	ctx context.Context
}

func TestIntegrationSuite(t *testing.T) {
	suite.Run(t, new(IntegrationSuite))
}

func (s *IntegrationSuite) SetupTest() {
	s.app = NewTestApp()
	s.ctx = context.Background()
}

// stepAnswers fills every required field of each step
var stepAnswers = map[int]model.Draft{
	1: {"brideName": "Ana", "groomName": "Luis"},
	2: {"weddingDate": "2025-10-11", "isSameLocation": true},
	7: {"withMusic": true, "musicStyle": "Mariachi"},
}

func (s *IntegrationSuite) login(username, password string) model.Identity {
	session, err := s.app.AuthService.Login(s.ctx, username, password)
	s.Require().NoError(err)
	return session.Identity
}

// Test: a couple fills the whole questionnaire and an admin reviews it
func (s *IntegrationSuite) TestCompleteQuestionnaireFlow() {
	// Step 1: Accounts
	_, err := s.app.AuthService.CreateUser(s.ctx, "planner", "admin-pass", "admin")
	s.Require().NoError(err)
	_, err = s.app.AuthService.CreateUser(s.ctx, "ana", "secret", "")
	s.Require().NoError(err)

	// Step 2: The couple logs in and walks every step
	identity := s.login("ana", "secret")
	ws, err := s.app.WizardController.Start(s.ctx, identity)
	s.Require().NoError(err)
	ws, err = s.app.WizardController.CompleteIntro(ws)
	s.Require().NoError(err)

	for ws.Phase == wizard.PhaseQuestionnaire {
		ws, err = s.app.WizardController.Next(s.ctx, ws, stepAnswers[ws.StepIndex])
		s.Require().NoError(err)
	}
	s.Equal(wizard.PhaseCompleted, ws.Phase)
	s.True(ws.Completed)
	s.Equal(model.StepCount, s.app.Records.SaveCalls())

	// Step 3: Stored draft is the merge of every step
	stored, err := s.app.Storage.LoadDraft(s.ctx, "ana")
	s.Require().NoError(err)
	s.Equal(model.Draft{
		"brideName":      "Ana",
		"groomName":      "Luis",
		"weddingDate":    "2025-10-11",
		"isSameLocation": true,
		"withMusic":      true,
		"musicStyle":     "Mariachi",
	}, stored)

	// Step 4: Admin overview and review
	overview, err := s.app.ReviewService.Overview(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(overview, 1)
	s.Equal("ana", overview[0].Username)
	s.Equal(6, overview[0].Answered)

	rv, err := s.app.ReviewService.Review(s.ctx, "ana")
	s.Require().NoError(err)
	s.Equal(s.app.MockClock.Now(), rv.GeneratedAt)

	// Step 5: Export renders the answered sections
	var buf bytes.Buffer
	s.Require().NoError(review.Export(rv).Render(s.ctx, &buf))
	doc, err := goquery.NewDocumentFromReader(&buf)
	s.Require().NoError(err)
	s.Equal(3, doc.Find(".section").Length())
	s.Equal("Mariachi", doc.Find(`[data-key="musicStyle"] .field-value`).Text())
}

// Test: a second login resumes from the saved draft at the intro
func (s *IntegrationSuite) TestResumeAfterLogout() {
	_, err := s.app.AuthService.CreateUser(s.ctx, "ana", "secret", "")
	s.Require().NoError(err)

	ws, err := s.app.WizardController.Start(s.ctx, s.login("ana", "secret"))
	s.Require().NoError(err)
	ws, err = s.app.WizardController.CompleteIntro(ws)
	s.Require().NoError(err)
	ws, err = s.app.WizardController.Next(s.ctx, ws, nil)
	s.Require().NoError(err)
	ws, err = s.app.WizardController.Next(s.ctx, ws, stepAnswers[1])
	s.Require().NoError(err)
	s.Equal(2, ws.StepIndex)

	ws = s.app.WizardController.Logout(ws)
	s.Equal(wizard.PhaseLoggedOut, ws.Phase)
	s.Empty(ws.Draft)

	resumed, err := s.app.WizardController.Start(s.ctx, s.login("ana", "secret"))
	s.Require().NoError(err)
	s.Equal(wizard.PhaseIntro, resumed.Phase)
	s.Equal(0, resumed.StepIndex)
	s.Equal(stepAnswers[1], resumed.Draft)
}

// Test: with the advance policy a failed save moves on and keeps answers in memory
func (s *IntegrationSuite) TestAdvanceOnSaveFailurePolicy() {
	s.app = NewTestApp(WithAdvanceOnSaveFailure())
	_, err := s.app.AuthService.CreateUser(s.ctx, "ana", "secret", "")
	s.Require().NoError(err)

	ws, err := s.app.WizardController.Start(s.ctx, s.login("ana", "secret"))
	s.Require().NoError(err)
	ws, err = s.app.WizardController.CompleteIntro(ws)
	s.Require().NoError(err)
	ws, err = s.app.WizardController.Next(s.ctx, ws, nil)
	s.Require().NoError(err)

	s.app.Records.FailSaves(errors.New("disk full"))
	ws, err = s.app.WizardController.Next(s.ctx, ws, stepAnswers[1])
	s.Require().NoError(err)
	s.Equal(2, ws.StepIndex)
	s.True(ws.Dirty)
	s.Equal("Ana", ws.Draft["brideName"])

	stored, err := s.app.Storage.LoadDraft(s.ctx, "ana")
	s.Require().NoError(err)
	s.Empty(stored)
}

// Test: admins cannot open the questionnaire
func (s *IntegrationSuite) TestAdminCannotStartWizard() {
	_, err := s.app.AuthService.CreateUser(s.ctx, "planner", "admin-pass", "admin")
	s.Require().NoError(err)

	_, err = s.app.WizardController.Start(s.ctx, s.login("planner", "admin-pass"))
	s.ErrorIs(err, wizard.ErrAdminWizard)
}

// Test: bootstrap creates a single admin with a generated password
func (s *IntegrationSuite) TestEnsureAdminBootstrap() {
	s.app.MockRandom.QueueString("generated-password")

	generated, created, err := s.app.AuthService.EnsureAdmin(s.ctx, "admin", "")
	s.Require().NoError(err)
	s.True(created)
	s.Equal("generated-password", generated)
	s.login("admin", "generated-password")

	_, created, err = s.app.AuthService.EnsureAdmin(s.ctx, "admin2", "")
	s.Require().NoError(err)
	s.False(created)
}
