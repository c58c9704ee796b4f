package api_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/bodaform/internal/api"
	"github.com/mcoot/bodaform/internal/api/apierr"
	"github.com/mcoot/bodaform/internal/api/response"
	"github.com/mcoot/bodaform/internal/factory"
	"github.com/mcoot/bodaform/internal/model"
)

// testServer creates a test server with all dependencies
type testServer struct {
	handler http.Handler
	app     *factory.TestApp
}

type serverOption func(*api.RouterConfig)

func protectUsers(cfg *api.RouterConfig) {
	cfg.ProtectUserRoutes = true
}

func newTestServer(t *testing.T, opts ...serverOption) *testServer {
	t.Helper()

	app := factory.NewTestApp()
	cfg := app.RouterConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	return &testServer{
		handler: api.NewRouter(cfg),
		app:     app,
	}
}

func (ts *testServer) request(method, path string, body any, token string) *httptest.ResponseRecorder {
	var reqBody *bytes.Buffer
	if body != nil {
		b, _ := json.Marshal(body)
		reqBody = bytes.NewBuffer(b)
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	req := httptest.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rr := httptest.NewRecorder()
	ts.handler.ServeHTTP(rr, req)
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out), rr.Body.String())
	return out
}

func TestHealthCheck(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodGet, "/api/health", nil, "")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "ok", decode[response.HealthResponse](t, rr).Status)
	assert.NotEmpty(t, rr.Header().Get("X-Request-ID"))
}

func TestUnknownRoute(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodGet, "/api/nothing-here", nil, "")
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, apierr.CodeNotFound, decode[apierr.ErrorResponse](t, rr).Code)
}

// Login and user management

func TestCreateUserAndLogin(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodPost, "/api/users", map[string]string{"username": "boda2025", "password": "correct"}, "")
	require.Equal(t, http.StatusCreated, rr.Code)
	created := decode[response.CreateUserResponse](t, rr)
	assert.True(t, created.Success)
	assert.Equal(t, response.User{Username: "boda2025", Role: "user"}, created.User)

	rr = ts.request(http.MethodPost, "/api/login", map[string]string{"username": "boda2025", "password": "correct"}, "")
	require.Equal(t, http.StatusOK, rr.Code)
	login := decode[response.LoginResponse](t, rr)
	assert.True(t, login.Success)
	assert.Equal(t, "boda2025", login.Username)
	assert.Equal(t, "user", login.Role)
	assert.NotEmpty(t, login.Token)
	assert.True(t, ts.app.MockClock.Now().Add(ts.app.AuthService.SessionDuration()).Equal(login.ExpiresAt))
}

func TestLoginWrongPassword(t *testing.T) {
	ts := newTestServer(t)
	createUser(t, ts, "boda2025", "correct", "")

	before, err := ts.app.Memory.ListCredentials(t.Context())
	require.NoError(t, err)

	rr := ts.request(http.MethodPost, "/api/login", map[string]string{"username": "boda2025", "password": "wrong"}, "")
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	errResp := decode[apierr.ErrorResponse](t, rr)
	assert.Equal(t, "Invalid credentials", errResp.Error)
	assert.Equal(t, apierr.CodeInvalidCredentials, errResp.Code)

	after, err := ts.app.Memory.ListCredentials(t.Context())
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestLoginUnknownUserLooksLikeWrongPassword(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodPost, "/api/login", map[string]string{"username": "ghost", "password": "x"}, "")
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Equal(t, "Invalid credentials", decode[apierr.ErrorResponse](t, rr).Error)
}

func TestLoginMissingFieldsLooksLikeWrongPassword(t *testing.T) {
	ts := newTestServer(t)
	createUser(t, ts, "ana", "secret", "")

	bodies := map[string]map[string]string{
		"missing password": {"username": "ana"},
		"empty password":   {"username": "ana", "password": ""},
		"missing username": {"password": "secret"},
	}
	for name, body := range bodies {
		t.Run(name, func(t *testing.T) {
			rr := ts.request(http.MethodPost, "/api/login", body, "")
			assert.Equal(t, http.StatusUnauthorized, rr.Code)
			errResp := decode[apierr.ErrorResponse](t, rr)
			assert.Equal(t, "Invalid credentials", errResp.Error)
			assert.Equal(t, apierr.CodeInvalidCredentials, errResp.Code)
		})
	}
}

func TestCreateUserConflict(t *testing.T) {
	ts := newTestServer(t)
	createUser(t, ts, "ana", "one", "")

	rr := ts.request(http.MethodPost, "/api/users", map[string]string{"username": "ana", "password": "two"}, "")
	assert.Equal(t, http.StatusConflict, rr.Code)
	assert.Equal(t, "User already exists", decode[apierr.ErrorResponse](t, rr).Error)

	// The original password still works
	login(t, ts, "ana", "one")
}

func TestCreateUserValidation(t *testing.T) {
	ts := newTestServer(t)

	tests := []struct {
		name string
		body map[string]string
		code string
	}{
		{"missing password", map[string]string{"username": "ana"}, apierr.CodeInvalidRequest},
		{"missing username", map[string]string{"password": "x"}, apierr.CodeInvalidRequest},
		{"unsafe username", map[string]string{"username": "../etc", "password": "x"}, apierr.CodeInvalidIdentity},
		{"unknown role", map[string]string{"username": "ana", "password": "x", "role": "owner"}, apierr.CodeInvalidRole},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := ts.request(http.MethodPost, "/api/users", tt.body, "")
			assert.Equal(t, http.StatusBadRequest, rr.Code)
			assert.Equal(t, tt.code, decode[apierr.ErrorResponse](t, rr).Code)
		})
	}
}

func TestListUsersHasNoPasswords(t *testing.T) {
	ts := newTestServer(t)
	createUser(t, ts, "planner", "admin-pass", "admin")
	createUser(t, ts, "ana", "secret", "")

	rr := ts.request(http.MethodGet, "/api/users", nil, "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.NotContains(t, rr.Body.String(), "password")

	var raw []map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &raw))
	assert.Equal(t, []map[string]any{
		{"username": "planner", "role": "admin"},
		{"username": "ana", "role": "user"},
	}, raw)
}

func TestProtectedUserRoutes(t *testing.T) {
	ts := newTestServer(t, protectUsers)
	_, err := ts.app.AuthService.CreateUser(t.Context(), "planner", "admin-pass", "admin")
	require.NoError(t, err)
	_, err = ts.app.AuthService.CreateUser(t.Context(), "ana", "secret", "")
	require.NoError(t, err)

	rr := ts.request(http.MethodGet, "/api/users", nil, "")
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	rr = ts.request(http.MethodGet, "/api/users", nil, login(t, ts, "ana", "secret"))
	assert.Equal(t, http.StatusForbidden, rr.Code)

	adminToken := login(t, ts, "planner", "admin-pass")
	rr = ts.request(http.MethodGet, "/api/users", nil, adminToken)
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = ts.request(http.MethodPost, "/api/users", map[string]string{"username": "luis", "password": "x"}, adminToken)
	assert.Equal(t, http.StatusCreated, rr.Code)
}

// Progress and save

func TestProgressUnknownUserIsEmpty(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodGet, "/api/progress?username=nobody", nil, "")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{}`, rr.Body.String())
}

func TestProgressValidation(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodGet, "/api/progress", nil, "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "Username required", decode[apierr.ErrorResponse](t, rr).Error)

	rr = ts.request(http.MethodGet, "/api/progress?username=..%2Fusers", nil, "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, apierr.CodeInvalidIdentity, decode[apierr.ErrorResponse](t, rr).Code)
}

func TestSaveReplacesDraft(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodPost, "/api/save", map[string]any{"username": "ana", "data": map[string]any{"brideName": "Ana"}}, "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.True(t, decode[response.SuccessResponse](t, rr).Success)

	rr = ts.request(http.MethodPost, "/api/save", map[string]any{"username": "ana", "data": map[string]any{"groomName": "Luis"}}, "")
	require.Equal(t, http.StatusOK, rr.Code)

	rr = ts.request(http.MethodGet, "/api/progress?username=ana", nil, "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"groomName":"Luis"}`, rr.Body.String())
}

func TestSaveValidation(t *testing.T) {
	ts := newTestServer(t)

	tests := []struct {
		name    string
		body    map[string]any
		code    string
		message string
	}{
		{"missing data", map[string]any{"username": "ana"}, apierr.CodeInvalidRequest, "Missing data"},
		{"missing username", map[string]any{"data": map[string]any{}}, apierr.CodeInvalidRequest, "Missing data"},
		{"unsafe username", map[string]any{"username": "a/b", "data": map[string]any{}}, apierr.CodeInvalidIdentity, ""},
		{"unknown field", map[string]any{"username": "ana", "data": map[string]any{"shoeSize": "42"}}, apierr.CodeInvalidDraft, ""},
		{"numeric value", map[string]any{"username": "ana", "data": map[string]any{"guestCount": 120}}, apierr.CodeInvalidDraft, ""},
		{"string in bool field", map[string]any{"username": "ana", "data": map[string]any{"isSameLocation": "yes"}}, apierr.CodeInvalidDraft, ""},
		{"bool in text field", map[string]any{"username": "ana", "data": map[string]any{"brideName": true}}, apierr.CodeInvalidDraft, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := ts.request(http.MethodPost, "/api/save", tt.body, "")
			assert.Equal(t, http.StatusBadRequest, rr.Code)
			errResp := decode[apierr.ErrorResponse](t, rr)
			assert.Equal(t, tt.code, errResp.Code)
			if tt.message != "" {
				assert.Equal(t, tt.message, errResp.Error)
			}
		})
	}
}

func TestSaveStorageFailure(t *testing.T) {
	ts := newTestServer(t)
	ts.app.Records.FailSaves(errors.New("disk full"))

	rr := ts.request(http.MethodPost, "/api/save", map[string]any{"username": "ana", "data": map[string]any{"brideName": "Ana"}}, "")
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Equal(t, "Error saving progress", decode[apierr.ErrorResponse](t, rr).Error)
	assert.NotContains(t, rr.Body.String(), "disk full")
}

func TestDraftRoutesRejectOtherUsersToken(t *testing.T) {
	ts := newTestServer(t)
	createUser(t, ts, "ana", "secret", "")
	createUser(t, ts, "planner", "admin-pass", "admin")
	anaToken := login(t, ts, "ana", "secret")

	rr := ts.request(http.MethodGet, "/api/progress?username=luis", nil, anaToken)
	assert.Equal(t, http.StatusForbidden, rr.Code)
	errResp := decode[apierr.ErrorResponse](t, rr)
	assert.Equal(t, "Draft belongs to another user", errResp.Error)
	assert.Equal(t, apierr.CodeForbidden, errResp.Code)

	rr = ts.request(http.MethodPost, "/api/save", map[string]any{"username": "luis", "data": map[string]any{}}, anaToken)
	assert.Equal(t, http.StatusForbidden, rr.Code)
	assert.Equal(t, "Draft belongs to another user", decode[apierr.ErrorResponse](t, rr).Error)

	rr = ts.request(http.MethodGet, "/api/progress?username=ana", nil, anaToken)
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = ts.request(http.MethodGet, "/api/progress?username=luis", nil, login(t, ts, "planner", "admin-pass"))
	assert.Equal(t, http.StatusOK, rr.Code)
}

// Wizard

func TestWizardRequiresToken(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodPost, "/api/wizard/session", nil, "")
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	rr = ts.request(http.MethodPost, "/api/wizard/session", nil, "not-a-token")
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestWizardFlow(t *testing.T) {
	ts := newTestServer(t)
	createUser(t, ts, "ana", "secret", "")
	token := login(t, ts, "ana", "secret")

	// No session yet
	rr := ts.request(http.MethodGet, "/api/wizard/session", nil, token)
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, apierr.CodeNoWizardSession, decode[apierr.ErrorResponse](t, rr).Code)

	// Start
	rr = ts.request(http.MethodPost, "/api/wizard/session", nil, token)
	require.Equal(t, http.StatusCreated, rr.Code)
	state := decode[response.WizardState](t, rr)
	assert.Equal(t, "intro", state.Phase)
	assert.Equal(t, 0, state.StepIndex)
	assert.Equal(t, model.StepCount, state.StepCount)

	// Next is not allowed during the intro
	rr = ts.request(http.MethodPost, "/api/wizard/next", map[string]any{"data": map[string]any{}}, token)
	assert.Equal(t, http.StatusConflict, rr.Code)

	rr = ts.request(http.MethodPost, "/api/wizard/intro", nil, token)
	require.Equal(t, http.StatusOK, rr.Code)
	state = decode[response.WizardState](t, rr)
	assert.Equal(t, "questionnaire", state.Phase)
	require.NotNil(t, state.Step)
	assert.Equal(t, "Welcome", state.Step.Name)
	assert.Empty(t, state.Step.Fields)

	// Welcome has no fields
	rr = ts.request(http.MethodPost, "/api/wizard/next", nil, token)
	require.Equal(t, http.StatusOK, rr.Code)
	state = decode[response.WizardState](t, rr)
	assert.Equal(t, 1, state.StepIndex)
	assert.Equal(t, 1, state.Direction)
	assert.Equal(t, "basic", state.Step.Section)
	require.Len(t, state.Step.Fields, 3)
	assert.Equal(t, "brideName", state.Step.Fields[0].Key)
	assert.True(t, state.Step.Fields[0].Required)

	// Required fields are enforced
	rr = ts.request(http.MethodPost, "/api/wizard/next", map[string]any{"data": map[string]any{"brideName": "Ana"}}, token)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	errResp := decode[apierr.ErrorResponse](t, rr)
	assert.Equal(t, apierr.CodeMissingRequired, errResp.Code)
	assert.Equal(t, []string{"groomName"}, errResp.Fields)

	// Fields from another step are rejected
	rr = ts.request(http.MethodPost, "/api/wizard/next", map[string]any{"data": map[string]any{"weddingDate": "2025-10-11"}}, token)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, apierr.CodeInvalidDraft, decode[apierr.ErrorResponse](t, rr).Code)

	rr = ts.request(http.MethodPost, "/api/wizard/next", map[string]any{"data": map[string]any{"brideName": "Ana", "groomName": "Luis"}}, token)
	require.Equal(t, http.StatusOK, rr.Code)
	state = decode[response.WizardState](t, rr)
	assert.Equal(t, 2, state.StepIndex)
	assert.Equal(t, model.Draft{"brideName": "Ana", "groomName": "Luis"}, state.Draft)

	// The save is visible through the progress endpoint
	rr = ts.request(http.MethodGet, "/api/progress?username=ana", nil, token)
	assert.JSONEq(t, `{"brideName":"Ana","groomName":"Luis"}`, rr.Body.String())

	// Back keeps the draft
	rr = ts.request(http.MethodPost, "/api/wizard/back", nil, token)
	require.Equal(t, http.StatusOK, rr.Code)
	state = decode[response.WizardState](t, rr)
	assert.Equal(t, 1, state.StepIndex)
	assert.Equal(t, -1, state.Direction)
	assert.Equal(t, "Ana", state.Step.Fields[0].Value)

	// GET reflects the stored session
	rr = ts.request(http.MethodGet, "/api/wizard/session", nil, token)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, 1, decode[response.WizardState](t, rr).StepIndex)

	// Logout drops the session
	rr = ts.request(http.MethodDelete, "/api/wizard/session", nil, token)
	require.Equal(t, http.StatusOK, rr.Code)
	state = decode[response.WizardState](t, rr)
	assert.Equal(t, "logged_out", state.Phase)
	assert.Empty(t, state.Draft)

	rr = ts.request(http.MethodGet, "/api/wizard/session", nil, token)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestWizardApplicabilityInState(t *testing.T) {
	ts := newTestServer(t)
	createUser(t, ts, "ana", "secret", "")
	token := login(t, ts, "ana", "secret")
	walkTo(t, ts, token, 2)

	rr := ts.request(http.MethodPost, "/api/wizard/next", map[string]any{"data": map[string]any{"weddingDate": "2025-10-11", "isSameLocation": true}}, token)
	require.Equal(t, http.StatusOK, rr.Code)

	rr = ts.request(http.MethodPost, "/api/wizard/back", nil, token)
	require.Equal(t, http.StatusOK, rr.Code)
	state := decode[response.WizardState](t, rr)

	applicable := map[string]bool{}
	for _, f := range state.Step.Fields {
		applicable[f.Key] = f.Applicable
	}
	assert.True(t, applicable["isSameLocation"])
	assert.False(t, applicable["receptionPlace"])
	assert.False(t, applicable["receptionAddress"])
}

func TestWizardSaveFailureDoesNotAdvance(t *testing.T) {
	ts := newTestServer(t)
	createUser(t, ts, "ana", "secret", "")
	token := login(t, ts, "ana", "secret")
	walkTo(t, ts, token, 1)

	ts.app.Records.FailSaves(errors.New("disk full"))
	rr := ts.request(http.MethodPost, "/api/wizard/next", map[string]any{"data": map[string]any{"brideName": "Ana", "groomName": "Luis"}}, token)
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	errResp := decode[apierr.ErrorResponse](t, rr)
	assert.Equal(t, apierr.CodeSaveFailed, errResp.Code)
	assert.Equal(t, "Error saving progress", errResp.Error)

	// The answers are kept on the session, unsaved
	rr = ts.request(http.MethodGet, "/api/wizard/session", nil, token)
	state := decode[response.WizardState](t, rr)
	assert.Equal(t, 1, state.StepIndex)
	assert.True(t, state.Dirty)
	assert.Equal(t, "Luis", state.Draft["groomName"])

	// Retrying once storage recovers advances
	ts.app.Records.FailSaves(nil)
	rr = ts.request(http.MethodPost, "/api/wizard/next", nil, token)
	require.Equal(t, http.StatusOK, rr.Code)
	state = decode[response.WizardState](t, rr)
	assert.Equal(t, 2, state.StepIndex)
	assert.False(t, state.Dirty)
}

func TestWizardResumeLoadsSavedDraft(t *testing.T) {
	ts := newTestServer(t)
	createUser(t, ts, "ana", "secret", "")
	require.NoError(t, ts.app.Storage.SaveDraft(t.Context(), "ana", model.Draft{"brideName": "Ana", "groomName": "Luis"}))

	rr := ts.request(http.MethodPost, "/api/wizard/session", nil, login(t, ts, "ana", "secret"))
	require.Equal(t, http.StatusCreated, rr.Code)
	state := decode[response.WizardState](t, rr)
	assert.Equal(t, "intro", state.Phase)
	assert.Equal(t, model.Draft{"brideName": "Ana", "groomName": "Luis"}, state.Draft)
}

func TestWizardRejectsAdmin(t *testing.T) {
	ts := newTestServer(t)
	createUser(t, ts, "planner", "admin-pass", "admin")

	rr := ts.request(http.MethodPost, "/api/wizard/session", nil, login(t, ts, "planner", "admin-pass"))
	assert.Equal(t, http.StatusForbidden, rr.Code)
	assert.Equal(t, apierr.CodeAdminWizard, decode[apierr.ErrorResponse](t, rr).Code)
}

func TestWizardSessionExpiresWithToken(t *testing.T) {
	ts := newTestServer(t)
	createUser(t, ts, "ana", "secret", "")
	token := login(t, ts, "ana", "secret")

	rr := ts.request(http.MethodPost, "/api/wizard/session", nil, token)
	require.Equal(t, http.StatusCreated, rr.Code)

	ts.app.MockClock.Advance(ts.app.AuthService.SessionDuration() + 1)
	rr = ts.request(http.MethodGet, "/api/wizard/session", nil, token)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Equal(t, 0, ts.app.WizardRegistry.Len())
}

// Review

func TestReviewRequiresAdmin(t *testing.T) {
	ts := newTestServer(t)
	createUser(t, ts, "ana", "secret", "")

	rr := ts.request(http.MethodGet, "/api/review", nil, "")
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	rr = ts.request(http.MethodGet, "/api/review", nil, login(t, ts, "ana", "secret"))
	assert.Equal(t, http.StatusForbidden, rr.Code)
	assert.Equal(t, apierr.CodeForbidden, decode[apierr.ErrorResponse](t, rr).Code)

	rr = ts.request(http.MethodGet, "/api/export/ana", nil, login(t, ts, "ana", "secret"))
	assert.Equal(t, http.StatusForbidden, rr.Code)
}

func TestReviewOverviewAndDetail(t *testing.T) {
	ts := newTestServer(t)
	createUser(t, ts, "planner", "admin-pass", "admin")
	createUser(t, ts, "ana", "secret", "")
	require.NoError(t, ts.app.Storage.SaveDraft(t.Context(), "ana", model.Draft{
		"brideName":             "Ana",
		"groomName":             "Luis",
		"nameDisplayPreference": "novia primero",
		"withMusic":             false,
	}))
	token := login(t, ts, "planner", "admin-pass")

	rr := ts.request(http.MethodGet, "/api/review", nil, token)
	require.Equal(t, http.StatusOK, rr.Code)
	overview := decode[[]response.Progress](t, rr)
	require.Len(t, overview, 1)
	assert.Equal(t, "ana", overview[0].Username)
	assert.Equal(t, 4, overview[0].Answered)
	assert.Equal(t, 1, overview[0].CompletedSections)

	rr = ts.request(http.MethodGet, "/api/review/ana", nil, token)
	require.Equal(t, http.StatusOK, rr.Code)
	rv := decode[response.Review](t, rr)
	assert.Equal(t, "ana", rv.Username)
	assert.Len(t, rv.Sections, len(model.Sections))
	assert.Equal(t, "Información Básica", rv.Sections[0].Title)
	assert.True(t, rv.Sections[0].Complete)
	assert.Equal(t, response.FieldAnswer{Key: "brideName", Label: "Nombre de la Novia", Value: "Ana", Applicable: true}, rv.Sections[0].Fields[0])
}

func TestReviewErrors(t *testing.T) {
	ts := newTestServer(t)
	createUser(t, ts, "planner", "admin-pass", "admin")
	token := login(t, ts, "planner", "admin-pass")

	rr := ts.request(http.MethodGet, "/api/review/ghost", nil, token)
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, apierr.CodeUserNotFound, decode[apierr.ErrorResponse](t, rr).Code)

	rr = ts.request(http.MethodGet, "/api/review/bad$name", nil, token)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestExportHTML(t *testing.T) {
	ts := newTestServer(t)
	createUser(t, ts, "planner", "admin-pass", "admin")
	createUser(t, ts, "ana", "secret", "")
	require.NoError(t, ts.app.Storage.SaveDraft(t.Context(), "ana", model.Draft{
		"brideName":      "Ana",
		"specialMessage": "<b>gracias</b>",
	}))

	rr := ts.request(http.MethodGet, "/api/export/ana", nil, login(t, ts, "planner", "admin-pass"))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.True(t, strings.HasPrefix(rr.Header().Get("Content-Type"), "text/html"))

	doc, err := goquery.NewDocumentFromReader(rr.Body)
	require.NoError(t, err)
	assert.Equal(t, "Cuestionario - ana", doc.Find("title").Text())
	assert.Equal(t, "Ana", doc.Find(`[data-key="brideName"] .field-value`).Text())
	assert.Equal(t, "<b>gracias</b>", doc.Find(`[data-key="specialMessage"] .field-value`).Text())
	assert.Equal(t, 0, doc.Find(".field-value b").Length())
}

// Helper functions

func createUser(t *testing.T, ts *testServer, username, password, role string) {
	t.Helper()

	body := map[string]string{"username": username, "password": password, "role": role}
	rr := ts.request(http.MethodPost, "/api/users", body, "")
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
}

func login(t *testing.T, ts *testServer, username, password string) string {
	t.Helper()

	body := map[string]string{"username": username, "password": password}
	rr := ts.request(http.MethodPost, "/api/login", body, "")
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	return decode[response.LoginResponse](t, rr).Token
}

// walkTo starts a wizard session and advances it to step, filling required fields
func walkTo(t *testing.T, ts *testServer, token string, step int) {
	t.Helper()

	rr := ts.request(http.MethodPost, "/api/wizard/session", nil, token)
	require.Equal(t, http.StatusCreated, rr.Code)
	rr = ts.request(http.MethodPost, "/api/wizard/intro", nil, token)
	require.Equal(t, http.StatusOK, rr.Code)

	answers := map[int]map[string]any{
		1: {"brideName": "Ana", "groomName": "Luis"},
		2: {"weddingDate": "2025-10-11"},
	}
	for i := 0; i < step; i++ {
		rr = ts.request(http.MethodPost, "/api/wizard/next", map[string]any{"data": answers[i]}, token)
		require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	}
}
