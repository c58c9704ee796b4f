package handler

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/mcoot/bodaform/internal/api/middleware"
	"github.com/mcoot/bodaform/internal/api/request"
	"github.com/mcoot/bodaform/internal/api/response"
	"github.com/mcoot/bodaform/internal/services/rules"
	"github.com/mcoot/bodaform/internal/services/wizard"
)

// WizardHandler drives a server-side wizard session per login token
type WizardHandler struct {
	controller *wizard.Controller
	registry   *wizard.Registry
	evaluator  *rules.Evaluator
	logger     *slog.Logger
}

// NewWizardHandler creates a new wizard handler
func NewWizardHandler(controller *wizard.Controller, registry *wizard.Registry, evaluator *rules.Evaluator, logger *slog.Logger) *WizardHandler {
	return &WizardHandler{
		controller: controller,
		registry:   registry,
		evaluator:  evaluator,
		logger:     logger,
	}
}

// Start handles POST /api/wizard/session. Starting again replaces the
// session with a fresh one loaded from storage.
func (h *WizardHandler) Start(w http.ResponseWriter, r *http.Request) {
	session := middleware.MustGetSession(r.Context())

	ws, err := h.controller.Start(r.Context(), session.Identity)
	if err != nil {
		writeLoggedError(w, r, h.logger, err)
		return
	}

	h.registry.Put(session.ID, ws, session.ExpiresAt)
	h.writeState(w, r, http.StatusCreated, ws)
}

// Get handles GET /api/wizard/session
func (h *WizardHandler) Get(w http.ResponseWriter, r *http.Request) {
	session := middleware.MustGetSession(r.Context())

	ws, err := h.registry.Get(session.ID)
	if err != nil {
		WriteError(w, err)
		return
	}

	h.writeState(w, r, http.StatusOK, ws)
}

// Logout handles DELETE /api/wizard/session
func (h *WizardHandler) Logout(w http.ResponseWriter, r *http.Request) {
	session := middleware.MustGetSession(r.Context())

	ws, err := h.registry.Delete(session.ID)
	if err != nil {
		WriteError(w, err)
		return
	}

	h.writeState(w, r, http.StatusOK, h.controller.Logout(ws))
}

// CompleteIntro handles POST /api/wizard/intro
func (h *WizardHandler) CompleteIntro(w http.ResponseWriter, r *http.Request) {
	session := middleware.MustGetSession(r.Context())

	ws, err := h.registry.Update(session.ID, h.controller.CompleteIntro)
	if err != nil {
		WriteError(w, err)
		return
	}

	h.writeState(w, r, http.StatusOK, ws)
}

// Next handles POST /api/wizard/next
func (h *WizardHandler) Next(w http.ResponseWriter, r *http.Request) {
	session := middleware.MustGetSession(r.Context())

	var req request.NextRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}

	ws, err := h.registry.Update(session.ID, func(s wizard.Session) (wizard.Session, error) {
		return h.controller.Next(r.Context(), s, req.Data)
	})
	if err != nil {
		writeLoggedError(w, r, h.logger, err)
		return
	}

	h.writeState(w, r, http.StatusOK, ws)
}

// Back handles POST /api/wizard/back
func (h *WizardHandler) Back(w http.ResponseWriter, r *http.Request) {
	session := middleware.MustGetSession(r.Context())

	ws, err := h.registry.Update(session.ID, h.controller.Back)
	if err != nil {
		WriteError(w, err)
		return
	}

	h.writeState(w, r, http.StatusOK, ws)
}

func (h *WizardHandler) writeState(w http.ResponseWriter, r *http.Request, status int, ws wizard.Session) {
	state, err := response.WizardStateFromSession(ws, h.evaluator)
	if err != nil {
		writeLoggedError(w, r, h.logger, err)
		return
	}
	response.JSON(w, status, state)
}
