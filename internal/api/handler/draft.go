package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/mcoot/bodaform/internal/api/middleware"
	"github.com/mcoot/bodaform/internal/api/request"
	"github.com/mcoot/bodaform/internal/api/response"
	"github.com/mcoot/bodaform/internal/model"
	"github.com/mcoot/bodaform/internal/storage"
)

// DraftHandler exposes the record store directly, keyed by username
type DraftHandler struct {
	store  storage.RecordStore
	logger *slog.Logger
}

// NewDraftHandler creates a new draft handler
func NewDraftHandler(store storage.RecordStore, logger *slog.Logger) *DraftHandler {
	return &DraftHandler{
		store:  store,
		logger: logger,
	}
}

// Progress handles GET /api/progress?username=
func (h *DraftHandler) Progress(w http.ResponseWriter, r *http.Request) {
	username := r.URL.Query().Get("username")
	if username == "" {
		WriteError(w, NewInvalidRequestError("Username required"))
		return
	}
	if err := model.ValidateIdentity(username); err != nil {
		WriteError(w, err)
		return
	}
	if err := authorizeUser(r, username); err != nil {
		WriteError(w, err)
		return
	}

	draft, err := h.store.LoadDraft(r.Context(), username)
	if err != nil {
		writeLoggedError(w, r, h.logger, err)
		return
	}

	response.JSON(w, http.StatusOK, draft)
}

// Save handles POST /api/save. The stored draft is replaced, not merged.
func (h *DraftHandler) Save(w http.ResponseWriter, r *http.Request) {
	var req request.SaveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}

	if req.Username == "" || req.Data == nil {
		WriteError(w, NewInvalidRequestError("Missing data"))
		return
	}
	if err := model.ValidateIdentity(req.Username); err != nil {
		WriteError(w, err)
		return
	}
	if err := authorizeUser(r, req.Username); err != nil {
		WriteError(w, err)
		return
	}
	if err := req.Data.Validate(); err != nil {
		WriteError(w, err)
		return
	}

	if err := h.store.SaveDraft(r.Context(), req.Username, req.Data); err != nil {
		h.logger.Error("failed to save draft",
			slog.String("username", req.Username),
			slog.String("error", err.Error()),
		)
		WriteError(w, NewServerError("Error saving progress"))
		return
	}

	response.JSON(w, http.StatusOK, response.SuccessResponse{Success: true})
}

// authorizeUser rejects a non-admin session acting on someone else's draft.
// Anonymous requests pass.
func authorizeUser(r *http.Request, username string) error {
	identity, ok := middleware.GetIdentity(r.Context())
	if !ok || identity.IsAdmin() || identity.Username == username {
		return nil
	}
	return NewNotOwnerError()
}
