package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/mcoot/bodaform/internal/api/request"
	"github.com/mcoot/bodaform/internal/api/response"
	"github.com/mcoot/bodaform/internal/services/auth"
)

// AuthHandler handles login and user management endpoints
type AuthHandler struct {
	authService *auth.Service
	logger      *slog.Logger
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *auth.Service, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		logger:      logger,
	}
}

// Login handles POST /api/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req request.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}

	session, err := h.authService.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		writeLoggedError(w, r, h.logger, err)
		return
	}

	h.logger.Info("user logged in",
		slog.String("username", session.Identity.Username),
		slog.String("role", string(session.Identity.Role)),
	)
	response.JSON(w, http.StatusOK, response.LoginResponseFromSession(session))
}

// ListUsers handles GET /api/users
func (h *AuthHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.authService.ListUsers(r.Context())
	if err != nil {
		writeLoggedError(w, r, h.logger, err)
		return
	}

	response.JSON(w, http.StatusOK, response.UsersFromAuth(users))
}

// CreateUser handles POST /api/users
func (h *AuthHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req request.CreateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, NewInvalidRequestError("invalid request body"))
		return
	}

	user, err := h.authService.CreateUser(r.Context(), req.Username, req.Password, req.Role)
	if err != nil {
		writeLoggedError(w, r, h.logger, err)
		return
	}

	h.logger.Info("user created",
		slog.String("username", user.Username),
		slog.String("role", string(user.Role)),
	)
	response.JSON(w, http.StatusCreated, response.CreateUserResponse{
		Success: true,
		User:    response.UserFromAuth(user),
	})
}
