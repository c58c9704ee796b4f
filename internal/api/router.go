package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/bodaform/internal/api/handler"
	"github.com/mcoot/bodaform/internal/api/middleware"
	internalmw "github.com/mcoot/bodaform/internal/middleware"
	"github.com/mcoot/bodaform/internal/services/auth"
	"github.com/mcoot/bodaform/internal/services/review"
	"github.com/mcoot/bodaform/internal/services/rules"
	"github.com/mcoot/bodaform/internal/services/wizard"
	"github.com/mcoot/bodaform/internal/storage"
)

// RouterConfig holds configuration for the API router
type RouterConfig struct {
	Logger           *slog.Logger
	AuthService      *auth.Service
	RecordStore      storage.RecordStore
	WizardController *wizard.Controller
	WizardRegistry   *wizard.Registry
	Rules            *rules.Evaluator
	ReviewService    *review.Service

	// ProtectUserRoutes puts /api/users behind the admin check
	ProtectUserRoutes bool
}

// NewRouter creates a new API router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()
	r.NotFoundHandler = http.HandlerFunc(handler.NotFound)

	// Create handlers
	authHandler := handler.NewAuthHandler(cfg.AuthService, cfg.Logger)
	draftHandler := handler.NewDraftHandler(cfg.RecordStore, cfg.Logger)
	wizardHandler := handler.NewWizardHandler(cfg.WizardController, cfg.WizardRegistry, cfg.Rules, cfg.Logger)
	reviewHandler := handler.NewReviewHandler(cfg.ReviewService, cfg.Logger)

	// Create middleware
	authMiddleware := middleware.Auth(cfg.AuthService)
	optionalAuthMiddleware := middleware.OptionalAuth(cfg.AuthService)
	adminMiddleware := middleware.RequireAdmin()

	// API subrouter with common middleware
	api := r.PathPrefix("/api").Subrouter()
	api.Use(internalmw.RequestID())
	api.Use(middleware.Recovery(cfg.Logger))
	api.Use(internalmw.Logging(cfg.Logger))

	// Health check endpoint (no auth)
	api.HandleFunc("/health", handler.Health).Methods(http.MethodGet)

	api.HandleFunc("/login", authHandler.Login).Methods(http.MethodPost)

	// User management, open unless hardened by configuration
	users := api.PathPrefix("/users").Subrouter()
	if cfg.ProtectUserRoutes {
		users.Use(authMiddleware, adminMiddleware)
	}
	users.HandleFunc("", authHandler.ListUsers).Methods(http.MethodGet)
	users.HandleFunc("", authHandler.CreateUser).Methods(http.MethodPost)

	// Direct draft access; a token, when sent, must match the username
	drafts := api.NewRoute().Subrouter()
	drafts.Use(optionalAuthMiddleware)
	drafts.HandleFunc("/progress", draftHandler.Progress).Methods(http.MethodGet)
	drafts.HandleFunc("/save", draftHandler.Save).Methods(http.MethodPost)

	// Wizard routes (all require auth)
	wiz := api.PathPrefix("/wizard").Subrouter()
	wiz.Use(authMiddleware)
	wiz.HandleFunc("/session", wizardHandler.Start).Methods(http.MethodPost)
	wiz.HandleFunc("/session", wizardHandler.Get).Methods(http.MethodGet)
	wiz.HandleFunc("/session", wizardHandler.Logout).Methods(http.MethodDelete)
	wiz.HandleFunc("/intro", wizardHandler.CompleteIntro).Methods(http.MethodPost)
	wiz.HandleFunc("/next", wizardHandler.Next).Methods(http.MethodPost)
	wiz.HandleFunc("/back", wizardHandler.Back).Methods(http.MethodPost)

	// Admin review routes
	admin := api.NewRoute().Subrouter()
	admin.Use(authMiddleware, adminMiddleware)
	admin.HandleFunc("/review", reviewHandler.Overview).Methods(http.MethodGet)
	admin.HandleFunc("/review/{username}", reviewHandler.Get).Methods(http.MethodGet)
	admin.HandleFunc("/export/{username}", reviewHandler.Export).Methods(http.MethodGet)

	return r
}
