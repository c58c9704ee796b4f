package handler

import (
	"bytes"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/bodaform/internal/api/response"
	"github.com/mcoot/bodaform/internal/services/review"
)

// ReviewHandler serves the admin views of every couple's answers
type ReviewHandler struct {
	reviewService *review.Service
	logger        *slog.Logger
}

// NewReviewHandler creates a new review handler
func NewReviewHandler(reviewService *review.Service, logger *slog.Logger) *ReviewHandler {
	return &ReviewHandler{
		reviewService: reviewService,
		logger:        logger,
	}
}

// Overview handles GET /api/review
func (h *ReviewHandler) Overview(w http.ResponseWriter, r *http.Request) {
	rows, err := h.reviewService.Overview(r.Context())
	if err != nil {
		writeLoggedError(w, r, h.logger, err)
		return
	}

	response.JSON(w, http.StatusOK, response.OverviewFromReview(rows))
}

// Get handles GET /api/review/{username}
func (h *ReviewHandler) Get(w http.ResponseWriter, r *http.Request) {
	username := mux.Vars(r)["username"]

	rv, err := h.reviewService.Review(r.Context(), username)
	if err != nil {
		writeLoggedError(w, r, h.logger, err)
		return
	}

	response.JSON(w, http.StatusOK, response.ReviewFromModel(rv))
}

// Export handles GET /api/export/{username}, rendering a printable HTML page
func (h *ReviewHandler) Export(w http.ResponseWriter, r *http.Request) {
	username := mux.Vars(r)["username"]

	rv, err := h.reviewService.Review(r.Context(), username)
	if err != nil {
		writeLoggedError(w, r, h.logger, err)
		return
	}

	var buf bytes.Buffer
	if err := review.Export(rv).Render(r.Context(), &buf); err != nil {
		writeLoggedError(w, r, h.logger, err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Content-Disposition", `inline; filename="cuestionario-`+username+`.html"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}
