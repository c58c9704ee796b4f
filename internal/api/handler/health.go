package handler

import (
	"net/http"

	"github.com/mcoot/bodaform/internal/api/apierr"
	"github.com/mcoot/bodaform/internal/api/response"
)

// Health handles GET /api/health
func Health(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, http.StatusOK, response.HealthResponse{Status: "ok"})
}

// NotFound answers unknown routes with a JSON error
func NotFound(w http.ResponseWriter, r *http.Request) {
	WriteError(w, apierr.NewNotFoundError())
}
