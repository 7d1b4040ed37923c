// Package handlers provides HTTP handlers for the item reporting and
// notification endpoints.
package handlers

import (
	"net/http"

	"github.com/trovehq/trove/internal/api/response"
)

// HealthHandler handles health check requests.
type HealthHandler struct{}

// NewHealthHandler creates a new health handler.
func NewHealthHandler() *HealthHandler {
	return &HealthHandler{}
}

// Check handles GET /health.
func (h *HealthHandler) Check(w http.ResponseWriter, r *http.Request) {
	response.RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
