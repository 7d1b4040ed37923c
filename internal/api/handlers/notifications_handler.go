package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/trovehq/trove/internal/api/middleware"
	"github.com/trovehq/trove/internal/api/response"
	"github.com/trovehq/trove/internal/models"
)

// MatchService defines the interface for computing a user's match notifications.
type MatchService interface {
	Notifications(ctx context.Context, userID uuid.UUID) ([]models.MatchCandidate, error)
}

// NotificationsHandler handles HTTP requests for the match notification feed.
type NotificationsHandler struct {
	service MatchService
}

// NewNotificationsHandler creates a new notifications handler.
func NewNotificationsHandler(service MatchService) *NotificationsHandler {
	return &NotificationsHandler{service: service}
}

// List handles GET /v1/notifications: plausible matches for every lost item
// the authenticated user has reported.
func (h *NotificationsHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		response.RespondUnauthorized(w, "Missing authenticated user")

		return
	}

	candidates, err := h.service.Notifications(r.Context(), userID)
	if err != nil {
		slog.ErrorContext(r.Context(), "compute notifications failed", "user_id", userID, "error", err)
		response.RespondInternalServerError(w, "Failed to compute notifications")

		return
	}

	if candidates == nil {
		candidates = []models.MatchCandidate{}
	}

	response.RespondJSON(w, http.StatusOK, candidates)
}
