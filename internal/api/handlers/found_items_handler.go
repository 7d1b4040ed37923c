package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/trovehq/trove/internal/api/middleware"
	"github.com/trovehq/trove/internal/api/response"
	"github.com/trovehq/trove/internal/api/validation"
	"github.com/trovehq/trove/internal/apperrors"
	"github.com/trovehq/trove/internal/models"
)

// FoundItemsService defines the interface for reporting and listing found items.
type FoundItemsService interface {
	Create(ctx context.Context, userID uuid.UUID, req *models.CreateFoundItemRequest) (*models.FoundItem, error)
	List(ctx context.Context) ([]*models.FoundItem, error)
}

// FoundItemsHandler handles HTTP requests for found item reports.
type FoundItemsHandler struct {
	service FoundItemsService
}

// NewFoundItemsHandler creates a new found items handler.
func NewFoundItemsHandler(service FoundItemsService) *FoundItemsHandler {
	return &FoundItemsHandler{service: service}
}

// Create handles POST /v1/items/found.
func (h *FoundItemsHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		response.RespondUnauthorized(w, "Missing authenticated user")

		return
	}

	var req models.CreateFoundItemRequest

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(&req); err != nil {
		response.RespondBadRequest(w, "Invalid request body")

		return
	}

	if err := validation.ValidateStruct(&req); err != nil {
		validation.RespondValidationError(w, err)

		return
	}

	item, err := h.service.Create(r.Context(), userID, &req)
	if err != nil {
		var validationErr *apperrors.ValidationError
		if errors.As(err, &validationErr) {
			response.RespondBadRequest(w, validationErr.Error())

			return
		}

		slog.ErrorContext(r.Context(), "create found item failed", "error", err)
		response.RespondInternalServerError(w, "Failed to report found item")

		return
	}

	response.RespondJSON(w, http.StatusCreated, item)
}

// List handles GET /v1/items/found.
func (h *FoundItemsHandler) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.service.List(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "list found items failed", "error", err)
		response.RespondInternalServerError(w, "Failed to list found items")

		return
	}

	if items == nil {
		items = []*models.FoundItem{}
	}

	response.RespondJSON(w, http.StatusOK, items)
}
