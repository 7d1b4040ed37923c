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
	"github.com/trovehq/trove/internal/repository"
)

// LostItemsService defines the interface for reporting and listing lost items.
type LostItemsService interface {
	Create(ctx context.Context, userID uuid.UUID, req *models.CreateLostItemRequest) (*models.LostItem, error)
	List(ctx context.Context) ([]*models.LostItem, error)
	UpdateStatus(ctx context.Context, userID, itemID uuid.UUID, status string) error
}

// LostItemsHandler handles HTTP requests for lost item reports.
type LostItemsHandler struct {
	service LostItemsService
}

// NewLostItemsHandler creates a new lost items handler.
func NewLostItemsHandler(service LostItemsService) *LostItemsHandler {
	return &LostItemsHandler{service: service}
}

// Create handles POST /v1/items/lost.
func (h *LostItemsHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		response.RespondUnauthorized(w, "Missing authenticated user")

		return
	}

	var req models.CreateLostItemRequest

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

		slog.ErrorContext(r.Context(), "create lost item failed", "error", err)
		response.RespondInternalServerError(w, "Failed to report lost item")

		return
	}

	response.RespondJSON(w, http.StatusCreated, item)
}

// UpdateStatus handles PATCH /v1/items/lost/{id}: marking a report returned
// (or back to lost). Reports the user does not own return 404.
func (h *LostItemsHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		response.RespondUnauthorized(w, "Missing authenticated user")

		return
	}

	itemID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		response.RespondBadRequest(w, "Invalid item id")

		return
	}

	var req models.UpdateLostItemStatusRequest

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

	if err := h.service.UpdateStatus(r.Context(), userID, itemID, req.Status); err != nil {
		if errors.Is(err, repository.ErrLostItemNotFound) {
			response.RespondNotFound(w, "Lost item not found")

			return
		}

		slog.ErrorContext(r.Context(), "update lost item status failed", "item_id", itemID, "error", err)
		response.RespondInternalServerError(w, "Failed to update status")

		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// List handles GET /v1/items/lost.
func (h *LostItemsHandler) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.service.List(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "list lost items failed", "error", err)
		response.RespondInternalServerError(w, "Failed to list lost items")

		return
	}

	if items == nil {
		items = []*models.LostItem{}
	}

	response.RespondJSON(w, http.StatusOK, items)
}
