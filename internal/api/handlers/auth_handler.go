package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/trovehq/trove/internal/api/response"
	"github.com/trovehq/trove/internal/api/validation"
	"github.com/trovehq/trove/internal/models"
	"github.com/trovehq/trove/internal/repository"
	"github.com/trovehq/trove/internal/service"
)

// AuthService defines the interface for registration and login.
type AuthService interface {
	Register(ctx context.Context, req *models.RegisterRequest) (*models.User, error)
	Login(ctx context.Context, req *models.LoginRequest) (string, *models.User, error)
}

// AuthHandler handles HTTP requests for account registration and login.
type AuthHandler struct {
	service AuthService
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(service AuthService) *AuthHandler {
	return &AuthHandler{service: service}
}

// LoginResponse is the response for a successful login.
type LoginResponse struct {
	AccessToken string       `json:"access_token"`
	User        *models.User `json:"user"`
}

// Register handles POST /v1/auth/register.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest

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

	user, err := h.service.Register(r.Context(), &req)
	if err != nil {
		if errors.Is(err, repository.ErrEmailTaken) {
			response.RespondConflict(w, "email already registered")

			return
		}

		slog.ErrorContext(r.Context(), "register failed", "error", err)
		response.RespondInternalServerError(w, "Failed to register")

		return
	}

	response.RespondJSON(w, http.StatusCreated, user)
}

// Login handles POST /v1/auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest

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

	token, user, err := h.service.Login(r.Context(), &req)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			response.RespondUnauthorized(w, "invalid email or password")

			return
		}

		slog.ErrorContext(r.Context(), "login failed", "error", err)
		response.RespondInternalServerError(w, "Failed to log in")

		return
	}

	response.RespondJSON(w, http.StatusOK, LoginResponse{AccessToken: token, User: user})
}
