package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trovehq/trove/internal/models"
)

// mockMatchService mocks MatchService for handler tests.
type mockMatchService struct {
	notificationsFunc func(ctx context.Context, userID uuid.UUID) ([]models.MatchCandidate, error)
}

func (m *mockMatchService) Notifications(ctx context.Context, userID uuid.UUID) ([]models.MatchCandidate, error) {
	if m.notificationsFunc != nil {
		return m.notificationsFunc(ctx, userID)
	}

	return nil, nil
}

func TestNotificationsHandler_List(t *testing.T) {
	userID := uuid.New()

	t.Run("returns the feed for the authenticated user", func(t *testing.T) {
		lost := &models.LostItem{ID: uuid.New(), Category: "wallet"}
		found := &models.FoundItem{ID: uuid.New(), Category: "wallet"}

		mock := &mockMatchService{
			notificationsFunc: func(_ context.Context, gotUserID uuid.UUID) ([]models.MatchCandidate, error) {
				assert.Equal(t, userID, gotUserID)

				return []models.MatchCandidate{{
					Type:      "match",
					Method:    models.MatchMethodText,
					LostItem:  lost,
					FoundItem: found,
					Score:     5,
				}}, nil
			},
		}
		h := NewNotificationsHandler(mock)

		rec := httptest.NewRecorder()
		h.List(rec, authedRequest(http.MethodGet, "http://test/v1/notifications", "", userID))

		assert.Equal(t, http.StatusOK, rec.Code)

		var resp []models.MatchCandidate

		err := json.Unmarshal(rec.Body.Bytes(), &resp)
		require.NoError(t, err)
		require.Len(t, resp, 1)
		assert.Equal(t, models.MatchMethodText, resp[0].Method)
		assert.Equal(t, 5, resp[0].Score)
	})

	t.Run("empty feed is an empty array, not null", func(t *testing.T) {
		h := NewNotificationsHandler(&mockMatchService{})

		rec := httptest.NewRecorder()
		h.List(rec, authedRequest(http.MethodGet, "http://test/v1/notifications", "", userID))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "[]\n", rec.Body.String())
	})

	t.Run("missing user context returns 401", func(t *testing.T) {
		h := NewNotificationsHandler(&mockMatchService{})

		req := httptest.NewRequest(http.MethodGet, "http://test/v1/notifications", http.NoBody)
		rec := httptest.NewRecorder()
		h.List(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("service failure returns 500", func(t *testing.T) {
		mock := &mockMatchService{
			notificationsFunc: func(context.Context, uuid.UUID) ([]models.MatchCandidate, error) {
				return nil, errors.New("db down")
			},
		}
		h := NewNotificationsHandler(mock)

		rec := httptest.NewRecorder()
		h.List(rec, authedRequest(http.MethodGet, "http://test/v1/notifications", "", userID))

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})
}
