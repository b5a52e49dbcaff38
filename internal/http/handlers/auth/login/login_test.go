package login

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/aviary/internal/lib/apperr"
	"github.com/magabrotheeeer/aviary/internal/models"
	"github.com/magabrotheeeer/aviary/internal/services/account"
)

type ServiceMock struct {
	mock.Mock
}

func (m *ServiceMock) Login(ctx context.Context, username, password string) (*account.LoginResult, error) {
	args := m.Called(ctx, username, password)
	resp, _ := args.Get(0).(*account.LoginResult)
	return resp, args.Error(1)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func TestLoginHandler_ServeHTTP(t *testing.T) {
	user := &models.User{ID: 12, Username: "user1", Role: models.RoleSpecialist, IsActive: true}

	tests := []struct {
		name           string
		requestBody    any
		mockResp       *account.LoginResult
		mockErr        error
		callService    bool
		wantStatusCode int
		wantData       map[string]any
		wantError      string
	}{
		{
			name:           "valid login",
			requestBody:    Request{Username: "user1", Password: "password123"},
			mockResp:       &account.LoginResult{Token: "tok", User: user},
			callService:    true,
			wantStatusCode: http.StatusOK,
			wantData: map[string]any{
				"token":    "tok",
				"user_id":  float64(12),
				"username": "user1",
				"role":     "specialist",
			},
		},
		{
			name:           "invalid json body",
			requestBody:    "not a json",
			wantStatusCode: http.StatusBadRequest,
			wantError:      "invalid request body",
		},
		{
			name:           "missing password",
			requestBody:    Request{Username: "user1"},
			wantStatusCode: http.StatusUnprocessableEntity,
			wantError:      "field Password is a required field",
		},
		{
			name:           "wrong password",
			requestBody:    Request{Username: "user1", Password: "nope"},
			mockErr:        fmt.Errorf("account.Login: %w: invalid credentials", apperr.ErrUnauthorized),
			callService:    true,
			wantStatusCode: http.StatusUnauthorized,
			wantError:      "unauthorized",
		},
		{
			name:           "storage failure",
			requestBody:    Request{Username: "user1", Password: "password123"},
			mockErr:        &apperr.StorageError{Op: "storage.GetUserByUsername", Err: errors.New("timeout")},
			callService:    true,
			wantStatusCode: http.StatusInternalServerError,
			wantError:      "internal error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(ServiceMock)
			if tt.callService {
				req := tt.requestBody.(Request)
				svc.On("Login", mock.Anything, req.Username, req.Password).Return(tt.mockResp, tt.mockErr).Once()
			}
			handler := New(newNoopLogger(), svc)

			var body []byte
			if s, ok := tt.requestBody.(string); ok {
				body = []byte(s)
			} else {
				var err error
				body, err = json.Marshal(tt.requestBody)
				require.NoError(t, err)
			}

			req := httptest.NewRequest(http.MethodPost, "/login", bytes.NewReader(body))
			req = req.WithContext(context.WithValue(req.Context(), middleware.RequestIDKey, "reqid123"))
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatusCode, rec.Code)
			var resp map[string]any
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
			if tt.wantError != "" {
				assert.Equal(t, "Error", resp["status"])
				assert.Contains(t, resp["error"], tt.wantError)
			} else {
				assert.Equal(t, "OK", resp["status"])
				assert.Equal(t, tt.wantData, resp["data"])
			}
			svc.AssertExpectations(t)
		})
	}
}
