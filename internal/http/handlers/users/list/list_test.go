package list

import (
	"context"
	"encoding/json"
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

	"github.com/magabrotheeeer/aviary/internal/access"
	"github.com/magabrotheeeer/aviary/internal/http/middlewarectx"
	"github.com/magabrotheeeer/aviary/internal/lib/apperr"
	"github.com/magabrotheeeer/aviary/internal/models"
	"github.com/magabrotheeeer/aviary/internal/services/membership"
)

type ServiceMock struct {
	mock.Mock
}

func (m *ServiceMock) ListUsers(ctx context.Context, p access.Principal, f membership.Filter) ([]models.User, error) {
	args := m.Called(ctx, p, f)
	res, _ := args.Get(0).([]models.User)
	return res, args.Error(1)
}

func TestListHandler_ServeHTTP(t *testing.T) {
	admin := access.Principal{UserID: 1, Role: models.RoleAdmin}
	year := 2024

	tests := []struct {
		name           string
		url            string
		principal      access.Principal
		setupMock      func(m *ServiceMock)
		wantStatusCode int
		wantCount      float64
		wantError      string
	}{
		{
			name:      "name and award filters forwarded",
			url:       "/users?name=ana&award_year=2024&award_position=1ro",
			principal: admin,
			setupMock: func(m *ServiceMock) {
				m.On("ListUsers", mock.Anything, admin, membership.Filter{Name: "ana", Year: &year, Position: "1ro"}).
					Return([]models.User{{ID: 3, Username: "ana"}}, nil).Once()
			},
			wantStatusCode: http.StatusOK,
			wantCount:      1,
		},
		{
			name:      "no filters",
			url:       "/users",
			principal: admin,
			setupMock: func(m *ServiceMock) {
				m.On("ListUsers", mock.Anything, admin, membership.Filter{}).
					Return([]models.User{{ID: 1}, {ID: 2}}, nil).Once()
			},
			wantStatusCode: http.StatusOK,
			wantCount:      2,
		},
		{
			name:           "year is not a number",
			url:            "/users?award_year=abc",
			principal:      admin,
			setupMock:      func(*ServiceMock) {},
			wantStatusCode: http.StatusUnprocessableEntity,
			wantError:      "award year must be a number",
		},
		{
			name:      "specialist forbidden",
			url:       "/users",
			principal: access.Principal{UserID: 2, Role: models.RoleSpecialist},
			setupMock: func(m *ServiceMock) {
				m.On("ListUsers", mock.Anything, mock.Anything, mock.Anything).
					Return(nil, fmt.Errorf("membership.ListUsers: %w", apperr.ErrForbidden)).Once()
			},
			wantStatusCode: http.StatusForbidden,
			wantError:      "forbidden",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(ServiceMock)
			tt.setupMock(svc)
			handler := New(slog.New(slog.NewTextHandler(io.Discard, nil)), svc)

			req := httptest.NewRequest(http.MethodGet, tt.url, nil)
			ctx := context.WithValue(req.Context(), middleware.RequestIDKey, "req-id")
			ctx = middlewarectx.WithPrincipal(ctx, tt.principal)
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req.WithContext(ctx))

			assert.Equal(t, tt.wantStatusCode, rec.Code)
			var resp map[string]any
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
			if tt.wantError != "" {
				assert.Equal(t, tt.wantError, resp["error"])
			} else {
				data := resp["data"].(map[string]any)
				assert.Equal(t, tt.wantCount, data["count"])
			}
			svc.AssertExpectations(t)
		})
	}
}
