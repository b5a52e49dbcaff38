package middlewarectx_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/aviary/internal/access"
	"github.com/magabrotheeeer/aviary/internal/http/middlewarectx"
	"github.com/magabrotheeeer/aviary/internal/lib/apperr"
	"github.com/magabrotheeeer/aviary/internal/models"
)

type TokenValidatorMock struct {
	mock.Mock
}

func (m *TokenValidatorMock) ValidateToken(ctx context.Context, token string) (access.Principal, error) {
	args := m.Called(ctx, token)
	return args.Get(0).(access.Principal), args.Error(1)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func TestJWTMiddleware(t *testing.T) {
	specialist := access.Principal{UserID: 7, Role: models.RoleSpecialist}

	tests := []struct {
		name           string
		authHeader     string
		mockPrincipal  access.Principal
		mockErr        error
		wantStatusCode int
		wantCalled     bool
	}{
		{
			name:           "missing Authorization header",
			authHeader:     "",
			wantStatusCode: http.StatusUnauthorized,
		},
		{
			name:           "invalid Authorization header prefix",
			authHeader:     "Basic sometoken",
			wantStatusCode: http.StatusUnauthorized,
		},
		{
			name:           "token rejected",
			authHeader:     "Bearer token",
			mockErr:        apperr.ErrUnauthorized,
			wantStatusCode: http.StatusUnauthorized,
		},
		{
			name:           "storage failure while validating",
			authHeader:     "Bearer token",
			mockErr:        &apperr.StorageError{Op: "storage.GetUser", Err: errors.New("connection reset")},
			wantStatusCode: http.StatusInternalServerError,
		},
		{
			name:           "valid token",
			authHeader:     "Bearer validtoken",
			mockPrincipal:  specialist,
			wantStatusCode: http.StatusOK,
			wantCalled:     true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tokens := new(TokenValidatorMock)
			if strings.HasPrefix(tt.authHeader, "Bearer ") {
				tokens.On("ValidateToken", mock.Anything, strings.TrimPrefix(tt.authHeader, "Bearer ")).
					Return(tt.mockPrincipal, tt.mockErr).Once()
			}

			handlerCalled := false
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				handlerCalled = true
				p, ok := middlewarectx.PrincipalFrom(r.Context())
				assert.True(t, ok)
				assert.Equal(t, specialist, p)
				w.WriteHeader(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodGet, "/api/v1/members", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}
			rec := httptest.NewRecorder()

			middlewarectx.JWTMiddleware(tokens, newNoopLogger())(next).ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatusCode, rec.Code)
			assert.Equal(t, tt.wantCalled, handlerCalled)
			tokens.AssertExpectations(t)
		})
	}
}

func TestPrincipalFrom(t *testing.T) {
	_, ok := middlewarectx.PrincipalFrom(context.Background())
	assert.False(t, ok)

	_, ok = middlewarectx.PrincipalFrom(middlewarectx.WithPrincipal(context.Background(), access.Principal{}))
	assert.False(t, ok)

	want := access.Principal{UserID: 3, Role: models.RoleDependiente}
	got, ok := middlewarectx.PrincipalFrom(middlewarectx.WithPrincipal(context.Background(), want))
	assert.True(t, ok)
	assert.Equal(t, want, got)
}

func TestRateLimitMiddleware(t *testing.T) {
	limiter := middlewarectx.NewLimiter(0.001, 2)
	handler := middlewarectx.RateLimitMiddleware(newNoopLogger(), limiter)(
		http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) }),
	)

	call := func(remote string) int {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/login", nil)
		req.RemoteAddr = remote
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusOK, call("10.0.0.1:5000"))
	assert.Equal(t, http.StatusOK, call("10.0.0.1:5001"))
	assert.Equal(t, http.StatusTooManyRequests, call("10.0.0.1:5002"))
	assert.Equal(t, http.StatusOK, call("10.0.0.2:5000"))
}

func TestMetricsMiddleware(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := middlewarectx.NewMetrics(reg)

	r := chi.NewRouter()
	r.Use(metrics.Middleware)
	r.Get("/members/{id}", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusNotFound) })

	for _, id := range []string{"1", "2", "3"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/members/"+id, nil))
	}

	expected := `
# HELP aviary_http_requests_total Number of HTTP requests by route, method and status.
# TYPE aviary_http_requests_total counter
aviary_http_requests_total{method="GET",route="/members/{id}",status="404"} 3
`
	require.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "aviary_http_requests_total"))
}
