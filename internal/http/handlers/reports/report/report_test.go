package report

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/magabrotheeeer/aviary/internal/access"
	"github.com/magabrotheeeer/aviary/internal/aggregate"
	"github.com/magabrotheeeer/aviary/internal/http/middlewarectx"
	"github.com/magabrotheeeer/aviary/internal/lib/apperr"
	"github.com/magabrotheeeer/aviary/internal/lib/xlsx"
	"github.com/magabrotheeeer/aviary/internal/models"
	"github.com/magabrotheeeer/aviary/internal/services/reports"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) Categories(ctx context.Context, p access.Principal) (*aggregate.CategoryReport, error) {
	args := m.Called(ctx, p)
	res, _ := args.Get(0).(*aggregate.CategoryReport)
	return res, args.Error(1)
}

func (m *MockService) Contacts(ctx context.Context, p access.Principal) ([]reports.Contact, error) {
	args := m.Called(ctx, p)
	res, _ := args.Get(0).([]reports.Contact)
	return res, args.Error(1)
}

func (m *MockService) Birds(ctx context.Context, p access.Principal) ([]reports.BirdsRow, error) {
	args := m.Called(ctx, p)
	res, _ := args.Get(0).([]reports.BirdsRow)
	return res, args.Error(1)
}

func (m *MockService) Awards(ctx context.Context, p access.Principal) ([]reports.AwardRow, error) {
	args := m.Called(ctx, p)
	res, _ := args.Get(0).([]reports.AwardRow)
	return res, args.Error(1)
}

func (m *MockService) Export(ctx context.Context, p access.Principal, kind reports.Kind) ([]byte, error) {
	args := m.Called(ctx, p, kind)
	res, _ := args.Get(0).([]byte)
	return res, args.Error(1)
}

var admin = access.Principal{UserID: 1, Role: models.RoleAdmin}

func serve(t *testing.T, svc *MockService, kind, query string) *httptest.ResponseRecorder {
	t.Helper()
	handler := New(slog.New(slog.NewTextHandler(io.Discard, nil)), svc)

	req := httptest.NewRequest(http.MethodGet, "/reports/"+kind+query, nil)
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("kind", kind)
	ctx := context.WithValue(req.Context(), chi.RouteCtxKey, rctx)
	req = req.WithContext(middlewarectx.WithPrincipal(ctx, admin))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	return w
}

func TestReportHandler_JSON(t *testing.T) {
	tests := []struct {
		name           string
		kind           string
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name: "categories",
			kind: "categories",
			setupMock: func(m *MockService) {
				m.On("Categories", mock.Anything, admin).Return(&aggregate.CategoryReport{GrandTotal: 42}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"grand_total":42`,
		},
		{
			name: "contacts",
			kind: "contacts",
			setupMock: func(m *MockService) {
				m.On("Contacts", mock.Anything, admin).Return([]reports.Contact{{UserID: 3, FullName: "Ana Gómez"}}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `Ana Gómez`,
		},
		{
			name: "birds",
			kind: "birds",
			setupMock: func(m *MockService) {
				m.On("Birds", mock.Anything, admin).Return([]reports.BirdsRow{{UserID: 3, Category: "Canarios", Quantity: 7}}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `Canarios`,
		},
		{
			name: "awards forbidden",
			kind: "awards",
			setupMock: func(m *MockService) {
				m.On("Awards", mock.Anything, admin).Return(nil, fmt.Errorf("reports.Awards: %w", apperr.ErrForbidden))
			},
			expectedStatus: http.StatusForbidden,
			expectedBody:   `"error":"forbidden"`,
		},
		{
			name:           "unknown kind",
			kind:           "finances",
			setupMock:      func(*MockService) {},
			expectedStatus: http.StatusUnprocessableEntity,
			expectedBody:   `"field":"kind"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockService)
			tt.setupMock(svc)

			w := serve(t, svc, tt.kind, "")

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Contains(t, w.Body.String(), tt.expectedBody)
			svc.AssertExpectations(t)
		})
	}
}

func TestReportHandler_XLSX(t *testing.T) {
	book, err := xlsx.Build(xlsx.Sheet{
		Name:   "Contactos",
		Header: []string{"Nombre", "Correo"},
		Rows:   [][]any{{"Ana Gómez", "ana@aves.com"}},
	})
	require.NoError(t, err)

	svc := new(MockService)
	svc.On("Export", mock.Anything, admin, reports.KindContacts).Return(book, nil)

	w := serve(t, svc, "contacts", "?format=xlsx")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, xlsx.ContentType, w.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="contacts.xlsx"`, w.Header().Get("Content-Disposition"))

	f, err := excelize.OpenReader(bytes.NewReader(w.Body.Bytes()))
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows("Contactos")
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"Nombre", "Correo"}, {"Ana Gómez", "ana@aves.com"}}, rows)
	svc.AssertExpectations(t)
}
