// Package report отдаёт отчёты contacts, birds и awards в JSON, а любой
// отчёт, включая categories, в виде книги Excel при format=xlsx.
package report

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/aviary/internal/access"
	"github.com/magabrotheeeer/aviary/internal/aggregate"
	"github.com/magabrotheeeer/aviary/internal/http/middlewarectx"
	"github.com/magabrotheeeer/aviary/internal/http/response"
	"github.com/magabrotheeeer/aviary/internal/lib/sl"
	"github.com/magabrotheeeer/aviary/internal/lib/xlsx"
	"github.com/magabrotheeeer/aviary/internal/services/reports"
)

const formatXLSX = "xlsx"

type Service interface {
	Categories(ctx context.Context, p access.Principal) (*aggregate.CategoryReport, error)
	Contacts(ctx context.Context, p access.Principal) ([]reports.Contact, error)
	Birds(ctx context.Context, p access.Principal) ([]reports.BirdsRow, error)
	Awards(ctx context.Context, p access.Principal) ([]reports.AwardRow, error)
	Export(ctx context.Context, p access.Principal, kind reports.Kind) ([]byte, error)
}

type Handler struct {
	log     *slog.Logger
	service Service
}

func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Отчёт по членам ассоциации
// @Tags Reports
// @Produce json
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param kind path string true "categories, contacts, birds или awards"
// @Param format query string false "xlsx для выгрузки в Excel"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.ErrorResponse
// @Failure 422 {object} response.ErrorResponse
// @Security BearerAuth
// @Router /reports/{kind} [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.reports.report"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	p, ok := middlewarectx.PrincipalFrom(r.Context())
	if !ok {
		log.Error("principal not found in context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	kind, err := reports.ParseKind(chi.URLParam(r, "kind"))
	if err != nil {
		log.Error("unknown report kind", sl.Err(err))
		status, resp := response.FromError(err)
		w.WriteHeader(status)
		render.JSON(w, r, resp)
		return
	}
	log = log.With(slog.String("kind", string(kind)))

	if r.URL.Query().Get("format") == formatXLSX {
		data, err := h.service.Export(r.Context(), p, kind)
		if err != nil {
			log.Error("failed to export report", sl.Err(err))
			status, resp := response.FromError(err)
			w.WriteHeader(status)
			render.JSON(w, r, resp)
			return
		}
		w.Header().Set("Content-Type", xlsx.ContentType)
		w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s.xlsx"`, kind))
		w.Header().Set("Content-Length", strconv.Itoa(len(data)))
		w.WriteHeader(http.StatusOK)
		if _, err = w.Write(data); err != nil {
			log.Error("failed to write workbook", sl.Err(err))
			return
		}
		log.Info("report exported", slog.Int("bytes", len(data)))
		return
	}

	var res any
	switch kind {
	case reports.KindCategories:
		res, err = h.service.Categories(r.Context(), p)
	case reports.KindContacts:
		res, err = h.service.Contacts(r.Context(), p)
	case reports.KindBirds:
		res, err = h.service.Birds(r.Context(), p)
	case reports.KindAwards:
		res, err = h.service.Awards(r.Context(), p)
	}
	if err != nil {
		log.Error("failed to build report", sl.Err(err))
		status, resp := response.FromError(err)
		w.WriteHeader(status)
		render.JSON(w, r, resp)
		return
	}

	render.JSON(w, r, response.StatusOKWithData(res))
}
