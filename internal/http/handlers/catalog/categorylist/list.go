// Package categorylist отдаёт справочник категорий птиц.
package categorylist

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/aviary/internal/access"
	"github.com/magabrotheeeer/aviary/internal/http/middlewarectx"
	"github.com/magabrotheeeer/aviary/internal/http/response"
	"github.com/magabrotheeeer/aviary/internal/lib/sl"
	"github.com/magabrotheeeer/aviary/internal/models"
)

type Service interface {
	ListCategories(ctx context.Context, p access.Principal) ([]models.BirdCategory, error)
}

type Handler struct {
	log     *slog.Logger
	service Service
}

func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Категории птиц
// @Tags Catalog
// @Produce json
// @Success 200 {object} response.Response
// @Security BearerAuth
// @Router /catalog/categories [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.catalog.categorylist"

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

	res, err := h.service.ListCategories(r.Context(), p)
	if err != nil {
		log.Error("failed to list categories", sl.Err(err))
		status, resp := response.FromError(err)
		w.WriteHeader(status)
		render.JSON(w, r, resp)
		return
	}

	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"count":      len(res),
		"categories": res,
	}))
}
