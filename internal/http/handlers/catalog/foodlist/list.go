// Package foodlist отдаёт справочник типов корма. Параметр include_inactive
// учитывается только для роли, которая ведёт справочник.
package foodlist

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/aviary/internal/access"
	"github.com/magabrotheeeer/aviary/internal/http/middlewarectx"
	"github.com/magabrotheeeer/aviary/internal/http/response"
	"github.com/magabrotheeeer/aviary/internal/lib/sl"
	"github.com/magabrotheeeer/aviary/internal/models"
)

type Service interface {
	ListFoodTypes(ctx context.Context, p access.Principal, includeInactive bool) ([]models.BirdFoodType, error)
}

type Handler struct {
	log     *slog.Logger
	service Service
}

func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Типы корма
// @Tags Catalog
// @Produce json
// @Param include_inactive query bool false "Показать неактивные"
// @Success 200 {object} response.Response
// @Security BearerAuth
// @Router /catalog/food-types [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.catalog.foodlist"

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

	includeInactive, err := strconv.ParseBool(r.URL.Query().Get("include_inactive"))
	if err != nil {
		includeInactive = false
	}

	res, err := h.service.ListFoodTypes(r.Context(), p, includeInactive)
	if err != nil {
		log.Error("failed to list food types", sl.Err(err))
		status, resp := response.FromError(err)
		w.WriteHeader(status)
		render.JSON(w, r, resp)
		return
	}

	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"count":      len(res),
		"food_types": res,
	}))
}
