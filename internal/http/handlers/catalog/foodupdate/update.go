// Package foodupdate реализует PUT /catalog/food-types/{id}: смену названия,
// цены или активности. Отсутствующие поля не меняются.
package foodupdate

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/aviary/internal/access"
	"github.com/magabrotheeeer/aviary/internal/http/middlewarectx"
	"github.com/magabrotheeeer/aviary/internal/http/response"
	"github.com/magabrotheeeer/aviary/internal/lib/sl"
	"github.com/magabrotheeeer/aviary/internal/models"
	"github.com/magabrotheeeer/aviary/internal/services/catalog"
)

type Request struct {
	Name          *string  `json:"name" validate:"omitempty,min=2,max=50"`
	PricePerPound *float64 `json:"price_per_pound" validate:"omitempty,gte=0"`
	IsActive      *bool    `json:"is_active"`
}

type Service interface {
	UpdateFoodType(ctx context.Context, p access.Principal, id int64, req catalog.FoodTypeUpdate) (*models.BirdFoodType, error)
}

type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Изменить тип корма
// @Tags Catalog
// @Accept json
// @Produce json
// @Param id path int true "ID типа корма"
// @Param request body Request true "Изменения"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.ErrorResponse
// @Failure 404 {object} response.ErrorResponse
// @Failure 422 {object} response.ErrorResponse
// @Security BearerAuth
// @Router /catalog/food-types/{id} [put]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.catalog.foodupdate"

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

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		log.Error("failed to decode id from url", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("failed to decode id from url"))
		return
	}

	var req Request
	if err = json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}
	if err = h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		w.WriteHeader(http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	res, err := h.service.UpdateFoodType(r.Context(), p, id, catalog.FoodTypeUpdate{
		Name:          req.Name,
		PricePerPound: req.PricePerPound,
		IsActive:      req.IsActive,
	})
	if err != nil {
		log.Error("failed to update food type", sl.Err(err))
		status, resp := response.FromError(err)
		w.WriteHeader(status)
		render.JSON(w, r, resp)
		return
	}

	log.Info("food type updated", slog.Int64("food_type_id", res.ID))
	render.JSON(w, r, response.StatusOKWithData(res))
}
