// Package categorycreate реализует POST /catalog/categories. Родительская категория
// указывается по имени и должна быть категорией верхнего уровня.
package categorycreate

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

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
	Name           string `json:"name" validate:"required,min=3,max=100"`
	ParentCategory string `json:"parent_category" validate:"max=100"`
	ResourceNeeds  string `json:"resource_needs"`
	Description    string `json:"description"`
}

type Service interface {
	CreateCategory(ctx context.Context, p access.Principal, req catalog.CategoryRequest) (*models.BirdCategory, error)
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
// @Summary Создать категорию
// @Tags Catalog
// @Accept json
// @Produce json
// @Param request body Request true "Категория"
// @Success 201 {object} response.Response
// @Failure 403 {object} response.ErrorResponse
// @Failure 422 {object} response.ErrorResponse
// @Security BearerAuth
// @Router /catalog/categories [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.catalog.categorycreate"

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

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		w.WriteHeader(http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	res, err := h.service.CreateCategory(r.Context(), p, catalog.CategoryRequest{
		Name:           req.Name,
		ParentCategory: req.ParentCategory,
		ResourceNeeds:  req.ResourceNeeds,
		Description:    req.Description,
	})
	if err != nil {
		log.Error("failed to create category", sl.Err(err))
		status, resp := response.FromError(err)
		w.WriteHeader(status)
		render.JSON(w, r, resp)
		return
	}

	w.WriteHeader(http.StatusCreated)
	render.JSON(w, r, response.StatusOKWithData(res))
}
