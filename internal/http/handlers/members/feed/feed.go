// Package feed реализует PUT /members/{id}/feed: специалист назначает норму,
// тип и обработку корма по строкам инвентаря члена.
package feed

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
	"github.com/magabrotheeeer/aviary/internal/services/members"
)

// LineRequest: новые параметры корма для одной строки инвентаря.
// Отсутствующий food_per_bird снимает норму.
type LineRequest struct {
	LineID      int64    `json:"id" validate:"required,gt=0"`
	FoodPerBird *float64 `json:"food_per_bird" validate:"omitempty,gte=0"`
	FoodType    string   `json:"food_type" validate:"max=50"`
	FoodProcess string   `json:"food_process" validate:"max=50"`
}

// Request: набор изменяемых строк.
type Request struct {
	Birds []LineRequest `json:"birds" validate:"required,min=1,dive"`
}

type Service interface {
	UpdateFeed(ctx context.Context, p access.Principal, memberID int64, updates []members.FeedUpdate) ([]models.UserBirds, error)
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
// @Summary Назначить корм
// @Tags Members
// @Accept json
// @Produce json
// @Param id path int true "ID члена"
// @Param request body Request true "Строки инвентаря"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.ErrorResponse
// @Failure 403 {object} response.ErrorResponse
// @Failure 404 {object} response.ErrorResponse
// @Failure 422 {object} response.ErrorResponse
// @Security BearerAuth
// @Router /members/{id}/feed [put]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.members.feed"

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
	if err := access.Authorize(p, access.EditFeed); err != nil {
		log.Warn("access denied", slog.String("role", string(p.Role)))
		status, resp := response.FromError(err)
		w.WriteHeader(status)
		render.JSON(w, r, resp)
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

	updates := make([]members.FeedUpdate, 0, len(req.Birds))
	for _, b := range req.Birds {
		updates = append(updates, members.FeedUpdate{
			LineID:      b.LineID,
			FoodPerBird: b.FoodPerBird,
			FoodType:    b.FoodType,
			FoodProcess: b.FoodProcess,
		})
	}

	res, err := h.service.UpdateFeed(r.Context(), p, id, updates)
	if err != nil {
		log.Error("failed to update feed", sl.Err(err))
		status, resp := response.FromError(err)
		w.WriteHeader(status)
		render.JSON(w, r, resp)
		return
	}

	log.Info("feed updated", slog.Int64("member_id", id), slog.Int("lines", len(updates)))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"birds": res,
	}))
}
