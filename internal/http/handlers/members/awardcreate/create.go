// Package awardcreate реализует POST /members/{id}/awards.
package awardcreate

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

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

const dateLayout = "2006-01-02"

// Request: результат конкурса. Пустая award_date означает сегодня.
type Request struct {
	ContestName string `json:"contest_name" validate:"required,max=200"`
	AwardDate   string `json:"award_date"`
	Position    string `json:"position" validate:"required,max=50"`
	Category    string `json:"category" validate:"max=100"`
	Description string `json:"description"`
}

type Service interface {
	RecordAward(ctx context.Context, p access.Principal, memberID int64, req members.AwardRequest) (*models.Award, error)
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
// @Summary Записать награду
// @Tags Members
// @Accept json
// @Produce json
// @Param id path int true "ID члена"
// @Param request body Request true "Награда"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.ErrorResponse
// @Failure 403 {object} response.ErrorResponse
// @Failure 404 {object} response.ErrorResponse
// @Failure 422 {object} response.ErrorResponse
// @Security BearerAuth
// @Router /members/{id}/awards [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.members.awardcreate"

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
	if err := access.Authorize(p, access.RecordAward); err != nil {
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

	award := members.AwardRequest{
		ContestName: req.ContestName,
		Position:    req.Position,
		Category:    req.Category,
		Description: req.Description,
	}
	if req.AwardDate != "" {
		date, err := time.Parse(dateLayout, req.AwardDate)
		if err != nil {
			log.Error("failed to parse award_date", sl.Err(err))
			w.WriteHeader(http.StatusUnprocessableEntity)
			resp := response.Error("award date must be in YYYY-MM-DD format")
			resp.Field = "award_date"
			render.JSON(w, r, resp)
			return
		}
		award.AwardDate = &date
	}

	res, err := h.service.RecordAward(r.Context(), p, id, award)
	if err != nil {
		log.Error("failed to record award", sl.Err(err))
		status, resp := response.FromError(err)
		w.WriteHeader(status)
		render.JSON(w, r, resp)
		return
	}

	log.Info("award recorded", slog.Int64("award_id", res.ID), slog.Int64("member_id", id))
	w.WriteHeader(http.StatusCreated)
	render.JSON(w, r, response.StatusOKWithData(res))
}
