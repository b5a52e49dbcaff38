// Package update реализует PUT /profile: изменение личных данных и
// собственного инвентаря птиц одной транзакцией.
//
// В списке birds передаются только изменяемые категории. Количество 0
// удаляет строку инвентаря.
package update

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
	"github.com/magabrotheeeer/aviary/internal/services/account"
)

// BirdsRequest: желаемое состояние инвентаря по одной категории.
type BirdsRequest struct {
	CategoryID     int64   `json:"category_id" validate:"required,gt=0"`
	Quantity       int     `json:"quantity" validate:"gte=0"`
	ExportQuantity int     `json:"export_quantity" validate:"gte=0"`
	Notes          *string `json:"notes"`
}

// Request: тело запроса; отсутствующие поля не меняются.
type Request struct {
	FullName     *string        `json:"full_name" validate:"omitempty,max=100"`
	Phone        *string        `json:"phone" validate:"omitempty,numeric,min=8,max=20"`
	Address      *string        `json:"address" validate:"omitempty,max=200"`
	ProfileImage *string        `json:"profile_image" validate:"omitempty,max=255"`
	Birds        []BirdsRequest `json:"birds" validate:"dive"`
}

// Service обновляет профиль.
type Service interface {
	UpdateProfile(ctx context.Context, p access.Principal, req account.ProfileUpdate) (*account.Profile, error)
}

// Handler обрабатывает PUT /profile.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// New создаёт Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Обновить профиль и инвентарь
// @Tags Profile
// @Accept json
// @Produce json
// @Param request body Request true "Изменения профиля"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.ErrorResponse
// @Failure 401 {object} response.ErrorResponse
// @Failure 422 {object} response.ErrorResponse
// @Failure 500 {object} response.ErrorResponse
// @Security BearerAuth
// @Router /profile [put]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.profile.update"

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

	upd := account.ProfileUpdate{
		FullName:     req.FullName,
		Phone:        req.Phone,
		Address:      req.Address,
		ProfileImage: req.ProfileImage,
	}
	for _, b := range req.Birds {
		upd.Birds = append(upd.Birds, account.BirdsUpdate{
			CategoryID:     b.CategoryID,
			Quantity:       b.Quantity,
			ExportQuantity: b.ExportQuantity,
			Notes:          b.Notes,
		})
	}

	profile, err := h.service.UpdateProfile(r.Context(), p, upd)
	if err != nil {
		log.Error("failed to update profile", sl.Err(err))
		status, resp := response.FromError(err)
		w.WriteHeader(status)
		render.JSON(w, r, resp)
		return
	}

	log.Info("profile updated", slog.Int64("user_id", p.UserID), slog.Int("birds_changed", len(upd.Birds)))
	render.JSON(w, r, response.StatusOKWithData(profile))
}
