// Package list реализует поиск пользователей администратором.
//
// Поддерживаются параметры запроса name (подстрока имени или полного имени),
// award_year и award_position. Фильтры по наградам независимы: пользователь
// подходит, если у него есть награды, удовлетворяющие каждому заданному фильтру.
package list

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
	"github.com/magabrotheeeer/aviary/internal/services/membership"
)

// Service ищет пользователей.
type Service interface {
	ListUsers(ctx context.Context, p access.Principal, f membership.Filter) ([]models.User, error)
}

type Handler struct {
	log     *slog.Logger
	service Service
}

func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Список пользователей
// @Tags Users
// @Produce json
// @Param name query string false "Подстрока имени"
// @Param award_year query int false "Год награды"
// @Param award_position query string false "Место награды"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.ErrorResponse
// @Failure 422 {object} response.ErrorResponse
// @Security BearerAuth
// @Router /admin/users [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.users.list"

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

	q := r.URL.Query()
	f := membership.Filter{
		Name:     q.Get("name"),
		Position: q.Get("award_position"),
	}
	if raw := q.Get("award_year"); raw != "" {
		year, err := strconv.Atoi(raw)
		if err != nil {
			log.Error("failed to parse award_year", sl.Err(err))
			w.WriteHeader(http.StatusUnprocessableEntity)
			resp := response.Error("award year must be a number")
			resp.Field = "award_year"
			render.JSON(w, r, resp)
			return
		}
		f.Year = &year
	}

	res, err := h.service.ListUsers(r.Context(), p, f)
	if err != nil {
		log.Error("failed to list users", sl.Err(err))
		status, resp := response.FromError(err)
		w.WriteHeader(status)
		render.JSON(w, r, resp)
		return
	}

	log.Info("users listed", slog.Int("count", len(res)))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"count": len(res),
		"users": res,
	}))
}
