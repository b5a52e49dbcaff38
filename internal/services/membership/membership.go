// Package membership: администрирование пользователей: поиск с фильтром
// по наградам, назначение роли и ассоциации, удаление.
package membership

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/magabrotheeeer/aviary/internal/access"
	"github.com/magabrotheeeer/aviary/internal/aggregate"
	"github.com/magabrotheeeer/aviary/internal/cache"
	"github.com/magabrotheeeer/aviary/internal/events"
	"github.com/magabrotheeeer/aviary/internal/lib/apperr"
	"github.com/magabrotheeeer/aviary/internal/lib/sl"
	"github.com/magabrotheeeer/aviary/internal/models"
)

// Storage описывает операции хранилища, нужные сервису.
type Storage interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
	ListUsers(ctx context.Context, name string) ([]models.User, error)
	GetUser(ctx context.Context, id int64) (*models.User, error)
	UpdateAccess(ctx context.Context, id int64, role models.Role, associated bool) error
	DeleteUser(ctx context.Context, id int64) error
	ListAwards(ctx context.Context) ([]models.Award, error)
	ListAwardsByUser(ctx context.Context, userID int64) ([]models.Award, error)
	ListUserBirds(ctx context.Context, userID int64) ([]models.UserBirds, error)
}

// Invalidator сбрасывает кэшированные отчёты.
type Invalidator interface {
	Invalidate(ctx context.Context, keys ...string) error
}

// Service реализует администрирование пользователей.
type Service struct {
	log     *slog.Logger
	storage Storage
	cache   Invalidator
	events  events.Publisher
}

// New создаёт сервис администрирования.
func New(log *slog.Logger, storage Storage, reportCache Invalidator, publisher events.Publisher) *Service {
	return &Service{log: log, storage: storage, cache: reportCache, events: publisher}
}

// Filter: параметры поиска пользователей.
type Filter struct {
	Name     string
	Year     *int
	Position string
}

// ListUsers ищет пользователей по подстроке имени и, если заданы, по году и месту награды.
func (s *Service) ListUsers(ctx context.Context, p access.Principal, f Filter) ([]models.User, error) {
	const op = "membership.ListUsers"
	if err := access.Authorize(p, access.ManageUsers); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if f.Year != nil && (*f.Year < 1900 || *f.Year > 9999) {
		return nil, fmt.Errorf("%s: %w", op, apperr.Validation("award_year", "award year is out of range"))
	}

	users, err := s.storage.ListUsers(ctx, strings.TrimSpace(f.Name))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	af := aggregate.AwardFilter{Year: f.Year, Position: strings.TrimSpace(f.Position)}
	if af.Empty() {
		return users, nil
	}

	awards, err := s.storage.ListAwards(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return aggregate.FilterMembers(users, awards, af), nil
}

// UserDetails: карточка пользователя для администратора.
type UserDetails struct {
	User   *models.User       `json:"user"`
	Birds  []models.UserBirds `json:"birds"`
	Awards []models.Award     `json:"awards"`
	Totals aggregate.Totals   `json:"totals"`
}

// UserDetails возвращает пользователя с инвентарём и наградами.
func (s *Service) UserDetails(ctx context.Context, p access.Principal, id int64) (*UserDetails, error) {
	const op = "membership.UserDetails"
	if err := access.Authorize(p, access.ManageUsers); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	user, err := s.storage.GetUser(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	birds, err := s.storage.ListUserBirds(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	awards, err := s.storage.ListAwardsByUser(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &UserDetails{User: user, Birds: birds, Awards: awards, Totals: aggregate.MemberTotals(birds)}, nil
}

// AccessUpdate: новая роль и флаг ассоциации.
type AccessUpdate struct {
	Role         string
	IsAssociated bool
}

// AssignAccess назначает пользователю роль и флаг ассоциации.
func (s *Service) AssignAccess(ctx context.Context, p access.Principal, id int64, req AccessUpdate) (*models.User, error) {
	const op = "membership.AssignAccess"
	if err := access.Authorize(p, access.ManageUsers); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	role, err := models.ParseRole(req.Role)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if id == p.UserID && role != models.RoleAdmin {
		return nil, fmt.Errorf("%s: %w", op, apperr.Validation("role", "administrators cannot demote themselves"))
	}

	var user *models.User
	err = s.storage.RunInTx(ctx, func(ctx context.Context) error {
		var err error
		if user, err = s.storage.GetUser(ctx, id); err != nil {
			return err
		}
		if err = user.SetRole(role); err != nil {
			return err
		}
		user.IsAssociated = req.IsAssociated
		return s.storage.UpdateAccess(ctx, id, user.Role, user.IsAssociated)
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.invalidateReports(ctx)
	s.log.Info("access assigned",
		slog.Int64("user_id", id),
		slog.String("role", string(user.Role)),
		slog.Bool("is_associated", user.IsAssociated),
		slog.Int64("by", p.UserID),
	)
	return user, nil
}

// DeleteUser удаляет пользователя вместе с инвентарём и наградами.
func (s *Service) DeleteUser(ctx context.Context, p access.Principal, id int64) error {
	const op = "membership.DeleteUser"
	if err := access.Authorize(p, access.ManageUsers); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if id == p.UserID {
		return fmt.Errorf("%s: %w", op, apperr.Validation("id", "administrators cannot delete themselves"))
	}

	var user *models.User
	err := s.storage.RunInTx(ctx, func(ctx context.Context) error {
		var err error
		if user, err = s.storage.GetUser(ctx, id); err != nil {
			return err
		}
		return s.storage.DeleteUser(ctx, id)
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	s.invalidateReports(ctx)
	events.Notify(ctx, s.log, s.events, events.MemberDeleted, p.UserID,
		events.MemberPayload{UserID: user.ID, Username: user.Username})
	s.log.Info("user deleted", slog.Int64("user_id", id), slog.Int64("by", p.UserID))
	return nil
}

func (s *Service) invalidateReports(ctx context.Context) {
	if err := s.cache.Invalidate(ctx, cache.KeyCategoryReport); err != nil {
		s.log.Warn("failed to invalidate report cache", sl.Err(err))
	}
}
