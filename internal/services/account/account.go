// Package account отвечает за регистрацию, вход, проверку токена и
// самообслуживание пользователя: профиль, собственный инвентарь и награды.
package account

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/magabrotheeeer/aviary/internal/access"
	"github.com/magabrotheeeer/aviary/internal/cache"
	"github.com/magabrotheeeer/aviary/internal/config"
	"github.com/magabrotheeeer/aviary/internal/events"
	"github.com/magabrotheeeer/aviary/internal/lib/apperr"
	"github.com/magabrotheeeer/aviary/internal/lib/jwt"
	"github.com/magabrotheeeer/aviary/internal/lib/password"
	"github.com/magabrotheeeer/aviary/internal/lib/sl"
	"github.com/magabrotheeeer/aviary/internal/models"
)

// Storage описывает операции хранилища, нужные сервису.
type Storage interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error

	CreateUser(ctx context.Context, u *models.User) (int64, error)
	GetUser(ctx context.Context, id int64) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	ExistsUsernameOrEmail(ctx context.Context, username, email string) (bool, error)
	UpdateProfile(ctx context.Context, u *models.User) error
	TouchLogin(ctx context.Context, id int64, at time.Time) error

	GetCategory(ctx context.Context, id int64) (*models.BirdCategory, error)
	ListUserBirds(ctx context.Context, userID int64) ([]models.UserBirds, error)
	CreateUserBirds(ctx context.Context, b *models.UserBirds) (int64, error)
	UpdateUserBirds(ctx context.Context, b *models.UserBirds) error
	DeleteUserBirds(ctx context.Context, id int64) error

	ListAwardsByUser(ctx context.Context, userID int64) ([]models.Award, error)
}

// TokenMaker выпускает и разбирает JWT.
type TokenMaker interface {
	GenerateToken(userID int64, username, role string) (string, error)
	ParseToken(token string) (*jwt.Claims, error)
}

// Invalidator сбрасывает кэшированные отчёты.
type Invalidator interface {
	Invalidate(ctx context.Context, keys ...string) error
}

// Service реализует сценарии учётной записи.
type Service struct {
	log     *slog.Logger
	storage Storage
	tokens  TokenMaker
	cache   Invalidator
	events  events.Publisher
	now     func() time.Time
}

// New создаёт сервис учётных записей.
func New(log *slog.Logger, storage Storage, tokens TokenMaker, reportCache Invalidator, publisher events.Publisher) *Service {
	return &Service{
		log:     log,
		storage: storage,
		tokens:  tokens,
		cache:   reportCache,
		events:  publisher,
		now:     time.Now,
	}
}

// RegisterRequest: данные формы регистрации.
type RegisterRequest struct {
	Username string
	Email    string
	Password string
	FullName string
	Phone    string
	Address  string
}

// Register создаёт пользователя с ролью user, не ассоциированного.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (*models.User, error) {
	const op = "account.Register"

	user, err := models.NewUser(req.Username, req.Email, req.FullName, req.Phone)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	user.Address = strings.TrimSpace(req.Address)

	hash, err := password.Hash(req.Password)
	if err != nil {
		switch {
		case errors.Is(err, password.ErrTooShort):
			return nil, fmt.Errorf("%s: %w", op, apperr.Validation("password", password.ErrTooShort.Error()))
		case errors.Is(err, password.ErrTooLong):
			return nil, fmt.Errorf("%s: %w", op, apperr.Validation("password", password.ErrTooLong.Error()))
		default:
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	}
	user.PasswordHash = hash

	err = s.storage.RunInTx(ctx, func(ctx context.Context) error {
		exists, err := s.storage.ExistsUsernameOrEmail(ctx, user.Username, user.Email)
		if err != nil {
			return err
		}
		if exists {
			return apperr.Validation("username", "username or email already registered")
		}
		user.ID, err = s.storage.CreateUser(ctx, user)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("user registered", slog.Int64("user_id", user.ID), slog.String("username", user.Username))
	return user, nil
}

// LoginResult: токен и пользователь, под которым выполнен вход.
type LoginResult struct {
	Token string
	User  *models.User
}

// Login проверяет учётные данные, фиксирует время входа и выпускает JWT.
// Неактивные пользователи войти не могут.
func (s *Service) Login(ctx context.Context, username, rawPassword string) (*LoginResult, error) {
	const op = "account.Login"

	user, err := s.storage.GetUserByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w: invalid credentials", op, apperr.ErrUnauthorized)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err = password.Compare(user.PasswordHash, rawPassword); err != nil {
		return nil, fmt.Errorf("%s: %w: invalid credentials", op, apperr.ErrUnauthorized)
	}
	if !user.IsActive {
		return nil, fmt.Errorf("%s: %w: account is disabled", op, apperr.ErrUnauthorized)
	}

	now := s.now().UTC()
	if err = s.storage.TouchLogin(ctx, user.ID, now); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	user.LastLogin = &now

	token, err := s.tokens.GenerateToken(user.ID, user.Username, string(user.Role))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &LoginResult{Token: token, User: user}, nil
}

// ValidateToken разбирает токен и возвращает субъекта с актуальной ролью из хранилища.
func (s *Service) ValidateToken(ctx context.Context, token string) (access.Principal, error) {
	const op = "account.ValidateToken"

	claims, err := s.tokens.ParseToken(token)
	if err != nil {
		return access.Principal{}, fmt.Errorf("%s: %w: %v", op, apperr.ErrUnauthorized, err)
	}
	id, err := claims.UserID()
	if err != nil {
		return access.Principal{}, fmt.Errorf("%s: %w: %v", op, apperr.ErrUnauthorized, err)
	}

	user, err := s.storage.GetUser(ctx, id)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return access.Principal{}, fmt.Errorf("%s: %w: user no longer exists", op, apperr.ErrUnauthorized)
		}
		return access.Principal{}, fmt.Errorf("%s: %w", op, err)
	}
	if !user.IsActive {
		return access.Principal{}, fmt.Errorf("%s: %w: account is disabled", op, apperr.ErrUnauthorized)
	}
	return access.Principal{UserID: user.ID, Role: user.Role}, nil
}

// EnsureAdmin создаёт администратора из конфигурации, если его ещё нет.
// Пустой пароль отключает создание.
func (s *Service) EnsureAdmin(ctx context.Context, cfg config.BootstrapAdmin) error {
	const op = "account.EnsureAdmin"

	if cfg.AdminPassword == "" {
		s.log.Warn("bootstrap admin password is empty, skipping admin creation")
		return nil
	}

	_, err := s.storage.GetUserByUsername(ctx, cfg.AdminUsername)
	if err == nil {
		return nil
	}
	if !errors.Is(err, apperr.ErrNotFound) {
		return fmt.Errorf("%s: %w", op, err)
	}

	admin, err := models.NewUser(cfg.AdminUsername, cfg.AdminEmail, cfg.AdminFullName, cfg.AdminPhone)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err = admin.SetRole(models.RoleAdmin); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if admin.PasswordHash, err = password.Hash(cfg.AdminPassword); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if admin.ID, err = s.storage.CreateUser(ctx, admin); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("bootstrap admin created", slog.Int64("user_id", admin.ID), slog.String("username", admin.Username))
	return nil
}

// MyAwards возвращает награды текущего пользователя.
func (s *Service) MyAwards(ctx context.Context, p access.Principal) ([]models.Award, error) {
	const op = "account.MyAwards"
	if err := access.Authorize(p, access.ViewOwnAwards); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	awards, err := s.storage.ListAwardsByUser(ctx, p.UserID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return awards, nil
}

func (s *Service) invalidateReports(ctx context.Context) {
	if err := s.cache.Invalidate(ctx, cache.KeyCategoryReport); err != nil {
		s.log.Warn("failed to invalidate report cache", sl.Err(err))
	}
}
