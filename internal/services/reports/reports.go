// Package reports строит сводные отчёты по ассоциированным членам и
// выгружает их в Excel. Отчёт по категориям кэшируется в Redis.
package reports

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/aviary/internal/access"
	"github.com/magabrotheeeer/aviary/internal/aggregate"
	"github.com/magabrotheeeer/aviary/internal/cache"
	"github.com/magabrotheeeer/aviary/internal/lib/apperr"
	"github.com/magabrotheeeer/aviary/internal/lib/sl"
	"github.com/magabrotheeeer/aviary/internal/models"
)

// Kind: вид отчёта.
type Kind string

const (
	KindCategories Kind = "categories"
	KindContacts   Kind = "contacts"
	KindBirds      Kind = "birds"
	KindAwards     Kind = "awards"
)

// ParseKind проверяет название отчёта.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(s); k {
	case KindCategories, KindContacts, KindBirds, KindAwards:
		return k, nil
	default:
		return "", apperr.Validation("kind", fmt.Sprintf("unknown report %q", s))
	}
}

// Storage описывает операции хранилища, нужные сервису.
type Storage interface {
	CategoryTotals(ctx context.Context) ([]aggregate.CategoryGroup, error)
	ListAssociates(ctx context.Context) ([]models.User, error)
	ListAssociateBirds(ctx context.Context) ([]models.UserBirds, error)
	ListAwards(ctx context.Context) ([]models.Award, error)
}

// Cache хранит готовый отчёт по категориям.
type Cache interface {
	Get(ctx context.Context, key string, result any) (bool, error)
	Set(ctx context.Context, key string, value any, expiration time.Duration) error
}

// Service строит отчёты.
type Service struct {
	log     *slog.Logger
	storage Storage
	cache   Cache
	ttl     time.Duration
}

// New создаёт сервис отчётов; ttl: время жизни отчёта в кэше.
func New(log *slog.Logger, storage Storage, reportCache Cache, ttl time.Duration) *Service {
	return &Service{log: log, storage: storage, cache: reportCache, ttl: ttl}
}

// Categories возвращает суммы количества и экспорта по категориям
// среди ассоциированных членов.
func (s *Service) Categories(ctx context.Context, p access.Principal) (*aggregate.CategoryReport, error) {
	const op = "reports.Categories"
	if err := access.Authorize(p, access.ViewReports); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var cached aggregate.CategoryReport
	hit, err := s.cache.Get(ctx, cache.KeyCategoryReport, &cached)
	if err != nil {
		s.log.Warn("failed to read report cache", sl.Err(err))
	}
	if hit {
		return &cached, nil
	}

	groups, err := s.storage.CategoryTotals(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	report := aggregate.BuildCategoryReport(groups)
	if err = s.cache.Set(ctx, cache.KeyCategoryReport, report, s.ttl); err != nil {
		s.log.Warn("failed to write report cache", sl.Err(err))
	}
	return &report, nil
}

// Contact: строка справочника контактов.
type Contact struct {
	UserID   int64  `json:"user_id"`
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Address  string `json:"address"`
}

// Contacts возвращает контакты ассоциированных членов по алфавиту.
func (s *Service) Contacts(ctx context.Context, p access.Principal) ([]Contact, error) {
	const op = "reports.Contacts"
	if err := access.Authorize(p, access.ViewReports); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	users, err := s.storage.ListAssociates(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	result := make([]Contact, 0, len(users))
	for _, u := range users {
		result = append(result, Contact{
			UserID:   u.ID,
			FullName: u.FullName,
			Email:    u.Email,
			Phone:    u.Phone,
			Address:  u.Address,
		})
	}
	return result, nil
}

// BirdsRow: строка инвентаря с именем владельца.
type BirdsRow struct {
	UserID         int64     `json:"user_id"`
	FullName       string    `json:"full_name"`
	Category       string    `json:"category"`
	Quantity       int       `json:"quantity"`
	ExportQuantity int       `json:"export_quantity"`
	FoodPerBird    *float64  `json:"food_per_bird,omitempty"`
	FoodType       string    `json:"food_type,omitempty"`
	FoodProcess    string    `json:"food_process,omitempty"`
	FoodRequired   float64   `json:"food_required"`
	LastUpdated    time.Time `json:"last_updated"`
}

// Birds возвращает инвентарь ассоциированных членов, сгруппированный по владельцу.
func (s *Service) Birds(ctx context.Context, p access.Principal) ([]BirdsRow, error) {
	const op = "reports.Birds"
	if err := access.Authorize(p, access.ViewReports); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	users, err := s.storage.ListAssociates(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	lines, err := s.storage.ListAssociateBirds(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	byUser := make(map[int64][]models.UserBirds, len(users))
	for _, l := range lines {
		byUser[l.UserID] = append(byUser[l.UserID], l)
	}
	result := make([]BirdsRow, 0, len(lines))
	for _, u := range users {
		for _, l := range byUser[u.ID] {
			result = append(result, BirdsRow{
				UserID:         u.ID,
				FullName:       u.FullName,
				Category:       l.CategoryName,
				Quantity:       l.Quantity,
				ExportQuantity: l.ExportQuantity,
				FoodPerBird:    l.FoodPerBird,
				FoodType:       l.FoodType,
				FoodProcess:    l.FoodProcess,
				FoodRequired:   l.FoodRequired(),
				LastUpdated:    l.LastUpdated,
			})
		}
	}
	return result, nil
}

// AwardRow: награда с именем владельца.
type AwardRow struct {
	FullName string `json:"full_name"`
	models.Award
}

// Awards возвращает награды ассоциированных членов: по владельцу, затем новые первыми.
func (s *Service) Awards(ctx context.Context, p access.Principal) ([]AwardRow, error) {
	const op = "reports.Awards"
	if err := access.Authorize(p, access.ViewReports); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	users, err := s.storage.ListAssociates(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	awards, err := s.storage.ListAwards(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	byUser := make(map[int64][]models.Award, len(users))
	for _, a := range awards {
		byUser[a.UserID] = append(byUser[a.UserID], a)
	}
	result := make([]AwardRow, 0, len(awards))
	for _, u := range users {
		for _, a := range byUser[u.ID] {
			result = append(result, AwardRow{FullName: u.FullName, Award: a})
		}
	}
	return result, nil
}
