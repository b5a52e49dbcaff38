// Package catalog ведёт справочники категорий птиц и типов корма.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/magabrotheeeer/aviary/internal/access"
	"github.com/magabrotheeeer/aviary/internal/cache"
	"github.com/magabrotheeeer/aviary/internal/lib/apperr"
	"github.com/magabrotheeeer/aviary/internal/lib/sl"
	"github.com/magabrotheeeer/aviary/internal/models"
)

// Storage описывает операции хранилища, нужные сервису.
type Storage interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error

	CreateCategory(ctx context.Context, c *models.BirdCategory) (int64, error)
	GetCategoryByName(ctx context.Context, name string) (*models.BirdCategory, error)
	ListCategories(ctx context.Context) ([]models.BirdCategory, error)

	CreateFoodType(ctx context.Context, f *models.BirdFoodType) (int64, error)
	GetFoodType(ctx context.Context, id int64) (*models.BirdFoodType, error)
	UpdateFoodType(ctx context.Context, f *models.BirdFoodType) error
	ListFoodTypes(ctx context.Context, activeOnly bool) ([]models.BirdFoodType, error)
}

// Invalidator сбрасывает кэшированные отчёты.
type Invalidator interface {
	Invalidate(ctx context.Context, keys ...string) error
}

// Service реализует справочники.
type Service struct {
	log     *slog.Logger
	storage Storage
	cache   Invalidator
}

// New создаёт сервис справочников.
func New(log *slog.Logger, storage Storage, reportCache Invalidator) *Service {
	return &Service{log: log, storage: storage, cache: reportCache}
}

// ListCategories возвращает все категории по алфавиту.
func (s *Service) ListCategories(ctx context.Context, p access.Principal) ([]models.BirdCategory, error) {
	const op = "catalog.ListCategories"
	if err := access.Authorize(p, access.ViewCatalog); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	categories, err := s.storage.ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return categories, nil
}

// CategoryRequest: новая категория.
type CategoryRequest struct {
	Name           string
	ParentCategory string
	ResourceNeeds  string
	Description    string
}

// CreateCategory добавляет категорию. Родитель должен существовать и сам
// быть категорией верхнего уровня.
func (s *Service) CreateCategory(ctx context.Context, p access.Principal, req CategoryRequest) (*models.BirdCategory, error) {
	const op = "catalog.CreateCategory"
	if err := access.Authorize(p, access.ManageCatalog); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	category, err := models.NewBirdCategory(req.Name, req.ParentCategory)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	category.ResourceNeeds = strings.TrimSpace(req.ResourceNeeds)
	category.Description = strings.TrimSpace(req.Description)

	err = s.storage.RunInTx(ctx, func(ctx context.Context) error {
		if category.ParentCategory != "" {
			parent, err := s.storage.GetCategoryByName(ctx, category.ParentCategory)
			if errors.Is(err, apperr.ErrNotFound) {
				return apperr.Validation("parent_category", "parent category does not exist")
			}
			if err != nil {
				return err
			}
			if parent.ParentCategory != "" {
				return apperr.Validation("parent_category", "parent category must be a top-level category")
			}
			category.ParentCategory = parent.Name
		}
		var err error
		category.ID, err = s.storage.CreateCategory(ctx, category)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err = s.cache.Invalidate(ctx, cache.KeyCategoryReport); err != nil {
		s.log.Warn("failed to invalidate report cache", sl.Err(err))
	}
	s.log.Info("category created", slog.Int64("category_id", category.ID), slog.String("name", category.Name))
	return category, nil
}

// ListFoodTypes возвращает типы корма. Неактивные видит только тот, кто
// ведёт справочник.
func (s *Service) ListFoodTypes(ctx context.Context, p access.Principal, includeInactive bool) ([]models.BirdFoodType, error) {
	const op = "catalog.ListFoodTypes"
	if err := access.Authorize(p, access.ViewCatalog); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	activeOnly := !includeInactive || !access.Allowed(p.Role, access.ManageCatalog)

	foods, err := s.storage.ListFoodTypes(ctx, activeOnly)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return foods, nil
}

// CreateFoodType добавляет активный тип корма.
func (s *Service) CreateFoodType(ctx context.Context, p access.Principal, name string, pricePerPound float64) (*models.BirdFoodType, error) {
	const op = "catalog.CreateFoodType"
	if err := access.Authorize(p, access.ManageCatalog); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	food, err := models.NewBirdFoodType(name, pricePerPound)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if food.ID, err = s.storage.CreateFoodType(ctx, food); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("food type created", slog.Int64("food_type_id", food.ID), slog.String("name", food.Name))
	return food, nil
}

// FoodTypeUpdate: изменения типа корма; nil-поля не меняются.
type FoodTypeUpdate struct {
	Name          *string
	PricePerPound *float64
	IsActive      *bool
}

// UpdateFoodType меняет название, цену или активность типа корма.
func (s *Service) UpdateFoodType(ctx context.Context, p access.Principal, id int64, req FoodTypeUpdate) (*models.BirdFoodType, error) {
	const op = "catalog.UpdateFoodType"
	if err := access.Authorize(p, access.ManageCatalog); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var food *models.BirdFoodType
	err := s.storage.RunInTx(ctx, func(ctx context.Context) error {
		var err error
		if food, err = s.storage.GetFoodType(ctx, id); err != nil {
			return err
		}
		if req.Name != nil {
			if err = food.SetName(*req.Name); err != nil {
				return err
			}
		}
		if req.PricePerPound != nil {
			if err = food.SetPrice(*req.PricePerPound); err != nil {
				return err
			}
		}
		if req.IsActive != nil {
			food.IsActive = *req.IsActive
		}
		return s.storage.UpdateFoodType(ctx, food)
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return food, nil
}
