package account

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/magabrotheeeer/aviary/internal/access"
	"github.com/magabrotheeeer/aviary/internal/aggregate"
	"github.com/magabrotheeeer/aviary/internal/events"
	"github.com/magabrotheeeer/aviary/internal/lib/apperr"
	"github.com/magabrotheeeer/aviary/internal/models"
)

// Profile: пользователь вместе с собственным инвентарём и итогами по нему.
type Profile struct {
	User   *models.User       `json:"user"`
	Birds  []models.UserBirds `json:"birds"`
	Totals aggregate.Totals   `json:"totals"`
}

// BirdsUpdate: желаемое состояние строки инвентаря по категории.
// Quantity == 0 удаляет строку.
type BirdsUpdate struct {
	CategoryID     int64
	Quantity       int
	ExportQuantity int
	Notes          *string
}

// ProfileUpdate: изменения профиля; nil-поля не меняются.
// В Birds перечисляются только изменяемые категории.
type ProfileUpdate struct {
	FullName     *string
	Phone        *string
	Address      *string
	ProfileImage *string
	Birds        []BirdsUpdate
}

// Profile возвращает профиль текущего пользователя.
func (s *Service) Profile(ctx context.Context, p access.Principal) (*Profile, error) {
	const op = "account.Profile"
	if err := access.Authorize(p, access.EditOwnProfile); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	profile, err := s.loadProfile(ctx, p.UserID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return profile, nil
}

// UpdateProfile меняет личные данные и собственный инвентарь в одной транзакции.
// Любая ошибка валидации откатывает все изменения.
func (s *Service) UpdateProfile(ctx context.Context, p access.Principal, req ProfileUpdate) (*Profile, error) {
	const op = "account.UpdateProfile"
	if err := access.Authorize(p, access.EditOwnProfile); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var changed []int64
	err := s.storage.RunInTx(ctx, func(ctx context.Context) error {
		user, err := s.storage.GetUser(ctx, p.UserID)
		if err != nil {
			return err
		}
		if err = applyPersonal(user, req); err != nil {
			return err
		}
		if err = s.storage.UpdateProfile(ctx, user); err != nil {
			return err
		}
		changed, err = s.applyBirds(ctx, p.UserID, req.Birds)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if len(req.Birds) > 0 {
		s.invalidateReports(ctx)
		events.Notify(ctx, s.log, s.events, events.InventoryUpdated, p.UserID,
			events.InventoryPayload{UserID: p.UserID, LineIDs: changed})
	}
	s.log.Info("profile updated", slog.Int64("user_id", p.UserID), slog.Int("inventory_changes", len(req.Birds)))

	profile, err := s.loadProfile(ctx, p.UserID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return profile, nil
}

func applyPersonal(user *models.User, req ProfileUpdate) error {
	if req.FullName != nil {
		if err := user.SetFullName(*req.FullName); err != nil {
			return err
		}
	}
	if req.Phone != nil {
		if err := user.SetPhone(*req.Phone); err != nil {
			return err
		}
	}
	if req.Address != nil {
		user.Address = *req.Address
	}
	if req.ProfileImage != nil {
		user.ProfileImage = *req.ProfileImage
	}
	return nil
}

// applyBirds применяет изменения инвентаря и возвращает ID затронутых строк.
func (s *Service) applyBirds(ctx context.Context, userID int64, updates []BirdsUpdate) ([]int64, error) {
	if len(updates) == 0 {
		return nil, nil
	}

	lines, err := s.storage.ListUserBirds(ctx, userID)
	if err != nil {
		return nil, err
	}
	byCategory := make(map[int64]*models.UserBirds, len(lines))
	for i := range lines {
		byCategory[lines[i].CategoryID] = &lines[i]
	}

	now := s.now()
	seen := make(map[int64]bool, len(updates))
	changed := make([]int64, 0, len(updates))
	for _, u := range updates {
		if seen[u.CategoryID] {
			return nil, apperr.Validation("category_id", "category listed more than once")
		}
		seen[u.CategoryID] = true
		if err := new(models.UserBirds).SetCounts(u.Quantity, u.ExportQuantity); err != nil {
			return nil, err
		}

		if _, err := s.storage.GetCategory(ctx, u.CategoryID); err != nil {
			if errors.Is(err, apperr.ErrNotFound) {
				return nil, apperr.Validation("category_id", "unknown category")
			}
			return nil, err
		}

		line, exists := byCategory[u.CategoryID]
		switch {
		case u.Quantity == 0 && exists:
			if err := s.storage.DeleteUserBirds(ctx, line.ID); err != nil {
				return nil, err
			}
			changed = append(changed, line.ID)
		case u.Quantity == 0:
			// строки нет, удалять нечего
		case exists:
			if err := line.SetCounts(u.Quantity, u.ExportQuantity); err != nil {
				return nil, err
			}
			if u.Notes != nil {
				line.Notes = *u.Notes
			}
			line.Touch(now)
			if err := s.storage.UpdateUserBirds(ctx, line); err != nil {
				return nil, err
			}
			changed = append(changed, line.ID)
		default:
			line, err := models.NewUserBirds(userID, u.CategoryID, u.Quantity, u.ExportQuantity, now)
			if err != nil {
				return nil, err
			}
			if u.Notes != nil {
				line.Notes = *u.Notes
			}
			if line.ID, err = s.storage.CreateUserBirds(ctx, line); err != nil {
				return nil, err
			}
			changed = append(changed, line.ID)
		}
	}
	return changed, nil
}

func (s *Service) loadProfile(ctx context.Context, userID int64) (*Profile, error) {
	user, err := s.storage.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	lines, err := s.storage.ListUserBirds(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &Profile{User: user, Birds: lines, Totals: aggregate.MemberTotals(lines)}, nil
}
