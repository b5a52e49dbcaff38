// Package members обслуживает работу специалистов и продавцов с
// ассоциированными членами: обзор инвентаря, нормы корма и награды.
package members

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/magabrotheeeer/aviary/internal/access"
	"github.com/magabrotheeeer/aviary/internal/aggregate"
	"github.com/magabrotheeeer/aviary/internal/events"
	"github.com/magabrotheeeer/aviary/internal/lib/apperr"
	"github.com/magabrotheeeer/aviary/internal/models"
)

// Storage описывает операции хранилища, нужные сервису.
type Storage interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error

	GetUser(ctx context.Context, id int64) (*models.User, error)
	ListAssociates(ctx context.Context) ([]models.User, error)

	ListAssociateBirds(ctx context.Context) ([]models.UserBirds, error)
	ListUserBirds(ctx context.Context, userID int64) ([]models.UserBirds, error)
	GetUserBirds(ctx context.Context, id int64) (*models.UserBirds, error)
	UpdateUserBirds(ctx context.Context, b *models.UserBirds) error

	CreateAward(ctx context.Context, a *models.Award) (int64, error)
	GetAward(ctx context.Context, id int64) (*models.Award, error)
	DeleteAward(ctx context.Context, id int64) error
	ListAwardsByUser(ctx context.Context, userID int64) ([]models.Award, error)
}

// Service реализует сценарии работы с ассоциированными членами.
type Service struct {
	log     *slog.Logger
	storage Storage
	events  events.Publisher
	now     func() time.Time
}

// New создаёт сервис.
func New(log *slog.Logger, storage Storage, publisher events.Publisher) *Service {
	return &Service{
		log:     log,
		storage: storage,
		events:  publisher,
		now:     time.Now,
	}
}

// Overview возвращает всех ассоциированных членов с итогами,
// упорядоченных по последнему изменению инвентаря.
func (s *Service) Overview(ctx context.Context, p access.Principal) ([]aggregate.MemberOverview, error) {
	const op = "members.Overview"
	if err := access.Authorize(p, access.ViewMembers); err != nil {
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
	result := make([]aggregate.MemberOverview, 0, len(users))
	for _, u := range users {
		result = append(result, aggregate.MemberOverview{User: u, Totals: aggregate.MemberTotals(byUser[u.ID])})
	}
	aggregate.SortByRecentActivity(result)
	return result, nil
}

// MemberView: карточка ассоциированного члена. ReadOnly выставляется
// для ролей, которым нельзя менять корм.
type MemberView struct {
	User     *models.User       `json:"user"`
	Birds    []models.UserBirds `json:"birds"`
	Awards   []models.Award     `json:"awards"`
	Totals   aggregate.Totals   `json:"totals"`
	ReadOnly bool               `json:"read_only"`
}

// Member возвращает карточку члена. Неассоциированный пользователь не виден.
func (s *Service) Member(ctx context.Context, p access.Principal, memberID int64) (*MemberView, error) {
	const op = "members.Member"
	if err := access.Authorize(p, access.ViewMembers); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	user, err := s.associate(ctx, memberID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	birds, err := s.storage.ListUserBirds(ctx, memberID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	awards, err := s.storage.ListAwardsByUser(ctx, memberID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &MemberView{
		User:     user,
		Birds:    birds,
		Awards:   awards,
		Totals:   aggregate.MemberTotals(birds),
		ReadOnly: !access.Allowed(p.Role, access.EditFeed),
	}, nil
}

// FeedUpdate: новые параметры корма для строки инвентаря.
// Nil FoodPerBird снимает норму.
type FeedUpdate struct {
	LineID      int64
	FoodPerBird *float64
	FoodType    string
	FoodProcess string
}

// UpdateFeed меняет поля корма в строках инвентаря члена одной транзакцией.
func (s *Service) UpdateFeed(ctx context.Context, p access.Principal, memberID int64, updates []FeedUpdate) ([]models.UserBirds, error) {
	const op = "members.UpdateFeed"
	if err := access.Authorize(p, access.EditFeed); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if len(updates) == 0 {
		return nil, fmt.Errorf("%s: %w", op, apperr.Validation("birds", "no feed updates given"))
	}

	var lines []models.UserBirds
	changed := make([]int64, 0, len(updates))
	err := s.storage.RunInTx(ctx, func(ctx context.Context) error {
		if _, err := s.associate(ctx, memberID); err != nil {
			return err
		}

		now := s.now()
		for _, u := range updates {
			line, err := s.storage.GetUserBirds(ctx, u.LineID)
			if err != nil {
				return err
			}
			if line.UserID != memberID {
				return fmt.Errorf("%w: inventory line %d of member %d", apperr.ErrNotFound, u.LineID, memberID)
			}
			if err = line.SetFoodPerBird(u.FoodPerBird); err != nil {
				return err
			}
			if err = line.SetFeed(strings.TrimSpace(u.FoodType), strings.TrimSpace(u.FoodProcess)); err != nil {
				return err
			}
			line.Touch(now)
			if err = s.storage.UpdateUserBirds(ctx, line); err != nil {
				return err
			}
			changed = append(changed, line.ID)
		}

		var err error
		lines, err = s.storage.ListUserBirds(ctx, memberID)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	events.Notify(ctx, s.log, s.events, events.InventoryUpdated, p.UserID,
		events.InventoryPayload{UserID: memberID, LineIDs: changed})
	s.log.Info("feed updated",
		slog.Int64("member_id", memberID),
		slog.Int("lines", len(changed)),
		slog.Int64("by", p.UserID),
	)
	return lines, nil
}

// AwardRequest: результат конкурса. Пустая дата означает сегодня.
type AwardRequest struct {
	ContestName string
	AwardDate   *time.Time
	Position    string
	Category    string
	Description string
}

// RecordAward записывает награду ассоциированному члену.
func (s *Service) RecordAward(ctx context.Context, p access.Principal, memberID int64, req AwardRequest) (*models.Award, error) {
	const op = "members.RecordAward"
	if err := access.Authorize(p, access.RecordAward); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	date := s.now()
	if req.AwardDate != nil {
		date = *req.AwardDate
	}
	award, err := models.NewAward(memberID, req.ContestName, date, req.Position, req.Category, req.Description)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	err = s.storage.RunInTx(ctx, func(ctx context.Context) error {
		if _, err := s.associate(ctx, memberID); err != nil {
			return err
		}
		var err error
		award.ID, err = s.storage.CreateAward(ctx, award)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	events.Notify(ctx, s.log, s.events, events.AwardRecorded, p.UserID, awardPayload(award))
	s.log.Info("award recorded", slog.Int64("award_id", award.ID), slog.Int64("member_id", memberID))
	return award, nil
}

// DeleteAward удаляет награду.
func (s *Service) DeleteAward(ctx context.Context, p access.Principal, awardID int64) error {
	const op = "members.DeleteAward"
	if err := access.Authorize(p, access.DeleteAward); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	var award *models.Award
	err := s.storage.RunInTx(ctx, func(ctx context.Context) error {
		var err error
		if award, err = s.storage.GetAward(ctx, awardID); err != nil {
			return err
		}
		return s.storage.DeleteAward(ctx, awardID)
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	events.Notify(ctx, s.log, s.events, events.AwardDeleted, p.UserID, awardPayload(award))
	s.log.Info("award deleted", slog.Int64("award_id", awardID), slog.Int64("by", p.UserID))
	return nil
}

// associate загружает пользователя и скрывает неассоциированных.
func (s *Service) associate(ctx context.Context, id int64) (*models.User, error) {
	user, err := s.storage.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}
	if !user.IsAssociated {
		return nil, fmt.Errorf("%w: user %d is not an associate", apperr.ErrNotFound, id)
	}
	return user, nil
}

func awardPayload(a *models.Award) events.AwardPayload {
	return events.AwardPayload{
		AwardID:     a.ID,
		UserID:      a.UserID,
		ContestName: a.ContestName,
		Position:    a.Position,
		AwardDate:   a.AwardDate,
	}
}
