package models

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/magabrotheeeer/aviary/internal/lib/apperr"
)

const (
	maxContestNameLen   = 200
	maxPositionLen      = 50
	maxAwardCategoryLen = 100
)

// Award: результат конкурса, полученный членом ассоциации.
type Award struct {
	ID          int64     `json:"id"`
	UserID      int64     `json:"user_id"`
	ContestName string    `json:"contest_name"`
	AwardDate   time.Time `json:"award_date"`
	Position    string    `json:"position"` // 1ro, 2do, ...
	Category    string    `json:"category,omitempty"`
	Description string    `json:"description,omitempty"`
}

// NewAward создаёт запись о награде. Название конкурса, дата и место обязательны.
func NewAward(userID int64, contestName string, date time.Time, position, category, description string) (*Award, error) {
	contestName = strings.TrimSpace(contestName)
	if contestName == "" {
		return nil, apperr.Validation("contest_name", "contest name is required")
	}
	if utf8.RuneCountInString(contestName) > maxContestNameLen {
		return nil, apperr.Validation("contest_name", "contest name cannot exceed 200 characters")
	}
	position = strings.TrimSpace(position)
	if position == "" {
		return nil, apperr.Validation("position", "position is required")
	}
	if utf8.RuneCountInString(position) > maxPositionLen {
		return nil, apperr.Validation("position", "position cannot exceed 50 characters")
	}
	category = strings.TrimSpace(category)
	if utf8.RuneCountInString(category) > maxAwardCategoryLen {
		return nil, apperr.Validation("category", "category cannot exceed 100 characters")
	}
	a := &Award{
		UserID:      userID,
		ContestName: contestName,
		Position:    position,
		Category:    category,
		Description: description,
	}
	if err := a.SetDate(date); err != nil {
		return nil, err
	}
	return a, nil
}

// SetDate задаёт дату награды; нулевая дата недопустима.
func (a *Award) SetDate(date time.Time) error {
	if date.IsZero() {
		return apperr.Validation("award_date", "award date cannot be empty")
	}
	y, m, d := date.Date()
	a.AwardDate = time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return nil
}
