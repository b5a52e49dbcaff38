package aggregate

import (
	"time"

	"github.com/magabrotheeeer/aviary/internal/models"
)

// AwardFilter отбирает членов по наличию наград. Year и Position проверяются
// независимо друг от друга: достаточно одной награды за год и одной (возможно,
// другой) награды с нужным местом.
type AwardFilter struct {
	Year     *int
	Position string
}

// Empty сообщает, что фильтр ничего не ограничивает.
func (f AwardFilter) Empty() bool {
	return f.Year == nil && f.Position == ""
}

// YearBounds возвращает полуинтервал [1 января года, 1 января следующего года).
func (f AwardFilter) YearBounds() (from, to time.Time, ok bool) {
	if f.Year == nil {
		return time.Time{}, time.Time{}, false
	}
	from = time.Date(*f.Year, time.January, 1, 0, 0, 0, 0, time.UTC)
	return from, from.AddDate(1, 0, 0), true
}

// Matches проверяет набор наград одного члена.
func (f AwardFilter) Matches(awards []models.Award) bool {
	if from, to, ok := f.YearBounds(); ok {
		found := false
		for _, a := range awards {
			if !a.AwardDate.Before(from) && a.AwardDate.Before(to) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if f.Position != "" {
		found := false
		for _, a := range awards {
			if a.Position == f.Position {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// FilterMembers оставляет пользователей, чьи награды удовлетворяют фильтру.
// Порядок пользователей сохраняется.
func FilterMembers(users []models.User, awards []models.Award, f AwardFilter) []models.User {
	if f.Empty() {
		return users
	}
	byUser := make(map[int64][]models.Award, len(users))
	for _, a := range awards {
		byUser[a.UserID] = append(byUser[a.UserID], a)
	}
	result := make([]models.User, 0, len(users))
	for _, u := range users {
		if f.Matches(byUser[u.ID]) {
			result = append(result, u)
		}
	}
	return result
}
