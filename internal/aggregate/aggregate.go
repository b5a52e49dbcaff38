// Package aggregate содержит чистые функции свёртки над инвентарём и наградами:
// итоги по члену ассоциации, отчёт по категориям и фильтрацию по наградам.
package aggregate

import (
	"sort"
	"time"

	"github.com/magabrotheeeer/aviary/internal/models"
)

// Totals: итоги по инвентарю одного члена ассоциации.
type Totals struct {
	TotalBirds         int        `json:"total_birds"`
	TotalFood          float64    `json:"total_food"`
	LastQuantityChange int        `json:"last_quantity_change"`
	LastFoodChange     float64    `json:"last_food_change"`
	LastUpdated        *time.Time `json:"last_updated,omitempty"`
}

// MemberTotals сворачивает строки инвентаря в том порядке, в котором они переданы.
//
// LastQuantityChange и LastFoodChange: разность двух последних элементов
// текущего порядка, а не разность по времени. Для корма учитываются только
// строки с ненулевой потребностью.
func MemberTotals(lines []models.UserBirds) Totals {
	var t Totals
	var foods []float64
	for i := range lines {
		t.TotalBirds += lines[i].Quantity
		if food := lines[i].FoodRequired(); food != 0 {
			foods = append(foods, food)
			t.TotalFood += food
		}
		if lu := lines[i].LastUpdated; !lu.IsZero() && (t.LastUpdated == nil || lu.After(*t.LastUpdated)) {
			v := lu
			t.LastUpdated = &v
		}
	}
	t.TotalFood = models.RoundCents(t.TotalFood)

	if n := len(lines); n > 1 {
		t.LastQuantityChange = lines[n-1].Quantity - lines[n-2].Quantity
	}
	if n := len(foods); n > 1 {
		t.LastFoodChange = foods[n-1] - foods[n-2]
	}
	return t
}

// MemberOverview: член ассоциации вместе с итогами по его инвентарю.
type MemberOverview struct {
	User models.User `json:"user"`
	Totals
}

// SortByRecentActivity упорядочивает членов по последнему изменению инвентаря,
// от новых к старым; члены без инвентаря идут последними. Сортировка устойчивая.
func SortByRecentActivity(items []MemberOverview) {
	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i].LastUpdated, items[j].LastUpdated
		switch {
		case a == nil:
			return false
		case b == nil:
			return true
		default:
			return a.After(*b)
		}
	})
}
