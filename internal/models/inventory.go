package models

import (
	"encoding/json"
	"math"
	"strconv"
	"time"
	"unicode/utf8"

	"github.com/magabrotheeeer/aviary/internal/lib/apperr"
)

// FoodTypeUnprocessedRice не подвергается обработке, поэтому способ обработки для него сбрасывается.
const FoodTypeUnprocessedRice = "Arroz en cáscara"

const maxFeedFieldLen = 50

// UserBirds: строка инвентаря: сколько птиц категории держит член ассоциации
// и чем их кормят. Инвариант: 0 <= ExportQuantity <= Quantity.
type UserBirds struct {
	ID             int64     `json:"id"`
	UserID         int64     `json:"user_id"`
	CategoryID     int64     `json:"category_id"`
	CategoryName   string    `json:"category_name,omitempty"`
	Quantity       int       `json:"quantity"`
	ExportQuantity int       `json:"export_quantity"`
	FoodPerBird    *float64  `json:"food_per_bird,omitempty"` // фунтов на птицу в день
	FoodType       string    `json:"food_type,omitempty"`
	FoodProcess    string    `json:"food_process,omitempty"`
	Notes          string    `json:"notes,omitempty"`
	LastUpdated    time.Time `json:"last_updated"`
}

// NewUserBirds создаёт строку инвентаря с проверенными количествами.
func NewUserBirds(userID, categoryID int64, quantity, exportQuantity int, now time.Time) (*UserBirds, error) {
	b := &UserBirds{UserID: userID, CategoryID: categoryID}
	if err := b.SetCounts(quantity, exportQuantity); err != nil {
		return nil, err
	}
	b.Touch(now)
	return b, nil
}

// SetQuantity меняет количество; уже заданный объём экспорта проверяется заново.
func (b *UserBirds) SetQuantity(quantity int) error {
	if quantity < 0 {
		return apperr.Validation("quantity", "quantity cannot be negative")
	}
	if b.ExportQuantity > quantity {
		return apperr.Validation("export_quantity", "export quantity cannot exceed total quantity")
	}
	b.Quantity = quantity
	return nil
}

// SetExportQuantity меняет объём экспорта в пределах [0, Quantity].
func (b *UserBirds) SetExportQuantity(exportQuantity int) error {
	if exportQuantity < 0 {
		return apperr.Validation("export_quantity", "export quantity cannot be negative")
	}
	if exportQuantity > b.Quantity {
		return apperr.Validation("export_quantity", "export quantity cannot exceed total quantity")
	}
	b.ExportQuantity = exportQuantity
	return nil
}

// SetCounts атомарно задаёт количество и экспорт.
func (b *UserBirds) SetCounts(quantity, exportQuantity int) error {
	if quantity < 0 {
		return apperr.Validation("quantity", "quantity cannot be negative")
	}
	if exportQuantity < 0 {
		return apperr.Validation("export_quantity", "export quantity cannot be negative")
	}
	if exportQuantity > quantity {
		return apperr.Validation("export_quantity", "export quantity cannot exceed total quantity")
	}
	b.Quantity = quantity
	b.ExportQuantity = exportQuantity
	return nil
}

// SetFoodPerBird задаёт суточную норму корма; nil снимает норму.
func (b *UserBirds) SetFoodPerBird(food *float64) error {
	if food != nil {
		if math.IsNaN(*food) || math.IsInf(*food, 0) || *food < 0 {
			return apperr.Validation("food_per_bird", "food per bird cannot be negative")
		}
		v := *food
		food = &v
	}
	b.FoodPerBird = food
	return nil
}

// SetFeed задаёт тип корма и способ обработки. При ошибке строка не меняется.
func (b *UserBirds) SetFeed(foodType, foodProcess string) error {
	if utf8.RuneCountInString(foodType) > maxFeedFieldLen {
		return apperr.Validation("food_type", "food type cannot exceed 50 characters")
	}
	if foodType == FoodTypeUnprocessedRice {
		foodProcess = ""
	}
	if utf8.RuneCountInString(foodProcess) > maxFeedFieldLen {
		return apperr.Validation("food_process", "food process cannot exceed 50 characters")
	}
	b.FoodType = foodType
	b.FoodProcess = foodProcess
	return nil
}

// Touch обновляет отметку последнего изменения.
func (b *UserBirds) Touch(now time.Time) {
	b.LastUpdated = now.UTC()
}

// FoodRequired возвращает суточную потребность в корме, округлённую до сотых.
func (b *UserBirds) FoodRequired() float64 {
	var perBird float64
	if b.FoodPerBird != nil {
		perBird = *b.FoodPerBird
	}
	return RoundCents(float64(b.Quantity) * perBird)
}

// RoundCents округляет до двух знаков после запятой по точному двоичному
// значению, половины уходят к чётной цифре.
func RoundCents(v float64) float64 {
	r, _ := strconv.ParseFloat(strconv.FormatFloat(v, 'f', 2, 64), 64)
	return r
}

// MarshalJSON добавляет вычисляемое поле food_required.
func (b UserBirds) MarshalJSON() ([]byte, error) {
	type plain UserBirds
	return json.Marshal(struct {
		plain
		FoodRequired float64 `json:"food_required"`
	}{
		plain:        plain(b),
		FoodRequired: b.FoodRequired(),
	})
}
