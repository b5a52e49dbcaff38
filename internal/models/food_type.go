package models

import (
	"math"
	"strings"
	"unicode/utf8"

	"github.com/magabrotheeeer/aviary/internal/lib/apperr"
)

// BirdFoodType: справочник кормов с ценой за фунт.
// С UserBirds.FoodType связан только по названию.
type BirdFoodType struct {
	ID            int64   `json:"id"`
	Name          string  `json:"name"`
	PricePerPound float64 `json:"price_per_pound"`
	IsActive      bool    `json:"is_active"`
}

// NewBirdFoodType создаёт активный тип корма.
func NewBirdFoodType(name string, price float64) (*BirdFoodType, error) {
	f := &BirdFoodType{IsActive: true}
	if err := f.SetName(name); err != nil {
		return nil, err
	}
	if err := f.SetPrice(price); err != nil {
		return nil, err
	}
	return f, nil
}

// SetName задаёт название не короче 2 символов.
func (f *BirdFoodType) SetName(name string) error {
	name = strings.TrimSpace(name)
	n := utf8.RuneCountInString(name)
	if n < 2 {
		return apperr.Validation("name", "name must be at least 2 characters")
	}
	if n > 50 {
		return apperr.Validation("name", "name must be at most 50 characters")
	}
	f.Name = name
	return nil
}

// SetPrice задаёт неотрицательную цену за фунт.
func (f *BirdFoodType) SetPrice(price float64) error {
	if math.IsNaN(price) || math.IsInf(price, 0) || price < 0 {
		return apperr.Validation("price_per_pound", "price cannot be negative")
	}
	f.PricePerPound = price
	return nil
}
