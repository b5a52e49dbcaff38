package models

import (
	"strings"
	"unicode/utf8"

	"github.com/magabrotheeeer/aviary/internal/lib/apperr"
)

// BirdCategory: категория инвентаря, например «Canario de color».
// ParentCategory хранит имя родительской категории как метку; иерархия
// ограничена одним уровнем, это проверяется при записи.
type BirdCategory struct {
	ID             int64  `json:"id"`
	Name           string `json:"name"`
	ParentCategory string `json:"parent_category,omitempty"`
	ResourceNeeds  string `json:"resource_needs,omitempty"`
	Description    string `json:"description,omitempty"`
}

// NewBirdCategory создаёт категорию с проверкой имени и родителя.
func NewBirdCategory(name, parent string) (*BirdCategory, error) {
	c := &BirdCategory{}
	if err := c.SetName(name); err != nil {
		return nil, err
	}
	if err := c.SetParent(parent); err != nil {
		return nil, err
	}
	return c, nil
}

// SetName задаёт имя категории не короче 3 символов.
func (c *BirdCategory) SetName(name string) error {
	name = strings.TrimSpace(name)
	n := utf8.RuneCountInString(name)
	if n < 3 {
		return apperr.Validation("name", "category name must be at least 3 characters")
	}
	if n > 100 {
		return apperr.Validation("name", "category name must be at most 100 characters")
	}
	if c.ParentCategory != "" && strings.EqualFold(c.ParentCategory, name) {
		return apperr.Validation("name", "category cannot be its own parent")
	}
	c.Name = name
	return nil
}

// SetParent задаёт метку родительской категории; пустая строка снимает родителя.
func (c *BirdCategory) SetParent(parent string) error {
	parent = strings.TrimSpace(parent)
	if parent != "" && strings.EqualFold(parent, c.Name) {
		return apperr.Validation("parent_category", "category cannot be its own parent")
	}
	c.ParentCategory = parent
	return nil
}
