package storage

import (
	"context"

	"github.com/magabrotheeeer/aviary/internal/models"
)

const categoryColumns = `id, name, parent_category, resource_needs, description`

func scanCategory(row rowScanner) (*models.BirdCategory, error) {
	var c models.BirdCategory
	if err := row.Scan(&c.ID, &c.Name, &c.ParentCategory, &c.ResourceNeeds, &c.Description); err != nil {
		return nil, err
	}
	return &c, nil
}

// CreateCategory сохраняет категорию и возвращает её ID.
func (s *Storage) CreateCategory(ctx context.Context, c *models.BirdCategory) (int64, error) {
	const op = "storage.CreateCategory"
	if err := checkCtx(ctx, op); err != nil {
		return 0, err
	}

	query := `INSERT INTO bird_categories (name, parent_category, resource_needs, description)
			  VALUES ($1, $2, $3, $4)
			  RETURNING id`
	var id int64
	if err := s.conn(ctx).QueryRowContext(ctx, query,
		c.Name, c.ParentCategory, c.ResourceNeeds, c.Description).Scan(&id); err != nil {
		return 0, mapError(op, err)
	}
	return id, nil
}

// GetCategory возвращает категорию по ID.
func (s *Storage) GetCategory(ctx context.Context, id int64) (*models.BirdCategory, error) {
	const op = "storage.GetCategory"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	query := `SELECT ` + categoryColumns + ` FROM bird_categories WHERE id = $1`
	c, err := scanCategory(s.conn(ctx).QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, mapError(op, err)
	}
	return c, nil
}

// GetCategoryByName ищет категорию по имени без учёта регистра;
// точное совпадение имеет приоритет.
func (s *Storage) GetCategoryByName(ctx context.Context, name string) (*models.BirdCategory, error) {
	const op = "storage.GetCategoryByName"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	query := `SELECT ` + categoryColumns + ` FROM bird_categories
			  WHERE lower(name) = lower($1)
			  ORDER BY name = $1 DESC, id
			  LIMIT 1`
	c, err := scanCategory(s.conn(ctx).QueryRowContext(ctx, query, name))
	if err != nil {
		return nil, mapError(op, err)
	}
	return c, nil
}

// ListCategories возвращает все категории по алфавиту.
func (s *Storage) ListCategories(ctx context.Context) ([]models.BirdCategory, error) {
	const op = "storage.ListCategories"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	rows, err := s.conn(ctx).QueryContext(ctx, `SELECT `+categoryColumns+` FROM bird_categories ORDER BY name`)
	if err != nil {
		return nil, mapError(op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	result := []models.BirdCategory{}
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, mapError(op, err)
		}
		result = append(result, *c)
	}
	if err = rows.Err(); err != nil {
		return nil, mapError(op, err)
	}
	return result, nil
}
