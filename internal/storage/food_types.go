package storage

import (
	"context"

	"github.com/magabrotheeeer/aviary/internal/models"
)

const foodTypeColumns = `id, name, price_per_pound, is_active`

func scanFoodType(row rowScanner) (*models.BirdFoodType, error) {
	var f models.BirdFoodType
	if err := row.Scan(&f.ID, &f.Name, &f.PricePerPound, &f.IsActive); err != nil {
		return nil, err
	}
	return &f, nil
}

// CreateFoodType сохраняет тип корма и возвращает его ID.
func (s *Storage) CreateFoodType(ctx context.Context, f *models.BirdFoodType) (int64, error) {
	const op = "storage.CreateFoodType"
	if err := checkCtx(ctx, op); err != nil {
		return 0, err
	}

	query := `INSERT INTO bird_food_types (name, price_per_pound, is_active)
			  VALUES ($1, $2, $3)
			  RETURNING id`
	var id int64
	if err := s.conn(ctx).QueryRowContext(ctx, query, f.Name, f.PricePerPound, f.IsActive).Scan(&id); err != nil {
		return 0, mapError(op, err)
	}
	return id, nil
}

// GetFoodType возвращает тип корма по ID.
func (s *Storage) GetFoodType(ctx context.Context, id int64) (*models.BirdFoodType, error) {
	const op = "storage.GetFoodType"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	query := `SELECT ` + foodTypeColumns + ` FROM bird_food_types WHERE id = $1`
	f, err := scanFoodType(s.conn(ctx).QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, mapError(op, err)
	}
	return f, nil
}

// UpdateFoodType сохраняет название, цену и активность типа корма.
func (s *Storage) UpdateFoodType(ctx context.Context, f *models.BirdFoodType) error {
	const op = "storage.UpdateFoodType"
	if err := checkCtx(ctx, op); err != nil {
		return err
	}

	query := `UPDATE bird_food_types SET name = $1, price_per_pound = $2, is_active = $3 WHERE id = $4`
	res, err := s.conn(ctx).ExecContext(ctx, query, f.Name, f.PricePerPound, f.IsActive, f.ID)
	if err != nil {
		return mapError(op, err)
	}
	return affected(op, res)
}

// ListFoodTypes возвращает типы корма по алфавиту; activeOnly скрывает неактивные.
func (s *Storage) ListFoodTypes(ctx context.Context, activeOnly bool) ([]models.BirdFoodType, error) {
	const op = "storage.ListFoodTypes"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	query := `SELECT ` + foodTypeColumns + ` FROM bird_food_types
			  WHERE is_active OR NOT $1
			  ORDER BY name`
	rows, err := s.conn(ctx).QueryContext(ctx, query, activeOnly)
	if err != nil {
		return nil, mapError(op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	result := []models.BirdFoodType{}
	for rows.Next() {
		f, err := scanFoodType(rows)
		if err != nil {
			return nil, mapError(op, err)
		}
		result = append(result, *f)
	}
	if err = rows.Err(); err != nil {
		return nil, mapError(op, err)
	}
	return result, nil
}
