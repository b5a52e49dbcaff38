package storage

import (
	"context"
	"database/sql"

	"github.com/magabrotheeeer/aviary/internal/models"
)

const userBirdsSelect = `SELECT ub.id, ub.user_id, ub.category_id, c.name, ub.quantity, ub.export_quantity,
		ub.food_per_bird, ub.food_type, ub.food_process, ub.notes, ub.last_updated
	FROM user_birds ub
	JOIN bird_categories c ON c.id = ub.category_id`

func scanUserBirds(row rowScanner) (*models.UserBirds, error) {
	var b models.UserBirds
	var food sql.NullFloat64
	if err := row.Scan(&b.ID, &b.UserID, &b.CategoryID, &b.CategoryName, &b.Quantity, &b.ExportQuantity,
		&food, &b.FoodType, &b.FoodProcess, &b.Notes, &b.LastUpdated); err != nil {
		return nil, err
	}
	if food.Valid {
		v := food.Float64
		b.FoodPerBird = &v
	}
	b.LastUpdated = b.LastUpdated.UTC()
	return &b, nil
}

func nullFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}

// CreateUserBirds сохраняет строку инвентаря и возвращает её ID.
func (s *Storage) CreateUserBirds(ctx context.Context, b *models.UserBirds) (int64, error) {
	const op = "storage.CreateUserBirds"
	if err := checkCtx(ctx, op); err != nil {
		return 0, err
	}

	query := `INSERT INTO user_birds (user_id, category_id, quantity, export_quantity,
				  food_per_bird, food_type, food_process, notes, last_updated)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			  RETURNING id`
	var id int64
	if err := s.conn(ctx).QueryRowContext(ctx, query,
		b.UserID, b.CategoryID, b.Quantity, b.ExportQuantity,
		nullFloat(b.FoodPerBird), b.FoodType, b.FoodProcess, b.Notes, b.LastUpdated).Scan(&id); err != nil {
		return 0, mapError(op, err)
	}
	return id, nil
}

// GetUserBirds возвращает строку инвентаря по ID.
func (s *Storage) GetUserBirds(ctx context.Context, id int64) (*models.UserBirds, error) {
	const op = "storage.GetUserBirds"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	b, err := scanUserBirds(s.conn(ctx).QueryRowContext(ctx, userBirdsSelect+` WHERE ub.id = $1`, id))
	if err != nil {
		return nil, mapError(op, err)
	}
	return b, nil
}

// ListUserBirds возвращает инвентарь пользователя в порядке создания строк.
func (s *Storage) ListUserBirds(ctx context.Context, userID int64) ([]models.UserBirds, error) {
	const op = "storage.ListUserBirds"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}
	return s.queryUserBirds(ctx, op, userBirdsSelect+` WHERE ub.user_id = $1 ORDER BY ub.id`, userID)
}

// ListAssociateBirds возвращает инвентарь всех ассоциированных членов,
// сгруппированный по пользователю и упорядоченный по ID строки.
func (s *Storage) ListAssociateBirds(ctx context.Context) ([]models.UserBirds, error) {
	const op = "storage.ListAssociateBirds"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}
	query := userBirdsSelect + `
		JOIN users u ON u.id = ub.user_id
		WHERE u.is_associated
		ORDER BY ub.user_id, ub.id`
	return s.queryUserBirds(ctx, op, query)
}

func (s *Storage) queryUserBirds(ctx context.Context, op, query string, args ...any) ([]models.UserBirds, error) {
	rows, err := s.conn(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapError(op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	result := []models.UserBirds{}
	for rows.Next() {
		b, err := scanUserBirds(rows)
		if err != nil {
			return nil, mapError(op, err)
		}
		result = append(result, *b)
	}
	if err = rows.Err(); err != nil {
		return nil, mapError(op, err)
	}
	return result, nil
}

// UpdateUserBirds сохраняет изменяемые поля строки инвентаря.
func (s *Storage) UpdateUserBirds(ctx context.Context, b *models.UserBirds) error {
	const op = "storage.UpdateUserBirds"
	if err := checkCtx(ctx, op); err != nil {
		return err
	}

	query := `UPDATE user_birds
			  SET quantity = $1, export_quantity = $2, food_per_bird = $3, food_type = $4,
				  food_process = $5, notes = $6, last_updated = $7
			  WHERE id = $8`
	res, err := s.conn(ctx).ExecContext(ctx, query,
		b.Quantity, b.ExportQuantity, nullFloat(b.FoodPerBird), b.FoodType,
		b.FoodProcess, b.Notes, b.LastUpdated, b.ID)
	if err != nil {
		return mapError(op, err)
	}
	return affected(op, res)
}

// DeleteUserBirds удаляет строку инвентаря.
func (s *Storage) DeleteUserBirds(ctx context.Context, id int64) error {
	const op = "storage.DeleteUserBirds"
	if err := checkCtx(ctx, op); err != nil {
		return err
	}

	res, err := s.conn(ctx).ExecContext(ctx, `DELETE FROM user_birds WHERE id = $1`, id)
	if err != nil {
		return mapError(op, err)
	}
	return affected(op, res)
}
