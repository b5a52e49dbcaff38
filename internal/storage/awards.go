package storage

import (
	"context"

	"github.com/magabrotheeeer/aviary/internal/models"
)

const awardColumns = `id, user_id, contest_name, award_date, position, category, description`

func scanAward(row rowScanner) (*models.Award, error) {
	var a models.Award
	if err := row.Scan(&a.ID, &a.UserID, &a.ContestName, &a.AwardDate, &a.Position,
		&a.Category, &a.Description); err != nil {
		return nil, err
	}
	a.AwardDate = a.AwardDate.UTC()
	return &a, nil
}

// CreateAward сохраняет награду и возвращает её ID.
func (s *Storage) CreateAward(ctx context.Context, a *models.Award) (int64, error) {
	const op = "storage.CreateAward"
	if err := checkCtx(ctx, op); err != nil {
		return 0, err
	}

	query := `INSERT INTO awards (user_id, contest_name, award_date, position, category, description)
			  VALUES ($1, $2, $3, $4, $5, $6)
			  RETURNING id`
	var id int64
	if err := s.conn(ctx).QueryRowContext(ctx, query,
		a.UserID, a.ContestName, a.AwardDate, a.Position, a.Category, a.Description).Scan(&id); err != nil {
		return 0, mapError(op, err)
	}
	return id, nil
}

// GetAward возвращает награду по ID.
func (s *Storage) GetAward(ctx context.Context, id int64) (*models.Award, error) {
	const op = "storage.GetAward"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	a, err := scanAward(s.conn(ctx).QueryRowContext(ctx, `SELECT `+awardColumns+` FROM awards WHERE id = $1`, id))
	if err != nil {
		return nil, mapError(op, err)
	}
	return a, nil
}

// DeleteAward удаляет награду.
func (s *Storage) DeleteAward(ctx context.Context, id int64) error {
	const op = "storage.DeleteAward"
	if err := checkCtx(ctx, op); err != nil {
		return err
	}

	res, err := s.conn(ctx).ExecContext(ctx, `DELETE FROM awards WHERE id = $1`, id)
	if err != nil {
		return mapError(op, err)
	}
	return affected(op, res)
}

// ListAwardsByUser возвращает награды пользователя, новые первыми.
func (s *Storage) ListAwardsByUser(ctx context.Context, userID int64) ([]models.Award, error) {
	const op = "storage.ListAwardsByUser"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}
	query := `SELECT ` + awardColumns + ` FROM awards WHERE user_id = $1 ORDER BY award_date DESC, id DESC`
	return s.queryAwards(ctx, op, query, userID)
}

// ListAwards возвращает все награды, новые первыми.
func (s *Storage) ListAwards(ctx context.Context) ([]models.Award, error) {
	const op = "storage.ListAwards"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}
	return s.queryAwards(ctx, op, `SELECT `+awardColumns+` FROM awards ORDER BY award_date DESC, id DESC`)
}

func (s *Storage) queryAwards(ctx context.Context, op, query string, args ...any) ([]models.Award, error) {
	rows, err := s.conn(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapError(op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	result := []models.Award{}
	for rows.Next() {
		a, err := scanAward(rows)
		if err != nil {
			return nil, mapError(op, err)
		}
		result = append(result, *a)
	}
	if err = rows.Err(); err != nil {
		return nil, mapError(op, err)
	}
	return result, nil
}
