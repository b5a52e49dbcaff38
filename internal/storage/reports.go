package storage

import (
	"context"
	"database/sql"

	"github.com/magabrotheeeer/aviary/internal/aggregate"
)

// CategoryTotals суммирует количество и экспорт по категориям, которые держит
// хотя бы один ассоциированный член. Категории без такого инвентаря в отчёт не попадают.
func (s *Storage) CategoryTotals(ctx context.Context) ([]aggregate.CategoryGroup, error) {
	const op = "storage.CategoryTotals"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	query := `SELECT c.name, SUM(ub.quantity), SUM(ub.export_quantity)
			  FROM user_birds ub
			  JOIN bird_categories c ON c.id = ub.category_id
			  JOIN users u ON u.id = ub.user_id
			  WHERE u.is_associated
			  GROUP BY c.name
			  ORDER BY c.name`
	rows, err := s.conn(ctx).QueryContext(ctx, query)
	if err != nil {
		return nil, mapError(op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	result := []aggregate.CategoryGroup{}
	for rows.Next() {
		var g aggregate.CategoryGroup
		var quantity, export sql.NullInt64
		if err = rows.Scan(&g.Category, &quantity, &export); err != nil {
			return nil, mapError(op, err)
		}
		if quantity.Valid {
			v := quantity.Int64
			g.TotalQuantity = &v
		}
		if export.Valid {
			v := export.Int64
			g.TotalExport = &v
		}
		result = append(result, g)
	}
	if err = rows.Err(); err != nil {
		return nil, mapError(op, err)
	}
	return result, nil
}
