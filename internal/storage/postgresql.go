// Package storage реализует хранилище ассоциации на основе PostgreSQL:
// пользователи, категории, инвентарь, награды, справочник кормов и
// агрегирующий запрос отчёта по категориям. Все методы работают внутри
// транзакции из контекста, если она открыта через RunInTx.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	// Регистрация драйвера pgx для использования с database/sql.
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/magabrotheeeer/aviary/internal/lib/apperr"
)

// Storage инкапсулирует соединение с базой данных PostgreSQL.
type Storage struct {
	DB *sql.DB
}

// New создаёт подключение к PostgreSQL и проверяет его доступность.
func New(storageConnectionString string) (*Storage, error) {
	const op = "storage.New"

	db, err := sql.Open("pgx", storageConnectionString)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err = db.PingContext(context.Background()); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &Storage{
		DB: db,
	}, nil
}

// Ping проверяет соединение с базой.
func (s *Storage) Ping(ctx context.Context) error {
	return s.DB.PingContext(ctx)
}

// Close закрывает пул соединений.
func (s *Storage) Close() error {
	return s.DB.Close()
}

type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type txKey struct{}

// conn возвращает транзакцию из контекста или пул соединений.
func (s *Storage) conn(ctx context.Context) querier {
	if tx, ok := ctx.Value(txKey{}).(*sql.Tx); ok {
		return tx
	}
	return s.DB
}

// RunInTx выполняет fn в одной транзакции: commit при nil, rollback при ошибке
// или панике. Вложенный вызов присоединяется к уже открытой транзакции.
func (s *Storage) RunInTx(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	const op = "storage.RunInTx"

	if _, ok := ctx.Value(txKey{}).(*sql.Tx); ok {
		return fn(ctx)
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return &apperr.StorageError{Op: op, Err: err}
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err = fn(context.WithValue(ctx, txKey{}, tx)); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			return errors.Join(err, &apperr.StorageError{Op: op, Err: rbErr})
		}
		return err
	}
	if err = tx.Commit(); err != nil {
		return &apperr.StorageError{Op: op, Err: err}
	}
	return nil
}

// uniqueFields сопоставляет ограничения уникальности с полями сущностей.
var uniqueFields = map[string][2]string{
	"users_username_key":                 {"username", "username already exists"},
	"users_email_key":                    {"email", "email already exists"},
	"bird_categories_name_key":           {"name", "category already exists"},
	"bird_food_types_name_key":           {"name", "food type already exists"},
	"user_birds_user_id_category_id_key": {"category_id", "inventory line for this category already exists"},
}

// mapError переводит ошибку драйвера в таксономию apperr.
func mapError(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s: %w", op, apperr.ErrNotFound)
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%s: %w", op, err)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgerrcode.UniqueViolation:
			if f, ok := uniqueFields[pgErr.ConstraintName]; ok {
				return fmt.Errorf("%s: %w", op, apperr.Validation(f[0], f[1]))
			}
			return fmt.Errorf("%s: %w", op, apperr.Validation("", "record already exists"))
		case pgerrcode.ForeignKeyViolation:
			return fmt.Errorf("%s: %w", op, apperr.Validation("", "referenced record does not exist"))
		case pgerrcode.CheckViolation:
			return fmt.Errorf("%s: %w", op, apperr.Validation("", "value violates constraint "+pgErr.ConstraintName))
		case pgerrcode.StringDataRightTruncationDataException:
			return fmt.Errorf("%s: %w", op, apperr.Validation(pgErr.ColumnName, "value too long"))
		}
	}
	return &apperr.StorageError{Op: op, Err: err}
}

func checkCtx(ctx context.Context, op string) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
		return nil
	}
}

func affected(op string, res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return &apperr.StorageError{Op: op, Err: err}
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", op, apperr.ErrNotFound)
	}
	return nil
}
