package storage

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/magabrotheeeer/aviary/internal/models"
)

const userColumns = `id, username, email, password_hash, role, is_associated,
	full_name, phone, address, profile_image, last_login, is_active`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*models.User, error) {
	var u models.User
	var lastLogin sql.NullTime
	if err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.Role, &u.IsAssociated,
		&u.FullName, &u.Phone, &u.Address, &u.ProfileImage, &lastLogin, &u.IsActive); err != nil {
		return nil, err
	}
	if lastLogin.Valid {
		t := lastLogin.Time.UTC()
		u.LastLogin = &t
	}
	return &u, nil
}

// CreateUser сохраняет нового пользователя и возвращает его ID.
func (s *Storage) CreateUser(ctx context.Context, u *models.User) (int64, error) {
	const op = "storage.CreateUser"
	if err := checkCtx(ctx, op); err != nil {
		return 0, err
	}

	query := `INSERT INTO users (username, email, password_hash, role, is_associated,
				  full_name, phone, address, profile_image, is_active)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
			  RETURNING id`
	var id int64
	if err := s.conn(ctx).QueryRowContext(ctx, query,
		u.Username, u.Email, u.PasswordHash, u.Role, u.IsAssociated,
		u.FullName, u.Phone, u.Address, u.ProfileImage, u.IsActive).Scan(&id); err != nil {
		return 0, mapError(op, err)
	}
	return id, nil
}

// GetUser возвращает пользователя по ID.
func (s *Storage) GetUser(ctx context.Context, id int64) (*models.User, error) {
	const op = "storage.GetUser"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	u, err := scanUser(s.conn(ctx).QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, mapError(op, err)
	}
	return u, nil
}

// GetUserByUsername возвращает пользователя по username.
func (s *Storage) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	const op = "storage.GetUserByUsername"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	query := `SELECT ` + userColumns + ` FROM users WHERE username = $1`
	u, err := scanUser(s.conn(ctx).QueryRowContext(ctx, query, username))
	if err != nil {
		return nil, mapError(op, err)
	}
	return u, nil
}

// ExistsUsernameOrEmail сообщает, заняты ли username или email.
func (s *Storage) ExistsUsernameOrEmail(ctx context.Context, username, email string) (bool, error) {
	const op = "storage.ExistsUsernameOrEmail"
	if err := checkCtx(ctx, op); err != nil {
		return false, err
	}

	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM users WHERE username = $1 OR email = $2)`
	if err := s.conn(ctx).QueryRowContext(ctx, query, username, email).Scan(&exists); err != nil {
		return false, mapError(op, err)
	}
	return exists, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// ListUsers возвращает пользователей, чьё полное имя содержит name без учёта регистра.
// Пустое name возвращает всех. Порядок: по ID.
func (s *Storage) ListUsers(ctx context.Context, name string) ([]models.User, error) {
	const op = "storage.ListUsers"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	query := `SELECT ` + userColumns + ` FROM users
			  WHERE $1 = '' OR full_name ILIKE '%' || $2 || '%'
			  ORDER BY id`
	return s.queryUsers(ctx, op, query, name, likeEscaper.Replace(name))
}

// ListAssociates возвращает ассоциированных членов, упорядоченных по полному имени.
func (s *Storage) ListAssociates(ctx context.Context) ([]models.User, error) {
	const op = "storage.ListAssociates"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	query := `SELECT ` + userColumns + ` FROM users
			  WHERE is_associated
			  ORDER BY full_name, id`
	return s.queryUsers(ctx, op, query)
}

func (s *Storage) queryUsers(ctx context.Context, op, query string, args ...any) ([]models.User, error) {
	rows, err := s.conn(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapError(op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	result := []models.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, mapError(op, err)
		}
		result = append(result, *u)
	}
	if err = rows.Err(); err != nil {
		return nil, mapError(op, err)
	}
	return result, nil
}

// UpdateProfile сохраняет редактируемые пользователем поля профиля.
func (s *Storage) UpdateProfile(ctx context.Context, u *models.User) error {
	const op = "storage.UpdateProfile"
	if err := checkCtx(ctx, op); err != nil {
		return err
	}

	query := `UPDATE users
			  SET full_name = $1, phone = $2, address = $3, profile_image = $4
			  WHERE id = $5`
	res, err := s.conn(ctx).ExecContext(ctx, query, u.FullName, u.Phone, u.Address, u.ProfileImage, u.ID)
	if err != nil {
		return mapError(op, err)
	}
	return affected(op, res)
}

// UpdateAccess задаёт роль и флаг ассоциации.
func (s *Storage) UpdateAccess(ctx context.Context, id int64, role models.Role, associated bool) error {
	const op = "storage.UpdateAccess"
	if err := checkCtx(ctx, op); err != nil {
		return err
	}

	query := `UPDATE users SET role = $1, is_associated = $2 WHERE id = $3`
	res, err := s.conn(ctx).ExecContext(ctx, query, role, associated, id)
	if err != nil {
		return mapError(op, err)
	}
	return affected(op, res)
}

// TouchLogin фиксирует время последнего входа.
func (s *Storage) TouchLogin(ctx context.Context, id int64, at time.Time) error {
	const op = "storage.TouchLogin"
	if err := checkCtx(ctx, op); err != nil {
		return err
	}

	res, err := s.conn(ctx).ExecContext(ctx, `UPDATE users SET last_login = $1 WHERE id = $2`, at.UTC(), id)
	if err != nil {
		return mapError(op, err)
	}
	return affected(op, res)
}

// DeleteUser удаляет пользователя; инвентарь и награды удаляются каскадно.
func (s *Storage) DeleteUser(ctx context.Context, id int64) error {
	const op = "storage.DeleteUser"
	if err := checkCtx(ctx, op); err != nil {
		return err
	}

	res, err := s.conn(ctx).ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return mapError(op, err)
	}
	return affected(op, res)
}
