// Package models содержит доменные сущности ассоциации птицеводов:
// пользователей, категории птиц, строки инвентаря, награды и типы корма.
// Каждый сеттер проверяет инварианты поля и возвращает ValidationError,
// не изменяя сущность, если значение недопустимо.
package models

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/magabrotheeeer/aviary/internal/lib/apperr"
)

// Role: закрытый перечень ролей пользователя.
type Role string

const (
	// RoleAdmin управляет пользователями и видит все отчёты.
	RoleAdmin Role = "admin"
	// RoleSpecialist назначает корм и фиксирует награды ассоциированных членов.
	RoleSpecialist Role = "specialist"
	// RoleDependiente только просматривает данные ассоциированных членов.
	RoleDependiente Role = "dependiente"
	// RoleUser управляет своим профилем и своим инвентарём.
	RoleUser Role = "user"
)

// Roles возвращает все допустимые роли.
func Roles() []Role {
	return []Role{RoleAdmin, RoleSpecialist, RoleDependiente, RoleUser}
}

// Valid сообщает, входит ли роль в перечень.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleSpecialist, RoleDependiente, RoleUser:
		return true
	}
	return false
}

// ParseRole разбирает строковое значение роли.
func ParseRole(s string) (Role, error) {
	r := Role(s)
	if !r.Valid() {
		return "", apperr.Validation("role", "invalid role")
	}
	return r, nil
}

// User представляет члена ассоциации или сотрудника.
type User struct {
	ID           int64      `json:"id"`
	Username     string     `json:"username"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"`
	Role         Role       `json:"role"`
	IsAssociated bool       `json:"is_associated"`
	FullName     string     `json:"full_name"`
	Phone        string     `json:"phone"`
	Address      string     `json:"address,omitempty"`
	ProfileImage string     `json:"profile_image,omitempty"` // путь к изображению профиля
	LastLogin    *time.Time `json:"last_login,omitempty"`
	IsActive     bool       `json:"is_active"`
}

// NewUser создаёт активного пользователя с ролью user, не ассоциированного.
func NewUser(username, email, fullName, phone string) (*User, error) {
	u := &User{Role: RoleUser, IsActive: true}
	if err := u.SetUsername(username); err != nil {
		return nil, err
	}
	if err := u.SetEmail(email); err != nil {
		return nil, err
	}
	if err := u.SetFullName(fullName); err != nil {
		return nil, err
	}
	if err := u.SetPhone(phone); err != nil {
		return nil, err
	}
	return u, nil
}

// SetUsername задаёт имя пользователя длиной от 3 до 80 символов.
func (u *User) SetUsername(username string) error {
	n := utf8.RuneCountInString(username)
	if n < 3 || n > 80 {
		return apperr.Validation("username", "username must be between 3 and 80 characters")
	}
	u.Username = username
	return nil
}

// SetEmail задаёт адрес почты; адрес обязан содержать @.
func (u *User) SetEmail(email string) error {
	if !strings.Contains(email, "@") {
		return apperr.Validation("email", "email must contain @")
	}
	if utf8.RuneCountInString(email) > 120 {
		return apperr.Validation("email", "email must be at most 120 characters")
	}
	u.Email = email
	return nil
}

// SetPhone задаёт телефон: только цифры, не короче 8 символов.
func (u *User) SetPhone(phone string) error {
	if len(phone) < 8 || !isDigits(phone) {
		return apperr.Validation("phone", "phone must contain only digits and be at least 8 characters long")
	}
	if len(phone) > 20 {
		return apperr.Validation("phone", "phone must be at most 20 characters")
	}
	u.Phone = phone
	return nil
}

// SetFullName задаёт полное имя.
func (u *User) SetFullName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return apperr.Validation("full_name", "full name is required")
	}
	if utf8.RuneCountInString(name) > 100 {
		return apperr.Validation("full_name", "full name must be at most 100 characters")
	}
	u.FullName = name
	return nil
}

// SetRole задаёт роль из закрытого перечня.
func (u *User) SetRole(r Role) error {
	if !r.Valid() {
		return apperr.Validation("role", "invalid role")
	}
	u.Role = r
	return nil
}

func isDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
