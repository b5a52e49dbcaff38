// Package apperr описывает таксономию ошибок приложения: ошибки валидации,
// отказ в доступе, отсутствие сущности и ошибки хранилища.
// Обработчики HTTP используют её, чтобы выбрать код ответа.
package apperr

import (
	"errors"
	"fmt"
)

var (
	// ErrForbidden возвращается, когда роли не хватает прав на действие.
	ErrForbidden = errors.New("forbidden")
	// ErrNotFound возвращается, когда запрошенная сущность отсутствует.
	ErrNotFound = errors.New("not found")
	// ErrUnauthorized возвращается при неверных учётных данных или недействительном токене.
	ErrUnauthorized = errors.New("unauthorized")
)

// ValidationError описывает некорректное значение поля, которое может исправить пользователь.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Validation создаёт ValidationError для поля.
func Validation(field, msg string) error {
	return &ValidationError{Field: field, Message: msg}
}

// IsValidation сообщает, есть ли в цепочке ошибок ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// StorageError оборачивает сбой транзакционного хранилища.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}
