package apperr_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/magabrotheeeer/aviary/internal/lib/apperr"
)

func TestValidationError_Message(t *testing.T) {
	err := apperr.Validation("email", "must contain @")
	assert.Equal(t, "email: must contain @", err.Error())

	err = &apperr.ValidationError{Message: "bad input"}
	assert.Equal(t, "bad input", err.Error())
}

func TestIsValidation(t *testing.T) {
	wrapped := fmt.Errorf("service.Do: %w", apperr.Validation("phone", "too short"))
	assert.True(t, apperr.IsValidation(wrapped))
	assert.False(t, apperr.IsValidation(apperr.ErrForbidden))
	assert.False(t, apperr.IsValidation(nil))
}

func TestStorageError_Unwrap(t *testing.T) {
	cause := errors.New("connection reset")
	err := fmt.Errorf("outer: %w", &apperr.StorageError{Op: "storage.CreateUser", Err: cause})

	assert.ErrorIs(t, err, cause)

	var se *apperr.StorageError
	assert.ErrorAs(t, err, &se)
	assert.Equal(t, "storage.CreateUser", se.Op)
	assert.Equal(t, "storage.CreateUser: connection reset", se.Error())
}
