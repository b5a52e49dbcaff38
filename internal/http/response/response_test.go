package response

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/go-playground/validator"
	"github.com/stretchr/testify/assert"

	"github.com/magabrotheeeer/aviary/internal/lib/apperr"
)

func TestStatusOKWithData(t *testing.T) {
	data := map[string]string{"key": "value"}
	resp := StatusOKWithData(data)

	assert.Equal(t, StatusOK, resp.Status)
	assert.Empty(t, resp.Error)
	assert.Equal(t, data, resp.Data)
}

func TestError(t *testing.T) {
	msg := "something went wrong"
	resp := Error(msg)

	assert.Equal(t, StatusError, resp.Status)
	assert.Equal(t, msg, resp.Error)
	assert.Nil(t, resp.Data)
}

func TestValidationError(t *testing.T) {
	type TestStruct struct {
		Email    string `validate:"required,email"`
		Phone    string `validate:"numeric"`
		Quantity int    `validate:"gte=0"`
		Role     string `validate:"oneof=admin user"`
	}

	v := validator.New()
	err := v.Struct(TestStruct{Email: "pepe", Phone: "55-12", Quantity: -1, Role: "owner"})
	assert.Error(t, err)

	resp := ValidationError(err.(validator.ValidationErrors))

	assert.Equal(t, StatusError, resp.Status)
	assert.Contains(t, resp.Error, "field Email must be a valid email")
	assert.Contains(t, resp.Error, "field Phone can contain only numbers")
	assert.Contains(t, resp.Error, "field Quantity must be greater than or equal to 0")
	assert.Contains(t, resp.Error, "field Role must be one of [admin user]")
}

func TestValidationErrorRequired(t *testing.T) {
	type TestStruct struct {
		Name string `validate:"required"`
	}

	err := validator.New().Struct(TestStruct{})
	assert.Error(t, err)

	resp := ValidationError(err.(validator.ValidationErrors))
	assert.Equal(t, StatusError, resp.Status)
	assert.Contains(t, resp.Error, "field Name is a required field")
}

func TestFromError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantError  string
		wantField  string
	}{
		{
			name:       "validation keeps message and field",
			err:        fmt.Errorf("account.UpdateProfile: %w", apperr.Validation("phone", "phone must contain only digits")),
			wantStatus: http.StatusUnprocessableEntity,
			wantError:  "phone must contain only digits",
			wantField:  "phone",
		},
		{
			name:       "forbidden",
			err:        fmt.Errorf("members.UpdateFeed: %w: dependiente may not edit_feed", apperr.ErrForbidden),
			wantStatus: http.StatusForbidden,
			wantError:  "forbidden",
		},
		{
			name:       "not found",
			err:        fmt.Errorf("membership.DeleteUser: %w", apperr.ErrNotFound),
			wantStatus: http.StatusNotFound,
			wantError:  "not found",
		},
		{
			name:       "unauthorized",
			err:        fmt.Errorf("account.Login: %w: invalid credentials", apperr.ErrUnauthorized),
			wantStatus: http.StatusUnauthorized,
			wantError:  "unauthorized",
		},
		{
			name:       "storage error is hidden",
			err:        &apperr.StorageError{Op: "storage.CreateUser", Err: errors.New("connection refused")},
			wantStatus: http.StatusInternalServerError,
			wantError:  "internal error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, resp := FromError(tt.err)
			assert.Equal(t, tt.wantStatus, status)
			assert.Equal(t, StatusError, resp.Status)
			assert.Equal(t, tt.wantError, resp.Error)
			assert.Equal(t, tt.wantField, resp.Field)
		})
	}
}
