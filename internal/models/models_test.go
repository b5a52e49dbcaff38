package models

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/aviary/internal/lib/apperr"
)

func ptr(v float64) *float64 { return &v }

func TestNewUser(t *testing.T) {
	tests := []struct {
		name      string
		username  string
		email     string
		fullName  string
		phone     string
		wantField string
	}{
		{name: "valid", username: "pepe", email: "pepe@aves.com", fullName: "Pepe Pérez", phone: "55512345"},
		{name: "email without at", username: "pepe", email: "pepe.aves.com", fullName: "Pepe", phone: "55512345", wantField: "email"},
		{name: "phone with letters", username: "pepe", email: "p@a.com", fullName: "Pepe", phone: "5551234a", wantField: "phone"},
		{name: "phone too short", username: "pepe", email: "p@a.com", fullName: "Pepe", phone: "1234567", wantField: "phone"},
		{name: "short username", username: "pe", email: "p@a.com", fullName: "Pepe", phone: "55512345", wantField: "username"},
		{name: "blank full name", username: "pepe", email: "p@a.com", fullName: "  ", phone: "55512345", wantField: "full_name"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u, err := NewUser(tt.username, tt.email, tt.fullName, tt.phone)
			if tt.wantField == "" {
				require.NoError(t, err)
				assert.Equal(t, RoleUser, u.Role)
				assert.False(t, u.IsAssociated)
				assert.True(t, u.IsActive)
				return
			}
			require.Error(t, err)
			assert.Nil(t, u)
			var ve *apperr.ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tt.wantField, ve.Field)
		})
	}
}

func TestUser_SettersKeepValueOnFailure(t *testing.T) {
	u, err := NewUser("pepe", "pepe@aves.com", "Pepe", "55512345")
	require.NoError(t, err)

	assert.Error(t, u.SetEmail("nope"))
	assert.Equal(t, "pepe@aves.com", u.Email)

	assert.Error(t, u.SetPhone("12-34-5678"))
	assert.Equal(t, "55512345", u.Phone)

	assert.Error(t, u.SetRole(Role("superuser")))
	assert.Equal(t, RoleUser, u.Role)

	require.NoError(t, u.SetRole(RoleDependiente))
	assert.Equal(t, RoleDependiente, u.Role)
}

func TestParseRole(t *testing.T) {
	for _, r := range Roles() {
		got, err := ParseRole(string(r))
		require.NoError(t, err)
		assert.Equal(t, r, got)
	}

	_, err := ParseRole("Admin")
	assert.True(t, apperr.IsValidation(err))
	_, err = ParseRole("")
	assert.True(t, apperr.IsValidation(err))
}

func TestBirdCategory(t *testing.T) {
	c, err := NewBirdCategory("Paloma deportiva", "Paloma de raza")
	require.NoError(t, err)
	assert.Equal(t, "Paloma de raza", c.ParentCategory)

	_, err = NewBirdCategory("Av", "")
	assert.True(t, apperr.IsValidation(err))

	_, err = NewBirdCategory("Psitácidas", "psitácidas")
	assert.True(t, apperr.IsValidation(err))
}

func TestUserBirds_Counts(t *testing.T) {
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		quantity int
		export   int
		wantErr  bool
	}{
		{name: "export equal to quantity", quantity: 5, export: 5},
		{name: "zero export", quantity: 5, export: 0},
		{name: "negative quantity", quantity: -1, export: 0, wantErr: true},
		{name: "negative export", quantity: 5, export: -1, wantErr: true},
		{name: "export above quantity", quantity: 5, export: 6, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := NewUserBirds(1, 2, tt.quantity, tt.export, now)
			if tt.wantErr {
				assert.True(t, apperr.IsValidation(err))
				assert.Nil(t, b)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.quantity, b.Quantity)
			assert.Equal(t, tt.export, b.ExportQuantity)
			assert.Equal(t, now, b.LastUpdated)
		})
	}
}

func TestUserBirds_LoweringQuantityRevalidatesExport(t *testing.T) {
	b, err := NewUserBirds(1, 2, 10, 8, time.Now())
	require.NoError(t, err)

	err = b.SetQuantity(5)
	assert.True(t, apperr.IsValidation(err))
	assert.Equal(t, 10, b.Quantity)
	assert.Equal(t, 8, b.ExportQuantity)

	require.NoError(t, b.SetQuantity(8))
	assert.Error(t, b.SetExportQuantity(9))
	require.NoError(t, b.SetExportQuantity(3))
	assert.Equal(t, 3, b.ExportQuantity)
}

func TestUserBirds_FoodRequired(t *testing.T) {
	tests := []struct {
		name     string
		quantity int
		food     *float64
		want     float64
	}{
		{name: "no feed assigned", quantity: 12, food: nil, want: 0},
		{name: "whole numbers", quantity: 10, food: ptr(0.5), want: 5},
		{name: "rounded to cents", quantity: 3, food: ptr(0.333), want: 1},
		{name: "rounded up", quantity: 7, food: ptr(0.0475), want: 0.33},
		{name: "zero birds", quantity: 0, food: ptr(1.2), want: 0},
		{name: "exact half goes to even", quantity: 1, food: ptr(0.125), want: 0.12},
		{name: "exact half above one", quantity: 3, food: ptr(0.375), want: 1.12},
		{name: "binary value just below half", quantity: 1, food: ptr(0.015), want: 0.01},
		{name: "product just below half", quantity: 2, food: ptr(0.0225), want: 0.04},
		{name: "literal just below half", quantity: 1, food: ptr(0.045), want: 0.04},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := &UserBirds{}
			require.NoError(t, b.SetCounts(tt.quantity, 0))
			require.NoError(t, b.SetFoodPerBird(tt.food))
			assert.Equal(t, tt.want, b.FoodRequired())
		})
	}
}

func TestUserBirds_FoodPerBirdValidation(t *testing.T) {
	b := &UserBirds{}
	require.NoError(t, b.SetFoodPerBird(ptr(0.2)))

	assert.True(t, apperr.IsValidation(b.SetFoodPerBird(ptr(-0.1))))
	require.NotNil(t, b.FoodPerBird)
	assert.Equal(t, 0.2, *b.FoodPerBird)

	require.NoError(t, b.SetFoodPerBird(nil))
	assert.Nil(t, b.FoodPerBird)
}

func TestUserBirds_SetFeed(t *testing.T) {
	b := &UserBirds{}
	require.NoError(t, b.SetFeed("Maíz", "molido"))
	assert.Equal(t, "Maíz", b.FoodType)
	assert.Equal(t, "molido", b.FoodProcess)

	require.NoError(t, b.SetFeed(FoodTypeUnprocessedRice, "molido"))
	assert.Equal(t, FoodTypeUnprocessedRice, b.FoodType)
	assert.Empty(t, b.FoodProcess)

	long := strings.Repeat("ñ", 51)
	var ve *apperr.ValidationError
	require.ErrorAs(t, b.SetFeed(long, ""), &ve)
	assert.Equal(t, "food_type", ve.Field)
	require.ErrorAs(t, b.SetFeed("Maíz", long), &ve)
	assert.Equal(t, "food_process", ve.Field)
	assert.Equal(t, FoodTypeUnprocessedRice, b.FoodType, "value kept on failure")

	require.NoError(t, b.SetFeed(FoodTypeUnprocessedRice, long), "process is dropped for rice")
	require.NoError(t, b.SetFeed(strings.Repeat("ñ", 50), ""))
}

func TestUserBirds_MarshalJSONIncludesFoodRequired(t *testing.T) {
	b := UserBirds{ID: 3, Quantity: 4, FoodPerBird: ptr(0.25)}
	data, err := json.Marshal(b)
	require.NoError(t, err)

	var out map[string]any
	require.NoError(t, json.Unmarshal(data, &out))
	assert.Equal(t, 1.0, out["food_required"])
	assert.Equal(t, 4.0, out["quantity"])
}

func TestNewAward(t *testing.T) {
	date := time.Date(2024, 1, 1, 15, 30, 0, 0, time.UTC)
	a, err := NewAward(7, "Expo Nacional", date, "1ro", "Canario de color", "")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), a.AwardDate)

	_, err = NewAward(7, "Expo Nacional", time.Time{}, "1ro", "", "")
	assert.True(t, apperr.IsValidation(err))

	_, err = NewAward(7, "", date, "1ro", "", "")
	assert.True(t, apperr.IsValidation(err))

	_, err = NewAward(7, "Expo", date, " ", "", "")
	assert.True(t, apperr.IsValidation(err))

	a, err = NewAward(7, strings.Repeat("x", 200), date, "1ro", "", "")
	require.NoError(t, err)
	assert.Len(t, a.ContestName, 200)

	var ve *apperr.ValidationError
	_, err = NewAward(7, strings.Repeat("x", 201), date, "1ro", "", "")
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "contest_name", ve.Field)

	_, err = NewAward(7, "Expo", date, strings.Repeat("1", 51), "", "")
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "position", ve.Field)

	_, err = NewAward(7, "Expo", date, "1ro", strings.Repeat("c", 101), "")
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "category", ve.Field)
}

func TestBirdFoodType(t *testing.T) {
	f, err := NewBirdFoodType("Maíz", 0.45)
	require.NoError(t, err)
	assert.True(t, f.IsActive)

	_, err = NewBirdFoodType("M", 1)
	assert.True(t, apperr.IsValidation(err))

	assert.True(t, apperr.IsValidation(f.SetPrice(-1)))
	assert.Equal(t, 0.45, f.PricePerPound)
	require.NoError(t, f.SetPrice(0))
}
