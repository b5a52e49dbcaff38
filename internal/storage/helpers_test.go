package storage

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/magabrotheeeer/aviary/internal/migrations"
	"github.com/magabrotheeeer/aviary/internal/models"
)

// setupTestDatabase поднимает PostgreSQL в контейнере и накатывает миграции.
func setupTestDatabase(t *testing.T) *Storage {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(time.Minute),
		),
	)
	require.NoError(t, err, "failed to start container")
	t.Cleanup(func() {
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %s", err)
		}
	})

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	var storage *Storage
	for range 10 {
		storage, err = New(connStr)
		if err == nil {
			break
		}
		time.Sleep(time.Second)
	}
	require.NoError(t, err, "failed to create storage after retries")
	t.Cleanup(func() { _ = storage.Close() })

	root, err := filepath.Abs("../..")
	require.NoError(t, err)
	require.NoError(t, migrations.Run(storage.DB, filepath.Join(root, "migrations")))

	return storage
}

// TestDataFactory создаёт тестовые данные через методы Storage.
type TestDataFactory struct {
	storage *Storage
	faker   *gofakeit.Faker
	seq     int
}

// NewTestDataFactory создаёт фабрику с фиксированным seed.
func NewTestDataFactory(storage *Storage) *TestDataFactory {
	return &TestDataFactory{storage: storage, faker: gofakeit.New(42)}
}

// CreateUser создаёт пользователя со случайными данными.
func (f *TestDataFactory) CreateUser(t *testing.T, fullName string, associated bool) *models.User {
	t.Helper()
	f.seq++
	if fullName == "" {
		fullName = f.faker.Name()
	}
	u, err := models.NewUser(
		fmt.Sprintf("%s%d", f.faker.Username(), f.seq),
		fmt.Sprintf("user%d.%s", f.seq, f.faker.Email()),
		fullName,
		f.faker.Numerify("##########"),
	)
	require.NoError(t, err)
	u.PasswordHash = "hash"
	u.IsAssociated = associated

	id, err := f.storage.CreateUser(context.Background(), u)
	require.NoError(t, err)
	u.ID = id
	return u
}

// Category возвращает сидированную категорию по имени.
func (f *TestDataFactory) Category(t *testing.T, name string) *models.BirdCategory {
	t.Helper()
	c, err := f.storage.GetCategoryByName(context.Background(), name)
	require.NoError(t, err)
	return c
}

// CreateBirds добавляет строку инвентаря.
func (f *TestDataFactory) CreateBirds(t *testing.T, userID, categoryID int64, quantity, export int, food *float64) *models.UserBirds {
	t.Helper()
	b, err := models.NewUserBirds(userID, categoryID, quantity, export, time.Now())
	require.NoError(t, err)
	require.NoError(t, b.SetFoodPerBird(food))

	id, err := f.storage.CreateUserBirds(context.Background(), b)
	require.NoError(t, err)
	b.ID = id
	return b
}

// CreateAward добавляет награду.
func (f *TestDataFactory) CreateAward(t *testing.T, userID int64, date time.Time, position string) *models.Award {
	t.Helper()
	a, err := models.NewAward(userID, f.faker.Company(), date, position, "", "")
	require.NoError(t, err)

	id, err := f.storage.CreateAward(context.Background(), a)
	require.NoError(t, err)
	a.ID = id
	return a
}

func countRows(t *testing.T, s *Storage, table string, userID int64) int {
	t.Helper()
	var n int
	require.NoError(t, s.DB.QueryRow(`SELECT COUNT(*) FROM `+table+` WHERE user_id = $1`, userID).Scan(&n))
	return n
}
