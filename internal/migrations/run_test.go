package migrations

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	_ "github.com/jackc/pgx/v5/stdlib"
)

func getTestDB(t *testing.T) (*sql.DB, func()) {
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("user"),
		postgres.WithPassword("password"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(t, err)

	dsn, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := sql.Open("pgx", dsn)
	require.NoError(t, err)

	cleanup := func() {
		_ = db.Close()
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %s", err)
		}
	}

	return db, cleanup
}

func getMigrationsPath(t *testing.T) string {
	projectRoot, err := filepath.Abs("../..")
	require.NoError(t, err)
	return filepath.Join(projectRoot, "migrations")
}

func tableExists(t *testing.T, db *sql.DB, name string) bool {
	var exists bool
	err := db.QueryRow(`
		SELECT EXISTS (
			SELECT 1 FROM information_schema.tables
			WHERE table_schema = 'public' AND table_name = $1
		)`, name).Scan(&exists)
	require.NoError(t, err)
	return exists
}

func TestRunMigrations(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}
	db, cleanup := getTestDB(t)
	defer cleanup()

	require.NoError(t, Run(db, getMigrationsPath(t)))

	for _, table := range []string{"users", "bird_categories", "user_birds", "awards", "bird_food_types"} {
		require.Truef(t, tableExists(t, db, table), "table %s should exist", table)
	}

	var categories int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM bird_categories").Scan(&categories))
	require.Equal(t, 8, categories)

	var parent string
	require.NoError(t, db.QueryRow(
		"SELECT parent_category FROM bird_categories WHERE name = 'Paloma deportiva'").Scan(&parent))
	require.Equal(t, "Paloma de raza", parent)
}

func TestRunMigrations_CheckConstraints(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}
	db, cleanup := getTestDB(t)
	defer cleanup()
	require.NoError(t, Run(db, getMigrationsPath(t)))

	var userID int64
	require.NoError(t, db.QueryRow(`
		INSERT INTO users (username, email, password_hash, full_name, phone)
		VALUES ('pepe', 'pepe@aves.com', 'x', 'Pepe', '55512345') RETURNING id`).Scan(&userID))

	_, err := db.Exec(`
		INSERT INTO user_birds (user_id, category_id, quantity, export_quantity)
		VALUES ($1, (SELECT id FROM bird_categories LIMIT 1), 2, 5)`, userID)
	require.Error(t, err, "export above quantity must be rejected")

	_, err = db.Exec(`
		INSERT INTO users (username, email, password_hash, role, full_name, phone)
		VALUES ('root', 'root@aves.com', 'x', 'superuser', 'Root', '55512345')`)
	require.Error(t, err, "unknown role must be rejected")
}

func TestMigrationIdempotency(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}
	db, cleanup := getTestDB(t)
	defer cleanup()

	path := getMigrationsPath(t)
	require.NoError(t, Run(db, path))
	require.NoError(t, Run(db, path), "running migrations twice should not fail")

	var categories int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM bird_categories").Scan(&categories))
	require.Equal(t, 8, categories)
}
