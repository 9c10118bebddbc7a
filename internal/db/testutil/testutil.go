// Package testutil starts a migrated PostgreSQL container for repository tests.
package testutil

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

const (
	testDatabase = "shorts_catalog_test"
	testUser     = "test"
	testPassword = "test"
)

// TestDatabase is a migrated PostgreSQL container with an open pool.
type TestDatabase struct {
	Pool      *pgxpool.Pool
	Container *postgres.PostgresContainer
	ConnStr   string
}

// SetupTestDatabase creates a PostgreSQL container, runs migrations, and returns a connection pool.
func SetupTestDatabase(t *testing.T) *TestDatabase {
	t.Helper()
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:17-alpine",
		postgres.WithDatabase(testDatabase),
		postgres.WithUsername(testUser),
		postgres.WithPassword(testPassword),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err)

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	m, err := migrate.New(fmt.Sprintf("file://%s", MigrationsDir(t)), connStr)
	require.NoError(t, err)
	require.NoError(t, m.Up())
	m.Close()

	pool, err := pgxpool.New(ctx, connStr)
	require.NoError(t, err)
	require.NoError(t, pool.Ping(ctx))

	return &TestDatabase{
		Pool:      pool,
		Container: pgContainer,
		ConnStr:   connStr,
	}
}

// MigrationsDir walks up from the working directory to the module root and returns its migrations folder.
func MigrationsDir(t *testing.T) string {
	t.Helper()

	dir, err := os.Getwd()
	require.NoError(t, err)

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return filepath.Join(dir, "migrations")
		}
		parent := filepath.Dir(dir)
		require.NotEqual(t, dir, parent, "module root not found")
		dir = parent
	}
}

// Cleanup closes the pool and terminates the container.
func (td *TestDatabase) Cleanup(t *testing.T) {
	ctx := context.Background()

	if td.Pool != nil {
		td.Pool.Close()
	}

	if td.Container != nil {
		require.NoError(t, td.Container.Terminate(ctx))
	}
}

// TruncateTables empties the catalog and both run logs.
func (td *TestDatabase) TruncateTables(t *testing.T) {
	_, err := td.Pool.Exec(context.Background(), `TRUNCATE TABLE videos, execution_logs, error_logs`)
	require.NoError(t, err)
}

// SeedVideo inserts a minimal video row with an explicit ingestion time.
func (td *TestDatabase) SeedVideo(t *testing.T, videoID string, ingestedAt time.Time) {
	_, err := td.Pool.Exec(context.Background(), `
		INSERT INTO videos (video_id, channel_id, title, thumbnail_url, duration_raw, duration_seconds,
		                    creator_username, creator_avatar, run_id, ingested_at)
		VALUES ($1, 'UCseed', 'seed', 'https://i.ytimg.com/seed.jpg', 'PT30S', 30, 'seed', 'https://yt3.ggpht.com/seed', $2, $3)
	`, videoID, uuid.New(), ingestedAt)
	require.NoError(t, err)
}
