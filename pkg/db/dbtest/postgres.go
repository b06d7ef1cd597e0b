//go:build integration

package dbtest

import (
	"context"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/angelmondragon/agrimarket/pkg/config"
	"github.com/angelmondragon/agrimarket/pkg/db"
	"github.com/angelmondragon/agrimarket/pkg/logger"
	"github.com/angelmondragon/agrimarket/pkg/migrate"
)

// PostgresImage is the server the integration suite runs against.
const PostgresImage = "postgres:16-alpine"

// StartPostgres launches a disposable PostgreSQL container and returns its
// DSN. The container is terminated when the test ends.
func StartPostgres(t testing.TB) string {
	t.Helper()
	ctx := context.Background()

	container, err := postgres.Run(ctx,
		PostgresImage,
		postgres.WithDatabase("agrimarket"),
		postgres.WithUsername("agrimarket"),
		postgres.WithPassword("agrimarket"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	if err != nil {
		t.Fatalf("start postgres container: %v", err)
	}
	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("terminate postgres container: %v", err)
		}
	})

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("postgres connection string: %v", err)
	}
	return dsn
}

// OpenPostgres is Open against a fresh PostgreSQL container.
func OpenPostgres(t testing.TB) *db.Client {
	t.Helper()
	ctx := context.Background()

	client, err := db.New(ctx, config.DBConfig{Driver: config.DriverPostgres, DSN: StartPostgres(t)}, logger.Nop())
	if err != nil {
		t.Fatalf("open postgres: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })

	sqlDB, err := client.SQLDB()
	if err != nil {
		t.Fatalf("sql handle: %v", err)
	}
	runner, err := migrate.NewRunner(sqlDB, config.DriverPostgres, logger.Nop())
	if err != nil {
		t.Fatalf("migration runner: %v", err)
	}
	if err := runner.Up(ctx); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	return client
}
