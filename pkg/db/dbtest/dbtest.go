// Package dbtest opens throwaway SQLite databases carrying the real schema.
package dbtest

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/angelmondragon/agrimarket/pkg/config"
	"github.com/angelmondragon/agrimarket/pkg/db"
	"github.com/angelmondragon/agrimarket/pkg/logger"
	"github.com/angelmondragon/agrimarket/pkg/migrate"
	"github.com/google/uuid"
)

// Open returns a client on a private in-memory SQLite database with every
// embedded migration applied. The database is dropped when the test ends.
func Open(t testing.TB) *db.Client {
	t.Helper()
	ctx := context.Background()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name()) + "_" + uuid.NewString()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=on", name)

	client, err := db.New(ctx, config.DBConfig{Driver: config.DriverSQLite, DSN: dsn}, logger.Nop())
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })

	sqlDB, err := client.SQLDB()
	if err != nil {
		t.Fatalf("sql handle: %v", err)
	}
	runner, err := migrate.NewRunner(sqlDB, config.DriverSQLite, logger.Nop())
	if err != nil {
		t.Fatalf("migration runner: %v", err)
	}
	if err := runner.Up(ctx); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	return client
}
