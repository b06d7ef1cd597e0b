//go:build integration

package migrate_test

import (
	"context"
	"database/sql"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/agrimarket/pkg/config"
	"github.com/angelmondragon/agrimarket/pkg/db"
	"github.com/angelmondragon/agrimarket/pkg/db/dbtest"
	"github.com/angelmondragon/agrimarket/pkg/logger"
	"github.com/angelmondragon/agrimarket/pkg/migrate"
)

func TestPostgresSchema(t *testing.T) {
	ctx := context.Background()
	client := dbtest.OpenPostgres(t)
	sqlDB, err := client.SQLDB()
	require.NoError(t, err)

	runner, err := migrate.NewRunner(sqlDB, config.DriverPostgres, logger.Nop())
	require.NoError(t, err)
	require.NoError(t, runner.Verify(ctx))

	latest, err := runner.LatestVersion()
	require.NoError(t, err)
	current, err := runner.Version(ctx)
	require.NoError(t, err)
	assert.Equal(t, latest, current)

	// Down to before the offers table, then back up.
	require.NoError(t, runner.MigrateToVersion(ctx, "20260302100200"))
	require.Error(t, runner.Verify(ctx))
	require.NoError(t, runner.Up(ctx))
	require.NoError(t, runner.Verify(ctx))
}

func TestPostgresEnumTypes(t *testing.T) {
	ctx := context.Background()
	dsn := dbtest.StartPostgres(t)

	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	defer pool.Close()

	sqlDB := stdlibDB(t, dsn)
	runner, err := migrate.NewRunner(sqlDB, config.DriverPostgres, logger.Nop())
	require.NoError(t, err)
	require.NoError(t, runner.Up(ctx))

	rows, err := pool.Query(ctx, `SELECT t.typname, e.enumlabel
		FROM pg_type t JOIN pg_enum e ON e.enumtypid = t.oid
		ORDER BY t.typname, e.enumsortorder`)
	require.NoError(t, err)
	defer rows.Close()

	labels := map[string][]string{}
	for rows.Next() {
		var typ, label string
		require.NoError(t, rows.Scan(&typ, &label))
		labels[typ] = append(labels[typ], label)
	}
	require.NoError(t, rows.Err())

	assert.Equal(t, []string{"pending", "accepted", "in_transit", "completed", "cancelled"}, labels["order_status"])
	assert.Equal(t, []string{"farmer", "coop", "buyer", "admin"}, labels["user_role"])
	assert.Equal(t, []string{"member", "officer"}, labels["membership_role"])
	assert.Equal(t, []string{"farmer", "coop"}, labels["price_source_type"])

	_, err = pool.Exec(ctx, `UPDATE orders SET status = 'shipped'`)
	require.Error(t, err)
}

func stdlibDB(t *testing.T, dsn string) *sql.DB {
	t.Helper()
	client, err := db.New(context.Background(), config.DBConfig{Driver: config.DriverPostgres, DSN: dsn}, logger.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	sqlDB, err := client.SQLDB()
	require.NoError(t, err)
	return sqlDB
}
