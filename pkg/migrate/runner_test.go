package migrate_test

import (
	"context"
	"io/fs"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/agrimarket/pkg/config"
	"github.com/angelmondragon/agrimarket/pkg/db/dbtest"
	"github.com/angelmondragon/agrimarket/pkg/logger"
	"github.com/angelmondragon/agrimarket/pkg/migrate"
)

func newRunner(t *testing.T) *migrate.Runner {
	t.Helper()
	client := dbtest.Open(t)
	sqlDB, err := client.SQLDB()
	require.NoError(t, err)
	runner, err := migrate.NewRunner(sqlDB, client.Dialect(), logger.Nop())
	require.NoError(t, err)
	return runner
}

func TestNewRunnerRequiresDB(t *testing.T) {
	_, err := migrate.NewRunner(nil, "mysql", nil)
	require.Error(t, err)
}

func TestMigratedSchemaVerifies(t *testing.T) {
	runner := newRunner(t)
	ctx := context.Background()

	require.NoError(t, runner.Verify(ctx))

	current, err := runner.Version(ctx)
	require.NoError(t, err)
	latest, err := runner.LatestVersion()
	require.NoError(t, err)
	assert.Equal(t, latest, current)

	require.NoError(t, runner.Up(ctx), "up is idempotent")
}

func TestMigrateDownAndBackUp(t *testing.T) {
	runner := newRunner(t)
	ctx := context.Background()

	require.NoError(t, runner.MigrateToVersion(ctx, "20260302100300"))
	err := runner.Verify(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "order_items")
	assert.Contains(t, err.Error(), "active_offers")

	latest, err := runner.LatestVersion()
	require.NoError(t, err)
	require.NoError(t, runner.Up(ctx))
	current, err := runner.Version(ctx)
	require.NoError(t, err)
	assert.Equal(t, latest, current)
	require.NoError(t, runner.Verify(ctx))

	require.Error(t, runner.MigrateToVersion(ctx, "not-a-version"))
}

func TestEmbeddedMigrationsCarryConstraints(t *testing.T) {
	for _, dialect := range []string{config.DriverPostgres, config.DriverSQLite} {
		t.Run(dialect, func(t *testing.T) {
			dir, err := migrate.Dir(dialect)
			require.NoError(t, err)
			all := readAll(t, dir)

			assert.Contains(t, all, "CONSTRAINT coop_product_offers_target_check CHECK (product_id IS NOT NULL OR category_id IS NOT NULL)")
			assert.Contains(t, all, "BEFORE INSERT ON coop_product_offers")
			assert.Contains(t, all, "BEFORE UPDATE ON coop_product_offers")
			assert.Contains(t, all, "GENERATED ALWAYS AS")
			assert.Contains(t, all, "REFERENCES products(id) ON DELETE RESTRICT")
			for _, view := range migrate.ExpectedViews {
				assert.Contains(t, all, view)
			}
		})
	}

	_, err := migrate.Dir("oracle")
	require.Error(t, err)
}

func readAll(t *testing.T, dir string) string {
	t.Helper()
	entries, err := fs.ReadDir(migrate.FS(), dir)
	require.NoError(t, err)
	var b strings.Builder
	for _, e := range entries {
		body, err := fs.ReadFile(migrate.FS(), dir+"/"+e.Name())
		require.NoError(t, err)
		b.Write(body)
	}
	return b.String()
}
