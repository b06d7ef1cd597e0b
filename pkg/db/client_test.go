package db

import (
	"context"
	"errors"
	"testing"

	"github.com/angelmondragon/agrimarket/pkg/config"
	"github.com/angelmondragon/agrimarket/pkg/logger"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type testModel struct {
	ID   int
	Name string
}

func newTestClient(t *testing.T) *Client {
	t.Helper()
	dsn := "file:client_" + uuid.NewString() + "?mode=memory&cache=shared&_foreign_keys=on"
	client, err := New(context.Background(), config.DBConfig{Driver: config.DriverSQLite, DSN: dsn}, logger.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	require.NoError(t, client.DB().AutoMigrate(&testModel{}))
	return client
}

func countModels(t *testing.T, c *Client) int64 {
	t.Helper()
	var n int64
	require.NoError(t, c.DB().Model(&testModel{}).Count(&n).Error)
	return n
}

func TestNewRequiresDSN(t *testing.T) {
	_, err := New(context.Background(), config.DBConfig{Driver: config.DriverSQLite}, nil)
	require.Error(t, err)
}

func TestNewPicksDialect(t *testing.T) {
	client := newTestClient(t)
	assert.Equal(t, config.DriverSQLite, client.Dialect())

	sqlDB, err := client.SQLDB()
	require.NoError(t, err)
	assert.Equal(t, 1, sqlDB.Stats().MaxOpenConnections)
}

func TestWithTxCommitsAndRollsBack(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()

	require.NoError(t, client.WithTx(ctx, func(tx *gorm.DB) error {
		return tx.Create(&testModel{Name: "committed"}).Error
	}))
	assert.Equal(t, int64(1), countModels(t, client))

	err := client.WithTx(ctx, func(tx *gorm.DB) error {
		if err := tx.Create(&testModel{Name: "rolled"}).Error; err != nil {
			return err
		}
		return errors.New("boom")
	})
	require.EqualError(t, err, "boom")
	assert.Equal(t, int64(1), countModels(t, client))
}

func TestWithTxRollsBackOnPanic(t *testing.T) {
	client := newTestClient(t)

	assert.Panics(t, func() {
		_ = client.WithTx(context.Background(), func(tx *gorm.DB) error {
			tx.Create(&testModel{Name: "doomed"})
			panic("kaboom")
		})
	})
	assert.Zero(t, countModels(t, client))
}

func TestPing(t *testing.T) {
	client := newTestClient(t)
	require.NoError(t, client.Ping(context.Background()))

	wrapped := NewFromConn(client.DB(), config.DriverSQLite)
	require.NoError(t, wrapped.Ping(context.Background()))
	assert.Equal(t, config.DriverSQLite, wrapped.Dialect())
}

func TestSQLiteDSNForcesForeignKeys(t *testing.T) {
	cases := map[string]string{
		"agrimarket.db":                               "agrimarket.db?_foreign_keys=on",
		"file:x?mode=memory&cache=shared":             "file:x?mode=memory&cache=shared&_foreign_keys=on",
		"file:x?_foreign_keys=on":                     "file:x?_foreign_keys=on",
		"file:x?_foreign_keys=off&_busy_timeout=5000": "file:x?_busy_timeout=5000&_foreign_keys=on",
		"file:x?_fk=0":                                "file:x?_foreign_keys=on",
		"file:x?":                                     "file:x?_foreign_keys=on",
	}
	for in, want := range cases {
		assert.Equal(t, want, sqliteDSN(in), in)
	}
}

func TestNewEnforcesForeignKeysWithoutDSNFlag(t *testing.T) {
	ctx := context.Background()
	dsn := "file:nofk_" + uuid.NewString() + "?mode=memory&cache=shared"
	client, err := New(ctx, config.DBConfig{Driver: config.DriverSQLite, DSN: dsn}, logger.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	var enabled int
	require.NoError(t, client.Raw(ctx, "PRAGMA foreign_keys").Scan(&enabled).Error)
	assert.Equal(t, 1, enabled)

	require.NoError(t, client.Exec(ctx, "CREATE TABLE parents (id INTEGER PRIMARY KEY)").Error)
	require.NoError(t, client.Exec(ctx,
		"CREATE TABLE children (id INTEGER PRIMARY KEY, parent_id INTEGER NOT NULL REFERENCES parents(id) ON DELETE RESTRICT)").Error)
	require.NoError(t, client.Exec(ctx, "INSERT INTO parents (id) VALUES (1)").Error)
	require.NoError(t, client.Exec(ctx, "INSERT INTO children (id, parent_id) VALUES (1, 1)").Error)

	err = client.Exec(ctx, "INSERT INTO children (id, parent_id) VALUES (2, 999)").Error
	require.Error(t, err, "dangling reference must be rejected")

	err = client.Exec(ctx, "DELETE FROM parents WHERE id = 1").Error
	require.Error(t, err, "restricted parent must not be deleted")

	var parents int64
	require.NoError(t, client.Raw(ctx, "SELECT COUNT(*) FROM parents").Scan(&parents).Error)
	assert.Equal(t, int64(1), parents)
}
