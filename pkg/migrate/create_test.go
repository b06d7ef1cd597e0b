package migrate

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateSQLMigrationWritesBothDialects(t *testing.T) {
	root := t.TempDir()
	now := time.Date(2026, 4, 1, 12, 30, 0, 0, time.UTC)

	paths, err := createSQLMigration(root, "Add Offer Notes!", now)
	require.NoError(t, err)
	require.Len(t, paths, 2)
	assert.Equal(t, filepath.Join(root, "postgres", "20260401123000_add_offer_notes.sql"), paths[0])
	assert.Equal(t, filepath.Join(root, "sqlite", "20260401123000_add_offer_notes.sql"), paths[1])

	body, err := os.ReadFile(paths[1])
	require.NoError(t, err)
	assert.Contains(t, string(body), "-- +goose Up")
	assert.Contains(t, string(body), "(sqlite)")

	require.NoError(t, ValidateDir(root))

	_, err = createSQLMigration(root, "add offer notes", now)
	require.Error(t, err)
}

func TestSanitizeName(t *testing.T) {
	got, err := sanitizeName("  Create Orders-Index ")
	require.NoError(t, err)
	assert.Equal(t, "create_orders_index", got)

	_, err = sanitizeName("")
	require.Error(t, err)
	_, err = sanitizeName("!!!")
	require.Error(t, err)
}
