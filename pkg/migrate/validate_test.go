package migrate

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const okBody = "-- +goose Up\nSELECT 1;\n-- +goose Down\nSELECT 1;\n"

func TestValidateEmbedded(t *testing.T) {
	require.NoError(t, ValidateEmbedded())
}

func TestValidateFSRejectsBadTrees(t *testing.T) {
	cases := map[string]fstest.MapFS{
		"bad filename": {
			"m/postgres/create.sql": {Data: []byte(okBody)},
			"m/sqlite/.keep":        {Data: nil},
		},
		"duplicate version": {
			"m/postgres/20260101000000_a.sql": {Data: []byte(okBody)},
			"m/postgres/20260101000000_b.sql": {Data: []byte(okBody)},
			"m/sqlite/.keep":                  {Data: nil},
		},
		"missing down": {
			"m/postgres/20260101000000_a.sql": {Data: []byte("-- +goose Up\nSELECT 1;\n")},
			"m/sqlite/.keep":                  {Data: nil},
		},
		"unbalanced statement": {
			"m/postgres/20260101000000_a.sql": {Data: []byte("-- +goose Up\n-- +goose StatementBegin\nSELECT 1;\n-- +goose Down\n")},
			"m/sqlite/.keep":                  {Data: nil},
		},
		"sqlite only": {
			"m/postgres/.keep":              {Data: nil},
			"m/sqlite/20260101000000_a.sql": {Data: []byte(okBody)},
		},
		"missing dialect dir": {
			"m/postgres/20260101000000_a.sql": {Data: []byte(okBody)},
		},
	}
	for name, fsys := range cases {
		t.Run(name, func(t *testing.T) {
			assert.Error(t, ValidateFS(fsys, "m"))
		})
	}
}

func TestValidateFSAllowsPostgresOnlyMigrations(t *testing.T) {
	fsys := fstest.MapFS{
		"m/postgres/20260101000000_enums.sql":  {Data: []byte(okBody)},
		"m/postgres/20260101000100_tables.sql": {Data: []byte(okBody)},
		"m/sqlite/20260101000100_tables.sql":   {Data: []byte(okBody)},
	}
	require.NoError(t, ValidateFS(fsys, "m"))
}
