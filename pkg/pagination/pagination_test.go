package pagination

import (
	"encoding/base64"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeLimit(t *testing.T) {
	assert.Equal(t, DefaultLimit, NormalizeLimit(0))
	assert.Equal(t, DefaultLimit, NormalizeLimit(-3))
	assert.Equal(t, 10, NormalizeLimit(10))
	assert.Equal(t, MaxLimit, NormalizeLimit(MaxLimit+1))
	assert.Equal(t, 11, LimitWithBuffer(10))
}

func TestCursorRoundTrip(t *testing.T) {
	at := time.Date(2026, 3, 2, 10, 15, 0, 123456000, time.FixedZone("EAT", 3*3600))
	got, err := ParseCursor(EncodeCursor(Cursor{At: at, ID: 42}))
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.True(t, at.Equal(got.At))
	assert.Equal(t, time.UTC, got.At.Location())
	assert.Equal(t, int64(42), got.ID)
}

func TestParseCursorRejectsGarbage(t *testing.T) {
	got, err := ParseCursor("  ")
	require.NoError(t, err)
	assert.Nil(t, got)

	for _, raw := range []string{
		"%%%",
		base64.RawURLEncoding.EncodeToString([]byte("no-separator")),
		base64.RawURLEncoding.EncodeToString([]byte("yesterday|1")),
		base64.RawURLEncoding.EncodeToString([]byte("2026-03-02T10:00:00Z|abc")),
		base64.RawURLEncoding.EncodeToString([]byte("2026-03-02T10:00:00Z|0")),
	} {
		_, err := ParseCursor(raw)
		assert.Error(t, err, raw)
	}
}
