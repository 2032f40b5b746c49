//go:build unit

package queries_test

import (
	"encoding/base64"
	"testing"
	"time"

	"airdine/internal/usecase/queries"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAfterCursorRoundTrip(t *testing.T) {
	key := queries.OfferListKey{
		Featured:  true,
		CreatedAt: time.Date(2025, 6, 15, 12, 0, 0, 123456000, time.UTC),
		ID:        uuid.New(),
	}

	decoded, err := queries.DecodeAfterCursor(queries.EncodeAfterCursor(key))
	require.NoError(t, err)
	assert.True(t, decoded.Featured)
	assert.Equal(t, key.CreatedAt.UnixMicro(), decoded.CreatedAt.UnixMicro())
	assert.Equal(t, key.ID, decoded.ID)
}

func TestAfterCursorCarriesFeaturedFlag(t *testing.T) {
	// Featured-first ordering needs the flag in the keyset position, or a
	// page boundary between featured and regular offers would skip rows.
	key := queries.OfferListKey{CreatedAt: time.Now(), ID: uuid.New()}

	decoded, err := queries.DecodeAfterCursor(queries.EncodeAfterCursor(key))
	require.NoError(t, err)
	assert.False(t, decoded.Featured)

	key.Featured = true
	decoded, err = queries.DecodeAfterCursor(queries.EncodeAfterCursor(key))
	require.NoError(t, err)
	assert.True(t, decoded.Featured)
}

func TestDecodeAfterCursorRejectsMalformedInput(t *testing.T) {
	raw := func(s string) string {
		return base64.URLEncoding.EncodeToString([]byte(s))
	}

	cases := []struct {
		name   string
		cursor string
	}{
		{name: "empty", cursor: ""},
		{name: "not base64", cursor: "!!!"},
		{name: "missing version prefix", cursor: raw("1:1718452800000000-" + uuid.NewString())},
		{name: "unknown version", cursor: raw("v2:1:1718452800000000-" + uuid.NewString())},
		{name: "featured flag out of range", cursor: raw("v1:7:1718452800000000-" + uuid.NewString())},
		{name: "missing timestamp separator", cursor: raw("v1:1:1718452800000000")},
		{name: "garbage timestamp", cursor: raw("v1:0:soon-" + uuid.NewString())},
		{name: "garbage uuid", cursor: raw("v1:0:1718452800000000-nope")},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := queries.DecodeAfterCursor(tc.cursor)
			assert.Error(t, err)
		})
	}
}
