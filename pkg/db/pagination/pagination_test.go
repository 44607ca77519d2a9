package pagination

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCursorRoundTrip(t *testing.T) {
	token, err := EncodeCursor(Cursor{ID: "123", CreatedAt: "2026-03-01T12:00:00Z"})
	require.NoError(t, err)

	cursor, err := DecodeCursor(token)
	require.NoError(t, err)
	assert.Equal(t, "123", cursor.ID)
	assert.Equal(t, "2026-03-01T12:00:00Z", cursor.CreatedAt)
}

func TestDecodeCursorRejectsGarbage(t *testing.T) {
	_, err := DecodeCursor("not-base64!!")
	assert.Error(t, err)
}

func TestBuildCursorPageInfo(t *testing.T) {
	type row struct{ ID string }
	extract := func(r *row) string { return r.ID }

	t.Run("empty", func(t *testing.T) {
		info := BuildCursorPageInfo([]*row{}, 10, extract)
		assert.False(t, info.HasMore)
		assert.Empty(t, info.NextPageToken)
	})

	t.Run("exact page", func(t *testing.T) {
		info := BuildCursorPageInfo([]*row{{ID: "1"}, {ID: "2"}}, 2, extract)
		assert.False(t, info.HasMore)
		assert.Equal(t, "2", info.NextPageToken)
	})

	t.Run("overflow row trimmed", func(t *testing.T) {
		info := BuildCursorPageInfo([]*row{{ID: "1"}, {ID: "2"}, {ID: "3"}}, 2, extract)
		assert.True(t, info.HasMore)
		assert.Equal(t, "2", info.NextPageToken)
	})
}
