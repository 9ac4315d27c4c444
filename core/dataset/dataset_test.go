package dataset

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	origDelay := loadDelay
	loadDelay = 0
	defer func() { loadDelay = origDelay }()

	for _, name := range Names() {
		tbl, err := Load(name)
		require.NoError(t, err, name)
		assert.NotEmpty(t, tbl.Columns, name)
		assert.NotEmpty(t, tbl.Rows, name)
		for _, row := range tbl.Rows {
			assert.Len(t, row, len(tbl.Columns), name)
		}
	}

	_, err := Load("nope")
	assert.Equal(t, ErrUnknownDataset, err)
}

func TestLoad_Deterministic(t *testing.T) {
	origDelay := loadDelay
	loadDelay = 0
	defer func() { loadDelay = origDelay }()

	a, err := Load("sales")
	require.NoError(t, err)
	b, err := Load("sales")
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestLiveFeed(t *testing.T) {
	feed := NewLiveFeed()

	first := feed.Latest()
	assert.False(t, first.GeneratedAt.IsZero(), "feed starts primed")

	time.Sleep(time.Millisecond)
	next := feed.Refresh()
	assert.True(t, next.GeneratedAt.After(first.GeneratedAt))
	assert.Equal(t, next, feed.Latest())

	assert.GreaterOrEqual(t, next.ActiveUsers, 50)
	assert.Less(t, next.ErrorRate, 0.05)
}
