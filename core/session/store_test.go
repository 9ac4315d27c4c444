package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_EnsureIssuesIDs(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(time.Minute)

	id, err := store.Ensure(ctx, "")
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	// an existing id is kept as-is
	same, err := store.Ensure(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, id, same)

	// an unknown id comes back as an empty session, not an error
	keys, err := store.Keys(ctx, "gone-with-the-restart")
	require.NoError(t, err)
	assert.Empty(t, keys)
}

func TestMemoryStore_LastWriteWins(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(time.Minute)
	id, _ := store.Ensure(ctx, "")

	require.NoError(t, store.Set(ctx, id, "theme", "light"))
	require.NoError(t, store.Set(ctx, id, "theme", "dark"))

	val, err := store.Get(ctx, id, "theme")
	require.NoError(t, err)
	assert.Equal(t, "dark", val)
}

func TestMemoryStore_GetAbsentKey(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(time.Minute)
	id, _ := store.Ensure(ctx, "")

	_, err := store.Get(ctx, id, "nope")
	assert.Equal(t, ErrKeyNotFound, err)

	err = store.Delete(ctx, id, "nope")
	assert.Equal(t, ErrKeyNotFound, err)
}

func TestMemoryStore_Counters(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(time.Minute)
	id, _ := store.Ensure(ctx, "")

	n, err := store.Increment(ctx, id, "counter", 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	n, err = store.Increment(ctx, id, "counter", 1)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	n, err = store.Increment(ctx, id, "counter", -1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	require.NoError(t, store.ResetCounter(ctx, id, "counter"))
	val, err := store.Get(ctx, id, "counter")
	require.NoError(t, err)
	assert.Equal(t, int64(0), val)
}

func TestMemoryStore_CounterOnNonNumericValue(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(time.Minute)
	id, _ := store.Ensure(ctx, "")

	require.NoError(t, store.Set(ctx, id, "greeting", "hello"))

	_, err := store.Increment(ctx, id, "greeting", 1)
	assert.Equal(t, ErrNotCounter, err)

	err = store.ResetCounter(ctx, id, "greeting")
	assert.Equal(t, ErrNotCounter, err)
}

func TestMemoryStore_CounterAcceptsJSONNumbers(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(time.Minute)
	id, _ := store.Ensure(ctx, "")

	// a value that round-tripped through JSON arrives as float64
	require.NoError(t, store.Set(ctx, id, "visits", float64(41)))

	n, err := store.Increment(ctx, id, "visits", 1)
	require.NoError(t, err)
	assert.Equal(t, int64(42), n)
}

func TestMemoryStore_Clear(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(time.Minute)
	id, _ := store.Ensure(ctx, "")

	require.NoError(t, store.Set(ctx, id, "a", 1))
	require.NoError(t, store.Clear(ctx, id))

	keys, err := store.Keys(ctx, id)
	require.NoError(t, err)
	assert.Empty(t, keys)
}

func TestMemoryStore_SweepDropsIdleSessions(t *testing.T) {
	ctx := context.Background()
	now := time.Now()
	store := NewMemoryStore(time.Minute).(*memoryStore)
	store.nowFunc = func() time.Time { return now }

	idle, _ := store.Ensure(ctx, "")
	require.NoError(t, store.Set(ctx, idle, "k", "v"))

	now = now.Add(2 * time.Minute)
	fresh, _ := store.Ensure(ctx, "")
	require.NoError(t, store.Set(ctx, fresh, "k", "v"))

	assert.Equal(t, 1, store.Sweep(ctx))

	keys, err := store.Keys(ctx, idle)
	require.NoError(t, err)
	assert.Empty(t, keys, "swept session should come back empty")

	keys, err = store.Keys(ctx, fresh)
	require.NoError(t, err)
	assert.Len(t, keys, 1)
}

func TestIsNotIntegerErr(t *testing.T) {
	assert.True(t, isNotIntegerErr(errors.New("ERR hash value is not an integer")))

	// infra failures must not be mistaken for a counter-type error
	assert.False(t, isNotIntegerErr(nil))
	assert.False(t, isNotIntegerErr(errors.New("dial tcp 127.0.0.1:6379: connect: connection refused")))
	assert.False(t, isNotIntegerErr(errors.New("WRONGTYPE Operation against a key holding the wrong kind of value")))
}
