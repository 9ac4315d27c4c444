package cache

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKey(t *testing.T) {
	assert.Equal(t, "load_data()", Key("load_data"))
	assert.Equal(t, "filter_data(sales,100)", Key("filter_data", "sales", 100))
}

func TestDataCache_GetOrLoad(t *testing.T) {
	c := NewDataCache(time.Minute, 0)

	var loads int
	load := func() (interface{}, error) {
		loads++
		return "dataset", nil
	}

	val, cached, err := c.GetOrLoad("k", 0, load)
	require.NoError(t, err)
	assert.False(t, cached)
	assert.Equal(t, "dataset", val)

	val, cached, err = c.GetOrLoad("k", 0, load)
	require.NoError(t, err)
	assert.True(t, cached)
	assert.Equal(t, "dataset", val)
	assert.Equal(t, 1, loads, "loader must run once")

	stats := c.Stats()
	assert.Equal(t, int64(1), stats.Hits)
	assert.Equal(t, int64(1), stats.Misses)
	assert.Equal(t, 1, stats.Entries)
}

func TestDataCache_LoadErrorNotCached(t *testing.T) {
	c := NewDataCache(time.Minute, 0)

	boom := errors.New("source down")
	_, _, err := c.GetOrLoad("k", 0, func() (interface{}, error) { return nil, boom })
	assert.Equal(t, boom, err)

	// next call tries again
	val, cached, err := c.GetOrLoad("k", 0, func() (interface{}, error) { return 1, nil })
	require.NoError(t, err)
	assert.False(t, cached)
	assert.Equal(t, 1, val)
}

func TestDataCache_ConcurrentMissLoadsOnce(t *testing.T) {
	c := NewDataCache(time.Minute, 0)

	var loads int64
	load := func() (interface{}, error) {
		atomic.AddInt64(&loads, 1)
		time.Sleep(50 * time.Millisecond)
		return "dataset", nil
	}

	const n = 10
	var wg sync.WaitGroup
	vals := make([]interface{}, n)
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			vals[i], _, errs[i] = c.GetOrLoad("k", 0, load)
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int64(1), loads, "concurrent misses must share one load")
	for i := 0; i < n; i++ {
		require.NoError(t, errs[i])
		assert.Equal(t, "dataset", vals[i])
	}
	assert.Equal(t, 1, c.Stats().Entries)
}

func TestDataCache_LoadDoesNotBlockOtherKeys(t *testing.T) {
	c := NewDataCache(time.Minute, 0)

	started := make(chan struct{})
	release := make(chan struct{})
	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _, _ = c.GetOrLoad("slow", 0, func() (interface{}, error) {
			close(started)
			<-release
			return "slow", nil
		})
	}()
	<-started

	// while "slow" is loading, other keys and Stats stay responsive
	val, cached, err := c.GetOrLoad("fast", 0, func() (interface{}, error) { return "fast", nil })
	require.NoError(t, err)
	assert.False(t, cached)
	assert.Equal(t, "fast", val)
	assert.Equal(t, 1, c.Stats().Entries)

	close(release)
	<-done
	assert.Equal(t, 2, c.Stats().Entries)
}

func TestDataCache_TTLExpiry(t *testing.T) {
	c := NewDataCache(time.Minute, 0)
	now := time.Now()
	c.nowFunc = func() time.Time { return now }

	_, _, err := c.GetOrLoad("k", time.Hour, func() (interface{}, error) { return "v1", nil })
	require.NoError(t, err)

	now = now.Add(30 * time.Minute)
	_, cached, _ := c.GetOrLoad("k", time.Hour, func() (interface{}, error) { return "v2", nil })
	assert.True(t, cached, "still within TTL")

	now = now.Add(2 * time.Hour)
	val, cached, _ := c.GetOrLoad("k", time.Hour, func() (interface{}, error) { return "v2", nil })
	assert.False(t, cached, "expired, reloaded")
	assert.Equal(t, "v2", val)
}

func TestDataCache_MaxEntriesEvictsOldest(t *testing.T) {
	c := NewDataCache(0, 2)
	now := time.Now()
	c.nowFunc = func() time.Time { return now }

	mk := func(v string) LoaderFunc { return func() (interface{}, error) { return v, nil } }

	_, _, _ = c.GetOrLoad("a", 0, mk("1"))
	now = now.Add(time.Second)
	_, _, _ = c.GetOrLoad("b", 0, mk("2"))
	now = now.Add(time.Second)
	_, _, _ = c.GetOrLoad("c", 0, mk("3"))

	stats := c.Stats()
	assert.Equal(t, 2, stats.Entries)
	assert.Equal(t, int64(1), stats.Evictions)

	// "a" was oldest and got evicted
	_, cached, _ := c.GetOrLoad("a", 0, mk("1"))
	assert.False(t, cached)
	_, cached, _ = c.GetOrLoad("c", 0, mk("3"))
	assert.True(t, cached)
}

func TestDataCache_InvalidateAndClear(t *testing.T) {
	c := NewDataCache(0, 0)
	load := func() (interface{}, error) { return "v", nil }

	_, _, _ = c.GetOrLoad("a", 0, load)
	_, _, _ = c.GetOrLoad("b", 0, load)

	c.Invalidate("a")
	_, cached, _ := c.GetOrLoad("a", 0, load)
	assert.False(t, cached)
	_, cached, _ = c.GetOrLoad("b", 0, load)
	assert.True(t, cached)

	c.Clear()
	assert.Equal(t, 0, c.Stats().Entries)
}

func TestResourceCache_SharedHandle(t *testing.T) {
	c := NewResourceCache()

	type conn struct{ n int }
	var builds int

	res1, err := c.GetOrCreate("db", func() (interface{}, error) {
		builds++
		return &conn{n: builds}, nil
	})
	require.NoError(t, err)

	res2, err := c.GetOrCreate("db", func() (interface{}, error) {
		builds++
		return &conn{n: builds}, nil
	})
	require.NoError(t, err)

	assert.Same(t, res1, res2, "resource cache hands out the same handle")
	assert.Equal(t, 1, builds)

	c.Clear()
	res3, err := c.GetOrCreate("db", func() (interface{}, error) {
		builds++
		return &conn{n: builds}, nil
	})
	require.NoError(t, err)
	assert.NotSame(t, res1, res3)
}
