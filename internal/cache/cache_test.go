package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSetGetExpire(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	c := New(true)
	c.now = func() time.Time { return now }

	etag := c.Set("players", []byte(`[]`), time.Minute)
	data, got, ok := c.Get("players")
	assert.True(t, ok)
	assert.Equal(t, etag, got)
	assert.Equal(t, `[]`, string(data))

	now = now.Add(2 * time.Minute)
	_, _, ok = c.Get("players")
	assert.False(t, ok)

	c.evict()
	assert.Equal(t, 0, c.Stats()["total_keys"])
}

func TestDisabledCacheStillTags(t *testing.T) {
	t.Parallel()

	c := New(false)
	etag := c.Set("k", []byte("x"), time.Minute)
	assert.Equal(t, ComputeETag([]byte("x")), etag)
	_, _, ok := c.Get("k")
	assert.False(t, ok)
}

func TestPurge(t *testing.T) {
	t.Parallel()

	c := New(true)
	c.Set("players:all", []byte("1"), time.Minute)
	c.Set("players:kane", []byte("2"), time.Minute)
	c.Set("standings", []byte("3"), time.Minute)

	assert.Equal(t, 2, c.Purge("players:"))
	_, _, ok := c.Get("standings")
	assert.True(t, ok)
	assert.Equal(t, 1, c.Purge(""))
}

func TestCheckETagMatch(t *testing.T) {
	t.Parallel()

	etag := ComputeETag([]byte("body"))
	assert.True(t, CheckETagMatch(etag, etag))
	assert.True(t, CheckETagMatch(`W/"other", `+etag, etag))
	assert.True(t, CheckETagMatch("*", etag))
	assert.False(t, CheckETagMatch("", etag))
	assert.False(t, CheckETagMatch(`W/"other"`, etag))
}
