package data

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResultCache_PutGet(t *testing.T) {
	c := NewResultCache(time.Minute)
	id := c.Put("staking", 42)

	_, err := uuid.Parse(id)
	require.NoError(t, err, "ids are uuids")

	entry, ok := c.Get(id)
	require.True(t, ok)
	assert.Equal(t, id, entry.ID)
	assert.Equal(t, "staking", entry.Kind)
	assert.Equal(t, 42, entry.Result)
	assert.Equal(t, 1, c.Len())

	_, ok = c.Get("missing")
	assert.False(t, ok)
}

func TestResultCache_Expiry(t *testing.T) {
	c := NewResultCache(time.Minute)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	old := c.Put("bonding", "a")
	now = now.Add(30 * time.Second)
	fresh := c.Put("bonding", "b")
	now = now.Add(45 * time.Second)

	_, ok := c.Get(old)
	assert.False(t, ok, "expired entries are not served")
	_, ok = c.Get(fresh)
	assert.True(t, ok)

	assert.Equal(t, 1, c.Prune())
	assert.Equal(t, 1, c.Len())

	c.Clear()
	assert.Zero(t, c.Len())
}

func TestResultCache_NilSafeGet(t *testing.T) {
	var c *ResultCache
	_, ok := c.Get("x")
	assert.False(t, ok)
}

func TestResultCache_DefaultTTL(t *testing.T) {
	c := NewResultCache(0)
	assert.Equal(t, DefaultCacheTTL, c.ttl)
}

func TestResultCache_RunJanitorStops(t *testing.T) {
	c := NewResultCache(time.Minute)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		c.RunJanitor(ctx, time.Millisecond)
		close(done)
	}()
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("janitor did not stop after cancel")
	}
}
