package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type entry struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

func newTestCache(t *testing.T, ttl time.Duration) (*Cache, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return New(client, ttl), mr
}

func TestCache_SetGet(t *testing.T) {
	c, _ := newTestCache(t, time.Minute)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, ClaimKey("C1"), entry{ID: "C1", Status: "open"}))

	var got entry
	found, err := c.Get(ctx, ClaimKey("C1"), &got)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, entry{ID: "C1", Status: "open"}, got)
}

func TestCache_Miss(t *testing.T) {
	c, _ := newTestCache(t, time.Minute)

	var got entry
	found, err := c.Get(context.Background(), PersonKey("nobody"), &got)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestCache_Expires(t *testing.T) {
	c, mr := newTestCache(t, time.Minute)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, PersonKey("P1"), entry{ID: "P1"}))
	mr.FastForward(2 * time.Minute)

	var got entry
	found, err := c.Get(ctx, PersonKey("P1"), &got)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestCache_Delete(t *testing.T) {
	c, mr := newTestCache(t, time.Minute)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, PersonKey("P1"), entry{ID: "P1"}))
	require.NoError(t, c.Set(ctx, ClaimKey("C1"), entry{ID: "C1"}))
	require.NoError(t, c.Delete(ctx, PersonKey("P1"), ClaimKey("C1")))

	assert.False(t, mr.Exists(PersonKey("P1")))
	assert.False(t, mr.Exists(ClaimKey("C1")))
	assert.NoError(t, c.Delete(ctx))
}

func TestCache_CorruptValueIsDropped(t *testing.T) {
	c, mr := newTestCache(t, time.Minute)
	require.NoError(t, mr.Set(ClaimKey("C1"), "{not json"))

	var got entry
	found, err := c.Get(context.Background(), ClaimKey("C1"), &got)
	assert.Error(t, err)
	assert.False(t, found)
	assert.False(t, mr.Exists(ClaimKey("C1")))
}

func TestCache_UnreachableRedis(t *testing.T) {
	c, mr := newTestCache(t, time.Minute)
	mr.Close()

	err := c.Set(context.Background(), ClaimKey("C1"), entry{ID: "C1"})
	assert.Error(t, err)
}
