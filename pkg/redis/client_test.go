package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestClient(t *testing.T) (*Client, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)

	client, err := NewClient("redis://"+mr.Addr(), "analytics", zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })

	return client, mr
}

func TestClient_SetGet(t *testing.T) {
	client, _ := newTestClient(t)
	ctx := context.Background()

	err := client.Set(ctx, "analytics:cache:test", "payload", time.Minute)
	require.NoError(t, err)

	val, err := client.Get(ctx, "analytics:cache:test")
	require.NoError(t, err)
	assert.Equal(t, "payload", val)
}

func TestClient_Incr(t *testing.T) {
	client, _ := newTestClient(t)
	ctx := context.Background()

	for i := 1; i <= 3; i++ {
		v, err := client.Incr(ctx, "analytics:daily:views:2024-01-15")
		require.NoError(t, err)
		assert.Equal(t, int64(i), v)
	}
}

func TestClient_IncrByFloat(t *testing.T) {
	client, _ := newTestClient(t)
	ctx := context.Background()

	_, err := client.IncrByFloat(ctx, "analytics:daily:sales:2024-01-15", 19.99)
	require.NoError(t, err)

	v, err := client.IncrByFloat(ctx, "analytics:daily:sales:2024-01-15", 10.01)
	require.NoError(t, err)
	assert.InDelta(t, 30.0, v, 0.001)
}

func TestClient_SAddIsIdempotent(t *testing.T) {
	client, _ := newTestClient(t)
	ctx := context.Background()

	key := "analytics:daily:unique_visitors:2024-01-15"
	for i := 0; i < 5; i++ {
		require.NoError(t, client.SAdd(ctx, key, "user-1"))
	}
	require.NoError(t, client.SAdd(ctx, key, "user-2"))

	n, err := client.SCard(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}

func TestClient_ExpireAndTTL(t *testing.T) {
	client, mr := newTestClient(t)
	ctx := context.Background()

	key := "analytics:daily:views:2024-01-15"
	_, err := client.Incr(ctx, key)
	require.NoError(t, err)

	require.NoError(t, client.Expire(ctx, key, 24*time.Hour))
	assert.Equal(t, 24*time.Hour, mr.TTL(key))

	ttl, err := client.TTL(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, 24*time.Hour, ttl)
}

func TestClient_ScanKeysAndDelete(t *testing.T) {
	client, _ := newTestClient(t)
	ctx := context.Background()

	require.NoError(t, client.Set(ctx, "analytics:cache:a", "1", time.Minute))
	require.NoError(t, client.Set(ctx, "analytics:cache:b", "2", time.Minute))
	require.NoError(t, client.Set(ctx, "analytics:daily:views:2024-01-15", "3", time.Minute))

	keys, err := client.ScanKeys(ctx, "analytics:cache:*")
	require.NoError(t, err)
	assert.Len(t, keys, 2)

	deleted, err := client.Delete(ctx, keys...)
	require.NoError(t, err)
	assert.Equal(t, int64(2), deleted)

	// Non-cache keys are untouched
	val, err := client.Get(ctx, "analytics:daily:views:2024-01-15")
	require.NoError(t, err)
	assert.Equal(t, "3", val)
}

func TestClient_Health(t *testing.T) {
	client, mr := newTestClient(t)
	ctx := context.Background()

	require.NoError(t, client.Health(ctx))

	mr.Close()
	assert.Error(t, client.Health(ctx))
}

func TestNewClient_InvalidURL(t *testing.T) {
	_, err := NewClient("not-a-url", "analytics", zap.NewNop())
	assert.Error(t, err)
}
