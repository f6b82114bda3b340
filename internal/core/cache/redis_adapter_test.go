package cache

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAdapter(t *testing.T) (*RedisAdapter, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)

	adapter, err := NewRedisAdapter("redis://" + mr.Addr())
	require.NoError(t, err)
	t.Cleanup(func() { adapter.Close() })

	return adapter, mr
}

func TestRedisAdapter_GetSet(t *testing.T) {
	adapter, _ := newTestAdapter(t)
	ctx := context.Background()

	err := adapter.Set(ctx, "stock_alert:p1:v1", []byte(`{"stock":2}`), 10*time.Second)
	require.NoError(t, err)

	value, err := adapter.Get(ctx, "stock_alert:p1:v1")
	require.NoError(t, err)
	assert.Equal(t, []byte(`{"stock":2}`), value)
}

func TestRedisAdapter_GetNotFound(t *testing.T) {
	adapter, _ := newTestAdapter(t)

	_, err := adapter.Get(context.Background(), "missing")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrKeyNotFound)
}

func TestRedisAdapter_Delete(t *testing.T) {
	adapter, _ := newTestAdapter(t)
	ctx := context.Background()

	require.NoError(t, adapter.Set(ctx, "delete_me", []byte("value"), 0))
	require.NoError(t, adapter.Delete(ctx, "delete_me"))

	_, err := adapter.Get(ctx, "delete_me")
	assert.ErrorIs(t, err, ErrKeyNotFound)
}

func TestRedisAdapter_TTL(t *testing.T) {
	adapter, mr := newTestAdapter(t)
	ctx := context.Background()

	require.NoError(t, adapter.Set(ctx, "short", []byte("lived"), time.Second))

	_, err := adapter.Get(ctx, "short")
	assert.NoError(t, err)

	mr.FastForward(2 * time.Second)

	_, err = adapter.Get(ctx, "short")
	assert.ErrorIs(t, err, ErrKeyNotFound)
}

func TestRedisAdapter_Keys(t *testing.T) {
	adapter, _ := newTestAdapter(t)
	ctx := context.Background()

	require.NoError(t, adapter.Set(ctx, "stock_alert:a:1", []byte("1"), 0))
	require.NoError(t, adapter.Set(ctx, "stock_alert:b:2", []byte("2"), 0))
	require.NoError(t, adapter.Set(ctx, "other", []byte("3"), 0))

	keys, err := adapter.Keys(ctx, "stock_alert:")
	require.NoError(t, err)
	sort.Strings(keys)
	assert.Equal(t, []string{"stock_alert:a:1", "stock_alert:b:2"}, keys)
}

func TestRedisAdapter_Ping(t *testing.T) {
	adapter, _ := newTestAdapter(t)
	assert.NoError(t, adapter.Ping(context.Background()))
}

func TestRedisAdapter_InvalidURL(t *testing.T) {
	_, err := NewRedisAdapter("invalid://url")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse Redis URL")
}
