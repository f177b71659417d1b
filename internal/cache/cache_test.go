package cache

import (
	"context"
	"os"
	"testing"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx/fxtest"
	"go.uber.org/zap"

	"github.com/campuswash/laundry/internal/config"
)

func TestNewStore(t *testing.T) {
	tests := []struct {
		name     string
		cache    config.Cache
		wantNoop bool
		wantErr  bool
	}{
		{name: "disabled overrides driver", cache: config.Cache{Enabled: false, Driver: "redis"}, wantNoop: true},
		{name: "noop", cache: config.Cache{Enabled: true, Driver: "noop"}, wantNoop: true},
		{name: "redis", cache: config.Cache{Enabled: true, Driver: "redis", KeyPrefix: "laundry:"}},
		{name: "unknown", cache: config.Cache{Enabled: true, Driver: "memcached"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, err := NewStore(fxtest.NewLifecycle(t), config.Config{Cache: tt.cache}, zap.NewNop())
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			_, isNoop := store.(noopStore)
			assert.Equal(t, tt.wantNoop, isNoop)
		})
	}
}

func TestNoop(t *testing.T) {
	ctx := context.Background()
	store := Noop()

	require.NoError(t, store.Set(ctx, "orders:1", []byte("x"), time.Minute))
	_, err := store.Get(ctx, "orders:1")
	assert.ErrorIs(t, err, ErrCacheMiss)
	assert.NoError(t, store.Delete(ctx, "orders:1"))
}

func TestRedisStore_Key(t *testing.T) {
	store := NewRedis(nil, "laundry:", time.Minute)
	assert.Equal(t, "laundry:orders:42", store.Key("orders:42"))
}

// TestRedisStore_RoundTrip needs a live redis at TEST_REDIS_ADDR.
func TestRedisStore_RoundTrip(t *testing.T) {
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TEST_REDIS_ADDR not set")
	}
	client := goredis.NewClient(&goredis.Options{Addr: addr})
	t.Cleanup(func() { _ = client.Close() })

	ctx := context.Background()
	store := NewRedis(client, "laundry-test:", time.Minute)

	_, err := store.Get(ctx, "orders:missing")
	assert.ErrorIs(t, err, ErrCacheMiss)

	require.NoError(t, store.Set(ctx, "orders:1", []byte(`{"id":"1"}`), 0))
	got, err := store.Get(ctx, "orders:1")
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"1"}`, string(got))

	ttl, err := client.TTL(ctx, "laundry-test:orders:1").Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))

	require.NoError(t, store.Delete(ctx, "orders:1"))
	_, err = store.Get(ctx, "orders:1")
	assert.ErrorIs(t, err, ErrCacheMiss)
}
