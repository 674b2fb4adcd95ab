package storage

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/angelmondragon/storefront-cart/internal/cart"
	"github.com/angelmondragon/storefront-cart/pkg/config"
	"github.com/angelmondragon/storefront-cart/pkg/db"
	"github.com/angelmondragon/storefront-cart/pkg/redis"
	"github.com/stretchr/testify/require"
)

// backends exercised by the shared KV contract.
func backends(t *testing.T) map[string]cart.KV {
	t.Helper()
	return map[string]cart.KV{
		"memory": NewMemory(),
		"redis":  NewRedis(newFakeRedis(), time.Hour),
		"sql":    newSQLite(t),
	}
}

func TestKVContract(t *testing.T) {
	for name, kv := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			got, err := kv.Get(ctx, "missing")
			require.NoError(t, err)
			require.Nil(t, got)

			require.NoError(t, kv.Set(ctx, "cart-storage:s1", []byte(`{"a":1}`)))
			require.NoError(t, kv.Set(ctx, "cart-storage:s1", []byte(`{"a":2}`)))

			got, err = kv.Get(ctx, "cart-storage:s1")
			require.NoError(t, err)
			require.Equal(t, `{"a":2}`, string(got))
		})
	}
}

func TestRepositoryRoundTripOnEveryBackend(t *testing.T) {
	for name, kv := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			repo, err := cart.NewKVRepository(kv, "cart-storage:s1")
			require.NoError(t, err)

			store := cart.Open(ctx, repo, cart.Options{})
			store.AddItem(cart.Product{ID: "tee", Price: 900}, 2, nil)
			require.True(t, store.ApplyCoupon("save10").Success)
			require.NoError(t, store.Close(ctx))

			restored := cart.Open(ctx, repo, cart.Options{})
			defer restored.Close(ctx)
			require.Equal(t, 2, restored.ItemCount())
			require.Equal(t, int64(180), restored.Discount())
		})
	}
}

func TestMemoryCopiesValues(t *testing.T) {
	ctx := context.Background()
	mem := NewMemory()
	value := []byte("abc")
	require.NoError(t, mem.Set(ctx, "k", value))
	value[0] = 'z'

	got, err := mem.Get(ctx, "k")
	require.NoError(t, err)
	require.Equal(t, "abc", string(got))

	got[1] = 'z'
	again, _ := mem.Get(ctx, "k")
	require.Equal(t, "abc", string(again))
}

func TestMemoryHonoursCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	mem := NewMemory()
	require.ErrorIs(t, mem.Set(ctx, "k", nil), context.Canceled)
	_, err := mem.Get(ctx, "k")
	require.ErrorIs(t, err, context.Canceled)
}

func TestRedisNamespacesKeysAndForwardsTTL(t *testing.T) {
	fake := newFakeRedis()
	kv := NewRedis(fake, 30*time.Minute)

	require.NoError(t, kv.Set(context.Background(), "cart-storage:s9", []byte("{}")))
	require.Equal(t, "{}", string(fake.data["sf:cart:cart-storage:s9"]))
	require.Equal(t, 30*time.Minute, fake.ttls["sf:cart:cart-storage:s9"])
	require.NoError(t, kv.Ping(context.Background()))
}

func TestRedisPropagatesErrors(t *testing.T) {
	fake := newFakeRedis()
	fake.err = errors.New("connection reset")
	kv := NewRedis(fake, 0)

	_, err := kv.Get(context.Background(), "k")
	require.ErrorIs(t, err, fake.err)
	require.ErrorIs(t, kv.Set(context.Background(), "k", nil), fake.err)
}

func newSQLite(t *testing.T) *SQL {
	t.Helper()
	client, err := db.New(context.Background(), config.DriverSQLite, config.DBConfig{DSN: "file::memory:", MaxOpenConns: 1}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	kv := NewSQL(client)
	require.NoError(t, kv.Migrate(context.Background()))
	return kv
}

type fakeRedis struct {
	data map[string][]byte
	ttls map[string]time.Duration
	err  error
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{data: map[string][]byte{}, ttls: map[string]time.Duration{}}
}

func (f *fakeRedis) GetBytes(ctx context.Context, key string) ([]byte, error) {
	if f.err != nil {
		return nil, f.err
	}
	v, ok := f.data[key]
	if !ok {
		return nil, redis.ErrNil
	}
	return v, nil
}

func (f *fakeRedis) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	if f.err != nil {
		return f.err
	}
	f.data[key] = value.([]byte)
	f.ttls[key] = ttl
	return nil
}

func (f *fakeRedis) CartKey(parts ...string) string {
	return (&redis.Client{}).CartKey(parts...)
}

func (f *fakeRedis) Ping(ctx context.Context) error {
	return f.err
}
