package redis

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/angelmondragon/storefront-cart/pkg/config"
	"github.com/redis/go-redis/v9"
)

func TestSetGetBytesLifecycle(t *testing.T) {
	ctx := context.Background()
	mock := newMockCmdable()
	client := &Client{store: mock}

	if err := client.Set(ctx, "k", []byte(`{"items":[]}`), time.Hour); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	if mock.ttls["k"] != time.Hour {
		t.Fatalf("expected ttl to be forwarded, got %v", mock.ttls["k"])
	}
	raw, err := client.GetBytes(ctx, "k")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if string(raw) != `{"items":[]}` {
		t.Fatalf("unexpected value %q", raw)
	}

	if _, err := client.GetBytes(ctx, "missing"); !errors.Is(err, ErrNil) {
		t.Fatalf("expected ErrNil for a missing key, got %v", err)
	}
}

func TestUninitializedClient(t *testing.T) {
	client := &Client{}
	if err := client.Ping(context.Background()); err == nil {
		t.Fatal("expected error for uninitialized client")
	}
	if _, err := client.GetBytes(context.Background(), "k"); err == nil {
		t.Fatal("expected error for uninitialized client")
	}
	if err := client.Close(); err != nil {
		t.Fatalf("close on empty client should be a no-op: %v", err)
	}
}

func TestKeyBuilders(t *testing.T) {
	client := &Client{}
	if got := client.CartKey("cart-storage", "sess-1"); got != "sf:cart:cart-storage:sess-1" {
		t.Fatalf("unexpected cart key %s", got)
	}
	if got := client.CartKey("", " sess-2 "); got != "sf:cart:sess-2" {
		t.Fatalf("cart key should skip empty parts, got %s", got)
	}
}

func TestOptionsFromConfig(t *testing.T) {
	if _, err := optionsFromConfig(config.RedisConfig{}); err == nil {
		t.Fatal("expected error without url or address")
	}

	opts, err := optionsFromConfig(config.RedisConfig{URL: "redis://localhost:6379/3", PoolSize: 7, DialTimeout: time.Second})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if opts.DB != 3 || opts.PoolSize != 7 || opts.DialTimeout != time.Second {
		t.Fatalf("unexpected options %+v", opts)
	}

	opts, err = optionsFromConfig(config.RedisConfig{Address: "cache:6379", DB: 2})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if opts.Addr != "cache:6379" || opts.DB != 2 {
		t.Fatalf("unexpected options %+v", opts)
	}
}

type mockCmdable struct {
	data map[string]string
	ttls map[string]time.Duration
}

func newMockCmdable() *mockCmdable {
	return &mockCmdable{
		data: make(map[string]string),
		ttls: make(map[string]time.Duration),
	}
}

func (m *mockCmdable) Ping(context.Context) *redis.StatusCmd {
	return redis.NewStatusResult("PONG", nil)
}

func (m *mockCmdable) Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd {
	switch v := value.(type) {
	case []byte:
		m.data[key] = string(v)
	default:
		m.data[key] = fmt.Sprint(v)
	}
	m.ttls[key] = expiration
	return redis.NewStatusResult("OK", nil)
}

func (m *mockCmdable) Get(ctx context.Context, key string) *redis.StringCmd {
	v, ok := m.data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

