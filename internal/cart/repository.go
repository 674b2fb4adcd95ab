package cart

import (
	"context"
	"encoding/json"
	"fmt"
)

// Repository persists and restores the cart triple.
type Repository interface {
	// Load returns nil, nil when nothing has been stored yet.
	Load(ctx context.Context) (*State, error)
	Save(ctx context.Context, state State) error
}

// KV is the durable key-value capability supplied by the host.
type KV interface {
	// Get returns nil, nil when key is absent.
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
}

// KVRepository stores the cart as one JSON record under a fixed key.
type KVRepository struct {
	kv  KV
	key string
}

// NewKVRepository builds a repository writing to key in kv.
func NewKVRepository(kv KV, key string) (*KVRepository, error) {
	if kv == nil {
		return nil, fmt.Errorf("kv store required")
	}
	if key == "" {
		return nil, fmt.Errorf("storage key required")
	}
	return &KVRepository{kv: kv, key: key}, nil
}

// Key returns the storage key.
func (r *KVRepository) Key() string {
	return r.key
}

func (r *KVRepository) Load(ctx context.Context) (*State, error) {
	raw, err := r.kv.Get(ctx, r.key)
	if err != nil {
		return nil, fmt.Errorf("load cart %s: %w", r.key, err)
	}
	if len(raw) == 0 {
		return nil, nil
	}
	var state State
	if err := json.Unmarshal(raw, &state); err != nil {
		return nil, fmt.Errorf("decode cart %s: %w", r.key, err)
	}
	return &state, nil
}

func (r *KVRepository) Save(ctx context.Context, state State) error {
	if state.Items == nil {
		state.Items = []CartItem{}
	}
	if state.SavedItems == nil {
		state.SavedItems = []SavedItem{}
	}
	raw, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("encode cart %s: %w", r.key, err)
	}
	if err := r.kv.Set(ctx, r.key, raw); err != nil {
		return fmt.Errorf("save cart %s: %w", r.key, err)
	}
	return nil
}
