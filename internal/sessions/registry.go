// Package sessions keeps one cart store per shopper session.
package sessions

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/multierr"
	"golang.org/x/sync/singleflight"

	"github.com/angelmondragon/storefront-cart/internal/cart"
	"github.com/angelmondragon/storefront-cart/pkg/logger"
)

const defaultSweepInterval = time.Minute

// Params configure a Registry.
type Params struct {
	KV        cart.KV
	KeyPrefix string
	// IdleTTL closes stores unused for this long on each sweep; zero keeps
	// them until Close.
	IdleTTL time.Duration
	Store   cart.Options
	Now     func() time.Time
}

type entry struct {
	store    *cart.Store
	lastUsed time.Time
}

// Registry lazily opens and caches a cart.Store per session id. Each store
// is rehydrated once, on first use, from the KV under "<prefix>:<session>".
// Rehydration runs outside the registry lock so a slow load only delays
// callers of the same session.
type Registry struct {
	kv      cart.KV
	prefix  string
	idleTTL time.Duration
	opts    cart.Options
	now     func() time.Time
	logg    *logger.Logger

	opening singleflight.Group

	mu      sync.Mutex
	entries map[string]*entry
	// closing holds sessions whose evicted store is still flushing.
	closing map[string]chan struct{}
	closed  bool
}

// NewRegistry builds a registry persisting through params.KV.
func NewRegistry(params Params) (*Registry, error) {
	if params.KV == nil {
		return nil, fmt.Errorf("kv store required")
	}
	prefix := strings.TrimSpace(params.KeyPrefix)
	if prefix == "" {
		return nil, fmt.Errorf("key prefix required")
	}
	if params.IdleTTL < 0 {
		return nil, fmt.Errorf("idle ttl must be non-negative")
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	logg := params.Store.Logger
	if logg == nil {
		logg = logger.Nop()
	}
	return &Registry{
		kv:      params.KV,
		prefix:  prefix,
		idleTTL: params.IdleTTL,
		opts:    params.Store,
		now:     now,
		logg:    logg,
		entries: make(map[string]*entry),
		closing: make(map[string]chan struct{}),
	}, nil
}

// StorageKey returns the KV key holding sessionID's cart.
func (r *Registry) StorageKey(sessionID string) string {
	return r.prefix + ":" + sessionID
}

// Empty returns a detached empty store priced with the registry's options.
// It has no persistence and is never cached.
func (r *Registry) Empty() *cart.Store {
	return cart.New(r.opts)
}

// Get returns the store for sessionID, opening it on first use.
func (r *Registry) Get(ctx context.Context, sessionID string) (*cart.Store, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return nil, fmt.Errorf("session id required")
	}

	if store, ok, err := r.lookup(sessionID); err != nil || ok {
		return store, err
	}

	v, err, _ := r.opening.Do(sessionID, func() (any, error) {
		return r.open(ctx, sessionID)
	})
	if err != nil {
		return nil, err
	}
	return v.(*cart.Store), nil
}

func (r *Registry) lookup(sessionID string) (*cart.Store, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil, false, fmt.Errorf("registry closed")
	}
	e, ok := r.entries[sessionID]
	if !ok {
		return nil, false, nil
	}
	e.lastUsed = r.now()
	return e.store, true, nil
}

func (r *Registry) open(ctx context.Context, sessionID string) (*cart.Store, error) {
	// A concurrent open may have finished between lookup and Do.
	if store, ok, err := r.lookup(sessionID); err != nil || ok {
		return store, err
	}

	r.mu.Lock()
	flushing := r.closing[sessionID]
	r.mu.Unlock()
	if flushing != nil {
		select {
		case <-flushing:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	repo, err := cart.NewKVRepository(r.kv, r.StorageKey(sessionID))
	if err != nil {
		return nil, err
	}
	opts := r.opts
	opts.SessionID = sessionID
	store := cart.Open(ctx, repo, opts)

	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		_ = store.Close(context.Background())
		return nil, fmt.Errorf("registry closed")
	}
	r.entries[sessionID] = &entry{store: store, lastUsed: r.now()}
	r.mu.Unlock()
	return store, nil
}

// Len reports how many sessions are open.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// EvictIdle closes every store unused for at least the idle TTL and returns
// how many were evicted. Each store flushes its latest state before a later
// Get for the same session may reopen it.
func (r *Registry) EvictIdle(ctx context.Context) (int, error) {
	if r.idleTTL <= 0 {
		return 0, nil
	}

	type victim struct {
		id    string
		store *cart.Store
		done  chan struct{}
	}

	r.mu.Lock()
	cutoff := r.now().Add(-r.idleTTL)
	var victims []victim
	for id, e := range r.entries {
		if e.lastUsed.After(cutoff) {
			continue
		}
		done := make(chan struct{})
		delete(r.entries, id)
		r.closing[id] = done
		victims = append(victims, victim{id: id, store: e.store, done: done})
	}
	r.mu.Unlock()

	var err error
	for _, v := range victims {
		if closeErr := v.store.Close(ctx); closeErr != nil {
			err = multierr.Append(err, fmt.Errorf("close cart %s: %w", v.id, closeErr))
		}
		r.mu.Lock()
		delete(r.closing, v.id)
		r.mu.Unlock()
		close(v.done)
	}
	return len(victims), err
}

// Run sweeps idle stores every interval until ctx is canceled.
func (r *Registry) Run(ctx context.Context, interval time.Duration) error {
	if r.idleTTL <= 0 {
		<-ctx.Done()
		return ctx.Err()
	}
	if interval <= 0 {
		interval = defaultSweepInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			evicted, err := r.EvictIdle(ctx)
			if err != nil {
				r.logg.Error(ctx, "sessions.evict_failed", err)
			}
			if evicted > 0 {
				r.logg.Debug(r.logg.WithField(ctx, "evicted", evicted), "sessions.evicted")
			}
		}
	}
}

// Close flushes and closes every open store.
func (r *Registry) Close(ctx context.Context) error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil
	}
	r.closed = true
	entries := r.entries
	r.entries = map[string]*entry{}
	r.mu.Unlock()

	var err error
	for id, e := range entries {
		if closeErr := e.store.Close(ctx); closeErr != nil {
			err = multierr.Append(err, fmt.Errorf("close cart %s: %w", id, closeErr))
		}
	}
	return err
}
