package main

import (
	"context"
	"errors"

	"go.uber.org/multierr"
)

// errFlushTimedOut marks a shutdown whose cart flush outlived its deadline.
var errFlushTimedOut = errors.New("cart flush timed out, storage left open")

type drainer interface {
	Shutdown(ctx context.Context) error
}

type flusher interface {
	Close(ctx context.Context) error
}

// shutdown drains HTTP, flushes every cart, then closes storage. Storage is
// left open when the flush misses ctx, since syncers may still be writing.
func shutdown(ctx context.Context, server drainer, carts flusher, closeBackend func() error) error {
	err := multierr.Combine(server.Shutdown(ctx), carts.Close(ctx))
	if errors.Is(err, context.DeadlineExceeded) {
		return multierr.Append(err, errFlushTimedOut)
	}
	return multierr.Append(err, closeBackend())
}
