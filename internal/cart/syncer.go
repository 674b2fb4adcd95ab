package cart

import (
	"context"
	"time"

	"github.com/angelmondragon/storefront-cart/pkg/logger"
	"github.com/angelmondragon/storefront-cart/pkg/metrics"
)

// syncer writes snapshots in the background. Only the newest pending
// snapshot is kept, so a slow backend never queues stale writes.
type syncer struct {
	repo    Repository
	timeout time.Duration
	logg    *logger.Logger
	logCtx  context.Context
	metrics *metrics.CartMetrics

	pending chan State
	done    chan struct{}
}

func newSyncer(logCtx context.Context, repo Repository, timeout time.Duration, logg *logger.Logger, m *metrics.CartMetrics) *syncer {
	s := &syncer{
		repo:    repo,
		timeout: timeout,
		logg:    logg,
		logCtx:  logCtx,
		metrics: m,
		pending: make(chan State, 1),
		done:    make(chan struct{}),
	}
	go s.run()
	return s
}

// enqueue never blocks. Callers must serialize calls and must not call it after stop.
func (s *syncer) enqueue(state State) {
	for {
		select {
		case s.pending <- state:
			return
		default:
		}
		select {
		case <-s.pending:
		default:
		}
	}
}

func (s *syncer) run() {
	defer close(s.done)
	for state := range s.pending {
		s.save(state)
	}
}

func (s *syncer) save(state State) {
	ctx := context.Background()
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	start := time.Now()
	err := s.repo.Save(ctx, state)
	s.metrics.ObservePersist("save", time.Since(start))
	if err != nil {
		s.metrics.IncPersistFailure("save")
		s.logg.WarnErr(s.logCtx, "cart.persist_failed", err)
	}
}

// stop closes the queue; wait blocks until the last snapshot is written.
func (s *syncer) stop() {
	close(s.pending)
}

func (s *syncer) wait(ctx context.Context) error {
	select {
	case <-s.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
