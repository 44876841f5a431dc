// Package worker relays committed outbox rows to the audit sink.
package worker

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"landregistry/pkg/platform/audit/store/postgres"
	"landregistry/pkg/platform/circuit"
	"landregistry/pkg/platform/tx"
)

// Outbox is the subset of the Postgres audit store the relay needs.
type Outbox interface {
	ClaimPending(ctx context.Context, limit int) ([]postgres.Entry, error)
	MarkPublished(ctx context.Context, ids []uuid.UUID, at time.Time) error
}

// Sink delivers outbox entries downstream (Kafka in production).
type Sink interface {
	Publish(ctx context.Context, entries []postgres.Entry) error
}

// Worker polls the outbox and publishes pending rows. A batch is claimed,
// published and marked inside one transaction, so a failed publish leaves the
// rows pending for the next tick.
type Worker struct {
	outbox   Outbox
	sink     Sink
	runner   tx.Runner
	interval time.Duration
	batch    int
	logger   *slog.Logger
	breaker  *circuit.Breaker
}

type Option func(*Worker)

func WithLogger(logger *slog.Logger) Option {
	return func(w *Worker) { w.logger = logger }
}

func WithInterval(d time.Duration) Option {
	return func(w *Worker) {
		if d > 0 {
			w.interval = d
		}
	}
}

func WithBatchSize(n int) Option {
	return func(w *Worker) {
		if n > 0 {
			w.batch = n
		}
	}
}

// WithBreaker stops hammering an unavailable sink; ticks are skipped while
// the breaker is open except for periodic trial sends.
func WithBreaker(b *circuit.Breaker) Option {
	return func(w *Worker) { w.breaker = b }
}

func NewWorker(outbox Outbox, sink Sink, runner tx.Runner, opts ...Option) *Worker {
	w := &Worker{
		outbox:   outbox,
		sink:     sink,
		runner:   runner,
		interval: 2 * time.Second,
		batch:    100,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Run polls until ctx is cancelled.
func (w *Worker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			w.drain(ctx)
		}
	}
}

func (w *Worker) drain(ctx context.Context) {
	for {
		if w.breaker != nil && !w.breaker.Allow() {
			return
		}
		n, err := w.Tick(ctx)
		w.record(ctx, err)
		if err != nil {
			w.logger.WarnContext(ctx, "outbox relay failed", "error", err)
			return
		}
		// keep draining while batches come back full
		if n < w.batch {
			return
		}
	}
}

func (w *Worker) record(ctx context.Context, err error) {
	if w.breaker == nil {
		return
	}
	if err != nil {
		if _, change := w.breaker.RecordFailure(); change.Opened {
			w.logger.WarnContext(ctx, "audit sink circuit opened", "breaker", w.breaker.Name())
		}
		return
	}
	if _, change := w.breaker.RecordSuccess(); change.Closed {
		w.logger.InfoContext(ctx, "audit sink circuit closed", "breaker", w.breaker.Name())
	}
}

// Tick publishes at most one batch and returns how many rows it published.
func (w *Worker) Tick(ctx context.Context) (int, error) {
	published := 0
	err := w.runner.RunInTx(ctx, func(ctx context.Context) error {
		entries, err := w.outbox.ClaimPending(ctx, w.batch)
		if err != nil || len(entries) == 0 {
			return err
		}
		if err := w.sink.Publish(ctx, entries); err != nil {
			return err
		}
		ids := make([]uuid.UUID, len(entries))
		for i, e := range entries {
			ids[i] = e.ID
		}
		if err := w.outbox.MarkPublished(ctx, ids, time.Now()); err != nil {
			return err
		}
		published = len(entries)
		return nil
	})
	if err != nil {
		return 0, err
	}
	if published > 0 {
		w.logger.DebugContext(ctx, "outbox batch published", "count", published)
	}
	return published, nil
}
