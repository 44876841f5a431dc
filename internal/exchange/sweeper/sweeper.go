// Package sweeper expires accepted sales whose buyer missed the payment
// deadline.
package sweeper

import (
	"context"
	"log/slog"
	"time"
)

// Expirer is the exchange operation the sweeper drives.
type Expirer interface {
	ExpireOverdue(ctx context.Context) (int, error)
}

type Sweeper struct {
	expirer  Expirer
	interval time.Duration
	logger   *slog.Logger
}

type Option func(*Sweeper)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Sweeper) { s.logger = logger }
}

func WithInterval(d time.Duration) Option {
	return func(s *Sweeper) {
		if d > 0 {
			s.interval = d
		}
	}
}

func New(expirer Expirer, opts ...Option) *Sweeper {
	s := &Sweeper{
		expirer:  expirer,
		interval: time.Minute,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run sweeps on every tick until ctx is cancelled.
func (s *Sweeper) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.Sweep(ctx)
		}
	}
}

// Sweep runs one expiry pass and returns how many sales were reopened.
// Partial failures are logged; the next tick retries them.
func (s *Sweeper) Sweep(ctx context.Context) int {
	n, err := s.expirer.ExpireOverdue(ctx)
	if err != nil {
		s.logger.WarnContext(ctx, "expiry sweep incomplete", "expired", n, "error", err)
	}
	if n > 0 {
		s.logger.InfoContext(ctx, "expired overdue sales", "count", n)
	}
	return n
}
