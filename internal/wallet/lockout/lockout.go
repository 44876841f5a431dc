// Package lockout throttles wallet connection attempts. Repeated passphrase
// failures for one address from one client lock that pair out for a while.
package lockout

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"landregistry/pkg/domain"
	dErrors "landregistry/pkg/domain-errors"
	"landregistry/pkg/requestcontext"
)

// Record is the failure history of one address/client pair.
type Record struct {
	Key           string
	FailureCount  int
	LastFailureAt time.Time
	LockedUntil   *time.Time
}

// IsLockedAt reports whether the lock is still in force at now.
func (r *Record) IsLockedAt(now time.Time) bool {
	return r.LockedUntil != nil && now.Before(*r.LockedUntil)
}

// Config bounds the failures tolerated inside a window.
type Config struct {
	MaxFailures  int
	Window       time.Duration
	LockDuration time.Duration
}

func DefaultConfig() Config {
	return Config{MaxFailures: 5, Window: 15 * time.Minute, LockDuration: 15 * time.Minute}
}

// Store persists failure records. RecordFailure restarts the count when the
// previous failure fell outside window.
type Store interface {
	Get(ctx context.Context, key string) (*Record, error)
	RecordFailure(ctx context.Context, key string, now time.Time, window time.Duration) (*Record, error)
	Lock(ctx context.Context, key string, until time.Time) error
	Clear(ctx context.Context, key string) error
}

// Guard decides whether a connection attempt may proceed.
type Guard struct {
	store  Store
	cfg    Config
	logger *slog.Logger
}

type Option func(*Guard)

func WithLogger(logger *slog.Logger) Option {
	return func(g *Guard) { g.logger = logger }
}

func WithConfig(cfg Config) Option {
	return func(g *Guard) { g.cfg = cfg }
}

func New(store Store, opts ...Option) (*Guard, error) {
	if store == nil {
		return nil, errors.New("lockout store is required")
	}
	g := &Guard{store: store, cfg: DefaultConfig(), logger: slog.Default()}
	for _, opt := range opts {
		opt(g)
	}
	if g.cfg.MaxFailures <= 0 || g.cfg.Window <= 0 || g.cfg.LockDuration <= 0 {
		return nil, errors.New("lockout limits must be positive")
	}
	return g, nil
}

// Key identifies the address/client pair. The client IP is taken from ctx.
func Key(ctx context.Context, addr domain.Address) string {
	return addr.String() + "|" + requestcontext.ClientIP(ctx)
}

// Check fails with rate_limited while the pair is locked.
func (g *Guard) Check(ctx context.Context, addr domain.Address) error {
	rec, err := g.store.Get(ctx, Key(ctx, addr))
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to read connection lockout")
	}
	if rec == nil {
		return nil
	}
	if rec.IsLockedAt(requestcontext.Now(ctx)) {
		return dErrors.New(dErrors.CodeRateLimited, "too many failed attempts, try again later")
	}
	return nil
}

// RecordFailure counts a failed attempt and locks the pair once the limit is hit.
func (g *Guard) RecordFailure(ctx context.Context, addr domain.Address) error {
	key := Key(ctx, addr)
	now := requestcontext.Now(ctx)
	rec, err := g.store.RecordFailure(ctx, key, now, g.cfg.Window)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to record connection failure")
	}
	if rec.FailureCount < g.cfg.MaxFailures {
		return nil
	}
	until := now.Add(g.cfg.LockDuration)
	if err := g.store.Lock(ctx, key, until); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to lock wallet connections")
	}
	g.logger.WarnContext(ctx, "wallet connections locked",
		"address", addr.Short(),
		"failures", rec.FailureCount,
		"locked_until", until,
		"request_id", requestcontext.RequestID(ctx),
	)
	return nil
}

// Clear forgets the pair's failures after a successful connection.
func (g *Guard) Clear(ctx context.Context, addr domain.Address) error {
	if err := g.store.Clear(ctx, Key(ctx, addr)); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to clear connection failures")
	}
	return nil
}
