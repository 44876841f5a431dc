package audit

import (
	"context"
	"fmt"
	"log/slog"

	"landregistry/pkg/requestcontext"
)

// Publisher emits audit events.
//
// Compliance events are fail-closed: the write is synchronous and its error
// is returned so the calling operation (and its transaction) fails with it.
// Other categories are best-effort; failures are logged and swallowed.
type Publisher struct {
	store  Store
	logger *slog.Logger
}

// Option configures the Publisher.
type Option func(*Publisher)

// WithLogger sets a logger for error reporting.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Publisher) {
		p.logger = logger
	}
}

func NewPublisher(store Store, opts ...Option) *Publisher {
	p := &Publisher{store: store}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Emit fills timestamp, category and request id from ctx and appends the event.
func (p *Publisher) Emit(ctx context.Context, event Event) error {
	if event.Action == "" {
		return fmt.Errorf("audit event requires Action")
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = requestcontext.Now(ctx)
	}
	if event.RequestID == "" {
		event.RequestID = requestcontext.RequestID(ctx)
	}
	event.Category = AuditEvent(event.Action).Category()

	err := p.store.Append(ctx, event)
	if err == nil {
		return nil
	}
	if event.Category == CategoryCompliance {
		if p.logger != nil {
			p.logger.ErrorContext(ctx, "CRITICAL: compliance audit failed",
				"action", event.Action,
				"subject", event.Subject,
				"error", err,
			)
		}
		return fmt.Errorf("compliance audit persistence failed: %w", err)
	}
	if p.logger != nil {
		p.logger.WarnContext(ctx, "audit event dropped",
			"action", event.Action,
			"category", event.Category,
			"error", err,
		)
	}
	return nil
}
