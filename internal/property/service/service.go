package service

import (
	"context"
	"errors"
	"log/slog"

	"landregistry/internal/platform/metrics"
	"landregistry/internal/property/models"
	"landregistry/pkg/domain"
	dErrors "landregistry/pkg/domain-errors"
	audit "landregistry/pkg/platform/audit"
	"landregistry/pkg/platform/sentinel"
	"landregistry/pkg/platform/tx"
	"landregistry/pkg/requestcontext"
)

type Store interface {
	Create(ctx context.Context, p *models.Property) error
	FindByID(ctx context.Context, id domain.PropertyID) (*models.Property, error)
	Execute(ctx context.Context, id domain.PropertyID, validate func(*models.Property) error, mutate func(*models.Property)) (*models.Property, error)
	ListByOwner(ctx context.Context, owner domain.Address) ([]*models.Property, error)
	ListByDepartment(ctx context.Context, dept domain.DepartmentID, state models.State) ([]*models.Property, error)
}

// Registry answers who may register and who may review.
type Registry interface {
	RequireVerifiedUser(ctx context.Context, addr domain.Address) error
	RequireRegionalAdmin(ctx context.Context, addr domain.Address, dept domain.DepartmentID) error
	AdminDepartment(ctx context.Context, addr domain.Address) (domain.DepartmentID, error)
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

type Service struct {
	store    Store
	registry Registry
	tx       tx.Runner
	logger   *slog.Logger
	audit    AuditPublisher
	metrics  *metrics.Metrics
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithAuditPublisher(p AuditPublisher) Option {
	return func(s *Service) { s.audit = p }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func New(store Store, registry Registry, runner tx.Runner, opts ...Option) *Service {
	s := &Service{
		store:    store,
		registry: registry,
		tx:       runner,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RegisterProperty records a parcel for a verified owner. The parcel waits in
// registered until an admin of its department reviews it.
func (s *Service) RegisterProperty(ctx context.Context, owner domain.Address, reg models.Registration) (*models.Property, error) {
	if err := reg.Check(); err != nil {
		return nil, asValidation(err)
	}
	var p *models.Property
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.registry.RequireVerifiedUser(ctx, owner); err != nil {
			return err
		}
		var err error
		p, err = models.NewProperty(owner, reg, requestcontext.Now(ctx))
		if err != nil {
			return asValidation(err)
		}
		if err := s.store.Create(ctx, p); err != nil {
			if errors.Is(err, sentinel.ErrAlreadyUsed) {
				return dErrors.New(dErrors.CodeConflict, "a property with this department, location and survey number already exists")
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to register property")
		}
		return s.emit(ctx, audit.Event{
			Actor:   owner,
			Subject: subject(p.ID),
			Action:  string(audit.EventPropertyRegistered),
			Amount:  p.MarketValue,
		})
	})
	if err != nil {
		return nil, err
	}
	if s.metrics != nil {
		s.metrics.PropertiesRegistered.Inc()
	}
	s.logger.InfoContext(ctx, "property registered",
		"property_id", p.ID,
		"owner", owner.Short(),
		"department", p.DepartmentID,
		"request_id", requestcontext.RequestID(ctx),
	)
	return p, nil
}

func (s *Service) VerifyProperty(ctx context.Context, admin domain.Address, id domain.PropertyID) (*models.Property, error) {
	return s.review(ctx, admin, id, true, "")
}

func (s *Service) RejectProperty(ctx context.Context, admin domain.Address, id domain.PropertyID, reason string) (*models.Property, error) {
	if reason == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "rejection reason is required")
	}
	if len(reason) > models.MaxReasonLen {
		return nil, dErrors.Newf(dErrors.CodeValidation, "rejection reason must be at most %d characters", models.MaxReasonLen)
	}
	return s.review(ctx, admin, id, false, reason)
}

func (s *Service) review(ctx context.Context, admin domain.Address, id domain.PropertyID, approve bool, reason string) (*models.Property, error) {
	var p *models.Property
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		dept, err := s.registry.AdminDepartment(ctx, admin)
		if err != nil {
			return err
		}
		now := requestcontext.Now(ctx)
		p, err = s.store.Execute(ctx, id,
			func(p *models.Property) error {
				if p.DepartmentID != dept {
					return dErrors.New(dErrors.CodeForbidden, "property belongs to another revenue department")
				}
				return p.CanReview()
			},
			func(p *models.Property) { p.ApplyReview(admin, approve, reason, now) },
		)
		if err != nil {
			return wrapPropertyErr(err)
		}
		event := audit.Event{Actor: admin, Subject: subject(id), Decision: string(p.State), Reason: reason}
		if approve {
			event.Action = string(audit.EventPropertyVerified)
		} else {
			event.Action = string(audit.EventPropertyRejected)
		}
		return s.emit(ctx, event)
	})
	if err != nil {
		return nil, err
	}
	if s.metrics != nil {
		s.metrics.PropertiesVerified.WithLabelValues(string(p.State)).Inc()
	}
	return p, nil
}

func (s *Service) GetProperty(ctx context.Context, id domain.PropertyID) (*models.Property, error) {
	p, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, wrapPropertyErr(err)
	}
	return p, nil
}

func (s *Service) ListByOwner(ctx context.Context, owner domain.Address) ([]*models.Property, error) {
	props, err := s.store.ListByOwner(ctx, owner)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list properties")
	}
	return props, nil
}

// ListByDepartment lists the caller's department. An empty state lists all.
func (s *Service) ListByDepartment(ctx context.Context, admin domain.Address, state models.State) ([]*models.Property, error) {
	dept, err := s.registry.AdminDepartment(ctx, admin)
	if err != nil {
		return nil, err
	}
	props, err := s.store.ListByDepartment(ctx, dept, state)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list properties")
	}
	return props, nil
}

// Transition moves a property to next after check passes. It joins the
// caller's transaction; the exchange drives every sale-related state change
// through it.
func (s *Service) Transition(ctx context.Context, id domain.PropertyID, check func(*models.Property) error, next models.State) (*models.Property, error) {
	now := requestcontext.Now(ctx)
	p, err := s.store.Execute(ctx, id,
		func(p *models.Property) error {
			if check != nil {
				if err := check(p); err != nil {
					return err
				}
			}
			return p.CanMoveTo(next)
		},
		func(p *models.Property) { p.ApplyState(next, now) },
	)
	if err != nil {
		return nil, wrapPropertyErr(err)
	}
	return p, nil
}

func (s *Service) SetState(ctx context.Context, id domain.PropertyID, next models.State) (*models.Property, error) {
	return s.Transition(ctx, id, nil, next)
}

// TransferOwner hands a pending-transfer property to its buyer.
func (s *Service) TransferOwner(ctx context.Context, id domain.PropertyID, to domain.Address) (*models.Property, error) {
	now := requestcontext.Now(ctx)
	p, err := s.store.Execute(ctx, id,
		func(p *models.Property) error { return p.CanTransferOwner(to) },
		func(p *models.Property) { p.ApplyTransfer(to, now) },
	)
	if err != nil {
		return nil, wrapPropertyErr(err)
	}
	return p, nil
}

func (s *Service) emit(ctx context.Context, event audit.Event) error {
	if s.audit == nil {
		return nil
	}
	return s.audit.Emit(ctx, event)
}

func subject(id domain.PropertyID) string {
	return "property:" + id.String()
}

func wrapPropertyErr(err error) error {
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.New(dErrors.CodeNotFound, "property not found")
	}
	if _, ok := dErrors.As(err); ok {
		return err
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, "property registry failure")
}

func asValidation(err error) error {
	if de, ok := dErrors.As(err); ok && de.Code == dErrors.CodeInvariantViolation {
		return dErrors.New(dErrors.CodeValidation, de.Message)
	}
	return err
}
