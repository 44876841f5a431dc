package service

import (
	"context"
	"errors"
	"log/slog"

	"landregistry/internal/platform/metrics"
	"landregistry/internal/users/models"
	"landregistry/pkg/domain"
	dErrors "landregistry/pkg/domain-errors"
	audit "landregistry/pkg/platform/audit"
	"landregistry/pkg/platform/sentinel"
	"landregistry/pkg/platform/tx"
	"landregistry/pkg/requestcontext"
)

type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	FindByAddress(ctx context.Context, addr domain.Address) (*models.User, error)
	Execute(ctx context.Context, addr domain.Address, validate func(*models.User) error, mutate func(*models.User)) (*models.User, error)
	ListByDepartment(ctx context.Context, dept domain.DepartmentID, status models.Status) ([]*models.User, error)
}

type AdminStore interface {
	Create(ctx context.Context, admin *models.RegionalAdmin) error
	FindByAddress(ctx context.Context, addr domain.Address) (*models.RegionalAdmin, error)
	Delete(ctx context.Context, addr domain.Address) error
	List(ctx context.Context) ([]*models.RegionalAdmin, error)
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Service is the user registry: KYC submissions, reviews and the regional
// admin roster managed by the main administrator.
type Service struct {
	users     UserStore
	admins    AdminStore
	tx        tx.Runner
	mainAdmin domain.Address
	logger    *slog.Logger
	audit     AuditPublisher
	metrics   *metrics.Metrics
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

func New(users UserStore, admins AdminStore, runner tx.Runner, mainAdmin domain.Address, opts ...Option) *Service {
	s := &Service{
		users:     users,
		admins:    admins,
		tx:        runner,
		mainAdmin: mainAdmin,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RegisterUser submits KYC for caller. A rejected user may resubmit, which
// puts them back into review.
func (s *Service) RegisterUser(ctx context.Context, caller domain.Address, reg models.Registration) (*models.User, error) {
	if err := reg.Check(); err != nil {
		return nil, asValidation(err)
	}
	if caller.IsEscrow() {
		return nil, dErrors.New(dErrors.CodeForbidden, "the escrow account cannot register")
	}

	var user *models.User
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		isAdmin, err := s.isAdmin(ctx, caller)
		if err != nil {
			return err
		}
		if isAdmin {
			return dErrors.New(dErrors.CodeForbidden, "administrators cannot register as users")
		}

		now := requestcontext.Now(ctx)
		existing, err := s.users.FindByAddress(ctx, caller)
		switch {
		case err == nil && existing != nil:
			user, err = s.users.Execute(ctx, caller,
				func(u *models.User) error { return u.CanResubmit() },
				func(u *models.User) { u.ApplyResubmission(reg, now) },
			)
			if err != nil {
				return wrapUserErr(err)
			}
		case errors.Is(err, sentinel.ErrNotFound):
			user, err = models.NewUser(caller, reg, now)
			if err != nil {
				return asValidation(err)
			}
			if err := s.users.Create(ctx, user); err != nil {
				if errors.Is(err, sentinel.ErrAlreadyUsed) {
					return dErrors.New(dErrors.CodeConflict, "user is already registered")
				}
				return dErrors.Wrap(err, dErrors.CodeInternal, "failed to register user")
			}
		default:
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load user")
		}

		return s.emit(ctx, audit.Event{
			Actor:   caller,
			Subject: caller.String(),
			Action:  string(audit.EventUserRegistered),
			Reason:  "department " + reg.DepartmentID.String(),
		})
	})
	if err != nil {
		return nil, err
	}
	if s.metrics != nil {
		s.metrics.UsersRegistered.Inc()
	}
	return user, nil
}

// VerifyUser approves a pending user. Only a regional admin of the user's
// department may review.
func (s *Service) VerifyUser(ctx context.Context, caller, target domain.Address) (*models.User, error) {
	return s.review(ctx, caller, target, "", true)
}

// RejectUser rejects a pending user with a reason the user can act on.
func (s *Service) RejectUser(ctx context.Context, caller, target domain.Address, reason string) (*models.User, error) {
	if reason == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "rejection reason is required")
	}
	if len(reason) > models.MaxReasonLen {
		return nil, dErrors.Newf(dErrors.CodeValidation, "rejection reason must be at most %d characters", models.MaxReasonLen)
	}
	return s.review(ctx, caller, target, reason, false)
}

func (s *Service) review(ctx context.Context, caller, target domain.Address, reason string, approve bool) (*models.User, error) {
	var user *models.User
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		admin, err := s.requireAdmin(ctx, caller)
		if err != nil {
			return err
		}
		now := requestcontext.Now(ctx)
		user, err = s.users.Execute(ctx, target,
			func(u *models.User) error {
				if !admin.Manages(u.DepartmentID) {
					return dErrors.New(dErrors.CodeForbidden, "user belongs to another revenue department")
				}
				return u.CanReview()
			},
			func(u *models.User) {
				if approve {
					u.ApplyVerification(caller, now)
				} else {
					u.ApplyRejection(caller, reason, now)
				}
			},
		)
		if err != nil {
			return wrapUserErr(err)
		}

		event := audit.Event{Actor: caller, Subject: target.String(), Decision: string(user.Status), Reason: reason}
		if approve {
			event.Action = string(audit.EventUserVerified)
		} else {
			event.Action = string(audit.EventUserRejected)
		}
		return s.emit(ctx, event)
	})
	if err != nil {
		return nil, err
	}
	if s.metrics != nil {
		s.metrics.UsersVerified.WithLabelValues(string(user.Status)).Inc()
	}
	s.logger.InfoContext(ctx, "user reviewed",
		"user", target.Short(),
		"admin", caller.Short(),
		"status", user.Status,
		"request_id", requestcontext.RequestID(ctx),
	)
	return user, nil
}

// NewAdmin is the input for AddRegionalAdmin.
type NewAdmin struct {
	Address      domain.Address
	Name         string
	DepartmentID domain.DepartmentID
	Designation  string
	City         string
}

// AddRegionalAdmin appoints an admin. Only the main administrator may call it.
func (s *Service) AddRegionalAdmin(ctx context.Context, caller domain.Address, in NewAdmin) (*models.RegionalAdmin, error) {
	if err := s.requireMainAdmin(caller); err != nil {
		return nil, err
	}
	if in.Address == s.mainAdmin || in.Address.IsEscrow() {
		return nil, dErrors.New(dErrors.CodeConflict, "address cannot be appointed")
	}
	admin, err := models.NewRegionalAdmin(in.Address, in.Name, in.DepartmentID, in.Designation, in.City, requestcontext.Now(ctx))
	if err != nil {
		return nil, asValidation(err)
	}

	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if _, err := s.users.FindByAddress(ctx, in.Address); err == nil {
			return dErrors.New(dErrors.CodeConflict, "address is already registered as a user")
		} else if !errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load user")
		}
		if err := s.admins.Create(ctx, admin); err != nil {
			if errors.Is(err, sentinel.ErrAlreadyUsed) {
				return dErrors.New(dErrors.CodeConflict, "address is already a regional admin")
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to add regional admin")
		}
		return s.emit(ctx, audit.Event{
			Actor:   caller,
			Subject: in.Address.String(),
			Action:  string(audit.EventAdminAdded),
			Reason:  "department " + in.DepartmentID.String(),
		})
	})
	if err != nil {
		return nil, err
	}
	return admin, nil
}

func (s *Service) RemoveRegionalAdmin(ctx context.Context, caller, target domain.Address) error {
	if err := s.requireMainAdmin(caller); err != nil {
		return err
	}
	return s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.admins.Delete(ctx, target); err != nil {
			if errors.Is(err, sentinel.ErrNotFound) {
				return dErrors.New(dErrors.CodeNotFound, "regional admin not found")
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to remove regional admin")
		}
		return s.emit(ctx, audit.Event{
			Actor:   caller,
			Subject: target.String(),
			Action:  string(audit.EventAdminRemoved),
		})
	})
}

func (s *Service) ListRegionalAdmins(ctx context.Context) ([]*models.RegionalAdmin, error) {
	admins, err := s.admins.List(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list regional admins")
	}
	return admins, nil
}

// ListUsersByDepartment lists users of the caller's own department.
func (s *Service) ListUsersByDepartment(ctx context.Context, caller domain.Address, status models.Status) ([]*models.User, error) {
	admin, err := s.requireAdmin(ctx, caller)
	if err != nil {
		return nil, err
	}
	users, err := s.users.ListByDepartment(ctx, admin.DepartmentID, status)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list users")
	}
	return users, nil
}

// GetUser returns a user to themselves, to an admin of their department or
// to the main administrator.
func (s *Service) GetUser(ctx context.Context, caller, target domain.Address) (*models.User, error) {
	user, err := s.users.FindByAddress(ctx, target)
	if err != nil {
		return nil, wrapUserErr(err)
	}
	if caller == target || caller == s.mainAdmin {
		return user, nil
	}
	admin, err := s.admins.FindByAddress(ctx, caller)
	if err == nil && admin.Manages(user.DepartmentID) {
		return user, nil
	}
	if err != nil && !errors.Is(err, sentinel.ErrNotFound) {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load regional admin")
	}
	return nil, dErrors.New(dErrors.CodeForbidden, "not allowed to view this user")
}

// Profile resolves the role of addr together with its user or admin record.
func (s *Service) Profile(ctx context.Context, addr domain.Address) (*models.Profile, error) {
	p := &models.Profile{Address: addr, Role: models.RoleUnregistered}
	if addr == s.mainAdmin {
		p.Role = models.RoleMainAdmin
		return p, nil
	}
	admin, err := s.admins.FindByAddress(ctx, addr)
	switch {
	case err == nil:
		p.Role = models.RoleRegionalAdmin
		p.Admin = admin
		return p, nil
	case !errors.Is(err, sentinel.ErrNotFound):
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load regional admin")
	}
	user, err := s.users.FindByAddress(ctx, addr)
	switch {
	case err == nil:
		p.Role = models.RoleUser
		p.User = user
	case !errors.Is(err, sentinel.ErrNotFound):
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load user")
	}
	return p, nil
}

func (s *Service) Role(ctx context.Context, addr domain.Address) (models.Role, error) {
	p, err := s.Profile(ctx, addr)
	if err != nil {
		return "", err
	}
	return p.Role, nil
}

func (s *Service) IsVerified(ctx context.Context, addr domain.Address) (bool, error) {
	user, err := s.users.FindByAddress(ctx, addr)
	if errors.Is(err, sentinel.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load user")
	}
	return user.IsVerified(), nil
}

// RequireVerifiedUser fails unless addr is a verified user.
func (s *Service) RequireVerifiedUser(ctx context.Context, addr domain.Address) error {
	ok, err := s.IsVerified(ctx, addr)
	if err != nil {
		return err
	}
	if !ok {
		return dErrors.New(dErrors.CodeForbidden, "caller is not a verified user")
	}
	return nil
}

// RequireRegionalAdmin fails unless addr administers dept.
func (s *Service) RequireRegionalAdmin(ctx context.Context, addr domain.Address, dept domain.DepartmentID) error {
	admin, err := s.requireAdmin(ctx, addr)
	if err != nil {
		return err
	}
	if !admin.Manages(dept) {
		return dErrors.New(dErrors.CodeForbidden, "record belongs to another revenue department")
	}
	return nil
}

// AdminDepartment returns the department addr administers.
func (s *Service) AdminDepartment(ctx context.Context, addr domain.Address) (domain.DepartmentID, error) {
	admin, err := s.requireAdmin(ctx, addr)
	if err != nil {
		return 0, err
	}
	return admin.DepartmentID, nil
}

func (s *Service) MainAdmin() domain.Address {
	return s.mainAdmin
}

func (s *Service) requireMainAdmin(caller domain.Address) error {
	if caller != s.mainAdmin {
		return dErrors.New(dErrors.CodeForbidden, "only the main administrator may manage regional admins")
	}
	return nil
}

func (s *Service) requireAdmin(ctx context.Context, caller domain.Address) (*models.RegionalAdmin, error) {
	admin, err := s.admins.FindByAddress(ctx, caller)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeForbidden, "caller is not a regional admin")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load regional admin")
	}
	return admin, nil
}

func (s *Service) isAdmin(ctx context.Context, addr domain.Address) (bool, error) {
	if addr == s.mainAdmin {
		return true, nil
	}
	_, err := s.admins.FindByAddress(ctx, addr)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, sentinel.ErrNotFound) {
		return false, nil
	}
	return false, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load regional admin")
}

func (s *Service) emit(ctx context.Context, event audit.Event) error {
	if s.audit == nil {
		return nil
	}
	return s.audit.Emit(ctx, event)
}

func wrapUserErr(err error) error {
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.New(dErrors.CodeNotFound, "user not found")
	}
	if _, ok := dErrors.As(err); ok {
		return err
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, "user registry failure")
}

// asValidation reports model invariant failures as request validation errors.
func asValidation(err error) error {
	if de, ok := dErrors.As(err); ok && de.Code == dErrors.CodeInvariantViolation {
		return dErrors.New(dErrors.CodeValidation, de.Message)
	}
	return err
}
