// Package service decides where a wallet belongs in the client and assembles
// its dashboard.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	exmodels "landregistry/internal/exchange/models"
	propmodels "landregistry/internal/property/models"
	usermodels "landregistry/internal/users/models"
	walletmodels "landregistry/internal/wallet/models"
	"landregistry/pkg/domain"
	dErrors "landregistry/pkg/domain-errors"
)

// Destination is the client path a wallet is sent to after connecting.
type Destination string

const (
	DestinationAdmin         Destination = "/admin"
	DestinationRegionalAdmin Destination = "/regional-admin"
	DestinationDashboard     Destination = "/dashboard"
	DestinationKYCPending    Destination = "/kyc-pending"
	DestinationKYCRejected   Destination = "/kyc-rejected"
	DestinationRegister      Destination = "/register"
)

type Route struct {
	Address     domain.Address
	Role        usermodels.Role
	Verified    bool
	Destination Destination
}

// Dashboard is everything the client shows on one screen.
type Dashboard struct {
	Route      Route
	Account    *walletmodels.State
	Properties []*propmodels.Property
	Sales      []*exmodels.Sale
	Requests   []*exmodels.PurchaseRequest
	FetchedAt  time.Time
}

type Users interface {
	Profile(ctx context.Context, addr domain.Address) (*usermodels.Profile, error)
}

type Wallets interface {
	AccountState(ctx context.Context, addr domain.Address) (*walletmodels.State, error)
}

type Properties interface {
	ListByOwner(ctx context.Context, owner domain.Address) ([]*propmodels.Property, error)
}

type Exchange interface {
	ListSalesBySeller(ctx context.Context, seller domain.Address) ([]*exmodels.Sale, error)
	ListRequestsByBuyer(ctx context.Context, buyer domain.Address) ([]*exmodels.PurchaseRequest, error)
}

const defaultDashboardTimeout = 3 * time.Second

type Service struct {
	users      Users
	wallets    Wallets
	properties Properties
	exchange   Exchange
	timeout    time.Duration
	logger     *slog.Logger
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.timeout = d
		}
	}
}

func New(users Users, wallets Wallets, properties Properties, exchange Exchange, opts ...Option) *Service {
	s := &Service{
		users:      users,
		wallets:    wallets,
		properties: properties,
		exchange:   exchange,
		timeout:    defaultDashboardTimeout,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Resolve maps a wallet to its role and landing page.
func (s *Service) Resolve(ctx context.Context, addr domain.Address) (*Route, error) {
	p, err := s.users.Profile(ctx, addr)
	if err != nil {
		return nil, err
	}
	return routeFor(p), nil
}

func routeFor(p *usermodels.Profile) *Route {
	r := &Route{Address: p.Address, Role: p.Role}
	switch p.Role {
	case usermodels.RoleMainAdmin:
		r.Verified = true
		r.Destination = DestinationAdmin
	case usermodels.RoleRegionalAdmin:
		r.Verified = true
		r.Destination = DestinationRegionalAdmin
	case usermodels.RoleUser:
		switch p.User.Status {
		case usermodels.StatusVerified:
			r.Verified = true
			r.Destination = DestinationDashboard
		case usermodels.StatusRejected:
			r.Destination = DestinationKYCRejected
		default:
			r.Destination = DestinationKYCPending
		}
	default:
		r.Destination = DestinationRegister
	}
	return r
}

// Dashboard gathers the caller's account, role, properties, sales and
// purchase requests in parallel. The first failure cancels the rest.
func (s *Service) Dashboard(ctx context.Context, addr domain.Address) (*Dashboard, error) {
	bounded, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	g, ctx := errgroup.WithContext(bounded)
	d := &Dashboard{FetchedAt: time.Now()}

	g.Go(func() error {
		route, err := s.Resolve(ctx, addr)
		if err != nil {
			return err
		}
		d.Route = *route
		return nil
	})
	g.Go(func() error {
		acc, err := s.wallets.AccountState(ctx, addr)
		if err != nil {
			return err
		}
		d.Account = acc
		return nil
	})
	g.Go(func() error {
		props, err := s.properties.ListByOwner(ctx, addr)
		if err != nil {
			return err
		}
		d.Properties = props
		return nil
	})
	g.Go(func() error {
		sales, err := s.exchange.ListSalesBySeller(ctx, addr)
		if err != nil {
			return err
		}
		d.Sales = sales
		return nil
	})
	g.Go(func() error {
		reqs, err := s.exchange.ListRequestsByBuyer(ctx, addr)
		if err != nil {
			return err
		}
		d.Requests = reqs
		return nil
	})

	if err := g.Wait(); err != nil {
		s.logger.WarnContext(ctx, "dashboard aggregation failed", "address", addr.Short(), "error", err)
		if errors.Is(bounded.Err(), context.DeadlineExceeded) {
			return nil, dErrors.Wrap(err, dErrors.CodeTimeout, "dashboard timed out")
		}
		if _, ok := dErrors.As(err); !ok {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load dashboard")
		}
		return nil, err
	}
	return d, nil
}
