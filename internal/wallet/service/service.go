package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"golang.org/x/crypto/bcrypt"

	"landregistry/internal/platform/metrics"
	"landregistry/internal/wallet/device"
	"landregistry/internal/wallet/models"
	"landregistry/pkg/domain"
	dErrors "landregistry/pkg/domain-errors"
	audit "landregistry/pkg/platform/audit"
	"landregistry/pkg/platform/sentinel"
	"landregistry/pkg/platform/tx"
	"landregistry/pkg/requestcontext"
)

const (
	minPassphraseLen = 8
	maxPassphraseLen = 72 // bcrypt input limit
)

type AccountStore interface {
	Create(ctx context.Context, account *models.Account) error
	FindByAddress(ctx context.Context, addr domain.Address) (*models.Account, error)
	Execute(ctx context.Context, addr domain.Address, validate func(*models.Account) error, mutate func(*models.Account)) (*models.Account, error)
	RecordTransfer(ctx context.Context, t *models.Transfer) error
	ListTransfers(ctx context.Context, addr domain.Address, limit int) ([]*models.Transfer, error)
}

type TokenIssuer interface {
	Issue(addr domain.Address, now time.Time, ttl time.Duration) (token string, jti string, err error)
}

type RevocationList interface {
	RevokeToken(ctx context.Context, jti string, ttl time.Duration) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// Lockout throttles repeated connection failures.
type Lockout interface {
	Check(ctx context.Context, addr domain.Address) error
	RecordFailure(ctx context.Context, addr domain.Address) error
	Clear(ctx context.Context, addr domain.Address) error
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Config carries the chain settings the wallet reports and enforces.
type Config struct {
	ChainID        int64
	InitialBalance int64
	FaucetEnabled  bool
	TokenTTL       time.Duration
}

// Service is the wallet adapter: accounts, sessions and the ledger that the
// exchange moves funds through.
type Service struct {
	accounts    AccountStore
	tokens      TokenIssuer
	revocations RevocationList
	tx          tx.Runner
	cfg         Config
	logger      *slog.Logger
	audit       AuditPublisher
	metrics     *metrics.Metrics
	lockout     Lockout
	bcryptCost  int
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

func WithLockout(l Lockout) Option {
	return func(s *Service) { s.lockout = l }
}

// WithBcryptCost lowers the hashing cost in tests.
func WithBcryptCost(cost int) Option {
	return func(s *Service) { s.bcryptCost = cost }
}

func New(accounts AccountStore, tokens TokenIssuer, revocations RevocationList, runner tx.Runner, cfg Config, opts ...Option) *Service {
	s := &Service{
		accounts:    accounts,
		tokens:      tokens,
		revocations: revocations,
		tx:          runner,
		cfg:         cfg,
		logger:      slog.Default(),
		bcryptCost:  bcrypt.DefaultCost,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.cfg.TokenTTL <= 0 {
		s.cfg.TokenTTL = 12 * time.Hour
	}
	return s
}

// EnsureEscrow creates the escrow account if it does not exist yet.
func (s *Service) EnsureEscrow(ctx context.Context) error {
	acc, err := models.NewAccount(domain.EscrowAddress, nil, 0, requestcontext.Now(ctx))
	if err != nil {
		return err
	}
	if err := s.accounts.Create(ctx, acc); err != nil && !errors.Is(err, sentinel.ErrAlreadyUsed) {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to create escrow account")
	}
	return nil
}

// CreateAccount registers a wallet protected by passphrase.
func (s *Service) CreateAccount(ctx context.Context, addr domain.Address, passphrase string) (*models.State, error) {
	if addr.IsEscrow() {
		return nil, dErrors.New(dErrors.CodeForbidden, "the escrow address is reserved")
	}
	if err := validatePassphrase(passphrase); err != nil {
		return nil, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(passphrase), s.bcryptCost)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to hash passphrase")
	}
	acc, err := models.NewAccount(addr, hash, s.cfg.InitialBalance, requestcontext.Now(ctx))
	if err != nil {
		return nil, err
	}

	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.accounts.Create(ctx, acc); err != nil {
			if errors.Is(err, sentinel.ErrAlreadyUsed) {
				return dErrors.New(dErrors.CodeConflict, "wallet account already exists")
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to create wallet account")
		}
		return s.emit(ctx, audit.Event{
			Actor:   addr,
			Subject: addr.String(),
			Action:  string(audit.EventWalletCreated),
			Amount:  acc.Balance,
		})
	})
	if err != nil {
		return nil, err
	}
	return s.state(acc), nil
}

// Connect verifies the passphrase and issues a session token.
func (s *Service) Connect(ctx context.Context, addr domain.Address, passphrase string) (*models.Session, error) {
	if s.lockout != nil {
		if err := s.lockout.Check(ctx, addr); err != nil {
			if dErrors.HasCode(err, dErrors.CodeRateLimited) {
				s.countConnection("locked")
			}
			return nil, err
		}
	}
	acc, err := s.accounts.FindByAddress(ctx, addr)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			s.countConnection("unknown_account")
			return nil, s.connectFailed(ctx, addr)
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load wallet account")
	}
	if err := acc.CanConnect(); err != nil {
		s.countConnection("forbidden")
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword(acc.PassphraseHash, []byte(passphrase)); err != nil {
		s.countConnection("bad_passphrase")
		s.logger.WarnContext(ctx, "wallet connection rejected",
			"address", addr.Short(),
			"request_id", requestcontext.RequestID(ctx),
		)
		return nil, s.connectFailed(ctx, addr)
	}

	now := requestcontext.Now(ctx)
	token, jti, err := s.tokens.Issue(addr, now, s.cfg.TokenTTL)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to issue session token")
	}
	sess := &models.Session{
		Token:     token,
		JTI:       jti,
		Address:   addr,
		Device:    device.ParseUserAgent(requestcontext.UserAgent(ctx)),
		IssuedAt:  now,
		ExpiresAt: now.Add(s.cfg.TokenTTL),
	}
	if err := s.emit(ctx, audit.Event{
		Actor:   addr,
		Subject: addr.String(),
		Action:  string(audit.EventWalletConnected),
		Reason:  sess.Device,
	}); err != nil {
		return nil, err
	}
	if s.lockout != nil {
		if err := s.lockout.Clear(ctx, addr); err != nil {
			s.logger.WarnContext(ctx, "failed to clear connection failures", "error", err)
		}
	}
	s.countConnection("success")
	return sess, nil
}

// connectFailed records the failure and returns the uniform rejection.
func (s *Service) connectFailed(ctx context.Context, addr domain.Address) error {
	if s.lockout != nil {
		if err := s.lockout.RecordFailure(ctx, addr); err != nil {
			return err
		}
	}
	return dErrors.New(dErrors.CodeUnauthorized, "invalid address or passphrase")
}

// Disconnect revokes the session token until it would have expired.
func (s *Service) Disconnect(ctx context.Context, addr domain.Address, jti string, expiresAt time.Time) error {
	if jti == "" {
		return dErrors.New(dErrors.CodeUnauthorized, "no active session")
	}
	ttl := expiresAt.Sub(requestcontext.Now(ctx))
	if err := s.revocations.RevokeToken(ctx, jti, ttl); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to revoke session")
	}
	return s.emit(ctx, audit.Event{
		Actor:   addr,
		Subject: addr.String(),
		Action:  string(audit.EventWalletDisconnected),
	})
}

// AccountState returns the balance and chain of addr.
func (s *Service) AccountState(ctx context.Context, addr domain.Address) (*models.State, error) {
	acc, err := s.accounts.FindByAddress(ctx, addr)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "wallet account not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load wallet account")
	}
	return s.state(acc), nil
}

// Balance returns the current balance of addr.
func (s *Service) Balance(ctx context.Context, addr domain.Address) (int64, error) {
	st, err := s.AccountState(ctx, addr)
	if err != nil {
		return 0, err
	}
	return st.Balance, nil
}

func (s *Service) History(ctx context.Context, addr domain.Address, limit int) ([]*models.Transfer, error) {
	transfers, err := s.accounts.ListTransfers(ctx, addr, limit)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list transfers")
	}
	return transfers, nil
}

// Deposit credits amount from the dev faucet.
func (s *Service) Deposit(ctx context.Context, addr domain.Address, amount int64) (*models.State, error) {
	if !s.cfg.FaucetEnabled {
		return nil, dErrors.New(dErrors.CodeForbidden, "faucet is disabled")
	}
	if amount <= 0 {
		return nil, dErrors.New(dErrors.CodeValidation, "amount must be positive")
	}
	if addr.IsEscrow() {
		return nil, dErrors.New(dErrors.CodeForbidden, "cannot deposit into escrow")
	}

	var acc *models.Account
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		now := requestcontext.Now(ctx)
		var err error
		acc, err = s.accounts.Execute(ctx, addr,
			func(a *models.Account) error { return a.CanCredit(amount) },
			func(a *models.Account) { a.ApplyCredit(amount, now) },
		)
		if err != nil {
			return wrapAccountErr(err)
		}
		if err := s.accounts.RecordTransfer(ctx, &models.Transfer{To: addr, Amount: amount, Memo: "deposit", CreatedAt: now}); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to record deposit")
		}
		return s.emit(ctx, audit.Event{
			Actor:   addr,
			Subject: addr.String(),
			Action:  string(audit.EventWalletDeposit),
			Amount:  amount,
		})
	})
	if err != nil {
		return nil, err
	}
	return s.state(acc), nil
}

// Transfer moves amount from one account to another. Both rows are locked
// and checked in address order before either balance changes, so concurrent
// transfers over the same pair cannot deadlock and a failure never leaves
// funds in flight.
func (s *Service) Transfer(ctx context.Context, from, to domain.Address, amount int64, memo string) error {
	if from == to {
		return dErrors.New(dErrors.CodeInvariantViolation, "cannot transfer to the same account")
	}
	if amount <= 0 {
		return dErrors.New(dErrors.CodeValidation, "amount must be positive")
	}
	debit := func(a *models.Account) error { return a.CanDebit(amount) }
	credit := func(a *models.Account) error { return a.CanCredit(amount) }
	return s.tx.RunInTx(ctx, func(ctx context.Context) error {
		now := requestcontext.Now(ctx)
		first, second := lockStep{from, debit}, lockStep{to, credit}
		if to.String() < from.String() {
			first, second = second, first
		}
		for _, step := range []lockStep{first, second} {
			if _, err := s.accounts.Execute(ctx, step.addr, step.check, func(*models.Account) {}); err != nil {
				return wrapAccountErr(err)
			}
		}
		if _, err := s.accounts.Execute(ctx, from, debit,
			func(a *models.Account) { a.ApplyDebit(amount, now) }); err != nil {
			return wrapAccountErr(err)
		}
		if _, err := s.accounts.Execute(ctx, to, credit,
			func(a *models.Account) { a.ApplyCredit(amount, now) }); err != nil {
			return wrapAccountErr(err)
		}
		if err := s.accounts.RecordTransfer(ctx, &models.Transfer{From: from, To: to, Amount: amount, Memo: memo, CreatedAt: now}); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to record transfer")
		}
		return nil
	})
}

type lockStep struct {
	addr  domain.Address
	check func(*models.Account) error
}

func (s *Service) ChainID() int64 {
	return s.cfg.ChainID
}

func (s *Service) state(acc *models.Account) *models.State {
	return &models.State{Address: acc.Address, Balance: acc.Balance, ChainID: s.cfg.ChainID}
}

func (s *Service) emit(ctx context.Context, event audit.Event) error {
	if s.audit == nil {
		return nil
	}
	return s.audit.Emit(ctx, event)
}

func (s *Service) countConnection(outcome string) {
	if s.metrics != nil {
		s.metrics.WalletConnections.WithLabelValues(outcome).Inc()
	}
}

func validatePassphrase(p string) error {
	if len(p) > maxPassphraseLen {
		return dErrors.Newf(dErrors.CodeValidation, "passphrase must be at most %d bytes", maxPassphraseLen)
	}
	if len(p) < minPassphraseLen {
		return dErrors.Newf(dErrors.CodeValidation, "passphrase must be at least %d characters", minPassphraseLen)
	}
	return nil
}

func wrapAccountErr(err error) error {
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.New(dErrors.CodeNotFound, "wallet account not found")
	}
	if _, ok := dErrors.As(err); ok {
		return err
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, "wallet ledger failure")
}
