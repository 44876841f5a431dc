package models

import (
	"math"
	"time"

	"landregistry/pkg/domain"
	dErrors "landregistry/pkg/domain-errors"
)

// Account is a wallet known to the ledger.
//
// Invariants:
//   - Balance is never negative
//   - The escrow account has no passphrase and cannot connect
type Account struct {
	Address        domain.Address
	PassphraseHash []byte
	Balance        int64
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func NewAccount(addr domain.Address, hash []byte, balance int64, now time.Time) (*Account, error) {
	if addr.IsZero() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "account address is required")
	}
	if balance < 0 {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "opening balance cannot be negative")
	}
	if !addr.IsEscrow() && len(hash) == 0 {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "passphrase hash is required")
	}
	return &Account{
		Address:        addr,
		PassphraseHash: hash,
		Balance:        balance,
		CreatedAt:      now,
		UpdatedAt:      now,
	}, nil
}

// CanConnect reports whether a session may be opened for this account.
func (a *Account) CanConnect() error {
	if a.Address.IsEscrow() || len(a.PassphraseHash) == 0 {
		return dErrors.New(dErrors.CodeForbidden, "account cannot connect")
	}
	return nil
}

// CanDebit checks the balance covers amount.
func (a *Account) CanDebit(amount int64) error {
	if amount <= 0 {
		return dErrors.New(dErrors.CodeInvariantViolation, "amount must be positive")
	}
	if a.Balance < amount {
		return dErrors.Newf(dErrors.CodeInsufficientFunds, "balance %d is below required %d", a.Balance, amount)
	}
	return nil
}

// CanCredit checks amount fits without overflowing the balance.
func (a *Account) CanCredit(amount int64) error {
	if amount <= 0 {
		return dErrors.New(dErrors.CodeInvariantViolation, "amount must be positive")
	}
	if a.Balance > math.MaxInt64-amount {
		return dErrors.Newf(dErrors.CodeInvariantViolation, "crediting %d would overflow balance %d", amount, a.Balance)
	}
	return nil
}

func (a *Account) ApplyDebit(amount int64, now time.Time) {
	a.Balance -= amount
	a.UpdatedAt = now
}

func (a *Account) ApplyCredit(amount int64, now time.Time) {
	a.Balance += amount
	a.UpdatedAt = now
}

// Transfer is one ledger movement. Faucet deposits have an empty From.
type Transfer struct {
	ID        int64
	From      domain.Address
	To        domain.Address
	Amount    int64
	Memo      string
	CreatedAt time.Time
}

// State is what the wallet adapter reports to the client.
type State struct {
	Address domain.Address
	Balance int64
	ChainID int64
}

// Session is an issued wallet session.
type Session struct {
	Token     string
	JTI       string
	Address   domain.Address
	Device    string
	IssuedAt  time.Time
	ExpiresAt time.Time
}
