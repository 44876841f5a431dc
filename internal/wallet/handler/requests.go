package handler

import (
	"strings"

	"landregistry/pkg/domain"
	dErrors "landregistry/pkg/domain-errors"
)

// CredentialsRequest is the body of account creation and connect.
type CredentialsRequest struct {
	Address    string `json:"address"`
	Passphrase string `json:"passphrase"`

	parsedAddress domain.Address
}

func (r *CredentialsRequest) Normalize() {
	r.Address = strings.TrimSpace(r.Address)
}

func (r *CredentialsRequest) Validate() error {
	// Size
	if len(r.Address) > 64 {
		return dErrors.New(dErrors.CodeValidation, "address is too long")
	}
	if len(r.Passphrase) > 256 {
		return dErrors.New(dErrors.CodeValidation, "passphrase is too long")
	}
	// Required
	if r.Address == "" {
		return dErrors.New(dErrors.CodeValidation, "address is required")
	}
	if r.Passphrase == "" {
		return dErrors.New(dErrors.CodeValidation, "passphrase is required")
	}
	// Syntax
	addr, err := domain.ParseAddress(r.Address)
	if err != nil {
		return dErrors.New(dErrors.CodeValidation, "address must be 0x followed by 40 hex digits")
	}
	r.parsedAddress = addr
	return nil
}

func (r *CredentialsRequest) ParsedAddress() domain.Address {
	return r.parsedAddress
}

// MaxDeposit bounds a single faucet deposit.
const MaxDeposit = 1 << 53

type DepositRequest struct {
	Amount int64 `json:"amount"`
}

func (r *DepositRequest) Normalize() {}

func (r *DepositRequest) Validate() error {
	if r.Amount <= 0 {
		return dErrors.New(dErrors.CodeValidation, "amount must be positive")
	}
	if r.Amount > MaxDeposit {
		return dErrors.Newf(dErrors.CodeValidation, "amount cannot exceed %d", int64(MaxDeposit))
	}
	return nil
}
