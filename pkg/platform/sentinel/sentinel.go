package sentinel

import "errors"

// Sentinel errors for storage facts. Stores return these (optionally wrapped)
// so services can translate them into domain errors:
//   - ErrNotFound: record does not exist
//   - ErrAlreadyUsed: unique key (address, survey triple) is taken
//   - ErrInsufficientFunds: ledger debit would make a balance negative
//   - ErrInvalidState: record is in the wrong state for the write
//   - ErrUnavailable: backing store temporarily unreachable
var (
	ErrNotFound          = errors.New("not found")
	ErrAlreadyUsed       = errors.New("already used")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrInvalidState      = errors.New("invalid state")
	ErrUnavailable       = errors.New("unavailable")
)
