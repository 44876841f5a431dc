// Package domain holds the identifier types shared by every registry module.
//
// Accounts are addressed by wallet Address. Registry records (properties,
// sales, purchase requests) use positive sequence numbers, matching the
// numbering clients already show to users. Distinct types keep a SaleID from
// being passed where a PropertyID is expected.
package domain

import (
	"encoding/hex"
	"strconv"
	"strings"

	dErrors "landregistry/pkg/domain-errors"
)

const addressHexLen = 40

// Address is a normalised wallet address: "0x" followed by 40 lower-case hex digits.
type Address string

// EscrowAddress holds buyer payments until a regional admin transfers ownership.
const EscrowAddress Address = "0x0000000000000000000000000000000000000000"

// ParseAddress validates and normalises a wallet address.
func ParseAddress(s string) (Address, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "address is required")
	}
	body, ok := strings.CutPrefix(s, "0x")
	if !ok {
		body, ok = strings.CutPrefix(s, "0X")
	}
	if !ok || len(body) != addressHexLen {
		return "", dErrors.New(dErrors.CodeInvalidInput, "address must be 0x followed by 40 hex digits")
	}
	if _, err := hex.DecodeString(body); err != nil {
		return "", dErrors.New(dErrors.CodeInvalidInput, "address must be 0x followed by 40 hex digits")
	}
	return Address("0x" + strings.ToLower(body)), nil
}

// MustAddress panics on invalid input. Use only for constants and tests.
func MustAddress(s string) Address {
	a, err := ParseAddress(s)
	if err != nil {
		panic(err)
	}
	return a
}

func (a Address) String() string { return string(a) }

func (a Address) IsZero() bool { return a == "" }

// IsEscrow reports whether a is the escrow account.
func (a Address) IsEscrow() bool { return a == EscrowAddress }

// Short renders the address as 0x1234…abcd for display.
func (a Address) Short() string {
	if len(a) < 10 {
		return string(a)
	}
	return string(a[:6]) + "…" + string(a[len(a)-4:])
}

type (
	PropertyID   int64
	SaleID       int64
	RequestID    int64
	DepartmentID int64
	LocationID   int64
)

func (id PropertyID) String() string   { return strconv.FormatInt(int64(id), 10) }
func (id SaleID) String() string       { return strconv.FormatInt(int64(id), 10) }
func (id RequestID) String() string    { return strconv.FormatInt(int64(id), 10) }
func (id DepartmentID) String() string { return strconv.FormatInt(int64(id), 10) }
func (id LocationID) String() string   { return strconv.FormatInt(int64(id), 10) }

func ParsePropertyID(s string) (PropertyID, error) {
	n, err := parseSequence(s, "property id")
	return PropertyID(n), err
}

func ParseSaleID(s string) (SaleID, error) {
	n, err := parseSequence(s, "sale id")
	return SaleID(n), err
}

func ParseRequestID(s string) (RequestID, error) {
	n, err := parseSequence(s, "request id")
	return RequestID(n), err
}

func ParseDepartmentID(s string) (DepartmentID, error) {
	n, err := parseSequence(s, "revenue department id")
	return DepartmentID(n), err
}

func parseSequence(s, label string) (int64, error) {
	if s == "" {
		return 0, dErrors.New(dErrors.CodeInvalidInput, label+" is required")
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil || n <= 0 {
		return 0, dErrors.New(dErrors.CodeInvalidInput, label+" must be a positive integer")
	}
	return n, nil
}
