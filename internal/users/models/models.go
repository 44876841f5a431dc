package models

import (
	"strings"
	"time"

	"landregistry/pkg/domain"
	dErrors "landregistry/pkg/domain-errors"
)

// Role decides what a wallet may do and where the client routes it.
type Role string

const (
	RoleMainAdmin     Role = "main_admin"
	RoleRegionalAdmin Role = "regional_admin"
	RoleUser          Role = "user"
	RoleUnregistered  Role = "unregistered"
)

// Status is the KYC review state of a user.
type Status string

const (
	StatusPending  Status = "pending"
	StatusVerified Status = "verified"
	StatusRejected Status = "rejected"
)

func ParseStatus(s string) (Status, error) {
	switch st := Status(strings.ToLower(strings.TrimSpace(s))); st {
	case StatusPending, StatusVerified, StatusRejected:
		return st, nil
	}
	return "", dErrors.Newf(dErrors.CodeValidation, "unknown status %q", s)
}

// CanTransitionTo reports whether a KYC review may move s to next.
// A rejected user returns to pending by resubmitting.
func (s Status) CanTransitionTo(next Status) bool {
	switch s {
	case StatusPending:
		return next == StatusVerified || next == StatusRejected
	case StatusRejected:
		return next == StatusPending
	}
	return false
}

const (
	MinAge          = 18
	MaxAge          = 130
	GovernmentIDLen = 12
	MaxNameLen      = 128
	MaxCIDLen       = 128
	MaxReasonLen    = 512
)

// Registration is the KYC submission.
type Registration struct {
	Name         string
	Age          int
	City         string
	GovernmentID string
	DocumentCID  string
	Email        string
	DepartmentID domain.DepartmentID
}

// Check enforces the registration invariants.
func (r Registration) Check() error {
	if r.Name == "" || len(r.Name) > MaxNameLen {
		return dErrors.Newf(dErrors.CodeInvariantViolation, "name must be 1 to %d characters", MaxNameLen)
	}
	if r.Age < MinAge || r.Age > MaxAge {
		return dErrors.Newf(dErrors.CodeInvariantViolation, "age must be between %d and %d", MinAge, MaxAge)
	}
	if r.City == "" {
		return dErrors.New(dErrors.CodeInvariantViolation, "city is required")
	}
	if !isDigits(r.GovernmentID, GovernmentIDLen) {
		return dErrors.Newf(dErrors.CodeInvariantViolation, "government id must be %d digits", GovernmentIDLen)
	}
	if r.DocumentCID == "" || len(r.DocumentCID) > MaxCIDLen {
		return dErrors.Newf(dErrors.CodeInvariantViolation, "document cid must be 1 to %d characters", MaxCIDLen)
	}
	if r.Email == "" {
		return dErrors.New(dErrors.CodeInvariantViolation, "email is required")
	}
	if r.DepartmentID <= 0 {
		return dErrors.New(dErrors.CodeInvariantViolation, "revenue department id must be positive")
	}
	return nil
}

// User is a KYC subject.
//
// Invariants:
//   - Registration fields satisfy Registration.Check
//   - VerifiedBy and ReviewedAt are set once a review happened
//   - RejectionReason is non-empty only while rejected
type User struct {
	Registration

	Address         domain.Address
	Status          Status
	RejectionReason string
	RegisteredAt    time.Time
	ReviewedAt      *time.Time
	VerifiedBy      domain.Address
}

func NewUser(addr domain.Address, reg Registration, now time.Time) (*User, error) {
	if addr.IsZero() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "user address is required")
	}
	if err := reg.Check(); err != nil {
		return nil, err
	}
	return &User{
		Address:      addr,
		Registration: reg,
		Status:       StatusPending,
		RegisteredAt: now,
	}, nil
}

func (u *User) IsVerified() bool { return u.Status == StatusVerified }

func (u *User) CanReview() error {
	if u.Status != StatusPending {
		return dErrors.Newf(dErrors.CodeInvariantViolation, "user is %s, not pending", u.Status)
	}
	return nil
}

func (u *User) ApplyVerification(admin domain.Address, now time.Time) {
	u.Status = StatusVerified
	u.VerifiedBy = admin
	u.RejectionReason = ""
	u.ReviewedAt = &now
}

func (u *User) ApplyRejection(admin domain.Address, reason string, now time.Time) {
	u.Status = StatusRejected
	u.VerifiedBy = admin
	u.RejectionReason = reason
	u.ReviewedAt = &now
}

// CanResubmit reports whether the user may send a new KYC submission.
func (u *User) CanResubmit() error {
	if !u.Status.CanTransitionTo(StatusPending) {
		return dErrors.New(dErrors.CodeConflict, "user is already registered")
	}
	return nil
}

// ApplyResubmission replaces the registration and returns the user to review.
func (u *User) ApplyResubmission(reg Registration, now time.Time) {
	u.Registration = reg
	u.Status = StatusPending
	u.RejectionReason = ""
	u.VerifiedBy = ""
	u.ReviewedAt = nil
	u.RegisteredAt = now
}

// RegionalAdmin verifies users and properties of one revenue department.
type RegionalAdmin struct {
	Address      domain.Address
	Name         string
	DepartmentID domain.DepartmentID
	Designation  string
	City         string
	CreatedAt    time.Time
}

func NewRegionalAdmin(addr domain.Address, name string, dept domain.DepartmentID, designation, city string, now time.Time) (*RegionalAdmin, error) {
	if addr.IsZero() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "admin address is required")
	}
	if name == "" || len(name) > MaxNameLen {
		return nil, dErrors.Newf(dErrors.CodeInvariantViolation, "name must be 1 to %d characters", MaxNameLen)
	}
	if dept <= 0 {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "revenue department id must be positive")
	}
	if designation == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "designation is required")
	}
	if city == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "city is required")
	}
	return &RegionalAdmin{
		Address:      addr,
		Name:         name,
		DepartmentID: dept,
		Designation:  designation,
		City:         city,
		CreatedAt:    now,
	}, nil
}

// Manages reports whether the admin covers dept.
func (a *RegionalAdmin) Manages(dept domain.DepartmentID) bool {
	return a.DepartmentID == dept
}

// Profile is everything the registry knows about one address.
type Profile struct {
	Address domain.Address
	Role    Role
	User    *User
	Admin   *RegionalAdmin
}

func (p Profile) IsVerified() bool {
	return p.User != nil && p.User.IsVerified()
}

func isDigits(s string, n int) bool {
	if len(s) != n {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
