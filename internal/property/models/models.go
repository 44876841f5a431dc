package models

import (
	"strings"
	"time"

	"landregistry/pkg/domain"
	dErrors "landregistry/pkg/domain-errors"
)

// State tracks a property through verification and the sale lifecycle.
type State string

const (
	StateRegistered      State = "registered"
	StateVerified        State = "verified"
	StateRejected        State = "rejected"
	StateOnSale          State = "on_sale"
	StateSaleRequested   State = "sale_requested"
	StateSaleApproved    State = "sale_approved"
	StatePendingTransfer State = "pending_transfer"
)

var stateLabels = map[State]string{
	StateRegistered:      "Registered",
	StateVerified:        "Verified",
	StateRejected:        "Rejected",
	StateOnSale:          "On Sale",
	StateSaleRequested:   "Sale Requested",
	StateSaleApproved:    "Sale Approved",
	StatePendingTransfer: "Pending Transfer",
}

// Label is the display name shown to users.
func (s State) Label() string {
	if l, ok := stateLabels[s]; ok {
		return l
	}
	return string(s)
}

func ParseState(s string) (State, error) {
	st := State(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := stateLabels[st]; !ok {
		return "", dErrors.Newf(dErrors.CodeValidation, "unknown property state %q", s)
	}
	return st, nil
}

var transitions = map[State][]State{
	StateRegistered:      {StateVerified, StateRejected},
	StateVerified:        {StateOnSale},
	StateOnSale:          {StateSaleRequested, StateVerified},
	StateSaleRequested:   {StateOnSale, StateSaleApproved, StateVerified},
	StateSaleApproved:    {StatePendingTransfer, StateSaleRequested, StateOnSale, StateVerified},
	StatePendingTransfer: {StateVerified},
}

// CanTransitionTo reports whether next is reachable from s. Staying in the
// same state is allowed so derived-state recomputation is idempotent.
func (s State) CanTransitionTo(next State) bool {
	if s == next {
		return true
	}
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

const (
	MaxSurveyNumberLen = 64
	MaxCIDLen          = 128
	MaxReasonLen       = 512
)

// Registration is the owner's submission.
type Registration struct {
	DepartmentID domain.DepartmentID
	LocationID   domain.LocationID
	SurveyNumber string
	Area         int64
	MarketValue  int64
	DocumentCID  string
}

func (r Registration) Check() error {
	if r.DepartmentID <= 0 {
		return dErrors.New(dErrors.CodeInvariantViolation, "revenue department id must be positive")
	}
	if r.LocationID <= 0 {
		return dErrors.New(dErrors.CodeInvariantViolation, "location id must be positive")
	}
	if r.SurveyNumber == "" || len(r.SurveyNumber) > MaxSurveyNumberLen {
		return dErrors.Newf(dErrors.CodeInvariantViolation, "survey number must be 1 to %d characters", MaxSurveyNumberLen)
	}
	if r.Area <= 0 {
		return dErrors.New(dErrors.CodeInvariantViolation, "area must be positive")
	}
	if r.MarketValue <= 0 {
		return dErrors.New(dErrors.CodeInvariantViolation, "market value must be positive")
	}
	if len(r.DocumentCID) > MaxCIDLen {
		return dErrors.Newf(dErrors.CodeInvariantViolation, "document cid must be at most %d characters", MaxCIDLen)
	}
	return nil
}

// Property is a land parcel.
//
// Invariants:
//   - (DepartmentID, LocationID, SurveyNumber) is unique
//   - State only changes along CanTransitionTo
//   - Admin is set once the property has been reviewed
type Property struct {
	Registration

	ID              domain.PropertyID
	Owner           domain.Address
	Admin           domain.Address
	State           State
	RejectionReason string
	RegisteredAt    time.Time
	UpdatedAt       time.Time
}

func NewProperty(owner domain.Address, reg Registration, now time.Time) (*Property, error) {
	if owner.IsZero() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "owner is required")
	}
	if err := reg.Check(); err != nil {
		return nil, err
	}
	return &Property{
		Registration: reg,
		Owner:        owner,
		State:        StateRegistered,
		RegisteredAt: now,
		UpdatedAt:    now,
	}, nil
}

// CanMoveTo checks the state machine.
func (p *Property) CanMoveTo(next State) error {
	if !p.State.CanTransitionTo(next) {
		return dErrors.Newf(dErrors.CodeInvariantViolation, "property cannot move from %s to %s", p.State.Label(), next.Label())
	}
	return nil
}

func (p *Property) ApplyState(next State, now time.Time) {
	p.State = next
	p.UpdatedAt = now
}

func (p *Property) CanReview() error {
	if p.State != StateRegistered {
		return dErrors.Newf(dErrors.CodeInvariantViolation, "property is %s, not awaiting review", p.State.Label())
	}
	return nil
}

func (p *Property) ApplyReview(admin domain.Address, approve bool, reason string, now time.Time) {
	p.Admin = admin
	if approve {
		p.State = StateVerified
		p.RejectionReason = ""
	} else {
		p.State = StateRejected
		p.RejectionReason = reason
	}
	p.UpdatedAt = now
}

// CanTransferOwner requires the property to be awaiting transfer.
func (p *Property) CanTransferOwner(to domain.Address) error {
	if p.State != StatePendingTransfer {
		return dErrors.Newf(dErrors.CodeInvariantViolation, "property is %s, not pending transfer", p.State.Label())
	}
	if to.IsZero() || to == p.Owner {
		return dErrors.New(dErrors.CodeInvariantViolation, "new owner must differ from the current owner")
	}
	return nil
}

// ApplyTransfer hands the property to the buyer and returns it to verified.
func (p *Property) ApplyTransfer(to domain.Address, now time.Time) {
	p.Owner = to
	p.State = StateVerified
	p.UpdatedAt = now
}

// IsOwnedBy reports whether addr owns the property.
func (p *Property) IsOwnedBy(addr domain.Address) bool {
	return p.Owner == addr
}
