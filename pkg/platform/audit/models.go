package audit

import (
	"context"
	"time"

	"landregistry/pkg/domain"
)

// EventCategory classifies audit events by their primary purpose.
type EventCategory string

const (
	// CategoryCompliance covers events with legal significance: KYC reviews,
	// registrations, payments and ownership transfers. Fail-closed.
	CategoryCompliance EventCategory = "compliance"

	// CategorySecurity covers wallet sessions and admin role changes.
	CategorySecurity EventCategory = "security"

	// CategoryOperations covers routine marketplace activity.
	CategoryOperations EventCategory = "operations"
)

// Event is emitted from domain logic to capture key actions. Keep it
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	Category  EventCategory
	Timestamp time.Time
	// Actor is the wallet that performed the action.
	Actor domain.Address
	// Subject identifies the record acted on, e.g. "property:12" or a wallet address.
	Subject   string
	Action    string
	Decision  string
	Reason    string
	Amount    int64
	RequestID string
}

type AuditEvent string

const (
	// Users
	EventUserRegistered AuditEvent = "user_registered"
	EventUserVerified   AuditEvent = "user_verified"
	EventUserRejected   AuditEvent = "user_rejected"
	EventAdminAdded     AuditEvent = "admin_added"
	EventAdminRemoved   AuditEvent = "admin_removed"

	// Properties
	EventPropertyRegistered AuditEvent = "property_registered"
	EventPropertyVerified   AuditEvent = "property_verified"
	EventPropertyRejected   AuditEvent = "property_rejected"

	// Exchange
	EventSaleCreated          AuditEvent = "sale_created"
	EventSaleCancelled        AuditEvent = "sale_cancelled"
	EventSaleExpired          AuditEvent = "sale_expired"
	EventPurchaseRequested    AuditEvent = "purchase_requested"
	EventPurchaseCancelled    AuditEvent = "purchase_cancelled"
	EventPurchaseAccepted     AuditEvent = "purchase_accepted"
	EventPurchaseRejected     AuditEvent = "purchase_rejected"
	EventPaymentMade          AuditEvent = "payment_made"
	EventOwnershipTransferred AuditEvent = "ownership_transferred"

	// Wallet
	EventWalletCreated      AuditEvent = "wallet_created"
	EventWalletConnected    AuditEvent = "wallet_connected"
	EventWalletDisconnected AuditEvent = "wallet_disconnected"
	EventWalletDeposit      AuditEvent = "wallet_deposit"
)

var eventCategories = map[AuditEvent]EventCategory{
	EventUserRegistered:       CategoryCompliance,
	EventUserVerified:         CategoryCompliance,
	EventUserRejected:         CategoryCompliance,
	EventPropertyRegistered:   CategoryCompliance,
	EventPropertyVerified:     CategoryCompliance,
	EventPropertyRejected:     CategoryCompliance,
	EventPaymentMade:          CategoryCompliance,
	EventOwnershipTransferred: CategoryCompliance,

	EventAdminAdded:         CategorySecurity,
	EventAdminRemoved:       CategorySecurity,
	EventWalletConnected:    CategorySecurity,
	EventWalletDisconnected: CategorySecurity,
	EventWalletDeposit:      CategorySecurity,
}

// Category returns the EventCategory for this audit event.
// Unknown events default to CategoryOperations.
func (e AuditEvent) Category() EventCategory {
	if cat, ok := eventCategories[e]; ok {
		return cat
	}
	return CategoryOperations
}

// Store persists audit events. The Postgres implementation writes to the
// transactional outbox and joins any transaction carried by ctx.
type Store interface {
	Append(ctx context.Context, event Event) error
}
