package billing

import "github.com/planhub/backend/internal/domain/shared"

// SubscriptionStatus mirrors the provider's subscription status set.
// The provider owns subscriptions; this type is a read-only view used by the
// classifier.
type SubscriptionStatus string

const (
	SubscriptionStatusActive            SubscriptionStatus = "active"
	SubscriptionStatusCanceled          SubscriptionStatus = "canceled"
	SubscriptionStatusTrialing          SubscriptionStatus = "trialing"
	SubscriptionStatusPastDue           SubscriptionStatus = "past_due"
	SubscriptionStatusUnpaid            SubscriptionStatus = "unpaid"
	SubscriptionStatusIncomplete        SubscriptionStatus = "incomplete"
	SubscriptionStatusIncompleteExpired SubscriptionStatus = "incomplete_expired"
	SubscriptionStatusPaused            SubscriptionStatus = "paused"
)

// ReconcileAction is the closed set of actions the mutator knows how to apply
type ReconcileAction string

const (
	ActionActivate   ReconcileAction = "activate"
	ActionDeactivate ReconcileAction = "deactivate"
	ActionNoOp       ReconcileAction = "noop"
)

// ClassifyStatus maps an authoritative subscription status to a reconciliation
// action. Only active grants entitlement; every other status, including
// statuses added by the provider in the future, revokes it.
func ClassifyStatus(status SubscriptionStatus) ReconcileAction {
	if status == SubscriptionStatusActive {
		return ActionActivate
	}
	return ActionDeactivate
}

// SubscriptionState is the authoritative state fetched from the provider for
// one subscription, with the owning product already resolved from the expanded
// line items.
type SubscriptionState struct {
	SubscriptionID string
	CustomerID     string
	ProductID      string
	Status         SubscriptionStatus
}

// Validate checks that the fetched state carries everything the mutator needs
func (s *SubscriptionState) Validate() error {
	if s.SubscriptionID == "" || s.CustomerID == "" || s.ProductID == "" {
		return ErrInvalidEventPayload
	}
	if s.Status == "" {
		return shared.NewDomainError("INVALID_SUBSCRIPTION_STATUS", "Subscription status is empty")
	}
	return nil
}
