package billing

import (
	"context"
	"fmt"

	"github.com/stripe/stripe-go/v81"
	"github.com/stripe/stripe-go/v81/subscription"
	"go.uber.org/zap"

	domain "github.com/planhub/backend/internal/domain/billing"
)

// StripeSubscriptionFetcher implements billing.SubscriptionFetcher against the
// Stripe API. It always fetches current state: reconciliation decisions are
// never made from the webhook payload, so an update delivered after a delete
// still resolves to the true status.
type StripeSubscriptionFetcher struct {
	config *StripeConfig
	logger *zap.Logger
}

// NewStripeSubscriptionFetcher creates a new StripeSubscriptionFetcher
func NewStripeSubscriptionFetcher(config *StripeConfig, logger *zap.Logger) (*StripeSubscriptionFetcher, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	config.InitStripeClient()

	return &StripeSubscriptionFetcher{
		config: config,
		logger: logger,
	}, nil
}

// FetchState retrieves the subscription with the owning product expanded
func (f *StripeSubscriptionFetcher) FetchState(ctx context.Context, subscriptionID string) (*domain.SubscriptionState, error) {
	f.logger.Debug("Fetching Stripe subscription state",
		zap.String("subscription_id", subscriptionID))

	params := &stripe.SubscriptionParams{}
	params.Context = ctx
	params.AddExpand("items.data.price.product")

	sub, err := subscription.Get(subscriptionID, params)
	if err != nil {
		f.logger.Error("Failed to get Stripe subscription",
			zap.String("subscription_id", subscriptionID),
			zap.Error(err))
		return nil, fmt.Errorf("stripe: failed to get subscription %s: %w", subscriptionID, err)
	}

	state, err := subscriptionStateFromStripe(sub)
	if err != nil {
		f.logger.Error("Stripe subscription is missing required fields",
			zap.String("subscription_id", subscriptionID),
			zap.Error(err))
		return nil, err
	}
	return state, nil
}

// subscriptionStateFromStripe builds the typed state view, failing fast when
// the expansion did not yield a product
func subscriptionStateFromStripe(sub *stripe.Subscription) (*domain.SubscriptionState, error) {
	if sub.Customer == nil {
		return nil, domain.ErrInvalidEventPayload
	}
	if sub.Items == nil || len(sub.Items.Data) == 0 {
		return nil, domain.ErrInvalidEventPayload
	}

	item := sub.Items.Data[0]
	if item.Price == nil || item.Price.Product == nil || item.Price.Product.ID == "" {
		return nil, domain.ErrInvalidEventPayload
	}

	state := &domain.SubscriptionState{
		SubscriptionID: sub.ID,
		CustomerID:     sub.Customer.ID,
		ProductID:      item.Price.Product.ID,
		Status:         mapStripeSubscriptionStatus(sub.Status),
	}
	if err := state.Validate(); err != nil {
		return nil, err
	}
	return state, nil
}

// mapStripeSubscriptionStatus maps Stripe subscription statuses to domain
// statuses. Unknown statuses pass through unchanged; the classifier treats
// anything that is not active as a deactivation.
func mapStripeSubscriptionStatus(status stripe.SubscriptionStatus) domain.SubscriptionStatus {
	switch status {
	case stripe.SubscriptionStatusActive:
		return domain.SubscriptionStatusActive
	case stripe.SubscriptionStatusCanceled:
		return domain.SubscriptionStatusCanceled
	case stripe.SubscriptionStatusTrialing:
		return domain.SubscriptionStatusTrialing
	case stripe.SubscriptionStatusPastDue:
		return domain.SubscriptionStatusPastDue
	case stripe.SubscriptionStatusUnpaid:
		return domain.SubscriptionStatusUnpaid
	case stripe.SubscriptionStatusIncomplete:
		return domain.SubscriptionStatusIncomplete
	case stripe.SubscriptionStatusIncompleteExpired:
		return domain.SubscriptionStatusIncompleteExpired
	case stripe.SubscriptionStatusPaused:
		return domain.SubscriptionStatusPaused
	default:
		return domain.SubscriptionStatus(status)
	}
}
