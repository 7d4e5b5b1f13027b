package billing

import (
	"context"
	"fmt"

	"github.com/planhub/backend/internal/domain/billing"
	"github.com/planhub/backend/internal/domain/shared"
	"github.com/planhub/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// ReconcileService drives the subscription reconciliation flow: fetch
// authoritative state, resolve the owning account, classify the transition,
// and apply the derived-record mutations.
//
// Every mutation is idempotent, so a redelivered or re-ordered event replays
// harmlessly; there is no per-account serialization and none is needed.
type ReconcileService struct {
	accounts billing.AccountRepository
	products billing.ProductRepository
	fetcher  billing.SubscriptionFetcher
	eventBus shared.EventBus
	logger   *zap.Logger
}

// ReconcileServiceConfig contains dependencies for ReconcileService
type ReconcileServiceConfig struct {
	Accounts billing.AccountRepository
	Products billing.ProductRepository
	Fetcher  billing.SubscriptionFetcher
	EventBus shared.EventBus
	Logger   *zap.Logger
}

// NewReconcileService creates a new ReconcileService
func NewReconcileService(cfg ReconcileServiceConfig) *ReconcileService {
	return &ReconcileService{
		accounts: cfg.Accounts,
		products: cfg.Products,
		fetcher:  cfg.Fetcher,
		eventBus: cfg.EventBus,
		logger:   cfg.Logger,
	}
}

// ReconcileSubscription reconciles the derived records for one subscription.
// The event payload is never trusted for the state decision; the current
// status always comes from the provider.
func (s *ReconcileService) ReconcileSubscription(ctx context.Context, subscriptionID string) error {
	ctx, span := telemetry.StartServiceSpan(ctx, "reconcile", "subscription",
		telemetry.WithAttribute(telemetry.SpanAttrSubscriptionID, subscriptionID))
	defer span.End()

	state, err := s.fetcher.FetchState(ctx, subscriptionID)
	if err != nil {
		telemetry.RecordError(span, err)
		return fmt.Errorf("failed to fetch subscription state: %w", err)
	}

	account, err := s.accounts.FindByExternalCustomerID(ctx, state.CustomerID)
	if err != nil {
		telemetry.RecordError(span, err)
		return fmt.Errorf("failed to resolve account for customer %s: %w", state.CustomerID, err)
	}

	action := billing.ClassifyStatus(state.Status)
	telemetry.SetAttributes(span,
		telemetry.SpanAttrCustomerID, state.CustomerID,
		telemetry.SpanAttrProductID, state.ProductID,
		telemetry.SpanAttrSubscriptionStatus, string(state.Status))

	s.logger.Info("Reconciling subscription",
		zap.String("subscription_id", state.SubscriptionID),
		zap.String("customer_id", state.CustomerID),
		zap.String("product_id", state.ProductID),
		zap.String("status", string(state.Status)),
		zap.String("action", string(action)))

	return s.ApplyTransition(ctx, account, state, action)
}

// ApplyTransition applies the mutation bundle for a classified action
func (s *ReconcileService) ApplyTransition(ctx context.Context, account *billing.Account, state *billing.SubscriptionState, action billing.ReconcileAction) error {
	switch action {
	case billing.ActionActivate:
		return s.activate(ctx, account, state)
	case billing.ActionDeactivate:
		return s.deactivate(ctx, account, state)
	case billing.ActionNoOp:
		return nil
	default:
		return shared.NewDomainError("UNKNOWN_ACTION", fmt.Sprintf("Unknown reconcile action: %s", action))
	}
}

// activate grants the entitlement. The customer reference insert, counter
// increment, and notification append are one transactional operation: either
// the whole bundle commits or none of it does, and a failed delivery can be
// replayed without losing the notification or moving the counter twice. The
// domain event only fires when the reference actually appeared.
func (s *ReconcileService) activate(ctx context.Context, account *billing.Account, state *billing.SubscriptionState) error {
	ref, err := billing.NewCustomerReference(state.ProductID, account.ID, account.ExternalCustomerID)
	if err != nil {
		return err
	}
	notification := billing.NewNotification(account.ID, account.ExternalCustomerID, state.ProductID)

	created, err := s.products.AttachCustomer(ctx, ref, notification)
	if err != nil {
		return fmt.Errorf("failed to attach customer to product %s: %w", state.ProductID, err)
	}
	if !created {
		s.logger.Debug("Account already entitled, nothing to apply",
			zap.String("account_id", account.ID.String()),
			zap.String("product_id", state.ProductID))
		return nil
	}

	s.publishEvent(ctx, billing.NewEntitlementGrantedEvent(account, state.ProductID, state.SubscriptionID))

	s.logger.Info("Entitlement granted",
		zap.String("account_id", account.ID.String()),
		zap.String("product_id", state.ProductID),
		zap.String("subscription_id", state.SubscriptionID))

	return nil
}

// deactivate revokes the entitlement. Deleting an absent reference is a no-op
// and the counter only moves when a row was removed.
func (s *ReconcileService) deactivate(ctx context.Context, account *billing.Account, state *billing.SubscriptionState) error {
	removed, err := s.products.DetachCustomer(ctx, state.ProductID, account.ID)
	if err != nil {
		return fmt.Errorf("failed to detach customer from product %s: %w", state.ProductID, err)
	}
	if !removed {
		s.logger.Debug("Account not entitled, nothing to revoke",
			zap.String("account_id", account.ID.String()),
			zap.String("product_id", state.ProductID))
		return nil
	}

	s.publishEvent(ctx, billing.NewEntitlementRevokedEvent(account, state.ProductID, state.SubscriptionID))

	s.logger.Info("Entitlement revoked",
		zap.String("account_id", account.ID.String()),
		zap.String("product_id", state.ProductID),
		zap.String("subscription_id", state.SubscriptionID))

	return nil
}

// publishEvent publishes a domain event, logging instead of failing the
// reconciliation when the bus rejects it
func (s *ReconcileService) publishEvent(ctx context.Context, event shared.DomainEvent) {
	if s.eventBus == nil {
		return
	}
	if err := s.eventBus.Publish(ctx, event); err != nil {
		s.logger.Error("Failed to publish domain event",
			zap.String("event_type", event.EventType()),
			zap.Error(err))
	}
}
