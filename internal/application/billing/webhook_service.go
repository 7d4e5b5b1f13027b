package billing

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/planhub/backend/internal/domain/shared"
	"github.com/planhub/backend/internal/infrastructure/billing"
	"github.com/planhub/backend/internal/infrastructure/telemetry"
	"github.com/stripe/stripe-go/v81"
	"github.com/stripe/stripe-go/v81/webhook"
	"go.uber.org/zap"
)

// WebhookService is the entry point for provider webhook events. It verifies
// the signature, filters to the recognized event types, and routes to the
// subscription or invoice flow.
//
// Handler failures are reported in the result rather than rejected at the
// transport level; the HTTP layer acknowledges them so a permanently failing
// event cannot trigger an endless redelivery storm. Failures stay visible
// through logging and the audit events.
type WebhookService struct {
	config         *billing.StripeConfig
	reconciler     *ReconcileService
	invoices       *InvoiceService
	idempotency    shared.IdempotencyStore
	idempotencyCfg shared.IdempotencyConfig
	logger         *zap.Logger
}

// WebhookServiceConfig contains dependencies for WebhookService
type WebhookServiceConfig struct {
	Config            *billing.StripeConfig
	Reconciler        *ReconcileService
	Invoices          *InvoiceService
	Idempotency       shared.IdempotencyStore
	IdempotencyConfig shared.IdempotencyConfig
	Logger            *zap.Logger
}

// NewWebhookService creates a new WebhookService
func NewWebhookService(cfg WebhookServiceConfig) *WebhookService {
	return &WebhookService{
		config:         cfg.Config,
		reconciler:     cfg.Reconciler,
		invoices:       cfg.Invoices,
		idempotency:    cfg.Idempotency,
		idempotencyCfg: cfg.IdempotencyConfig,
		logger:         cfg.Logger,
	}
}

// WebhookResult contains the result of processing a webhook
type WebhookResult struct {
	EventID   string `json:"event_id"`
	EventType string `json:"event_type"`
	Processed bool   `json:"processed"`
	Message   string `json:"message,omitempty"`
}

// ProcessWebhook verifies and dispatches a webhook event. A nil result means
// the event was rejected outright (bad signature); a non-nil result with
// Processed=false and a message means the delivery was absorbed but the
// handler failed.
func (s *WebhookService) ProcessWebhook(ctx context.Context, payload []byte, signature string) (*WebhookResult, error) {
	// Verify webhook signature
	event, err := webhook.ConstructEvent(payload, signature, s.config.WebhookSecret)
	if err != nil {
		s.logger.Error("Failed to verify webhook signature",
			zap.Error(err))
		return nil, fmt.Errorf("webhook signature verification failed: %w", err)
	}

	ctx, span := telemetry.StartServiceSpan(ctx, "webhook", "process",
		telemetry.WithAttribute(telemetry.SpanAttrEventID, event.ID),
		telemetry.WithAttribute(telemetry.SpanAttrEventType, string(event.Type)))
	defer span.End()

	s.logger.Info("Processing webhook event",
		zap.String("event_id", event.ID),
		zap.String("event_type", string(event.Type)))

	result := &WebhookResult{
		EventID:   event.ID,
		EventType: string(event.Type),
		Processed: true,
	}

	// Best-effort duplicate suppression. Correctness never depends on this
	// check; the store-level idempotency handles duplicates that slip through.
	if s.isDuplicate(ctx, event.ID) {
		result.Message = "Duplicate event, already processed"
		return result, nil
	}

	switch event.Type {
	case "customer.subscription.updated", "customer.subscription.deleted":
		err = s.handleSubscriptionEvent(ctx, event)
	case "invoice.paid":
		err = s.handleInvoicePaid(ctx, event)
	default:
		// Acknowledged without action so the provider stops redelivering
		// events nobody handles
		s.logger.Debug("Unhandled webhook event type",
			zap.String("event_type", string(event.Type)))
		result.Processed = false
		result.Message = "Event type not handled"
		return result, nil
	}

	if err != nil {
		telemetry.RecordError(span, err)
		s.logger.Error("Failed to process webhook event",
			zap.String("event_id", event.ID),
			zap.String("event_type", string(event.Type)),
			zap.Error(err))
		result.Processed = false
		result.Message = err.Error()
		return result, err
	}

	s.markProcessed(ctx, event.ID)

	return result, nil
}

// handleSubscriptionEvent routes subscription lifecycle events into the
// reconciliation flow. Only the subscription id is taken from the payload;
// the state decision is made against current provider state.
func (s *WebhookService) handleSubscriptionEvent(ctx context.Context, event stripe.Event) error {
	var subscription stripe.Subscription
	if err := json.Unmarshal(event.Data.Raw, &subscription); err != nil {
		return fmt.Errorf("failed to unmarshal subscription: %w", err)
	}
	if subscription.ID == "" {
		return fmt.Errorf("subscription event %s has no subscription id", event.ID)
	}

	return s.reconciler.ReconcileSubscription(ctx, subscription.ID)
}

// handleInvoicePaid routes invoice.paid events into the sales flow
func (s *WebhookService) handleInvoicePaid(ctx context.Context, event stripe.Event) error {
	var invoice stripe.Invoice
	if err := json.Unmarshal(event.Data.Raw, &invoice); err != nil {
		return fmt.Errorf("failed to unmarshal invoice: %w", err)
	}

	return s.invoices.ProcessPaidInvoice(ctx, &invoice)
}

// isDuplicate reports whether this event id has already completed. Check
// failures are treated as not-duplicate so a degraded cache never drops
// events.
func (s *WebhookService) isDuplicate(ctx context.Context, eventID string) bool {
	if s.idempotency == nil || !s.idempotencyCfg.Enabled {
		return false
	}

	processed, err := s.idempotency.IsProcessed(ctx, eventID)
	if err != nil {
		s.logger.Warn("Idempotency check failed, processing anyway",
			zap.String("event_id", eventID),
			zap.Error(err))
		return false
	}
	if processed {
		s.logger.Info("Skipping duplicate webhook event",
			zap.String("event_id", eventID))
	}
	return processed
}

// markProcessed records a successfully handled event id. Only successful
// handling is recorded: an absorbed failure must stay re-deliverable.
func (s *WebhookService) markProcessed(ctx context.Context, eventID string) {
	if s.idempotency == nil || !s.idempotencyCfg.Enabled {
		return
	}

	if _, err := s.idempotency.MarkProcessed(ctx, eventID, s.idempotencyCfg.TTL); err != nil {
		s.logger.Warn("Failed to mark event as processed",
			zap.String("event_id", eventID),
			zap.Error(err))
	}
}
