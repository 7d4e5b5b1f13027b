package billing

import (
	"context"

	"github.com/planhub/backend/internal/domain/billing"
	"github.com/planhub/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// EntitlementAuditHandler consumes reconciliation outcome events and writes a
// structured audit line for each. Operators alert on these records; the
// provider response never exposes handler failures, so this log is the
// out-of-band signal.
type EntitlementAuditHandler struct {
	logger *zap.Logger
}

// NewEntitlementAuditHandler creates a new EntitlementAuditHandler
func NewEntitlementAuditHandler(logger *zap.Logger) *EntitlementAuditHandler {
	return &EntitlementAuditHandler{logger: logger}
}

// Handle writes the audit record for a reconciliation event
func (h *EntitlementAuditHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	switch e := event.(type) {
	case *billing.EntitlementEvent:
		h.logger.Info("audit: entitlement transition",
			zap.String("event_type", e.EventType()),
			zap.String("account_id", e.AggregateID().String()),
			zap.String("external_customer_id", e.ExternalCustomerID),
			zap.String("product_id", e.ProductID),
			zap.String("subscription_id", e.SubscriptionID))
	case *billing.SaleRecordedEvent:
		h.logger.Info("audit: sale recorded",
			zap.String("account_id", e.AggregateID().String()),
			zap.String("invoice_id", e.InvoiceID),
			zap.String("product_id", e.ProductID),
			zap.String("amount_usd", e.AmountUSD.StringFixed(2)))
	default:
		h.logger.Debug("audit: unrecognized event",
			zap.String("event_type", event.EventType()))
	}
	return nil
}

// EventTypes returns the event types this handler subscribes to
func (h *EntitlementAuditHandler) EventTypes() []string {
	return []string{
		billing.EventTypeEntitlementGranted,
		billing.EventTypeEntitlementRevoked,
		billing.EventTypeSaleRecorded,
	}
}
