package billing

import (
	"github.com/planhub/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Event type constants for reconciliation outcomes
const (
	EventTypeEntitlementGranted = "EntitlementGranted"
	EventTypeEntitlementRevoked = "EntitlementRevoked"
	EventTypeSaleRecorded       = "SaleRecorded"
)

// Aggregate type constant
const AggregateTypeAccount = "Account"

// EntitlementEvent is published when an account's entitlement to a product
// actually transitions. Replayed deliveries that change nothing publish
// nothing.
type EntitlementEvent struct {
	shared.BaseDomainEvent
	ProductID          string `json:"product_id"`
	ExternalCustomerID string `json:"external_customer_id"`
	SubscriptionID     string `json:"subscription_id"`
}

// NewEntitlementGrantedEvent creates an event for a new entitlement
func NewEntitlementGrantedEvent(account *Account, productID, subscriptionID string) *EntitlementEvent {
	return &EntitlementEvent{
		BaseDomainEvent:    shared.NewBaseDomainEvent(EventTypeEntitlementGranted, AggregateTypeAccount, account.ID),
		ProductID:          productID,
		ExternalCustomerID: account.ExternalCustomerID,
		SubscriptionID:     subscriptionID,
	}
}

// NewEntitlementRevokedEvent creates an event for a removed entitlement
func NewEntitlementRevokedEvent(account *Account, productID, subscriptionID string) *EntitlementEvent {
	return &EntitlementEvent{
		BaseDomainEvent:    shared.NewBaseDomainEvent(EventTypeEntitlementRevoked, AggregateTypeAccount, account.ID),
		ProductID:          productID,
		ExternalCustomerID: account.ExternalCustomerID,
		SubscriptionID:     subscriptionID,
	}
}

// SaleRecordedEvent is published when a paid invoice is recorded for the first
// time
type SaleRecordedEvent struct {
	shared.BaseDomainEvent
	InvoiceID string          `json:"invoice_id"`
	ProductID string          `json:"product_id"`
	AmountUSD decimal.Decimal `json:"amount_usd"`
}

// NewSaleRecordedEvent creates an event for a newly recorded sale
func NewSaleRecordedEvent(account *Account, sale *SaleRecord) *SaleRecordedEvent {
	return &SaleRecordedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeSaleRecorded, AggregateTypeAccount, account.ID),
		InvoiceID:       sale.InvoiceID,
		ProductID:       sale.ProductID,
		AmountUSD:       sale.AmountUSD,
	}
}
