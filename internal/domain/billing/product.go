package billing

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/planhub/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Product is a catalog entry keyed by the provider-issued product id.
// NumberOfCustomers and SalesInUSD are derived records maintained exclusively
// through the idempotent repository operations; nothing writes them directly.
type Product struct {
	ID                string
	Name              string
	NumberOfCustomers int64
	SalesInUSD        decimal.Decimal
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// NewProduct creates a product mirror for a provider product id
func NewProduct(id, name string) (*Product, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, shared.NewDomainError("INVALID_PRODUCT_ID", "Product id is required")
	}

	now := time.Now()
	return &Product{
		ID:         id,
		Name:       name,
		SalesInUSD: decimal.Zero,
		CreatedAt:  now,
		UpdatedAt:  now,
	}, nil
}

// CustomerReference marks an account as a current customer of a product.
// Row existence is the source of truth for entitlement; it is keyed by
// (product, account) so re-creation under redelivery is a no-op.
type CustomerReference struct {
	ProductID          string
	AccountID          uuid.UUID
	ExternalCustomerID string
	CreatedAt          time.Time
}

// NewCustomerReference creates a reference for the given entitlement pair
func NewCustomerReference(productID string, accountID uuid.UUID, externalCustomerID string) (*CustomerReference, error) {
	if productID == "" {
		return nil, shared.NewDomainError("INVALID_PRODUCT_ID", "Product id is required")
	}
	if accountID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_ACCOUNT_ID", "Account id is required")
	}

	return &CustomerReference{
		ProductID:          productID,
		AccountID:          accountID,
		ExternalCustomerID: externalCustomerID,
		CreatedAt:          time.Now(),
	}, nil
}

// SaleRecord is the set-once guard row for a paid invoice. The invoice id is
// the primary key: inserting the same invoice twice must not advance the
// product's sales accumulator a second time.
type SaleRecord struct {
	InvoiceID string
	ProductID string
	AccountID uuid.UUID
	AmountUSD decimal.Decimal
	CreatedAt time.Time
}

// NewSaleRecord builds a sale record from an invoice total in minor currency
// units (cents)
func NewSaleRecord(invoiceID, productID string, accountID uuid.UUID, totalMinorUnits int64) (*SaleRecord, error) {
	if invoiceID == "" {
		return nil, shared.NewDomainError("INVALID_INVOICE_ID", "Invoice id is required")
	}
	if productID == "" {
		return nil, shared.NewDomainError("INVALID_PRODUCT_ID", "Product id is required")
	}
	if totalMinorUnits < 0 {
		return nil, shared.NewDomainError("INVALID_INVOICE_TOTAL", "Invoice total must not be negative")
	}

	return &SaleRecord{
		InvoiceID: invoiceID,
		ProductID: productID,
		AccountID: accountID,
		AmountUSD: decimal.NewFromInt(totalMinorUnits).Div(decimal.NewFromInt(100)),
		CreatedAt: time.Now(),
	}, nil
}
