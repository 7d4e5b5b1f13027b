package billing

import (
	"context"
	"fmt"

	"github.com/planhub/backend/internal/domain/billing"
	"github.com/planhub/backend/internal/domain/shared"
	"github.com/stripe/stripe-go/v81"
	"go.uber.org/zap"
)

// InvoiceService records paid invoices into the product sales accumulator.
// The per-invoice guard row in the store makes the accumulator advance exactly
// once per invoice regardless of redelivery count.
type InvoiceService struct {
	accounts billing.AccountRepository
	products billing.ProductRepository
	eventBus shared.EventBus
	logger   *zap.Logger
}

// InvoiceServiceConfig contains dependencies for InvoiceService
type InvoiceServiceConfig struct {
	Accounts billing.AccountRepository
	Products billing.ProductRepository
	EventBus shared.EventBus
	Logger   *zap.Logger
}

// NewInvoiceService creates a new InvoiceService
func NewInvoiceService(cfg InvoiceServiceConfig) *InvoiceService {
	return &InvoiceService{
		accounts: cfg.Accounts,
		products: cfg.Products,
		eventBus: cfg.EventBus,
		logger:   cfg.Logger,
	}
}

// invoiceView is the validated, typed view of the fields the reconciler needs
// from an invoice payload. Sales are attributed to the first line item; the
// subscriptions this system creates carry a single product per invoice.
type invoiceView struct {
	InvoiceID  string
	CustomerID string
	ProductID  string
	Total      int64
}

// invoiceViewFromStripe builds the typed view, failing fast on missing fields
func invoiceViewFromStripe(invoice *stripe.Invoice) (*invoiceView, error) {
	if invoice.ID == "" || invoice.Customer == nil || invoice.Customer.ID == "" {
		return nil, billing.ErrInvalidEventPayload
	}
	if invoice.Lines == nil || len(invoice.Lines.Data) == 0 {
		return nil, billing.ErrInvalidEventPayload
	}

	line := invoice.Lines.Data[0]
	if line.Price == nil || line.Price.Product == nil || line.Price.Product.ID == "" {
		return nil, billing.ErrInvalidEventPayload
	}

	return &invoiceView{
		InvoiceID:  invoice.ID,
		CustomerID: invoice.Customer.ID,
		ProductID:  line.Price.Product.ID,
		Total:      invoice.Total,
	}, nil
}

// ProcessPaidInvoice records the invoice total against the product's sales
// accumulator. Invoices not marked paid are skipped without any store access.
func (s *InvoiceService) ProcessPaidInvoice(ctx context.Context, invoice *stripe.Invoice) error {
	if !invoice.Paid {
		s.logger.Debug("Invoice not paid, skipping",
			zap.String("invoice_id", invoice.ID))
		return nil
	}

	view, err := invoiceViewFromStripe(invoice)
	if err != nil {
		return fmt.Errorf("invalid invoice payload %s: %w", invoice.ID, err)
	}

	account, err := s.accounts.FindByExternalCustomerID(ctx, view.CustomerID)
	if err != nil {
		return fmt.Errorf("failed to resolve account for customer %s: %w", view.CustomerID, err)
	}

	sale, err := billing.NewSaleRecord(view.InvoiceID, view.ProductID, account.ID, view.Total)
	if err != nil {
		return err
	}

	recorded, err := s.products.RecordSale(ctx, sale)
	if err != nil {
		return fmt.Errorf("failed to record sale for invoice %s: %w", view.InvoiceID, err)
	}
	if !recorded {
		s.logger.Debug("Invoice already recorded, nothing to apply",
			zap.String("invoice_id", view.InvoiceID))
		return nil
	}

	if s.eventBus != nil {
		event := billing.NewSaleRecordedEvent(account, sale)
		if err := s.eventBus.Publish(ctx, event); err != nil {
			s.logger.Error("Failed to publish sale recorded event",
				zap.String("invoice_id", view.InvoiceID),
				zap.Error(err))
		}
	}

	s.logger.Info("Sale recorded",
		zap.String("invoice_id", view.InvoiceID),
		zap.String("product_id", view.ProductID),
		zap.String("amount_usd", sale.AmountUSD.StringFixed(2)))

	return nil
}
