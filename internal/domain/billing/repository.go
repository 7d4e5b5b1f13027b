package billing

import (
	"context"

	"github.com/google/uuid"
)

// AccountRepository resolves provider customer ids to accounts
type AccountRepository interface {
	// FindByExternalCustomerID returns the single account bound to the given
	// provider customer id. Returns ErrAccountNotFound for zero matches and
	// ErrAccountAmbiguous for more than one.
	FindByExternalCustomerID(ctx context.Context, externalCustomerID string) (*Account, error)

	// FindByID returns the account with the given id
	FindByID(ctx context.Context, id uuid.UUID) (*Account, error)

	// Save persists a new account
	Save(ctx context.Context, account *Account) error
}

// ProductRepository owns the derived records hanging off a product. The
// compound operations are transactional and idempotent: replaying any of them
// leaves counters and reference rows unchanged.
type ProductRepository interface {
	// FindByID returns the product with the given provider product id
	FindByID(ctx context.Context, id string) (*Product, error)

	// Save persists a new product mirror
	Save(ctx context.Context, product *Product) error

	// AttachCustomer creates the customer reference and, only when the
	// reference did not already exist, increments the product's customer
	// counter and appends the activation notification in the same
	// transaction. A failure anywhere rolls the whole bundle back so a
	// redelivery retries it from scratch. Returns whether a new reference
	// was created.
	AttachCustomer(ctx context.Context, ref *CustomerReference, notification *Notification) (bool, error)

	// DetachCustomer deletes the customer reference and, only when a row was
	// actually deleted, decrements the customer counter in the same
	// transaction. Returns whether a reference was removed.
	DetachCustomer(ctx context.Context, productID string, accountID uuid.UUID) (bool, error)

	// RecordSale inserts the per-invoice guard row and, only when the invoice
	// had not been recorded before, adds the amount to the product's sales
	// accumulator in the same transaction. Returns whether the sale was newly
	// recorded.
	RecordSale(ctx context.Context, sale *SaleRecord) (bool, error)

	// ListEntitlements returns the product ids the account currently holds a
	// customer reference for (the account's active plans)
	ListEntitlements(ctx context.Context, accountID uuid.UUID) ([]string, error)
}

// SubscriptionFetcher retrieves current authoritative subscription state from
// the provider. Implementations must expand the owning product, not just its
// reference.
type SubscriptionFetcher interface {
	FetchState(ctx context.Context, subscriptionID string) (*SubscriptionState, error)
}
