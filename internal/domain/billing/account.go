package billing

import (
	"strings"

	"github.com/planhub/backend/internal/domain/shared"
)

// Account is an internal identity linked 1:1 to a provider customer.
// ExternalCustomerID is assigned at signup and immutable afterwards; the
// reconciliation engine only ever reads it.
type Account struct {
	shared.BaseAggregateRoot
	ExternalCustomerID string
	Email              string
}

// NewAccount creates an account bound to a provider customer id
func NewAccount(externalCustomerID, email string) (*Account, error) {
	externalCustomerID = strings.TrimSpace(externalCustomerID)
	if externalCustomerID == "" {
		return nil, shared.NewDomainError("INVALID_CUSTOMER_ID", "External customer id is required")
	}

	return &Account{
		BaseAggregateRoot:  shared.NewBaseAggregateRoot(),
		ExternalCustomerID: externalCustomerID,
		Email:              email,
	}, nil
}
