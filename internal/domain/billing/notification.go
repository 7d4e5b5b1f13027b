package billing

import (
	"time"

	"github.com/google/uuid"
)

// Notification is an immutable activation record appended once per transition
// into the active status. It carries no invariants; it exists for the account's
// chronological log.
type Notification struct {
	ID                 uuid.UUID
	AccountID          uuid.UUID
	ExternalCustomerID string
	ProductID          string
	CreatedAt          time.Time
}

// NewNotification creates an activation notification for an account
func NewNotification(accountID uuid.UUID, externalCustomerID, productID string) *Notification {
	return &Notification{
		ID:                 uuid.New(),
		AccountID:          accountID,
		ExternalCustomerID: externalCustomerID,
		ProductID:          productID,
		CreatedAt:          time.Now(),
	}
}
