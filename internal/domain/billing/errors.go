package billing

import "github.com/planhub/backend/internal/domain/shared"

// Resolution and payload errors surfaced by the reconciliation flows.
// Account resolution errors are permanent: redelivering the same event cannot
// fix them, so the dispatcher acknowledges instead of failing the delivery.
var (
	ErrAccountNotFound     = shared.NewDomainError("ACCOUNT_NOT_FOUND", "No account matches the provider customer id")
	ErrAccountAmbiguous    = shared.NewDomainError("ACCOUNT_AMBIGUOUS", "More than one account matches the provider customer id")
	ErrInvalidEventPayload = shared.NewDomainError("INVALID_EVENT_PAYLOAD", "Event payload is missing required fields")
	ErrProviderUnavailable = shared.NewDomainError("PROVIDER_UNAVAILABLE", "Billing provider request failed")
)
