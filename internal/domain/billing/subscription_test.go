package billing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyStatus_ActiveGrantsEntitlement(t *testing.T) {
	assert.Equal(t, ActionActivate, ClassifyStatus(SubscriptionStatusActive))
}

func TestClassifyStatus_NonActiveStatusesRevoke(t *testing.T) {
	statuses := []SubscriptionStatus{
		SubscriptionStatusCanceled,
		SubscriptionStatusTrialing,
		SubscriptionStatusPastDue,
		SubscriptionStatusUnpaid,
		SubscriptionStatusIncomplete,
		SubscriptionStatusIncompleteExpired,
		SubscriptionStatusPaused,
	}

	for _, status := range statuses {
		assert.Equal(t, ActionDeactivate, ClassifyStatus(status), "status %s", status)
	}
}

func TestClassifyStatus_UnknownStatusRevokes(t *testing.T) {
	assert.Equal(t, ActionDeactivate, ClassifyStatus(SubscriptionStatus("some_future_status")))
	assert.Equal(t, ActionDeactivate, ClassifyStatus(SubscriptionStatus("")))
}

func TestSubscriptionStateValidate(t *testing.T) {
	state := &SubscriptionState{
		SubscriptionID: "sub_123",
		CustomerID:     "cus_123",
		ProductID:      "prod_9",
		Status:         SubscriptionStatusActive,
	}
	assert.NoError(t, state.Validate())

	missing := &SubscriptionState{
		SubscriptionID: "sub_123",
		Status:         SubscriptionStatusActive,
	}
	assert.ErrorIs(t, missing.Validate(), ErrInvalidEventPayload)
}
