package billing

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSaleRecord_ConvertsMinorUnits(t *testing.T) {
	sale, err := NewSaleRecord("in_123", "prod_9", uuid.New(), 1999)
	require.NoError(t, err)

	assert.Equal(t, "19.99", sale.AmountUSD.StringFixed(2))
}

func TestNewSaleRecord_RejectsNegativeTotal(t *testing.T) {
	_, err := NewSaleRecord("in_123", "prod_9", uuid.New(), -100)
	assert.Error(t, err)
}

func TestNewSaleRecord_RequiresIdentifiers(t *testing.T) {
	_, err := NewSaleRecord("", "prod_9", uuid.New(), 100)
	assert.Error(t, err)

	_, err = NewSaleRecord("in_123", "", uuid.New(), 100)
	assert.Error(t, err)
}

func TestNewCustomerReference_RequiresProductAndAccount(t *testing.T) {
	_, err := NewCustomerReference("", uuid.New(), "cus_1")
	assert.Error(t, err)

	_, err = NewCustomerReference("prod_9", uuid.Nil, "cus_1")
	assert.Error(t, err)

	ref, err := NewCustomerReference("prod_9", uuid.New(), "cus_1")
	require.NoError(t, err)
	assert.Equal(t, "prod_9", ref.ProductID)
}
