package billing

import (
	"context"

	"github.com/planhub/backend/internal/domain/billing"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockAccountRepository is a mock implementation of billing.AccountRepository
type MockAccountRepository struct {
	mock.Mock
}

func (m *MockAccountRepository) FindByExternalCustomerID(ctx context.Context, externalCustomerID string) (*billing.Account, error) {
	args := m.Called(ctx, externalCustomerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.Account), args.Error(1)
}

func (m *MockAccountRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.Account, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.Account), args.Error(1)
}

func (m *MockAccountRepository) Save(ctx context.Context, account *billing.Account) error {
	args := m.Called(ctx, account)
	return args.Error(0)
}

// MockProductRepository is a mock implementation of billing.ProductRepository
type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) FindByID(ctx context.Context, id string) (*billing.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.Product), args.Error(1)
}

func (m *MockProductRepository) Save(ctx context.Context, product *billing.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func (m *MockProductRepository) AttachCustomer(ctx context.Context, ref *billing.CustomerReference, notification *billing.Notification) (bool, error) {
	args := m.Called(ctx, ref, notification)
	return args.Bool(0), args.Error(1)
}

func (m *MockProductRepository) DetachCustomer(ctx context.Context, productID string, accountID uuid.UUID) (bool, error) {
	args := m.Called(ctx, productID, accountID)
	return args.Bool(0), args.Error(1)
}

func (m *MockProductRepository) RecordSale(ctx context.Context, sale *billing.SaleRecord) (bool, error) {
	args := m.Called(ctx, sale)
	return args.Bool(0), args.Error(1)
}

func (m *MockProductRepository) ListEntitlements(ctx context.Context, accountID uuid.UUID) ([]string, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

// MockSubscriptionFetcher is a mock implementation of billing.SubscriptionFetcher
type MockSubscriptionFetcher struct {
	mock.Mock
}

func (m *MockSubscriptionFetcher) FetchState(ctx context.Context, subscriptionID string) (*billing.SubscriptionState, error) {
	args := m.Called(ctx, subscriptionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.SubscriptionState), args.Error(1)
}
