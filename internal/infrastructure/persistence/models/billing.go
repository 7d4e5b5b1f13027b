package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/planhub/backend/internal/domain/billing"
	"github.com/planhub/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// AccountModel is the persistence model for billing.Account
type AccountModel struct {
	AggregateModel
	ExternalCustomerID string `gorm:"type:varchar(100);not null;uniqueIndex"`
	Email              string `gorm:"type:varchar(200)"`
}

// TableName returns the table name for GORM
func (AccountModel) TableName() string {
	return "accounts"
}

// ToDomain converts the model to a domain account
func (m *AccountModel) ToDomain() *billing.Account {
	return &billing.Account{
		BaseAggregateRoot: shared.BaseAggregateRoot{
			BaseEntity: m.BaseModel.ToDomain(),
			Version:    m.Version,
		},
		ExternalCustomerID: m.ExternalCustomerID,
		Email:              m.Email,
	}
}

// FromDomain populates the model from a domain account
func (m *AccountModel) FromDomain(a *billing.Account) {
	m.FromDomainAggregateRoot(a.BaseAggregateRoot)
	m.ExternalCustomerID = a.ExternalCustomerID
	m.Email = a.Email
}

// ProductModel is the persistence model for billing.Product.
// The primary key is the provider-issued product id, not a local uuid, so
// events referencing provider products need no id translation.
type ProductModel struct {
	ID                string          `gorm:"type:varchar(100);primary_key"`
	Name              string          `gorm:"type:varchar(200)"`
	NumberOfCustomers int64           `gorm:"not null;default:0"`
	SalesInUSD        decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	Version           int             `gorm:"not null;default:1"`
	CreatedAt         time.Time       `gorm:"not null"`
	UpdatedAt         time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (ProductModel) TableName() string {
	return "products"
}

// ToDomain converts the model to a domain product
func (m *ProductModel) ToDomain() *billing.Product {
	return &billing.Product{
		ID:                m.ID,
		Name:              m.Name,
		NumberOfCustomers: m.NumberOfCustomers,
		SalesInUSD:        m.SalesInUSD,
		CreatedAt:         m.CreatedAt,
		UpdatedAt:         m.UpdatedAt,
	}
}

// FromDomain populates the model from a domain product
func (m *ProductModel) FromDomain(p *billing.Product) {
	m.ID = p.ID
	m.Name = p.Name
	m.NumberOfCustomers = p.NumberOfCustomers
	m.SalesInUSD = p.SalesInUSD
	m.CreatedAt = p.CreatedAt
	m.UpdatedAt = p.UpdatedAt
}

// ProductCustomerModel is the persistence model for billing.CustomerReference.
// The composite primary key makes re-creation under redelivery conflict
// instead of duplicating.
type ProductCustomerModel struct {
	ProductID          string    `gorm:"type:varchar(100);primaryKey"`
	AccountID          uuid.UUID `gorm:"type:uuid;primaryKey;index"`
	ExternalCustomerID string    `gorm:"type:varchar(100);not null"`
	CreatedAt          time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (ProductCustomerModel) TableName() string {
	return "product_customers"
}

// ToDomain converts the model to a domain customer reference
func (m *ProductCustomerModel) ToDomain() *billing.CustomerReference {
	return &billing.CustomerReference{
		ProductID:          m.ProductID,
		AccountID:          m.AccountID,
		ExternalCustomerID: m.ExternalCustomerID,
		CreatedAt:          m.CreatedAt,
	}
}

// FromDomain populates the model from a domain customer reference
func (m *ProductCustomerModel) FromDomain(ref *billing.CustomerReference) {
	m.ProductID = ref.ProductID
	m.AccountID = ref.AccountID
	m.ExternalCustomerID = ref.ExternalCustomerID
	m.CreatedAt = ref.CreatedAt
}

// NotificationModel is the persistence model for billing.Notification.
// Rows are append-only; there is no UpdatedAt.
type NotificationModel struct {
	ID                 uuid.UUID `gorm:"type:uuid;primary_key"`
	AccountID          uuid.UUID `gorm:"type:uuid;not null;index"`
	ExternalCustomerID string    `gorm:"type:varchar(100);not null"`
	ProductID          string    `gorm:"type:varchar(100);not null"`
	CreatedAt          time.Time `gorm:"not null;index"`
}

// TableName returns the table name for GORM
func (NotificationModel) TableName() string {
	return "notifications"
}

// ToDomain converts the model to a domain notification
func (m *NotificationModel) ToDomain() *billing.Notification {
	return &billing.Notification{
		ID:                 m.ID,
		AccountID:          m.AccountID,
		ExternalCustomerID: m.ExternalCustomerID,
		ProductID:          m.ProductID,
		CreatedAt:          m.CreatedAt,
	}
}

// FromDomain populates the model from a domain notification
func (m *NotificationModel) FromDomain(n *billing.Notification) {
	m.ID = n.ID
	m.AccountID = n.AccountID
	m.ExternalCustomerID = n.ExternalCustomerID
	m.ProductID = n.ProductID
	m.CreatedAt = n.CreatedAt
}

// ProductSaleModel is the persistence model for billing.SaleRecord. The
// invoice id primary key is the set-once guard against double-counted
// redeliveries.
type ProductSaleModel struct {
	InvoiceID string          `gorm:"type:varchar(100);primaryKey"`
	ProductID string          `gorm:"type:varchar(100);not null;index"`
	AccountID uuid.UUID       `gorm:"type:uuid;not null;index"`
	AmountUSD decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	CreatedAt time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (ProductSaleModel) TableName() string {
	return "product_sales"
}

// ToDomain converts the model to a domain sale record
func (m *ProductSaleModel) ToDomain() *billing.SaleRecord {
	return &billing.SaleRecord{
		InvoiceID: m.InvoiceID,
		ProductID: m.ProductID,
		AccountID: m.AccountID,
		AmountUSD: m.AmountUSD,
		CreatedAt: m.CreatedAt,
	}
}

// FromDomain populates the model from a domain sale record
func (m *ProductSaleModel) FromDomain(s *billing.SaleRecord) {
	m.InvoiceID = s.InvoiceID
	m.ProductID = s.ProductID
	m.AccountID = s.AccountID
	m.AmountUSD = s.AmountUSD
	m.CreatedAt = s.CreatedAt
}
