package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/planhub/backend/internal/domain/billing"
	"github.com/planhub/backend/internal/domain/shared"
	"github.com/planhub/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormAccountRepository implements billing.AccountRepository using GORM
type GormAccountRepository struct {
	db *gorm.DB
}

// NewGormAccountRepository creates a new GormAccountRepository
func NewGormAccountRepository(db *gorm.DB) *GormAccountRepository {
	return &GormAccountRepository{db: db}
}

// FindByExternalCustomerID resolves a provider customer id to the single
// owning account. Zero or multiple matches are permanent resolution errors;
// redelivery cannot fix either, so both are reported as such to the caller.
func (r *GormAccountRepository) FindByExternalCustomerID(ctx context.Context, externalCustomerID string) (*billing.Account, error) {
	if externalCustomerID == "" {
		return nil, billing.ErrAccountNotFound
	}

	var accountModels []models.AccountModel
	if err := r.db.WithContext(ctx).
		Where("external_customer_id = ?", externalCustomerID).
		Limit(2).
		Find(&accountModels).Error; err != nil {
		return nil, err
	}

	switch len(accountModels) {
	case 0:
		return nil, billing.ErrAccountNotFound
	case 1:
		return accountModels[0].ToDomain(), nil
	default:
		return nil, billing.ErrAccountAmbiguous
	}
}

// FindByID finds an account by its ID
func (r *GormAccountRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.Account, error) {
	var model models.AccountModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Save persists a new account
func (r *GormAccountRepository) Save(ctx context.Context, account *billing.Account) error {
	var model models.AccountModel
	model.FromDomain(account)
	return r.db.WithContext(ctx).Create(&model).Error
}
