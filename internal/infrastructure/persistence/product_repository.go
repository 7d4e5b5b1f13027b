package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/planhub/backend/internal/domain/billing"
	"github.com/planhub/backend/internal/domain/shared"
	"github.com/planhub/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormProductRepository implements billing.ProductRepository using GORM.
//
// The compound operations run inside a single transaction and gate every
// counter mutation on the row transition that justifies it. Replaying any of
// them after a redelivery changes nothing: the reference insert conflicts, the
// delete touches zero rows, the sale guard row already exists.
type GormProductRepository struct {
	db *gorm.DB
}

// NewGormProductRepository creates a new GormProductRepository
func NewGormProductRepository(db *gorm.DB) *GormProductRepository {
	return &GormProductRepository{db: db}
}

// FindByID finds a product by its provider product id
func (r *GormProductRepository) FindByID(ctx context.Context, id string) (*billing.Product, error) {
	var model models.ProductModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Save persists a new product mirror
func (r *GormProductRepository) Save(ctx context.Context, product *billing.Product) error {
	var model models.ProductModel
	model.FromDomain(product)
	return r.db.WithContext(ctx).Create(&model).Error
}

// AttachCustomer creates the customer reference and, only when the reference
// did not exist before, increments the product's customer counter and appends
// the activation notification. All three writes share one transaction: if any
// of them fails the others roll back, so a redelivery retries the full bundle
// instead of finding it half applied. Returns whether a new reference was
// created.
func (r *GormProductRepository) AttachCustomer(ctx context.Context, ref *billing.CustomerReference, notification *billing.Notification) (bool, error) {
	var created bool

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var model models.ProductCustomerModel
		model.FromDomain(ref)

		result := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&model)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			// Reference already present, the counter must not move
			created = false
			return nil
		}
		created = true

		update := tx.Model(&models.ProductModel{}).
			Where("id = ?", ref.ProductID).
			Updates(map[string]interface{}{
				"number_of_customers": gorm.Expr("number_of_customers + 1"),
				"updated_at":          time.Now(),
			})
		if update.Error != nil {
			return update.Error
		}
		if update.RowsAffected == 0 {
			return shared.ErrNotFound
		}

		var note models.NotificationModel
		note.FromDomain(notification)
		return tx.Create(&note).Error
	})
	if err != nil {
		return false, err
	}
	return created, nil
}

// DetachCustomer deletes the customer reference and decrements the counter
// only when a row was actually removed. Returns whether a reference was
// removed.
func (r *GormProductRepository) DetachCustomer(ctx context.Context, productID string, accountID uuid.UUID) (bool, error) {
	var removed bool

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Where("product_id = ? AND account_id = ?", productID, accountID).
			Delete(&models.ProductCustomerModel{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			// Nothing to revoke, the counter must not move
			removed = false
			return nil
		}
		removed = true

		update := tx.Model(&models.ProductModel{}).
			Where("id = ?", productID).
			Updates(map[string]interface{}{
				"number_of_customers": gorm.Expr("number_of_customers - 1"),
				"updated_at":          time.Now(),
			})
		if update.Error != nil {
			return update.Error
		}
		if update.RowsAffected == 0 {
			return shared.ErrNotFound
		}
		return nil
	})
	if err != nil {
		return false, err
	}
	return removed, nil
}

// RecordSale inserts the per-invoice guard row and advances the sales
// accumulator only when the invoice had not been recorded before. The
// accumulator update uses optimistic locking; a version conflict rolls back
// the guard row too, so redelivery retries the whole operation.
func (r *GormProductRepository) RecordSale(ctx context.Context, sale *billing.SaleRecord) (bool, error) {
	var recorded bool

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var model models.ProductSaleModel
		model.FromDomain(sale)

		result := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&model)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			// Invoice already recorded, the accumulator must not move
			recorded = false
			return nil
		}
		recorded = true

		var product models.ProductModel
		if err := tx.First(&product, "id = ?", sale.ProductID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return shared.ErrNotFound
			}
			return err
		}

		update := tx.Model(&models.ProductModel{}).
			Where("id = ? AND version = ?", product.ID, product.Version).
			Updates(map[string]interface{}{
				"sales_in_usd": product.SalesInUSD.Add(sale.AmountUSD),
				"version":      product.Version + 1,
				"updated_at":   time.Now(),
			})
		if update.Error != nil {
			return update.Error
		}
		if update.RowsAffected == 0 {
			return shared.ErrConcurrencyConflict
		}
		return nil
	})
	if err != nil {
		return false, err
	}
	return recorded, nil
}

// ListEntitlements returns the product ids the account currently holds a
// customer reference for
func (r *GormProductRepository) ListEntitlements(ctx context.Context, accountID uuid.UUID) ([]string, error) {
	var productIDs []string
	if err := r.db.WithContext(ctx).
		Model(&models.ProductCustomerModel{}).
		Where("account_id = ?", accountID).
		Order("created_at ASC").
		Pluck("product_id", &productIDs).Error; err != nil {
		return nil, err
	}
	return productIDs, nil
}
