package persistence

import (
	"context"

	"github.com/backoffice/backend/internal/domain/ledger"
	"github.com/backoffice/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormHistoryRepository implements ledger.HistoryRepository using GORM.
// It only reads and prunes; rows are written by the order repository in
// lockstep with the order.
type GormHistoryRepository struct {
	db *gorm.DB
}

// NewGormHistoryRepository creates a new GormHistoryRepository
func NewGormHistoryRepository(db *gorm.DB) *GormHistoryRepository {
	return &GormHistoryRepository{db: db}
}

// FindByCustomer returns the customer-view entries for a customer reference
func (r *GormHistoryRepository) FindByCustomer(ctx context.Context, customerRef string, filter shared.Filter) (shared.Paginated[ledger.CustomerPurchaseHistory], error) {
	q := r.db.WithContext(ctx).Model(&ledger.CustomerPurchaseHistory{})
	if customerRef != "" {
		q = q.Where("customer_ref = ?", customerRef)
	}

	var total int64
	if err := q.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return shared.Paginated[ledger.CustomerPurchaseHistory]{}, err
	}

	var entries []ledger.CustomerPurchaseHistory
	if err := applyOrderAndPage(q, filter, "created_at DESC").Find(&entries).Error; err != nil {
		return shared.Paginated[ledger.CustomerPurchaseHistory]{}, err
	}
	return shared.NewPaginated(entries, total, filter.Page, filter.Limit()), nil
}

// FindByProduct returns the product-view entries for a product reference
func (r *GormHistoryRepository) FindByProduct(ctx context.Context, productRef string, filter shared.Filter) (shared.Paginated[ledger.ProductPurchaseHistory], error) {
	q := r.db.WithContext(ctx).Model(&ledger.ProductPurchaseHistory{})
	if productRef != "" {
		q = q.Where("product_ref = ?", productRef)
	}

	var total int64
	if err := q.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return shared.Paginated[ledger.ProductPurchaseHistory]{}, err
	}

	var entries []ledger.ProductPurchaseHistory
	if err := applyOrderAndPage(q, filter, "created_at DESC").Find(&entries).Error; err != nil {
		return shared.Paginated[ledger.ProductPurchaseHistory]{}, err
	}
	return shared.NewPaginated(entries, total, filter.Page, filter.Limit()), nil
}

// CountByOrder returns how many entries each view holds for an order
func (r *GormHistoryRepository) CountByOrder(ctx context.Context, orderID uuid.UUID) (int64, int64, error) {
	var customerCount, productCount int64
	if err := r.db.WithContext(ctx).
		Model(&ledger.CustomerPurchaseHistory{}).
		Where("order_id = ?", orderID).
		Count(&customerCount).Error; err != nil {
		return 0, 0, err
	}
	if err := r.db.WithContext(ctx).
		Model(&ledger.ProductPurchaseHistory{}).
		Where("order_id = ?", orderID).
		Count(&productCount).Error; err != nil {
		return 0, 0, err
	}
	return customerCount, productCount, nil
}

// DeleteByCustomer prunes both views when a customer is removed
func (r *GormHistoryRepository) DeleteByCustomer(ctx context.Context, customerID uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&ledger.CustomerPurchaseHistory{}, "customer_id = ?", customerID).Error; err != nil {
			return err
		}
		return tx.Delete(&ledger.ProductPurchaseHistory{}, "customer_id = ?", customerID).Error
	})
}

var _ ledger.HistoryRepository = (*GormHistoryRepository)(nil)
