package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/backoffice/backend/internal/domain/ledger"
	"github.com/backoffice/backend/internal/domain/partner"
	"github.com/backoffice/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormOrderRepository implements ledger.OrderRepository using GORM
type GormOrderRepository struct {
	db *gorm.DB
}

// NewGormOrderRepository creates a new GormOrderRepository
func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

// FindByID finds an order by its internal ID
func (r *GormOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*ledger.Order, error) {
	var order ledger.Order
	if err := r.db.WithContext(ctx).First(&order, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &order, nil
}

// FindByRef finds an order by its external reference
func (r *GormOrderRepository) FindByRef(ctx context.Context, ref string) (*ledger.Order, error) {
	var order ledger.Order
	if err := r.db.WithContext(ctx).First(&order, "ref = ?", ref).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &order, nil
}

// FindByRefs resolves a batch of references in one query
func (r *GormOrderRepository) FindByRefs(ctx context.Context, refs []string) (map[string]*ledger.Order, error) {
	resolved := make(map[string]*ledger.Order, len(refs))
	if len(refs) == 0 {
		return resolved, nil
	}

	var orders []ledger.Order
	if err := r.db.WithContext(ctx).Where("ref IN ?", refs).Find(&orders).Error; err != nil {
		return nil, err
	}
	for i := range orders {
		resolved[orders[i].Ref] = &orders[i]
	}
	return resolved, nil
}

// FindAll returns orders matching the filter, paginated
func (r *GormOrderRepository) FindAll(ctx context.Context, filter shared.Filter) (shared.Paginated[ledger.Order], error) {
	return r.findPage(ctx, r.db.WithContext(ctx).Model(&ledger.Order{}), filter)
}

// Search matches the query against the reference and the embedded customer,
// item, and billing documents. The documents are JSON, so a case-insensitive
// substring over their text form covers shop names, item names, and numeric
// amounts alike.
func (r *GormOrderRepository) Search(ctx context.Context, query string, filter shared.Filter) (shared.Paginated[ledger.Order], error) {
	trimmed := strings.TrimSpace(query)
	pattern := "%" + strings.ToLower(trimmed) + "%"
	condition := "LOWER(ref) LIKE ? OR LOWER(CAST(customer AS TEXT)) LIKE ? OR LOWER(CAST(items AS TEXT)) LIKE ?"
	args := []interface{}{pattern, pattern, pattern}
	// A numeric query additionally matches billing amounts.
	if amount, err := decimal.NewFromString(trimmed); err == nil {
		condition += " OR CAST(billing AS TEXT) LIKE ?"
		args = append(args, "%"+amount.String()+"%")
	}
	q := r.db.WithContext(ctx).Model(&ledger.Order{}).Where(condition, args...)
	return r.findPage(ctx, q, filter)
}

// CountByRefPrefix counts orders whose reference starts with the date prefix
func (r *GormOrderRepository) CountByRefPrefix(ctx context.Context, prefix string) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&ledger.Order{}).
		Where("ref LIKE ?", escapeLike(prefix)+"%").
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// CreateWithHistory inserts the order, both history fan-outs, and the dues
// replacement in one transaction. Either everything lands or nothing does. A
// duplicate order reference rolls everything back and surfaces as
// shared.ErrAlreadyExists for the allocation retry loop.
func (r *GormOrderRepository) CreateWithHistory(ctx context.Context, order *ledger.Order, fanout ledger.HistoryFanout, customerID uuid.UUID, dues decimal.Decimal) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(order).Error; err != nil {
			return err
		}
		if len(fanout.Customer) > 0 {
			if err := tx.Create(&fanout.Customer).Error; err != nil {
				return err
			}
		}
		if len(fanout.Product) > 0 {
			if err := tx.Create(&fanout.Product).Error; err != nil {
				return err
			}
		}
		result := tx.Model(&partner.Customer{}).
			Where("id = ?", customerID).
			Updates(map[string]interface{}{
				"dues":    dues,
				"version": gorm.Expr("version + 1"),
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrReferenceNotFound
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return shared.ErrAlreadyExists
		}
		return err
	}
	return nil
}

// Update persists changes to an existing order
func (r *GormOrderRepository) Update(ctx context.Context, order *ledger.Order) error {
	result := r.db.WithContext(ctx).
		Model(&ledger.Order{}).
		Where("id = ?", order.ID).
		Select("*").
		Omit("id", "ref", "created_at").
		Updates(order)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// DeleteWithHistory removes the order and every history row referencing it
// in one transaction
func (r *GormOrderRepository) DeleteWithHistory(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Delete(&ledger.Order{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}
		if err := tx.Delete(&ledger.CustomerPurchaseHistory{}, "order_id = ?", id).Error; err != nil {
			return err
		}
		return tx.Delete(&ledger.ProductPurchaseHistory{}, "order_id = ?", id).Error
	})
}

func (r *GormOrderRepository) findPage(ctx context.Context, q *gorm.DB, filter shared.Filter) (shared.Paginated[ledger.Order], error) {
	var total int64
	if err := q.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return shared.Paginated[ledger.Order]{}, err
	}

	var orders []ledger.Order
	if err := applyOrderAndPage(q, filter, "created_at DESC").Find(&orders).Error; err != nil {
		return shared.Paginated[ledger.Order]{}, err
	}
	return shared.NewPaginated(orders, total, filter.Page, filter.Limit()), nil
}

var _ ledger.OrderRepository = (*GormOrderRepository)(nil)
