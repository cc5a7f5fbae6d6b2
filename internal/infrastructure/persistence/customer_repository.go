package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/backoffice/backend/internal/domain/partner"
	"github.com/backoffice/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormCustomerRepository implements partner.CustomerRepository using GORM
type GormCustomerRepository struct {
	db *gorm.DB
}

// NewGormCustomerRepository creates a new GormCustomerRepository
func NewGormCustomerRepository(db *gorm.DB) *GormCustomerRepository {
	return &GormCustomerRepository{db: db}
}

// FindByID finds a customer by its internal ID
func (r *GormCustomerRepository) FindByID(ctx context.Context, id uuid.UUID) (*partner.Customer, error) {
	var customer partner.Customer
	if err := r.db.WithContext(ctx).First(&customer, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &customer, nil
}

// FindByRef finds a customer by its external reference
func (r *GormCustomerRepository) FindByRef(ctx context.Context, ref string) (*partner.Customer, error) {
	var customer partner.Customer
	if err := r.db.WithContext(ctx).First(&customer, "ref = ?", ref).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &customer, nil
}

// FindAll returns customers matching the filter, paginated
func (r *GormCustomerRepository) FindAll(ctx context.Context, filter shared.Filter) (shared.Paginated[partner.Customer], error) {
	return r.findPage(ctx, r.db.WithContext(ctx).Model(&partner.Customer{}), filter)
}

// Search matches the query against the denormalized text fields. Matching is
// case-insensitive substring over ref, names, address, town, state, and
// pincode.
func (r *GormCustomerRepository) Search(ctx context.Context, query string, filter shared.Filter) (shared.Paginated[partner.Customer], error) {
	pattern := "%" + strings.ToLower(strings.TrimSpace(query)) + "%"
	q := r.db.WithContext(ctx).Model(&partner.Customer{}).Where(
		"LOWER(ref) LIKE ? OR LOWER(name) LIKE ? OR LOWER(shop_name) LIKE ? OR LOWER(address) LIKE ? OR LOWER(town) LIKE ? OR LOWER(state) LIKE ? OR pincode LIKE ?",
		pattern, pattern, pattern, pattern, pattern, pattern, pattern,
	)
	return r.findPage(ctx, q, filter)
}

// CountByRefPrefix counts customers whose reference starts with the prefix
func (r *GormCustomerRepository) CountByRefPrefix(ctx context.Context, prefix string) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&partner.Customer{}).
		Where("ref LIKE ?", escapeLike(prefix)+"%").
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Save inserts a customer. A duplicate reference surfaces as
// shared.ErrAlreadyExists so the caller can retry allocation.
func (r *GormCustomerRepository) Save(ctx context.Context, customer *partner.Customer) error {
	if err := r.db.WithContext(ctx).Create(customer).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return shared.ErrAlreadyExists
		}
		return err
	}
	return nil
}

// Update persists changes to an existing customer
func (r *GormCustomerRepository) Update(ctx context.Context, customer *partner.Customer) error {
	result := r.db.WithContext(ctx).
		Model(&partner.Customer{}).
		Where("id = ?", customer.ID).
		Select("*").
		Omit("id", "created_at").
		Updates(customer)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Delete removes a customer
func (r *GormCustomerRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&partner.Customer{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *GormCustomerRepository) findPage(ctx context.Context, q *gorm.DB, filter shared.Filter) (shared.Paginated[partner.Customer], error) {
	var total int64
	if err := q.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return shared.Paginated[partner.Customer]{}, err
	}

	var customers []partner.Customer
	if err := applyOrderAndPage(q, filter, "created_at DESC").Find(&customers).Error; err != nil {
		return shared.Paginated[partner.Customer]{}, err
	}
	return shared.NewPaginated(customers, total, filter.Page, filter.Limit()), nil
}

var _ partner.CustomerRepository = (*GormCustomerRepository)(nil)
