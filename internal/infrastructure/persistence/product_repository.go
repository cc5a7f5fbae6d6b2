package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/backoffice/backend/internal/domain/catalog"
	"github.com/backoffice/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormProductRepository implements catalog.ProductRepository using GORM
type GormProductRepository struct {
	db *gorm.DB
}

// NewGormProductRepository creates a new GormProductRepository
func NewGormProductRepository(db *gorm.DB) *GormProductRepository {
	return &GormProductRepository{db: db}
}

// FindByID finds a product by its internal ID
func (r *GormProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	var product catalog.Product
	if err := r.db.WithContext(ctx).First(&product, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &product, nil
}

// FindByRef finds a product by its external reference
func (r *GormProductRepository) FindByRef(ctx context.Context, ref string) (*catalog.Product, error) {
	var product catalog.Product
	if err := r.db.WithContext(ctx).First(&product, "ref = ?", ref).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &product, nil
}

// FindByRefs resolves a batch of references in one query
func (r *GormProductRepository) FindByRefs(ctx context.Context, refs []string) (map[string]*catalog.Product, error) {
	resolved := make(map[string]*catalog.Product, len(refs))
	if len(refs) == 0 {
		return resolved, nil
	}

	var products []catalog.Product
	if err := r.db.WithContext(ctx).Where("ref IN ?", refs).Find(&products).Error; err != nil {
		return nil, err
	}
	for i := range products {
		resolved[products[i].Ref] = &products[i]
	}
	return resolved, nil
}

// FindAll returns products matching the filter, paginated
func (r *GormProductRepository) FindAll(ctx context.Context, filter shared.Filter) (shared.Paginated[catalog.Product], error) {
	return r.findPage(ctx, r.db.WithContext(ctx).Model(&catalog.Product{}), filter)
}

// Search matches the query against ref, name, and the descriptive entry
// lists (stored as JSON text)
func (r *GormProductRepository) Search(ctx context.Context, query string, filter shared.Filter) (shared.Paginated[catalog.Product], error) {
	pattern := "%" + strings.ToLower(strings.TrimSpace(query)) + "%"
	q := r.db.WithContext(ctx).Model(&catalog.Product{}).Where(
		"ref LIKE ? OR LOWER(name) LIKE ? OR LOWER(CAST(description AS TEXT)) LIKE ? OR LOWER(CAST(features AS TEXT)) LIKE ? OR LOWER(CAST(notes AS TEXT)) LIKE ?",
		pattern, pattern, pattern, pattern, pattern,
	)
	return r.findPage(ctx, q, filter)
}

// MaxNumericRef returns the highest numeric reference, zero for an empty
// catalog. References are numeric by construction, the cast never fails.
func (r *GormProductRepository) MaxNumericRef(ctx context.Context) (int64, error) {
	var highest int64
	if err := r.db.WithContext(ctx).
		Model(&catalog.Product{}).
		Select("COALESCE(MAX(CAST(ref AS BIGINT)), 0)").
		Scan(&highest).Error; err != nil {
		return 0, err
	}
	return highest, nil
}

// Save inserts a product. A duplicate reference surfaces as
// shared.ErrAlreadyExists so the caller can retry allocation.
func (r *GormProductRepository) Save(ctx context.Context, product *catalog.Product) error {
	if err := r.db.WithContext(ctx).Create(product).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return shared.ErrAlreadyExists
		}
		return err
	}
	return nil
}

// Update persists changes to an existing product
func (r *GormProductRepository) Update(ctx context.Context, product *catalog.Product) error {
	result := r.db.WithContext(ctx).
		Model(&catalog.Product{}).
		Where("id = ?", product.ID).
		Select("*").
		Omit("id", "created_at").
		Updates(product)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Delete removes a product
func (r *GormProductRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&catalog.Product{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *GormProductRepository) findPage(ctx context.Context, q *gorm.DB, filter shared.Filter) (shared.Paginated[catalog.Product], error) {
	var total int64
	if err := q.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return shared.Paginated[catalog.Product]{}, err
	}

	var products []catalog.Product
	if err := applyOrderAndPage(q, filter, "created_at DESC").Find(&products).Error; err != nil {
		return shared.Paginated[catalog.Product]{}, err
	}
	return shared.NewPaginated(products, total, filter.Page, filter.Limit()), nil
}

var _ catalog.ProductRepository = (*GormProductRepository)(nil)
