package catalog

import (
	"context"

	"github.com/backoffice/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// ProductRepository defines the persistence interface for catalog products
type ProductRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Product, error)
	FindByRef(ctx context.Context, ref string) (*Product, error)
	// FindByRefs resolves a batch of references in one query. The result maps
	// ref to product; absent refs are simply missing from the map.
	FindByRefs(ctx context.Context, refs []string) (map[string]*Product, error)
	FindAll(ctx context.Context, filter shared.Filter) (shared.Paginated[Product], error)
	Search(ctx context.Context, query string, filter shared.Filter) (shared.Paginated[Product], error)
	// MaxNumericRef returns the highest numeric reference in the catalog,
	// zero when the catalog is empty.
	MaxNumericRef(ctx context.Context) (int64, error)
	Save(ctx context.Context, product *Product) error
	Update(ctx context.Context, product *Product) error
	Delete(ctx context.Context, id uuid.UUID) error
}
