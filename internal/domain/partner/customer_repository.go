package partner

import (
	"context"

	"github.com/backoffice/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// CustomerRepository defines the persistence interface for customers
type CustomerRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Customer, error)
	FindByRef(ctx context.Context, ref string) (*Customer, error)
	FindAll(ctx context.Context, filter shared.Filter) (shared.Paginated[Customer], error)
	Search(ctx context.Context, query string, filter shared.Filter) (shared.Paginated[Customer], error)
	// CountByRefPrefix counts customers whose reference starts with the given
	// natural-key prefix; feeds the two-digit suffix allocation.
	CountByRefPrefix(ctx context.Context, prefix string) (int64, error)
	Save(ctx context.Context, customer *Customer) error
	Update(ctx context.Context, customer *Customer) error
	Delete(ctx context.Context, id uuid.UUID) error
}
