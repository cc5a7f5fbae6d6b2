package ledger

import (
	"context"

	"github.com/backoffice/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderRepository defines the persistence interface for the order ledger.
// The multi-row operations are transactional: either everything lands or
// nothing does.
type OrderRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Order, error)
	FindByRef(ctx context.Context, ref string) (*Order, error)
	// FindByRefs resolves a batch of references in one query; absent refs are
	// simply missing from the map. Used to join history rows with their
	// authoritative billing totals.
	FindByRefs(ctx context.Context, refs []string) (map[string]*Order, error)
	FindAll(ctx context.Context, filter shared.Filter) (shared.Paginated[Order], error)
	Search(ctx context.Context, query string, filter shared.Filter) (shared.Paginated[Order], error)
	// CountByRefPrefix counts orders whose reference starts with the given
	// date prefix; feeds the daily sequence allocation.
	CountByRefPrefix(ctx context.Context, prefix string) (int64, error)
	// CreateWithHistory inserts the order, its history fan-out, and the
	// customer dues replacement in one transaction. A duplicate order
	// reference surfaces as shared.ErrAlreadyExists so the caller can retry
	// allocation.
	CreateWithHistory(ctx context.Context, order *Order, fanout HistoryFanout, customerID uuid.UUID, dues decimal.Decimal) error
	Update(ctx context.Context, order *Order) error
	// DeleteWithHistory removes the order and every history row referencing
	// it in one transaction.
	DeleteWithHistory(ctx context.Context, id uuid.UUID) error
}

// HistoryRepository reads and prunes the derived purchase-history views.
// Entries are never written here; they only come into existence through
// OrderRepository.CreateWithHistory.
type HistoryRepository interface {
	FindByCustomer(ctx context.Context, customerRef string, filter shared.Filter) (shared.Paginated[CustomerPurchaseHistory], error)
	FindByProduct(ctx context.Context, productRef string, filter shared.Filter) (shared.Paginated[ProductPurchaseHistory], error)
	CountByOrder(ctx context.Context, orderID uuid.UUID) (int64, int64, error)
	// DeleteByCustomer prunes both views when a customer is removed
	DeleteByCustomer(ctx context.Context, customerID uuid.UUID) error
}
