package ledger

import (
	"context"
	"errors"
	"time"

	"github.com/backoffice/backend/internal/domain/catalog"
	"github.com/backoffice/backend/internal/domain/ledger"
	"github.com/backoffice/backend/internal/domain/partner"
	"github.com/backoffice/backend/internal/domain/sequence"
	"github.com/backoffice/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// maxAllocationAttempts bounds the optimistic reference allocation loop.
// Two same-day creations can race on the daily counter; the loser recounts
// and retries with the next sequence number.
const maxAllocationAttempts = 5

// OrderService handles the order ledger: creation with history fan-out and
// dues replacement, amendments, deletion, listings, and history joins.
type OrderService struct {
	orderRepo    ledger.OrderRepository
	historyRepo  ledger.HistoryRepository
	customerRepo partner.CustomerRepository
	productRepo  catalog.ProductRepository
	idempotency  shared.IdempotencyStore
	logger       *zap.Logger

	now func() time.Time
}

// NewOrderService creates a new OrderService. The idempotency store may be
// nil, in which case Idempotency-Key headers are ignored.
func NewOrderService(
	orderRepo ledger.OrderRepository,
	historyRepo ledger.HistoryRepository,
	customerRepo partner.CustomerRepository,
	productRepo catalog.ProductRepository,
	idempotency shared.IdempotencyStore,
	logger *zap.Logger,
) *OrderService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OrderService{
		orderRepo:    orderRepo,
		historyRepo:  historyRepo,
		customerRepo: customerRepo,
		productRepo:  productRepo,
		idempotency:  idempotency,
		logger:       logger,
		now:          time.Now,
	}
}

// Create runs the full order workflow: resolve the customer and every
// product up front, reconcile the billing block, then allocate a daily
// reference and write the order, its history fan-out, and the customer's
// dues replacement in one transaction.
func (s *OrderService) Create(ctx context.Context, req CreateOrderRequest) (*OrderResponse, error) {
	if response, ok := s.replayIdempotent(ctx, req.IdempotencyKey); ok {
		return response, nil
	}

	customer, err := s.customerRepo.FindByRef(ctx, req.CustomerRef)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("REFERENCE_NOT_FOUND",
				"Customer "+req.CustomerRef+" not found")
		}
		return nil, err
	}

	resolved, err := s.resolveProducts(ctx, req.Items, req.FreeItems)
	if err != nil {
		return nil, err
	}

	billing := toDomainBilling(req.Billing)
	if err := billing.Reconcile(); err != nil {
		return nil, err
	}

	items := toDomainItems(req.Items, resolved, false)
	freeItems := toDomainItems(req.FreeItems, resolved, true)
	snapshot := snapshotCustomer(customer)
	resolvedProducts := toResolvedProducts(resolved)

	for attempt := 0; attempt < maxAllocationAttempts; attempt++ {
		createdAt := s.now()
		existing, err := s.orderRepo.CountByRefPrefix(ctx, sequence.OrderRefPrefix(createdAt))
		if err != nil {
			return nil, err
		}

		order, err := ledger.NewOrder(sequence.OrderRef(createdAt, existing), snapshot, items, freeItems, billing)
		if err != nil {
			return nil, err
		}
		if len(req.Comments) > 0 {
			order.AppendComments(req.Comments)
		}

		fanout, err := ledger.BuildHistoryFanout(order, resolvedProducts)
		if err != nil {
			return nil, err
		}

		err = s.orderRepo.CreateWithHistory(ctx, order, fanout, customer.ID, billing.FinalAmount)
		if err == nil {
			s.rememberIdempotent(ctx, req.IdempotencyKey, order.Ref)
			s.logger.Info("order created",
				zap.String("ref", order.Ref),
				zap.String("customer_ref", customer.Ref),
				zap.Int("items", len(order.Items)))
			response := ToOrderResponse(order)
			return &response, nil
		}
		if !errors.Is(err, shared.ErrAlreadyExists) {
			return nil, err
		}
	}

	return nil, shared.ErrConcurrencyConflict
}

// GetByID retrieves an order by internal ID
func (s *OrderService) GetByID(ctx context.Context, orderID uuid.UUID) (*OrderResponse, error) {
	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	response := ToOrderResponse(order)
	return &response, nil
}

// GetByRef retrieves an order by external reference
func (s *OrderService) GetByRef(ctx context.Context, ref string) (*OrderResponse, error) {
	order, err := s.orderRepo.FindByRef(ctx, ref)
	if err != nil {
		return nil, err
	}

	response := ToOrderResponse(order)
	return &response, nil
}

// List returns the projected order book; a non-empty search term switches to
// substring matching over the embedded documents.
func (s *OrderService) List(ctx context.Context, filter OrderListFilter) (shared.Paginated[OrderListItem], error) {
	domainFilter := shared.Filter{
		Page:     filter.Page,
		PageSize: filter.PageSize,
		OrderBy:  filter.OrderBy,
		OrderDir: filter.OrderDir,
		Filters:  make(map[string]any),
	}
	if domainFilter.Page <= 0 {
		domainFilter.Page = 1
	}
	if domainFilter.PageSize <= 0 {
		domainFilter.PageSize = 20
	}
	if domainFilter.OrderBy == "" {
		domainFilter.OrderBy = "created_at"
	}
	if domainFilter.OrderDir == "" {
		domainFilter.OrderDir = "desc"
	}

	var (
		page shared.Paginated[ledger.Order]
		err  error
	)
	if filter.Search != "" {
		page, err = s.orderRepo.Search(ctx, filter.Search, domainFilter)
	} else {
		page, err = s.orderRepo.FindAll(ctx, domainFilter)
	}
	if err != nil {
		return shared.Paginated[OrderListItem]{}, err
	}

	return shared.Paginated[OrderListItem]{
		Items:      ToOrderListItems(page.Items),
		Total:      page.Total,
		Page:       page.Page,
		PageSize:   page.PageSize,
		TotalPages: page.TotalPages,
	}, nil
}

// Update amends an order. Items and free items submitted here are resolved
// and filled like at creation; the dues cache is not refreshed.
func (s *OrderService) Update(ctx context.Context, orderID uuid.UUID, req UpdateOrderRequest) (*OrderResponse, error) {
	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	var items, freeItems []ledger.LineItem
	if req.Items != nil || req.FreeItems != nil {
		resolved, err := s.resolveProducts(ctx, req.Items, req.FreeItems)
		if err != nil {
			return nil, err
		}
		if req.Items != nil {
			items = toDomainItems(req.Items, resolved, false)
		}
		if req.FreeItems != nil {
			freeItems = toDomainItems(req.FreeItems, resolved, true)
		}
	}

	var billing *ledger.Billing
	if req.Billing != nil {
		b := toDomainBilling(*req.Billing)
		billing = &b
	}

	if err := order.Amend(items, freeItems, billing); err != nil {
		return nil, err
	}
	if len(req.Comments) > 0 {
		order.AppendComments(req.Comments)
	}

	if err := s.orderRepo.Update(ctx, order); err != nil {
		return nil, err
	}

	response := ToOrderResponse(order)
	return &response, nil
}

// Delete removes an order and its history fan-out in one transaction. The
// customer's dues are left as they are.
func (s *OrderService) Delete(ctx context.Context, orderID uuid.UUID) error {
	return s.orderRepo.DeleteWithHistory(ctx, orderID)
}

// CustomerHistory lists what a customer bought, joined with the billing
// totals of the backing orders.
func (s *OrderService) CustomerHistory(ctx context.Context, customerRef string, filter HistoryListFilter) (shared.Paginated[PurchaseHistoryEntry], error) {
	page, err := s.historyRepo.FindByCustomer(ctx, customerRef, historyFilter(filter))
	if err != nil {
		return shared.Paginated[PurchaseHistoryEntry]{}, err
	}

	refs := make([]string, 0, len(page.Items))
	seen := make(map[string]bool, len(page.Items))
	entries := make([]PurchaseHistoryEntry, len(page.Items))
	for i, row := range page.Items {
		if !seen[row.OrderRef] {
			seen[row.OrderRef] = true
			refs = append(refs, row.OrderRef)
		}
		entries[i] = PurchaseHistoryEntry{
			OrderID:     row.OrderID,
			OrderRef:    row.OrderRef,
			CustomerRef: row.CustomerRef,
			ShopName:    row.ShopName,
			ProductRef:  row.ProductRef,
			ProductName: row.ProductName,
			CreatedAt:   row.CreatedAt,
		}
	}

	if err := s.joinOrderBilling(ctx, refs, entries); err != nil {
		return shared.Paginated[PurchaseHistoryEntry]{}, err
	}

	return shared.Paginated[PurchaseHistoryEntry]{
		Items:      entries,
		Total:      page.Total,
		Page:       page.Page,
		PageSize:   page.PageSize,
		TotalPages: page.TotalPages,
	}, nil
}

// ProductHistory lists who bought a product, joined with the billing totals
// of the backing orders.
func (s *OrderService) ProductHistory(ctx context.Context, productRef string, filter HistoryListFilter) (shared.Paginated[PurchaseHistoryEntry], error) {
	page, err := s.historyRepo.FindByProduct(ctx, productRef, historyFilter(filter))
	if err != nil {
		return shared.Paginated[PurchaseHistoryEntry]{}, err
	}

	refs := make([]string, 0, len(page.Items))
	seen := make(map[string]bool, len(page.Items))
	entries := make([]PurchaseHistoryEntry, len(page.Items))
	for i, row := range page.Items {
		if !seen[row.OrderRef] {
			seen[row.OrderRef] = true
			refs = append(refs, row.OrderRef)
		}
		entries[i] = PurchaseHistoryEntry{
			OrderID:     row.OrderID,
			OrderRef:    row.OrderRef,
			CustomerRef: row.CustomerRef,
			ShopName:    row.ShopName,
			ProductRef:  row.ProductRef,
			ProductName: row.ProductName,
			CreatedAt:   row.CreatedAt,
		}
	}

	if err := s.joinOrderBilling(ctx, refs, entries); err != nil {
		return shared.Paginated[PurchaseHistoryEntry]{}, err
	}

	return shared.Paginated[PurchaseHistoryEntry]{
		Items:      entries,
		Total:      page.Total,
		Page:       page.Page,
		PageSize:   page.PageSize,
		TotalPages: page.TotalPages,
	}, nil
}

// joinOrderBilling fills each entry's billing figures from its backing
// order. Orphan rows keep zero amounts; the order is the authority.
func (s *OrderService) joinOrderBilling(ctx context.Context, refs []string, entries []PurchaseHistoryEntry) error {
	orders, err := s.orderRepo.FindByRefs(ctx, refs)
	if err != nil {
		return err
	}
	for i := range entries {
		if order, ok := orders[entries[i].OrderRef]; ok {
			entries[i].OrderAmount = order.Billing.OrderAmount
			entries[i].FinalAmount = order.Billing.FinalAmount
		}
	}
	return nil
}

// resolveProducts batch-resolves every reference across both item lists.
// Any missing reference fails the whole request; partial fan-out is never
// possible.
func (s *OrderService) resolveProducts(ctx context.Context, items, freeItems []LineItemInput) (map[string]*catalog.Product, error) {
	refs := make([]string, 0, len(items)+len(freeItems))
	seen := make(map[string]bool, len(items)+len(freeItems))
	for _, in := range items {
		if !seen[in.ProductRef] {
			seen[in.ProductRef] = true
			refs = append(refs, in.ProductRef)
		}
	}
	for _, in := range freeItems {
		if !seen[in.ProductRef] {
			seen[in.ProductRef] = true
			refs = append(refs, in.ProductRef)
		}
	}

	resolved, err := s.productRepo.FindByRefs(ctx, refs)
	if err != nil {
		return nil, err
	}
	for _, ref := range refs {
		if _, ok := resolved[ref]; !ok {
			return nil, shared.NewDomainError("REFERENCE_NOT_FOUND",
				"Product "+ref+" not found")
		}
	}
	return resolved, nil
}

// replayIdempotent returns the previously created order when the key has
// already been processed
func (s *OrderService) replayIdempotent(ctx context.Context, key string) (*OrderResponse, bool) {
	if key == "" || s.idempotency == nil {
		return nil, false
	}

	ref, found, err := s.idempotency.Lookup(ctx, key)
	if err != nil {
		s.logger.Warn("idempotency lookup failed", zap.Error(err))
		return nil, false
	}
	if !found {
		return nil, false
	}

	order, err := s.orderRepo.FindByRef(ctx, ref)
	if err != nil {
		s.logger.Warn("idempotency hit but order missing",
			zap.String("ref", ref), zap.Error(err))
		return nil, false
	}

	response := ToOrderResponse(order)
	return &response, true
}

func (s *OrderService) rememberIdempotent(ctx context.Context, key, ref string) {
	if key == "" || s.idempotency == nil {
		return
	}
	if _, _, err := s.idempotency.Remember(ctx, key, ref, shared.DefaultIdempotencyTTL); err != nil {
		s.logger.Warn("idempotency remember failed", zap.Error(err))
	}
}

func snapshotCustomer(customer *partner.Customer) ledger.CustomerSnapshot {
	contacts := make([]ledger.Contact, len(customer.Contacts))
	for i, c := range customer.Contacts {
		contacts[i] = ledger.Contact{Phone: c.Phone, Whatsapp: c.Whatsapp}
	}
	return ledger.CustomerSnapshot{
		CustomerID: customer.ID,
		Ref:        customer.Ref,
		Name:       customer.Name,
		ShopName:   customer.ShopName,
		Address:    customer.Address,
		Town:       customer.Town,
		State:      customer.State,
		Pincode:    customer.Pincode,
		Contacts:   contacts,
		Dues:       customer.Dues,
	}
}

func historyFilter(filter HistoryListFilter) shared.Filter {
	f := shared.Filter{
		Page:     filter.Page,
		PageSize: filter.PageSize,
		OrderBy:  "created_at",
		OrderDir: "desc",
		Filters:  make(map[string]any),
	}
	if f.Page <= 0 {
		f.Page = 1
	}
	if f.PageSize <= 0 {
		f.PageSize = 20
	}
	return f
}
