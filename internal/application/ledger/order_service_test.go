package ledger

import (
	"context"
	"testing"
	"time"

	"github.com/backoffice/backend/internal/domain/catalog"
	"github.com/backoffice/backend/internal/domain/ledger"
	"github.com/backoffice/backend/internal/domain/partner"
	"github.com/backoffice/backend/internal/domain/sequence"
	"github.com/backoffice/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// Mock Repositories
// =============================================================================

// MockOrderRepository is a mock implementation of OrderRepository
type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*ledger.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledger.Order), args.Error(1)
}

func (m *MockOrderRepository) FindByRef(ctx context.Context, ref string) (*ledger.Order, error) {
	args := m.Called(ctx, ref)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledger.Order), args.Error(1)
}

func (m *MockOrderRepository) FindByRefs(ctx context.Context, refs []string) (map[string]*ledger.Order, error) {
	args := m.Called(ctx, refs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]*ledger.Order), args.Error(1)
}

func (m *MockOrderRepository) FindAll(ctx context.Context, filter shared.Filter) (shared.Paginated[ledger.Order], error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(shared.Paginated[ledger.Order]), args.Error(1)
}

func (m *MockOrderRepository) Search(ctx context.Context, query string, filter shared.Filter) (shared.Paginated[ledger.Order], error) {
	args := m.Called(ctx, query, filter)
	return args.Get(0).(shared.Paginated[ledger.Order]), args.Error(1)
}

func (m *MockOrderRepository) CountByRefPrefix(ctx context.Context, prefix string) (int64, error) {
	args := m.Called(ctx, prefix)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockOrderRepository) CreateWithHistory(ctx context.Context, order *ledger.Order, fanout ledger.HistoryFanout, customerID uuid.UUID, dues decimal.Decimal) error {
	args := m.Called(ctx, order, fanout, customerID, dues)
	return args.Error(0)
}

func (m *MockOrderRepository) Update(ctx context.Context, order *ledger.Order) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

func (m *MockOrderRepository) DeleteWithHistory(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

var _ ledger.OrderRepository = (*MockOrderRepository)(nil)

// MockHistoryRepository is a mock implementation of HistoryRepository
type MockHistoryRepository struct {
	mock.Mock
}

func (m *MockHistoryRepository) FindByCustomer(ctx context.Context, customerRef string, filter shared.Filter) (shared.Paginated[ledger.CustomerPurchaseHistory], error) {
	args := m.Called(ctx, customerRef, filter)
	return args.Get(0).(shared.Paginated[ledger.CustomerPurchaseHistory]), args.Error(1)
}

func (m *MockHistoryRepository) FindByProduct(ctx context.Context, productRef string, filter shared.Filter) (shared.Paginated[ledger.ProductPurchaseHistory], error) {
	args := m.Called(ctx, productRef, filter)
	return args.Get(0).(shared.Paginated[ledger.ProductPurchaseHistory]), args.Error(1)
}

func (m *MockHistoryRepository) CountByOrder(ctx context.Context, orderID uuid.UUID) (int64, int64, error) {
	args := m.Called(ctx, orderID)
	return args.Get(0).(int64), args.Get(1).(int64), args.Error(2)
}

func (m *MockHistoryRepository) DeleteByCustomer(ctx context.Context, customerID uuid.UUID) error {
	args := m.Called(ctx, customerID)
	return args.Error(0)
}

var _ ledger.HistoryRepository = (*MockHistoryRepository)(nil)

// MockCustomerRepository is a mock implementation of partner.CustomerRepository
type MockCustomerRepository struct {
	mock.Mock
}

func (m *MockCustomerRepository) FindByID(ctx context.Context, id uuid.UUID) (*partner.Customer, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*partner.Customer), args.Error(1)
}

func (m *MockCustomerRepository) FindByRef(ctx context.Context, ref string) (*partner.Customer, error) {
	args := m.Called(ctx, ref)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*partner.Customer), args.Error(1)
}

func (m *MockCustomerRepository) FindAll(ctx context.Context, filter shared.Filter) (shared.Paginated[partner.Customer], error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(shared.Paginated[partner.Customer]), args.Error(1)
}

func (m *MockCustomerRepository) Search(ctx context.Context, query string, filter shared.Filter) (shared.Paginated[partner.Customer], error) {
	args := m.Called(ctx, query, filter)
	return args.Get(0).(shared.Paginated[partner.Customer]), args.Error(1)
}

func (m *MockCustomerRepository) CountByRefPrefix(ctx context.Context, prefix string) (int64, error) {
	args := m.Called(ctx, prefix)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockCustomerRepository) Save(ctx context.Context, customer *partner.Customer) error {
	args := m.Called(ctx, customer)
	return args.Error(0)
}

func (m *MockCustomerRepository) Update(ctx context.Context, customer *partner.Customer) error {
	args := m.Called(ctx, customer)
	return args.Error(0)
}

func (m *MockCustomerRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

var _ partner.CustomerRepository = (*MockCustomerRepository)(nil)

// MockProductRepository is a mock implementation of catalog.ProductRepository
type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Product), args.Error(1)
}

func (m *MockProductRepository) FindByRef(ctx context.Context, ref string) (*catalog.Product, error) {
	args := m.Called(ctx, ref)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Product), args.Error(1)
}

func (m *MockProductRepository) FindByRefs(ctx context.Context, refs []string) (map[string]*catalog.Product, error) {
	args := m.Called(ctx, refs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]*catalog.Product), args.Error(1)
}

func (m *MockProductRepository) FindAll(ctx context.Context, filter shared.Filter) (shared.Paginated[catalog.Product], error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(shared.Paginated[catalog.Product]), args.Error(1)
}

func (m *MockProductRepository) Search(ctx context.Context, query string, filter shared.Filter) (shared.Paginated[catalog.Product], error) {
	args := m.Called(ctx, query, filter)
	return args.Get(0).(shared.Paginated[catalog.Product]), args.Error(1)
}

func (m *MockProductRepository) MaxNumericRef(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockProductRepository) Save(ctx context.Context, product *catalog.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func (m *MockProductRepository) Update(ctx context.Context, product *catalog.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func (m *MockProductRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

var _ catalog.ProductRepository = (*MockProductRepository)(nil)

// MockIdempotencyStore is a mock implementation of shared.IdempotencyStore
type MockIdempotencyStore struct {
	mock.Mock
}

func (m *MockIdempotencyStore) Remember(ctx context.Context, key, ref string, ttl time.Duration) (string, bool, error) {
	args := m.Called(ctx, key, ref, ttl)
	return args.String(0), args.Bool(1), args.Error(2)
}

func (m *MockIdempotencyStore) Lookup(ctx context.Context, key string) (string, bool, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Bool(1), args.Error(2)
}

func (m *MockIdempotencyStore) Close() error {
	args := m.Called()
	return args.Error(0)
}

var _ shared.IdempotencyStore = (*MockIdempotencyStore)(nil)

// =============================================================================
// Test Helpers
// =============================================================================

type orderServiceMocks struct {
	orderRepo    *MockOrderRepository
	historyRepo  *MockHistoryRepository
	customerRepo *MockCustomerRepository
	productRepo  *MockProductRepository
	idempotency  *MockIdempotencyStore
}

func newOrderService(withIdempotency bool) (*OrderService, orderServiceMocks) {
	m := orderServiceMocks{
		orderRepo:    new(MockOrderRepository),
		historyRepo:  new(MockHistoryRepository),
		customerRepo: new(MockCustomerRepository),
		productRepo:  new(MockProductRepository),
	}
	var store shared.IdempotencyStore
	if withIdempotency {
		m.idempotency = new(MockIdempotencyStore)
		store = m.idempotency
	}
	service := NewOrderService(m.orderRepo, m.historyRepo, m.customerRepo, m.productRepo, store, nil)
	return service, m
}

func testCustomer() *partner.Customer {
	customer, _ := partner.NewCustomer("KA560001TestShop01", "", "Test Shop")
	customer.SetAddress("12 Market Road", "Bengaluru", "Karnataka", "560001")
	return customer
}

func testProducts() map[string]*catalog.Product {
	oil, _ := catalog.NewProduct("1", "Neem Oil")
	oil.SetWeight(decimal.NewFromInt(500), "ml")
	oil.SetPricing(decimal.NewFromInt(120), decimal.NewFromInt(100))

	soap, _ := catalog.NewProduct("2", "Neem Soap")
	soap.SetWeight(decimal.NewFromInt(75), "g")
	soap.SetPricing(decimal.NewFromInt(60), decimal.NewFromInt(50))

	return map[string]*catalog.Product{"1": oil, "2": soap}
}

func testBillingInput() BillingInput {
	return BillingInput{
		OrderAmount:     decimal.NewFromInt(200),
		DeliveryCharges: decimal.NewFromInt(20),
		TotalAmount:     decimal.NewFromInt(220),
		PaymentMethod:   "cash",
		MoneyGiven:      decimal.NewFromInt(150),
		PastOrderDue:    decimal.Zero,
		PaidAmount:      decimal.NewFromInt(150),
		FinalAmount:     decimal.NewFromInt(70),
	}
}

func testCreateRequest() CreateOrderRequest {
	qtyOne := decimal.NewFromInt(1)
	qtyTwo := decimal.NewFromInt(2)
	return CreateOrderRequest{
		CustomerRef: "KA560001TestShop01",
		Items: []LineItemInput{
			{ProductRef: "1", Quantity: qtyTwo},
			{ProductRef: "2", Quantity: qtyOne},
		},
		Billing: testBillingInput(),
	}
}

func testOrder(t *testing.T) *ledger.Order {
	t.Helper()
	billing := toDomainBilling(testBillingInput())
	items := []ledger.LineItem{{
		ProductRef:  "1",
		Name:        "Neem Oil",
		Rate:        decimal.NewFromInt(100),
		Quantity:    decimal.NewFromInt(2),
		TotalAmount: decimal.NewFromInt(200),
	}}
	order, err := ledger.NewOrder(sequence.OrderRef(time.Now(), 0), snapshotCustomer(testCustomer()), items, nil, billing)
	require.NoError(t, err)
	return order
}

// =============================================================================
// OrderService Create Tests
// =============================================================================

func TestOrderService_Create_Success(t *testing.T) {
	service, m := newOrderService(false)

	ctx := context.Background()
	customer := testCustomer()
	req := testCreateRequest()
	prefix := sequence.OrderRefPrefix(time.Now())

	m.customerRepo.On("FindByRef", ctx, "KA560001TestShop01").Return(customer, nil)
	m.productRepo.On("FindByRefs", ctx, []string{"1", "2"}).Return(testProducts(), nil)
	m.orderRepo.On("CountByRefPrefix", ctx, prefix).Return(int64(0), nil)

	var created *ledger.Order
	var fanout ledger.HistoryFanout
	m.orderRepo.On("CreateWithHistory", ctx,
		mock.AnythingOfType("*ledger.Order"),
		mock.AnythingOfType("ledger.HistoryFanout"),
		customer.ID,
		decimal.NewFromInt(70),
	).Run(func(args mock.Arguments) {
		created = args.Get(1).(*ledger.Order)
		fanout = args.Get(2).(ledger.HistoryFanout)
	}).Return(nil)

	result, err := service.Create(ctx, req)

	require.NoError(t, err)
	assert.Equal(t, prefix+"1", result.Ref)
	assert.Equal(t, "created", result.Status)
	assert.Equal(t, "KA560001TestShop01", result.Customer.Ref)

	// Line items fill from the catalog when the request leaves them empty.
	require.Len(t, result.Items, 2)
	assert.Equal(t, "Neem Oil", result.Items[0].Name)
	assert.True(t, result.Items[0].Rate.Equal(decimal.NewFromInt(100)))
	assert.True(t, result.Items[0].TotalAmount.Equal(decimal.NewFromInt(200)))
	assert.Equal(t, "g", result.Items[1].Unit)

	// One history row per purchased line item in each view.
	require.NotNil(t, created)
	assert.Len(t, fanout.Customer, 2)
	assert.Len(t, fanout.Product, 2)
	assert.Equal(t, created.ID, fanout.Customer[0].OrderID)
	assert.Equal(t, "Test Shop", fanout.Product[1].ShopName)

	m.orderRepo.AssertExpectations(t)
	m.customerRepo.AssertExpectations(t)
	m.productRepo.AssertExpectations(t)
}

func TestOrderService_Create_CustomerNotFound(t *testing.T) {
	service, m := newOrderService(false)

	ctx := context.Background()
	req := testCreateRequest()

	m.customerRepo.On("FindByRef", ctx, "KA560001TestShop01").Return(nil, shared.ErrNotFound)

	result, err := service.Create(ctx, req)

	assert.Nil(t, result)
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "REFERENCE_NOT_FOUND", domainErr.Code)
	m.orderRepo.AssertNotCalled(t, "CreateWithHistory", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestOrderService_Create_UnknownProductFailsFast(t *testing.T) {
	service, m := newOrderService(false)

	ctx := context.Background()
	req := testCreateRequest()
	products := testProducts()
	delete(products, "2")

	m.customerRepo.On("FindByRef", ctx, "KA560001TestShop01").Return(testCustomer(), nil)
	m.productRepo.On("FindByRefs", ctx, []string{"1", "2"}).Return(products, nil)

	result, err := service.Create(ctx, req)

	assert.Nil(t, result)
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "REFERENCE_NOT_FOUND", domainErr.Code)
	// No partial fan-out: nothing was written.
	m.orderRepo.AssertNotCalled(t, "CreateWithHistory", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestOrderService_Create_BillingMismatchRejected(t *testing.T) {
	service, m := newOrderService(false)

	ctx := context.Background()
	req := testCreateRequest()
	req.Billing.FinalAmount = decimal.NewFromInt(99)

	m.customerRepo.On("FindByRef", ctx, "KA560001TestShop01").Return(testCustomer(), nil)
	m.productRepo.On("FindByRefs", ctx, []string{"1", "2"}).Return(testProducts(), nil)

	result, err := service.Create(ctx, req)

	assert.Nil(t, result)
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "BILLING_MISMATCH", domainErr.Code)
	m.orderRepo.AssertNotCalled(t, "CreateWithHistory", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestOrderService_Create_RetriesOnRefConflict(t *testing.T) {
	service, m := newOrderService(false)

	ctx := context.Background()
	req := testCreateRequest()
	prefix := sequence.OrderRefPrefix(time.Now())

	m.customerRepo.On("FindByRef", ctx, "KA560001TestShop01").Return(testCustomer(), nil)
	m.productRepo.On("FindByRefs", ctx, []string{"1", "2"}).Return(testProducts(), nil)

	// A racing creation takes ref N+1 between the count and the insert.
	m.orderRepo.On("CountByRefPrefix", ctx, prefix).Return(int64(4), nil).Once()
	m.orderRepo.On("CreateWithHistory", ctx, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(shared.ErrAlreadyExists).Once()
	m.orderRepo.On("CountByRefPrefix", ctx, prefix).Return(int64(5), nil).Once()
	m.orderRepo.On("CreateWithHistory", ctx, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(nil).Once()

	result, err := service.Create(ctx, req)

	require.NoError(t, err)
	assert.Equal(t, prefix+"6", result.Ref)
	m.orderRepo.AssertExpectations(t)
}

func TestOrderService_Create_ExhaustsAllocationAttempts(t *testing.T) {
	service, m := newOrderService(false)

	ctx := context.Background()
	req := testCreateRequest()

	m.customerRepo.On("FindByRef", ctx, "KA560001TestShop01").Return(testCustomer(), nil)
	m.productRepo.On("FindByRefs", ctx, []string{"1", "2"}).Return(testProducts(), nil)
	m.orderRepo.On("CountByRefPrefix", ctx, mock.AnythingOfType("string")).Return(int64(0), nil).Times(5)
	m.orderRepo.On("CreateWithHistory", ctx, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(shared.ErrAlreadyExists).Times(5)

	result, err := service.Create(ctx, req)

	assert.Nil(t, result)
	assert.ErrorIs(t, err, shared.ErrConcurrencyConflict)
	m.orderRepo.AssertExpectations(t)
}

func TestOrderService_Create_IdempotentReplay(t *testing.T) {
	service, m := newOrderService(true)

	ctx := context.Background()
	req := testCreateRequest()
	req.IdempotencyKey = "req-42"
	existing := testOrder(t)

	m.idempotency.On("Lookup", ctx, "req-42").Return(existing.Ref, true, nil)
	m.orderRepo.On("FindByRef", ctx, existing.Ref).Return(existing, nil)

	result, err := service.Create(ctx, req)

	require.NoError(t, err)
	assert.Equal(t, existing.Ref, result.Ref)
	// The replay never reaches allocation or the write path.
	m.orderRepo.AssertNotCalled(t, "CountByRefPrefix", mock.Anything, mock.Anything)
	m.orderRepo.AssertNotCalled(t, "CreateWithHistory", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	m.idempotency.AssertExpectations(t)
}

func TestOrderService_Create_RemembersIdempotencyKey(t *testing.T) {
	service, m := newOrderService(true)

	ctx := context.Background()
	req := testCreateRequest()
	req.IdempotencyKey = "req-42"
	prefix := sequence.OrderRefPrefix(time.Now())

	m.idempotency.On("Lookup", ctx, "req-42").Return("", false, nil)
	m.customerRepo.On("FindByRef", ctx, "KA560001TestShop01").Return(testCustomer(), nil)
	m.productRepo.On("FindByRefs", ctx, []string{"1", "2"}).Return(testProducts(), nil)
	m.orderRepo.On("CountByRefPrefix", ctx, prefix).Return(int64(0), nil)
	m.orderRepo.On("CreateWithHistory", ctx, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)
	m.idempotency.On("Remember", ctx, "req-42", prefix+"1", shared.DefaultIdempotencyTTL).
		Return(prefix+"1", true, nil)

	result, err := service.Create(ctx, req)

	require.NoError(t, err)
	assert.Equal(t, prefix+"1", result.Ref)
	m.idempotency.AssertExpectations(t)
}

// =============================================================================
// OrderService Update / Delete Tests
// =============================================================================

func TestOrderService_Update_AmendsBilling(t *testing.T) {
	service, m := newOrderService(false)

	ctx := context.Background()
	order := testOrder(t)
	orderID := order.ID

	newBilling := testBillingInput()
	newBilling.MoneyGiven = decimal.NewFromInt(220)
	newBilling.PaidAmount = decimal.NewFromInt(220)
	newBilling.FinalAmount = decimal.Zero

	m.orderRepo.On("FindByID", ctx, orderID).Return(order, nil)
	m.orderRepo.On("Update", ctx, mock.AnythingOfType("*ledger.Order")).Return(nil)

	result, err := service.Update(ctx, orderID, UpdateOrderRequest{Billing: &newBilling})

	require.NoError(t, err)
	assert.Equal(t, "amended", result.Status)
	assert.True(t, result.Billing.FinalAmount.IsZero())
	// Amendments never touch the customer's dues cache.
	m.customerRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	m.orderRepo.AssertExpectations(t)
}

func TestOrderService_Update_BillingMismatchRejected(t *testing.T) {
	service, m := newOrderService(false)

	ctx := context.Background()
	order := testOrder(t)

	badBilling := testBillingInput()
	badBilling.FinalAmount = decimal.NewFromInt(1)

	m.orderRepo.On("FindByID", ctx, order.ID).Return(order, nil)

	result, err := service.Update(ctx, order.ID, UpdateOrderRequest{Billing: &badBilling})

	assert.Nil(t, result)
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "BILLING_MISMATCH", domainErr.Code)
	m.orderRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestOrderService_Update_ReplacesItems(t *testing.T) {
	service, m := newOrderService(false)

	ctx := context.Background()
	order := testOrder(t)

	m.orderRepo.On("FindByID", ctx, order.ID).Return(order, nil)
	m.productRepo.On("FindByRefs", ctx, []string{"2"}).Return(testProducts(), nil)
	m.orderRepo.On("Update", ctx, mock.AnythingOfType("*ledger.Order")).Return(nil)

	qty := decimal.NewFromInt(3)
	result, err := service.Update(ctx, order.ID, UpdateOrderRequest{
		Items: []LineItemInput{{ProductRef: "2", Quantity: qty}},
	})

	require.NoError(t, err)
	require.Len(t, result.Items, 1)
	assert.Equal(t, "Neem Soap", result.Items[0].Name)
	assert.True(t, result.Items[0].TotalAmount.Equal(decimal.NewFromInt(150)))
	m.orderRepo.AssertExpectations(t)
}

func TestOrderService_Delete_Delegates(t *testing.T) {
	service, m := newOrderService(false)

	ctx := context.Background()
	orderID := uuid.New()

	m.orderRepo.On("DeleteWithHistory", ctx, orderID).Return(nil)

	assert.NoError(t, service.Delete(ctx, orderID))
	m.orderRepo.AssertExpectations(t)
}

// =============================================================================
// Listing / History Tests
// =============================================================================

func TestOrderService_List_Projection(t *testing.T) {
	service, m := newOrderService(false)

	ctx := context.Background()
	order := testOrder(t)
	page := shared.NewPaginated([]ledger.Order{*order}, 1, 1, 20)

	m.orderRepo.On("FindAll", ctx, mock.AnythingOfType("shared.Filter")).Return(page, nil)

	result, err := service.List(ctx, OrderListFilter{})

	require.NoError(t, err)
	require.Len(t, result.Items, 1)
	row := result.Items[0]
	assert.Equal(t, order.Ref, row.Ref)
	assert.Equal(t, "Test Shop", row.ShopName)
	assert.Equal(t, []string{"Neem Oil"}, row.ItemNames)
	assert.True(t, row.FinalAmount.Equal(decimal.NewFromInt(70)))
	m.orderRepo.AssertExpectations(t)
}

func TestOrderService_CustomerHistory_JoinsBilling(t *testing.T) {
	service, m := newOrderService(false)

	ctx := context.Background()
	order := testOrder(t)

	rows := []ledger.CustomerPurchaseHistory{{
		BaseEntity:  shared.NewBaseEntity(),
		OrderID:     order.ID,
		OrderRef:    order.Ref,
		CustomerID:  order.Customer.CustomerID,
		CustomerRef: order.Customer.Ref,
		ShopName:    order.Customer.ShopName,
		ProductRef:  "1",
		ProductName: "Neem Oil",
	}}
	page := shared.NewPaginated(rows, 1, 1, 20)

	m.historyRepo.On("FindByCustomer", ctx, order.Customer.Ref, mock.AnythingOfType("shared.Filter")).Return(page, nil)
	m.orderRepo.On("FindByRefs", ctx, []string{order.Ref}).
		Return(map[string]*ledger.Order{order.Ref: order}, nil)

	result, err := service.CustomerHistory(ctx, order.Customer.Ref, HistoryListFilter{})

	require.NoError(t, err)
	require.Len(t, result.Items, 1)
	entry := result.Items[0]
	assert.Equal(t, order.Ref, entry.OrderRef)
	assert.True(t, entry.OrderAmount.Equal(decimal.NewFromInt(200)))
	assert.True(t, entry.FinalAmount.Equal(decimal.NewFromInt(70)))
	m.historyRepo.AssertExpectations(t)
	m.orderRepo.AssertExpectations(t)
}

func TestOrderService_ProductHistory_OrphanRowKeepsZeroAmounts(t *testing.T) {
	service, m := newOrderService(false)

	ctx := context.Background()
	rows := []ledger.ProductPurchaseHistory{{
		BaseEntity:  shared.NewBaseEntity(),
		OrderID:     uuid.New(),
		OrderRef:    "01012024OR9",
		ProductRef:  "1",
		ProductName: "Neem Oil",
		CustomerRef: "KA560001TestShop01",
	}}
	page := shared.NewPaginated(rows, 1, 1, 20)

	m.historyRepo.On("FindByProduct", ctx, "1", mock.AnythingOfType("shared.Filter")).Return(page, nil)
	m.orderRepo.On("FindByRefs", ctx, []string{"01012024OR9"}).
		Return(map[string]*ledger.Order{}, nil)

	result, err := service.ProductHistory(ctx, "1", HistoryListFilter{})

	require.NoError(t, err)
	require.Len(t, result.Items, 1)
	assert.True(t, result.Items[0].OrderAmount.IsZero())
	assert.True(t, result.Items[0].FinalAmount.IsZero())
	m.historyRepo.AssertExpectations(t)
}
