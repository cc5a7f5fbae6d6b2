package persistence

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/backoffice/backend/internal/domain/catalog"
	"github.com/backoffice/backend/internal/domain/ledger"
	"github.com/backoffice/backend/internal/domain/partner"
	"github.com/backoffice/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	// A named in-memory database keeps all pooled connections on the same
	// store while isolating tests from each other.
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&partner.Customer{},
		&catalog.Product{},
		&ledger.Order{},
		&ledger.CustomerPurchaseHistory{},
		&ledger.ProductPurchaseHistory{},
	))

	t.Cleanup(func() {
		sqlDB, err := db.DB()
		if err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func mustCustomer(t *testing.T, ref string) *partner.Customer {
	t.Helper()
	customer, err := partner.NewCustomer(ref, "Test Shop", "Test Shop")
	require.NoError(t, err)
	customer.SetAddress("12 Main Road", "Bangalore", "Karnataka", "560001")
	return customer
}

func mustProduct(t *testing.T, ref, name string) *catalog.Product {
	t.Helper()
	product, err := catalog.NewProduct(ref, name)
	require.NoError(t, err)
	return product
}

func mustOrder(t *testing.T, ref string, customer *partner.Customer, items []ledger.LineItem, billing ledger.Billing) *ledger.Order {
	t.Helper()
	snapshot := ledger.CustomerSnapshot{
		CustomerID: customer.ID,
		Ref:        customer.Ref,
		Name:       customer.Name,
		ShopName:   customer.ShopName,
		Address:    customer.Address,
		Town:       customer.Town,
		State:      customer.State,
		Pincode:    customer.Pincode,
		Dues:       customer.Dues,
	}
	order, err := ledger.NewOrder(ref, snapshot, items, nil, billing)
	require.NoError(t, err)
	return order
}

func sampleItems() []ledger.LineItem {
	return []ledger.LineItem{
		{ProductRef: "1", Name: "Washing Powder", Rate: decimal.NewFromInt(100), Quantity: decimal.NewFromInt(2), TotalAmount: decimal.NewFromInt(200)},
		{ProductRef: "2", Name: "Dish Soap", Rate: decimal.NewFromInt(50), Quantity: decimal.NewFromInt(1), TotalAmount: decimal.NewFromInt(50)},
	}
}

func sampleBilling() ledger.Billing {
	return ledger.Billing{
		OrderAmount:     decimal.NewFromInt(250),
		DeliveryCharges: decimal.NewFromInt(20),
		TotalAmount:     decimal.NewFromInt(270),
		PaymentMethod:   "cash",
		MoneyGiven:      decimal.NewFromInt(200),
		PastOrderDue:    decimal.Zero,
		PaidAmount:      decimal.NewFromInt(200),
		FinalAmount:     decimal.NewFromInt(70),
	}
}

func TestCustomerRepositorySaveAndFind(t *testing.T) {
	db := newTestDB(t)
	repo := NewGormCustomerRepository(db)
	ctx := context.Background()

	customer := mustCustomer(t, "KA560001TestShop01")
	require.NoError(t, repo.Save(ctx, customer))

	found, err := repo.FindByRef(ctx, "KA560001TestShop01")
	require.NoError(t, err)
	assert.Equal(t, customer.ID, found.ID)
	assert.Equal(t, "Test Shop", found.ShopName)
	assert.Equal(t, "560001", found.Pincode)

	_, err = repo.FindByRef(ctx, "missing")
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestCustomerRepositoryDuplicateRef(t *testing.T) {
	db := newTestDB(t)
	repo := NewGormCustomerRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, mustCustomer(t, "KA560001TestShop01")))
	err := repo.Save(ctx, mustCustomer(t, "KA560001TestShop01"))
	assert.ErrorIs(t, err, shared.ErrAlreadyExists)
}

func TestCustomerRepositoryCountByRefPrefix(t *testing.T) {
	db := newTestDB(t)
	repo := NewGormCustomerRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, mustCustomer(t, "KA560001TestShop01")))
	require.NoError(t, repo.Save(ctx, mustCustomer(t, "KA560001TestShop02")))
	require.NoError(t, repo.Save(ctx, mustCustomer(t, "MH411001OtherShop01")))

	count, err := repo.CountByRefPrefix(ctx, "KA560001TestShop")
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}

func TestCustomerRepositoryUpdateAndDelete(t *testing.T) {
	db := newTestDB(t)
	repo := NewGormCustomerRepository(db)
	ctx := context.Background()

	customer := mustCustomer(t, "KA560001TestShop01")
	require.NoError(t, repo.Save(ctx, customer))

	customer.SetDues(decimal.NewFromInt(150))
	require.NoError(t, repo.Update(ctx, customer))

	found, err := repo.FindByID(ctx, customer.ID)
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(150).Equal(found.Dues))

	require.NoError(t, repo.Delete(ctx, customer.ID))
	assert.ErrorIs(t, repo.Delete(ctx, customer.ID), shared.ErrNotFound)
}

func TestCustomerRepositorySearch(t *testing.T) {
	db := newTestDB(t)
	repo := NewGormCustomerRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, mustCustomer(t, "KA560001TestShop01")))

	page, err := repo.Search(ctx, "test shop", shared.DefaultFilter())
	require.NoError(t, err)
	assert.Equal(t, int64(1), page.Total)

	page, err = repo.Search(ctx, "560001", shared.DefaultFilter())
	require.NoError(t, err)
	assert.Equal(t, int64(1), page.Total)

	page, err = repo.Search(ctx, "nowhere", shared.DefaultFilter())
	require.NoError(t, err)
	assert.Zero(t, page.Total)
}

func TestProductRepositoryMaxNumericRef(t *testing.T) {
	db := newTestDB(t)
	repo := NewGormProductRepository(db)
	ctx := context.Background()

	highest, err := repo.MaxNumericRef(ctx)
	require.NoError(t, err)
	assert.Zero(t, highest)

	require.NoError(t, repo.Save(ctx, mustProduct(t, "1", "Washing Powder")))
	require.NoError(t, repo.Save(ctx, mustProduct(t, "2", "Dish Soap")))
	require.NoError(t, repo.Save(ctx, mustProduct(t, "10", "Floor Cleaner")))

	highest, err = repo.MaxNumericRef(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(10), highest)

	// Deleting the highest does not make its ref available again.
	ten, err := repo.FindByRef(ctx, "10")
	require.NoError(t, err)
	require.NoError(t, repo.Delete(ctx, ten.ID))

	highest, err = repo.MaxNumericRef(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), highest)
}

func TestProductRepositoryFindByRefs(t *testing.T) {
	db := newTestDB(t)
	repo := NewGormProductRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, mustProduct(t, "1", "Washing Powder")))
	require.NoError(t, repo.Save(ctx, mustProduct(t, "2", "Dish Soap")))

	resolved, err := repo.FindByRefs(ctx, []string{"1", "2", "99"})
	require.NoError(t, err)
	assert.Len(t, resolved, 2)
	assert.Contains(t, resolved, "1")
	assert.Contains(t, resolved, "2")
	assert.NotContains(t, resolved, "99")
}

func TestOrderRepositoryCreateWithHistory(t *testing.T) {
	db := newTestDB(t)
	customers := NewGormCustomerRepository(db)
	orders := NewGormOrderRepository(db)
	history := NewGormHistoryRepository(db)
	ctx := context.Background()

	customer := mustCustomer(t, "KA560001TestShop01")
	require.NoError(t, customers.Save(ctx, customer))

	order := mustOrder(t, "05032024OR1", customer, sampleItems(), sampleBilling())
	resolved := map[string]ledger.ResolvedProduct{
		"1": {ID: mustProduct(t, "1", "Washing Powder").ID, Ref: "1", Name: "Washing Powder"},
		"2": {ID: mustProduct(t, "2", "Dish Soap").ID, Ref: "2", Name: "Dish Soap"},
	}
	fanout, err := ledger.BuildHistoryFanout(order, resolved)
	require.NoError(t, err)

	require.NoError(t, orders.CreateWithHistory(ctx, order, fanout, customer.ID, order.Billing.FinalAmount))

	// One history row per line item in each view.
	customerCount, productCount, err := history.CountByOrder(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), customerCount)
	assert.Equal(t, int64(2), productCount)

	// Dues cache replaced with the order's final amount.
	updated, err := customers.FindByID(ctx, customer.ID)
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(70).Equal(updated.Dues))
}

func TestOrderRepositoryDuplicateRefRollsBack(t *testing.T) {
	db := newTestDB(t)
	customers := NewGormCustomerRepository(db)
	orders := NewGormOrderRepository(db)
	history := NewGormHistoryRepository(db)
	ctx := context.Background()

	customer := mustCustomer(t, "KA560001TestShop01")
	require.NoError(t, customers.Save(ctx, customer))

	first := mustOrder(t, "05032024OR1", customer, sampleItems(), sampleBilling())
	fanout, err := ledger.BuildHistoryFanout(first, map[string]ledger.ResolvedProduct{
		"1": {Ref: "1", Name: "Washing Powder"},
		"2": {Ref: "2", Name: "Dish Soap"},
	})
	require.NoError(t, err)
	require.NoError(t, orders.CreateWithHistory(ctx, first, fanout, customer.ID, first.Billing.FinalAmount))

	// Same ref again: the whole transaction must roll back.
	second := mustOrder(t, "05032024OR1", customer, sampleItems(), sampleBilling())
	secondFanout, err := ledger.BuildHistoryFanout(second, map[string]ledger.ResolvedProduct{
		"1": {Ref: "1", Name: "Washing Powder"},
		"2": {Ref: "2", Name: "Dish Soap"},
	})
	require.NoError(t, err)

	err = orders.CreateWithHistory(ctx, second, secondFanout, customer.ID, second.Billing.FinalAmount)
	assert.ErrorIs(t, err, shared.ErrAlreadyExists)

	customerCount, productCount, err := history.CountByOrder(ctx, second.ID)
	require.NoError(t, err)
	assert.Zero(t, customerCount)
	assert.Zero(t, productCount)
}

func TestOrderRepositoryDeleteWithHistory(t *testing.T) {
	db := newTestDB(t)
	customers := NewGormCustomerRepository(db)
	orders := NewGormOrderRepository(db)
	history := NewGormHistoryRepository(db)
	ctx := context.Background()

	customer := mustCustomer(t, "KA560001TestShop01")
	require.NoError(t, customers.Save(ctx, customer))

	order := mustOrder(t, "05032024OR1", customer, sampleItems(), sampleBilling())
	fanout, err := ledger.BuildHistoryFanout(order, map[string]ledger.ResolvedProduct{
		"1": {Ref: "1", Name: "Washing Powder"},
		"2": {Ref: "2", Name: "Dish Soap"},
	})
	require.NoError(t, err)
	require.NoError(t, orders.CreateWithHistory(ctx, order, fanout, customer.ID, order.Billing.FinalAmount))

	require.NoError(t, orders.DeleteWithHistory(ctx, order.ID))

	_, err = orders.FindByRef(ctx, "05032024OR1")
	assert.ErrorIs(t, err, shared.ErrNotFound)

	customerCount, productCount, err := history.CountByOrder(ctx, order.ID)
	require.NoError(t, err)
	assert.Zero(t, customerCount)
	assert.Zero(t, productCount)

	assert.ErrorIs(t, orders.DeleteWithHistory(ctx, order.ID), shared.ErrNotFound)
}

func TestOrderRepositoryCountByRefPrefix(t *testing.T) {
	db := newTestDB(t)
	customers := NewGormCustomerRepository(db)
	orders := NewGormOrderRepository(db)
	ctx := context.Background()

	customer := mustCustomer(t, "KA560001TestShop01")
	require.NoError(t, customers.Save(ctx, customer))

	for _, ref := range []string{"05032024OR1", "05032024OR2", "06032024OR1"} {
		order := mustOrder(t, ref, customer, sampleItems(), sampleBilling())
		fanout, err := ledger.BuildHistoryFanout(order, map[string]ledger.ResolvedProduct{
			"1": {Ref: "1", Name: "Washing Powder"},
			"2": {Ref: "2", Name: "Dish Soap"},
		})
		require.NoError(t, err)
		require.NoError(t, orders.CreateWithHistory(ctx, order, fanout, customer.ID, order.Billing.FinalAmount))
	}

	count, err := orders.CountByRefPrefix(ctx, "05032024OR")
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}

func TestOrderRepositorySearchTextAndNumeric(t *testing.T) {
	db := newTestDB(t)
	customers := NewGormCustomerRepository(db)
	orders := NewGormOrderRepository(db)
	ctx := context.Background()

	customer := mustCustomer(t, "KA560001TestShop01")
	require.NoError(t, customers.Save(ctx, customer))

	first := mustOrder(t, "05032024OR1", customer, sampleItems(), sampleBilling())
	fanout, err := ledger.BuildHistoryFanout(first, map[string]ledger.ResolvedProduct{
		"1": {Ref: "1", Name: "Washing Powder"},
		"2": {Ref: "2", Name: "Dish Soap"},
	})
	require.NoError(t, err)
	require.NoError(t, orders.CreateWithHistory(ctx, first, fanout, customer.ID, first.Billing.FinalAmount))

	second := mustOrder(t, "05032024OR2", customer,
		[]ledger.LineItem{{ProductRef: "3", Name: "Neem Oil", Rate: decimal.NewFromInt(333), Quantity: decimal.NewFromInt(3), TotalAmount: decimal.NewFromInt(999)}},
		ledger.Billing{
			OrderAmount: decimal.NewFromInt(999),
			TotalAmount: decimal.NewFromInt(999),
			MoneyGiven:  decimal.NewFromInt(999),
			PaidAmount:  decimal.NewFromInt(999),
			FinalAmount: decimal.Zero,
		})
	fanout, err = ledger.BuildHistoryFanout(second, map[string]ledger.ResolvedProduct{
		"3": {Ref: "3", Name: "Neem Oil"},
	})
	require.NoError(t, err)
	require.NoError(t, orders.CreateWithHistory(ctx, second, fanout, customer.ID, second.Billing.FinalAmount))

	// Text queries match item names case-insensitively.
	page, err := orders.Search(ctx, "neem", shared.DefaultFilter())
	require.NoError(t, err)
	require.Equal(t, int64(1), page.Total)
	assert.Equal(t, "05032024OR2", page.Items[0].Ref)

	// A numeric query also matches billing amounts.
	page, err = orders.Search(ctx, "70", shared.DefaultFilter())
	require.NoError(t, err)
	require.Equal(t, int64(1), page.Total)
	assert.Equal(t, "05032024OR1", page.Items[0].Ref)
}

func TestOrderRepositoryRoundTrip(t *testing.T) {
	db := newTestDB(t)
	customers := NewGormCustomerRepository(db)
	orders := NewGormOrderRepository(db)
	ctx := context.Background()

	customer := mustCustomer(t, "KA560001TestShop01")
	require.NoError(t, customers.Save(ctx, customer))

	order := mustOrder(t, "05032024OR1", customer, sampleItems(), sampleBilling())
	fanout, err := ledger.BuildHistoryFanout(order, map[string]ledger.ResolvedProduct{
		"1": {Ref: "1", Name: "Washing Powder"},
		"2": {Ref: "2", Name: "Dish Soap"},
	})
	require.NoError(t, err)
	require.NoError(t, orders.CreateWithHistory(ctx, order, fanout, customer.ID, order.Billing.FinalAmount))

	found, err := orders.FindByRef(ctx, "05032024OR1")
	require.NoError(t, err)

	// Items and billing survive the JSON round trip.
	require.Len(t, found.Items, 2)
	assert.Equal(t, "Washing Powder", found.Items[0].Name)
	assert.True(t, decimal.NewFromInt(200).Equal(found.Items[0].TotalAmount))
	assert.True(t, decimal.NewFromInt(70).Equal(found.Billing.FinalAmount))
	assert.Equal(t, customer.Ref, found.Customer.Ref)
}

func TestHistoryRepositoryDeleteByCustomer(t *testing.T) {
	db := newTestDB(t)
	customers := NewGormCustomerRepository(db)
	orders := NewGormOrderRepository(db)
	history := NewGormHistoryRepository(db)
	ctx := context.Background()

	customer := mustCustomer(t, "KA560001TestShop01")
	require.NoError(t, customers.Save(ctx, customer))

	order := mustOrder(t, "05032024OR1", customer, sampleItems(), sampleBilling())
	fanout, err := ledger.BuildHistoryFanout(order, map[string]ledger.ResolvedProduct{
		"1": {Ref: "1", Name: "Washing Powder"},
		"2": {Ref: "2", Name: "Dish Soap"},
	})
	require.NoError(t, err)
	require.NoError(t, orders.CreateWithHistory(ctx, order, fanout, customer.ID, order.Billing.FinalAmount))

	require.NoError(t, history.DeleteByCustomer(ctx, customer.ID))

	page, err := history.FindByCustomer(ctx, customer.Ref, shared.DefaultFilter())
	require.NoError(t, err)
	assert.Zero(t, page.Total)
}
