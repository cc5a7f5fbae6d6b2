package ledger

import (
	"github.com/backoffice/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// CustomerPurchaseHistory is the customer-view denormalized fact "customer X
// bought product Y in order Z". Derived data: the backing order wins on any
// disagreement. Entries exist only through order creation and deletion.
type CustomerPurchaseHistory struct {
	shared.BaseEntity
	OrderID     uuid.UUID `gorm:"type:uuid;not null;index"`
	OrderRef    string    `gorm:"type:varchar(30);not null;index"`
	CustomerID  uuid.UUID `gorm:"type:uuid;not null;index"`
	CustomerRef string    `gorm:"type:varchar(120);not null;index"`
	ShopName    string    `gorm:"type:varchar(200)"`
	ProductID   uuid.UUID `gorm:"type:uuid;not null"`
	ProductRef  string    `gorm:"type:varchar(20);not null"`
	ProductName string    `gorm:"type:varchar(200)"`
}

// TableName returns the table name for GORM
func (CustomerPurchaseHistory) TableName() string {
	return "customer_purchase_history"
}

// ProductPurchaseHistory is the product-view twin of CustomerPurchaseHistory
type ProductPurchaseHistory struct {
	shared.BaseEntity
	OrderID     uuid.UUID `gorm:"type:uuid;not null;index"`
	OrderRef    string    `gorm:"type:varchar(30);not null;index"`
	ProductID   uuid.UUID `gorm:"type:uuid;not null;index"`
	ProductRef  string    `gorm:"type:varchar(20);not null;index"`
	ProductName string    `gorm:"type:varchar(200)"`
	CustomerID  uuid.UUID `gorm:"type:uuid;not null"`
	CustomerRef string    `gorm:"type:varchar(120);not null"`
	ShopName    string    `gorm:"type:varchar(200)"`
}

// TableName returns the table name for GORM
func (ProductPurchaseHistory) TableName() string {
	return "product_purchase_history"
}

// HistoryFanout holds the per-line-item entries written in lockstep with an
// order. Exactly one entry per table per purchased line item.
type HistoryFanout struct {
	Customer []CustomerPurchaseHistory
	Product  []ProductPurchaseHistory
}

// ResolvedProduct carries the internal key of a product resolved by its
// external reference during order creation.
type ResolvedProduct struct {
	ID   uuid.UUID
	Ref  string
	Name string
}

// BuildHistoryFanout derives both history views from an order and its
// resolved products. All purchased items must already be resolved; free items
// do not fan out.
func BuildHistoryFanout(order *Order, resolved map[string]ResolvedProduct) (HistoryFanout, error) {
	fanout := HistoryFanout{
		Customer: make([]CustomerPurchaseHistory, 0, len(order.Items)),
		Product:  make([]ProductPurchaseHistory, 0, len(order.Items)),
	}

	for _, item := range order.Items {
		product, ok := resolved[item.ProductRef]
		if !ok {
			return HistoryFanout{}, shared.NewDomainError("REFERENCE_NOT_FOUND",
				"Product "+item.ProductRef+" was not resolved")
		}

		fanout.Customer = append(fanout.Customer, CustomerPurchaseHistory{
			BaseEntity:  shared.NewBaseEntity(),
			OrderID:     order.ID,
			OrderRef:    order.Ref,
			CustomerID:  order.Customer.CustomerID,
			CustomerRef: order.Customer.Ref,
			ShopName:    order.Customer.ShopName,
			ProductID:   product.ID,
			ProductRef:  product.Ref,
			ProductName: product.Name,
		})
		fanout.Product = append(fanout.Product, ProductPurchaseHistory{
			BaseEntity:  shared.NewBaseEntity(),
			OrderID:     order.ID,
			OrderRef:    order.Ref,
			ProductID:   product.ID,
			ProductRef:  product.Ref,
			ProductName: product.Name,
			CustomerID:  order.Customer.CustomerID,
			CustomerRef: order.Customer.Ref,
			ShopName:    order.Customer.ShopName,
		})
	}

	return fanout, nil
}
