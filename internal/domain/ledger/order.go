package ledger

import (
	"time"

	"github.com/backoffice/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderStatus represents the lifecycle state of an order
type OrderStatus string

const (
	OrderStatusCreated OrderStatus = "created"
	OrderStatusAmended OrderStatus = "amended"
)

// CanTransitionTo checks whether a status transition is allowed
func (s OrderStatus) CanTransitionTo(target OrderStatus) bool {
	switch s {
	case OrderStatusCreated:
		return target == OrderStatusAmended
	case OrderStatusAmended:
		return target == OrderStatusAmended
	default:
		return false
	}
}

// Contact mirrors the customer's contact pair inside the order snapshot
type Contact struct {
	Phone    string `json:"phone"`
	Whatsapp string `json:"whatsapp"`
}

// Comment is an append-only timestamped note on the order
type Comment struct {
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

// CustomerSnapshot captures the purchasing customer at order time. It is a
// copy, not a live reference; later customer edits never change it.
type CustomerSnapshot struct {
	CustomerID uuid.UUID       `json:"customer_id"`
	Ref        string          `json:"ref"`
	Name       string          `json:"name"`
	ShopName   string          `json:"shop_name"`
	Address    string          `json:"address"`
	Town       string          `json:"town"`
	State      string          `json:"state"`
	Pincode    string          `json:"pincode"`
	Contacts   []Contact       `json:"contacts"`
	Dues       decimal.Decimal `json:"dues"`
}

// LineItem is one purchased (or free) product line
type LineItem struct {
	ProductRef  string          `json:"product_ref"`
	Name        string          `json:"name"`
	Weight      decimal.Decimal `json:"weight"`
	Unit        string          `json:"unit"`
	Rate        decimal.Decimal `json:"rate"`
	Quantity    decimal.Decimal `json:"quantity"`
	TotalAmount decimal.Decimal `json:"total_amount"`
}

// Billing is the order's money block. FinalAmount is the figure carried into
// the customer's dues cache.
type Billing struct {
	OrderWeight     decimal.Decimal `json:"order_weight"`
	OrderAmount     decimal.Decimal `json:"order_amount"`
	DeliveryCharges decimal.Decimal `json:"delivery_charges"`
	TotalAmount     decimal.Decimal `json:"total_amount"`
	PaymentMethod   string          `json:"payment_method"`
	MoneyGiven      decimal.Decimal `json:"money_given"`
	PastOrderDue    decimal.Decimal `json:"past_order_due"`
	PaidAmount      decimal.Decimal `json:"paid_amount"`
	FinalAmount     decimal.Decimal `json:"final_amount"`
}

// ExpectedFinalAmount recomputes the outstanding figure from the billing
// inputs: order amount plus delivery charges plus the due carried forward,
// minus the money received.
func (b Billing) ExpectedFinalAmount() decimal.Decimal {
	return b.OrderAmount.
		Add(b.DeliveryCharges).
		Add(b.PastOrderDue).
		Sub(b.MoneyGiven)
}

// Reconcile verifies the submitted final amount against the recomputed one
func (b Billing) Reconcile() error {
	if !b.FinalAmount.Equal(b.ExpectedFinalAmount()) {
		return shared.NewDomainError("BILLING_MISMATCH",
			"Final amount does not match order amount + delivery charges + past due - money given")
	}
	return nil
}

// Order is the ledger aggregate root. Ref and CreatedAt are fixed once
// assigned; line items and billing may be amended.
type Order struct {
	shared.BaseAggregateRoot
	Ref             string           `gorm:"type:varchar(30);not null;uniqueIndex"`
	Status          OrderStatus      `gorm:"type:varchar(20);not null;default:'created'"`
	Customer        CustomerSnapshot `gorm:"type:jsonb;serializer:json"`
	Items           []LineItem       `gorm:"type:jsonb;serializer:json"`
	FreeItems       []LineItem       `gorm:"type:jsonb;serializer:json"`
	HasFreeProducts bool             `gorm:"not null;default:false"`
	Billing         Billing          `gorm:"type:jsonb;serializer:json"`
	Comments        []Comment        `gorm:"type:jsonb;serializer:json"`
}

// TableName returns the table name for GORM
func (Order) TableName() string {
	return "orders"
}

// NewOrder assembles an order from an allocated reference, a customer
// snapshot, validated line items, and a reconciled billing block.
func NewOrder(ref string, customer CustomerSnapshot, items, freeItems []LineItem, billing Billing) (*Order, error) {
	if ref == "" {
		return nil, shared.NewDomainError("INVALID_REF", "Order reference cannot be empty")
	}
	if len(items) == 0 {
		return nil, shared.NewDomainError("EMPTY_ORDER", "Order needs at least one line item")
	}
	if err := billing.Reconcile(); err != nil {
		return nil, err
	}

	if freeItems == nil {
		freeItems = []LineItem{}
	}

	return &Order{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Ref:               ref,
		Status:            OrderStatusCreated,
		Customer:          customer,
		Items:             items,
		FreeItems:         freeItems,
		HasFreeProducts:   len(freeItems) > 0,
		Billing:           billing,
		Comments:          []Comment{},
	}, nil
}

// Amend replaces the order's writable fields. Identity and creation time are
// never part of the writable set.
func (o *Order) Amend(items, freeItems []LineItem, billing *Billing) error {
	if !o.Status.CanTransitionTo(OrderStatusAmended) {
		return shared.ErrInvalidState
	}
	if items != nil {
		if len(items) == 0 {
			return shared.NewDomainError("EMPTY_ORDER", "Order needs at least one line item")
		}
		o.Items = items
	}
	if freeItems != nil {
		o.FreeItems = freeItems
		o.HasFreeProducts = len(freeItems) > 0
	}
	if billing != nil {
		if err := billing.Reconcile(); err != nil {
			return err
		}
		o.Billing = *billing
	}

	o.Status = OrderStatusAmended
	o.Touch()
	o.IncrementVersion()
	return nil
}

// AppendComments appends timestamped notes to the order
func (o *Order) AppendComments(texts []string) {
	now := time.Now()
	for _, text := range texts {
		if text == "" {
			continue
		}
		o.Comments = append(o.Comments, Comment{Text: text, CreatedAt: now})
	}
	o.Touch()
	o.IncrementVersion()
}

// AllItems returns purchased and free items in one slice
func (o *Order) AllItems() []LineItem {
	all := make([]LineItem, 0, len(o.Items)+len(o.FreeItems))
	all = append(all, o.Items...)
	all = append(all, o.FreeItems...)
	return all
}
