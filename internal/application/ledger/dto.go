package ledger

import (
	"time"

	"github.com/backoffice/backend/internal/domain/catalog"
	"github.com/backoffice/backend/internal/domain/ledger"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// =============================================================================
// Order DTOs
// =============================================================================

// LineItemInput is one submitted order line. Fields left empty are filled
// from the catalog product resolved by the reference.
type LineItemInput struct {
	ProductRef  string           `json:"product_ref" binding:"required,max=20"`
	Name        string           `json:"name" binding:"max=200"`
	Weight      *decimal.Decimal `json:"weight"`
	Unit        string           `json:"unit" binding:"max=20"`
	Rate        *decimal.Decimal `json:"rate"`
	Quantity    decimal.Decimal  `json:"quantity" binding:"required"`
	TotalAmount *decimal.Decimal `json:"total_amount"`
}

// BillingInput is the submitted money block. FinalAmount is reconciled
// server-side against the other fields.
type BillingInput struct {
	OrderWeight     decimal.Decimal `json:"order_weight"`
	OrderAmount     decimal.Decimal `json:"order_amount"`
	DeliveryCharges decimal.Decimal `json:"delivery_charges"`
	TotalAmount     decimal.Decimal `json:"total_amount"`
	PaymentMethod   string          `json:"payment_method" binding:"max=30"`
	MoneyGiven      decimal.Decimal `json:"money_given"`
	PastOrderDue    decimal.Decimal `json:"past_order_due"`
	PaidAmount      decimal.Decimal `json:"paid_amount"`
	FinalAmount     decimal.Decimal `json:"final_amount"`
}

// CreateOrderRequest represents a request to create a new order. The order
// reference is allocated server-side from the creation date.
type CreateOrderRequest struct {
	CustomerRef string          `json:"customer_ref" binding:"required,max=120"`
	Items       []LineItemInput `json:"items" binding:"required,min=1,dive"`
	FreeItems   []LineItemInput `json:"free_items" binding:"omitempty,dive"`
	Billing     BillingInput    `json:"billing" binding:"required"`
	Comments    []string        `json:"comments"`

	// IdempotencyKey comes from the Idempotency-Key header, never the body
	IdempotencyKey string `json:"-"`
}

// UpdateOrderRequest represents an amendment. Nil slices leave the current
// value untouched; comments are appended.
type UpdateOrderRequest struct {
	Items     []LineItemInput `json:"items" binding:"omitempty,min=1,dive"`
	FreeItems []LineItemInput `json:"free_items" binding:"omitempty,dive"`
	Billing   *BillingInput   `json:"billing"`
	Comments  []string        `json:"comments"`
}

// OrderResponse represents an order in API responses
type OrderResponse struct {
	ID              uuid.UUID               `json:"id"`
	Ref             string                  `json:"ref"`
	Status          string                  `json:"status"`
	Customer        ledger.CustomerSnapshot `json:"customer"`
	Items           []ledger.LineItem       `json:"items"`
	FreeItems       []ledger.LineItem       `json:"free_items"`
	HasFreeProducts bool                    `json:"has_free_products"`
	Billing         ledger.Billing          `json:"billing"`
	Comments        []ledger.Comment        `json:"comments"`
	CreatedAt       time.Time               `json:"created_at"`
	UpdatedAt       time.Time               `json:"updated_at"`
	Version         int                     `json:"version"`
}

// OrderListItem is the projected listing row: enough to render the order
// book without shipping the full documents.
type OrderListItem struct {
	ID           uuid.UUID       `json:"id"`
	Ref          string          `json:"ref"`
	Status       string          `json:"status"`
	CustomerName string          `json:"customer_name"`
	ShopName     string          `json:"shop_name"`
	Town         string          `json:"town"`
	State        string          `json:"state"`
	ItemNames    []string        `json:"item_names"`
	TotalAmount  decimal.Decimal `json:"total_amount"`
	FinalAmount  decimal.Decimal `json:"final_amount"`
	CreatedAt    time.Time       `json:"created_at"`
}

// OrderListFilter represents filter options for the order list
type OrderListFilter struct {
	Search   string `form:"search"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=200"`
	OrderBy  string `form:"order_by"`
	OrderDir string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// HistoryListFilter represents filter options for the history listings
type HistoryListFilter struct {
	Page     int `form:"page" binding:"omitempty,min=1"`
	PageSize int `form:"page_size" binding:"omitempty,min=1,max=200"`
}

// PurchaseHistoryEntry is one history fact joined with the backing order's
// billing totals. The order is authoritative; the denormalized names are for
// display only.
type PurchaseHistoryEntry struct {
	OrderID     uuid.UUID       `json:"order_id"`
	OrderRef    string          `json:"order_ref"`
	CustomerRef string          `json:"customer_ref"`
	ShopName    string          `json:"shop_name"`
	ProductRef  string          `json:"product_ref"`
	ProductName string          `json:"product_name"`
	OrderAmount decimal.Decimal `json:"order_amount"`
	FinalAmount decimal.Decimal `json:"final_amount"`
	CreatedAt   time.Time       `json:"created_at"`
}

// InvoiceResponse carries the rendered invoice document
type InvoiceResponse struct {
	OrderRef string `json:"order_ref"`
	FileName string `json:"file_name"`
	PDFData  []byte `json:"-"`
}

// ToOrderResponse converts a domain order to a response DTO
func ToOrderResponse(order *ledger.Order) OrderResponse {
	return OrderResponse{
		ID:              order.ID,
		Ref:             order.Ref,
		Status:          string(order.Status),
		Customer:        order.Customer,
		Items:           order.Items,
		FreeItems:       order.FreeItems,
		HasFreeProducts: order.HasFreeProducts,
		Billing:         order.Billing,
		Comments:        order.Comments,
		CreatedAt:       order.CreatedAt,
		UpdatedAt:       order.UpdatedAt,
		Version:         order.Version,
	}
}

// ToOrderListItem projects a domain order onto its listing row
func ToOrderListItem(order *ledger.Order) OrderListItem {
	names := make([]string, len(order.Items))
	for i, item := range order.Items {
		names[i] = item.Name
	}
	return OrderListItem{
		ID:           order.ID,
		Ref:          order.Ref,
		Status:       string(order.Status),
		CustomerName: order.Customer.Name,
		ShopName:     order.Customer.ShopName,
		Town:         order.Customer.Town,
		State:        order.Customer.State,
		ItemNames:    names,
		TotalAmount:  order.Billing.TotalAmount,
		FinalAmount:  order.Billing.FinalAmount,
		CreatedAt:    order.CreatedAt,
	}
}

// ToOrderListItems projects a slice of domain orders
func ToOrderListItems(orders []ledger.Order) []OrderListItem {
	items := make([]OrderListItem, len(orders))
	for i := range orders {
		items[i] = ToOrderListItem(&orders[i])
	}
	return items
}

func toDomainBilling(in BillingInput) ledger.Billing {
	return ledger.Billing{
		OrderWeight:     in.OrderWeight,
		OrderAmount:     in.OrderAmount,
		DeliveryCharges: in.DeliveryCharges,
		TotalAmount:     in.TotalAmount,
		PaymentMethod:   in.PaymentMethod,
		MoneyGiven:      in.MoneyGiven,
		PastOrderDue:    in.PastOrderDue,
		PaidAmount:      in.PaidAmount,
		FinalAmount:     in.FinalAmount,
	}
}

// toDomainItems fills each submitted line from its resolved catalog product.
// Free lines default to zero pricing instead of the product's selling rate.
func toDomainItems(inputs []LineItemInput, resolved map[string]*catalog.Product, free bool) []ledger.LineItem {
	items := make([]ledger.LineItem, len(inputs))
	for i, in := range inputs {
		product := resolved[in.ProductRef]

		item := ledger.LineItem{
			ProductRef: in.ProductRef,
			Name:       in.Name,
			Unit:       in.Unit,
			Quantity:   in.Quantity,
		}
		if item.Name == "" {
			item.Name = product.Name
		}
		if item.Unit == "" {
			item.Unit = product.Unit
		}
		if in.Weight != nil {
			item.Weight = *in.Weight
		} else {
			item.Weight = product.Weight
		}

		switch {
		case in.Rate != nil:
			item.Rate = *in.Rate
		case free:
			item.Rate = decimal.Zero
		default:
			item.Rate = product.SellingRate
		}
		if in.TotalAmount != nil {
			item.TotalAmount = *in.TotalAmount
		} else if free {
			item.TotalAmount = decimal.Zero
		} else {
			item.TotalAmount = item.Rate.Mul(item.Quantity)
		}

		items[i] = item
	}
	return items
}

func toResolvedProducts(resolved map[string]*catalog.Product) map[string]ledger.ResolvedProduct {
	out := make(map[string]ledger.ResolvedProduct, len(resolved))
	for ref, product := range resolved {
		out[ref] = ledger.ResolvedProduct{
			ID:   product.ID,
			Ref:  product.Ref,
			Name: product.Name,
		}
	}
	return out
}
