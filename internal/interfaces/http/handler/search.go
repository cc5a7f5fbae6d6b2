package handler

import (
	"github.com/gin-gonic/gin"

	appcatalog "github.com/backoffice/backend/internal/application/catalog"
	appledger "github.com/backoffice/backend/internal/application/ledger"
	apppartner "github.com/backoffice/backend/internal/application/partner"
)

// SearchHandler serves the GET search facade over the three listings
type SearchHandler struct {
	BaseHandler
	orders    *appledger.OrderService
	customers *apppartner.CustomerService
	products  *appcatalog.ProductService
}

// NewSearchHandler creates a new SearchHandler
func NewSearchHandler(orders *appledger.OrderService, customers *apppartner.CustomerService, products *appcatalog.ProductService) *SearchHandler {
	return &SearchHandler{
		orders:    orders,
		customers: customers,
		products:  products,
	}
}

// RegisterRoutes registers the search routes
func (h *SearchHandler) RegisterRoutes(r gin.IRouter) {
	search := r.Group("/search")
	{
		search.GET("/orders", h.Orders)
		search.GET("/users", h.Customers)
		search.GET("/products", h.Products)
	}
}

// searchQuery is the common query shape of the GET search endpoints
type searchQuery struct {
	Q        string `form:"q" binding:"required,min=1,max=200"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=200"`
}

// Orders handles GET /search/orders?q=
func (h *SearchHandler) Orders(c *gin.Context) {
	var q searchQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		h.HandleBindingError(c, err)
		return
	}

	page, err := h.orders.List(c.Request.Context(), appledger.OrderListFilter{
		Search:   q.Q,
		Page:     q.Page,
		PageSize: q.PageSize,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, page.Items, page.Total, page.Page, page.PageSize)
}

// Customers handles GET /search/users?q=
func (h *SearchHandler) Customers(c *gin.Context) {
	var q searchQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		h.HandleBindingError(c, err)
		return
	}

	page, err := h.customers.List(c.Request.Context(), apppartner.CustomerListFilter{
		Search:   q.Q,
		Page:     q.Page,
		PageSize: q.PageSize,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, page.Items, page.Total, page.Page, page.PageSize)
}

// Products handles GET /search/products?q=
func (h *SearchHandler) Products(c *gin.Context) {
	var q searchQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		h.HandleBindingError(c, err)
		return
	}

	page, err := h.products.List(c.Request.Context(), appcatalog.ProductListFilter{
		Search:   q.Q,
		Page:     q.Page,
		PageSize: q.PageSize,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, page.Items, page.Total, page.Page, page.PageSize)
}
