package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	appledger "github.com/backoffice/backend/internal/application/ledger"
	"github.com/backoffice/backend/internal/interfaces/http/dto"
)

// IdempotencyKeyHeader carries the client's order-create idempotency key
const IdempotencyKeyHeader = "Idempotency-Key"

// OrderHandler serves the order ledger endpoints
type OrderHandler struct {
	BaseHandler
	service  *appledger.OrderService
	invoices *appledger.InvoiceService
}

// NewOrderHandler creates a new OrderHandler. The invoice service may be nil
// when PDF rendering is disabled.
func NewOrderHandler(service *appledger.OrderService, invoices *appledger.InvoiceService) *OrderHandler {
	return &OrderHandler{service: service, invoices: invoices}
}

// RegisterRoutes registers the order routes
func (h *OrderHandler) RegisterRoutes(r gin.IRouter) {
	orders := r.Group("/orders")
	{
		orders.GET("", h.List)
		orders.POST("", h.Create)
		orders.POST("/search", h.Search)
		orders.GET("/:orderId", h.Get)
		orders.PUT("/:orderId", h.Update)
		orders.DELETE("/:orderId", h.Delete)
		orders.GET("/:orderId/invoice", h.Invoice)
	}
}

// Create handles POST /orders
func (h *OrderHandler) Create(c *gin.Context) {
	var req appledger.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.HandleBindingError(c, err)
		return
	}
	req.IdempotencyKey = c.GetHeader(IdempotencyKeyHeader)

	order, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, order)
}

// Get handles GET /orders/:orderId. The path segment is either the internal
// UUID or the daily reference.
func (h *OrderHandler) Get(c *gin.Context) {
	param := c.Param("orderId")

	var (
		order *appledger.OrderResponse
		err   error
	)
	if id, parseErr := uuid.Parse(param); parseErr == nil {
		order, err = h.service.GetByID(c.Request.Context(), id)
	} else {
		order, err = h.service.GetByRef(c.Request.Context(), param)
	}
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, order)
}

// List handles GET /orders
func (h *OrderHandler) List(c *gin.Context) {
	var filter appledger.OrderListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.HandleBindingError(c, err)
		return
	}

	page, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, page.Items, page.Total, page.Page, page.PageSize)
}

// Search handles POST /orders/search
func (h *OrderHandler) Search(c *gin.Context) {
	var req dto.SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.HandleBindingError(c, err)
		return
	}

	page, err := h.service.List(c.Request.Context(), appledger.OrderListFilter{
		Search:   req.Query,
		Page:     req.Page,
		PageSize: req.PageSize,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, page.Items, page.Total, page.Page, page.PageSize)
}

// Update handles PUT /orders/:orderId
func (h *OrderHandler) Update(c *gin.Context) {
	id, ok := h.resolveID(c)
	if !ok {
		return
	}

	var req appledger.UpdateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.HandleBindingError(c, err)
		return
	}

	order, err := h.service.Update(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, order)
}

// Delete handles DELETE /orders/:orderId
func (h *OrderHandler) Delete(c *gin.Context) {
	id, ok := h.resolveID(c)
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

// Invoice handles GET /orders/:orderId/invoice, streaming the rendered PDF
func (h *OrderHandler) Invoice(c *gin.Context) {
	if h.invoices == nil {
		c.JSON(http.StatusServiceUnavailable, dto.NewErrorResponseWithRequestID(
			dto.ErrCodeStoreUnavailable, "Invoice rendering is disabled", h.getRequestID(c)))
		return
	}

	param := c.Param("orderId")

	var (
		invoice *appledger.InvoiceResponse
		err     error
	)
	if id, parseErr := uuid.Parse(param); parseErr == nil {
		invoice, err = h.invoices.Render(c.Request.Context(), id)
	} else {
		invoice, err = h.invoices.RenderByRef(c.Request.Context(), param)
	}
	if err != nil {
		h.HandleError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+invoice.FileName+`"`)
	c.Data(http.StatusOK, "application/pdf", invoice.PDFData)
}

func (h *OrderHandler) resolveID(c *gin.Context) (uuid.UUID, bool) {
	param := c.Param("orderId")
	if id, err := uuid.Parse(param); err == nil {
		return id, true
	}

	order, err := h.service.GetByRef(c.Request.Context(), param)
	if err != nil {
		h.HandleError(c, err)
		return uuid.Nil, false
	}
	return order.ID, true
}
