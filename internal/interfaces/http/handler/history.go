package handler

import (
	"github.com/gin-gonic/gin"

	appledger "github.com/backoffice/backend/internal/application/ledger"
	"github.com/backoffice/backend/internal/interfaces/http/dto"
)

// HistoryHandler serves the purchase-history endpoints
type HistoryHandler struct {
	BaseHandler
	service *appledger.OrderService
}

// NewHistoryHandler creates a new HistoryHandler
func NewHistoryHandler(service *appledger.OrderService) *HistoryHandler {
	return &HistoryHandler{service: service}
}

// RegisterRoutes registers the history routes
func (h *HistoryHandler) RegisterRoutes(r gin.IRouter) {
	r.GET("/user-history", h.UserHistory)
	r.GET("/product-history", h.ProductHistory)
}

// UserHistory handles GET /user-history?userId=. The userId parameter is the
// customer's external reference.
func (h *HistoryHandler) UserHistory(c *gin.Context) {
	customerRef := c.Query("userId")
	if customerRef == "" {
		h.BadRequest(c, dto.ErrCodeValidation, "userId query parameter is required")
		return
	}

	var filter appledger.HistoryListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.HandleBindingError(c, err)
		return
	}

	page, err := h.service.CustomerHistory(c.Request.Context(), customerRef, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, page.Items, page.Total, page.Page, page.PageSize)
}

// ProductHistory handles GET /product-history?productId=. The productId
// parameter is the product's catalog reference.
func (h *HistoryHandler) ProductHistory(c *gin.Context) {
	productRef := c.Query("productId")
	if productRef == "" {
		h.BadRequest(c, dto.ErrCodeValidation, "productId query parameter is required")
		return
	}

	var filter appledger.HistoryListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.HandleBindingError(c, err)
		return
	}

	page, err := h.service.ProductHistory(c.Request.Context(), productRef, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, page.Items, page.Total, page.Page, page.PageSize)
}
