package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	appcatalog "github.com/backoffice/backend/internal/application/catalog"
	"github.com/backoffice/backend/internal/interfaces/http/dto"
)

// ProductHandler serves the product catalog endpoints
type ProductHandler struct {
	BaseHandler
	service *appcatalog.ProductService
}

// NewProductHandler creates a new ProductHandler
func NewProductHandler(service *appcatalog.ProductService) *ProductHandler {
	return &ProductHandler{service: service}
}

// RegisterRoutes registers the product routes
func (h *ProductHandler) RegisterRoutes(r gin.IRouter) {
	products := r.Group("/products")
	{
		products.GET("", h.List)
		products.POST("", h.Create)
		products.POST("/search", h.Search)
		products.GET("/:productId", h.Get)
		products.PUT("/:productId", h.Update)
		products.DELETE("/:productId", h.Delete)
	}
}

// Create handles POST /products
func (h *ProductHandler) Create(c *gin.Context) {
	var req appcatalog.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.HandleBindingError(c, err)
		return
	}

	product, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, product)
}

// Get handles GET /products/:productId. The path segment is either the
// internal UUID or the numeric catalog reference.
func (h *ProductHandler) Get(c *gin.Context) {
	param := c.Param("productId")

	var (
		product *appcatalog.ProductResponse
		err     error
	)
	if id, parseErr := uuid.Parse(param); parseErr == nil {
		product, err = h.service.GetByID(c.Request.Context(), id)
	} else {
		product, err = h.service.GetByRef(c.Request.Context(), param)
	}
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, product)
}

// List handles GET /products
func (h *ProductHandler) List(c *gin.Context) {
	var filter appcatalog.ProductListFilter
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

// Search handles POST /products/search
func (h *ProductHandler) Search(c *gin.Context) {
	var req dto.SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.HandleBindingError(c, err)
		return
	}

	page, err := h.service.List(c.Request.Context(), appcatalog.ProductListFilter{
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

// Update handles PUT /products/:productId
func (h *ProductHandler) Update(c *gin.Context) {
	id, ok := h.resolveID(c)
	if !ok {
		return
	}

	var req appcatalog.UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.HandleBindingError(c, err)
		return
	}

	product, err := h.service.Update(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, product)
}

// Delete handles DELETE /products/:productId
func (h *ProductHandler) Delete(c *gin.Context) {
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

func (h *ProductHandler) resolveID(c *gin.Context) (uuid.UUID, bool) {
	param := c.Param("productId")
	if id, err := uuid.Parse(param); err == nil {
		return id, true
	}

	product, err := h.service.GetByRef(c.Request.Context(), param)
	if err != nil {
		h.HandleError(c, err)
		return uuid.Nil, false
	}
	return product.ID, true
}
