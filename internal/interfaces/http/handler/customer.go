package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	apppartner "github.com/backoffice/backend/internal/application/partner"
	"github.com/backoffice/backend/internal/interfaces/http/dto"
)

// CustomerHandler serves the customer endpoints. The public resource name is
// "users" for compatibility with existing clients.
type CustomerHandler struct {
	BaseHandler
	service *apppartner.CustomerService
}

// NewCustomerHandler creates a new CustomerHandler
func NewCustomerHandler(service *apppartner.CustomerService) *CustomerHandler {
	return &CustomerHandler{service: service}
}

// RegisterRoutes registers the customer routes
func (h *CustomerHandler) RegisterRoutes(r gin.IRouter) {
	users := r.Group("/users")
	{
		users.GET("", h.List)
		users.POST("", h.Create)
		users.POST("/search", h.Search)
		users.GET("/:userId", h.Get)
		users.PUT("/:userId", h.Update)
		users.DELETE("/:userId", h.Delete)
	}
}

// Create handles POST /users
func (h *CustomerHandler) Create(c *gin.Context) {
	var req apppartner.CreateCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.HandleBindingError(c, err)
		return
	}

	customer, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, customer)
}

// Get handles GET /users/:userId. The path segment is either the internal
// UUID or the external reference.
func (h *CustomerHandler) Get(c *gin.Context) {
	param := c.Param("userId")

	var (
		customer *apppartner.CustomerResponse
		err      error
	)
	if id, parseErr := uuid.Parse(param); parseErr == nil {
		customer, err = h.service.GetByID(c.Request.Context(), id)
	} else {
		customer, err = h.service.GetByRef(c.Request.Context(), param)
	}
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, customer)
}

// List handles GET /users
func (h *CustomerHandler) List(c *gin.Context) {
	var filter apppartner.CustomerListFilter
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

// Search handles POST /users/search
func (h *CustomerHandler) Search(c *gin.Context) {
	var req dto.SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.HandleBindingError(c, err)
		return
	}

	page, err := h.service.List(c.Request.Context(), apppartner.CustomerListFilter{
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

// Update handles PUT /users/:userId
func (h *CustomerHandler) Update(c *gin.Context) {
	id, ok := h.resolveID(c)
	if !ok {
		return
	}

	var req apppartner.UpdateCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.HandleBindingError(c, err)
		return
	}

	customer, err := h.service.Update(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, customer)
}

// Delete handles DELETE /users/:userId
func (h *CustomerHandler) Delete(c *gin.Context) {
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

// resolveID turns the path segment into an internal ID, looking the customer
// up by reference when the segment is not a UUID
func (h *CustomerHandler) resolveID(c *gin.Context) (uuid.UUID, bool) {
	param := c.Param("userId")
	if id, err := uuid.Parse(param); err == nil {
		return id, true
	}

	customer, err := h.service.GetByRef(c.Request.Context(), param)
	if err != nil {
		h.HandleError(c, err)
		return uuid.Nil, false
	}
	return customer.ID, true
}
