package partner

import (
	"time"

	"github.com/backoffice/backend/internal/domain/partner"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// =============================================================================
// Customer DTOs
// =============================================================================

// ContactInput is a phone/whatsapp pair in requests
type ContactInput struct {
	Phone    string `json:"phone" binding:"max=20"`
	Whatsapp string `json:"whatsapp" binding:"max=20"`
}

// CreateCustomerRequest represents a request to create a new customer.
// The reference is never part of the request; it is allocated server-side
// from the address and name fields.
type CreateCustomerRequest struct {
	Name     string         `json:"name" binding:"required_without=ShopName,max=200"`
	ShopName string         `json:"shop_name" binding:"required_without=Name,max=200"`
	Address  string         `json:"address" binding:"max=500"`
	Town     string         `json:"town" binding:"max=100"`
	State    string         `json:"state" binding:"max=100"`
	Pincode  string         `json:"pincode" binding:"max=20"`
	Contacts []ContactInput `json:"contacts" binding:"omitempty,dive"`
	Comments []string       `json:"comments"`
}

// UpdateCustomerRequest represents a request to update a customer. The
// reference is immutable; comments are appended, never replaced.
type UpdateCustomerRequest struct {
	Name     *string          `json:"name" binding:"omitempty,max=200"`
	ShopName *string          `json:"shop_name" binding:"omitempty,max=200"`
	Address  *string          `json:"address" binding:"omitempty,max=500"`
	Town     *string          `json:"town" binding:"omitempty,max=100"`
	State    *string          `json:"state" binding:"omitempty,max=100"`
	Pincode  *string          `json:"pincode" binding:"omitempty,max=20"`
	Contacts []ContactInput   `json:"contacts" binding:"omitempty,dive"`
	Dues     *decimal.Decimal `json:"dues"`
	Comments []string         `json:"comments"`
}

// CustomerResponse represents a customer in API responses
type CustomerResponse struct {
	ID        uuid.UUID         `json:"id"`
	Ref       string            `json:"ref"`
	Name      string            `json:"name"`
	ShopName  string            `json:"shop_name"`
	Address   string            `json:"address"`
	Town      string            `json:"town"`
	State     string            `json:"state"`
	Pincode   string            `json:"pincode"`
	Contacts  []partner.Contact `json:"contacts"`
	Dues      decimal.Decimal   `json:"dues"`
	Comments  []partner.Comment `json:"comments"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
	Version   int               `json:"version"`
}

// CustomerListFilter represents filter options for the customer list
type CustomerListFilter struct {
	Search   string `form:"search"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=200"`
	OrderBy  string `form:"order_by"`
	OrderDir string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// ToCustomerResponse converts a domain customer to a response DTO
func ToCustomerResponse(customer *partner.Customer) CustomerResponse {
	return CustomerResponse{
		ID:        customer.ID,
		Ref:       customer.Ref,
		Name:      customer.Name,
		ShopName:  customer.ShopName,
		Address:   customer.Address,
		Town:      customer.Town,
		State:     customer.State,
		Pincode:   customer.Pincode,
		Contacts:  customer.Contacts,
		Dues:      customer.Dues,
		Comments:  customer.Comments,
		CreatedAt: customer.CreatedAt,
		UpdatedAt: customer.UpdatedAt,
		Version:   customer.Version,
	}
}

// ToCustomerResponses converts a slice of domain customers
func ToCustomerResponses(customers []partner.Customer) []CustomerResponse {
	responses := make([]CustomerResponse, len(customers))
	for i := range customers {
		responses[i] = ToCustomerResponse(&customers[i])
	}
	return responses
}

func toDomainContacts(inputs []ContactInput) []partner.Contact {
	contacts := make([]partner.Contact, len(inputs))
	for i, in := range inputs {
		contacts[i] = partner.Contact{Phone: in.Phone, Whatsapp: in.Whatsapp}
	}
	return contacts
}
