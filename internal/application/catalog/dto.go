package catalog

import (
	"time"

	"github.com/backoffice/backend/internal/domain/catalog"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// =============================================================================
// Product DTOs
// =============================================================================

// CreateProductRequest represents a request to create a new catalog product.
// The numeric reference is allocated server-side from the current maximum.
type CreateProductRequest struct {
	Name        string           `json:"name" binding:"required,min=1,max=200"`
	Description []string         `json:"description"`
	Features    []string         `json:"features"`
	Usage       []string         `json:"usage"`
	Precautions []string         `json:"precautions"`
	Notes       []string         `json:"notes"`
	Images      []string         `json:"images" binding:"omitempty,dive,max=500"`
	Weight      *decimal.Decimal `json:"weight"`
	Unit        string           `json:"unit" binding:"max=20"`
	MRP         *decimal.Decimal `json:"mrp"`
	SellingRate *decimal.Decimal `json:"selling_rate"`
}

// UpdateProductRequest represents a request to update a product. The
// reference is immutable; list fields replace wholesale when present.
type UpdateProductRequest struct {
	Name        *string          `json:"name" binding:"omitempty,min=1,max=200"`
	Description []string         `json:"description"`
	Features    []string         `json:"features"`
	Usage       []string         `json:"usage"`
	Precautions []string         `json:"precautions"`
	Notes       []string         `json:"notes"`
	Images      []string         `json:"images" binding:"omitempty,dive,max=500"`
	Weight      *decimal.Decimal `json:"weight"`
	Unit        *string          `json:"unit" binding:"omitempty,max=20"`
	MRP         *decimal.Decimal `json:"mrp"`
	SellingRate *decimal.Decimal `json:"selling_rate"`
}

// ProductResponse represents a product in API responses
type ProductResponse struct {
	ID          uuid.UUID       `json:"id"`
	Ref         string          `json:"ref"`
	Name        string          `json:"name"`
	Description []string        `json:"description"`
	Features    []string        `json:"features"`
	Usage       []string        `json:"usage"`
	Precautions []string        `json:"precautions"`
	Notes       []string        `json:"notes"`
	Images      []string        `json:"images"`
	Weight      decimal.Decimal `json:"weight"`
	Unit        string          `json:"unit"`
	MRP         decimal.Decimal `json:"mrp"`
	SellingRate decimal.Decimal `json:"selling_rate"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
	Version     int             `json:"version"`
}

// ProductListFilter represents filter options for the product list
type ProductListFilter struct {
	Search   string `form:"search"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=200"`
	OrderBy  string `form:"order_by"`
	OrderDir string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// ToProductResponse converts a domain product to a response DTO
func ToProductResponse(product *catalog.Product) ProductResponse {
	return ProductResponse{
		ID:          product.ID,
		Ref:         product.Ref,
		Name:        product.Name,
		Description: product.Description,
		Features:    product.Features,
		Usage:       product.Usage,
		Precautions: product.Precautions,
		Notes:       product.Notes,
		Images:      product.Images,
		Weight:      product.Weight,
		Unit:        product.Unit,
		MRP:         product.MRP,
		SellingRate: product.SellingRate,
		CreatedAt:   product.CreatedAt,
		UpdatedAt:   product.UpdatedAt,
		Version:     product.Version,
	}
}

// ToProductResponses converts a slice of domain products
func ToProductResponses(products []catalog.Product) []ProductResponse {
	responses := make([]ProductResponse, len(products))
	for i := range products {
		responses[i] = ToProductResponse(&products[i])
	}
	return responses
}
