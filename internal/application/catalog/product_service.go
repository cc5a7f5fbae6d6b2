package catalog

import (
	"context"
	"errors"

	"github.com/backoffice/backend/internal/domain/catalog"
	"github.com/backoffice/backend/internal/domain/sequence"
	"github.com/backoffice/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// maxAllocationAttempts bounds the optimistic reference allocation loop
const maxAllocationAttempts = 5

// ProductService handles catalog business operations
type ProductService struct {
	productRepo catalog.ProductRepository
}

// NewProductService creates a new ProductService
func NewProductService(productRepo catalog.ProductRepository) *ProductService {
	return &ProductService{
		productRepo: productRepo,
	}
}

// Create creates a new product, allocating its numeric reference one above
// the current catalog maximum. References are never reused after deletion.
func (s *ProductService) Create(ctx context.Context, req CreateProductRequest) (*ProductResponse, error) {
	for attempt := 0; attempt < maxAllocationAttempts; attempt++ {
		highest, err := s.productRepo.MaxNumericRef(ctx)
		if err != nil {
			return nil, err
		}

		product, err := catalog.NewProduct(sequence.ProductRef(highest), req.Name)
		if err != nil {
			return nil, err
		}
		if err := applyProductFields(product, req); err != nil {
			return nil, err
		}

		err = s.productRepo.Save(ctx, product)
		if err == nil {
			response := ToProductResponse(product)
			return &response, nil
		}
		if !errors.Is(err, shared.ErrAlreadyExists) {
			return nil, err
		}
	}

	return nil, shared.ErrConcurrencyConflict
}

// GetByID retrieves a product by internal ID
func (s *ProductService) GetByID(ctx context.Context, productID uuid.UUID) (*ProductResponse, error) {
	product, err := s.productRepo.FindByID(ctx, productID)
	if err != nil {
		return nil, err
	}

	response := ToProductResponse(product)
	return &response, nil
}

// GetByRef retrieves a product by external reference
func (s *ProductService) GetByRef(ctx context.Context, ref string) (*ProductResponse, error) {
	product, err := s.productRepo.FindByRef(ctx, ref)
	if err != nil {
		return nil, err
	}

	response := ToProductResponse(product)
	return &response, nil
}

// List retrieves products with pagination; a non-empty search term switches
// to substring matching over name and descriptive entries.
func (s *ProductService) List(ctx context.Context, filter ProductListFilter) (shared.Paginated[ProductResponse], error) {
	domainFilter := shared.Filter{
		Page:     filter.Page,
		PageSize: filter.PageSize,
		OrderBy:  filter.OrderBy,
		OrderDir: filter.OrderDir,
		Filters:  make(map[string]any),
	}
	if domainFilter.Page <= 0 {
		domainFilter.Page = 1
	}
	if domainFilter.PageSize <= 0 {
		domainFilter.PageSize = 20
	}
	if domainFilter.OrderBy == "" {
		domainFilter.OrderBy = "created_at"
	}
	if domainFilter.OrderDir == "" {
		domainFilter.OrderDir = "desc"
	}

	var (
		page shared.Paginated[catalog.Product]
		err  error
	)
	if filter.Search != "" {
		page, err = s.productRepo.Search(ctx, filter.Search, domainFilter)
	} else {
		page, err = s.productRepo.FindAll(ctx, domainFilter)
	}
	if err != nil {
		return shared.Paginated[ProductResponse]{}, err
	}

	return shared.Paginated[ProductResponse]{
		Items:      ToProductResponses(page.Items),
		Total:      page.Total,
		Page:       page.Page,
		PageSize:   page.PageSize,
		TotalPages: page.TotalPages,
	}, nil
}

// Update applies a partial update. The reference never changes.
func (s *ProductService) Update(ctx context.Context, productID uuid.UUID, req UpdateProductRequest) (*ProductResponse, error) {
	product, err := s.productRepo.FindByID(ctx, productID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		if *req.Name == "" {
			return nil, shared.NewDomainError("INVALID_NAME", "Product name cannot be empty")
		}
		product.Name = *req.Name
	}

	if req.Description != nil || req.Features != nil || req.Usage != nil || req.Precautions != nil || req.Notes != nil {
		description := product.Description
		features := product.Features
		usage := product.Usage
		precautions := product.Precautions
		notes := product.Notes
		if req.Description != nil {
			description = req.Description
		}
		if req.Features != nil {
			features = req.Features
		}
		if req.Usage != nil {
			usage = req.Usage
		}
		if req.Precautions != nil {
			precautions = req.Precautions
		}
		if req.Notes != nil {
			notes = req.Notes
		}
		product.SetDetails(description, features, usage, precautions, notes)
	}

	if req.Images != nil {
		product.SetImages(req.Images)
	}

	if req.Weight != nil || req.Unit != nil {
		weight := product.Weight
		unit := product.Unit
		if req.Weight != nil {
			weight = *req.Weight
		}
		if req.Unit != nil {
			unit = *req.Unit
		}
		if err := product.SetWeight(weight, unit); err != nil {
			return nil, err
		}
	}

	if req.MRP != nil || req.SellingRate != nil {
		mrp := product.MRP
		rate := product.SellingRate
		if req.MRP != nil {
			mrp = *req.MRP
		}
		if req.SellingRate != nil {
			rate = *req.SellingRate
		}
		if err := product.SetPricing(mrp, rate); err != nil {
			return nil, err
		}
	}

	product.Touch()
	if err := s.productRepo.Update(ctx, product); err != nil {
		return nil, err
	}

	response := ToProductResponse(product)
	return &response, nil
}

// Delete removes a product. Orders keep their line-item snapshots, so past
// purchases still render after the product is gone.
func (s *ProductService) Delete(ctx context.Context, productID uuid.UUID) error {
	if _, err := s.productRepo.FindByID(ctx, productID); err != nil {
		return err
	}
	return s.productRepo.Delete(ctx, productID)
}

func applyProductFields(product *catalog.Product, req CreateProductRequest) error {
	product.SetDetails(req.Description, req.Features, req.Usage, req.Precautions, req.Notes)
	if req.Images != nil {
		product.SetImages(req.Images)
	}

	weight := decimal.Zero
	if req.Weight != nil {
		weight = *req.Weight
	}
	if err := product.SetWeight(weight, req.Unit); err != nil {
		return err
	}

	mrp := decimal.Zero
	if req.MRP != nil {
		mrp = *req.MRP
	}
	rate := decimal.Zero
	if req.SellingRate != nil {
		rate = *req.SellingRate
	}
	return product.SetPricing(mrp, rate)
}
