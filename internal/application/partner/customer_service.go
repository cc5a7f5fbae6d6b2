package partner

import (
	"context"
	"errors"

	"github.com/backoffice/backend/internal/domain/ledger"
	"github.com/backoffice/backend/internal/domain/partner"
	"github.com/backoffice/backend/internal/domain/sequence"
	"github.com/backoffice/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// maxAllocationAttempts bounds the optimistic reference allocation loop.
// Each attempt recounts the prefix, so a lost race is retried with a fresh
// suffix.
const maxAllocationAttempts = 5

// CustomerService handles customer-related business operations
type CustomerService struct {
	customerRepo partner.CustomerRepository
	historyRepo  ledger.HistoryRepository
}

// NewCustomerService creates a new CustomerService
func NewCustomerService(customerRepo partner.CustomerRepository, historyRepo ledger.HistoryRepository) *CustomerService {
	return &CustomerService{
		customerRepo: customerRepo,
		historyRepo:  historyRepo,
	}
}

// Create creates a new customer, allocating its external reference from the
// state, locality, and name fields plus a two-digit sequence number.
func (s *CustomerService) Create(ctx context.Context, req CreateCustomerRequest) (*CustomerResponse, error) {
	name := req.Name
	if name == "" {
		name = req.ShopName
	}

	for attempt := 0; attempt < maxAllocationAttempts; attempt++ {
		prefix := sequence.CustomerRefPrefix(req.State, req.Pincode, req.Town, name)
		existing, err := s.customerRepo.CountByRefPrefix(ctx, prefix)
		if err != nil {
			return nil, err
		}

		ref := sequence.CustomerRef(req.State, req.Pincode, req.Town, name, existing)
		customer, err := partner.NewCustomer(ref, req.Name, req.ShopName)
		if err != nil {
			return nil, err
		}

		customer.SetAddress(req.Address, req.Town, req.State, req.Pincode)
		if len(req.Contacts) > 0 {
			customer.SetContacts(toDomainContacts(req.Contacts))
		}
		if len(req.Comments) > 0 {
			customer.AppendComments(req.Comments)
		}

		err = s.customerRepo.Save(ctx, customer)
		if err == nil {
			response := ToCustomerResponse(customer)
			return &response, nil
		}
		if !errors.Is(err, shared.ErrAlreadyExists) {
			return nil, err
		}
	}

	return nil, shared.ErrConcurrencyConflict
}

// GetByID retrieves a customer by internal ID
func (s *CustomerService) GetByID(ctx context.Context, customerID uuid.UUID) (*CustomerResponse, error) {
	customer, err := s.customerRepo.FindByID(ctx, customerID)
	if err != nil {
		return nil, err
	}

	response := ToCustomerResponse(customer)
	return &response, nil
}

// GetByRef retrieves a customer by external reference
func (s *CustomerService) GetByRef(ctx context.Context, ref string) (*CustomerResponse, error) {
	customer, err := s.customerRepo.FindByRef(ctx, ref)
	if err != nil {
		return nil, err
	}

	response := ToCustomerResponse(customer)
	return &response, nil
}

// List retrieves customers with pagination; a non-empty search term switches
// to substring matching over the text fields.
func (s *CustomerService) List(ctx context.Context, filter CustomerListFilter) (shared.Paginated[CustomerResponse], error) {
	domainFilter := toDomainFilter(filter.Page, filter.PageSize, filter.OrderBy, filter.OrderDir)

	var (
		page shared.Paginated[partner.Customer]
		err  error
	)
	if filter.Search != "" {
		page, err = s.customerRepo.Search(ctx, filter.Search, domainFilter)
	} else {
		page, err = s.customerRepo.FindAll(ctx, domainFilter)
	}
	if err != nil {
		return shared.Paginated[CustomerResponse]{}, err
	}

	return shared.Paginated[CustomerResponse]{
		Items:      ToCustomerResponses(page.Items),
		Total:      page.Total,
		Page:       page.Page,
		PageSize:   page.PageSize,
		TotalPages: page.TotalPages,
	}, nil
}

// Update applies a partial update. The reference never changes; comments in
// the request are appended to the existing trail.
func (s *CustomerService) Update(ctx context.Context, customerID uuid.UUID, req UpdateCustomerRequest) (*CustomerResponse, error) {
	customer, err := s.customerRepo.FindByID(ctx, customerID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		customer.Name = *req.Name
	}
	if req.ShopName != nil {
		customer.ShopName = *req.ShopName
	}
	if customer.Name == "" && customer.ShopName == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Customer needs a name or a shop name")
	}

	if req.Address != nil || req.Town != nil || req.State != nil || req.Pincode != nil {
		address := customer.Address
		town := customer.Town
		state := customer.State
		pincode := customer.Pincode
		if req.Address != nil {
			address = *req.Address
		}
		if req.Town != nil {
			town = *req.Town
		}
		if req.State != nil {
			state = *req.State
		}
		if req.Pincode != nil {
			pincode = *req.Pincode
		}
		customer.SetAddress(address, town, state, pincode)
	}

	if req.Contacts != nil {
		customer.SetContacts(toDomainContacts(req.Contacts))
	}
	if req.Dues != nil {
		customer.SetDues(*req.Dues)
	}
	if len(req.Comments) > 0 {
		customer.AppendComments(req.Comments)
	}

	customer.Touch()
	if err := s.customerRepo.Update(ctx, customer); err != nil {
		return nil, err
	}

	response := ToCustomerResponse(customer)
	return &response, nil
}

// Delete removes a customer and prunes its purchase-history entries. The
// orders themselves stay; their snapshots keep the record of who bought.
func (s *CustomerService) Delete(ctx context.Context, customerID uuid.UUID) error {
	if _, err := s.customerRepo.FindByID(ctx, customerID); err != nil {
		return err
	}

	if err := s.customerRepo.Delete(ctx, customerID); err != nil {
		return err
	}
	return s.historyRepo.DeleteByCustomer(ctx, customerID)
}

// toDomainFilter builds a shared.Filter with list defaults applied
func toDomainFilter(page, pageSize int, orderBy, orderDir string) shared.Filter {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	if orderBy == "" {
		orderBy = "created_at"
	}
	if orderDir == "" {
		orderDir = "desc"
	}
	return shared.Filter{
		Page:     page,
		PageSize: pageSize,
		OrderBy:  orderBy,
		OrderDir: orderDir,
		Filters:  make(map[string]any),
	}
}
