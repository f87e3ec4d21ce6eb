// internal/service/customer/customer_service.go
package customer

import (
	"context"
	"database/sql"

	"sparkhub-service/internal/cache"
	"sparkhub-service/internal/domain/customer"

	"go.uber.org/zap"
)

type CustomerService struct {
	customerRepo customer.Repository
	cache        *cache.Cache
	logger       *zap.Logger
}

func NewCustomerService(customerRepo customer.Repository, c *cache.Cache, logger *zap.Logger) *CustomerService {
	return &CustomerService{
		customerRepo: customerRepo,
		cache:        c,
		logger:       logger,
	}
}

// Register creates a new customer record
func (s *CustomerService) Register(ctx context.Context, req *customer.RegisterCustomerRequest) (*customer.Customer, error) {
	c := &customer.Customer{
		FullName:    req.FullName,
		PhoneNumber: sql.NullString{String: req.PhoneNumber, Valid: req.PhoneNumber != ""},
		Notes:       sql.NullString{String: req.Notes, Valid: req.Notes != ""},
	}

	if err := s.customerRepo.Create(ctx, c); err != nil {
		s.logger.Error("failed to register customer", zap.Error(err))
		return nil, err
	}

	s.cache.Invalidate(ctx, cache.KeyCustomers)

	s.logger.Info("customer registered", zap.Int64("customer_id", c.ID))

	return c, nil
}

// Get retrieves a customer by ID
func (s *CustomerService) Get(ctx context.Context, id int64) (*customer.Customer, error) {
	return s.customerRepo.FindByID(ctx, id)
}

// List retrieves customers. The first unfiltered page is served read-through
// the enrichment cache; everything else goes straight to storage.
func (s *CustomerService) List(ctx context.Context, filters *customer.CustomerListFilters) (*customer.CustomerListResponse, error) {
	if filters.Page < 1 {
		filters.Page = 1
	}
	if filters.PageSize < 1 {
		filters.PageSize = 20
	}

	cacheable := filters.Search == "" && filters.Page == 1

	if cacheable {
		var cached customer.CustomerListResponse
		if s.cache.GetJSON(ctx, cache.KeyCustomers, &cached) && cached.PageSize == filters.PageSize {
			return &cached, nil
		}
	}

	customers, total, err := s.customerRepo.List(ctx, filters)
	if err != nil {
		return nil, err
	}

	resp := &customer.CustomerListResponse{
		Customers: customers,
		Total:     total,
		Page:      filters.Page,
		PageSize:  filters.PageSize,
	}

	if cacheable {
		s.cache.SetJSON(ctx, cache.KeyCustomers, resp)
	}

	return resp, nil
}
