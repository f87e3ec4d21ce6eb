// internal/domain/customer/repository.go
package customer

import "context"

type Repository interface {
	Create(ctx context.Context, c *Customer) error
	FindByID(ctx context.Context, id int64) (*Customer, error)
	List(ctx context.Context, filters *CustomerListFilters) ([]Customer, int64, error)

	// AddTotals increments the cumulative spend/hours counters.
	AddTotals(ctx context.Context, id int64, spent, hours float64) error
}
