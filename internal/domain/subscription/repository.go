// internal/domain/subscription/repository.go
package subscription

import (
	"context"
	"database/sql"
)

type Repository interface {
	Create(ctx context.Context, s *SubscriptionActive) error
	FindByID(ctx context.Context, id int64) (*SubscriptionActive, error)
	ListByCustomer(ctx context.Context, customerID int64) ([]SubscriptionActive, error)

	// FindLiveByCustomerAndPlan returns a non-exhausted, non-expired
	// subscription for the pair, or xerrors.ErrNotFound.
	FindLiveByCustomerAndPlan(ctx context.Context, customerID, planID int64) (*SubscriptionActive, error)

	// UpdateBalances overwrites the remaining balances after a logout draw.
	UpdateBalances(ctx context.Context, id int64, timeLeft, daysLeft sql.NullInt32) error
}
