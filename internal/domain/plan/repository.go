// internal/domain/plan/repository.go
package plan

import "context"

type Repository interface {
	Create(ctx context.Context, p *SubscriptionPlan) error
	FindByID(ctx context.Context, id int64) (*SubscriptionPlan, error)
	List(ctx context.Context, filters *PlanListFilters) ([]SubscriptionPlan, error)
	Update(ctx context.Context, p *SubscriptionPlan) error
	Delete(ctx context.Context, id int64) error

	// CountReferences counts active subscriptions and sessions that point at
	// the plan. A referenced plan is immutable except for its active flag.
	CountReferences(ctx context.Context, id int64) (int64, error)
}
