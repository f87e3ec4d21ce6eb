// internal/repository/postgres/subscription_plan_repo.go
package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"sparkhub-service/internal/domain/plan"
	xerrors "sparkhub-service/internal/pkg/errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type SubscriptionPlanRepository struct {
	db *pgxpool.Pool
}

func NewSubscriptionPlanRepository(db *pgxpool.Pool) *SubscriptionPlanRepository {
	return &SubscriptionPlanRepository{db: db}
}

const planColumns = `id, name, kind, is_active, price, time_included, days_included,
	expiry_days, time_valid_start, time_valid_end, branches, created_at, updated_at`

func scanPlan(row pgx.Row, p *plan.SubscriptionPlan) error {
	return row.Scan(
		&p.ID, &p.Name, &p.Kind, &p.IsActive, &p.Price, &p.TimeIncluded, &p.DaysIncluded,
		&p.ExpiryDays, &p.TimeValidStart, &p.TimeValidEnd, &p.Branches, &p.CreatedAt, &p.UpdatedAt,
	)
}

// Create creates a new subscription plan
func (r *SubscriptionPlanRepository) Create(ctx context.Context, p *plan.SubscriptionPlan) error {
	query := `
		INSERT INTO subscription_plans (
			name, kind, is_active, price, time_included, days_included,
			expiry_days, time_valid_start, time_valid_end, branches
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at, updated_at
	`

	err := r.db.QueryRow(
		ctx, query,
		p.Name, p.Kind, p.IsActive, p.Price, p.TimeIncluded, p.DaysIncluded,
		p.ExpiryDays, p.TimeValidStart, p.TimeValidEnd, p.Branches,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to create subscription plan: %w", err)
	}

	return nil
}

// FindByID retrieves a subscription plan by ID
func (r *SubscriptionPlanRepository) FindByID(ctx context.Context, id int64) (*plan.SubscriptionPlan, error) {
	query := fmt.Sprintf(`SELECT %s FROM subscription_plans WHERE id = $1`, planColumns)

	var p plan.SubscriptionPlan
	err := scanPlan(r.db.QueryRow(ctx, query, id), &p)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, xerrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find subscription plan: %w", err)
	}

	return &p, nil
}

// List retrieves plans matching the filters
func (r *SubscriptionPlanRepository) List(ctx context.Context, filters *plan.PlanListFilters) ([]plan.SubscriptionPlan, error) {
	conditions := []string{"1=1"}
	args := []interface{}{}
	argIdx := 1

	if filters.Kind != "" {
		conditions = append(conditions, fmt.Sprintf("kind = $%d", argIdx))
		args = append(args, filters.Kind)
		argIdx++
	}
	if filters.Branch != "" {
		conditions = append(conditions, fmt.Sprintf("$%d = ANY(branches)", argIdx))
		args = append(args, filters.Branch)
		argIdx++
	}
	if filters.ActiveOnly {
		conditions = append(conditions, "is_active = true")
	}

	query := fmt.Sprintf(`
		SELECT %s FROM subscription_plans
		WHERE %s
		ORDER BY name ASC
	`, planColumns, strings.Join(conditions, " AND "))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list subscription plans: %w", err)
	}
	defer rows.Close()

	var plans []plan.SubscriptionPlan
	for rows.Next() {
		var p plan.SubscriptionPlan
		if err := scanPlan(rows, &p); err != nil {
			return nil, fmt.Errorf("failed to scan subscription plan: %w", err)
		}
		plans = append(plans, p)
	}

	return plans, rows.Err()
}

// Update overwrites a plan's mutable fields
func (r *SubscriptionPlanRepository) Update(ctx context.Context, p *plan.SubscriptionPlan) error {
	query := `
		UPDATE subscription_plans
		SET name = $2, is_active = $3, price = $4, time_included = $5,
		    days_included = $6, expiry_days = $7, time_valid_start = $8,
		    time_valid_end = $9, branches = $10, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`

	err := r.db.QueryRow(
		ctx, query,
		p.ID, p.Name, p.IsActive, p.Price, p.TimeIncluded,
		p.DaysIncluded, p.ExpiryDays, p.TimeValidStart,
		p.TimeValidEnd, p.Branches,
	).Scan(&p.UpdatedAt)

	if errors.Is(err, pgx.ErrNoRows) {
		return xerrors.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to update subscription plan: %w", err)
	}

	return nil
}

// Delete removes a plan. Callers must check references first.
func (r *SubscriptionPlanRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM subscription_plans WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete subscription plan: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return xerrors.ErrNotFound
	}
	return nil
}

// CountReferences counts subscriptions and sessions pointing at the plan
func (r *SubscriptionPlanRepository) CountReferences(ctx context.Context, id int64) (int64, error) {
	query := `
		SELECT
			(SELECT COUNT(*) FROM subscription_active WHERE plan_id = $1) +
			(SELECT COUNT(*) FROM sessions WHERE plan_id = $1)
	`

	var count int64
	if err := r.db.QueryRow(ctx, query, id).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count plan references: %w", err)
	}

	return count, nil
}
