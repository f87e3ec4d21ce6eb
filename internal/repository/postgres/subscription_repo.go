// internal/repository/postgres/subscription_repo.go
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"sparkhub-service/internal/domain/subscription"
	xerrors "sparkhub-service/internal/pkg/errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type SubscriptionRepository struct {
	db *pgxpool.Pool
}

func NewSubscriptionRepository(db *pgxpool.Pool) *SubscriptionRepository {
	return &SubscriptionRepository{db: db}
}

const subscriptionColumns = `id, subscription_ref, customer_id, plan_id,
	time_left, days_left, expires_at, created_at, updated_at`

func scanSubscription(row pgx.Row, s *subscription.SubscriptionActive) error {
	return row.Scan(
		&s.ID, &s.SubscriptionRef, &s.CustomerID, &s.PlanID,
		&s.TimeLeft, &s.DaysLeft, &s.ExpiresAt, &s.CreatedAt, &s.UpdatedAt,
	)
}

// Create records a purchased bundle subscription
func (r *SubscriptionRepository) Create(ctx context.Context, s *subscription.SubscriptionActive) error {
	query := `
		INSERT INTO subscription_active (
			subscription_ref, customer_id, plan_id, time_left, days_left, expires_at
		) VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at
	`

	err := r.db.QueryRow(
		ctx, query,
		s.SubscriptionRef, s.CustomerID, s.PlanID, s.TimeLeft, s.DaysLeft, s.ExpiresAt,
	).Scan(&s.ID, &s.CreatedAt, &s.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to create subscription: %w", err)
	}

	return nil
}

// FindByID retrieves a subscription by ID
func (r *SubscriptionRepository) FindByID(ctx context.Context, id int64) (*subscription.SubscriptionActive, error) {
	query := fmt.Sprintf(`SELECT %s FROM subscription_active WHERE id = $1`, subscriptionColumns)

	var s subscription.SubscriptionActive
	err := scanSubscription(r.db.QueryRow(ctx, query, id), &s)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, xerrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find subscription: %w", err)
	}

	return &s, nil
}

// ListByCustomer retrieves all of a customer's subscriptions, newest first
func (r *SubscriptionRepository) ListByCustomer(ctx context.Context, customerID int64) ([]subscription.SubscriptionActive, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM subscription_active
		WHERE customer_id = $1
		ORDER BY created_at DESC
	`, subscriptionColumns)

	rows, err := r.db.Query(ctx, query, customerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list subscriptions: %w", err)
	}
	defer rows.Close()

	var subs []subscription.SubscriptionActive
	for rows.Next() {
		var s subscription.SubscriptionActive
		if err := scanSubscription(rows, &s); err != nil {
			return nil, fmt.Errorf("failed to scan subscription: %w", err)
		}
		subs = append(subs, s)
	}

	return subs, rows.Err()
}

// FindLiveByCustomerAndPlan returns a non-exhausted, non-expired subscription
// for the customer/plan pair. Used for the duplicate-purchase conflict check.
func (r *SubscriptionRepository) FindLiveByCustomerAndPlan(ctx context.Context, customerID, planID int64) (*subscription.SubscriptionActive, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM subscription_active
		WHERE customer_id = $1
		  AND plan_id = $2
		  AND (expires_at IS NULL OR expires_at > NOW())
		  AND (time_left IS NULL OR time_left > 0)
		  AND (days_left IS NULL OR days_left > 0)
		ORDER BY created_at DESC
		LIMIT 1
	`, subscriptionColumns)

	var s subscription.SubscriptionActive
	err := scanSubscription(r.db.QueryRow(ctx, query, customerID, planID), &s)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, xerrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find live subscription: %w", err)
	}

	return &s, nil
}

// UpdateBalances overwrites the remaining balances after a logout draw
func (r *SubscriptionRepository) UpdateBalances(ctx context.Context, id int64, timeLeft, daysLeft sql.NullInt32) error {
	query := `
		UPDATE subscription_active
		SET time_left = $2, days_left = $3, updated_at = NOW()
		WHERE id = $1
	`

	tag, err := r.db.Exec(ctx, query, id, timeLeft, daysLeft)
	if err != nil {
		return fmt.Errorf("failed to update subscription balances: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return xerrors.ErrNotFound
	}

	return nil
}
