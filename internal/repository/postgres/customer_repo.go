// internal/repository/postgres/customer_repo.go
package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"sparkhub-service/internal/domain/customer"
	xerrors "sparkhub-service/internal/pkg/errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type CustomerRepository struct {
	db *pgxpool.Pool
}

func NewCustomerRepository(db *pgxpool.Pool) *CustomerRepository {
	return &CustomerRepository{db: db}
}

// Create registers a new customer
func (r *CustomerRepository) Create(ctx context.Context, c *customer.Customer) error {
	query := `
		INSERT INTO customers (full_name, phone_number, notes)
		VALUES ($1, $2, $3)
		RETURNING id, total_spent, total_hours, created_at, updated_at
	`

	err := r.db.QueryRow(
		ctx, query,
		c.FullName, c.PhoneNumber, c.Notes,
	).Scan(&c.ID, &c.TotalSpent, &c.TotalHours, &c.CreatedAt, &c.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to create customer: %w", err)
	}

	return nil
}

// FindByID retrieves a customer by ID
func (r *CustomerRepository) FindByID(ctx context.Context, id int64) (*customer.Customer, error) {
	query := `
		SELECT id, full_name, phone_number, notes, total_spent, total_hours,
		       created_at, updated_at
		FROM customers
		WHERE id = $1
	`

	var c customer.Customer
	err := r.db.QueryRow(ctx, query, id).Scan(
		&c.ID, &c.FullName, &c.PhoneNumber, &c.Notes, &c.TotalSpent, &c.TotalHours,
		&c.CreatedAt, &c.UpdatedAt,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, xerrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find customer: %w", err)
	}

	return &c, nil
}

// List retrieves customers with optional search and pagination
func (r *CustomerRepository) List(ctx context.Context, filters *customer.CustomerListFilters) ([]customer.Customer, int64, error) {
	conditions := []string{"1=1"}
	args := []interface{}{}
	argIdx := 1

	if filters.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(full_name ILIKE $%d OR phone_number ILIKE $%d)", argIdx, argIdx))
		args = append(args, "%"+filters.Search+"%")
		argIdx++
	}

	where := strings.Join(conditions, " AND ")

	var total int64
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM customers WHERE %s", where)
	if err := r.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count customers: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT id, full_name, phone_number, notes, total_spent, total_hours,
		       created_at, updated_at
		FROM customers
		WHERE %s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d
	`, where, argIdx, argIdx+1)
	args = append(args, filters.PageSize, (filters.Page-1)*filters.PageSize)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list customers: %w", err)
	}
	defer rows.Close()

	var customers []customer.Customer
	for rows.Next() {
		var c customer.Customer
		if err := rows.Scan(
			&c.ID, &c.FullName, &c.PhoneNumber, &c.Notes, &c.TotalSpent, &c.TotalHours,
			&c.CreatedAt, &c.UpdatedAt,
		); err != nil {
			return nil, 0, fmt.Errorf("failed to scan customer: %w", err)
		}
		customers = append(customers, c)
	}

	return customers, total, rows.Err()
}

// AddTotals increments the cumulative spend/hours counters
func (r *CustomerRepository) AddTotals(ctx context.Context, id int64, spent, hours float64) error {
	query := `
		UPDATE customers
		SET total_spent = total_spent + $2,
		    total_hours = total_hours + $3,
		    updated_at = NOW()
		WHERE id = $1
	`

	tag, err := r.db.Exec(ctx, query, id, spent, hours)
	if err != nil {
		return fmt.Errorf("failed to update customer totals: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return xerrors.ErrNotFound
	}

	return nil
}
