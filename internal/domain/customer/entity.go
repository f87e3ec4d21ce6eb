// internal/domain/customer/entity.go
package customer

import (
	"database/sql"
	"time"
)

type Customer struct {
	ID       int64  `json:"id" db:"id"`
	FullName string `json:"full_name" db:"full_name"`

	// Contact details
	PhoneNumber sql.NullString `json:"phone_number,omitempty" db:"phone_number"`
	Notes       sql.NullString `json:"notes,omitempty" db:"notes"`

	// Cumulative totals, maintained by the lifecycle coordinator.
	TotalSpent float64 `json:"total_spent" db:"total_spent"`
	TotalHours float64 `json:"total_hours" db:"total_hours"`

	// Timestamps
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

type CustomerStats struct {
	TotalCustomers int64   `json:"total_customers"`
	NewThisMonth   int64   `json:"new_this_month"`
	TotalRevenue   float64 `json:"total_revenue"`
}
