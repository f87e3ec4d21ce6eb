// internal/domain/playsession/entity.go
package playsession

import (
	"database/sql"
	"time"
)

// Session is one seat occupancy at a branch. It is open while EndedAt is
// null, closes exactly once, and is never deleted. Only the fields relevant
// to its funding type are populated.
type Session struct {
	ID         int64  `json:"id" db:"id"`
	SessionRef string `json:"session_ref" db:"session_ref"`

	CustomerID int64 `json:"customer_id" db:"customer_id"`

	// Funding references; at most one of PlanID / SubscriptionID / Custom*.
	PlanID         sql.NullInt64   `json:"plan_id,omitempty" db:"plan_id"`
	SubscriptionID sql.NullInt64   `json:"subscription_id,omitempty" db:"subscription_id"`
	CustomPrice    sql.NullFloat64 `json:"custom_price,omitempty" db:"custom_price"`
	CustomMinutes  sql.NullInt32   `json:"custom_minutes,omitempty" db:"custom_minutes"`

	Branch string `json:"branch" db:"branch"`

	StartedAt time.Time    `json:"started_at" db:"started_at"`
	EndedAt   sql.NullTime `json:"ended_at,omitempty" db:"ended_at"`

	// Amount settled at logout, null while open.
	AmountCharged sql.NullFloat64 `json:"amount_charged,omitempty" db:"amount_charged"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Open reports whether the session is still running.
func (s *Session) Open() bool {
	return !s.EndedAt.Valid
}
