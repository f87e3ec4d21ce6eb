// internal/domain/subscription/entity.go
package subscription

import (
	"database/sql"
	"time"
)

// SubscriptionActive is a customer's live bundle balance. Balances never go
// negative; once the relevant balance hits zero or the expiry date passes,
// the subscription is expired and never resurrected.
type SubscriptionActive struct {
	ID              int64  `json:"id" db:"id"`
	SubscriptionRef string `json:"subscription_ref" db:"subscription_ref"`

	CustomerID int64 `json:"customer_id" db:"customer_id"`
	PlanID     int64 `json:"plan_id" db:"plan_id"`

	// Remaining balance; exactly one of these is set, mirroring the plan kind.
	TimeLeft sql.NullInt32 `json:"time_left,omitempty" db:"time_left"`
	DaysLeft sql.NullInt32 `json:"days_left,omitempty" db:"days_left"`

	ExpiresAt sql.NullTime `json:"expires_at,omitempty" db:"expires_at"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// TimeBased reports whether the subscription draws down a minute pool.
func (s *SubscriptionActive) TimeBased() bool {
	return s.TimeLeft.Valid
}

// Expired applies the OR rule: date passed OR the governing balance exhausted.
func (s *SubscriptionActive) Expired(now time.Time) bool {
	if s.ExpiresAt.Valid && now.After(s.ExpiresAt.Time) {
		return true
	}
	if s.TimeLeft.Valid && s.TimeLeft.Int32 <= 0 {
		return true
	}
	if s.DaysLeft.Valid && s.DaysLeft.Int32 <= 0 {
		return true
	}
	return false
}
