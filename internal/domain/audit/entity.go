// internal/domain/audit/entity.go
package audit

import (
	"context"
	"time"
)

type ActionType string

const (
	ActionSessionStart ActionType = "session_start"
	ActionSessionEnd   ActionType = "session_end"
	ActionPlanPurchase ActionType = "plan_purchase"
)

// Event is one structured audit record. Delivery is best-effort: a failed
// write never fails the lifecycle operation that produced it.
type Event struct {
	ID          int64                  `json:"id" db:"id"`
	ActionType  ActionType             `json:"action_type" db:"action_type"`
	Description string                 `json:"description" db:"description"`
	Metadata    map[string]interface{} `json:"metadata,omitempty" db:"metadata"`
	Actor       int64                  `json:"actor" db:"actor"`
	CreatedAt   time.Time              `json:"created_at" db:"created_at"`
}

type ListFilters struct {
	ActionType ActionType `form:"action_type"`
	From       time.Time  `form:"from" time_format:"2006-01-02"`
	To         time.Time  `form:"to" time_format:"2006-01-02"`
	Limit      int        `form:"limit" binding:"omitempty,min=1,max=500"`
}

type Repository interface {
	Insert(ctx context.Context, e *Event) error
	List(ctx context.Context, filters *ListFilters) ([]Event, error)
}
