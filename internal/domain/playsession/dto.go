// internal/domain/playsession/dto.go
package playsession

import (
	"time"

	"sparkhub-service/internal/domain/customer"
	"sparkhub-service/internal/domain/plan"
	"sparkhub-service/internal/domain/subscription"
	xerrors "sparkhub-service/internal/pkg/errors"
)

// FundingChoice is the tagged variant for how a session is paid. Exactly one
// arm must be set; this replaces the ad hoc request shapes of the old console.
type FundingChoice struct {
	PlanID         *int64         `json:"plan_id"`
	SubscriptionID *int64         `json:"subscription_id"`
	Custom         *CustomFunding `json:"custom"`
}

type CustomFunding struct {
	Price   float64 `json:"price" binding:"min=0"`
	Minutes int32   `json:"minutes" binding:"omitempty,min=1"`
}

// Validate enforces the one-of rule.
func (f *FundingChoice) Validate() error {
	set := 0
	if f.PlanID != nil {
		set++
	}
	if f.SubscriptionID != nil {
		set++
	}
	if f.Custom != nil {
		set++
	}
	if set != 1 {
		return xerrors.Wrap(xerrors.ErrValidation, "funding requires exactly one of plan_id, subscription_id or custom")
	}
	if f.Custom != nil && f.Custom.Minutes <= 0 {
		return xerrors.Wrap(xerrors.ErrValidation, "custom funding requires minutes > 0")
	}
	return nil
}

type StartSessionRequest struct {
	CustomerID int64         `json:"customer_id" binding:"required"`
	Funding    FundingChoice `json:"funding" binding:"required"`
	Branch     string        `json:"branch"`
}

// Receipt is what the staff terminal shows after a logout.
type Receipt struct {
	Session     Session `json:"session"`
	AmountDue   float64 `json:"amount_due"`
	BilledHours int     `json:"billed_hours,omitempty"`
	MinutesUsed int     `json:"minutes_used"`

	// Post-decrement bundle balances, when subscription funded.
	TimeLeft *int32 `json:"time_left,omitempty"`
	DaysLeft *int32 `json:"days_left,omitempty"`
}

// EnrichedSession is a session with its collaborator snapshots and the
// engine's display projection attached. Read-only view, computed per request.
type EnrichedSession struct {
	Session      Session                          `json:"session"`
	Customer     *customer.Customer               `json:"customer,omitempty"`
	Plan         *plan.SubscriptionPlan           `json:"plan,omitempty"`
	Subscription *subscription.SubscriptionActive `json:"subscription,omitempty"`

	ElapsedMinutes int    `json:"elapsed_minutes"`
	RemainingMins  *int   `json:"remaining_minutes,omitempty"`
	RemainingDays  *int   `json:"remaining_days,omitempty"`
	Status         string `json:"status"`
	AsOf           time.Time `json:"as_of"`
}
