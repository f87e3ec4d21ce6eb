// Package timeacct is the time-accounting engine: pure calculations over
// sessions, plans and subscription balances. It never touches storage; the
// lifecycle coordinator feeds it snapshots and persists what it returns.
// All duplicated date-math from the old console lives here, once.
package timeacct

import (
	"time"

	"sparkhub-service/internal/domain/plan"
	"sparkhub-service/internal/domain/playsession"
	"sparkhub-service/internal/domain/subscription"
)

type Status string

const (
	StatusActive   Status = "active"
	StatusExpired  Status = "expired"
	StatusNoExpiry Status = "no_expiry"
)

// ElapsedMinutes returns now - startedAt truncated to whole minutes,
// clamped at zero when the clock reads before the session start.
func ElapsedMinutes(startedAt, now time.Time) int {
	if now.Before(startedAt) {
		return 0
	}
	return int(now.Sub(startedAt) / time.Minute)
}

type HourlyBill struct {
	BilledHours int     `json:"billed_hours"`
	AmountDue   float64 `json:"amount_due"`
}

// BillHourly charges every started hour: elapsed minutes are rounded up to
// the next whole hour, so a one-minute session bills a full hour.
func BillHourly(startedAt, now time.Time, pricePerHour float64) HourlyBill {
	billedHours := (ElapsedMinutes(startedAt, now) + 59) / 60
	return HourlyBill{
		BilledHours: billedHours,
		AmountDue:   float64(billedHours) * pricePerHour,
	}
}

// Remaining is a display projection of what is left on a funding source.
type Remaining struct {
	Minutes int    `json:"minutes"`
	Days    int    `json:"days"`
	Status  Status `json:"status"`
}

// Split breaks the remaining minutes into hours and minutes for display.
func (r Remaining) Split() (hours, minutes int) {
	return r.Minutes / 60, r.Minutes % 60
}

// RemainingForStraight projects what is left of a straight plan's included
// time. A fully consumed allotment (remaining <= 0) reads as expired.
func RemainingForStraight(p *plan.SubscriptionPlan, startedAt, now time.Time) Remaining {
	included := int(p.TimeIncluded.Int32)
	left := included - ElapsedMinutes(startedAt, now)
	if left <= 0 {
		return Remaining{Status: StatusExpired}
	}
	return Remaining{Minutes: left, Status: StatusActive}
}

// RemainingForBundle projects a bundle balance against a running session.
// For time-based bundles the projection subtracts the elapsed minutes; the
// stored balance is only decremented at logout. Day passes are consumed as
// whole units at logout, so the projection reports days_left as-is.
// Expiry is the OR of the date rule and the balance rule.
func RemainingForBundle(sub *subscription.SubscriptionActive, startedAt, now time.Time) Remaining {
	datePassed := sub.ExpiresAt.Valid && now.After(sub.ExpiresAt.Time)

	if sub.TimeBased() {
		projected := int(sub.TimeLeft.Int32) - ElapsedMinutes(startedAt, now)
		if projected <= 0 || datePassed {
			if projected < 0 {
				projected = 0
			}
			return Remaining{Minutes: projected, Status: StatusExpired}
		}
		return Remaining{Minutes: projected, Status: StatusActive}
	}

	days := int(sub.DaysLeft.Int32)
	if days <= 0 || datePassed {
		if days < 0 {
			days = 0
		}
		return Remaining{Days: days, Status: StatusExpired}
	}
	return Remaining{Days: days, Status: StatusActive}
}

// StatusBadge reduces the expiry conditions to one badge for the UI. Total
// over the three cases: date passed, balance exhausted, nothing configured.
func StatusBadge(p *plan.SubscriptionPlan, sub *subscription.SubscriptionActive, now time.Time) Status {
	if sub != nil {
		if sub.Expired(now) {
			return StatusExpired
		}
		if !sub.ExpiresAt.Valid && !sub.TimeLeft.Valid && !sub.DaysLeft.Valid {
			return StatusNoExpiry
		}
		return StatusActive
	}
	if p == nil || p.Kind == plan.KindHourly {
		return StatusNoExpiry
	}
	return StatusActive
}

// Settlement is the final accounting snapshot computed at logout.
type Settlement struct {
	ElapsedMinutes int
	BilledHours    int
	AmountDue      float64

	// Draw against the funding subscription, already clamped.
	MinutesToDeduct int
	DayPassesToUse  int

	Status Status
}

// SettleLogout computes the close-out for a session. The bundle decrement
// uses the floor of the elapsed minutes, clamped so the stored balance
// never goes negative; unlike hourly billing there is no rounding up.
func SettleLogout(p *plan.SubscriptionPlan, sub *subscription.SubscriptionActive, sess *playsession.Session, now time.Time) Settlement {
	elapsed := ElapsedMinutes(sess.StartedAt, now)

	// Custom sessions settle at their ad hoc price.
	if sess.CustomPrice.Valid {
		st := StatusActive
		if sess.CustomMinutes.Valid && elapsed >= int(sess.CustomMinutes.Int32) {
			st = StatusExpired
		}
		return Settlement{
			ElapsedMinutes: elapsed,
			AmountDue:      sess.CustomPrice.Float64,
			Status:         st,
		}
	}

	// Bundle funded: draw down the balance, nothing due at the counter.
	if sub != nil {
		s := Settlement{ElapsedMinutes: elapsed}
		if sub.TimeBased() {
			s.MinutesToDeduct = elapsed
			if s.MinutesToDeduct > int(sub.TimeLeft.Int32) {
				s.MinutesToDeduct = int(sub.TimeLeft.Int32)
			}
		} else {
			s.DayPassesToUse = 1
		}
		s.Status = RemainingForBundle(sub, sess.StartedAt, now).Status
		return s
	}

	if p == nil {
		return Settlement{ElapsedMinutes: elapsed, Status: StatusNoExpiry}
	}

	switch p.Kind {
	case plan.KindHourly:
		bill := BillHourly(sess.StartedAt, now, p.Price)
		return Settlement{
			ElapsedMinutes: elapsed,
			BilledHours:    bill.BilledHours,
			AmountDue:      bill.AmountDue,
			Status:         StatusNoExpiry,
		}
	case plan.KindStraight, plan.KindTimed:
		s := Settlement{ElapsedMinutes: elapsed, AmountDue: p.Price, Status: StatusNoExpiry}
		if p.TimeIncluded.Valid {
			s.Status = RemainingForStraight(p, sess.StartedAt, now).Status
		}
		return s
	default:
		return Settlement{ElapsedMinutes: elapsed, Status: StatusNoExpiry}
	}
}
