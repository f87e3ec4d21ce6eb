// internal/domain/plan/entity.go
package plan

import (
	"database/sql"
	"fmt"
	"time"

	xerrors "sparkhub-service/internal/pkg/errors"

	"github.com/lib/pq"
)

type Kind string

const (
	KindStraight Kind = "straight" // single session, fixed included minutes
	KindBundle   Kind = "bundle"   // pre-paid pool of minutes or day passes
	KindHourly   Kind = "hourly"   // pay-as-you-go, billed per started hour
	KindTimed    Kind = "timed"    // only valid inside a daily time window
)

type SubscriptionPlan struct {
	ID       int64   `json:"id" db:"id"`
	Name     string  `json:"name" db:"name"`
	Kind     Kind    `json:"kind" db:"kind"`
	IsActive bool    `json:"is_active" db:"is_active"`
	Price    float64 `json:"price" db:"price"`

	// Included balance (minutes or whole day passes, depending on kind)
	TimeIncluded sql.NullInt32 `json:"time_included,omitempty" db:"time_included"`
	DaysIncluded sql.NullInt32 `json:"days_included,omitempty" db:"days_included"`

	// Bundle expiry window, in days from purchase
	ExpiryDays sql.NullInt32 `json:"expiry_days,omitempty" db:"expiry_days"`

	// Daily valid-hours window for timed plans, "HH:MM" 24h clock
	TimeValidStart sql.NullString `json:"time_valid_start,omitempty" db:"time_valid_start"`
	TimeValidEnd   sql.NullString `json:"time_valid_end,omitempty" db:"time_valid_end"`

	// Branch locations where the plan is sold
	Branches pq.StringArray `json:"branches,omitempty" db:"branches"`

	// Timestamps
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Validate enforces the per-kind field invariants.
func (p *SubscriptionPlan) Validate() error {
	if p.Name == "" {
		return xerrors.Wrap(xerrors.ErrValidation, "plan name is required")
	}
	if p.Price < 0 {
		return xerrors.Wrap(xerrors.ErrValidation, "plan price must not be negative")
	}

	switch p.Kind {
	case KindStraight:
		if !p.TimeIncluded.Valid || p.TimeIncluded.Int32 <= 0 {
			return xerrors.Wrap(xerrors.ErrValidation, "straight plan requires time_included")
		}
	case KindBundle:
		hasTime := p.TimeIncluded.Valid && p.TimeIncluded.Int32 > 0
		hasDays := p.DaysIncluded.Valid && p.DaysIncluded.Int32 > 0
		if hasTime == hasDays {
			return xerrors.Wrap(xerrors.ErrValidation, "bundle plan requires exactly one of time_included or days_included")
		}
		if !p.ExpiryDays.Valid || p.ExpiryDays.Int32 <= 0 {
			return xerrors.Wrap(xerrors.ErrValidation, "bundle plan requires expiry_days")
		}
	case KindHourly:
		// price per hour is the only required field
	case KindTimed:
		if err := validateWindow(p.TimeValidStart, p.TimeValidEnd); err != nil {
			return err
		}
	default:
		return xerrors.Wrapf(xerrors.ErrValidation, "unknown plan kind %q", p.Kind)
	}
	return nil
}

// InWindow reports whether now falls inside a timed plan's valid hours.
// Plans of other kinds are always in window.
func (p *SubscriptionPlan) InWindow(now time.Time) bool {
	if p.Kind != KindTimed || !p.TimeValidStart.Valid || !p.TimeValidEnd.Valid {
		return true
	}
	clock := now.Format("15:04")
	return clock >= p.TimeValidStart.String && clock < p.TimeValidEnd.String
}

func validateWindow(start, end sql.NullString) error {
	if !start.Valid || !end.Valid {
		return xerrors.Wrap(xerrors.ErrValidation, "timed plan requires time_valid_start and time_valid_end")
	}
	for _, v := range []string{start.String, end.String} {
		if _, err := time.Parse("15:04", v); err != nil {
			return xerrors.Wrapf(xerrors.ErrValidation, "invalid time window value %q", v)
		}
	}
	if start.String >= end.String {
		return xerrors.Wrap(xerrors.ErrValidation, fmt.Sprintf("time window %s-%s is not ordered", start.String, end.String))
	}
	return nil
}
