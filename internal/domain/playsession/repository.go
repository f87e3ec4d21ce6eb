// internal/domain/playsession/repository.go
package playsession

import (
	"context"
	"time"
)

type Repository interface {
	Create(ctx context.Context, s *Session) error
	FindByID(ctx context.Context, id int64) (*Session, error)

	// FindOpenByCustomer returns the customer's open session, or
	// xerrors.ErrNotFound when none exists.
	FindOpenByCustomer(ctx context.Context, customerID int64) (*Session, error)

	ListOpen(ctx context.Context, branch string) ([]Session, error)
	ListClosedBetween(ctx context.Context, from, to time.Time) ([]Session, error)

	// Close sets ended_at and amount_charged. Fails with
	// xerrors.ErrAlreadyClosed when ended_at is already set.
	Close(ctx context.Context, id int64, endedAt time.Time, amountCharged float64) error
}
