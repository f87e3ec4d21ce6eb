// internal/repository/postgres/session_repo.go
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"sparkhub-service/internal/domain/playsession"
	xerrors "sparkhub-service/internal/pkg/errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type SessionRepository struct {
	db *pgxpool.Pool
}

func NewSessionRepository(db *pgxpool.Pool) *SessionRepository {
	return &SessionRepository{db: db}
}

const sessionColumns = `id, session_ref, customer_id, plan_id, subscription_id,
	custom_price, custom_minutes, branch, started_at, ended_at, amount_charged, created_at`

func scanSession(row pgx.Row, s *playsession.Session) error {
	return row.Scan(
		&s.ID, &s.SessionRef, &s.CustomerID, &s.PlanID, &s.SubscriptionID,
		&s.CustomPrice, &s.CustomMinutes, &s.Branch, &s.StartedAt, &s.EndedAt,
		&s.AmountCharged, &s.CreatedAt,
	)
}

// Create opens a new session row
func (r *SessionRepository) Create(ctx context.Context, s *playsession.Session) error {
	query := `
		INSERT INTO sessions (
			session_ref, customer_id, plan_id, subscription_id,
			custom_price, custom_minutes, branch, started_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at
	`

	err := r.db.QueryRow(
		ctx, query,
		s.SessionRef, s.CustomerID, s.PlanID, s.SubscriptionID,
		s.CustomPrice, s.CustomMinutes, s.Branch, s.StartedAt,
	).Scan(&s.ID, &s.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}

	return nil
}

// FindByID retrieves a session by ID
func (r *SessionRepository) FindByID(ctx context.Context, id int64) (*playsession.Session, error) {
	query := fmt.Sprintf(`SELECT %s FROM sessions WHERE id = $1`, sessionColumns)

	var s playsession.Session
	err := scanSession(r.db.QueryRow(ctx, query, id), &s)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, xerrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find session: %w", err)
	}

	return &s, nil
}

// FindOpenByCustomer returns the customer's open session, if any
func (r *SessionRepository) FindOpenByCustomer(ctx context.Context, customerID int64) (*playsession.Session, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM sessions
		WHERE customer_id = $1 AND ended_at IS NULL
		ORDER BY started_at DESC
		LIMIT 1
	`, sessionColumns)

	var s playsession.Session
	err := scanSession(r.db.QueryRow(ctx, query, customerID), &s)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, xerrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find open session: %w", err)
	}

	return &s, nil
}

// ListOpen retrieves all open sessions, optionally scoped to a branch
func (r *SessionRepository) ListOpen(ctx context.Context, branch string) ([]playsession.Session, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM sessions
		WHERE ended_at IS NULL AND ($1 = '' OR branch = $1)
		ORDER BY started_at ASC
	`, sessionColumns)

	rows, err := r.db.Query(ctx, query, branch)
	if err != nil {
		return nil, fmt.Errorf("failed to list open sessions: %w", err)
	}
	defer rows.Close()

	return collectSessions(rows)
}

// ListClosedBetween retrieves sessions closed within [from, to)
func (r *SessionRepository) ListClosedBetween(ctx context.Context, from, to time.Time) ([]playsession.Session, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM sessions
		WHERE ended_at IS NOT NULL AND ended_at >= $1 AND ended_at < $2
		ORDER BY ended_at ASC
	`, sessionColumns)

	rows, err := r.db.Query(ctx, query, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list closed sessions: %w", err)
	}
	defer rows.Close()

	return collectSessions(rows)
}

// Close sets ended_at and amount_charged exactly once
func (r *SessionRepository) Close(ctx context.Context, id int64, endedAt time.Time, amountCharged float64) error {
	query := `
		UPDATE sessions
		SET ended_at = $2, amount_charged = $3
		WHERE id = $1 AND ended_at IS NULL
	`

	tag, err := r.db.Exec(ctx, query, id, endedAt, amountCharged)
	if err != nil {
		return fmt.Errorf("failed to close session: %w", err)
	}
	if tag.RowsAffected() == 0 {
		// Either the row is missing or it was already closed; the caller has
		// just read the row, so a missing row here means it closed under us.
		return xerrors.ErrAlreadyClosed
	}

	return nil
}

func collectSessions(rows pgx.Rows) ([]playsession.Session, error) {
	var sessions []playsession.Session
	for rows.Next() {
		var s playsession.Session
		if err := scanSession(rows, &s); err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		sessions = append(sessions, s)
	}
	return sessions, rows.Err()
}
