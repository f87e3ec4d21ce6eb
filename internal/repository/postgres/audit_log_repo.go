// internal/repository/postgres/audit_log_repo.go
package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"sparkhub-service/internal/domain/audit"

	"github.com/jackc/pgx/v5/pgxpool"
)

type AuditLogRepository struct {
	db *pgxpool.Pool
}

func NewAuditLogRepository(db *pgxpool.Pool) *AuditLogRepository {
	return &AuditLogRepository{db: db}
}

// Insert appends one audit event
func (r *AuditLogRepository) Insert(ctx context.Context, e *audit.Event) error {
	query := `
		INSERT INTO audit_log (action_type, description, metadata, actor)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`

	var metadataJSON []byte
	if e.Metadata != nil {
		var err error
		metadataJSON, err = json.Marshal(e.Metadata)
		if err != nil {
			return fmt.Errorf("failed to marshal metadata: %w", err)
		}
	}

	err := r.db.QueryRow(
		ctx, query,
		e.ActionType, e.Description, metadataJSON, e.Actor,
	).Scan(&e.ID, &e.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to insert audit event: %w", err)
	}

	return nil
}

// List retrieves audit events matching the filters, newest first
func (r *AuditLogRepository) List(ctx context.Context, filters *audit.ListFilters) ([]audit.Event, error) {
	conditions := []string{"1=1"}
	args := []interface{}{}
	argIdx := 1

	if filters.ActionType != "" {
		conditions = append(conditions, fmt.Sprintf("action_type = $%d", argIdx))
		args = append(args, filters.ActionType)
		argIdx++
	}
	if !filters.From.IsZero() {
		conditions = append(conditions, fmt.Sprintf("created_at >= $%d", argIdx))
		args = append(args, filters.From)
		argIdx++
	}
	if !filters.To.IsZero() {
		conditions = append(conditions, fmt.Sprintf("created_at < $%d", argIdx))
		args = append(args, filters.To)
		argIdx++
	}

	limit := filters.Limit
	if limit <= 0 {
		limit = 100
	}

	query := fmt.Sprintf(`
		SELECT id, action_type, description, metadata, actor, created_at
		FROM audit_log
		WHERE %s
		ORDER BY created_at DESC
		LIMIT $%d
	`, strings.Join(conditions, " AND "), argIdx)
	args = append(args, limit)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list audit events: %w", err)
	}
	defer rows.Close()

	var events []audit.Event
	for rows.Next() {
		var e audit.Event
		var metadataJSON []byte
		if err := rows.Scan(&e.ID, &e.ActionType, &e.Description, &metadataJSON, &e.Actor, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan audit event: %w", err)
		}
		if len(metadataJSON) > 0 {
			if err := json.Unmarshal(metadataJSON, &e.Metadata); err != nil {
				return nil, fmt.Errorf("failed to unmarshal metadata: %w", err)
			}
		}
		events = append(events, e)
	}

	return events, rows.Err()
}
