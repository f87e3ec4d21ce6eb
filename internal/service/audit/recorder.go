// internal/service/audit/recorder.go
package audit

import (
	"context"

	"sparkhub-service/internal/domain/audit"

	"go.uber.org/zap"
)

// Recorder writes structured audit events. Delivery is best-effort: failures
// are logged and swallowed so a lifecycle operation never fails on logging.
type Recorder struct {
	repo   audit.Repository
	logger *zap.Logger
}

func NewRecorder(repo audit.Repository, logger *zap.Logger) *Recorder {
	return &Recorder{
		repo:   repo,
		logger: logger,
	}
}

// Record persists one event, swallowing any error.
func (r *Recorder) Record(ctx context.Context, actionType audit.ActionType, description string, actor int64, metadata map[string]interface{}) {
	event := &audit.Event{
		ActionType:  actionType,
		Description: description,
		Metadata:    metadata,
		Actor:       actor,
	}

	if err := r.repo.Insert(ctx, event); err != nil {
		r.logger.Warn("audit event dropped",
			zap.String("action_type", string(actionType)),
			zap.Int64("actor", actor),
			zap.Error(err),
		)
	}
}

// List retrieves audit events for the review screens.
func (r *Recorder) List(ctx context.Context, filters *audit.ListFilters) ([]audit.Event, error) {
	return r.repo.List(ctx, filters)
}
