package audit

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Repository defines persistence for audit records
type Repository interface {
	// Append persists a record; records are never updated or deleted
	Append(ctx context.Context, log *Log) error

	// FindByEntity returns records for an entity, newest first
	FindByEntity(ctx context.Context, entityType string, entityID uuid.UUID, limit int) ([]Log, error)
}

// Recorder appends audit records best-effort. A failed insert after a
// successful commercial commit is logged and never propagated: the business
// transaction already succeeded, audit is secondary.
type Recorder struct {
	repo   Repository
	logger *zap.Logger
}

// NewRecorder creates a Recorder
func NewRecorder(repo Repository, logger *zap.Logger) *Recorder {
	return &Recorder{repo: repo, logger: logger}
}

// Record builds and appends an audit record, swallowing failures
func (r *Recorder) Record(ctx context.Context, actor, action, entityType string, entityID uuid.UUID, summary any) {
	log, err := NewLog(actor, action, entityType, entityID, summary)
	if err != nil {
		r.logger.Error("failed to build audit record",
			zap.String("action", action),
			zap.String("entity_type", entityType),
			zap.String("entity_id", entityID.String()),
			zap.Error(err),
		)
		return
	}

	if err := r.repo.Append(ctx, log); err != nil {
		r.logger.Error("failed to append audit record",
			zap.String("action", action),
			zap.String("entity_type", entityType),
			zap.String("entity_id", entityID.String()),
			zap.Error(err),
		)
	}
}
