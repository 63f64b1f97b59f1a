package persistence

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pos/backend/internal/domain/audit"
)

// GormAuditRepository implements audit.Repository using GORM
type GormAuditRepository struct {
	db *gorm.DB
}

// NewGormAuditRepository creates a new GormAuditRepository
func NewGormAuditRepository(db *gorm.DB) *GormAuditRepository {
	return &GormAuditRepository{db: db}
}

func (r *GormAuditRepository) conn(ctx context.Context) *gorm.DB {
	return dbFromContext(ctx, r.db).WithContext(ctx)
}

// Append persists an audit record; records are never updated or deleted
func (r *GormAuditRepository) Append(ctx context.Context, log *audit.Log) error {
	return r.conn(ctx).Create(log).Error
}

// FindByEntity returns records for an entity, newest first
func (r *GormAuditRepository) FindByEntity(ctx context.Context, entityType string, entityID uuid.UUID, limit int) ([]audit.Log, error) {
	var logs []audit.Log
	query := r.conn(ctx).
		Where("entity_type = ? AND entity_id = ?", entityType, entityID).
		Order("created_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&logs).Error; err != nil {
		return nil, err
	}
	return logs, nil
}
