package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pos/backend/internal/domain/notification"
	"github.com/pos/backend/internal/domain/shared"
)

// GormNotificationRepository implements notification.Repository using GORM
type GormNotificationRepository struct {
	db *gorm.DB
}

// NewGormNotificationRepository creates a new GormNotificationRepository
func NewGormNotificationRepository(db *gorm.DB) *GormNotificationRepository {
	return &GormNotificationRepository{db: db}
}

func (r *GormNotificationRepository) conn(ctx context.Context) *gorm.DB {
	return dbFromContext(ctx, r.db).WithContext(ctx)
}

// Create persists a new notification
func (r *GormNotificationRepository) Create(ctx context.Context, n *notification.Notification) error {
	return r.conn(ctx).Create(n).Error
}

// Update persists notification state changes
func (r *GormNotificationRepository) Update(ctx context.Context, n *notification.Notification) error {
	return r.conn(ctx).Save(n).Error
}

// FindByID finds a notification by its ID
func (r *GormNotificationRepository) FindByID(ctx context.Context, id uuid.UUID) (*notification.Notification, error) {
	var n notification.Notification
	if err := r.conn(ctx).First(&n, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &n, nil
}

// FindDeliverable returns queued notifications plus failed ones whose next
// retry time has passed, oldest first, up to limit
func (r *GormNotificationRepository) FindDeliverable(ctx context.Context, limit int) ([]*notification.Notification, error) {
	var notifications []*notification.Notification
	err := r.conn(ctx).
		Where("status = ? OR (status = ? AND next_retry_at <= ?)",
			notification.StatusQueued, notification.StatusFailed, time.Now()).
		Order("created_at ASC").
		Limit(limit).
		Find(&notifications).Error
	if err != nil {
		return nil, err
	}
	return notifications, nil
}

// FindByStatus returns notifications in the given status, oldest first
func (r *GormNotificationRepository) FindByStatus(ctx context.Context, status notification.Status, limit int) ([]*notification.Notification, error) {
	var notifications []*notification.Notification
	query := r.conn(ctx).
		Where("status = ?", status).
		Order("created_at ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&notifications).Error; err != nil {
		return nil, err
	}
	return notifications, nil
}

// FindBySale returns all notifications enqueued for a sale
func (r *GormNotificationRepository) FindBySale(ctx context.Context, saleID uuid.UUID) ([]*notification.Notification, error) {
	var notifications []*notification.Notification
	if err := r.conn(ctx).
		Where("sale_id = ?", saleID).
		Order("created_at ASC").
		Find(&notifications).Error; err != nil {
		return nil, err
	}
	return notifications, nil
}
