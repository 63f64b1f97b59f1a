package notification

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines persistence for notifications
type Repository interface {
	Create(ctx context.Context, n *Notification) error
	Update(ctx context.Context, n *Notification) error
	FindByID(ctx context.Context, id uuid.UUID) (*Notification, error)
	// FindDeliverable returns queued notifications plus failed ones whose
	// next retry time has passed, oldest first, up to limit.
	FindDeliverable(ctx context.Context, limit int) ([]*Notification, error)
	FindByStatus(ctx context.Context, status Status, limit int) ([]*Notification, error)
	FindBySale(ctx context.Context, saleID uuid.UUID) ([]*Notification, error)
}
