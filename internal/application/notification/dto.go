package notification

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/pos/backend/internal/domain/notification"
)

// NotificationResponse represents a notification in responses
type NotificationResponse struct {
	ID          uuid.UUID       `json:"id"`
	Kind        string          `json:"kind"`
	Recipient   string          `json:"recipient"`
	SaleID      *uuid.UUID      `json:"sale_id,omitempty"`
	Payload     json.RawMessage `json:"payload"`
	Status      string          `json:"status"`
	RetryCount  int             `json:"retry_count"`
	MaxRetries  int             `json:"max_retries"`
	ResendCount int             `json:"resend_count"`
	LastError   string          `json:"last_error,omitempty"`
	NextRetryAt *time.Time      `json:"next_retry_at,omitempty"`
	SentAt      *time.Time      `json:"sent_at,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}

// ToNotificationResponse converts a notification to its response representation
func ToNotificationResponse(n *notification.Notification) NotificationResponse {
	return NotificationResponse{
		ID:          n.ID,
		Kind:        string(n.Kind),
		Recipient:   n.Recipient,
		SaleID:      n.SaleID,
		Payload:     json.RawMessage(n.Payload),
		Status:      string(n.Status),
		RetryCount:  n.RetryCount,
		MaxRetries:  n.MaxRetries,
		ResendCount: n.ResendCount,
		LastError:   n.LastError,
		NextRetryAt: n.NextRetryAt,
		SentAt:      n.SentAt,
		CreatedAt:   n.CreatedAt,
	}
}
