package notification

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Status represents the delivery status of a notification
type Status string

const (
	StatusQueued  Status = "QUEUED"
	StatusSending Status = "SENDING"
	StatusSent    Status = "SENT"
	StatusFailed  Status = "FAILED"
	StatusDead    Status = "DEAD"
)

// Kind represents what the notification carries
type Kind string

const (
	KindReceipt Kind = "RECEIPT"
	KindAlert   Kind = "ALERT"
)

// Default retry configuration
const (
	DefaultMaxRetries  = 5
	DefaultBaseBackoff = time.Second
)

// Notification is a queued side-channel message (receipt, alert) produced
// after a successful commercial commit. Delivery is asynchronous with
// bounded retries and never affects commerce state.
type Notification struct {
	ID          uuid.UUID
	Kind        Kind       `gorm:"type:varchar(20);not null"`
	Recipient   string     `gorm:"type:varchar(255);not null"`
	SaleID      *uuid.UUID `gorm:"type:uuid;index"`
	Payload     []byte     `gorm:"type:jsonb;not null"`
	Status      Status     `gorm:"type:varchar(20);not null;index"`
	RetryCount  int        `gorm:"not null;default:0"`
	MaxRetries  int        `gorm:"not null"`
	ResendCount int        `gorm:"not null;default:0"` // Operator-triggered re-queues, distinct from automatic retries
	LastError   string     `gorm:"type:varchar(500)"`
	NextRetryAt *time.Time
	SentAt      *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// TableName returns the table name for GORM
func (Notification) TableName() string {
	return "notifications"
}

// New creates a queued notification
func New(kind Kind, recipient string, saleID *uuid.UUID, payload []byte) *Notification {
	now := time.Now()
	return &Notification{
		ID:         uuid.New(),
		Kind:       kind,
		Recipient:  recipient,
		SaleID:     saleID,
		Payload:    payload,
		Status:     StatusQueued,
		RetryCount: 0,
		MaxRetries: DefaultMaxRetries,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// CanRetry returns true if the notification is due for another attempt
func (n *Notification) CanRetry() bool {
	return n.Status == StatusFailed && n.RetryCount < n.MaxRetries
}

// MarkSending marks the notification as being delivered
func (n *Notification) MarkSending() error {
	if n.Status != StatusQueued && n.Status != StatusFailed {
		return errors.New("can only mark queued or failed notifications as sending")
	}
	n.Status = StatusSending
	n.UpdatedAt = time.Now()
	return nil
}

// MarkSent marks the notification as successfully delivered
func (n *Notification) MarkSent() {
	now := time.Now()
	n.Status = StatusSent
	n.SentAt = &now
	n.UpdatedAt = now
}

// MarkFailed records a delivery failure and schedules the next attempt
// with exponential backoff; attempts beyond MaxRetries park the
// notification as dead for the operator view.
func (n *Notification) MarkFailed(errMsg string) {
	n.RetryCount++
	n.LastError = errMsg
	n.UpdatedAt = time.Now()

	if n.RetryCount >= n.MaxRetries {
		n.Status = StatusDead
	} else {
		n.Status = StatusFailed
		// Exponential backoff: 1s, 2s, 4s, 8s, ...
		backoff := DefaultBaseBackoff * time.Duration(1<<uint(n.RetryCount-1))
		nextRetry := time.Now().Add(backoff)
		n.NextRetryAt = &nextRetry
	}
}

// Resend re-queues a failed or dead notification at an operator's request.
// The resend counter is incremented; the automatic retry counter resets.
func (n *Notification) Resend() error {
	if n.Status != StatusFailed && n.Status != StatusDead {
		return errors.New("can only resend failed or dead notifications")
	}
	n.Status = StatusQueued
	n.RetryCount = 0
	n.ResendCount++
	n.LastError = ""
	n.NextRetryAt = nil
	n.UpdatedAt = time.Now()
	return nil
}

// IsDead returns true if automatic delivery has been abandoned
func (n *Notification) IsDead() bool {
	return n.Status == StatusDead
}
