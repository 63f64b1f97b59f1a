package audit

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/pos/backend/internal/domain/shared"
)

// Log is an immutable record of a mutating operation: who did what to
// which entity, with a before/after summary. Rows are appended and never
// mutated or deleted.
type Log struct {
	ID         uuid.UUID
	Actor      string    `gorm:"type:varchar(100);not null;index"`
	Action     string    `gorm:"type:varchar(50);not null;index"`
	EntityType string    `gorm:"type:varchar(50);not null;index:idx_audit_entity"`
	EntityID   uuid.UUID `gorm:"type:uuid;not null;index:idx_audit_entity"`
	Summary    []byte    `gorm:"type:jsonb"`
	CreatedAt  time.Time `gorm:"type:timestamptz;not null;index"`
}

// TableName returns the table name for GORM
func (Log) TableName() string {
	return "audit_logs"
}

// Actions recorded by the commerce core
const (
	ActionSaleCreated     = "SALE_CREATED"
	ActionSaleVoided      = "SALE_VOIDED"
	ActionRefundProcessed = "REFUND_PROCESSED"
)

// Entity types referenced by audit records
const (
	EntitySale   = "sale"
	EntityRefund = "refund"
)

// NewLog creates an audit record. The summary is marshalled to JSON;
// a summary that cannot be marshalled is an invalid record.
func NewLog(actor, action, entityType string, entityID uuid.UUID, summary any) (*Log, error) {
	if actor == "" {
		return nil, shared.NewDomainError(shared.CodeInvalidRequest, "Audit actor cannot be empty")
	}
	if action == "" {
		return nil, shared.NewDomainError(shared.CodeInvalidRequest, "Audit action cannot be empty")
	}
	if entityType == "" || entityID == uuid.Nil {
		return nil, shared.NewDomainError(shared.CodeInvalidRequest, "Audit entity reference cannot be empty")
	}

	payload, err := json.Marshal(summary)
	if err != nil {
		return nil, shared.NewDomainError(shared.CodeInvalidRequest, "Audit summary is not serializable")
	}

	return &Log{
		ID:         uuid.New(),
		Actor:      actor,
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		Summary:    payload,
		CreatedAt:  time.Now(),
	}, nil
}
