package sale

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/pos/backend/internal/domain/shared"
)

// RefundItem records one refunded line within a committed refund
type RefundItem struct {
	ID         uuid.UUID
	RefundID   uuid.UUID       `gorm:"type:uuid;not null;index:idx_refund_items_refund"`
	SaleItemID uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID  uuid.UUID       `gorm:"type:uuid;not null"`
	Quantity   decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Amount     decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	Reason     string          `gorm:"type:varchar(255)"`
	CreatedAt  time.Time
}

// TableName returns the table name for GORM
func (RefundItem) TableName() string {
	return "refund_items"
}

// Refund is the committed record of a (partial) sale reversal.
// It references the sale weakly: refund rows survive recomputation of
// sale-level aggregates and are never rewritten.
type Refund struct {
	shared.BaseEntity
	SaleID         uuid.UUID       `gorm:"type:uuid;not null;index"`
	Number         string          `gorm:"type:varchar(50);not null;uniqueIndex"`
	Amount         decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	PointsReversed int64           `gorm:"not null;default:0"`
	PointsRestored int64           `gorm:"not null;default:0"`
	Actor          string          `gorm:"type:varchar(100);not null"`
	Items          []RefundItem    `gorm:"foreignKey:RefundID;references:ID"`
}

// TableName returns the table name for GORM
func (Refund) TableName() string {
	return "refunds"
}

// NewRefund builds the refund record from the lines a sale accepted
func NewRefund(saleID uuid.UUID, number, actor string, lines []RefundedLine) (*Refund, error) {
	if saleID == uuid.Nil {
		return nil, shared.NewDomainError(shared.CodeInvalidRequest, "Sale ID cannot be empty")
	}
	if number == "" {
		return nil, shared.NewDomainError(shared.CodeInvalidRequest, "Refund number cannot be empty")
	}
	if len(lines) == 0 {
		return nil, shared.NewDomainError(shared.CodeInvalidRequest, "Refund requires at least one line")
	}

	r := &Refund{
		BaseEntity: shared.NewBaseEntity(),
		SaleID:     saleID,
		Number:     number,
		Amount:     decimal.Zero,
		Actor:      actor,
		Items:      make([]RefundItem, 0, len(lines)),
	}

	now := time.Now()
	for _, line := range lines {
		r.Items = append(r.Items, RefundItem{
			ID:         uuid.New(),
			RefundID:   r.ID,
			SaleItemID: line.SaleItemID,
			ProductID:  line.ProductID,
			Quantity:   line.Quantity,
			Amount:     line.Amount,
			Reason:     line.Reason,
			CreatedAt:  now,
		})
		r.Amount = r.Amount.Add(line.Amount)
	}

	return r, nil
}

// SetLoyaltyReversal records the loyalty point movements this refund caused
func (r *Refund) SetLoyaltyReversal(reversed, restored int64) {
	r.PointsReversed = reversed
	r.PointsRestored = restored
	r.UpdatedAt = time.Now()
}
