package inventory

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/pos/backend/internal/domain/shared"
)

// MovementType represents the origin of a stock movement
type MovementType string

const (
	// MovementTypeSale is stock leaving inventory through a checkout
	MovementTypeSale MovementType = "SALE"
	// MovementTypeRefund is stock restored by a refund
	MovementTypeRefund MovementType = "REFUND"
	// MovementTypeAdjustment is a manual stock correction
	MovementTypeAdjustment MovementType = "ADJUSTMENT"
)

// String returns the string representation of MovementType
func (t MovementType) String() string {
	return string(t)
}

// IsValid returns true if the movement type is valid
func (t MovementType) IsValid() bool {
	switch t {
	case MovementTypeSale, MovementTypeRefund, MovementTypeAdjustment:
		return true
	}
	return false
}

// Movement is an immutable record of a signed stock change.
// Once created, movements are never updated or deleted - corrections are
// made with new movements. Current stock for a product is the running sum
// of its movements, mirrored by the StockItem counter in the same
// transaction.
type Movement struct {
	shared.BaseEntity
	ProductID     uuid.UUID       `gorm:"type:uuid;not null;index:idx_stock_movements_product"`
	QuantityDelta decimal.Decimal `gorm:"type:decimal(18,4);not null"` // Signed: negative for sales, positive for refunds
	MovementType  MovementType    `gorm:"type:varchar(20);not null;index"`
	SaleID        *uuid.UUID      `gorm:"type:uuid;index"` // Weak reference to the originating sale
	BalanceBefore decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	BalanceAfter  decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Reason        string          `gorm:"type:varchar(255)"`
	OccurredAt    time.Time       `gorm:"type:timestamptz;not null;index"`
}

// TableName returns the table name for GORM
func (Movement) TableName() string {
	return "stock_movements"
}

// NewMovement creates a new stock movement record
func NewMovement(
	productID uuid.UUID,
	quantityDelta decimal.Decimal,
	movementType MovementType,
	saleID *uuid.UUID,
	balanceBefore, balanceAfter decimal.Decimal,
) (*Movement, error) {
	if productID == uuid.Nil {
		return nil, shared.NewDomainError(shared.CodeInvalidRequest, "Product ID cannot be empty")
	}
	if quantityDelta.IsZero() {
		return nil, shared.NewDomainError(shared.CodeInvalidRequest, "Quantity delta cannot be zero")
	}
	if !movementType.IsValid() {
		return nil, shared.NewDomainError(shared.CodeInvalidRequest, "Invalid movement type")
	}
	if !balanceBefore.Add(quantityDelta).Equal(balanceAfter) {
		return nil, shared.NewDomainError(shared.CodeInvalidRequest, "Movement balances do not reconcile")
	}

	return &Movement{
		BaseEntity:    shared.NewBaseEntity(),
		ProductID:     productID,
		QuantityDelta: quantityDelta,
		MovementType:  movementType,
		SaleID:        saleID,
		BalanceBefore: balanceBefore,
		BalanceAfter:  balanceAfter,
		OccurredAt:    time.Now(),
	}, nil
}

// WithReason sets the reason for the movement
func (m *Movement) WithReason(reason string) *Movement {
	m.Reason = reason
	return m
}

// IsInbound returns true if this movement increases stock
func (m *Movement) IsInbound() bool {
	return m.QuantityDelta.IsPositive()
}
