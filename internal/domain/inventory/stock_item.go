package inventory

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/pos/backend/internal/domain/shared"
)

// StockItem is the cached stock counter for a product.
// It is derived from the movement ledger and kept consistent with it inside
// the same transaction; all mutation goes through Adjuster.Apply so the
// non-negativity invariant has a single enforcement point.
type StockItem struct {
	shared.BaseAggregateRoot
	ProductID      uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex"`
	QuantityOnHand decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
}

// TableName returns the table name for GORM
func (StockItem) TableName() string {
	return "stock_items"
}

// NewStockItem creates a stock counter for a product starting at zero
func NewStockItem(productID uuid.UUID) (*StockItem, error) {
	if productID == uuid.Nil {
		return nil, shared.NewDomainError(shared.CodeInvalidRequest, "Product ID cannot be empty")
	}
	return &StockItem{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		ProductID:         productID,
		QuantityOnHand:    decimal.Zero,
	}, nil
}

// Adjust applies a signed delta to the counter.
// A delta that would push the quantity below zero fails with
// INSUFFICIENT_STOCK and leaves the counter untouched.
func (i *StockItem) Adjust(delta decimal.Decimal) error {
	next := i.QuantityOnHand.Add(delta)
	if next.IsNegative() {
		return shared.ErrInsufficientStock
	}
	i.QuantityOnHand = next
	i.UpdatedAt = time.Now()
	i.IncrementVersion()
	return nil
}
