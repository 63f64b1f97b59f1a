package inventory

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/pos/backend/internal/domain/shared"
)

// Adjuster applies signed stock deltas, appending a movement and updating
// the cached counter inside the caller's transaction. It is the only code
// path that mutates stock.
type Adjuster struct {
	items     StockItemRepository
	movements MovementRepository
}

// NewAdjuster creates an Adjuster over the given repositories
func NewAdjuster(items StockItemRepository, movements MovementRepository) *Adjuster {
	return &Adjuster{items: items, movements: movements}
}

// Apply appends a movement for the product and updates its counter.
// The counter row is read under a row lock; a delta that would drive stock
// negative fails with INSUFFICIENT_STOCK and the caller's transaction must
// abort so no partial decrement is ever visible.
func (a *Adjuster) Apply(
	ctx context.Context,
	productID uuid.UUID,
	delta decimal.Decimal,
	movementType MovementType,
	saleID *uuid.UUID,
	reason string,
) (*Movement, error) {
	fresh := false
	item, err := a.items.FindByProductForUpdate(ctx, productID)
	if errors.Is(err, shared.ErrNotFound) {
		// First movement for this product creates its counter
		item, err = NewStockItem(productID)
		fresh = true
	}
	if err != nil {
		return nil, err
	}

	before := item.QuantityOnHand
	if err := item.Adjust(delta); err != nil {
		return nil, err
	}

	movement, err := NewMovement(productID, delta, movementType, saleID, before, item.QuantityOnHand)
	if err != nil {
		return nil, err
	}
	if reason != "" {
		movement.WithReason(reason)
	}

	if fresh {
		err = a.items.Create(ctx, item)
	} else {
		err = a.items.Save(ctx, item)
	}
	if err != nil {
		return nil, err
	}
	if err := a.movements.Append(ctx, movement); err != nil {
		return nil, err
	}

	return movement, nil
}
