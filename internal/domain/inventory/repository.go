package inventory

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// StockItemRepository defines persistence for stock counters
type StockItemRepository interface {
	// FindByProduct loads the counter for a product, or shared.ErrNotFound
	FindByProduct(ctx context.Context, productID uuid.UUID) (*StockItem, error)

	// FindByProductForUpdate loads the counter holding a row lock, so two
	// concurrent checkouts cannot both observe sufficient stock
	FindByProductForUpdate(ctx context.Context, productID uuid.UUID) (*StockItem, error)

	// Create persists a new counter within the caller's tx
	Create(ctx context.Context, item *StockItem) error

	// Save persists counter mutations with an optimistic version check
	Save(ctx context.Context, item *StockItem) error
}

// MovementRepository defines persistence for the append-only movement ledger
type MovementRepository interface {
	// Append persists a movement; movements are never updated or deleted
	Append(ctx context.Context, m *Movement) error

	// FindByProduct returns movements for a product, newest first
	FindByProduct(ctx context.Context, productID uuid.UUID, limit int) ([]Movement, error)

	// FindBySale returns movements originating from a sale
	FindBySale(ctx context.Context, saleID uuid.UUID) ([]Movement, error)

	// SumByProduct returns the running sum of deltas for a product,
	// used to validate the cached counter against the ledger
	SumByProduct(ctx context.Context, productID uuid.UUID) (decimal.Decimal, error)
}
