package sale

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines persistence for sales.
// Mutating methods participate in the caller's unit-of-work transaction.
type Repository interface {
	// FindByID loads a sale with its items
	FindByID(ctx context.Context, id uuid.UUID) (*Sale, error)

	// FindByIDForUpdate loads a sale with its items, holding a row lock so
	// concurrent refunds against the same sale serialize
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*Sale, error)

	// FindByIdempotencyKey returns the sale committed under the given key,
	// or shared.ErrNotFound
	FindByIdempotencyKey(ctx context.Context, key string) (*Sale, error)

	// Create persists a new sale with its items
	Create(ctx context.Context, s *Sale) error

	// Update persists sale mutations with an optimistic version check;
	// returns shared.ErrTransactionConflict when the version moved
	Update(ctx context.Context, s *Sale) error

	// NextNumber generates the next sale number (e.g. S-2026-00001)
	NextNumber(ctx context.Context) (string, error)
}

// RefundRepository defines persistence for committed refund records
type RefundRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Refund, error)
	FindBySale(ctx context.Context, saleID uuid.UUID) ([]Refund, error)
	Create(ctx context.Context, r *Refund) error
	NextNumber(ctx context.Context) (string, error)
}
