package loyalty

import (
	"context"

	"github.com/google/uuid"
)

// AccountRepository defines persistence for loyalty balances
type AccountRepository interface {
	// FindByCustomer loads the account for a customer, or shared.ErrNotFound
	FindByCustomer(ctx context.Context, customerID uuid.UUID) (*Account, error)

	// FindByCustomerForUpdate loads the account holding a row lock
	FindByCustomerForUpdate(ctx context.Context, customerID uuid.UUID) (*Account, error)

	// Create persists a new account within the caller's tx
	Create(ctx context.Context, account *Account) error

	// Save persists balance mutations with an optimistic version check
	Save(ctx context.Context, account *Account) error
}

// TransactionRepository defines persistence for the append-only point ledger
type TransactionRepository interface {
	// Append persists a transaction; rows are never updated or deleted
	Append(ctx context.Context, tx *Transaction) error

	// FindByCustomer returns transactions for a customer, newest first
	FindByCustomer(ctx context.Context, customerID uuid.UUID, limit int) ([]Transaction, error)

	// FindBySale returns transactions originating from a sale
	FindBySale(ctx context.Context, saleID uuid.UUID) ([]Transaction, error)

	// SumByCustomer returns the running sum of deltas for a customer
	SumByCustomer(ctx context.Context, customerID uuid.UUID) (int64, error)
}
