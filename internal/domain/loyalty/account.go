package loyalty

import (
	"time"

	"github.com/google/uuid"

	"github.com/pos/backend/internal/domain/shared"
)

// Account is the cached loyalty balance for a customer.
// Like the stock counter, it is derived from the transaction ledger and
// mutated only through Ledger.Apply.
type Account struct {
	shared.BaseAggregateRoot
	CustomerID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex"`
	Balance    int64     `gorm:"not null;default:0"`
}

// TableName returns the table name for GORM
func (Account) TableName() string {
	return "loyalty_accounts"
}

// NewAccount creates a loyalty account for a customer starting at zero
func NewAccount(customerID uuid.UUID) (*Account, error) {
	if customerID == uuid.Nil {
		return nil, shared.NewDomainError(shared.CodeInvalidRequest, "Customer ID cannot be empty")
	}
	return &Account{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		CustomerID:        customerID,
		Balance:           0,
	}, nil
}

// Adjust applies a signed point delta to the balance.
// A delta that would push the balance below zero fails with
// INSUFFICIENT_POINTS and leaves the balance untouched.
func (a *Account) Adjust(delta int64) error {
	next := a.Balance + delta
	if next < 0 {
		return shared.ErrInsufficientPoints
	}
	a.Balance = next
	a.UpdatedAt = time.Now()
	a.IncrementVersion()
	return nil
}
