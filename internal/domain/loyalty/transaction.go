package loyalty

import (
	"time"

	"github.com/google/uuid"

	"github.com/pos/backend/internal/domain/shared"
)

// TransactionType represents the kind of loyalty point movement
type TransactionType string

const (
	// TransactionTypeEarn is points granted for a purchase
	TransactionTypeEarn TransactionType = "EARN"
	// TransactionTypeRedeem is points spent as a checkout discount
	TransactionTypeRedeem TransactionType = "REDEEM"
	// TransactionTypeReverse is a refund-driven correction, in either direction
	TransactionTypeReverse TransactionType = "REVERSE"
)

// String returns the string representation of TransactionType
func (t TransactionType) String() string {
	return string(t)
}

// IsValid returns true if the transaction type is valid
func (t TransactionType) IsValid() bool {
	switch t {
	case TransactionTypeEarn, TransactionTypeRedeem, TransactionTypeReverse:
		return true
	}
	return false
}

// Transaction is an immutable record of a signed loyalty point movement.
// A customer's balance is the running sum of their transactions, mirrored
// by the Account counter in the same transaction. Rows are only appended,
// never rewritten: refunds produce reversal entries.
type Transaction struct {
	shared.BaseEntity
	CustomerID    uuid.UUID       `gorm:"type:uuid;not null;index:idx_loyalty_tx_customer"`
	PointsDelta   int64           `gorm:"not null"` // Signed: positive earns, negative redeems
	Type          TransactionType `gorm:"type:varchar(20);not null;index"`
	SaleID        *uuid.UUID      `gorm:"type:uuid;index"` // Weak reference to the originating sale
	BalanceBefore int64           `gorm:"not null"`
	BalanceAfter  int64           `gorm:"not null"`
	OccurredAt    time.Time       `gorm:"type:timestamptz;not null;index"`
}

// TableName returns the table name for GORM
func (Transaction) TableName() string {
	return "loyalty_transactions"
}

// NewTransaction creates a new loyalty transaction record
func NewTransaction(
	customerID uuid.UUID,
	pointsDelta int64,
	txType TransactionType,
	saleID *uuid.UUID,
	balanceBefore, balanceAfter int64,
) (*Transaction, error) {
	if customerID == uuid.Nil {
		return nil, shared.NewDomainError(shared.CodeInvalidRequest, "Customer ID cannot be empty")
	}
	if pointsDelta == 0 {
		return nil, shared.NewDomainError(shared.CodeInvalidRequest, "Points delta cannot be zero")
	}
	if !txType.IsValid() {
		return nil, shared.NewDomainError(shared.CodeInvalidRequest, "Invalid transaction type")
	}
	if balanceBefore+pointsDelta != balanceAfter {
		return nil, shared.NewDomainError(shared.CodeInvalidRequest, "Transaction balances do not reconcile")
	}

	return &Transaction{
		BaseEntity:    shared.NewBaseEntity(),
		CustomerID:    customerID,
		PointsDelta:   pointsDelta,
		Type:          txType,
		SaleID:        saleID,
		BalanceBefore: balanceBefore,
		BalanceAfter:  balanceAfter,
		OccurredAt:    time.Now(),
	}, nil
}
