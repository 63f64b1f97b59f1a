package loyalty

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/pos/backend/internal/domain/shared"
)

// Ledger applies signed point deltas, appending a transaction and updating
// the cached balance inside the caller's transaction. It is the only code
// path that mutates loyalty balances.
type Ledger struct {
	accounts     AccountRepository
	transactions TransactionRepository
}

// NewLedger creates a Ledger over the given repositories
func NewLedger(accounts AccountRepository, transactions TransactionRepository) *Ledger {
	return &Ledger{accounts: accounts, transactions: transactions}
}

// Apply appends a transaction for the customer and updates their balance.
// The account row is read under a row lock; a delta that would drive the
// balance negative fails with INSUFFICIENT_POINTS and the caller's
// transaction must abort.
func (l *Ledger) Apply(
	ctx context.Context,
	customerID uuid.UUID,
	pointsDelta int64,
	txType TransactionType,
	saleID *uuid.UUID,
) (*Transaction, error) {
	fresh := false
	account, err := l.accounts.FindByCustomerForUpdate(ctx, customerID)
	if errors.Is(err, shared.ErrNotFound) {
		// First transaction for this customer creates their account
		account, err = NewAccount(customerID)
		fresh = true
	}
	if err != nil {
		return nil, err
	}

	before := account.Balance
	if err := account.Adjust(pointsDelta); err != nil {
		return nil, err
	}

	tx, err := NewTransaction(customerID, pointsDelta, txType, saleID, before, account.Balance)
	if err != nil {
		return nil, err
	}

	if fresh {
		err = l.accounts.Create(ctx, account)
	} else {
		err = l.accounts.Save(ctx, account)
	}
	if err != nil {
		return nil, err
	}
	if err := l.transactions.Append(ctx, tx); err != nil {
		return nil, err
	}

	return tx, nil
}

// BalanceOf returns the current cached balance for a customer; customers
// without an account have a zero balance.
func (l *Ledger) BalanceOf(ctx context.Context, customerID uuid.UUID) (int64, error) {
	account, err := l.accounts.FindByCustomer(ctx, customerID)
	if errors.Is(err, shared.ErrNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return account.Balance, nil
}
