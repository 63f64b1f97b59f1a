package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pos/backend/internal/domain/loyalty"
	"github.com/pos/backend/internal/domain/shared"
)

// GormAccountRepository implements loyalty.AccountRepository using GORM
type GormAccountRepository struct {
	db *gorm.DB
}

// NewGormAccountRepository creates a new GormAccountRepository
func NewGormAccountRepository(db *gorm.DB) *GormAccountRepository {
	return &GormAccountRepository{db: db}
}

func (r *GormAccountRepository) conn(ctx context.Context) *gorm.DB {
	return dbFromContext(ctx, r.db).WithContext(ctx)
}

// FindByCustomer finds the loyalty account for a customer
func (r *GormAccountRepository) FindByCustomer(ctx context.Context, customerID uuid.UUID) (*loyalty.Account, error) {
	var account loyalty.Account
	if err := r.conn(ctx).
		First(&account, "customer_id = ?", customerID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &account, nil
}

// FindByCustomerForUpdate finds the loyalty account for a customer, holding
// a row lock until the surrounding transaction ends
func (r *GormAccountRepository) FindByCustomerForUpdate(ctx context.Context, customerID uuid.UUID) (*loyalty.Account, error) {
	var account loyalty.Account
	if err := forUpdate(r.conn(ctx)).
		First(&account, "customer_id = ?", customerID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &account, nil
}

// Create persists a new loyalty account
func (r *GormAccountRepository) Create(ctx context.Context, account *loyalty.Account) error {
	return r.conn(ctx).Create(account).Error
}

// Save persists balance mutations with an optimistic version check
func (r *GormAccountRepository) Save(ctx context.Context, account *loyalty.Account) error {
	result := r.conn(ctx).
		Model(&loyalty.Account{}).
		Where("id = ? AND version = ?", account.ID, account.Version-1).
		Updates(map[string]interface{}{
			"balance":    account.Balance,
			"version":    account.Version,
			"updated_at": account.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrTransactionConflict
	}
	return nil
}

// GormTransactionRepository implements loyalty.TransactionRepository using GORM
type GormTransactionRepository struct {
	db *gorm.DB
}

// NewGormTransactionRepository creates a new GormTransactionRepository
func NewGormTransactionRepository(db *gorm.DB) *GormTransactionRepository {
	return &GormTransactionRepository{db: db}
}

func (r *GormTransactionRepository) conn(ctx context.Context) *gorm.DB {
	return dbFromContext(ctx, r.db).WithContext(ctx)
}

// Append persists a transaction; rows are never updated or deleted
func (r *GormTransactionRepository) Append(ctx context.Context, tx *loyalty.Transaction) error {
	return r.conn(ctx).Create(tx).Error
}

// FindByCustomer returns transactions for a customer, newest first
func (r *GormTransactionRepository) FindByCustomer(ctx context.Context, customerID uuid.UUID, limit int) ([]loyalty.Transaction, error) {
	var transactions []loyalty.Transaction
	query := r.conn(ctx).
		Where("customer_id = ?", customerID).
		Order("occurred_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&transactions).Error; err != nil {
		return nil, err
	}
	return transactions, nil
}

// FindBySale returns transactions originating from a sale, oldest first
func (r *GormTransactionRepository) FindBySale(ctx context.Context, saleID uuid.UUID) ([]loyalty.Transaction, error) {
	var transactions []loyalty.Transaction
	if err := r.conn(ctx).
		Where("sale_id = ?", saleID).
		Order("occurred_at ASC").
		Find(&transactions).Error; err != nil {
		return nil, err
	}
	return transactions, nil
}

// SumByCustomer returns the sum of all point deltas for a customer.
// Equals the cached balance when the ledger and balance agree.
func (r *GormTransactionRepository) SumByCustomer(ctx context.Context, customerID uuid.UUID) (int64, error) {
	var total int64
	err := r.conn(ctx).
		Model(&loyalty.Transaction{}).
		Select("COALESCE(SUM(points_delta), 0)").
		Where("customer_id = ?", customerID).
		Scan(&total).Error
	if err != nil {
		return 0, err
	}
	return total, nil
}
