package checkout

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"github.com/pos/backend/internal/domain/audit"
	"github.com/pos/backend/internal/domain/inventory"
	"github.com/pos/backend/internal/domain/loyalty"
	"github.com/pos/backend/internal/domain/notification"
	"github.com/pos/backend/internal/domain/sale"
)

// fakeUnitOfWork executes the unit inline without a real transaction
type fakeUnitOfWork struct{}

func (fakeUnitOfWork) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// MockSaleRepository is a mock implementation of sale.Repository
type MockSaleRepository struct {
	mock.Mock
}

func (m *MockSaleRepository) FindByID(ctx context.Context, id uuid.UUID) (*sale.Sale, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*sale.Sale), args.Error(1)
}

func (m *MockSaleRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*sale.Sale, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*sale.Sale), args.Error(1)
}

func (m *MockSaleRepository) FindByIdempotencyKey(ctx context.Context, key string) (*sale.Sale, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*sale.Sale), args.Error(1)
}

func (m *MockSaleRepository) Create(ctx context.Context, s *sale.Sale) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}

func (m *MockSaleRepository) Update(ctx context.Context, s *sale.Sale) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}

func (m *MockSaleRepository) NextNumber(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

// MockRefundRepository is a mock implementation of sale.RefundRepository
type MockRefundRepository struct {
	mock.Mock
}

func (m *MockRefundRepository) FindByID(ctx context.Context, id uuid.UUID) (*sale.Refund, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*sale.Refund), args.Error(1)
}

func (m *MockRefundRepository) FindBySale(ctx context.Context, saleID uuid.UUID) ([]sale.Refund, error) {
	args := m.Called(ctx, saleID)
	return args.Get(0).([]sale.Refund), args.Error(1)
}

func (m *MockRefundRepository) Create(ctx context.Context, r *sale.Refund) error {
	args := m.Called(ctx, r)
	return args.Error(0)
}

func (m *MockRefundRepository) NextNumber(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

// MockStockItemRepository is a mock implementation of inventory.StockItemRepository
type MockStockItemRepository struct {
	mock.Mock
}

func (m *MockStockItemRepository) FindByProduct(ctx context.Context, productID uuid.UUID) (*inventory.StockItem, error) {
	args := m.Called(ctx, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*inventory.StockItem), args.Error(1)
}

func (m *MockStockItemRepository) FindByProductForUpdate(ctx context.Context, productID uuid.UUID) (*inventory.StockItem, error) {
	args := m.Called(ctx, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*inventory.StockItem), args.Error(1)
}

func (m *MockStockItemRepository) Create(ctx context.Context, item *inventory.StockItem) error {
	args := m.Called(ctx, item)
	return args.Error(0)
}

func (m *MockStockItemRepository) Save(ctx context.Context, item *inventory.StockItem) error {
	args := m.Called(ctx, item)
	return args.Error(0)
}

// MockMovementRepository is a mock implementation of inventory.MovementRepository
type MockMovementRepository struct {
	mock.Mock
}

func (m *MockMovementRepository) Append(ctx context.Context, movement *inventory.Movement) error {
	args := m.Called(ctx, movement)
	return args.Error(0)
}

func (m *MockMovementRepository) FindByProduct(ctx context.Context, productID uuid.UUID, limit int) ([]inventory.Movement, error) {
	args := m.Called(ctx, productID, limit)
	return args.Get(0).([]inventory.Movement), args.Error(1)
}

func (m *MockMovementRepository) FindBySale(ctx context.Context, saleID uuid.UUID) ([]inventory.Movement, error) {
	args := m.Called(ctx, saleID)
	return args.Get(0).([]inventory.Movement), args.Error(1)
}

func (m *MockMovementRepository) SumByProduct(ctx context.Context, productID uuid.UUID) (decimal.Decimal, error) {
	args := m.Called(ctx, productID)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

// MockAccountRepository is a mock implementation of loyalty.AccountRepository
type MockAccountRepository struct {
	mock.Mock
}

func (m *MockAccountRepository) FindByCustomer(ctx context.Context, customerID uuid.UUID) (*loyalty.Account, error) {
	args := m.Called(ctx, customerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*loyalty.Account), args.Error(1)
}

func (m *MockAccountRepository) FindByCustomerForUpdate(ctx context.Context, customerID uuid.UUID) (*loyalty.Account, error) {
	args := m.Called(ctx, customerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*loyalty.Account), args.Error(1)
}

func (m *MockAccountRepository) Create(ctx context.Context, account *loyalty.Account) error {
	args := m.Called(ctx, account)
	return args.Error(0)
}

func (m *MockAccountRepository) Save(ctx context.Context, account *loyalty.Account) error {
	args := m.Called(ctx, account)
	return args.Error(0)
}

// MockLoyaltyTransactionRepository is a mock implementation of loyalty.TransactionRepository
type MockLoyaltyTransactionRepository struct {
	mock.Mock
}

func (m *MockLoyaltyTransactionRepository) Append(ctx context.Context, tx *loyalty.Transaction) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

func (m *MockLoyaltyTransactionRepository) FindByCustomer(ctx context.Context, customerID uuid.UUID, limit int) ([]loyalty.Transaction, error) {
	args := m.Called(ctx, customerID, limit)
	return args.Get(0).([]loyalty.Transaction), args.Error(1)
}

func (m *MockLoyaltyTransactionRepository) FindBySale(ctx context.Context, saleID uuid.UUID) ([]loyalty.Transaction, error) {
	args := m.Called(ctx, saleID)
	return args.Get(0).([]loyalty.Transaction), args.Error(1)
}

func (m *MockLoyaltyTransactionRepository) SumByCustomer(ctx context.Context, customerID uuid.UUID) (int64, error) {
	args := m.Called(ctx, customerID)
	return args.Get(0).(int64), args.Error(1)
}

// MockAuditRepository is a mock implementation of audit.Repository
type MockAuditRepository struct {
	mock.Mock
}

func (m *MockAuditRepository) Append(ctx context.Context, log *audit.Log) error {
	args := m.Called(ctx, log)
	return args.Error(0)
}

func (m *MockAuditRepository) FindByEntity(ctx context.Context, entityType string, entityID uuid.UUID, limit int) ([]audit.Log, error) {
	args := m.Called(ctx, entityType, entityID, limit)
	return args.Get(0).([]audit.Log), args.Error(1)
}

// MockNotificationRepository is a mock implementation of notification.Repository
type MockNotificationRepository struct {
	mock.Mock
}

func (m *MockNotificationRepository) Create(ctx context.Context, n *notification.Notification) error {
	args := m.Called(ctx, n)
	return args.Error(0)
}

func (m *MockNotificationRepository) Update(ctx context.Context, n *notification.Notification) error {
	args := m.Called(ctx, n)
	return args.Error(0)
}

func (m *MockNotificationRepository) FindByID(ctx context.Context, id uuid.UUID) (*notification.Notification, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*notification.Notification), args.Error(1)
}

func (m *MockNotificationRepository) FindDeliverable(ctx context.Context, limit int) ([]*notification.Notification, error) {
	args := m.Called(ctx, limit)
	return args.Get(0).([]*notification.Notification), args.Error(1)
}

func (m *MockNotificationRepository) FindByStatus(ctx context.Context, status notification.Status, limit int) ([]*notification.Notification, error) {
	args := m.Called(ctx, status, limit)
	return args.Get(0).([]*notification.Notification), args.Error(1)
}

func (m *MockNotificationRepository) FindBySale(ctx context.Context, saleID uuid.UUID) ([]*notification.Notification, error) {
	args := m.Called(ctx, saleID)
	return args.Get(0).([]*notification.Notification), args.Error(1)
}

// MockIdempotencyStore is a mock implementation of shared.IdempotencyStore
type MockIdempotencyStore struct {
	mock.Mock
}

func (m *MockIdempotencyStore) MarkProcessed(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	args := m.Called(ctx, key, ttl)
	return args.Bool(0), args.Error(1)
}

func (m *MockIdempotencyStore) IsProcessed(ctx context.Context, key string) (bool, error) {
	args := m.Called(ctx, key)
	return args.Bool(0), args.Error(1)
}

func (m *MockIdempotencyStore) Close() error {
	args := m.Called()
	return args.Error(0)
}
