package inventory

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/pos/backend/internal/domain/shared"
)

// MockStockItemRepository is a mock implementation of StockItemRepository
type MockStockItemRepository struct {
	mock.Mock
}

func (m *MockStockItemRepository) FindByProduct(ctx context.Context, productID uuid.UUID) (*StockItem, error) {
	args := m.Called(ctx, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*StockItem), args.Error(1)
}

func (m *MockStockItemRepository) FindByProductForUpdate(ctx context.Context, productID uuid.UUID) (*StockItem, error) {
	args := m.Called(ctx, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*StockItem), args.Error(1)
}

func (m *MockStockItemRepository) Create(ctx context.Context, item *StockItem) error {
	args := m.Called(ctx, item)
	return args.Error(0)
}

func (m *MockStockItemRepository) Save(ctx context.Context, item *StockItem) error {
	args := m.Called(ctx, item)
	return args.Error(0)
}

// MockMovementRepository is a mock implementation of MovementRepository
type MockMovementRepository struct {
	mock.Mock
}

func (m *MockMovementRepository) Append(ctx context.Context, movement *Movement) error {
	args := m.Called(ctx, movement)
	return args.Error(0)
}

func (m *MockMovementRepository) FindByProduct(ctx context.Context, productID uuid.UUID, limit int) ([]Movement, error) {
	args := m.Called(ctx, productID, limit)
	return args.Get(0).([]Movement), args.Error(1)
}

func (m *MockMovementRepository) FindBySale(ctx context.Context, saleID uuid.UUID) ([]Movement, error) {
	args := m.Called(ctx, saleID)
	return args.Get(0).([]Movement), args.Error(1)
}

func (m *MockMovementRepository) SumByProduct(ctx context.Context, productID uuid.UUID) (decimal.Decimal, error) {
	args := m.Called(ctx, productID)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func stockedItem(t *testing.T, productID uuid.UUID, onHand string) *StockItem {
	t.Helper()
	item, err := NewStockItem(productID)
	require.NoError(t, err)
	item.QuantityOnHand = decimal.RequireFromString(onHand)
	return item
}

func TestAdjuster_Apply_SaleDecrement(t *testing.T) {
	productID := uuid.New()
	saleID := uuid.New()
	item := stockedItem(t, productID, "10")

	items := new(MockStockItemRepository)
	movements := new(MockMovementRepository)
	items.On("FindByProductForUpdate", mock.Anything, productID).Return(item, nil)
	items.On("Save", mock.Anything, item).Return(nil)
	movements.On("Append", mock.Anything, mock.AnythingOfType("*inventory.Movement")).Return(nil)

	adjuster := NewAdjuster(items, movements)
	movement, err := adjuster.Apply(context.Background(), productID, decimal.NewFromInt(-3), MovementTypeSale, &saleID, "")
	require.NoError(t, err)

	assert.True(t, movement.BalanceBefore.Equal(decimal.NewFromInt(10)))
	assert.True(t, movement.BalanceAfter.Equal(decimal.NewFromInt(7)))
	assert.True(t, item.QuantityOnHand.Equal(decimal.NewFromInt(7)))
	assert.Equal(t, MovementTypeSale, movement.MovementType)
	assert.Equal(t, &saleID, movement.SaleID)
	items.AssertExpectations(t)
	movements.AssertExpectations(t)
}

func TestAdjuster_Apply_InsufficientStock(t *testing.T) {
	productID := uuid.New()
	item := stockedItem(t, productID, "2")

	items := new(MockStockItemRepository)
	movements := new(MockMovementRepository)
	items.On("FindByProductForUpdate", mock.Anything, productID).Return(item, nil)

	adjuster := NewAdjuster(items, movements)
	_, err := adjuster.Apply(context.Background(), productID, decimal.NewFromInt(-3), MovementTypeSale, nil, "")

	assert.ErrorIs(t, err, shared.ErrInsufficientStock)
	assert.True(t, item.QuantityOnHand.Equal(decimal.NewFromInt(2)))
	items.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	movements.AssertNotCalled(t, "Append", mock.Anything, mock.Anything)
}

func TestAdjuster_Apply_CreatesMissingCounter(t *testing.T) {
	productID := uuid.New()

	items := new(MockStockItemRepository)
	movements := new(MockMovementRepository)
	items.On("FindByProductForUpdate", mock.Anything, productID).Return(nil, shared.ErrNotFound)
	items.On("Create", mock.Anything, mock.AnythingOfType("*inventory.StockItem")).Return(nil)
	movements.On("Append", mock.Anything, mock.AnythingOfType("*inventory.Movement")).Return(nil)

	adjuster := NewAdjuster(items, movements)
	movement, err := adjuster.Apply(context.Background(), productID, decimal.NewFromInt(5), MovementTypeAdjustment, nil, "initial stock")
	require.NoError(t, err)

	assert.True(t, movement.BalanceBefore.IsZero())
	assert.True(t, movement.BalanceAfter.Equal(decimal.NewFromInt(5)))
	assert.Equal(t, "initial stock", movement.Reason)
	items.AssertExpectations(t)
	items.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestAdjuster_Apply_SaleAgainstMissingCounter(t *testing.T) {
	productID := uuid.New()

	items := new(MockStockItemRepository)
	movements := new(MockMovementRepository)
	items.On("FindByProductForUpdate", mock.Anything, productID).Return(nil, shared.ErrNotFound)

	adjuster := NewAdjuster(items, movements)
	_, err := adjuster.Apply(context.Background(), productID, decimal.NewFromInt(-1), MovementTypeSale, nil, "")
	assert.ErrorIs(t, err, shared.ErrInsufficientStock)
}

func TestStockItem_Adjust(t *testing.T) {
	item := stockedItem(t, uuid.New(), "1.5")

	require.NoError(t, item.Adjust(decimal.RequireFromString("-1.5")))
	assert.True(t, item.QuantityOnHand.IsZero())

	assert.ErrorIs(t, item.Adjust(decimal.RequireFromString("-0.0001")), shared.ErrInsufficientStock)
	assert.True(t, item.QuantityOnHand.IsZero())
}

func TestNewMovement_BalancesMustReconcile(t *testing.T) {
	productID := uuid.New()

	_, err := NewMovement(productID, decimal.NewFromInt(2), MovementTypeRefund, nil, decimal.NewFromInt(1), decimal.NewFromInt(4))
	assert.Error(t, err)

	movement, err := NewMovement(productID, decimal.NewFromInt(2), MovementTypeRefund, nil, decimal.NewFromInt(1), decimal.NewFromInt(3))
	require.NoError(t, err)
	assert.True(t, movement.IsInbound())
}
