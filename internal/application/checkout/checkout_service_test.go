package checkout

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/pos/backend/internal/domain/audit"
	"github.com/pos/backend/internal/domain/inventory"
	"github.com/pos/backend/internal/domain/loyalty"
	"github.com/pos/backend/internal/domain/sale"
	"github.com/pos/backend/internal/domain/shared"
)

type checkoutFixture struct {
	sales         *MockSaleRepository
	stockItems    *MockStockItemRepository
	movements     *MockMovementRepository
	accounts      *MockAccountRepository
	loyaltyTxs    *MockLoyaltyTransactionRepository
	auditLogs     *MockAuditRepository
	notifications *MockNotificationRepository
	idempotency   *MockIdempotencyStore
	service       *CheckoutService
}

func newCheckoutFixture(idemEnabled bool) *checkoutFixture {
	f := &checkoutFixture{
		sales:         new(MockSaleRepository),
		stockItems:    new(MockStockItemRepository),
		movements:     new(MockMovementRepository),
		accounts:      new(MockAccountRepository),
		loyaltyTxs:    new(MockLoyaltyTransactionRepository),
		auditLogs:     new(MockAuditRepository),
		notifications: new(MockNotificationRepository),
		idempotency:   new(MockIdempotencyStore),
	}
	program := loyalty.Program{
		PointsPerCurrencyUnit:   decimal.NewFromInt(1),
		RedemptionValuePerPoint: decimal.RequireFromString("0.01"),
		ReversalRounding:        loyalty.ReversalRoundDown,
	}
	f.service = NewCheckoutService(
		f.sales,
		inventory.NewAdjuster(f.stockItems, f.movements),
		loyalty.NewLedger(f.accounts, f.loyaltyTxs),
		loyalty.StaticProgramProvider{Program: program},
		fakeUnitOfWork{},
		f.idempotency,
		shared.IdempotencyConfig{Enabled: idemEnabled, TTL: time.Hour},
		audit.NewRecorder(f.auditLogs, zap.NewNop()),
		f.notifications,
		zap.NewNop(),
	)
	return f
}

func stocked(t *testing.T, productID uuid.UUID, onHand int64) *inventory.StockItem {
	t.Helper()
	item, err := inventory.NewStockItem(productID)
	require.NoError(t, err)
	item.QuantityOnHand = decimal.NewFromInt(onHand)
	return item
}

func accountWith(t *testing.T, customerID uuid.UUID, balance int64) *loyalty.Account {
	t.Helper()
	account, err := loyalty.NewAccount(customerID)
	require.NoError(t, err)
	account.Balance = balance
	return account
}

func basicRequest(productID uuid.UUID) CreateSaleRequest {
	return CreateSaleRequest{
		IdempotencyKey: "key-" + uuid.NewString(),
		PaymentMethod:  "card",
		Lines: []CreateSaleLineInput{
			{
				ProductID:   productID,
				ProductName: "Widget",
				Quantity:    decimal.NewFromInt(2),
				UnitPrice:   decimal.RequireFromString("10.50"),
			},
		},
	}
}

func TestCheckoutService_CreateSale(t *testing.T) {
	f := newCheckoutFixture(false)
	productID := uuid.New()
	req := basicRequest(productID)
	item := stocked(t, productID, 10)

	f.sales.On("FindByIdempotencyKey", mock.Anything, req.IdempotencyKey).Return(nil, shared.ErrNotFound)
	f.sales.On("NextNumber", mock.Anything).Return("S-2026-00001", nil)
	f.stockItems.On("FindByProductForUpdate", mock.Anything, productID).Return(item, nil)
	f.stockItems.On("Save", mock.Anything, item).Return(nil)
	f.movements.On("Append", mock.Anything, mock.AnythingOfType("*inventory.Movement")).Return(nil)
	f.sales.On("Create", mock.Anything, mock.AnythingOfType("*sale.Sale")).Return(nil)
	f.auditLogs.On("Append", mock.Anything, mock.AnythingOfType("*audit.Log")).Return(nil)

	resp, err := f.service.CreateSale(context.Background(), "alice", req)
	require.NoError(t, err)

	assert.Equal(t, "S-2026-00001", resp.Number)
	assert.Equal(t, string(sale.StatusPaid), resp.Status)
	assert.True(t, resp.Total.Equal(decimal.RequireFromString("21")))
	assert.False(t, resp.Replayed)
	assert.Equal(t, int64(0), resp.PointsEarned)
	assert.True(t, item.QuantityOnHand.Equal(decimal.NewFromInt(8)))
	f.sales.AssertExpectations(t)
	f.stockItems.AssertExpectations(t)
}

func TestCheckoutService_CreateSale_WithLoyalty(t *testing.T) {
	f := newCheckoutFixture(false)
	productID := uuid.New()
	customerID := uuid.New()
	req := basicRequest(productID)
	req.CustomerID = &customerID
	req.RedeemPoints = 200 // worth 2.00 against a 21.00 cart
	item := stocked(t, productID, 10)
	account := accountWith(t, customerID, 500)

	f.sales.On("FindByIdempotencyKey", mock.Anything, req.IdempotencyKey).Return(nil, shared.ErrNotFound)
	f.sales.On("NextNumber", mock.Anything).Return("S-2026-00002", nil)
	f.stockItems.On("FindByProductForUpdate", mock.Anything, productID).Return(item, nil)
	f.stockItems.On("Save", mock.Anything, item).Return(nil)
	f.movements.On("Append", mock.Anything, mock.AnythingOfType("*inventory.Movement")).Return(nil)
	f.accounts.On("FindByCustomerForUpdate", mock.Anything, customerID).Return(account, nil)
	f.accounts.On("Save", mock.Anything, account).Return(nil)
	f.loyaltyTxs.On("Append", mock.Anything, mock.AnythingOfType("*loyalty.Transaction")).Return(nil)
	f.sales.On("Create", mock.Anything, mock.AnythingOfType("*sale.Sale")).Return(nil)
	f.auditLogs.On("Append", mock.Anything, mock.AnythingOfType("*audit.Log")).Return(nil)

	resp, err := f.service.CreateSale(context.Background(), "alice", req)
	require.NoError(t, err)

	assert.Equal(t, int64(200), resp.PointsRedeemed)
	assert.True(t, resp.Total.Equal(decimal.RequireFromString("19")))
	// earn is computed from the paid total after the redemption discount
	assert.Equal(t, int64(19), resp.PointsEarned)
	assert.Equal(t, int64(500-200+19), account.Balance)
}

func TestCheckoutService_CreateSale_RedeemRequiresCustomer(t *testing.T) {
	f := newCheckoutFixture(false)
	productID := uuid.New()
	req := basicRequest(productID)
	req.RedeemPoints = 100

	f.sales.On("FindByIdempotencyKey", mock.Anything, req.IdempotencyKey).Return(nil, shared.ErrNotFound)

	_, err := f.service.CreateSale(context.Background(), "alice", req)
	require.Error(t, err)

	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, shared.CodeInvalidRequest, domainErr.Code)
	f.sales.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCheckoutService_CreateSale_InsufficientStock(t *testing.T) {
	f := newCheckoutFixture(false)
	productID := uuid.New()
	req := basicRequest(productID) // wants 2
	item := stocked(t, productID, 1)

	f.sales.On("FindByIdempotencyKey", mock.Anything, req.IdempotencyKey).Return(nil, shared.ErrNotFound)
	f.sales.On("NextNumber", mock.Anything).Return("S-2026-00003", nil)
	f.stockItems.On("FindByProductForUpdate", mock.Anything, productID).Return(item, nil)

	_, err := f.service.CreateSale(context.Background(), "alice", req)
	assert.ErrorIs(t, err, shared.ErrInsufficientStock)
	assert.True(t, item.QuantityOnHand.Equal(decimal.NewFromInt(1)))
	f.sales.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCheckoutService_CreateSale_ReplaysCommittedKey(t *testing.T) {
	f := newCheckoutFixture(false)
	productID := uuid.New()
	req := basicRequest(productID)

	cart, err := sale.PriceCart([]sale.CartLine{{
		ProductID:   productID,
		ProductName: "Widget",
		Quantity:    decimal.NewFromInt(2),
		UnitPrice:   decimal.RequireFromString("10.50"),
	}}, decimal.Zero, decimal.Zero)
	require.NoError(t, err)
	committed, err := sale.NewSale("S-2026-00001", req.IdempotencyKey, nil, "card", cart)
	require.NoError(t, err)

	f.sales.On("FindByIdempotencyKey", mock.Anything, req.IdempotencyKey).Return(committed, nil)

	resp, err := f.service.CreateSale(context.Background(), "alice", req)
	require.NoError(t, err)

	assert.True(t, resp.Replayed)
	assert.Equal(t, committed.Number, resp.Number)
	f.sales.AssertNotCalled(t, "NextNumber", mock.Anything)
	f.sales.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCheckoutService_CreateSale_IdempotencyFastPath(t *testing.T) {
	f := newCheckoutFixture(true)
	productID := uuid.New()
	req := basicRequest(productID)

	cart, err := sale.PriceCart([]sale.CartLine{{
		ProductID:   productID,
		ProductName: "Widget",
		Quantity:    decimal.NewFromInt(1),
		UnitPrice:   decimal.NewFromInt(5),
	}}, decimal.Zero, decimal.Zero)
	require.NoError(t, err)
	committed, err := sale.NewSale("S-2026-00009", req.IdempotencyKey, nil, "card", cart)
	require.NoError(t, err)

	f.idempotency.On("IsProcessed", mock.Anything, req.IdempotencyKey).Return(true, nil)
	f.sales.On("FindByIdempotencyKey", mock.Anything, req.IdempotencyKey).Return(committed, nil)

	resp, err := f.service.CreateSale(context.Background(), "alice", req)
	require.NoError(t, err)
	assert.True(t, resp.Replayed)
	f.idempotency.AssertNotCalled(t, "MarkProcessed", mock.Anything, mock.Anything, mock.Anything)
}

func TestCheckoutService_CreateSale_StoreFailureFallsBack(t *testing.T) {
	f := newCheckoutFixture(true)
	productID := uuid.New()
	req := basicRequest(productID)
	item := stocked(t, productID, 10)

	// the idempotency store being down must not block checkout
	f.idempotency.On("IsProcessed", mock.Anything, req.IdempotencyKey).Return(false, shared.ErrStoreUnavailable)
	f.idempotency.On("MarkProcessed", mock.Anything, req.IdempotencyKey, time.Hour).Return(true, nil)
	f.sales.On("FindByIdempotencyKey", mock.Anything, req.IdempotencyKey).Return(nil, shared.ErrNotFound)
	f.sales.On("NextNumber", mock.Anything).Return("S-2026-00004", nil)
	f.stockItems.On("FindByProductForUpdate", mock.Anything, productID).Return(item, nil)
	f.stockItems.On("Save", mock.Anything, item).Return(nil)
	f.movements.On("Append", mock.Anything, mock.AnythingOfType("*inventory.Movement")).Return(nil)
	f.sales.On("Create", mock.Anything, mock.AnythingOfType("*sale.Sale")).Return(nil)
	f.auditLogs.On("Append", mock.Anything, mock.AnythingOfType("*audit.Log")).Return(nil)

	resp, err := f.service.CreateSale(context.Background(), "alice", req)
	require.NoError(t, err)
	assert.False(t, resp.Replayed)
	f.idempotency.AssertExpectations(t)
}

func TestCheckoutService_CreateSale_EnqueuesReceipt(t *testing.T) {
	f := newCheckoutFixture(false)
	productID := uuid.New()
	req := basicRequest(productID)
	req.ReceiptRecipient = "customer@example.com"
	item := stocked(t, productID, 10)

	f.sales.On("FindByIdempotencyKey", mock.Anything, req.IdempotencyKey).Return(nil, shared.ErrNotFound)
	f.sales.On("NextNumber", mock.Anything).Return("S-2026-00005", nil)
	f.stockItems.On("FindByProductForUpdate", mock.Anything, productID).Return(item, nil)
	f.stockItems.On("Save", mock.Anything, item).Return(nil)
	f.movements.On("Append", mock.Anything, mock.AnythingOfType("*inventory.Movement")).Return(nil)
	f.sales.On("Create", mock.Anything, mock.AnythingOfType("*sale.Sale")).Return(nil)
	f.auditLogs.On("Append", mock.Anything, mock.AnythingOfType("*audit.Log")).Return(nil)
	f.notifications.On("Create", mock.Anything, mock.AnythingOfType("*notification.Notification")).Return(nil)

	_, err := f.service.CreateSale(context.Background(), "alice", req)
	require.NoError(t, err)
	f.notifications.AssertCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCheckoutService_VoidSale(t *testing.T) {
	f := newCheckoutFixture(false)
	productID := uuid.New()
	customerID := uuid.New()

	cart, err := sale.PriceCart([]sale.CartLine{{
		ProductID:   productID,
		ProductName: "Widget",
		Quantity:    decimal.NewFromInt(2),
		UnitPrice:   decimal.RequireFromString("10.50"),
	}}, decimal.Zero, decimal.Zero)
	require.NoError(t, err)
	current, err := sale.NewSale("S-2026-00006", "key", &customerID, "card", cart)
	require.NoError(t, err)
	current.SetLoyalty(21, 50)

	item := stocked(t, productID, 3)
	account := accountWith(t, customerID, 100)

	f.sales.On("FindByIDForUpdate", mock.Anything, current.ID).Return(current, nil)
	f.stockItems.On("FindByProductForUpdate", mock.Anything, productID).Return(item, nil)
	f.stockItems.On("Save", mock.Anything, item).Return(nil)
	f.movements.On("Append", mock.Anything, mock.AnythingOfType("*inventory.Movement")).Return(nil)
	f.accounts.On("FindByCustomerForUpdate", mock.Anything, customerID).Return(account, nil)
	f.accounts.On("Save", mock.Anything, account).Return(nil)
	f.loyaltyTxs.On("Append", mock.Anything, mock.AnythingOfType("*loyalty.Transaction")).Return(nil)
	f.sales.On("Update", mock.Anything, current).Return(nil)
	f.auditLogs.On("Append", mock.Anything, mock.AnythingOfType("*audit.Log")).Return(nil)

	resp, err := f.service.VoidSale(context.Background(), "alice", current.ID, VoidSaleRequest{Reason: "operator error"})
	require.NoError(t, err)

	assert.Equal(t, string(sale.StatusVoided), resp.Status)
	// full restock and both loyalty movements undone
	assert.True(t, item.QuantityOnHand.Equal(decimal.NewFromInt(5)))
	assert.Equal(t, int64(100-21+50), account.Balance)
}

func TestCheckoutService_VoidSale_RejectedAfterRefund(t *testing.T) {
	f := newCheckoutFixture(false)
	productID := uuid.New()

	cart, err := sale.PriceCart([]sale.CartLine{{
		ProductID:   productID,
		ProductName: "Widget",
		Quantity:    decimal.NewFromInt(2),
		UnitPrice:   decimal.NewFromInt(10),
	}}, decimal.Zero, decimal.Zero)
	require.NoError(t, err)
	current, err := sale.NewSale("S-2026-00007", "key", nil, "card", cart)
	require.NoError(t, err)
	_, err = current.ApplyRefund([]sale.RefundLine{{SaleItemID: current.Items[0].ID, Quantity: decimal.NewFromInt(1)}})
	require.NoError(t, err)

	f.sales.On("FindByIDForUpdate", mock.Anything, current.ID).Return(current, nil)

	_, err = f.service.VoidSale(context.Background(), "alice", current.ID, VoidSaleRequest{Reason: "too late"})
	require.Error(t, err)
	f.sales.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestCheckoutService_GetSale(t *testing.T) {
	f := newCheckoutFixture(false)

	cart, err := sale.PriceCart([]sale.CartLine{{
		ProductID:   uuid.New(),
		ProductName: "Widget",
		Quantity:    decimal.NewFromInt(1),
		UnitPrice:   decimal.NewFromInt(5),
	}}, decimal.Zero, decimal.Zero)
	require.NoError(t, err)
	existing, err := sale.NewSale("S-2026-00008", "key", nil, "card", cart)
	require.NoError(t, err)

	f.sales.On("FindByID", mock.Anything, existing.ID).Return(existing, nil)

	resp, err := f.service.GetSale(context.Background(), existing.ID)
	require.NoError(t, err)
	assert.Equal(t, existing.Number, resp.Number)

	f.sales.On("FindByID", mock.Anything, mock.Anything).Return(nil, shared.ErrSaleNotFound)
	_, err = f.service.GetSale(context.Background(), uuid.New())
	assert.ErrorIs(t, err, shared.ErrSaleNotFound)
}
