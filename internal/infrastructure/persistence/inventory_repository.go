package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/pos/backend/internal/domain/inventory"
	"github.com/pos/backend/internal/domain/shared"
)

// GormStockItemRepository implements inventory.StockItemRepository using GORM
type GormStockItemRepository struct {
	db *gorm.DB
}

// NewGormStockItemRepository creates a new GormStockItemRepository
func NewGormStockItemRepository(db *gorm.DB) *GormStockItemRepository {
	return &GormStockItemRepository{db: db}
}

func (r *GormStockItemRepository) conn(ctx context.Context) *gorm.DB {
	return dbFromContext(ctx, r.db).WithContext(ctx)
}

// FindByProduct finds the stock counter for a product
func (r *GormStockItemRepository) FindByProduct(ctx context.Context, productID uuid.UUID) (*inventory.StockItem, error) {
	var item inventory.StockItem
	if err := r.conn(ctx).
		First(&item, "product_id = ?", productID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &item, nil
}

// FindByProductForUpdate finds the stock counter for a product, holding a
// row lock until the surrounding transaction ends
func (r *GormStockItemRepository) FindByProductForUpdate(ctx context.Context, productID uuid.UUID) (*inventory.StockItem, error) {
	var item inventory.StockItem
	if err := forUpdate(r.conn(ctx)).
		First(&item, "product_id = ?", productID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &item, nil
}

// Save persists the stock counter with an optimistic version check
func (r *GormStockItemRepository) Save(ctx context.Context, item *inventory.StockItem) error {
	result := r.conn(ctx).
		Model(&inventory.StockItem{}).
		Where("id = ? AND version = ?", item.ID, item.Version-1).
		Updates(map[string]interface{}{
			"quantity_on_hand": item.QuantityOnHand,
			"version":          item.Version,
			"updated_at":       item.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrTransactionConflict
	}
	return nil
}

// Create persists a new stock counter
func (r *GormStockItemRepository) Create(ctx context.Context, item *inventory.StockItem) error {
	return r.conn(ctx).Create(item).Error
}

// GormMovementRepository implements inventory.MovementRepository using GORM
type GormMovementRepository struct {
	db *gorm.DB
}

// NewGormMovementRepository creates a new GormMovementRepository
func NewGormMovementRepository(db *gorm.DB) *GormMovementRepository {
	return &GormMovementRepository{db: db}
}

func (r *GormMovementRepository) conn(ctx context.Context) *gorm.DB {
	return dbFromContext(ctx, r.db).WithContext(ctx)
}

// Append persists a movement; movements are never updated or deleted
func (r *GormMovementRepository) Append(ctx context.Context, m *inventory.Movement) error {
	return r.conn(ctx).Create(m).Error
}

// FindByProduct returns movements for a product, newest first
func (r *GormMovementRepository) FindByProduct(ctx context.Context, productID uuid.UUID, limit int) ([]inventory.Movement, error) {
	var movements []inventory.Movement
	query := r.conn(ctx).
		Where("product_id = ?", productID).
		Order("occurred_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&movements).Error; err != nil {
		return nil, err
	}
	return movements, nil
}

// FindBySale returns movements caused by a sale, oldest first
func (r *GormMovementRepository) FindBySale(ctx context.Context, saleID uuid.UUID) ([]inventory.Movement, error) {
	var movements []inventory.Movement
	if err := r.conn(ctx).
		Where("sale_id = ?", saleID).
		Order("occurred_at ASC").
		Find(&movements).Error; err != nil {
		return nil, err
	}
	return movements, nil
}

// SumByProduct returns the sum of all movement deltas for a product.
// Equals the cached counter when the ledger and counter agree.
func (r *GormMovementRepository) SumByProduct(ctx context.Context, productID uuid.UUID) (decimal.Decimal, error) {
	var result struct {
		Total decimal.Decimal
	}
	err := r.conn(ctx).
		Model(&inventory.Movement{}).
		Select("COALESCE(SUM(quantity_delta), 0) AS total").
		Where("product_id = ?", productID).
		Scan(&result).Error
	if err != nil {
		return decimal.Zero, err
	}
	return result.Total, nil
}
