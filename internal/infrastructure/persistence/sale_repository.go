package persistence

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pos/backend/internal/domain/sale"
	"github.com/pos/backend/internal/domain/shared"
)

// GormSaleRepository implements sale.Repository using GORM
type GormSaleRepository struct {
	db *gorm.DB
}

// NewGormSaleRepository creates a new GormSaleRepository
func NewGormSaleRepository(db *gorm.DB) *GormSaleRepository {
	return &GormSaleRepository{db: db}
}

func (r *GormSaleRepository) conn(ctx context.Context) *gorm.DB {
	return dbFromContext(ctx, r.db).WithContext(ctx)
}

// FindByID finds a sale by its ID
func (r *GormSaleRepository) FindByID(ctx context.Context, id uuid.UUID) (*sale.Sale, error) {
	var s sale.Sale
	if err := r.conn(ctx).
		Preload("Items").
		First(&s, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrSaleNotFound
		}
		return nil, err
	}
	return &s, nil
}

// FindByIDForUpdate finds a sale by ID, holding a row lock on the sale
// until the surrounding transaction ends
func (r *GormSaleRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*sale.Sale, error) {
	var s sale.Sale
	if err := forUpdate(r.conn(ctx)).
		First(&s, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrSaleNotFound
		}
		return nil, err
	}
	// Items are loaded separately: FOR UPDATE cannot lock across a join
	if err := r.conn(ctx).
		Where("sale_id = ?", id).
		Order("created_at ASC").
		Find(&s.Items).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

// FindByIdempotencyKey finds the sale committed under the given key
func (r *GormSaleRepository) FindByIdempotencyKey(ctx context.Context, key string) (*sale.Sale, error) {
	var s sale.Sale
	if err := r.conn(ctx).
		Preload("Items").
		First(&s, "idempotency_key = ?", key).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &s, nil
}

// Create persists a new sale with its items
func (r *GormSaleRepository) Create(ctx context.Context, s *sale.Sale) error {
	return r.conn(ctx).Create(s).Error
}

// Update persists sale mutations with an optimistic version check
func (r *GormSaleRepository) Update(ctx context.Context, s *sale.Sale) error {
	s.IncrementVersion()

	result := r.conn(ctx).
		Model(&sale.Sale{}).
		Where("id = ? AND version = ?", s.ID, s.Version-1).
		Updates(map[string]interface{}{
			"status":          s.Status,
			"refunded_amount": s.RefundedAmount,
			"points_earned":   s.PointsEarned,
			"points_redeemed": s.PointsRedeemed,
			"notes":           s.Notes,
			"voided_at":       s.VoidedAt,
			"void_reason":     s.VoidReason,
			"version":         s.Version,
			"updated_at":      s.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrTransactionConflict
	}

	for idx := range s.Items {
		item := &s.Items[idx]
		err := r.conn(ctx).
			Model(&sale.Item{}).
			Where("id = ?", item.ID).
			Updates(map[string]interface{}{
				"returned_quantity": item.ReturnedQuantity,
				"is_returned":       item.IsReturned,
				"updated_at":        item.UpdatedAt,
			}).Error
		if err != nil {
			return err
		}
	}
	return nil
}

// NextNumber generates the next sale number
// Format: S-YYYY-NNNNN (e.g., S-2026-00001)
func (r *GormSaleRepository) NextNumber(ctx context.Context) (string, error) {
	return nextSequenceNumber(r.conn(ctx), &sale.Sale{}, "number", fmt.Sprintf("S-%d-", time.Now().Year()))
}

// GormRefundRepository implements sale.RefundRepository using GORM
type GormRefundRepository struct {
	db *gorm.DB
}

// NewGormRefundRepository creates a new GormRefundRepository
func NewGormRefundRepository(db *gorm.DB) *GormRefundRepository {
	return &GormRefundRepository{db: db}
}

func (r *GormRefundRepository) conn(ctx context.Context) *gorm.DB {
	return dbFromContext(ctx, r.db).WithContext(ctx)
}

// FindByID finds a refund by its ID
func (r *GormRefundRepository) FindByID(ctx context.Context, id uuid.UUID) (*sale.Refund, error) {
	var refund sale.Refund
	if err := r.conn(ctx).
		Preload("Items").
		First(&refund, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &refund, nil
}

// FindBySale finds all refunds committed against a sale, oldest first
func (r *GormRefundRepository) FindBySale(ctx context.Context, saleID uuid.UUID) ([]sale.Refund, error) {
	var refunds []sale.Refund
	if err := r.conn(ctx).
		Preload("Items").
		Where("sale_id = ?", saleID).
		Order("created_at ASC").
		Find(&refunds).Error; err != nil {
		return nil, err
	}
	return refunds, nil
}

// Create persists a new refund with its items
func (r *GormRefundRepository) Create(ctx context.Context, refund *sale.Refund) error {
	return r.conn(ctx).Create(refund).Error
}

// NextNumber generates the next refund number
// Format: R-YYYY-NNNNN (e.g., R-2026-00001)
func (r *GormRefundRepository) NextNumber(ctx context.Context) (string, error) {
	return nextSequenceNumber(r.conn(ctx), &sale.Refund{}, "number", fmt.Sprintf("R-%d-", time.Now().Year()))
}

// nextSequenceNumber generates the next number in a yearly sequence by
// reading the highest existing number with the given prefix.
func nextSequenceNumber(db *gorm.DB, model interface{}, column, prefix string) (string, error) {
	var last string
	err := db.Model(model).
		Select(column).
		Where(column+" LIKE ?", prefix+"%").
		Order(column + " DESC").
		Limit(1).
		Scan(&last).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", err
	}

	var nextNum int64 = 1
	if last != "" {
		parts := strings.Split(last, "-")
		if len(parts) == 3 {
			var num int64
			if _, parseErr := fmt.Sscanf(parts[2], "%d", &num); parseErr == nil {
				nextNum = num + 1
			}
		}
	}

	return fmt.Sprintf("%s%05d", prefix, nextNum), nil
}
