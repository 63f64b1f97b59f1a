package persistence

import (
	"gorm.io/gorm"

	"github.com/pos/backend/internal/domain/audit"
	"github.com/pos/backend/internal/domain/inventory"
	"github.com/pos/backend/internal/domain/loyalty"
	"github.com/pos/backend/internal/domain/notification"
	"github.com/pos/backend/internal/domain/sale"
)

// AutoMigrate creates or updates the schema for all persisted models
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&sale.Sale{},
		&sale.Item{},
		&sale.Refund{},
		&sale.RefundItem{},
		&inventory.StockItem{},
		&inventory.Movement{},
		&loyalty.Account{},
		&loyalty.Transaction{},
		&audit.Log{},
		&notification.Notification{},
	)
}
