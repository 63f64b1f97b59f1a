package persistence

import (
	"context"

	"gorm.io/gorm"
)

type txContextKey struct{}

// GormUnitOfWork implements shared.UnitOfWork on a GORM connection.
// The open transaction travels in the context handed to the callback, so
// every repository built on the same Database joins it transparently.
type GormUnitOfWork struct {
	db *gorm.DB
}

// NewGormUnitOfWork creates a new GormUnitOfWork
func NewGormUnitOfWork(db *gorm.DB) *GormUnitOfWork {
	return &GormUnitOfWork{db: db}
}

// WithinTx runs fn inside one database transaction. fn returning an error
// rolls everything back; nil commits. Panics roll back and re-raise.
func (u *GormUnitOfWork) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(context.WithValue(ctx, txContextKey{}, tx))
	})
}

// dbFromContext returns the transaction carried by ctx, or fallback when
// the caller is not inside a unit of work.
func dbFromContext(ctx context.Context, fallback *gorm.DB) *gorm.DB {
	if tx, ok := ctx.Value(txContextKey{}).(*gorm.DB); ok {
		return tx
	}
	return fallback
}
