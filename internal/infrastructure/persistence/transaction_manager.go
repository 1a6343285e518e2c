package persistence

import (
	"context"

	"gorm.io/gorm"
)

type txContextKey struct{}

// WithDB returns a context carrying the given GORM handle. Repositories
// prefer the carried handle over their own, so every repository call made
// with this context joins the same database transaction.
func WithDB(ctx context.Context, db *gorm.DB) context.Context {
	return context.WithValue(ctx, txContextKey{}, db)
}

// DBFromContext returns the GORM handle carried by the context, or the
// fallback when none is present.
func DBFromContext(ctx context.Context, fallback *gorm.DB) *gorm.DB {
	if db, ok := ctx.Value(txContextKey{}).(*gorm.DB); ok && db != nil {
		return db
	}
	return fallback
}

// GormTransactionManager implements shared.TransactionManager on top of
// GORM transactions. The transactional handle travels in the context, so
// repositories need no transaction-specific wiring.
type GormTransactionManager struct {
	db *gorm.DB
}

// NewGormTransactionManager creates a new GormTransactionManager
func NewGormTransactionManager(db *gorm.DB) *GormTransactionManager {
	return &GormTransactionManager{db: db}
}

// Do runs fn inside a single database transaction. A nested call joins the
// transaction already carried by the context instead of opening a new one.
func (m *GormTransactionManager) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txContextKey{}).(*gorm.DB); ok {
		return fn(ctx)
	}
	return m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(WithDB(ctx, tx))
	})
}
