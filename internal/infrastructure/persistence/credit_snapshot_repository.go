package persistence

import (
	"context"

	"github.com/billing/backend/internal/domain/ledger"
	"github.com/billing/backend/internal/domain/shared/valueobject"
	"github.com/billing/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormCreditSnapshotRepository implements ledger.CreditSnapshotRepository
// using GORM
type GormCreditSnapshotRepository struct {
	db *gorm.DB
}

// NewGormCreditSnapshotRepository creates a new GormCreditSnapshotRepository
func NewGormCreditSnapshotRepository(db *gorm.DB) *GormCreditSnapshotRepository {
	return &GormCreditSnapshotRepository{db: db}
}

func (r *GormCreditSnapshotRepository) conn(ctx context.Context) *gorm.DB {
	return DBFromContext(ctx, r.db).WithContext(ctx)
}

// FindByCustomer loads the full store-credit timeline for a customer and
// currency, in timeline order
func (r *GormCreditSnapshotRepository) FindByCustomer(ctx context.Context, tenantID, customerID uuid.UUID, currency valueobject.Currency) ([]ledger.CreditSnapshot, error) {
	var snapshotModels []models.CreditSnapshotModel
	if err := r.conn(ctx).
		Where("tenant_id = ? AND customer_id = ? AND currency = ?", tenantID, customerID, currency).
		Order("timestamp ASC, transaction_id ASC").
		Find(&snapshotModels).Error; err != nil {
		return nil, err
	}
	snapshots := make([]ledger.CreditSnapshot, len(snapshotModels))
	for i := range snapshotModels {
		snapshots[i] = snapshotModels[i].ToDomain()
	}
	return snapshots, nil
}

// ReplaceTimeline atomically replaces the stored timeline for the
// (customer, currency) pair. Recomputation rewrites every forward snapshot,
// so a delete-and-insert is simpler and no slower than diffing.
func (r *GormCreditSnapshotRepository) ReplaceTimeline(ctx context.Context, tenantID, customerID uuid.UUID, currency valueobject.Currency, snapshots []ledger.CreditSnapshot) error {
	run := func(tx *gorm.DB) error {
		if err := tx.
			Where("tenant_id = ? AND customer_id = ? AND currency = ?", tenantID, customerID, currency).
			Delete(&models.CreditSnapshotModel{}).Error; err != nil {
			return err
		}
		if len(snapshots) == 0 {
			return nil
		}
		snapshotModels := make([]models.CreditSnapshotModel, len(snapshots))
		for i := range snapshots {
			snapshotModels[i] = models.CreditSnapshotModelFromDomain(snapshots[i])
		}
		return tx.Create(&snapshotModels).Error
	}

	// Join an ambient transaction when one is carried by the context.
	if db, ok := ctx.Value(txContextKey{}).(*gorm.DB); ok && db != nil {
		return run(db.WithContext(ctx))
	}
	return r.db.WithContext(ctx).Transaction(run)
}

// DeleteByTransaction removes the snapshot recorded for a transaction
func (r *GormCreditSnapshotRepository) DeleteByTransaction(ctx context.Context, tenantID, txID uuid.UUID) error {
	return r.conn(ctx).
		Where("tenant_id = ? AND transaction_id = ?", tenantID, txID).
		Delete(&models.CreditSnapshotModel{}).Error
}
