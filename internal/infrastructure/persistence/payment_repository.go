package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/billing/backend/internal/domain/ledger"
	"github.com/billing/backend/internal/domain/shared"
	"github.com/billing/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormPaymentRepository implements ledger.PaymentRepository using GORM
type GormPaymentRepository struct {
	db *gorm.DB
}

// NewGormPaymentRepository creates a new GormPaymentRepository
func NewGormPaymentRepository(db *gorm.DB) *GormPaymentRepository {
	return &GormPaymentRepository{db: db}
}

func (r *GormPaymentRepository) conn(ctx context.Context) *gorm.DB {
	return DBFromContext(ctx, r.db).WithContext(ctx)
}

// FindByID finds a payment by its ID
func (r *GormPaymentRepository) FindByID(ctx context.Context, id uuid.UUID) (*ledger.Payment, error) {
	var model models.PaymentModel
	if err := r.conn(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByIDForTenant finds a payment by ID within a tenant
func (r *GormPaymentRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*ledger.Payment, error) {
	var model models.PaymentModel
	if err := r.conn(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAllForTenant finds all payments for a tenant with filtering
func (r *GormPaymentRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter ledger.PaymentFilter) ([]ledger.Payment, error) {
	var paymentModels []models.PaymentModel
	query := r.conn(ctx).Model(&models.PaymentModel{}).
		Where("tenant_id = ?", tenantID)
	query = r.applyFilter(query, filter)

	orderBy := ValidateSortField(filter.OrderBy, PaymentSortFields, "date")
	orderDir := ValidateSortOrder(filter.OrderDir)
	query = query.Order(fmt.Sprintf("%s %s", orderBy, orderDir))

	if filter.PageSize > 0 {
		offset := 0
		if filter.Page > 1 {
			offset = (filter.Page - 1) * filter.PageSize
		}
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	if err := query.Find(&paymentModels).Error; err != nil {
		return nil, err
	}
	return toDomainPayments(paymentModels), nil
}

// FindUnapplied finds payments with a positive unapplied balance for a
// customer, oldest first
func (r *GormPaymentRepository) FindUnapplied(ctx context.Context, tenantID, customerID uuid.UUID) ([]ledger.Payment, error) {
	var paymentModels []models.PaymentModel
	if err := r.conn(ctx).
		Where("tenant_id = ? AND customer_id = ? AND voided = ? AND balance > 0", tenantID, customerID, false).
		Order("date ASC, created_at ASC").
		Find(&paymentModels).Error; err != nil {
		return nil, err
	}
	return toDomainPayments(paymentModels), nil
}

// Save creates or updates a payment
func (r *GormPaymentRepository) Save(ctx context.Context, payment *ledger.Payment) error {
	model := models.PaymentModelFromDomain(payment)
	return r.conn(ctx).Save(model).Error
}

// SaveWithLock saves with optimistic locking. The caller increments the
// version before saving; the update only lands if the stored row still
// carries the previous version.
func (r *GormPaymentRepository) SaveWithLock(ctx context.Context, payment *ledger.Payment) error {
	model := models.PaymentModelFromDomain(payment)
	result := r.conn(ctx).
		Model(model).
		Where("id = ? AND version = ?", payment.ID, payment.Version-1).
		Select("*").
		Updates(model)

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.NewDomainError("OPTIMISTIC_LOCK_ERROR", "The record has been modified by another transaction")
	}
	return nil
}

// CountForTenant counts payments for a tenant with optional filters
func (r *GormPaymentRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter ledger.PaymentFilter) (int64, error) {
	var count int64
	query := r.conn(ctx).Model(&models.PaymentModel{}).
		Where("tenant_id = ?", tenantID)
	query = r.applyFilter(query, filter)

	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// applyFilter applies the non-pagination filter conditions
func (r *GormPaymentRepository) applyFilter(query *gorm.DB, filter ledger.PaymentFilter) *gorm.DB {
	if filter.CustomerID != nil {
		query = query.Where("customer_id = ?", *filter.CustomerID)
	}
	if filter.Applied != nil {
		query = query.Where("applied = ?", *filter.Applied)
	}
	if filter.Voided != nil {
		query = query.Where("voided = ?", *filter.Voided)
	}
	if filter.Method != nil {
		query = query.Where("method = ?", *filter.Method)
	}
	if filter.FromDate != nil {
		query = query.Where("date >= ?", *filter.FromDate)
	}
	if filter.ToDate != nil {
		query = query.Where("date <= ?", *filter.ToDate)
	}
	return query
}

func toDomainPayments(paymentModels []models.PaymentModel) []ledger.Payment {
	payments := make([]ledger.Payment, len(paymentModels))
	for i := range paymentModels {
		payments[i] = *paymentModels[i].ToDomain()
	}
	return payments
}
