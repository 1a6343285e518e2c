package persistence

import (
	"context"
	"errors"

	"github.com/billing/backend/internal/domain/receivable"
	"github.com/billing/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormEstimateRepository implements receivable.EstimateRepository using GORM
type GormEstimateRepository struct {
	db *gorm.DB
}

// NewGormEstimateRepository creates a new GormEstimateRepository
func NewGormEstimateRepository(db *gorm.DB) *GormEstimateRepository {
	return &GormEstimateRepository{db: db}
}

func (r *GormEstimateRepository) conn(ctx context.Context) *gorm.DB {
	return DBFromContext(ctx, r.db).WithContext(ctx)
}

// FindByID finds an estimate by its ID
func (r *GormEstimateRepository) FindByID(ctx context.Context, id uuid.UUID) (*receivable.Estimate, error) {
	var estimate receivable.Estimate
	if err := r.conn(ctx).First(&estimate, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &estimate, nil
}

// FindByIDForTenant finds an estimate by ID within a tenant
func (r *GormEstimateRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*receivable.Estimate, error) {
	var estimate receivable.Estimate
	if err := r.conn(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&estimate).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &estimate, nil
}

// FindAllForTenant finds all estimates for a tenant with filtering
func (r *GormEstimateRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter receivable.DocumentFilter) ([]receivable.Estimate, error) {
	var estimates []receivable.Estimate
	query := r.conn(ctx).Model(&receivable.Estimate{}).
		Where("tenant_id = ?", tenantID)
	query = applyDocumentFilter(query, filter)
	query = applyDocumentPagination(query, filter, estimateSortFields())

	if err := query.Find(&estimates).Error; err != nil {
		return nil, err
	}
	return estimates, nil
}

// Save creates or updates an estimate
func (r *GormEstimateRepository) Save(ctx context.Context, estimate *receivable.Estimate) error {
	return r.conn(ctx).Save(estimate).Error
}

func estimateSortFields() map[string]bool {
	fields := make(map[string]bool, len(DocumentSortFields)+2)
	for k := range DocumentSortFields {
		fields[k] = true
	}
	fields["estimate_number"] = true
	fields["expires_at"] = true
	return fields
}
