package persistence

import (
	"context"

	"github.com/billing/backend/internal/domain/ledger"
	"github.com/billing/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormMatchSuggestionRepository implements ledger.MatchSuggestionRepository
// using GORM
type GormMatchSuggestionRepository struct {
	db *gorm.DB
}

// NewGormMatchSuggestionRepository creates a new GormMatchSuggestionRepository
func NewGormMatchSuggestionRepository(db *gorm.DB) *GormMatchSuggestionRepository {
	return &GormMatchSuggestionRepository{db: db}
}

func (r *GormMatchSuggestionRepository) conn(ctx context.Context) *gorm.DB {
	return DBFromContext(ctx, r.db).WithContext(ctx)
}

// FindByPayment finds pending suggestions for a payment
func (r *GormMatchSuggestionRepository) FindByPayment(ctx context.Context, tenantID, paymentID uuid.UUID) ([]ledger.MatchSuggestion, error) {
	var suggestionModels []models.MatchSuggestionModel
	if err := r.conn(ctx).
		Where("tenant_id = ? AND payment_id = ?", tenantID, paymentID).
		Order("created_at ASC").
		Find(&suggestionModels).Error; err != nil {
		return nil, err
	}
	suggestions := make([]ledger.MatchSuggestion, len(suggestionModels))
	for i := range suggestionModels {
		suggestions[i] = *suggestionModels[i].ToDomain()
	}
	return suggestions, nil
}

// Save creates or updates a suggestion
func (r *GormMatchSuggestionRepository) Save(ctx context.Context, suggestion *ledger.MatchSuggestion) error {
	model := models.MatchSuggestionModelFromDomain(suggestion)
	return r.conn(ctx).Save(model).Error
}

// DeleteByPayment removes every suggestion attached to a payment
func (r *GormMatchSuggestionRepository) DeleteByPayment(ctx context.Context, tenantID, paymentID uuid.UUID) error {
	return r.conn(ctx).
		Where("tenant_id = ? AND payment_id = ?", tenantID, paymentID).
		Delete(&models.MatchSuggestionModel{}).Error
}
