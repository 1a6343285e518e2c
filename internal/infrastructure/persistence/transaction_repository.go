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

// GormTransactionRepository implements ledger.TransactionRepository using GORM
type GormTransactionRepository struct {
	db *gorm.DB
}

// NewGormTransactionRepository creates a new GormTransactionRepository
func NewGormTransactionRepository(db *gorm.DB) *GormTransactionRepository {
	return &GormTransactionRepository{db: db}
}

func (r *GormTransactionRepository) conn(ctx context.Context) *gorm.DB {
	return DBFromContext(ctx, r.db).WithContext(ctx)
}

// FindByID finds a transaction by its ID
func (r *GormTransactionRepository) FindByID(ctx context.Context, id uuid.UUID) (*ledger.Transaction, error) {
	var model models.TransactionModel
	if err := r.conn(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByIDForTenant finds a transaction by ID within a tenant
func (r *GormTransactionRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*ledger.Transaction, error) {
	var model models.TransactionModel
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

// FindAllForTenant finds all transactions for a tenant with filtering
func (r *GormTransactionRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter ledger.TransactionFilter) ([]ledger.Transaction, error) {
	var txModels []models.TransactionModel
	query := r.conn(ctx).Model(&models.TransactionModel{}).
		Where("tenant_id = ?", tenantID)
	query = r.applyFilter(query, filter)
	query = r.applyPagination(query, filter)

	if err := query.Find(&txModels).Error; err != nil {
		return nil, err
	}
	return toDomainTransactions(txModels), nil
}

// FindByDocument finds all transactions linked to a receivable document
func (r *GormTransactionRepository) FindByDocument(ctx context.Context, tenantID uuid.UUID, doc ledger.DocumentRef) ([]ledger.Transaction, error) {
	if doc.IsNone() {
		return nil, nil
	}
	var txModels []models.TransactionModel
	if err := r.conn(ctx).
		Where("tenant_id = ? AND document_kind = ? AND document_id = ?", tenantID, doc.Kind(), doc.ID()).
		Order("date ASC, created_at ASC").
		Find(&txModels).Error; err != nil {
		return nil, err
	}
	return toDomainTransactions(txModels), nil
}

// FindByPayment finds all transactions owned by a payment
func (r *GormTransactionRepository) FindByPayment(ctx context.Context, tenantID, paymentID uuid.UUID) ([]ledger.Transaction, error) {
	var txModels []models.TransactionModel
	if err := r.conn(ctx).
		Where("tenant_id = ? AND payment_id = ?", tenantID, paymentID).
		Order("date ASC, created_at ASC").
		Find(&txModels).Error; err != nil {
		return nil, err
	}
	return toDomainTransactions(txModels), nil
}

// FindTree loads a transaction and every descendant reachable through parent
// references. Descendants are fetched level by level; cycles cannot occur
// because a child is always created after its parent.
func (r *GormTransactionRepository) FindTree(ctx context.Context, tenantID, rootID uuid.UUID) ([]ledger.Transaction, error) {
	root, err := r.FindByIDForTenant(ctx, tenantID, rootID)
	if err != nil {
		return nil, err
	}

	result := []ledger.Transaction{*root}
	frontier := []uuid.UUID{rootID}
	for len(frontier) > 0 {
		var children []models.TransactionModel
		if err := r.conn(ctx).
			Where("tenant_id = ? AND parent_transaction_id IN ?", tenantID, frontier).
			Order("date ASC, created_at ASC").
			Find(&children).Error; err != nil {
			return nil, err
		}
		frontier = frontier[:0]
		for i := range children {
			result = append(result, *children[i].ToDomain())
			frontier = append(frontier, children[i].ID)
		}
	}
	return result, nil
}

// Save creates or updates a transaction
func (r *GormTransactionRepository) Save(ctx context.Context, tx *ledger.Transaction) error {
	model := models.TransactionModelFromDomain(tx)
	return r.conn(ctx).Save(model).Error
}

// Delete removes a transaction
func (r *GormTransactionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.conn(ctx).Delete(&models.TransactionModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// DeleteForTenant removes a transaction for a tenant
func (r *GormTransactionRepository) DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error {
	result := r.conn(ctx).Delete(&models.TransactionModel{}, "tenant_id = ? AND id = ?", tenantID, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// CountForTenant counts transactions for a tenant with optional filters
func (r *GormTransactionRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter ledger.TransactionFilter) (int64, error) {
	var count int64
	query := r.conn(ctx).Model(&models.TransactionModel{}).
		Where("tenant_id = ?", tenantID)
	query = r.applyFilter(query, filter)

	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// applyFilter applies the non-pagination filter conditions
func (r *GormTransactionRepository) applyFilter(query *gorm.DB, filter ledger.TransactionFilter) *gorm.DB {
	if filter.CustomerID != nil {
		query = query.Where("customer_id = ?", *filter.CustomerID)
	}
	if filter.PaymentID != nil {
		query = query.Where("payment_id = ?", *filter.PaymentID)
	}
	if filter.ParentID != nil {
		query = query.Where("parent_transaction_id = ?", *filter.ParentID)
	}
	if filter.Type != nil {
		query = query.Where("type = ?", *filter.Type)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.Method != nil {
		query = query.Where("method = ?", *filter.Method)
	}
	if filter.DocumentKind != nil {
		query = query.Where("document_kind = ?", *filter.DocumentKind)
	}
	if filter.DocumentID != nil {
		query = query.Where("document_id = ?", *filter.DocumentID)
	}
	if filter.FromDate != nil {
		query = query.Where("date >= ?", *filter.FromDate)
	}
	if filter.ToDate != nil {
		query = query.Where("date <= ?", *filter.ToDate)
	}
	return query
}

// applyPagination applies ordering and pagination
func (r *GormTransactionRepository) applyPagination(query *gorm.DB, filter ledger.TransactionFilter) *gorm.DB {
	orderBy := ValidateSortField(filter.OrderBy, TransactionSortFields, "date")
	orderDir := ValidateSortOrder(filter.OrderDir)
	query = query.Order(fmt.Sprintf("%s %s", orderBy, orderDir))

	if filter.PageSize > 0 {
		offset := 0
		if filter.Page > 1 {
			offset = (filter.Page - 1) * filter.PageSize
		}
		query = query.Offset(offset).Limit(filter.PageSize)
	}
	return query
}

func toDomainTransactions(txModels []models.TransactionModel) []ledger.Transaction {
	transactions := make([]ledger.Transaction, len(txModels))
	for i := range txModels {
		transactions[i] = *txModels[i].ToDomain()
	}
	return transactions
}
