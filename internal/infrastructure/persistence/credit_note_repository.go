package persistence

import (
	"context"
	"errors"

	"github.com/billing/backend/internal/domain/receivable"
	"github.com/billing/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormCreditNoteRepository implements receivable.CreditNoteRepository using GORM
type GormCreditNoteRepository struct {
	db *gorm.DB
}

// NewGormCreditNoteRepository creates a new GormCreditNoteRepository
func NewGormCreditNoteRepository(db *gorm.DB) *GormCreditNoteRepository {
	return &GormCreditNoteRepository{db: db}
}

func (r *GormCreditNoteRepository) conn(ctx context.Context) *gorm.DB {
	return DBFromContext(ctx, r.db).WithContext(ctx)
}

// FindByID finds a credit note by its ID
func (r *GormCreditNoteRepository) FindByID(ctx context.Context, id uuid.UUID) (*receivable.CreditNote, error) {
	var note receivable.CreditNote
	if err := r.conn(ctx).First(&note, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &note, nil
}

// FindByIDForTenant finds a credit note by ID within a tenant
func (r *GormCreditNoteRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*receivable.CreditNote, error) {
	var note receivable.CreditNote
	if err := r.conn(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&note).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &note, nil
}

// FindAllForTenant finds all credit notes for a tenant with filtering
func (r *GormCreditNoteRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter receivable.DocumentFilter) ([]receivable.CreditNote, error) {
	var notes []receivable.CreditNote
	query := r.conn(ctx).Model(&receivable.CreditNote{}).
		Where("tenant_id = ?", tenantID)
	query = applyDocumentFilter(query, filter)
	query = applyDocumentPagination(query, filter, creditNoteSortFields())

	if err := query.Find(&notes).Error; err != nil {
		return nil, err
	}
	return notes, nil
}

// FindOpenByCustomer finds notes with unconsumed credit for a customer,
// oldest first
func (r *GormCreditNoteRepository) FindOpenByCustomer(ctx context.Context, tenantID, customerID uuid.UUID) ([]receivable.CreditNote, error) {
	var notes []receivable.CreditNote
	if err := r.conn(ctx).
		Where("tenant_id = ? AND customer_id = ? AND status IN ? AND amount_applied < total", tenantID, customerID,
			[]receivable.DocumentStatus{receivable.DocumentStatusPending, receivable.DocumentStatusPartial}).
		Order("issued_at ASC, created_at ASC").
		Find(&notes).Error; err != nil {
		return nil, err
	}
	return notes, nil
}

// Save creates or updates a credit note
func (r *GormCreditNoteRepository) Save(ctx context.Context, note *receivable.CreditNote) error {
	return r.conn(ctx).Save(note).Error
}

func creditNoteSortFields() map[string]bool {
	fields := make(map[string]bool, len(DocumentSortFields)+1)
	for k := range DocumentSortFields {
		fields[k] = true
	}
	fields["note_number"] = true
	return fields
}
