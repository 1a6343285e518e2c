package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/billing/backend/internal/domain/receivable"
	"github.com/billing/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormInvoiceRepository implements receivable.InvoiceRepository using GORM
type GormInvoiceRepository struct {
	db *gorm.DB
}

// NewGormInvoiceRepository creates a new GormInvoiceRepository
func NewGormInvoiceRepository(db *gorm.DB) *GormInvoiceRepository {
	return &GormInvoiceRepository{db: db}
}

func (r *GormInvoiceRepository) conn(ctx context.Context) *gorm.DB {
	return DBFromContext(ctx, r.db).WithContext(ctx)
}

// FindByID finds an invoice by its ID
func (r *GormInvoiceRepository) FindByID(ctx context.Context, id uuid.UUID) (*receivable.Invoice, error) {
	var invoice receivable.Invoice
	if err := r.conn(ctx).First(&invoice, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &invoice, nil
}

// FindByIDForTenant finds an invoice by ID within a tenant
func (r *GormInvoiceRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*receivable.Invoice, error) {
	var invoice receivable.Invoice
	if err := r.conn(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&invoice).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &invoice, nil
}

// FindByNumber finds an invoice by its number within a tenant
func (r *GormInvoiceRepository) FindByNumber(ctx context.Context, tenantID uuid.UUID, number string) (*receivable.Invoice, error) {
	var invoice receivable.Invoice
	if err := r.conn(ctx).
		Where("tenant_id = ? AND invoice_number = ?", tenantID, number).
		First(&invoice).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &invoice, nil
}

// FindAllForTenant finds all invoices for a tenant with filtering
func (r *GormInvoiceRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter receivable.DocumentFilter) ([]receivable.Invoice, error) {
	var invoices []receivable.Invoice
	query := r.conn(ctx).Model(&receivable.Invoice{}).
		Where("tenant_id = ?", tenantID)
	query = applyDocumentFilter(query, filter)
	query = applyDocumentPagination(query, filter, invoiceSortFields())

	if err := query.Find(&invoices).Error; err != nil {
		return nil, err
	}
	return invoices, nil
}

// FindOpenByCustomer finds pending or partial invoices for a customer,
// oldest first
func (r *GormInvoiceRepository) FindOpenByCustomer(ctx context.Context, tenantID, customerID uuid.UUID) ([]receivable.Invoice, error) {
	var invoices []receivable.Invoice
	if err := r.conn(ctx).
		Where("tenant_id = ? AND customer_id = ? AND status IN ?", tenantID, customerID,
			[]receivable.DocumentStatus{receivable.DocumentStatusPending, receivable.DocumentStatusPartial}).
		Order("issued_at ASC, created_at ASC").
		Find(&invoices).Error; err != nil {
		return nil, err
	}
	return invoices, nil
}

// Save creates or updates an invoice
func (r *GormInvoiceRepository) Save(ctx context.Context, invoice *receivable.Invoice) error {
	return r.conn(ctx).Save(invoice).Error
}

// CountForTenant counts invoices for a tenant
func (r *GormInvoiceRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter receivable.DocumentFilter) (int64, error) {
	var count int64
	query := r.conn(ctx).Model(&receivable.Invoice{}).
		Where("tenant_id = ?", tenantID)
	query = applyDocumentFilter(query, filter)

	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func invoiceSortFields() map[string]bool {
	fields := make(map[string]bool, len(DocumentSortFields)+1)
	for k := range DocumentSortFields {
		fields[k] = true
	}
	fields["invoice_number"] = true
	return fields
}

// applyDocumentFilter applies the conditions shared by the document queries
func applyDocumentFilter(query *gorm.DB, filter receivable.DocumentFilter) *gorm.DB {
	if filter.CustomerID != nil {
		query = query.Where("customer_id = ?", *filter.CustomerID)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	return query
}

// applyDocumentPagination applies ordering and pagination shared by the
// document queries
func applyDocumentPagination(query *gorm.DB, filter receivable.DocumentFilter, sortFields map[string]bool) *gorm.DB {
	orderBy := ValidateSortField(filter.OrderBy, sortFields, "issued_at")
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
