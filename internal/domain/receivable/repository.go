package receivable

import (
	"context"

	"github.com/billing/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// DocumentFilter defines filtering options shared by the document queries
type DocumentFilter struct {
	shared.Filter
	CustomerID *uuid.UUID
	Status     *DocumentStatus
}

// InvoiceRepository defines the interface for invoice persistence
type InvoiceRepository interface {
	// FindByID finds an invoice by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Invoice, error)

	// FindByIDForTenant finds an invoice by ID for a specific tenant
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Invoice, error)

	// FindByNumber finds an invoice by its number for a tenant
	FindByNumber(ctx context.Context, tenantID uuid.UUID, number string) (*Invoice, error)

	// FindAllForTenant finds all invoices for a tenant with filtering
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter DocumentFilter) ([]Invoice, error)

	// FindOpenByCustomer finds pending or partial invoices for a customer,
	// oldest first
	FindOpenByCustomer(ctx context.Context, tenantID, customerID uuid.UUID) ([]Invoice, error)

	// Save creates or updates an invoice
	Save(ctx context.Context, invoice *Invoice) error

	// CountForTenant counts invoices for a tenant
	CountForTenant(ctx context.Context, tenantID uuid.UUID, filter DocumentFilter) (int64, error)
}

// CreditNoteRepository defines the interface for credit note persistence
type CreditNoteRepository interface {
	// FindByID finds a credit note by ID
	FindByID(ctx context.Context, id uuid.UUID) (*CreditNote, error)

	// FindByIDForTenant finds a credit note by ID for a specific tenant
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*CreditNote, error)

	// FindAllForTenant finds all credit notes for a tenant with filtering
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter DocumentFilter) ([]CreditNote, error)

	// FindOpenByCustomer finds notes with unconsumed credit for a customer,
	// oldest first
	FindOpenByCustomer(ctx context.Context, tenantID, customerID uuid.UUID) ([]CreditNote, error)

	// Save creates or updates a credit note
	Save(ctx context.Context, note *CreditNote) error
}

// EstimateRepository defines the interface for estimate persistence
type EstimateRepository interface {
	// FindByID finds an estimate by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Estimate, error)

	// FindByIDForTenant finds an estimate by ID for a specific tenant
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Estimate, error)

	// FindAllForTenant finds all estimates for a tenant with filtering
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter DocumentFilter) ([]Estimate, error)

	// Save creates or updates an estimate
	Save(ctx context.Context, estimate *Estimate) error
}
