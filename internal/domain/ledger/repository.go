package ledger

import (
	"context"
	"time"

	"github.com/billing/backend/internal/domain/shared"
	"github.com/billing/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
)

// TransactionFilter defines filtering options for ledger entry queries
type TransactionFilter struct {
	shared.Filter
	CustomerID   *uuid.UUID
	PaymentID    *uuid.UUID
	ParentID     *uuid.UUID
	Type         *TransactionType
	Status       *TransactionStatus
	Method       *PaymentMethod
	DocumentKind *DocumentKind
	DocumentID   *uuid.UUID
	FromDate     *time.Time
	ToDate       *time.Time
}

// TransactionRepository defines the interface for ledger entry persistence
type TransactionRepository interface {
	// FindByID finds a transaction by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Transaction, error)

	// FindByIDForTenant finds a transaction by ID for a specific tenant
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Transaction, error)

	// FindAllForTenant finds all transactions for a tenant with filtering
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter TransactionFilter) ([]Transaction, error)

	// FindByDocument finds all transactions linked to a receivable document
	FindByDocument(ctx context.Context, tenantID uuid.UUID, doc DocumentRef) ([]Transaction, error)

	// FindByPayment finds all transactions owned by a payment
	FindByPayment(ctx context.Context, tenantID, paymentID uuid.UUID) ([]Transaction, error)

	// FindTree loads a transaction and every descendant reachable through
	// parent references
	FindTree(ctx context.Context, tenantID, rootID uuid.UUID) ([]Transaction, error)

	// Save creates or updates a transaction
	Save(ctx context.Context, tx *Transaction) error

	// Delete removes a transaction
	Delete(ctx context.Context, id uuid.UUID) error

	// DeleteForTenant removes a transaction for a tenant
	DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error

	// CountForTenant counts transactions for a tenant with optional filters
	CountForTenant(ctx context.Context, tenantID uuid.UUID, filter TransactionFilter) (int64, error)
}

// PaymentFilter defines filtering options for payment queries
type PaymentFilter struct {
	shared.Filter
	CustomerID *uuid.UUID
	Applied    *bool
	Voided     *bool
	Method     *PaymentMethod
	FromDate   *time.Time
	ToDate     *time.Time
}

// PaymentRepository defines the interface for payment persistence
type PaymentRepository interface {
	// FindByID finds a payment by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Payment, error)

	// FindByIDForTenant finds a payment by ID for a specific tenant
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Payment, error)

	// FindAllForTenant finds all payments for a tenant with filtering
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter PaymentFilter) ([]Payment, error)

	// FindUnapplied finds payments with a positive unapplied balance for a
	// customer, oldest first
	FindUnapplied(ctx context.Context, tenantID, customerID uuid.UUID) ([]Payment, error)

	// Save creates or updates a payment
	Save(ctx context.Context, payment *Payment) error

	// SaveWithLock saves with optimistic locking (version check)
	SaveWithLock(ctx context.Context, payment *Payment) error

	// CountForTenant counts payments for a tenant with optional filters
	CountForTenant(ctx context.Context, tenantID uuid.UUID, filter PaymentFilter) (int64, error)
}

// CreditSnapshotRepository persists the store-credit timeline. Snapshots are
// keyed by transaction id; a full (customer, currency) timeline is replaced
// in one write after recomputation.
type CreditSnapshotRepository interface {
	// FindByCustomer loads the full timeline for a customer and currency
	FindByCustomer(ctx context.Context, tenantID, customerID uuid.UUID, currency valueobject.Currency) ([]CreditSnapshot, error)

	// ReplaceTimeline atomically replaces the stored timeline for the
	// (customer, currency) pair with the given snapshots
	ReplaceTimeline(ctx context.Context, tenantID, customerID uuid.UUID, currency valueobject.Currency, snapshots []CreditSnapshot) error

	// DeleteByTransaction removes the snapshot recorded for a transaction
	DeleteByTransaction(ctx context.Context, tenantID, txID uuid.UUID) error
}

// MatchSuggestionRepository persists advisory payment-to-document matches
type MatchSuggestionRepository interface {
	// FindByPayment finds pending suggestions for a payment
	FindByPayment(ctx context.Context, tenantID, paymentID uuid.UUID) ([]MatchSuggestion, error)

	// Save creates or updates a suggestion
	Save(ctx context.Context, suggestion *MatchSuggestion) error

	// DeleteByPayment removes every suggestion attached to a payment
	DeleteByPayment(ctx context.Context, tenantID, paymentID uuid.UUID) error
}
