package receivable

import (
	"time"

	"github.com/billing/backend/internal/domain/ledger"
	"github.com/billing/backend/internal/domain/shared"
	"github.com/billing/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Estimate is a quote the customer can pay deposits against before it is
// converted into an invoice. Deposits flow through the same delta pipeline
// as invoice payments.
type Estimate struct {
	shared.TenantAggregateRoot
	EstimateNumber string               `gorm:"type:varchar(50);not null;uniqueIndex:idx_estimate_tenant_number,priority:2"`
	CustomerID     uuid.UUID            `gorm:"type:uuid;not null;index"`
	Currency       valueobject.Currency `gorm:"type:varchar(3);not null"`
	Total          decimal.Decimal      `gorm:"type:decimal(18,4);not null"`
	AmountPaid     decimal.Decimal      `gorm:"type:decimal(18,4);not null;default:0"`
	Status         DocumentStatus       `gorm:"type:varchar(20);not null;default:'PENDING'"`
	IssuedAt       time.Time
	ExpiresAt      *time.Time
	ConvertedTo    *uuid.UUID `gorm:"type:uuid"` // invoice created from this estimate
	Notes          string     `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (Estimate) TableName() string {
	return "estimates"
}

// NewEstimate creates an estimate with no deposits yet
func NewEstimate(
	tenantID uuid.UUID,
	estimateNumber string,
	customerID uuid.UUID,
	total valueobject.Money,
	issuedAt time.Time,
	expiresAt *time.Time,
) (*Estimate, error) {
	if estimateNumber == "" {
		return nil, shared.NewDomainError("INVALID_ESTIMATE_NUMBER", "Estimate number cannot be empty")
	}
	if customerID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CUSTOMER", "Customer ID cannot be empty")
	}
	if total.Amount().LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Estimate total must be positive")
	}
	if issuedAt.IsZero() {
		issuedAt = time.Now()
	}

	est := &Estimate{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		EstimateNumber:      estimateNumber,
		CustomerID:          customerID,
		Currency:            total.Currency(),
		Total:               total.Amount(),
		AmountPaid:          decimal.Zero,
		Status:              DocumentStatusPending,
		IssuedAt:            issuedAt,
		ExpiresAt:           expiresAt,
	}

	return est, nil
}

// DocumentID implements ledger.ReceivableDocument
func (e *Estimate) DocumentID() uuid.UUID {
	return e.ID
}

// DocumentKind implements ledger.ReceivableDocument
func (e *Estimate) DocumentKind() ledger.DocumentKind {
	return ledger.DocumentKindEstimate
}

// DocumentCurrency implements ledger.ReceivableDocument
func (e *Estimate) DocumentCurrency() valueobject.Currency {
	return e.Currency
}

// Outstanding returns the amount not yet deposited
func (e *Estimate) Outstanding() valueobject.Money {
	return valueobject.MustNewMoney(e.Total.Sub(e.AmountPaid), e.Currency)
}

// ApplyPayment applies a signed deposit delta
func (e *Estimate) ApplyPayment(delta valueobject.Money) error {
	return e.apply(delta)
}

// ApplyCredit applies a signed credit delta; estimates treat credit like
// deposits
func (e *Estimate) ApplyCredit(delta valueobject.Money) error {
	return e.apply(delta)
}

func (e *Estimate) apply(delta valueobject.Money) error {
	if !e.Status.CanApply() {
		return ledger.NewDocumentError(ledger.EstimateRef(e.ID), "document is void")
	}
	if delta.Currency() != e.Currency {
		return shared.ErrCurrencyMismatch
	}

	next := e.AmountPaid.Add(delta.Amount())
	if next.IsNegative() {
		return ledger.NewDocumentError(ledger.EstimateRef(e.ID), "applied amount cannot go negative")
	}
	if next.GreaterThan(e.Total) {
		return ledger.NewDocumentError(ledger.EstimateRef(e.ID), "applied amount exceeds estimate total")
	}

	e.AmountPaid = next
	e.UpdatedAt = time.Now()
	e.IncrementVersion()
	return nil
}

// UpdateStatus recomputes the cached status from the deposited amount
func (e *Estimate) UpdateStatus() {
	if e.Status == DocumentStatusVoid {
		return
	}
	switch {
	case e.AmountPaid.IsZero():
		e.Status = DocumentStatusPending
	case e.AmountPaid.GreaterThanOrEqual(e.Total):
		e.Status = DocumentStatusPaid
	default:
		e.Status = DocumentStatusPartial
	}
}

// MarkConverted records the invoice this estimate turned into
func (e *Estimate) MarkConverted(invoiceID uuid.UUID) error {
	if e.ConvertedTo != nil {
		return shared.NewDomainError("ESTIMATE_CONVERTED", "Estimate has already been converted")
	}
	if invoiceID == uuid.Nil {
		return shared.NewDomainError("INVALID_INVOICE", "Invoice ID cannot be empty")
	}
	e.ConvertedTo = &invoiceID
	e.UpdatedAt = time.Now()
	e.IncrementVersion()
	return nil
}

// IsExpired returns true if the estimate has lapsed without conversion
func (e *Estimate) IsExpired(now time.Time) bool {
	return e.ExpiresAt != nil && now.After(*e.ExpiresAt) && e.ConvertedTo == nil
}
