package receivable

import (
	"time"

	"github.com/billing/backend/internal/domain/ledger"
	"github.com/billing/backend/internal/domain/shared"
	"github.com/billing/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreditNote is money owed back to the customer, consumed by adjustment
// transactions. The ledger negates cash-method adjustment deltas before
// applying them here, so a positive delta always means "more of this note
// has been used up".
type CreditNote struct {
	shared.TenantAggregateRoot
	NoteNumber    string               `gorm:"type:varchar(50);not null;uniqueIndex:idx_credit_note_tenant_number,priority:2"`
	CustomerID    uuid.UUID            `gorm:"type:uuid;not null;index"`
	InvoiceID     *uuid.UUID           `gorm:"type:uuid;index"` // invoice the credit originated from
	Currency      valueobject.Currency `gorm:"type:varchar(3);not null"`
	Total         decimal.Decimal      `gorm:"type:decimal(18,4);not null"`
	AmountApplied decimal.Decimal      `gorm:"type:decimal(18,4);not null;default:0"`
	Status        DocumentStatus       `gorm:"type:varchar(20);not null;default:'PENDING'"`
	IssuedAt      time.Time
	Reason        string `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (CreditNote) TableName() string {
	return "credit_notes"
}

// NewCreditNote creates a credit note with its full amount unconsumed
func NewCreditNote(
	tenantID uuid.UUID,
	noteNumber string,
	customerID uuid.UUID,
	total valueobject.Money,
	issuedAt time.Time,
	invoiceID *uuid.UUID,
) (*CreditNote, error) {
	if noteNumber == "" {
		return nil, shared.NewDomainError("INVALID_NOTE_NUMBER", "Credit note number cannot be empty")
	}
	if customerID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CUSTOMER", "Customer ID cannot be empty")
	}
	if total.Amount().LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Credit note total must be positive")
	}
	if issuedAt.IsZero() {
		issuedAt = time.Now()
	}

	cn := &CreditNote{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		NoteNumber:          noteNumber,
		CustomerID:          customerID,
		InvoiceID:           invoiceID,
		Currency:            total.Currency(),
		Total:               total.Amount(),
		AmountApplied:       decimal.Zero,
		Status:              DocumentStatusPending,
		IssuedAt:            issuedAt,
	}

	cn.AddDomainEvent(NewCreditNoteIssuedEvent(cn))

	return cn, nil
}

// DocumentID implements ledger.ReceivableDocument
func (c *CreditNote) DocumentID() uuid.UUID {
	return c.ID
}

// DocumentKind implements ledger.ReceivableDocument
func (c *CreditNote) DocumentKind() ledger.DocumentKind {
	return ledger.DocumentKindCreditNote
}

// DocumentCurrency implements ledger.ReceivableDocument
func (c *CreditNote) DocumentCurrency() valueobject.Currency {
	return c.Currency
}

// Remaining returns the unconsumed credit
func (c *CreditNote) Remaining() valueobject.Money {
	return valueobject.MustNewMoney(c.Total.Sub(c.AmountApplied), c.Currency)
}

// ApplyPayment applies a signed consumption delta to the note
func (c *CreditNote) ApplyPayment(delta valueobject.Money) error {
	return c.apply(delta)
}

// ApplyCredit applies a signed consumption delta to the note
func (c *CreditNote) ApplyCredit(delta valueobject.Money) error {
	return c.apply(delta)
}

func (c *CreditNote) apply(delta valueobject.Money) error {
	if !c.Status.CanApply() {
		return ledger.NewDocumentError(ledger.CreditNoteRef(c.ID), "document is void")
	}
	if delta.Currency() != c.Currency {
		return shared.ErrCurrencyMismatch
	}

	next := c.AmountApplied.Add(delta.Amount())
	if next.IsNegative() {
		return ledger.NewDocumentError(ledger.CreditNoteRef(c.ID), "applied amount cannot go negative")
	}
	if next.GreaterThan(c.Total) {
		return ledger.NewDocumentError(ledger.CreditNoteRef(c.ID), "applied amount exceeds credit note total")
	}

	c.AmountApplied = next
	c.UpdatedAt = time.Now()
	c.IncrementVersion()
	return nil
}

// UpdateStatus recomputes the cached status from the consumed amount
func (c *CreditNote) UpdateStatus() {
	if c.Status == DocumentStatusVoid {
		return
	}

	previous := c.Status
	switch {
	case c.AmountApplied.IsZero():
		c.Status = DocumentStatusPending
	case c.AmountApplied.GreaterThanOrEqual(c.Total):
		c.Status = DocumentStatusPaid
	default:
		c.Status = DocumentStatusPartial
	}

	if previous != DocumentStatusPaid && c.Status == DocumentStatusPaid {
		c.AddDomainEvent(NewCreditNoteConsumedEvent(c))
	}
}

// Void cancels the note. Only permitted while nothing is consumed.
func (c *CreditNote) Void() error {
	if c.Status == DocumentStatusVoid {
		return nil
	}
	if !c.AmountApplied.IsZero() {
		return shared.NewDomainError("CREDIT_NOTE_CONSUMED", "Cannot void a credit note with applied amounts")
	}
	c.Status = DocumentStatusVoid
	c.UpdatedAt = time.Now()
	c.IncrementVersion()
	return nil
}
