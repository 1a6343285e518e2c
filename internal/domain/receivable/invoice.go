package receivable

import (
	"time"

	"github.com/billing/backend/internal/domain/ledger"
	"github.com/billing/backend/internal/domain/shared"
	"github.com/billing/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Invoice is a receivable the customer owes money against. The ledger pushes
// signed payment and credit deltas into it; the invoice only tracks the
// resulting balances and derives its status from them.
type Invoice struct {
	shared.TenantAggregateRoot
	InvoiceNumber  string               `gorm:"type:varchar(50);not null;uniqueIndex:idx_invoice_tenant_number,priority:2"`
	CustomerID     uuid.UUID            `gorm:"type:uuid;not null;index"`
	Currency       valueobject.Currency `gorm:"type:varchar(3);not null"`
	Total          decimal.Decimal      `gorm:"type:decimal(18,4);not null"`
	AmountPaid     decimal.Decimal      `gorm:"type:decimal(18,4);not null;default:0"`
	AmountCredited decimal.Decimal      `gorm:"type:decimal(18,4);not null;default:0"`
	Status         DocumentStatus       `gorm:"type:varchar(20);not null;default:'PENDING'"`
	IssuedAt       time.Time
	DueAt          *time.Time
	PaidAt         *time.Time
	Notes          string `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (Invoice) TableName() string {
	return "invoices"
}

// NewInvoice creates an invoice with nothing applied yet
func NewInvoice(
	tenantID uuid.UUID,
	invoiceNumber string,
	customerID uuid.UUID,
	total valueobject.Money,
	issuedAt time.Time,
	dueAt *time.Time,
) (*Invoice, error) {
	if invoiceNumber == "" {
		return nil, shared.NewDomainError("INVALID_INVOICE_NUMBER", "Invoice number cannot be empty")
	}
	if customerID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CUSTOMER", "Customer ID cannot be empty")
	}
	if total.Amount().LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Invoice total must be positive")
	}
	if issuedAt.IsZero() {
		issuedAt = time.Now()
	}

	inv := &Invoice{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		InvoiceNumber:       invoiceNumber,
		CustomerID:          customerID,
		Currency:            total.Currency(),
		Total:               total.Amount(),
		AmountPaid:          decimal.Zero,
		AmountCredited:      decimal.Zero,
		Status:              DocumentStatusPending,
		IssuedAt:            issuedAt,
		DueAt:               dueAt,
	}

	inv.AddDomainEvent(NewInvoiceIssuedEvent(inv))

	return inv, nil
}

// DocumentID implements ledger.ReceivableDocument
func (i *Invoice) DocumentID() uuid.UUID {
	return i.ID
}

// DocumentKind implements ledger.ReceivableDocument
func (i *Invoice) DocumentKind() ledger.DocumentKind {
	return ledger.DocumentKindInvoice
}

// DocumentCurrency implements ledger.ReceivableDocument
func (i *Invoice) DocumentCurrency() valueobject.Currency {
	return i.Currency
}

// Outstanding returns the amount still owed
func (i *Invoice) Outstanding() valueobject.Money {
	open := i.Total.Sub(i.AmountPaid).Sub(i.AmountCredited)
	return valueobject.MustNewMoney(open, i.Currency)
}

// ApplyPayment applies a signed payment delta. A positive delta settles part
// of the invoice; a negative one reverses an earlier settlement. The applied
// total may neither go negative nor exceed the invoice total.
func (i *Invoice) ApplyPayment(delta valueobject.Money) error {
	return i.apply(delta, &i.AmountPaid)
}

// ApplyCredit applies a signed credit delta, same bounds as ApplyPayment
func (i *Invoice) ApplyCredit(delta valueobject.Money) error {
	return i.apply(delta, &i.AmountCredited)
}

func (i *Invoice) apply(delta valueobject.Money, bucket *decimal.Decimal) error {
	if !i.Status.CanApply() {
		return ledger.NewDocumentError(ledger.InvoiceRef(i.ID), "document is void")
	}
	if delta.Currency() != i.Currency {
		return shared.ErrCurrencyMismatch
	}

	next := bucket.Add(delta.Amount())
	if next.IsNegative() {
		return ledger.NewDocumentError(ledger.InvoiceRef(i.ID), "applied amount cannot go negative")
	}
	other := i.AmountPaid.Add(i.AmountCredited).Sub(*bucket)
	if next.Add(other).GreaterThan(i.Total) {
		return ledger.NewDocumentError(ledger.InvoiceRef(i.ID), "applied amount exceeds invoice total")
	}

	*bucket = next
	i.UpdatedAt = time.Now()
	i.IncrementVersion()
	return nil
}

// UpdateStatus recomputes the cached status from the applied balances
func (i *Invoice) UpdateStatus() {
	if i.Status == DocumentStatusVoid {
		return
	}

	previous := i.Status
	applied := i.AmountPaid.Add(i.AmountCredited)
	switch {
	case applied.IsZero():
		i.Status = DocumentStatusPending
		i.PaidAt = nil
	case applied.GreaterThanOrEqual(i.Total):
		i.Status = DocumentStatusPaid
		if i.PaidAt == nil {
			now := time.Now()
			i.PaidAt = &now
		}
	default:
		i.Status = DocumentStatusPartial
		i.PaidAt = nil
	}

	if previous != DocumentStatusPaid && i.Status == DocumentStatusPaid {
		i.AddDomainEvent(NewInvoicePaidEvent(i))
	}
}

// Void cancels the invoice. Only permitted while nothing is applied.
func (i *Invoice) Void() error {
	if i.Status == DocumentStatusVoid {
		return nil
	}
	if !i.AmountPaid.IsZero() || !i.AmountCredited.IsZero() {
		return shared.NewDomainError("INVOICE_HAS_APPLICATIONS", "Cannot void an invoice with applied amounts")
	}
	i.Status = DocumentStatusVoid
	i.UpdatedAt = time.Now()
	i.IncrementVersion()
	return nil
}

// IsOverdue returns true if the invoice is unpaid past its due date
func (i *Invoice) IsOverdue(now time.Time) bool {
	return i.DueAt != nil && now.After(*i.DueAt) &&
		i.Status != DocumentStatusPaid && i.Status != DocumentStatusVoid
}
