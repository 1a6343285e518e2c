package ledger

import (
	"time"

	"github.com/billing/backend/internal/domain/shared"
	"github.com/billing/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Payment is a customer-facing receipt aggregating one or more ledger
// entries. It tracks how much of the received amount is still unapplied:
// 0 <= balance <= amount always, and applied is true exactly when the
// balance is zero.
type Payment struct {
	shared.TenantAggregateRoot
	CustomerID *uuid.UUID
	Amount     decimal.Decimal
	Balance    decimal.Decimal
	Currency   valueobject.Currency
	Applied    bool
	Voided     bool
	Date       time.Time
	Method     PaymentMethod
	Source     string
	Notes      string
	VoidedAt   *time.Time

	breakdown *PaymentBreakdown `gorm:"-"`
}

// NewPayment creates a payment with its full amount unapplied
func NewPayment(
	tenantID uuid.UUID,
	amount valueobject.Money,
	method PaymentMethod,
	date time.Time,
	customerID *uuid.UUID,
) (*Payment, error) {
	if tenantID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_TENANT", "Tenant ID cannot be empty")
	}
	if amount.IsNegative() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Payment amount cannot be negative")
	}
	if !amount.Currency().IsValid() {
		return nil, shared.NewDomainError("INVALID_CURRENCY", "Payment currency is not valid")
	}
	if method == "" {
		return nil, shared.NewDomainError("INVALID_METHOD", "Payment method cannot be empty")
	}
	if date.IsZero() {
		date = time.Now()
	}

	p := &Payment{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		CustomerID:          customerID,
		Amount:              amount.Amount(),
		Balance:             amount.Amount(),
		Currency:            amount.Currency(),
		Applied:             amount.IsZero(),
		Date:                date,
		Method:              method,
	}

	p.AddDomainEvent(NewPaymentCreatedEvent(p))

	return p, nil
}

// WithSource records where the payment came from (gateway, manual entry)
func (p *Payment) WithSource(source string) *Payment {
	p.Source = source
	return p
}

// WithNotes sets free-form notes
func (p *Payment) WithNotes(notes string) *Payment {
	p.Notes = notes
	return p
}

// GetAmountMoney returns the amount as Money
func (p *Payment) GetAmountMoney() valueobject.Money {
	return valueobject.MustNewMoney(p.Amount, p.Currency)
}

// GetBalanceMoney returns the unapplied remainder as Money
func (p *Payment) GetBalanceMoney() valueobject.Money {
	return valueobject.MustNewMoney(p.Balance, p.Currency)
}

// EnsureMutable rejects edits on a voided payment
func (p *Payment) EnsureMutable() error {
	if p.Voided {
		return &AlreadyVoidedError{PaymentID: p.ID}
	}
	return nil
}

// SetAmount changes the received amount and recomputes the balance by the
// signed delta of the change. A decrease that would push the balance below
// zero is only permitted when the payment's application set is being changed
// in the same atomic operation; otherwise it fails validation.
func (p *Payment) SetAmount(newAmount valueobject.Money, applicationChanging bool) error {
	if err := p.EnsureMutable(); err != nil {
		return err
	}
	if newAmount.Currency() != p.Currency {
		return NewImmutableFieldError("currency")
	}
	if newAmount.IsNegative() {
		return shared.NewDomainError("INVALID_AMOUNT", "Payment amount cannot be negative")
	}

	delta := newAmount.Amount().Sub(p.Amount)
	if delta.IsZero() {
		return nil
	}

	newBalance := p.Balance.Add(delta)
	if newBalance.IsNegative() {
		if !applicationChanging {
			return shared.NewDomainError("BALANCE_BELOW_ZERO", "Payment balance cannot go below 0")
		}
		newBalance = decimal.Zero
	}
	if newBalance.GreaterThan(newAmount.Amount()) {
		newBalance = newAmount.Amount()
	}

	previous := p.Amount
	p.Amount = newAmount.Amount()
	p.Balance = newBalance
	p.Applied = p.Balance.IsZero()
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
	p.breakdown = nil

	p.AddDomainEvent(NewPaymentAmountChangedEvent(p, previous))

	return nil
}

// Consume reduces the unapplied balance by a signed delta coming out of the
// delta engine (a negative delta, such as a refund reversal, frees balance
// back up, capped at the full amount).
func (p *Payment) Consume(delta valueobject.Money) error {
	if err := p.EnsureMutable(); err != nil {
		return err
	}
	if delta.Currency() != p.Currency {
		return shared.ErrCurrencyMismatch
	}

	newBalance := p.Balance.Sub(delta.Amount())
	if newBalance.IsNegative() {
		return shared.NewDomainError("BALANCE_BELOW_ZERO",
			"Applied amount exceeds the payment's unapplied balance")
	}
	if newBalance.GreaterThan(p.Amount) {
		newBalance = p.Amount
	}

	p.Balance = newBalance
	p.Applied = p.Balance.IsZero()
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
	p.breakdown = nil

	return nil
}

// Void irreversibly cancels the payment: the balance returns to the full
// amount and the applied flag clears. The owning service deletes every
// owned transaction and clears match suggestions inside the same atomic
// unit before calling this.
func (p *Payment) Void() error {
	if p.Voided {
		return &AlreadyVoidedError{PaymentID: p.ID}
	}

	now := time.Now()
	p.Voided = true
	p.VoidedAt = &now
	p.Balance = p.Amount
	p.Applied = false
	p.UpdatedAt = now
	p.IncrementVersion()
	p.breakdown = nil

	p.AddDomainEvent(NewPaymentVoidedEvent(p))

	return nil
}

// SetNotes updates audit metadata; permitted even on voided payments
func (p *Payment) SetNotes(notes string) {
	p.Notes = notes
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
}

// PaymentBreakdown is a read-only projection over the payment's owned
// transactions: where the received money went.
type PaymentBreakdown struct {
	AppliedToInvoices    decimal.Decimal `json:"applied_to_invoices"`
	AppliedToCreditNotes decimal.Decimal `json:"applied_to_credit_notes"`
	AppliedToEstimates   decimal.Decimal `json:"applied_to_estimates"`
	Refunded             decimal.Decimal `json:"refunded"`
	FromStoreCredit      decimal.Decimal `json:"from_store_credit"`
	Fees                 decimal.Decimal `json:"fees"`
}

// Breakdown aggregates the settled effect of the owned transactions. The
// projection is cached per instance; Payment instances are short-lived per
// request, so the cache is never invalidated explicitly (mutations reset it).
func (p *Payment) Breakdown(owned []*Transaction) *PaymentBreakdown {
	if p.breakdown != nil {
		return p.breakdown
	}

	b := &PaymentBreakdown{
		AppliedToInvoices:    decimal.Zero,
		AppliedToCreditNotes: decimal.Zero,
		AppliedToEstimates:   decimal.Zero,
		Refunded:             decimal.Zero,
		FromStoreCredit:      decimal.Zero,
		Fees:                 decimal.Zero,
	}
	for _, tx := range owned {
		if !tx.IsSucceeded() {
			continue
		}
		if tx.Type == TransactionTypeRefund {
			b.Refunded = b.Refunded.Add(tx.Amount)
			continue
		}
		if tx.UsesStoreCredit() {
			b.FromStoreCredit = b.FromStoreCredit.Add(tx.Amount)
		}
		switch tx.Document.Kind() {
		case DocumentKindInvoice:
			b.AppliedToInvoices = b.AppliedToInvoices.Add(tx.Amount)
		case DocumentKindCreditNote:
			b.AppliedToCreditNotes = b.AppliedToCreditNotes.Add(tx.Amount)
		case DocumentKindEstimate:
			b.AppliedToEstimates = b.AppliedToEstimates.Add(tx.Amount)
		default:
			if tx.Type == TransactionTypeAdjustment {
				b.Fees = b.Fees.Add(tx.Amount)
			}
		}
	}

	p.breakdown = b
	return b
}

// MatchSuggestion is a pending hint that a payment likely settles a given
// document. Suggestions are advisory and are discarded when the payment is
// voided.
type MatchSuggestion struct {
	shared.BaseEntity
	TenantID  uuid.UUID
	PaymentID uuid.UUID
	Document  DocumentRef
	Amount    decimal.Decimal
}

// NewMatchSuggestion creates a match suggestion for a payment
func NewMatchSuggestion(tenantID, paymentID uuid.UUID, doc DocumentRef, amount decimal.Decimal) (*MatchSuggestion, error) {
	if doc.IsNone() {
		return nil, shared.NewDomainError("INVALID_DOCUMENT_LINK", "Match suggestion requires a document")
	}
	return &MatchSuggestion{
		BaseEntity: shared.NewBaseEntity(),
		TenantID:   tenantID,
		PaymentID:  paymentID,
		Document:   doc,
		Amount:     amount,
	}, nil
}
