package ledger

import (
	"time"

	"github.com/billing/backend/internal/domain/shared"
	"github.com/billing/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransactionType represents the type of a ledger entry
type TransactionType string

const (
	TransactionTypeCharge             TransactionType = "CHARGE"
	TransactionTypePayment            TransactionType = "PAYMENT"
	TransactionTypeRefund             TransactionType = "REFUND"
	TransactionTypeAdjustment         TransactionType = "ADJUSTMENT"
	TransactionTypeDocumentAdjustment TransactionType = "DOCUMENT_ADJUSTMENT"
)

// String returns the string representation of TransactionType
func (t TransactionType) String() string {
	return string(t)
}

// IsValid returns true if the transaction type is valid
func (t TransactionType) IsValid() bool {
	switch t {
	case TransactionTypeCharge,
		TransactionTypePayment,
		TransactionTypeRefund,
		TransactionTypeAdjustment,
		TransactionTypeDocumentAdjustment:
		return true
	}
	return false
}

// IsCashReceived returns true for types that represent money coming in
func (t TransactionType) IsCashReceived() bool {
	return t == TransactionTypeCharge || t == TransactionTypePayment
}

// TransactionStatus represents the settlement state of a ledger entry.
// Only succeeded entries have a monetary effect on linked documents.
type TransactionStatus string

const (
	TransactionStatusPending   TransactionStatus = "PENDING"
	TransactionStatusSucceeded TransactionStatus = "SUCCEEDED"
	TransactionStatusFailed    TransactionStatus = "FAILED"
)

// String returns the string representation of TransactionStatus
func (s TransactionStatus) String() string {
	return string(s)
}

// IsValid returns true if the status is valid
func (s TransactionStatus) IsValid() bool {
	return s == TransactionStatusPending || s == TransactionStatusSucceeded || s == TransactionStatusFailed
}

// PaymentMethod is a free-form payment method identifier. The single
// reserved value is PaymentMethodBalance, meaning the customer's store
// credit.
type PaymentMethod string

// PaymentMethodBalance marks a movement funded from the customer's store
// credit; such transactions flow through the credit balance history.
const PaymentMethodBalance PaymentMethod = "balance"

// IsBalance returns true if the method is the reserved store-credit method
func (m PaymentMethod) IsBalance() bool {
	return m == PaymentMethodBalance
}

// Transaction is a single signed monetary movement in the ledger. It links
// to at most one receivable document, optionally to an owning Payment, and
// optionally to a parent transaction (retries and partial settlements form a
// tree through these back-references).
//
// Sign convention: charges, payments and refunds carry positive amounts;
// credit-note and adjustment entries may be negative.
type Transaction struct {
	shared.TenantAggregateRoot
	Date                time.Time
	Type                TransactionType
	Status              TransactionStatus
	Method              PaymentMethod
	Currency            valueobject.Currency
	Amount              decimal.Decimal
	Notes               string
	GatewayID           string
	Document            DocumentRef
	ParentTransactionID *uuid.UUID
	PaymentID           *uuid.UUID
	CustomerID          *uuid.UUID
}

// NewTransaction creates a new ledger entry. The document reference ties the
// entry to exactly one of invoice, credit note, estimate, or nothing (an
// advance or store-credit movement).
func NewTransaction(
	tenantID uuid.UUID,
	txType TransactionType,
	status TransactionStatus,
	method PaymentMethod,
	amount valueobject.Money,
	date time.Time,
	doc DocumentRef,
) (*Transaction, error) {
	if tenantID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_TENANT", "Tenant ID cannot be empty")
	}
	if !txType.IsValid() {
		return nil, shared.NewDomainError("INVALID_TRANSACTION_TYPE", "Invalid transaction type")
	}
	if !status.IsValid() {
		return nil, shared.NewDomainError("INVALID_STATUS", "Invalid transaction status")
	}
	if method == "" {
		return nil, shared.NewDomainError("INVALID_METHOD", "Payment method cannot be empty")
	}
	if date.IsZero() {
		date = time.Now()
	}

	tx := &Transaction{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Date:                date,
		Type:                txType,
		Status:              status,
		Method:              method,
		Currency:            amount.Currency(),
		Amount:              amount.Amount(),
		Document:            doc,
	}
	if err := tx.validate(); err != nil {
		return nil, err
	}

	tx.AddDomainEvent(NewTransactionCreatedEvent(tx))

	return tx, nil
}

// validate enforces the save-time invariants
func (t *Transaction) validate() error {
	if t.Amount.IsZero() {
		return shared.NewDomainError("INVALID_AMOUNT", "Transaction amount cannot be zero")
	}
	if !t.Currency.IsValid() {
		return shared.NewDomainError("INVALID_CURRENCY", "Transaction currency is not valid")
	}
	if t.Document.IsCreditNote() && t.Type != TransactionTypeAdjustment {
		return shared.NewDomainError("INVALID_DOCUMENT_LINK", "Credit note links are only permitted on adjustment transactions")
	}
	if t.Amount.IsNegative() {
		if t.Type == TransactionTypeRefund {
			return shared.NewDomainError("INVALID_AMOUNT", "A refund cannot have a negative amount")
		}
		if t.Status == TransactionStatusSucceeded && t.Type.IsCashReceived() {
			return shared.NewDomainError("INVALID_AMOUNT", "A successful payment or charge cannot have a negative amount")
		}
	}
	return nil
}

// WithParent links the transaction under a parent entry
func (t *Transaction) WithParent(parentID uuid.UUID) *Transaction {
	t.ParentTransactionID = &parentID
	return t
}

// WithPayment assigns the owning payment
func (t *Transaction) WithPayment(paymentID uuid.UUID) *Transaction {
	t.PaymentID = &paymentID
	return t
}

// WithCustomer assigns the customer the movement belongs to
func (t *Transaction) WithCustomer(customerID uuid.UUID) *Transaction {
	t.CustomerID = &customerID
	return t
}

// WithNotes sets free-form notes
func (t *Transaction) WithNotes(notes string) *Transaction {
	t.Notes = notes
	return t
}

// WithGatewayID records the external gateway reference
func (t *Transaction) WithGatewayID(gatewayID string) *Transaction {
	t.GatewayID = gatewayID
	return t
}

// GetAmountMoney returns the amount as a Money value object
func (t *Transaction) GetAmountMoney() valueobject.Money {
	return valueobject.MustNewMoney(t.Amount, t.Currency)
}

// IsSucceeded returns true if the entry has settled
func (t *Transaction) IsSucceeded() bool {
	return t.Status == TransactionStatusSucceeded
}

// UsesStoreCredit returns true if the entry moves store credit
func (t *Transaction) UsesStoreCredit() bool {
	return t.Method.IsBalance()
}

// TransactionPatch describes a partial update to a transaction. Nil fields
// are left unchanged.
type TransactionPatch struct {
	Status    *TransactionStatus
	Notes     *string
	Amount    *decimal.Decimal
	Date      *time.Time
	GatewayID *string
}

// Apply mutates the transaction according to the patch, enforcing field
// immutability rules:
//   - a refund's amount is frozen after creation
//   - a non-balance charge only allows status, notes and gateway edits
func (t *Transaction) Apply(patch TransactionPatch) error {
	if patch.Amount != nil && !patch.Amount.Equal(t.Amount) {
		if t.Type == TransactionTypeRefund {
			return NewImmutableFieldError("amount")
		}
		if t.Type == TransactionTypeCharge && !t.Method.IsBalance() {
			return NewImmutableFieldError("amount")
		}
	}
	if patch.Date != nil && !patch.Date.Equal(t.Date) {
		if t.Type == TransactionTypeCharge && !t.Method.IsBalance() {
			return NewImmutableFieldError("date")
		}
	}

	if patch.Status != nil {
		if !patch.Status.IsValid() {
			return shared.NewDomainError("INVALID_STATUS", "Invalid transaction status")
		}
		t.Status = *patch.Status
	}
	if patch.Amount != nil {
		t.Amount = *patch.Amount
	}
	if patch.Date != nil {
		t.Date = *patch.Date
	}
	if patch.Notes != nil {
		t.Notes = *patch.Notes
	}
	if patch.GatewayID != nil {
		t.GatewayID = *patch.GatewayID
	}

	if err := t.validate(); err != nil {
		return err
	}

	t.UpdatedAt = time.Now()
	t.IncrementVersion()

	return nil
}

// Clone returns a deep copy used by the mutation pipeline to diff old and
// new state. Pending domain events are not carried over.
func (t *Transaction) Clone() *Transaction {
	clone := *t
	clone.ClearDomainEvents()
	if t.ParentTransactionID != nil {
		id := *t.ParentTransactionID
		clone.ParentTransactionID = &id
	}
	if t.PaymentID != nil {
		id := *t.PaymentID
		clone.PaymentID = &id
	}
	if t.CustomerID != nil {
		id := *t.CustomerID
		clone.CustomerID = &id
	}
	return &clone
}
