package ledger

import (
	"github.com/billing/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Event types for transaction aggregate
const (
	EventTypeTransactionCreated = "ledger.transaction.created"
	EventTypeTransactionUpdated = "ledger.transaction.updated"
	EventTypeTransactionDeleted = "ledger.transaction.deleted"
)

// TransactionCreatedEvent is published when a ledger entry is created
type TransactionCreatedEvent struct {
	shared.BaseDomainEvent
	TransactionType TransactionType   `json:"transaction_type"`
	Status          TransactionStatus `json:"status"`
	Method          PaymentMethod     `json:"method"`
	Amount          decimal.Decimal   `json:"amount"`
	Currency        string            `json:"currency"`
	DocumentKind    DocumentKind      `json:"document_kind"`
}

// NewTransactionCreatedEvent creates a transaction created event
func NewTransactionCreatedEvent(tx *Transaction) *TransactionCreatedEvent {
	return &TransactionCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeTransactionCreated, "Transaction", tx.ID, tx.TenantID),
		TransactionType: tx.Type,
		Status:          tx.Status,
		Method:          tx.Method,
		Amount:          tx.Amount,
		Currency:        string(tx.Currency),
		DocumentKind:    tx.Document.Kind(),
	}
}

// TransactionUpdatedEvent is published when a ledger entry is mutated
type TransactionUpdatedEvent struct {
	shared.BaseDomainEvent
	OldStatus TransactionStatus `json:"old_status"`
	NewStatus TransactionStatus `json:"new_status"`
	OldAmount decimal.Decimal   `json:"old_amount"`
	NewAmount decimal.Decimal   `json:"new_amount"`
}

// NewTransactionUpdatedEvent creates a transaction updated event
func NewTransactionUpdatedEvent(oldTx, newTx *Transaction) *TransactionUpdatedEvent {
	return &TransactionUpdatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeTransactionUpdated, "Transaction", newTx.ID, newTx.TenantID),
		OldStatus:       oldTx.Status,
		NewStatus:       newTx.Status,
		OldAmount:       oldTx.Amount,
		NewAmount:       newTx.Amount,
	}
}

// TransactionDeletedEvent is published when a ledger entry is removed
type TransactionDeletedEvent struct {
	shared.BaseDomainEvent
	TransactionType TransactionType `json:"transaction_type"`
	Amount          decimal.Decimal `json:"amount"`
	Currency        string          `json:"currency"`
}

// NewTransactionDeletedEvent creates a transaction deleted event
func NewTransactionDeletedEvent(tx *Transaction) *TransactionDeletedEvent {
	return &TransactionDeletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeTransactionDeleted, "Transaction", tx.ID, tx.TenantID),
		TransactionType: tx.Type,
		Amount:          tx.Amount,
		Currency:        string(tx.Currency),
	}
}
