package receivable

import (
	"github.com/billing/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Event types for receivable documents
const (
	EventTypeInvoiceIssued      = "receivable.invoice.issued"
	EventTypeInvoicePaid        = "receivable.invoice.paid"
	EventTypeCreditNoteIssued   = "receivable.credit_note.issued"
	EventTypeCreditNoteConsumed = "receivable.credit_note.consumed"
)

// InvoiceIssuedEvent is published when an invoice is created
type InvoiceIssuedEvent struct {
	shared.BaseDomainEvent
	InvoiceNumber string          `json:"invoice_number"`
	Total         decimal.Decimal `json:"total"`
	Currency      string          `json:"currency"`
}

// NewInvoiceIssuedEvent creates an invoice issued event
func NewInvoiceIssuedEvent(inv *Invoice) *InvoiceIssuedEvent {
	return &InvoiceIssuedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeInvoiceIssued, "Invoice", inv.ID, inv.TenantID),
		InvoiceNumber:   inv.InvoiceNumber,
		Total:           inv.Total,
		Currency:        string(inv.Currency),
	}
}

// InvoicePaidEvent is published when an invoice becomes fully settled
type InvoicePaidEvent struct {
	shared.BaseDomainEvent
	InvoiceNumber string `json:"invoice_number"`
}

// NewInvoicePaidEvent creates an invoice paid event
func NewInvoicePaidEvent(inv *Invoice) *InvoicePaidEvent {
	return &InvoicePaidEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeInvoicePaid, "Invoice", inv.ID, inv.TenantID),
		InvoiceNumber:   inv.InvoiceNumber,
	}
}

// CreditNoteIssuedEvent is published when a credit note is created
type CreditNoteIssuedEvent struct {
	shared.BaseDomainEvent
	NoteNumber string          `json:"note_number"`
	Total      decimal.Decimal `json:"total"`
	Currency   string          `json:"currency"`
}

// NewCreditNoteIssuedEvent creates a credit note issued event
func NewCreditNoteIssuedEvent(cn *CreditNote) *CreditNoteIssuedEvent {
	return &CreditNoteIssuedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeCreditNoteIssued, "CreditNote", cn.ID, cn.TenantID),
		NoteNumber:      cn.NoteNumber,
		Total:           cn.Total,
		Currency:        string(cn.Currency),
	}
}

// CreditNoteConsumedEvent is published when a credit note is fully used up
type CreditNoteConsumedEvent struct {
	shared.BaseDomainEvent
	NoteNumber string `json:"note_number"`
}

// NewCreditNoteConsumedEvent creates a credit note consumed event
func NewCreditNoteConsumedEvent(cn *CreditNote) *CreditNoteConsumedEvent {
	return &CreditNoteConsumedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeCreditNoteConsumed, "CreditNote", cn.ID, cn.TenantID),
		NoteNumber:      cn.NoteNumber,
	}
}
