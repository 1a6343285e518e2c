package ledger

import (
	"context"

	"github.com/billing/backend/internal/domain/shared"
	"github.com/billing/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
)

// DocumentKind identifies the kind of receivable document a transaction is
// applied against.
type DocumentKind string

const (
	DocumentKindNone       DocumentKind = "NONE"
	DocumentKindInvoice    DocumentKind = "INVOICE"
	DocumentKindCreditNote DocumentKind = "CREDIT_NOTE"
	DocumentKindEstimate   DocumentKind = "ESTIMATE"
)

// IsValid returns true if the kind is a known DocumentKind
func (k DocumentKind) IsValid() bool {
	switch k {
	case DocumentKindNone, DocumentKindInvoice, DocumentKindCreditNote, DocumentKindEstimate:
		return true
	}
	return false
}

// String returns the string representation of DocumentKind
func (k DocumentKind) String() string {
	return string(k)
}

// DocumentRef is a tagged reference to at most one receivable document.
// A transaction links to an invoice, a credit note, an estimate, or nothing;
// the variant makes "exactly one or none" impossible to violate.
type DocumentRef struct {
	kind DocumentKind
	id   uuid.UUID
}

// NoDocument returns the empty document reference
func NoDocument() DocumentRef {
	return DocumentRef{kind: DocumentKindNone}
}

// InvoiceRef returns a reference to an invoice
func InvoiceRef(id uuid.UUID) DocumentRef {
	return DocumentRef{kind: DocumentKindInvoice, id: id}
}

// CreditNoteRef returns a reference to a credit note
func CreditNoteRef(id uuid.UUID) DocumentRef {
	return DocumentRef{kind: DocumentKindCreditNote, id: id}
}

// EstimateRef returns a reference to an estimate
func EstimateRef(id uuid.UUID) DocumentRef {
	return DocumentRef{kind: DocumentKindEstimate, id: id}
}

// NewDocumentRef builds a DocumentRef from its parts, validating the kind
func NewDocumentRef(kind DocumentKind, id uuid.UUID) (DocumentRef, error) {
	if !kind.IsValid() {
		return DocumentRef{}, shared.NewDomainError("INVALID_DOCUMENT_KIND", "Document kind is not valid")
	}
	if kind == DocumentKindNone {
		return NoDocument(), nil
	}
	if id == uuid.Nil {
		return DocumentRef{}, shared.NewDomainError("INVALID_DOCUMENT_ID", "Document ID cannot be empty")
	}
	return DocumentRef{kind: kind, id: id}, nil
}

// Kind returns the document kind
func (r DocumentRef) Kind() DocumentKind {
	if r.kind == "" {
		return DocumentKindNone
	}
	return r.kind
}

// ID returns the referenced document id (uuid.Nil for the none variant)
func (r DocumentRef) ID() uuid.UUID {
	return r.id
}

// IsNone returns true if no document is referenced
func (r DocumentRef) IsNone() bool {
	return r.Kind() == DocumentKindNone
}

// IsInvoice returns true for an invoice reference
func (r DocumentRef) IsInvoice() bool {
	return r.kind == DocumentKindInvoice
}

// IsCreditNote returns true for a credit note reference
func (r DocumentRef) IsCreditNote() bool {
	return r.kind == DocumentKindCreditNote
}

// IsEstimate returns true for an estimate reference
func (r DocumentRef) IsEstimate() bool {
	return r.kind == DocumentKindEstimate
}

// Equals returns true if both references point at the same document
func (r DocumentRef) Equals(other DocumentRef) bool {
	return r.Kind() == other.Kind() && r.id == other.id
}

// ReceivableDocument is the narrow interface the ledger consumes from the
// documents it updates. Implemented by Invoice, CreditNote and Estimate.
// ApplyPayment and ApplyCredit take the signed delta computed by the delta
// engine; a rejected delta surfaces as a *DocumentError.
type ReceivableDocument interface {
	DocumentID() uuid.UUID
	DocumentKind() DocumentKind
	DocumentCurrency() valueobject.Currency
	// ApplyPayment applies a signed payment delta to the document balance
	ApplyPayment(delta valueobject.Money) error
	// ApplyCredit applies a signed credit delta to the document balance
	ApplyCredit(delta valueobject.Money) error
	// UpdateStatus recomputes the document's cached status from its balances
	UpdateStatus()
}

// DocumentResolver loads the receivable document behind a reference so the
// delta engine's effects can be propagated. The zero-valued None reference
// resolves to nil with no error.
type DocumentResolver interface {
	Resolve(ctx context.Context, tenantID uuid.UUID, ref DocumentRef) (ReceivableDocument, error)
	// Persist writes back a document mutated by delta propagation
	Persist(ctx context.Context, tenantID uuid.UUID, doc ReceivableDocument) error
}
