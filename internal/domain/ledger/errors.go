package ledger

import (
	"errors"
	"fmt"
	"time"

	"github.com/billing/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ImmutableFieldError is returned when a caller attempts to change a field
// that is frozen after creation (transaction type, currency, a refund's
// amount, most fields of a settled charge).
type ImmutableFieldError struct {
	Field string
}

// Error implements the error interface
func (e *ImmutableFieldError) Error() string {
	return fmt.Sprintf("field %q cannot be changed after creation", e.Field)
}

// Code returns the stable error code for API mapping
func (e *ImmutableFieldError) Code() string {
	return "IMMUTABLE_FIELD"
}

// NewImmutableFieldError creates an ImmutableFieldError for the given field
func NewImmutableFieldError(field string) *ImmutableFieldError {
	return &ImmutableFieldError{Field: field}
}

// CreditOverspendError is returned when a store-credit mutation would drive
// the customer's balance negative at some point in the timeline. It carries
// the first offending balance and its timestamp so the caller can render a
// precise message. The triggering mutation is never persisted.
type CreditOverspendError struct {
	CustomerID uuid.UUID
	Currency   string
	Balance    decimal.Decimal
	Timestamp  time.Time
}

// Error implements the error interface
func (e *CreditOverspendError) Error() string {
	return fmt.Sprintf("credit balance would drop to %s %s at %s",
		e.Balance.StringFixed(2), e.Currency, e.Timestamp.Format(time.RFC3339))
}

// Code returns the stable error code for API mapping
func (e *CreditOverspendError) Code() string {
	return "CREDIT_OVERSPEND"
}

// AlreadyVoidedError is returned on a double void or any edit of a voided
// payment.
type AlreadyVoidedError struct {
	PaymentID uuid.UUID
}

// Error implements the error interface
func (e *AlreadyVoidedError) Error() string {
	return fmt.Sprintf("payment %s is already voided", e.PaymentID)
}

// Code returns the stable error code for API mapping
func (e *AlreadyVoidedError) Code() string {
	return "ALREADY_VOIDED"
}

// DocumentError is raised by a linked document when it rejects an applied
// delta (e.g. the delta would overpay the document). The ledger wraps it and
// surfaces it as a validation failure scoped to the triggering transaction.
type DocumentError struct {
	Document DocumentRef
	Reason   string
}

// Error implements the error interface
func (e *DocumentError) Error() string {
	return fmt.Sprintf("%s %s rejected delta: %s", e.Document.Kind(), e.Document.ID(), e.Reason)
}

// Code returns the stable error code for API mapping
func (e *DocumentError) Code() string {
	return "DOCUMENT_REJECTED"
}

// NewDocumentError creates a DocumentError for the given document
func NewDocumentError(doc DocumentRef, reason string) *DocumentError {
	return &DocumentError{Document: doc, Reason: reason}
}

// IsValidation reports whether err belongs to the user-correctable error
// class (as opposed to storage failures, which are not recoverable locally).
func IsValidation(err error) bool {
	var de *shared.DomainError
	var im *ImmutableFieldError
	var os *CreditOverspendError
	var av *AlreadyVoidedError
	var doc *DocumentError
	return errors.As(err, &de) || errors.As(err, &im) || errors.As(err, &os) ||
		errors.As(err, &av) || errors.As(err, &doc)
}
