package receivable

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreateInvoiceRequest represents a request to issue an invoice
type CreateInvoiceRequest struct {
	InvoiceNumber string          `json:"invoice_number" binding:"required,max=50"`
	CustomerID    uuid.UUID       `json:"customer_id" binding:"required"`
	Total         decimal.Decimal `json:"total" binding:"required"`
	Currency      string          `json:"currency" binding:"omitempty,len=3"`
	IssuedAt      time.Time       `json:"issued_at"`
	DueAt         *time.Time      `json:"due_at"`
}

// CreateCreditNoteRequest represents a request to issue a credit note
type CreateCreditNoteRequest struct {
	NoteNumber string          `json:"note_number" binding:"required,max=50"`
	CustomerID uuid.UUID       `json:"customer_id" binding:"required"`
	InvoiceID  *uuid.UUID      `json:"invoice_id"`
	Total      decimal.Decimal `json:"total" binding:"required"`
	Currency   string          `json:"currency" binding:"omitempty,len=3"`
	IssuedAt   time.Time       `json:"issued_at"`
	Reason     string          `json:"reason"`
}

// CreateEstimateRequest represents a request to issue an estimate
type CreateEstimateRequest struct {
	EstimateNumber string          `json:"estimate_number" binding:"required,max=50"`
	CustomerID     uuid.UUID       `json:"customer_id" binding:"required"`
	Total          decimal.Decimal `json:"total" binding:"required"`
	Currency       string          `json:"currency" binding:"omitempty,len=3"`
	IssuedAt       time.Time       `json:"issued_at"`
	ExpiresAt      *time.Time      `json:"expires_at"`
	Notes          string          `json:"notes"`
}

// DocumentListFilter represents filtering options for document listings
type DocumentListFilter struct {
	Page       int        `form:"page"`
	PageSize   int        `form:"page_size"`
	OrderBy    string     `form:"order_by"`
	OrderDir   string     `form:"order_dir"`
	CustomerID *uuid.UUID `form:"customer_id"`
	Status     string     `form:"status"`
}
