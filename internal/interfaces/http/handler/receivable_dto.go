package handler

import (
	"time"

	"github.com/billing/backend/internal/domain/receivable"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InvoiceResponse represents an invoice in API responses
// @Description Invoice details returned by the API
type InvoiceResponse struct {
	ID             uuid.UUID       `json:"id" example:"550e8400-e29b-41d4-a716-446655440000"`
	InvoiceNumber  string          `json:"invoice_number" example:"INV-2026-0001"`
	CustomerID     uuid.UUID       `json:"customer_id"`
	Currency       string          `json:"currency" example:"USD"`
	Total          decimal.Decimal `json:"total"`
	AmountPaid     decimal.Decimal `json:"amount_paid"`
	AmountCredited decimal.Decimal `json:"amount_credited"`
	Status         string          `json:"status" example:"PENDING" enums:"PENDING,PARTIAL,PAID,VOID"`
	IssuedAt       time.Time       `json:"issued_at"`
	DueAt          *time.Time      `json:"due_at,omitempty"`
	PaidAt         *time.Time      `json:"paid_at,omitempty"`
	Notes          string          `json:"notes,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
	Version        int             `json:"version" example:"1"`
}

// ToInvoiceResponse converts a domain invoice to a response DTO
func ToInvoiceResponse(invoice *receivable.Invoice) InvoiceResponse {
	return InvoiceResponse{
		ID:             invoice.ID,
		InvoiceNumber:  invoice.InvoiceNumber,
		CustomerID:     invoice.CustomerID,
		Currency:       string(invoice.Currency),
		Total:          invoice.Total,
		AmountPaid:     invoice.AmountPaid,
		AmountCredited: invoice.AmountCredited,
		Status:         string(invoice.Status),
		IssuedAt:       invoice.IssuedAt,
		DueAt:          invoice.DueAt,
		PaidAt:         invoice.PaidAt,
		Notes:          invoice.Notes,
		CreatedAt:      invoice.CreatedAt,
		UpdatedAt:      invoice.UpdatedAt,
		Version:        invoice.Version,
	}
}

// ToInvoiceResponses converts a slice of domain invoices
func ToInvoiceResponses(invoices []receivable.Invoice) []InvoiceResponse {
	responses := make([]InvoiceResponse, len(invoices))
	for i := range invoices {
		responses[i] = ToInvoiceResponse(&invoices[i])
	}
	return responses
}

// CreditNoteResponse represents a credit note in API responses
// @Description Credit note details returned by the API
type CreditNoteResponse struct {
	ID            uuid.UUID       `json:"id" example:"550e8400-e29b-41d4-a716-446655440000"`
	NoteNumber    string          `json:"note_number" example:"CN-2026-0001"`
	CustomerID    uuid.UUID       `json:"customer_id"`
	InvoiceID     *uuid.UUID      `json:"invoice_id,omitempty"`
	Currency      string          `json:"currency" example:"USD"`
	Total         decimal.Decimal `json:"total"`
	AmountApplied decimal.Decimal `json:"amount_applied"`
	Status        string          `json:"status" example:"PENDING" enums:"PENDING,PARTIAL,PAID,VOID"`
	IssuedAt      time.Time       `json:"issued_at"`
	Reason        string          `json:"reason,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
	Version       int             `json:"version" example:"1"`
}

// ToCreditNoteResponse converts a domain credit note to a response DTO
func ToCreditNoteResponse(note *receivable.CreditNote) CreditNoteResponse {
	return CreditNoteResponse{
		ID:            note.ID,
		NoteNumber:    note.NoteNumber,
		CustomerID:    note.CustomerID,
		InvoiceID:     note.InvoiceID,
		Currency:      string(note.Currency),
		Total:         note.Total,
		AmountApplied: note.AmountApplied,
		Status:        string(note.Status),
		IssuedAt:      note.IssuedAt,
		Reason:        note.Reason,
		CreatedAt:     note.CreatedAt,
		UpdatedAt:     note.UpdatedAt,
		Version:       note.Version,
	}
}

// ToCreditNoteResponses converts a slice of domain credit notes
func ToCreditNoteResponses(notes []receivable.CreditNote) []CreditNoteResponse {
	responses := make([]CreditNoteResponse, len(notes))
	for i := range notes {
		responses[i] = ToCreditNoteResponse(&notes[i])
	}
	return responses
}

// EstimateResponse represents an estimate in API responses
// @Description Estimate details returned by the API
type EstimateResponse struct {
	ID             uuid.UUID       `json:"id" example:"550e8400-e29b-41d4-a716-446655440000"`
	EstimateNumber string          `json:"estimate_number" example:"EST-2026-0001"`
	CustomerID     uuid.UUID       `json:"customer_id"`
	Currency       string          `json:"currency" example:"USD"`
	Total          decimal.Decimal `json:"total"`
	AmountPaid     decimal.Decimal `json:"amount_paid"`
	Status         string          `json:"status" example:"PENDING" enums:"PENDING,PARTIAL,PAID,VOID"`
	IssuedAt       time.Time       `json:"issued_at"`
	ExpiresAt      *time.Time      `json:"expires_at,omitempty"`
	ConvertedTo    *uuid.UUID      `json:"converted_to,omitempty"`
	Notes          string          `json:"notes,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
	Version        int             `json:"version" example:"1"`
}

// ToEstimateResponse converts a domain estimate to a response DTO
func ToEstimateResponse(estimate *receivable.Estimate) EstimateResponse {
	return EstimateResponse{
		ID:             estimate.ID,
		EstimateNumber: estimate.EstimateNumber,
		CustomerID:     estimate.CustomerID,
		Currency:       string(estimate.Currency),
		Total:          estimate.Total,
		AmountPaid:     estimate.AmountPaid,
		Status:         string(estimate.Status),
		IssuedAt:       estimate.IssuedAt,
		ExpiresAt:      estimate.ExpiresAt,
		ConvertedTo:    estimate.ConvertedTo,
		Notes:          estimate.Notes,
		CreatedAt:      estimate.CreatedAt,
		UpdatedAt:      estimate.UpdatedAt,
		Version:        estimate.Version,
	}
}

// ToEstimateResponses converts a slice of domain estimates
func ToEstimateResponses(estimates []receivable.Estimate) []EstimateResponse {
	responses := make([]EstimateResponse, len(estimates))
	for i := range estimates {
		responses[i] = ToEstimateResponse(&estimates[i])
	}
	return responses
}
