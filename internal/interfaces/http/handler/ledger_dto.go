package handler

import (
	"time"

	"github.com/billing/backend/internal/domain/ledger"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransactionResponse represents a ledger entry in API responses
// @Description Ledger transaction details returned by the API
type TransactionResponse struct {
	ID                  uuid.UUID       `json:"id" example:"550e8400-e29b-41d4-a716-446655440000"`
	Date                time.Time       `json:"date"`
	Type                string          `json:"type" example:"PAYMENT" enums:"CHARGE,PAYMENT,REFUND,ADJUSTMENT,DOCUMENT_ADJUSTMENT"`
	Status              string          `json:"status" example:"SUCCEEDED" enums:"PENDING,SUCCEEDED,FAILED"`
	Method              string          `json:"method" example:"card"`
	Currency            string          `json:"currency" example:"USD"`
	Amount              decimal.Decimal `json:"amount"`
	Notes               string          `json:"notes,omitempty"`
	GatewayID           string          `json:"gateway_id,omitempty"`
	DocumentKind        string          `json:"document_kind" example:"INVOICE" enums:"NONE,INVOICE,CREDIT_NOTE,ESTIMATE"`
	DocumentID          *uuid.UUID      `json:"document_id,omitempty"`
	ParentTransactionID *uuid.UUID      `json:"parent_transaction_id,omitempty"`
	PaymentID           *uuid.UUID      `json:"payment_id,omitempty"`
	CustomerID          *uuid.UUID      `json:"customer_id,omitempty"`
	CreatedAt           time.Time       `json:"created_at"`
	UpdatedAt           time.Time       `json:"updated_at"`
	Version             int             `json:"version" example:"1"`
}

// ToTransactionResponse converts a domain transaction to a response DTO
func ToTransactionResponse(tx *ledger.Transaction) TransactionResponse {
	resp := TransactionResponse{
		ID:                  tx.ID,
		Date:                tx.Date,
		Type:                string(tx.Type),
		Status:              string(tx.Status),
		Method:              string(tx.Method),
		Currency:            string(tx.Currency),
		Amount:              tx.Amount,
		Notes:               tx.Notes,
		GatewayID:           tx.GatewayID,
		DocumentKind:        string(tx.Document.Kind()),
		ParentTransactionID: tx.ParentTransactionID,
		PaymentID:           tx.PaymentID,
		CustomerID:          tx.CustomerID,
		CreatedAt:           tx.CreatedAt,
		UpdatedAt:           tx.UpdatedAt,
		Version:             tx.Version,
	}
	if !tx.Document.IsNone() {
		docID := tx.Document.ID()
		resp.DocumentID = &docID
	}
	return resp
}

// ToTransactionResponses converts a slice of domain transactions
func ToTransactionResponses(txs []ledger.Transaction) []TransactionResponse {
	responses := make([]TransactionResponse, len(txs))
	for i := range txs {
		responses[i] = ToTransactionResponse(&txs[i])
	}
	return responses
}

// ToTransactionTreeResponse converts a refund tree, preserving traversal order
func ToTransactionTreeResponse(txs []*ledger.Transaction) []TransactionResponse {
	responses := make([]TransactionResponse, len(txs))
	for i, tx := range txs {
		responses[i] = ToTransactionResponse(tx)
	}
	return responses
}

// PaymentResponse represents a payment in API responses
// @Description Payment details returned by the API
type PaymentResponse struct {
	ID         uuid.UUID       `json:"id" example:"550e8400-e29b-41d4-a716-446655440000"`
	CustomerID *uuid.UUID      `json:"customer_id,omitempty"`
	Amount     decimal.Decimal `json:"amount"`
	Balance    decimal.Decimal `json:"balance"`
	Currency   string          `json:"currency" example:"USD"`
	Applied    bool            `json:"applied" example:"false"`
	Voided     bool            `json:"voided" example:"false"`
	Date       time.Time       `json:"date"`
	Method     string          `json:"method" example:"card"`
	Source     string          `json:"source,omitempty"`
	Notes      string          `json:"notes,omitempty"`
	VoidedAt   *time.Time      `json:"voided_at,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
	Version    int             `json:"version" example:"1"`
}

// ToPaymentResponse converts a domain payment to a response DTO
func ToPaymentResponse(payment *ledger.Payment) PaymentResponse {
	return PaymentResponse{
		ID:         payment.ID,
		CustomerID: payment.CustomerID,
		Amount:     payment.Amount,
		Balance:    payment.Balance,
		Currency:   string(payment.Currency),
		Applied:    payment.Applied,
		Voided:     payment.Voided,
		Date:       payment.Date,
		Method:     string(payment.Method),
		Source:     payment.Source,
		Notes:      payment.Notes,
		VoidedAt:   payment.VoidedAt,
		CreatedAt:  payment.CreatedAt,
		UpdatedAt:  payment.UpdatedAt,
		Version:    payment.Version,
	}
}

// ToPaymentResponses converts a slice of domain payments
func ToPaymentResponses(payments []ledger.Payment) []PaymentResponse {
	responses := make([]PaymentResponse, len(payments))
	for i := range payments {
		responses[i] = ToPaymentResponse(&payments[i])
	}
	return responses
}

// MatchSuggestionResponse represents an advisory match suggestion
// @Description Suggested split of a payment across open documents
type MatchSuggestionResponse struct {
	ID           uuid.UUID       `json:"id"`
	PaymentID    uuid.UUID       `json:"payment_id"`
	DocumentKind string          `json:"document_kind" example:"INVOICE" enums:"INVOICE,CREDIT_NOTE,ESTIMATE"`
	DocumentID   uuid.UUID       `json:"document_id"`
	Amount       decimal.Decimal `json:"amount"`
}

// ToMatchSuggestionResponses converts domain match suggestions
func ToMatchSuggestionResponses(suggestions []ledger.MatchSuggestion) []MatchSuggestionResponse {
	responses := make([]MatchSuggestionResponse, len(suggestions))
	for i := range suggestions {
		s := &suggestions[i]
		responses[i] = MatchSuggestionResponse{
			ID:           s.ID,
			PaymentID:    s.PaymentID,
			DocumentKind: string(s.Document.Kind()),
			DocumentID:   s.Document.ID(),
			Amount:       s.Amount,
		}
	}
	return responses
}

// CreditSnapshotResponse represents one point in a store-credit timeline
// @Description Store-credit balance snapshot after one transaction
type CreditSnapshotResponse struct {
	TransactionID uuid.UUID       `json:"transaction_id"`
	Currency      string          `json:"currency" example:"USD"`
	Timestamp     time.Time       `json:"timestamp"`
	Delta         decimal.Decimal `json:"delta"`
	Balance       decimal.Decimal `json:"balance"`
}

// ToCreditSnapshotResponses converts domain credit snapshots
func ToCreditSnapshotResponses(snapshots []ledger.CreditSnapshot) []CreditSnapshotResponse {
	responses := make([]CreditSnapshotResponse, len(snapshots))
	for i := range snapshots {
		s := &snapshots[i]
		responses[i] = CreditSnapshotResponse{
			TransactionID: s.TransactionID,
			Currency:      string(s.Currency),
			Timestamp:     s.Timestamp,
			Delta:         s.Delta,
			Balance:       s.Balance,
		}
	}
	return responses
}
