package ledger

import (
	"github.com/billing/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Event types for payment aggregate
const (
	EventTypePaymentCreated       = "ledger.payment.created"
	EventTypePaymentAmountChanged = "ledger.payment.amount_changed"
	EventTypePaymentVoided        = "ledger.payment.voided"
)

// PaymentCreatedEvent is published when a payment is recorded
type PaymentCreatedEvent struct {
	shared.BaseDomainEvent
	Amount   decimal.Decimal `json:"amount"`
	Currency string          `json:"currency"`
	Method   PaymentMethod   `json:"method"`
}

// NewPaymentCreatedEvent creates a payment created event
func NewPaymentCreatedEvent(p *Payment) *PaymentCreatedEvent {
	return &PaymentCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePaymentCreated, "Payment", p.ID, p.TenantID),
		Amount:          p.Amount,
		Currency:        string(p.Currency),
		Method:          p.Method,
	}
}

// PaymentAmountChangedEvent is published when the received amount is edited
type PaymentAmountChangedEvent struct {
	shared.BaseDomainEvent
	OldAmount decimal.Decimal `json:"old_amount"`
	NewAmount decimal.Decimal `json:"new_amount"`
	Balance   decimal.Decimal `json:"balance"`
}

// NewPaymentAmountChangedEvent creates a payment amount changed event
func NewPaymentAmountChangedEvent(p *Payment, oldAmount decimal.Decimal) *PaymentAmountChangedEvent {
	return &PaymentAmountChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePaymentAmountChanged, "Payment", p.ID, p.TenantID),
		OldAmount:       oldAmount,
		NewAmount:       p.Amount,
		Balance:         p.Balance,
	}
}

// PaymentVoidedEvent is published after a payment is irreversibly voided
type PaymentVoidedEvent struct {
	shared.BaseDomainEvent
	Amount   decimal.Decimal `json:"amount"`
	Currency string          `json:"currency"`
}

// NewPaymentVoidedEvent creates a payment voided event
func NewPaymentVoidedEvent(p *Payment) *PaymentVoidedEvent {
	return &PaymentVoidedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePaymentVoided, "Payment", p.ID, p.TenantID),
		Amount:          p.Amount,
		Currency:        string(p.Currency),
	}
}
