package ledger

import (
	"context"
	"fmt"

	"github.com/billing/backend/internal/domain/ledger"
	"github.com/billing/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// PaymentAmountChangedHandler handles PaymentAmountChangedEvent and purges
// the payment's pending match suggestions. Suggestions are computed against a
// specific received amount; once that amount moves, a stale split would
// overshoot or undershoot the new balance.
type PaymentAmountChangedHandler struct {
	matchRepo ledger.MatchSuggestionRepository
	logger    *zap.Logger
}

// NewPaymentAmountChangedHandler creates a new handler for payment amount changed events
func NewPaymentAmountChangedHandler(
	matchRepo ledger.MatchSuggestionRepository,
	logger *zap.Logger,
) *PaymentAmountChangedHandler {
	return &PaymentAmountChangedHandler{
		matchRepo: matchRepo,
		logger:    logger,
	}
}

// EventTypes returns the event types this handler is interested in
func (h *PaymentAmountChangedHandler) EventTypes() []string {
	return []string{ledger.EventTypePaymentAmountChanged}
}

// Handle processes a PaymentAmountChangedEvent by discarding stale suggestions
func (h *PaymentAmountChangedHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	changedEvent, ok := event.(*ledger.PaymentAmountChangedEvent)
	if !ok {
		h.logger.Error("unexpected event type",
			zap.String("expected", ledger.EventTypePaymentAmountChanged),
			zap.String("actual", event.EventType()),
		)
		return fmt.Errorf("unexpected event type: expected %s, got %s",
			ledger.EventTypePaymentAmountChanged, event.EventType())
	}

	paymentID := changedEvent.AggregateID()
	if err := h.matchRepo.DeleteByPayment(ctx, changedEvent.TenantID(), paymentID); err != nil {
		h.logger.Error("failed to purge match suggestions for repriced payment",
			zap.String("payment_id", paymentID.String()),
			zap.Error(err),
		)
		return fmt.Errorf("failed to purge match suggestions: %w", err)
	}

	h.logger.Info("match suggestions purged after payment amount change",
		zap.String("payment_id", paymentID.String()),
		zap.String("old_amount", changedEvent.OldAmount.String()),
		zap.String("new_amount", changedEvent.NewAmount.String()),
	)
	return nil
}

// Ensure PaymentAmountChangedHandler implements shared.EventHandler
var _ shared.EventHandler = (*PaymentAmountChangedHandler)(nil)
