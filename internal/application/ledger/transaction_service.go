package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/billing/backend/internal/domain/ledger"
	"github.com/billing/backend/internal/domain/shared"
	"github.com/billing/backend/internal/domain/shared/valueobject"
	"github.com/billing/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// TransactionService drives the ledger mutation pipeline. Every create,
// update and delete runs the same sequence inside one atomic unit: compute
// the mutation's effects, propagate the document delta, thread the store
// credit change through the customer's credit history, adjust the owning
// payment's balance, then persist. Any rejection along the way rolls the
// whole unit back.
type TransactionService struct {
	txRepo      ledger.TransactionRepository
	paymentRepo ledger.PaymentRepository
	creditRepo  ledger.CreditSnapshotRepository
	resolver    ledger.DocumentResolver
	txManager   shared.TransactionManager
	eventBus    shared.EventBus
	logger      *zap.Logger
}

// NewTransactionService creates a new TransactionService
func NewTransactionService(
	txRepo ledger.TransactionRepository,
	paymentRepo ledger.PaymentRepository,
	creditRepo ledger.CreditSnapshotRepository,
	resolver ledger.DocumentResolver,
	txManager shared.TransactionManager,
	eventBus shared.EventBus,
	logger *zap.Logger,
) *TransactionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TransactionService{
		txRepo:      txRepo,
		paymentRepo: paymentRepo,
		creditRepo:  creditRepo,
		resolver:    resolver,
		txManager:   txManager,
		eventBus:    eventBus,
		logger:      logger,
	}
}

// CreateTransactionRequest carries the fields for a new ledger entry
type CreateTransactionRequest struct {
	Type         ledger.TransactionType
	Status       ledger.TransactionStatus
	Method       ledger.PaymentMethod
	Amount       decimal.Decimal
	Currency     valueobject.Currency
	Date         time.Time
	DocumentKind ledger.DocumentKind
	DocumentID   uuid.UUID
	CustomerID   *uuid.UUID
	PaymentID    *uuid.UUID
	ParentID     *uuid.UUID
	Notes        string
	GatewayID    string
}

// UpdateTransactionRequest is a partial update; nil fields stay unchanged
type UpdateTransactionRequest struct {
	Status    *ledger.TransactionStatus
	Notes     *string
	Amount    *decimal.Decimal
	Date      *time.Time
	GatewayID *string
}

// Create records a new ledger entry and applies its side effects atomically
func (s *TransactionService) Create(ctx context.Context, tenantID uuid.UUID, req CreateTransactionRequest) (*ledger.Transaction, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "transaction", "create")
	defer span.End()

	tx, err := s.buildTransaction(tenantID, req)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	telemetry.SetAttributes(span,
		telemetry.SpanAttrTransactionID, tx.ID.String(),
		telemetry.SpanAttrAmount, tx.Amount.String(),
	)

	err = s.txManager.Do(ctx, func(ctx context.Context) error {
		return s.mutate(ctx, tenantID, nil, tx)
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	s.publishEvents(ctx, tx)
	return tx, nil
}

// Update patches an existing entry and applies the resulting delta atomically
func (s *TransactionService) Update(ctx context.Context, tenantID, id uuid.UUID, req UpdateTransactionRequest) (*ledger.Transaction, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "transaction", "update")
	defer span.End()
	telemetry.SetAttribute(span, telemetry.SpanAttrTransactionID, id.String())

	var updated *ledger.Transaction
	err := s.txManager.Do(ctx, func(ctx context.Context) error {
		oldTx, err := s.txRepo.FindByIDForTenant(ctx, tenantID, id)
		if err != nil {
			return err
		}
		if oldTx == nil {
			return shared.ErrNotFound
		}

		newTx := oldTx.Clone()
		if err := newTx.Apply(ledger.TransactionPatch{
			Status:    req.Status,
			Notes:     req.Notes,
			Amount:    req.Amount,
			Date:      req.Date,
			GatewayID: req.GatewayID,
		}); err != nil {
			return err
		}

		if err := s.mutate(ctx, tenantID, oldTx, newTx); err != nil {
			return err
		}
		newTx.AddDomainEvent(ledger.NewTransactionUpdatedEvent(oldTx, newTx))
		updated = newTx
		return nil
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	s.publishEvents(ctx, updated)
	return updated, nil
}

// Delete removes an entry and its whole settlement subtree, reversing the
// settled effects atomically. Children unwind before their parent so no
// refund or retry ever survives the charge it hangs off.
func (s *TransactionService) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	ctx, span := telemetry.StartServiceSpan(ctx, "transaction", "delete")
	defer span.End()
	telemetry.SetAttribute(span, telemetry.SpanAttrTransactionID, id.String())

	var deleted []*ledger.Transaction
	err := s.txManager.Do(ctx, func(ctx context.Context) error {
		rows, err := s.txRepo.FindTree(ctx, tenantID, id)
		if err != nil {
			return err
		}
		if len(rows) == 0 {
			return shared.ErrNotFound
		}

		txs := make([]*ledger.Transaction, len(rows))
		for i := range rows {
			txs[i] = &rows[i]
		}
		arena, err := ledger.NewTransactionArena(txs)
		if err != nil {
			return err
		}
		subtree := arena.Descendants(id)
		if len(subtree) == 0 {
			return shared.ErrNotFound
		}

		// Descendants is depth-first with parents before children, so
		// reversing it unwinds every child before its parent.
		for i := len(subtree) - 1; i >= 0; i-- {
			if err := s.mutate(ctx, tenantID, subtree[i], nil); err != nil {
				return err
			}
		}
		for _, tx := range subtree {
			tx.ClearDomainEvents()
			tx.AddDomainEvent(ledger.NewTransactionDeletedEvent(tx))
		}
		deleted = subtree
		return nil
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return err
	}

	for _, tx := range deleted {
		s.publishEvents(ctx, tx)
	}
	return nil
}

// Get loads a single ledger entry
func (s *TransactionService) Get(ctx context.Context, tenantID, id uuid.UUID) (*ledger.Transaction, error) {
	tx, err := s.txRepo.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if tx == nil {
		return nil, shared.ErrNotFound
	}
	return tx, nil
}

// List returns ledger entries matching the filter
func (s *TransactionService) List(ctx context.Context, tenantID uuid.UUID, filter ledger.TransactionFilter) ([]ledger.Transaction, int64, error) {
	items, err := s.txRepo.FindAllForTenant(ctx, tenantID, filter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.txRepo.CountForTenant(ctx, tenantID, filter)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// GetTree loads a settlement tree rooted at the given entry, in depth-first
// order.
func (s *TransactionService) GetTree(ctx context.Context, tenantID, rootID uuid.UUID) ([]*ledger.Transaction, error) {
	rows, err := s.txRepo.FindTree(ctx, tenantID, rootID)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, shared.ErrNotFound
	}

	txs := make([]*ledger.Transaction, len(rows))
	for i := range rows {
		txs[i] = &rows[i]
	}
	arena, err := ledger.NewTransactionArena(txs)
	if err != nil {
		return nil, err
	}
	return arena.Descendants(rootID), nil
}

// buildTransaction assembles the aggregate from the request
func (s *TransactionService) buildTransaction(tenantID uuid.UUID, req CreateTransactionRequest) (*ledger.Transaction, error) {
	currency := req.Currency
	if currency == "" {
		currency = valueobject.DefaultCurrency
	}
	amount, err := valueobject.NewMoney(req.Amount, currency)
	if err != nil {
		return nil, shared.NewDomainError("INVALID_CURRENCY", err.Error())
	}

	doc := ledger.NoDocument()
	if req.DocumentKind != "" && req.DocumentKind != ledger.DocumentKindNone {
		doc, err = ledger.NewDocumentRef(req.DocumentKind, req.DocumentID)
		if err != nil {
			return nil, err
		}
	}

	tx, err := ledger.NewTransaction(tenantID, req.Type, req.Status, req.Method, amount, req.Date, doc)
	if err != nil {
		return nil, err
	}
	if req.CustomerID != nil {
		tx.WithCustomer(*req.CustomerID)
	}
	if req.PaymentID != nil {
		tx.WithPayment(*req.PaymentID)
	}
	if req.ParentID != nil {
		tx.WithParent(*req.ParentID)
	}
	if req.Notes != "" {
		tx.WithNotes(req.Notes)
	}
	if req.GatewayID != "" {
		tx.WithGatewayID(req.GatewayID)
	}
	return tx, nil
}

// mutate runs the shared pipeline for one mutation. Must be called inside a
// transaction manager unit; oldTx nil means create, newTx nil means delete.
func (s *TransactionService) mutate(ctx context.Context, tenantID uuid.UUID, oldTx, newTx *ledger.Transaction) error {
	return s.mutateOwned(ctx, tenantID, oldTx, newTx, nil)
}

// mutateOwned is mutate with the owning payment already in hand. Callers that
// hold the payment across several mutations in one unit must pass it here:
// every balance consumption then lands on that one instance, keeping its
// version in lockstep with the stored row instead of forking from a stale
// re-read.
func (s *TransactionService) mutateOwned(ctx context.Context, tenantID uuid.UUID, oldTx, newTx *ledger.Transaction, owner *ledger.Payment) error {
	effects, err := ledger.Mutate(oldTx, newTx)
	if err != nil {
		return err
	}

	if err := s.propagateToDocument(ctx, tenantID, effects); err != nil {
		return err
	}
	if err := s.propagateToCreditHistory(ctx, tenantID, oldTx, newTx); err != nil {
		return err
	}
	if err := s.propagateToPayment(ctx, tenantID, oldTx, newTx, owner); err != nil {
		return err
	}

	switch {
	case newTx != nil:
		return s.txRepo.Save(ctx, newTx)
	default:
		return s.txRepo.DeleteForTenant(ctx, tenantID, oldTx.ID)
	}
}

// propagateToDocument applies the document delta and refreshes its status
func (s *TransactionService) propagateToDocument(ctx context.Context, tenantID uuid.UUID, effects *ledger.Effects) error {
	if effects.Document.IsNone() {
		return nil
	}

	doc, err := s.resolver.Resolve(ctx, tenantID, effects.Document)
	if err != nil {
		return err
	}
	if doc == nil {
		return ledger.NewDocumentError(effects.Document, "document not found")
	}
	if doc.DocumentCurrency() != effects.DocumentDelta.Currency() {
		return shared.ErrCurrencyMismatch
	}

	if effects.HasDocumentDelta() {
		if effects.Document.IsCreditNote() {
			err = doc.ApplyCredit(effects.DocumentDelta)
		} else {
			err = doc.ApplyPayment(effects.DocumentDelta)
		}
		if err != nil {
			return err
		}
	}
	if effects.RefreshStatus {
		doc.UpdateStatus()
	}
	return s.resolver.Persist(ctx, tenantID, doc)
}

// propagateToCreditHistory threads the store credit effect through the
// customer's timeline and rejects the mutation if any point dips negative.
func (s *TransactionService) propagateToCreditHistory(ctx context.Context, tenantID uuid.UUID, oldTx, newTx *ledger.Transaction) error {
	oldEffect := ledger.CreditEffect(oldTx)
	newEffect := ledger.CreditEffect(newTx)
	if oldEffect.IsZero() && newEffect.IsZero() {
		return nil
	}

	ref := newTx
	if ref == nil {
		ref = oldTx
	}
	if ref.CustomerID == nil {
		return shared.NewDomainError("CUSTOMER_REQUIRED", "Store credit movements require a customer")
	}
	customerID := *ref.CustomerID

	snapshots, err := s.creditRepo.FindByCustomer(ctx, tenantID, customerID, ref.Currency)
	if err != nil {
		return err
	}
	history := ledger.NewCreditHistory(tenantID, customerID, ref.Currency, snapshots)

	switch {
	case oldEffect.IsZero():
		err = history.AddTransaction(newTx.ID, newTx.Date, newEffect)
	case newEffect.IsZero():
		err = history.DeleteTransaction(oldTx.ID)
	default:
		err = history.ChangeTransaction(newTx.ID, newTx.Date, newEffect)
	}
	if err != nil {
		return err
	}

	if err := history.OverspendError(); err != nil {
		return err
	}

	// The snapshots are a recomputable projection of the ledger rows; once
	// the timeline validates, a failed write is logged and the mutation
	// proceeds.
	if err := s.creditRepo.ReplaceTimeline(ctx, tenantID, customerID, ref.Currency, history.Snapshots()); err != nil {
		s.logger.Warn("credit timeline write failed, keeping the mutation",
			zap.String("tenant_id", tenantID.String()),
			zap.String("customer_id", customerID.String()),
			zap.String("currency", string(ref.Currency)),
			zap.Error(err),
		)
	}
	return nil
}

// paymentConsumption is the settled cash amount an owned entry takes from
// its payment's unapplied balance. Store credit movements never touch it.
func paymentConsumption(tx *ledger.Transaction) decimal.Decimal {
	if tx == nil || !tx.IsSucceeded() || tx.UsesStoreCredit() {
		return decimal.Zero
	}
	return tx.Amount
}

// propagateToPayment adjusts the owning payment's unapplied balance. When the
// caller already holds the owning payment it is used directly; otherwise the
// payment is loaded fresh.
func (s *TransactionService) propagateToPayment(ctx context.Context, tenantID uuid.UUID, oldTx, newTx *ledger.Transaction, owner *ledger.Payment) error {
	ref := newTx
	if ref == nil {
		ref = oldTx
	}
	if ref.PaymentID == nil {
		return nil
	}

	delta := paymentConsumption(newTx).Sub(paymentConsumption(oldTx))
	if delta.IsZero() {
		return nil
	}

	payment := owner
	if payment == nil || payment.ID != *ref.PaymentID {
		var err error
		payment, err = s.paymentRepo.FindByIDForTenant(ctx, tenantID, *ref.PaymentID)
		if err != nil {
			return err
		}
	}
	if payment == nil {
		return shared.NewDomainError("PAYMENT_NOT_FOUND", "Owning payment not found")
	}
	if payment.Currency != ref.Currency {
		return shared.ErrCurrencyMismatch
	}

	if err := payment.Consume(valueobject.MustNewMoney(delta, payment.Currency)); err != nil {
		return fmt.Errorf("applying %s to payment %s: %w", delta, payment.ID, err)
	}
	return s.paymentRepo.SaveWithLock(ctx, payment)
}

// publishEvents flushes the aggregate's pending events after commit
func (s *TransactionService) publishEvents(ctx context.Context, tx *ledger.Transaction) {
	if s.eventBus == nil || tx == nil {
		return
	}
	for _, event := range tx.GetDomainEvents() {
		_ = s.eventBus.Publish(ctx, event)
	}
	tx.ClearDomainEvents()
}
