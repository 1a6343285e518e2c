package ledger

import (
	"context"
	"time"

	"github.com/billing/backend/internal/domain/ledger"
	"github.com/billing/backend/internal/domain/partner"
	"github.com/billing/backend/internal/domain/receivable"
	"github.com/billing/backend/internal/domain/shared"
	"github.com/billing/backend/internal/domain/shared/valueobject"
	"github.com/billing/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentService manages payments and their application across documents.
// It reuses the transaction pipeline for every monetary movement so the
// document, credit and balance side effects always travel together.
type PaymentService struct {
	paymentRepo     ledger.PaymentRepository
	txRepo          ledger.TransactionRepository
	matchRepo       ledger.MatchSuggestionRepository
	creditRepo      ledger.CreditSnapshotRepository
	customerRepo    partner.CustomerRepository
	invoiceRepo     receivable.InvoiceRepository
	creditNoteRepo  receivable.CreditNoteRepository
	txService       *TransactionService
	txManager       shared.TransactionManager
	eventBus        shared.EventBus
	defaultCurrency valueobject.Currency
}

// NewPaymentService creates a new PaymentService
func NewPaymentService(
	paymentRepo ledger.PaymentRepository,
	txRepo ledger.TransactionRepository,
	matchRepo ledger.MatchSuggestionRepository,
	creditRepo ledger.CreditSnapshotRepository,
	customerRepo partner.CustomerRepository,
	invoiceRepo receivable.InvoiceRepository,
	creditNoteRepo receivable.CreditNoteRepository,
	txService *TransactionService,
	txManager shared.TransactionManager,
	eventBus shared.EventBus,
	defaultCurrency valueobject.Currency,
) *PaymentService {
	if defaultCurrency == "" {
		defaultCurrency = valueobject.DefaultCurrency
	}
	return &PaymentService{
		paymentRepo:     paymentRepo,
		txRepo:          txRepo,
		matchRepo:       matchRepo,
		creditRepo:      creditRepo,
		customerRepo:    customerRepo,
		invoiceRepo:     invoiceRepo,
		creditNoteRepo:  creditNoteRepo,
		txService:       txService,
		txManager:       txManager,
		eventBus:        eventBus,
		defaultCurrency: defaultCurrency,
	}
}

// CreatePaymentRequest carries the fields for recording a payment
type CreatePaymentRequest struct {
	CustomerID *uuid.UUID
	Amount     decimal.Decimal
	Currency   valueobject.Currency // optional, resolved from the customer when empty
	Method     ledger.PaymentMethod
	Date       time.Time
	Source     string
	Notes      string
	AutoApply  bool // split the amount across open documents immediately

	// Applications is a caller-supplied, priority-ordered plan applied
	// instead of the automatic split. Mutually exclusive with AutoApply.
	Applications ledger.ChargeApplicationList
}

// CreatePayment records a payment. The currency resolution chain is request
// currency, then the customer's pinned currency, then the tenant default.
// With AutoApply set, the amount is split across store credit debt, open
// credit notes and open invoices in that order, each slice recorded as an
// owned ledger entry inside the same atomic unit. A caller that already knows
// the split passes it as Applications; the plan is validated against the
// gross amount and recorded item by item in priority order.
func (s *PaymentService) CreatePayment(ctx context.Context, tenantID uuid.UUID, req CreatePaymentRequest) (*ledger.Payment, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "payment", "create")
	defer span.End()

	if req.AutoApply && len(req.Applications) > 0 {
		return nil, shared.NewDomainError("INVALID_APPLICATION",
			"AutoApply and an explicit application plan are mutually exclusive")
	}
	if len(req.Applications) > 0 && req.CustomerID == nil {
		return nil, shared.NewDomainError("CUSTOMER_REQUIRED",
			"Applying a payment requires a customer")
	}

	currency, customer, err := s.resolveCurrency(ctx, tenantID, req.CustomerID, req.Currency)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	amount, err := valueobject.NewMoney(req.Amount, currency)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, shared.NewDomainError("INVALID_CURRENCY", err.Error())
	}

	payment, err := ledger.NewPayment(tenantID, amount, req.Method, req.Date, req.CustomerID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	payment.WithSource(req.Source).WithNotes(req.Notes)

	telemetry.SetAttributes(span,
		telemetry.SpanAttrPaymentID, payment.ID.String(),
		telemetry.SpanAttrAmount, payment.Amount.String(),
	)

	err = s.txManager.Do(ctx, func(ctx context.Context) error {
		if err := s.paymentRepo.Save(ctx, payment); err != nil {
			return err
		}
		if len(req.Applications) > 0 {
			plan := append(ledger.ChargeApplicationList(nil), req.Applications...)
			plan.Sort()
			if err := plan.Validate(amount); err != nil {
				return err
			}
			return s.applyPlan(ctx, tenantID, payment, customer, plan)
		}
		if !req.AutoApply || customer == nil || amount.IsZero() {
			return nil
		}
		return s.autoApply(ctx, tenantID, payment, customer)
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	s.publishEvents(ctx, payment)
	return payment, nil
}

// autoApply builds and records the application plan for a fresh payment
func (s *PaymentService) autoApply(ctx context.Context, tenantID uuid.UUID, payment *ledger.Payment, customer *partner.Customer) error {
	plan, err := s.buildApplicationPlan(ctx, tenantID, payment, customer.ID)
	if err != nil {
		return err
	}
	if err := plan.Validate(payment.GetAmountMoney()); err != nil {
		return err
	}
	return s.applyPlan(ctx, tenantID, payment, customer, plan)
}

// applyPlan records each plan item as an owned ledger entry through the
// mutation pipeline, consuming the payment's balance as it goes.
func (s *PaymentService) applyPlan(ctx context.Context, tenantID uuid.UUID, payment *ledger.Payment, customer *partner.Customer, plan ledger.ChargeApplicationList) error {
	for _, item := range plan {
		req := CreateTransactionRequest{
			Type:       ledger.TransactionTypePayment,
			Status:     ledger.TransactionStatusSucceeded,
			Method:     payment.Method,
			Amount:     item.Amount,
			Currency:   payment.Currency,
			Date:       payment.Date,
			CustomerID: &customer.ID,
			PaymentID:  &payment.ID,
		}
		switch item.Target {
		case ledger.ApplicationTargetStoreCredit:
			// paying off negative store credit is an adjustment funded by
			// this payment
			req.Type = ledger.TransactionTypeAdjustment
			req.Method = ledger.PaymentMethodBalance
		case ledger.ApplicationTargetCreditNote:
			req.Type = ledger.TransactionTypeAdjustment
			req.DocumentKind = item.Document.Kind()
			req.DocumentID = item.Document.ID()
		default:
			req.DocumentKind = item.Document.Kind()
			req.DocumentID = item.Document.ID()
		}

		tx, err := s.txService.buildTransaction(tenantID, req)
		if err != nil {
			return err
		}
		if err := s.txService.mutateOwned(ctx, tenantID, nil, tx, payment); err != nil {
			return err
		}
	}
	return nil
}

// buildApplicationPlan collects the customer's open balances and splits the
// payment across them.
func (s *PaymentService) buildApplicationPlan(ctx context.Context, tenantID uuid.UUID, payment *ledger.Payment, customerID uuid.UUID) (ledger.ChargeApplicationList, error) {
	// store credit debt: a negative current balance is settled first
	snapshots, err := s.creditRepo.FindByCustomer(ctx, tenantID, customerID, payment.Currency)
	if err != nil {
		return nil, err
	}
	history := ledger.NewCreditHistory(tenantID, customerID, payment.Currency, snapshots)
	creditDebt := valueobject.Zero(payment.Currency)
	if history.CurrentBalance().IsNegative() {
		creditDebt = history.CurrentBalance().Abs()
	}

	notes, err := s.creditNoteRepo.FindOpenByCustomer(ctx, tenantID, customerID)
	if err != nil {
		return nil, err
	}
	var noteBalances []ledger.DocumentBalance
	for i := range notes {
		if notes[i].Currency != payment.Currency {
			continue
		}
		noteBalances = append(noteBalances, ledger.DocumentBalance{
			Document: ledger.CreditNoteRef(notes[i].ID),
			Open:     notes[i].Remaining().Amount(),
		})
	}

	invoices, err := s.invoiceRepo.FindOpenByCustomer(ctx, tenantID, customerID)
	if err != nil {
		return nil, err
	}
	var invoiceBalances []ledger.DocumentBalance
	for i := range invoices {
		if invoices[i].Currency != payment.Currency {
			continue
		}
		invoiceBalances = append(invoiceBalances, ledger.DocumentBalance{
			Document: ledger.InvoiceRef(invoices[i].ID),
			Open:     invoices[i].Outstanding().Amount(),
		})
	}

	return ledger.BuildChargeApplications(
		payment.GetAmountMoney(),
		creditDebt,
		noteBalances,
		invoiceBalances,
		nil,
	)
}

// SetAmount changes a payment's received amount
func (s *PaymentService) SetAmount(ctx context.Context, tenantID, paymentID uuid.UUID, amount decimal.Decimal) (*ledger.Payment, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "payment", "set_amount")
	defer span.End()
	telemetry.SetAttribute(span, telemetry.SpanAttrPaymentID, paymentID.String())

	var payment *ledger.Payment
	err := s.txManager.Do(ctx, func(ctx context.Context) error {
		var err error
		payment, err = s.getForTenant(ctx, tenantID, paymentID)
		if err != nil {
			return err
		}
		money, err := valueobject.NewMoney(amount, payment.Currency)
		if err != nil {
			return shared.NewDomainError("INVALID_CURRENCY", err.Error())
		}
		if err := payment.SetAmount(money, false); err != nil {
			return err
		}
		return s.paymentRepo.SaveWithLock(ctx, payment)
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	s.publishEvents(ctx, payment)
	return payment, nil
}

// Void irreversibly cancels a payment. All owned ledger entries are deleted
// through the mutation pipeline first, so their document and credit effects
// unwind while the payment is still mutable; match suggestions are
// discarded; then the payment itself is marked voided. One atomic unit.
func (s *PaymentService) Void(ctx context.Context, tenantID, paymentID uuid.UUID) (*ledger.Payment, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "payment", "void")
	defer span.End()
	telemetry.SetAttribute(span, telemetry.SpanAttrPaymentID, paymentID.String())

	var payment *ledger.Payment
	err := s.txManager.Do(ctx, func(ctx context.Context) error {
		var err error
		payment, err = s.getForTenant(ctx, tenantID, paymentID)
		if err != nil {
			return err
		}
		if payment.Voided {
			return &ledger.AlreadyVoidedError{PaymentID: payment.ID}
		}

		owned, err := s.txRepo.FindByPayment(ctx, tenantID, payment.ID)
		if err != nil {
			return err
		}
		// Each reversal consumes from this same payment instance, so the
		// final void below saves the version the reversals produced.
		for i := range owned {
			if err := s.txService.mutateOwned(ctx, tenantID, &owned[i], nil, payment); err != nil {
				return err
			}
		}

		if err := s.matchRepo.DeleteByPayment(ctx, tenantID, payment.ID); err != nil {
			return err
		}
		if err := payment.Void(); err != nil {
			return err
		}
		return s.paymentRepo.SaveWithLock(ctx, payment)
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	s.publishEvents(ctx, payment)
	return payment, nil
}

// Get loads a payment
func (s *PaymentService) Get(ctx context.Context, tenantID, paymentID uuid.UUID) (*ledger.Payment, error) {
	return s.getForTenant(ctx, tenantID, paymentID)
}

// List returns payments matching the filter
func (s *PaymentService) List(ctx context.Context, tenantID uuid.UUID, filter ledger.PaymentFilter) ([]ledger.Payment, int64, error) {
	items, err := s.paymentRepo.FindAllForTenant(ctx, tenantID, filter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.paymentRepo.CountForTenant(ctx, tenantID, filter)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// Breakdown returns the where-did-the-money-go projection for a payment
func (s *PaymentService) Breakdown(ctx context.Context, tenantID, paymentID uuid.UUID) (*ledger.PaymentBreakdown, error) {
	payment, err := s.getForTenant(ctx, tenantID, paymentID)
	if err != nil {
		return nil, err
	}
	rows, err := s.txRepo.FindByPayment(ctx, tenantID, payment.ID)
	if err != nil {
		return nil, err
	}
	owned := make([]*ledger.Transaction, len(rows))
	for i := range rows {
		owned[i] = &rows[i]
	}
	return payment.Breakdown(owned), nil
}

// Suggestions lists pending match suggestions for a payment
func (s *PaymentService) Suggestions(ctx context.Context, tenantID, paymentID uuid.UUID) ([]ledger.MatchSuggestion, error) {
	if _, err := s.getForTenant(ctx, tenantID, paymentID); err != nil {
		return nil, err
	}
	return s.matchRepo.FindByPayment(ctx, tenantID, paymentID)
}

// resolveCurrency walks the request -> customer -> tenant default chain
func (s *PaymentService) resolveCurrency(ctx context.Context, tenantID uuid.UUID, customerID *uuid.UUID, requested valueobject.Currency) (valueobject.Currency, *partner.Customer, error) {
	var customer *partner.Customer
	if customerID != nil {
		var err error
		customer, err = s.customerRepo.FindByIDForTenant(ctx, tenantID, *customerID)
		if err != nil {
			return "", nil, err
		}
		if customer == nil {
			return "", nil, shared.NewDomainError("CUSTOMER_NOT_FOUND", "Customer not found")
		}
	}

	if requested != "" {
		if !requested.IsValid() {
			return "", nil, shared.NewDomainError("INVALID_CURRENCY", "Currency is not valid")
		}
		if customer != nil && customer.Currency != "" && customer.Currency != requested {
			return "", nil, shared.ErrCurrencyMismatch
		}
		return requested, customer, nil
	}
	if customer != nil {
		return customer.EffectiveCurrency(s.defaultCurrency), customer, nil
	}
	return s.defaultCurrency, customer, nil
}

func (s *PaymentService) getForTenant(ctx context.Context, tenantID, paymentID uuid.UUID) (*ledger.Payment, error) {
	payment, err := s.paymentRepo.FindByIDForTenant(ctx, tenantID, paymentID)
	if err != nil {
		return nil, err
	}
	if payment == nil {
		return nil, shared.ErrNotFound
	}
	return payment, nil
}

func (s *PaymentService) publishEvents(ctx context.Context, payment *ledger.Payment) {
	if s.eventBus == nil || payment == nil {
		return
	}
	for _, event := range payment.GetDomainEvents() {
		_ = s.eventBus.Publish(ctx, event)
	}
	payment.ClearDomainEvents()
}
