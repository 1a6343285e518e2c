package ledger

import (
	"context"
	"time"

	"github.com/billing/backend/internal/domain/ledger"
	"github.com/billing/backend/internal/domain/partner"
	"github.com/billing/backend/internal/domain/shared"
	"github.com/billing/backend/internal/domain/shared/valueobject"
	"github.com/billing/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreditBalanceService exposes the store-credit ledger: balance lookups at a
// point in time and manual grants or deductions, both expressed as ordinary
// ledger entries so they flow through the same overspend checks.
type CreditBalanceService struct {
	creditRepo   ledger.CreditSnapshotRepository
	customerRepo partner.CustomerRepository
	txService    *TransactionService

	defaultCurrency valueobject.Currency
}

// NewCreditBalanceService creates a new CreditBalanceService
func NewCreditBalanceService(
	creditRepo ledger.CreditSnapshotRepository,
	customerRepo partner.CustomerRepository,
	txService *TransactionService,
	defaultCurrency valueobject.Currency,
) *CreditBalanceService {
	if defaultCurrency == "" {
		defaultCurrency = valueobject.DefaultCurrency
	}
	return &CreditBalanceService{
		creditRepo:      creditRepo,
		customerRepo:    customerRepo,
		txService:       txService,
		defaultCurrency: defaultCurrency,
	}
}

// BalanceResult is a point-in-time store-credit balance
type BalanceResult struct {
	CustomerID uuid.UUID            `json:"customer_id"`
	Currency   valueobject.Currency `json:"currency"`
	Balance    decimal.Decimal      `json:"balance"`
	AsOf       time.Time            `json:"as_of"`
}

// Balance returns the customer's store-credit balance as of the given time.
// A zero asOf means now.
func (s *CreditBalanceService) Balance(ctx context.Context, tenantID, customerID uuid.UUID, currency valueobject.Currency, asOf time.Time) (*BalanceResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "credit", "balance")
	defer span.End()
	telemetry.SetAttribute(span, telemetry.SpanAttrCustomerID, customerID.String())

	resolved, err := s.resolveCurrency(ctx, tenantID, customerID, currency)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	snapshots, err := s.creditRepo.FindByCustomer(ctx, tenantID, customerID, resolved)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	history := ledger.NewCreditHistory(tenantID, customerID, resolved, snapshots)

	if asOf.IsZero() {
		asOf = time.Now()
	}
	balance := history.BalanceAt(asOf)

	return &BalanceResult{
		CustomerID: customerID,
		Currency:   resolved,
		Balance:    balance.Amount(),
		AsOf:       asOf,
	}, nil
}

// History returns the full snapshot timeline for a customer and currency
func (s *CreditBalanceService) History(ctx context.Context, tenantID, customerID uuid.UUID, currency valueobject.Currency) ([]ledger.CreditSnapshot, error) {
	resolved, err := s.resolveCurrency(ctx, tenantID, customerID, currency)
	if err != nil {
		return nil, err
	}
	return s.creditRepo.FindByCustomer(ctx, tenantID, customerID, resolved)
}

// Adjust grants (positive) or deducts (negative) store credit by recording a
// succeeded balance-method adjustment. Deductions that would overdraw the
// timeline are rejected by the pipeline's overspend check.
func (s *CreditBalanceService) Adjust(ctx context.Context, tenantID, customerID uuid.UUID, amount decimal.Decimal, currency valueobject.Currency, notes string) (*ledger.Transaction, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "credit", "adjust")
	defer span.End()
	telemetry.SetAttributes(span,
		telemetry.SpanAttrCustomerID, customerID.String(),
		telemetry.SpanAttrAmount, amount.String(),
	)

	resolved, err := s.resolveCurrency(ctx, tenantID, customerID, currency)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	tx, err := s.txService.Create(ctx, tenantID, CreateTransactionRequest{
		Type:       ledger.TransactionTypeAdjustment,
		Status:     ledger.TransactionStatusSucceeded,
		Method:     ledger.PaymentMethodBalance,
		Amount:     amount,
		Currency:   resolved,
		Date:       time.Now(),
		CustomerID: &customerID,
		Notes:      notes,
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	return tx, nil
}

// resolveCurrency applies the customer -> tenant default chain
func (s *CreditBalanceService) resolveCurrency(ctx context.Context, tenantID, customerID uuid.UUID, requested valueobject.Currency) (valueobject.Currency, error) {
	if requested != "" {
		if !requested.IsValid() {
			return "", shared.NewDomainError("INVALID_CURRENCY", "Currency is not valid")
		}
		return requested, nil
	}

	customer, err := s.customerRepo.FindByIDForTenant(ctx, tenantID, customerID)
	if err != nil {
		return "", err
	}
	if customer == nil {
		return "", shared.NewDomainError("CUSTOMER_NOT_FOUND", "Customer not found")
	}
	return customer.EffectiveCurrency(s.defaultCurrency), nil
}
