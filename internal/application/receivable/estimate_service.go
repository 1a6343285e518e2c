package receivable

import (
	"context"
	"fmt"
	"time"

	"github.com/billing/backend/internal/domain/partner"
	"github.com/billing/backend/internal/domain/receivable"
	"github.com/billing/backend/internal/domain/shared"
	"github.com/billing/backend/internal/domain/shared/valueobject"
	"github.com/billing/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
)

// EstimateService issues estimates and converts them into invoices
type EstimateService struct {
	estimateRepo receivable.EstimateRepository
	invoiceRepo  receivable.InvoiceRepository
	customerRepo partner.CustomerRepository
	txManager    shared.TransactionManager
	eventBus     shared.EventBus

	defaultCurrency valueobject.Currency
}

// NewEstimateService creates a new EstimateService
func NewEstimateService(
	estimateRepo receivable.EstimateRepository,
	invoiceRepo receivable.InvoiceRepository,
	customerRepo partner.CustomerRepository,
	txManager shared.TransactionManager,
	eventBus shared.EventBus,
	defaultCurrency valueobject.Currency,
) *EstimateService {
	if defaultCurrency == "" {
		defaultCurrency = valueobject.DefaultCurrency
	}
	return &EstimateService{
		estimateRepo:    estimateRepo,
		invoiceRepo:     invoiceRepo,
		customerRepo:    customerRepo,
		txManager:       txManager,
		eventBus:        eventBus,
		defaultCurrency: defaultCurrency,
	}
}

// Create issues an estimate
func (s *EstimateService) Create(ctx context.Context, tenantID uuid.UUID, req CreateEstimateRequest) (*receivable.Estimate, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "estimate", "create")
	defer span.End()
	telemetry.SetAttribute(span, telemetry.SpanAttrCustomerID, req.CustomerID.String())

	currency, err := resolveDocumentCurrency(ctx, s.customerRepo, tenantID, req.CustomerID, valueobject.Currency(req.Currency), s.defaultCurrency)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	total, err := valueobject.NewMoney(req.Total, currency)
	if err != nil {
		return nil, shared.NewDomainError("INVALID_CURRENCY", err.Error())
	}

	estimate, err := receivable.NewEstimate(tenantID, req.EstimateNumber, req.CustomerID, total, req.IssuedAt, req.ExpiresAt)
	if err != nil {
		return nil, err
	}
	estimate.Notes = req.Notes

	if err := s.estimateRepo.Save(ctx, estimate); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	return estimate, nil
}

// Get loads an estimate
func (s *EstimateService) Get(ctx context.Context, tenantID, estimateID uuid.UUID) (*receivable.Estimate, error) {
	estimate, err := s.estimateRepo.FindByIDForTenant(ctx, tenantID, estimateID)
	if err != nil {
		return nil, err
	}
	if estimate == nil {
		return nil, shared.ErrNotFound
	}
	return estimate, nil
}

// List returns estimates matching the filter
func (s *EstimateService) List(ctx context.Context, tenantID uuid.UUID, filter DocumentListFilter) ([]receivable.Estimate, error) {
	return s.estimateRepo.FindAllForTenant(ctx, tenantID, toDocumentFilter(filter))
}

// Convert turns an estimate into an invoice. Deposits already collected on
// the estimate carry over to the invoice as paid amount, so the customer is
// only billed for the remainder. Expired estimates cannot be converted.
func (s *EstimateService) Convert(ctx context.Context, tenantID, estimateID uuid.UUID, invoiceNumber string, dueAt *time.Time) (*receivable.Invoice, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "estimate", "convert")
	defer span.End()

	var invoice *receivable.Invoice
	err := s.txManager.Do(ctx, func(ctx context.Context) error {
		estimate, err := s.Get(ctx, tenantID, estimateID)
		if err != nil {
			return err
		}
		if estimate.IsExpired(time.Now()) {
			return shared.NewDomainError("ESTIMATE_EXPIRED", "Estimate has expired")
		}

		total := valueobject.MustNewMoney(estimate.Total, estimate.Currency)
		invoice, err = receivable.NewInvoice(tenantID, invoiceNumber, estimate.CustomerID, total, time.Now(), dueAt)
		if err != nil {
			return err
		}

		if !estimate.AmountPaid.IsZero() {
			deposit := valueobject.MustNewMoney(estimate.AmountPaid, estimate.Currency)
			if err := invoice.ApplyPayment(deposit); err != nil {
				return fmt.Errorf("carrying deposit to invoice: %w", err)
			}
			invoice.UpdateStatus()
		}

		if err := estimate.MarkConverted(invoice.ID); err != nil {
			return err
		}
		if err := s.invoiceRepo.Save(ctx, invoice); err != nil {
			return err
		}
		return s.estimateRepo.Save(ctx, estimate)
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	publishDocumentEvents(ctx, s.eventBus, invoice)
	return invoice, nil
}
