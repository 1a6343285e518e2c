package receivable

import (
	"context"
	"errors"

	"github.com/billing/backend/internal/domain/partner"
	"github.com/billing/backend/internal/domain/receivable"
	"github.com/billing/backend/internal/domain/shared"
	"github.com/billing/backend/internal/domain/shared/valueobject"
	"github.com/billing/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
)

// InvoiceService issues and manages invoices. Settlement never happens here;
// money lands on invoices only through the transaction pipeline.
type InvoiceService struct {
	invoiceRepo  receivable.InvoiceRepository
	customerRepo partner.CustomerRepository
	eventBus     shared.EventBus

	defaultCurrency valueobject.Currency
}

// NewInvoiceService creates a new InvoiceService
func NewInvoiceService(
	invoiceRepo receivable.InvoiceRepository,
	customerRepo partner.CustomerRepository,
	eventBus shared.EventBus,
	defaultCurrency valueobject.Currency,
) *InvoiceService {
	if defaultCurrency == "" {
		defaultCurrency = valueobject.DefaultCurrency
	}
	return &InvoiceService{
		invoiceRepo:     invoiceRepo,
		customerRepo:    customerRepo,
		eventBus:        eventBus,
		defaultCurrency: defaultCurrency,
	}
}

// Create issues an invoice in the customer's effective currency
func (s *InvoiceService) Create(ctx context.Context, tenantID uuid.UUID, req CreateInvoiceRequest) (*receivable.Invoice, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "invoice", "create")
	defer span.End()
	telemetry.SetAttribute(span, telemetry.SpanAttrCustomerID, req.CustomerID.String())

	currency, err := resolveDocumentCurrency(ctx, s.customerRepo, tenantID, req.CustomerID, valueobject.Currency(req.Currency), s.defaultCurrency)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	existing, err := s.invoiceRepo.FindByNumber(ctx, tenantID, req.InvoiceNumber)
	if err != nil && !errors.Is(err, shared.ErrNotFound) {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if existing != nil {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "Invoice with this number already exists")
	}

	total, err := valueobject.NewMoney(req.Total, currency)
	if err != nil {
		return nil, shared.NewDomainError("INVALID_CURRENCY", err.Error())
	}

	invoice, err := receivable.NewInvoice(tenantID, req.InvoiceNumber, req.CustomerID, total, req.IssuedAt, req.DueAt)
	if err != nil {
		return nil, err
	}

	if err := s.invoiceRepo.Save(ctx, invoice); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	publishDocumentEvents(ctx, s.eventBus, invoice)
	return invoice, nil
}

// Get loads an invoice
func (s *InvoiceService) Get(ctx context.Context, tenantID, invoiceID uuid.UUID) (*receivable.Invoice, error) {
	invoice, err := s.invoiceRepo.FindByIDForTenant(ctx, tenantID, invoiceID)
	if err != nil {
		return nil, err
	}
	if invoice == nil {
		return nil, shared.ErrNotFound
	}
	return invoice, nil
}

// List returns invoices matching the filter
func (s *InvoiceService) List(ctx context.Context, tenantID uuid.UUID, filter DocumentListFilter) ([]receivable.Invoice, int64, error) {
	domainFilter := toDocumentFilter(filter)
	items, err := s.invoiceRepo.FindAllForTenant(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.invoiceRepo.CountForTenant(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// Void cancels an invoice that has nothing applied to it
func (s *InvoiceService) Void(ctx context.Context, tenantID, invoiceID uuid.UUID) (*receivable.Invoice, error) {
	invoice, err := s.Get(ctx, tenantID, invoiceID)
	if err != nil {
		return nil, err
	}
	if err := invoice.Void(); err != nil {
		return nil, err
	}
	if err := s.invoiceRepo.Save(ctx, invoice); err != nil {
		return nil, err
	}
	return invoice, nil
}

// toDocumentFilter applies list defaults and maps to the domain filter
func toDocumentFilter(filter DocumentListFilter) receivable.DocumentFilter {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}
	if filter.OrderBy == "" {
		filter.OrderBy = "issued_at"
	}
	if filter.OrderDir == "" {
		filter.OrderDir = "desc"
	}

	domainFilter := receivable.DocumentFilter{
		Filter: shared.Filter{
			Page:     filter.Page,
			PageSize: filter.PageSize,
			OrderBy:  filter.OrderBy,
			OrderDir: filter.OrderDir,
		},
		CustomerID: filter.CustomerID,
	}
	if filter.Status != "" {
		status := receivable.DocumentStatus(filter.Status)
		domainFilter.Status = &status
	}
	return domainFilter
}

// resolveDocumentCurrency walks the request -> customer -> tenant default chain
func resolveDocumentCurrency(ctx context.Context, customerRepo partner.CustomerRepository, tenantID, customerID uuid.UUID, requested, tenantDefault valueobject.Currency) (valueobject.Currency, error) {
	customer, err := customerRepo.FindByIDForTenant(ctx, tenantID, customerID)
	if err != nil {
		return "", err
	}
	if customer == nil {
		return "", shared.NewDomainError("CUSTOMER_NOT_FOUND", "Customer not found")
	}

	if requested != "" {
		if !requested.IsValid() {
			return "", shared.NewDomainError("INVALID_CURRENCY", "Currency is not valid")
		}
		if customer.Currency != "" && customer.Currency != requested {
			return "", shared.ErrCurrencyMismatch
		}
		return requested, nil
	}
	return customer.EffectiveCurrency(tenantDefault), nil
}

func publishDocumentEvents(ctx context.Context, bus shared.EventBus, aggregate interface {
	GetDomainEvents() []shared.DomainEvent
	ClearDomainEvents()
}) {
	if bus == nil {
		return
	}
	for _, event := range aggregate.GetDomainEvents() {
		_ = bus.Publish(ctx, event)
	}
	aggregate.ClearDomainEvents()
}
