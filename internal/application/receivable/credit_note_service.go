package receivable

import (
	"context"

	"github.com/billing/backend/internal/domain/partner"
	"github.com/billing/backend/internal/domain/receivable"
	"github.com/billing/backend/internal/domain/shared"
	"github.com/billing/backend/internal/domain/shared/valueobject"
	"github.com/billing/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
)

// CreditNoteService issues and manages credit notes
type CreditNoteService struct {
	creditNoteRepo receivable.CreditNoteRepository
	invoiceRepo    receivable.InvoiceRepository
	customerRepo   partner.CustomerRepository
	eventBus       shared.EventBus

	defaultCurrency valueobject.Currency
}

// NewCreditNoteService creates a new CreditNoteService
func NewCreditNoteService(
	creditNoteRepo receivable.CreditNoteRepository,
	invoiceRepo receivable.InvoiceRepository,
	customerRepo partner.CustomerRepository,
	eventBus shared.EventBus,
	defaultCurrency valueobject.Currency,
) *CreditNoteService {
	if defaultCurrency == "" {
		defaultCurrency = valueobject.DefaultCurrency
	}
	return &CreditNoteService{
		creditNoteRepo:  creditNoteRepo,
		invoiceRepo:     invoiceRepo,
		customerRepo:    customerRepo,
		eventBus:        eventBus,
		defaultCurrency: defaultCurrency,
	}
}

// Create issues a credit note, optionally linked to the invoice the credit
// originated from. A linked invoice must belong to the same customer and
// carry the same currency.
func (s *CreditNoteService) Create(ctx context.Context, tenantID uuid.UUID, req CreateCreditNoteRequest) (*receivable.CreditNote, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "credit_note", "create")
	defer span.End()
	telemetry.SetAttribute(span, telemetry.SpanAttrCustomerID, req.CustomerID.String())

	currency, err := resolveDocumentCurrency(ctx, s.customerRepo, tenantID, req.CustomerID, valueobject.Currency(req.Currency), s.defaultCurrency)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	if req.InvoiceID != nil {
		invoice, err := s.invoiceRepo.FindByIDForTenant(ctx, tenantID, *req.InvoiceID)
		if err != nil {
			telemetry.RecordError(span, err)
			return nil, err
		}
		if invoice == nil {
			return nil, shared.NewDomainError("INVOICE_NOT_FOUND", "Origin invoice not found")
		}
		if invoice.CustomerID != req.CustomerID {
			return nil, shared.NewDomainError("INVALID_INVOICE", "Origin invoice belongs to a different customer")
		}
		if invoice.Currency != currency {
			return nil, shared.ErrCurrencyMismatch
		}
	}

	total, err := valueobject.NewMoney(req.Total, currency)
	if err != nil {
		return nil, shared.NewDomainError("INVALID_CURRENCY", err.Error())
	}

	note, err := receivable.NewCreditNote(tenantID, req.NoteNumber, req.CustomerID, total, req.IssuedAt, req.InvoiceID)
	if err != nil {
		return nil, err
	}
	note.Reason = req.Reason

	if err := s.creditNoteRepo.Save(ctx, note); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	publishDocumentEvents(ctx, s.eventBus, note)
	return note, nil
}

// Get loads a credit note
func (s *CreditNoteService) Get(ctx context.Context, tenantID, noteID uuid.UUID) (*receivable.CreditNote, error) {
	note, err := s.creditNoteRepo.FindByIDForTenant(ctx, tenantID, noteID)
	if err != nil {
		return nil, err
	}
	if note == nil {
		return nil, shared.ErrNotFound
	}
	return note, nil
}

// List returns credit notes matching the filter
func (s *CreditNoteService) List(ctx context.Context, tenantID uuid.UUID, filter DocumentListFilter) ([]receivable.CreditNote, error) {
	return s.creditNoteRepo.FindAllForTenant(ctx, tenantID, toDocumentFilter(filter))
}

// Void cancels a credit note that has no consumption yet
func (s *CreditNoteService) Void(ctx context.Context, tenantID, noteID uuid.UUID) (*receivable.CreditNote, error) {
	note, err := s.Get(ctx, tenantID, noteID)
	if err != nil {
		return nil, err
	}
	if err := note.Void(); err != nil {
		return nil, err
	}
	if err := s.creditNoteRepo.Save(ctx, note); err != nil {
		return nil, err
	}
	return note, nil
}
