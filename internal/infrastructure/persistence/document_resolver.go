package persistence

import (
	"context"

	"github.com/billing/backend/internal/domain/ledger"
	"github.com/billing/backend/internal/domain/receivable"
	"github.com/billing/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// RepositoryDocumentResolver implements ledger.DocumentResolver by
// dispatching on the reference kind to the matching document repository.
// Built on the repository interfaces, it joins whatever transaction the
// context carries.
type RepositoryDocumentResolver struct {
	invoiceRepo    receivable.InvoiceRepository
	creditNoteRepo receivable.CreditNoteRepository
	estimateRepo   receivable.EstimateRepository
}

// NewRepositoryDocumentResolver creates a new RepositoryDocumentResolver
func NewRepositoryDocumentResolver(
	invoiceRepo receivable.InvoiceRepository,
	creditNoteRepo receivable.CreditNoteRepository,
	estimateRepo receivable.EstimateRepository,
) *RepositoryDocumentResolver {
	return &RepositoryDocumentResolver{
		invoiceRepo:    invoiceRepo,
		creditNoteRepo: creditNoteRepo,
		estimateRepo:   estimateRepo,
	}
}

// Resolve loads the receivable document behind a reference. The none
// reference resolves to nil with no error.
func (r *RepositoryDocumentResolver) Resolve(ctx context.Context, tenantID uuid.UUID, ref ledger.DocumentRef) (ledger.ReceivableDocument, error) {
	switch ref.Kind() {
	case ledger.DocumentKindNone:
		return nil, nil
	case ledger.DocumentKindInvoice:
		invoice, err := r.invoiceRepo.FindByIDForTenant(ctx, tenantID, ref.ID())
		if err != nil {
			return nil, err
		}
		if invoice == nil {
			return nil, shared.ErrNotFound
		}
		return invoice, nil
	case ledger.DocumentKindCreditNote:
		note, err := r.creditNoteRepo.FindByIDForTenant(ctx, tenantID, ref.ID())
		if err != nil {
			return nil, err
		}
		if note == nil {
			return nil, shared.ErrNotFound
		}
		return note, nil
	case ledger.DocumentKindEstimate:
		estimate, err := r.estimateRepo.FindByIDForTenant(ctx, tenantID, ref.ID())
		if err != nil {
			return nil, err
		}
		if estimate == nil {
			return nil, shared.ErrNotFound
		}
		return estimate, nil
	default:
		return nil, shared.NewDomainError("INVALID_DOCUMENT_KIND", "Document kind is not valid")
	}
}

// Persist writes back a document mutated by delta propagation
func (r *RepositoryDocumentResolver) Persist(ctx context.Context, tenantID uuid.UUID, doc ledger.ReceivableDocument) error {
	switch d := doc.(type) {
	case *receivable.Invoice:
		return r.invoiceRepo.Save(ctx, d)
	case *receivable.CreditNote:
		return r.creditNoteRepo.Save(ctx, d)
	case *receivable.Estimate:
		return r.estimateRepo.Save(ctx, d)
	default:
		return shared.NewDomainError("INVALID_DOCUMENT_KIND", "Unknown receivable document type")
	}
}
