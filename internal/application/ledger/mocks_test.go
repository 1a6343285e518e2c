package ledger

import (
	"context"

	"github.com/billing/backend/internal/domain/ledger"
	"github.com/billing/backend/internal/domain/partner"
	"github.com/billing/backend/internal/domain/receivable"
	"github.com/billing/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// passthroughTxManager runs the unit directly; tests assert rollback by
// checking that the returned error prevented any post-commit behavior.
type passthroughTxManager struct{}

func (passthroughTxManager) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type MockTransactionRepository struct {
	mock.Mock
}

func (m *MockTransactionRepository) FindByID(ctx context.Context, id uuid.UUID) (*ledger.Transaction, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledger.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*ledger.Transaction, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledger.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter ledger.TransactionFilter) ([]ledger.Transaction, error) {
	args := m.Called(ctx, tenantID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]ledger.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) FindByDocument(ctx context.Context, tenantID uuid.UUID, doc ledger.DocumentRef) ([]ledger.Transaction, error) {
	args := m.Called(ctx, tenantID, doc)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]ledger.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) FindByPayment(ctx context.Context, tenantID, paymentID uuid.UUID) ([]ledger.Transaction, error) {
	args := m.Called(ctx, tenantID, paymentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]ledger.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) FindTree(ctx context.Context, tenantID, rootID uuid.UUID) ([]ledger.Transaction, error) {
	args := m.Called(ctx, tenantID, rootID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]ledger.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) Save(ctx context.Context, tx *ledger.Transaction) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

func (m *MockTransactionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockTransactionRepository) DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error {
	args := m.Called(ctx, tenantID, id)
	return args.Error(0)
}

func (m *MockTransactionRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter ledger.TransactionFilter) (int64, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).(int64), args.Error(1)
}

type MockPaymentRepository struct {
	mock.Mock
}

func (m *MockPaymentRepository) FindByID(ctx context.Context, id uuid.UUID) (*ledger.Payment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledger.Payment), args.Error(1)
}

func (m *MockPaymentRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*ledger.Payment, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledger.Payment), args.Error(1)
}

func (m *MockPaymentRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter ledger.PaymentFilter) ([]ledger.Payment, error) {
	args := m.Called(ctx, tenantID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]ledger.Payment), args.Error(1)
}

func (m *MockPaymentRepository) FindUnapplied(ctx context.Context, tenantID, customerID uuid.UUID) ([]ledger.Payment, error) {
	args := m.Called(ctx, tenantID, customerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]ledger.Payment), args.Error(1)
}

func (m *MockPaymentRepository) Save(ctx context.Context, payment *ledger.Payment) error {
	args := m.Called(ctx, payment)
	return args.Error(0)
}

func (m *MockPaymentRepository) SaveWithLock(ctx context.Context, payment *ledger.Payment) error {
	args := m.Called(ctx, payment)
	return args.Error(0)
}

func (m *MockPaymentRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter ledger.PaymentFilter) (int64, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).(int64), args.Error(1)
}

type MockCreditSnapshotRepository struct {
	mock.Mock
}

func (m *MockCreditSnapshotRepository) FindByCustomer(ctx context.Context, tenantID, customerID uuid.UUID, currency valueobject.Currency) ([]ledger.CreditSnapshot, error) {
	args := m.Called(ctx, tenantID, customerID, currency)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]ledger.CreditSnapshot), args.Error(1)
}

func (m *MockCreditSnapshotRepository) ReplaceTimeline(ctx context.Context, tenantID, customerID uuid.UUID, currency valueobject.Currency, snapshots []ledger.CreditSnapshot) error {
	args := m.Called(ctx, tenantID, customerID, currency, snapshots)
	return args.Error(0)
}

func (m *MockCreditSnapshotRepository) DeleteByTransaction(ctx context.Context, tenantID, txID uuid.UUID) error {
	args := m.Called(ctx, tenantID, txID)
	return args.Error(0)
}

type MockMatchSuggestionRepository struct {
	mock.Mock
}

func (m *MockMatchSuggestionRepository) FindByPayment(ctx context.Context, tenantID, paymentID uuid.UUID) ([]ledger.MatchSuggestion, error) {
	args := m.Called(ctx, tenantID, paymentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]ledger.MatchSuggestion), args.Error(1)
}

func (m *MockMatchSuggestionRepository) Save(ctx context.Context, suggestion *ledger.MatchSuggestion) error {
	args := m.Called(ctx, suggestion)
	return args.Error(0)
}

func (m *MockMatchSuggestionRepository) DeleteByPayment(ctx context.Context, tenantID, paymentID uuid.UUID) error {
	args := m.Called(ctx, tenantID, paymentID)
	return args.Error(0)
}

type MockDocumentResolver struct {
	mock.Mock
}

func (m *MockDocumentResolver) Resolve(ctx context.Context, tenantID uuid.UUID, ref ledger.DocumentRef) (ledger.ReceivableDocument, error) {
	args := m.Called(ctx, tenantID, ref)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(ledger.ReceivableDocument), args.Error(1)
}

func (m *MockDocumentResolver) Persist(ctx context.Context, tenantID uuid.UUID, doc ledger.ReceivableDocument) error {
	args := m.Called(ctx, tenantID, doc)
	return args.Error(0)
}

type MockCustomerRepository struct {
	mock.Mock
}

func (m *MockCustomerRepository) FindByID(ctx context.Context, id uuid.UUID) (*partner.Customer, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*partner.Customer), args.Error(1)
}

func (m *MockCustomerRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*partner.Customer, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*partner.Customer), args.Error(1)
}

func (m *MockCustomerRepository) FindByCode(ctx context.Context, tenantID uuid.UUID, code string) (*partner.Customer, error) {
	args := m.Called(ctx, tenantID, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*partner.Customer), args.Error(1)
}

func (m *MockCustomerRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter partner.CustomerFilter) ([]partner.Customer, error) {
	args := m.Called(ctx, tenantID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]partner.Customer), args.Error(1)
}

func (m *MockCustomerRepository) Save(ctx context.Context, customer *partner.Customer) error {
	args := m.Called(ctx, customer)
	return args.Error(0)
}

func (m *MockCustomerRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockCustomerRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter partner.CustomerFilter) (int64, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).(int64), args.Error(1)
}

type MockInvoiceRepository struct {
	mock.Mock
}

func (m *MockInvoiceRepository) FindByID(ctx context.Context, id uuid.UUID) (*receivable.Invoice, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*receivable.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*receivable.Invoice, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*receivable.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) FindByNumber(ctx context.Context, tenantID uuid.UUID, number string) (*receivable.Invoice, error) {
	args := m.Called(ctx, tenantID, number)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*receivable.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter receivable.DocumentFilter) ([]receivable.Invoice, error) {
	args := m.Called(ctx, tenantID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]receivable.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) FindOpenByCustomer(ctx context.Context, tenantID, customerID uuid.UUID) ([]receivable.Invoice, error) {
	args := m.Called(ctx, tenantID, customerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]receivable.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) Save(ctx context.Context, invoice *receivable.Invoice) error {
	args := m.Called(ctx, invoice)
	return args.Error(0)
}

func (m *MockInvoiceRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter receivable.DocumentFilter) (int64, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).(int64), args.Error(1)
}

type MockCreditNoteRepository struct {
	mock.Mock
}

func (m *MockCreditNoteRepository) FindByID(ctx context.Context, id uuid.UUID) (*receivable.CreditNote, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*receivable.CreditNote), args.Error(1)
}

func (m *MockCreditNoteRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*receivable.CreditNote, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*receivable.CreditNote), args.Error(1)
}

func (m *MockCreditNoteRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter receivable.DocumentFilter) ([]receivable.CreditNote, error) {
	args := m.Called(ctx, tenantID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]receivable.CreditNote), args.Error(1)
}

func (m *MockCreditNoteRepository) FindOpenByCustomer(ctx context.Context, tenantID, customerID uuid.UUID) ([]receivable.CreditNote, error) {
	args := m.Called(ctx, tenantID, customerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]receivable.CreditNote), args.Error(1)
}

func (m *MockCreditNoteRepository) Save(ctx context.Context, note *receivable.CreditNote) error {
	args := m.Called(ctx, note)
	return args.Error(0)
}
