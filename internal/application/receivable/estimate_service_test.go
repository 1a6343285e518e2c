package receivable

import (
	"context"
	"testing"
	"time"

	"github.com/billing/backend/internal/domain/receivable"
	"github.com/billing/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newEstimateService() (*EstimateService, *MockEstimateRepository, *MockInvoiceRepository, *MockCustomerRepository) {
	estimateRepo := new(MockEstimateRepository)
	invoiceRepo := new(MockInvoiceRepository)
	customerRepo := new(MockCustomerRepository)
	svc := NewEstimateService(estimateRepo, invoiceRepo, customerRepo, passthroughTxManager{}, nil, valueobject.USD)
	return svc, estimateRepo, invoiceRepo, customerRepo
}

func TestEstimateService_Create(t *testing.T) {
	tenantID := uuid.New()
	ctx := context.Background()
	svc, estimateRepo, _, customerRepo := newEstimateService()
	customer := newEURCustomer(t, tenantID)

	customerRepo.On("FindByIDForTenant", mock.Anything, tenantID, customer.ID).Return(customer, nil)
	estimateRepo.On("Save", mock.Anything, mock.AnythingOfType("*receivable.Estimate")).Return(nil)

	estimate, err := svc.Create(ctx, tenantID, CreateEstimateRequest{
		EstimateNumber: "EST-1",
		CustomerID:     customer.ID,
		Total:          decimal.RequireFromString("500.00"),
		Notes:          "spring project",
	})
	require.NoError(t, err)
	assert.Equal(t, valueobject.EUR, estimate.Currency)
	assert.Equal(t, receivable.DocumentStatusPending, estimate.Status)
}

func TestEstimateService_Convert(t *testing.T) {
	tenantID := uuid.New()
	customerID := uuid.New()
	ctx := context.Background()

	t.Run("deposits carry over to the invoice", func(t *testing.T) {
		svc, estimateRepo, invoiceRepo, _ := newEstimateService()

		estimate, err := receivable.NewEstimate(tenantID, "EST-1", customerID,
			valueobject.MustNewMoney(decimal.RequireFromString("500.00"), valueobject.USD), time.Now(), nil)
		require.NoError(t, err)
		require.NoError(t, estimate.ApplyPayment(valueobject.MustNewMoney(decimal.RequireFromString("200.00"), valueobject.USD)))
		estimate.UpdateStatus()

		estimateRepo.On("FindByIDForTenant", mock.Anything, tenantID, estimate.ID).Return(estimate, nil)
		invoiceRepo.On("Save", mock.Anything, mock.AnythingOfType("*receivable.Invoice")).Return(nil)
		estimateRepo.On("Save", mock.Anything, estimate).Return(nil)

		invoice, err := svc.Convert(ctx, tenantID, estimate.ID, "INV-42", nil)
		require.NoError(t, err)

		assert.True(t, invoice.Total.Equal(decimal.RequireFromString("500.00")))
		assert.True(t, invoice.AmountPaid.Equal(decimal.RequireFromString("200.00")))
		assert.Equal(t, receivable.DocumentStatusPartial, invoice.Status)
		require.NotNil(t, estimate.ConvertedTo)
		assert.Equal(t, invoice.ID, *estimate.ConvertedTo)
	})

	t.Run("converting twice fails", func(t *testing.T) {
		svc, estimateRepo, invoiceRepo, _ := newEstimateService()

		estimate, err := receivable.NewEstimate(tenantID, "EST-2", customerID,
			valueobject.MustNewMoney(decimal.RequireFromString("100.00"), valueobject.USD), time.Now(), nil)
		require.NoError(t, err)
		require.NoError(t, estimate.MarkConverted(uuid.New()))

		estimateRepo.On("FindByIDForTenant", mock.Anything, tenantID, estimate.ID).Return(estimate, nil)

		_, err = svc.Convert(ctx, tenantID, estimate.ID, "INV-43", nil)
		require.Error(t, err)
		invoiceRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("expired estimates cannot convert", func(t *testing.T) {
		svc, estimateRepo, invoiceRepo, _ := newEstimateService()

		expired := time.Now().Add(-time.Hour)
		estimate, err := receivable.NewEstimate(tenantID, "EST-3", customerID,
			valueobject.MustNewMoney(decimal.RequireFromString("100.00"), valueobject.USD), time.Now().Add(-48*time.Hour), &expired)
		require.NoError(t, err)

		estimateRepo.On("FindByIDForTenant", mock.Anything, tenantID, estimate.ID).Return(estimate, nil)

		_, err = svc.Convert(ctx, tenantID, estimate.ID, "INV-44", nil)
		require.Error(t, err)
		invoiceRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})
}
