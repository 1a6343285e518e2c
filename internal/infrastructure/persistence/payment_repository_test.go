package persistence

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/billing/backend/internal/domain/ledger"
	"github.com/billing/backend/internal/domain/shared"
	"github.com/billing/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newMockPaymentRepository(t *testing.T) (*GormPaymentRepository, sqlmock.Sqlmock, *sql.DB) {
	gormDB, mock, mockDB := newMockDB(t)
	return NewGormPaymentRepository(gormDB), mock, mockDB
}

func paymentColumns() []string {
	return []string{
		"id", "tenant_id", "version", "customer_id", "amount", "balance",
		"currency", "applied", "voided", "date", "method",
	}
}

func TestGormPaymentRepository_FindByIDForTenant(t *testing.T) {
	t.Run("finds payment within tenant", func(t *testing.T) {
		repo, mock, mockDB := newMockPaymentRepository(t)
		defer mockDB.Close()

		paymentID := uuid.New()
		tenantID := uuid.New()
		customerID := uuid.New()

		rows := sqlmock.NewRows(paymentColumns()).
			AddRow(paymentID, tenantID, 1, customerID, decimal.NewFromInt(100),
				decimal.NewFromInt(40), "USD", false, false, time.Now(), "card")

		mock.ExpectQuery(`SELECT \* FROM "payments" WHERE tenant_id = \$1 AND id = \$2 .* LIMIT .*`).
			WithArgs(tenantID, paymentID, 1).
			WillReturnRows(rows)

		payment, err := repo.FindByIDForTenant(context.Background(), tenantID, paymentID)

		require.NoError(t, err)
		assert.Equal(t, paymentID, payment.ID)
		assert.True(t, payment.Balance.Equal(decimal.NewFromInt(40)))
		assert.False(t, payment.Applied)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns ErrNotFound for missing payment", func(t *testing.T) {
		repo, mock, mockDB := newMockPaymentRepository(t)
		defer mockDB.Close()

		paymentID := uuid.New()
		tenantID := uuid.New()

		mock.ExpectQuery(`SELECT \* FROM "payments" WHERE tenant_id = \$1 AND id = \$2 .* LIMIT .*`).
			WithArgs(tenantID, paymentID, 1).
			WillReturnError(gorm.ErrRecordNotFound)

		payment, err := repo.FindByIDForTenant(context.Background(), tenantID, paymentID)

		assert.Nil(t, payment)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestGormPaymentRepository_FindUnapplied(t *testing.T) {
	repo, mock, mockDB := newMockPaymentRepository(t)
	defer mockDB.Close()

	tenantID := uuid.New()
	customerID := uuid.New()

	rows := sqlmock.NewRows(paymentColumns()).
		AddRow(uuid.New(), tenantID, 1, customerID, decimal.NewFromInt(100),
			decimal.NewFromInt(100), "USD", false, false, time.Now().Add(-48*time.Hour), "card").
		AddRow(uuid.New(), tenantID, 1, customerID, decimal.NewFromInt(50),
			decimal.NewFromInt(20), "USD", false, false, time.Now(), "card")

	mock.ExpectQuery(`SELECT \* FROM "payments" WHERE tenant_id = \$1 AND customer_id = \$2 AND voided = \$3 AND balance > 0 ORDER BY date ASC, created_at ASC`).
		WithArgs(tenantID, customerID, false).
		WillReturnRows(rows)

	payments, err := repo.FindUnapplied(context.Background(), tenantID, customerID)

	require.NoError(t, err)
	assert.Len(t, payments, 2)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormPaymentRepository_SaveWithLock(t *testing.T) {
	newVersionedPayment := func(t *testing.T) *ledger.Payment {
		t.Helper()
		amount := valueobject.MustNewMoney(decimal.NewFromInt(100), "USD")
		payment, err := ledger.NewPayment(uuid.New(), amount, "card", time.Now(), nil)
		require.NoError(t, err)
		payment.IncrementVersion()
		return payment
	}

	t.Run("updates when stored version matches", func(t *testing.T) {
		repo, mock, mockDB := newMockPaymentRepository(t)
		defer mockDB.Close()

		payment := newVersionedPayment(t)

		mock.ExpectExec(`UPDATE "payments" SET .* WHERE \(id = \$\d+ AND version = \$\d+\)`).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.SaveWithLock(context.Background(), payment)
		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rejects concurrent modification", func(t *testing.T) {
		repo, mock, mockDB := newMockPaymentRepository(t)
		defer mockDB.Close()

		payment := newVersionedPayment(t)

		mock.ExpectExec(`UPDATE "payments" SET .* WHERE \(id = \$\d+ AND version = \$\d+\)`).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.SaveWithLock(context.Background(), payment)
		require.Error(t, err)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "OPTIMISTIC_LOCK_ERROR", domainErr.Code)
	})
}
