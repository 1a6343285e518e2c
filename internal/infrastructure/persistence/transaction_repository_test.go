package persistence

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/billing/backend/internal/domain/ledger"
	"github.com/billing/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// newMockDB creates a GORM handle backed by a mocked SQL connection
func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock, *sql.DB) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	dialector := postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	return gormDB, mock, mockDB
}

func newMockTransactionRepository(t *testing.T) (*GormTransactionRepository, sqlmock.Sqlmock, *sql.DB) {
	gormDB, mock, mockDB := newMockDB(t)
	return NewGormTransactionRepository(gormDB), mock, mockDB
}

func transactionColumns() []string {
	return []string{
		"id", "tenant_id", "date", "type", "status", "method",
		"currency", "amount", "document_kind", "document_id",
		"parent_transaction_id", "payment_id", "customer_id",
	}
}

func TestGormTransactionRepository_FindByID(t *testing.T) {
	t.Run("finds existing transaction", func(t *testing.T) {
		repo, mock, mockDB := newMockTransactionRepository(t)
		defer mockDB.Close()

		txID := uuid.New()
		tenantID := uuid.New()

		rows := sqlmock.NewRows(transactionColumns()).
			AddRow(txID, tenantID, time.Now(), "PAYMENT", "SUCCEEDED", "card",
				"USD", decimal.NewFromInt(100), "NONE", nil, nil, nil, nil)

		mock.ExpectQuery(`SELECT \* FROM "transactions" WHERE id = \$1 .* LIMIT .*`).
			WithArgs(txID, 1).
			WillReturnRows(rows)

		tx, err := repo.FindByID(context.Background(), txID)

		assert.NoError(t, err)
		require.NotNil(t, tx)
		assert.Equal(t, txID, tx.ID)
		assert.Equal(t, ledger.TransactionTypePayment, tx.Type)
		assert.True(t, tx.Document.IsNone())
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns ErrNotFound for missing transaction", func(t *testing.T) {
		repo, mock, mockDB := newMockTransactionRepository(t)
		defer mockDB.Close()

		txID := uuid.New()

		mock.ExpectQuery(`SELECT \* FROM "transactions" WHERE id = \$1 .* LIMIT .*`).
			WithArgs(txID, 1).
			WillReturnError(gorm.ErrRecordNotFound)

		tx, err := repo.FindByID(context.Background(), txID)

		assert.Nil(t, tx)
		assert.ErrorIs(t, err, shared.ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormTransactionRepository_FindByIDForTenant(t *testing.T) {
	t.Run("rebuilds the document reference", func(t *testing.T) {
		repo, mock, mockDB := newMockTransactionRepository(t)
		defer mockDB.Close()

		txID := uuid.New()
		tenantID := uuid.New()
		invoiceID := uuid.New()

		rows := sqlmock.NewRows(transactionColumns()).
			AddRow(txID, tenantID, time.Now(), "CHARGE", "SUCCEEDED", "card",
				"USD", decimal.NewFromInt(50), "INVOICE", invoiceID, nil, nil, nil)

		mock.ExpectQuery(`SELECT \* FROM "transactions" WHERE tenant_id = \$1 AND id = \$2 .* LIMIT .*`).
			WithArgs(tenantID, txID, 1).
			WillReturnRows(rows)

		tx, err := repo.FindByIDForTenant(context.Background(), tenantID, txID)

		require.NoError(t, err)
		assert.True(t, tx.Document.IsInvoice())
		assert.Equal(t, invoiceID, tx.Document.ID())
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormTransactionRepository_FindByPayment(t *testing.T) {
	repo, mock, mockDB := newMockTransactionRepository(t)
	defer mockDB.Close()

	tenantID := uuid.New()
	paymentID := uuid.New()

	rows := sqlmock.NewRows(transactionColumns()).
		AddRow(uuid.New(), tenantID, time.Now(), "PAYMENT", "SUCCEEDED", "card",
			"USD", decimal.NewFromInt(30), "NONE", nil, nil, paymentID, nil).
		AddRow(uuid.New(), tenantID, time.Now(), "PAYMENT", "SUCCEEDED", "card",
			"USD", decimal.NewFromInt(70), "NONE", nil, nil, paymentID, nil)

	mock.ExpectQuery(`SELECT \* FROM "transactions" WHERE tenant_id = \$1 AND payment_id = \$2 ORDER BY date ASC, created_at ASC`).
		WithArgs(tenantID, paymentID).
		WillReturnRows(rows)

	transactions, err := repo.FindByPayment(context.Background(), tenantID, paymentID)

	require.NoError(t, err)
	assert.Len(t, transactions, 2)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormTransactionRepository_FindTree(t *testing.T) {
	t.Run("walks descendants level by level", func(t *testing.T) {
		repo, mock, mockDB := newMockTransactionRepository(t)
		defer mockDB.Close()

		tenantID := uuid.New()
		rootID := uuid.New()
		childID := uuid.New()

		rootRows := sqlmock.NewRows(transactionColumns()).
			AddRow(rootID, tenantID, time.Now(), "PAYMENT", "FAILED", "card",
				"USD", decimal.NewFromInt(100), "NONE", nil, nil, nil, nil)
		mock.ExpectQuery(`SELECT \* FROM "transactions" WHERE tenant_id = \$1 AND id = \$2 .* LIMIT .*`).
			WithArgs(tenantID, rootID, 1).
			WillReturnRows(rootRows)

		childRows := sqlmock.NewRows(transactionColumns()).
			AddRow(childID, tenantID, time.Now(), "PAYMENT", "SUCCEEDED", "card",
				"USD", decimal.NewFromInt(100), "NONE", nil, rootID, nil, nil)
		mock.ExpectQuery(`SELECT \* FROM "transactions" WHERE tenant_id = \$1 AND parent_transaction_id IN \(\$2\)`).
			WithArgs(tenantID, rootID).
			WillReturnRows(childRows)

		mock.ExpectQuery(`SELECT \* FROM "transactions" WHERE tenant_id = \$1 AND parent_transaction_id IN \(\$2\)`).
			WithArgs(tenantID, childID).
			WillReturnRows(sqlmock.NewRows(transactionColumns()))

		tree, err := repo.FindTree(context.Background(), tenantID, rootID)

		require.NoError(t, err)
		require.Len(t, tree, 2)
		assert.Equal(t, rootID, tree[0].ID)
		assert.Equal(t, childID, tree[1].ID)
		require.NotNil(t, tree[1].ParentTransactionID)
		assert.Equal(t, rootID, *tree[1].ParentTransactionID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing root fails", func(t *testing.T) {
		repo, mock, mockDB := newMockTransactionRepository(t)
		defer mockDB.Close()

		tenantID := uuid.New()
		rootID := uuid.New()

		mock.ExpectQuery(`SELECT \* FROM "transactions" WHERE tenant_id = \$1 AND id = \$2 .* LIMIT .*`).
			WithArgs(tenantID, rootID, 1).
			WillReturnError(gorm.ErrRecordNotFound)

		_, err := repo.FindTree(context.Background(), tenantID, rootID)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestGormTransactionRepository_DeleteForTenant(t *testing.T) {
	t.Run("deletes existing transaction", func(t *testing.T) {
		repo, mock, mockDB := newMockTransactionRepository(t)
		defer mockDB.Close()

		tenantID := uuid.New()
		txID := uuid.New()

		mock.ExpectExec(`DELETE FROM "transactions" WHERE tenant_id = \$1 AND id = \$2`).
			WithArgs(tenantID, txID).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.DeleteForTenant(context.Background(), tenantID, txID)
		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns ErrNotFound when nothing matches", func(t *testing.T) {
		repo, mock, mockDB := newMockTransactionRepository(t)
		defer mockDB.Close()

		tenantID := uuid.New()
		txID := uuid.New()

		mock.ExpectExec(`DELETE FROM "transactions" WHERE tenant_id = \$1 AND id = \$2`).
			WithArgs(tenantID, txID).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.DeleteForTenant(context.Background(), tenantID, txID)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestGormTransactionRepository_CountForTenant(t *testing.T) {
	repo, mock, mockDB := newMockTransactionRepository(t)
	defer mockDB.Close()

	tenantID := uuid.New()
	status := ledger.TransactionStatusSucceeded

	mock.ExpectQuery(`SELECT count\(\*\) FROM "transactions" WHERE tenant_id = \$1 AND status = \$2`).
		WithArgs(tenantID, status).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(7)))

	count, err := repo.CountForTenant(context.Background(), tenantID, ledger.TransactionFilter{Status: &status})

	require.NoError(t, err)
	assert.Equal(t, int64(7), count)
	assert.NoError(t, mock.ExpectationsWereMet())
}
