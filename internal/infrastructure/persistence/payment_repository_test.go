package persistence

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/billhub/backend/internal/domain/billing"
	"github.com/billhub/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockPaymentRepository(t *testing.T) (*GormPaymentRepository, sqlmock.Sqlmock, *sql.DB) {
	gormDB, mock, mockDB := newMockDB(t)
	return NewGormPaymentRepository(gormDB), mock, mockDB
}

func newTestPayment(t *testing.T, tenantID, invoiceID uuid.UUID) *billing.Payment {
	t.Helper()
	payment, err := billing.NewPayment(tenantID, invoiceID, decimal.NewFromInt(100),
		time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC), billing.PaymentMethodCard, "", "")
	require.NoError(t, err)
	return payment
}

// expectInvoiceLock matches the FOR UPDATE read that serializes payment
// writes against the owning invoice row
func expectInvoiceLock(mock sqlmock.Sqlmock, tenantID, invoiceID uuid.UUID, status string, total decimal.Decimal) {
	rows := sqlmock.NewRows([]string{"id", "tenant_id", "status", "total_amount"}).
		AddRow(invoiceID, tenantID, status, total)
	mock.ExpectQuery(`SELECT \* FROM "invoices" WHERE tenant_id = \$1 AND id = \$2 .* FOR UPDATE`).
		WithArgs(tenantID, invoiceID, 1).
		WillReturnRows(rows)
}

func expectPaidSum(mock sqlmock.Sqlmock, tenantID, invoiceID uuid.UUID, sum string) {
	mock.ExpectQuery(`SELECT COALESCE\(SUM\(amount\), 0\) FROM "payments" WHERE tenant_id = \$1 AND invoice_id = \$2`).
		WithArgs(tenantID, invoiceID).
		WillReturnRows(sqlmock.NewRows([]string{"coalesce"}).AddRow(sum))
}

func TestGormPaymentRepository_SaveAndReconcile(t *testing.T) {
	t.Run("partial payment keeps the invoice pending", func(t *testing.T) {
		repo, mock, mockDB := newMockPaymentRepository(t)
		defer mockDB.Close()

		tenantID := uuid.New()
		invoiceID := uuid.New()
		payment := newTestPayment(t, tenantID, invoiceID)

		mock.ExpectBegin()
		expectInvoiceLock(mock, tenantID, invoiceID, "Pending", decimal.NewFromInt(300))
		expectPaidSum(mock, tenantID, invoiceID, "0")
		mock.ExpectExec(`INSERT INTO "payments"`).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(`UPDATE "invoices" SET`).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		status, err := repo.SaveAndReconcile(context.Background(), payment)

		assert.NoError(t, err)
		assert.Equal(t, billing.InvoiceStatusPending, status)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("payment covering the balance settles the invoice", func(t *testing.T) {
		repo, mock, mockDB := newMockPaymentRepository(t)
		defer mockDB.Close()

		tenantID := uuid.New()
		invoiceID := uuid.New()
		payment := newTestPayment(t, tenantID, invoiceID)

		mock.ExpectBegin()
		expectInvoiceLock(mock, tenantID, invoiceID, "Pending", decimal.NewFromInt(300))
		expectPaidSum(mock, tenantID, invoiceID, "200")
		mock.ExpectExec(`INSERT INTO "payments"`).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(`UPDATE "invoices" SET`).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		status, err := repo.SaveAndReconcile(context.Background(), payment)

		assert.NoError(t, err)
		assert.Equal(t, billing.InvoiceStatusPaid, status)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("overpayment is rejected under the row lock", func(t *testing.T) {
		repo, mock, mockDB := newMockPaymentRepository(t)
		defer mockDB.Close()

		tenantID := uuid.New()
		invoiceID := uuid.New()
		payment := newTestPayment(t, tenantID, invoiceID)

		// A concurrent recording already brought the paid sum to 250;
		// another 100 against a 300 total must fail even though the
		// caller's unlocked read looked fine
		mock.ExpectBegin()
		expectInvoiceLock(mock, tenantID, invoiceID, "Pending", decimal.NewFromInt(300))
		expectPaidSum(mock, tenantID, invoiceID, "250")
		mock.ExpectRollback()

		status, err := repo.SaveAndReconcile(context.Background(), payment)

		assert.Error(t, err)
		assert.Empty(t, status)
		var domainErr *shared.DomainError
		assert.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "BUSINESS_RULE", domainErr.Code)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("cancelled invoice rejects the payment", func(t *testing.T) {
		repo, mock, mockDB := newMockPaymentRepository(t)
		defer mockDB.Close()

		tenantID := uuid.New()
		invoiceID := uuid.New()
		payment := newTestPayment(t, tenantID, invoiceID)

		mock.ExpectBegin()
		expectInvoiceLock(mock, tenantID, invoiceID, "Cancelled", decimal.NewFromInt(300))
		mock.ExpectRollback()

		_, err := repo.SaveAndReconcile(context.Background(), payment)

		var domainErr *shared.DomainError
		assert.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_STATE", domainErr.Code)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rolls back when the invoice row is missing", func(t *testing.T) {
		repo, mock, mockDB := newMockPaymentRepository(t)
		defer mockDB.Close()

		tenantID := uuid.New()
		invoiceID := uuid.New()
		payment := newTestPayment(t, tenantID, invoiceID)

		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT \* FROM "invoices" WHERE tenant_id = \$1 AND id = \$2 .* FOR UPDATE`).
			WithArgs(tenantID, invoiceID, 1).
			WillReturnRows(sqlmock.NewRows([]string{"id"}))
		mock.ExpectRollback()

		_, err := repo.SaveAndReconcile(context.Background(), payment)

		assert.Equal(t, shared.ErrNotFound, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormPaymentRepository_DeleteAndReconcile(t *testing.T) {
	t.Run("deletes payment and reverts the invoice to pending", func(t *testing.T) {
		repo, mock, mockDB := newMockPaymentRepository(t)
		defer mockDB.Close()

		tenantID := uuid.New()
		invoiceID := uuid.New()
		payment := newTestPayment(t, tenantID, invoiceID)

		mock.ExpectBegin()
		expectInvoiceLock(mock, tenantID, invoiceID, "Paid", decimal.NewFromInt(300))
		mock.ExpectExec(`DELETE FROM "payments" WHERE tenant_id = \$1 AND id = \$2`).
			WithArgs(tenantID, payment.ID).
			WillReturnResult(sqlmock.NewResult(0, 1))
		expectPaidSum(mock, tenantID, invoiceID, "200")
		mock.ExpectExec(`UPDATE "invoices" SET`).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		status, err := repo.DeleteAndReconcile(context.Background(), payment)

		assert.NoError(t, err)
		assert.Equal(t, billing.InvoiceStatusPending, status)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rolls back when the payment row is missing", func(t *testing.T) {
		repo, mock, mockDB := newMockPaymentRepository(t)
		defer mockDB.Close()

		tenantID := uuid.New()
		invoiceID := uuid.New()
		payment := newTestPayment(t, tenantID, invoiceID)

		mock.ExpectBegin()
		expectInvoiceLock(mock, tenantID, invoiceID, "Paid", decimal.NewFromInt(300))
		mock.ExpectExec(`DELETE FROM "payments" WHERE tenant_id = \$1 AND id = \$2`).
			WithArgs(tenantID, payment.ID).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectRollback()

		_, err := repo.DeleteAndReconcile(context.Background(), payment)

		assert.Equal(t, shared.ErrNotFound, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormPaymentRepository_FindByInvoiceForTenant(t *testing.T) {
	t.Run("lists payments oldest first", func(t *testing.T) {
		repo, mock, mockDB := newMockPaymentRepository(t)
		defer mockDB.Close()

		tenantID := uuid.New()
		invoiceID := uuid.New()
		now := time.Now()

		rows := sqlmock.NewRows([]string{"id", "created_at", "updated_at", "invoice_id", "tenant_id", "amount", "date", "method", "reference", "notes"}).
			AddRow(uuid.New(), now, now, invoiceID, tenantID, decimal.NewFromInt(100), now, "Card", "", "").
			AddRow(uuid.New(), now, now, invoiceID, tenantID, decimal.NewFromInt(50), now, "Cash", "", "")

		mock.ExpectQuery(`SELECT \* FROM "payments" WHERE tenant_id = \$1 AND invoice_id = \$2 ORDER BY date ASC, created_at ASC`).
			WithArgs(tenantID, invoiceID).
			WillReturnRows(rows)

		payments, err := repo.FindByInvoiceForTenant(context.Background(), tenantID, invoiceID)

		assert.NoError(t, err)
		assert.Len(t, payments, 2)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
