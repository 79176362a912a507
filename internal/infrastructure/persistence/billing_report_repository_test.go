package persistence

import (
	"context"
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/billhub/backend/internal/domain/report"
	"github.com/billhub/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func newMockReportRepository(t *testing.T) (*GormBillingReportRepository, sqlmock.Sqlmock, *sql.DB) {
	gormDB, mock, mockDB := newMockDB(t)
	return NewGormBillingReportRepository(gormDB), mock, mockDB
}

func TestGormBillingReportRepository_RequiresTenant(t *testing.T) {
	repo, _, mockDB := newMockReportRepository(t)
	defer mockDB.Close()

	ctx := context.Background()
	filter := report.Filter{}

	_, err := repo.CustomerSummaries(ctx, filter)
	assertTenantRequired(t, err)

	_, err = repo.InvoiceSummary(ctx, filter)
	assertTenantRequired(t, err)

	_, err = repo.PaymentsPerPeriod(ctx, filter)
	assertTenantRequired(t, err)

	_, err = repo.PaymentRows(ctx, filter)
	assertTenantRequired(t, err)

	_, err = repo.Dashboard(ctx, filter)
	assertTenantRequired(t, err)
}

func assertTenantRequired(t *testing.T, err error) {
	t.Helper()
	assert.Error(t, err)
	var domainErr *shared.DomainError
	assert.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "INVALID_INPUT", domainErr.Code)
}

func TestGormBillingReportRepository_InvoiceSummary(t *testing.T) {
	t.Run("scans the status partition", func(t *testing.T) {
		repo, mock, mockDB := newMockReportRepository(t)
		defer mockDB.Close()

		tenantID := uuid.New()

		rows := sqlmock.NewRows([]string{
			"paid_count", "paid_total",
			"pending_count", "pending_total",
			"overdue_count", "overdue_total",
			"invoice_count", "invoiced_total",
		}).AddRow(2, decimal.NewFromInt(500), 3, decimal.NewFromInt(700), 1, decimal.NewFromInt(200), 6, decimal.NewFromInt(1400))

		mock.ExpectQuery(`FROM "invoices" WHERE tenant_id = \$1 AND status <> \$2`).
			WithArgs(tenantID, "Cancelled").
			WillReturnRows(rows)

		summary, err := repo.InvoiceSummary(context.Background(), report.Filter{TenantID: tenantID})

		assert.NoError(t, err)
		assert.Equal(t, int64(2), summary.PaidCount)
		assert.Equal(t, int64(1), summary.OverdueCount)
		assert.True(t, summary.InvoicedTotal.Equal(decimal.NewFromInt(1400)))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormBillingReportRepository_CustomerSummaries(t *testing.T) {
	t.Run("derives outstanding from invoiced minus paid", func(t *testing.T) {
		repo, mock, mockDB := newMockReportRepository(t)
		defer mockDB.Close()

		tenantID := uuid.New()
		customerID := uuid.New()

		rows := sqlmock.NewRows([]string{"customer_id", "customer_name", "invoice_count", "total_invoiced", "total_paid"}).
			AddRow(customerID, "Acme Ltd", 3, decimal.NewFromInt(900), decimal.NewFromInt(400))

		mock.ExpectQuery(`FROM "customers" c LEFT JOIN`).
			WillReturnRows(rows)

		summaries, err := repo.CustomerSummaries(context.Background(), report.Filter{TenantID: tenantID})

		assert.NoError(t, err)
		assert.Len(t, summaries, 1)
		assert.Equal(t, "Acme Ltd", summaries[0].CustomerName)
		assert.True(t, summaries[0].Outstanding.Equal(decimal.NewFromInt(500)))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
