package integration

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/billhub/backend/internal/domain/billing"
	"github.com/billhub/backend/internal/domain/shared"
	"github.com/billhub/backend/internal/infrastructure/persistence"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestCustomerRepository_Integration tests the CustomerRepository against a real PostgreSQL database
func TestCustomerRepository_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	testDB := NewTestDB(t)
	repo := persistence.NewGormCustomerRepository(testDB.DB)
	ctx := context.Background()
	tenantID := uuid.New()

	t.Run("Save and FindByIDForTenant", func(t *testing.T) {
		customer, err := billing.NewCustomer(tenantID, "Acme Ltd", "billing@acme.test", "+49 30 1234", "1 Main St")
		require.NoError(t, err)

		err = repo.Save(ctx, customer)
		require.NoError(t, err)

		found, err := repo.FindByIDForTenant(ctx, tenantID, customer.ID)
		require.NoError(t, err)
		assert.Equal(t, customer.ID, found.ID)
		assert.Equal(t, customer.Name, found.Name)
		assert.Equal(t, customer.Email, found.Email)
		assert.Equal(t, customer.TenantID, found.TenantID)

		// A different tenant must not see the customer
		_, err = repo.FindByIDForTenant(ctx, uuid.New(), customer.ID)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("ExistsByEmailForTenant", func(t *testing.T) {
		customer, err := billing.NewCustomer(tenantID, "Mail Check", "unique@check.test", "", "")
		require.NoError(t, err)
		require.NoError(t, repo.Save(ctx, customer))

		exists, err := repo.ExistsByEmailForTenant(ctx, tenantID, "unique@check.test", nil)
		require.NoError(t, err)
		assert.True(t, exists)

		// Excluding the owning customer ignores its own row
		exists, err = repo.ExistsByEmailForTenant(ctx, tenantID, "unique@check.test", &customer.ID)
		require.NoError(t, err)
		assert.False(t, exists)

		// Same email under another tenant does not count
		exists, err = repo.ExistsByEmailForTenant(ctx, uuid.New(), "unique@check.test", nil)
		require.NoError(t, err)
		assert.False(t, exists)
	})

	t.Run("FindAllForTenant with pagination and search", func(t *testing.T) {
		paginationTenant := uuid.New()
		for i := 0; i < 10; i++ {
			customer, err := billing.NewCustomer(paginationTenant,
				fmt.Sprintf("Pagination Customer %02d", i),
				fmt.Sprintf("page%02d@test.example", i), "", "")
			require.NoError(t, err)
			require.NoError(t, repo.Save(ctx, customer))
		}

		filter := shared.DefaultFilter()
		filter.Page = 1
		filter.PageSize = 4

		page, err := repo.FindAllForTenant(ctx, paginationTenant, filter)
		require.NoError(t, err)
		assert.Len(t, page, 4)

		total, err := repo.CountForTenant(ctx, paginationTenant, filter)
		require.NoError(t, err)
		assert.Equal(t, int64(10), total)

		filter.Search = "Customer 03"
		matches, err := repo.FindAllForTenant(ctx, paginationTenant, filter)
		require.NoError(t, err)
		require.Len(t, matches, 1)
		assert.Equal(t, "Pagination Customer 03", matches[0].Name)
	})

	t.Run("HasInvoices and Delete", func(t *testing.T) {
		customer, err := billing.NewCustomer(tenantID, "Invoiced Customer", "", "", "")
		require.NoError(t, err)
		require.NoError(t, repo.Save(ctx, customer))

		has, err := repo.HasInvoices(ctx, tenantID, customer.ID)
		require.NoError(t, err)
		assert.False(t, has)

		invoiceRepo := persistence.NewGormInvoiceRepository(testDB.DB)
		item, err := billing.NewInvoiceItem("Consulting", 2, decimal.NewFromInt(150))
		require.NoError(t, err)
		invoice, err := billing.NewInvoice(tenantID, customer.ID, "INV-2026-0001", time.Now(), nil, []billing.InvoiceItem{item})
		require.NoError(t, err)
		require.NoError(t, invoiceRepo.Save(ctx, invoice))

		has, err = repo.HasInvoices(ctx, tenantID, customer.ID)
		require.NoError(t, err)
		assert.True(t, has)

		// Unreferenced customers can be deleted
		orphan, err := billing.NewCustomer(tenantID, "Orphan Customer", "", "", "")
		require.NoError(t, err)
		require.NoError(t, repo.Save(ctx, orphan))
		require.NoError(t, repo.Delete(ctx, tenantID, orphan.ID))

		_, err = repo.FindByIDForTenant(ctx, tenantID, orphan.ID)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("Save updates an existing customer", func(t *testing.T) {
		customer, err := billing.NewCustomer(tenantID, "Before Update", "", "", "")
		require.NoError(t, err)
		require.NoError(t, repo.Save(ctx, customer))

		customer.Name = "After Update"
		customer.Phone = "+1 555 0100"
		require.NoError(t, repo.Save(ctx, customer))

		found, err := repo.FindByIDForTenant(ctx, tenantID, customer.ID)
		require.NoError(t, err)
		assert.Equal(t, "After Update", found.Name)
		assert.Equal(t, "+1 555 0100", found.Phone)
	})
}
