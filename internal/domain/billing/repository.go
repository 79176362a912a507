package billing

import (
	"context"
	"time"

	"github.com/billhub/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// CustomerRepository defines the persistence contract for customers
type CustomerRepository interface {
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Customer, error)
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]Customer, error)
	CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error)
	ExistsByEmailForTenant(ctx context.Context, tenantID uuid.UUID, email string, excludeID *uuid.UUID) (bool, error)
	HasInvoices(ctx context.Context, tenantID, customerID uuid.UUID) (bool, error)
	Save(ctx context.Context, customer *Customer) error
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
}

// InvoiceRepository defines the persistence contract for invoices.
// Find methods load the invoice with its items and payments.
type InvoiceRepository interface {
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Invoice, error)
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]Invoice, error)
	CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error)
	// LastNumberWithPrefix returns the lexicographically greatest invoice
	// number for the tenant sharing the prefix, or "" when none exists.
	LastNumberWithPrefix(ctx context.Context, tenantID uuid.UUID, prefix string) (string, error)
	FindDueForReminder(ctx context.Context, asOf time.Time) ([]Invoice, error)
	Save(ctx context.Context, invoice *Invoice) error
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
}

// PaymentRepository defines the persistence contract for payments.
// Recording and deleting a payment rewrites the owning invoice's
// status in the same transaction.
type PaymentRepository interface {
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Payment, error)
	FindByInvoiceForTenant(ctx context.Context, tenantID, invoiceID uuid.UUID) ([]Payment, error)
	// SaveAndReconcile inserts the payment, re-validates the balance
	// under the invoice row lock and rewrites the invoice status in the
	// same transaction. Returns the reconciled status.
	SaveAndReconcile(ctx context.Context, payment *Payment) (InvoiceStatus, error)
	// DeleteAndReconcile removes the payment and re-derives the invoice
	// status from the remaining payments under the same lock.
	DeleteAndReconcile(ctx context.Context, payment *Payment) (InvoiceStatus, error)
}
