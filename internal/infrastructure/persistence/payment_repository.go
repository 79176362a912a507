package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/billhub/backend/internal/domain/billing"
	"github.com/billhub/backend/internal/domain/shared"
	"github.com/billhub/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormPaymentRepository implements PaymentRepository using GORM
type GormPaymentRepository struct {
	db *gorm.DB
}

// NewGormPaymentRepository creates a new GormPaymentRepository
func NewGormPaymentRepository(db *gorm.DB) *GormPaymentRepository {
	return &GormPaymentRepository{db: db}
}

// FindByIDForTenant finds a payment by ID within a tenant
func (r *GormPaymentRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*billing.Payment, error) {
	var model models.PaymentModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByInvoiceForTenant lists an invoice's payments, oldest first
func (r *GormPaymentRepository) FindByInvoiceForTenant(ctx context.Context, tenantID, invoiceID uuid.UUID) ([]billing.Payment, error) {
	var paymentModels []models.PaymentModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND invoice_id = ?", tenantID, invoiceID).
		Order("date ASC, created_at ASC").
		Find(&paymentModels).Error; err != nil {
		return nil, err
	}

	payments := make([]billing.Payment, len(paymentModels))
	for i, model := range paymentModels {
		payments[i] = *model.ToDomain()
	}
	return payments, nil
}

// SaveAndReconcile inserts the payment and rewrites the owning invoice's
// status in one transaction holding the invoice row lock. The balance is
// re-checked against the committed payments under that lock; the
// caller's check ran on an unlocked read, so two concurrent recordings
// serialize here instead of both passing.
func (r *GormPaymentRepository) SaveAndReconcile(ctx context.Context, payment *billing.Payment) (billing.InvoiceStatus, error) {
	model := models.PaymentModelFromDomain(payment)
	var status billing.InvoiceStatus
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		invoice, err := r.lockInvoice(tx, payment.TenantID, payment.InvoiceID)
		if err != nil {
			return err
		}
		if billing.InvoiceStatus(invoice.Status) == billing.InvoiceStatusCancelled {
			return shared.NewInvalidStateError("Cannot record a payment on a cancelled invoice")
		}

		paidSum, err := r.paidSum(tx, payment.TenantID, payment.InvoiceID)
		if err != nil {
			return err
		}
		newPaid := paidSum.Add(payment.Amount)
		if newPaid.GreaterThan(invoice.TotalAmount) {
			return shared.NewBusinessRuleError("Payment would exceed the invoice total")
		}

		if err := tx.Create(model).Error; err != nil {
			return err
		}
		status = billing.ReconcileStatus(invoice.TotalAmount, newPaid)
		return r.updateInvoiceStatus(tx, payment.TenantID, payment.InvoiceID, status)
	})
	if err != nil {
		return "", err
	}
	return status, nil
}

// DeleteAndReconcile removes the payment and re-derives the owning
// invoice's status from the remaining payments, under the same invoice
// row lock as SaveAndReconcile.
func (r *GormPaymentRepository) DeleteAndReconcile(ctx context.Context, payment *billing.Payment) (billing.InvoiceStatus, error) {
	var status billing.InvoiceStatus
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		invoice, err := r.lockInvoice(tx, payment.TenantID, payment.InvoiceID)
		if err != nil {
			return err
		}

		result := tx.Delete(&models.PaymentModel{}, "tenant_id = ? AND id = ?", payment.TenantID, payment.ID)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}

		paidSum, err := r.paidSum(tx, payment.TenantID, payment.InvoiceID)
		if err != nil {
			return err
		}
		status = billing.ReconcileStatus(invoice.TotalAmount, paidSum)
		return r.updateInvoiceStatus(tx, payment.TenantID, payment.InvoiceID, status)
	})
	if err != nil {
		return "", err
	}
	return status, nil
}

// lockInvoice loads the invoice row FOR UPDATE so payment writes against
// it serialize for the rest of the transaction
func (r *GormPaymentRepository) lockInvoice(tx *gorm.DB, tenantID, invoiceID uuid.UUID) (*models.InvoiceModel, error) {
	var invoice models.InvoiceModel
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("tenant_id = ? AND id = ?", tenantID, invoiceID).
		First(&invoice).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &invoice, nil
}

func (r *GormPaymentRepository) paidSum(tx *gorm.DB, tenantID, invoiceID uuid.UUID) (decimal.Decimal, error) {
	var sum decimal.Decimal
	err := tx.Model(&models.PaymentModel{}).
		Where("tenant_id = ? AND invoice_id = ?", tenantID, invoiceID).
		Select("COALESCE(SUM(amount), 0)").
		Row().Scan(&sum)
	return sum, err
}

func (r *GormPaymentRepository) updateInvoiceStatus(tx *gorm.DB, tenantID, invoiceID uuid.UUID, status billing.InvoiceStatus) error {
	result := tx.Model(&models.InvoiceModel{}).
		Where("tenant_id = ? AND id = ?", tenantID, invoiceID).
		Updates(map[string]any{
			"status":     string(status),
			"updated_at": time.Now(),
			"version":    gorm.Expr("version + 1"),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Ensure GormPaymentRepository implements PaymentRepository
var _ billing.PaymentRepository = (*GormPaymentRepository)(nil)
