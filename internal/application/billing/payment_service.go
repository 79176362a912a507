package billing

import (
	"context"
	"errors"
	"time"

	"github.com/billhub/backend/internal/domain/billing"
	"github.com/billhub/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// PaymentService handles payment recording and deletion. Both
// operations mutate the owning invoice's status in the same
// transaction as the payment row itself.
type PaymentService struct {
	paymentRepo billing.PaymentRepository
	invoiceRepo billing.InvoiceRepository
	logger      *zap.Logger
}

// NewPaymentService creates a new PaymentService
func NewPaymentService(paymentRepo billing.PaymentRepository, invoiceRepo billing.InvoiceRepository, logger *zap.Logger) *PaymentService {
	return &PaymentService{
		paymentRepo: paymentRepo,
		invoiceRepo: invoiceRepo,
		logger:      logger,
	}
}

// Record validates and records a payment against an invoice.
// The invoice must belong to the tenant, the amount must be positive,
// and the cumulative paid sum may reach but never exceed the total.
func (s *PaymentService) Record(ctx context.Context, tenantID, invoiceID uuid.UUID, req RecordPaymentRequest) (*PaymentResponse, error) {
	invoice, err := s.invoiceRepo.FindByIDForTenant(ctx, tenantID, invoiceID)
	if err != nil {
		return nil, err
	}

	var date time.Time
	if req.Date != nil {
		date = *req.Date
	}
	payment, err := billing.NewPayment(tenantID, invoice.ID, req.Amount, date, req.Method, req.Reference, req.Notes)
	if err != nil {
		return nil, err
	}

	if err := invoice.ApplyPayment(*payment); err != nil {
		return nil, err
	}

	// The repository re-validates the balance under the invoice row
	// lock; the check above ran on an unlocked read
	status, err := s.paymentRepo.SaveAndReconcile(ctx, payment)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Payment recorded",
		zap.String("invoice_number", invoice.Number),
		zap.String("payment_id", payment.ID.String()),
		zap.String("status", status.String()))

	response := ToPaymentResponse(payment)
	return &response, nil
}

// ListForInvoice returns an invoice's payments, oldest first. The
// invoice lookup doubles as the tenant ownership check.
func (s *PaymentService) ListForInvoice(ctx context.Context, tenantID, invoiceID uuid.UUID) ([]PaymentResponse, error) {
	if _, err := s.invoiceRepo.FindByIDForTenant(ctx, tenantID, invoiceID); err != nil {
		return nil, err
	}

	payments, err := s.paymentRepo.FindByInvoiceForTenant(ctx, tenantID, invoiceID)
	if err != nil {
		return nil, err
	}

	out := make([]PaymentResponse, 0, len(payments))
	for i := range payments {
		out = append(out, ToPaymentResponse(&payments[i]))
	}
	return out, nil
}

// Delete removes a payment and re-derives the owning invoice's status.
// A payment that does not exist within the tenant is a silent no-op;
// only a warning is logged.
func (s *PaymentService) Delete(ctx context.Context, tenantID, paymentID uuid.UUID) error {
	payment, err := s.paymentRepo.FindByIDForTenant(ctx, tenantID, paymentID)
	if err != nil {
		var domainErr *shared.DomainError
		if errors.As(err, &domainErr) && domainErr.Code == "NOT_FOUND" {
			s.logger.Warn("Payment delete requested for unknown payment",
				zap.String("payment_id", paymentID.String()))
			return nil
		}
		return err
	}

	if _, err := s.paymentRepo.DeleteAndReconcile(ctx, payment); err != nil {
		// A concurrent delete winning the race is the same no-op
		if errors.Is(err, shared.ErrNotFound) {
			s.logger.Warn("Payment delete requested for unknown payment",
				zap.String("payment_id", paymentID.String()))
			return nil
		}
		return err
	}
	return nil
}
