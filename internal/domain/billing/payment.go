package billing

import (
	"strings"
	"time"

	"github.com/billhub/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Common payment methods. The method field is free-form text; these
// cover the values the web client offers.
const (
	PaymentMethodCash         = "Cash"
	PaymentMethodCard         = "Card"
	PaymentMethodBankTransfer = "BankTransfer"
	PaymentMethodCheck        = "Check"
	PaymentMethodOther        = "Other"
)

// Payment is money received against one invoice. Immutable once
// recorded; the only mutation allowed afterwards is deletion.
type Payment struct {
	shared.BaseEntity
	InvoiceID uuid.UUID
	TenantID  uuid.UUID
	Amount    decimal.Decimal
	Date      time.Time
	Method    string
	Reference string
	Notes     string
}

// NewPayment creates a payment. A zero date defaults to today
// (date only, no time-of-day component).
func NewPayment(tenantID, invoiceID uuid.UUID, amount decimal.Decimal, date time.Time, method, reference, notes string) (*Payment, error) {
	if invoiceID == uuid.Nil {
		return nil, shared.NewInvalidInputError("Invoice is required")
	}
	if !amount.IsPositive() {
		return nil, shared.NewInvalidInputError("Payment amount must be greater than zero")
	}
	method = strings.TrimSpace(method)
	if method == "" {
		method = PaymentMethodOther
	}
	if date.IsZero() {
		date = time.Now()
	}

	return &Payment{
		BaseEntity: shared.NewBaseEntity(),
		InvoiceID:  invoiceID,
		TenantID:   tenantID,
		Amount:     amount,
		Date:       truncateToDate(date),
		Method:     method,
		Reference:  strings.TrimSpace(reference),
		Notes:      strings.TrimSpace(notes),
	}, nil
}
