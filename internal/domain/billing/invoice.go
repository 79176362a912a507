package billing

import (
	"strings"
	"time"

	"github.com/billhub/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InvoiceStatus represents the persisted status of an invoice
type InvoiceStatus string

const (
	InvoiceStatusPending   InvoiceStatus = "Pending"
	InvoiceStatusPaid      InvoiceStatus = "Paid"
	InvoiceStatusCancelled InvoiceStatus = "Cancelled"

	// InvoiceStatusOverdue is derived at read time from the due date.
	// It is never written to storage; reconciliation only produces
	// Pending or Paid.
	InvoiceStatusOverdue InvoiceStatus = "Overdue"
)

// IsValid checks if the status is a persistable InvoiceStatus
func (s InvoiceStatus) IsValid() bool {
	switch s {
	case InvoiceStatusPending, InvoiceStatusPaid, InvoiceStatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of InvoiceStatus
func (s InvoiceStatus) String() string {
	return string(s)
}

// InvoiceItem is a line item owned by exactly one invoice.
// Items are replaced wholesale whenever the invoice is updated.
type InvoiceItem struct {
	ID          uuid.UUID
	Description string
	Quantity    int
	UnitPrice   decimal.Decimal
	TotalPrice  decimal.Decimal
}

// NewInvoiceItem creates a line item and derives its total price
func NewInvoiceItem(description string, quantity int, unitPrice decimal.Decimal) (InvoiceItem, error) {
	description = strings.TrimSpace(description)
	if description == "" {
		return InvoiceItem{}, shared.NewInvalidInputError("Item description cannot be empty")
	}
	if quantity <= 0 {
		return InvoiceItem{}, shared.NewInvalidInputError("Item quantity must be greater than zero")
	}
	if unitPrice.IsNegative() {
		return InvoiceItem{}, shared.NewInvalidInputError("Item unit price cannot be negative")
	}
	return InvoiceItem{
		ID:          uuid.New(),
		Description: description,
		Quantity:    quantity,
		UnitPrice:   unitPrice,
		TotalPrice:  unitPrice.Mul(decimal.NewFromInt(int64(quantity))),
	}, nil
}

// Invoice is the aggregate root for invoicing. TotalAmount is fixed from
// the line items at creation/update time; PaidAmount and RemainingAmount
// are derived from the payments applied to it.
type Invoice struct {
	shared.TenantAggregateRoot
	Number      string
	CustomerID  uuid.UUID
	IssueDate   time.Time
	DueDate     *time.Time
	Status      InvoiceStatus
	TotalAmount decimal.Decimal
	Items       []InvoiceItem
	Payments    []Payment
}

// NewInvoice creates a pending invoice with the given items
func NewInvoice(tenantID, customerID uuid.UUID, number string, issueDate time.Time, dueDate *time.Time, items []InvoiceItem) (*Invoice, error) {
	if customerID == uuid.Nil {
		return nil, shared.NewInvalidInputError("Customer is required")
	}
	if strings.TrimSpace(number) == "" {
		return nil, shared.NewInvalidInputError("Invoice number cannot be empty")
	}
	if len(items) == 0 {
		return nil, shared.NewInvalidInputError("Invoice must have at least one line item")
	}
	if dueDate != nil && dueDate.Before(issueDate) {
		return nil, shared.NewInvalidInputError("Due date cannot be before issue date")
	}

	inv := &Invoice{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Number:              number,
		CustomerID:          customerID,
		IssueDate:           issueDate,
		DueDate:             dueDate,
		Status:              InvoiceStatusPending,
		Items:               items,
		Payments:            make([]Payment, 0),
	}
	inv.TotalAmount = sumItemTotals(items)
	return inv, nil
}

// ReplaceItems swaps the line items wholesale and re-derives the total.
// Lowering the total below the amount already paid would break the
// no-overpayment invariant and is rejected.
func (i *Invoice) ReplaceItems(items []InvoiceItem) error {
	if len(items) == 0 {
		return shared.NewInvalidInputError("Invoice must have at least one line item")
	}
	newTotal := sumItemTotals(items)
	if newTotal.LessThan(i.PaidAmount()) {
		return shared.NewBusinessRuleError("Invoice total cannot be lower than the amount already paid")
	}
	i.Items = items
	i.TotalAmount = newTotal
	i.Reconcile()
	i.Touch()
	i.IncrementVersion()
	return nil
}

// SetDueDate updates the due date
func (i *Invoice) SetDueDate(dueDate *time.Time) error {
	if dueDate != nil && dueDate.Before(i.IssueDate) {
		return shared.NewInvalidInputError("Due date cannot be before issue date")
	}
	i.DueDate = dueDate
	i.Touch()
	i.IncrementVersion()
	return nil
}

// PaidAmount returns the sum of all payment amounts
func (i *Invoice) PaidAmount() decimal.Decimal {
	sum := decimal.Zero
	for _, p := range i.Payments {
		sum = sum.Add(p.Amount)
	}
	return sum
}

// RemainingAmount returns the unpaid balance
func (i *Invoice) RemainingAmount() decimal.Decimal {
	return i.TotalAmount.Sub(i.PaidAmount())
}

// ApplyPayment validates and appends a payment, then reconciles status.
// Equality with the remaining balance is allowed; exceeding it is not.
func (i *Invoice) ApplyPayment(p Payment) error {
	if i.Status == InvoiceStatusCancelled {
		return shared.NewInvalidStateError("Cannot record a payment on a cancelled invoice")
	}
	if !p.Amount.IsPositive() {
		return shared.NewInvalidInputError("Payment amount must be greater than zero")
	}
	if i.PaidAmount().Add(p.Amount).GreaterThan(i.TotalAmount) {
		return shared.NewBusinessRuleError("Payment would exceed the invoice total")
	}
	i.Payments = append(i.Payments, p)
	i.Reconcile()
	i.Touch()
	i.IncrementVersion()
	return nil
}

// RemovePayment drops a payment by ID and reconciles status.
// Returns false if the payment does not belong to this invoice.
func (i *Invoice) RemovePayment(paymentID uuid.UUID) bool {
	for idx, p := range i.Payments {
		if p.ID == paymentID {
			i.Payments = append(i.Payments[:idx], i.Payments[idx+1:]...)
			i.Reconcile()
			i.Touch()
			i.IncrementVersion()
			return true
		}
	}
	return false
}

// Reconcile re-derives the persisted status from the payment total.
// This is the only writer of the status field on the payment path.
func (i *Invoice) Reconcile() {
	if i.Status == InvoiceStatusCancelled {
		return
	}
	i.Status = ReconcileStatus(i.TotalAmount, i.PaidAmount())
}

// ReconcileStatus is the pure reconciliation function: a paid sum
// covering the total means Paid, anything less means Pending.
func ReconcileStatus(total, paidSum decimal.Decimal) InvoiceStatus {
	if paidSum.GreaterThanOrEqual(total) && total.IsPositive() {
		return InvoiceStatusPaid
	}
	return InvoiceStatusPending
}

// IsOverdue reports the derived overdue state: past due and neither
// paid nor cancelled. Never persisted.
func (i *Invoice) IsOverdue(asOf time.Time) bool {
	if i.Status == InvoiceStatusPaid || i.Status == InvoiceStatusCancelled {
		return false
	}
	if i.DueDate == nil {
		return false
	}
	return i.DueDate.Before(truncateToDate(asOf))
}

// DisplayStatus returns the status with the derived Overdue state applied
func (i *Invoice) DisplayStatus(asOf time.Time) InvoiceStatus {
	if i.IsOverdue(asOf) {
		return InvoiceStatusOverdue
	}
	return i.Status
}

// Cancel voids an invoice that has no payments
func (i *Invoice) Cancel() error {
	if i.Status == InvoiceStatusCancelled {
		return shared.NewInvalidStateError("Invoice is already cancelled")
	}
	if len(i.Payments) > 0 {
		return shared.NewBusinessRuleError("Cannot cancel an invoice that has payments")
	}
	i.Status = InvoiceStatusCancelled
	i.Touch()
	i.IncrementVersion()
	return nil
}

// CanDelete returns true if the invoice may be deleted
func (i *Invoice) CanDelete() bool {
	return len(i.Payments) == 0
}

func sumItemTotals(items []InvoiceItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.TotalPrice)
	}
	return total
}

func truncateToDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
