package report

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Read models for billing reports. These are CQRS-style projections
// computed from the tenant's invoices, payments and customers; nothing
// here is ever written back.

// CustomerSummary aggregates one customer's invoicing activity
type CustomerSummary struct {
	CustomerID    uuid.UUID       `json:"customer_id"`
	CustomerName  string          `json:"customer_name"`
	InvoiceCount  int64           `json:"invoice_count"`
	TotalInvoiced decimal.Decimal `json:"total_invoiced"`
	TotalPaid     decimal.Decimal `json:"total_paid"`
	Outstanding   decimal.Decimal `json:"outstanding"`
}

// InvoiceSummary partitions the tenant's invoices into paid, pending
// (due date absent or in the future) and overdue (due date past,
// status not paid and not cancelled).
type InvoiceSummary struct {
	PaidCount     int64           `json:"paid_count"`
	PaidTotal     decimal.Decimal `json:"paid_total"`
	PendingCount  int64           `json:"pending_count"`
	PendingTotal  decimal.Decimal `json:"pending_total"`
	OverdueCount  int64           `json:"overdue_count"`
	OverdueTotal  decimal.Decimal `json:"overdue_total"`
	InvoiceCount  int64           `json:"invoice_count"`
	InvoicedTotal decimal.Decimal `json:"invoiced_total"`
}

// PaymentsPerPeriod is one calendar date's payment total
type PaymentsPerPeriod struct {
	Period time.Time       `json:"period"`
	Count  int64           `json:"count"`
	Total  decimal.Decimal `json:"total"`
}

// PaymentRow is a flat row for the payment list report
type PaymentRow struct {
	PaymentID     uuid.UUID       `json:"payment_id"`
	Date          time.Time       `json:"date"`
	InvoiceNumber string          `json:"invoice_number"`
	CustomerName  string          `json:"customer_name"`
	Amount        decimal.Decimal `json:"amount"`
	Method        string          `json:"method"`
}

// StatusCount is one slice of the invoice status distribution chart
type StatusCount struct {
	Status string `json:"status"`
	Count  int64  `json:"count"`
}

// MonthlyPayments is one calendar month's payment total
type MonthlyPayments struct {
	Month time.Time       `json:"month"`
	Total decimal.Decimal `json:"total"`
}

// TopCustomer is one entry of the top-customers-by-invoice-total list
type TopCustomer struct {
	CustomerID   uuid.UUID       `json:"customer_id"`
	CustomerName string          `json:"customer_name"`
	Total        decimal.Decimal `json:"total"`
}

// Dashboard combines the tenant's aggregates for the landing page
type Dashboard struct {
	CustomerCount      int64             `json:"customer_count"`
	InvoiceCount       int64             `json:"invoice_count"`
	TotalInvoiced      decimal.Decimal   `json:"total_invoiced"`
	TotalPaid          decimal.Decimal   `json:"total_paid"`
	TotalOutstanding   decimal.Decimal   `json:"total_outstanding"`
	Summary            InvoiceSummary    `json:"summary"`
	StatusDistribution []StatusCount     `json:"status_distribution"`
	PaymentsByMonth    []MonthlyPayments `json:"payments_by_month"`
	TopCustomers       []TopCustomer     `json:"top_customers"`
}

// Filter defines the optional constraints shared by all report queries.
// TenantID is mandatory; a report without a tenant is a programming
// error and repositories must refuse it.
type Filter struct {
	TenantID uuid.UUID  `json:"-"`
	Search   string     `json:"search,omitempty"`
	From     *time.Time `json:"from,omitempty"`
	To       *time.Time `json:"to,omitempty"`
}
