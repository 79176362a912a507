package report

import "context"

// BillingReportRepository defines the read-only aggregation queries.
// Every implementation must filter by the tenant in the Filter before
// aggregating; a missing tenant is a data isolation violation.
type BillingReportRepository interface {
	CustomerSummaries(ctx context.Context, filter Filter) ([]CustomerSummary, error)
	InvoiceSummary(ctx context.Context, filter Filter) (*InvoiceSummary, error)
	PaymentsPerPeriod(ctx context.Context, filter Filter) ([]PaymentsPerPeriod, error)
	PaymentRows(ctx context.Context, filter Filter) ([]PaymentRow, error)
	Dashboard(ctx context.Context, filter Filter) (*Dashboard, error)
}
