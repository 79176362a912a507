package report

import (
	"context"
	"time"

	"github.com/billhub/backend/internal/domain/report"
	"github.com/google/uuid"
)

// ReportFilter carries the optional query-string constraints for
// report endpoints
type ReportFilter struct {
	Search string     `form:"search"`
	From   *time.Time `form:"from" time_format:"2006-01-02"`
	To     *time.Time `form:"to" time_format:"2006-01-02"`
}

// ReportService exposes the read-only billing aggregations. All
// queries are scoped to the calling tenant.
type ReportService struct {
	reportRepo report.BillingReportRepository
}

// NewReportService creates a new ReportService
func NewReportService(reportRepo report.BillingReportRepository) *ReportService {
	return &ReportService{
		reportRepo: reportRepo,
	}
}

func toDomainFilter(tenantID uuid.UUID, filter ReportFilter) report.Filter {
	return report.Filter{
		TenantID: tenantID,
		Search:   filter.Search,
		From:     filter.From,
		To:       filter.To,
	}
}

// CustomerSummaries returns per-customer invoice and payment totals
func (s *ReportService) CustomerSummaries(ctx context.Context, tenantID uuid.UUID, filter ReportFilter) ([]report.CustomerSummary, error) {
	return s.reportRepo.CustomerSummaries(ctx, toDomainFilter(tenantID, filter))
}

// InvoiceSummary returns the paid/pending/overdue partition
func (s *ReportService) InvoiceSummary(ctx context.Context, tenantID uuid.UUID, filter ReportFilter) (*report.InvoiceSummary, error) {
	return s.reportRepo.InvoiceSummary(ctx, toDomainFilter(tenantID, filter))
}

// PaymentsPerPeriod returns payments grouped by calendar date, ascending
func (s *ReportService) PaymentsPerPeriod(ctx context.Context, tenantID uuid.UUID, filter ReportFilter) ([]report.PaymentsPerPeriod, error) {
	return s.reportRepo.PaymentsPerPeriod(ctx, toDomainFilter(tenantID, filter))
}

// Payments returns the flat payment list report
func (s *ReportService) Payments(ctx context.Context, tenantID uuid.UUID, filter ReportFilter) ([]report.PaymentRow, error) {
	return s.reportRepo.PaymentRows(ctx, toDomainFilter(tenantID, filter))
}

// Dashboard returns the combined aggregates for the landing page
func (s *ReportService) Dashboard(ctx context.Context, tenantID uuid.UUID) (*report.Dashboard, error) {
	return s.reportRepo.Dashboard(ctx, report.Filter{TenantID: tenantID})
}
