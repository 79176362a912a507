package persistence

import (
	"context"
	"time"

	"github.com/billhub/backend/internal/domain/billing"
	"github.com/billhub/backend/internal/domain/report"
	"github.com/billhub/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormBillingReportRepository implements BillingReportRepository using GORM.
// All queries aggregate in SQL; nothing is loaded row by row.
type GormBillingReportRepository struct {
	db *gorm.DB
}

// NewGormBillingReportRepository creates a new GormBillingReportRepository
func NewGormBillingReportRepository(db *gorm.DB) *GormBillingReportRepository {
	return &GormBillingReportRepository{db: db}
}

func requireTenant(filter report.Filter) error {
	if filter.TenantID == uuid.Nil {
		return shared.NewInvalidInputError("Report filter requires a tenant")
	}
	return nil
}

// CustomerSummaries aggregates each customer's invoicing activity.
// Cancelled invoices are excluded from every total.
func (r *GormBillingReportRepository) CustomerSummaries(ctx context.Context, filter report.Filter) ([]report.CustomerSummary, error) {
	if err := requireTenant(filter); err != nil {
		return nil, err
	}

	invoiceSub := r.db.Table("invoices").
		Select("customer_id, COUNT(*) AS invoice_count, COALESCE(SUM(total_amount), 0) AS total_invoiced").
		Where("tenant_id = ? AND status <> ?", filter.TenantID, string(billing.InvoiceStatusCancelled)).
		Group("customer_id")
	invoiceSub = applyIssueDateRange(invoiceSub, "issue_date", filter)

	paymentSub := r.db.Table("payments p").
		Select("i.customer_id, COALESCE(SUM(p.amount), 0) AS total_paid").
		Joins("JOIN invoices i ON i.id = p.invoice_id").
		Where("p.tenant_id = ?", filter.TenantID).
		Group("i.customer_id")
	paymentSub = applyIssueDateRange(paymentSub, "i.issue_date", filter)

	type summaryResult struct {
		CustomerID    uuid.UUID
		CustomerName  string
		InvoiceCount  int64
		TotalInvoiced decimal.Decimal
		TotalPaid     decimal.Decimal
	}

	var results []summaryResult
	query := r.db.WithContext(ctx).Table("customers c").
		Select(`
			c.id AS customer_id,
			c.name AS customer_name,
			COALESCE(inv.invoice_count, 0) AS invoice_count,
			COALESCE(inv.total_invoiced, 0) AS total_invoiced,
			COALESCE(pay.total_paid, 0) AS total_paid
		`).
		Joins("LEFT JOIN (?) inv ON inv.customer_id = c.id", invoiceSub).
		Joins("LEFT JOIN (?) pay ON pay.customer_id = c.id", paymentSub).
		Where("c.tenant_id = ?", filter.TenantID).
		Order("c.name ASC")

	if filter.Search != "" {
		query = query.Where("c.name ILIKE ?", "%"+filter.Search+"%")
	}

	if err := query.Scan(&results).Error; err != nil {
		return nil, err
	}

	summaries := make([]report.CustomerSummary, len(results))
	for i, row := range results {
		summaries[i] = report.CustomerSummary{
			CustomerID:    row.CustomerID,
			CustomerName:  row.CustomerName,
			InvoiceCount:  row.InvoiceCount,
			TotalInvoiced: row.TotalInvoiced,
			TotalPaid:     row.TotalPaid,
			Outstanding:   row.TotalInvoiced.Sub(row.TotalPaid),
		}
	}
	return summaries, nil
}

// InvoiceSummary partitions the tenant's invoices by display status.
// The overdue slice is carved out of the stored Pending status by
// comparing the due date against the current date.
func (r *GormBillingReportRepository) InvoiceSummary(ctx context.Context, filter report.Filter) (*report.InvoiceSummary, error) {
	if err := requireTenant(filter); err != nil {
		return nil, err
	}

	type summaryResult struct {
		PaidCount     int64
		PaidTotal     decimal.Decimal
		PendingCount  int64
		PendingTotal  decimal.Decimal
		OverdueCount  int64
		OverdueTotal  decimal.Decimal
		InvoiceCount  int64
		InvoicedTotal decimal.Decimal
	}

	var result summaryResult
	query := r.db.WithContext(ctx).Table("invoices").
		Select(`
			COUNT(*) FILTER (WHERE status = 'Paid') AS paid_count,
			COALESCE(SUM(total_amount) FILTER (WHERE status = 'Paid'), 0) AS paid_total,
			COUNT(*) FILTER (WHERE status = 'Pending' AND (due_date IS NULL OR due_date >= CURRENT_DATE)) AS pending_count,
			COALESCE(SUM(total_amount) FILTER (WHERE status = 'Pending' AND (due_date IS NULL OR due_date >= CURRENT_DATE)), 0) AS pending_total,
			COUNT(*) FILTER (WHERE status = 'Pending' AND due_date IS NOT NULL AND due_date < CURRENT_DATE) AS overdue_count,
			COALESCE(SUM(total_amount) FILTER (WHERE status = 'Pending' AND due_date IS NOT NULL AND due_date < CURRENT_DATE), 0) AS overdue_total,
			COUNT(*) AS invoice_count,
			COALESCE(SUM(total_amount), 0) AS invoiced_total
		`).
		Where("tenant_id = ? AND status <> ?", filter.TenantID, string(billing.InvoiceStatusCancelled))
	query = applyIssueDateRange(query, "issue_date", filter)

	if err := query.Scan(&result).Error; err != nil {
		return nil, err
	}

	return &report.InvoiceSummary{
		PaidCount:     result.PaidCount,
		PaidTotal:     result.PaidTotal,
		PendingCount:  result.PendingCount,
		PendingTotal:  result.PendingTotal,
		OverdueCount:  result.OverdueCount,
		OverdueTotal:  result.OverdueTotal,
		InvoiceCount:  result.InvoiceCount,
		InvoicedTotal: result.InvoicedTotal,
	}, nil
}

// PaymentsPerPeriod groups the tenant's payments by calendar date
func (r *GormBillingReportRepository) PaymentsPerPeriod(ctx context.Context, filter report.Filter) ([]report.PaymentsPerPeriod, error) {
	if err := requireTenant(filter); err != nil {
		return nil, err
	}

	type periodResult struct {
		Period time.Time
		Count  int64
		Total  decimal.Decimal
	}

	var results []periodResult
	query := r.db.WithContext(ctx).Table("payments").
		Select("date AS period, COUNT(*) AS count, COALESCE(SUM(amount), 0) AS total").
		Where("tenant_id = ?", filter.TenantID).
		Group("date").
		Order("period ASC")
	query = applyIssueDateRange(query, "date", filter)

	if err := query.Scan(&results).Error; err != nil {
		return nil, err
	}

	periods := make([]report.PaymentsPerPeriod, len(results))
	for i, row := range results {
		periods[i] = report.PaymentsPerPeriod(row)
	}
	return periods, nil
}

// PaymentRows returns the flat payment list joined with invoice and
// customer details, newest first
func (r *GormBillingReportRepository) PaymentRows(ctx context.Context, filter report.Filter) ([]report.PaymentRow, error) {
	if err := requireTenant(filter); err != nil {
		return nil, err
	}

	type rowResult struct {
		PaymentID     uuid.UUID
		Date          time.Time
		InvoiceNumber string
		CustomerName  string
		Amount        decimal.Decimal
		Method        string
	}

	var results []rowResult
	query := r.db.WithContext(ctx).Table("payments p").
		Select(`
			p.id AS payment_id,
			p.date,
			i.invoice_number,
			c.name AS customer_name,
			p.amount,
			p.method
		`).
		Joins("JOIN invoices i ON i.id = p.invoice_id").
		Joins("JOIN customers c ON c.id = i.customer_id").
		Where("p.tenant_id = ?", filter.TenantID).
		Order("p.date DESC, p.created_at DESC")
	query = applyIssueDateRange(query, "p.date", filter)

	if filter.Search != "" {
		searchPattern := "%" + filter.Search + "%"
		query = query.Where("i.invoice_number ILIKE ? OR c.name ILIKE ?", searchPattern, searchPattern)
	}

	if err := query.Scan(&results).Error; err != nil {
		return nil, err
	}

	rows := make([]report.PaymentRow, len(results))
	for i, row := range results {
		rows[i] = report.PaymentRow(row)
	}
	return rows, nil
}

// Dashboard combines the landing page aggregates: headline totals, the
// status distribution, twelve months of payments and the top customers
func (r *GormBillingReportRepository) Dashboard(ctx context.Context, filter report.Filter) (*report.Dashboard, error) {
	if err := requireTenant(filter); err != nil {
		return nil, err
	}

	summary, err := r.InvoiceSummary(ctx, filter)
	if err != nil {
		return nil, err
	}

	var customerCount int64
	if err := r.db.WithContext(ctx).Table("customers").
		Where("tenant_id = ?", filter.TenantID).
		Count(&customerCount).Error; err != nil {
		return nil, err
	}

	var totalPaid decimal.Decimal
	if err := r.db.WithContext(ctx).Table("payments").
		Select("COALESCE(SUM(amount), 0)").
		Where("tenant_id = ?", filter.TenantID).
		Scan(&totalPaid).Error; err != nil {
		return nil, err
	}

	distribution, err := r.statusDistribution(ctx, filter.TenantID)
	if err != nil {
		return nil, err
	}

	paymentsByMonth, err := r.paymentsByMonth(ctx, filter.TenantID)
	if err != nil {
		return nil, err
	}

	topCustomers, err := r.topCustomers(ctx, filter.TenantID, 5)
	if err != nil {
		return nil, err
	}

	return &report.Dashboard{
		CustomerCount:      customerCount,
		InvoiceCount:       summary.InvoiceCount,
		TotalInvoiced:      summary.InvoicedTotal,
		TotalPaid:          totalPaid,
		TotalOutstanding:   summary.InvoicedTotal.Sub(totalPaid),
		Summary:            *summary,
		StatusDistribution: distribution,
		PaymentsByMonth:    paymentsByMonth,
		TopCustomers:       topCustomers,
	}, nil
}

// statusDistribution counts invoices per display status, including
// Cancelled and the derived Overdue slice
func (r *GormBillingReportRepository) statusDistribution(ctx context.Context, tenantID uuid.UUID) ([]report.StatusCount, error) {
	type distResult struct {
		Status string
		Count  int64
	}

	var results []distResult
	err := r.db.WithContext(ctx).Table("invoices").
		Select(`
			CASE
				WHEN status = 'Pending' AND due_date IS NOT NULL AND due_date < CURRENT_DATE THEN 'Overdue'
				ELSE status
			END AS status,
			COUNT(*) AS count
		`).
		Where("tenant_id = ?", tenantID).
		Group("1").
		Order("status ASC").
		Scan(&results).Error
	if err != nil {
		return nil, err
	}

	distribution := make([]report.StatusCount, len(results))
	for i, row := range results {
		distribution[i] = report.StatusCount(row)
	}
	return distribution, nil
}

// paymentsByMonth sums payments per calendar month over the last twelve
// months, ascending
func (r *GormBillingReportRepository) paymentsByMonth(ctx context.Context, tenantID uuid.UUID) ([]report.MonthlyPayments, error) {
	type monthResult struct {
		Month time.Time
		Total decimal.Decimal
	}

	var results []monthResult
	err := r.db.WithContext(ctx).Table("payments").
		Select("DATE_TRUNC('month', date) AS month, COALESCE(SUM(amount), 0) AS total").
		Where("tenant_id = ? AND date >= DATE_TRUNC('month', CURRENT_DATE) - INTERVAL '11 months'", tenantID).
		Group("DATE_TRUNC('month', date)").
		Order("month ASC").
		Scan(&results).Error
	if err != nil {
		return nil, err
	}

	months := make([]report.MonthlyPayments, len(results))
	for i, row := range results {
		months[i] = report.MonthlyPayments(row)
	}
	return months, nil
}

// topCustomers ranks customers by non-cancelled invoice total
func (r *GormBillingReportRepository) topCustomers(ctx context.Context, tenantID uuid.UUID, limit int) ([]report.TopCustomer, error) {
	type topResult struct {
		CustomerID   uuid.UUID
		CustomerName string
		Total        decimal.Decimal
	}

	var results []topResult
	err := r.db.WithContext(ctx).Table("invoices i").
		Select("i.customer_id, c.name AS customer_name, COALESCE(SUM(i.total_amount), 0) AS total").
		Joins("JOIN customers c ON c.id = i.customer_id").
		Where("i.tenant_id = ? AND i.status <> ?", tenantID, string(billing.InvoiceStatusCancelled)).
		Group("i.customer_id, c.name").
		Order("total DESC").
		Limit(limit).
		Scan(&results).Error
	if err != nil {
		return nil, err
	}

	top := make([]report.TopCustomer, len(results))
	for i, row := range results {
		top[i] = report.TopCustomer(row)
	}
	return top, nil
}

// applyIssueDateRange constrains the query to the filter's date window
func applyIssueDateRange(query *gorm.DB, column string, filter report.Filter) *gorm.DB {
	if filter.From != nil {
		query = query.Where(column+" >= ?", *filter.From)
	}
	if filter.To != nil {
		query = query.Where(column+" <= ?", *filter.To)
	}
	return query
}

// Ensure GormBillingReportRepository implements BillingReportRepository
var _ report.BillingReportRepository = (*GormBillingReportRepository)(nil)
