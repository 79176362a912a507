package handler

import (
	reportapp "github.com/billhub/backend/internal/application/report"
	"github.com/gin-gonic/gin"
)

// ReportHandler handles reporting and dashboard API endpoints
type ReportHandler struct {
	BaseHandler
	reportService *reportapp.ReportService
}

// NewReportHandler creates a new ReportHandler
func NewReportHandler(reportService *reportapp.ReportService) *ReportHandler {
	return &ReportHandler{
		reportService: reportService,
	}
}

// bindFilter binds the shared report query parameters
func (h *ReportHandler) bindFilter(c *gin.Context) (reportapp.ReportFilter, bool) {
	var filter reportapp.ReportFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BindError(c, err)
		return filter, false
	}
	return filter, true
}

// Customers returns per-customer invoice and payment totals
func (h *ReportHandler) Customers(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	filter, ok := h.bindFilter(c)
	if !ok {
		return
	}

	summaries, err := h.reportService.CustomerSummaries(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, summaries)
}

// Invoices returns the paid/pending/overdue invoice partition
func (h *ReportHandler) Invoices(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	filter, ok := h.bindFilter(c)
	if !ok {
		return
	}

	summary, err := h.reportService.InvoiceSummary(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, summary)
}

// Payments returns the flat payment list report
func (h *ReportHandler) Payments(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	filter, ok := h.bindFilter(c)
	if !ok {
		return
	}

	rows, err := h.reportService.Payments(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, rows)
}

// PaymentsPerPeriod returns payment totals grouped by calendar date
func (h *ReportHandler) PaymentsPerPeriod(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	filter, ok := h.bindFilter(c)
	if !ok {
		return
	}

	periods, err := h.reportService.PaymentsPerPeriod(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, periods)
}

// Dashboard returns the combined aggregates for the landing page
func (h *ReportHandler) Dashboard(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	dashboard, err := h.reportService.Dashboard(c.Request.Context(), tenantID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, dashboard)
}
