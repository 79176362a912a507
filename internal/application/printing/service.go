// Package printing exposes invoice PDF generation and archival.
package printing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/billhub/backend/internal/domain/billing"
	"github.com/billhub/backend/internal/domain/identity"
	"github.com/billhub/backend/internal/domain/shared"
	infra "github.com/billhub/backend/internal/infrastructure/printing"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DocumentArchive stores rendered PDFs in object storage
type DocumentArchive interface {
	Upload(ctx context.Context, storageKey string, data []byte, contentType string) error
	GenerateDownloadURL(ctx context.Context, storageKey string, expiresIn time.Duration) (string, time.Time, error)
	ObjectExists(ctx context.Context, storageKey string) (bool, error)
}

// Service renders invoices to PDF and optionally archives them
type Service struct {
	invoiceRepo  billing.InvoiceRepository
	customerRepo billing.CustomerRepository
	userRepo     identity.UserRepository
	renderer     infra.PDFRenderer
	archive      DocumentArchive
	logger       *zap.Logger
}

// NewService creates a new printing Service. A nil archive disables
// PDF archival; rendering still works.
func NewService(
	invoiceRepo billing.InvoiceRepository,
	customerRepo billing.CustomerRepository,
	userRepo identity.UserRepository,
	renderer infra.PDFRenderer,
	archive DocumentArchive,
	logger *zap.Logger,
) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		invoiceRepo:  invoiceRepo,
		customerRepo: customerRepo,
		userRepo:     userRepo,
		renderer:     renderer,
		archive:      archive,
		logger:       logger,
	}
}

// ArchiveKey returns the object storage key for an invoice PDF
func ArchiveKey(tenantID uuid.UUID, number string) string {
	return fmt.Sprintf("invoices/%s/%s.pdf", tenantID, number)
}

// RenderInvoice renders the invoice as a PDF document. When an archive
// is configured the PDF is also uploaded; upload failures are logged
// but do not fail the render.
func (s *Service) RenderInvoice(ctx context.Context, tenantID, invoiceID uuid.UUID) (*InvoicePDF, error) {
	invoice, err := s.invoiceRepo.FindByIDForTenant(ctx, tenantID, invoiceID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewNotFoundError("Invoice not found")
		}
		return nil, fmt.Errorf("failed to load invoice: %w", err)
	}

	customer, err := s.customerRepo.FindByIDForTenant(ctx, tenantID, invoice.CustomerID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewNotFoundError("Customer not found")
		}
		return nil, fmt.Errorf("failed to load customer: %w", err)
	}

	doc := s.buildDocument(ctx, invoice, customer)

	html, err := infra.RenderInvoiceHTML(doc)
	if err != nil {
		return nil, err
	}

	result, err := s.renderer.Render(ctx, &infra.RenderRequest{
		HTML:  html,
		Title: "Invoice " + invoice.Number,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to render invoice PDF: %w", err)
	}

	pdf := &InvoicePDF{
		FileName: invoice.Number + ".pdf",
		Data:     result.PDFData,
	}

	if s.archive != nil {
		key := ArchiveKey(tenantID, invoice.Number)
		if err := s.archive.Upload(ctx, key, result.PDFData, "application/pdf"); err != nil {
			s.logger.Warn("failed to archive invoice PDF",
				zap.String("invoice_number", invoice.Number),
				zap.Error(err))
		} else {
			pdf.ArchiveKey = key
		}
	}

	s.logger.Info("invoice PDF rendered",
		zap.String("invoice_number", invoice.Number),
		zap.Int("bytes", len(result.PDFData)),
		zap.Duration("duration", result.RenderDuration))

	return pdf, nil
}

// ArchivedDownloadURL returns a presigned download URL for a previously
// archived invoice PDF.
func (s *Service) ArchivedDownloadURL(ctx context.Context, tenantID, invoiceID uuid.UUID, expiresIn time.Duration) (string, time.Time, error) {
	if s.archive == nil {
		return "", time.Time{}, shared.NewInvalidStateError("PDF archival is not configured")
	}

	invoice, err := s.invoiceRepo.FindByIDForTenant(ctx, tenantID, invoiceID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return "", time.Time{}, shared.NewNotFoundError("Invoice not found")
		}
		return "", time.Time{}, fmt.Errorf("failed to load invoice: %w", err)
	}

	key := ArchiveKey(tenantID, invoice.Number)
	exists, err := s.archive.ObjectExists(ctx, key)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to check archived PDF: %w", err)
	}
	if !exists {
		return "", time.Time{}, shared.NewNotFoundError("No archived PDF for this invoice")
	}

	return s.archive.GenerateDownloadURL(ctx, key, expiresIn)
}

func (s *Service) buildDocument(ctx context.Context, invoice *billing.Invoice, customer *billing.Customer) infra.InvoiceDocument {
	doc := infra.InvoiceDocument{
		Number:    invoice.Number,
		Status:    string(invoice.DisplayStatus(time.Now())),
		IssueDate: invoice.IssueDate,
		DueDate:   invoice.DueDate,
		Customer: infra.InvoiceDocumentParty{
			Name:    customer.Name,
			Email:   customer.Email,
			Phone:   customer.Phone,
			Address: customer.Address,
		},
		TotalAmount: invoice.TotalAmount,
		PaidAmount:  invoice.PaidAmount(),
		Balance:     invoice.RemainingAmount(),
	}

	// The issuer is the account owning the tenant; a lookup failure
	// only leaves the name blank.
	if user, err := s.userRepo.FindByID(ctx, invoice.TenantID); err == nil {
		doc.IssuerName = user.FullName
	}

	doc.Items = make([]infra.InvoiceDocumentItem, len(invoice.Items))
	for i, item := range invoice.Items {
		doc.Items[i] = infra.InvoiceDocumentItem{
			Description: item.Description,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			TotalPrice:  item.TotalPrice,
		}
	}

	doc.Payments = make([]infra.InvoiceDocumentPayment, len(invoice.Payments))
	for i, p := range invoice.Payments {
		doc.Payments[i] = infra.InvoiceDocumentPayment{
			Date:      p.Date,
			Amount:    p.Amount,
			Method:    p.Method,
			Reference: p.Reference,
		}
	}

	return doc
}
