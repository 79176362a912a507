package billing

import (
	"context"
	"errors"

	"github.com/billhub/backend/internal/domain/billing"
	"github.com/billhub/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// numberConflictRetries bounds how often invoice creation retries
// after losing a race on the (tenant_id, invoice_number) unique index.
const numberConflictRetries = 3

// InvoiceService handles invoice-related business operations
type InvoiceService struct {
	invoiceRepo  billing.InvoiceRepository
	customerRepo billing.CustomerRepository
	logger       *zap.Logger
}

// NewInvoiceService creates a new InvoiceService
func NewInvoiceService(invoiceRepo billing.InvoiceRepository, customerRepo billing.CustomerRepository, logger *zap.Logger) *InvoiceService {
	return &InvoiceService{
		invoiceRepo:  invoiceRepo,
		customerRepo: customerRepo,
		logger:       logger,
	}
}

// Create creates a new invoice. The invoice number is generated from
// the issue date's month prefix; concurrent creations racing for the
// same number are resolved by the unique index plus a bounded retry.
func (s *InvoiceService) Create(ctx context.Context, tenantID uuid.UUID, req CreateInvoiceRequest) (*InvoiceResponse, error) {
	if _, err := s.customerRepo.FindByIDForTenant(ctx, tenantID, req.CustomerID); err != nil {
		return nil, err
	}

	items, err := s.buildItems(req.Items)
	if err != nil {
		return nil, err
	}

	var lastErr error
	for attempt := 0; attempt < numberConflictRetries; attempt++ {
		number, err := s.nextNumber(ctx, tenantID, req)
		if err != nil {
			return nil, err
		}

		invoice, err := billing.NewInvoice(tenantID, req.CustomerID, number, req.IssueDate, req.DueDate, items)
		if err != nil {
			return nil, err
		}

		err = s.invoiceRepo.Save(ctx, invoice)
		if err == nil {
			response := ToInvoiceResponse(invoice)
			return &response, nil
		}

		var domainErr *shared.DomainError
		if errors.As(err, &domainErr) && domainErr.Code == "ALREADY_EXISTS" {
			s.logger.Warn("Invoice number conflict, retrying",
				zap.String("number", number),
				zap.Int("attempt", attempt+1))
			lastErr = err
			continue
		}
		return nil, err
	}
	return nil, lastErr
}

func (s *InvoiceService) nextNumber(ctx context.Context, tenantID uuid.UUID, req CreateInvoiceRequest) (string, error) {
	prefix := billing.InvoiceNumberPrefix(req.IssueDate)
	last, err := s.invoiceRepo.LastNumberWithPrefix(ctx, tenantID, prefix)
	if err != nil {
		return "", err
	}
	seq, parsed := billing.NextInvoiceSequence(prefix, last)
	if !parsed {
		s.logger.Warn("Invoice number suffix did not parse, restarting sequence",
			zap.String("last_number", last),
			zap.String("prefix", prefix))
	}
	return billing.FormatInvoiceNumber(prefix, seq), nil
}

func (s *InvoiceService) buildItems(reqs []InvoiceItemRequest) ([]billing.InvoiceItem, error) {
	items := make([]billing.InvoiceItem, 0, len(reqs))
	for _, r := range reqs {
		item, err := billing.NewInvoiceItem(r.Description, r.Quantity, r.UnitPrice)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}

// GetByID retrieves an invoice with its items and payments
func (s *InvoiceService) GetByID(ctx context.Context, tenantID, invoiceID uuid.UUID) (*InvoiceResponse, error) {
	invoice, err := s.invoiceRepo.FindByIDForTenant(ctx, tenantID, invoiceID)
	if err != nil {
		return nil, err
	}

	response := ToInvoiceResponse(invoice)
	return &response, nil
}

// List retrieves invoices with filtering and pagination
func (s *InvoiceService) List(ctx context.Context, tenantID uuid.UUID, filter InvoiceListFilter) ([]InvoiceResponse, int64, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}
	if filter.OrderBy == "" {
		filter.OrderBy = "issue_date"
	}
	if filter.OrderDir == "" {
		filter.OrderDir = "desc"
	}

	domainFilter := shared.Filter{
		Page:     filter.Page,
		PageSize: filter.PageSize,
		OrderBy:  filter.OrderBy,
		OrderDir: filter.OrderDir,
		Search:   filter.Search,
		Filters:  make(map[string]any),
	}
	if filter.Status != "" {
		domainFilter.Filters["status"] = filter.Status
	}
	if filter.CustomerID != nil {
		domainFilter.Filters["customer_id"] = *filter.CustomerID
	}
	if filter.From != nil {
		domainFilter.Filters["from"] = *filter.From
	}
	if filter.To != nil {
		domainFilter.Filters["to"] = *filter.To
	}

	invoices, err := s.invoiceRepo.FindAllForTenant(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	total, err := s.invoiceRepo.CountForTenant(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	return ToInvoiceResponses(invoices), total, nil
}

// Update replaces an invoice's due date and line items
func (s *InvoiceService) Update(ctx context.Context, tenantID, invoiceID uuid.UUID, req UpdateInvoiceRequest) (*InvoiceResponse, error) {
	invoice, err := s.invoiceRepo.FindByIDForTenant(ctx, tenantID, invoiceID)
	if err != nil {
		return nil, err
	}

	items, err := s.buildItems(req.Items)
	if err != nil {
		return nil, err
	}

	if err := invoice.SetDueDate(req.DueDate); err != nil {
		return nil, err
	}
	if err := invoice.ReplaceItems(items); err != nil {
		return nil, err
	}

	if err := s.invoiceRepo.Save(ctx, invoice); err != nil {
		return nil, err
	}

	response := ToInvoiceResponse(invoice)
	return &response, nil
}

// Cancel voids an unpaid invoice
func (s *InvoiceService) Cancel(ctx context.Context, tenantID, invoiceID uuid.UUID) (*InvoiceResponse, error) {
	invoice, err := s.invoiceRepo.FindByIDForTenant(ctx, tenantID, invoiceID)
	if err != nil {
		return nil, err
	}

	if err := invoice.Cancel(); err != nil {
		return nil, err
	}

	if err := s.invoiceRepo.Save(ctx, invoice); err != nil {
		return nil, err
	}

	response := ToInvoiceResponse(invoice)
	return &response, nil
}

// Delete removes an invoice. Invoices with payments cannot be deleted.
func (s *InvoiceService) Delete(ctx context.Context, tenantID, invoiceID uuid.UUID) error {
	invoice, err := s.invoiceRepo.FindByIDForTenant(ctx, tenantID, invoiceID)
	if err != nil {
		return err
	}

	if !invoice.CanDelete() {
		return shared.NewConflictError("Invoice has payments and cannot be deleted")
	}

	return s.invoiceRepo.Delete(ctx, tenantID, invoiceID)
}
