package billing

import (
	"context"
	"testing"
	"time"

	"github.com/billhub/backend/internal/domain/billing"
	"github.com/billhub/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
)

func testCustomer(t *testing.T, tenantID uuid.UUID) *billing.Customer {
	t.Helper()
	customer, err := billing.NewCustomer(tenantID, "Acme Corp", "", "", "")
	assert.NoError(t, err)
	return customer
}

func testInvoice(t *testing.T, tenantID, customerID uuid.UUID, number string, total decimal.Decimal) *billing.Invoice {
	t.Helper()
	item, err := billing.NewInvoiceItem("Consulting", 1, total)
	assert.NoError(t, err)
	invoice, err := billing.NewInvoice(tenantID, customerID, number,
		time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC), nil, []billing.InvoiceItem{item})
	assert.NoError(t, err)
	return invoice
}

func TestInvoiceService_Create_FirstNumberOfMonth(t *testing.T) {
	mockInvoiceRepo := new(MockInvoiceRepository)
	mockCustomerRepo := new(MockCustomerRepository)
	service := NewInvoiceService(mockInvoiceRepo, mockCustomerRepo, zap.NewNop())

	ctx := context.Background()
	tenantID := uuid.New()
	customer := testCustomer(t, tenantID)

	req := CreateInvoiceRequest{
		CustomerID: customer.ID,
		IssueDate:  time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC),
		Items: []InvoiceItemRequest{
			{Description: "Consulting", Quantity: 2, UnitPrice: decimal.NewFromInt(150)},
		},
	}

	mockCustomerRepo.On("FindByIDForTenant", ctx, tenantID, customer.ID).Return(customer, nil)
	mockInvoiceRepo.On("LastNumberWithPrefix", ctx, tenantID, "INV-202503-").Return("", nil)
	mockInvoiceRepo.On("Save", ctx, mock.AnythingOfType("*billing.Invoice")).Return(nil)

	result, err := service.Create(ctx, tenantID, req)

	assert.NoError(t, err)
	assert.Equal(t, "INV-202503-001", result.Number)
	assert.True(t, decimal.NewFromInt(300).Equal(result.TotalAmount))
	assert.Equal(t, "Pending", result.Status)
	mockInvoiceRepo.AssertExpectations(t)
	mockCustomerRepo.AssertExpectations(t)
}

func TestInvoiceService_Create_IncrementsSequence(t *testing.T) {
	mockInvoiceRepo := new(MockInvoiceRepository)
	mockCustomerRepo := new(MockCustomerRepository)
	service := NewInvoiceService(mockInvoiceRepo, mockCustomerRepo, zap.NewNop())

	ctx := context.Background()
	tenantID := uuid.New()
	customer := testCustomer(t, tenantID)

	req := CreateInvoiceRequest{
		CustomerID: customer.ID,
		IssueDate:  time.Date(2025, 3, 20, 0, 0, 0, 0, time.UTC),
		Items: []InvoiceItemRequest{
			{Description: "Support", Quantity: 1, UnitPrice: decimal.NewFromInt(99)},
		},
	}

	mockCustomerRepo.On("FindByIDForTenant", ctx, tenantID, customer.ID).Return(customer, nil)
	mockInvoiceRepo.On("LastNumberWithPrefix", ctx, tenantID, "INV-202503-").Return("INV-202503-001", nil)
	mockInvoiceRepo.On("Save", ctx, mock.AnythingOfType("*billing.Invoice")).Return(nil)

	result, err := service.Create(ctx, tenantID, req)

	assert.NoError(t, err)
	assert.Equal(t, "INV-202503-002", result.Number)
	mockInvoiceRepo.AssertExpectations(t)
}

func TestInvoiceService_Create_MalformedLastNumberRestartsSequence(t *testing.T) {
	mockInvoiceRepo := new(MockInvoiceRepository)
	mockCustomerRepo := new(MockCustomerRepository)
	service := NewInvoiceService(mockInvoiceRepo, mockCustomerRepo, zap.NewNop())

	ctx := context.Background()
	tenantID := uuid.New()
	customer := testCustomer(t, tenantID)

	req := CreateInvoiceRequest{
		CustomerID: customer.ID,
		IssueDate:  time.Date(2025, 3, 20, 0, 0, 0, 0, time.UTC),
		Items: []InvoiceItemRequest{
			{Description: "Support", Quantity: 1, UnitPrice: decimal.NewFromInt(99)},
		},
	}

	mockCustomerRepo.On("FindByIDForTenant", ctx, tenantID, customer.ID).Return(customer, nil)
	mockInvoiceRepo.On("LastNumberWithPrefix", ctx, tenantID, "INV-202503-").Return("INV-202503-XYZ", nil)
	mockInvoiceRepo.On("Save", ctx, mock.AnythingOfType("*billing.Invoice")).Return(nil)

	result, err := service.Create(ctx, tenantID, req)

	assert.NoError(t, err)
	assert.Equal(t, "INV-202503-001", result.Number)
	mockInvoiceRepo.AssertExpectations(t)
}

func TestInvoiceService_Create_RetriesOnNumberConflict(t *testing.T) {
	mockInvoiceRepo := new(MockInvoiceRepository)
	mockCustomerRepo := new(MockCustomerRepository)
	service := NewInvoiceService(mockInvoiceRepo, mockCustomerRepo, zap.NewNop())

	ctx := context.Background()
	tenantID := uuid.New()
	customer := testCustomer(t, tenantID)

	req := CreateInvoiceRequest{
		CustomerID: customer.ID,
		IssueDate:  time.Date(2025, 3, 20, 0, 0, 0, 0, time.UTC),
		Items: []InvoiceItemRequest{
			{Description: "Support", Quantity: 1, UnitPrice: decimal.NewFromInt(99)},
		},
	}

	mockCustomerRepo.On("FindByIDForTenant", ctx, tenantID, customer.ID).Return(customer, nil)
	// A concurrent writer took 003 between the lookup and the insert.
	mockInvoiceRepo.On("LastNumberWithPrefix", ctx, tenantID, "INV-202503-").
		Return("INV-202503-002", nil).Once()
	mockInvoiceRepo.On("Save", ctx, mock.AnythingOfType("*billing.Invoice")).
		Return(shared.NewAlreadyExistsError("Invoice number already exists")).Once()
	mockInvoiceRepo.On("LastNumberWithPrefix", ctx, tenantID, "INV-202503-").
		Return("INV-202503-003", nil).Once()
	mockInvoiceRepo.On("Save", ctx, mock.AnythingOfType("*billing.Invoice")).
		Return(nil).Once()

	result, err := service.Create(ctx, tenantID, req)

	assert.NoError(t, err)
	assert.Equal(t, "INV-202503-004", result.Number)
	mockInvoiceRepo.AssertExpectations(t)
}

func TestInvoiceService_Create_GivesUpAfterRetries(t *testing.T) {
	mockInvoiceRepo := new(MockInvoiceRepository)
	mockCustomerRepo := new(MockCustomerRepository)
	service := NewInvoiceService(mockInvoiceRepo, mockCustomerRepo, zap.NewNop())

	ctx := context.Background()
	tenantID := uuid.New()
	customer := testCustomer(t, tenantID)

	req := CreateInvoiceRequest{
		CustomerID: customer.ID,
		IssueDate:  time.Date(2025, 3, 20, 0, 0, 0, 0, time.UTC),
		Items: []InvoiceItemRequest{
			{Description: "Support", Quantity: 1, UnitPrice: decimal.NewFromInt(99)},
		},
	}

	mockCustomerRepo.On("FindByIDForTenant", ctx, tenantID, customer.ID).Return(customer, nil)
	mockInvoiceRepo.On("LastNumberWithPrefix", ctx, tenantID, "INV-202503-").Return("INV-202503-001", nil)
	mockInvoiceRepo.On("Save", ctx, mock.AnythingOfType("*billing.Invoice")).
		Return(shared.NewAlreadyExistsError("Invoice number already exists"))

	result, err := service.Create(ctx, tenantID, req)

	assert.Error(t, err)
	assert.Nil(t, result)
	var domainErr *shared.DomainError
	assert.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "ALREADY_EXISTS", domainErr.Code)
	mockInvoiceRepo.AssertNumberOfCalls(t, "Save", 3)
}

func TestInvoiceService_Create_UnknownCustomer(t *testing.T) {
	mockInvoiceRepo := new(MockInvoiceRepository)
	mockCustomerRepo := new(MockCustomerRepository)
	service := NewInvoiceService(mockInvoiceRepo, mockCustomerRepo, zap.NewNop())

	ctx := context.Background()
	tenantID := uuid.New()
	customerID := uuid.New()

	req := CreateInvoiceRequest{
		CustomerID: customerID,
		IssueDate:  time.Date(2025, 3, 20, 0, 0, 0, 0, time.UTC),
		Items: []InvoiceItemRequest{
			{Description: "Support", Quantity: 1, UnitPrice: decimal.NewFromInt(99)},
		},
	}

	mockCustomerRepo.On("FindByIDForTenant", ctx, tenantID, customerID).
		Return(nil, shared.NewNotFoundError("Customer not found"))

	result, err := service.Create(ctx, tenantID, req)

	assert.Error(t, err)
	assert.Nil(t, result)
	mockInvoiceRepo.AssertNotCalled(t, "Save")
	mockCustomerRepo.AssertExpectations(t)
}

func TestInvoiceService_Update_RejectsTotalBelowPaid(t *testing.T) {
	mockInvoiceRepo := new(MockInvoiceRepository)
	mockCustomerRepo := new(MockCustomerRepository)
	service := NewInvoiceService(mockInvoiceRepo, mockCustomerRepo, zap.NewNop())

	ctx := context.Background()
	tenantID := uuid.New()
	invoice := testInvoice(t, tenantID, uuid.New(), "INV-202503-001", decimal.NewFromInt(300))

	payment, err := billing.NewPayment(tenantID, invoice.ID, decimal.NewFromInt(200), time.Time{}, "", "", "")
	assert.NoError(t, err)
	assert.NoError(t, invoice.ApplyPayment(*payment))

	req := UpdateInvoiceRequest{
		Items: []InvoiceItemRequest{
			{Description: "Consulting", Quantity: 1, UnitPrice: decimal.NewFromInt(100)},
		},
	}

	mockInvoiceRepo.On("FindByIDForTenant", ctx, tenantID, invoice.ID).Return(invoice, nil)

	result, err := service.Update(ctx, tenantID, invoice.ID, req)

	assert.Error(t, err)
	assert.Nil(t, result)
	var domainErr *shared.DomainError
	assert.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "BUSINESS_RULE", domainErr.Code)
	mockInvoiceRepo.AssertNotCalled(t, "Save")
}

func TestInvoiceService_Delete_BlockedByPayments(t *testing.T) {
	mockInvoiceRepo := new(MockInvoiceRepository)
	mockCustomerRepo := new(MockCustomerRepository)
	service := NewInvoiceService(mockInvoiceRepo, mockCustomerRepo, zap.NewNop())

	ctx := context.Background()
	tenantID := uuid.New()
	invoice := testInvoice(t, tenantID, uuid.New(), "INV-202503-001", decimal.NewFromInt(300))

	payment, err := billing.NewPayment(tenantID, invoice.ID, decimal.NewFromInt(50), time.Time{}, "", "", "")
	assert.NoError(t, err)
	assert.NoError(t, invoice.ApplyPayment(*payment))

	mockInvoiceRepo.On("FindByIDForTenant", ctx, tenantID, invoice.ID).Return(invoice, nil)

	err = service.Delete(ctx, tenantID, invoice.ID)

	assert.Error(t, err)
	var domainErr *shared.DomainError
	assert.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "CONFLICT", domainErr.Code)
	mockInvoiceRepo.AssertNotCalled(t, "Delete")
}

func TestInvoiceService_Cancel_Success(t *testing.T) {
	mockInvoiceRepo := new(MockInvoiceRepository)
	mockCustomerRepo := new(MockCustomerRepository)
	service := NewInvoiceService(mockInvoiceRepo, mockCustomerRepo, zap.NewNop())

	ctx := context.Background()
	tenantID := uuid.New()
	invoice := testInvoice(t, tenantID, uuid.New(), "INV-202503-001", decimal.NewFromInt(300))

	mockInvoiceRepo.On("FindByIDForTenant", ctx, tenantID, invoice.ID).Return(invoice, nil)
	mockInvoiceRepo.On("Save", ctx, invoice).Return(nil)

	result, err := service.Cancel(ctx, tenantID, invoice.ID)

	assert.NoError(t, err)
	assert.Equal(t, "Cancelled", result.Status)
	mockInvoiceRepo.AssertExpectations(t)
}
