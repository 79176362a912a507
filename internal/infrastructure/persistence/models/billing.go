package models

import (
	"time"

	"github.com/billhub/backend/internal/domain/billing"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CustomerModel is the persistence model for the Customer aggregate root.
type CustomerModel struct {
	TenantAggregateModel
	Name    string `gorm:"type:varchar(200);not null;index"`
	Email   string `gorm:"type:varchar(200);index"`
	Phone   string `gorm:"type:varchar(50)"`
	Address string `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (CustomerModel) TableName() string {
	return "customers"
}

// ToDomain converts the persistence model to a domain Customer entity.
func (m *CustomerModel) ToDomain() *billing.Customer {
	customer := &billing.Customer{
		Name:    m.Name,
		Email:   m.Email,
		Phone:   m.Phone,
		Address: m.Address,
	}
	m.PopulateTenantAggregateRoot(&customer.TenantAggregateRoot)
	return customer
}

// FromDomain populates the persistence model from a domain Customer entity.
func (m *CustomerModel) FromDomain(c *billing.Customer) {
	m.FromDomainTenantAggregateRoot(c.TenantAggregateRoot)
	m.Name = c.Name
	m.Email = c.Email
	m.Phone = c.Phone
	m.Address = c.Address
}

// CustomerModelFromDomain creates a new persistence model from a domain Customer entity.
func CustomerModelFromDomain(c *billing.Customer) *CustomerModel {
	m := &CustomerModel{}
	m.FromDomain(c)
	return m
}

// InvoiceModel is the persistence model for the Invoice aggregate root.
// The stored status is only ever Pending, Paid or Cancelled; the overdue
// state is derived from the due date at read time.
type InvoiceModel struct {
	TenantAggregateModel
	Number      string             `gorm:"column:invoice_number;type:varchar(50);not null;uniqueIndex:idx_invoices_tenant_number,priority:2"`
	CustomerID  uuid.UUID          `gorm:"type:uuid;not null;index"`
	IssueDate   time.Time          `gorm:"type:date;not null;index"`
	DueDate     *time.Time         `gorm:"type:date;index"`
	Status      string             `gorm:"type:varchar(20);not null;default:'Pending';index"`
	TotalAmount decimal.Decimal    `gorm:"type:decimal(18,4);not null;default:0"`
	Items       []InvoiceItemModel `gorm:"foreignKey:InvoiceID;references:ID"`
	Payments    []PaymentModel     `gorm:"foreignKey:InvoiceID;references:ID"`
}

// TableName returns the table name for GORM
func (InvoiceModel) TableName() string {
	return "invoices"
}

// ToDomain converts the persistence model to a domain Invoice entity.
func (m *InvoiceModel) ToDomain() *billing.Invoice {
	invoice := &billing.Invoice{
		Number:      m.Number,
		CustomerID:  m.CustomerID,
		IssueDate:   m.IssueDate,
		DueDate:     m.DueDate,
		Status:      billing.InvoiceStatus(m.Status),
		TotalAmount: m.TotalAmount,
		Items:       make([]billing.InvoiceItem, len(m.Items)),
		Payments:    make([]billing.Payment, len(m.Payments)),
	}
	m.PopulateTenantAggregateRoot(&invoice.TenantAggregateRoot)
	for i, item := range m.Items {
		invoice.Items[i] = item.ToDomain()
	}
	for i, payment := range m.Payments {
		invoice.Payments[i] = *payment.ToDomain()
	}
	return invoice
}

// FromDomain populates the persistence model from a domain Invoice entity.
// Payments are intentionally not copied; they are owned by the payment
// repository and written on their own path.
func (m *InvoiceModel) FromDomain(inv *billing.Invoice) {
	m.FromDomainTenantAggregateRoot(inv.TenantAggregateRoot)
	m.Number = inv.Number
	m.CustomerID = inv.CustomerID
	m.IssueDate = inv.IssueDate
	m.DueDate = inv.DueDate
	m.Status = string(inv.Status)
	m.TotalAmount = inv.TotalAmount
	m.Items = make([]InvoiceItemModel, len(inv.Items))
	for i, item := range inv.Items {
		m.Items[i] = InvoiceItemModelFromDomain(inv.ID, item)
	}
}

// InvoiceModelFromDomain creates a new persistence model from a domain Invoice entity.
func InvoiceModelFromDomain(inv *billing.Invoice) *InvoiceModel {
	m := &InvoiceModel{}
	m.FromDomain(inv)
	return m
}

// InvoiceItemModel is the persistence model for an invoice line item.
// Items are replaced wholesale when the invoice is updated.
type InvoiceItemModel struct {
	ID          uuid.UUID       `gorm:"type:uuid;primary_key"`
	InvoiceID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	Description string          `gorm:"type:varchar(500);not null"`
	Quantity    int             `gorm:"not null"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	TotalPrice  decimal.Decimal `gorm:"type:decimal(18,4);not null"`
}

// TableName returns the table name for GORM
func (InvoiceItemModel) TableName() string {
	return "invoice_items"
}

// ToDomain converts the persistence model to a domain InvoiceItem.
func (m *InvoiceItemModel) ToDomain() billing.InvoiceItem {
	return billing.InvoiceItem{
		ID:          m.ID,
		Description: m.Description,
		Quantity:    m.Quantity,
		UnitPrice:   m.UnitPrice,
		TotalPrice:  m.TotalPrice,
	}
}

// InvoiceItemModelFromDomain creates a new persistence model from a domain InvoiceItem.
func InvoiceItemModelFromDomain(invoiceID uuid.UUID, item billing.InvoiceItem) InvoiceItemModel {
	return InvoiceItemModel{
		ID:          item.ID,
		InvoiceID:   invoiceID,
		Description: item.Description,
		Quantity:    item.Quantity,
		UnitPrice:   item.UnitPrice,
		TotalPrice:  item.TotalPrice,
	}
}

// PaymentModel is the persistence model for the Payment entity.
type PaymentModel struct {
	BaseModel
	InvoiceID uuid.UUID       `gorm:"type:uuid;not null;index"`
	TenantID  uuid.UUID       `gorm:"type:uuid;not null;index"`
	Amount    decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Date      time.Time       `gorm:"type:date;not null;index"`
	Method    string          `gorm:"type:varchar(50);not null"`
	Reference string          `gorm:"type:varchar(200)"`
	Notes     string          `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (PaymentModel) TableName() string {
	return "payments"
}

// ToDomain converts the persistence model to a domain Payment entity.
func (m *PaymentModel) ToDomain() *billing.Payment {
	return &billing.Payment{
		BaseEntity: m.BaseModel.ToDomain(),
		InvoiceID:  m.InvoiceID,
		TenantID:   m.TenantID,
		Amount:     m.Amount,
		Date:       m.Date,
		Method:     m.Method,
		Reference:  m.Reference,
		Notes:      m.Notes,
	}
}

// FromDomain populates the persistence model from a domain Payment entity.
func (m *PaymentModel) FromDomain(p *billing.Payment) {
	m.FromDomainBaseEntity(p.BaseEntity)
	m.InvoiceID = p.InvoiceID
	m.TenantID = p.TenantID
	m.Amount = p.Amount
	m.Date = p.Date
	m.Method = p.Method
	m.Reference = p.Reference
	m.Notes = p.Notes
}

// PaymentModelFromDomain creates a new persistence model from a domain Payment entity.
func PaymentModelFromDomain(p *billing.Payment) *PaymentModel {
	m := &PaymentModel{}
	m.FromDomain(p)
	return m
}
