// Package billing provides domain models for invoicing and payment collection in a multi-tenant application.
//
// This package implements the invoicing bounded context, which is responsible for:
//   - Managing customers that invoices are issued to
//   - Issuing invoices with ordered line items and month-scoped sequential numbers
//   - Recording payments against invoices and reconciling their status
//
// Key Aggregates:
//   - Customer: A billable party owned by one tenant
//   - Invoice: An issued invoice with its line items; root for totals and status
//   - Payment: Immutable record of money received against one invoice
//
// Value Objects:
//   - InvoiceItem: A single line (description, quantity, unit price, derived total)
//   - InvoiceStatus / PaymentMethod: Enumerations of persisted states
//
// Status reconciliation is a pure function of the invoice total and the sum of
// its payments. Overdue is derived from the due date at read time and is never
// stored.
package billing
