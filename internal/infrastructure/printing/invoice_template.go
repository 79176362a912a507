package printing

import (
	"bytes"
	"fmt"
	"html/template"
	"time"

	"github.com/shopspring/decimal"
)

// InvoiceDocument carries the data rendered into the invoice template.
// Amounts arrive as decimals and are formatted inside the template.
type InvoiceDocument struct {
	Number      string
	Status      string
	IssueDate   time.Time
	DueDate     *time.Time
	IssuerName  string
	Customer    InvoiceDocumentParty
	Items       []InvoiceDocumentItem
	Payments    []InvoiceDocumentPayment
	TotalAmount decimal.Decimal
	PaidAmount  decimal.Decimal
	Balance     decimal.Decimal
}

// InvoiceDocumentParty identifies the billed customer
type InvoiceDocumentParty struct {
	Name    string
	Email   string
	Phone   string
	Address string
}

// InvoiceDocumentItem is a rendered line item
type InvoiceDocumentItem struct {
	Description string
	Quantity    int
	UnitPrice   decimal.Decimal
	TotalPrice  decimal.Decimal
}

// InvoiceDocumentPayment is a rendered payment row
type InvoiceDocumentPayment struct {
	Date      time.Time
	Amount    decimal.Decimal
	Method    string
	Reference string
}

var invoiceFuncMap = template.FuncMap{
	"formatMoney": func(d decimal.Decimal) string {
		return d.StringFixed(2)
	},
	"formatDate": func(t time.Time) string {
		return t.Format("2006-01-02")
	},
	"formatDatePtr": func(t *time.Time) string {
		if t == nil {
			return "-"
		}
		return t.Format("2006-01-02")
	},
}

var invoiceTemplate = template.Must(template.New("invoice").Funcs(invoiceFuncMap).Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="UTF-8">
<title>Invoice {{.Number}}</title>
<style>
  body { font-family: "Helvetica Neue", Arial, sans-serif; color: #1f2933; font-size: 12px; }
  h1 { font-size: 22px; margin-bottom: 0; }
  .meta { color: #616e7c; margin-top: 4px; }
  .status { display: inline-block; padding: 2px 10px; border-radius: 10px; background: #e4e7eb; font-weight: bold; }
  .parties { margin: 24px 0; width: 100%; }
  .parties td { vertical-align: top; width: 50%; }
  .label { color: #616e7c; text-transform: uppercase; font-size: 10px; letter-spacing: 0.05em; }
  table.items { width: 100%; border-collapse: collapse; margin-top: 16px; }
  table.items th { text-align: left; border-bottom: 2px solid #1f2933; padding: 6px 4px; font-size: 11px; }
  table.items td { border-bottom: 1px solid #e4e7eb; padding: 6px 4px; }
  td.num, th.num { text-align: right; }
  .totals { margin-top: 12px; width: 100%; }
  .totals td { padding: 3px 4px; }
  .totals .grand { font-weight: bold; font-size: 14px; border-top: 2px solid #1f2933; }
  .payments { margin-top: 24px; }
</style>
</head>
<body>
  <h1>Invoice {{.Number}}</h1>
  <div class="meta">
    Issued {{formatDate .IssueDate}} &middot; Due {{formatDatePtr .DueDate}}
    &nbsp; <span class="status">{{.Status}}</span>
  </div>

  <table class="parties">
    <tr>
      <td>
        <div class="label">From</div>
        <div>{{.IssuerName}}</div>
      </td>
      <td>
        <div class="label">Bill to</div>
        <div>{{.Customer.Name}}</div>
        {{if .Customer.Address}}<div>{{.Customer.Address}}</div>{{end}}
        {{if .Customer.Email}}<div>{{.Customer.Email}}</div>{{end}}
        {{if .Customer.Phone}}<div>{{.Customer.Phone}}</div>{{end}}
      </td>
    </tr>
  </table>

  <table class="items">
    <thead>
      <tr>
        <th>Description</th>
        <th class="num">Qty</th>
        <th class="num">Unit price</th>
        <th class="num">Amount</th>
      </tr>
    </thead>
    <tbody>
      {{range .Items}}
      <tr>
        <td>{{.Description}}</td>
        <td class="num">{{.Quantity}}</td>
        <td class="num">{{formatMoney .UnitPrice}}</td>
        <td class="num">{{formatMoney .TotalPrice}}</td>
      </tr>
      {{end}}
    </tbody>
  </table>

  <table class="totals">
    <tr><td></td><td class="num" style="width: 120px;">Total</td><td class="num" style="width: 100px;">{{formatMoney .TotalAmount}}</td></tr>
    <tr><td></td><td class="num">Paid</td><td class="num">{{formatMoney .PaidAmount}}</td></tr>
    <tr><td></td><td class="num grand">Balance due</td><td class="num grand">{{formatMoney .Balance}}</td></tr>
  </table>

  {{if .Payments}}
  <div class="payments">
    <div class="label">Payments received</div>
    <table class="items">
      <thead>
        <tr><th>Date</th><th>Method</th><th>Reference</th><th class="num">Amount</th></tr>
      </thead>
      <tbody>
        {{range .Payments}}
        <tr>
          <td>{{formatDate .Date}}</td>
          <td>{{.Method}}</td>
          <td>{{.Reference}}</td>
          <td class="num">{{formatMoney .Amount}}</td>
        </tr>
        {{end}}
      </tbody>
    </table>
  </div>
  {{end}}
</body>
</html>
`))

// RenderInvoiceHTML renders the invoice document to a complete HTML page
func RenderInvoiceHTML(doc InvoiceDocument) (string, error) {
	var buf bytes.Buffer
	if err := invoiceTemplate.Execute(&buf, doc); err != nil {
		return "", fmt.Errorf("failed to render invoice template: %w", err)
	}
	return buf.String(), nil
}
