package printing

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/backoffice/backend/internal/domain/ledger"
)

// InvoiceHTML renders an order into the invoice document fed to the PDF
// renderer.
func InvoiceHTML(order *ledger.Order) (string, error) {
	var buf bytes.Buffer
	if err := invoiceTemplate.Execute(&buf, order); err != nil {
		return "", fmt.Errorf("failed to render invoice template: %w", err)
	}
	return buf.String(), nil
}

var invoiceTemplate = template.Must(template.New("invoice").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="UTF-8">
<title>Invoice {{.Ref}}</title>
<style>
  body { font-family: Helvetica, Arial, sans-serif; font-size: 12px; color: #222; }
  h1 { font-size: 20px; margin-bottom: 2px; }
  .muted { color: #666; }
  .block { margin-top: 14px; }
  table { width: 100%; border-collapse: collapse; margin-top: 6px; }
  th, td { border: 1px solid #bbb; padding: 5px 7px; text-align: left; }
  th { background: #f0f0f0; }
  td.num, th.num { text-align: right; }
  .summary { width: 45%; margin-left: 55%; }
  .summary td { border: none; padding: 3px 7px; }
  .summary tr.total td { border-top: 1px solid #222; font-weight: bold; }
</style>
</head>
<body>
<h1>Invoice</h1>
<div class="muted">Order {{.Ref}} &middot; {{.CreatedAt.Format "02 Jan 2006"}}</div>

<div class="block">
  <strong>{{.Customer.ShopName}}</strong><br>
  {{if .Customer.Name}}{{.Customer.Name}}<br>{{end}}
  {{if .Customer.Address}}{{.Customer.Address}}<br>{{end}}
  {{.Customer.Town}}{{if .Customer.Town}}, {{end}}{{.Customer.State}} {{.Customer.Pincode}}<br>
  <span class="muted">{{.Customer.Ref}}</span>
</div>

<div class="block">
<table>
  <tr><th>#</th><th>Item</th><th class="num">Weight</th><th class="num">Rate</th><th class="num">Qty</th><th class="num">Amount</th></tr>
  {{range $i, $item := .Items}}
  <tr>
    <td>{{$item.ProductRef}}</td>
    <td>{{$item.Name}}</td>
    <td class="num">{{$item.Weight}} {{$item.Unit}}</td>
    <td class="num">{{$item.Rate}}</td>
    <td class="num">{{$item.Quantity}}</td>
    <td class="num">{{$item.TotalAmount}}</td>
  </tr>
  {{end}}
</table>
</div>

{{if .HasFreeProducts}}
<div class="block">
<strong>Free items</strong>
<table>
  <tr><th>#</th><th>Item</th><th class="num">Qty</th></tr>
  {{range .FreeItems}}
  <tr><td>{{.ProductRef}}</td><td>{{.Name}}</td><td class="num">{{.Quantity}}</td></tr>
  {{end}}
</table>
</div>
{{end}}

<div class="block">
<table class="summary">
  <tr><td>Order amount</td><td class="num">{{.Billing.OrderAmount}}</td></tr>
  <tr><td>Delivery charges</td><td class="num">{{.Billing.DeliveryCharges}}</td></tr>
  <tr><td>Past due</td><td class="num">{{.Billing.PastOrderDue}}</td></tr>
  <tr><td>Money received ({{.Billing.PaymentMethod}})</td><td class="num">{{.Billing.MoneyGiven}}</td></tr>
  <tr class="total"><td>Outstanding</td><td class="num">{{.Billing.FinalAmount}}</td></tr>
</table>
</div>
</body>
</html>`))
