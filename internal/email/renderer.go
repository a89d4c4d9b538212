package email

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"

	"github.com/studioware/backoffice/internal/billing"
)

// documentView is the frozen view-model handed to the template. Every figure
// is preformatted from the document's stored totals; the renderer never
// recomputes, so the emailed numbers exactly match what was saved.
type documentView struct {
	Title              string
	CompanyName        string
	Number             string
	ProjectName        string
	IssueDate          string
	DueDate            string
	CustomerName       string
	Address            []string
	Items              []itemView
	HasDiscounts       bool
	OriginalSubtotal   string
	Subtotal           string
	ItemDiscounts      string
	AdditionalDiscount string
	TotalDiscount      string
	DiscountPercentage string
	Total              string
	Notes              string
	Terms              string
}

type itemView struct {
	Description string
	Quantity    string
	UnitPrice   string
	Discount    string
	Amount      string
}

const documentTemplate = `<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; color: #222; max-width: 640px; margin: 0 auto;">
  <h2>{{.Title}} {{.Number}}</h2>
  <p><strong>{{.CompanyName}}</strong></p>
  <p>
    Project: {{.ProjectName}}<br>
    Issued: {{.IssueDate}}<br>
    Due: {{.DueDate}}
  </p>
  <p>
    <strong>Billed to:</strong><br>
    {{.CustomerName}}<br>
    {{- range .Address}}
    {{.}}<br>
    {{- end}}
  </p>
  <table width="100%" cellpadding="6" cellspacing="0" border="0" style="border-collapse: collapse;">
    <tr style="background: #f2f2f2; text-align: left;">
      <th>Description</th><th>Qty</th><th>Unit Price</th><th>Discount</th><th>Amount</th>
    </tr>
    {{- range .Items}}
    <tr style="border-bottom: 1px solid #ddd;">
      <td>{{.Description}}</td>
      <td>{{.Quantity}}</td>
      <td>&pound;{{.UnitPrice}}</td>
      <td>{{.Discount}}</td>
      <td>&pound;{{.Amount}}</td>
    </tr>
    {{- end}}
  </table>
  <table align="right" cellpadding="4" cellspacing="0" border="0">
    {{- if .HasDiscounts}}
    <tr><td>Subtotal before discounts:</td><td align="right">&pound;{{.OriginalSubtotal}}</td></tr>
    <tr><td>Item discounts:</td><td align="right">-&pound;{{.ItemDiscounts}}</td></tr>
    <tr><td>Additional discount:</td><td align="right">-&pound;{{.AdditionalDiscount}}</td></tr>
    <tr><td>Total discount ({{.DiscountPercentage}}%):</td><td align="right">-&pound;{{.TotalDiscount}}</td></tr>
    {{- end}}
    <tr><td>Subtotal:</td><td align="right">&pound;{{.Subtotal}}</td></tr>
    <tr><td><strong>Total due:</strong></td><td align="right"><strong>&pound;{{.Total}}</strong></td></tr>
  </table>
  <div style="clear: both;"></div>
  {{- if .Notes}}
  <p><strong>Notes</strong><br>{{.Notes}}</p>
  {{- end}}
  {{- if .Terms}}
  <p style="color: #666; font-size: 12px;"><strong>Terms</strong><br>{{.Terms}}</p>
  {{- end}}
</body>
</html>
`

var docTmpl = template.Must(template.New("document").Parse(documentTemplate))

// Renderer formats a saved document into the HTML email body.
type Renderer struct {
	companyName string
}

// NewRenderer creates a renderer carrying the business identity.
func NewRenderer(companyName string) *Renderer {
	return &Renderer{companyName: companyName}
}

// Render produces the HTML body for a document. The document's stored totals
// are embedded verbatim.
func (r *Renderer) Render(doc *billing.Document) (string, error) {
	view := documentView{
		Title:              titleFor(doc.Kind),
		CompanyName:        r.companyName,
		Number:             doc.Number,
		ProjectName:        doc.ProjectName,
		IssueDate:          doc.IssueDate.Format("02/01/2006"),
		DueDate:            doc.DueDate.Format("02/01/2006"),
		CustomerName:       doc.Customer.Name,
		Address:            addressLines(doc.Customer),
		HasDiscounts:       doc.Totals.TotalDiscount != 0,
		OriginalSubtotal:   money(doc.Totals.OriginalSubtotal),
		Subtotal:           money(doc.Totals.Subtotal),
		ItemDiscounts:      money(doc.Totals.TotalItemDiscounts),
		AdditionalDiscount: money(doc.AdditionalDiscount),
		TotalDiscount:      money(doc.Totals.TotalDiscount),
		DiscountPercentage: money(doc.Totals.DiscountPercentage),
		Total:              money(doc.Totals.Total),
		Notes:              doc.Notes,
		Terms:              doc.Terms,
	}
	for _, item := range doc.Items {
		discount := "-"
		if item.DiscountPercentage != 0 {
			discount = money(item.DiscountPercentage) + "%"
		}
		view.Items = append(view.Items, itemView{
			Description: item.Description,
			Quantity:    quantity(item.Quantity),
			UnitPrice:   money(item.UnitPrice),
			Discount:    discount,
			Amount:      money(item.Amount),
		})
	}

	var buf bytes.Buffer
	if err := docTmpl.Execute(&buf, view); err != nil {
		return "", fmt.Errorf("failed to render document email: %w", err)
	}
	return buf.String(), nil
}

// Subject builds the email subject line for a document.
func (r *Renderer) Subject(doc *billing.Document) string {
	return fmt.Sprintf("%s %s from %s", titleFor(doc.Kind), doc.Number, r.companyName)
}

func titleFor(kind billing.Kind) string {
	if kind == billing.KindQuote {
		return "Quote"
	}
	return "Invoice"
}

func money(v float64) string {
	return fmt.Sprintf("%.2f", billing.Round2(v))
}

// quantity trims trailing zeros so whole quantities render without decimals.
func quantity(v float64) string {
	s := fmt.Sprintf("%.2f", v)
	s = strings.TrimRight(s, "0")
	return strings.TrimRight(s, ".")
}

func addressLines(c billing.Customer) []string {
	var lines []string
	for _, part := range []string{c.Address, c.City, c.PostalCode, c.Country} {
		if strings.TrimSpace(part) != "" {
			lines = append(lines, part)
		}
	}
	return lines
}
