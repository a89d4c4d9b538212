// Package pdf renders a saved document into a PDF for email attachment and
// download. Like the email renderer, it embeds the stored totals verbatim.
package pdf

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"

	"github.com/studioware/backoffice/internal/billing"
)

// Generator produces document PDFs.
type Generator struct {
	companyName string
}

// NewGenerator creates a generator carrying the business identity.
func NewGenerator(companyName string) *Generator {
	return &Generator{companyName: companyName}
}

// Generate renders the document and returns the PDF bytes.
func (g *Generator) Generate(doc *billing.Document) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	title := "INVOICE"
	if doc.Kind == billing.KindQuote {
		title = "QUOTE"
	}

	pdf.SetFont("Arial", "B", 20)
	pdf.Cell(120, 12, title)
	pdf.SetFont("Arial", "", 11)
	pdf.CellFormat(70, 12, doc.Number, "", 1, "R", false, 0, "")

	pdf.SetFont("Arial", "B", 12)
	pdf.Cell(0, 8, g.companyName)
	pdf.Ln(10)

	pdf.SetFont("Arial", "", 10)
	pdf.Cell(95, 6, "Billed to:")
	pdf.CellFormat(95, 6, fmt.Sprintf("Issued: %s", doc.IssueDate.Format("02/01/2006")), "", 1, "R", false, 0, "")
	pdf.Cell(95, 6, doc.Customer.Name)
	pdf.CellFormat(95, 6, fmt.Sprintf("Due: %s", doc.DueDate.Format("02/01/2006")), "", 1, "R", false, 0, "")
	for _, line := range []string{doc.Customer.Address, doc.Customer.City, doc.Customer.PostalCode, doc.Customer.Country} {
		if line != "" {
			pdf.Cell(0, 6, line)
			pdf.Ln(6)
		}
	}
	if doc.ProjectName != "" {
		pdf.Ln(2)
		pdf.SetFont("Arial", "B", 10)
		pdf.Cell(0, 6, fmt.Sprintf("Project: %s", doc.ProjectName))
		pdf.Ln(8)
	}

	// Items table
	pdf.SetFont("Arial", "B", 10)
	pdf.SetFillColor(240, 240, 240)
	pdf.CellFormat(80, 8, "Description", "1", 0, "L", true, 0, "")
	pdf.CellFormat(20, 8, "Qty", "1", 0, "R", true, 0, "")
	pdf.CellFormat(30, 8, "Unit Price", "1", 0, "R", true, 0, "")
	pdf.CellFormat(25, 8, "Discount", "1", 0, "R", true, 0, "")
	pdf.CellFormat(35, 8, "Amount", "1", 1, "R", true, 0, "")

	pdf.SetFont("Arial", "", 10)
	for _, item := range doc.Items {
		discount := "-"
		if item.DiscountPercentage != 0 {
			discount = fmt.Sprintf("%.2f%%", item.DiscountPercentage)
		}
		pdf.CellFormat(80, 8, item.Description, "1", 0, "L", false, 0, "")
		pdf.CellFormat(20, 8, fmt.Sprintf("%g", item.Quantity), "1", 0, "R", false, 0, "")
		pdf.CellFormat(30, 8, fmt.Sprintf("%.2f", billing.Round2(item.UnitPrice)), "1", 0, "R", false, 0, "")
		pdf.CellFormat(25, 8, discount, "1", 0, "R", false, 0, "")
		pdf.CellFormat(35, 8, fmt.Sprintf("%.2f", billing.Round2(item.Amount)), "1", 1, "R", false, 0, "")
	}

	// Totals block
	pdf.Ln(2)
	writeTotal := func(label string, v float64, bold bool) {
		if bold {
			pdf.SetFont("Arial", "B", 10)
		} else {
			pdf.SetFont("Arial", "", 10)
		}
		pdf.CellFormat(130, 7, "", "", 0, "", false, 0, "")
		pdf.CellFormat(30, 7, label, "", 0, "R", false, 0, "")
		pdf.CellFormat(30, 7, fmt.Sprintf("%.2f", billing.Round2(v)), "", 1, "R", false, 0, "")
	}
	if doc.Totals.TotalDiscount != 0 {
		writeTotal("Before discounts", doc.Totals.OriginalSubtotal, false)
		writeTotal("Discounts", -doc.Totals.TotalDiscount, false)
	}
	writeTotal("Subtotal", doc.Totals.Subtotal, false)
	writeTotal("Total due", doc.Totals.Total, true)

	if doc.Notes != "" {
		pdf.Ln(4)
		pdf.SetFont("Arial", "B", 9)
		pdf.Cell(0, 5, "Notes")
		pdf.Ln(5)
		pdf.SetFont("Arial", "", 9)
		pdf.MultiCell(0, 5, doc.Notes, "", "L", false)
	}
	if doc.Terms != "" {
		pdf.Ln(2)
		pdf.SetFont("Arial", "B", 9)
		pdf.Cell(0, 5, "Terms")
		pdf.Ln(5)
		pdf.SetFont("Arial", "", 9)
		pdf.MultiCell(0, 5, doc.Terms, "", "L", false)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to generate PDF: %w", err)
	}
	return buf.Bytes(), nil
}

// Filename returns the attachment name for a document PDF.
func Filename(doc *billing.Document) string {
	kind := "invoice"
	if doc.Kind == billing.KindQuote {
		kind = "quote"
	}
	safe := make([]rune, 0, len(doc.Number))
	for _, r := range doc.Number {
		if r == '/' {
			r = '-'
		}
		safe = append(safe, r)
	}
	return fmt.Sprintf("%s-%s.pdf", kind, string(safe))
}
