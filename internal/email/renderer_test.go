package email

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/studioware/backoffice/internal/billing"
)

func renderedDocument() *billing.Document {
	doc := &billing.Document{
		ID:          "doc-1",
		Kind:        billing.KindInvoice,
		Number:      "15/03/2024-007",
		ProjectName: "Website redesign",
		IssueDate:   time.Date(2024, time.March, 15, 0, 0, 0, 0, time.UTC),
		DueDate:     time.Date(2024, time.March, 29, 0, 0, 0, 0, time.UTC),
		Customer: billing.Customer{
			Name:       "Acme Ltd",
			Email:      "accounts@acme.example",
			Address:    "1 High Street",
			City:       "London",
			PostalCode: "SW1A 1AA",
			Country:    "United Kingdom",
		},
		Items: []billing.LineItem{
			{Description: "Design work", Quantity: 2, UnitPrice: 100, DiscountPercentage: 10},
		},
		AdditionalDiscount: 5,
		Notes:              "Payment within 14 days please",
	}
	doc.Recompute()
	return doc
}

func TestRenderEmbedsStoredTotals(t *testing.T) {
	doc := renderedDocument()
	html, err := NewRenderer("Studioware").Render(doc)
	require.NoError(t, err)

	assert.Contains(t, html, "Invoice 15/03/2024-007")
	assert.Contains(t, html, "Studioware")
	assert.Contains(t, html, "Acme Ltd")
	assert.Contains(t, html, "Website redesign")
	assert.Contains(t, html, "Issued: 15/03/2024")
	assert.Contains(t, html, "Due: 29/03/2024")
	assert.Contains(t, html, "Design work")
	assert.Contains(t, html, "&pound;180.00")
	assert.Contains(t, html, "&pound;175.00")
	assert.Contains(t, html, "12.50%")
	assert.Contains(t, html, "Payment within 14 days please")
}

func TestRenderUsesStoredTotalsVerbatim(t *testing.T) {
	doc := renderedDocument()
	// a stale stored total must appear as-is; the renderer never recomputes
	doc.Totals.Total = 999

	html, err := NewRenderer("Studioware").Render(doc)
	require.NoError(t, err)
	assert.Contains(t, html, "&pound;999.00")
	assert.NotContains(t, html, "<strong>&pound;175.00</strong>")
}

func TestRenderHidesDiscountBlockWhenNoDiscounts(t *testing.T) {
	doc := renderedDocument()
	doc.Items[0].DiscountPercentage = 0
	doc.AdditionalDiscount = 0
	doc.Recompute()

	html, err := NewRenderer("Studioware").Render(doc)
	require.NoError(t, err)
	assert.NotContains(t, html, "Total discount")
	assert.Contains(t, html, "&pound;200.00")
}

func TestRenderEscapesCustomerInput(t *testing.T) {
	doc := renderedDocument()
	doc.Customer.Name = `<script>alert("x")</script>`

	html, err := NewRenderer("Studioware").Render(doc)
	require.NoError(t, err)
	assert.NotContains(t, html, "<script>")
}

func TestRenderQuoteTitle(t *testing.T) {
	doc := renderedDocument()
	doc.Kind = billing.KindQuote

	html, err := NewRenderer("Studioware").Render(doc)
	require.NoError(t, err)
	assert.True(t, strings.Contains(html, "Quote 15/03/2024-007"))
}

func TestSubject(t *testing.T) {
	r := NewRenderer("Studioware")
	doc := renderedDocument()
	assert.Equal(t, "Invoice 15/03/2024-007 from Studioware", r.Subject(doc))

	doc.Kind = billing.KindQuote
	assert.Equal(t, "Quote 15/03/2024-007 from Studioware", r.Subject(doc))
}

func TestQuantityFormatting(t *testing.T) {
	assert.Equal(t, "2", quantity(2))
	assert.Equal(t, "2.5", quantity(2.5))
	assert.Equal(t, "0.25", quantity(0.25))
}
