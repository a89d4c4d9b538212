package draft

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/studioware/backoffice/internal/billing"
	"github.com/studioware/backoffice/internal/domain/lifecycle"
)

func strPtr(s string) *string   { return &s }
func f64Ptr(v float64) *float64 { return &v }

func TestNew(t *testing.T) {
	now := time.Date(2024, time.June, 1, 9, 0, 0, 0, time.UTC)
	d := New(billing.KindInvoice, []string{"31/05/2024-004"}, now)
	doc := d.Document()

	assert.NotEmpty(t, doc.ID)
	assert.Equal(t, billing.KindInvoice, doc.Kind)
	assert.Equal(t, "01/06/2024-005", doc.Number)
	assert.Equal(t, now, doc.IssueDate)
	assert.Equal(t, now.AddDate(0, 0, billing.DefaultDueDays), doc.DueDate)
	assert.Equal(t, lifecycle.StateDraft, doc.Status)
	require.Len(t, doc.Items, 1)
	assert.NotEmpty(t, doc.Items[0].ID)
	assert.Zero(t, doc.Totals.Total)
}

func TestAddAndRemoveItem(t *testing.T) {
	d := New(billing.KindQuote, nil, time.Now())

	id := d.AddItem()
	assert.Len(t, d.Document().Items, 2)

	require.NoError(t, d.RemoveItem(id))
	assert.Len(t, d.Document().Items, 1)
}

func TestRemoveLastItemRejected(t *testing.T) {
	d := New(billing.KindInvoice, nil, time.Now())
	only := d.Document().Items[0].ID

	err := d.RemoveItem(only)
	assert.ErrorIs(t, err, ErrLastItem)
	assert.Len(t, d.Document().Items, 1)
}

func TestRemoveItemNotFound(t *testing.T) {
	d := New(billing.KindInvoice, nil, time.Now())
	d.AddItem()
	assert.ErrorIs(t, d.RemoveItem("nope"), ErrItemNotFound)
}

func TestUpdateItemRecomputesTotals(t *testing.T) {
	d := New(billing.KindInvoice, nil, time.Now())
	id := d.Document().Items[0].ID

	err := d.UpdateItem(id, ItemEdit{
		Description: strPtr("Consulting"),
		Quantity:    f64Ptr(2),
		UnitPrice:   f64Ptr(100),
	})
	require.NoError(t, err)
	assert.InDelta(t, 200, d.Totals().Total, 1e-9)

	// partial edit leaves the other fields alone
	err = d.UpdateItem(id, ItemEdit{DiscountPercentage: f64Ptr(10)})
	require.NoError(t, err)

	doc := d.Document()
	assert.Equal(t, "Consulting", doc.Items[0].Description)
	assert.InDelta(t, 2, doc.Items[0].Quantity, 1e-9)
	assert.InDelta(t, 180, doc.Totals.Total, 1e-9)
}

func TestUpdateItemNotFound(t *testing.T) {
	d := New(billing.KindInvoice, nil, time.Now())
	err := d.UpdateItem("missing", ItemEdit{Description: strPtr("x")})
	assert.ErrorIs(t, err, ErrItemNotFound)
}

func TestSetAdditionalDiscount(t *testing.T) {
	d := New(billing.KindInvoice, nil, time.Now())
	id := d.Document().Items[0].ID
	require.NoError(t, d.UpdateItem(id, ItemEdit{Quantity: f64Ptr(1), UnitPrice: f64Ptr(100)}))

	d.SetAdditionalDiscount(30)
	assert.InDelta(t, 70, d.Totals().Total, 1e-9)

	// over-discount is allowed and goes negative
	d.SetAdditionalDiscount(150)
	assert.InDelta(t, -50, d.Totals().Total, 1e-9)
}

func TestUpdateHeader(t *testing.T) {
	d := New(billing.KindQuote, nil, time.Now())
	due := time.Date(2024, time.July, 1, 0, 0, 0, 0, time.UTC)

	d.UpdateHeader(HeaderEdit{
		ProjectName: strPtr("Brand refresh"),
		DueDate:     &due,
		Notes:       strPtr("Thanks for your business"),
	})

	doc := d.Document()
	assert.Equal(t, "Brand refresh", doc.ProjectName)
	assert.Equal(t, due, doc.DueDate)
	assert.Equal(t, "Thanks for your business", doc.Notes)
}

func TestAttachCustomerDefaultsCountry(t *testing.T) {
	d := New(billing.KindInvoice, nil, time.Now())

	d.AttachCustomer(billing.Customer{ID: "c1", Name: "Acme", Email: "a@acme.example"})
	doc := d.Document()
	assert.Equal(t, "c1", doc.CustomerID)
	assert.Equal(t, billing.DefaultCountry, doc.Customer.Country)

	d.AttachCustomer(billing.Customer{ID: "c2", Name: "NV", Country: "Netherlands"})
	assert.Equal(t, "Netherlands", d.Document().Customer.Country)
}

func TestLoadRecomputesStaleTotals(t *testing.T) {
	doc := billing.Document{
		ID:     "doc-1",
		Kind:   billing.KindInvoice,
		Status: lifecycle.StateDraft,
		Items:  []billing.LineItem{{ID: "i1", Quantity: 2, UnitPrice: 100}},
	}
	// stored totals are stale on purpose
	doc.Totals.Total = 1

	d := Load(doc)
	assert.InDelta(t, 200, d.Totals().Total, 1e-9)
}

func TestDocumentReturnsCopy(t *testing.T) {
	d := New(billing.KindInvoice, nil, time.Now())
	first := d.Document()
	first.Items[0].Description = "mutated"

	assert.Empty(t, d.Document().Items[0].Description)
}
