package billing

import (
	"time"

	"github.com/studioware/backoffice/internal/domain/lifecycle"
)

// Kind distinguishes invoices from quotes. The two share one structure and
// differ only in status vocabulary and wording.
type Kind string

const (
	KindInvoice Kind = "invoice"
	KindQuote   Kind = "quote"
)

// IsValid returns true for a recognised document kind.
func (k Kind) IsValid() bool {
	return k == KindInvoice || k == KindQuote
}

// DefaultDueDays is the payment window applied to new documents.
const DefaultDueDays = 14

// LineItem is one billable row on a document. The three derived amounts are
// recomputed from the editable fields and never edited directly.
type LineItem struct {
	ID                 string  `json:"id"`
	Description        string  `json:"description"`
	Quantity           float64 `json:"quantity"`
	UnitPrice          float64 `json:"unit_price"`
	DiscountPercentage float64 `json:"discount_percentage"`
	OriginalAmount     float64 `json:"original_amount"`
	DiscountAmount     float64 `json:"discount_amount"`
	Amount             float64 `json:"amount"`
}

// Customer is a billing contact. Country defaults to the United Kingdom for
// new records.
type Customer struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	Phone      string `json:"phone,omitempty"`
	Address    string `json:"address,omitempty"`
	City       string `json:"city,omitempty"`
	PostalCode string `json:"postal_code,omitempty"`
	Country    string `json:"country,omitempty"`
}

// DefaultCountry is applied to customers created without one.
const DefaultCountry = "United Kingdom"

// Document is an invoice or quote. Customer fields are denormalized onto the
// document at save time so later customer edits do not rewrite history; the
// CustomerID reference is kept alongside. Totals are frozen by Recompute before
// every save and are never an independent source of truth.
type Document struct {
	ID                 string          `json:"id"`
	Kind               Kind            `json:"kind"`
	Number             string          `json:"number"`
	ProjectName        string          `json:"project_name"`
	IssueDate          time.Time       `json:"issue_date"`
	DueDate            time.Time       `json:"due_date"`
	CustomerID         string          `json:"customer_id"`
	Customer           Customer        `json:"customer"`
	Items              []LineItem      `json:"items"`
	AdditionalDiscount float64         `json:"additional_discount"`
	Notes              string          `json:"notes,omitempty"`
	Terms              string          `json:"terms,omitempty"`
	Status             lifecycle.State `json:"status"`
	Totals             Totals          `json:"totals"`
	CreatedAt          time.Time       `json:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at"`
}

// Recompute rederives every line amount and the document totals in place and
// returns the totals. Called synchronously after every edit and immediately
// before any save, so stored figures always match the stored inputs.
func (d *Document) Recompute() Totals {
	for i := range d.Items {
		a := ComputeLine(d.Items[i].Quantity, d.Items[i].UnitPrice, d.Items[i].DiscountPercentage)
		d.Items[i].OriginalAmount = a.OriginalAmount
		d.Items[i].DiscountAmount = a.DiscountAmount
		d.Items[i].Amount = a.Amount
	}
	d.Totals = ComputeTotals(d.Items, d.AdditionalDiscount)
	return d.Totals
}

// Machine returns a lifecycle machine for the document's kind positioned at
// its current status.
func (d *Document) Machine() (*lifecycle.Machine, error) {
	if d.Kind == KindQuote {
		return lifecycle.NewQuoteMachine(d.Status)
	}
	return lifecycle.NewInvoiceMachine(d.Status)
}
