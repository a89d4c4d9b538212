// Package draft holds the single in-progress editable document. Every
// mutation recomputes the derived totals synchronously; nothing here touches
// storage, and an abandoned draft is simply discarded.
package draft

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/studioware/backoffice/internal/billing"
	"github.com/studioware/backoffice/internal/domain/lifecycle"
)

var (
	// ErrLastItem is returned when removing the only remaining line item.
	ErrLastItem = errors.New("a document must keep at least one line item")

	// ErrItemNotFound is returned when an item id does not exist on the draft.
	ErrItemNotFound = errors.New("line item not found")
)

// Draft wraps an editable document.
type Draft struct {
	doc billing.Document
}

// New creates a draft for a new document of the given kind: fresh uuid, the
// next document number derived from the existing numbers, issue date today,
// due date fourteen days out, one empty line item, status draft.
func New(kind billing.Kind, existingNumbers []string, now time.Time) *Draft {
	d := &Draft{
		doc: billing.Document{
			ID:        uuid.NewString(),
			Kind:      kind,
			Number:    billing.NextDocumentNumber(existingNumbers, now),
			IssueDate: now,
			DueDate:   now.AddDate(0, 0, billing.DefaultDueDays),
			Status:    lifecycle.StateDraft,
			CreatedAt: now,
		},
	}
	d.doc.Items = []billing.LineItem{{ID: uuid.NewString()}}
	d.doc.Recompute()
	return d
}

// Load creates a draft over an existing document for editing. The document id
// and number are reused.
func Load(doc billing.Document) *Draft {
	d := &Draft{doc: doc}
	d.doc.Recompute()
	return d
}

// AddItem appends a new zero-valued line item and returns its id.
func (d *Draft) AddItem() string {
	item := billing.LineItem{ID: uuid.NewString()}
	d.doc.Items = append(d.doc.Items, item)
	d.doc.Recompute()
	return item.ID
}

// RemoveItem deletes a line item. The last remaining item cannot be removed.
func (d *Draft) RemoveItem(id string) error {
	if len(d.doc.Items) <= 1 {
		return ErrLastItem
	}
	for i := range d.doc.Items {
		if d.doc.Items[i].ID == id {
			d.doc.Items = append(d.doc.Items[:i], d.doc.Items[i+1:]...)
			d.doc.Recompute()
			return nil
		}
	}
	return ErrItemNotFound
}

// ItemEdit carries the editable fields of a line item. Nil fields are left
// unchanged.
type ItemEdit struct {
	Description        *string
	Quantity           *float64
	UnitPrice          *float64
	DiscountPercentage *float64
}

// UpdateItem applies an edit to a line item and recomputes all derived totals.
func (d *Draft) UpdateItem(id string, edit ItemEdit) error {
	for i := range d.doc.Items {
		if d.doc.Items[i].ID != id {
			continue
		}
		if edit.Description != nil {
			d.doc.Items[i].Description = *edit.Description
		}
		if edit.Quantity != nil {
			d.doc.Items[i].Quantity = *edit.Quantity
		}
		if edit.UnitPrice != nil {
			d.doc.Items[i].UnitPrice = *edit.UnitPrice
		}
		if edit.DiscountPercentage != nil {
			d.doc.Items[i].DiscountPercentage = *edit.DiscountPercentage
		}
		d.doc.Recompute()
		return nil
	}
	return ErrItemNotFound
}

// HeaderEdit carries the editable header fields. Nil fields are left unchanged.
type HeaderEdit struct {
	ProjectName *string
	IssueDate   *time.Time
	DueDate     *time.Time
	Notes       *string
	Terms       *string
}

// UpdateHeader applies header edits.
func (d *Draft) UpdateHeader(edit HeaderEdit) {
	if edit.ProjectName != nil {
		d.doc.ProjectName = *edit.ProjectName
	}
	if edit.IssueDate != nil {
		d.doc.IssueDate = *edit.IssueDate
	}
	if edit.DueDate != nil {
		d.doc.DueDate = *edit.DueDate
	}
	if edit.Notes != nil {
		d.doc.Notes = *edit.Notes
	}
	if edit.Terms != nil {
		d.doc.Terms = *edit.Terms
	}
}

// AttachCustomer snapshots the customer onto the draft and keeps the
// reference id.
func (d *Draft) AttachCustomer(c billing.Customer) {
	if c.Country == "" {
		c.Country = billing.DefaultCountry
	}
	d.doc.CustomerID = c.ID
	d.doc.Customer = c
}

// SetAdditionalDiscount sets the flat discount applied after per-line
// discounts and recomputes the totals.
func (d *Draft) SetAdditionalDiscount(v float64) {
	d.doc.AdditionalDiscount = v
	d.doc.Recompute()
}

// Totals returns the current derived totals.
func (d *Draft) Totals() billing.Totals {
	return d.doc.Totals
}

// Document returns a copy of the draft's document with totals recomputed.
func (d *Draft) Document() billing.Document {
	d.doc.Recompute()
	doc := d.doc
	doc.Items = append([]billing.LineItem(nil), d.doc.Items...)
	return doc
}
