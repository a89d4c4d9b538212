package persistence

import (
	"context"
	"database/sql"

	"github.com/studioware/backoffice/internal/billing"
	"github.com/studioware/backoffice/internal/repository"
	"github.com/studioware/backoffice/pkg/database"
)

// DurableStore is the authoritative backing store for documents. Routine list
// reads never touch it; it is written on save and consulted by the
// reconciliation operations.
type DurableStore interface {
	// SaveDocument writes customer, header, and items in one transaction.
	SaveDocument(ctx context.Context, doc *billing.Document) error

	// FetchAll returns every document with nested customer and items.
	FetchAll(ctx context.Context) ([]billing.Document, error)

	// DeleteDocument removes a document and its items.
	DeleteDocument(ctx context.Context, id string) error

	// The three granular writes used by the migrate operation, which keeps
	// the observed per-entity best-effort behavior instead of a transaction.
	UpsertCustomer(ctx context.Context, c *billing.Customer) error
	UpsertHeader(ctx context.Context, doc *billing.Document) error
	ReplaceItems(ctx context.Context, documentID string, items []billing.LineItem) error
}

// SQLStore implements DurableStore over the Postgres repositories.
type SQLStore struct {
	db        *database.DB
	customers *repository.CustomerRepository
	documents *repository.DocumentRepository
	items     *repository.LineItemRepository
}

// NewSQLStore creates the durable store adapter.
func NewSQLStore(
	db *database.DB,
	customers *repository.CustomerRepository,
	documents *repository.DocumentRepository,
	items *repository.LineItemRepository,
) *SQLStore {
	return &SQLStore{
		db:        db,
		customers: customers,
		documents: documents,
		items:     items,
	}
}

// SaveDocument writes the customer snapshot source, the header, and the line
// items inside a single transaction, so a partial save cannot be observed.
func (s *SQLStore) SaveDocument(ctx context.Context, doc *billing.Document) error {
	return s.db.WithTransaction(func(tx *sql.Tx) error {
		if doc.CustomerID != "" {
			customer := doc.Customer
			customer.ID = doc.CustomerID
			if err := s.customers.Upsert(ctx, tx, &customer); err != nil {
				return err
			}
		}
		if err := s.documents.UpsertHeader(ctx, tx, doc); err != nil {
			return err
		}
		return s.items.ReplaceForDocument(ctx, tx, doc.ID, doc.Items)
	})
}

// FetchAll returns every document in the durable store.
func (s *SQLStore) FetchAll(ctx context.Context) ([]billing.Document, error) {
	return s.documents.FetchAll(ctx)
}

// DeleteDocument removes a document; line items cascade.
func (s *SQLStore) DeleteDocument(ctx context.Context, id string) error {
	return s.documents.Delete(ctx, id)
}

// UpsertCustomer writes one customer outside a transaction.
func (s *SQLStore) UpsertCustomer(ctx context.Context, c *billing.Customer) error {
	return s.customers.Upsert(ctx, nil, c)
}

// UpsertHeader writes one document header outside a transaction.
func (s *SQLStore) UpsertHeader(ctx context.Context, doc *billing.Document) error {
	return s.documents.UpsertHeader(ctx, nil, doc)
}

// ReplaceItems rewrites the line items of one document outside a transaction.
func (s *SQLStore) ReplaceItems(ctx context.Context, documentID string, items []billing.LineItem) error {
	return s.items.ReplaceForDocument(ctx, nil, documentID, items)
}
