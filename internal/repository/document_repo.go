package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/studioware/backoffice/internal/billing"
	"github.com/studioware/backoffice/internal/domain/lifecycle"
)

// DocumentRepository handles invoice/quote header database operations. The
// customer snapshot is denormalized onto the header so historical documents
// are immune to later customer edits.
type DocumentRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewDocumentRepository creates a new document repository
func NewDocumentRepository(db *sql.DB, logger *zap.Logger) *DocumentRepository {
	return &DocumentRepository{db: db, logger: logger}
}

func (r *DocumentRepository) exec(ctx context.Context, tx *sql.Tx, query string, args ...any) (sql.Result, error) {
	if tx != nil {
		return tx.ExecContext(ctx, query, args...)
	}
	return r.db.ExecContext(ctx, query, args...)
}

// UpsertHeader inserts or updates a document header keyed by id. Stored totals
// are the frozen figures computed at save time.
func (r *DocumentRepository) UpsertHeader(ctx context.Context, tx *sql.Tx, d *billing.Document) error {
	query := `
		INSERT INTO documents (
			id, kind, number, project_name, issue_date, due_date, customer_id,
			customer_name, customer_email, customer_phone, customer_address,
			customer_city, customer_postal_code, customer_country,
			additional_discount, notes, terms, status,
			original_subtotal, subtotal, total_item_discounts, total_discount,
			discount_percentage, total, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14,
			$15, $16, $17, $18, $19, $20, $21, $22, $23, $24, $25
		)
		ON CONFLICT (id) DO UPDATE SET
			number = EXCLUDED.number,
			project_name = EXCLUDED.project_name,
			issue_date = EXCLUDED.issue_date,
			due_date = EXCLUDED.due_date,
			customer_id = EXCLUDED.customer_id,
			customer_name = EXCLUDED.customer_name,
			customer_email = EXCLUDED.customer_email,
			customer_phone = EXCLUDED.customer_phone,
			customer_address = EXCLUDED.customer_address,
			customer_city = EXCLUDED.customer_city,
			customer_postal_code = EXCLUDED.customer_postal_code,
			customer_country = EXCLUDED.customer_country,
			additional_discount = EXCLUDED.additional_discount,
			notes = EXCLUDED.notes,
			terms = EXCLUDED.terms,
			status = EXCLUDED.status,
			original_subtotal = EXCLUDED.original_subtotal,
			subtotal = EXCLUDED.subtotal,
			total_item_discounts = EXCLUDED.total_item_discounts,
			total_discount = EXCLUDED.total_discount,
			discount_percentage = EXCLUDED.discount_percentage,
			total = EXCLUDED.total,
			updated_at = EXCLUDED.updated_at
	`
	_, err := r.exec(ctx, tx, query,
		d.ID, string(d.Kind), d.Number, d.ProjectName, d.IssueDate, d.DueDate,
		nullableID(d.CustomerID),
		d.Customer.Name, d.Customer.Email, d.Customer.Phone, d.Customer.Address,
		d.Customer.City, d.Customer.PostalCode, d.Customer.Country,
		d.AdditionalDiscount, d.Notes, d.Terms, string(d.Status),
		d.Totals.OriginalSubtotal, d.Totals.Subtotal, d.Totals.TotalItemDiscounts,
		d.Totals.TotalDiscount, d.Totals.DiscountPercentage, d.Totals.Total,
		time.Now().UTC())
	if err != nil {
		r.logger.Error("Failed to upsert document header",
			zap.String("document_id", d.ID),
			zap.String("number", d.Number),
			zap.Error(err))
		return fmt.Errorf("failed to upsert document header: %w", err)
	}
	return nil
}

// Delete removes a document by id; line items cascade
func (r *DocumentRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM documents WHERE id = $1", id); err != nil {
		r.logger.Error("Failed to delete document", zap.String("document_id", id), zap.Error(err))
		return fmt.Errorf("failed to delete document: %w", err)
	}
	return nil
}

// FetchAll returns every document with its nested customer snapshot and line
// items. This is the bulk read backing the cache sync operation.
func (r *DocumentRepository) FetchAll(ctx context.Context) ([]billing.Document, error) {
	query := `
		SELECT
			id, kind, number, project_name, issue_date, due_date, customer_id,
			customer_name, customer_email, customer_phone, customer_address,
			customer_city, customer_postal_code, customer_country,
			additional_discount, notes, terms, status,
			original_subtotal, subtotal, total_item_discounts, total_discount,
			discount_percentage, total, created_at, updated_at
		FROM documents
		ORDER BY created_at DESC
	`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		r.logger.Error("Failed to fetch documents", zap.Error(err))
		return nil, fmt.Errorf("failed to fetch documents: %w", err)
	}
	defer rows.Close()

	var docs []billing.Document
	index := make(map[string]int)
	for rows.Next() {
		var d billing.Document
		var kind, status string
		var customerID sql.NullString
		err := rows.Scan(
			&d.ID, &kind, &d.Number, &d.ProjectName, &d.IssueDate, &d.DueDate, &customerID,
			&d.Customer.Name, &d.Customer.Email, &d.Customer.Phone, &d.Customer.Address,
			&d.Customer.City, &d.Customer.PostalCode, &d.Customer.Country,
			&d.AdditionalDiscount, &d.Notes, &d.Terms, &status,
			&d.Totals.OriginalSubtotal, &d.Totals.Subtotal, &d.Totals.TotalItemDiscounts,
			&d.Totals.TotalDiscount, &d.Totals.DiscountPercentage, &d.Totals.Total,
			&d.CreatedAt, &d.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan document: %w", err)
		}
		d.Kind = billing.Kind(kind)
		d.Status = lifecycle.State(status)
		if customerID.Valid {
			d.CustomerID = customerID.String
			d.Customer.ID = customerID.String
		}
		index[d.ID] = len(docs)
		docs = append(docs, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := r.attachItems(ctx, docs, index); err != nil {
		return nil, err
	}
	return docs, nil
}

// attachItems loads every line item and distributes them onto the documents
func (r *DocumentRepository) attachItems(ctx context.Context, docs []billing.Document, index map[string]int) error {
	if len(docs) == 0 {
		return nil
	}
	query := `
		SELECT id, document_id, description, quantity, unit_price,
			discount_percentage, original_amount, discount_amount, amount
		FROM line_items
		ORDER BY document_id, position
	`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return fmt.Errorf("failed to fetch line items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var item billing.LineItem
		var docID string
		err := rows.Scan(&item.ID, &docID, &item.Description, &item.Quantity, &item.UnitPrice,
			&item.DiscountPercentage, &item.OriginalAmount, &item.DiscountAmount, &item.Amount)
		if err != nil {
			return fmt.Errorf("failed to scan line item: %w", err)
		}
		if i, ok := index[docID]; ok {
			docs[i].Items = append(docs[i].Items, item)
		}
	}
	return rows.Err()
}

// nullableID converts an empty id to NULL so the customer foreign key is not
// violated by documents saved without a stored customer reference.
func nullableID(id string) any {
	if id == "" {
		return nil
	}
	return id
}
