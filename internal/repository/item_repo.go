package repository

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"github.com/studioware/backoffice/internal/billing"
)

// LineItemRepository handles line item database operations
type LineItemRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewLineItemRepository creates a new line item repository
func NewLineItemRepository(db *sql.DB, logger *zap.Logger) *LineItemRepository {
	return &LineItemRepository{db: db, logger: logger}
}

func (r *LineItemRepository) exec(ctx context.Context, tx *sql.Tx, query string, args ...any) (sql.Result, error) {
	if tx != nil {
		return tx.ExecContext(ctx, query, args...)
	}
	return r.db.ExecContext(ctx, query, args...)
}

// ReplaceForDocument deletes and rewrites the line items of a document,
// preserving their order through the position column.
func (r *LineItemRepository) ReplaceForDocument(ctx context.Context, tx *sql.Tx, documentID string, items []billing.LineItem) error {
	if _, err := r.exec(ctx, tx, "DELETE FROM line_items WHERE document_id = $1", documentID); err != nil {
		r.logger.Error("Failed to clear line items", zap.String("document_id", documentID), zap.Error(err))
		return fmt.Errorf("failed to clear line items: %w", err)
	}

	query := `
		INSERT INTO line_items (
			id, document_id, position, description, quantity, unit_price,
			discount_percentage, original_amount, discount_amount, amount
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	for i, item := range items {
		_, err := r.exec(ctx, tx, query,
			item.ID, documentID, i, item.Description, item.Quantity, item.UnitPrice,
			item.DiscountPercentage, item.OriginalAmount, item.DiscountAmount, item.Amount)
		if err != nil {
			r.logger.Error("Failed to insert line item",
				zap.String("document_id", documentID),
				zap.String("item_id", item.ID),
				zap.Error(err))
			return fmt.Errorf("failed to insert line item: %w", err)
		}
	}
	return nil
}
