package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// EmailLog is one entry in the send audit log. Every send attempt is recorded,
// successful or not.
type EmailLog struct {
	ID         int64     `json:"id"`
	DocumentID string    `json:"document_id"`
	Recipient  string    `json:"recipient"`
	Subject    string    `json:"subject"`
	Content    string    `json:"content"`
	Status     string    `json:"status"` // sent or failed
	Error      string    `json:"error,omitempty"`
	SentAt     time.Time `json:"sent_at"`
}

// EmailLogRepository handles the email audit log
type EmailLogRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewEmailLogRepository creates a new email log repository
func NewEmailLogRepository(db *sql.DB, logger *zap.Logger) *EmailLogRepository {
	return &EmailLogRepository{db: db, logger: logger}
}

// Create records a send attempt
func (r *EmailLogRepository) Create(ctx context.Context, entry *EmailLog) error {
	query := `
		INSERT INTO email_log (document_id, recipient, subject, content, status, error, sent_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`
	err := r.db.QueryRowContext(ctx, query,
		entry.DocumentID, entry.Recipient, entry.Subject, entry.Content,
		entry.Status, entry.Error, entry.SentAt).Scan(&entry.ID)
	if err != nil {
		r.logger.Error("Failed to record email log entry",
			zap.String("document_id", entry.DocumentID),
			zap.Error(err))
		return fmt.Errorf("failed to record email log entry: %w", err)
	}
	return nil
}

// List returns recent log entries, newest first
func (r *EmailLogRepository) List(ctx context.Context, limit int) ([]EmailLog, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `
		SELECT id, document_id, recipient, subject, content, status, error, sent_at
		FROM email_log
		ORDER BY sent_at DESC
		LIMIT $1
	`
	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		r.logger.Error("Failed to list email log", zap.Error(err))
		return nil, fmt.Errorf("failed to list email log: %w", err)
	}
	defer rows.Close()

	var entries []EmailLog
	for rows.Next() {
		var e EmailLog
		if err := rows.Scan(&e.ID, &e.DocumentID, &e.Recipient, &e.Subject, &e.Content, &e.Status, &e.Error, &e.SentAt); err != nil {
			return nil, fmt.Errorf("failed to scan email log entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
