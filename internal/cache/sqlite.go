package cache

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/studioware/backoffice/internal/billing"
)

// SQLiteStore persists snapshots in a local SQLite file, one JSON blob per
// document id.
type SQLiteStore struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewSQLiteStore creates the store and its table if needed.
func NewSQLiteStore(db *sql.DB, logger *zap.Logger) (*SQLiteStore, error) {
	query := `
		CREATE TABLE IF NOT EXISTS cached_documents (
			id TEXT PRIMARY KEY,
			kind TEXT NOT NULL,
			snapshot TEXT NOT NULL,
			updated_at DATETIME NOT NULL
		);
	`
	if _, err := db.Exec(query); err != nil {
		return nil, fmt.Errorf("failed to create cache table: %w", err)
	}
	return &SQLiteStore{db: db, logger: logger}, nil
}

// Get returns the snapshot for a document id.
func (s *SQLiteStore) Get(ctx context.Context, id string) (*billing.Document, error) {
	var raw string
	err := s.db.QueryRowContext(ctx, "SELECT snapshot FROM cached_documents WHERE id = ?", id).Scan(&raw)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read cached document: %w", err)
	}
	var doc billing.Document
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		return nil, fmt.Errorf("failed to decode cached document %s: %w", id, err)
	}
	return &doc, nil
}

// GetAll returns every snapshot in the cache.
func (s *SQLiteStore) GetAll(ctx context.Context) ([]billing.Document, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT snapshot FROM cached_documents ORDER BY updated_at DESC")
	if err != nil {
		return nil, fmt.Errorf("failed to list cached documents: %w", err)
	}
	defer rows.Close()

	var docs []billing.Document
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("failed to scan cached document: %w", err)
		}
		var doc billing.Document
		if err := json.Unmarshal([]byte(raw), &doc); err != nil {
			s.logger.Warn("Skipping undecodable cache entry", zap.Error(err))
			continue
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

// Put stores a snapshot, overwriting any existing entry for the id.
func (s *SQLiteStore) Put(ctx context.Context, doc billing.Document) error {
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to encode document %s: %w", doc.ID, err)
	}
	query := `
		INSERT INTO cached_documents (id, kind, snapshot, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET kind = excluded.kind, snapshot = excluded.snapshot, updated_at = excluded.updated_at
	`
	if _, err := s.db.ExecContext(ctx, query, doc.ID, string(doc.Kind), string(raw), time.Now().UTC()); err != nil {
		return fmt.Errorf("failed to write cached document: %w", err)
	}
	return nil
}

// Delete removes a snapshot. Deleting an absent id is not an error.
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM cached_documents WHERE id = ?", id); err != nil {
		return fmt.Errorf("failed to delete cached document: %w", err)
	}
	return nil
}

// ReplaceAll destructively swaps the entire cache contents inside one
// transaction.
func (s *SQLiteStore) ReplaceAll(ctx context.Context, docs []billing.Document) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin cache transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, "DELETE FROM cached_documents"); err != nil {
		return fmt.Errorf("failed to clear cache: %w", err)
	}
	now := time.Now().UTC()
	for _, doc := range docs {
		raw, err := json.Marshal(doc)
		if err != nil {
			return fmt.Errorf("failed to encode document %s: %w", doc.ID, err)
		}
		_, err = tx.ExecContext(ctx,
			"INSERT INTO cached_documents (id, kind, snapshot, updated_at) VALUES (?, ?, ?, ?)",
			doc.ID, string(doc.Kind), string(raw), now)
		if err != nil {
			return fmt.Errorf("failed to write cached document %s: %w", doc.ID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit cache replace: %w", err)
	}
	return nil
}
