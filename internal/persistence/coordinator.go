// Package persistence coordinates the dual-write scheme: the durable store is
// written first and mirrored into the local cache; when the durable store is
// unreachable the document is kept in the cache alone and the save reports a
// degraded outcome. List views read exclusively from the cache; the explicit
// sync and migrate operations reconcile the two stores.
package persistence

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/studioware/backoffice/internal/billing"
	"github.com/studioware/backoffice/internal/cache"
)

// Coordinator performs all document persistence.
type Coordinator struct {
	durable DurableStore
	cache   cache.Store
	logger  *zap.Logger

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewCoordinator creates a coordinator over the two stores.
func NewCoordinator(durable DurableStore, cacheStore cache.Store, logger *zap.Logger) *Coordinator {
	return &Coordinator{
		durable: durable,
		cache:   cacheStore,
		logger:  logger,
		locks:   make(map[string]*sync.Mutex),
	}
}

// lockFor serializes saves of the same document id so two concurrent saves
// cannot interleave their durable and cache writes.
func (c *Coordinator) lockFor(id string) *sync.Mutex {
	c.mu.Lock()
	defer c.mu.Unlock()
	l, ok := c.locks[id]
	if !ok {
		l = &sync.Mutex{}
		c.locks[id] = l
	}
	return l
}

// SaveOutcome reports how a save landed. Degraded means the document lives
// only in the local cache and DurableErr carries the underlying failure for
// the user-facing warning.
type SaveOutcome struct {
	Degraded   bool
	DurableErr error
}

// Save recomputes the document's totals, writes it to the durable store, and
// mirrors it into the cache. On durable failure the document is written to the
// cache alone and the outcome is degraded; the in-memory draft stays editable
// and re-saveable either way.
func (c *Coordinator) Save(ctx context.Context, doc *billing.Document) (SaveOutcome, error) {
	l := c.lockFor(doc.ID)
	l.Lock()
	defer l.Unlock()

	doc.Recompute()
	now := time.Now().UTC()
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = now
	}
	doc.UpdatedAt = now

	durableErr := c.durable.SaveDocument(ctx, doc)
	if durableErr != nil {
		c.logger.Warn("Durable save failed, falling back to local cache",
			zap.String("document_id", doc.ID),
			zap.String("number", doc.Number),
			zap.Error(durableErr))
		if err := c.cache.Put(ctx, *doc); err != nil {
			return SaveOutcome{}, fmt.Errorf("durable save failed (%v) and cache fallback failed: %w", durableErr, err)
		}
		return SaveOutcome{Degraded: true, DurableErr: durableErr}, nil
	}

	if err := c.cache.Put(ctx, *doc); err != nil {
		return SaveOutcome{}, fmt.Errorf("document saved durably but cache mirror failed: %w", err)
	}

	c.logger.Info("Document saved",
		zap.String("document_id", doc.ID),
		zap.String("number", doc.Number),
		zap.String("kind", string(doc.Kind)))
	return SaveOutcome{}, nil
}

// Get reads one document from the local cache.
func (c *Coordinator) Get(ctx context.Context, id string) (*billing.Document, error) {
	return c.cache.Get(ctx, id)
}

// List reads all documents from the local cache, optionally filtered by kind.
func (c *Coordinator) List(ctx context.Context, kind billing.Kind) ([]billing.Document, error) {
	docs, err := c.cache.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	if kind == "" {
		return docs, nil
	}
	filtered := docs[:0]
	for _, doc := range docs {
		if doc.Kind == kind {
			filtered = append(filtered, doc)
		}
	}
	return filtered, nil
}

// Numbers returns every known document number, cache first. Used for sequence
// generation.
func (c *Coordinator) Numbers(ctx context.Context) ([]string, error) {
	docs, err := c.cache.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	numbers := make([]string, 0, len(docs))
	for _, doc := range docs {
		numbers = append(numbers, doc.Number)
	}
	return numbers, nil
}

// DeleteOutcome reports an optimistic delete. RemoteFailed warns that the
// record may still exist in the durable store; the cache delete is never
// rolled back.
type DeleteOutcome struct {
	RemoteFailed bool
	RemoteErr    error
}

// Delete removes a document from the cache immediately and independently
// issues the durable-store delete.
func (c *Coordinator) Delete(ctx context.Context, id string) (DeleteOutcome, error) {
	if err := c.cache.Delete(ctx, id); err != nil {
		return DeleteOutcome{}, fmt.Errorf("failed to delete from cache: %w", err)
	}

	if err := c.durable.DeleteDocument(ctx, id); err != nil {
		c.logger.Warn("Durable delete failed, record may still exist remotely",
			zap.String("document_id", id),
			zap.Error(err))
		return DeleteOutcome{RemoteFailed: true, RemoteErr: err}, nil
	}

	c.logger.Info("Document deleted", zap.String("document_id", id))
	return DeleteOutcome{}, nil
}

// SyncFromDurable fetches every document from the durable store and overwrites
// the entire cache with the result set. Local-only documents do not survive.
func (c *Coordinator) SyncFromDurable(ctx context.Context) (int, error) {
	docs, err := c.durable.FetchAll(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to fetch documents from durable store: %w", err)
	}
	if err := c.cache.ReplaceAll(ctx, docs); err != nil {
		return 0, fmt.Errorf("failed to replace cache contents: %w", err)
	}
	c.logger.Info("Cache synchronized from durable store", zap.Int("documents", len(docs)))
	return len(docs), nil
}

// MigrateRecord is the per-document detail of a migrate run.
type MigrateRecord struct {
	DocumentID string `json:"document_id"`
	Number     string `json:"number"`
	OK         bool   `json:"ok"`
	Stage      string `json:"stage,omitempty"` // customer, header, or items
	Error      string `json:"error,omitempty"`
}

// MigrateReport aggregates per-entity counts plus the per-record detail.
type MigrateReport struct {
	CustomersOK     int             `json:"customers_ok"`
	CustomersFailed int             `json:"customers_failed"`
	DocumentsOK     int             `json:"documents_ok"`
	DocumentsFailed int             `json:"documents_failed"`
	ItemsOK         int             `json:"items_ok"`
	ItemsFailed     int             `json:"items_failed"`
	Records         []MigrateRecord `json:"records"`
}

// MigrateToDurable pushes every cached document into the durable store as
// three dependent writes per document: customer, then header, then items. A
// failure marks the record and moves on; the batch always completes.
func (c *Coordinator) MigrateToDurable(ctx context.Context) (*MigrateReport, error) {
	docs, err := c.cache.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read cache for migration: %w", err)
	}

	report := &MigrateReport{}
	for i := range docs {
		doc := docs[i]
		record := MigrateRecord{DocumentID: doc.ID, Number: doc.Number, OK: true}

		if doc.CustomerID != "" {
			customer := doc.Customer
			customer.ID = doc.CustomerID
			if err := c.durable.UpsertCustomer(ctx, &customer); err != nil {
				report.CustomersFailed++
				record.OK = false
				record.Stage = "customer"
				record.Error = err.Error()
				report.Records = append(report.Records, record)
				continue
			}
			report.CustomersOK++
		}

		if err := c.durable.UpsertHeader(ctx, &doc); err != nil {
			report.DocumentsFailed++
			record.OK = false
			record.Stage = "header"
			record.Error = err.Error()
			report.Records = append(report.Records, record)
			continue
		}
		report.DocumentsOK++

		if err := c.durable.ReplaceItems(ctx, doc.ID, doc.Items); err != nil {
			report.ItemsFailed += len(doc.Items)
			record.OK = false
			record.Stage = "items"
			record.Error = err.Error()
			report.Records = append(report.Records, record)
			continue
		}
		report.ItemsOK += len(doc.Items)

		report.Records = append(report.Records, record)
	}

	c.logger.Info("Migration to durable store completed",
		zap.Int("documents_ok", report.DocumentsOK),
		zap.Int("documents_failed", report.DocumentsFailed))
	return report, nil
}
