// Package cache provides the local document cache: a keyed collection of
// complete document snapshots used as a durability fallback and as the
// read-through source for list views. It is injected behind the Store
// interface so tests run against the in-memory implementation.
package cache

import (
	"context"
	"errors"

	"github.com/studioware/backoffice/internal/billing"
)

// ErrNotFound is returned when no snapshot exists for a document id.
var ErrNotFound = errors.New("document not found in cache")

// Store is a keyed snapshot collection. Put overwrites by document id;
// ReplaceAll destructively swaps the entire contents.
type Store interface {
	Get(ctx context.Context, id string) (*billing.Document, error)
	GetAll(ctx context.Context) ([]billing.Document, error)
	Put(ctx context.Context, doc billing.Document) error
	Delete(ctx context.Context, id string) error
	ReplaceAll(ctx context.Context, docs []billing.Document) error
}
