package cache

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/studioware/backoffice/internal/billing"
)

func TestMemoryStorePutGet(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	doc := billing.Document{
		ID:     "doc-1",
		Kind:   billing.KindInvoice,
		Number: "01/06/2024-001",
		Items:  []billing.LineItem{{ID: "i1", Description: "Design"}},
	}
	require.NoError(t, store.Put(ctx, doc))

	got, err := store.Get(ctx, "doc-1")
	require.NoError(t, err)
	assert.Equal(t, doc, *got)

	// returned snapshot is a copy
	got.Items[0].Description = "mutated"
	again, err := store.Get(ctx, "doc-1")
	require.NoError(t, err)
	assert.Equal(t, "Design", again.Items[0].Description)
}

func TestMemoryStoreGetMissing(t *testing.T) {
	store := NewMemoryStore()
	_, err := store.Get(context.Background(), "absent")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStoreDelete(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	require.NoError(t, store.Put(ctx, billing.Document{ID: "doc-1"}))

	require.NoError(t, store.Delete(ctx, "doc-1"))
	_, err := store.Get(ctx, "doc-1")
	assert.ErrorIs(t, err, ErrNotFound)

	// deleting an absent id is not an error
	assert.NoError(t, store.Delete(ctx, "doc-1"))
}

func TestMemoryStoreReplaceAll(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	require.NoError(t, store.Put(ctx, billing.Document{ID: "old"}))

	err := store.ReplaceAll(ctx, []billing.Document{{ID: "a"}, {ID: "b"}})
	require.NoError(t, err)

	_, err = store.Get(ctx, "old")
	assert.ErrorIs(t, err, ErrNotFound)

	docs, err := store.GetAll(ctx)
	require.NoError(t, err)
	assert.Len(t, docs, 2)
}
