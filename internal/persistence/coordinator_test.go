package persistence

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/studioware/backoffice/internal/billing"
	"github.com/studioware/backoffice/internal/cache"
)

// fakeDurable is a scriptable DurableStore.
type fakeDurable struct {
	docs map[string]billing.Document

	saveErr     error
	fetchErr    error
	deleteErr   error
	customerErr map[string]error
	headerErr   map[string]error
	itemsErr    map[string]error

	saves   int
	deletes []string
}

func newFakeDurable() *fakeDurable {
	return &fakeDurable{
		docs:        make(map[string]billing.Document),
		customerErr: make(map[string]error),
		headerErr:   make(map[string]error),
		itemsErr:    make(map[string]error),
	}
}

func (f *fakeDurable) SaveDocument(ctx context.Context, doc *billing.Document) error {
	f.saves++
	if f.saveErr != nil {
		return f.saveErr
	}
	f.docs[doc.ID] = *doc
	return nil
}

func (f *fakeDurable) FetchAll(ctx context.Context) ([]billing.Document, error) {
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	docs := make([]billing.Document, 0, len(f.docs))
	for _, doc := range f.docs {
		docs = append(docs, doc)
	}
	return docs, nil
}

func (f *fakeDurable) DeleteDocument(ctx context.Context, id string) error {
	f.deletes = append(f.deletes, id)
	if f.deleteErr != nil {
		return f.deleteErr
	}
	delete(f.docs, id)
	return nil
}

func (f *fakeDurable) UpsertCustomer(ctx context.Context, c *billing.Customer) error {
	return f.customerErr[c.ID]
}

func (f *fakeDurable) UpsertHeader(ctx context.Context, doc *billing.Document) error {
	if err := f.headerErr[doc.ID]; err != nil {
		return err
	}
	f.docs[doc.ID] = *doc
	return nil
}

func (f *fakeDurable) ReplaceItems(ctx context.Context, documentID string, items []billing.LineItem) error {
	return f.itemsErr[documentID]
}

func newTestCoordinator(durable *fakeDurable) (*Coordinator, *cache.MemoryStore) {
	store := cache.NewMemoryStore()
	return NewCoordinator(durable, store, zap.NewNop()), store
}

func testDocument(id, number string) *billing.Document {
	return &billing.Document{
		ID:     id,
		Kind:   billing.KindInvoice,
		Number: number,
		Items:  []billing.LineItem{{ID: id + "-i1", Description: "Work", Quantity: 1, UnitPrice: 100}},
	}
}

func TestSaveWritesDurableThenCache(t *testing.T) {
	ctx := context.Background()
	durable := newFakeDurable()
	coord, store := newTestCoordinator(durable)

	doc := testDocument("doc-1", "01/06/2024-001")
	outcome, err := coord.Save(ctx, doc)
	require.NoError(t, err)
	assert.False(t, outcome.Degraded)

	// totals recomputed and timestamps stamped before either write
	assert.InDelta(t, 100, doc.Totals.Total, 1e-9)
	assert.False(t, doc.CreatedAt.IsZero())
	assert.False(t, doc.UpdatedAt.IsZero())

	_, ok := durable.docs["doc-1"]
	assert.True(t, ok)
	cached, err := store.Get(ctx, "doc-1")
	require.NoError(t, err)
	assert.Equal(t, "01/06/2024-001", cached.Number)
}

func TestSaveDegradesToCacheOnDurableFailure(t *testing.T) {
	ctx := context.Background()
	durable := newFakeDurable()
	durable.saveErr = errors.New("connection refused")
	coord, store := newTestCoordinator(durable)

	doc := testDocument("doc-1", "01/06/2024-001")
	outcome, err := coord.Save(ctx, doc)
	require.NoError(t, err)
	assert.True(t, outcome.Degraded)
	assert.ErrorContains(t, outcome.DurableErr, "connection refused")

	// document survives in the cache and stays re-saveable
	cached, err := store.Get(ctx, "doc-1")
	require.NoError(t, err)
	assert.Equal(t, "doc-1", cached.ID)

	durable.saveErr = nil
	outcome, err = coord.Save(ctx, doc)
	require.NoError(t, err)
	assert.False(t, outcome.Degraded)
	_, ok := durable.docs["doc-1"]
	assert.True(t, ok)
}

func TestGetAndListReadFromCache(t *testing.T) {
	ctx := context.Background()
	durable := newFakeDurable()
	coord, store := newTestCoordinator(durable)

	require.NoError(t, store.Put(ctx, *testDocument("inv-1", "01/06/2024-001")))
	quote := testDocument("quo-1", "01/06/2024-002")
	quote.Kind = billing.KindQuote
	require.NoError(t, store.Put(ctx, *quote))

	// durable holds a record the cache does not; list must not see it
	durable.docs["remote-only"] = *testDocument("remote-only", "01/06/2024-009")

	all, err := coord.List(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	invoices, err := coord.List(ctx, billing.KindInvoice)
	require.NoError(t, err)
	require.Len(t, invoices, 1)
	assert.Equal(t, "inv-1", invoices[0].ID)

	got, err := coord.Get(ctx, "quo-1")
	require.NoError(t, err)
	assert.Equal(t, billing.KindQuote, got.Kind)
}

func TestNumbers(t *testing.T) {
	ctx := context.Background()
	coord, store := newTestCoordinator(newFakeDurable())
	require.NoError(t, store.Put(ctx, *testDocument("a", "01/06/2024-001")))
	require.NoError(t, store.Put(ctx, *testDocument("b", "01/06/2024-002")))

	numbers, err := coord.Numbers(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"01/06/2024-001", "01/06/2024-002"}, numbers)
}

func TestDeleteIsOptimistic(t *testing.T) {
	ctx := context.Background()
	durable := newFakeDurable()
	durable.deleteErr = errors.New("timeout")
	coord, store := newTestCoordinator(durable)
	require.NoError(t, store.Put(ctx, *testDocument("doc-1", "01/06/2024-001")))

	outcome, err := coord.Delete(ctx, "doc-1")
	require.NoError(t, err)
	assert.True(t, outcome.RemoteFailed)
	assert.ErrorContains(t, outcome.RemoteErr, "timeout")

	// cache delete is never rolled back
	_, err = store.Get(ctx, "doc-1")
	assert.ErrorIs(t, err, cache.ErrNotFound)
	assert.Equal(t, []string{"doc-1"}, durable.deletes)
}

func TestSyncFromDurableOverwritesCache(t *testing.T) {
	ctx := context.Background()
	durable := newFakeDurable()
	durable.docs["remote-1"] = *testDocument("remote-1", "01/06/2024-001")
	coord, store := newTestCoordinator(durable)

	// local-only record must not survive a sync
	require.NoError(t, store.Put(ctx, *testDocument("local-only", "01/06/2024-099")))

	count, err := coord.SyncFromDurable(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	_, err = store.Get(ctx, "local-only")
	assert.ErrorIs(t, err, cache.ErrNotFound)
	got, err := store.Get(ctx, "remote-1")
	require.NoError(t, err)
	assert.Equal(t, "remote-1", got.ID)
}

func TestSyncFromDurableFetchFailureLeavesCache(t *testing.T) {
	ctx := context.Background()
	durable := newFakeDurable()
	durable.fetchErr = errors.New("unreachable")
	coord, store := newTestCoordinator(durable)
	require.NoError(t, store.Put(ctx, *testDocument("doc-1", "01/06/2024-001")))

	_, err := coord.SyncFromDurable(ctx)
	require.Error(t, err)

	// cache untouched on fetch failure
	_, err = store.Get(ctx, "doc-1")
	assert.NoError(t, err)
}

func TestMigrateToDurableBestEffort(t *testing.T) {
	ctx := context.Background()
	durable := newFakeDurable()
	coord, store := newTestCoordinator(durable)

	okDoc := testDocument("ok-1", "01/06/2024-001")
	okDoc.CustomerID = "c1"
	okDoc.Customer = billing.Customer{Name: "Acme"}
	badDoc := testDocument("bad-1", "01/06/2024-002")
	alsoOK := testDocument("ok-2", "01/06/2024-003")
	require.NoError(t, store.Put(ctx, *okDoc))
	require.NoError(t, store.Put(ctx, *badDoc))
	require.NoError(t, store.Put(ctx, *alsoOK))

	durable.headerErr["bad-1"] = errors.New("constraint violation")

	report, err := coord.MigrateToDurable(ctx)
	require.NoError(t, err)

	assert.Equal(t, 2, report.DocumentsOK)
	assert.Equal(t, 1, report.DocumentsFailed)
	assert.Equal(t, 1, report.CustomersOK)
	assert.Equal(t, 2, report.ItemsOK)
	require.Len(t, report.Records, 3)

	var failed *MigrateRecord
	for i := range report.Records {
		if !report.Records[i].OK {
			failed = &report.Records[i]
		}
	}
	require.NotNil(t, failed)
	assert.Equal(t, "bad-1", failed.DocumentID)
	assert.Equal(t, "header", failed.Stage)
	assert.Contains(t, failed.Error, "constraint violation")
}

func TestMigrateCustomerFailureSkipsDependentWrites(t *testing.T) {
	ctx := context.Background()
	durable := newFakeDurable()
	coord, store := newTestCoordinator(durable)

	doc := testDocument("doc-1", "01/06/2024-001")
	doc.CustomerID = "c1"
	require.NoError(t, store.Put(ctx, *doc))
	durable.customerErr["c1"] = errors.New("duplicate email")

	report, err := coord.MigrateToDurable(ctx)
	require.NoError(t, err)

	assert.Equal(t, 1, report.CustomersFailed)
	assert.Equal(t, 0, report.DocumentsOK)
	assert.Equal(t, 0, report.ItemsOK)
	// header write never attempted after the customer failed
	_, ok := durable.docs["doc-1"]
	assert.False(t, ok)
}
