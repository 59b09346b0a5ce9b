package repository

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"salonhub-backend/internal/domain"
)

func newTestFetcher(t *testing.T) (Fetcher, *MemorySource) {
	t.Helper()
	src := NewMemorySource()
	return Fetcher{
		Source:  src,
		Logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		Metrics: NewMetrics(prometheus.NewRegistry()),
	}, src
}

func TestProductListFiltersByBranch(t *testing.T) {
	store, src := newTestFetcher(t)
	src.Seed(CollectionProducts, "p1", map[string]any{"name": "Serum", "branchNames": []any{"Downtown"}})
	src.Seed(CollectionProducts, "p2", map[string]any{"name": "Argan Oil", "branchNames": []any{"Uptown", "Downtown"}})
	src.Seed(CollectionProducts, "p3", map[string]any{"name": "Comb", "branchNames": []any{"Uptown"}})

	repo := ProductRepository{Store: store}

	all, err := repo.List(context.Background(), "all")
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []string{"Argan Oil", "Comb", "Serum"}, []string{all[0].Name, all[1].Name, all[2].Name})

	downtown, err := repo.List(context.Background(), "Downtown")
	require.NoError(t, err)
	require.Len(t, downtown, 2)
	for _, p := range downtown {
		assert.Contains(t, p.BranchNames, "Downtown")
		assert.Equal(t, domain.StatusActive, p.Status)
	}
}

func TestFetchFailureIsCountedAndWrapped(t *testing.T) {
	store, src := newTestFetcher(t)
	boom := errors.New("permission denied")
	src.FailOn = map[string]error{CollectionBookings: boom}

	_, err := BookingRepository{Store: store}.List(context.Background(), "")
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1.0, testutil.ToFloat64(store.Metrics.fetchFailures.WithLabelValues(CollectionBookings, "fetch")))
}

func TestSortDocumentsHandlesMixedDates(t *testing.T) {
	docs := []Document{
		{ID: "c", Data: map[string]any{"timestamp": "2025-03-01"}},
		{ID: "a", Data: map[string]any{"timestamp": time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}},
		{ID: "none", Data: map[string]any{}},
		{ID: "b", Data: map[string]any{"timestamp": "2025-02-01T10:00:00Z"}},
	}
	sortDocuments(docs, "timestamp", false)
	ids := make([]string, 0, len(docs))
	for _, d := range docs {
		ids = append(ids, d.ID)
	}
	assert.Equal(t, []string{"none", "a", "b", "c"}, ids)
}

func TestExpenseCreateListDelete(t *testing.T) {
	store, _ := newTestFetcher(t)
	repo := ExpenseRepository{Store: store}
	ctx := context.Background()

	created, err := repo.Create(ctx, CreateExpenseInput{
		Title:    "Electricity",
		Amount:   1200,
		Category: "utilities",
		Branch:   "Downtown",
		Date:     time.Date(2025, 4, 5, 0, 0, 0, 0, time.UTC),
		Status:   domain.ExpensePaid,
	})
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)

	items, err := repo.List(ctx, "Downtown")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, 1200.0, items[0].Amount)
	assert.Equal(t, time.Date(2025, 4, 5, 0, 0, 0, 0, time.UTC), items[0].Date)
	assert.False(t, items[0].CreatedAt.IsZero())

	require.NoError(t, repo.Delete(ctx, created.ID))
	err = repo.Delete(ctx, created.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMessageInboxAndMarkSeen(t *testing.T) {
	store, src := newTestFetcher(t)
	src.Seed(CollectionAdminMessages, "m2", map[string]any{"content": "second", "recipientBranchId": "b1", "timestamp": "2025-01-02T00:00:00Z"})
	src.Seed(CollectionAdminMessages, "m1", map[string]any{"content": "first", "recipientBranchId": "b1", "timestamp": "2025-01-01T00:00:00Z"})
	src.Seed(CollectionAdminMessages, "m3", map[string]any{"content": "other", "recipientBranchId": "b2", "timestamp": "2025-01-01T00:00:00Z"})

	repo := MessageRepository{Store: store}
	ctx := context.Background()
	inbox, err := repo.Inbox(ctx, domain.RoleBranchAdmin, "b1")
	require.NoError(t, err)
	require.Len(t, inbox, 2)
	assert.Equal(t, "first", inbox[0].Content)
	assert.Equal(t, "second", inbox[1].Content)

	require.NoError(t, repo.MarkSeen(ctx, domain.RoleBranchAdmin, "m1", "admin-7"))
	require.NoError(t, repo.MarkSeen(ctx, domain.RoleBranchAdmin, "m1", "admin-7"))
	doc, err := src.Get(ctx, CollectionAdminMessages, "m1")
	require.NoError(t, err)
	msg := domain.DecodeMessage(doc.ID, doc.Data)
	assert.True(t, msg.Read)
	assert.Equal(t, []string{"admin-7"}, msg.ReadBy)
	assert.Equal(t, domain.MessageSeen, msg.Status)
}

func TestMemorySubscribeReplaysAndStreams(t *testing.T) {
	store, src := newTestFetcher(t)
	src.Seed(CollectionBookings, "b1", map[string]any{"branch": "Downtown"})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changes := make(chan Change, 4)
	done := make(chan error, 1)
	go func() {
		done <- store.Subscribe(ctx, Query{Collection: CollectionBookings}, func(c Change) { changes <- c })
	}()

	first := <-changes
	assert.Equal(t, ChangeAdded, first.Kind)
	assert.Equal(t, "b1", first.Doc.ID)

	_, err := store.Create(ctx, CollectionBookings, map[string]any{"branch": "Uptown"})
	require.NoError(t, err)

	select {
	case c := <-changes:
		assert.Equal(t, ChangeAdded, c.Kind)
	case <-time.After(time.Second):
		t.Fatal("no change delivered")
	}

	cancel()
	require.NoError(t, <-done)
}

func TestOfferKindCollection(t *testing.T) {
	coll, err := KindPromo.Collection()
	require.NoError(t, err)
	assert.Equal(t, CollectionPromoCodes, coll)

	_, err = OfferKind("vouchers").Collection()
	assert.Error(t, err)
}

func TestMemoryWritesDoNotBlockOnDepartedSubscriber(t *testing.T) {
	src := NewMemorySource()
	src.Seed(CollectionBookings, "seed", map[string]any{})

	ctx, cancel := context.WithCancel(context.Background())
	started := make(chan struct{})
	var once sync.Once
	done := make(chan error, 1)
	go func() {
		done <- src.Subscribe(ctx, Query{Collection: CollectionBookings}, func(Change) {
			once.Do(func() { close(started) })
			<-ctx.Done()
		})
	}()
	<-started

	// more writes than the subscription buffer holds
	written := make(chan struct{})
	go func() {
		defer close(written)
		for i := 0; i < 100; i++ {
			_, _ = src.Create(context.Background(), CollectionBookings, map[string]any{"n": int64(i)})
		}
	}()
	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case <-written:
	case <-time.After(2 * time.Second):
		t.Fatal("writer blocked on a departed subscriber")
	}
	require.NoError(t, <-done)
}
