package controller

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tableflip.dev/lostfound/pkg/errs"
	"tableflip.dev/lostfound/pkg/live"
	"tableflip.dev/lostfound/pkg/record"
	"tableflip.dev/lostfound/pkg/store"
	"tableflip.dev/lostfound/pkg/view"
)

// loop stands in for the screen's event loop: the listener queues events
// and the test applies them one at a time.
type loop[T any] struct {
	events chan live.Event[T]
}

func newLoop[T any]() *loop[T] {
	return &loop[T]{events: make(chan live.Event[T], 32)}
}

func (l *loop[T]) listen(ev live.Event[T]) {
	l.events <- ev
}

func (l *loop[T]) next(t *testing.T) live.Event[T] {
	t.Helper()
	select {
	case ev := <-l.events:
		return ev
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for live event")
	}
	return live.Event[T]{}
}

func seed(t *testing.T, src *store.Memory, n int) {
	t.Helper()
	base := time.Date(2025, time.March, 3, 9, 0, 0, 0, time.UTC)
	for i := 0; i < n; i++ {
		kind := "lost"
		if i%2 == 1 {
			kind = "found"
		}
		src.Put(store.Items, fmt.Sprintf("item%02d", i), map[string]any{
			"itemName":  fmt.Sprintf("Item %d", i),
			"status":    kind,
			"category":  []string{"Keys", "Bags", "Books"}[i%3],
			"location":  "Library",
			"createdAt": base.Add(time.Duration(i) * time.Hour).Format(time.RFC3339Nano),
		})
	}
}

func mounted(t *testing.T, src store.Store, opts ...Option) (*Browse, *loop[record.Record]) {
	t.Helper()
	c := NewBrowse(src, opts...)
	l := newLoop[record.Record]()
	require.NoError(t, c.Mount(context.Background(), l.listen))
	t.Cleanup(c.Unmount)
	require.True(t, c.Apply(l.next(t)))
	return c, l
}

func TestBrowseDerivesFromSnapshot(t *testing.T) {
	src := store.NewMemory()
	seed(t, src, 14)

	c, _ := mounted(t, src)
	assert.True(t, c.Loaded())
	assert.Equal(t, 14, c.TotalCount())
	assert.Equal(t, 3, c.TotalPages())
	assert.Equal(t, 1, c.Page())
	require.Len(t, c.Visible(), view.DefaultPageSize)
	assert.Equal(t, "Item 13", c.Visible()[0].Title)
	assert.Equal(t, []view.PageMark{1, 2, 3}, c.PageNumbers())
}

func TestBrowseFilterChangesResetPage(t *testing.T) {
	src := store.NewMemory()
	seed(t, src, 14)
	c, _ := mounted(t, src)

	setters := map[string]func(){
		"search":   func() { c.SetSearch("item") },
		"kind":     func() { c.SetKind(view.KindAll) },
		"category": func() { c.SetCategory("all") },
		"location": func() { c.SetLocation("library") },
		"date":     func() { c.SetEventDate(time.Time{}) },
		"sort":     func() { c.SetSort(view.SortOldest) },
		"clear":    func() { c.ClearFilters() },
	}
	for name, set := range setters {
		c.SetPage(3)
		require.Equal(t, 3, c.Page(), name)
		set()
		assert.Equal(t, 1, c.Page(), name)
		assert.Equal(t, 1, c.State().Page, name)
	}
}

func TestBrowsePageClampsWhenResultsShrink(t *testing.T) {
	src := store.NewMemory()
	seed(t, src, 14)
	c, l := mounted(t, src)

	c.SetPage(3)
	assert.Equal(t, 3, c.Page())
	c.SetPage(10)
	assert.Equal(t, 3, c.Page())
	c.SetPage(0)
	assert.Equal(t, 1, c.Page())

	c.SetPage(3)
	ctx := context.Background()
	for i := 0; i < 10; i++ {
		require.NoError(t, src.Delete(ctx, store.Items, fmt.Sprintf("item%02d", i)))
	}
	// Drain to the newest snapshot.
	var ev live.Event[record.Record]
	for len(ev.Records) != 4 {
		ev = l.next(t)
	}
	require.True(t, c.Apply(ev))
	assert.Equal(t, 1, c.TotalPages())
	assert.Equal(t, 1, c.Page())
	assert.Len(t, c.Visible(), 4)
}

func TestBrowseKeepsDataOnSyncError(t *testing.T) {
	src := store.NewMemory()
	seed(t, src, 3)
	c, l := mounted(t, src)

	src.Fail(store.Items, errors.New("network down"))
	require.True(t, c.Apply(l.next(t)))
	assert.ErrorIs(t, c.SyncErr(), errs.ErrSync)
	assert.Equal(t, 3, c.TotalCount())

	// Re-subscribing clears the error and reloads.
	require.NoError(t, c.Mount(context.Background(), l.listen))
	assert.NoError(t, c.SyncErr())
	require.True(t, c.Apply(l.next(t)))
	assert.NoError(t, c.SyncErr())
	assert.Equal(t, 3, c.TotalCount())
}

func TestBrowseKeepsDataWhenReconnectFails(t *testing.T) {
	src := store.NewMemory()
	seed(t, src, 3)
	c, l := mounted(t, src)

	src.Fail(store.Items, errors.New("network down"))
	require.True(t, c.Apply(l.next(t)))
	assert.Equal(t, 3, c.TotalCount())

	src.FailSubscribe(store.Items, errors.New("still down"))
	require.NoError(t, c.Mount(context.Background(), l.listen))
	require.True(t, c.Apply(l.next(t)))
	assert.ErrorIs(t, c.SyncErr(), errs.ErrSync)
	assert.Equal(t, 3, c.TotalCount())
	assert.Len(t, c.Visible(), 3)

	src.FailSubscribe(store.Items, nil)
	require.NoError(t, c.Mount(context.Background(), l.listen))
	require.True(t, c.Apply(l.next(t)))
	assert.NoError(t, c.SyncErr())
	assert.Equal(t, 3, c.TotalCount())
}

func TestBrowseDropsEventsFromOldQuery(t *testing.T) {
	src := store.NewMemory()
	seed(t, src, 3)
	c, l := mounted(t, src)

	stale := live.Event[record.Record]{Handle: c.slot.Current()}
	require.NoError(t, c.Mount(context.Background(), l.listen))
	assert.False(t, c.Apply(stale))
	assert.Equal(t, 3, c.TotalCount())

	fresh := l.next(t)
	c.Unmount()
	assert.False(t, c.Apply(fresh))
	assert.Equal(t, 3, c.TotalCount())
}

func TestBrowseScopes(t *testing.T) {
	src := store.NewMemory()
	seed(t, src, 6)
	src.Put(store.Items, "mine", map[string]any{"title": "My wallet", "ownerUid": "u1", "createdAt": "2024-01-01T00:00:00Z"})

	recent, _ := mounted(t, src, WithQuery(RecentItems(0)))
	assert.Equal(t, DefaultRecent, recent.TotalCount())

	owned, _ := mounted(t, src, WithQuery(OwnedItems("u1")))
	require.Equal(t, 1, owned.TotalCount())
	assert.Equal(t, "My wallet", owned.Visible()[0].Title)
}

func TestBrowseEndToEndLostFirst(t *testing.T) {
	src := store.NewMemory()
	src.Put(store.Items, "a", map[string]any{"title": "a", "type": true, "createdAt": "2025-03-03T00:00:00Z"})
	src.Put(store.Items, "b", map[string]any{"title": "b", "type": "lost", "createdAt": "2025-03-02T00:00:00Z"})
	src.Put(store.Items, "c", map[string]any{"title": "c", "createdAt": "2025-03-01T00:00:00Z"})

	c, _ := mounted(t, src, WithPageSize(2))
	c.SetSort(view.SortLostFirst)
	var got []string
	for _, r := range c.Visible() {
		got = append(got, r.ID)
	}
	assert.Equal(t, []string{"b", "c"}, got)
	c.NextPage()
	require.Len(t, c.Visible(), 1)
	assert.Equal(t, "a", c.Visible()[0].ID)
	c.PrevPage()
	assert.Equal(t, 1, c.Page())
}

func TestBrowseFacets(t *testing.T) {
	src := store.NewMemory()
	seed(t, src, 3)
	c, _ := mounted(t, src)
	categories, locations := c.Facets()
	assert.Equal(t, []string{"Bags", "Books", "Keys"}, categories)
	assert.Equal(t, []string{"Library"}, locations)
}
