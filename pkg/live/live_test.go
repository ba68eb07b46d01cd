package live

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tableflip.dev/lostfound/pkg/errs"
	"tableflip.dev/lostfound/pkg/normalize"
	"tableflip.dev/lostfound/pkg/record"
	"tableflip.dev/lostfound/pkg/store"
)

func decodeItem(doc store.Document) record.Record {
	return normalize.Item(doc.ID, doc.Data)
}

var itemsQuery = store.Query{Collection: store.Items, OrderBy: "createdAt", Descending: true}

type recorder struct {
	events chan Event[record.Record]
}

func newRecorder() *recorder {
	return &recorder{events: make(chan Event[record.Record], 16)}
}

func (r *recorder) listen(ev Event[record.Record]) {
	r.events <- ev
}

func (r *recorder) next(t *testing.T) Event[record.Record] {
	t.Helper()
	select {
	case ev := <-r.events:
		return ev
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
	}
	return Event[record.Record]{}
}

func (r *recorder) quiet(t *testing.T) {
	t.Helper()
	select {
	case ev := <-r.events:
		t.Fatalf("unexpected event %+v", ev)
	case <-time.After(50 * time.Millisecond):
	}
}

func titles(records []record.Record) []string {
	out := make([]string, 0, len(records))
	for _, r := range records {
		out = append(out, r.Title)
	}
	return out
}

func TestSubscribeReplacesCacheInServerOrder(t *testing.T) {
	ctx := context.Background()
	src := store.NewMemory()
	_, err := src.Append(ctx, store.Items, map[string]any{"itemName": "first", "status": "found"}, "createdAt")
	require.NoError(t, err)

	rec := newRecorder()
	h, err := Subscribe(ctx, src, itemsQuery, decodeItem, rec.listen)
	require.NoError(t, err)
	defer h.Cancel()

	ev := rec.next(t)
	require.NoError(t, ev.Err)
	assert.Same(t, h, ev.Handle)
	assert.Equal(t, uint64(1), ev.Version)
	require.Len(t, ev.Records, 1)
	assert.Equal(t, record.Found, ev.Records[0].Kind)

	_, err = src.Append(ctx, store.Items, map[string]any{"title": "second"}, "createdAt")
	require.NoError(t, err)
	ev = rec.next(t)
	assert.Equal(t, []string{"second", "first"}, titles(ev.Records))
	assert.Equal(t, titles(ev.Records), titles(h.Records()))
	assert.Equal(t, uint64(2), h.Version())
}

func TestSameSnapshotTwiceIsIdempotent(t *testing.T) {
	ctx := context.Background()
	src := store.NewMemory()
	src.Put(store.Items, "a", map[string]any{"title": "a", "createdAt": "2025-03-03T00:00:00Z"})
	src.Put(store.Items, "b", map[string]any{"title": "b", "createdAt": "2025-03-02T00:00:00Z"})

	rec := newRecorder()
	h, err := Subscribe(ctx, src, itemsQuery, decodeItem, rec.listen)
	require.NoError(t, err)
	defer h.Cancel()
	first := rec.next(t)

	// Rewriting a document with identical data pushes an identical snapshot.
	src.Put(store.Items, "a", map[string]any{"title": "a", "createdAt": "2025-03-03T00:00:00Z"})
	second := rec.next(t)

	assert.Equal(t, first.Records, second.Records)
	assert.Len(t, h.Records(), 2)
}

func TestCancelDropsLateSnapshots(t *testing.T) {
	ctx := context.Background()
	src := store.NewMemory()
	rec := newRecorder()
	h, err := Subscribe(ctx, src, itemsQuery, decodeItem, rec.listen)
	require.NoError(t, err)
	rec.next(t)

	h.Cancel()
	h.Cancel()
	assert.True(t, h.Cancelled())

	_, err = src.Append(ctx, store.Items, map[string]any{"title": "late"}, "createdAt")
	require.NoError(t, err)

	select {
	case <-h.Done():
	case <-time.After(time.Second):
		t.Fatal("subscription goroutine did not exit")
	}
	rec.quiet(t)
	assert.Empty(t, h.Records())
	assert.Eventually(t, func() bool { return src.Subscribers(store.Items) == 0 }, time.Second, 5*time.Millisecond)
}

func TestReplaceAfterCancelIsRejected(t *testing.T) {
	h := &Handle[record.Record]{cancel: func() {}, done: make(chan struct{})}
	_, ok := h.replace([]record.Record{{ID: "x"}})
	assert.True(t, ok)

	h.Cancel()
	_, ok = h.replace([]record.Record{{ID: "y"}})
	assert.False(t, ok)
	_, ok = h.fail(errors.New("late"))
	assert.False(t, ok)
	assert.Equal(t, "x", h.Records()[0].ID)
}

func TestSyncErrorKeepsLastSnapshot(t *testing.T) {
	ctx := context.Background()
	src := store.NewMemory()
	src.Put(store.Items, "a", map[string]any{"title": "kept"})

	rec := newRecorder()
	h, err := Subscribe(ctx, src, itemsQuery, decodeItem, rec.listen)
	require.NoError(t, err)
	defer h.Cancel()
	rec.next(t)

	boom := errors.New("unavailable")
	src.Fail(store.Items, boom)

	ev := rec.next(t)
	assert.ErrorIs(t, ev.Err, errs.ErrSync)
	assert.ErrorIs(t, ev.Err, boom)
	assert.Equal(t, []string{"kept"}, titles(ev.Records))
	assert.Equal(t, []string{"kept"}, titles(h.Records()))
	assert.ErrorIs(t, h.Err(), errs.ErrSync)

	select {
	case <-h.Done():
	case <-time.After(time.Second):
		t.Fatal("failed subscription kept running")
	}
}

func TestSlotKeepsOneQueryPerScope(t *testing.T) {
	ctx := context.Background()
	src := store.NewMemory()
	rec := newRecorder()

	var slot Slot[record.Record]
	first, err := slot.Open(ctx, src, itemsQuery, decodeItem, rec.listen)
	require.NoError(t, err)
	firstEv := rec.next(t)

	second, err := slot.Open(ctx, src, itemsQuery, decodeItem, rec.listen)
	require.NoError(t, err)
	secondEv := rec.next(t)

	assert.True(t, first.Cancelled())
	assert.Same(t, second, slot.Current())
	assert.False(t, slot.Owns(firstEv))
	assert.True(t, slot.Owns(secondEv))
	assert.Eventually(t, func() bool { return src.Subscribers(store.Items) == 1 }, time.Second, 5*time.Millisecond)

	slot.Close()
	assert.Nil(t, slot.Current())
	assert.False(t, slot.Owns(secondEv))
}
