package chat

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tableflip.dev/lostfound/pkg/errs"
	"tableflip.dev/lostfound/pkg/identity"
	"tableflip.dev/lostfound/pkg/live"
	"tableflip.dev/lostfound/pkg/record"
	"tableflip.dev/lostfound/pkg/store"
)

var sam = identity.Identity{UID: "u1", DisplayName: "Sam", AvatarURL: "https://img/sam.png"}

func texts(msgs []record.Message) []string {
	out := make([]string, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, m.Text)
	}
	return out
}

func signal() (live.Listener[record.Message], <-chan live.Event[record.Message]) {
	ch := make(chan live.Event[record.Message], 16)
	return func(ev live.Event[record.Message]) { ch <- ev }, ch
}

func wait(t *testing.T, ch <-chan live.Event[record.Message]) live.Event[record.Message] {
	t.Helper()
	select {
	case ev := <-ch:
		return ev
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for thread snapshot")
	}
	return live.Event[record.Message]{}
}

func TestSendRejectsBeforeTouchingStore(t *testing.T) {
	ctx := context.Background()
	src := store.NewMemory()
	src.FailWrites(errors.New("must not be called"))

	_, err := Send(ctx, src, "item1", "   \n\t", sam)
	assert.ErrorIs(t, err, errs.ErrEmptyMessage)

	_, err = Send(ctx, src, "item1", "hello", identity.Identity{DisplayName: "nobody"})
	assert.ErrorIs(t, err, errs.ErrUnauthenticated)
	assert.NotErrorIs(t, err, errs.ErrWrite)
}

func TestSendWritesServerTimestamp(t *testing.T) {
	ctx := context.Background()
	src := store.NewMemory()
	sent := time.Date(2025, time.March, 3, 12, 0, 0, 0, time.UTC)
	src.SetClock(func() time.Time { return sent })

	msg, err := Send(ctx, src, "item1", "  is this yours?  ", identity.Identity{UID: "u2"})
	require.NoError(t, err)
	assert.Equal(t, "is this yours?", msg.Text)
	assert.Equal(t, "u2", msg.SenderRef)
	assert.Equal(t, "Anonymous", msg.SenderDisplayName)
	assert.True(t, sent.Equal(msg.SentAt))

	doc, err := src.Get(ctx, Collection("item1"), msg.ID)
	require.NoError(t, err)
	assert.Equal(t, "is this yours?", doc.Data["text"])
}

func TestSendWriteFailure(t *testing.T) {
	src := store.NewMemory()
	boom := errors.New("offline")
	src.FailWrites(boom)

	_, err := Send(context.Background(), src, "item1", "hello", sam)
	assert.ErrorIs(t, err, errs.ErrWrite)
	assert.ErrorIs(t, err, boom)
}

func TestStreamFollowsThreadInOrder(t *testing.T) {
	ctx := context.Background()
	src := store.NewMemory()
	listener, events := signal()

	s, err := Open(ctx, src, "item1", listener)
	require.NoError(t, err)
	defer s.Close()
	wait(t, events)
	assert.Empty(t, s.Messages())

	_, err = s.Send(ctx, "first", sam)
	require.NoError(t, err)
	wait(t, events)
	_, err = s.Send(ctx, "second", sam)
	require.NoError(t, err)
	wait(t, events)

	assert.Equal(t, []string{"first", "second"}, texts(s.Messages()))

	// Another thread is a different scope.
	_, err = Send(ctx, src, "item2", "elsewhere", sam)
	require.NoError(t, err)
	assert.Equal(t, []string{"first", "second"}, texts(s.Messages()))
}

func TestOptimisticCopyIsNeverShownTwice(t *testing.T) {
	ctx := context.Background()
	src := store.NewMemory()
	listener, events := signal()

	s, err := Open(ctx, src, "item1", listener, WithOptimistic())
	require.NoError(t, err)
	defer s.Close()
	wait(t, events)

	msg, err := s.Send(ctx, "on my way", sam)
	require.NoError(t, err)

	// Before or after the snapshot lands, the message appears exactly once.
	assert.Equal(t, []string{"on my way"}, texts(s.Messages()))
	wait(t, events)
	got := s.Messages()
	require.Len(t, got, 1)
	assert.Equal(t, msg.ID, got[0].ID)
	assert.Equal(t, []string{"on my way"}, texts(s.Messages()))
}

func TestOrderPutsPendingLast(t *testing.T) {
	t1 := time.Date(2025, time.March, 3, 9, 0, 0, 0, time.UTC)
	msgs := []record.Message{
		{Text: "pending-1"},
		{Text: "late", SentAt: t1.Add(time.Minute)},
		{Text: "tie-a", SentAt: t1},
		{Text: "pending-2"},
		{Text: "tie-b", SentAt: t1},
	}
	Order(msgs)
	assert.Equal(t, []string{"tie-a", "tie-b", "late", "pending-1", "pending-2"}, texts(msgs))
}

func TestStreamKeepsThreadOnSyncError(t *testing.T) {
	ctx := context.Background()
	src := store.NewMemory()
	listener, events := signal()

	_, err := Send(ctx, src, "item1", "hello", sam)
	require.NoError(t, err)

	s, err := Open(ctx, src, "item1", listener)
	require.NoError(t, err)
	defer s.Close()
	wait(t, events)

	src.Fail(Collection("item1"), errors.New("gone"))
	ev := wait(t, events)
	assert.ErrorIs(t, ev.Err, errs.ErrSync)
	assert.ErrorIs(t, s.Err(), errs.ErrSync)
	assert.Equal(t, []string{"hello"}, texts(s.Messages()))
}
