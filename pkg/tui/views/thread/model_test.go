package thread

import (
	"context"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea/v2"
	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tableflip.dev/lostfound/pkg/identity"
	"tableflip.dev/lostfound/pkg/record"
	"tableflip.dev/lostfound/pkg/store"
)

var item = record.Record{ID: "item1", Title: "Blue umbrella", Kind: record.Found, Location: "Library"}

func newTestModel(t *testing.T, src store.Store, ident identity.Provider) *Model {
	t.Helper()
	m := New(context.Background(), src, item, ident)
	t.Cleanup(m.Close)
	m.Init()
	m.Update(m.feed.Wait()())
	return m
}

// plain renders the screen without styling.
func plain(m *Model) string {
	return ansi.Strip(m.View())
}

func TestSendShowsMessage(t *testing.T) {
	src := store.NewMemory()
	m := newTestModel(t, src, identity.Static{UID: "u1", DisplayName: "Alice"})
	assert.Contains(t, plain(m), "No messages yet.")

	m.input.SetValue("is this yours?")
	_, cmd := m.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	require.NotNil(t, cmd, "expected send command")
	assert.Empty(t, m.input.Value(), "compose box cleared")
	m.Update(cmd())

	msgs := m.Messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, "is this yours?", msgs[0].Text)
	out := plain(m)
	assert.Contains(t, out, "Alice")
	assert.Contains(t, out, "is this yours?")
	assert.Empty(t, m.Status())
}

func TestEmptySendIsRejected(t *testing.T) {
	m := newTestModel(t, store.NewMemory(), identity.Static{UID: "u1", DisplayName: "Alice"})
	m.input.SetValue("   ")
	_, cmd := m.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	assert.Nil(t, cmd)
	assert.Equal(t, "Type a message first", m.Status())
}

func TestSignedOutShowsHint(t *testing.T) {
	m := newTestModel(t, store.NewMemory(), identity.Anonymous)
	assert.Contains(t, plain(m), "Sign in to chat")
	m.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	assert.Equal(t, "Sign in to chat", m.Status())
}

func TestLiveMessagesArrive(t *testing.T) {
	src := store.NewMemory()
	m := newTestModel(t, src, identity.Anonymous)
	m.Now = func() time.Time { return time.Date(2025, time.March, 3, 12, 5, 0, 0, time.UTC) }

	src.Put(store.Sub(store.Items, item.ID, store.Messages), "m1", map[string]any{
		"text":       "found it by the desk",
		"senderName": "Bob",
		"timestamp":  "2025-03-03T12:00:00Z",
	})
	m.Update(m.feed.Wait()())

	out := plain(m)
	assert.Contains(t, out, "found it by the desk")
	assert.Contains(t, out, "5 min ago")
}

func TestEscWhenEmbedded(t *testing.T) {
	m := newTestModel(t, store.NewMemory(), identity.Anonymous)
	m.Embedded = true
	_, cmd := m.Update(tea.KeyPressMsg{Code: tea.KeyEscape})
	require.NotNil(t, cmd)
	assert.IsType(t, ClosedMsg{}, cmd())
}
