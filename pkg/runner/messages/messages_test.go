package messages

import (
	"bytes"
	"context"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tableflip.dev/lostfound/pkg/errs"
	"tableflip.dev/lostfound/pkg/identity"
	"tableflip.dev/lostfound/pkg/store"
)

func TestSendThenList(t *testing.T) {
	color.NoColor = true
	mem := store.NewMemory()
	mem.Put(store.Items, "a1", map[string]any{"title": "Keys"})
	alice := identity.Static{UID: "u1", DisplayName: "Alice"}
	ctx := context.Background()

	var buf bytes.Buffer
	require.NoError(t, (&Send{Store: mem, Identity: alice, ItemID: "a1", Text: "first", Out: &buf}).Do(ctx))
	require.NoError(t, (&Send{Store: mem, Identity: alice, ItemID: "a1", Text: "second", Out: &buf}).Do(ctx))

	buf.Reset()
	require.NoError(t, (&Messages{Store: mem, Identity: alice, ItemID: "a1", Out: &buf}).Do(ctx))
	out := buf.String()
	assert.Contains(t, out, "Alice")
	assert.Less(t, bytes.Index(buf.Bytes(), []byte("first")), bytes.Index(buf.Bytes(), []byte("second")))
}

func TestSendRejected(t *testing.T) {
	mem := store.NewMemory()
	mem.Put(store.Items, "a1", map[string]any{"title": "Keys"})
	ctx := context.Background()

	err := (&Send{Store: mem, Identity: identity.Anonymous, ItemID: "a1", Text: "hi"}).Do(ctx)
	assert.ErrorIs(t, err, errs.ErrUnauthenticated)

	err = (&Send{Store: mem, Identity: identity.Static{UID: "u1"}, ItemID: "a1", Text: " "}).Do(ctx)
	assert.ErrorIs(t, err, errs.ErrEmptyMessage)

	err = (&Send{Store: mem, Identity: identity.Static{UID: "u1"}, ItemID: "missing", Text: "hi"}).Do(ctx)
	assert.ErrorIs(t, err, errs.ErrNotFound)
}

func TestMessagesEmpty(t *testing.T) {
	mem := store.NewMemory()
	mem.Put(store.Items, "a1", map[string]any{"title": "Keys"})
	var buf bytes.Buffer
	require.NoError(t, (&Messages{Store: mem, ItemID: "a1", Out: &buf}).Do(context.Background()))
	assert.Contains(t, buf.String(), "no messages yet")
}
