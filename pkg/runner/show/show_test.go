package show

import (
	"bytes"
	"context"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tableflip.dev/lostfound/pkg/app"
	"tableflip.dev/lostfound/pkg/errs"
	"tableflip.dev/lostfound/pkg/store"
)

func TestShow(t *testing.T) {
	color.NoColor = true
	mem := store.NewMemory()
	mem.Put(store.Items, "a1", map[string]any{"itemName": "Student ID", "found": true, "location": "Cafeteria"})
	svc := &app.Service{Store: mem}

	var buf bytes.Buffer
	require.NoError(t, (&Show{Service: svc, ID: "a1", ShowID: true, Out: &buf}).Do(context.Background()))
	assert.Contains(t, buf.String(), "FOUND Student ID")
	assert.Contains(t, buf.String(), "Cafeteria")
	assert.Contains(t, buf.String(), "a1")

	buf.Reset()
	require.NoError(t, (&Show{Service: svc, ID: "a1", JSON: true, Out: &buf}).Do(context.Background()))
	assert.Contains(t, buf.String(), `"title":"Student ID"`)

	err := (&Show{Service: svc, ID: "nope", Out: &buf}).Do(context.Background())
	assert.ErrorIs(t, err, errs.ErrNotFound)
}
