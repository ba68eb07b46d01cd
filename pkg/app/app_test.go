package app

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tableflip.dev/lostfound/pkg/errs"
	"tableflip.dev/lostfound/pkg/identity"
	"tableflip.dev/lostfound/pkg/record"
	"tableflip.dev/lostfound/pkg/store"
	"tableflip.dev/lostfound/pkg/view"
)

var (
	alice = identity.Static{UID: "u1", DisplayName: "Alice"}
	bob   = identity.Static{UID: "u2", DisplayName: "Bob"}
)

func newService(who identity.Provider) (*Service, *store.Memory) {
	mem := store.NewMemory()
	return &Service{Store: mem, Identity: who}, mem
}

func validReport() ReportInput {
	return ReportInput{
		Title:    " Blue umbrella ",
		Kind:     "Found",
		Category: "Accessories",
		Location: "Library",
		Date:     "2025-03-03",
		Time:     "14:30",
		Email:    "alice@example.edu",
		Images:   []string{"https://example.edu/u.jpg"},
		Keywords: []string{"blue", "umbrella"},
	}
}

func TestReport(t *testing.T) {
	svc, mem := newService(alice)
	ctx := context.Background()

	r, err := svc.Report(ctx, validReport())
	require.NoError(t, err)
	assert.Equal(t, "Blue umbrella", r.Title)
	assert.Equal(t, record.Found, r.Kind)
	assert.Equal(t, "u1", r.OwnerRef)
	assert.Equal(t, "alice@example.edu", r.Contact.Email)
	assert.Equal(t, "https://example.edu/u.jpg", r.PrimaryImage())
	assert.False(t, r.CreatedAt.IsZero())
	require.True(t, r.HasEventDate())
	assert.Equal(t, 14, r.EventAt.Hour())
	assert.Equal(t, 30, r.EventAt.Minute())

	doc, err := mem.Get(ctx, store.Items, r.ID)
	require.NoError(t, err)
	assert.Equal(t, "2025-03-03", doc.Data["dateFound"])
	assert.Equal(t, "found", doc.Data["status"])
}

func TestReportValidation(t *testing.T) {
	cases := map[string]func(*ReportInput){
		"no title":    func(in *ReportInput) { in.Title = "  " },
		"bad kind":    func(in *ReportInput) { in.Kind = "stolen" },
		"no category": func(in *ReportInput) { in.Category = "" },
		"no location": func(in *ReportInput) { in.Location = "" },
		"bad email":   func(in *ReportInput) { in.Email = "not-an-email" },
		"bad time":    func(in *ReportInput) { in.Time = "25:99" },
		"bad image":   func(in *ReportInput) { in.Images = []string{"umbrella.jpg"} },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			svc, mem := newService(alice)
			in := validReport()
			mutate(&in)
			_, err := svc.Report(context.Background(), in)
			assert.ErrorIs(t, err, ErrInvalid)
			snap, _ := mem.Query(context.Background(), store.Query{Collection: store.Items})
			assert.Empty(t, snap)
		})
	}
}

func TestReportNeedsSignIn(t *testing.T) {
	svc, _ := newService(identity.Anonymous)
	_, err := svc.Report(context.Background(), validReport())
	assert.ErrorIs(t, err, errs.ErrUnauthenticated)

	_, err = (&Service{}).Report(context.Background(), validReport())
	assert.ErrorIs(t, err, ErrNoStore)
}

func TestReportWriteFailure(t *testing.T) {
	svc, mem := newService(alice)
	mem.FailWrites(assert.AnError)
	_, err := svc.Report(context.Background(), validReport())
	assert.ErrorIs(t, err, errs.ErrWrite)
}

func TestEditIsOwnerOnly(t *testing.T) {
	svc, mem := newService(alice)
	ctx := context.Background()
	r, err := svc.Report(ctx, validReport())
	require.NoError(t, err)

	other := &Service{Store: mem, Identity: bob}
	_, err = other.Edit(ctx, r.ID, EditInput{Title: "Mine now"})
	assert.ErrorIs(t, err, ErrNotOwner)

	edited, err := svc.Edit(ctx, r.ID, EditInput{Title: "Navy umbrella", Location: "Gym"})
	require.NoError(t, err)
	assert.Equal(t, "Navy umbrella", edited.Title)
	assert.Equal(t, "Gym", edited.Location)
	assert.Equal(t, "Accessories", edited.Category)
	assert.False(t, edited.UpdatedAt.IsZero())

	_, err = svc.Edit(ctx, "missing", EditInput{Title: "x"})
	assert.ErrorIs(t, err, errs.ErrNotFound)
}

func TestDeleteRemovesMessages(t *testing.T) {
	svc, mem := newService(alice)
	ctx := context.Background()
	r, err := svc.Report(ctx, validReport())
	require.NoError(t, err)
	thread := store.Sub(store.Items, r.ID, store.Messages)
	_, err = mem.Append(ctx, thread, map[string]any{"text": "mine!"}, "timestamp")
	require.NoError(t, err)

	assert.ErrorIs(t, (&Service{Store: mem, Identity: bob}).Delete(ctx, r.ID), ErrNotOwner)
	require.NoError(t, svc.Delete(ctx, r.ID))

	_, err = svc.Get(ctx, r.ID)
	assert.ErrorIs(t, err, errs.ErrNotFound)
	snap, err := mem.Query(ctx, store.Query{Collection: thread})
	require.NoError(t, err)
	assert.Empty(t, snap)
}

func TestRecentMineAndList(t *testing.T) {
	svc, mem := newService(alice)
	ctx := context.Background()
	base := time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC)
	for i, id := range []string{"a", "b", "c", "d", "e"} {
		owner := "u2"
		if i%2 == 0 {
			owner = "u1"
		}
		mem.Put(store.Items, id, map[string]any{
			"title":     id,
			"ownerUid":  owner,
			"createdAt": base.AddDate(0, 0, i).Format(time.RFC3339),
		})
	}

	recent, err := svc.Recent(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"e", "d", "c", "b"}, titles(recent))

	mine, err := svc.Mine(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"e", "c", "a"}, titles(mine))

	st := view.NewState()
	st.PageSize = 2
	st.Page = 3
	res, err := svc.List(ctx, st)
	require.NoError(t, err)
	assert.Equal(t, 5, res.TotalCount)
	assert.Equal(t, []string{"a"}, titles(res.Visible))
}

func titles(records []record.Record) []string {
	out := make([]string, 0, len(records))
	for _, r := range records {
		out = append(out, r.Title)
	}
	return out
}
