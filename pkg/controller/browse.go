// Package controller wires live queries to view state for one screen. A
// controller is not safe for concurrent use: every method is meant to run on
// the screen's event loop, with live events handed over through Apply.
package controller

import (
	"context"
	"time"

	"tableflip.dev/lostfound/pkg/live"
	"tableflip.dev/lostfound/pkg/normalize"
	"tableflip.dev/lostfound/pkg/record"
	"tableflip.dev/lostfound/pkg/store"
	"tableflip.dev/lostfound/pkg/view"
)

// DefaultRecent is how many items the recent scope shows.
const DefaultRecent = 4

// DecodeItem is the live.Decoder for item documents.
func DecodeItem(doc store.Document) record.Record {
	return normalize.Item(doc.ID, doc.Data)
}

// AllItems follows every item, newest first.
func AllItems() store.Query {
	return store.Query{Collection: store.Items, OrderBy: normalize.FieldCreatedAt, Descending: true}
}

// RecentItems follows the n newest items.
func RecentItems(n int) store.Query {
	if n <= 0 {
		n = DefaultRecent
	}
	q := AllItems()
	q.Limit = n
	return q
}

// OwnedItems follows the items posted by uid, newest first.
func OwnedItems(uid string) store.Query {
	q := AllItems()
	q.Where = []store.Where{{Field: normalize.FieldOwner, Value: uid}}
	return q
}

// Option configures a Browse controller.
type Option func(*Browse)

// WithQuery replaces the default AllItems scope.
func WithQuery(q store.Query) Option {
	return func(c *Browse) {
		c.query = q
	}
}

// WithState sets the initial view state.
func WithState(st view.State) Option {
	return func(c *Browse) {
		c.state = st
	}
}

// WithPageSize overrides the page size.
func WithPageSize(n int) Option {
	return func(c *Browse) {
		if n > 0 {
			c.state.PageSize = n
		}
	}
}

// Browse drives a list of items: one live query plus the filter, sort and
// page state derived over it.
type Browse struct {
	src   store.Store
	query store.Query
	slot  live.Slot[record.Record]

	state   view.State
	cache   []record.Record
	result  view.Result
	syncErr error
	loaded  bool
}

// NewBrowse builds an unmounted controller.
func NewBrowse(src store.Store, opts ...Option) *Browse {
	c := &Browse{src: src, query: AllItems(), state: view.NewState()}
	for _, opt := range opts {
		opt(c)
	}
	c.derive()
	return c
}

// Mount opens the live query. listener is called from the subscription
// goroutine; it must hand events back to the event loop, which passes them
// to Apply. Mounting again replaces the previous query.
func (c *Browse) Mount(ctx context.Context, listener live.Listener[record.Record]) error {
	c.syncErr = nil
	_, err := c.slot.Open(ctx, c.src, c.query, DecodeItem, listener)
	return err
}

// Unmount cancels the live query. The last derived result stays readable.
func (c *Browse) Unmount() {
	c.slot.Close()
}

// Apply takes a live event. Events from a cancelled or replaced query are
// dropped and Apply reports false. A failure never clears the cache.
func (c *Browse) Apply(ev live.Event[record.Record]) bool {
	if !c.slot.Owns(ev) {
		return false
	}
	c.syncErr = ev.Err
	if ev.Err != nil && ev.Version == 0 {
		// The query failed before its first snapshot: keep what the
		// previous query showed.
		return true
	}
	c.cache = ev.Records
	c.loaded = true
	c.derive()
	return true
}

func (c *Browse) derive() {
	c.result = view.Derive(c.cache, c.state)
	c.state.Page = c.result.Page
}

// setFilter applies a filter or sort change, returning to page 1.
func (c *Browse) setFilter(mutate func(*view.State)) {
	mutate(&c.state)
	c.state.Page = 1
	c.derive()
}

func (c *Browse) SetSearch(text string) {
	c.setFilter(func(s *view.State) { s.Search = text })
}

func (c *Browse) SetKind(k view.KindFilter) {
	c.setFilter(func(s *view.State) { s.Kind = k })
}

func (c *Browse) SetCategory(category string) {
	c.setFilter(func(s *view.State) { s.Category = category })
}

func (c *Browse) SetLocation(location string) {
	c.setFilter(func(s *view.State) { s.Location = location })
}

// SetEventDate filters to one calendar day. A zero day clears the filter.
func (c *Browse) SetEventDate(day time.Time) {
	c.setFilter(func(s *view.State) { s.EventDate = day })
}

func (c *Browse) SetDateBasis(b view.DateBasis) {
	c.setFilter(func(s *view.State) { s.DateBasis = b })
}

func (c *Browse) SetSince(t time.Time) {
	c.setFilter(func(s *view.State) { s.Since = t })
}

func (c *Browse) SetSort(k view.SortKey) {
	c.setFilter(func(s *view.State) { s.Sort = k })
}

// ClearFilters resets every filter but keeps the sort.
func (c *Browse) ClearFilters() {
	c.setFilter(func(s *view.State) {
		sort, size := s.Sort, s.PageSize
		*s = view.NewState()
		s.Sort = sort
		s.PageSize = size
	})
}

// SetPage moves to page n, clamped to the available pages.
func (c *Browse) SetPage(n int) {
	c.state.Page = n
	c.derive()
}

func (c *Browse) NextPage() { c.SetPage(c.state.Page + 1) }
func (c *Browse) PrevPage() { c.SetPage(c.state.Page - 1) }

func (c *Browse) State() view.State { return c.state }
func (c *Browse) Result() view.Result { return c.result }
func (c *Browse) Visible() []record.Record { return c.result.Visible }
func (c *Browse) TotalCount() int { return c.result.TotalCount }
func (c *Browse) TotalPages() int { return c.result.TotalPages }
func (c *Browse) Page() int { return c.result.Page }
func (c *Browse) PageNumbers() []view.PageMark { return c.result.PageNumbers }
func (c *Browse) Records() []record.Record { return c.cache }
func (c *Browse) Query() store.Query { return c.query }
func (c *Browse) Loaded() bool { return c.loaded }

// SyncErr is the error that stopped the live query. The result still shows
// the last good snapshot.
func (c *Browse) SyncErr() error { return c.syncErr }

// Facets lists the categories and locations of the cached items.
func (c *Browse) Facets() (categories, locations []string) {
	return view.Facets(c.cache)
}
