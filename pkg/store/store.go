// Package store is the document database the rest of lostfound reads from and
// writes to. Documents live in slash-separated collections ("items",
// "items/<id>/messages") and can be read once or followed as live queries that
// re-deliver the full ordered result on every change.
package store

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"sync"
	"time"
)

// Collection names.
const (
	Items    = "items"
	Messages = "messages"
)

// Document is one stored document. Data holds JSON-compatible values.
type Document struct {
	ID   string         `json:"id"`
	Data map[string]any `json:"data"`
}

// Snapshot is the ordered result of a query.
type Snapshot []Document

// Where is an equality filter on a top-level field.
type Where struct {
	Field string
	Value any
}

// Query selects and orders documents of one collection.
type Query struct {
	Collection string
	OrderBy    string
	Descending bool
	Limit      int
	Where      []Where
}

// Scope names the query for logs and errors.
func (q Query) Scope() string {
	if len(q.Where) == 0 {
		return q.Collection
	}
	parts := make([]string, 0, len(q.Where))
	for _, w := range q.Where {
		parts = append(parts, fmt.Sprintf("%s=%v", w.Field, w.Value))
	}
	return q.Collection + "?" + strings.Join(parts, "&")
}

// Push is one delivery on a live query: either a full snapshot or the error
// that ended it.
type Push struct {
	Docs Snapshot
	Err  error
}

// Store is the document database contract.
type Store interface {
	// Append adds a document under a new id. Each field named in
	// serverTimestamps is set from the store clock.
	Append(ctx context.Context, collection string, data map[string]any, serverTimestamps ...string) (Document, error)
	// Get reads one document. A missing one is errs.ErrNotFound.
	Get(ctx context.Context, collection, id string) (Document, error)
	// Update merges fields into an existing document.
	Update(ctx context.Context, collection, id string, fields map[string]any, serverTimestamps ...string) error
	// Delete removes a document and everything nested under it.
	Delete(ctx context.Context, collection, id string) error
	// Query is a one-shot ordered read.
	Query(ctx context.Context, q Query) (Snapshot, error)
	// Subscribe opens a live query. The first push is the current result. The
	// channel closes when ctx is done or after a push carrying an error.
	Subscribe(ctx context.Context, q Query) (<-chan Push, error)
}

// Sub returns the path of a collection nested under a document.
func Sub(collection, id, child string) string {
	return collection + "/" + id + "/" + child
}

var errInvalidPath = errors.New("store: invalid collection path")

// validCollection accepts "name" or "name/id/name/..." paths.
func validCollection(collection string) error {
	parts := strings.Split(collection, "/")
	if len(parts)%2 == 0 {
		return fmt.Errorf("%w: %q", errInvalidPath, collection)
	}
	for _, p := range parts {
		if err := validSegment(p); err != nil {
			return fmt.Errorf("%w: %q", errInvalidPath, collection)
		}
	}
	return nil
}

func validSegment(s string) error {
	if s == "" || strings.HasPrefix(s, ".") || strings.ContainsAny(s, `/\`) {
		return errInvalidPath
	}
	return nil
}

// clock hands out strictly increasing timestamps so that documents appended
// by one store never share an ordering key.
type clock struct {
	mu   sync.Mutex
	last time.Time
	now  func() time.Time
}

func (c *clock) next() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := time.Now
	if c.now != nil {
		now = c.now
	}
	t := now().UTC()
	if !t.After(c.last) {
		t = c.last.Add(time.Nanosecond)
	}
	c.last = t
	return t
}

func stamp(data map[string]any, fields []string, t time.Time) {
	for _, f := range fields {
		data[f] = t.Format(time.RFC3339Nano)
	}
}

func cloneData(data map[string]any) map[string]any {
	out := make(map[string]any, len(data))
	for k, v := range data {
		out[k] = v
	}
	return out
}

func cloneDoc(d Document) Document {
	return Document{ID: d.ID, Data: cloneData(d.Data)}
}

// apply filters, orders and limits docs for q. docs is not modified.
func apply(docs []Document, q Query) Snapshot {
	out := make(Snapshot, 0, len(docs))
	for _, d := range docs {
		if matches(d, q.Where) {
			out = append(out, cloneDoc(d))
		}
	}
	sortDocuments(out, q.OrderBy, q.Descending)
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out
}

func matches(d Document, where []Where) bool {
	for _, w := range where {
		if !equalValues(d.Data[w.Field], w.Value) {
			return false
		}
	}
	return true
}

func equalValues(a, b any) bool {
	fa, aNum := toFloat(a)
	fb, bNum := toFloat(b)
	if aNum && bNum {
		return fa == fb
	}
	return reflect.DeepEqual(a, b)
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}

// sortDocuments orders by field, ids breaking ties. A value that is missing
// sorts as the oldest possible one.
func sortDocuments(docs Snapshot, field string, desc bool) {
	sort.SliceStable(docs, func(i, j int) bool {
		return docs[i].ID < docs[j].ID
	})
	if field == "" {
		return
	}
	sort.SliceStable(docs, func(i, j int) bool {
		c := compareValues(docs[i].Data[field], docs[j].Data[field])
		if desc {
			return c > 0
		}
		return c < 0
	})
}

func compareValues(a, b any) int {
	ta, aTime := orderTime(a)
	tb, bTime := orderTime(b)
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	case aTime && bTime:
		return ta.Compare(tb)
	}
	fa, aNum := toFloat(a)
	fb, bNum := toFloat(b)
	if aNum && bNum {
		switch {
		case fa < fb:
			return -1
		case fa > fb:
			return 1
		}
		return 0
	}
	return strings.Compare(fmt.Sprint(a), fmt.Sprint(b))
}

func orderTime(v any) (time.Time, bool) {
	switch t := v.(type) {
	case time.Time:
		return t, true
	case string:
		parsed, err := time.Parse(time.RFC3339Nano, t)
		return parsed, err == nil
	case map[string]any:
		secs, ok := toFloat(t["seconds"])
		if !ok {
			return time.Time{}, false
		}
		nanos, _ := toFloat(t["nanoseconds"])
		return time.Unix(int64(secs), int64(nanos)), true
	}
	return time.Time{}, false
}

// offer delivers p, replacing an undelivered older push. Sends on ch must be
// serialized by the caller.
func offer(ch chan Push, p Push) {
	for {
		select {
		case ch <- p:
			return
		default:
		}
		select {
		case <-ch:
		default:
		}
	}
}

// deliverFinal blocks until p is taken or ctx is done so that a terminal
// error is never replaced by a later push.
func deliverFinal(ctx context.Context, ch chan Push, p Push) {
	select {
	case ch <- p:
	case <-ctx.Done():
	}
}
