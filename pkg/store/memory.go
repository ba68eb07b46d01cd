package store

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"tableflip.dev/lostfound/pkg/errs"
)

// Memory is an in-process Store. Live queries are notified synchronously on
// every write. It backs tests and the --memory demo mode.
type Memory struct {
	mu       sync.Mutex
	docs     map[string][]Document
	subs     map[int]*memorySub
	nextSub  int
	nextID   int
	writeErr error
	subErr   map[string]error
	clock    clock
}

type memorySub struct {
	q  Query
	ch chan Push
}

var _ Store = (*Memory)(nil)

// NewMemory returns an empty store.
func NewMemory() *Memory {
	return &Memory{
		docs: make(map[string][]Document),
		subs: make(map[int]*memorySub),
	}
}

// SetClock replaces the clock used for server timestamps.
func (m *Memory) SetClock(now func() time.Time) {
	m.clock.mu.Lock()
	m.clock.now = now
	m.clock.mu.Unlock()
}

// FailWrites makes every following write return err. A nil err clears it.
func (m *Memory) FailWrites(err error) {
	m.mu.Lock()
	m.writeErr = err
	m.mu.Unlock()
}

// Fail ends every live query on collection with err.
func (m *Memory) Fail(collection string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, sub := range m.subs {
		if sub.q.Collection != collection {
			continue
		}
		offer(sub.ch, Push{Err: err})
		close(sub.ch)
		delete(m.subs, id)
	}
}

// FailSubscribe makes following live queries on collection fail before their
// first snapshot. A nil err clears it.
func (m *Memory) FailSubscribe(collection string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err == nil {
		delete(m.subErr, collection)
		return
	}
	if m.subErr == nil {
		m.subErr = make(map[string]error)
	}
	m.subErr[collection] = err
}

// Put stores a document with a caller-chosen id and raw data, exactly as
// given. It is how tests seed heterogeneous legacy shapes.
func (m *Memory) Put(collection, id string, data map[string]any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.upsertLocked(collection, Document{ID: id, Data: cloneData(data)})
	m.notifyLocked(collection)
}

// Subscribers reports how many live queries are open on collection.
func (m *Memory) Subscribers(collection string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, sub := range m.subs {
		if sub.q.Collection == collection {
			n++
		}
	}
	return n
}

func (m *Memory) Append(_ context.Context, collection string, data map[string]any, serverTimestamps ...string) (Document, error) {
	if err := validCollection(collection); err != nil {
		return Document{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.writeErr != nil {
		return Document{}, fmt.Errorf("store: append %s: %w", collection, m.writeErr)
	}
	m.nextID++
	doc := Document{ID: "doc-" + strconv.Itoa(m.nextID), Data: cloneData(data)}
	stamp(doc.Data, serverTimestamps, m.clock.next())
	m.upsertLocked(collection, doc)
	m.notifyLocked(collection)
	return cloneDoc(doc), nil
}

func (m *Memory) Get(_ context.Context, collection, id string) (Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if i := m.indexLocked(collection, id); i >= 0 {
		return cloneDoc(m.docs[collection][i]), nil
	}
	return Document{}, errs.NotFoundError{Resource: collection + "/" + id}
}

func (m *Memory) Update(_ context.Context, collection, id string, fields map[string]any, serverTimestamps ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := m.indexLocked(collection, id)
	if i < 0 {
		return errs.NotFoundError{Resource: collection + "/" + id}
	}
	if m.writeErr != nil {
		return fmt.Errorf("store: update %s/%s: %w", collection, id, m.writeErr)
	}
	doc := cloneDoc(m.docs[collection][i])
	for k, v := range fields {
		doc.Data[k] = v
	}
	stamp(doc.Data, serverTimestamps, m.clock.next())
	m.docs[collection][i] = doc
	m.notifyLocked(collection)
	return nil
}

func (m *Memory) Delete(_ context.Context, collection, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := m.indexLocked(collection, id)
	if i < 0 {
		return errs.NotFoundError{Resource: collection + "/" + id}
	}
	if m.writeErr != nil {
		return fmt.Errorf("store: delete %s/%s: %w", collection, id, m.writeErr)
	}
	docs := m.docs[collection]
	m.docs[collection] = append(docs[:i:i], docs[i+1:]...)
	nested := collection + "/" + id + "/"
	for c := range m.docs {
		if strings.HasPrefix(c, nested) {
			delete(m.docs, c)
			m.notifyLocked(c)
		}
	}
	m.notifyLocked(collection)
	return nil
}

func (m *Memory) Query(_ context.Context, q Query) (Snapshot, error) {
	if err := validCollection(q.Collection); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return apply(m.docs[q.Collection], q), nil
}

func (m *Memory) Subscribe(ctx context.Context, q Query) (<-chan Push, error) {
	if err := validCollection(q.Collection); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if err, ok := m.subErr[q.Collection]; ok {
		ch := make(chan Push, 1)
		ch <- Push{Err: err}
		close(ch)
		return ch, nil
	}
	m.nextSub++
	id := m.nextSub
	sub := &memorySub{q: q, ch: make(chan Push, 1)}
	m.subs[id] = sub
	offer(sub.ch, Push{Docs: apply(m.docs[q.Collection], q)})

	go func() {
		<-ctx.Done()
		m.mu.Lock()
		defer m.mu.Unlock()
		if _, ok := m.subs[id]; ok {
			close(sub.ch)
			delete(m.subs, id)
		}
	}()
	return sub.ch, nil
}

func (m *Memory) upsertLocked(collection string, doc Document) {
	if i := m.indexLocked(collection, doc.ID); i >= 0 {
		m.docs[collection][i] = doc
		return
	}
	m.docs[collection] = append(m.docs[collection], doc)
}

func (m *Memory) indexLocked(collection, id string) int {
	for i, d := range m.docs[collection] {
		if d.ID == id {
			return i
		}
	}
	return -1
}

func (m *Memory) notifyLocked(collection string) {
	for _, sub := range m.subs {
		if sub.q.Collection == collection {
			offer(sub.ch, Push{Docs: apply(m.docs[collection], sub.q)})
		}
	}
}
