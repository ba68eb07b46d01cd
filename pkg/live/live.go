// Package live turns a store live query into a locally cached, normalized
// snapshot with an explicit cancel.
package live

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"tableflip.dev/lostfound/pkg/errs"
	"tableflip.dev/lostfound/pkg/store"
)

// Decoder maps one raw document to its canonical value. It must not fail.
type Decoder[T any] func(store.Document) T

// Event tells the listener that a handle's cache changed or that the query
// failed. Records is the cache after the change; it is shared and must not be
// modified.
type Event[T any] struct {
	Handle  *Handle[T]
	Version uint64
	Records []T
	Err     error
}

// Listener receives events from the subscription goroutine.
type Listener[T any] func(Event[T])

// Handle owns one live query and the cache it feeds.
type Handle[T any] struct {
	query    store.Query
	decode   Decoder[T]
	listener Listener[T]
	cancel   context.CancelFunc
	done     chan struct{}
	once     sync.Once

	mu        sync.RWMutex
	records   []T
	version   uint64
	err       error
	cancelled bool
}

// Subscribe opens q on src. Every snapshot replaces the cache wholesale in
// server order and then calls listener once. A failed live query keeps the
// last good cache, reports an errs.SyncError and is not retried.
func Subscribe[T any](ctx context.Context, src store.Store, q store.Query, decode Decoder[T], listener Listener[T]) (*Handle[T], error) {
	ctx, cancel := context.WithCancel(ctx)
	pushes, err := src.Subscribe(ctx, q)
	if err != nil {
		cancel()
		return nil, err
	}
	h := &Handle[T]{
		query:    q,
		decode:   decode,
		listener: listener,
		cancel:   cancel,
		done:     make(chan struct{}),
	}
	go h.run(ctx, pushes)
	return h, nil
}

func (h *Handle[T]) run(ctx context.Context, pushes <-chan store.Push) {
	defer close(h.done)
	log := zerolog.Ctx(ctx).With().Str("scope", h.query.Scope()).Logger()
	for push := range pushes {
		if push.Err != nil {
			ev, ok := h.fail(push.Err)
			if !ok {
				log.Debug().Err(push.Err).Msg("dropping error for cancelled subscription")
				return
			}
			log.Warn().Err(push.Err).Msg("live query failed, keeping last snapshot")
			h.notify(ev)
			return
		}
		records := make([]T, 0, len(push.Docs))
		for _, doc := range push.Docs {
			records = append(records, h.decode(doc))
		}
		ev, ok := h.replace(records)
		if !ok {
			log.Debug().Msg("dropping snapshot for cancelled subscription")
			return
		}
		log.Debug().Int("records", len(records)).Uint64("version", ev.Version).Msg("snapshot applied")
		h.notify(ev)
	}
}

func (h *Handle[T]) replace(records []T) (Event[T], bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.cancelled {
		return Event[T]{}, false
	}
	h.records = records
	h.err = nil
	h.version++
	return Event[T]{Handle: h, Version: h.version, Records: records}, true
}

func (h *Handle[T]) fail(cause error) (Event[T], bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.cancelled {
		return Event[T]{}, false
	}
	h.err = errs.SyncError{Scope: h.query.Scope(), Err: cause}
	return Event[T]{Handle: h, Version: h.version, Records: h.records, Err: h.err}, true
}

func (h *Handle[T]) notify(ev Event[T]) {
	if h.listener != nil {
		h.listener(ev)
	}
}

// Cancel closes the live query. It is safe to call more than once and from
// any goroutine. No snapshot changes the cache after Cancel returns.
func (h *Handle[T]) Cancel() {
	h.once.Do(func() {
		h.mu.Lock()
		h.cancelled = true
		h.mu.Unlock()
		h.cancel()
	})
}

// Cancelled reports whether Cancel was called.
func (h *Handle[T]) Cancelled() bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.cancelled
}

// Done is closed once the subscription goroutine has exited.
func (h *Handle[T]) Done() <-chan struct{} {
	return h.done
}

// Records returns the current cache. The slice is shared and must not be
// modified.
func (h *Handle[T]) Records() []T {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.records
}

// Version counts applied snapshots.
func (h *Handle[T]) Version() uint64 {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.version
}

// Err is the SyncError that ended the query, if any.
func (h *Handle[T]) Err() error {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.err
}

// Query is the query this handle follows.
func (h *Handle[T]) Query() store.Query {
	return h.query
}
