package live

import (
	"context"

	"tableflip.dev/lostfound/pkg/store"
)

// Slot holds at most one open handle for a scope. Opening a new query always
// cancels the previous one first.
type Slot[T any] struct {
	h *Handle[T]
}

// Open cancels the current handle, if any, and subscribes to q.
func (s *Slot[T]) Open(ctx context.Context, src store.Store, q store.Query, decode Decoder[T], listener Listener[T]) (*Handle[T], error) {
	s.Close()
	h, err := Subscribe(ctx, src, q, decode, listener)
	if err != nil {
		return nil, err
	}
	s.h = h
	return h, nil
}

// Close cancels the current handle.
func (s *Slot[T]) Close() {
	if s.h != nil {
		s.h.Cancel()
		s.h = nil
	}
}

// Current is the open handle, or nil.
func (s *Slot[T]) Current() *Handle[T] {
	return s.h
}

// Owns reports whether ev came from the open handle. Events from a replaced
// or cancelled handle must be dropped.
func (s *Slot[T]) Owns(ev Event[T]) bool {
	return s.h != nil && ev.Handle == s.h && !s.h.Cancelled()
}
