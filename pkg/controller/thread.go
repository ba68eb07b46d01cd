package controller

import (
	"context"
	"sync"

	"tableflip.dev/lostfound/pkg/chat"
	"tableflip.dev/lostfound/pkg/errs"
	"tableflip.dev/lostfound/pkg/identity"
	"tableflip.dev/lostfound/pkg/live"
	"tableflip.dev/lostfound/pkg/record"
	"tableflip.dev/lostfound/pkg/store"
)

// Thread drives the chat panel of one item.
type Thread struct {
	src      store.Store
	parentID string
	ident    identity.Provider
	opts     []chat.Option

	// mu guards stream, which SendMessage reads off the event loop.
	mu       sync.Mutex
	stream   *chat.Stream
	messages []record.Message
	syncErr  error
}

// NewThread builds an unmounted chat controller for item parentID. A nil
// provider means nobody is signed in.
func NewThread(src store.Store, parentID string, ident identity.Provider, opts ...chat.Option) *Thread {
	if ident == nil {
		ident = identity.Anonymous
	}
	return &Thread{src: src, parentID: parentID, ident: ident, opts: opts}
}

// Mount opens the live thread, replacing any previous one.
func (c *Thread) Mount(ctx context.Context, listener live.Listener[record.Message]) error {
	c.Unmount()
	s, err := chat.Open(ctx, c.src, c.parentID, listener, c.opts...)
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.stream = s
	c.mu.Unlock()
	c.syncErr = nil
	return nil
}

// Unmount cancels the live thread.
func (c *Thread) Unmount() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stream != nil {
		c.stream.Close()
		c.stream = nil
	}
}

func (c *Thread) current() *chat.Stream {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stream
}

// Apply takes a live event from the current stream and refreshes the
// messages. Stale events are dropped.
func (c *Thread) Apply(ev live.Event[record.Message]) bool {
	s := c.current()
	if s == nil || ev.Handle != s.Handle() || ev.Handle.Cancelled() {
		return false
	}
	c.syncErr = ev.Err
	c.Refresh()
	return true
}

// Refresh re-reads the stream, picking up optimistic sends. Until the stream
// has its first snapshot the messages of the previous stream stay.
func (c *Thread) Refresh() {
	s := c.current()
	if s == nil {
		return
	}
	if s.Handle().Version() == 0 && c.messages != nil {
		return
	}
	c.messages = s.Messages()
}

// SendMessage validates and appends text as the current user. It does not
// touch the derived messages, so it may run off the event loop; call Refresh
// afterwards on the loop.
func (c *Thread) SendMessage(ctx context.Context, text string) (record.Message, error) {
	who, ok := c.ident.Current()
	if !ok {
		return record.Message{}, errs.ErrUnauthenticated
	}
	if s := c.current(); s != nil {
		return s.Send(ctx, text, who)
	}
	return chat.Send(ctx, c.src, c.parentID, text, who)
}

// CanCompose reports whether to show the compose box instead of a sign-in
// hint.
func (c *Thread) CanCompose() bool {
	_, ok := c.ident.Current()
	return ok
}

// Me is the current user.
func (c *Thread) Me() identity.Identity {
	who, _ := c.ident.Current()
	return who
}

func (c *Thread) ParentID() string { return c.parentID }

func (c *Thread) Messages() []record.Message { return c.messages }

// SyncErr is the error that stopped the live thread.
func (c *Thread) SyncErr() error { return c.syncErr }
