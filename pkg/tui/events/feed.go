// Package events carries live query events into a bubbletea program.
package events

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea/v2"

	"tableflip.dev/lostfound/pkg/live"
)

// Msg wraps one live event for Update.
type Msg[T any] struct {
	Event live.Event[T]
}

// Feed queues live events until the program asks for the next one. Listen is
// the live.Listener; Wait is the matching tea.Cmd.
type Feed[T any] struct {
	ch   chan live.Event[T]
	done chan struct{}
	once sync.Once
}

func NewFeed[T any]() *Feed[T] {
	return &Feed[T]{ch: make(chan live.Event[T], 16), done: make(chan struct{})}
}

// Listen blocks until the program takes ev or the feed is closed.
func (f *Feed[T]) Listen(ev live.Event[T]) {
	select {
	case f.ch <- ev:
	case <-f.done:
	}
}

// Wait returns a command that delivers the next event as a Msg.
func (f *Feed[T]) Wait() tea.Cmd {
	return func() tea.Msg {
		select {
		case ev := <-f.ch:
			return Msg[T]{Event: ev}
		case <-f.done:
			return nil
		}
	}
}

// Close releases any listener blocked on the feed.
func (f *Feed[T]) Close() {
	f.once.Do(func() { close(f.done) })
}
