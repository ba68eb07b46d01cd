// Package chat follows and appends to the message thread of one item.
package chat

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"tableflip.dev/lostfound/pkg/errs"
	"tableflip.dev/lostfound/pkg/identity"
	"tableflip.dev/lostfound/pkg/live"
	"tableflip.dev/lostfound/pkg/normalize"
	"tableflip.dev/lostfound/pkg/record"
	"tableflip.dev/lostfound/pkg/store"
)

// Collection is the message collection of item parentID.
func Collection(parentID string) string {
	return store.Sub(store.Items, parentID, store.Messages)
}

// Query follows the thread of parentID, oldest first.
func Query(parentID string) store.Query {
	return store.Query{Collection: Collection(parentID), OrderBy: normalize.FieldTimestamp}
}

// Decode is the live.Decoder for message documents.
func Decode(doc store.Document) record.Message {
	return normalize.Message(doc.ID, doc.Data)
}

// Validate checks a send before anything touches the store.
func Validate(text string, sender identity.Identity) error {
	if strings.TrimSpace(text) == "" {
		return errs.ErrEmptyMessage
	}
	if !sender.SignedIn() {
		return errs.ErrUnauthenticated
	}
	return nil
}

// Send appends a message to the thread of parentID. The send time is
// assigned by the store.
func Send(ctx context.Context, src store.Store, parentID, text string, sender identity.Identity) (record.Message, error) {
	if err := Validate(text, sender); err != nil {
		return record.Message{}, err
	}
	name := strings.TrimSpace(sender.DisplayName)
	if name == "" {
		name = normalize.AnonymousSender
	}
	doc, err := src.Append(ctx, Collection(parentID), map[string]any{
		normalize.FieldText:        strings.TrimSpace(text),
		normalize.FieldSenderUID:   sender.UID,
		normalize.FieldSenderName:  name,
		normalize.FieldSenderPhoto: sender.AvatarURL,
	}, normalize.FieldTimestamp)
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Str("item", parentID).Msg("send message")
		return record.Message{}, errs.WriteFailure{Op: "send message", Err: err}
	}
	return Decode(doc), nil
}

// Option configures a Stream.
type Option func(*Stream)

// WithOptimistic shows sent messages before the next snapshot includes them.
func WithOptimistic() Option {
	return func(s *Stream) {
		s.optimistic = true
	}
}

// Stream is the live thread of one item.
type Stream struct {
	src        store.Store
	parentID   string
	handle     *live.Handle[record.Message]
	optimistic bool

	mu      sync.Mutex
	pending []record.Message
}

// Open subscribes to the thread of parentID. listener is called after every
// snapshot, as for live.Subscribe.
func Open(ctx context.Context, src store.Store, parentID string, listener live.Listener[record.Message], opts ...Option) (*Stream, error) {
	s := &Stream{src: src, parentID: parentID}
	for _, opt := range opts {
		opt(s)
	}
	h, err := live.Subscribe(ctx, src, Query(parentID), Decode, listener)
	if err != nil {
		return nil, err
	}
	s.handle = h
	return s, nil
}

// ParentID is the item the thread belongs to.
func (s *Stream) ParentID() string {
	return s.parentID
}

// Handle is the underlying live handle.
func (s *Stream) Handle() *live.Handle[record.Message] {
	return s.handle
}

// Err is the SyncError that ended the live thread, if any.
func (s *Stream) Err() error {
	return s.handle.Err()
}

// Close cancels the live thread.
func (s *Stream) Close() {
	s.handle.Cancel()
}

// Send validates and appends a message.
func (s *Stream) Send(ctx context.Context, text string, sender identity.Identity) (record.Message, error) {
	msg, err := Send(ctx, s.src, s.parentID, text, sender)
	if err != nil {
		return msg, err
	}
	if s.optimistic {
		s.mu.Lock()
		s.pending = append(s.pending, msg)
		s.mu.Unlock()
	}
	return msg, nil
}

// Messages returns the thread in display order. Optimistic copies are
// dropped as soon as a snapshot carries a message with the same id.
func (s *Stream) Messages() []record.Message {
	snapshot := s.handle.Records()
	out := make([]record.Message, 0, len(snapshot))
	out = append(out, snapshot...)

	s.mu.Lock()
	if len(s.pending) > 0 {
		seen := make(map[string]struct{}, len(snapshot))
		for _, m := range snapshot {
			seen[m.ID] = struct{}{}
		}
		kept := s.pending[:0]
		for _, m := range s.pending {
			if _, ok := seen[m.ID]; ok {
				continue
			}
			kept = append(kept, m)
			out = append(out, m)
		}
		s.pending = kept
	}
	s.mu.Unlock()

	Order(out)
	return out
}

// Order sorts messages by send time, oldest first. Messages without a send
// time go last. Ties keep their arrival order.
func Order(msgs []record.Message) {
	sort.SliceStable(msgs, func(i, j int) bool {
		a, b := msgs[i].SentAt, msgs[j].SentAt
		switch {
		case a.IsZero():
			return false
		case b.IsZero():
			return true
		}
		return a.Before(b)
	})
}
