package messages

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/fatih/color"
	json "github.com/goccy/go-json"

	"tableflip.dev/lostfound/pkg/chat"
	"tableflip.dev/lostfound/pkg/identity"
	"tableflip.dev/lostfound/pkg/printers"
	"tableflip.dev/lostfound/pkg/record"
	"tableflip.dev/lostfound/pkg/store"
)

// Messages prints the thread of one item.
type Messages struct {
	Store    store.Store
	Identity identity.Provider
	ItemID   string
	JSON     bool
	Out      io.Writer
}

func (m *Messages) Do(ctx context.Context) error {
	if m.Store == nil {
		return errors.New("can not read messages, no store")
	}
	out := m.Out
	if out == nil {
		out = color.Output
	}
	if _, err := m.Store.Get(ctx, store.Items, m.ItemID); err != nil {
		return err
	}
	snap, err := m.Store.Query(ctx, chat.Query(m.ItemID))
	if err != nil {
		return err
	}
	msgs := make([]record.Message, 0, len(snap))
	for _, doc := range snap {
		msgs = append(msgs, chat.Decode(doc))
	}
	chat.Order(msgs)

	if m.JSON {
		b, err := json.Marshal(msgs)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(out, string(b))
		return err
	}
	me := ""
	if m.Identity != nil {
		if who, ok := m.Identity.Current(); ok {
			me = who.UID
		}
	}
	pp := printers.PrettyPrint{Out: out}
	pp.Messages(me, msgs...)
	return nil
}

// Send posts one message as the current user.
type Send struct {
	Store    store.Store
	Identity identity.Provider
	ItemID   string
	Text     string
	Out      io.Writer
}

func (s *Send) Do(ctx context.Context) error {
	if s.Store == nil {
		return errors.New("can not send, no store")
	}
	who := identity.Identity{}
	if s.Identity != nil {
		who, _ = s.Identity.Current()
	}
	if _, err := s.Store.Get(ctx, store.Items, s.ItemID); err != nil {
		return err
	}
	msg, err := chat.Send(ctx, s.Store, s.ItemID, s.Text, who)
	if err != nil {
		return err
	}
	out := s.Out
	if out == nil {
		out = color.Output
	}
	pp := printers.PrettyPrint{Out: out}
	pp.Messages(who.UID, msg)
	return nil
}
