// Package thread is the live message screen of one item.
package thread

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/v2/textinput"
	tea "github.com/charmbracelet/bubbletea/v2"
	"github.com/charmbracelet/lipgloss/v2"
	"github.com/muesli/reflow/wordwrap"

	"tableflip.dev/lostfound/pkg/chat"
	"tableflip.dev/lostfound/pkg/controller"
	"tableflip.dev/lostfound/pkg/errs"
	"tableflip.dev/lostfound/pkg/identity"
	"tableflip.dev/lostfound/pkg/record"
	"tableflip.dev/lostfound/pkg/store"
	"tableflip.dev/lostfound/pkg/timeutil"
	"tableflip.dev/lostfound/pkg/tui/events"
	"tableflip.dev/lostfound/pkg/tui/theme"
)

// ClosedMsg tells an embedding screen the chat was dismissed.
type ClosedMsg struct{}

type sentMsg struct {
	err error
}

// Model is the chat screen.
type Model struct {
	ctx    context.Context
	cancel context.CancelFunc

	item   record.Record
	thread *controller.Thread
	feed   *events.Feed[record.Message]
	input  textinput.Model
	theme  theme.Theme

	// Embedded screens report ClosedMsg on esc instead of quitting.
	Embedded bool
	Now      func() time.Time

	status  string
	failed  bool
	sending bool
	width   int
	height  int
}

// New builds the chat screen for item. Sent messages show right away, before
// the store confirms them.
func New(parent context.Context, src store.Store, item record.Record, ident identity.Provider) *Model {
	ctx, cancel := context.WithCancel(parent)

	ti := textinput.New()
	ti.Placeholder = "Write a message"
	ti.CharLimit = 500
	ti.Prompt = "> "

	return &Model{
		ctx:    ctx,
		cancel: cancel,
		item:   item,
		thread: controller.NewThread(src, item.ID, ident, chat.WithOptimistic()),
		feed:   events.NewFeed[record.Message](),
		input:  ti,
		theme:  theme.Default(),
		Now:    time.Now,
		width:  80,
	}
}

func (m *Model) Init() tea.Cmd {
	if err := m.thread.Mount(m.ctx, m.feed.Listen); err != nil {
		m.setError(err)
		return nil
	}
	cmds := []tea.Cmd{m.feed.Wait()}
	if m.thread.CanCompose() {
		cmds = append(cmds, m.input.Focus(), textinput.Blink)
	}
	return tea.Batch(cmds...)
}

// Close stops the live thread.
func (m *Model) Close() {
	m.thread.Unmount()
	m.feed.Close()
	m.cancel()
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.input.SetWidth(max(10, msg.Width-6))
	case events.Msg[record.Message]:
		if m.thread.Apply(msg.Event) && msg.Event.Err != nil {
			m.setError(msg.Event.Err)
		}
		return m, m.feed.Wait()
	case sentMsg:
		m.sending = false
		if msg.err != nil {
			m.setError(msg.err)
			break
		}
		m.status, m.failed = "", false
		m.thread.Refresh()
	case tea.KeyPressMsg:
		return m, m.handleKey(msg)
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyPressMsg) tea.Cmd {
	switch msg.String() {
	case "ctrl+c":
		m.Close()
		return tea.Quit
	case "esc":
		m.Close()
		if m.Embedded {
			return func() tea.Msg { return ClosedMsg{} }
		}
		return tea.Quit
	case "enter":
		return m.send()
	}
	if !m.thread.CanCompose() {
		return nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return cmd
}

func (m *Model) send() tea.Cmd {
	if m.sending {
		return nil
	}
	if !m.thread.CanCompose() {
		m.setError(errs.ErrUnauthenticated)
		return nil
	}
	text := m.input.Value()
	if err := chat.Validate(text, m.thread.Me()); err != nil {
		m.setError(err)
		return nil
	}
	m.input.Reset()
	m.sending = true
	m.status, m.failed = "Sending…", false
	ctx, thread := m.ctx, m.thread
	return func() tea.Msg {
		_, err := thread.SendMessage(ctx, text)
		return sentMsg{err: err}
	}
}

func (m *Model) setError(err error) {
	m.failed = true
	switch {
	case errors.Is(err, errs.ErrEmptyMessage):
		m.status = "Type a message first"
	case errors.Is(err, errs.ErrUnauthenticated):
		m.status = "Sign in to chat"
	case errors.Is(err, errs.ErrSync):
		m.status = "Live updates stopped: " + err.Error()
	default:
		m.status = err.Error()
	}
}

// Messages is the thread as currently shown.
func (m *Model) Messages() []record.Message {
	return m.thread.Messages()
}

func (m *Model) Status() string {
	return m.status
}

func (m *Model) View() string {
	th := m.theme
	badge := th.Lost.Render(m.item.Kind.String())
	if m.item.Kind == record.Found {
		badge = th.Found.Render(m.item.Kind.String())
	}
	sections := []string{
		badge + " " + th.Header.Render(m.item.Title),
		th.Meta.Render(strings.Join(nonEmpty(m.item.Category, m.item.Location), " · ")),
		"",
	}

	msgs := m.thread.Messages()
	if len(msgs) == 0 {
		sections = append(sections, th.Chat.Hint.Render("No messages yet."))
	}
	me := m.thread.Me().UID
	wrap := max(20, m.width-4)
	now := m.Now()
	for _, msg := range msgs {
		name := th.Chat.Sender
		if me != "" && msg.SenderRef == me {
			name = th.Chat.Self
		}
		when := timeutil.Ago(msg.SentAt, now)
		if msg.Pending() {
			when = "sending…"
		}
		sections = append(sections,
			name.Render(msg.SenderDisplayName)+" "+th.Chat.Time.Render(when),
			th.Chat.Text.Render(wordwrap.String(msg.Text, wrap)),
		)
	}

	sections = append(sections, "")
	if m.thread.CanCompose() {
		sections = append(sections, th.Chat.Compose.Render(m.input.View()))
	} else {
		sections = append(sections, th.Chat.Hint.Render("Sign in to chat: set user.uid in .lostfound.yaml"))
	}
	if m.status != "" {
		style := th.Footer.Status
		if m.failed {
			style = th.Footer.Error
		}
		sections = append(sections, style.Render(m.status))
	}
	sections = append(sections, th.Footer.Help.Render("enter send · esc back · ctrl+c quit"))
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func nonEmpty(values ...string) []string {
	out := values[:0]
	for _, v := range values {
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}

// Run shows the chat screen for item until the user quits.
func Run(ctx context.Context, src store.Store, item record.Record, ident identity.Provider) error {
	m := New(ctx, src, item, ident)
	defer m.Close()
	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err := p.Run()
	return err
}
