// Package browse is the live item list screen.
package browse

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/v2/textinput"
	tea "github.com/charmbracelet/bubbletea/v2"
	"github.com/charmbracelet/lipgloss/v2"
	"github.com/muesli/reflow/truncate"

	"tableflip.dev/lostfound/pkg/controller"
	"tableflip.dev/lostfound/pkg/errs"
	"tableflip.dev/lostfound/pkg/identity"
	"tableflip.dev/lostfound/pkg/record"
	"tableflip.dev/lostfound/pkg/store"
	"tableflip.dev/lostfound/pkg/timeutil"
	"tableflip.dev/lostfound/pkg/tui/events"
	"tableflip.dev/lostfound/pkg/tui/theme"
	"tableflip.dev/lostfound/pkg/tui/views/thread"
	"tableflip.dev/lostfound/pkg/view"
)

type mode int

const (
	modeNormal mode = iota
	modeSearch
	modeChat
)

// Model is the browse screen.
type Model struct {
	ctx    context.Context
	cancel context.CancelFunc

	src    store.Store
	ident  identity.Provider
	ctrl   *controller.Browse
	feed   *events.Feed[record.Record]
	search textinput.Model
	chat   *thread.Model
	theme  theme.Theme

	Now func() time.Time

	mode    mode
	cursor  int
	status  string
	failed  bool
	width   int
	height  int
	mounted bool
}

// New builds the browse screen over src. opts pick the scope and the
// initial filters.
func New(parent context.Context, src store.Store, ident identity.Provider, opts ...controller.Option) *Model {
	ctx, cancel := context.WithCancel(parent)

	ti := textinput.New()
	ti.Placeholder = "Search titles"
	ti.CharLimit = 120
	ti.Prompt = "/ "

	return &Model{
		ctx:    ctx,
		cancel: cancel,
		src:    src,
		ident:  ident,
		ctrl:   controller.NewBrowse(src, opts...),
		feed:   events.NewFeed[record.Record](),
		search: ti,
		theme:  theme.Default(),
		Now:    time.Now,
		width:  80,
	}
}

func (m *Model) Init() tea.Cmd {
	return m.mount()
}

func (m *Model) mount() tea.Cmd {
	if err := m.ctrl.Mount(m.ctx, m.feed.Listen); err != nil {
		m.setError(err)
		return nil
	}
	if !m.mounted {
		m.mounted = true
		return m.feed.Wait()
	}
	return nil
}

// Close stops the live query and any open chat.
func (m *Model) Close() {
	if m.chat != nil {
		m.chat.Close()
		m.chat = nil
	}
	m.ctrl.Unmount()
	m.feed.Close()
	m.cancel()
}

// Controller exposes the view state for callers that drive the screen
// without a terminal.
func (m *Model) Controller() *controller.Browse {
	return m.ctrl
}

// Selected is the item under the cursor.
func (m *Model) Selected() (record.Record, bool) {
	visible := m.ctrl.Visible()
	if m.cursor < 0 || m.cursor >= len(visible) {
		return record.Record{}, false
	}
	return visible[m.cursor], true
}

func (m *Model) Status() string {
	return m.status
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.search.SetWidth(max(10, msg.Width-4))
		if m.chat != nil {
			m.chat.Update(msg)
		}
		return m, nil
	case events.Msg[record.Record]:
		if m.ctrl.Apply(msg.Event) {
			m.clampCursor()
			if msg.Event.Err != nil {
				m.setError(msg.Event.Err)
			}
		}
		return m, m.feed.Wait()
	case thread.ClosedMsg:
		m.chat = nil
		m.mode = modeNormal
		return m, nil
	}

	if m.mode == modeChat && m.chat != nil {
		_, cmd := m.chat.Update(msg)
		return m, cmd
	}
	if key, ok := msg.(tea.KeyPressMsg); ok {
		return m, m.handleKey(key)
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyPressMsg) tea.Cmd {
	if m.mode == modeSearch {
		return m.handleSearchKey(msg)
	}
	m.status, m.failed = "", false
	switch msg.String() {
	case "q", "ctrl+c":
		m.Close()
		return tea.Quit
	case "/":
		m.mode = modeSearch
		m.search.SetValue(m.ctrl.State().Search)
		return m.search.Focus()
	case "k":
		m.ctrl.SetKind(m.ctrl.State().Kind.Next())
	case "c":
		categories, _ := m.ctrl.Facets()
		m.ctrl.SetCategory(view.Cycle(categories, m.ctrl.State().Category))
	case "l":
		_, locations := m.ctrl.Facets()
		m.ctrl.SetLocation(view.Cycle(locations, m.ctrl.State().Location))
	case "d":
		m.toggleDate()
	case "b":
		basis := view.DateEvent
		if m.ctrl.State().DateBasis == view.DateEvent {
			basis = view.DateCreated
		}
		m.ctrl.SetDateBasis(basis)
	case "s":
		m.ctrl.SetSort(m.ctrl.State().Sort.Next())
	case "x":
		m.ctrl.ClearFilters()
	case "r":
		if m.ctrl.SyncErr() != nil {
			return m.mount()
		}
	case "right", "pgdown":
		m.ctrl.NextPage()
	case "left", "pgup":
		m.ctrl.PrevPage()
	case "down", "j":
		m.cursor++
	case "up":
		m.cursor--
	case "enter":
		return m.openChat()
	default:
		return nil
	}
	m.clampCursor()
	return nil
}

func (m *Model) handleSearchKey(msg tea.KeyPressMsg) tea.Cmd {
	switch msg.String() {
	case "enter":
		m.mode = modeNormal
		m.search.Blur()
		return nil
	case "esc":
		m.mode = modeNormal
		m.search.Blur()
		m.ctrl.SetSearch("")
		m.clampCursor()
		return nil
	case "ctrl+c":
		m.Close()
		return tea.Quit
	}
	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	if m.search.Value() != m.ctrl.State().Search {
		m.ctrl.SetSearch(m.search.Value())
		m.clampCursor()
	}
	return cmd
}

// toggleDate filters to the selected item's day, or clears the day filter.
func (m *Model) toggleDate() {
	st := m.ctrl.State()
	if !st.EventDate.IsZero() {
		m.ctrl.SetEventDate(time.Time{})
		return
	}
	r, ok := m.Selected()
	if !ok {
		return
	}
	day := r.CreatedAt
	if st.DateBasis == view.DateEvent {
		day = r.EventAt
	}
	if day.IsZero() {
		m.status, m.failed = "Selected item has no date", true
		return
	}
	m.ctrl.SetEventDate(record.StartOfDay(day))
}

func (m *Model) openChat() tea.Cmd {
	r, ok := m.Selected()
	if !ok {
		return nil
	}
	m.chat = thread.New(m.ctx, m.src, r, m.ident)
	m.chat.Embedded = true
	m.chat.Now = m.Now
	m.chat.Update(tea.WindowSizeMsg{Width: m.width, Height: m.height})
	m.mode = modeChat
	return m.chat.Init()
}

func (m *Model) clampCursor() {
	n := len(m.ctrl.Visible())
	if m.cursor >= n {
		m.cursor = n - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m *Model) setError(err error) {
	m.failed = true
	if errors.Is(err, errs.ErrSync) {
		m.status = "Live updates stopped, showing last results (r to reconnect): " + err.Error()
		return
	}
	m.status = err.Error()
}

func (m *Model) View() string {
	if m.mode == modeChat && m.chat != nil {
		return m.chat.View()
	}
	th := m.theme
	sections := []string{th.Header.Render("Lost & Found"), th.Filters.Render(m.filterLine())}
	if m.mode == modeSearch {
		sections = append(sections, m.search.View())
	}
	sections = append(sections, "")

	switch {
	case !m.ctrl.Loaded():
		sections = append(sections, th.Meta.Render("Loading…"))
	case m.ctrl.TotalCount() == 0:
		sections = append(sections, th.Meta.Render("No items match."))
	default:
		now := m.Now()
		for i, r := range m.ctrl.Visible() {
			sections = append(sections, m.row(r, i == m.cursor, now))
		}
	}

	sections = append(sections, "", m.pager())
	if m.status != "" {
		style := th.Footer.Status
		if m.failed {
			style = th.Footer.Error
		}
		sections = append(sections, style.Render(m.status))
	}
	sections = append(sections, th.Footer.Help.Render(
		"/ search · k kind · c category · l location · d day · s sort · x clear · ←/→ page · enter chat · q quit"))
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m *Model) filterLine() string {
	st := m.ctrl.State()
	or := func(v, fallback string) string {
		if v == "" {
			return fallback
		}
		return v
	}
	day := "any"
	if !st.EventDate.IsZero() {
		day = st.EventDate.Format("Jan 2")
		if st.DateBasis == view.DateEvent {
			day += " (event)"
		}
	}
	parts := []string{
		"kind: " + strings.ToLower(string(st.Kind)),
		"category: " + or(st.Category, "all"),
		"location: " + or(st.Location, "all"),
		"day: " + day,
		"sort: " + st.Sort.Label(),
	}
	if st.Search != "" {
		parts = append(parts, fmt.Sprintf("search: %q", st.Search))
	}
	return strings.Join(parts, "  ")
}

func (m *Model) row(r record.Record, selected bool, now time.Time) string {
	th := m.theme
	badge := th.Lost.Render("LOST ")
	if r.Kind == record.Found {
		badge = th.Found.Render("FOUND")
	}
	caret := "  "
	title := th.Title.Render(r.Title)
	if selected {
		caret = th.Selected.Render("→ ")
		title = th.Selected.Bold(true).Render(r.Title)
	}
	meta := strings.Join(nonEmpty(r.Category, r.Location, timeutil.Ago(r.CreatedAt, now)), " · ")
	line := caret + badge + " " + title + "  " + th.Meta.Render(meta)
	if m.width > 0 {
		line = truncate.StringWithTail(line, uint(m.width), "…")
	}
	return line
}

func (m *Model) pager() string {
	th := m.theme
	res := m.ctrl.Result()
	marks := make([]string, 0, len(res.PageNumbers))
	for _, p := range res.PageNumbers {
		if int(p) == res.Page {
			marks = append(marks, th.Pager.Current.Render(p.String()))
			continue
		}
		marks = append(marks, th.Pager.Page.Render(p.String()))
	}
	return strings.Join(marks, " ") + "  " + th.Pager.Count.Render(fmt.Sprintf("%d items", res.TotalCount))
}

func nonEmpty(values ...string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}

// Run shows the browse screen until the user quits.
func Run(ctx context.Context, src store.Store, ident identity.Provider, opts ...controller.Option) error {
	m := New(ctx, src, ident, opts...)
	defer m.Close()
	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err := p.Run()
	return err
}
