package printers

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"
	"github.com/muesli/reflow/wordwrap"

	"tableflip.dev/lostfound/pkg/record"
	"tableflip.dev/lostfound/pkg/timeutil"
	"tableflip.dev/lostfound/pkg/view"
)

const wrapWidth = 80

type PrettyPrint struct {
	ShowID bool
	// Out defaults to color.Output.
	Out io.Writer
	// Now defaults to time.Now.
	Now func() time.Time
}

var (
	lostStyle  = color.New(color.FgHiRed, color.Bold)
	foundStyle = color.New(color.FgHiGreen, color.Bold)
	faint      = color.New(color.Faint)
	idStyle    = color.New(color.FgHiYellow, color.Italic, color.Faint)
)

func (pp *PrettyPrint) out() io.Writer {
	if pp.Out != nil {
		return pp.Out
	}
	return color.Output
}

func (pp *PrettyPrint) now() time.Time {
	if pp.Now != nil {
		return pp.Now()
	}
	return time.Now()
}

func (pp *PrettyPrint) NewLine() {
	_, _ = fmt.Fprintln(pp.out())
}

func (pp *PrettyPrint) Title(title string) {
	t := color.New(color.Bold, color.Underline)
	_, _ = t.Fprintln(pp.out(), title)
}

func (pp *PrettyPrint) TitleWithCount(title string, count int) {
	t := color.New(color.Bold, color.Underline)
	_, _ = t.Fprint(pp.out(), title)
	noun := "items"
	if count == 1 {
		noun = "item"
	}
	_, _ = faint.Fprintf(pp.out(), " - %d %s\n", count, noun)
}

// Badge is the colored LOST or FOUND tag.
func Badge(k record.Kind) string {
	if k == record.Found {
		return foundStyle.Sprint(k.String())
	}
	return lostStyle.Sprint(k.String())
}

// Items prints one row per item.
func (pp *PrettyPrint) Items(records ...record.Record) {
	if len(records) == 0 {
		f := color.New(color.Faint, color.Italic)
		_, _ = f.Fprint(pp.out(), " none\n\n")
		return
	}

	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.MaxColWidth = 40
	now := pp.now()
	for _, r := range records {
		row := []interface{}{Badge(r.Kind), r.Title, r.Category, r.Location, faint.Sprint(timeutil.Ago(r.CreatedAt, now))}
		if pp.ShowID {
			row = append([]interface{}{idStyle.Sprint(r.ID)}, row...)
		}
		tbl.AddRow(row...)
	}
	_, _ = fmt.Fprintln(pp.out(), tbl)
	pp.NewLine()
}

// Item prints the detail view of one item.
func (pp *PrettyPrint) Item(r record.Record) {
	w := pp.out()
	bold := color.New(color.Bold)
	_, _ = fmt.Fprintf(w, "%s %s\n", Badge(r.Kind), bold.Sprint(r.Title))
	if pp.ShowID {
		_, _ = idStyle.Fprintln(w, r.ID)
	}

	tbl := uitable.New()
	tbl.Separator = "  "
	field := func(name, value string) {
		if value != "" {
			tbl.AddRow(faint.Sprint(name), value)
		}
	}
	field("Category", r.Category)
	field("Location", r.Location)
	if r.HasEventDate() {
		label := "Lost on"
		if r.Kind == record.Found {
			label = "Found on"
		}
		field(label, r.EventAt.Local().Format("Mon Jan 2, 2006 15:04"))
	}
	field("Posted", timeutil.Ago(r.CreatedAt, pp.now()))
	if !r.UpdatedAt.IsZero() {
		field("Edited", timeutil.Ago(r.UpdatedAt, pp.now()))
	}
	field("Keywords", strings.Join(r.Keywords, ", "))
	field("Contact", contactLine(r.Contact))
	for i, img := range r.Images {
		name := ""
		if i == 0 {
			name = "Images"
		}
		tbl.AddRow(faint.Sprint(name), img)
	}
	_, _ = fmt.Fprintln(w, tbl)

	if r.Description != "" {
		_, _ = fmt.Fprintf(w, "\n%s\n", wordwrap.String(r.Description, wrapWidth))
	}
	pp.NewLine()
}

func contactLine(c record.Contact) string {
	var parts []string
	for _, p := range []string{c.Name, c.Email, c.Phone} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, " · ")
}

// Messages prints a chat thread. Lines sent by me are marked.
func (pp *PrettyPrint) Messages(me string, msgs ...record.Message) {
	w := pp.out()
	if len(msgs) == 0 {
		_, _ = faint.Fprintln(w, " no messages yet")
		pp.NewLine()
		return
	}
	name := color.New(color.Bold, color.FgCyan)
	self := color.New(color.Bold, color.FgMagenta)
	now := pp.now()
	for _, m := range msgs {
		who := name
		if me != "" && m.SenderRef == me {
			who = self
		}
		when := timeutil.Ago(m.SentAt, now)
		if m.Pending() {
			when = "sending…"
		}
		_, _ = fmt.Fprintf(w, "%s %s\n", who.Sprint(m.SenderDisplayName), faint.Sprint(when))
		_, _ = fmt.Fprintln(w, indent(wordwrap.String(m.Text, wrapWidth-2), "  "))
	}
	pp.NewLine()
}

func indent(s, prefix string) string {
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		lines[i] = prefix + l
	}
	return strings.Join(lines, "\n")
}

// Pager prints "page x of y" with the page list, current page highlighted.
func (pp *PrettyPrint) Pager(res view.Result) {
	_, _ = fmt.Fprintln(pp.out(), PagerLine(res))
}

// PagerLine is the pager text shared with the browse screen.
func PagerLine(res view.Result) string {
	current := color.New(color.Bold, color.Underline)
	marks := make([]string, 0, len(res.PageNumbers))
	for _, m := range res.PageNumbers {
		if int(m) == res.Page {
			marks = append(marks, current.Sprint(m.String()))
			continue
		}
		marks = append(marks, m.String())
	}
	return fmt.Sprintf("Page %d of %d  %s  %s", res.Page, res.TotalPages, strings.Join(marks, " "),
		faint.Sprintf("(%d items)", res.TotalCount))
}
