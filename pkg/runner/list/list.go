package list

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/fatih/color"
	json "github.com/goccy/go-json"

	"tableflip.dev/lostfound/pkg/app"
	"tableflip.dev/lostfound/pkg/printers"
	"tableflip.dev/lostfound/pkg/record"
	"tableflip.dev/lostfound/pkg/view"
)

// Scope picks which items are listed.
type Scope int

const (
	All Scope = iota
	Recent
	Mine
)

type List struct {
	Service *app.Service
	Scope   Scope
	// State applies to All.
	State view.State
	// Count applies to Recent.
	Count  int
	ShowID bool
	JSON   bool
	Out    io.Writer
}

type page struct {
	Items      []record.Record `json:"items"`
	Page       int             `json:"page,omitempty"`
	TotalPages int             `json:"totalPages,omitempty"`
	TotalCount int             `json:"totalCount"`
}

func (l *List) Do(ctx context.Context) error {
	if l.Service == nil {
		return errors.New("can not list, no service")
	}
	out := l.Out
	if out == nil {
		out = color.Output
	}

	var (
		p     page
		title string
		res   *view.Result
	)
	switch l.Scope {
	case Recent:
		items, err := l.Service.Recent(ctx, l.Count)
		if err != nil {
			return err
		}
		p = page{Items: items, TotalCount: len(items)}
		title = "Recent items"
	case Mine:
		items, err := l.Service.Mine(ctx)
		if err != nil {
			return err
		}
		p = page{Items: items, TotalCount: len(items)}
		title = "My items"
	default:
		r, err := l.Service.List(ctx, l.State)
		if err != nil {
			return err
		}
		p = page{Items: r.Visible, Page: r.Page, TotalPages: r.TotalPages, TotalCount: r.TotalCount}
		title = "Lost & Found"
		res = &r
	}

	if l.JSON {
		b, err := json.Marshal(p)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(out, string(b))
		return err
	}
	pp := printers.PrettyPrint{ShowID: l.ShowID, Out: out}
	pp.TitleWithCount(title, p.TotalCount)
	pp.Items(p.Items...)
	if res != nil {
		pp.Pager(*res)
	}
	return nil
}
