package show

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/fatih/color"
	json "github.com/goccy/go-json"

	"tableflip.dev/lostfound/pkg/app"
	"tableflip.dev/lostfound/pkg/printers"
)

// Show prints one item.
type Show struct {
	Service *app.Service
	ID      string
	ShowID  bool
	JSON    bool
	Out     io.Writer
}

func (s *Show) Do(ctx context.Context) error {
	if s.Service == nil {
		return errors.New("can not show, no service")
	}
	out := s.Out
	if out == nil {
		out = color.Output
	}
	r, err := s.Service.Get(ctx, s.ID)
	if err != nil {
		return err
	}
	if s.JSON {
		b, err := json.Marshal(r)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(out, string(b))
		return err
	}
	pp := printers.PrettyPrint{ShowID: s.ShowID, Out: out}
	pp.Item(r)
	return nil
}
