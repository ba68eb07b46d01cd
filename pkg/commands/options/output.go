package options

import (
	"errors"
	"fmt"
	"io"

	"github.com/fatih/color"
	json "github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"tableflip.dev/lostfound/pkg/app"
	"tableflip.dev/lostfound/pkg/errs"
)

// OutputOptions
type OutputOptions struct {
	JSON bool

	// Out receives JSON errors. Defaults to color.Output.
	Out io.Writer
}

func AddOutputArg(cmd *cobra.Command, po *OutputOptions) {
	cmd.Flags().BoolVar(&po.JSON, "json", false,
		"Output as JSON.")
}

// Failure is the JSON shape of a failed command.
type Failure struct {
	Error     string `json:"error"`
	Kind      string `json:"kind"`
	Retryable bool   `json:"retryable,omitempty"`
}

// Classify maps err onto the failure kinds a script can act on.
func Classify(err error) Failure {
	f := Failure{Error: err.Error(), Kind: "error"}
	switch {
	case errors.Is(err, errs.ErrNotFound):
		f.Kind = "not_found"
	case errors.Is(err, errs.ErrUnauthenticated):
		f.Kind = "unauthenticated"
	case errors.Is(err, errs.ErrSendRejected):
		f.Kind = "rejected"
	case errors.Is(err, errs.ErrWrite):
		f.Kind, f.Retryable = "write_failed", true
	case errors.Is(err, errs.ErrSync):
		f.Kind, f.Retryable = "sync_failed", true
	case errors.Is(err, app.ErrInvalid):
		f.Kind = "invalid"
	case errors.Is(err, app.ErrNotOwner):
		f.Kind = "forbidden"
	}
	return f
}

// HandleError prints err as {"error": ...} in JSON mode and swallows it, so
// scripts read one JSON document either way. Otherwise err is returned.
func (o *OutputOptions) HandleError(err error) error {
	if !o.JSON || err == nil {
		return err
	}
	b, merr := json.Marshal(Classify(err))
	if merr != nil {
		return err
	}
	out := o.Out
	if out == nil {
		out = color.Output
	}
	_, _ = fmt.Fprintln(out, string(b))
	return nil
}
