package commands

import (
	"fmt"

	"github.com/fatih/color"
	json "github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"tableflip.dev/lostfound/pkg/commands/options"
	"tableflip.dev/lostfound/pkg/printers"
)

func addReport(topLevel *cobra.Command) {
	ro := &options.ReportOptions{}

	cmd := &cobra.Command{
		Use:       "report lost|found",
		Short:     "Report a lost or found item.",
		ValidArgs: []string{"lost", "found"},
		Example: `
lostfound report lost --title "Blue umbrella" --category Accessories --location Library
lostfound report found -t "Student ID" -c Cards -l Cafeteria --date 2025-03-03 --time 14:30
`,
		Args: cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, a, cleanup, err := setup(cmd.Context(), false)
			if err != nil {
				return oo.HandleError(err)
			}
			defer cleanup()
			ro.Kind = args[0]
			r, err := a.Service.Report(ctx, ro.ReportInput)
			if err != nil {
				return oo.HandleError(err)
			}
			if oo.JSON {
				b, err := json.Marshal(r)
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintln(color.Output, string(b))
				return nil
			}
			pp := printers.PrettyPrint{ShowID: true}
			pp.Item(r)
			return nil
		},
	}

	options.AddReportArgs(cmd, ro)
	options.AddOutputArg(cmd, oo)

	topLevel.AddCommand(cmd)
}

func addEdit(topLevel *cobra.Command) {
	eo := &options.EditOptions{}

	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Edit an item you posted.",
		Example: `
lostfound edit 6f1c2a --location "Lost property office"
`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, a, cleanup, err := setup(cmd.Context(), false)
			if err != nil {
				return oo.HandleError(err)
			}
			defer cleanup()
			r, err := a.Service.Edit(ctx, args[0], eo.EditInput)
			if err != nil {
				return oo.HandleError(err)
			}
			pp := printers.PrettyPrint{ShowID: true}
			pp.Item(r)
			return nil
		},
	}

	options.AddEditArgs(cmd, eo)
	options.AddOutputArg(cmd, oo)

	topLevel.AddCommand(cmd)
}

func addDelete(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete an item you posted, with its messages.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, a, cleanup, err := setup(cmd.Context(), false)
			if err != nil {
				return oo.HandleError(err)
			}
			defer cleanup()
			return oo.HandleError(a.Service.Delete(ctx, args[0]))
		},
	}

	options.AddOutputArg(cmd, oo)

	topLevel.AddCommand(cmd)
}
