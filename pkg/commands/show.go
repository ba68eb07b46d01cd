package commands

import (
	"github.com/spf13/cobra"

	"tableflip.dev/lostfound/pkg/commands/options"
	"tableflip.dev/lostfound/pkg/runner/show"
)

func addShow(topLevel *cobra.Command) {
	io := &options.IDOptions{}

	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show one item.",
		Example: `
lostfound show 6f1c2a
`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, a, cleanup, err := setup(cmd.Context(), false)
			if err != nil {
				return oo.HandleError(err)
			}
			defer cleanup()
			s := show.Show{Service: a.Service, ID: args[0], ShowID: io.ShowID, JSON: oo.JSON}
			return oo.HandleError(s.Do(ctx))
		},
	}

	options.AddShowIDArgs(cmd, io)
	options.AddOutputArg(cmd, oo)

	topLevel.AddCommand(cmd)
}
