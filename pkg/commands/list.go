package commands

import (
	"time"

	"github.com/spf13/cobra"

	"tableflip.dev/lostfound/pkg/commands/options"
	"tableflip.dev/lostfound/pkg/controller"
	"tableflip.dev/lostfound/pkg/runner/list"
)

func addList(topLevel *cobra.Command) {
	fo := &options.FilterOptions{}
	io := &options.IDOptions{}

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List items, filtered, sorted and paged.",
		Example: `
lostfound list
lostfound list --kind lost --category Electronics --sort oldest
lostfound list --date 2025-03-03 --by-event --page 2
lostfound list --since 3d --json
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, a, cleanup, err := setup(cmd.Context(), false)
			if err != nil {
				return oo.HandleError(err)
			}
			defer cleanup()
			st, err := fo.State(time.Now(), a.Config.Page.Size)
			if err != nil {
				return oo.HandleError(err)
			}
			l := list.List{Service: a.Service, State: st, ShowID: io.ShowID, JSON: oo.JSON}
			return oo.HandleError(l.Do(ctx))
		},
	}

	options.AddFilterArgs(cmd, fo)
	options.AddPageArgs(cmd, fo)
	options.AddShowIDArgs(cmd, io)
	options.AddOutputArg(cmd, oo)

	topLevel.AddCommand(cmd)

	addScoped(topLevel, "recent", "Show the newest items.", list.Recent)
	addScoped(topLevel, "mine", "Show the items you posted.", list.Mine)
}

func addScoped(topLevel *cobra.Command, use, short string, scope list.Scope) {
	io := &options.IDOptions{}
	count := controller.DefaultRecent

	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, a, cleanup, err := setup(cmd.Context(), false)
			if err != nil {
				return oo.HandleError(err)
			}
			defer cleanup()
			l := list.List{Service: a.Service, Scope: scope, Count: count, ShowID: io.ShowID, JSON: oo.JSON}
			return oo.HandleError(l.Do(ctx))
		},
	}

	if scope == list.Recent {
		cmd.Flags().IntVarP(&count, "count", "n", controller.DefaultRecent, "How many items to show.")
	}
	options.AddShowIDArgs(cmd, io)
	options.AddOutputArg(cmd, oo)

	topLevel.AddCommand(cmd)
}
