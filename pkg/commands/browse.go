package commands

import (
	"os"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"tableflip.dev/lostfound/pkg/commands/options"
	"tableflip.dev/lostfound/pkg/controller"
	"tableflip.dev/lostfound/pkg/runner/list"
	"tableflip.dev/lostfound/pkg/tui/views/browse"
	"tableflip.dev/lostfound/pkg/tui/views/thread"
)

func interactive() bool {
	return isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
}

func addBrowse(topLevel *cobra.Command) {
	fo := &options.FilterOptions{}
	mine := false

	cmd := &cobra.Command{
		Use:   "browse",
		Short: "Browse items live in a full-screen view.",
		Long: options.Wrap80(`Browse items as they are posted, edited and removed.
Keys: / search, k kind, c category, l location, d day of the selected item,
b compare days by posting or event date, s sort, x clear filters,
left/right page, up/down select, enter chat, q quit.
When output is not a terminal the first page is printed instead.`),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tty := interactive()
			ctx, a, cleanup, err := setup(cmd.Context(), tty)
			if err != nil {
				return oo.HandleError(err)
			}
			defer cleanup()
			st, err := fo.State(time.Now(), a.Config.Page.Size)
			if err != nil {
				return oo.HandleError(err)
			}
			if !tty {
				l := list.List{Service: a.Service, State: st}
				if mine {
					l.Scope = list.Mine
				}
				return l.Do(ctx)
			}
			opts := []controller.Option{controller.WithState(st)}
			if mine {
				who, ok := a.Identity.Current()
				if !ok {
					return oo.HandleError(errNotSignedIn)
				}
				opts = append(opts, controller.WithQuery(controller.OwnedItems(who.UID)))
			}
			return browse.Run(ctx, a.Store, a.Identity, opts...)
		},
	}

	options.AddFilterArgs(cmd, fo)
	options.AddPageArgs(cmd, fo)
	cmd.Flags().BoolVar(&mine, "mine", false, "Only items you posted.")

	topLevel.AddCommand(cmd)
}

func addChat(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "chat <item-id>",
		Short: "Open the live chat of an item.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, a, cleanup, err := setup(cmd.Context(), interactive())
			if err != nil {
				return oo.HandleError(err)
			}
			defer cleanup()
			r, err := a.Service.Get(ctx, args[0])
			if err != nil {
				return oo.HandleError(err)
			}
			return thread.Run(ctx, a.Store, r, a.Identity)
		},
	}

	topLevel.AddCommand(cmd)
}
