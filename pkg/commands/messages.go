package commands

import (
	"strings"

	"github.com/spf13/cobra"

	"tableflip.dev/lostfound/pkg/commands/options"
	"tableflip.dev/lostfound/pkg/runner/messages"
)

func addMessages(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "messages <item-id>",
		Short: "Print the chat thread of an item.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, a, cleanup, err := setup(cmd.Context(), false)
			if err != nil {
				return oo.HandleError(err)
			}
			defer cleanup()
			m := messages.Messages{Store: a.Store, Identity: a.Identity, ItemID: args[0], JSON: oo.JSON}
			return oo.HandleError(m.Do(ctx))
		},
	}

	options.AddOutputArg(cmd, oo)

	topLevel.AddCommand(cmd)
}

func addSend(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "send <item-id> <text...>",
		Short: "Send a chat message about an item.",
		Example: `
lostfound send 6f1c2a I think this is mine, can I pick it up today?
`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, a, cleanup, err := setup(cmd.Context(), false)
			if err != nil {
				return oo.HandleError(err)
			}
			defer cleanup()
			s := messages.Send{Store: a.Store, Identity: a.Identity, ItemID: args[0], Text: strings.Join(args[1:], " ")}
			return oo.HandleError(s.Do(ctx))
		},
	}

	options.AddOutputArg(cmd, oo)

	topLevel.AddCommand(cmd)
}
