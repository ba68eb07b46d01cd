package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"tableflip.dev/lostfound/pkg/commands/options"
	"tableflip.dev/lostfound/pkg/config"
	"tableflip.dev/lostfound/pkg/di"
	"tableflip.dev/lostfound/pkg/errs"
)

var (
	oo = &options.OutputOptions{}
)

func New() *cobra.Command {

	cmd := &cobra.Command{
		Use:          "lostfound",
		Short:        options.Wrap80("Campus lost and found on the command line."),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	AddCommands(cmd)
	return cmd
}

func AddCommands(topLevel *cobra.Command) {
	addBrowse(topLevel)
	addChat(topLevel)
	addList(topLevel)
	addShow(topLevel)
	addReport(topLevel)
	addEdit(topLevel)
	addDelete(topLevel)
	addMessages(topLevel)
	addSend(topLevel)
	addVersion(topLevel)
}

// setup loads the config and builds the app. quiet keeps logs off a
// terminal the command is about to take over.
func setup(parent context.Context, quiet bool) (context.Context, *di.App, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, nil, err
	}
	a, cleanup, err := di.InitApp(cfg, di.Quiet(quiet))
	if err != nil {
		return nil, nil, nil, err
	}
	return a.Context(parent), a, cleanup, nil
}

var errNotSignedIn = fmt.Errorf("%w (set user.uid in .lostfound.yaml or LOSTFOUND_USER_UID)", errs.ErrUnauthenticated)
