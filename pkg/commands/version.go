package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	goversion "go.hein.dev/go-version"
)

// Build information, set with -ldflags "-X tableflip.dev/lostfound/pkg/commands.Version=...".
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

func addVersion(topLevel *cobra.Command) {
	shortened := false
	output := goversion.JSON
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print the lostfound build.",
		Example: `
lostfound version
lostfound version -o yaml
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if output != goversion.JSON && output != goversion.YAML {
				return fmt.Errorf("unknown output %q, want json or yaml", output)
			}
			_, err := fmt.Fprint(cmd.OutOrStdout(), goversion.FuncWithOutput(shortened, Version, Commit, Date, output))
			return err
		},
	}

	cmd.Flags().BoolVarP(&shortened, "short", "s", false, "Print just the version number.")
	cmd.Flags().StringVarP(&output, "output", "o", goversion.JSON, "Output format. One of 'yaml' or 'json'.")

	topLevel.Version = Version
	topLevel.AddCommand(cmd)
}
