package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ndewijer/Stockbroker-Backend/internal/version"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Args:  cobra.NoArgs,
		// The version needs no configuration.
		PersistentPreRun: func(*cobra.Command, []string) {},
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "stockbroker version %s\n", version.Version)
		},
	}
}
