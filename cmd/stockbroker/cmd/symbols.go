package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newSymbolsCmd(rc *rootContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "symbols",
		Short: "Stock listing tools",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "refresh",
		Short: "Replace the stock listing with the provider's current one",
		Long: `Fetch the provider's listing of active symbols and replace the local one.

Until the first refresh the listing is empty and symbols are not validated.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := rc.open(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			n, err := a.Symbols.Refresh(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "stored %d symbols\n", n)
			return nil
		},
	})
	return cmd
}
