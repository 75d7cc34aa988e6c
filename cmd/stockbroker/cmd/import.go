package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ndewijer/Stockbroker-Backend/internal/model"
)

func newImportCmd(rc *rootContext) *cobra.Command {
	var kind string

	cmd := &cobra.Command{
		Use:   "import <portfolio> <file.csv>",
		Short: "Create a portfolio from a CSV ledger",
		Long: `Create a new portfolio and append every row of a CSV ledger to it.

The file needs the header symbol,quantity,date,type,commissionFee. Every
row is validated first; a single invalid row aborts the import.

Examples:
  stockbroker import Retirement ledger.csv
  stockbroker import Basket basket.csv --kind simple`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[1])
			if err != nil {
				return fmt.Errorf("open ledger: %w", err)
			}
			defer f.Close()

			a, err := rc.open(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			portfolio, txs, err := a.Imports.Import(cmd.Context(), args[0], model.PortfolioKind(kind), f)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "imported %d transactions into %s portfolio %q\n",
				len(txs), portfolio.Kind, portfolio.Name)
			return nil
		},
	}
	cmd.Flags().StringVarP(&kind, "kind", "k", string(model.KindFlexible), "portfolio kind (simple or flexible)")
	return cmd
}
