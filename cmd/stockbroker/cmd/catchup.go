package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/ndewijer/Stockbroker-Backend/internal/model"
)

func newCatchUpCmd(rc *rootContext) *cobra.Command {
	var date string

	cmd := &cobra.Command{
		Use:   "catchup",
		Short: "Advance every DCA strategy to a date",
		Long: `Invest every DCA period that fell due up to the date (default today).

Portfolio queries do this lazily; running it ahead of time only moves the
provider calls out of the request path.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			day := model.Day(time.Now())
			if date != "" {
				d, err := model.ParseDate(date)
				if err != nil {
					return fmt.Errorf("invalid --date: %w", err)
				}
				day = d
			}

			a, err := rc.open(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			n, err := a.Strategies.CatchUpAll(cmd.Context(), day)
			fmt.Fprintf(cmd.OutOrStdout(), "invested %d periods up to %s\n", n, model.FormatDate(day))
			return err
		},
	}
	cmd.Flags().StringVarP(&date, "date", "d", "", "date to advance to (YYYY-MM-DD)")
	return cmd
}
