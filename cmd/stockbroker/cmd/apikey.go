package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ndewijer/Stockbroker-Backend/internal/repository"
)

func newAPIKeyCmd(rc *rootContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "apikey",
		Short: "Market data API key tools",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "set <key>",
		Short: "Store the market data provider API key",
		Long: `Store the provider API key in the database. It takes precedence over
MARKET_DATA_API_KEY. When ENCRYPTION_KEY is set the key is stored encrypted.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := rc.open(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			encrypt := rc.cfg.Security.EncryptionKey != ""
			if err := a.Settings.SetSetting(cmd.Context(), repository.SettingMarketDataAPIKey, args[0], encrypt); err != nil {
				return err
			}
			if encrypt {
				fmt.Fprintln(cmd.OutOrStdout(), "API key stored (encrypted)")
			} else {
				fmt.Fprintln(cmd.OutOrStdout(), "API key stored")
			}
			return nil
		},
	})
	return cmd
}
