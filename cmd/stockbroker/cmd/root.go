// Package cmd implements the stockbroker operations CLI.
package cmd

import (
	"context"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/ndewijer/Stockbroker-Backend/internal/app"
	"github.com/ndewijer/Stockbroker-Backend/internal/config"
	"github.com/ndewijer/Stockbroker-Backend/internal/logging"
)

// rootContext carries what every subcommand needs once the root command has
// loaded the configuration.
type rootContext struct {
	cfg    *config.Config
	logger *logging.Logger
}

// open builds the application graph against the configured database.
func (rc *rootContext) open(ctx context.Context) (*app.App, error) {
	return app.Open(ctx, rc.cfg, rc.logger, nil)
}

// NewRootCmd returns the stockbroker command tree.
func NewRootCmd() *cobra.Command {
	rc := &rootContext{}

	root := &cobra.Command{
		Use:   "stockbroker",
		Short: "Operations tool for the stockbroker portfolio backend",
		Long: `Stockbroker manages the database behind the portfolio API.

It provides tools for:
  - Applying schema migrations
  - Refreshing the stock listing from the market data provider
  - Storing the provider API key
  - Importing a ledger from CSV
  - Advancing every DCA strategy to a date

Configuration is read from the environment and an optional .env file,
the same way the server reads it.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			rc.cfg = cfg
			rc.logger = logging.NewWithOutput(cfg.Logging.Level, cfg.Logging.Format, cmd.ErrOrStderr())
			log.Logger = rc.logger.Logger
			return nil
		},
	}

	root.AddCommand(
		newMigrateCmd(rc),
		newSymbolsCmd(rc),
		newAPIKeyCmd(rc),
		newImportCmd(rc),
		newCatchUpCmd(rc),
		newVersionCmd(),
	)
	return root
}

// Execute runs the command tree against os.Args.
func Execute() error {
	return NewRootCmd().Execute()
}
