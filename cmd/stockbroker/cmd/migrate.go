package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ndewijer/Stockbroker-Backend/internal/database"
)

func newMigrateCmd(rc *rootContext) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending schema migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			db, err := database.Open(rc.cfg.Database.Path)
			if err != nil {
				return err
			}
			defer db.Close()

			if err := database.Migrate(db, rc.logger); err != nil {
				return err
			}
			v, err := database.SchemaVersion(db)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "database %s is at schema version %d\n", rc.cfg.Database.Path, v)
			return nil
		},
	}
}
