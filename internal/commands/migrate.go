package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"blogz/internal/db"
)

func MigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Create the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			dbc, err := openDB(cfg)
			if err != nil {
				return err
			}
			defer dbc.Close()

			if err := db.Migrate(cmd.Context(), dbc, cfg.DBDriver); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Schema up to date (%s).\n", cfg.DBDriver)
			return nil
		},
	}
	addDBFlags(cmd)
	return cmd
}
