// Package commands holds the blogz command line.
package commands

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"blogz/internal/config"
	"blogz/internal/db"
)

func RootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "blogz",
		Short:         "A small multi-user blog",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(
		ServeCmd(),
		MigrateCmd(),
		UserCmd(),
	)
	return root
}

// openDB opens the configured database, creating the directory of a SQLite
// file when needed.
func openDB(cfg config.Config) (*sql.DB, error) {
	if cfg.DBDriver == db.DriverSQLite && !strings.HasPrefix(cfg.DBDSN, "file:") && cfg.DBDSN != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(cfg.DBDSN), 0755); err != nil {
			return nil, err
		}
	}
	dbc, err := db.Open(cfg.DBDriver, cfg.DBDSN)
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", cfg.DBDriver, err)
	}
	return dbc, nil
}

// loadConfig reads the environment, applies the database flags if the
// command has them and they were set, then resolves the DSN for the final
// driver.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return cfg, err
	}
	if f := cmd.Flags().Lookup("db-driver"); f != nil && f.Changed {
		cfg.DBDriver = f.Value.String()
	}
	if f := cmd.Flags().Lookup("db-dsn"); f != nil && f.Changed {
		cfg.DBDSN = f.Value.String()
	}
	if err := cfg.Resolve(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func addDBFlags(cmd *cobra.Command) {
	cmd.Flags().String("db-driver", "", "database driver (sqlite or mysql)")
	cmd.Flags().String("db-dsn", "", "database DSN or SQLite file path")
}
