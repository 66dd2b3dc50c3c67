package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/regestra/regestra/configs"
	"github.com/regestra/regestra/internal/config"
	"github.com/regestra/regestra/internal/store"
)

func newInitCmd() *cobra.Command {
	var dbPath string
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create the config file and initialize the database",
		Long: `Initialize Regestra: write the config file (unless it exists) and
create the SQLite database with its schema.

Safe to re-run; the schema migration is idempotent.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()

			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			if dbPath != "" {
				cfg.Storage.Path = dbPath
			}

			if _, err := os.Stat(configPath); os.IsNotExist(err) || force {
				if err := writeConfig(cfg, dbPath != ""); err != nil {
					return err
				}
				fmt.Fprintf(out, "wrote config %s\n", configPath)
			} else {
				fmt.Fprintf(out, "config %s already exists, leaving it alone\n", configPath)
			}

			db, err := store.Open(cfg.Storage.Path, cfg.Storage.BusyTimeoutMS)
			if err != nil {
				return err
			}
			defer db.Close()

			fmt.Fprintf(out, "database ready at %s\n", cfg.Storage.Path)
			return nil
		},
	}

	cmd.Flags().StringVar(&dbPath, "db", "", "Database path (default from config)")
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing config file")

	return cmd
}

// writeConfig writes either the annotated template (fresh setups) or the
// resolved config (when flags changed a value worth persisting).
func writeConfig(cfg *config.Config, customized bool) error {
	if customized {
		return cfg.Save(configPath)
	}
	if err := os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
		return err
	}
	return os.WriteFile(configPath, []byte(configs.ConfigTemplate), 0o644)
}
