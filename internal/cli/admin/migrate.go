package admin

import (
	"fmt"
	"os"

	"github.com/cloo-solutions/khub/internal/config"
	"github.com/cloo-solutions/khub/internal/database"
	"github.com/cloo-solutions/khub/internal/logging"
	"github.com/spf13/cobra"
)

// MigrateCmd returns the migrate command
func MigrateCmd() *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply telemetry collector migrations",
		Long:  "Apply every pending migration of the telemetry collector database named by KHUB_DATABASE_URL",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			if !cfg.HasDatabase() {
				return fmt.Errorf("KHUB_DATABASE_URL is not set")
			}
			return database.Migrate(cfg.DatabaseURL, dir, logging.New(os.Stderr, cfg.Debug))
		},
	}

	cmd.Flags().StringVar(&dir, "dir", database.DefaultMigrationsDir, "Directory holding the migration files")

	return cmd
}
