package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/noah-isme/teaching-load-api/pkg/config"
	"github.com/noah-isme/teaching-load-api/pkg/database"
)

func newMigrateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the database schema",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply every pending migration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logr, err := bootstrap()
			if err != nil {
				return err
			}
			defer logr.Sync() //nolint:errcheck
			return migrateUp(cfg.Database, cfg.Migrations.Dir, logr)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "down [steps]",
		Short: "Roll back migrations, one step by default",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			steps, err := parseSteps(args)
			if err != nil {
				return err
			}
			cfg, logr, err := bootstrap()
			if err != nil {
				return err
			}
			defer logr.Sync() //nolint:errcheck

			m, err := database.NewMigrator(cfg.Database, cfg.Migrations.Dir, logr)
			if err != nil {
				return err
			}
			defer m.Close() //nolint:errcheck
			return m.Down(steps)
		},
	})

	return cmd
}

func migrateUp(dbCfg config.DatabaseConfig, dir string, logr *zap.Logger) error {
	m, err := database.NewMigrator(dbCfg, dir, logr)
	if err != nil {
		return err
	}
	defer m.Close() //nolint:errcheck
	return m.Up()
}

func parseSteps(args []string) (int, error) {
	if len(args) == 0 {
		return 1, nil
	}
	steps, err := strconv.Atoi(args[0])
	if err != nil || steps < 1 {
		return 0, fmt.Errorf("steps must be a positive integer, got %q", args[0])
	}
	return steps, nil
}
