package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yungbote/writecoach-backend/internal/app"
	"github.com/yungbote/writecoach-backend/internal/data/db"
	"github.com/yungbote/writecoach-backend/internal/platform/envutil"
	"github.com/yungbote/writecoach-backend/internal/platform/logger"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update tables and indexes",
	Long:  `Connects with the same DB_* / POSTGRES_* / SQLITE_PATH settings as the API and applies the schema.`,
	Args:  cobra.NoArgs,
	RunE:  runMigrate,
}

func runMigrate(cmd *cobra.Command, args []string) error {
	log, err := logger.New(envutil.String("LOG_MODE", "development"))
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	cfg := app.LoadConfig(log)
	svc, err := db.Open(cfg.DB, log)
	if err != nil {
		return err
	}
	defer svc.Close()

	if err := svc.AutoMigrateAll(); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "migrated (%s)\n", svc.Driver())
	return nil
}
