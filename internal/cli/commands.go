package cli

import (
	"studyhub_backend/database"
	"studyhub_backend/internal/app"
	"studyhub_backend/internal/logger"

	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Запустить HTTP сервер (миграции применяются при старте)",
	RunE:  runServe,
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Применить миграции схемы и выйти",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		logger.Init(cfg.Server.Env)

		db, err := database.Open(cfg.Database.Driver, cfg.Database.DSN, false)
		if err != nil {
			return err
		}
		return database.AutoMigrate(db)
	},
}

var seedAdminCmd = &cobra.Command{
	Use:   "seed-admin",
	Short: "Создать первого администратора из FIRST_ADMIN_*",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		logger.Init(cfg.Server.Env)

		db, err := database.Open(cfg.Database.Driver, cfg.Database.DSN, false)
		if err != nil {
			return err
		}
		if err := database.AutoMigrate(db); err != nil {
			return err
		}
		return app.SeedAdmin(db, cfg)
	},
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	return app.Run(cfg)
}
