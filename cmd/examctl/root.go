package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/RoutinizeWellness/aviate-ace-sub001/internal/config"
	"github.com/RoutinizeWellness/aviate-ace-sub001/pkg/database"
)

var rootCmd = &cobra.Command{
	Use:          "examctl",
	Short:        "Обслуживание базы вопросов экзаменов",
	Long:         "examctl применяет миграции и загружает встроенные наборы вопросов в PostgreSQL.",
	SilenceUsage: true,
}

// Execute запускает корневую команду
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Путь к файлу конфигурации (по умолчанию CONFIG_PATH или config/config.yaml)")

	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(seedCmd)
}

// resolveConfigPath: флаг --config, затем CONFIG_PATH, затем путь по умолчанию
func resolveConfigPath(cmd *cobra.Command) string {
	if p, _ := cmd.Flags().GetString("config"); p != "" {
		return p
	}
	if p := os.Getenv("CONFIG_PATH"); p != "" {
		return p
	}
	return "config/config.yaml"
}

func openDatabase(cmd *cobra.Command) (*config.Config, *gorm.DB, error) {
	cfg, err := config.Load(resolveConfigPath(cmd))
	if err != nil {
		return nil, nil, err
	}
	db, err := database.NewPostgresDB(cfg.Database.PostgresConnectionString(), logger.Warn)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to database: %w", err)
	}
	return cfg, db, nil
}
