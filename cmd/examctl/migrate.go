package main

import (
	"errors"
	"fmt"
	"strconv"

	migrateV4 "github.com/golang-migrate/migrate/v4"
	"github.com/spf13/cobra"

	"github.com/RoutinizeWellness/aviate-ace-sub001/pkg/database"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Управление миграциями схемы",
}

var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Применить все новые миграции",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, db, err := openDatabase(cmd)
		if err != nil {
			return err
		}
		return database.MigrateDB(db, cfg.Database.MigrationsPath)
	},
}

var migrateForceCmd = &cobra.Command{
	Use:   "force <version>",
	Short: "Выставить версию миграций и снять dirty-состояние",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		version, err := parseMigrationVersion(args[0])
		if err != nil {
			return err
		}
		cfg, db, err := openDatabase(cmd)
		if err != nil {
			return err
		}
		return database.ForceMigrationVersion(db, cfg.Database.MigrationsPath, version)
	},
}

var migrateVersionCmd = &cobra.Command{
	Use:   "version",
	Short: "Показать текущую версию миграций",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, db, err := openDatabase(cmd)
		if err != nil {
			return err
		}
		m, err := database.NewMigrator(db, cfg.Database.MigrationsPath)
		if err != nil {
			return err
		}
		version, dirty, err := m.Version()
		if errors.Is(err, migrateV4.ErrNilVersion) {
			fmt.Fprintln(cmd.OutOrStdout(), "Миграции еще не применялись")
			return nil
		}
		if err != nil {
			return fmt.Errorf("read migration version: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "version=%d dirty=%t\n", version, dirty)
		return nil
	},
}

func init() {
	migrateCmd.AddCommand(migrateUpCmd)
	migrateCmd.AddCommand(migrateForceCmd)
	migrateCmd.AddCommand(migrateVersionCmd)
}

// parseMigrationVersion допускает -1 (сброс к "нет версии") и неотрицательные версии
func parseMigrationVersion(arg string) (int, error) {
	version, err := strconv.Atoi(arg)
	if err != nil {
		return 0, fmt.Errorf("invalid migration version %q: %w", arg, err)
	}
	if version < -1 {
		return 0, fmt.Errorf("invalid migration version %d: must be >= -1", version)
	}
	return version, nil
}
