package main

import (
	"fmt"

	"club-points-ledger/internal/database"

	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database migrations",
}

var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply all up migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := database.MigrateUp(cfg.Database); err != nil {
			return fmt.Errorf("migrate up failed: %w", err)
		}
		return printMigrationVersion()
	},
}

var migrateDownCmd = &cobra.Command{
	Use:   "down",
	Short: "Roll back migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		steps, _ := cmd.Flags().GetInt("steps")
		if steps < 1 {
			return fmt.Errorf("--steps must be at least 1")
		}
		if err := database.MigrateDown(cfg.Database, steps); err != nil {
			return fmt.Errorf("migrate down failed: %w", err)
		}
		return printMigrationVersion()
	},
}

var migrateVersionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the current schema version",
	RunE: func(cmd *cobra.Command, args []string) error {
		return printMigrationVersion()
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
	migrateCmd.AddCommand(migrateUpCmd, migrateDownCmd, migrateVersionCmd)

	migrateDownCmd.Flags().Int("steps", 1, "Number of migrations to roll back")
}

func printMigrationVersion() error {
	version, dirty, err := database.MigrationVersion(cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}
	if dirty {
		fmt.Printf("Schema version %d (dirty)\n", version)
		return nil
	}
	fmt.Printf("Schema version %d\n", version)
	return nil
}
