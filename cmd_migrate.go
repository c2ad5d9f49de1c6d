package main

import (
	"context"
	"time"

	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create the database schema",
	Long: `Create the users, events and registrations tables if they do not exist.
With --seed, also load the sample catalog into an empty events table.`,
	RunE: runMigrate,
}

var (
	migrateDriver string
	migrateDSN    string
	migrateSeed   bool
)

func init() {
	rootCmd.AddCommand(migrateCmd)

	migrateCmd.Flags().BoolVar(&migrateSeed, "seed", false, "Load the sample catalog")
	addDatabaseFlags(migrateCmd, &migrateDriver, &migrateDSN)
}

func runMigrate(cmd *cobra.Command, args []string) error {
	dc, err := databaseConfig(cmd, migrateDriver, migrateDSN)
	if err != nil {
		return err
	}

	store, err := openDatabase(dc)
	if err != nil {
		return err
	}
	defer store.Close()

	if !migrateSeed && !dc.Seed {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return seedCatalog(ctx, store)
}
