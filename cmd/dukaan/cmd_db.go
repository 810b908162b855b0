package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/dukaanlabs/dukaan/config"
	"github.com/dukaanlabs/dukaan/database/seeders"
	"github.com/dukaanlabs/dukaan/pkg/database"
	"github.com/dukaanlabs/dukaan/pkg/migration"
)

// bootDB loads config and opens the database connection.
func bootDB() (*gorm.DB, error) {
	if err := config.Load(); err != nil {
		return nil, err
	}
	return database.Connect(config.DatabaseDriver(), config.DatabaseDSN())
}

// dukaan migrate
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run all pending database migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := bootDB()
		if err != nil {
			return err
		}
		return migration.New(db).Up()
	},
}

// dukaan migrate:rollback
var migrateRollbackCmd = &cobra.Command{
	Use:   "migrate:rollback",
	Short: "Rollback the last batch of migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := bootDB()
		if err != nil {
			return err
		}
		return migration.New(db).Rollback()
	},
}

// dukaan migrate:status
var migrateStatusCmd = &cobra.Command{
	Use:   "migrate:status",
	Short: "Show the status of each migration",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := bootDB()
		if err != nil {
			return err
		}

		entries, err := migration.New(db).Status()
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
		fmt.Fprintln(w, "MIGRATION\tAPPLIED\tBATCH")
		fmt.Fprintln(w, "---------\t-------\t-----")
		for _, e := range entries {
			applied := "no"
			batch := "-"
			if e.Applied {
				applied = "yes"
				batch = fmt.Sprintf("%d", e.Batch)
			}
			fmt.Fprintf(w, "%s\t%s\t%s\n", e.Name, applied, batch)
		}
		return w.Flush()
	},
}

// dukaan seed
var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Run all database seeders",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := bootDB()
		if err != nil {
			return err
		}
		return seeders.RunAll(db)
	},
}
