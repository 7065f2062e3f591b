package main

import (
	"fmt"

	"github.com/devconnect-app/backend/config"
	"github.com/devconnect-app/backend/database"
	"github.com/devconnect-app/backend/models"
	"github.com/spf13/cobra"
)

var (
	// Global flags
	envFiles []string

	// migrate flags
	withRLS bool

	// gen-models flags
	outPath string

	loadedConfig map[string]string
)

var rootCmd = &cobra.Command{
	Use:   "devconnect",
	Short: "DevConnect backend",
	Long: `DevConnect is the REST backend for a developer community: accounts,
project showcases, profiles and threaded comments with likes.

Running without a subcommand starts the HTTP server.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load(cmd.Context(), envFiles...)
		if err != nil {
			return err
		}
		setupLogging(c)
		loadedConfig = c
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return serve(cmd.Context(), loadedConfig)
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return serve(cmd.Context(), loadedConfig)
	},
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update tables and row level security policies",
	Long: `Create or update every table from the Go models.

Examples:
  devconnect migrate            # tables and row level security
  devconnect migrate --rls=false # tables only`,
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := database.Open(loadedConfig)
		if err != nil {
			return err
		}
		defer closeDB(database.New(db))
		return database.Migrate(cmd.Context(), db, withRLS)
	},
}

var genModelsCmd = &cobra.Command{
	Use:   "gen-models",
	Short: "Generate typed query helpers for every model",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := database.Open(loadedConfig)
		if err != nil {
			return err
		}
		defer closeDB(database.New(db))
		return models.GenerateModels(db, outPath)
	},
}

var columnReportCmd = &cobra.Command{
	Use:   "column-report",
	Short: "List database columns the Go models do not declare",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := database.Open(loadedConfig)
		if err != nil {
			return err
		}
		defer closeDB(database.New(db))

		report, err := models.GenerateColumnMismatchReport(db)
		if err != nil {
			return err
		}
		if report.Total() > 0 || len(report.Missing) > 0 {
			return fmt.Errorf("%d mismatched columns, %d missing tables", report.Total(), len(report.Missing))
		}
		return nil
	},
}

func closeDB(d database.Database) {
	if err := d.Close(); err != nil {
		fmt.Printf("Error closing database: %v\n", err)
	}
}

func init() {
	rootCmd.PersistentFlags().StringSliceVar(&envFiles, "env-file", nil, "Environment files to load (default .env)")

	migrateCmd.Flags().BoolVar(&withRLS, "rls", true, "Apply row level security policies")
	genModelsCmd.Flags().StringVar(&outPath, "out", "./query", "Output directory for generated code")

	rootCmd.AddCommand(serveCmd, migrateCmd, genModelsCmd, columnReportCmd)
}
