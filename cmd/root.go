// =============================================================================
// Startup Funding Dashboard - Root Command
// =============================================================================
//
// This file defines the root command for the Cobra CLI. Every subcommand that
// needs data goes through setup(), which runs the shared startup sequence:
//
//   1. Load config.yaml (or defaults when no file exists), apply FUNDING_*
//      environment overrides, then command-line overrides.
//   2. Validate the configuration.
//   3. Create the logger.
//   4. Load the dataset once. A load failure aborts the command.
//
// COBRA CLI STRUCTURE:
//   rootCmd (funding)
//   ├── summaryCmd  (funding summary)
//   ├── exportCmd   (funding export)
//   ├── serveCmd    (funding serve)
//   ├── validateCmd (funding validate)
//   └── versionCmd  (funding version)
//
// =============================================================================

package cmd

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/ginjaninja78/funding-dashboard/internal/config"
	"github.com/ginjaninja78/funding-dashboard/internal/ingest"
	"github.com/ginjaninja78/funding-dashboard/internal/logging"
	"github.com/ginjaninja78/funding-dashboard/internal/types"
)

// =============================================================================
// GLOBAL VARIABLES
// =============================================================================

// cfgFile holds the path to the main configuration file.
var cfgFile string

// verbose enables debug logging when set to true.
var verbose bool

// dataPath overrides data.path from the configuration file.
var dataPath string

// =============================================================================
// ROOT COMMAND DEFINITION
// =============================================================================

var rootCmd = &cobra.Command{
	Use:   "funding",
	Short: "Startup Funding Dashboard - filter and aggregate startup funding data",
	Long: `Startup Funding Dashboard loads a CSV or XLSX export of startup funding
rounds once, applies city, industry, investment type, year and amount
filters, and computes ranked views: top startups, top investors, the
funding trend over time, funding by industry and deal share by category.

Example Usage:
  funding summary --data startup_funding.csv --city Bengaluru --years 2016:2018
  funding export  --data startup_funding.csv --industry FinTech
  funding serve   --data startup_funding.csv --addr :8080
  funding validate --data startup_funding.csv`,
	SilenceUsage: true,
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

// Execute runs the root command. It is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile,
		"config",
		"config.yaml",
		"Path to the main configuration file",
	)

	rootCmd.PersistentFlags().BoolVarP(
		&verbose,
		"verbose",
		"v",
		false,
		"Enable verbose output for debugging",
	)

	rootCmd.PersistentFlags().StringVarP(
		&dataPath,
		"data",
		"d",
		"",
		"Path to the funding dataset (.csv or .xlsx); overrides data.path",
	)
}

// =============================================================================
// SHARED STARTUP
// =============================================================================

// app bundles what every data command needs.
type app struct {
	cfg     *config.Config
	logger  *slog.Logger
	closer  io.Closer
	dataset *types.Dataset
}

func (a *app) Close() {
	if a.closer != nil {
		a.closer.Close()
	}
}

// loadConfig loads and validates the configuration. A missing config file is
// only an error when --config was given explicitly.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		if !errors.Is(err, config.ErrNotFound) || cmd.Flags().Changed("config") {
			return nil, err
		}
		cfg = config.Default()
		if err := config.ApplyEnv(cfg); err != nil {
			return nil, err
		}
	}

	if dataPath != "" {
		cfg.Data.Path = dataPath
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// setup loads config, creates the logger and loads the dataset.
func setup(cmd *cobra.Command) (*app, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}

	logger, closer, err := logging.New(cfg.Logging, verbose)
	if err != nil {
		return nil, err
	}

	logger = logger.With(slog.String("run_id", uuid.NewString()))
	logger.Debug("configuration loaded", "config", cfgFile, "data", cfg.Data.Path)

	ds, err := ingest.Load(cfg, logger)
	if err != nil {
		closer.Close()
		return nil, fmt.Errorf("cannot start: %w", err)
	}

	return &app{cfg: cfg, logger: logger, closer: closer, dataset: ds}, nil
}
