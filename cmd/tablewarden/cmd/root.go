// Package cmd implements the tablewarden command tree.
package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/tablewarden/tablewarden"
	"github.com/tablewarden/tablewarden/internal/config"
	"github.com/tablewarden/tablewarden/pkg/logging"
)

var (
	configFile  string
	dataDir     string
	sourcesFile string
	logLevel    string
	verbose     bool

	// Version information set by main.
	Version = "dev"
	// Commit is the git commit hash.
	Commit = "unknown"
	// Date is the build date.
	Date = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "tablewarden",
	Short: "Scrape web tables into tamper-checked spreadsheets",
	Long: `Tablewarden scrapes tabular data from web pages and reconciles it
into spreadsheet workbooks. Durable CSV snapshots record every row ever
seen together with the date it first appeared; the workbooks people
open are regenerated from those snapshots, checked against a stored
digest so hand edits are detected, and user-added columns survive
automated rewrites.`,
	PersistentPreRunE: setup,
	SilenceUsage:      true,
	SilenceErrors:     true,
}

// Execute runs the root command with signal-aware context.
func Execute(version, commit, date string) {
	Version = version
	Commit = commit
	Date = date

	ctx, cancel := signal.NotifyContext(context.Background(),
		syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		logging.Err(err).Msg("command failed")
		os.Exit(1)
	}
}

func init() {
	// Accept underscores in flag names so they line up with the
	// TABLEWARDEN_* environment variables.
	rootCmd.SetGlobalNormalizationFunc(func(f *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
	})

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (optional)")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "", "directory for workbooks and snapshots")
	rootCmd.PersistentFlags().StringVar(&sourcesFile, "sources", "", "sources manifest file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "shorthand for --log-level debug")
}

// setup resolves configuration and configures logging before any
// subcommand runs.
func setup(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configFile)
	if err != nil {
		return err
	}
	if dataDir != "" {
		cfg.DataDir = dataDir
	}
	if sourcesFile != "" {
		cfg.SourcesFile = sourcesFile
		manifest, err := config.LoadManifest(sourcesFile)
		if err != nil {
			return err
		}
		cfg.SenderName = manifest.SenderName
		cfg.MailingList = manifest.MailingList
		cfg.Sources = manifest.Sources
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	if verbose {
		cfg.LogLevel = "debug"
	}

	logging.Configure(&logging.Config{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
	})

	appConfig = cfg
	return nil
}

// appConfig is the resolved configuration shared by subcommands.
var appConfig *config.Config

// newClient builds the application client from the resolved config.
func newClient() (*tablewarden.Client, error) {
	return tablewarden.New(appConfig)
}
