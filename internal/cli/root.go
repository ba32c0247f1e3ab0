// Package cli is the presentation layer over the scan pipeline. It owns
// no decision logic; it loads inputs, runs Evaluate, and renders or
// persists the annotated results.
package cli

import (
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"options-scout/internal/config"
	"options-scout/internal/logging"
	"options-scout/internal/store"
)

// Version information
const (
	Version   = "0.1.0"
	BuildDate = "2025-06-02"
)

// App holds the application dependencies.
type App struct {
	Config *config.Config
	Logger zerolog.Logger
	Store  store.RunStore
}

// NewRootCmd creates the root command for the CLI.
func NewRootCmd(cfg *config.Config, logger zerolog.Logger) *cobra.Command {
	app := &App{
		Config: cfg,
		Logger: logger,
	}

	dbPath := filepath.Join(config.DefaultConfigDir(), "scout.db")
	runStore, err := store.NewSQLiteStore(dbPath)
	if err != nil {
		logger.Warn().Err(err).Msg("Failed to initialize run store, history will be unavailable")
	} else {
		app.Store = runStore
		logger.Debug().Str("path", dbPath).Msg("Run store initialized")
	}

	rootCmd := &cobra.Command{
		Use:   "options-scout",
		Short: "Options Scout - strategy discovery and contract scanning CLI",
		Long: `Options Scout scans strategy candidates against live or fixture option
chains: tier classification, contract selection, liquidity grading,
pre-filtering, pairing, and a final acceptance decision per candidate.

Every candidate in equals one annotated row out; nothing is dropped.

Use 'options-scout help <command>' for more information about a command.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			debug, _ := cmd.Flags().GetBool("debug")
			if debug {
				logging.SetDebugLevel()
				app.Logger = app.Logger.Level(zerolog.DebugLevel)
			}
			return nil
		},
	}

	rootCmd.PersistentFlags().String("config", "", "config directory (default: ~/.config/options-scout)")
	rootCmd.PersistentFlags().Bool("json", false, "output in JSON format")
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging")

	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newScanCmd(app))
	rootCmd.AddCommand(newTiersCmd(app))
	rootCmd.AddCommand(newLiquidityCmd(app))
	rootCmd.AddCommand(newHistoryCmd(app))

	return rootCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			output := NewOutput(cmd)
			if output.IsJSON() {
				output.JSON(map[string]string{
					"version":    Version,
					"build_date": BuildDate,
				})
			} else {
				output.Printf("Options Scout v%s\n", Version)
				output.Dim("Build date: %s", BuildDate)
			}
		},
	}
}
