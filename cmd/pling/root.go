package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/pling-project/pling/internal/store"
)

// Build-time variables (set via ldflags)
var (
	version   = "dev"
	commit    = "unknown"
	buildTime = "unknown"
)

// Global flags shared by all subcommands
var (
	globalOpts struct {
		verbose   bool
		stateFile string
		cacheFile string
	}
	logger *slog.Logger
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "pling",
	Short: "Control and query the pling notification daemon",
	Long: `pling is the command-line companion to plingd, the pling notification
daemon.

It sends notifications, lists the recorded history, toggles
do-not-disturb, and watches the daemon's lifecycle signals.`,
	Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, buildTime),
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		setupLogger()
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&globalOpts.verbose, "verbose", "v", false,
		"Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&globalOpts.stateFile, "state-file", store.DefaultStateFile(),
		"Path to the shared state file")
	rootCmd.PersistentFlags().StringVar(&globalOpts.cacheFile, "cache-file", store.DefaultCacheFile(),
		"Path to the notification cache file")
}

// setupLogger configures the global slog logger.
func setupLogger() {
	level := slog.LevelWarn
	if globalOpts.verbose {
		level = slog.LevelDebug
	}

	// Log to stderr so stdout stays clean for command output
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	logger = slog.New(handler)
	slog.SetDefault(logger)
}
