package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/oshokin/sim-notifier/internal/service/driver"
	"github.com/oshokin/sim-notifier/internal/version"
)

var (
	// configPath to the configuration YAML file.
	configPath string
	// loops overrides the number of simulated control loops.
	loops int
	// duration overrides the simulated run time.
	duration time.Duration

	// rootCmd represents the base command for running the simulation driver.
	rootCmd = &cobra.Command{
		Use:   "notifier-sim",
		Short: "Run a simulated-time exercise of the alarm notifier runtime.",
		Long: `Spawns periodic control loops that block on per-handle alarms, then steps
a simulated clock forward tick by tick. After every step the driver runs the
time-advance barrier so the clock never moves on before each due alarm has
observed the previous step.

Settings come from a YAML file when provided; otherwise built-in defaults are
used. Command line flags override both.`,
		Args: cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			// Setup graceful shutdown handling.
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			options := &driver.Options{
				ConfigPath: configPath,
				Loops:      loops,
				Duration:   duration,
			}

			return driver.Run(ctx, options)
		},
	}
)

// Execute runs the notifier-sim CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	// Setup command flags with consistent naming and descriptions.
	rootCmd.Flags().StringVarP(&configPath, "config", "c", "", "path to configuration file")
	rootCmd.Flags().IntVarP(&loops, "loops", "l", 0, "number of control loops (overrides config)")
	rootCmd.Flags().
		DurationVarP(&duration, "duration", "d", 0, "simulated run time (overrides config)")
}
