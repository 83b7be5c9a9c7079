package driver

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/oshokin/sim-notifier/internal/service/common"
	"github.com/oshokin/sim-notifier/internal/config"
	"github.com/oshokin/sim-notifier/internal/logger"
)

// Options controls the notifier-sim process and configuration.
type Options struct {
	// ConfigPath specifies the path to settings YAML file. Empty means
	// run with built-in defaults.
	ConfigPath string
	// Loops overrides the number of control loops when positive.
	Loops int
	// Duration overrides the simulated run time when positive.
	Duration time.Duration
}

// Run executes one simulation and blocks until it finishes or the context
// is canceled. Context cancellation is a clean shutdown, not an error.
func Run(ctx context.Context, opts *Options) error {
	// Set context with logger name for tracking.
	ctx = logger.WithName(ctx, "notifier-sim")

	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}

	if level, ok := logger.ParseLogLevel(cfg.LogLevel); ok {
		logger.SetLevel(level)
	}

	// A second driver stepping time would fight over pacing; warn early.
	if running, psErr := common.IsProcessRunning(filepath.Base(os.Args[0])); psErr == nil && running {
		logger.Warn(ctx, "Another notifier-sim instance appears to be running")
	}

	logger.InfoKV(ctx, "Starting simulation",
		"loops", cfg.Loops,
		"loop_period", cfg.LoopPeriod,
		"tick_size", cfg.TickSize,
		"duration", cfg.Duration,
	)

	report, err := NewSimulation(cfg).Run(ctx)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			logger.Info(ctx, "Simulation interrupted")

			return nil
		}

		return fmt.Errorf("run simulation: %w", err)
	}

	total := uint64(0)
	for _, n := range report.Firings {
		total += n
	}

	logger.InfoKV(ctx, "Simulation finished",
		"sim_time_us", uint64(report.SimTime),
		"total_firings", total,
	)

	return nil
}

// loadConfig resolves settings from the options: an explicit file when
// provided, built-in defaults otherwise, with CLI overrides applied on top.
func loadConfig(opts *Options) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)

	if opts.ConfigPath != "" {
		cfg, err = config.Load(opts.ConfigPath)
		if err != nil {
			return nil, fmt.Errorf("load settings: %w", err)
		}
	} else {
		cfg = config.Default()
	}

	if opts.Loops > 0 {
		cfg.Loops = opts.Loops
	}

	if opts.Duration > 0 {
		cfg.Duration = opts.Duration
	}

	if err := config.Validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}
