package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the simulation driver parameters.
type Config struct {
	// Capacity is the number of alarm handles the registry can hold.
	Capacity int `yaml:"capacity"`
	// Loops is the number of periodic control loops the driver spawns.
	Loops int `yaml:"loops"`
	// LoopPeriod is the simulated-time period of each control loop.
	LoopPeriod time.Duration `yaml:"loop_period"`
	// TickSize is how far simulated time advances per driver tick.
	TickSize time.Duration `yaml:"tick_size"`
	// TickInterval is the real-time pacing between driver ticks.
	// Zero means step as fast as possible.
	TickInterval time.Duration `yaml:"tick_interval"`
	// Duration is the total simulated time to run before stopping.
	Duration time.Duration `yaml:"duration"`
	// LogLevel is the minimum level for driver logging (debug, info, ...).
	LogLevel string `yaml:"log_level"`
}

const (
	// DefaultConfigFilename is the default filename for driver settings.
	DefaultConfigFilename = "notifier-sim-settings.yaml"

	// DefaultCapacity is the default alarm registry size.
	DefaultCapacity = 64

	// DefaultLoops is the default number of periodic control loops.
	DefaultLoops = 4

	// DefaultLoopPeriod is the default simulated loop period.
	DefaultLoopPeriod = 20 * time.Millisecond

	// DefaultTickSize is the default simulated-time step per tick.
	DefaultTickSize = 20 * time.Millisecond

	// DefaultDuration is the default total simulated run time.
	DefaultDuration = 2 * time.Second

	// DefaultFilePermissions is the default file permission for config files.
	DefaultFilePermissions = 0o600
)

var (
	// errConfigIsNotSet is returned when a nil configuration is provided.
	errConfigIsNotSet = errors.New("configuration is not set")
	// errLoopsExceedCapacity is returned when more loops are requested than
	// the registry can hold handles for.
	errLoopsExceedCapacity = errors.New("loops exceed handle capacity")
	// errTickNotMultiple is returned when the loop period is not a multiple
	// of the tick size, which would make loops fire between ticks.
	errTickNotMultiple = errors.New("loop period must be a multiple of tick size")
)

// Default returns a configuration with every field at its default.
func Default() *Config {
	cfg := new(Config)
	_ = Validate(cfg)

	return cfg
}

// Load reads configuration from the provided path and validates essential fields.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultConfigFilename
	}

	contents, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read settings: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(contents, &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal settings: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Save writes the configuration to the provided path.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if path == "" {
		path = DefaultConfigFilename
	}

	if err := Validate(cfg); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}

	// Restrict permissions.
	if err := os.WriteFile(filepath.Clean(path), data, DefaultFilePermissions); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}

	return nil
}

// Validate fills in defaults for unset fields and rejects inconsistent
// combinations.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if cfg.Capacity <= 0 {
		cfg.Capacity = DefaultCapacity
	}

	if cfg.Loops <= 0 {
		cfg.Loops = DefaultLoops
	}

	if cfg.LoopPeriod <= 0 {
		cfg.LoopPeriod = DefaultLoopPeriod
	}

	if cfg.TickSize <= 0 {
		cfg.TickSize = DefaultTickSize
	}

	if cfg.Duration <= 0 {
		cfg.Duration = DefaultDuration
	}

	if cfg.TickInterval < 0 {
		cfg.TickInterval = 0
	}

	if cfg.Loops > cfg.Capacity {
		return fmt.Errorf("%w: %d > %d", errLoopsExceedCapacity, cfg.Loops, cfg.Capacity)
	}

	if cfg.LoopPeriod%cfg.TickSize != 0 {
		return fmt.Errorf("%w: %s %% %s", errTickNotMultiple, cfg.LoopPeriod, cfg.TickSize)
	}

	return nil
}
