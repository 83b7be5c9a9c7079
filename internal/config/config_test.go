package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// TestValidate checks default filling and rejection of inconsistent settings.
func TestValidate(t *testing.T) {
	t.Parallel()

	// Empty config gets defaults.
	cfg := new(Config)
	require.NoError(t, Validate(cfg))
	require.Equal(t, DefaultCapacity, cfg.Capacity)
	require.Equal(t, DefaultLoops, cfg.Loops)
	require.Equal(t, DefaultLoopPeriod, cfg.LoopPeriod)

	// More loops than handles.
	cfg = &Config{
		Capacity: 2,
		Loops:    3,
	}
	require.Error(t, Validate(cfg))

	// Loop period not steppable.
	cfg = &Config{
		LoopPeriod: 25 * time.Millisecond,
		TickSize:   20 * time.Millisecond,
	}
	require.Error(t, Validate(cfg))

	// Nil config.
	require.Error(t, Validate(nil))
}

// TestSaveLoadRoundtrip ensures settings are persisted and loaded back correctly.
func TestSaveLoadRoundtrip(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "settings.yaml")

	cfg := &Config{
		Capacity:   16,
		Loops:      2,
		LoopPeriod: 10 * time.Millisecond,
		TickSize:   10 * time.Millisecond,
		Duration:   time.Second,
		LogLevel:   "debug",
	}

	require.NoError(t, Save(path, cfg))

	loaded, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, cfg.Capacity, loaded.Capacity)
	require.Equal(t, cfg.Loops, loaded.Loops)
	require.Equal(t, cfg.LoopPeriod, loaded.LoopPeriod)
	require.Equal(t, cfg.LogLevel, loaded.LogLevel)

	// File exists.
	_, err = os.Stat(path)
	require.NoError(t, err)
}

// TestLoadMissingFile verifies a missing settings file surfaces as an error.
func TestLoadMissingFile(t *testing.T) {
	t.Parallel()

	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}
