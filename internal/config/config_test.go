package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joeblew999/plat-draw/internal/config"
)

func TestDefaults(t *testing.T) {
	cfg := config.Default()
	assert.Equal(t, "https://router.project-osrm.org", cfg.Routing.Endpoint)
	assert.Equal(t, "walking", cfg.Routing.Profile)
	assert.Equal(t, 250, cfg.Routing.DebounceMs)
	assert.Equal(t, "metric", cfg.Units.Default)
	assert.Equal(t, 100, cfg.Labels.TickMs)
	assert.Equal(t, 24.0, cfg.Labels.MinDiagonalPx)
}

func TestLoadEmptyPathReturnsDefaults(t *testing.T) {
	cfg, err := config.Load("")
	require.NoError(t, err)
	assert.Equal(t, config.Default(), cfg)
}

func TestLoadOverridesOnlyGivenKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "draw.yaml")
	require.NoError(t, os.WriteFile(path, []byte(
		"routing:\n  endpoint: http://localhost:5000\n  profile: car\nunits:\n  default: imperial\n",
	), 0o644))

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:5000", cfg.Routing.Endpoint)
	assert.Equal(t, "car", cfg.Routing.Profile)
	assert.Equal(t, "imperial", cfg.Units.Default)

	// Untouched keys keep their defaults.
	assert.Equal(t, 250, cfg.Routing.DebounceMs)
	assert.Equal(t, 100, cfg.Labels.TickMs)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("routing: [not a map"), 0o644))

	_, err := config.Load(path)
	assert.Error(t, err)
}
