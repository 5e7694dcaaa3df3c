// Package config loads the engine configuration file.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds the tunable engine settings. Everything has a sensible
// default; the YAML file only needs the keys it wants to change.
type Config struct {
	Routing RoutingConfig `yaml:"routing"`
	Units   UnitsConfig   `yaml:"units"`
	Labels  LabelsConfig  `yaml:"labels"`
}

// RoutingConfig configures the routing backend boundary.
type RoutingConfig struct {
	Endpoint   string `yaml:"endpoint"`   // OSRM-compatible base URL
	Profile    string `yaml:"profile"`    // default transport profile
	DebounceMs int    `yaml:"debounceMs"` // preview fetch debounce
}

// UnitsConfig configures display formatting defaults.
type UnitsConfig struct {
	Default string `yaml:"default"` // "metric" or "imperial"
}

// LabelsConfig configures the label engine tick.
type LabelsConfig struct {
	TickMs        int     `yaml:"tickMs"`
	MinDiagonalPx float64 `yaml:"minDiagonalPx"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Routing: RoutingConfig{
			Endpoint:   "https://router.project-osrm.org",
			Profile:    "walking",
			DebounceMs: 250,
		},
		Units: UnitsConfig{Default: "metric"},
		Labels: LabelsConfig{
			TickMs:        100,
			MinDiagonalPx: 24,
		},
	}
}

// Load reads a YAML config file over the defaults. An empty path returns the
// defaults unchanged.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("reading config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}
	return cfg, nil
}
