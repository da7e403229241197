// Package config provides configuration helpers and TOML parsing.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// FileConfig represents the TOML configuration file.
type FileConfig struct {
	Monitor MonitorFileConfig `toml:"monitor"`
}

// MonitorFileConfig maps live monitor settings.
type MonitorFileConfig struct {
	WindowSeconds  *float64 `toml:"window"`
	TimelineBlocks *int     `toml:"blocks"`
	RenderFPS      *int     `toml:"render-fps"`
	StatsInterval  *float64 `toml:"stats-interval"`
	QueueSize      *int     `toml:"queue-size"`
	TopOffenders   *int     `toml:"top-offenders"`
	MinorMs        *float64 `toml:"minor-ms"`
	ModerateMs     *float64 `toml:"moderate-ms"`
	SevereMs       *float64 `toml:"severe-ms"`
	WeightClean    *float64 `toml:"weight-clean"`
	WeightMinor    *float64 `toml:"weight-minor"`
	WeightModerate *float64 `toml:"weight-moderate"`
	WeightSevere   *float64 `toml:"weight-severe"`
}

// LoadConfig reads a TOML config from the given path. Missing file is not an error.
func LoadConfig(path string) (FileConfig, error) {
	if path == "" {
		return FileConfig{}, fmt.Errorf("config path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, nil
		}
		return FileConfig{}, fmt.Errorf("failed to stat config: %w", err)
	}
	var cfg FileConfig
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	return cfg, nil
}
