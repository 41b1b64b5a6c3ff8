package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// fileConfig holds CLI defaults loaded from an optional YAML config file.
// Flags override file values.
type fileConfig struct {
	// Addresses are default thermostat addresses for discover/status
	// commands, so known devices need not be typed every time.
	Addresses []string `yaml:"addresses"`

	// ScanDuration is the default discovery duration.
	ScanDuration time.Duration `yaml:"scan_duration"`

	// Timeout is the default per-operation timeout.
	Timeout time.Duration `yaml:"timeout"`
}

func defaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "ccrtble", "config.yaml")
}

// loadConfig reads the config file named by --config, or the default path.
// A missing file is not an error; a malformed one is.
func loadConfig(cmd *cobra.Command) (*fileConfig, error) {
	path, _ := cmd.Flags().GetString("config")
	explicit := path != ""
	if !explicit {
		path = defaultConfigPath()
	}

	cfg := &fileConfig{}
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !explicit {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return cfg, nil
}
