// Package config provides configuration helpers and TOML parsing.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// FileConfig represents the TOML configuration file.
type FileConfig struct {
	Practice PracticeConfig `toml:"practice"`
	Scan     ScanConfig     `toml:"scan"`
}

// PracticeConfig maps practice-related settings.
type PracticeConfig struct {
	PauseDelay    *float64 `toml:"pause-delay"`
	AllowMistakes *bool    `toml:"allow-mistakes"`
	AutoIndent    *bool    `toml:"auto-indent"`
}

// ScanConfig maps file-scanning settings.
type ScanConfig struct {
	Folders []string `toml:"folders"`
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
