// Package config provides the two halves of the monitor's configuration
// (§4.6): a static, read-only YAML board description loaded once at start-up,
// and a mutable, persisted profile/credentials/timezone store backed by
// SQLite.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v2"
)

// BoardConfig is the static hardware/sampling configuration read from a YAML
// file at start-up. It never changes at runtime; the mutable state lives in
// the ProfileStore.
type BoardConfig struct {
	HardwareVersion uint8  `yaml:"hardware_version"`
	MoistureKind    string `yaml:"moisture_kind"` // "resistive" or "capacitive"

	SamplingIntervalSeconds int `yaml:"sampling_interval_seconds"`
	AnalysisIntervalSeconds int `yaml:"analysis_interval_seconds"`

	SoilTemperatureProbeCount int `yaml:"soil_temperature_probe_count"` // 0-4

	Link struct {
		ListenAddr string `yaml:"listen_addr"`
		DeviceName string `yaml:"device_name"`
	} `yaml:"link"`

	ConfigDBPath string `yaml:"config_db_path"`

	Debug struct {
		ListenAddr string `yaml:"listen_addr"`
	} `yaml:"debug"`
}

// LoadBoardConfig reads and parses a YAML board configuration file.
func LoadBoardConfig(path string) (*BoardConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read board config: %w", err)
	}

	var cfg BoardConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse board config: %w", err)
	}

	if cfg.SamplingIntervalSeconds == 0 {
		cfg.SamplingIntervalSeconds = 60
	}
	if cfg.AnalysisIntervalSeconds == 0 {
		cfg.AnalysisIntervalSeconds = 60
	}

	return &cfg, nil
}
