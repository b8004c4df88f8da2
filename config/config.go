// Package config provides configuration loading and access for the
// uniformization engine and its tools.
package config

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all configuration parameters.
type Config struct {
	Solver  SolverConfig  `yaml:"solver"`
	Run     RunConfig     `yaml:"run"`
	Preview PreviewConfig `yaml:"preview"`
}

// SolverConfig holds the relaxation-loop parameters.
type SolverConfig struct {
	DT               float64 `yaml:"dt"`
	StopTol          float64 `yaml:"stop_tol"`
	TriTol           float64 `yaml:"tri_tol"`
	InternalPressure float64 `yaml:"internal_pressure"`
	Stiffness        float64 `yaml:"stiffness"`
}

// RunConfig holds run-level settings. cmd/strew does not read it: it
// takes the export period and output directory from its flags.
type RunConfig struct {
	ExportPeriod int    `yaml:"export_period"`
	OutputDir    string `yaml:"output_dir"`
}

// PreviewConfig holds display settings for the preview tool.
type PreviewConfig struct {
	Width       int     `yaml:"width"`
	Height      int     `yaml:"height"`
	PointRadius float64 `yaml:"point_radius"`
}

var global *Config

// Init loads the global configuration, merging an optional file over
// the embedded defaults.
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// Cfg returns the global configuration, loading embedded defaults if
// Init was never called.
func Cfg() *Config {
	if global == nil {
		cfg, err := Load("")
		if err != nil {
			panic(fmt.Sprintf("config: broken embedded defaults: %v", err))
		}
		global = cfg
	}
	return global
}

// Load loads configuration from a YAML file, merging with embedded
// defaults. If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Only overwrites fields present in the file.
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}
	return cfg, nil
}
