package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"
)

// Config represents the recgemm configuration file
// (~/.config/recgemm/config.yaml). All fields are pointers so we can
// distinguish "not set" from zero values.
type Config struct {
	Runs      *int64   `yaml:"runs"`
	Warmup    *int64   `yaml:"warmup"`
	Reference string   `yaml:"reference"`
	Tolerance *float64 `yaml:"tolerance"`
	Format    string   `yaml:"format"`
	Autotune  *bool    `yaml:"autotune"`

	// Engine tuning
	TileRows  *int64 `yaml:"tile_rows"`
	TileCols  *int64 `yaml:"tile_cols"`
	TileDepth *int64 `yaml:"tile_depth"`
	Threshold *int64 `yaml:"threshold"`
	Workers   *int64 `yaml:"workers"`

	// Output
	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`
}

func configPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "recgemm", "config.yaml")
}

// LoadConfig reads the config file at path, or at the default location when
// path is empty. A missing default file yields a zero Config; a missing
// explicit file is an error. Unknown keys are rejected.
func LoadConfig(path string) (Config, error) {
	explicit := path != ""
	if !explicit {
		path = configPath()
		if path == "" {
			return Config{}, nil
		}
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return Config{}, nil
		}
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// applyConfig applies config file defaults to s when the corresponding CLI
// flag was not explicitly set.
func applyConfig(c *cli.Command, cfg Config, s *settings) {
	setInt := func(flag string, v *int64, dst *int64) {
		if v != nil && !c.IsSet(flag) {
			*dst = *v
		}
	}
	setString := func(flag, v string, dst *string) {
		if v != "" && !c.IsSet(flag) {
			*dst = v
		}
	}

	setInt("runs", cfg.Runs, &s.runs)
	setInt("warmup", cfg.Warmup, &s.warmup)
	setString("reference", cfg.Reference, &s.reference)
	if cfg.Tolerance != nil && !c.IsSet("tolerance") {
		s.tolerance = *cfg.Tolerance
	}
	setString("format", cfg.Format, &s.format)
	if cfg.Autotune != nil && !c.IsSet("autotune") {
		s.autotune = *cfg.Autotune
	}

	setInt("tile-rows", cfg.TileRows, &s.tileRows)
	setInt("tile-cols", cfg.TileCols, &s.tileCols)
	setInt("tile-depth", cfg.TileDepth, &s.tileDepth)
	setInt("threshold", cfg.Threshold, &s.threshold)
	setInt("workers", cfg.Workers, &s.workers)

	if cfg.LogLevel != "" && !c.IsSet("log-level") && !c.IsSet("debug") {
		s.logLevel = cfg.LogLevel
	}
	setString("log-format", cfg.LogFormat, &s.logFormat)
}
