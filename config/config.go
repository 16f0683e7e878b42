// Package config loads askdata settings from YAML.
//
// Values missing from the file keep their defaults, and command-line
// flags override both. Example file:
//
//	head_rows: 5
//	date_column: gas_day
//	anomaly:
//	  isolation_forest:
//	    enabled: true
//	    trees: 200
//	    seed: 7
//	reader:
//	  delimiter: ";"
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"gopkg.in/yaml.v3"

	"github.com/vegasq/askdata/engine"
	"github.com/vegasq/askdata/query"
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid config")

// Config holds every tunable setting.
type Config struct {
	HeadRows         int     `yaml:"head_rows"`
	DistributionTopK int     `yaml:"distribution_top_k"`
	TopNDefault      int     `yaml:"top_n_default"`
	ZScoreThreshold  float64 `yaml:"zscore_threshold"`
	// DateColumn names the column trend questions group by year.
	DateColumn string        `yaml:"date_column"`
	LogLevel   string        `yaml:"log_level"`
	Anomaly    AnomalyConfig `yaml:"anomaly"`
	Reader     ReaderConfig  `yaml:"reader"`
}

// AnomalyConfig holds multivariate anomaly settings.
type AnomalyConfig struct {
	IsolationForest IsolationForestConfig `yaml:"isolation_forest"`
}

// IsolationForestConfig holds isolation forest parameters. With Enabled
// false, multivariate questions use the degraded z-score fallback.
type IsolationForestConfig struct {
	Enabled       bool    `yaml:"enabled"`
	Trees         int     `yaml:"trees"`
	SampleSize    int     `yaml:"sample_size"`
	Contamination float64 `yaml:"contamination"`
	Seed          uint64  `yaml:"seed"`
}

// ReaderConfig holds file loading settings.
type ReaderConfig struct {
	// Delimiter overrides CSV delimiter sniffing when set.
	Delimiter string `yaml:"delimiter"`
	// Sheet selects the XLSX worksheet; empty means the first sheet.
	Sheet string `yaml:"sheet"`
}

// Default returns the built-in settings.
func Default() *Config {
	d := query.StandardDefaults()
	return &Config{
		HeadRows:         d.HeadRows,
		DistributionTopK: d.TopK,
		TopNDefault:      d.TopN,
		ZScoreThreshold:  d.ZThreshold,
		LogLevel:         "info",
		Anomaly: AnomalyConfig{IsolationForest: IsolationForestConfig{
			Enabled:       true,
			Trees:         d.Trees,
			SampleSize:    d.SampleSize,
			Contamination: d.Contamination,
			Seed:          d.Seed,
		}},
	}
}

// Load reads the YAML file at path over the defaults and validates the
// result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes YAML over the defaults and validates the result. Unknown
// keys are rejected.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	// An empty document decodes to io.EOF and keeps the defaults.
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

var logLevels = map[string]level.Option{
	"debug": level.AllowDebug(),
	"info":  level.AllowInfo(),
	"warn":  level.AllowWarn(),
	"error": level.AllowError(),
	"none":  level.AllowNone(),
}

// Validate checks every setting and reports the first problem.
func (c *Config) Validate() error {
	forest := c.Anomaly.IsolationForest
	switch {
	case c.HeadRows <= 0:
		return fmt.Errorf("%w: head_rows must be positive, got %d", ErrInvalid, c.HeadRows)
	case c.DistributionTopK <= 0:
		return fmt.Errorf("%w: distribution_top_k must be positive, got %d", ErrInvalid, c.DistributionTopK)
	case c.TopNDefault <= 0:
		return fmt.Errorf("%w: top_n_default must be positive, got %d", ErrInvalid, c.TopNDefault)
	case c.ZScoreThreshold <= 0:
		return fmt.Errorf("%w: zscore_threshold must be positive, got %g", ErrInvalid, c.ZScoreThreshold)
	case forest.Trees <= 0:
		return fmt.Errorf("%w: anomaly.isolation_forest.trees must be positive, got %d", ErrInvalid, forest.Trees)
	case forest.SampleSize < 2:
		return fmt.Errorf("%w: anomaly.isolation_forest.sample_size must be at least 2, got %d", ErrInvalid, forest.SampleSize)
	case forest.Contamination <= 0 || forest.Contamination > query.MaxContamination:
		return fmt.Errorf("%w: anomaly.isolation_forest.contamination must be in (0, %g], got %g",
			ErrInvalid, query.MaxContamination, forest.Contamination)
	case utf8.RuneCountInString(c.Reader.Delimiter) > 1:
		return fmt.Errorf("%w: reader.delimiter must be a single character, got %q", ErrInvalid, c.Reader.Delimiter)
	}
	if _, ok := logLevels[strings.ToLower(c.LogLevel)]; !ok {
		return fmt.Errorf("%w: unknown log_level %q (want debug, info, warn, error or none)", ErrInvalid, c.LogLevel)
	}
	return nil
}

// QueryDefaults returns the matcher defaults the settings describe.
func (c *Config) QueryDefaults() query.Defaults {
	forest := c.Anomaly.IsolationForest
	return query.Defaults{
		HeadRows:      c.HeadRows,
		TopK:          c.DistributionTopK,
		TopN:          c.TopNDefault,
		ZThreshold:    c.ZScoreThreshold,
		Trees:         forest.Trees,
		SampleSize:    forest.SampleSize,
		Contamination: forest.Contamination,
		Seed:          forest.Seed,
	}
}

// QueryOptions returns the matcher options for these settings.
func (c *Config) QueryOptions() []query.Option {
	opts := []query.Option{query.WithDefaults(c.QueryDefaults())}
	if c.DateColumn != "" {
		opts = append(opts, query.WithDateColumn(c.DateColumn))
	}
	return opts
}

// EngineOptions returns the engine options for these settings.
func (c *Config) EngineOptions(logger log.Logger) []engine.Option {
	opts := []engine.Option{engine.WithLogger(logger)}
	if !c.Anomaly.IsolationForest.Enabled {
		opts = append(opts, engine.WithoutIsolationForest())
	}
	return opts
}

// LevelFilter returns the go-kit level filter for LogLevel.
func (c *Config) LevelFilter() level.Option {
	if opt, ok := logLevels[strings.ToLower(c.LogLevel)]; ok {
		return opt
	}
	return level.AllowInfo()
}
