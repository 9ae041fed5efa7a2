package config

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// ---------------------------------------------------------------------------
// Configuration structs
// ---------------------------------------------------------------------------

// Config is the top-level configuration for stockperf.
type Config struct {
	Storage Storage     `yaml:"storage"`
	Source  Source      `yaml:"source"`
	Server  Server      `yaml:"server"`
	Logging Logging     `yaml:"logging"`
	Build   BuildConfig `yaml:"build"`
}

// Storage holds paths for data persistence.
type Storage struct {
	DataDir    string `yaml:"data_dir"`
	SQLitePath string `yaml:"sqlite_path"`
	Snapshot   string `yaml:"snapshot"`
}

// Source selects where viewers load the return data set from.
type Source struct {
	Kind string `yaml:"kind" validate:"omitempty,oneof=sqlite parquet"`
}

// Server holds network listener configuration.
type Server struct {
	Host           string `yaml:"host"`
	Port           int    `yaml:"port" validate:"gte=0,lte=65535"`
	GRPCPort       int    `yaml:"grpc_port" validate:"gte=0,lte=65535"`
	ReloadSchedule string `yaml:"reload_schedule"`
}

// Logging configures the application logger.
type Logging struct {
	Level  string `yaml:"level" validate:"omitempty,oneof=debug info warn error"`
	Format string `yaml:"format" validate:"omitempty,oneof=json text"`
}

// BuildConfig controls the offline data set builder.
type BuildConfig struct {
	UniversePath string `yaml:"universe_path"`
	EndDate      string `yaml:"end_date" validate:"omitempty,datetime=2006-01-02"`
	MaxWorkers   int    `yaml:"max_workers" validate:"gte=0"`
}

// ---------------------------------------------------------------------------
// Loading
// ---------------------------------------------------------------------------

// Load reads the YAML configuration file at the given path, parses it into a
// Config struct, applies environment variable overrides and defaults, and
// validates the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	applyEnvOverrides(cfg)
	applyDefaults(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks field constraints and cross-field rules.
func (c *Config) Validate() error {
	v := validator.New()
	if err := v.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	switch c.Source.Kind {
	case "sqlite":
		if c.Storage.SQLitePath == "" {
			return fmt.Errorf("invalid config: storage.sqlite_path required for sqlite source")
		}
	case "parquet":
		if c.Storage.DataDir == "" {
			return fmt.Errorf("invalid config: storage.data_dir required for parquet source")
		}
	}
	return nil
}

// applyDefaults fills zero values that have a sensible default.
func applyDefaults(cfg *Config) {
	if cfg.Source.Kind == "" {
		cfg.Source.Kind = "sqlite"
	}
	if cfg.Storage.Snapshot == "" {
		cfg.Storage.Snapshot = "latest"
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Build.MaxWorkers == 0 {
		cfg.Build.MaxWorkers = 16
	}
}

// applyEnvOverrides checks well-known environment variables and overrides the
// corresponding configuration fields when they are set.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("DATA_DIR"); v != "" {
		cfg.Storage.DataDir = v
	}

	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Storage.SQLitePath = v
	}

	if v := os.Getenv("STOCKPERF_SOURCE"); v != "" {
		cfg.Source.Kind = v
	}

	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
}
