package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Default values for configuration fields.
const (
	DefaultDialect          = "postgres"
	DefaultMigrationsDir    = "./migrations"
	DefaultSchemaFile       = "./schema.yml"
	DefaultLockTimeout      = 10 * time.Second
	DefaultStatementTimeout = 60 * time.Second
)

// Config holds the application configuration loaded from file, environment, and flags.
type Config struct {
	DatabaseURL      string
	Dialect          string
	MigrationsDir    string
	SchemaFile       string
	LockTimeout      time.Duration
	StatementTimeout time.Duration
}

// yamlConfig is the raw YAML file representation with string durations.
type yamlConfig struct {
	DatabaseURL      string `yaml:"database_url"`
	Dialect          string `yaml:"dialect"`
	MigrationsDir    string `yaml:"migrations_dir"`
	SchemaFile       string `yaml:"schema_file"`
	LockTimeout      string `yaml:"lock_timeout"`
	StatementTimeout string `yaml:"statement_timeout"`
}

// New returns a Config populated with default values.
func New() *Config {
	return &Config{
		Dialect:          DefaultDialect,
		MigrationsDir:    DefaultMigrationsDir,
		SchemaFile:       DefaultSchemaFile,
		LockTimeout:      DefaultLockTimeout,
		StatementTimeout: DefaultStatementTimeout,
	}
}

// Load reads a YAML configuration file and returns a Config.
// If allowMissing is true and the file does not exist, defaults are returned.
func Load(path string, allowMissing bool) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && allowMissing {
			return New(), nil
		}

		return nil, fmt.Errorf("reading config file %s: %w", path, err)
	}

	var raw yamlConfig
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing config file %s: %w", path, err)
	}

	return fromYAML(&raw)
}

// fromYAML converts the raw YAML representation to a Config with defaults applied.
func fromYAML(raw *yamlConfig) (*Config, error) {
	cfg := New()

	if raw.DatabaseURL != "" {
		cfg.DatabaseURL = raw.DatabaseURL
	}

	if raw.Dialect != "" {
		cfg.Dialect = raw.Dialect
	}

	if raw.MigrationsDir != "" {
		cfg.MigrationsDir = raw.MigrationsDir
	}

	if raw.SchemaFile != "" {
		cfg.SchemaFile = raw.SchemaFile
	}

	if raw.LockTimeout != "" {
		d, err := time.ParseDuration(raw.LockTimeout)
		if err != nil {
			return nil, fmt.Errorf("parsing lock_timeout %q: %w", raw.LockTimeout, err)
		}

		cfg.LockTimeout = d
	}

	if raw.StatementTimeout != "" {
		d, err := time.ParseDuration(raw.StatementTimeout)
		if err != nil {
			return nil, fmt.Errorf("parsing statement_timeout %q: %w", raw.StatementTimeout, err)
		}

		cfg.StatementTimeout = d
	}

	return cfg, nil
}

// MergeEnv overrides config fields from SEDIMENT_* environment variables.
func MergeEnv(cfg *Config) {
	if v := os.Getenv("SEDIMENT_DATABASE_URL"); v != "" {
		cfg.DatabaseURL = v
	}

	if v := os.Getenv("SEDIMENT_DIALECT"); v != "" {
		cfg.Dialect = v
	}

	if v := os.Getenv("SEDIMENT_MIGRATIONS_DIR"); v != "" {
		cfg.MigrationsDir = v
	}

	if v := os.Getenv("SEDIMENT_SCHEMA_FILE"); v != "" {
		cfg.SchemaFile = v
	}

	if v := os.Getenv("SEDIMENT_LOCK_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.LockTimeout = d
		}
	}

	if v := os.Getenv("SEDIMENT_STATEMENT_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.StatementTimeout = d
		}
	}
}
