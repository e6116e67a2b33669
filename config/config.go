package config

import (
	"bytes"
	"fmt"
	"math"
	"os"

	env "github.com/Netflix/go-env"
	"github.com/joho/godotenv"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

const (
	DefaultMaxRows        = 10
	DefaultMaxConnections = 10
	DefaultLogLevel       = "info"
	DefaultDotEnv         = ".env"
)

type Config struct {
	Database DatabaseConfig `yaml:"database"`
	Query    QueryConfig    `yaml:"query"`
	Log      LogConfig      `yaml:"log"`
}

type DatabaseConfig struct {
	DBType           string `yaml:"type" env:"DATABASE_TYPE"`
	ConnectionString string `yaml:"connection_string,omitempty" env:"DATABASE_URL"`
	File             string `yaml:"file,omitempty"`
	MaxConnections   int    `yaml:"max_connections,omitempty" env:"DATABASE_MAX_CONNECTIONS"`
}

type QueryConfig struct {
	MaxRows    int  `yaml:"max_rows,omitempty" env:"QUERY_MAX_ROWS"`
	ClampLimit bool `yaml:"clamp_limit,omitempty" env:"QUERY_CLAMP_LIMIT"`
}

type LogConfig struct {
	Level string `yaml:"level,omitempty" env:"LOG_LEVEL"`
}

// Default returns the configuration used when no file is given: the bundled demo store.
func Default() *Config {
	return &Config{
		Database: DatabaseConfig{DBType: "demo", MaxConnections: DefaultMaxConnections},
		Query:    QueryConfig{MaxRows: DefaultMaxRows},
		Log:      LogConfig{Level: DefaultLogLevel},
	}
}

// LoadConfig reads configPath (skipped when empty), then applies the variables from the
// .env file next to the process and finally the process environment, later sources
// winning.
func LoadConfig(fs afero.Fs, configPath string) (*Config, error) {
	config := Default()

	if configPath != "" {
		data, err := afero.ReadFile(fs, configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %w", err)
		}
		if err := yaml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	es, err := loadEnvSet(fs, DefaultDotEnv)
	if err != nil {
		return nil, err
	}
	if err := config.applyEnv(es); err != nil {
		return nil, err
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// loadEnvSet merges the dotenv file, if present, under the process environment. Empty
// values count as unset.
func loadEnvSet(fs afero.Fs, dotenvPath string) (env.EnvSet, error) {
	es := env.EnvSet{}

	exists, err := afero.Exists(fs, dotenvPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat %s: %w", dotenvPath, err)
	}
	if exists {
		content, err := afero.ReadFile(fs, dotenvPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", dotenvPath, err)
		}
		vars, err := godotenv.Parse(bytes.NewReader(content))
		if err != nil {
			return nil, fmt.Errorf("error parsing .env content: %w", err)
		}
		for k, v := range vars {
			if v != "" {
				es[k] = v
			}
		}
	}

	procEnv, err := env.EnvironToEnvSet(os.Environ())
	if err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}
	for k, v := range procEnv {
		if v != "" {
			es[k] = v
		}
	}
	return es, nil
}

func (c *Config) applyEnv(es env.EnvSet) error {
	for _, section := range []any{&c.Database, &c.Query, &c.Log} {
		if err := env.Unmarshal(es, section); err != nil {
			return fmt.Errorf("failed to apply environment: %w", err)
		}
	}
	return nil
}

// Validate fills zero values with defaults and rejects values no component can use.
func (c *Config) Validate() error {
	if c.Query.MaxRows == 0 {
		c.Query.MaxRows = DefaultMaxRows
	}
	if c.Query.MaxRows < 0 {
		return fmt.Errorf("query.max_rows must be positive, got %d", c.Query.MaxRows)
	}
	if int64(c.Query.MaxRows) > math.MaxUint32 {
		return fmt.Errorf("query.max_rows is too large: %d", c.Query.MaxRows)
	}
	if c.Database.MaxConnections == 0 {
		c.Database.MaxConnections = DefaultMaxConnections
	}
	if c.Database.MaxConnections < 0 {
		return fmt.Errorf("database.max_connections must be positive, got %d", c.Database.MaxConnections)
	}
	if c.Log.Level == "" {
		c.Log.Level = DefaultLogLevel
	}
	return nil
}

func (d *DatabaseConfig) GetConnectionString() (string, error) {
	switch d.DBType {
	case "postgres", "mysql":
		if d.ConnectionString == "" {
			return "", fmt.Errorf("connection string is required for %s connection", d.DBType)
		}

		return d.ConnectionString, nil

	case "sqlite":
		if d.ConnectionString != "" {
			return d.ConnectionString, nil
		}
		if d.File == "" {
			d.File = "database.db"
		}
		return d.File, nil

	case "demo":
		return "", nil

	default:
		return "", fmt.Errorf("unsupported database type: %s", d.DBType)
	}
}
