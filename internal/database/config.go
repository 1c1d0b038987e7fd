package database

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Supported database types.
const (
	TypeSQLite   = "sqlite"
	TypePostgres = "postgres"
)

// Config describes how to connect to the datastore and tune its pool.
type Config struct {
	Type string `yaml:"type"` // sqlite, postgres

	// Path is the sqlite database file. Empty means in-memory.
	Path string `yaml:"path"`

	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	DBName   string `yaml:"dbname"`
	SSLMode  string `yaml:"sslmode"`

	MaxIdleConns    int           `yaml:"max_idle_conns"`
	MaxOpenConns    int           `yaml:"max_open_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `yaml:"conn_max_idle_time"`

	// Debug enables query logging through bundebug.
	Debug bool `yaml:"debug"`
}

// DefaultConfig returns an in-memory sqlite configuration.
func DefaultConfig() Config {
	return Config{
		Type:         TypeSQLite,
		MaxIdleConns: 4,
		MaxOpenConns: 16,
	}
}

// LoadConfig reads a yaml configuration file.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("database: reading config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("database: parsing config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks the configuration for the selected database type.
func (c Config) Validate() error {
	switch c.Type {
	case TypeSQLite:
		return nil
	case TypePostgres:
		if c.Host == "" || c.DBName == "" {
			return fmt.Errorf("database: postgres requires host and dbname")
		}
		return nil
	default:
		return fmt.Errorf("database: unsupported type %q", c.Type)
	}
}

// DSN builds the driver connection string.
func (c Config) DSN() string {
	switch c.Type {
	case TypeSQLite:
		if c.Path == "" {
			return "file::memory:?cache=shared"
		}
		return fmt.Sprintf("file:%s?cache=shared", c.Path)
	case TypePostgres:
		sslmode := c.SSLMode
		if sslmode == "" {
			sslmode = "disable"
		}
		port := c.Port
		if port == 0 {
			port = 5432
		}
		return fmt.Sprintf(
			"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
			c.Host, port, c.Username, c.Password, c.DBName, sslmode,
		)
	default:
		return ""
	}
}
