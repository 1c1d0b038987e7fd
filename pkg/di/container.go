// Package di wires the cache backend, database, and repositories into one
// container so commands and services share singletons.
package di

import (
	"fmt"
	"os"

	"github.com/uptrace/bun"
	"gopkg.in/yaml.v3"

	"github.com/nickoine/know/cache"
	"github.com/nickoine/know/internal/database"
	"github.com/nickoine/know/internal/logging"
	"github.com/nickoine/know/repository"
)

// Config is the application configuration loaded from YAML.
type Config struct {
	LogLevel string          `yaml:"log_level"`
	Cache    cache.Config    `yaml:"cache"`
	Database database.Config `yaml:"database"`
}

// DefaultConfig returns an in-memory setup suitable for development and
// tests: sqlite database, memory cache backend.
func DefaultConfig() Config {
	return Config{
		LogLevel: "info",
		Cache:    cache.DefaultConfig(),
		Database: database.DefaultConfig(),
	}
}

// LoadConfig reads a YAML config file, applying defaults for any section
// the file omits.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("di: read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("di: parse config: %w", err)
	}
	return cfg, nil
}

// Container manages singleton instances of the cache store and database
// handle, and provides the factory for cached repositories.
type Container struct {
	cfg   Config
	store cache.Store
	db    *bun.DB
}

// NewContainer builds a container from the provided configuration. The
// cache store and database connection are created eagerly so wiring
// mistakes surface at startup rather than on first request.
func NewContainer(cfg Config) (*Container, error) {
	logging.SetLevel(cfg.LogLevel)

	store, err := cache.New(cfg.Cache)
	if err != nil {
		return nil, fmt.Errorf("di: cache: %w", err)
	}

	db, err := database.Open(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("di: database: %w", err)
	}

	return &Container{cfg: cfg, store: store, db: db}, nil
}

// NewContainerWithDefaults builds a container from DefaultConfig. This is
// a convenience constructor for tests and local development.
func NewContainerWithDefaults() (*Container, error) {
	return NewContainer(DefaultConfig())
}

// Store returns the singleton cache store instance.
func (c *Container) Store() cache.Store { return c.store }

// DB returns the singleton database handle.
func (c *Container) DB() *bun.DB { return c.db }

// Config returns a copy of the configuration used by this container.
func (c *Container) Config() Config { return c.cfg }

// Close releases the database connection.
func (c *Container) Close() error {
	if c.db != nil {
		return c.db.Close()
	}
	return nil
}

// NewRepository creates a cached repository for one model type, wiring the
// container's cache store and a bun-backed manager together.
//
// Since Go methods cannot have type parameters, this is provided as a
// package-level function. Example:
//
//	repo, err := di.NewRepository(c, model.QuestionnaireMeta, func() *model.Questionnaire {
//		return &model.Questionnaire{}
//	})
func NewRepository[T database.Record](c *Container, meta repository.Metadata, newRecord func() T) (*repository.Repository[T], error) {
	mgr := database.NewManager(c.db, newRecord)
	return repository.NewWithManager[T](meta, mgr,
		repository.WithCache[T](c.store),
		repository.WithLogger[T](logging.ForEntity(meta.Name)),
	)
}
