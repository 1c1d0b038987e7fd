package database

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigDSN(t *testing.T) {
	t.Run("sqlite in-memory", func(t *testing.T) {
		cfg := Config{Type: TypeSQLite}
		assert.Equal(t, "file::memory:?cache=shared", cfg.DSN())
	})

	t.Run("sqlite file", func(t *testing.T) {
		cfg := Config{Type: TypeSQLite, Path: "/var/lib/know/know.db"}
		assert.Equal(t, "file:/var/lib/know/know.db?cache=shared", cfg.DSN())
	})

	t.Run("postgres with defaults", func(t *testing.T) {
		cfg := Config{
			Type:     TypePostgres,
			Host:     "db.internal",
			Username: "know",
			Password: "s3cret",
			DBName:   "know",
		}
		assert.Equal(t,
			"host=db.internal port=5432 user=know password=s3cret dbname=know sslmode=disable",
			cfg.DSN(),
		)
	})

	t.Run("unknown type", func(t *testing.T) {
		assert.Empty(t, Config{Type: "oracle"}.DSN())
	})
}

func TestConfigValidate(t *testing.T) {
	assert.NoError(t, Config{Type: TypeSQLite}.Validate())
	assert.Error(t, Config{Type: TypePostgres}.Validate())
	assert.NoError(t, Config{Type: TypePostgres, Host: "h", DBName: "d"}.Validate())
	assert.Error(t, Config{Type: "oracle"}.Validate())
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "db.yaml")
	content := `
type: postgres
host: db.internal
port: 5433
username: know
dbname: know
conn_max_lifetime: 30m
debug: true
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, TypePostgres, cfg.Type)
	assert.Equal(t, "db.internal", cfg.Host)
	assert.Equal(t, 5433, cfg.Port)
	assert.Equal(t, 30*time.Minute, cfg.ConnMaxLifetime)
	assert.True(t, cfg.Debug)

	// Defaults survive for fields the file omits.
	assert.Equal(t, 4, cfg.MaxIdleConns)
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}
