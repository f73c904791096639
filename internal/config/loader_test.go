package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{"TODO_BACKEND", "TODO_DATA_FILE", "TODO_LOG_LEVEL", "TODO_LOG_FORMAT", "TODO_CONFIG"} {
		t.Setenv(key, "")
	}
}

func TestDefaults(t *testing.T) {
	cfg := Defaults()
	assert.Equal(t, BackendFile, cfg.Storage.Backend)
	assert.Equal(t, "warn", cfg.Logging.Level)
	assert.Equal(t, "text", cfg.Logging.Format)
}

func TestLoadFromDerivesDataPath(t *testing.T) {
	clearEnv(t)
	data := t.TempDir()
	t.Setenv("XDG_DATA_HOME", data)

	cfg, err := LoadFrom("/nonexistent/config.yaml")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(data, "todo", "tasks.jsonl"), cfg.Storage.Path)

	t.Setenv("TODO_BACKEND", BackendSQLite)
	cfg, err = LoadFrom("/nonexistent/config.yaml")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(data, "todo", "todo.db"), cfg.Storage.Path)
}

func TestPrecedence(t *testing.T) {
	clearEnv(t)
	yamlPath := filepath.Join(t.TempDir(), "config.yaml")
	content := `
storage:
  backend: sqlite
  path: /from/yaml.db
logging:
  level: info
  format: json
`
	require.NoError(t, os.WriteFile(yamlPath, []byte(content), 0o644))

	cfg, err := LoadFrom(yamlPath)
	require.NoError(t, err)
	assert.Equal(t, BackendSQLite, cfg.Storage.Backend)
	assert.Equal(t, "/from/yaml.db", cfg.Storage.Path)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)

	t.Setenv("TODO_DATA_FILE", "/from/env.db")
	t.Setenv("TODO_LOG_LEVEL", "debug")
	cfg, err = LoadFrom(yamlPath)
	require.NoError(t, err)
	assert.Equal(t, "/from/env.db", cfg.Storage.Path)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
}

func TestLoadUsesConfigEnv(t *testing.T) {
	clearEnv(t)
	yamlPath := filepath.Join(t.TempDir(), "custom.yaml")
	require.NoError(t, os.WriteFile(yamlPath, []byte("storage:\n  path: /custom/tasks.jsonl\n"), 0o644))
	t.Setenv("TODO_CONFIG", yamlPath)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "/custom/tasks.jsonl", cfg.Storage.Path)
}

func TestDefaultConfigFile(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)

	path, err := DefaultConfigFile()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "todo", "config.yaml"), path)
}

func TestLoadYAMLInvalid(t *testing.T) {
	yamlPath := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(yamlPath, []byte("storage: [unclosed"), 0o644))

	cfg := Defaults()
	err := loadYAML(&cfg, yamlPath)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		errMsg string
	}{
		{"unknown backend", func(c *Config) { c.Storage.Backend = "postgres" }, "storage.backend"},
		{"empty path", func(c *Config) { c.Storage.Path = "" }, "storage.path is required"},
		{"unknown format", func(c *Config) { c.Logging.Format = "xml" }, "logging.format"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Defaults()
			cfg.Storage.Path = "/tmp/tasks.jsonl"
			tt.modify(&cfg)
			err := validate(&cfg)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}
