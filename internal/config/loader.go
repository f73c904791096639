package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const appDir = "todo"

// Load returns a Config read from the file named by TODO_CONFIG, or the
// default config file when that is unset.
func Load() (*Config, error) {
	path := os.Getenv("TODO_CONFIG")
	if path == "" {
		var err error
		if path, err = DefaultConfigFile(); err != nil {
			return nil, err
		}
	}
	return LoadFrom(path)
}

// LoadFrom returns a Config loaded from the given YAML path using the
// hierarchy: defaults < YAML < ENV. The YAML file is optional.
func LoadFrom(yamlPath string) (*Config, error) {
	cfg := Defaults()

	if err := loadYAML(&cfg, yamlPath); err != nil {
		return nil, fmt.Errorf("config yaml: %w", err)
	}

	loadEnv(&cfg)

	if cfg.Storage.Path == "" {
		path, err := DefaultDataFile(cfg.Storage.Backend)
		if err != nil {
			return nil, fmt.Errorf("config storage: %w", err)
		}
		cfg.Storage.Path = path
	}

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("config validate: %w", err)
	}

	return &cfg, nil
}

// DefaultConfigFile returns $XDG_CONFIG_HOME/todo/config.yaml
func DefaultConfigFile() (string, error) {
	dir, err := xdgDir("XDG_CONFIG_HOME", ".config")
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, appDir, "config.yaml"), nil
}

// DefaultDataFile returns the task file for backend under $XDG_DATA_HOME/todo
func DefaultDataFile(backend string) (string, error) {
	dir, err := xdgDir("XDG_DATA_HOME", filepath.Join(".local", "share"))
	if err != nil {
		return "", err
	}
	name := "tasks.jsonl"
	if backend == BackendSQLite {
		name = "todo.db"
	}
	return filepath.Join(dir, appDir, name), nil
}

// xdgDir reads env, falling back to fallback under the home directory
func xdgDir(env, fallback string) (string, error) {
	if dir := os.Getenv(env); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, fallback), nil
}

// loadYAML reads the YAML file and unmarshals it over cfg.
// Returns nil if the file does not exist.
func loadYAML(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}

	return nil
}

// loadEnv overlays environment variables onto cfg.
// Only non-empty env values override the current config.
func loadEnv(cfg *Config) {
	setString(&cfg.Storage.Backend, "TODO_BACKEND")
	setString(&cfg.Storage.Path, "TODO_DATA_FILE")
	setString(&cfg.Logging.Level, "TODO_LOG_LEVEL")
	setString(&cfg.Logging.Format, "TODO_LOG_FORMAT")
}

// validate checks that required fields are set.
func validate(cfg *Config) error {
	switch cfg.Storage.Backend {
	case BackendFile, BackendSQLite:
	default:
		return fmt.Errorf("storage.backend must be %q or %q, got %q", BackendFile, BackendSQLite, cfg.Storage.Backend)
	}
	if cfg.Storage.Path == "" {
		return errors.New("storage.path is required")
	}
	switch cfg.Logging.Format {
	case "text", "json":
	default:
		return fmt.Errorf("logging.format must be text or json, got %q", cfg.Logging.Format)
	}
	return nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}
